package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lijoraj-p-r/NoPaper/client"
)

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the bookstore (admin only)",
	}
	cmd.AddCommand(
		adminAddCmd(a),
		adminRemoveCmd(a),
		adminBooksCmd(a),
		adminOrdersCmd(a),
		adminStatsCmd(a),
	)
	return cmd
}

func adminAddCmd(a *app) *cobra.Command {
	var in client.CreateBookInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(a); err != nil {
				return err
			}
			id, err := a.api.AdminCreateBook(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Added book #%d: %s\n", id, in.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Book title")
	cmd.Flags().StringVar(&in.Author, "author", "", "Author name")
	cmd.Flags().StringVar(&in.Description, "description", "", "Short description")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "Price in INR")
	cmd.Flags().StringVar(&in.PDFURL, "pdf-url", "", "URL of the PDF file")
	cmd.Flags().StringVar(&in.CoverURL, "cover-url", "", "URL of the cover image")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("pdf-url")
	return cmd
}

func adminRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <book-id>",
		Short: "Remove a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(a); err != nil {
				return err
			}
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			if err := a.api.AdminDeleteBook(cmd.Context(), bookID); err != nil {
				return err
			}
			fmt.Printf("Removed book #%d.\n", bookID)
			return nil
		},
	}
}

func adminBooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List books with purchase counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(a); err != nil {
				return err
			}
			books, err := a.api.AdminListBooks(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tPRICE\tSOLD")
			for _, b := range books {
				fmt.Fprintf(w, "%d\t%s\t%s\t₹%.2f\t%d\n", b.ID, b.Title, b.Author, b.Price, b.PurchaseCount)
			}
			return w.Flush()
		},
	}
}

func adminOrdersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List all orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(a); err != nil {
				return err
			}
			orders, err := a.api.AdminOrders(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tUSER\tTOTAL\tSTATUS\tBOOKS")
			for _, o := range orders {
				titles := ""
				for i, b := range o.Books {
					if i > 0 {
						titles += ", "
					}
					titles += b.Title
				}
				fmt.Fprintf(w, "%d\t%s\t₹%.2f\t%s\t%s\n", o.OrderID, o.UserEmail, o.Total, o.Status, titles)
			}
			return w.Flush()
		},
	}
}

func adminStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(a); err != nil {
				return err
			}
			stats, err := a.api.AdminStats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Books:       %d\n", stats.TotalBooks)
			fmt.Printf("Users:       %d\n", stats.TotalUsers)
			fmt.Printf("Paid orders: %d\n", stats.TotalOrders)
			fmt.Printf("Revenue:     ₹%.2f\n", stats.TotalRevenue)
			return nil
		},
	}
}
