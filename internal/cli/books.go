package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lijoraj-p-r/NoPaper/client"
	"github.com/lijoraj-p-r/NoPaper/client/checkout"
)

func booksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.api.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Println("No books in the catalog yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tPRICE\tOWNED")
			for _, b := range books {
				owned := ""
				if b.IsPurchased {
					owned = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t₹%.2f\t%s\n", b.ID, b.Title, b.Author, b.Price, owned)
			}
			return w.Flush()
		},
	}
}

func buyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <book-id>",
		Short: "Buy a book over UPI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			books, err := a.api.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			var book *client.Book
			for i := range books {
				if books[i].ID == bookID {
					book = &books[i]
					break
				}
			}
			if book == nil {
				return fmt.Errorf("no book with id %d", bookID)
			}

			flow := checkout.NewFlow(a.api, a.logger,
				checkout.WithAuthGate(func() bool { return a.sessions.Current().Authenticated }))

			payment, err := flow.Start(cmd.Context(), *book)
			if err != nil {
				return err
			}

			fmt.Printf("Order #%d: %s for ₹%.2f\n", payment.OrderID, payment.BookTitle, payment.Amount)
			fmt.Printf("Pay with any UPI app:\n\n  %s\n\n", payment.UPIURL)
			fmt.Print("Press Enter once you have paid, or type 'cancel': ")

			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				_ = flow.Cancel()
				return fmt.Errorf("read input: %w", err)
			}
			if strings.EqualFold(strings.TrimSpace(line), "cancel") {
				if err := flow.Cancel(); err != nil {
					return err
				}
				fmt.Println("Purchase cancelled. The order was not charged.")
				return nil
			}

			if err := flow.Confirm(cmd.Context()); err != nil {
				return fmt.Errorf("payment not confirmed: %w", err)
			}
			fmt.Printf("Payment confirmed. `nopaper download %d` fetches your book.\n", bookID)
			return nil
		},
	}
}

func downloadCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "download <book-id>",
		Short: "Download a purchased book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			if outPath == "" {
				outPath = fmt.Sprintf("book-%d.pdf", bookID)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer f.Close()

			if err := a.api.Download(cmd.Context(), bookID, f); err != nil {
				os.Remove(outPath)
				return err
			}
			fmt.Printf("Saved to %s.\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (default book-<id>.pdf)")
	return cmd
}
