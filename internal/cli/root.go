// Package cli implements the nopaper terminal client. Commands share
// one API client and one session manager; credentials persist in the
// user's config directory so separate invocations stay signed in.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/client"
	"github.com/lijoraj-p-r/NoPaper/client/session"
)

const defaultServerURL = "http://localhost:8000"

// app holds the wiring every command needs, built once in the root
// command's PersistentPreRunE after flags are parsed.
type app struct {
	api      *client.Client
	sessions *session.Manager
	logger   *zap.Logger
}

// Root builds the nopaper command tree.
func Root() *cobra.Command {
	var (
		serverURL string
		verbose   bool
		a         app
	)

	cmd := &cobra.Command{
		Use:   "nopaper",
		Short: "Buy and download books from a NoPaper server",
		Long: `nopaper is the terminal client for a NoPaper digital bookstore.

Browse the catalog, buy books over UPI, and download what you own.
Sign in once; the session is kept until you log out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				logger = l
			}

			if env := os.Getenv("NOPAPER_SERVER"); env != "" && !cmd.Flags().Changed("server") {
				serverURL = env
			}

			api := client.New(serverURL)
			store, err := session.DefaultStore(logger)
			if err != nil {
				return fmt.Errorf("locate session store: %w", err)
			}
			sessions, err := session.NewManager(api, store, logger)
			if err != nil {
				return fmt.Errorf("restore session: %w", err)
			}

			a = app{api: api, sessions: sessions, logger: logger}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL,
		"NoPaper server URL (or NOPAPER_SERVER)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		registerCmd(&a),
		loginCmd(&a),
		logoutCmd(&a),
		whoamiCmd(&a),
		booksCmd(&a),
		buyCmd(&a),
		downloadCmd(&a),
		adminCmd(&a),
	)

	return cmd
}

// requireLogin is a guard for commands that need a signed-in session.
func requireLogin(a *app) error {
	if !a.sessions.Current().Authenticated {
		return fmt.Errorf("not signed in; run `nopaper login` first")
	}
	return nil
}

// requireAdmin additionally checks the stored role. The server applies
// the real check; this only saves a round trip for obvious mistakes.
func requireAdmin(a *app) error {
	if err := requireLogin(a); err != nil {
		return err
	}
	if !a.sessions.Current().IsAdmin() {
		return fmt.Errorf("admin access required")
	}
	return nil
}
