package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/mastosql/app"
	"github.com/CrestNiraj12/mastosql/infra/session"
	"github.com/CrestNiraj12/mastosql/tui/prompt"
)

func newLoginCommand(e *env) *cobra.Command {
	var (
		server, username, password string
		printEnv                   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an access token with the password grant",
		Long: `login exchanges a username and password for an access token and makes it the
active session. Client credentials come from MASTO_CLIENT_ID and
MASTO_CLIENT_SECRET. The password is prompted for when omitted on a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" && e.interactive() {
				p, err := prompt.Password(cmd.Context(), e.opts.In, e.opts.Err, username+"@"+server)
				if err != nil {
					return err
				}
				password = p
			}

			row, err := e.conn.Login(cmd.Context(), username, password, server)
			if err != nil {
				return err
			}
			if printEnv {
				fmt.Fprintf(e.opts.Err, "export %s=%q\n", session.KeyServer, e.store.Get(session.KeyServer))
				fmt.Fprintf(e.opts.Err, "export %s=%q\n", session.KeyBearer, e.store.Get(session.KeyBearer))
			}
			return e.print(app.LoginTable(row))
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "instance hostname, e.g. mastodon.social")
	cmd.Flags().StringVarP(&username, "username", "u", "", "account e-mail or username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().BoolVar(&printEnv, "print-env", false, "print export lines for the new session on stderr")
	return cmd
}
