package cli

import (
	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/mastosql/app"
)

func newEnvCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Read or write stored credentials",
		Long: `Credentials are kept for the lifetime of the process. Keys:
  MASTO_CLIENT_ID, MASTO_CLIENT_SECRET, MASTO_SERVER, MASTO_BEARER
Unset keys fall back to the process environment.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print a stored value (empty when unset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return e.print(app.ScalarTable("value", e.conn.FetchEnv(args[0])))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a value and print it",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return e.print(app.ScalarTable("value", e.conn.SetEnv(args[0], args[1])))
		},
	})

	return cmd
}
