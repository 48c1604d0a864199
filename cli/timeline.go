package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/mastosql/app"
	"github.com/CrestNiraj12/mastosql/domain"
)

func newHomeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Print the home timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := e.conn.Home(cmd.Context())
			if err != nil {
				return err
			}
			return e.print(app.HomeTable(rows))
		},
	}
}

func newAccountCommand(e *env) *cobra.Command {
	var me bool

	cmd := &cobra.Command{
		Use:   "account [ID]",
		Short: "Print the statuses posted by an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.accountID(cmd, args, me)
			if err != nil {
				return err
			}
			rows, err := e.conn.Account(cmd.Context(), id)
			if err != nil {
				return err
			}
			return e.print(app.AccountTable(rows))
		},
	}
	cmd.Flags().BoolVar(&me, "me", false, "use the account behind the active token")
	return cmd
}

// accountID resolves the account argument, or the logged-in account with --me.
func (e *env) accountID(cmd *cobra.Command, args []string, me bool) (string, error) {
	switch {
	case me && len(args) > 0:
		return "", fmt.Errorf("%w: pass either an account id or --me", domain.ErrMissingArgument)
	case me:
		return e.conn.CurrentAccountID(cmd.Context())
	case len(args) == 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: account id", domain.ErrMissingArgument)
	}
}
