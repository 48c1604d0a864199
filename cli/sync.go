package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/mastosql/app"
	"github.com/CrestNiraj12/mastosql/infra/store"
)

type sinkFlags struct {
	driver string
	dsn    string
}

func (f *sinkFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.driver, "driver", "", "sink driver: sqlite or postgres (default $MASTOSQL_DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&f.dsn, "dsn", "", "sink data source (default $MASTOSQL_DB_DSN)")
}

func (e *env) openSink(cmd *cobra.Command, f *sinkFlags) (*store.Store, error) {
	driver, dsn := f.driver, f.dsn
	if driver == "" {
		driver = e.cfg.DBDriver
	}
	if dsn == "" {
		dsn = e.cfg.DBDSN
	}
	return store.Open(cmd.Context(), driver, dsn, e.logger)
}

func newSyncCommand(e *env) *cobra.Command {
	var flags sinkFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy a timeline into SQLite or PostgreSQL",
	}
	flags.register(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "home",
		Short: "Upsert the home timeline into home_timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sink, err := e.openSink(cmd, &flags)
			if err != nil {
				return err
			}
			defer sink.Close()

			n, err := e.conn.SyncHome(cmd.Context(), sink)
			if err != nil {
				return err
			}
			return e.print(app.ScalarTable("rows", strconv.Itoa(n)))
		},
	})

	var me bool
	account := &cobra.Command{
		Use:   "account [ID]",
		Short: "Upsert the statuses of an account into account_statuses",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.accountID(cmd, args, me)
			if err != nil {
				return err
			}
			sink, err := e.openSink(cmd, &flags)
			if err != nil {
				return err
			}
			defer sink.Close()

			n, err := e.conn.SyncAccount(cmd.Context(), sink, id)
			if err != nil {
				return err
			}
			return e.print(app.ScalarTable("rows", strconv.Itoa(n)))
		},
	}
	account.Flags().BoolVar(&me, "me", false, "use the account behind the active token")
	cmd.AddCommand(account)

	return cmd
}

func newQueryCommand(e *env) *cobra.Command {
	var flags sinkFlags

	cmd := &cobra.Command{
		Use:   "query SQL [ARGS...]",
		Short: "Run a read statement against the sink",
		Example: `  mastosql query "SELECT acct, content FROM home_timeline WHERE type = ?" Boost`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, err := e.openSink(cmd, &flags)
			if err != nil {
				return err
			}
			defer sink.Close()

			params := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				params = append(params, a)
			}
			t, err := sink.Query(cmd.Context(), args[0], params...)
			if err != nil {
				return err
			}
			return e.print(t)
		},
	}
	flags.register(cmd)
	return cmd
}
