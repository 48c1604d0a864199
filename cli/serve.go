package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/mastosql/infra/mcpserver"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(e *env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operations as MCP tools with Prometheus metrics",
		Long: `serve exposes fetch_env, set_env, login, toot, toot_cw, home and account as MCP
tools over streamable HTTP at /mcp, and the request metrics at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = e.cfg.ListenAddr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			return e.serve(cmd.Context(), ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $MASTOSQL_LISTEN_ADDR)")
	return cmd
}

// serve runs until ctx is canceled, then drains in-flight requests.
func (e *env) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           mcpserver.Handler(e.conn, e.metrics, e.opts.Version, e.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		e.logger.Info("serving", "addr", ln.Addr().String())
		fmt.Fprintf(e.opts.Err, "listening on http://%s/mcp\n", ln.Addr())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
