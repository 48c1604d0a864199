// Package mcpserver exposes the connector operations as MCP tools over
// streamable HTTP, next to a Prometheus scrape endpoint.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/CrestNiraj12/mastosql/app"
	"github.com/CrestNiraj12/mastosql/infra/metrics"
)

type fetchEnvArgs struct {
	Key string `json:"key" jsonschema:"credential key, e.g. MASTO_SERVER"`
}

type setEnvArgs struct {
	Key   string `json:"key" jsonschema:"credential key"`
	Value string `json:"value" jsonschema:"value to store"`
}

type loginArgs struct {
	Username string `json:"username" jsonschema:"account e-mail or username"`
	Password string `json:"password"`
	Server   string `json:"server" jsonschema:"instance hostname"`
}

type tootArgs struct {
	Text       string `json:"text"`
	Visibility string `json:"visibility" jsonschema:"public, unlisted, private or direct"`
}

type tootCWArgs struct {
	ContentWarning string `json:"content_warning"`
	Text           string `json:"text"`
	Visibility     string `json:"visibility" jsonschema:"public, unlisted, private or direct"`
}

type accountArgs struct {
	AccountID string `json:"account_id"`
}

type noArgs struct{}

// NewServer registers one tool per connector operation.
func NewServer(c *app.Connector, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mastosql",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_env",
		Description: "Read a stored credential value. Only MASTO_CLIENT_ID, MASTO_CLIENT_SECRET, MASTO_SERVER and MASTO_BEARER fall back to the server environment",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args fetchEnvArgs) (*mcp.CallToolResult, any, error) {
		return tableResult(app.ScalarTable("value", c.FetchEnv(args.Key)))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_env",
		Description: "Store a credential value and return it",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args setEnvArgs) (*mcp.CallToolResult, any, error) {
		return tableResult(app.ScalarTable("value", c.SetEnv(args.Key, args.Value)))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "login",
		Description: "Obtain an access token with the password grant and make it the active session",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args loginArgs) (*mcp.CallToolResult, any, error) {
		row, err := c.Login(ctx, args.Username, args.Password, args.Server)
		if err != nil {
			return nil, nil, err
		}
		return tableResult(app.LoginTable(row))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toot",
		Description: "Publish a status and return its id",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args tootArgs) (*mcp.CallToolResult, any, error) {
		id, err := c.Toot(ctx, args.Text, args.Visibility)
		if err != nil {
			return nil, nil, err
		}
		return tableResult(app.ScalarTable("id", id))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toot_cw",
		Description: "Publish a status behind a content warning and return its id",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args tootCWArgs) (*mcp.CallToolResult, any, error) {
		id, err := c.TootCW(ctx, args.ContentWarning, args.Text, args.Visibility)
		if err != nil {
			return nil, nil, err
		}
		return tableResult(app.ScalarTable("id", id))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "home",
		Description: "Read the home timeline",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
		rows, err := c.Home(ctx)
		if err != nil {
			return nil, nil, err
		}
		return tableResult(app.HomeTable(rows))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "account",
		Description: "Read the statuses posted by an account",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args accountArgs) (*mcp.CallToolResult, any, error) {
		rows, err := c.Account(ctx, args.AccountID)
		if err != nil {
			return nil, nil, err
		}
		return tableResult(app.AccountTable(rows))
	})

	return server
}

// Handler serves MCP at /mcp and the metrics registry at /metrics.
func Handler(c *app.Connector, rec *metrics.Recorder, version string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	server := NewServer(c, version)
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", logRequests(logger, mcpHandler))
	mux.Handle("/metrics", rec.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("mcp request", "method", r.Method, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

func tableResult(t app.Table) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textToolResult(string(b)), nil, nil
}

func textToolResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
