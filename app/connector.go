package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CrestNiraj12/mastosql/domain"
)

// Connector exposes the remote service as callable operations with tabular
// results. Every host (CLI, MCP server, relational sink) goes through it.
//
// Operations block until the remote call finishes or times out. Session state
// lives in the store; a successful Login replaces it for all later calls.
type Connector struct {
	store    SessionStore
	auth     AuthService
	timeline TimelineService
	posts    PostService
	accounts AccountService
	logger   *slog.Logger
}

// Deps are the collaborators of a Connector. Accounts is optional.
type Deps struct {
	Store    SessionStore
	Auth     AuthService
	Timeline TimelineService
	Post     PostService
	Accounts AccountService
	Logger   *slog.Logger
}

// NewConnector wires a Connector.
func NewConnector(d Deps) *Connector {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		store:    d.Store,
		auth:     d.Auth,
		timeline: d.Timeline,
		posts:    d.Post,
		accounts: d.Accounts,
		logger:   logger,
	}
}

// FetchEnv returns the stored value for key, or "" when unset.
func (c *Connector) FetchEnv(key string) string {
	return c.store.Get(key)
}

// SetEnv stores value under key and returns the stored value.
func (c *Connector) SetEnv(key, value string) string {
	return c.store.Set(key, value)
}

// Login authenticates with the password grant and, only on success, makes
// server and the new bearer token the active session.
func (c *Connector) Login(ctx context.Context, username, password, server string) (LoginRow, error) {
	if err := require("username", username, "password", password, "server", server); err != nil {
		return LoginRow{}, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	tok, err := c.auth.Authenticate(ctx, server, username, password)
	if err != nil {
		return LoginRow{}, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	c.store.CommitSession(server, tok.AccessToken)
	c.logger.Info("login succeeded", "server", server, "scope", tok.Scope)

	return LoginRow{
		TokenType: tok.TokenType,
		Scope:     tok.Scope,
		CreatedAt: tok.CreatedAt,
	}, nil
}

// Toot publishes text without a content warning and returns the new status id.
func (c *Connector) Toot(ctx context.Context, text, visibility string) (string, error) {
	return c.publish(ctx, domain.NewStatus{
		Text:        text,
		Visibility:  visibility,
		Sensitive:   false,
		SpoilerText: "",
	})
}

// TootCW publishes text behind the content warning cw and returns the new
// status id. The label is sent as given, so an empty cw still marks the
// status sensitive.
func (c *Connector) TootCW(ctx context.Context, cw, text, visibility string) (string, error) {
	return c.publish(ctx, domain.NewStatus{
		Text:        text,
		Visibility:  visibility,
		Sensitive:   true,
		SpoilerText: cw,
	})
}

// publish reports failures on the diagnostic log and returns no id. Callers
// must treat a non-nil error as "nothing was posted".
func (c *Connector) publish(ctx context.Context, ns domain.NewStatus) (string, error) {
	if err := require("text", ns.Text, "visibility", ns.Visibility); err != nil {
		return c.reportPublish(err, ns.Visibility)
	}

	res, err := c.posts.Publish(ctx, ns)
	if err != nil {
		return c.reportPublish(err, ns.Visibility)
	}

	c.logger.Debug("status published", "id", res.ID, "visibility", ns.Visibility, "sensitive", ns.Sensitive)
	return res.ID, nil
}

func (c *Connector) reportPublish(cause error, visibility string) (string, error) {
	err := fmt.Errorf("%w: %w", domain.ErrPublish, cause)
	c.logger.Error("publish failed", "error", err, "visibility", visibility)
	return "", err
}

// Home fetches the home timeline and projects it into nine-column rows.
func (c *Connector) Home(ctx context.Context) ([]HomeRow, error) {
	statuses, err := c.timeline.Home(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteFetch, err)
	}
	rows := make([]HomeRow, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, ProjectHome(s))
	}
	return rows, nil
}

// Account fetches the statuses of accountID and projects them into
// seven-column rows.
func (c *Connector) Account(ctx context.Context, accountID string) ([]AccountRow, error) {
	if err := require("account id", accountID); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteFetch, err)
	}
	statuses, err := c.timeline.Account(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteFetch, err)
	}
	rows := make([]AccountRow, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, ProjectAccount(s))
	}
	return rows, nil
}

// CurrentAccountID resolves the id of the account behind the active token.
func (c *Connector) CurrentAccountID(ctx context.Context) (string, error) {
	if c.accounts == nil {
		return "", fmt.Errorf("%w: account lookup is not configured", domain.ErrConfiguration)
	}
	acct, err := c.accounts.CurrentAccount(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRemoteFetch, err)
	}
	return acct.ID, nil
}

// require checks name/value pairs and reports the first empty value.
func require(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s", domain.ErrMissingArgument, pairs[i])
		}
	}
	return nil
}
