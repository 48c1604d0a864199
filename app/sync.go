package app

import (
	"context"
	"fmt"
)

// Sink persists projected rows.
type Sink interface {
	UpsertHome(ctx context.Context, rows []HomeRow) (int, error)
	UpsertAccount(ctx context.Context, accountID string, rows []AccountRow) (int, error)
}

// SyncHome fetches the home timeline and writes it to sink.
func (c *Connector) SyncHome(ctx context.Context, sink Sink) (int, error) {
	rows, err := c.Home(ctx)
	if err != nil {
		return 0, err
	}
	n, err := sink.UpsertHome(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("storing home timeline: %w", err)
	}
	c.logger.Info("home timeline synced", "rows", n)
	return n, nil
}

// SyncAccount fetches the statuses of accountID and writes them to sink.
func (c *Connector) SyncAccount(ctx context.Context, sink Sink, accountID string) (int, error) {
	rows, err := c.Account(ctx, accountID)
	if err != nil {
		return 0, err
	}
	n, err := sink.UpsertAccount(ctx, accountID, rows)
	if err != nil {
		return 0, fmt.Errorf("storing account %s: %w", accountID, err)
	}
	c.logger.Info("account synced", "account_id", accountID, "rows", n)
	return n, nil
}
