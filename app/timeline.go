package app

import (
	"context"

	"github.com/CrestNiraj12/mastosql/domain"
)

// TimelineService fetches statuses from a social timeline.
type TimelineService interface {
	// Home returns the authenticated user's home timeline, in delivered order.
	Home(ctx context.Context) ([]domain.Status, error)

	// Account returns statuses posted by accountID, in delivered order.
	Account(ctx context.Context, accountID string) ([]domain.Status, error)
}
