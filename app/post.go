package app

import (
	"context"

	"github.com/CrestNiraj12/mastosql/domain"
)

// PostService publishes statuses on a social backend.
type PostService interface {
	// Publish creates a status and returns its identifier.
	Publish(ctx context.Context, status domain.NewStatus) (domain.PublishResult, error)
}
