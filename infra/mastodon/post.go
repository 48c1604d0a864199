package mastodon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/CrestNiraj12/mastosql/domain"
)

// postService implements app.PostService using the Mastodon API.
type postService struct {
	client *Client
	newKey func() string
}

// NewPostService creates a PostService backed by Mastodon.
func NewPostService(client *Client) *postService {
	return &postService{client: client, newKey: uuid.NewString}
}

// Publish creates a status. Each call carries a fresh Idempotency-Key so the
// remote service can discard duplicates of the same request.
func (s *postService) Publish(ctx context.Context, ns domain.NewStatus) (domain.PublishResult, error) {
	header := make(http.Header)
	header.Set("Idempotency-Key", s.newKey())

	var created mastodonCreated
	if err := s.client.postJSON(ctx, "publish", "/api/v1/statuses", toWireStatus(ns), header, &created); err != nil {
		return domain.PublishResult{}, fmt.Errorf("publishing status: %w", err)
	}
	if created.ID == "" {
		return domain.PublishResult{}, fmt.Errorf("publishing status: %w: response has no id", domain.ErrDecode)
	}
	return domain.PublishResult{ID: created.ID}, nil
}
