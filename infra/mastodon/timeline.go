package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/CrestNiraj12/mastosql/domain"
)

// timelineService implements app.TimelineService using the Mastodon API.
type timelineService struct {
	client *Client
}

// NewTimelineService creates a TimelineService backed by Mastodon.
func NewTimelineService(client *Client) *timelineService {
	return &timelineService{client: client}
}

// Home returns the authenticated user's home timeline in delivered order.
func (s *timelineService) Home(ctx context.Context) ([]domain.Status, error) {
	var statuses mastodonStatuses
	if err := s.client.getJSON(ctx, "home", "/api/v1/timelines/home", &statuses); err != nil {
		return nil, fmt.Errorf("fetching home timeline: %w", err)
	}
	return mapStatuses(statuses), nil
}

// Account returns the statuses posted by accountID in delivered order.
func (s *timelineService) Account(ctx context.Context, accountID string) ([]domain.Status, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("%w: account id", domain.ErrMissingArgument)
	}

	path := fmt.Sprintf("/api/v1/accounts/%s/statuses", url.PathEscape(accountID))
	var statuses mastodonStatuses
	if err := s.client.getJSON(ctx, "account", path, &statuses); err != nil {
		return nil, fmt.Errorf("fetching account timeline: %w", err)
	}
	return mapStatuses(statuses), nil
}
