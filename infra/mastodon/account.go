package mastodon

import (
	"context"
	"fmt"

	"github.com/CrestNiraj12/mastosql/domain"
)

// accountService implements app.AccountService using the Mastodon API.
type accountService struct {
	client *Client
}

// NewAccountService creates an AccountService backed by Mastodon.
func NewAccountService(client *Client) *accountService {
	return &accountService{client: client}
}

// CurrentAccount returns the account the bearer token belongs to.
func (s *accountService) CurrentAccount(ctx context.Context) (domain.Account, error) {
	var acct mastodonAccount
	if err := s.client.getJSON(ctx, "verify_credentials", "/api/v1/accounts/verify_credentials", &acct); err != nil {
		return domain.Account{}, fmt.Errorf("fetching account: %w", err)
	}
	return acct.toDomain(), nil
}
