package app

import (
	"context"

	"github.com/CrestNiraj12/mastosql/domain"
)

// AccountService provides information about the authenticated user.
type AccountService interface {
	// CurrentAccount returns the account the active bearer token belongs to.
	CurrentAccount(ctx context.Context) (domain.Account, error)
}

// AuthService exchanges user credentials for an access token.
type AuthService interface {
	// Authenticate performs the password grant against server. It must not
	// touch session state.
	Authenticate(ctx context.Context, server, username, password string) (domain.AccessToken, error)
}
