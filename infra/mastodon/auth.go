package mastodon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/CrestNiraj12/mastosql/domain"
)

const tokenPath = "/oauth/token"

// requestedScopes is sent as "read write".
var requestedScopes = []string{"read", "write"}

// authService performs the resource-owner password grant.
type authService struct {
	client *Client
}

// NewAuthService creates an AuthService backed by Mastodon.
func NewAuthService(client *Client) *authService {
	return &authService{client: client}
}

// Authenticate exchanges username and password for an access token at
// {server}/oauth/token. The client id and secret come from the session.
// Nothing is stored; committing the token is the caller's decision.
func (s *authService) Authenticate(ctx context.Context, server, username, password string) (domain.AccessToken, error) {
	c := s.client
	creds := c.session.Credentials()
	if creds.ClientID == "" || creds.ClientSecret == "" {
		c.logger.Warn("client credentials not configured; the token request will be rejected",
			"error", domain.ErrConfiguration,
			"client_id_set", creds.ClientID != "",
			"client_secret_set", creds.ClientSecret != "")
	}

	cfg := oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  BaseURL(server) + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: requestedScopes,
	}

	start := time.Now()
	tok, err := cfg.PasswordCredentialsToken(context.WithValue(ctx, oauth2.HTTPClient, c.http), username, password)
	var at domain.AccessToken
	if err != nil {
		err = classifyTokenError(ctx, err)
	} else {
		at, err = mapAccessToken(tok)
	}
	c.observe("login", err, start)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("requesting token: %w", err)
	}
	return at, nil
}

// fetchFailurePrefix marks oauth2 body read failures. oauth2 formats the
// cause with %v, so the transport error chain is lost.
const fetchFailurePrefix = "oauth2: cannot fetch token:"

// classifyTokenError maps oauth2 failures onto the domain error classes.
func classifyTokenError(ctx context.Context, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &domain.RemoteError{
			Method:     "POST",
			Path:       tokenPath,
			StatusCode: re.Response.StatusCode,
			Body:       truncateBody(re.Body),
		}
	}
	var ue *url.Error
	if errors.As(err, &ue) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return classifyTransportError(err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return classifyTransportError(fmt.Errorf("%w: %v", ctxErr, err))
	}
	if msg := err.Error(); strings.HasPrefix(msg, fetchFailurePrefix) {
		if strings.Contains(msg, "Client.Timeout") || strings.Contains(msg, context.DeadlineExceeded.Error()) {
			return domain.NewTimeoutError(err)
		}
		return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	// oauth2 reports unparseable bodies and missing access tokens as plain errors.
	return fmt.Errorf("%w: %w", domain.ErrDecode, err)
}
