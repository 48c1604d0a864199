package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CrestNiraj12/mastosql/domain"
	"github.com/CrestNiraj12/mastosql/infra/metrics"
)

// RequestTimeout bounds every outbound call. It is not caller-adjustable.
const RequestTimeout = 10 * time.Second

// maxErrorBody caps how much of a non-2xx body is kept in errors.
const maxErrorBody = 512

// SessionProvider supplies the active session for authenticated requests.
type SessionProvider interface {
	Credentials() domain.Credentials
}

// Client is a thin HTTP wrapper for the Mastodon API.
// It handles base URL construction, bearer token injection and error
// classification. The server and token are read from the session on every
// request, so a login takes effect for the next call.
type Client struct {
	session SessionProvider
	http    *http.Client
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every outbound call on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Mastodon API client.
func NewClient(sp SessionProvider, opts ...Option) *Client {
	c := &Client{
		session: sp,
		http:    &http.Client{Timeout: RequestTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL turns a server value into an API base URL. Bare hostnames get an
// https scheme; values that already carry a scheme are used as given.
func BaseURL(server string) string {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if strings.Contains(server, "://") {
		return server
	}
	return "https://" + server
}

// getJSON performs an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	start := time.Now()
	data, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err == nil {
		err = decodeJSON(data, out)
	}
	c.observe(op, err, start)
	return err
}

// postJSON performs an authenticated POST with a JSON body and decodes the
// response into out.
func (c *Client) postJSON(ctx context.Context, op, path string, payload any, header http.Header, out any) error {
	start := time.Now()
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	if header == nil {
		header = make(http.Header)
	}
	header.Set("Content-Type", "application/json")

	data, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), header)
	if err == nil {
		err = decodeJSON(data, out)
	}
	c.observe(op, err, start)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header) ([]byte, error) {
	creds := c.session.Credentials()
	url := BaseURL(creds.Server) + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", domain.ErrConfiguration, err)
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	req.Header.Set("Authorization", "Bearer "+creds.BearerToken)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("remote request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", path, classifyTransportError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", classifyTransportError(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.RemoteError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(data),
		}
	}

	return data, nil
}

func (c *Client) observe(op string, err error, start time.Time) {
	c.metrics.Observe(op, outcomeOf(err), time.Since(start))
}

// validator is implemented by wire entities with required fields.
type validator interface {
	validate() error
}

// decodeJSON unmarshals data into out and, when out is a validator, checks
// the resource shape. Both failures are ErrDecode.
func decodeJSON(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrDecode, err)
		}
	}
	return nil
}

// classifyTransportError maps errors from http.Client.Do and body reads onto
// ErrTimeout or ErrNetwork.
func classifyTransportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return domain.NewTimeoutError(err)
	}
	return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, domain.ErrRemote):
		return metrics.OutcomeRemote
	case errors.Is(err, domain.ErrDecode):
		return metrics.OutcomeDecode
	default:
		return metrics.OutcomeNetwork
	}
}

func truncateBody(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
