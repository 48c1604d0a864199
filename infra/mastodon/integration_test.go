package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/CrestNiraj12/mastosql/domain"
	"github.com/CrestNiraj12/mastosql/infra/metrics"
)

type staticSession domain.Credentials

func (s staticSession) Credentials() domain.Credentials { return domain.Credentials(s) }

type handlerRoundTripper struct {
	h http.Handler
}

func (rt handlerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := newResponseRecorder()
	rt.h.ServeHTTP(rec, req)
	return rec.response(req), nil
}

type responseRecorder struct {
	header http.Header
	body   strings.Builder
	code   int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header         { return r.header }
func (r *responseRecorder) Write(p []byte) (int, error) { return r.body.Write(p) }
func (r *responseRecorder) WriteHeader(statusCode int)  { r.code = statusCode }

func (r *responseRecorder) response(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: r.code,
		Header:     r.header.Clone(),
		Body:       io.NopCloser(strings.NewReader(r.body.String())),
		Request:    req,
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(h http.Handler) *Client {
	return &Client{
		session: staticSession{
			Server:       "http://example.test",
			BearerToken:  "tok",
			ClientID:     "cid",
			ClientSecret: "csec",
		},
		http:    &http.Client{Transport: handlerRoundTripper{h: h}},
		metrics: metrics.NewRecorder(),
		logger:  discardLogger(),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestTimelineService_Home_RequestShapeAndMapping(t *testing.T) {
	var gotPath, gotAuth, gotMethod string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		writeJSON(w, []map[string]any{
			{
				"id":         "1",
				"created_at": "2024-05-01T10:00:00.000Z",
				"sensitive":  false,
				"visibility": "public",
				"account":    map[string]any{"id": "a1", "acct": "alice", "bot": false},
				"reblog":     map[string]any{"id": "99", "content": "R1"},
				"content":    "",
			},
			{
				"id":         "2",
				"created_at": "2024-05-01T09:00:00.000Z",
				"sensitive":  true,
				"visibility": "unlisted",
				"account":    map[string]any{"id": "b2", "acct": "bot@remote.example", "bot": true},
				"reblog":     nil,
				"content":    "C2",
			},
		})
	})

	svc := NewTimelineService(newTestClient(h))
	got, err := svc.Home(context.Background())
	if err != nil {
		t.Fatalf("home failed: %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/api/v1/timelines/home" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("missing bearer header: %q", gotAuth)
	}
	if len(got) != 2 {
		t.Fatalf("expected two statuses, got %d", len(got))
	}
	if !got[0].IsBoost() || got[0].Reblog.Content != "R1" || got[0].ID != "1" {
		t.Fatalf("unexpected first status: %+v", got[0])
	}
	if got[1].IsBoost() || got[1].Content != "C2" || !got[1].Sensitive || got[1].Visibility != "unlisted" {
		t.Fatalf("unexpected second status: %+v", got[1])
	}
	if got[1].Account != (domain.Account{ID: "b2", Acct: "bot@remote.example", Bot: true}) {
		t.Fatalf("unexpected account mapping: %+v", got[1].Account)
	}
	if got[0].CreatedAt != "2024-05-01T10:00:00.000Z" {
		t.Fatalf("created_at must be kept verbatim: %q", got[0].CreatedAt)
	}
}

func TestTimelineService_Account_PathAndValidation(t *testing.T) {
	var gotRawPath string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		writeJSON(w, []map[string]any{})
	})
	svc := NewTimelineService(newTestClient(h))

	got, err := svc.Account(context.Background(), "109/x")
	if err != nil {
		t.Fatalf("account failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	if gotRawPath != "/api/v1/accounts/109%2Fx/statuses" {
		t.Fatalf("account id must be path-escaped: %q", gotRawPath)
	}

	if _, err := svc.Account(context.Background(), " "); !errors.Is(err, domain.ErrMissingArgument) {
		t.Fatalf("expected missing-argument error, got %v", err)
	}
}

func TestPostService_Publish_BodyAndHeaders(t *testing.T) {
	tests := []struct {
		name string
		in   domain.NewStatus
	}{
		{
			name: "plain",
			in:   domain.NewStatus{Text: "hello", Visibility: "public"},
		},
		{
			name: "content warning",
			in:   domain.NewStatus{Text: "spoilers", Visibility: "unlisted", Sensitive: true, SpoilerText: "cw"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]any
			var contentType, idemKey string
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/v1/statuses" {
					t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				contentType = r.Header.Get("Content-Type")
				idemKey = r.Header.Get("Idempotency-Key")
				_ = json.NewDecoder(r.Body).Decode(&body)
				writeJSON(w, map[string]any{"id": "777", "content": "<p>ignored</p>"})
			})
			svc := NewPostService(newTestClient(h))
			svc.newKey = func() string { return "key-1" }

			got, err := svc.Publish(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("publish failed: %v", err)
			}
			if got.ID != "777" {
				t.Fatalf("unexpected id: %q", got.ID)
			}
			if contentType != "application/json" {
				t.Fatalf("expected JSON content-type, got %q", contentType)
			}
			if idemKey != "key-1" {
				t.Fatalf("expected idempotency key, got %q", idemKey)
			}
			if body["status"] != tc.in.Text || body["visibility"] != tc.in.Visibility {
				t.Fatalf("unexpected body: %#v", body)
			}
			if body["sensitive"] != tc.in.Sensitive || body["spoiler_text"] != tc.in.SpoilerText {
				t.Fatalf("unexpected sensitivity fields: %#v", body)
			}
		})
	}
}

func TestPostService_Publish_MissingIDIsDecodeError(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"content": "x"})
	})
	_, err := NewPostService(newTestClient(h)).Publish(context.Background(), domain.NewStatus{Text: "x"})
	if !errors.Is(err, domain.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestAuthService_Authenticate_FormAndMapping(t *testing.T) {
	var form url.Values
	var gotPath string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/x-www-form-urlencoded") {
			t.Fatalf("expected form content-type, got %q", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(raw))
		writeJSON(w, map[string]any{
			"access_token": "fresh-token",
			"token_type":   "Bearer",
			"scope":        "read write",
			"created_at":   1700000000,
		})
	})

	svc := NewAuthService(newTestClient(h))
	got, err := svc.Authenticate(context.Background(), "http://login.test", "alice", "pw")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if gotPath != "/oauth/token" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	want := map[string]string{
		"grant_type":    "password",
		"username":      "alice",
		"password":      "pw",
		"client_id":     "cid",
		"client_secret": "csec",
		"scope":         "read write",
	}
	for k, v := range want {
		if form.Get(k) != v {
			t.Fatalf("form %s = %q, want %q (form=%v)", k, form.Get(k), v, form)
		}
	}
	if got != (domain.AccessToken{AccessToken: "fresh-token", TokenType: "Bearer", Scope: "read write", CreatedAt: 1700000000}) {
		t.Fatalf("unexpected token: %#v", got)
	}
}

func TestAuthService_Authenticate_ErrorClasses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		ctype  string
		body   string
		want   error
	}{
		{name: "rejected", status: http.StatusUnauthorized, ctype: "application/json", body: `{"error":"invalid_grant"}`, want: domain.ErrRemote},
		{name: "malformed json", status: http.StatusOK, ctype: "application/json", body: `{"access_token":`, want: domain.ErrDecode},
		{name: "missing token", status: http.StatusOK, ctype: "application/json", body: `{"token_type":"Bearer","created_at":1}`, want: domain.ErrDecode},
		{name: "missing created_at", status: http.StatusOK, ctype: "application/json", body: `{"access_token":"t","token_type":"Bearer","scope":"read write"}`, want: domain.ErrDecode},
		{name: "missing token_type", status: http.StatusOK, ctype: "application/json", body: `{"access_token":"t","scope":"read write","created_at":1}`, want: domain.ErrDecode},
		{name: "missing scope", status: http.StatusOK, ctype: "application/json", body: `{"access_token":"t","token_type":"Bearer","created_at":1}`, want: domain.ErrDecode},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.ctype)
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := NewAuthService(newTestClient(h)).Authenticate(context.Background(), "http://login.test", "u", "p")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthService_Authenticate_NetworkError(t *testing.T) {
	c := newTestClient(nil)
	c.http = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	_, err := NewAuthService(c).Authenticate(context.Background(), "http://login.test", "u", "p")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if c.metrics.Count("login", metrics.OutcomeNetwork) != 1 {
		t.Fatalf("expected login network failure to be counted")
	}
}

func TestAuthService_Authenticate_BodyReadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"access_token":`)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
	}))
	defer srv.Close()

	c := newTestClient(nil)
	c.http = &http.Client{Timeout: 100 * time.Millisecond}

	_, err := NewAuthService(c).Authenticate(context.Background(), srv.URL, "u", "p")
	if !errors.Is(err, domain.ErrTimeout) || !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if errors.Is(err, domain.ErrDecode) {
		t.Fatalf("a timed out body read is not a decode error: %v", err)
	}
	if c.metrics.Count("login", metrics.OutcomeTimeout) != 1 {
		t.Fatalf("expected login timeout to be counted")
	}
}

func TestClassifyTokenError(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want error
		not  error
	}{
		{name: "body read reset", ctx: context.Background(), err: errors.New("oauth2: cannot fetch token: connection reset by peer"), want: domain.ErrNetwork, not: domain.ErrTimeout},
		{name: "body read deadline", ctx: context.Background(), err: errors.New("oauth2: cannot fetch token: context deadline exceeded"), want: domain.ErrTimeout},
		{name: "caller canceled", ctx: canceled, err: errors.New("oauth2: cannot fetch token: read interrupted"), want: domain.ErrNetwork, not: domain.ErrDecode},
		{name: "unparseable body", ctx: context.Background(), err: errors.New("oauth2: cannot parse json: unexpected EOF"), want: domain.ErrDecode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyTokenError(tc.ctx, tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if tc.not != nil && errors.Is(got, tc.not) {
				t.Fatalf("did not expect %v, got %v", tc.not, got)
			}
		})
	}
}

func TestTimelineService_NullBodyIsDecodeError(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `null`)
	})
	c := newTestClient(h)
	got, err := NewTimelineService(c).Home(context.Background())
	if !errors.Is(err, domain.ErrDecode) {
		t.Fatalf("expected decode error, got %v (rows=%d)", err, len(got))
	}
	if c.metrics.Count("home", metrics.OutcomeDecode) != 1 {
		t.Fatalf("expected decode failure to be counted")
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Run("remote", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"The access token is invalid"}`)
		})
		_, err := NewTimelineService(newTestClient(h)).Home(context.Background())
		var re *domain.RemoteError
		if !errors.As(err, &re) || re.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected remote 401, got %v", err)
		}
		if !errors.Is(err, domain.ErrRemote) {
			t.Fatalf("remote error must match ErrRemote")
		}
		if !strings.Contains(re.Body, "access token is invalid") {
			t.Fatalf("expected body in error: %q", re.Body)
		}
	})

	t.Run("decode", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"not": "a list"})
		})
		c := newTestClient(h)
		_, err := NewTimelineService(c).Home(context.Background())
		if !errors.Is(err, domain.ErrDecode) {
			t.Fatalf("expected decode error, got %v", err)
		}
		if c.metrics.Count("home", metrics.OutcomeDecode) != 1 {
			t.Fatalf("expected decode failure to be counted")
		}
	})

	t.Run("network", func(t *testing.T) {
		c := newTestClient(nil)
		c.http = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("no route to host")
		})}
		_, err := NewTimelineService(c).Home(context.Background())
		if !errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrTimeout) {
			t.Fatalf("expected plain network error, got %v", err)
		}
	})
}

func TestClient_TimeoutIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(nil)
	c.session = staticSession{Server: srv.URL, BearerToken: "tok"}
	c.http = &http.Client{Timeout: 50 * time.Millisecond}

	start := time.Now()
	_, err := NewTimelineService(c).Home(context.Background())
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("timeout must also be a network error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("request was not bounded by the client timeout")
	}
	if c.metrics.Count("home", metrics.OutcomeTimeout) != 1 {
		t.Fatalf("expected timeout to be counted")
	}
}

func TestNewClient_UsesFixedTimeout(t *testing.T) {
	c := NewClient(staticSession{})
	if c.http.Timeout != RequestTimeout || RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected client timeout: %v", c.http.Timeout)
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "mastodon.social", want: "https://mastodon.social"},
		{in: " mastodon.social/ ", want: "https://mastodon.social"},
		{in: "http://127.0.0.1:3000", want: "http://127.0.0.1:3000"},
		{in: "https://example.social/", want: "https://example.social"},
	}
	for _, tc := range tests {
		if got := BaseURL(tc.in); got != tc.want {
			t.Fatalf("BaseURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAccountService_CurrentAccount(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/verify_credentials" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		writeJSON(w, map[string]any{"id": "42", "acct": "me", "bot": false, "display_name": "Me"})
	})
	got, err := NewAccountService(newTestClient(h)).CurrentAccount(context.Background())
	if err != nil {
		t.Fatalf("current account failed: %v", err)
	}
	if got.ID != "42" || got.Acct != "me" {
		t.Fatalf("unexpected account: %+v", got)
	}
}
