package session

import (
	"os"
	"sync"
	"testing"
)

func TestStore_SetThenGet(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "plain", key: "K", value: "v"},
		{name: "empty value", key: "EMPTY", value: ""},
		{name: "server key", key: KeyServer, value: "example.social"},
		{name: "unicode", key: "note", value: "héllo ✓"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore()
			if got := s.Set(tc.key, tc.value); got != tc.value {
				t.Fatalf("set returned %q, want %q", got, tc.value)
			}
			if got := s.Get(tc.key); got != tc.value {
				t.Fatalf("get returned %q, want %q", got, tc.value)
			}
		})
	}
}

func TestStore_UnsetKeyIsEmpty(t *testing.T) {
	s := NewStore()
	if got := s.Get("NOPE"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestStore_EmptyValueShadowsFallback(t *testing.T) {
	s := NewStore().WithFallback(func(key string) (string, bool) {
		return "from-env", true
	})
	if got := s.Get(KeyClientID); got != "from-env" {
		t.Fatalf("expected fallback value, got %q", got)
	}
	s.Set(KeyClientID, "")
	if got := s.Get(KeyClientID); got != "" {
		t.Fatalf("explicit empty value must win over fallback, got %q", got)
	}
}

func TestNewEnvStore_ReadsEnvironmentWithoutWriting(t *testing.T) {
	t.Setenv(KeyClientSecret, "sekrit")
	t.Setenv(KeyServer, "env.example")
	s := NewEnvStore()
	if got := s.Get(KeyClientSecret); got != "sekrit" {
		t.Fatalf("expected env fallback, got %q", got)
	}

	if got := s.Set(KeyServer, "example.social"); got != "example.social" {
		t.Fatalf("stored value must shadow env, got %q", got)
	}
	if os.Getenv(KeyServer) != "env.example" {
		t.Fatalf("Set must not modify the process environment")
	}
}

func TestNewEnvStore_OnlyExposesCredentialKeys(t *testing.T) {
	t.Setenv("MASTOSQL_DB_DSN", "postgres://user:secret@db/masto")
	t.Setenv(KeyBearer, "env-token")
	s := NewEnvStore()
	if got := s.Get("MASTOSQL_DB_DSN"); got != "" {
		t.Fatalf("non-credential env must not leak, got %q", got)
	}
	if got := s.Get(KeyBearer); got != "env-token" {
		t.Fatalf("expected credential fallback, got %q", got)
	}
	if got := s.Set("MASTOSQL_DB_DSN", "stored"); got != "stored" {
		t.Fatalf("stored values stay readable for any key, got %q", got)
	}
}

func TestStore_CommitSessionAndCredentials(t *testing.T) {
	s := NewStore()
	s.Set(KeyClientID, "cid")
	s.Set(KeyClientSecret, "csec")
	s.CommitSession("example.social", "tok")

	got := s.Credentials()
	if got.Server != "example.social" || got.BearerToken != "tok" {
		t.Fatalf("unexpected session: %#v", got)
	}
	if got.ClientID != "cid" || got.ClientSecret != "csec" {
		t.Fatalf("unexpected client credentials: %#v", got)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.CommitSession("a.example", "tok")
			_ = s.Credentials()
			_ = s.Get(KeyBearer)
		}()
	}
	wg.Wait()
	if s.Get(KeyBearer) != "tok" {
		t.Fatalf("unexpected bearer after concurrent commits")
	}
}
