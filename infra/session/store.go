// Package session holds the connector's credential store.
//
// A Store carries exactly one active session (server + bearer token) at a
// time. It is safe for concurrent use, but concurrent logins race: the last
// successful login wins and every later call uses its token.
package session

import (
	"os"
	"sync"

	"github.com/CrestNiraj12/mastosql/domain"
)

// Well-known keys.
const (
	KeyClientID     = "MASTO_CLIENT_ID"
	KeyClientSecret = "MASTO_CLIENT_SECRET"
	KeyServer       = "MASTO_SERVER"
	KeyBearer       = "MASTO_BEARER"
)

// LookupFunc resolves keys the store does not hold itself.
type LookupFunc func(key string) (string, bool)

// Store is an in-memory key/value credential store. Nothing is persisted
// beyond the lifetime of the process.
type Store struct {
	mu       sync.RWMutex
	values   map[string]string
	fallback LookupFunc
}

// NewStore creates an empty store with no fallback.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// NewEnvStore creates a store that falls back to the process environment for
// credential keys that were never set. Other variables, such as database
// DSNs, are not readable through the store. The environment itself is never
// modified.
func NewEnvStore() *Store {
	s := NewStore()
	s.fallback = CredentialEnv
	return s
}

// CredentialEnv looks up the four credential keys in the process environment
// and reports every other key as unset.
func CredentialEnv(key string) (string, bool) {
	switch key {
	case KeyClientID, KeyClientSecret, KeyServer, KeyBearer:
		return os.LookupEnv(key)
	}
	return "", false
}

// WithFallback replaces the lookup used for unset keys.
func (s *Store) WithFallback(fn LookupFunc) *Store {
	s.mu.Lock()
	s.fallback = fn
	s.mu.Unlock()
	return s
}

// Get returns the value for key, or "" when unset.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(key)
}

func (s *Store) getLocked(key string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	if s.fallback != nil {
		if v, ok := s.fallback(key); ok {
			return v
		}
	}
	return ""
}

// Set stores value under key and returns what a subsequent Get would return.
func (s *Store) Set(key, value string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.getLocked(key)
}

// CommitSession replaces server and bearer token together.
func (s *Store) CommitSession(server, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyServer] = server
	s.values[KeyBearer] = token
}

// Credentials returns a consistent snapshot of the session keys.
func (s *Store) Credentials() domain.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Credentials{
		Server:       s.getLocked(KeyServer),
		BearerToken:  s.getLocked(KeyBearer),
		ClientID:     s.getLocked(KeyClientID),
		ClientSecret: s.getLocked(KeyClientSecret),
	}
}
