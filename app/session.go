package app

import "github.com/CrestNiraj12/mastosql/domain"

// SessionStore is the connector's credential store.
type SessionStore interface {
	Get(key string) string
	Set(key, value string) string
	CommitSession(server, token string)
	Credentials() domain.Credentials
}
