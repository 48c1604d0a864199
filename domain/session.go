package domain

// AccessToken is the decoded password-grant response. It is consumed by login
// and never stored as a whole.
type AccessToken struct {
	AccessToken string
	TokenType   string
	Scope       string
	CreatedAt   int64 // epoch seconds
}

// Credentials is a snapshot of the single active session.
type Credentials struct {
	Server       string
	BearerToken  string
	ClientID     string
	ClientSecret string
}
