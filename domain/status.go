package domain

// Visibility values accepted by the remote service. They are not validated
// locally; the remote service rejects unknown values.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
	VisibilityDirect   = "direct"
)

// Account identifies the author of a status.
type Account struct {
	ID   string
	Acct string // Handle, e.g. "alice" or "alice@remote.example"
	Bot  bool
}

// Reblog is the reshared status carried inside a boost.
type Reblog struct {
	Content string // HTML
}

// Status is a single timeline entry as delivered by the remote service.
type Status struct {
	ID         string
	CreatedAt  string // ISO-8601, kept verbatim
	Sensitive  bool
	Visibility string
	Account    Account
	Reblog     *Reblog
	Content    string // HTML
}

// IsBoost reports whether the status reshares another status.
func (s Status) IsBoost() bool {
	return s.Reblog != nil
}

// EffectiveContent returns the reblog content for boosts and the status's own
// content otherwise.
func (s Status) EffectiveContent() string {
	if s.Reblog != nil {
		return s.Reblog.Content
	}
	return s.Content
}

// NewStatus is an outbound publish request.
type NewStatus struct {
	Text        string
	Visibility  string
	Sensitive   bool
	SpoilerText string
}

// PublishResult is what survives of a publish response.
type PublishResult struct {
	ID string
}
