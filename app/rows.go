package app

import "github.com/CrestNiraj12/mastosql/domain"

// Values of the "type" column.
const (
	KindBoost = "Boost"
	KindToot  = "Toot"
)

// Column names, in tuple order.
var (
	LoginColumns   = []string{"token_type", "scope", "created_at"}
	HomeColumns    = []string{"toot_id", "created_at", "sensitive", "visibility", "acct", "account_id", "bot", "type", "content"}
	AccountColumns = []string{"id", "created_at", "sensitive", "visibility", "acct", "type", "content"}
)

// LoginRow is the single row returned by a successful login.
type LoginRow struct {
	TokenType string `json:"token_type" yaml:"token_type"`
	Scope     string `json:"scope" yaml:"scope"`
	CreatedAt int64  `json:"created_at" yaml:"created_at"`
}

// Values returns the row in LoginColumns order.
func (r LoginRow) Values() []any {
	return []any{r.TokenType, r.Scope, r.CreatedAt}
}

// HomeRow is one home-timeline tuple.
type HomeRow struct {
	TootID     string `json:"toot_id" yaml:"toot_id"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
	Sensitive  bool   `json:"sensitive" yaml:"sensitive"`
	Visibility string `json:"visibility" yaml:"visibility"`
	Acct       string `json:"acct" yaml:"acct"`
	AccountID  string `json:"account_id" yaml:"account_id"`
	Bot        bool   `json:"bot" yaml:"bot"`
	Type       string `json:"type" yaml:"type"`
	Content    string `json:"content" yaml:"content"`
}

// Values returns the row in HomeColumns order.
func (r HomeRow) Values() []any {
	return []any{r.TootID, r.CreatedAt, r.Sensitive, r.Visibility, r.Acct, r.AccountID, r.Bot, r.Type, r.Content}
}

// AccountRow is one account-timeline tuple. Unlike HomeRow it carries
// neither the author's account id nor the bot flag; existing consumers
// depend on the seven-column shape.
type AccountRow struct {
	ID         string `json:"id" yaml:"id"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
	Sensitive  bool   `json:"sensitive" yaml:"sensitive"`
	Visibility string `json:"visibility" yaml:"visibility"`
	Acct       string `json:"acct" yaml:"acct"`
	Type       string `json:"type" yaml:"type"`
	Content    string `json:"content" yaml:"content"`
}

// Values returns the row in AccountColumns order.
func (r AccountRow) Values() []any {
	return []any{r.ID, r.CreatedAt, r.Sensitive, r.Visibility, r.Acct, r.Type, r.Content}
}

// Kind classifies a status as a boost or an original toot.
func Kind(s domain.Status) string {
	if s.IsBoost() {
		return KindBoost
	}
	return KindToot
}

// ProjectHome flattens a status into a home-timeline row.
func ProjectHome(s domain.Status) HomeRow {
	return HomeRow{
		TootID:     s.ID,
		CreatedAt:  s.CreatedAt,
		Sensitive:  s.Sensitive,
		Visibility: s.Visibility,
		Acct:       s.Account.Acct,
		AccountID:  s.Account.ID,
		Bot:        s.Account.Bot,
		Type:       Kind(s),
		Content:    s.EffectiveContent(),
	}
}

// ProjectAccount flattens a status into an account-timeline row.
func ProjectAccount(s domain.Status) AccountRow {
	return AccountRow{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		Sensitive:  s.Sensitive,
		Visibility: s.Visibility,
		Acct:       s.Account.Acct,
		Type:       Kind(s),
		Content:    s.EffectiveContent(),
	}
}

// Table is a host-neutral row set.
type Table struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

type valuer interface {
	Values() []any
}

func tableOf[R valuer](columns []string, rows []R) Table {
	t := Table{Columns: columns, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.Values())
	}
	return t
}

// LoginTable wraps a login row.
func LoginTable(r LoginRow) Table { return tableOf(LoginColumns, []LoginRow{r}) }

// HomeTable wraps home rows.
func HomeTable(rows []HomeRow) Table { return tableOf(HomeColumns, rows) }

// AccountTable wraps account rows.
func AccountTable(rows []AccountRow) Table { return tableOf(AccountColumns, rows) }

// ScalarTable wraps a single string result, such as a status id.
func ScalarTable(column, value string) Table {
	return Table{Columns: []string{column}, Rows: [][]any{{value}}}
}
