// Package store materializes timeline rows into SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/CrestNiraj12/mastosql/app"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations/*.sql
var migrations embed.FS

var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Store is a relational sink for projected rows.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
	now    func() time.Time
}

// Open connects to dsn with driver and applies pending migrations.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var dialect goose.Dialect
	switch driver {
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	case DriverPostgres:
		dialect = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection keeps ":memory:" databases intact and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
			}
		}
	}

	s := &Store{db: db, driver: driver, logger: logger, now: time.Now}
	if err := s.migrate(ctx, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context, dialect goose.Dialect) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(dialect, s.db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Debug("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get DB version: %w", err)
	}
	s.logger.Info("sink ready", "driver", s.driver, "version", version)
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

const upsertHomeSQL = `INSERT INTO home_timeline
    (toot_id, created_at, sensitive, visibility, acct, account_id, bot, type, content, synced_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (toot_id) DO UPDATE SET
    created_at = excluded.created_at,
    sensitive  = excluded.sensitive,
    visibility = excluded.visibility,
    acct       = excluded.acct,
    account_id = excluded.account_id,
    bot        = excluded.bot,
    type       = excluded.type,
    content    = excluded.content,
    synced_at  = excluded.synced_at`

const upsertAccountSQL = `INSERT INTO account_statuses
    (account_id, id, created_at, sensitive, visibility, acct, type, content, synced_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (account_id, id) DO UPDATE SET
    created_at = excluded.created_at,
    sensitive  = excluded.sensitive,
    visibility = excluded.visibility,
    acct       = excluded.acct,
    type       = excluded.type,
    content    = excluded.content,
    synced_at  = excluded.synced_at`

// UpsertHome writes home rows keyed by status id and returns how many were written.
func (s *Store) UpsertHome(ctx context.Context, rows []app.HomeRow) (int, error) {
	syncedAt := s.now().UTC().Format(time.RFC3339)
	return s.inTx(ctx, upsertHomeSQL, len(rows), func(i int) []any {
		r := rows[i]
		return []any{r.TootID, r.CreatedAt, r.Sensitive, r.Visibility, r.Acct, r.AccountID, r.Bot, r.Type, r.Content, syncedAt}
	})
}

// UpsertAccount writes the statuses of accountID keyed by (account id, status id).
func (s *Store) UpsertAccount(ctx context.Context, accountID string, rows []app.AccountRow) (int, error) {
	syncedAt := s.now().UTC().Format(time.RFC3339)
	return s.inTx(ctx, upsertAccountSQL, len(rows), func(i int) []any {
		r := rows[i]
		return []any{accountID, r.ID, r.CreatedAt, r.Sensitive, r.Visibility, r.Acct, r.Type, r.Content, syncedAt}
	})
}

func (s *Store) inTx(ctx context.Context, query string, n int, args func(int) []any) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(query))
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return 0, fmt.Errorf("upsert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Query runs a read statement and returns its result as a table of strings.
// NULL values stay nil.
func (s *Store) Query(ctx context.Context, query string, args ...any) (app.Table, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return app.Table{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return app.Table{}, fmt.Errorf("columns: %w", err)
	}

	t := app.Table{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return app.Table{}, fmt.Errorf("scan: %w", err)
		}
		row := make([]any, len(cols))
		for i, v := range raw {
			row[i] = stringify(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return app.Table{}, fmt.Errorf("rows: %w", err)
	}
	return t, nil
}

func stringify(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// rebind rewrites "?" placeholders to "$n" for PostgreSQL. Question marks
// inside single-quoted literals are left alone.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
