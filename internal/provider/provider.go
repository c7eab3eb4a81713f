package provider

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on data(raw_contact_id, mimetype)
const currentSchemaVersion = 1

// DefaultMaxPayloadBytes is the default per-call payload limit.
const DefaultMaxPayloadBytes = 1 << 20

// Provider is a contacts content provider backed by SQLite.
// Uses SQLite with WAL mode for concurrent read access.
type Provider struct {
	db     *sql.DB
	logger *slog.Logger

	maxPayloadBytes   int
	photoProcessDelay time.Duration

	pending   sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Provider.
type Option func(*Provider)

// WithMaxPayloadBytes sets the per-call payload limit for Apply.
// Zero or negative disables the limit.
func WithMaxPayloadBytes(n int) Option {
	return func(p *Provider) {
		p.maxPayloadBytes = n
	}
}

// WithPhotoProcessDelay makes photo processing run asynchronously after d.
// With zero (the default) a photo is processed before WriteAsset returns.
func WithPhotoProcessDelay(d time.Duration) Option {
	return func(p *Provider) {
		p.photoProcessDelay = d
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Provider, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	p := &Provider{
		db:              db,
		logger:          slog.Default(),
		maxPayloadBytes: DefaultMaxPayloadBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close waits for pending photo processing and closes the database.
// Safe to call more than once.
func (p *Provider) Close() error {
	if p.db == nil {
		return nil
	}
	p.closeOnce.Do(func() {
		p.pending.Wait()
		p.closeErr = p.db.Close()
	})
	return p.closeErr
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Provider methods when available.
func (p *Provider) DB() *sql.DB {
	return p.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes data rows by owner and type. Reads and the selective
// delete on update both filter on these columns.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_data_raw_contact_mimetype
		ON data(raw_contact_id, mimetype)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (p *Provider) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := p.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// background runs fn on its own goroutine after delay; Close waits for it.
func (p *Provider) background(delay time.Duration, fn func()) {
	p.pending.Add(1)
	time.AfterFunc(delay, func() {
		defer p.pending.Done()
		fn()
	})
}
