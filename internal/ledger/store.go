package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Ledger schema versions, stored in PRAGMA user_version:
//
//	0 - legacy ledger, winners may hold repeated (user_id, prize_id) rows
//	1 - winners unique per (user_id, prize_id)
const currentSchemaVersion = 1

// TimeLayout is the win_time column format.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultLeaderboardLimit is used when Leaderboard is called with limit <= 0.
const DefaultLeaderboardLimit = 10

// Store provides durable storage for users, prizes and win records.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option configures a Store.
type Option func(*Store)

// WithDriver selects the database/sql driver (DriverCGO or DriverPure).
func WithDriver(name string) Option {
	return func(s *Store) { s.driver = name }
}

// WithClock overrides the wall clock used to stamp win_time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRand overrides the random source used by PickRandomUnusedPrize.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rand = r }
}

// Open opens the ledger database at path, creating the file and schema when
// missing and upgrading older ledgers in place. Reopening an existing ledger
// changes nothing.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		driver: DriverCGO,
		now:    time.Now,
		rand:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !IsSupportedDriver(s.driver) {
		return nil, fmt.Errorf("unsupported driver %q", s.driver)
	}

	db, err := sql.Open(s.driver, path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger %s: %w", path, err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps per-connection pragmas (foreign_keys) in force for every query.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure ledger: %w", err)
	}

	s.db = db
	if err := s.CreateSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// CreateSchema creates the tables if they don't exist and runs migrations.
// Repeated calls are no-ops.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create ledger schema: %w", err)
	}
	if err := runMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

// applyPragmas turns on WAL, relaxed fsync, a 5s lock wait and FK checks.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return nil
}

// runMigrations upgrades the ledger from its recorded user_version.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(ctx, db); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}

	return nil
}

// migrateToV1 enforces one win per (user_id, prize_id) on databases whose
// winners table predates the composite key. The earliest row of each
// duplicated pair is kept.
func migrateToV1(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate to v1: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM winners
		WHERE rowid NOT IN (
			SELECT MIN(rowid) FROM winners GROUP BY user_id, prize_id
		)
	`); err != nil {
		return fmt.Errorf("migrate to v1: dedupe winners: %w", err)
	}

	// Fresh databases already have the composite primary key.
	var keyed int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info('winners') WHERE pk > 0",
	).Scan(&keyed); err != nil {
		return fmt.Errorf("migrate to v1: inspect winners: %w", err)
	}
	if keyed == 0 {
		if _, err := tx.ExecContext(ctx, `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_winners_user_prize
			ON winners(user_id, prize_id)
		`); err != nil {
			return fmt.Errorf("migrate to v1: unique index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v1: commit: %w", err)
	}
	return nil
}

// verifyPragma reports whether PRAGMA name currently reads expected.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("read pragma %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
