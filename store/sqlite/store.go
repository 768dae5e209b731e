package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/counter"
	seqstore "github.com/xraph/docseq/store"
)

// compile-time interface check
var _ seqstore.Store = (*Store)(nil)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store implements store.Store using SQLite via Grove ORM.
//
// SQLite serializes writers on the database lock, so the upsert statements
// below are atomic without an explicit transaction. Concurrent writers wait
// for that lock only when the connection sets a busy timeout; without one
// they fail immediately with SQLITE_BUSY. Open the driver with it in the DSN:
//
//	sdb := sqlitedriver.New()
//	err := sdb.Open(ctx, "file:docseq.db?_pragma=busy_timeout(5000)")
//	db, err := grove.Open(sdb)
//	s := sqlite.New(db)
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("docseq/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("docseq/sqlite: %w: %w", docseq.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Counter Store ====================

func (s *Store) NextValue(ctx context.Context, key, prefix string) (int64, error) {
	var seq int64
	err := s.sdb.NewRaw(`
		INSERT INTO docseq_counters ("key", prefix, sequence, last_updated)
		VALUES (?, ?, 1, ?)
		ON CONFLICT ("key") DO UPDATE
		SET sequence = docseq_counters.sequence + 1,
		    last_updated = excluded.last_updated
		RETURNING sequence
	`, key, prefix, now()).Scan(ctx, &seq)
	if err != nil {
		return 0, fmt.Errorf("docseq/sqlite: next value: %w", err)
	}
	return seq, nil
}

func (s *Store) PeekValue(ctx context.Context, key string) (int64, error) {
	var seq int64
	err := s.sdb.NewRaw(`
		SELECT COALESCE(MAX(sequence), 0) FROM docseq_counters WHERE "key" = ?
	`, key).Scan(ctx, &seq)
	if err != nil {
		return 0, fmt.Errorf("docseq/sqlite: peek value: %w", err)
	}
	return seq + 1, nil
}

func (s *Store) SeedCounter(ctx context.Context, key, prefix string, baseline int64) (int64, error) {
	var seq int64
	err := s.sdb.NewRaw(`
		INSERT INTO docseq_counters ("key", prefix, sequence, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT ("key") DO UPDATE
		SET sequence = MAX(docseq_counters.sequence, excluded.sequence),
		    last_updated = CASE
		        WHEN excluded.sequence > docseq_counters.sequence THEN excluded.last_updated
		        ELSE docseq_counters.last_updated
		    END
		RETURNING sequence
	`, key, prefix, baseline, now()).Scan(ctx, &seq)
	if err != nil {
		return 0, fmt.Errorf("docseq/sqlite: seed counter: %w", err)
	}
	return seq, nil
}

func (s *Store) GetCounter(ctx context.Context, key string) (*counter.Counter, error) {
	m := new(counterModel)
	err := s.sdb.NewSelect(m).
		Where(`"key" = ?`, key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, docseq.ErrCounterNotFound
		}
		return nil, fmt.Errorf("docseq/sqlite: get counter: %w", err)
	}
	return fromCounterModel(m), nil
}

func (s *Store) ListCounters(ctx context.Context, opts counter.ListOpts) ([]*counter.Counter, error) {
	var models []counterModel
	q := s.sdb.NewSelect(&models)

	if opts.KeyPrefix != "" {
		q = q.Where(`instr("key", ?) = 1`, opts.KeyPrefix)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr(`"key" ASC`)

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("docseq/sqlite: list counters: %w", err)
	}

	result := make([]*counter.Counter, len(models))
	for i := range models {
		result[i] = fromCounterModel(&models[i])
	}
	return result, nil
}

// ==================== Backfill ====================

// NumberSource returns a backfill source that streams the values of column
// in table, one row at a time. Both names are interpolated into SQL and must
// be plain identifiers. NULLs are yielded as "".
func (s *Store) NumberSource(table, column string) backfill.Source {
	return backfill.SourceFunc(func(ctx context.Context, fn func(string) error) error {
		if !identPattern.MatchString(table) || !identPattern.MatchString(column) {
			return fmt.Errorf("docseq/sqlite: number source: invalid identifier %q.%q", table, column)
		}

		query := fmt.Sprintf(`SELECT COALESCE(CAST(%s AS TEXT), '') FROM %s`, column, table)
		rows, err := s.sdb.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("docseq/sqlite: number source %s: %w", table, err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var n string
			if err := rows.Scan(&n); err != nil {
				return fmt.Errorf("docseq/sqlite: number source scan: %w", err)
			}
			if err := fn(n); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
