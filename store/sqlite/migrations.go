package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"

	// Registers the executor migrate.NewExecutorFor resolves for this driver.
	_ "github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate"
)

// Migrations is the grove migration group for the docseq store (SQLite).
var Migrations = migrate.NewGroup("docseq")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_docseq_counters",
			Version: "20250601000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS docseq_counters (
    "key"        TEXT PRIMARY KEY,
    prefix       TEXT NOT NULL DEFAULT '',
    sequence     INTEGER NOT NULL DEFAULT 0 CHECK (sequence >= 0),
    last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_docseq_counters_prefix ON docseq_counters (prefix);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS docseq_counters`)
				return err
			},
		},
	)
}
