package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"

	// Registers the executor migrate.NewExecutorFor resolves for this driver.
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
)

// Migrations is the grove migration group for the docseq store.
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
    sequence     BIGINT NOT NULL DEFAULT 0 CHECK (sequence >= 0),
    last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
