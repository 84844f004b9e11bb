package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last table step; its presence means the
// schema is complete.
const sentinelTable = "public.category_closure"

var steps = []migrationStep{
	{
		Name: "create_extension_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	},
	{
		Name: "create_table_posts",
		SQL: `CREATE TABLE IF NOT EXISTS posts (
  id           UUID         PRIMARY KEY DEFAULT gen_random_uuid(),
  title        VARCHAR(255) NOT NULL,
  body         TEXT         NOT NULL,
  summary      VARCHAR(500) NOT NULL DEFAULT '',
  keywords     TEXT         NOT NULL DEFAULT '',
  published_at TIMESTAMPTZ  NULL,
  custom_order INTEGER      NOT NULL DEFAULT 0 CHECK (custom_order >= 0),
  created_at   TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ  NOT NULL DEFAULT now(),
  deleted_at   TIMESTAMPTZ  NULL
);`,
	},
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id           UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  name         VARCHAR(25) NOT NULL,
  custom_order INTEGER     NOT NULL DEFAULT 0 CHECK (custom_order >= 0),
  parent_id    UUID        NULL REFERENCES categories (id) ON DELETE SET NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  deleted_at   TIMESTAMPTZ NULL
);`,
	},
	{
		Name: "create_table_post_categories",
		SQL: `CREATE TABLE IF NOT EXISTS post_categories (
  post_id     UUID NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
  category_id UUID NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
  PRIMARY KEY (post_id, category_id)
);`,
	},
	{
		Name: "create_table_category_closure",
		SQL: `CREATE TABLE IF NOT EXISTS category_closure (
  ancestor_id   UUID    NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
  descendant_id UUID    NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
  depth         INTEGER NOT NULL CHECK (depth >= 0),
  PRIMARY KEY (ancestor_id, descendant_id)
);`,
	},
	{
		Name: "create_index_posts_deleted_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_posts_deleted_at ON posts (deleted_at);`,
	},
	{
		Name: "create_index_posts_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at);`,
	},
	{
		Name: "create_index_posts_published_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts (published_at);`,
	},
	{
		Name: "create_index_categories_parent_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON categories (parent_id);`,
	},
	{
		Name: "create_index_category_closure_descendant",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_category_closure_descendant ON category_closure (descendant_id);`,
	},
	{
		Name: "create_index_post_categories_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_post_categories_category ON post_categories (category_id);`,
	},
}

// EnsureMigrated checks if the closure table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	entry := log.WithFields(logrus.Fields{
		"component": "database",
		"db_host":   dbHost,
	})

	entry.WithFields(logrus.Fields{"event": "db_migration_check", "status": "starting"}).Info("checking schema")

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		entry.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"status":      "error",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		entry.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"status":      "success",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	entry.WithFields(logrus.Fields{"event": "db_migration_start", "status": "in_progress"}).Info("migrating schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			entry.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		entry.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Debug("migration step applied")
	}

	entry.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("schema migrated")

	return nil
}
