package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blogapi/internal/model"
)

// now is the clock used for created/updated/deleted timestamps.
var now = func() time.Time { return time.Now().UTC() }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryBuilder collects positional arguments and WHERE conditions.
type queryBuilder struct {
	conds []string
	args  []any
}

// arg appends v and returns its placeholder.
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// list appends every value and returns a comma separated placeholder list.
func (b *queryBuilder) list(vals []string) string {
	ph := make([]string, len(vals))
	for i, v := range vals {
		ph[i] = b.arg(v)
	}
	return strings.Join(ph, ", ")
}

func (b *queryBuilder) where(cond string) {
	if cond != "" {
		b.conds = append(b.conds, cond)
	}
}

func (b *queryBuilder) whereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// trashCond returns the soft-delete predicate for alias under mode.
func trashCond(alias string, mode model.TrashMode) string {
	switch mode {
	case model.TrashAll:
		return ""
	case model.TrashOnly:
		return alias + ".deleted_at IS NOT NULL"
	default:
		return alias + ".deleted_at IS NULL"
	}
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// Keywords are stored as a single comma separated column.
func joinKeywords(k []string) string { return strings.Join(k, ",") }

func splitKeywords(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
