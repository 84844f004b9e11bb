package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const (
	categoryColumns = `c.id, c.name, c.custom_order, c.parent_id, c.created_at, c.updated_at, c.deleted_at`
	parentColumns   = `pa.id, pa.name, pa.custom_order, pa.parent_id, pa.created_at, pa.updated_at, pa.deleted_at`
	categoryOrder   = ` ORDER BY c.custom_order ASC, c.created_at ASC, c.id ASC`
)

// CategoryPostgres is a closure-table implementation of
// repository.CategoryRepository. Every category owns a self link of depth 0
// and one link per ancestor, depth being the distance to that ancestor.
type CategoryPostgres struct {
	db *sql.DB
}

// NewCategoryPostgres creates a new CategoryPostgres repository.
func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

// scanCategory scans categoryColumns, preceded by any prefix destinations.
func scanCategory(s rowScanner, prefix ...any) (model.Category, error) {
	var (
		c       model.Category
		parent  sql.NullString
		deleted sql.NullTime
	)
	dest := append(prefix, &c.ID, &c.Name, &c.CustomOrder, &parent, &c.CreatedAt, &c.UpdatedAt, &deleted)
	if err := s.Scan(dest...); err != nil {
		return c, err
	}
	c.ParentID = nullString(parent)
	c.DeletedAt = nullTime(deleted)
	return c, nil
}

func (r *CategoryPostgres) queryCategories(ctx context.Context, q execer, query string, args ...any) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID fetches a category joined with its parent.
func (r *CategoryPostgres) FindByID(ctx context.Context, id string, withTrashed bool) (*model.Category, error) {
	q := `SELECT ` + categoryColumns + `, ` + parentColumns + `
		FROM categories c
		LEFT JOIN categories pa ON pa.id = c.parent_id
		WHERE c.id = $1`
	if !withTrashed {
		q += ` AND c.deleted_at IS NULL`
	}

	var (
		c       model.Category
		parent  sql.NullString
		deleted sql.NullTime

		pID, pName, pParent sql.NullString
		pOrder              sql.NullInt64
		pCreated, pUpdated  sql.NullTime
		pDeleted            sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Name, &c.CustomOrder, &parent, &c.CreatedAt, &c.UpdatedAt, &deleted,
		&pID, &pName, &pOrder, &pParent, &pCreated, &pUpdated, &pDeleted,
	); err != nil {
		return nil, err
	}
	c.ParentID = nullString(parent)
	c.DeletedAt = nullTime(deleted)
	if pID.Valid {
		c.Parent = &model.Category{
			ID:          pID.String,
			Name:        pName.String,
			CustomOrder: int(pOrder.Int64),
			ParentID:    nullString(pParent),
			CreatedAt:   pCreated.Time,
			UpdatedAt:   pUpdated.Time,
			DeletedAt:   nullTime(pDeleted),
		}
	}
	return &c, nil
}

// FindByIDs fetches categories by ID regardless of their deleted mark.
func (r *CategoryPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Category, error) {
	if len(ids) == 0 {
		return []model.Category{}, nil
	}
	b := &queryBuilder{}
	q := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.id IN (` + b.list(ids) + `)` + categoryOrder
	return r.queryCategories(ctx, r.db, q, b.args...)
}

// FindRoots returns categories without a parent.
func (r *CategoryPostgres) FindRoots(ctx context.Context, opts repository.TreeOptions) ([]model.Category, error) {
	b := &queryBuilder{}
	b.where("c.parent_id IS NULL")
	b.where(trashCond("c", opts.Trashed))
	q := `SELECT ` + categoryColumns + ` FROM categories c` + b.whereClause() + categoryOrder
	return r.queryCategories(ctx, r.db, q, b.args...)
}

// closureQuery builds the descendants (or ancestors) selection of id.
// selectList is placed after SELECT; the node itself is always part of the set.
func closureQuery(selectList, id string, descendants bool, opts repository.TreeOptions) (string, []any) {
	b := &queryBuilder{}
	join := `JOIN category_closure cc ON cc.ancestor_id = c.id`
	anchor := "cc.descendant_id = "
	if descendants {
		join = `JOIN category_closure cc ON cc.descendant_id = c.id`
		anchor = "cc.ancestor_id = "
	}
	b.where(anchor + b.arg(id))
	if opts.Depth > 0 {
		b.where("cc.depth <= " + b.arg(opts.Depth))
	}
	b.where(trashCond("c", opts.Trashed))
	return `SELECT ` + selectList + ` FROM categories c ` + join + b.whereClause(), b.args
}

// FindDescendants returns the category and its descendants.
func (r *CategoryPostgres) FindDescendants(ctx context.Context, id string, opts repository.TreeOptions) ([]model.Category, error) {
	q, args := closureQuery(categoryColumns, id, true, opts)
	return r.queryCategories(ctx, r.db, q+categoryOrder, args...)
}

// FindAncestors returns the category and its ancestors.
func (r *CategoryPostgres) FindAncestors(ctx context.Context, id string, opts repository.TreeOptions) ([]model.Category, error) {
	q, args := closureQuery(categoryColumns, id, false, opts)
	return r.queryCategories(ctx, r.db, q+categoryOrder, args...)
}

// CountDescendants counts the category and its descendants.
func (r *CategoryPostgres) CountDescendants(ctx context.Context, id string, opts repository.TreeOptions) (int, error) {
	q, args := closureQuery("COUNT(*)", id, true, opts)
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// CountAncestors counts the category and its ancestors.
func (r *CategoryPostgres) CountAncestors(ctx context.Context, id string, opts repository.TreeOptions) (int, error) {
	q, args := closureQuery("COUNT(*)", id, false, opts)
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// FindTrees loads the roots and nests each root's descendants under it.
func (r *CategoryPostgres) FindTrees(ctx context.Context, opts repository.TreeOptions) ([]model.Category, error) {
	roots, err := r.FindRoots(ctx, opts)
	if err != nil {
		return nil, err
	}
	trees := make([]model.Category, 0, len(roots))
	for _, root := range roots {
		rows, err := r.FindDescendants(ctx, root.ID, opts)
		if err != nil {
			return nil, fmt.Errorf("descendants of %s: %w", root.ID, err)
		}
		if tree, ok := repository.NestTree(root.ID, rows); ok {
			trees = append(trees, tree)
		}
	}
	return trees, nil
}

// Create inserts a category row, its self link and one link per ancestor of
// its parent.
func (r *CategoryPostgres) Create(ctx context.Context, c *model.Category) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
			INSERT INTO categories (id, name, custom_order, parent_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, q, c.ID, c.Name, c.CustomOrder, c.ParentID, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		const link = `
			INSERT INTO category_closure (ancestor_id, descendant_id, depth)
			SELECT cc.ancestor_id, $1::uuid, cc.depth + 1 FROM category_closure cc WHERE cc.descendant_id = $2::uuid
			UNION ALL SELECT $1::uuid, $1::uuid, 0
		`
		if _, err := tx.ExecContext(ctx, link, c.ID, c.ParentID); err != nil {
			return fmt.Errorf("insert closure: %w", err)
		}
		return nil
	})
}

// Update applies a partial update. A parent change relinks the whole subtree.
func (r *CategoryPostgres) Update(ctx context.Context, id string, c repository.CategoryChanges) error {
	b := &queryBuilder{}
	sets := []string{}
	if c.Name != nil {
		sets = append(sets, "name = "+b.arg(*c.Name))
	}
	if c.CustomOrder != nil {
		sets = append(sets, "custom_order = "+b.arg(*c.CustomOrder))
	}
	sets = append(sets, "updated_at = "+b.arg(now()))
	q := `UPDATE categories SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + b.arg(id)

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q, b.args...)
		if err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}
		if !c.ParentSet {
			return nil
		}
		if c.ParentID != nil {
			var cyclic bool
			const check = `SELECT EXISTS (SELECT 1 FROM category_closure WHERE ancestor_id = $1 AND descendant_id = $2)`
			if err := tx.QueryRowContext(ctx, check, id, *c.ParentID).Scan(&cyclic); err != nil {
				return fmt.Errorf("check parent: %w", err)
			}
			if cyclic {
				return repository.ErrInvalidParent
			}
		}
		return moveSubtree(ctx, tx, id, c.ParentID)
	})
}

// moveSubtree detaches the subtree rooted at id from its current ancestors
// and attaches it below parentID (or at the root level when nil).
func moveSubtree(ctx context.Context, tx execer, id string, parentID *string) error {
	const detach = `
		DELETE FROM category_closure
		WHERE descendant_id IN (SELECT descendant_id FROM category_closure WHERE ancestor_id = $1)
		  AND ancestor_id IN (SELECT ancestor_id FROM category_closure WHERE descendant_id = $1 AND ancestor_id <> $1)
	`
	if _, err := tx.ExecContext(ctx, detach, id); err != nil {
		return fmt.Errorf("detach subtree: %w", err)
	}
	if parentID != nil {
		const attach = `
			INSERT INTO category_closure (ancestor_id, descendant_id, depth)
			SELECT super.ancestor_id, sub.descendant_id, super.depth + sub.depth + 1
			FROM category_closure super
			CROSS JOIN category_closure sub
			WHERE super.descendant_id = $1 AND sub.ancestor_id = $2
		`
		if _, err := tx.ExecContext(ctx, attach, *parentID, id); err != nil {
			return fmt.Errorf("attach subtree: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE categories SET parent_id = $1, updated_at = $2 WHERE id = $3`, parentID, now(), id); err != nil {
		return fmt.Errorf("set parent: %w", err)
	}
	return nil
}

// liftChildren moves the direct children of id to id's own parent.
func liftChildren(ctx context.Context, tx execer, id string) error {
	var parent sql.NullString
	if err := tx.QueryRowContext(ctx, `SELECT parent_id FROM categories WHERE id = $1`, id).Scan(&parent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load parent of %s: %w", id, err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM categories WHERE parent_id = $1`, id)
	if err != nil {
		return fmt.Errorf("load children of %s: %w", id, err)
	}
	var children []string
	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			rows.Close()
			return err
		}
		children = append(children, child)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, child := range children {
		if err := moveSubtree(ctx, tx, child, nullString(parent)); err != nil {
			return err
		}
	}
	return nil
}

// Delete lifts children then removes the rows; closure and post links cascade.
func (r *CategoryPostgres) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error { return deleteCategories(ctx, tx, ids) })
}

// Trash removes hardIDs permanently and stamps deleted_at on softIDs, in one
// transaction. Children of every affected node are lifted first.
func (r *CategoryPostgres) Trash(ctx context.Context, hardIDs, softIDs []string) error {
	if len(hardIDs) == 0 && len(softIDs) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := deleteCategories(ctx, tx, hardIDs); err != nil {
			return err
		}
		return softDeleteCategories(ctx, tx, softIDs)
	})
}

func deleteCategories(ctx context.Context, tx execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if err := liftChildren(ctx, tx, id); err != nil {
			return err
		}
	}
	b := &queryBuilder{}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id IN (`+b.list(ids)+`)`, b.args...); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	return nil
}

func softDeleteCategories(ctx context.Context, tx execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if err := liftChildren(ctx, tx, id); err != nil {
			return err
		}
	}
	b := &queryBuilder{}
	ts := b.arg(now())
	q := `UPDATE categories SET deleted_at = ` + ts + ` WHERE id IN (` + b.list(ids) + `) AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, q, b.args...); err != nil {
		return fmt.Errorf("soft delete categories: %w", err)
	}
	return nil
}

// Restore clears deleted_at.
func (r *CategoryPostgres) Restore(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	b := &queryBuilder{}
	_, err := r.db.ExecContext(ctx, `UPDATE categories SET deleted_at = NULL WHERE id IN (`+b.list(ids)+`)`, b.args...)
	return err
}
