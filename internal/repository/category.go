package repository

import (
	"context"

	"blogapi/internal/model"
)

// TreeOptions tune closure-table queries.
type TreeOptions struct {
	Trashed model.TrashMode
	// Depth bounds the closure distance from the start node. Zero means
	// unbounded.
	Depth int
}

// CategoryChanges is a partial update of a category. Nil fields are left
// untouched.
type CategoryChanges struct {
	Name        *string
	CustomOrder *int
	// ParentSet marks ParentID as present; a nil ParentID then moves the
	// category to the root level.
	ParentSet bool
	ParentID  *string
}

// CategoryRepository is the closure-table backed category store.
type CategoryRepository interface {
	// FindByID returns a category with its parent, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string, withTrashed bool) (*model.Category, error)

	// FindByIDs returns the categories among ids, soft-deleted ones included.
	FindByIDs(ctx context.Context, ids []string) ([]model.Category, error)

	// FindRoots returns top level categories ordered by custom order.
	FindRoots(ctx context.Context, opts TreeOptions) ([]model.Category, error)

	// FindDescendants returns the category and all of its descendants.
	FindDescendants(ctx context.Context, id string, opts TreeOptions) ([]model.Category, error)

	// FindAncestors returns the category and all of its ancestors.
	FindAncestors(ctx context.Context, id string, opts TreeOptions) ([]model.Category, error)

	// CountDescendants counts the rows FindDescendants would return.
	CountDescendants(ctx context.Context, id string, opts TreeOptions) (int, error)

	// CountAncestors counts the rows FindAncestors would return.
	CountAncestors(ctx context.Context, id string, opts TreeOptions) (int, error)

	// FindTrees returns every root with its subtree nested in Children.
	FindTrees(ctx context.Context, opts TreeOptions) ([]model.Category, error)

	// Create inserts the category and its closure links.
	Create(ctx context.Context, c *model.Category) error

	// Update applies changes, relinking the subtree when the parent moves.
	Update(ctx context.Context, id string, changes CategoryChanges) error

	// Delete permanently removes categories, lifting their children to the
	// removed node's parent first.
	Delete(ctx context.Context, ids []string) error

	// Trash permanently removes hardIDs and soft deletes softIDs atomically.
	Trash(ctx context.Context, hardIDs, softIDs []string) error

	// Restore clears the deleted mark of categories.
	Restore(ctx context.Context, ids []string) error
}
