package repository

import (
	"context"
	"time"

	"blogapi/internal/model"
)

// PostQuery filters and orders a post listing.
type PostQuery struct {
	PageQuery
	Trashed     model.TrashMode
	IsPublished *bool
	OrderBy     model.PostOrder
	// CategoryID restricts the listing to posts of this category or any of
	// its descendants.
	CategoryID string
	IDs        []string
}

// PostChanges is a partial update of a post. Nil fields are left untouched.
type PostChanges struct {
	Title       *string
	Body        *string
	Summary     *string
	Keywords    *[]string
	CustomOrder *int
	// PublishedSet marks PublishedAt as present; a nil PublishedAt then
	// unpublishes the post.
	PublishedSet bool
	PublishedAt  *time.Time
	// CategoryIDs replaces the post's categories when non-nil.
	CategoryIDs *[]string
}

// PostRepository defines data access for posts using SQL queries only.
type PostRepository interface {
	// List returns a page of posts with their categories and the total row
	// count matching the filter.
	List(ctx context.Context, q PostQuery) (*PageResult[model.Post], error)

	// FindByID returns a post with its categories, or sql.ErrNoRows.
	// Soft-deleted posts are found only when withTrashed is set.
	FindByID(ctx context.Context, id string, withTrashed bool) (*model.Post, error)

	// FindByIDs returns the posts among ids, soft-deleted ones included.
	FindByIDs(ctx context.Context, ids []string) ([]model.Post, error)

	// Create inserts the post and links it to categoryIDs.
	Create(ctx context.Context, post *model.Post, categoryIDs []string) error

	// Update applies changes to the post with the given ID.
	Update(ctx context.Context, id string, changes PostChanges) error

	// Delete permanently removes posts.
	Delete(ctx context.Context, ids []string) error

	// Trash permanently removes hardIDs and soft deletes softIDs atomically.
	Trash(ctx context.Context, hardIDs, softIDs []string) error

	// Restore clears the deleted mark of posts.
	Restore(ctx context.Context, ids []string) error
}
