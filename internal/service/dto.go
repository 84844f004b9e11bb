package service

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"blogapi/internal/model"
)

// Nullable is a JSON field that tells an absent value (Set false) from an
// explicit null (Set true, Value nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Null returns a present, null value.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

// Some returns a present value.
func Some[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// PostListOptions is the validated query of a post listing.
type PostListOptions struct {
	Page        int             `json:"page" validate:"min=1"`
	Limit       int             `json:"limit" validate:"min=1"`
	Trashed     model.TrashMode `json:"trashed" validate:"omitempty,oneof=all only none"`
	IsPublished *bool           `json:"isPublished"`
	OrderBy     model.PostOrder `json:"orderBy" validate:"omitempty,oneof=createdAt updatedAt publishedAt custom"`
	Category    string          `json:"category" validate:"omitempty,uuid"`
}

// pageOffset is the number of items before page. It saturates at
// math.MaxInt where (page-1)*limit would overflow.
func pageOffset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// CreatePostInput is the body of a post creation request.
type CreatePostInput struct {
	Title       string              `json:"title" validate:"required,max=255"`
	Body        string              `json:"body" validate:"required"`
	Summary     string              `json:"summary" validate:"max=500"`
	PublishedAt Nullable[time.Time] `json:"publishedAt"`
	Keywords    []string            `json:"keywords" validate:"omitempty,dive,max=20,excludesall=0x2C"`
	Categories  []string            `json:"categories" validate:"omitempty,dive,uuid"`
	CustomOrder int                 `json:"customOrder" validate:"min=0"`
}

// UpdatePostInput is the body of a partial post update. Nil pointers and nil
// slices leave the field untouched.
type UpdatePostInput struct {
	ID          string              `json:"id" validate:"required,uuid"`
	Title       *string             `json:"title" validate:"omitnil,max=255"`
	Body        *string             `json:"body"`
	Summary     *string             `json:"summary" validate:"omitnil,max=500"`
	PublishedAt Nullable[time.Time] `json:"publishedAt"`
	Keywords    []string            `json:"keywords" validate:"omitempty,dive,max=20,excludesall=0x2C"`
	Categories  []string            `json:"categories" validate:"omitempty,dive,uuid"`
	CustomOrder *int                `json:"customOrder" validate:"omitnil,min=0"`
}

// DeleteInput selects rows for a bulk delete. With Trash set live rows are
// soft deleted and already trashed rows are removed for good.
type DeleteInput struct {
	IDs   []string `json:"ids" validate:"required,min=1,dive,uuid"`
	Trash bool     `json:"trash"`
}

// RestoreInput selects trashed rows to restore.
type RestoreInput struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// CategoryListOptions is the validated query of a flattened category listing.
type CategoryListOptions struct {
	Page    int             `json:"page" validate:"min=1"`
	Limit   int             `json:"limit" validate:"min=1"`
	Trashed model.TrashMode `json:"trashed" validate:"omitempty,oneof=all only none"`
}

// TreeQuery tunes ancestor and descendant lookups.
type TreeQuery struct {
	Trashed model.TrashMode `json:"trashed" validate:"omitempty,oneof=all only none"`
	Depth   int             `json:"depth" validate:"min=0"`
}

// CreateCategoryInput is the body of a category creation request.
type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,max=25"`
	Parent      *string `json:"parent" validate:"omitnil,uuid"`
	CustomOrder int     `json:"customOrder" validate:"min=0"`
}

// UpdateCategoryInput is the body of a partial category update. A null
// parent moves the category to the root level.
type UpdateCategoryInput struct {
	ID          string           `json:"id" validate:"required,uuid"`
	Name        *string          `json:"name" validate:"omitnil,max=25"`
	Parent      Nullable[string] `json:"parent"`
	CustomOrder *int             `json:"customOrder" validate:"omitnil,min=0"`
}

// CategoryListResult is a closure lookup with its total count.
type CategoryListResult struct {
	Items []model.Category `json:"data"`
	Total int              `json:"total"`
}
