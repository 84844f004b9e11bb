package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blogapi/internal/config"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// CategoryService defines the use cases for the category tree.
type CategoryService interface {
	// Tree returns every root category with its nested children.
	Tree(ctx context.Context, trashed model.TrashMode) ([]model.Category, error)

	// List flattens the trees in pre-order and returns one page of them.
	List(ctx context.Context, opts CategoryListOptions) (*model.Pagination[model.Category], error)

	Detail(ctx context.Context, id string) (*model.Category, error)

	// Ancestors returns the category and its ancestors with their count.
	Ancestors(ctx context.Context, id string, q TreeQuery) (*CategoryListResult, error)

	// Descendants returns the category and its descendants with their count.
	Descendants(ctx context.Context, id string, q TreeQuery) (*CategoryListResult, error)

	Create(ctx context.Context, in CreateCategoryInput) (*model.Category, error)
	Update(ctx context.Context, in UpdateCategoryInput) (*model.Category, error)

	// DeleteMulti follows the same trash rules as posts.
	DeleteMulti(ctx context.Context, in DeleteInput) ([]model.Category, error)
	Restore(ctx context.Context, in RestoreInput) ([]model.Category, error)
}

type categoryService struct {
	repo       repository.CategoryRepository
	pagination config.PaginationConfig
}

// NewCategoryService constructs a new CategoryService.
func NewCategoryService(repo repository.CategoryRepository, pagination config.PaginationConfig) CategoryService {
	if pagination.DefaultLimit <= 0 {
		pagination.DefaultLimit = 10
	}
	return &categoryService{repo: repo, pagination: pagination}
}

func validTrash(mode model.TrashMode) error {
	switch mode {
	case "", model.TrashNone, model.TrashAll, model.TrashOnly:
		return nil
	}
	return fieldError("trashed", "must be one of all,only,none")
}

func (s *categoryService) Tree(ctx context.Context, trashed model.TrashMode) (trees []model.Category, err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Tree")
	defer func() { endSpan(span, err) }()

	if err := validTrash(trashed); err != nil {
		return nil, err
	}
	return s.repo.FindTrees(ctx, repository.TreeOptions{Trashed: trashed})
}

func (s *categoryService) List(ctx context.Context, opts CategoryListOptions) (res *model.Pagination[model.Category], err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.List")
	defer func() { endSpan(span, err) }()

	if opts.Page == 0 {
		opts.Page = 1
	}
	if opts.Limit == 0 {
		opts.Limit = s.pagination.DefaultLimit
	}
	if err := validateStruct(opts); err != nil {
		return nil, err
	}
	if s.pagination.MaxLimit > 0 && opts.Limit > s.pagination.MaxLimit {
		opts.Limit = s.pagination.MaxLimit
	}

	trees, err := s.repo.FindTrees(ctx, repository.TreeOptions{Trashed: opts.Trashed})
	if err != nil {
		return nil, err
	}
	flat := repository.FlattenTrees(trees, 0, nil)

	start := pageOffset(opts.Page, opts.Limit)
	if start > len(flat) {
		start = len(flat)
	}
	end := start + opts.Limit
	if end > len(flat) {
		end = len(flat)
	}
	items := flat[start:end]
	return &model.Pagination[model.Category]{
		Items: items,
		Meta:  model.NewPaginateMeta(len(flat), len(items), opts.Page, opts.Limit),
	}, nil
}

func (s *categoryService) Detail(ctx context.Context, id string) (c *model.Category, err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Detail")
	defer func() { endSpan(span, err) }()

	return s.find(ctx, id)
}

func (s *categoryService) find(ctx context.Context, id string) (*model.Category, error) {
	return s.lookup(ctx, id, false)
}

// lookup resolves id, also seeing trashed categories when withTrashed is set.
func (s *categoryService) lookup(ctx context.Context, id string, withTrashed bool) (*model.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fieldError("id", "must be a valid UUID")
	}
	c, err := s.repo.FindByID(ctx, id, withTrashed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("the category %s not exists: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

// findParent resolves a live parent category.
func (s *categoryService) findParent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fieldError("parent", "must be a valid UUID")
	}
	if _, err := s.repo.FindByID(ctx, id, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("category %s: %w", id, ErrParentNotFound)
		}
		return err
	}
	return nil
}

func (s *categoryService) Ancestors(ctx context.Context, id string, q TreeQuery) (res *CategoryListResult, err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Ancestors")
	defer func() { endSpan(span, err) }()

	return s.closure(ctx, id, q, s.repo.FindAncestors, s.repo.CountAncestors)
}

func (s *categoryService) Descendants(ctx context.Context, id string, q TreeQuery) (res *CategoryListResult, err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Descendants")
	defer func() { endSpan(span, err) }()

	return s.closure(ctx, id, q, s.repo.FindDescendants, s.repo.CountDescendants)
}

type (
	closureFinder  func(context.Context, string, repository.TreeOptions) ([]model.Category, error)
	closureCounter func(context.Context, string, repository.TreeOptions) (int, error)
)

func (s *categoryService) closure(ctx context.Context, id string, q TreeQuery, find closureFinder, count closureCounter) (*CategoryListResult, error) {
	if err := validateStruct(q); err != nil {
		return nil, err
	}
	if _, err := s.lookup(ctx, id, q.Trashed.WithTrashed()); err != nil {
		return nil, err
	}
	opts := repository.TreeOptions{Trashed: q.Trashed, Depth: q.Depth}
	items, err := find(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	total, err := count(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	return &CategoryListResult{Items: items, Total: total}, nil
}

func (s *categoryService) Create(ctx context.Context, in CreateCategoryInput) (c *model.Category, err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Create")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Parent != nil {
		if err := s.findParent(ctx, *in.Parent); err != nil {
			return nil, err
		}
	}

	ts := now()
	cat := &model.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		CustomOrder: in.CustomOrder,
		ParentID:    in.Parent,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return s.find(ctx, cat.ID)
}

func (s *categoryService) Update(ctx context.Context, in UpdateCategoryInput) (c *model.Category, err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Update")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, in.ID); err != nil {
		return nil, err
	}
	if in.Parent.Value != nil {
		if *in.Parent.Value == in.ID {
			return nil, ErrInvalidParent
		}
		if err := s.findParent(ctx, *in.Parent.Value); err != nil {
			return nil, err
		}
	}

	changes := repository.CategoryChanges{
		Name:        in.Name,
		CustomOrder: in.CustomOrder,
		ParentSet:   in.Parent.Set,
		ParentID:    in.Parent.Value,
	}
	if err := s.repo.Update(ctx, in.ID, changes); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidParent):
			return nil, ErrInvalidParent
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("the category %s not exists: %w", in.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("db update failed: %w", err)
	}
	return s.find(ctx, in.ID)
}

func (s *categoryService) DeleteMulti(ctx context.Context, in DeleteInput) (items []model.Category, err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.DeleteMulti")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	cats, err := s.repo.FindByIDs(ctx, in.IDs)
	if err != nil {
		return nil, err
	}

	if !in.Trash {
		if err := s.repo.Delete(ctx, categoryIDs(cats)); err != nil {
			return nil, err
		}
		return cats, nil
	}

	var directs, softs []string
	ts := now()
	for i := range cats {
		if cats[i].Trashed() {
			directs = append(directs, cats[i].ID)
			continue
		}
		softs = append(softs, cats[i].ID)
		cats[i].DeletedAt = &ts
	}
	if err := s.repo.Trash(ctx, directs, softs); err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *categoryService) Restore(ctx context.Context, in RestoreInput) (items []model.Category, err error) {
	ctx, span := tracer.Start(ctx, "CategoryService.Restore")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	cats, err := s.repo.FindByIDs(ctx, in.IDs)
	if err != nil {
		return nil, err
	}
	var trashed []string
	for _, c := range cats {
		if c.Trashed() {
			trashed = append(trashed, c.ID)
		}
	}
	if len(trashed) == 0 {
		return []model.Category{}, nil
	}
	if err := s.repo.Restore(ctx, trashed); err != nil {
		return nil, err
	}
	return s.repo.FindByIDs(ctx, trashed)
}

func categoryIDs(cats []model.Category) []string {
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}
