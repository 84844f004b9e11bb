package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/config"
	"blogapi/internal/markup"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// now is the service clock, replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// summaryMax is the length of derived summaries, matching the summary limit.
const summaryMax = 500

// PostService defines the use cases for handling posts.
type PostService interface {
	// Paginate returns one page of posts filtered by trash mode, publication
	// state and category, in the requested order.
	Paginate(ctx context.Context, opts PostListOptions) (*model.Pagination[model.Post], error)

	// Detail returns a single live post by its ID.
	Detail(ctx context.Context, id string) (*model.Post, error)

	// Create stores a new post and returns it as Detail would.
	Create(ctx context.Context, in CreatePostInput) (*model.Post, error)

	// Update applies a partial update and returns the updated post.
	Update(ctx context.Context, in UpdatePostInput) (*model.Post, error)

	// Delete permanently removes a live post and returns it.
	Delete(ctx context.Context, id string) (*model.Post, error)

	// DeleteMulti removes posts in bulk. See DeleteInput for trash semantics.
	DeleteMulti(ctx context.Context, in DeleteInput) ([]model.Post, error)

	// Restore brings trashed posts back and returns them.
	Restore(ctx context.Context, in RestoreInput) ([]model.Post, error)
}

// postService is a concrete implementation of PostService.
type postService struct {
	repo       repository.PostRepository
	categories repository.CategoryRepository
	pagination config.PaginationConfig
}

// NewPostService constructs a new PostService. categories is used to check
// that linked categories exist.
func NewPostService(repo repository.PostRepository, categories repository.CategoryRepository, pagination config.PaginationConfig) PostService {
	if pagination.DefaultLimit <= 0 {
		pagination.DefaultLimit = 10
	}
	return &postService{repo: repo, categories: categories, pagination: pagination}
}

func (s *postService) Paginate(ctx context.Context, opts PostListOptions) (res *model.Pagination[model.Post], err error) {
	ctx, span := tracer.Start(ctx, "PostService.Paginate")
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

	page, err := s.repo.List(ctx, repository.PostQuery{
		PageQuery:   repository.PageQuery{Limit: opts.Limit, Offset: pageOffset(opts.Page, opts.Limit)},
		Trashed:     opts.Trashed,
		IsPublished: opts.IsPublished,
		OrderBy:     opts.OrderBy,
		CategoryID:  opts.Category,
	})
	if err != nil {
		return nil, err
	}
	return &model.Pagination[model.Post]{
		Items: page.Items,
		Meta:  model.NewPaginateMeta(page.Total, len(page.Items), opts.Page, opts.Limit),
	}, nil
}

func (s *postService) Detail(ctx context.Context, id string) (p *model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostService.Detail")
	defer func() { endSpan(span, err) }()

	return s.find(ctx, id)
}

func (s *postService) find(ctx context.Context, id string) (*model.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fieldError("id", "must be a valid UUID")
	}
	p, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("the post %s not exists: %w", id, ErrNotFound)
		}
		return nil, err
	}
	p.BodyHTML = markup.HTML(p.Body)
	return p, nil
}

// checkCategories ensures every id names a live category.
func (s *postService) checkCategories(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	live := make(map[string]bool, len(found))
	for _, c := range found {
		if !c.Trashed() {
			live[c.ID] = true
		}
	}
	for _, id := range ids {
		if !live[id] {
			return fieldError("categories", fmt.Sprintf("category %s not exists", id))
		}
	}
	return nil
}

func (s *postService) Create(ctx context.Context, in CreatePostInput) (p *model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostService.Create")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, in.Categories); err != nil {
		return nil, err
	}

	summary := in.Summary
	if summary == "" {
		summary = markup.Excerpt(in.Body, summaryMax)
	}

	ts := now()
	post := &model.Post{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Body:        in.Body,
		Summary:     summary,
		Keywords:    in.Keywords,
		PublishedAt: in.PublishedAt.Value,
		CustomOrder: in.CustomOrder,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.repo.Create(ctx, post, in.Categories); err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return s.find(ctx, post.ID)
}

func (s *postService) Update(ctx context.Context, in UpdatePostInput) (p *model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostService.Update")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	current, err := s.find(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, in.Categories); err != nil {
		return nil, err
	}

	// A post without its own summary follows its body.
	if in.Body != nil && in.Summary == nil && current.Summary == markup.Excerpt(current.Body, summaryMax) {
		excerpt := markup.Excerpt(*in.Body, summaryMax)
		in.Summary = &excerpt
	}

	changes := repository.PostChanges{
		Title:        in.Title,
		Body:         in.Body,
		Summary:      in.Summary,
		CustomOrder:  in.CustomOrder,
		PublishedSet: in.PublishedAt.Set,
		PublishedAt:  in.PublishedAt.Value,
	}
	if in.Keywords != nil {
		changes.Keywords = &in.Keywords
	}
	if in.Categories != nil {
		changes.CategoryIDs = &in.Categories
	}
	if err := s.repo.Update(ctx, in.ID, changes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("the post %s not exists: %w", in.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("db update failed: %w", err)
	}
	return s.find(ctx, in.ID)
}

func (s *postService) Delete(ctx context.Context, id string) (p *model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostService.Delete")
	defer func() { endSpan(span, err) }()

	p, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, []string{id}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) DeleteMulti(ctx context.Context, in DeleteInput) (items []model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostService.DeleteMulti")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	posts, err := s.repo.FindByIDs(ctx, in.IDs)
	if err != nil {
		return nil, err
	}

	if !in.Trash {
		if err := s.repo.Delete(ctx, postIDs(posts)); err != nil {
			return nil, err
		}
		return posts, nil
	}

	// Trashed posts are removed for good, live ones go to the trash.
	var directs, softs []string
	ts := now()
	for i := range posts {
		if posts[i].Trashed() {
			directs = append(directs, posts[i].ID)
			continue
		}
		softs = append(softs, posts[i].ID)
		posts[i].DeletedAt = &ts
	}
	if err := s.repo.Trash(ctx, directs, softs); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *postService) Restore(ctx context.Context, in RestoreInput) (items []model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostService.Restore")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	posts, err := s.repo.FindByIDs(ctx, in.IDs)
	if err != nil {
		return nil, err
	}
	var trashed []string
	for _, p := range posts {
		if p.Trashed() {
			trashed = append(trashed, p.ID)
		}
	}
	if len(trashed) == 0 {
		return []model.Post{}, nil
	}
	if err := s.repo.Restore(ctx, trashed); err != nil {
		return nil, err
	}
	res, err := s.repo.List(ctx, repository.PostQuery{Trashed: model.TrashNone, IDs: trashed})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func postIDs(posts []model.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
