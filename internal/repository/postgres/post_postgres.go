package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const postColumns = `p.id, p.title, p.body, p.summary, p.keywords, p.published_at, p.custom_order, p.created_at, p.updated_at, p.deleted_at`

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

func scanPost(s rowScanner) (model.Post, error) {
	var (
		p         model.Post
		keywords  string
		published sql.NullTime
		deleted   sql.NullTime
	)
	if err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Body,
		&p.Summary,
		&keywords,
		&published,
		&p.CustomOrder,
		&p.CreatedAt,
		&p.UpdatedAt,
		&deleted,
	); err != nil {
		return p, err
	}
	p.Keywords = splitKeywords(keywords)
	p.PublishedAt = nullTime(published)
	p.DeletedAt = nullTime(deleted)
	p.Categories = []model.Category{}
	return p, nil
}

// orderClause maps a post ordering to SQL. id is the final tiebreaker so
// pages stay stable.
func orderClause(o model.PostOrder) string {
	switch o {
	case model.PostOrderCreated:
		return " ORDER BY p.created_at DESC, p.id DESC"
	case model.PostOrderUpdated:
		return " ORDER BY p.updated_at DESC, p.id DESC"
	case model.PostOrderPublished:
		return " ORDER BY p.published_at DESC NULLS LAST, p.id DESC"
	case model.PostOrderCustom:
		return " ORDER BY p.custom_order DESC, p.id DESC"
	default:
		return " ORDER BY p.created_at DESC, p.updated_at DESC, p.published_at DESC NULLS LAST, p.id DESC"
	}
}

func buildPostFilter(q repository.PostQuery) *queryBuilder {
	b := &queryBuilder{}
	b.where(trashCond("p", q.Trashed))
	if q.IsPublished != nil {
		if *q.IsPublished {
			b.where("p.published_at IS NOT NULL")
		} else {
			b.where("p.published_at IS NULL")
		}
	}
	if q.CategoryID != "" {
		b.where(`EXISTS (SELECT 1 FROM post_categories pc
			JOIN category_closure cc ON cc.descendant_id = pc.category_id
			WHERE pc.post_id = p.id AND cc.ancestor_id = ` + b.arg(q.CategoryID) + `)`)
	}
	if len(q.IDs) > 0 {
		b.where("p.id IN (" + b.list(q.IDs) + ")")
	}
	return b
}

// List returns posts using LIMIT/OFFSET pagination and a total count.
func (r *PostPostgres) List(ctx context.Context, q repository.PostQuery) (*repository.PageResult[model.Post], error) {
	b := buildPostFilter(q)
	where := b.whereClause()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, b.args...).Scan(&total); err != nil {
		return nil, err
	}

	query := `SELECT ` + postColumns + ` FROM posts p` + where + orderClause(q.OrderBy)
	if q.Limit > 0 {
		query += " LIMIT " + b.arg(q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + b.arg(q.Offset)
	}

	items, err := r.queryPosts(ctx, query, b.args...)
	if err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, items); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Post]{Items: items, Total: total}, nil
}

// FindByID fetches a single post and its categories.
func (r *PostPostgres) FindByID(ctx context.Context, id string, withTrashed bool) (*model.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`
	if !withTrashed {
		q += ` AND p.deleted_at IS NULL`
	}
	p, err := scanPost(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	items := []model.Post{p}
	if err := r.attachCategories(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// FindByIDs fetches posts by ID regardless of their deleted mark.
func (r *PostPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}
	b := &queryBuilder{}
	q := `SELECT ` + postColumns + ` FROM posts p WHERE p.id IN (` + b.list(ids) + `)` + orderClause("")
	return r.queryPosts(ctx, q, b.args...)
}

func (r *PostPostgres) queryPosts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// attachCategories loads the live categories of posts with a single query.
func (r *PostPostgres) attachCategories(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		index[p.ID] = i
	}

	b := &queryBuilder{}
	q := `SELECT pc.post_id, ` + categoryColumns + `
		FROM post_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.post_id IN (` + b.list(ids) + `) AND c.deleted_at IS NULL
		ORDER BY c.custom_order ASC, c.name ASC`
	rows, err := r.db.QueryContext(ctx, q, b.args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		c, err := scanCategory(rows, &postID)
		if err != nil {
			return err
		}
		if i, ok := index[postID]; ok {
			posts[i].Categories = append(posts[i].Categories, c)
		}
	}
	return rows.Err()
}

// Create inserts a new post row and its category links in one transaction.
func (r *PostPostgres) Create(ctx context.Context, p *model.Post, categoryIDs []string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
			INSERT INTO posts (id, title, body, summary, keywords, published_at, custom_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, q,
			p.ID,
			p.Title,
			p.Body,
			p.Summary,
			joinKeywords(p.Keywords),
			p.PublishedAt,
			p.CustomOrder,
			p.CreatedAt,
			p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		return linkCategories(ctx, tx, p.ID, categoryIDs)
	})
}

func linkCategories(ctx context.Context, tx execer, postID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	b := &queryBuilder{}
	values := make([]string, len(categoryIDs))
	post := b.arg(postID)
	for i, id := range categoryIDs {
		values[i] = "(" + post + ", " + b.arg(id) + ")"
	}
	q := `INSERT INTO post_categories (post_id, category_id) VALUES ` + strings.Join(values, ", ") + ` ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, q, b.args...); err != nil {
		return fmt.Errorf("link categories: %w", err)
	}
	return nil
}

// Update applies a partial update and optionally replaces category links.
func (r *PostPostgres) Update(ctx context.Context, id string, c repository.PostChanges) error {
	b := &queryBuilder{}
	var sets []string
	if c.Title != nil {
		sets = append(sets, "title = "+b.arg(*c.Title))
	}
	if c.Body != nil {
		sets = append(sets, "body = "+b.arg(*c.Body))
	}
	if c.Summary != nil {
		sets = append(sets, "summary = "+b.arg(*c.Summary))
	}
	if c.Keywords != nil {
		sets = append(sets, "keywords = "+b.arg(joinKeywords(*c.Keywords)))
	}
	if c.CustomOrder != nil {
		sets = append(sets, "custom_order = "+b.arg(*c.CustomOrder))
	}
	if c.PublishedSet {
		sets = append(sets, "published_at = "+b.arg(c.PublishedAt))
	}
	sets = append(sets, "updated_at = "+b.arg(now()))
	q := `UPDATE posts SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + b.arg(id)

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q, b.args...)
		if err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}
		if c.CategoryIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, id); err != nil {
			return fmt.Errorf("unlink categories: %w", err)
		}
		return linkCategories(ctx, tx, id, *c.CategoryIDs)
	})
}

// Delete removes posts permanently. Category links cascade.
func (r *PostPostgres) Delete(ctx context.Context, ids []string) error {
	return deletePosts(ctx, r.db, ids)
}

// Trash removes hardIDs permanently and stamps deleted_at on the live posts
// among softIDs, in one transaction.
func (r *PostPostgres) Trash(ctx context.Context, hardIDs, softIDs []string) error {
	if len(hardIDs) == 0 && len(softIDs) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := deletePosts(ctx, tx, hardIDs); err != nil {
			return fmt.Errorf("delete posts: %w", err)
		}
		if err := softDeletePosts(ctx, tx, softIDs); err != nil {
			return fmt.Errorf("soft delete posts: %w", err)
		}
		return nil
	})
}

func deletePosts(ctx context.Context, ex execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	b := &queryBuilder{}
	_, err := ex.ExecContext(ctx, `DELETE FROM posts WHERE id IN (`+b.list(ids)+`)`, b.args...)
	return err
}

func softDeletePosts(ctx context.Context, ex execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	b := &queryBuilder{}
	ts := b.arg(now())
	_, err := ex.ExecContext(ctx, `UPDATE posts SET deleted_at = `+ts+` WHERE id IN (`+b.list(ids)+`) AND deleted_at IS NULL`, b.args...)
	return err
}

// Restore clears deleted_at.
func (r *PostPostgres) Restore(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	b := &queryBuilder{}
	_, err := r.db.ExecContext(ctx, `UPDATE posts SET deleted_at = NULL WHERE id IN (`+b.list(ids)+`)`, b.args...)
	return err
}
