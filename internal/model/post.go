package model

import "time"

// Post is a blog article with a Markdown body. Categories are loaded alongside
// the row and BodyHTML is rendered on read; neither is stored in posts.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	BodyHTML    string     `json:"bodyHtml,omitempty"`
	Summary     string     `json:"summary"`
	Keywords    []string   `json:"keywords"`
	PublishedAt *time.Time `json:"publishedAt"`
	CustomOrder int        `json:"customOrder"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
	Categories  []Category `json:"categories"`
}

// Trashed reports whether the post is soft deleted.
func (p Post) Trashed() bool { return p.DeletedAt != nil }

// PostOrder selects the ordering of post listings.
type PostOrder string

const (
	PostOrderCreated   PostOrder = "createdAt"
	PostOrderUpdated   PostOrder = "updatedAt"
	PostOrderPublished PostOrder = "publishedAt"
	PostOrderCustom    PostOrder = "custom"
)

// PostOrders lists every accepted ordering, in documentation order.
var PostOrders = []PostOrder{PostOrderCreated, PostOrderUpdated, PostOrderPublished, PostOrderCustom}
