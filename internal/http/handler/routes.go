package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"blogapi/internal/service"
)

// RegisterRoutes attaches the health checks and the REST routes to app.
// Static segments (/categories/tree, /posts/restore) are registered before
// their :id siblings.
func RegisterRoutes(app *fiber.App, db *sql.DB, posts service.PostService, categories service.CategoryService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", Liveness())

	p := app.Group("/posts")
	p.Get("", ListPosts(posts))
	p.Post("", CreatePost(posts))
	p.Patch("/restore", RestorePosts(posts))
	p.Patch("", UpdatePost(posts))
	p.Delete("", DeletePosts(posts))
	p.Get("/:id", GetPost(posts))
	p.Delete("/:id", DeletePost(posts))

	cg := app.Group("/categories")
	cg.Get("/tree", CategoryTree(categories))
	cg.Get("", ListCategories(categories))
	cg.Post("", CreateCategory(categories))
	cg.Patch("/restore", RestoreCategories(categories))
	cg.Patch("", UpdateCategory(categories))
	cg.Delete("", DeleteCategories(categories))
	cg.Get("/:id", GetCategory(categories))
	cg.Get("/:id/ancestors", CategoryAncestors(categories))
	cg.Get("/:id/descendants", CategoryDescendants(categories))
}
