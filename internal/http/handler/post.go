package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"blogapi/internal/model"
	"blogapi/internal/service"
)

// postListItem is a post as shown in listings. Body and BodyHTML shadow the
// embedded fields and stay empty, so listings leave them out.
type postListItem struct {
	model.Post
	Body     string `json:"body,omitempty"`
	BodyHTML string `json:"bodyHtml,omitempty"`
}

func listItems(posts []model.Post) []postListItem {
	items := make([]postListItem, len(posts))
	for i, p := range posts {
		items[i] = postListItem{Post: p}
	}
	return items
}

// ListPosts godoc
// @Summary List posts
// @Description Offset paginated listing. Items omit the body.
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param trashed query string false "Trash mode" Enums(none, all, only)
// @Param isPublished query bool false "Published filter"
// @Param orderBy query string false "Order" Enums(createdAt, updatedAt, publishedAt, custom)
// @Param category query string false "Category ID, descendants included"
// @Success 200 {object} model.Pagination[model.Post]
// @Failure 422 {object} errorPayload
// @Router /posts [get]
func ListPosts(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := newQueryParser(c)
		opts := service.PostListOptions{
			Page:        q.Int("page"),
			Limit:       q.Int("limit"),
			Trashed:     q.Trash(),
			IsPublished: q.Bool("isPublished"),
			OrderBy:     model.PostOrder(c.Query("orderBy")),
			Category:    c.Query("category"),
		}
		if q.Failed() {
			return writeValidation(c, q.errs)
		}

		res, err := svc.Paginate(c.UserContext(), opts)
		if err != nil {
			return respondError(c, err, "post")
		}
		return c.JSON(model.Pagination[postListItem]{Items: listItems(res.Items), Meta: res.Meta})
	}
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} model.Post
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /posts/{id} [get]
func GetPost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeInvalidID(c)
		}
		p, err := svc.Detail(c.UserContext(), id)
		if err != nil {
			return respondError(c, err, "post")
		}
		return c.JSON(p)
	}
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param post body service.CreatePostInput true "Post"
// @Success 201 {object} model.Post
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /posts [post]
func CreatePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreatePostInput
		if err := decodeBody(c, &in); err != nil {
			return writeBadBody(c, err)
		}
		p, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, "post")
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// UpdatePost godoc
// @Summary Update a post
// @Description Partial update. The id travels in the body; a null publishedAt unpublishes.
// @Tags posts
// @Accept json
// @Produce json
// @Param post body service.UpdatePostInput true "Changes"
// @Success 200 {object} model.Post
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /posts [patch]
func UpdatePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UpdatePostInput
		if err := decodeBody(c, &in); err != nil {
			return writeBadBody(c, err)
		}
		p, err := svc.Update(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, "post")
		}
		return c.JSON(p)
	}
}

// DeletePost godoc
// @Summary Delete a post permanently
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} model.Post
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /posts/{id} [delete]
func DeletePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeInvalidID(c)
		}
		p, err := svc.Delete(c.UserContext(), id)
		if err != nil {
			return respondError(c, err, "post")
		}
		return c.JSON(p)
	}
}

// DeletePosts godoc
// @Summary Delete posts in bulk
// @Description With trash=true live posts are trashed and trashed ones removed.
// @Tags posts
// @Accept json
// @Produce json
// @Param body body service.DeleteInput true "Selection"
// @Success 200 {array} model.Post
// @Failure 422 {object} errorPayload
// @Router /posts [delete]
func DeletePosts(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.DeleteInput
		if err := decodeBody(c, &in); err != nil {
			return writeBadBody(c, err)
		}
		items, err := svc.DeleteMulti(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, "post")
		}
		return c.JSON(items)
	}
}

// RestorePosts godoc
// @Summary Restore trashed posts
// @Tags posts
// @Accept json
// @Produce json
// @Param body body service.RestoreInput true "Selection"
// @Success 200 {array} model.Post
// @Failure 422 {object} errorPayload
// @Router /posts/restore [patch]
func RestorePosts(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RestoreInput
		if err := decodeBody(c, &in); err != nil {
			return writeBadBody(c, err)
		}
		items, err := svc.Restore(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, "post")
		}
		return c.JSON(items)
	}
}
