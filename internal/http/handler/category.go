package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"blogapi/internal/service"
)

// CategoryTree godoc
// @Summary Category trees
// @Description Every root category with its nested children.
// @Tags categories
// @Produce json
// @Param trashed query string false "Trash mode" Enums(none, all, only)
// @Success 200 {array} model.Category
// @Router /categories/tree [get]
func CategoryTree(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trees, err := svc.Tree(c.UserContext(), newQueryParser(c).Trash())
		if err != nil {
			return respondError(c, err, "category")
		}
		return c.JSON(trees)
	}
}

// ListCategories godoc
// @Summary List categories
// @Description Trees flattened in pre-order with depth and parent, paginated.
// @Tags categories
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param trashed query string false "Trash mode" Enums(none, all, only)
// @Success 200 {object} model.Pagination[model.Category]
// @Router /categories [get]
func ListCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := newQueryParser(c)
		opts := service.CategoryListOptions{
			Page:    q.Int("page"),
			Limit:   q.Int("limit"),
			Trashed: q.Trash(),
		}
		if q.Failed() {
			return writeValidation(c, q.errs)
		}
		res, err := svc.List(c.UserContext(), opts)
		if err != nil {
			return respondError(c, err, "category")
		}
		return c.JSON(res)
	}
}

// GetCategory godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} model.Category
// @Failure 404 {object} errorPayload
// @Router /categories/{id} [get]
func GetCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeInvalidID(c)
		}
		cat, err := svc.Detail(c.UserContext(), id)
		if err != nil {
			return respondError(c, err, "category")
		}
		return c.JSON(cat)
	}
}

type closureFinder func(ctx context.Context, id string, q service.TreeQuery) (*service.CategoryListResult, error)

func closureHandler(find closureFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeInvalidID(c)
		}
		q := newQueryParser(c)
		tq := service.TreeQuery{Trashed: q.Trash(), Depth: q.Int("depth")}
		if q.Failed() {
			return writeValidation(c, q.errs)
		}
		res, err := find(c.UserContext(), id, tq)
		if err != nil {
			return respondError(c, err, "category")
		}
		return c.JSON(res)
	}
}

// CategoryAncestors godoc
// @Summary Category ancestors
// @Description The category and its ancestors with their count.
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Param depth query int false "Maximum distance, 0 for unbounded"
// @Param trashed query string false "Trash mode" Enums(none, all, only)
// @Success 200 {object} service.CategoryListResult
// @Failure 404 {object} errorPayload
// @Router /categories/{id}/ancestors [get]
func CategoryAncestors(svc service.CategoryService) fiber.Handler {
	return closureHandler(svc.Ancestors)
}

// CategoryDescendants godoc
// @Summary Category descendants
// @Description The category and its descendants with their count.
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Param depth query int false "Maximum distance, 0 for unbounded"
// @Param trashed query string false "Trash mode" Enums(none, all, only)
// @Success 200 {object} service.CategoryListResult
// @Failure 404 {object} errorPayload
// @Router /categories/{id}/descendants [get]
func CategoryDescendants(svc service.CategoryService) fiber.Handler {
	return closureHandler(svc.Descendants)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body service.CreateCategoryInput true "Category"
// @Success 201 {object} model.Category
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /categories [post]
func CreateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateCategoryInput
		if err := decodeBody(c, &in); err != nil {
			return writeBadBody(c, err)
		}
		cat, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, "category")
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// UpdateCategory godoc
// @Summary Update a category
// @Description Partial update. A null parent moves the category to the root level.
// @Tags categories
// @Accept json
// @Produce json
// @Param category body service.UpdateCategoryInput true "Changes"
// @Success 200 {object} model.Category
// @Failure 404 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /categories [patch]
func UpdateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UpdateCategoryInput
		if err := decodeBody(c, &in); err != nil {
			return writeBadBody(c, err)
		}
		cat, err := svc.Update(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, "category")
		}
		return c.JSON(cat)
	}
}

// DeleteCategories godoc
// @Summary Delete categories in bulk
// @Description Children of a removed category move up to its parent.
// @Tags categories
// @Accept json
// @Produce json
// @Param body body service.DeleteInput true "Selection"
// @Success 200 {array} model.Category
// @Failure 422 {object} errorPayload
// @Router /categories [delete]
func DeleteCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.DeleteInput
		if err := decodeBody(c, &in); err != nil {
			return writeBadBody(c, err)
		}
		items, err := svc.DeleteMulti(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, "category")
		}
		return c.JSON(items)
	}
}

// RestoreCategories godoc
// @Summary Restore trashed categories
// @Tags categories
// @Accept json
// @Produce json
// @Param body body service.RestoreInput true "Selection"
// @Success 200 {array} model.Category
// @Failure 422 {object} errorPayload
// @Router /categories/restore [patch]
func RestoreCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RestoreInput
		if err := decodeBody(c, &in); err != nil {
			return writeBadBody(c, err)
		}
		items, err := svc.Restore(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, "category")
		}
		return c.JSON(items)
	}
}
