package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogapi/internal/model"
	"blogapi/internal/service"
	serviceMocks "blogapi/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListPosts(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Get("/posts", ListPosts(mockSvc))

	t.Run("success omits body", func(t *testing.T) {
		published := true
		catID := uuid.New().String()
		res := &model.Pagination[model.Post]{
			Items: []model.Post{{ID: uuid.New().String(), Title: "Hello", Body: "long text", Categories: []model.Category{}}},
			Meta:  model.PaginateMeta{TotalItems: 1, ItemCount: 1, PerPage: 5, TotalPages: 1, CurrentPage: 2},
		}
		mockSvc.On("Paginate", mock.Anything, service.PostListOptions{
			Page:        2,
			Limit:       5,
			Trashed:     model.TrashAll,
			IsPublished: &published,
			OrderBy:     model.PostOrderCustom,
			Category:    catID,
		}).Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts?page=2&limit=5&trashed=all&isPublished=yes&orderBy=custom&category="+catID, nil)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		raw, _ := io.ReadAll(resp.Body)
		var body struct {
			Items []map[string]any   `json:"items"`
			Meta  model.PaginateMeta `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Len(t, body.Items, 1)
		assert.Equal(t, "Hello", body.Items[0]["title"])
		assert.NotContains(t, body.Items[0], "body")
		assert.Equal(t, res.Meta, body.Meta)
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad query values", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts?page=abc&isPublished=maybe", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		assert.Contains(t, res.Error.Details, "page")
		assert.Contains(t, res.Error.Details, "isPublished")
	})

	t.Run("service validation", func(t *testing.T) {
		mockSvc.On("Paginate", mock.Anything, service.PostListOptions{OrderBy: "title"}).
			Return(nil, &service.ValidationError{Fields: map[string]string{"orderBy": "must be one of createdAt,updatedAt,publishedAt,custom"}}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts?orderBy=title", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Paginate", mock.Anything, service.PostListOptions{}).Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetPost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Get("/posts/:id", GetPost(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Detail", mock.Anything, id).Return(&model.Post{ID: id, Body: "text"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Post
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, "text", result.Body)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Detail", mock.Anything, id).Return(nil, fmt.Errorf("the post %s not exists: %w", id, service.ErrNotFound)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		assert.Equal(t, "post not found", res.Error.Message)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/invalid-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestCreatePost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Post("/posts", CreatePost(mockSvc))

	t.Run("success", func(t *testing.T) {
		pub := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		created := &model.Post{ID: uuid.New().String(), Title: "Hello"}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreatePostInput) bool {
			return in.Title == "Hello" && in.Body == "World" && len(in.Keywords) == 2 &&
				in.PublishedAt.Set && in.PublishedAt.Value != nil && in.PublishedAt.Value.Equal(pub)
		})).Return(created, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/posts",
			`{"title":"Hello","body":"World","keywords":["go","sql"],"publishedAt":"2024-03-01T12:00:00Z"}`))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Post
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, created.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/posts", `{"title":"Hello","author":"me"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Error.Code)
	})

	t.Run("validation failed", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, service.CreatePostInput{}).
			Return(nil, &service.ValidationError{Fields: map[string]string{"title": "is required", "body": "is required"}}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/posts", `{}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "is required", res.Error.Details["title"])
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdatePost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Patch("/posts", UpdatePost(mockSvc))

	id := uuid.New().String()

	t.Run("null publishedAt unpublishes", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, mock.MatchedBy(func(in service.UpdatePostInput) bool {
			return in.ID == id && in.PublishedAt.Set && in.PublishedAt.Value == nil &&
				in.Title == nil && in.Categories == nil
		})).Return(&model.Post{ID: id}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/posts", `{"id":"`+id+`","publishedAt":null}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("absent publishedAt is untouched", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, mock.MatchedBy(func(in service.UpdatePostInput) bool {
			return !in.PublishedAt.Set && in.Title != nil && *in.Title == "New" &&
				in.Categories != nil && len(in.Categories) == 0
		})).Return(&model.Post{ID: id}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/posts", `{"id":"`+id+`","title":"New","categories":[]}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing post", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, mock.Anything).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/posts", `{"id":"`+id+`"}`))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeletePost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Delete("/posts/:id", DeletePost(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(&model.Post{ID: id}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Post
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil, errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestBulkPosts(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Delete("/posts", DeletePosts(mockSvc))
	app.Patch("/posts/restore", RestorePosts(mockSvc))

	a, b := uuid.New().String(), uuid.New().String()

	t.Run("delete with trash", func(t *testing.T) {
		mockSvc.On("DeleteMulti", mock.Anything, service.DeleteInput{IDs: []string{a, b}, Trash: true}).
			Return([]model.Post{{ID: a}, {ID: b}}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodDelete, "/posts", `{"ids":["`+a+`","`+b+`"],"trash":true}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Post
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 2)
		mockSvc.AssertExpectations(t)
	})

	t.Run("delete without body", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("restore", func(t *testing.T) {
		mockSvc.On("Restore", mock.Anything, service.RestoreInput{IDs: []string{a}}).
			Return([]model.Post{}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/posts/restore", `{"ids":["`+a+`"]}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		raw, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `[]`, string(raw))
		mockSvc.AssertExpectations(t)
	})
}
