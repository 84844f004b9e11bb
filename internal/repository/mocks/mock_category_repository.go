package mocks

import (
	"context"

	"blogapi/internal/model"
	"blogapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id string, withTrashed bool) (*model.Category, error) {
	args := m.Called(ctx, id, withTrashed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Category, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindRoots(ctx context.Context, opts repository.TreeOptions) ([]model.Category, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindDescendants(ctx context.Context, id string, opts repository.TreeOptions) ([]model.Category, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAncestors(ctx context.Context, id string, opts repository.TreeOptions) ([]model.Category, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) CountDescendants(ctx context.Context, id string, opts repository.TreeOptions) (int, error) {
	args := m.Called(ctx, id, opts)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryRepository) CountAncestors(ctx context.Context, id string, opts repository.TreeOptions) (int, error) {
	args := m.Called(ctx, id, opts)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryRepository) FindTrees(ctx context.Context, opts repository.TreeOptions) ([]model.Category, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *model.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, id string, changes repository.CategoryChanges) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockCategoryRepository) Trash(ctx context.Context, hardIDs, softIDs []string) error {
	args := m.Called(ctx, hardIDs, softIDs)
	return args.Error(0)
}

func (m *MockCategoryRepository) Restore(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
