package mocks

import (
	"context"

	"blogapi/internal/model"
	"blogapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context, q repository.PostQuery) (*repository.PageResult[model.Post], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Post]), args.Error(1)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id string, withTrashed bool) (*model.Post, error) {
	args := m.Called(ctx, id, withTrashed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post, categoryIDs []string) error {
	args := m.Called(ctx, post, categoryIDs)
	return args.Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, id string, changes repository.PostChanges) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockPostRepository) Trash(ctx context.Context, hardIDs, softIDs []string) error {
	args := m.Called(ctx, hardIDs, softIDs)
	return args.Error(0)
}

func (m *MockPostRepository) Restore(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
