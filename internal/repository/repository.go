// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import "errors"

// ErrInvalidParent is returned when a category would become its own ancestor.
var ErrInvalidParent = errors.New("category cannot be moved under itself or its descendants")

// PageQuery holds limit/offset pagination parameters.
// A zero or negative Limit disables the limit.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
