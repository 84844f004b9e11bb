// Package model contains domain models shared by every layer.
// No persistence or transport concerns live here.
package model

// TrashMode selects how soft-deleted rows take part in a query.
type TrashMode string

const (
	// TrashNone hides soft-deleted rows.
	TrashNone TrashMode = "none"
	// TrashAll returns live and soft-deleted rows.
	TrashAll TrashMode = "all"
	// TrashOnly returns soft-deleted rows only.
	TrashOnly TrashMode = "only"
)

// TrashModes lists every accepted trash mode.
var TrashModes = []TrashMode{TrashAll, TrashOnly, TrashNone}

// WithTrashed reports whether soft-deleted rows are visible in this mode.
func (m TrashMode) WithTrashed() bool { return m == TrashAll || m == TrashOnly }

// OnlyTrashed reports whether live rows are hidden in this mode.
func (m TrashMode) OnlyTrashed() bool { return m == TrashOnly }

// PaginateMeta describes one page of an offset paginated listing.
type PaginateMeta struct {
	TotalItems  int `json:"totalItems"`
	ItemCount   int `json:"itemCount"`
	PerPage     int `json:"perPage"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// Pagination wraps a page of items with its metadata.
type Pagination[T any] struct {
	Items []T          `json:"items"`
	Meta  PaginateMeta `json:"meta"`
}

// NewPaginateMeta computes page metadata for a page of itemCount items taken
// from totalItems rows.
func NewPaginateMeta(totalItems, itemCount, page, limit int) PaginateMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}
	return PaginateMeta{
		TotalItems:  totalItems,
		ItemCount:   itemCount,
		PerPage:     limit,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}
