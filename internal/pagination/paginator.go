// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package pagination computes page windows and navigation metadata for
// listings from a total item count and a page size.
package pagination

import "github.com/MKhiriev/go-blog/models"

// DefaultLimit is the page size used when the request does not specify one.
const DefaultLimit = 3

// Paginator holds the totals of one listing.
type Paginator struct {
	total         int
	perPage       int
	numberOfPages int
}

// NewPaginator returns a Paginator for total items split into pages of
// perPage items. A non-positive perPage falls back to [DefaultLimit].
//
// numberOfPages is (total-1)/perPage+1 with integer division truncating
// towards zero, so an empty listing still has one page.
func NewPaginator(total, perPage int) *Paginator {
	if perPage < 1 {
		perPage = DefaultLimit
	}
	if total < 0 {
		total = 0
	}

	return &Paginator{
		total:         total,
		perPage:       perPage,
		numberOfPages: (total-1)/perPage + 1,
	}
}

// NumberOfPages returns the amount of pages in the listing.
func (p *Paginator) NumberOfPages() int {
	return p.numberOfPages
}

// Offset returns the number of items to skip for page. It is never negative.
func (p *Paginator) Offset(page int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * p.perPage
}

// Page returns navigation metadata for the requested page.
//
// The requested page is not clamped to [1, NumberOfPages]: asking for a page
// past the end yields InPageRange == false and a current range that is
// clamped to total only.
func (p *Paginator) Page(current int) models.PageInfo {
	return models.PageInfo{
		Total:              p.total,
		Limit:              p.perPage,
		First:              1,
		Last:               p.numberOfPages,
		HasPrevious:        current > 1,
		HasNext:            current < p.numberOfPages,
		PageRange:          p.numberOfPages,
		InPageRange:        p.numberOfPages >= current,
		Number:             current,
		PreviousPageNumber: current - 1,
		NextPageNumber:     current + 1,
		CurrentFirst:       min((current-1)*p.perPage+1, p.total),
		CurrentLast:        min(current*p.perPage, p.total),
	}
}

// ComputePage is a shortcut for NewPaginator(total, perPage).Page(page).
func ComputePage(total, perPage, page int) models.PageInfo {
	return NewPaginator(total, perPage).Page(page)
}
