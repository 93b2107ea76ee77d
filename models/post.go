// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// PostStatus controls who can see a post.
type PostStatus string

const (
	// StatusPublic posts are visible to everyone.
	StatusPublic PostStatus = "public"
	// StatusPrivate posts are visible to their author only.
	StatusPrivate PostStatus = "private"
)

// PostStatuses lists every accepted status in display order.
var PostStatuses = []PostStatus{StatusPublic, StatusPrivate}

// Valid reports whether s is one of PostStatuses.
func (s PostStatus) Valid() bool {
	for _, status := range PostStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Post is a blog entry owned by exactly one user.
type Post struct {
	// ID is a UUIDv7 string assigned by the service on creation.
	ID string `json:"id"`

	Title   string `json:"title"`
	Content string `json:"content"`

	// Categories keeps the order chosen by the author.
	Categories []Category `json:"categories"`

	Status PostStatus `json:"status"`

	// AuthorID is the ownership anchor. It is always taken from the
	// authenticated identity and never from user input.
	AuthorID int64 `json:"author_id"`

	// Author carries display data of the owner; populated on reads.
	Author PostAuthor `json:"author"`

	// Slug is a unique URL-safe identifier derived from Title.
	Slug string `json:"slug"`

	DatePublished time.Time `json:"date_published"`
	LastModified  time.Time `json:"last_modified"`
}

// TableName returns the name of the database table
// associated with the Post model.
func (p Post) TableName() string {
	return "posts"
}

// CategoryIDs returns ids of the post categories in their stored order.
func (p Post) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// PostAuthor is the subset of User shown together with a post.
type PostAuthor struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// PostInput is the raw create form.
type PostInput struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	Status      string   `json:"status" validate:"omitempty,oneof=public private"`
	CategoryIDs []string `json:"categories"`
}

// PostPatch describes an update. Nil fields keep the stored value,
// except CategoryIDs: an omitted category list means "no categories".
type PostPatch struct {
	Title       *string  `json:"title,omitempty"`
	Content     *string  `json:"content,omitempty"`
	Status      *string  `json:"status,omitempty"`
	CategoryIDs []string `json:"categories"`
}

// PostFilter narrows post listings.
type PostFilter struct {
	// AuthorID restricts the listing to a single author when non-zero.
	AuthorID int64
	// IncludePrivate adds private posts to the listing.
	IncludePrivate bool
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts []Post   `json:"posts"`
	Page  PageInfo `json:"page"`
}
