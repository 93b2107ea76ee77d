// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/pagination"
	"github.com/MKhiriev/go-blog/internal/store"
	"github.com/MKhiriev/go-blog/internal/utils"
	"github.com/MKhiriev/go-blog/internal/validators"
	"github.com/MKhiriev/go-blog/models"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	// maxSlugAttempts bounds the retries with a random suffix after a slug
	// collision.
	maxSlugAttempts = 5

	// maxPageSize caps the "limit" a client can ask for.
	maxPageSize = 100

	fallbackSlug = "post"
)

type idGenerator interface {
	Generate() string
}

type postService struct {
	postRepository     store.PostRepository
	categoryRepository store.CategoryRepository
	validator          validators.Validator
	ids                idGenerator

	pageSize int

	// suffix returns the random part appended to a colliding slug.
	suffix func() string

	logger *logger.Logger
}

// NewPostService constructs the PostService. cfg.PageSize is the listing
// page size used when the caller gives none.
func NewPostService(
	postRepository store.PostRepository,
	categoryRepository store.CategoryRepository,
	validator validators.Validator,
	cfg config.App,
	logger *logger.Logger,
) PostService {
	return &postService{
		postRepository:     postRepository,
		categoryRepository: categoryRepository,
		validator:          validator,
		ids:                utils.NewUUIDGenerator(),
		pageSize:           cfg.PageSize,
		suffix:             func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
		logger:             logger,
	}
}

// Create validates input and stores a new post authored by identity.
func (p *postService) Create(ctx context.Context, identity models.Identity, input models.PostInput) (models.Post, error) {
	log := logger.FromContext(ctx)

	if !identity.Authenticated {
		return models.Post{}, ErrUnauthenticated
	}

	post, err := p.buildPost(ctx, input)
	if err != nil {
		return models.Post{}, err
	}

	post.ID = p.ids.Generate()
	post.AuthorID = identity.UserID
	post.Author = models.PostAuthor{UserID: identity.UserID, Username: identity.Username}
	post.Slug = makeSlug(post.Title)

	created, err := p.saveWithUniqueSlug(ctx, post, p.postRepository.CreatePost)
	if err != nil {
		log.Err(err).Str("func", "postService.Create").Int64("user_id", identity.UserID).Msg("failed to create post")
		return models.Post{}, p.mapStoreError(err)
	}
	created.Author = post.Author

	log.Info().Str("func", "postService.Create").Str("post_id", created.ID).Int64("user_id", identity.UserID).Msg("post created")
	return created, nil
}

// Get returns a post readable by identity. Private posts of other users
// are reported as ErrNotFound.
func (p *postService) Get(ctx context.Context, identity models.Identity, postID string) (models.Post, error) {
	post, err := p.find(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}

	if err = CheckRead(ctx, identity, post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// GetForEdit returns the post if identity may change it.
func (p *postService) GetForEdit(ctx context.Context, identity models.Identity, postID string) (models.Post, error) {
	post, err := p.find(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}

	if err = CheckMutation(ctx, identity, post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Update applies patch to a post owned by identity. Omitted categories mean
// "no categories"; a changed title gets a new slug.
func (p *postService) Update(ctx context.Context, identity models.Identity, postID string, patch models.PostPatch) (models.Post, error) {
	log := logger.FromContext(ctx)

	current, err := p.GetForEdit(ctx, identity, postID)
	if err != nil {
		return models.Post{}, err
	}

	input := models.PostInput{
		Title:       current.Title,
		Content:     current.Content,
		Status:      string(current.Status),
		CategoryIDs: patch.CategoryIDs,
	}
	if patch.Title != nil {
		input.Title = *patch.Title
	}
	if patch.Content != nil {
		input.Content = *patch.Content
	}
	if patch.Status != nil {
		input.Status = *patch.Status
	}

	post, err := p.buildPost(ctx, input)
	if err != nil {
		return models.Post{}, err
	}

	post.ID = current.ID
	post.AuthorID = current.AuthorID
	post.Author = current.Author
	post.Slug = current.Slug
	if post.Title != current.Title {
		post.Slug = makeSlug(post.Title)
	}

	updated, err := p.saveWithUniqueSlug(ctx, post, p.postRepository.UpdatePost)
	if err != nil {
		log.Err(err).Str("func", "postService.Update").Str("post_id", postID).Msg("failed to update post")
		return models.Post{}, p.mapStoreError(err)
	}
	updated.Author = current.Author

	log.Info().Str("func", "postService.Update").Str("post_id", postID).Msg("post updated")
	return updated, nil
}

// Delete removes a post owned by identity.
func (p *postService) Delete(ctx context.Context, identity models.Identity, postID string) error {
	log := logger.FromContext(ctx)

	post, err := p.GetForEdit(ctx, identity, postID)
	if err != nil {
		return err
	}

	affected, err := p.postRepository.DeletePost(ctx, post.ID, identity.UserID)
	if err != nil {
		log.Err(err).Str("func", "postService.Delete").Str("post_id", postID).Msg("failed to delete post")
		return fmt.Errorf("error deleting post: %w", err)
	}
	if affected != 1 {
		log.Warn().Str("func", "postService.Delete").Str("post_id", postID).Int64("affected", affected).Msg("post vanished before delete")
		return ErrNotFound
	}

	log.Info().Str("func", "postService.Delete").Str("post_id", postID).Msg("post deleted")
	return nil
}

// ListPublic returns a page of public posts of all authors.
func (p *postService) ListPublic(ctx context.Context, page, limit int) (models.PostPage, error) {
	return p.list(ctx, models.PostFilter{}, page, limit)
}

// ListByAuthor returns a page of posts of authorID. Private posts are
// included only when viewer is the author.
func (p *postService) ListByAuthor(ctx context.Context, viewer models.Identity, authorID int64, page, limit int) (models.PostPage, error) {
	if authorID <= 0 {
		return models.PostPage{}, ErrInvalidIdentifier
	}

	filter := models.PostFilter{
		AuthorID:       authorID,
		IncludePrivate: viewer.Authenticated && viewer.UserID == authorID,
	}
	return p.list(ctx, filter, page, limit)
}

func (p *postService) list(ctx context.Context, filter models.PostFilter, page, limit int) (models.PostPage, error) {
	log := logger.FromContext(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = p.pageSize
	}
	limit = min(limit, maxPageSize)

	total, err := p.postRepository.CountPosts(ctx, filter)
	if err != nil {
		log.Err(err).Str("func", "postService.list").Msg("failed to count posts")
		return models.PostPage{}, fmt.Errorf("error counting posts: %w", err)
	}

	paginator := pagination.NewPaginator(total, limit)

	posts, err := p.postRepository.ListPosts(ctx, filter, limit, paginator.Offset(page))
	if err != nil {
		log.Err(err).Str("func", "postService.list").Msg("failed to list posts")
		return models.PostPage{}, fmt.Errorf("error listing posts: %w", err)
	}

	return models.PostPage{
		Posts: posts,
		Page:  paginator.Page(page),
	}, nil
}

func (p *postService) find(ctx context.Context, postID string) (models.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		logger.FromContext(ctx).Debug().Str("func", "postService.find").Str("post_id", postID).Msg("malformed post id")
		return models.Post{}, ErrInvalidIdentifier
	}

	post, err := p.postRepository.FindPostByID(ctx, postID)
	if errors.Is(err, store.ErrPostNotFound) {
		return models.Post{}, ErrNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("error loading post: %w", err)
	}
	return post, nil
}

// buildPost normalises and validates input and resolves its categories.
func (p *postService) buildPost(ctx context.Context, input models.PostInput) (models.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Status = strings.TrimSpace(input.Status)
	if input.Status == "" {
		input.Status = string(models.StatusPublic)
	}

	verr := validators.ValidationError{}
	if err := p.validator.Validate(ctx, input); err != nil {
		fieldErrs, ok := validators.AsValidationError(err)
		if !ok {
			return models.Post{}, err
		}
		verr.Merge(fieldErrs)
	}

	categories, known, err := p.resolveCategories(ctx, input.CategoryIDs)
	if err != nil {
		return models.Post{}, err
	}
	if !known {
		verr.Add(validators.FieldCategories, validators.MsgUnknownCategory)
	}

	if err = verr.OrNil(); err != nil {
		return models.Post{}, err
	}

	return models.Post{
		Title:      input.Title,
		Content:    input.Content,
		Status:     models.PostStatus(input.Status),
		Categories: categories,
	}, nil
}

// resolveCategories maps raw ids to categories, keeping the given order and
// dropping duplicates. known is false when any id is malformed or unknown.
func (p *postService) resolveCategories(ctx context.Context, rawIDs []string) ([]models.Category, bool, error) {
	ids := make([]int64, 0, len(rawIDs))
	seen := make(map[int64]struct{}, len(rawIDs))
	for _, raw := range rawIDs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return []models.Category{}, false, nil
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return []models.Category{}, true, nil
	}

	found, err := p.categoryRepository.FindCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, false, fmt.Errorf("error loading categories: %w", err)
	}

	byID := make(map[int64]models.Category, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	categories := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return []models.Category{}, false, nil
		}
		categories = append(categories, c)
	}

	return categories, true, nil
}

// saveWithUniqueSlug calls save and retries with a random slug suffix while
// the slug collides with another post.
func (p *postService) saveWithUniqueSlug(ctx context.Context, post models.Post, save func(context.Context, models.Post) (models.Post, error)) (models.Post, error) {
	base := post.Slug
	for attempt := 1; ; attempt++ {
		saved, err := save(ctx, post)
		if !errors.Is(err, store.ErrSlugAlreadyExists) || attempt == maxSlugAttempts {
			return saved, err
		}

		post.Slug = base + "-" + p.suffix()
		logger.FromContext(ctx).Debug().Str("func", "postService.saveWithUniqueSlug").Str("slug", post.Slug).Msg("slug collision, retrying")
	}
}

func (p *postService) mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrPostNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrUnknownCategory):
		return validators.ValidationError{validators.FieldCategories: {validators.MsgUnknownCategory}}
	case errors.Is(err, store.ErrUserNotFound):
		// the author was removed while the request was in flight
		return ErrUnauthenticated
	default:
		return err
	}
}

func makeSlug(title string) string {
	s := slug.Make(title)
	if s == "" {
		return fallbackSlug
	}
	return s
}
