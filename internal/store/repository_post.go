// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
	"github.com/jackc/pgerrcode"
)

const (
	// slugConstraint is the name of the unique index on posts.slug.
	slugConstraint = "posts_slug_key"
	// authorConstraint guards posts.author_id.
	authorConstraint = "posts_author_id_fkey"
	// categoryConstraint guards post_categories.category_id.
	categoryConstraint = "post_categories_category_id_fkey"
)

// postRepository is the PostgreSQL-backed implementation of
// [PostRepository]. A post and its category links are always written in
// one transaction.
type postRepository struct {
	*DB
	logger *logger.Logger
}

// NewPostRepository constructs a [PostRepository] backed by db.
func NewPostRepository(db *DB, logger *logger.Logger) PostRepository {
	logger.Debug().Msg("creating post repository")
	return &postRepository{
		DB:     db,
		logger: logger,
	}
}

// CreatePost inserts post with its categories in the given order and
// returns it with the database timestamps.
//
// Error handling:
//   - unique_violation on the slug → [ErrSlugAlreadyExists].
//   - foreign_key_violation on a category → [ErrUnknownCategory].
func (p *postRepository) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	log := logger.FromContext(ctx)

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "postRepository.CreatePost").Msg("failed to begin transaction")
		return models.Post{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, insertPost,
		post.ID, post.Title, post.Content, string(post.Status), post.AuthorID, post.Slug,
	).Scan(&post.DatePublished, &post.LastModified)
	if err != nil {
		log.Err(err).
			Str("func", "postRepository.CreatePost").
			Str("post_id", post.ID).
			Str("slug", post.Slug).
			Msg("failed to insert post")
		return models.Post{}, mapPostWriteError(err)
	}

	if err = insertCategoryLinks(ctx, tx, post); err != nil {
		log.Err(err).Str("func", "postRepository.CreatePost").Str("post_id", post.ID).Msg("failed to link categories")
		return models.Post{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "postRepository.CreatePost").Str("post_id", post.ID).Msg("failed to commit transaction")
		return models.Post{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "postRepository.CreatePost").
		Str("post_id", post.ID).
		Int64("author_id", post.AuthorID).
		Msg("post created")

	return post, nil
}

// UpdatePost rewrites title, content, status, slug and the category links of
// a post owned by post.AuthorID.
//
// Returns [ErrPostNotFound] when no row is updated.
func (p *postRepository) UpdatePost(ctx context.Context, post models.Post) (models.Post, error) {
	log := logger.FromContext(ctx)

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "postRepository.UpdatePost").Msg("failed to begin transaction")
		return models.Post{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, updatePost,
		post.Title, post.Content, string(post.Status), post.Slug, post.ID, post.AuthorID,
	).Scan(&post.DatePublished, &post.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn().Str("func", "postRepository.UpdatePost").Str("post_id", post.ID).Msg("post not found")
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "postRepository.UpdatePost").Str("post_id", post.ID).Msg("failed to update post")
		return models.Post{}, mapPostWriteError(err)
	}

	if _, err = tx.ExecContext(ctx, deletePostCategories, post.ID); err != nil {
		log.Err(err).Str("func", "postRepository.UpdatePost").Str("post_id", post.ID).Msg("failed to unlink categories")
		return models.Post{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = insertCategoryLinks(ctx, tx, post); err != nil {
		log.Err(err).Str("func", "postRepository.UpdatePost").Str("post_id", post.ID).Msg("failed to link categories")
		return models.Post{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "postRepository.UpdatePost").Str("post_id", post.ID).Msg("failed to commit transaction")
		return models.Post{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().Str("func", "postRepository.UpdatePost").Str("post_id", post.ID).Msg("post updated")

	return post, nil
}

func insertCategoryLinks(ctx context.Context, tx *sql.Tx, post models.Post) error {
	for position, category := range post.Categories {
		if _, err := tx.ExecContext(ctx, insertPostCategory, post.ID, category.ID, position); err != nil {
			return mapPostWriteError(err)
		}
	}
	return nil
}

func mapPostWriteError(err error) error {
	switch postgresError(err) {
	case pgerrcode.UniqueViolation:
		if postgresConstraint(err) == slugConstraint {
			return ErrSlugAlreadyExists
		}
	case pgerrcode.ForeignKeyViolation:
		switch postgresConstraint(err) {
		case categoryConstraint:
			return ErrUnknownCategory
		case authorConstraint:
			return ErrUserNotFound
		}
	}
	return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
}

// FindPostByID returns the post with its author and categories.
//
// Returns [ErrPostNotFound] when no row matches.
func (p *postRepository) FindPostByID(ctx context.Context, postID string) (models.Post, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindPostQuery(postID)
	if err != nil {
		log.Err(err).Str("func", "postRepository.FindPostByID").Msg("failed to create query")
		return models.Post{}, err
	}

	posts, err := p.queryPosts(ctx, query, args)
	if err != nil {
		log.Err(err).Str("func", "postRepository.FindPostByID").Str("post_id", postID).Msg("failed to query post")
		return models.Post{}, err
	}

	if len(posts) == 0 {
		log.Debug().Str("func", "postRepository.FindPostByID").Str("post_id", postID).Msg("post not found")
		return models.Post{}, ErrPostNotFound
	}

	return posts[0], nil
}

// ListPosts returns one page of posts matching filter, newest first.
// Transient database errors are retried.
func (p *postRepository) ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]models.Post, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListPostsQuery(filter, limit, offset)
	if err != nil {
		log.Err(err).Str("func", "postRepository.ListPosts").Msg("failed to create query")
		return nil, err
	}

	var posts []models.Post
	err = p.withRetry(ctx, func() error {
		var queryErr error
		posts, queryErr = p.queryPosts(ctx, query, args)
		return queryErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "postRepository.ListPosts").
			Int64("author_id", filter.AuthorID).
			Bool("include_private", filter.IncludePrivate).
			Msg("failed to list posts")
		return nil, err
	}

	return posts, nil
}

// CountPosts returns the number of posts matching filter.
func (p *postRepository) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountPostsQuery(filter)
	if err != nil {
		log.Err(err).Str("func", "postRepository.CountPosts").Msg("failed to create query")
		return 0, err
	}

	var total int
	err = p.withRetry(ctx, func() error {
		return p.DB.QueryRowContext(ctx, query, args...).Scan(&total)
	})
	if err != nil {
		log.Err(err).Str("func", "postRepository.CountPosts").Msg("failed to count posts")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return total, nil
}

// queryPosts runs a post SELECT built by postSelect and attaches the
// categories of every returned post.
func (p *postRepository) queryPosts(ctx context.Context, query string, args []any) ([]models.Post, error) {
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, 8)
	for rows.Next() {
		var post models.Post
		var status string

		scanErr := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&status,
			&post.AuthorID,
			&post.Slug,
			&post.DatePublished,
			&post.LastModified,
			&post.Author.Username,
			&post.Author.Avatar,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		post.Status = models.PostStatus(status)
		post.Author.UserID = post.AuthorID
		post.Categories = []models.Category{}
		posts = append(posts, post)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	if err = p.attachCategories(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (p *postRepository) attachCategories(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(posts))
	index := make(map[string]int, len(posts))
	for i, post := range posts {
		ids = append(ids, post.ID)
		index[post.ID] = i
	}

	query, args, err := buildPostCategoriesQuery(ids)
	if err != nil {
		return err
	}

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var category models.Category
		if scanErr := rows.Scan(&postID, &category.ID, &category.Name); scanErr != nil {
			return fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		if i, ok := index[postID]; ok {
			posts[i].Categories = append(posts[i].Categories, category)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return nil
}

// DeletePost deletes the post if it is owned by authorID. Category links are
// removed by ON DELETE CASCADE. The number of affected rows is returned so
// the caller can insist on exactly one.
func (p *postRepository) DeletePost(ctx context.Context, postID string, authorID int64) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := p.DB.ExecContext(ctx, deletePost, postID, authorID)
	if err != nil {
		log.Err(err).Str("func", "postRepository.DeletePost").Str("post_id", postID).Msg("failed to delete post")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Info().
		Str("func", "postRepository.DeletePost").
		Str("post_id", postID).
		Int64("affected", affected).
		Msg("post delete executed")

	return affected, nil
}

// DeletePostsByAuthor removes every post of authorID and returns how many
// were deleted.
func (p *postRepository) DeletePostsByAuthor(ctx context.Context, authorID int64) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := p.DB.ExecContext(ctx, deletePostsByAuthor, authorID)
	if err != nil {
		log.Err(err).Str("func", "postRepository.DeletePostsByAuthor").Int64("author_id", authorID).Msg("failed to delete posts")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Info().
		Str("func", "postRepository.DeletePostsByAuthor").
		Int64("author_id", authorID).
		Int64("deleted", affected).
		Msg("posts of author deleted")

	return affected, nil
}
