package store

import (
	"fmt"

	"github.com/MKhiriev/go-blog/models"
	sq "github.com/Masterminds/squirrel"
)

// psql is the statement builder used for all dynamic queries.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const userColumns = `user_id, username, email, password_hash, avatar, reset_password_token, reset_password_expires, date_joined`

const (
	createUser = `INSERT INTO users (username, email, password_hash)
    VALUES ($1, $2, $3)
    RETURNING ` + userColumns + `;`

	findUserByID = `SELECT ` + userColumns + `
    FROM users
    WHERE user_id = $1;`

	findUserByEmail = `SELECT ` + userColumns + `
    FROM users
    WHERE email = $1;`

	findUserByResetToken = `SELECT ` + userColumns + `
    FROM users
    WHERE reset_password_token = $1;`

	updateUserProfile = `UPDATE users
    SET username = $1, email = $2, avatar = $3
    WHERE user_id = $4
    RETURNING ` + userColumns + `;`

	updateUserPassword = `UPDATE users
    SET password_hash = $1
    WHERE user_id = $2;`

	setUserResetToken = `UPDATE users
    SET reset_password_token = $1, reset_password_expires = $2
    WHERE user_id = $3;`

	resetUserPassword = `UPDATE users
    SET password_hash = $1, reset_password_token = NULL, reset_password_expires = NULL
    WHERE reset_password_token = $2 AND reset_password_expires > $3;`

	deleteUser = `DELETE FROM users
    WHERE user_id = $1
    RETURNING avatar;`
)

const (
	insertPost = `INSERT INTO posts (post_id, title, content, status, author_id, slug)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING date_published, last_modified;`

	updatePost = `UPDATE posts
    SET title = $1, content = $2, status = $3, slug = $4, last_modified = NOW()
    WHERE post_id = $5 AND author_id = $6
    RETURNING date_published, last_modified;`

	deletePostCategories = `DELETE FROM post_categories
    WHERE post_id = $1;`

	insertPostCategory = `INSERT INTO post_categories (post_id, category_id, position)
    VALUES ($1, $2, $3);`

	deletePost = `DELETE FROM posts
    WHERE post_id = $1 AND author_id = $2;`

	deletePostsByAuthor = `DELETE FROM posts
    WHERE author_id = $1;`
)

const (
	listCategories = `SELECT category_id, name
    FROM categories
    ORDER BY LOWER(name), category_id;`
)

const (
	saveSession = `INSERT INTO sessions (session_id, user_id, flashes, created_at, expires_at)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (session_id) DO UPDATE
    SET user_id = EXCLUDED.user_id, flashes = EXCLUDED.flashes, expires_at = EXCLUDED.expires_at;`

	findSession = `SELECT session_id, user_id, flashes, created_at, expires_at
    FROM sessions
    WHERE session_id = $1;`

	deleteSession = `DELETE FROM sessions
    WHERE session_id = $1;`

	deleteUserSessions = `DELETE FROM sessions
    WHERE user_id = $1;`

	deleteExpiredSessions = `DELETE FROM sessions
    WHERE expires_at <= $1;`
)

// postSelect returns the base SELECT of a post joined with its author.
func postSelect() sq.SelectBuilder {
	return psql.Select(
		"p.post_id", "p.title", "p.content", "p.status", "p.author_id", "p.slug",
		"p.date_published", "p.last_modified",
		"u.username", "COALESCE(u.avatar, '')",
	).
		From("posts p").
		Join("users u ON u.user_id = p.author_id")
}

// applyPostFilter adds the visibility and author conditions of filter.
func applyPostFilter(b sq.SelectBuilder, filter models.PostFilter) sq.SelectBuilder {
	if filter.AuthorID != 0 {
		b = b.Where(sq.Eq{"p.author_id": filter.AuthorID})
	}
	if !filter.IncludePrivate {
		b = b.Where(sq.Eq{"p.status": string(models.StatusPublic)})
	}
	return b
}

// buildFindPostQuery selects a single post by id.
func buildFindPostQuery(postID string) (string, []any, error) {
	query, args, err := postSelect().Where(sq.Eq{"p.post_id": postID}).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildListPostsQuery selects one page of posts, newest first. post_id
// breaks ties so that pages are stable.
func buildListPostsQuery(filter models.PostFilter, limit, offset int) (string, []any, error) {
	b := applyPostFilter(postSelect(), filter).
		OrderBy("p.date_published DESC", "p.post_id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildCountPostsQuery counts the posts matching filter.
func buildCountPostsQuery(filter models.PostFilter) (string, []any, error) {
	b := applyPostFilter(psql.Select("COUNT(*)").From("posts p"), filter)

	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildPostCategoriesQuery selects the categories of the given posts in the
// order chosen by their authors.
func buildPostCategoriesQuery(postIDs []string) (string, []any, error) {
	query, args, err := psql.Select("pc.post_id", "c.category_id", "c.name").
		From("post_categories pc").
		Join("categories c ON c.category_id = pc.category_id").
		Where(sq.Eq{"pc.post_id": postIDs}).
		OrderBy("pc.post_id", "pc.position").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildFindCategoriesQuery selects the categories with the given ids.
func buildFindCategoriesQuery(ids []int64) (string, []any, error) {
	query, args, err := psql.Select("category_id", "name").
		From("categories").
		Where(sq.Eq{"category_id": ids}).
		OrderBy("category_id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildSeedCategoryQuery inserts name unless it already exists. Concurrent
// first runs are safe because the conflict is resolved by the unique index.
func buildSeedCategoryQuery(name string) (string, []any, error) {
	query, args, err := psql.Insert("categories").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO NOTHING").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
