package service

import (
	"context"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
)

// Authorize reports whether identity owns post.
func Authorize(identity models.Identity, post models.Post) bool {
	return identity.Authenticated && identity.UserID != 0 && identity.UserID == post.AuthorID
}

// CanView reports whether identity may read post: public posts are visible
// to everyone, private posts to their author only.
func CanView(identity models.Identity, post models.Post) bool {
	return post.Status != models.StatusPrivate || Authorize(identity, post)
}

// CheckMutation returns ErrAccessDenied unless identity owns post.
func CheckMutation(ctx context.Context, identity models.Identity, post models.Post) error {
	if Authorize(identity, post) {
		return nil
	}

	logger.FromContext(ctx).Warn().
		Str("func", "CheckMutation").
		Str("post_id", post.ID).
		Int64("author_id", post.AuthorID).
		Int64("user_id", identity.UserID).
		Msg("access denied")
	return ErrAccessDenied
}

// CheckRead returns ErrNotFound when identity may not see post, so private
// posts of other users are indistinguishable from missing ones.
func CheckRead(ctx context.Context, identity models.Identity, post models.Post) error {
	if CanView(identity, post) {
		return nil
	}

	logger.FromContext(ctx).Info().
		Str("func", "CheckRead").
		Str("post_id", post.ID).
		Int64("user_id", identity.UserID).
		Msg("post hidden")
	return ErrNotFound
}
