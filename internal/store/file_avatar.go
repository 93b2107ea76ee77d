package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/go-blog/internal/logger"
)

// AvatarURLPrefix is the public path under which avatars are served.
const AvatarURLPrefix = "/uploads/"

// avatarFileStorage is the file-system implementation of
// [AvatarFileStorage]. Files are named "user-<id><ext>" inside dir.
type avatarFileStorage struct {
	dir    string
	logger *logger.Logger
}

// NewAvatarFileStorage constructs an [AvatarFileStorage] writing into dir.
// The directory is created on first write.
func NewAvatarFileStorage(dir string, logger *logger.Logger) AvatarFileStorage {
	logger.Debug().Str("dir", dir).Msg("creating avatar file storage")
	return &avatarFileStorage{
		dir:    dir,
		logger: logger,
	}
}

// ReplaceAvatar writes data as the new avatar of userID.
//
// The previous file (if any) is renamed to a temporary name first. It is
// removed once the new file is written and restored if writing fails, so
// a failed upload never loses the old avatar.
func (a *avatarFileStorage) ReplaceAvatar(ctx context.Context, previousRef string, userID int64, ext string, data []byte) (string, error) {
	log := logger.FromContext(ctx)

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		log.Err(err).Str("func", "avatarFileStorage.ReplaceAvatar").Str("dir", a.dir).Msg("failed to create upload dir")
		return "", fmt.Errorf("%w: %w", ErrSavingFile, err)
	}

	name := fmt.Sprintf("user-%d%s", userID, strings.ToLower(ext))
	target := filepath.Join(a.dir, name)

	var backup, previous string
	if previousRef != "" {
		if p, err := a.pathOf(previousRef); err == nil {
			previous = p
			backup = p + ".bak"
			if err = os.Rename(previous, backup); err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					log.Err(err).Str("func", "avatarFileStorage.ReplaceAvatar").Str("file", previous).Msg("failed to back up previous avatar")
					return "", fmt.Errorf("%w: %w", ErrSavingFile, err)
				}
				backup = ""
			}
		}
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		log.Err(err).Str("func", "avatarFileStorage.ReplaceAvatar").Str("file", target).Msg("failed to write avatar")
		if backup != "" {
			if restoreErr := os.Rename(backup, previous); restoreErr != nil {
				log.Err(restoreErr).Str("func", "avatarFileStorage.ReplaceAvatar").Str("file", previous).Msg("failed to restore previous avatar")
			}
		}
		return "", fmt.Errorf("%w: %w", ErrSavingFile, err)
	}

	if backup != "" {
		if err := os.Remove(backup); err != nil {
			log.Warn().Err(err).Str("func", "avatarFileStorage.ReplaceAvatar").Str("file", backup).Msg("failed to remove avatar backup")
		}
	}

	log.Info().Str("func", "avatarFileStorage.ReplaceAvatar").Int64("user_id", userID).Str("file", name).Msg("avatar saved")
	return AvatarURLPrefix + name, nil
}

// DeleteAvatar removes the file behind ref. An empty ref or a file that is
// already gone is not an error.
func (a *avatarFileStorage) DeleteAvatar(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}

	p, err := a.pathOf(ref)
	if err != nil {
		return err
	}

	if err = os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.FromContext(ctx).Err(err).Str("func", "avatarFileStorage.DeleteAvatar").Str("file", p).Msg("failed to delete avatar")
		return err
	}

	return nil
}

// pathOf maps a public reference to a file inside dir.
func (a *avatarFileStorage) pathOf(ref string) (string, error) {
	if !strings.HasPrefix(ref, AvatarURLPrefix) {
		return "", ErrInvalidFileReference
	}

	name := path.Base(strings.TrimPrefix(ref, AvatarURLPrefix))
	if name == "." || name == "/" || name == ".." {
		return "", ErrInvalidFileReference
	}

	return filepath.Join(a.dir, name), nil
}
