package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/store"
	"github.com/MKhiriev/go-blog/internal/validators"
	"github.com/MKhiriev/go-blog/models"
	"golang.org/x/crypto/bcrypt"
)

// resetTokenBytes is the amount of random bytes in a reset token; the token
// itself is their hex encoding.
const resetTokenBytes = 20

// credentialService is the concrete implementation of CredentialService.
type credentialService struct {
	userRepository store.UserRepository
	validator      validators.Validator

	// hashCost is the bcrypt work factor.
	hashCost int

	// resetTokenTTL is how long an issued reset token is accepted.
	resetTokenTTL time.Duration

	now    func() time.Time
	random io.Reader

	logger *logger.Logger
}

// NewCredentialService constructs a CredentialService using cfg for the
// bcrypt cost and the reset token lifetime.
func NewCredentialService(userRepository store.UserRepository, validator validators.Validator, cfg config.App, logger *logger.Logger) CredentialService {
	return &credentialService{
		userRepository: userRepository,
		validator:      validator,
		hashCost:       cfg.PasswordHashCost,
		resetTokenTTL:  cfg.ResetTokenTTL,
		now:            time.Now,
		random:         rand.Reader,
		logger:         logger,
	}
}

// HashPassword returns the bcrypt hash of password with a fresh salt.
func (c *credentialService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.hashCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Failures other
// than a plain mismatch (e.g. a corrupted hash) are logged.
func (c *credentialService) VerifyPassword(ctx context.Context, password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		logger.FromContext(ctx).Err(err).Str("func", "credentialService.VerifyPassword").Msg("password hash comparison failed")
	}
	return false
}

// IssueResetToken stores a fresh reset token for user and returns it.
func (c *credentialService) IssueResetToken(ctx context.Context, user models.User) (models.ResetToken, error) {
	log := logger.FromContext(ctx)

	raw := make([]byte, resetTokenBytes)
	if _, err := io.ReadFull(c.random, raw); err != nil {
		log.Err(err).Str("func", "credentialService.IssueResetToken").Msg("not enough entropy for reset token")
		return models.ResetToken{}, fmt.Errorf("error generating reset token: %w", err)
	}

	token := models.ResetToken{
		Token:     hex.EncodeToString(raw),
		ExpiresAt: c.now().Add(c.resetTokenTTL),
	}

	if err := c.userRepository.SetResetToken(ctx, user.UserID, token); err != nil {
		log.Err(err).Str("func", "credentialService.IssueResetToken").Int64("user_id", user.UserID).Msg("failed to store reset token")
		if errors.Is(err, store.ErrUserNotFound) {
			return models.ResetToken{}, ErrNotFound
		}
		return models.ResetToken{}, fmt.Errorf("error storing reset token: %w", err)
	}

	log.Info().Str("func", "credentialService.IssueResetToken").Int64("user_id", user.UserID).Msg("reset token issued")
	return token, nil
}

// CheckResetToken returns ErrTokenInvalid for an unknown or expired token.
func (c *credentialService) CheckResetToken(ctx context.Context, token string) error {
	_, err := c.tokenHolder(ctx, token)
	return err
}

func (c *credentialService) tokenHolder(ctx context.Context, token string) (models.User, error) {
	log := logger.FromContext(ctx)

	if token == "" {
		return models.User{}, ErrTokenInvalid
	}

	user, err := c.userRepository.FindUserByResetToken(ctx, token)
	if errors.Is(err, store.ErrResetTokenNotFound) {
		log.Debug().Str("func", "credentialService.tokenHolder").Msg("unknown reset token")
		return models.User{}, ErrTokenInvalid
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error looking up reset token: %w", err)
	}

	if !user.ResetPasswordExpires.After(c.now()) {
		log.Debug().Str("func", "credentialService.tokenHolder").Int64("user_id", user.UserID).Msg("expired reset token")
		return models.User{}, ErrTokenInvalid
	}

	return user, nil
}

// ConsumeResetToken checks token, validates input and writes the new
// password hash while clearing the token in one statement.
func (c *credentialService) ConsumeResetToken(ctx context.Context, token string, input models.ResetPasswordInput) error {
	log := logger.FromContext(ctx)

	user, err := c.tokenHolder(ctx, token)
	if err != nil {
		return err
	}

	if err = c.validator.Validate(ctx, input); err != nil {
		return err
	}

	hash, err := c.HashPassword(input.Password)
	if err != nil {
		return err
	}

	err = c.userRepository.ResetPassword(ctx, token, hash, c.now())
	if errors.Is(err, store.ErrResetTokenNotFound) {
		// consumed by a concurrent request or expired meanwhile
		log.Warn().Str("func", "credentialService.ConsumeResetToken").Int64("user_id", user.UserID).Msg("reset token was already used")
		return ErrTokenInvalid
	}
	if err != nil {
		log.Err(err).Str("func", "credentialService.ConsumeResetToken").Int64("user_id", user.UserID).Msg("failed to reset password")
		return fmt.Errorf("error resetting password: %w", err)
	}

	log.Info().Str("func", "credentialService.ConsumeResetToken").Int64("user_id", user.UserID).Msg("password reset")
	return nil
}
