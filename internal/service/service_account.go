package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/go-blog/internal/adapter"
	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/media"
	"github.com/MKhiriev/go-blog/internal/store"
	"github.com/MKhiriev/go-blog/internal/validators"
	"github.com/MKhiriev/go-blog/models"
)

// Form messages produced by the account service.
const (
	MsgEmailTaken          = "user with this email already exists"
	MsgNoUserWithEmail     = "there is no user with this email"
	MsgOldPasswordMismatch = "please enter your old password correctly"
	MsgUnsupportedImage    = "only jpg, png and gif images are allowed"
)

const resetPath = "/account/password/reset/"

type accountService struct {
	userRepository    store.UserRepository
	postRepository    store.PostRepository
	sessionRepository store.SessionRepository
	avatarStorage     store.AvatarFileStorage

	credentials CredentialService
	mailer      adapter.MailAdapter
	images      media.Processor
	validator   validators.Validator

	// publicHost, when set, replaces the request host in reset links.
	publicHost string
	mailFrom   string

	logger *logger.Logger
}

// AccountDeps groups the collaborators of the account service.
type AccountDeps struct {
	Users       store.UserRepository
	Posts       store.PostRepository
	Sessions    store.SessionRepository
	Avatars     store.AvatarFileStorage
	Credentials CredentialService
	Mailer      adapter.MailAdapter
	Images      media.Processor
	Validator   validators.Validator
}

// NewAccountService constructs the AccountService.
func NewAccountService(deps AccountDeps, cfg config.StructuredConfig, logger *logger.Logger) AccountService {
	return &accountService{
		userRepository:    deps.Users,
		postRepository:    deps.Posts,
		sessionRepository: deps.Sessions,
		avatarStorage:     deps.Avatars,
		credentials:       deps.Credentials,
		mailer:            deps.Mailer,
		images:            deps.Images,
		validator:         deps.Validator,
		publicHost:        cfg.Server.PublicHost,
		mailFrom:          cfg.Mail.From,
		logger:            logger,
	}
}

// SignUp validates input and registers a new user.
func (a *accountService) SignUp(ctx context.Context, input models.SignUpInput) (models.User, error) {
	log := logger.FromContext(ctx)

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := a.validator.Validate(ctx, input); err != nil {
		return models.User{}, err
	}

	hash, err := a.credentials.HashPassword(input.Password)
	if err != nil {
		log.Err(err).Str("func", "accountService.SignUp").Msg("failed to hash password")
		return models.User{}, err
	}

	user, err := a.userRepository.CreateUser(ctx, models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrEmailAlreadyExists) {
		log.Debug().Str("func", "accountService.SignUp").Msg("email already registered")
		return models.User{}, emailTaken()
	}
	if err != nil {
		log.Err(err).Str("func", "accountService.SignUp").Msg("failed to create user")
		return models.User{}, fmt.Errorf("error creating user: %w", err)
	}

	log.Info().Str("func", "accountService.SignUp").Int64("user_id", user.UserID).Msg("user signed up")
	return user, nil
}

// Profile returns the signed-in user.
func (a *accountService) Profile(ctx context.Context, identity models.Identity) (models.User, error) {
	if !identity.Authenticated {
		return models.User{}, ErrUnauthenticated
	}

	user, err := a.userRepository.FindUserByID(ctx, identity.UserID)
	if errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// UpdateProfile writes username and e-mail and, if one was uploaded, a
// resized avatar. A failed avatar write keeps the text update and the old
// avatar.
func (a *accountService) UpdateProfile(ctx context.Context, identity models.Identity, input models.ProfileInput) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := a.Profile(ctx, identity)
	if err != nil {
		return models.User{}, err
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	verr := validators.ValidationError{}
	if err = a.validator.Validate(ctx, input); err != nil {
		fieldErrs, ok := validators.AsValidationError(err)
		if !ok {
			return models.User{}, err
		}
		verr.Merge(fieldErrs)
	}

	var ext string
	if input.Avatar != nil {
		ext = strings.ToLower(filepath.Ext(input.Avatar.Filename))
		if !media.SupportedExtension(ext) {
			verr.Add(validators.FieldAvatar, MsgUnsupportedImage)
		}
	}

	if err = verr.OrNil(); err != nil {
		return models.User{}, err
	}

	user.Username = input.Username
	user.Email = input.Email

	updated, err := a.userRepository.UpdateProfile(ctx, user)
	switch {
	case errors.Is(err, store.ErrEmailAlreadyExists):
		return models.User{}, emailTaken()
	case errors.Is(err, store.ErrUserNotFound):
		return models.User{}, ErrNotFound
	case err != nil:
		log.Err(err).Str("func", "accountService.UpdateProfile").Int64("user_id", user.UserID).Msg("failed to update profile")
		return models.User{}, fmt.Errorf("error updating profile: %w", err)
	}

	if input.Avatar == nil {
		log.Info().Str("func", "accountService.UpdateProfile").Int64("user_id", user.UserID).Msg("profile updated")
		return updated, nil
	}

	ref, err := a.storeAvatar(ctx, updated, ext, input.Avatar.Data)
	if err != nil {
		log.Warn().Err(err).Str("func", "accountService.UpdateProfile").Int64("user_id", user.UserID).Msg("avatar was not saved, profile updated without it")
		return updated, nil
	}

	withAvatar := updated
	withAvatar.Avatar = ref
	withAvatar, err = a.userRepository.UpdateProfile(ctx, withAvatar)
	if err != nil {
		log.Warn().Err(err).Str("func", "accountService.UpdateProfile").Int64("user_id", user.UserID).Msg("failed to record avatar reference")
		return updated, nil
	}

	log.Info().Str("func", "accountService.UpdateProfile").Int64("user_id", user.UserID).Str("avatar", ref).Msg("profile updated")
	return withAvatar, nil
}

func (a *accountService) storeAvatar(ctx context.Context, user models.User, ext string, data []byte) (string, error) {
	resized, err := a.images.Resize(data, ext)
	if err != nil {
		return "", err
	}
	return a.avatarStorage.ReplaceAvatar(ctx, user.Avatar, user.UserID, ext, resized)
}

// ChangePassword checks the old password and stores the new one.
func (a *accountService) ChangePassword(ctx context.Context, identity models.Identity, input models.ChangePasswordInput) error {
	log := logger.FromContext(ctx)

	user, err := a.Profile(ctx, identity)
	if err != nil {
		return err
	}

	if !a.credentials.VerifyPassword(ctx, input.OldPassword, user.PasswordHash) {
		log.Debug().Str("func", "accountService.ChangePassword").Int64("user_id", user.UserID).Msg("old password mismatch")
		return validators.ValidationError{validators.FieldOldPassword: {MsgOldPasswordMismatch}}
	}

	if err = a.validator.Validate(ctx, input); err != nil {
		return err
	}

	hash, err := a.credentials.HashPassword(input.Password)
	if err != nil {
		return err
	}

	err = a.userRepository.UpdatePassword(ctx, user.UserID, hash)
	if errors.Is(err, store.ErrUserNotFound) {
		return ErrNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "accountService.ChangePassword").Int64("user_id", user.UserID).Msg("failed to update password")
		return fmt.Errorf("error updating password: %w", err)
	}

	log.Info().Str("func", "accountService.ChangePassword").Int64("user_id", user.UserID).Msg("password changed")
	return nil
}

// ForgotPassword issues a reset token for email and mails the reset link.
// host is the request host; a configured public host takes precedence.
func (a *accountService) ForgotPassword(ctx context.Context, email, host string) error {
	log := logger.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" {
		return validators.ValidationError{validators.FieldEmail: {validators.MsgFieldEmpty}}
	}

	user, err := a.userRepository.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		log.Debug().Str("func", "accountService.ForgotPassword").Msg("reset requested for unknown email")
		return validators.ValidationError{validators.FieldEmail: {MsgNoUserWithEmail}}
	}
	if err != nil {
		return fmt.Errorf("error loading user: %w", err)
	}

	token, err := a.credentials.IssueResetToken(ctx, user)
	if err != nil {
		return err
	}

	if a.publicHost != "" {
		host = a.publicHost
	}

	err = a.mailer.Send(ctx, resetEmail(user.Email, a.mailFrom, host, token.Token))
	if err != nil {
		log.Err(err).Str("func", "accountService.ForgotPassword").Int64("user_id", user.UserID).Msg("failed to send reset email")
		return fmt.Errorf("%w: %w", ErrMailNotSent, err)
	}

	log.Info().Str("func", "accountService.ForgotPassword").Int64("user_id", user.UserID).Msg("reset email sent")
	return nil
}

// ResetPassword sets a new password using a reset token.
func (a *accountService) ResetPassword(ctx context.Context, token string, input models.ResetPasswordInput) error {
	return a.credentials.ConsumeResetToken(ctx, token, input)
}

// CheckResetToken reports ErrTokenInvalid for an unusable reset token.
func (a *accountService) CheckResetToken(ctx context.Context, token string) error {
	return a.credentials.CheckResetToken(ctx, token)
}

// DeleteAccount removes the user together with everything it owns: posts,
// then the user row, then sessions and the avatar file. The last two steps
// only log their failures.
func (a *accountService) DeleteAccount(ctx context.Context, identity models.Identity) error {
	log := logger.FromContext(ctx)

	if !identity.Authenticated {
		return ErrUnauthenticated
	}
	userID := identity.UserID

	removed, err := a.postRepository.DeletePostsByAuthor(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "accountService.DeleteAccount").Int64("user_id", userID).Msg("failed to delete posts of user")
		return fmt.Errorf("error deleting posts: %w", err)
	}
	log.Debug().Str("func", "accountService.DeleteAccount").Int64("user_id", userID).Int64("posts", removed).Msg("posts deleted")

	avatar, err := a.userRepository.DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		return ErrNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "accountService.DeleteAccount").Int64("user_id", userID).Msg("failed to delete user")
		return fmt.Errorf("error deleting user: %w", err)
	}

	if err = a.sessionRepository.DeleteUserSessions(ctx, userID); err != nil {
		log.Warn().Err(err).Str("func", "accountService.DeleteAccount").Int64("user_id", userID).Msg("failed to drop sessions of deleted user")
	}

	if avatar != "" {
		if err = a.avatarStorage.DeleteAvatar(ctx, avatar); err != nil {
			log.Warn().Err(err).Str("func", "accountService.DeleteAccount").Int64("user_id", userID).Str("avatar", avatar).Msg("failed to delete avatar file")
		}
	}

	log.Info().Str("func", "accountService.DeleteAccount").Int64("user_id", userID).Msg("account deleted")
	return nil
}

func emailTaken() error {
	return errors.Join(ErrDuplicateKey, validators.ValidationError{validators.FieldEmail: {MsgEmailTaken}})
}

func resetEmail(to, from, host, token string) models.Email {
	link := "http://" + host + resetPath + token
	return models.Email{
		To:      to,
		From:    from,
		Subject: "Password reset on " + host,
		Text: "You are receiving this because you have requested a password reset for your account.\n" +
			"Please click on the following link, or paste this into your browser to complete the process:\n" +
			link + "\n\n" +
			"If you did not request this, please ignore this email and your password will remain unchanged.\n",
	}
}
