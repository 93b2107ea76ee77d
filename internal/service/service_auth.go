package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/store"
	"github.com/MKhiriev/go-blog/internal/utils"
	"github.com/MKhiriev/go-blog/models"
	"github.com/google/uuid"
)

// authService is the concrete implementation of AuthService.
// It verifies credentials through a CredentialService and keeps sessions in
// a SessionRepository. The browser only ever holds a signed JWT whose "jti"
// claim is the session id.
type authService struct {
	userRepository    store.UserRepository
	sessionRepository store.SessionRepository
	credentials       CredentialService

	// tokenSignKey is the HMAC secret used to sign and verify session tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued token.
	// Tokens whose issuer does not match this value are rejected.
	tokenIssuer string

	// sessionDuration controls how long a new session remains valid.
	sessionDuration time.Duration

	now func() time.Time

	logger *logger.Logger
}

// NewAuthService constructs a new AuthService populated with the session
// parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(
	userRepository store.UserRepository,
	sessionRepository store.SessionRepository,
	credentials CredentialService,
	cfg config.App,
	logger *logger.Logger,
) AuthService {
	return &authService{
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		credentials:       credentials,
		tokenSignKey:      cfg.TokenSignKey,
		tokenIssuer:       cfg.TokenIssuer,
		sessionDuration:   cfg.SessionDuration,
		now:               time.Now,
		logger:            logger,
	}
}

// Authenticate looks the user up by e-mail and checks the password.
//
// An unknown e-mail and a wrong password are logged differently but both
// return ErrInvalidCredentials.
func (a *authService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		log.Debug().Str("func", "authService.Authenticate").Msg("empty credentials")
		return models.User{}, ErrInvalidCredentials
	}

	user, err := a.userRepository.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		log.Info().Str("func", "authService.Authenticate").Msg("sign in with unknown e-mail")
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		log.Err(err).Str("func", "authService.Authenticate").Msg("user search by e-mail failed")
		return models.User{}, fmt.Errorf("user search by e-mail failed: %w", err)
	}

	if !a.credentials.VerifyPassword(ctx, password, user.PasswordHash) {
		log.Info().Str("func", "authService.Authenticate").Int64("user_id", user.UserID).Msg("sign in with wrong password")
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// SignIn replaces current with a fresh session bound to user, so a session
// id known before sign in is never authenticated. Pending flashes of
// current are carried over.
func (a *authService) SignIn(ctx context.Context, current *models.Session, user models.User) (models.Session, models.Token, error) {
	log := logger.FromContext(ctx)

	var flashes []models.Flash
	if current != nil {
		flashes = current.Flashes
		if err := a.sessionRepository.DeleteSession(ctx, current.ID); err != nil {
			log.Err(err).Str("func", "authService.SignIn").Str("session_id", current.ID).Msg("failed to drop previous session")
			return models.Session{}, models.Token{}, fmt.Errorf("error dropping previous session: %w", err)
		}
	}

	session := a.newSession(user.UserID)
	session.Flashes = flashes

	token, err := a.persist(ctx, session)
	if err != nil {
		log.Err(err).Str("func", "authService.SignIn").Int64("user_id", user.UserID).Msg("failed to start session")
		return models.Session{}, models.Token{}, err
	}

	log.Info().Str("func", "authService.SignIn").Int64("user_id", user.UserID).Msg("user signed in")
	return session, token, nil
}

// SignOut deletes session. A nil session is a no-op.
func (a *authService) SignOut(ctx context.Context, session *models.Session) error {
	if session == nil {
		return nil
	}

	if err := a.sessionRepository.DeleteSession(ctx, session.ID); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "authService.SignOut").Str("session_id", session.ID).Msg("failed to delete session")
		return fmt.Errorf("error signing out: %w", err)
	}

	logger.FromContext(ctx).Info().Str("func", "authService.SignOut").Int64("user_id", session.UserID).Msg("user signed out")
	return nil
}

// Resolve turns a cookie value into the request context. Flashes of the
// session are popped: they are returned as notices and removed from the
// store.
//
// The only error is a cancelled ctx; every other failure leaves the visitor
// anonymous.
func (a *authService) Resolve(ctx context.Context, cookie string) (*models.RequestContext, error) {
	log := logger.FromContext(ctx)
	rc := &models.RequestContext{Identity: models.Anonymous()}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cookie == "" {
		return rc, nil
	}

	token, err := utils.ValidateAndParseSessionToken(cookie, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		log.Debug().Err(err).Str("func", "authService.Resolve").Msg("invalid session cookie")
		return rc, nil
	}

	session, err := a.sessionRepository.FindSession(ctx, token.SessionID)
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			log.Err(err).Str("func", "authService.Resolve").Str("session_id", token.SessionID).Msg("failed to load session")
		}
		return rc, nil
	}

	if session.Expired(a.now()) {
		log.Debug().Str("func", "authService.Resolve").Str("session_id", session.ID).Msg("session expired")
		if err = a.sessionRepository.DeleteSession(ctx, session.ID); err != nil {
			log.Err(err).Str("func", "authService.Resolve").Str("session_id", session.ID).Msg("failed to delete expired session")
		}
		return rc, nil
	}

	dirty := false
	if len(session.Flashes) > 0 {
		rc.Notices = session.Flashes
		session.Flashes = nil
		dirty = true
	}

	if session.UserID != 0 {
		user, findErr := a.userRepository.FindUserByID(ctx, session.UserID)
		switch {
		case findErr == nil:
			rc.Identity = models.IdentityOf(user)
		case errors.Is(findErr, store.ErrUserNotFound):
			log.Warn().Str("func", "authService.Resolve").Int64("user_id", session.UserID).Msg("session of a deleted user")
			session.UserID = 0
			dirty = true
		default:
			log.Err(findErr).Str("func", "authService.Resolve").Int64("user_id", session.UserID).Msg("failed to load session user")
		}
	}

	if dirty {
		if err = a.sessionRepository.SaveSession(ctx, session); err != nil {
			log.Err(err).Str("func", "authService.Resolve").Str("session_id", session.ID).Msg("failed to save popped session")
		}
	}

	rc.Session = &session
	return rc, nil
}

// AddFlash appends flash to session and stores it. A nil session is
// replaced by a new anonymous one.
func (a *authService) AddFlash(ctx context.Context, session *models.Session, flash models.Flash) (models.Session, models.Token, error) {
	var s models.Session
	if session != nil {
		s = *session
	} else {
		s = a.newSession(0)
	}

	s.Flashes = append(append([]models.Flash(nil), s.Flashes...), flash)

	token, err := a.persist(ctx, s)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "authService.AddFlash").Str("session_id", s.ID).Msg("failed to store flash")
		return models.Session{}, models.Token{}, err
	}

	return s, token, nil
}

// PurgeExpiredSessions deletes sessions that are already expired.
func (a *authService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	purged, err := a.sessionRepository.DeleteExpiredSessions(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("error purging sessions: %w", err)
	}
	return purged, nil
}

func (a *authService) newSession(userID int64) models.Session {
	now := a.now()
	return models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.sessionDuration),
	}
}

// persist saves session and signs a token that expires with it.
func (a *authService) persist(ctx context.Context, session models.Session) (models.Token, error) {
	if err := a.sessionRepository.SaveSession(ctx, session); err != nil {
		return models.Token{}, fmt.Errorf("error saving session: %w", err)
	}

	ttl := session.ExpiresAt.Sub(a.now())
	if ttl <= 0 {
		ttl = time.Second
	}

	token, err := utils.GenerateSessionToken(a.tokenIssuer, session.ID, ttl, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}
