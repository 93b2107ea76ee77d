package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation, lookup, profile and credential updates against
// the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields (UserID, DateJoined).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrEmailAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Username, user.Email, user.PasswordHash)

	// create user in db
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrEmailAlreadyExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	// scan saved user from db
	created, err := scanUser(row)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")
		return models.User{}, err
	}

	return created, nil
}

// FindUserByID retrieves a user by primary key.
//
// Returns [ErrUserNotFound] when no row matches.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindUserByID", findUserByID, userID)
}

// FindUserByEmail retrieves a user by the unique e-mail.
//
// Returns [ErrUserNotFound] when no row matches.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindUserByEmail", findUserByEmail, email)
}

// FindUserByResetToken retrieves the user holding token, regardless of its
// expiry. The caller compares the expiry against its own clock.
func (r *userRepository) FindUserByResetToken(ctx context.Context, token string) (models.User, error) {
	user, err := r.findOne(ctx, "*userRepository.FindUserByResetToken", findUserByResetToken, token)
	if errors.Is(err, ErrUserNotFound) {
		return models.User{}, ErrResetTokenNotFound
	}
	return user, err
}

func (r *userRepository) findOne(ctx context.Context, funcName, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, query, arg)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", funcName).Msg("error: row is nil")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug().Str("func", funcName).Msg("user not found")
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: scanning error")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

// UpdateProfile writes username, e-mail and avatar of user.UserID and returns
// the stored row.
//
// Error handling:
//   - unique_violation on e-mail → [ErrEmailAlreadyExists].
//   - no row → [ErrUserNotFound].
func (r *userRepository) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, updateUserProfile, user.Username, user.Email, nullString(user.Avatar), user.UserID)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateProfile").Int64("user_id", user.UserID).Msg("error updating profile")
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrEmailAlreadyExists
		}
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	updated, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateProfile").Msg("error: scanning error")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return updated, nil
}

// UpdatePassword replaces the password hash of userID.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.execOne(ctx, "*userRepository.UpdatePassword", ErrUserNotFound, updateUserPassword, passwordHash, userID)
}

// SetResetToken stores a pending reset token for userID in a single UPDATE.
func (r *userRepository) SetResetToken(ctx context.Context, userID int64, token models.ResetToken) error {
	return r.execOne(ctx, "*userRepository.SetResetToken", ErrUserNotFound, setUserResetToken, token.Token, token.ExpiresAt, userID)
}

// ResetPassword writes passwordHash and clears the token. The WHERE clause
// only matches while the token is still valid at now, so a token is
// consumed at most once.
func (r *userRepository) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) error {
	return r.execOne(ctx, "*userRepository.ResetPassword", ErrResetTokenNotFound, resetUserPassword, passwordHash, token, now)
}

// execOne runs a single-row UPDATE and maps zero affected rows to notFound.
func (r *userRepository) execOne(ctx context.Context, funcName string, notFound error, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to execute statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to get affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected == 0 {
		log.Debug().Str("func", funcName).Msg("no rows affected")
		return notFound
	}

	return nil
}

// DeleteUser removes the user row and returns the avatar reference it held
// ("" when none). Posts must be removed beforehand: the foreign key from
// posts has no ON DELETE CASCADE.
func (r *userRepository) DeleteUser(ctx context.Context, userID int64) (string, error) {
	log := logger.FromContext(ctx)

	var avatar sql.NullString
	err := r.db.QueryRowContext(ctx, deleteUser, userID).Scan(&avatar)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn().Str("func", "*userRepository.DeleteUser").Int64("user_id", userID).Msg("user not found")
		return "", ErrUserNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.DeleteUser").Int64("user_id", userID).Msg("failed to delete user")
		return "", fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return avatar.String, nil
}

// scanUser reads the columns listed in userColumns.
func scanUser(row *sql.Row) (models.User, error) {
	var (
		user       models.User
		avatar     sql.NullString
		resetToken sql.NullString
		resetExp   sql.NullTime
	)

	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&avatar,
		&resetToken,
		&resetExp,
		&user.DateJoined,
	)
	if err != nil {
		return models.User{}, err
	}

	user.Avatar = avatar.String
	user.ResetPasswordToken = resetToken.String
	user.ResetPasswordExpires = resetExp.Time

	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
