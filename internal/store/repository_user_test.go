package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var userColumnNames = []string{
	"user_id", "username", "email", "password_hash", "avatar",
	"reset_password_token", "reset_password_expires", "date_joined",
}

func newTestUserRepo(t *testing.T) (*userRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &userRepository{
		db:     newDB(db, l),
		logger: l,
	}
	return repo, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	user := models.User{Username: "ann", Email: "ann@example.com", PasswordHash: "hash"}
	now := time.Now()

	rows := sqlmock.NewRows(userColumnNames).
		AddRow(1, user.Username, user.Email, user.PasswordHash, nil, nil, nil, now)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.Username, user.Email, user.PasswordHash).
		WillReturnRows(rows)

	created, err := repo.CreateUser(ctx, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.UserID != 1 {
		t.Errorf("expected UserID=1, got %d", created.UserID)
	}
	if created.Avatar != "" {
		t.Errorf("expected empty avatar, got %s", created.Avatar)
	}
	if !created.DateJoined.Equal(now) {
		t.Errorf("expected date joined %v, got %v", now, created.DateJoined)
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateUser(context.Background(), models.User{Email: "ann@example.com"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestCreateUser_UnexpectedDBError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateUser(context.Background(), models.User{})
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestCreateUser_ScanError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	rows := sqlmock.
		NewRows([]string{"user_id"}). // intentionally wrong shape → scan error
		AddRow(1)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(rows)

	_, err := repo.CreateUser(context.Background(), models.User{})
	if err == nil {
		t.Fatal("expected scan error, got nil")
	}
}

func TestFindUserByEmail_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(userColumnNames).
		AddRow(3, "ann", "ann@example.com", "hash", "/uploads/user-3.png", nil, nil, now)

	mock.ExpectQuery("SELECT user_id").
		WithArgs("ann@example.com").
		WillReturnRows(rows)

	found, err := repo.FindUserByEmail(context.Background(), "ann@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.UserID != 3 || found.Avatar != "/uploads/user-3.png" {
		t.Errorf("unexpected user: %+v", found)
	}
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err := repo.FindUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFindUserByID_UnexpectedError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id").
		WithArgs(int64(1)).
		WillReturnError(errors.New("db failure"))

	_, err := repo.FindUserByID(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestFindUserByResetToken(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, db := newTestUserRepo(t)
		defer db.Close()

		expires := time.Now().Add(time.Hour)
		mock.ExpectQuery("WHERE reset_password_token = \\$1").
			WithArgs("tok").
			WillReturnRows(sqlmock.NewRows(userColumnNames).
				AddRow(5, "ann", "ann@example.com", "hash", nil, "tok", expires, time.Now()))

		user, err := repo.FindUserByResetToken(context.Background(), "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ResetPasswordToken != "tok" || !user.ResetPasswordExpires.Equal(expires) {
			t.Errorf("unexpected reset state: %+v", user)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		repo, mock, db := newTestUserRepo(t)
		defer db.Close()

		mock.ExpectQuery("WHERE reset_password_token = \\$1").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(userColumnNames))

		_, err := repo.FindUserByResetToken(context.Background(), "nope")
		if !errors.Is(err, ErrResetTokenNotFound) {
			t.Fatalf("expected ErrResetTokenNotFound, got %v", err)
		}
	})
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE users").
		WithArgs("ann", "taken@example.com", sqlmock.AnyArg(), int64(1)).
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.UpdateProfile(context.Background(), models.User{UserID: 1, Username: "ann", Email: "taken@example.com"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestUpdateProfile_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE users").
		WithArgs("ann2", "ann2@example.com", "/uploads/user-1.jpg", int64(1)).
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow(1, "ann2", "ann2@example.com", "hash", "/uploads/user-1.jpg", nil, nil, time.Now()))

	updated, err := repo.UpdateProfile(context.Background(), models.User{
		UserID: 1, Username: "ann2", Email: "ann2@example.com", Avatar: "/uploads/user-1.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Username != "ann2" {
		t.Errorf("expected username ann2, got %s", updated.Username)
	}
}

func TestResetPassword(t *testing.T) {
	now := time.Now()

	t.Run("consumed", func(t *testing.T) {
		repo, mock, db := newTestUserRepo(t)
		defer db.Close()

		mock.ExpectExec("UPDATE users").
			WithArgs("newhash", "tok", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.ResetPassword(context.Background(), "tok", "newhash", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("already used or expired", func(t *testing.T) {
		repo, mock, db := newTestUserRepo(t)
		defer db.Close()

		mock.ExpectExec("UPDATE users").
			WithArgs("newhash", "tok", now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ResetPassword(context.Background(), "tok", "newhash", now)
		if !errors.Is(err, ErrResetTokenNotFound) {
			t.Fatalf("expected ErrResetTokenNotFound, got %v", err)
		}
	})
}

func TestSetResetToken_ExecError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	mock.ExpectExec("UPDATE users").
		WithArgs("tok", expires, int64(1)).
		WillReturnError(errors.New("boom"))

	err := repo.SetResetToken(context.Background(), 1, models.ResetToken{Token: "tok", ExpiresAt: expires})
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
}

func TestUpdatePassword_UserMissing(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE users").
		WithArgs("hash", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdatePassword(context.Background(), 9, "hash"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	t.Run("returns avatar", func(t *testing.T) {
		repo, mock, db := newTestUserRepo(t)
		defer db.Close()

		mock.ExpectQuery("DELETE FROM users").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"avatar"}).AddRow("/uploads/user-1.png"))

		avatar, err := repo.DeleteUser(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if avatar != "/uploads/user-1.png" {
			t.Errorf("expected avatar reference, got %q", avatar)
		}
	})

	t.Run("null avatar", func(t *testing.T) {
		repo, mock, db := newTestUserRepo(t)
		defer db.Close()

		mock.ExpectQuery("DELETE FROM users").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"avatar"}).AddRow(nil))

		avatar, err := repo.DeleteUser(context.Background(), 2)
		if err != nil || avatar != "" {
			t.Fatalf("expected empty avatar and no error, got %q, %v", avatar, err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		repo, mock, db := newTestUserRepo(t)
		defer db.Close()

		mock.ExpectQuery("DELETE FROM users").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"avatar"}))

		if _, err := repo.DeleteUser(context.Background(), 3); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
