package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/railway-reservation/internal/utils"
)

func newUserRepoMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestUserCreate(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password_hash, is_admin) VALUES (?,?,0)")).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))

	id, err := repo.Create(context.Background(), " alice ", "s3cret", 4)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'alice' for key 'uq_users_username'"))

	_, err := repo.Create(context.Background(), "alice", "s3cret", 4)
	assert.ErrorIs(t, err, ErrUsernameExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByUsername(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	hash, err := utils.HashPassword("s3cret", 4)
	assert.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery("SELECT id,username,password_hash,is_admin,created_at,updated_at FROM users").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin", "created_at", "updated_at"}).
			AddRow(3, "alice", hash, false, now, now))

	u, err := repo.GetByUsername(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), u.ID)
	assert.False(t, u.IsAdmin)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "s3cret"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByUsernameNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery("SELECT id,username,password_hash").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin", "created_at", "updated_at"}))

	_, err := repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdatePassword(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=? WHERE username=?")).
		WithArgs(sqlmock.AnyArg(), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePassword(context.Background(), "alice", "newpass", 4)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdatePasswordNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=? WHERE username=?")).
		WithArgs(sqlmock.AnyArg(), "nobody").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "nobody", "newpass", 4)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Deleting a user takes its tickets, cancellations and bookings with
// it, children first, all in one transaction.
func TestUserDeleteCascade(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE username=? LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE t FROM tickets t JOIN bookings b ON b.id = t.booking_id WHERE b.user_id = ?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE c FROM cancellations c JOIN bookings b ON b.id = c.booking_id WHERE b.user_id = ?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE user_id = ?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "alice")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeleteNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE username=? LIMIT 1")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failure mid-cascade must roll the whole delete back.
func TestUserDeleteRollsBackOnFailure(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE username=? LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE t FROM tickets t JOIN bookings b ON b.id = t.booking_id WHERE b.user_id = ?")).
		WithArgs(uint64(3)).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "alice")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New("Error 1062: Duplicate entry")))
	assert.False(t, isDuplicateKey(errors.New("Error 1406: Data too long")))
	assert.False(t, isDuplicateKey(nil))
}
