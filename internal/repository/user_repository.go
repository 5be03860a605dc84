package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/railway-reservation/internal/model"
	"github.com/iliyamo/railway-reservation/internal/utils"
)

// UserRepo provides account persistence. Deleting a user cascades
// through bookings, tickets and cancellation rows inside a single
// transaction so that no orphaned child rows survive.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a new non-admin user and returns its ID. The
// password is hashed with bcrypt at the given cost before storage.
func (r *UserRepo) Create(ctx context.Context, username, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, is_admin) VALUES (?,?,0)",
		username, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by its login name. Returns
// ErrUserNotFound when no such account exists.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,is_admin,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// ExistsByID reports whether a user row with the given ID exists. It
// is used to validate the user foreign key before a booking insert.
func (r *UserRepo) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// List returns all users ordered by ID. Password hashes are included
// because the admin panel of the original system displays credential
// state; handlers must not serialize them to clients.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,username,password_hash,is_admin,created_at,updated_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdatePassword replaces a user's credential with a fresh bcrypt
// hash. Returns ErrUserNotFound when the username does not resolve.
func (r *UserRepo) UpdatePassword(ctx context.Context, username, newPassword string, cost int) error {
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE username=?",
		hash, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user together with all of its bookings, their
// tickets and their cancellation rows. The whole cascade runs in one
// transaction; a failure at any step rolls everything back. Returns
// ErrUserNotFound when the username does not resolve.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var userID uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM users WHERE username=? LIMIT 1",
		strings.TrimSpace(username)).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	// Child rows first: tickets and cancellations hang off bookings.
	if _, err = tx.ExecContext(ctx,
		"DELETE t FROM tickets t JOIN bookings b ON b.id = t.booking_id WHERE b.user_id = ?",
		userID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"DELETE c FROM cancellations c JOIN bookings b ON b.id = c.booking_id WHERE b.user_id = ?",
		userID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM bookings WHERE user_id = ?", userID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// isDuplicateKey detects a MySQL unique-constraint violation
// (error 1062) without depending on the driver's error type.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
