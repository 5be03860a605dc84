package model

import "time"

// User represents an account record as stored in the `users` table.
// Accounts are either regular passengers or administrators; the
// IsAdmin flag decides which role claim is issued at login. The
// password is stored only as a bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  IsAdmin      – whether the account has administrative rights.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
