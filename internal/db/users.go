package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// User is an account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Active       bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

const userColumns = "id, username, email, password_hash, first_name, last_name, active, created_at"

// CreateUser inserts u and fills in its ID and CreatedAt. A taken username or
// email yields ErrConflict.
func (db *DB) CreateUser(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now().UTC()
	err := db.queryRow(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Active, u.CreatedAt,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return errors.Wrap(err, "failed to create user")
}

// UserByID loads a user
func (db *DB) UserByID(ctx context.Context, id int64) (*User, error) {
	return db.userWhere(ctx, "id = ?", id)
}

// UserByUsername loads a user by exact username
func (db *DB) UserByUsername(ctx context.Context, username string) (*User, error) {
	return db.userWhere(ctx, "username = ?", username)
}

// UserByEmail loads a user, ignoring case
func (db *DB) UserByEmail(ctx context.Context, email string) (*User, error) {
	return db.userWhere(ctx, "lower(email) = lower(?)", email)
}

func (db *DB) userWhere(ctx context.Context, cond string, arg any) (*User, error) {
	var u User
	err := db.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+cond, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Active, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}
	return &u, nil
}
