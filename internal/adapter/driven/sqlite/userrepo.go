package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create stores a new user and returns its assigned ID. Returns
// driven.ErrDuplicateUser when the email is already registered.
func (r *UserRepo) Create(ctx context.Context, user model.User) (int64, error) {
	const query = `INSERT INTO users (email, nickname, created_at) VALUES (?, ?, ?)`

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query, user.Email, user.Nickname, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("create user %s: %w", user.Email, driven.ErrDuplicateUser)
		}
		return 0, fmt.Errorf("create user %s: %w", user.Email, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	return id, nil
}

// GetByID retrieves a user by ID. Returns nil, nil if no user exists.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, email, nickname, created_at FROM users WHERE id = ?`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email. Returns nil, nil if no user exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, email, nickname, created_at FROM users WHERE email = ?`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email %s: %w", email, err)
	}

	return user, nil
}

// List returns users ordered by ID descending.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	const query = `SELECT id, email, nickname, created_at FROM users ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func scanUser(s scanner) (*model.User, error) {
	var user model.User
	var createdAt string

	err := s.Scan(&user.ID, &user.Email, &user.Nickname, &createdAt)
	if err != nil {
		return nil, err
	}

	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &user, nil
}
