package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.EmailStore = (*EmailRepo)(nil)

// EmailRepo is the SQLite implementation of the EmailStore port interface.
type EmailRepo struct {
	db *DB
}

// NewEmailRepo creates a new EmailRepo backed by the given DB.
func NewEmailRepo(db *DB) *EmailRepo {
	return &EmailRepo{db: db}
}

// Insert stores a new email and returns its assigned ID. An empty
// classification defaults to UNCERTAIN.
func (r *EmailRepo) Insert(ctx context.Context, email model.Email) (int64, error) {
	const query = `
		INSERT INTO emails (user_id, provider, message_id, sender, subject, snippet, received_at, classification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	provider := email.Provider
	if provider == "" {
		provider = "GMAIL"
	}

	classification := email.Classification
	if classification == "" {
		classification = model.ClassificationUncertain
	}

	var messageID any
	if email.MessageID != "" {
		messageID = email.MessageID
	}

	var receivedAt any
	if !email.ReceivedAt.IsZero() {
		receivedAt = email.ReceivedAt.UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		email.UserID, provider, messageID, email.Sender, email.Subject,
		email.Snippet, receivedAt, classification,
	)
	if err != nil {
		return 0, fmt.Errorf("insert email for user %d: %w", email.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("email insert id: %w", err)
	}

	return id, nil
}

// GetByID retrieves an email by its ID. Returns nil, nil if no email exists.
func (r *EmailRepo) GetByID(ctx context.Context, id int64) (*model.Email, error) {
	const query = `
		SELECT id, user_id, provider, message_id, sender, subject, snippet, received_at, classification
		FROM emails
		WHERE id = ?
	`

	email, err := scanEmail(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get email %d: %w", id, err)
	}

	return email, nil
}

// UpdateClassification records the classification verdict for an email.
// Returns an error if the email does not exist.
func (r *EmailRepo) UpdateClassification(ctx context.Context, id int64, c model.Classification) error {
	const query = `UPDATE emails SET classification = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, c, id)
	if err != nil {
		return fmt.Errorf("update classification for email %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update classification for email %d: email not found", id)
	}

	return nil
}

// List returns emails ordered by received time descending, newest first.
// Emails without a timestamp sort last.
func (r *EmailRepo) List(ctx context.Context, limit, offset int) ([]model.Email, error) {
	const query = `
		SELECT id, user_id, provider, message_id, sender, subject, snippet, received_at, classification
		FROM emails
		ORDER BY received_at IS NULL, received_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()

	var emails []model.Email
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, *email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emails: %w", err)
	}

	return emails, nil
}

// Count returns the total number of stored emails.
func (r *EmailRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM emails`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count emails: %w", err)
	}
	return count, nil
}

func scanEmail(s scanner) (*model.Email, error) {
	var email model.Email
	var messageID, receivedAt sql.NullString

	err := s.Scan(
		&email.ID, &email.UserID, &email.Provider, &messageID,
		&email.Sender, &email.Subject, &email.Snippet, &receivedAt,
		&email.Classification,
	)
	if err != nil {
		return nil, err
	}

	email.MessageID = messageID.String

	if receivedAt.Valid {
		email.ReceivedAt, err = parseTime(receivedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse received_at: %w", err)
		}
	}

	return &email, nil
}
