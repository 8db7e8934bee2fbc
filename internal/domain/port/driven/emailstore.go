package driven

import (
	"context"

	"github.com/hyunwookim/mailvet/internal/domain/model"
)

// EmailStore defines the driven port for email persistence.
// The pipeline never deletes emails; it only records classification verdicts.
type EmailStore interface {
	// Insert stores a new email and returns its assigned ID.
	Insert(ctx context.Context, email model.Email) (int64, error)

	// GetByID returns the email with the given ID, or nil if none exists.
	GetByID(ctx context.Context, id int64) (*model.Email, error)

	// UpdateClassification records the classification verdict for an email.
	UpdateClassification(ctx context.Context, id int64, c model.Classification) error

	// List returns emails ordered by received time descending, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Email, error)

	// Count returns the total number of stored emails.
	Count(ctx context.Context) (int, error)
}
