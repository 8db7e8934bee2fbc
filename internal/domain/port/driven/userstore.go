package driven

import (
	"context"
	"errors"

	"github.com/hyunwookim/mailvet/internal/domain/model"
)

// ErrDuplicateUser is returned by UserStore.Create when the email is already
// registered.
var ErrDuplicateUser = errors.New("user email already registered")

// UserStore defines the driven port for user persistence.
type UserStore interface {
	// Create stores a new user and returns its assigned ID. Creating a user
	// with an existing email fails with a unique constraint error.
	Create(ctx context.Context, user model.User) (int64, error)

	// GetByID returns the user with the given ID, or nil if none exists.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// GetByEmail returns the user with the given email, or nil if none exists.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns users ordered by ID descending.
	List(ctx context.Context, limit, offset int) ([]model.User, error)
}
