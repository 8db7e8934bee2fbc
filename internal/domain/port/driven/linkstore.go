package driven

import (
	"context"
	"errors"

	"github.com/hyunwookim/mailvet/internal/domain/model"
)

// ErrDuplicateLink is returned by LinkStore.Create when a link for the same
// (user, service) pair already exists.
var ErrDuplicateLink = errors.New("user already linked to service")

// LinkedService is a user's service link joined with the service it points at,
// as returned by subscription listings.
type LinkedService struct {
	Link    model.ServiceLink
	Service model.Service
}

// LinkStore defines the driven port for user-service link persistence.
// The schema enforces at most one link per (user, service) pair.
type LinkStore interface {
	// Create stores a new link and returns its assigned ID. Creating a
	// duplicate (user, service) pair fails with a unique constraint error.
	Create(ctx context.Context, link model.ServiceLink) (int64, error)

	// GetByUserAndService returns the link for the given pair, or nil if
	// the user is not linked to the service.
	GetByUserAndService(ctx context.Context, userID, serviceID int64) (*model.ServiceLink, error)

	// ListByUser returns the user's links joined with their services.
	ListByUser(ctx context.Context, userID int64) ([]LinkedService, error)
}
