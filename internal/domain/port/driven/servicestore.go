package driven

import (
	"context"
	"errors"
	"time"

	"github.com/hyunwookim/mailvet/internal/domain/model"
)

// ErrDuplicateDomain is returned by ServiceStore.Create when another service
// already owns the same domain. The resolver treats this as losing a
// concurrent create race and re-resolves.
var ErrDuplicateDomain = errors.New("service domain already registered")

// EvaluationFilter selects services by evaluation state in directory listings.
type EvaluationFilter string

const (
	FilterAll       EvaluationFilter = "ALL"
	FilterPending   EvaluationFilter = "PENDING"   // Awaiting review or never evaluated.
	FilterCompleted EvaluationFilter = "COMPLETED" // Grade recorded.
)

// ServiceStore defines the driven port for service registry persistence.
type ServiceStore interface {
	// Create stores a new service and returns its assigned ID.
	Create(ctx context.Context, svc model.Service) (int64, error)

	// GetByID returns the service with the given ID, or nil if none exists.
	GetByID(ctx context.Context, id int64) (*model.Service, error)

	// ListResolved returns all services with a non-empty domain, ordered by
	// ascending ID. Domain resolution depends on this order being stable.
	ListResolved(ctx context.Context) ([]model.Service, error)

	// List returns services matching the evaluation filter and an optional
	// case-insensitive name search, newest first.
	List(ctx context.Context, filter EvaluationFilter, search string) ([]model.Service, error)

	// RecordEvaluation writes the outcome of a policy evaluation onto the
	// service and clears its pending-review flag.
	RecordEvaluation(ctx context.Context, id int64, grade model.RiskGrade, score float64, report string, evaluatedAt time.Time) error

	// SetGrade records a manual grade override and clears the pending-review flag.
	SetGrade(ctx context.Context, id int64, grade model.RiskGrade, evaluatedAt time.Time) error
}
