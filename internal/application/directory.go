package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Sort orders for user subscription listings.
const (
	SortLatest   = "latest"    // Newest subscription first (store order).
	SortRiskDesc = "risk_desc" // Riskiest grade first.
	SortRiskAsc  = "risk_asc"  // Safest grade first.
)

// DirectoryService assembles subscription listings for users.
type DirectoryService struct {
	links driven.LinkStore
	users driven.UserStore
}

// NewDirectoryService creates a DirectoryService with the required dependencies.
func NewDirectoryService(links driven.LinkStore, users driven.UserStore) *DirectoryService {
	return &DirectoryService{links: links, users: users}
}

// UserServices returns the user's linked services, optionally filtered to a
// single grade and reordered by risk. An empty sortBy, or SortLatest, keeps
// the store's newest-first order. Returns ErrUserNotFound for unknown users.
func (s *DirectoryService) UserServices(ctx context.Context, userID int64, grade model.RiskGrade, sortBy string) ([]driven.LinkedService, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}

	linked, err := s.links.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list services for user %d: %w", userID, err)
	}

	if grade != model.GradeNone {
		filtered := linked[:0]
		for _, ls := range linked {
			if ls.Service.Grade == grade {
				filtered = append(filtered, ls)
			}
		}
		linked = filtered
	}

	switch sortBy {
	case SortRiskDesc:
		sort.SliceStable(linked, func(i, j int) bool {
			return gradeRank(linked[i].Service.Grade) > gradeRank(linked[j].Service.Grade)
		})
	case SortRiskAsc:
		sort.SliceStable(linked, func(i, j int) bool {
			return gradeRank(linked[i].Service.Grade) < gradeRank(linked[j].Service.Grade)
		})
	}

	return linked, nil
}

// gradeRank orders grades by risk. Unrated ranks above C because a failed
// evaluation is worth a look; never-evaluated services rank lowest.
func gradeRank(grade model.RiskGrade) int {
	switch grade {
	case model.GradeA:
		return 1
	case model.GradeB:
		return 2
	case model.GradeC:
		return 3
	case model.GradeUnrated:
		return 4
	default:
		return 0
	}
}
