package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Linker records user-service subscriptions, at most one per pair.
type Linker struct {
	links driven.LinkStore
	now   func() time.Time
}

// NewLinker creates a Linker backed by the given link store.
func NewLinker(links driven.LinkStore) *Linker {
	return &Linker{links: links, now: time.Now}
}

// EnsureLink links the user to the service, dated by the email that proved
// the subscription. The operation is idempotent: an existing link, or losing
// a concurrent create race, both count as success.
func (l *Linker) EnsureLink(ctx context.Context, userID, serviceID int64, email model.Email) error {
	existing, err := l.links.GetByUserAndService(ctx, userID, serviceID)
	if err != nil {
		return fmt.Errorf("look up link user %d service %d: %w", userID, serviceID, err)
	}
	if existing != nil {
		return nil
	}

	link := model.ServiceLink{
		UserID:           userID,
		ServiceID:        serviceID,
		EmailID:          email.ID,
		SubscriptionDate: email.SubscriptionDate(l.now()),
		Status:           model.LinkStatusActive,
	}

	_, err = l.links.Create(ctx, link)
	if errors.Is(err, driven.ErrDuplicateLink) {
		return nil
	}
	return err
}
