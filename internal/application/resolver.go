package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Resolver maps sender domains onto the service registry, creating services
// for domains it has never seen.
type Resolver struct {
	services driven.ServiceStore
}

// NewResolver creates a Resolver backed by the given service store.
func NewResolver(services driven.ServiceStore) *Resolver {
	return &Resolver{services: services}
}

// ExtractDomain pulls the domain out of a sender address: everything after
// the first "@" up to the first character that is not a letter, digit, dot,
// hyphen, or underscore, lowercased. Returns ErrInvalidSender when there is
// no "@" or nothing extractable follows it. Display-name forms such as
// "Service <noreply@mail.service.io>" work because extraction starts at the
// first "@" regardless of what surrounds it.
func ExtractDomain(sender string) (string, error) {
	at := strings.Index(sender, "@")
	if at < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSender, sender)
	}

	rest := sender[at+1:]
	end := 0
	for end < len(rest) && isDomainChar(rest[end]) {
		end++
	}
	if end == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSender, sender)
	}

	return strings.ToLower(rest[:end]), nil
}

func isDomainChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.' || c == '-' || c == '_':
		return true
	}
	return false
}

// Resolve finds the service responsible for a sender address. Matching is
// first-match-wins over services in ascending ID order: a stored domain
// matches when it appears as a substring of the extracted domain, so a
// service registered as "service.io" also claims "mail.service.io". When no
// service matches, a new one is created with the domain's first label as its
// name and flagged for review.
func (r *Resolver) Resolve(ctx context.Context, sender string) (*model.Service, error) {
	domain, err := ExtractDomain(sender)
	if err != nil {
		return nil, err
	}

	svc, err := r.match(ctx, domain)
	if err != nil || svc != nil {
		return svc, err
	}

	candidate := model.Service{
		Name:          inferServiceName(domain),
		Domain:        domain,
		ReviewPending: true,
	}

	id, err := r.services.Create(ctx, candidate)
	if errors.Is(err, driven.ErrDuplicateDomain) {
		// Lost a concurrent create race; the winner's row matches now.
		svc, err = r.match(ctx, domain)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, fmt.Errorf("resolve domain %q: winner of create race not visible", domain)
		}
		return svc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("register service for domain %q: %w", domain, err)
	}

	candidate.ID = id
	return &candidate, nil
}

func (r *Resolver) match(ctx context.Context, domain string) (*model.Service, error) {
	services, err := r.services.ListResolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resolved services: %w", err)
	}

	for i := range services {
		if strings.Contains(domain, services[i].Domain) {
			return &services[i], nil
		}
	}
	return nil, nil
}

// inferServiceName derives a display name from a domain: the first dot-label
// with its first letter uppercased, so "netflix.com" becomes "Netflix".
func inferServiceName(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return domain
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
