package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Oracle bundles both oracle ports, which production clients implement together.
type Oracle interface {
	driven.ClassifierOracle
	driven.PolicyOracle
}

// Compile-time interface satisfaction check.
var _ Oracle = (*OracleProvider)(nil)

// OracleProvider enables runtime hot-swap of the oracle client. It holds a
// mutex-protected reference to the current Oracle, allowing an API key update
// to take effect without restarting the application. It implements both
// oracle ports itself by delegating to the current client, so services wired
// to the provider pick up swaps transparently.
type OracleProvider struct {
	mu      sync.RWMutex
	current Oracle
	factory func(apiKey string) Oracle
}

// NewOracleProvider creates a provider with the given initial client and a
// factory used to build replacements on key updates. initial may be nil when
// no API key is available at startup.
func NewOracleProvider(initial Oracle, factory func(apiKey string) Oracle) *OracleProvider {
	return &OracleProvider{current: initial, factory: factory}
}

// Swap replaces the current client with one built for the given API key.
// The next oracle call uses the new client.
func (p *OracleProvider) Swap(apiKey string) {
	client := p.factory(apiKey)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = client
}

// HasClient returns true if a non-nil client is currently held.
func (p *OracleProvider) HasClient() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current != nil
}

func (p *OracleProvider) get() (Oracle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil, fmt.Errorf("%w: no api key configured", driven.ErrOracleUnavailable)
	}
	return p.current, nil
}

// ClassifyEmails delegates to the current client.
func (p *OracleProvider) ClassifyEmails(ctx context.Context, emails []driven.EmailSummary) (string, error) {
	client, err := p.get()
	if err != nil {
		return "", err
	}
	return client.ClassifyEmails(ctx, emails)
}

// EvaluatePolicy delegates to the current client.
func (p *OracleProvider) EvaluatePolicy(ctx context.Context, policyText string) (string, error) {
	client, err := p.get()
	if err != nil {
		return "", err
	}
	return client.EvaluatePolicy(ctx, policyText)
}
