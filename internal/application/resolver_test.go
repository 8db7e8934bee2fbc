package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		want    string
		wantErr bool
	}{
		{name: "plain address", sender: "noreply@service.io", want: "service.io"},
		{name: "display name", sender: "Service <welcome@mail.service.io>", want: "mail.service.io"},
		{name: "uppercase lowered", sender: "Hello@Foo.COM", want: "foo.com"},
		{name: "hyphen and underscore", sender: "a@my-app_mail.co", want: "my-app_mail.co"},
		{name: "stops at bracket", sender: "x@foo.com> via relay", want: "foo.com"},
		{name: "no at sign", sender: "not-an-address", wantErr: true},
		{name: "nothing after at", sender: "broken@", wantErr: true},
		{name: "junk after at", sender: "broken@ !!", wantErr: true},
		{name: "empty", sender: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDomain(tt.sender)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSender)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_MatchesExistingService(t *testing.T) {
	store := newMockServiceStore(
		model.Service{ID: 1, Name: "Service", Domain: "service.io"},
	)
	resolver := NewResolver(store)

	svc, err := resolver.Resolve(context.Background(), "welcome@mail.service.io")
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, int64(1), svc.ID)

	// No new service was registered.
	assert.Len(t, store.services, 1)
}

func TestResolve_FirstMatchWinsByID(t *testing.T) {
	store := newMockServiceStore(
		model.Service{ID: 1, Name: "Gmail", Domain: "gmail"},
		model.Service{ID: 2, Name: "Mailer", Domain: "mail.gmail.com"},
	)
	resolver := NewResolver(store)

	svc, err := resolver.Resolve(context.Background(), "x@mail.gmail.com")
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, int64(1), svc.ID)
}

func TestResolve_CreatesUnknownService(t *testing.T) {
	store := newMockServiceStore()
	resolver := NewResolver(store)

	svc, err := resolver.Resolve(context.Background(), "hello@netflix.com")
	require.NoError(t, err)
	require.NotNil(t, svc)

	assert.Equal(t, "Netflix", svc.Name)
	assert.Equal(t, "netflix.com", svc.Domain)
	assert.True(t, svc.ReviewPending)
	assert.NotZero(t, svc.ID)
}

func TestResolve_SameDomainResolvesOnce(t *testing.T) {
	store := newMockServiceStore()
	resolver := NewResolver(store)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "welcome@foo.com")
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, "noreply@foo.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.services, 1)
}

func TestResolve_InvalidSender(t *testing.T) {
	resolver := NewResolver(newMockServiceStore())

	_, err := resolver.Resolve(context.Background(), "no-domain-here")
	require.ErrorIs(t, err, ErrInvalidSender)
}

// racingServiceStore simulates losing a concurrent create race: the first
// Create fails with a duplicate-domain error after the winner's row appears.
type racingServiceStore struct {
	*mockServiceStore
	raced bool
}

func (r *racingServiceStore) Create(ctx context.Context, svc model.Service) (int64, error) {
	if !r.raced {
		r.raced = true
		r.services = append(r.services, model.Service{ID: 9, Name: "Winner", Domain: svc.Domain})
		return 0, driven.ErrDuplicateDomain
	}
	return r.mockServiceStore.Create(ctx, svc)
}

func TestResolve_LostCreateRace(t *testing.T) {
	store := &racingServiceStore{mockServiceStore: newMockServiceStore()}
	resolver := NewResolver(store)

	svc, err := resolver.Resolve(context.Background(), "hi@foo.com")
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, int64(9), svc.ID)
	assert.Equal(t, "Winner", svc.Name)
}

func TestInferServiceName(t *testing.T) {
	assert.Equal(t, "Netflix", inferServiceName("netflix.com"))
	assert.Equal(t, "My-app", inferServiceName("my-app.io"))
	assert.Equal(t, "Localhost", inferServiceName("localhost"))
}
