package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

func TestLinkRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := addTestUser(t, db, "owner@example.com")
	emailID := addTestEmail(t, db, userID, "welcome@service.io", time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC))

	serviceID, err := NewServiceRepo(db).Create(ctx, model.Service{Name: "Service", Domain: "service.io"})
	require.NoError(t, err)

	repo := NewLinkRepo(db)

	id, err := repo.Create(ctx, model.ServiceLink{
		UserID:           userID,
		ServiceID:        serviceID,
		EmailID:          emailID,
		SubscriptionDate: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.GetByUserAndService(ctx, userID, serviceID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, serviceID, got.ServiceID)
	assert.Equal(t, emailID, got.EmailID)
	assert.Equal(t, time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), got.SubscriptionDate)
	assert.Equal(t, model.LinkStatusActive, got.Status)
}

func TestLinkRepo_Create_DuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := addTestUser(t, db, "owner@example.com")
	serviceID, err := NewServiceRepo(db).Create(ctx, model.Service{Name: "Service", Domain: "service.io"})
	require.NoError(t, err)

	repo := NewLinkRepo(db)

	_, err = repo.Create(ctx, model.ServiceLink{UserID: userID, ServiceID: serviceID})
	require.NoError(t, err)

	_, err = repo.Create(ctx, model.ServiceLink{UserID: userID, ServiceID: serviceID})
	require.ErrorIs(t, err, driven.ErrDuplicateLink)

	// Still exactly one link.
	var count int
	require.NoError(t, db.Reader.QueryRow(`SELECT COUNT(*) FROM user_services`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLinkRepo_GetByUserAndService_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLinkRepo(db)

	got, err := repo.GetByUserAndService(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLinkRepo_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := addTestUser(t, db, "owner@example.com")
	otherID := addTestUser(t, db, "other@example.com")

	serviceRepo := NewServiceRepo(db)
	svcA, err := serviceRepo.Create(ctx, model.Service{Name: "Alpha", Domain: "alpha.io"})
	require.NoError(t, err)
	svcB, err := serviceRepo.Create(ctx, model.Service{Name: "Beta", Domain: "beta.io"})
	require.NoError(t, err)
	require.NoError(t, serviceRepo.RecordEvaluation(ctx, svcB, model.GradeA, 0.9, "", time.Now().UTC()))

	repo := NewLinkRepo(db)

	_, err = repo.Create(ctx, model.ServiceLink{
		UserID: userID, ServiceID: svcA,
		SubscriptionDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.ServiceLink{
		UserID: userID, ServiceID: svcB,
		SubscriptionDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.ServiceLink{UserID: otherID, ServiceID: svcA})
	require.NoError(t, err)

	linked, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, linked, 2)

	// Newest subscription first.
	assert.Equal(t, "Beta", linked[0].Service.Name)
	assert.Equal(t, model.GradeA, linked[0].Service.Grade)
	assert.Equal(t, "Alpha", linked[1].Service.Name)
	assert.Equal(t, model.GradeNone, linked[1].Service.Grade)
}
