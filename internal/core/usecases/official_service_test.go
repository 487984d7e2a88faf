package usecases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/matching"
	"github.com/samirrijal/civicfix/internal/core/usecases"
)

func TestOfficialService_SetVerified_InvalidatesDirectory(t *testing.T) {
	o := official(officialID, "Asha", domain.Location{City: "Pune"})
	var verified *bool
	repo := &mockProfileRepo{
		getFn: profilesByID(o),
		setVerifiedFn: func(ctx context.Context, userID string, v bool) error {
			verified = &v
			return nil
		},
	}
	cache := newCache()
	cache.data[usecases.DirectoryCacheKey] = []byte("[]")
	svc := usecases.NewOfficialService(repo, usecases.NewMatchService(repo, cache, matching.DefaultPolicy()))

	require.NoError(t, svc.SetVerified(context.Background(), officialID, false))
	require.NotNil(t, verified)
	assert.False(t, *verified)
	assert.NotContains(t, cache.data, usecases.DirectoryCacheKey)
}

func TestOfficialService_SetVerified_RejectsCitizens(t *testing.T) {
	citizen := domain.Profile{UserID: reporterID, FullName: "Meera", Role: domain.RoleCitizen}
	repo := &mockProfileRepo{getFn: profilesByID(citizen)}
	svc := usecases.NewOfficialService(repo, usecases.NewMatchService(repo, nil, matching.DefaultPolicy()))

	assert.ErrorIs(t, svc.SetVerified(context.Background(), reporterID, true), usecases.ErrValidation)
}

func TestOfficialService_Import(t *testing.T) {
	var got []domain.Profile
	repo := &mockProfileRepo{
		upsertBatchFn: func(ctx context.Context, profiles []domain.Profile) error {
			got = profiles
			return nil
		},
	}
	svc := usecases.NewOfficialService(repo, usecases.NewMatchService(repo, nil, matching.DefaultPolicy()))

	n, s, e, w := 18.6, 18.4, 74.0, 73.7
	err := svc.Import(context.Background(), []domain.Profile{
		{UserID: officialID, FullName: "Asha", Role: domain.RoleOfficial, IsVerified: true,
			GeoBounds: &matching.GeoBounds{North: &n, South: &s, East: &e, West: &w}},
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	err = svc.Import(context.Background(), []domain.Profile{
		{UserID: officialID, FullName: "Asha", Role: domain.RoleOfficial, GeoBounds: &matching.GeoBounds{North: &n}},
	})
	assert.ErrorIs(t, err, usecases.ErrValidation)

	err = svc.Import(context.Background(), []domain.Profile{{UserID: officialID, FullName: "Asha", Role: "mayor"}})
	assert.ErrorIs(t, err, usecases.ErrValidation)
}
