package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository/memory"
	"github.com/iliyamo/campus-connect/internal/service"
)

func newMarketplace() *service.Marketplace {
	return service.NewMarketplace(memory.New(), service.WithIdentity(service.Identity{
		JWTSecret:  "seed-secret",
		BcryptCost: bcrypt.MinCost,
	}))
}

func TestRunBuildsConsistentMarketplace(t *testing.T) {
	ctx := context.Background()
	svc := newMarketplace()

	res, err := Run(ctx, svc, Options{Users: 6, ListingsPerUser: 3, RequestChance: 50, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Users)
	assert.Equal(t, 18, res.Listings)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 6)

	all, err := svc.ListAllResources(ctx)
	require.NoError(t, err)
	require.Len(t, all, 18)

	reqs, err := svc.ListAllRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, reqs, res.Requests)

	held := map[uint64]int{}
	for _, r := range reqs {
		assert.Equal(t, model.RequestPending, r.Status)
		held[r.ResourceID]++
	}
	for _, l := range all {
		if l.Status == model.ResourceRequested {
			assert.Equal(t, 1, held[l.ID], "listing %d", l.ID)
		} else {
			assert.Zero(t, held[l.ID], "listing %d", l.ID)
		}
		if l.OwnershipType == model.OwnershipShare {
			assert.Zero(t, l.Price)
		}
	}
}

func TestRunSkipsExistingAccounts(t *testing.T) {
	ctx := context.Background()
	svc := newMarketplace()
	opts := Options{Users: 3, ListingsPerUser: 1, Seed: 7}

	_, err := Run(ctx, svc, opts)
	require.NoError(t, err)
	again, err := Run(ctx, svc, opts)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 3}, again)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "oconnor", slug("O'Connor"))
	assert.Equal(t, "vanderberg", slug("Van Der-Berg"))
}
