package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-connect/internal/model"
)

func TestDeleteSeededAdminIsProtected(t *testing.T) {
	f := newFixture(t)
	err := f.m.DeleteUser(context.Background(), f.admin.ID)
	assert.ErrorIs(t, err, ErrProtectedAccount)
	assert.Equal(t, f.admin, f.user(t, testAdminEmail))
}

func TestAdminProtectionSurvivesEmailChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.admin.Protected)

	f.m.identity.AdminEmail = "someone-else@campus.edu"
	assert.ErrorIs(t, f.m.DeleteUser(ctx, f.admin.ID), ErrProtectedAccount)

	f.m.identity.AdminEmail = ""
	assert.ErrorIs(t, f.m.DeleteUser(ctx, f.admin.ID), ErrProtectedAccount)
}

func TestCreatedAdminIsNotProtected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	second, err := f.m.CreateUser(ctx, NewUser{FullName: "Second Admin", Email: "second@campus.edu", Password: "admin456", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, second.Protected)
	require.NoError(t, f.m.DeleteUser(ctx, second.ID))
}

func TestDeleteUserWithListingsConflicts(t *testing.T) {
	f := newFixture(t)
	f.listing(t, f.owner.ID, "Calculus Textbook", model.OwnershipSell)
	err := f.m.DeleteUser(context.Background(), f.owner.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteUserReleasesHeldListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1 := f.listing(t, f.owner.ID, "Calculus Textbook", model.OwnershipSell)
	_, err := submit(f, f.student.ID, r1.ID)
	require.NoError(t, err)
	_, err = f.m.ToggleFavorite(ctx, f.student.ID, r1.ID)
	require.NoError(t, err)

	require.NoError(t, f.m.DeleteUser(ctx, f.student.ID))

	assert.Equal(t, model.ResourceAvailable, f.resource(t, r1.ID).Status)
	assert.Empty(t, f.allRequests(t))
	assert.Len(t, f.notificationsOf(t, f.owner.ID), 1, "notifications are kept")
	users, err := f.m.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	f.assertHoldInvariant(t)

	assert.ErrorIs(t, f.m.DeleteUser(ctx, f.student.ID), ErrNotFound)
}

func TestDeleteResourceCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1 := f.listing(t, f.owner.ID, "Calculus Textbook", model.OwnershipSell)
	_, err := submit(f, f.student.ID, r1.ID)
	require.NoError(t, err)
	_, err = f.m.ToggleFavorite(ctx, f.student.ID, r1.ID)
	require.NoError(t, err)

	require.NoError(t, f.m.DeleteResource(ctx, r1.ID))

	assert.Empty(t, f.allRequests(t))
	all, err := f.m.ListAllResources(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	favs, err := f.m.ListFavorites(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)
	assert.Len(t, f.notificationsOf(t, f.owner.ID), 1)

	assert.ErrorIs(t, f.m.DeleteResource(ctx, r1.ID), ErrNotFound)
}

func TestCreateUserRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.m.CreateUser(ctx, NewUser{FullName: "Mod", Email: "Mod@Campus.edu", Password: "secret1", Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "mod@campus.edu", u.Email)

	_, err = f.m.CreateUser(ctx, NewUser{FullName: "Again", Email: "mod@campus.edu", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	for _, in := range []NewUser{
		{Email: "x@campus.edu", Password: "secret1"},
		{FullName: "X", Email: "not-an-email", Password: "secret1"},
		{FullName: "X", Email: "x@campus.edu", Password: "123"},
		{FullName: "X", Email: "x@campus.edu", Password: "secret1", Role: "root"},
	} {
		_, err := f.m.CreateUser(ctx, in)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestAdminListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1 := f.listing(t, f.owner.ID, "Calculus Textbook", model.OwnershipSell)
	f.listing(t, f.admin.ID, "Campus map", model.OwnershipShare)
	_, err := submit(f, f.student.ID, r1.ID)
	require.NoError(t, err)

	all, err := f.m.ListAllResources(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "admin sees requested listings too")

	reqs, err := f.m.ListAllRequests(ctx)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Calculus Textbook", reqs[0].ResourceTitle)
	assert.Equal(t, "Ali Raza", reqs[0].RequesterName)
	assert.Equal(t, "ali@campus.edu", reqs[0].RequesterEmail)
}
