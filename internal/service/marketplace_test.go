package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-connect/internal/model"
)

func TestAppErrorMatchesByCode(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewResourceUnavailableError(3))
	assert.ErrorIs(t, err, ErrResourceUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)

	inner := errors.New("db down")
	internal := NewInternalError(inner)
	assert.ErrorIs(t, internal, inner)
	assert.Contains(t, internal.Error(), "db down")
	assert.ErrorIs(t, wrap(inner), ErrInternal)
	assert.Nil(t, wrap(nil))
}

func TestCreateResourceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := NewResource{Title: "Desk lamp", Category: "Electronics", ItemCondition: "Good", OwnershipType: model.OwnershipSell, Price: 300}

	bad := []func(in NewResource) NewResource{
		func(in NewResource) NewResource { in.Title = "  "; return in },
		func(in NewResource) NewResource { in.Category = "Furniture"; return in },
		func(in NewResource) NewResource { in.ItemCondition = ""; return in },
		func(in NewResource) NewResource { in.OwnershipType = "rent"; return in },
		func(in NewResource) NewResource { in.Price = -1; return in },
	}
	for i, mutate := range bad {
		_, err := f.m.CreateResource(ctx, f.owner.ID, mutate(valid))
		assert.ErrorIs(t, err, ErrValidation, "case %d", i)
	}

	share := valid
	share.OwnershipType = "SHARE"
	res, err := f.m.CreateResource(ctx, f.owner.ID, share)
	require.NoError(t, err)
	assert.Equal(t, model.OwnershipShare, res.OwnershipType)
	assert.Zero(t, res.Price)
	assert.Equal(t, model.ResourceAvailable, res.Status)

	_, err = f.m.CreateResource(ctx, 999, valid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListResourcesShowsOnlyAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1 := f.listing(t, f.owner.ID, "Calculus Textbook", model.OwnershipSell)
	f.listing(t, f.owner.ID, "Linear Algebra", model.OwnershipSell)
	_, err := submit(f, f.student.ID, r1.ID)
	require.NoError(t, err)

	list, err := f.m.ListResources(ctx, ResourceQuery{Category: "All"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Linear Algebra", list[0].Title)
	assert.Equal(t, "Student User", list[0].OwnerName)

	list, err = f.m.ListResources(ctx, ResourceQuery{Search: "algebra"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = f.m.ListResources(ctx, ResourceQuery{Category: "Sports"})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.m.GetResource(ctx, 31337)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNotificationsMarksAllRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1 := f.listing(t, f.owner.ID, "Calculus Textbook", model.OwnershipSell)
	r2 := f.listing(t, f.owner.ID, "Physics Notes", model.OwnershipSell)
	_, err := submit(f, f.student.ID, r1.ID)
	require.NoError(t, err)
	_, err = submit(f, f.student.ID, r2.ID)
	require.NoError(t, err)

	unread, err := f.m.UnreadCount(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	first, err := f.m.ListNotifications(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Physics Notes", first[0].ListingTitle, "newest first")
	assert.False(t, first[0].IsRead)

	second, err := f.m.ListNotifications(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, n := range second {
		assert.True(t, n.IsRead)
	}
	third, err := f.m.ListNotifications(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, second, third)

	unread, err = f.m.UnreadCount(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotifyUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.m.NotifyUser(ctx, f.student.ID, "  Please update your listing photos  ")
	require.NoError(t, err)
	assert.Equal(t, model.NotificationSystem, n.Type)
	assert.Equal(t, "Please update your listing photos", n.Message)
	assert.Nil(t, n.RequestID)

	_, err = f.m.NotifyUser(ctx, f.student.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.m.NotifyUser(ctx, 5555, "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := f.m.UnreadCount(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFavoritesToggleAndHideUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1 := f.listing(t, f.owner.ID, "Calculus Textbook", model.OwnershipSell)
	r2 := f.listing(t, f.owner.ID, "Physics Notes", model.OwnershipSell)

	on, err := f.m.ToggleFavorite(ctx, f.student.ID, r1.ID)
	require.NoError(t, err)
	assert.True(t, on)
	on, err = f.m.ToggleFavorite(ctx, f.student.ID, r2.ID)
	require.NoError(t, err)
	assert.True(t, on)

	other, err := f.m.CreateUser(ctx, NewUser{FullName: "Sara", Email: "sara@campus.edu", Password: "secret1"})
	require.NoError(t, err)
	_, err = submit(f, other.ID, r2.ID)
	require.NoError(t, err)

	favs, err := f.m.ListFavorites(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, r1.ID, favs[0].Listing.ID)

	on, err = f.m.ToggleFavorite(ctx, f.student.ID, r1.ID)
	require.NoError(t, err)
	assert.False(t, on)
	favs, err = f.m.ListFavorites(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)

	_, err = f.m.ToggleFavorite(ctx, f.student.ID, 8080)
	assert.ErrorIs(t, err, ErrNotFound)
}
