package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func seedOwner(t *testing.T, s *Store) model.User {
	t.Helper()
	u := model.User{FullName: "Owner", Email: "Owner@Campus.edu", Role: model.RoleStudent}
	require.NoError(t, s.Atomic(context.Background(), func(tx repository.Tx) error {
		return tx.CreateUser(context.Background(), &u)
	}))
	return u
}

func TestAtomicRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(fixedClock()))
	owner := seedOwner(t, s)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx repository.Tx) error {
		res := model.Resource{OwnerID: owner.ID, Title: "Calculus", Status: model.ResourceAvailable}
		if err := tx.CreateResource(ctx, &res); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.ReadOnly(ctx, func(tx repository.Tx) error {
		list, err := tx.ListResources(ctx, model.ResourceFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	}))
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.ReadOnly(ctx, func(tx repository.Tx) error {
		return tx.CreateUser(ctx, &model.User{Email: "a@b.c"})
	})
	assert.ErrorIs(t, err, repository.ErrReadOnly)
}

func TestCreateUserNormalizesAndRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := seedOwner(t, s)
	assert.Equal(t, "owner@campus.edu", owner.Email)

	err := s.Atomic(ctx, func(tx repository.Tx) error {
		return tx.CreateUser(ctx, &model.User{FullName: "Dup", Email: " OWNER@campus.edu "})
	})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestListResourcesFilters(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(fixedClock()))
	owner := seedOwner(t, s)

	require.NoError(t, s.Atomic(ctx, func(tx repository.Tx) error {
		for _, r := range []model.Resource{
			{OwnerID: owner.ID, Title: "Calculus Textbook", Category: "Books", Status: model.ResourceAvailable},
			{OwnerID: owner.ID, Title: "Arduino kit", Category: "Electronics", Description: "with sensors", Status: model.ResourceAvailable},
			{OwnerID: owner.ID, Title: "Physics notes", Category: "Notes", Status: model.ResourceRequested},
		} {
			r := r
			if err := tx.CreateResource(ctx, &r); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.ReadOnly(ctx, func(tx repository.Tx) error {
		all, err := tx.ListResources(ctx, model.ResourceFilter{Category: "All", AvailableOnly: true})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Arduino kit", all[0].Title, "newest first")
		assert.Equal(t, "Owner", all[0].OwnerName)

		books, err := tx.ListResources(ctx, model.ResourceFilter{Category: "Books", AvailableOnly: true})
		require.NoError(t, err)
		require.Len(t, books, 1)

		bySearch, err := tx.ListResources(ctx, model.ResourceFilter{Search: "SENSORS", AvailableOnly: true})
		require.NoError(t, err)
		require.Len(t, bySearch, 1)
		assert.Equal(t, "Arduino kit", bySearch[0].Title)

		everything, err := tx.ListResources(ctx, model.ResourceFilter{})
		require.NoError(t, err)
		assert.Len(t, everything, 3)
		return nil
	}))
}

func TestSetResourceStatusIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := seedOwner(t, s)
	res := model.Resource{OwnerID: owner.ID, Title: "Lamp", Status: model.ResourceAvailable}
	require.NoError(t, s.Atomic(ctx, func(tx repository.Tx) error { return tx.CreateResource(ctx, &res) }))

	require.NoError(t, s.Atomic(ctx, func(tx repository.Tx) error {
		ok, err := tx.SetResourceStatus(ctx, res.ID, model.ResourceAvailable, model.ResourceRequested)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = tx.SetResourceStatus(ctx, res.ID, model.ResourceAvailable, model.ResourceRequested)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestFavoritesAndNotifications(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(fixedClock()))
	owner := seedOwner(t, s)
	res := model.Resource{OwnerID: owner.ID, Title: "Racket", Status: model.ResourceAvailable}

	require.NoError(t, s.Atomic(ctx, func(tx repository.Tx) error {
		require.NoError(t, tx.CreateResource(ctx, &res))
		require.NoError(t, tx.AddFavorite(ctx, owner.ID, res.ID))
		assert.ErrorIs(t, tx.AddFavorite(ctx, owner.ID, res.ID), repository.ErrConflict)

		reqID := uint64(42)
		require.NoError(t, tx.CreateNotification(ctx, &model.Notification{UserID: owner.ID, Type: model.NotificationRequest, RequestID: &reqID, Status: model.RequestPending}))
		require.NoError(t, tx.CreateNotification(ctx, &model.Notification{UserID: owner.ID, Type: model.NotificationSystem, Message: "hello"}))
		return tx.SetNotificationStatusByRequest(ctx, reqID, model.RequestAccepted)
	}))

	require.NoError(t, s.Atomic(ctx, func(tx repository.Tx) error {
		favs, err := tx.ListFavorites(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, favs, 1)
		assert.Equal(t, "Racket", favs[0].Listing.Title)

		list, err := tx.ListNotifications(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, model.NotificationSystem, list[0].Type, "newest first")
		assert.Equal(t, model.RequestAccepted, list[1].Status)

		n, err := tx.MarkAllRead(ctx, owner.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		n, err = tx.MarkAllRead(ctx, owner.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		unread, err := tx.CountUnread(ctx, owner.ID)
		require.NoError(t, err)
		assert.Zero(t, unread)
		return nil
	}))
}

func TestAtomicHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().Atomic(ctx, func(repository.Tx) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestUpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := seedOwner(t, s)

	require.NoError(t, s.Atomic(ctx, func(tx repository.Tx) error {
		return tx.UpdatePasswordHash(ctx, owner.ID, "new-hash")
	}))
	require.NoError(t, s.ReadOnly(ctx, func(tx repository.Tx) error {
		u, err := tx.GetUser(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", u.PasswordHash)
		return nil
	}))

	err := s.Atomic(ctx, func(tx repository.Tx) error {
		return tx.UpdatePasswordHash(ctx, 999, "x")
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.ReadOnly(ctx, func(tx repository.Tx) error {
		return tx.UpdatePasswordHash(ctx, owner.ID, "x")
	}), repository.ErrReadOnly)
}
