package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
	"github.com/iliyamo/campus-connect/internal/repository/memory"
)

const testAdminEmail = "admin@campus.edu"

type handoffStub struct {
	mu       sync.Mutex
	contacts []Contact
	err      error
}

func (h *handoffStub) Handoff(_ context.Context, c Contact) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.contacts = append(h.contacts, c)
	return h.err
}

type fixture struct {
	m       *Marketplace
	store   *memory.Store
	handoff *handoffStub
	admin   model.UserView
	owner   model.UserView
	student model.UserView
}

func tick() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := tick()
	store := memory.New(memory.WithClock(clock))
	h := &handoffStub{}
	m := NewMarketplace(store,
		WithHandoff(h),
		WithIdentity(Identity{
			JWTSecret:      "test-secret",
			AccessTTLMin:   15,
			RefreshTTLDays: 7,
			BcryptCost:     bcrypt.MinCost,
			AdminEmail:     testAdminEmail,
		}),
	)
	created, err := m.EnsureAdmin(ctx, "System Admin", "admin123")
	require.NoError(t, err)
	require.True(t, created)

	f := &fixture{m: m, store: store, handoff: h}
	f.admin = f.user(t, testAdminEmail)
	f.owner, err = m.CreateUser(ctx, NewUser{FullName: "Student User", Email: "student@campus.edu", Password: "student123"})
	require.NoError(t, err)
	f.student, err = m.CreateUser(ctx, NewUser{FullName: "Ali Raza", Email: "ali@campus.edu", Password: "password1"})
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, email string) model.UserView {
	t.Helper()
	var u model.User
	require.NoError(t, f.store.ReadOnly(context.Background(), func(tx repository.Tx) error {
		var err error
		u, err = tx.GetUserByEmail(context.Background(), email)
		return err
	}))
	return u.View()
}

func (f *fixture) listing(t *testing.T, ownerID uint64, title string, typ model.OwnershipType) model.Resource {
	t.Helper()
	res, err := f.m.CreateResource(context.Background(), ownerID, NewResource{
		Title:         title,
		Category:      "Books",
		ItemCondition: "Good",
		OwnershipType: typ,
		Price:         450,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) resource(t *testing.T, id uint64) model.ResourceListing {
	t.Helper()
	res, err := f.m.GetResource(context.Background(), id)
	require.NoError(t, err)
	return res
}

func (f *fixture) allRequests(t *testing.T) []model.RequestDetail {
	t.Helper()
	reqs, err := f.m.ListAllRequests(context.Background())
	require.NoError(t, err)
	return reqs
}

func (f *fixture) notificationsOf(t *testing.T, userID uint64) []model.Notification {
	t.Helper()
	var out []model.Notification
	require.NoError(t, f.store.ReadOnly(context.Background(), func(tx repository.Tx) error {
		var err error
		out, err = tx.ListNotifications(context.Background(), userID)
		return err
	}))
	return out
}

// assertHoldInvariant checks that a resource is requested exactly when one
// pending or accepted request references it and that no resource has
// more than one pending request.
func (f *fixture) assertHoldInvariant(t *testing.T) {
	t.Helper()
	resources, err := f.m.ListAllResources(context.Background())
	require.NoError(t, err)
	holds := map[uint64]int{}
	pending := map[uint64]int{}
	for _, r := range f.allRequests(t) {
		if r.Status.Holds() {
			holds[r.ResourceID]++
		}
		if r.Status == model.RequestPending {
			pending[r.ResourceID]++
		}
	}
	for _, res := range resources {
		require.LessOrEqual(t, pending[res.ID], 1, "resource %d pending requests", res.ID)
		require.LessOrEqual(t, holds[res.ID], 1, "resource %d open requests", res.ID)
		require.Equal(t, res.Status == model.ResourceRequested, holds[res.ID] == 1,
			"resource %d status %s with %d open requests", res.ID, res.Status, holds[res.ID])
	}
}

func submit(f *fixture, requesterID, resourceID uint64) (model.Request, error) {
	return f.m.SubmitRequest(context.Background(), SubmitInput{
		RequesterID: requesterID,
		ResourceID:  resourceID,
		RequestType: model.OwnershipSell,
		PhoneNumber: "9998887776",
		Department:  "CS",
	})
}
