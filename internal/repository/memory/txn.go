package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
)

type txn struct {
	state    state
	now      func() time.Time
	readOnly bool
}

var _ repository.Tx = (*txn)(nil)

func (t *txn) write() error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	return nil
}

func (t *txn) nextID() uint64 {
	t.state.seq++
	return t.state.seq
}

// users

func (t *txn) CreateUser(_ context.Context, u *model.User) error {
	if err := t.write(); err != nil {
		return err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range t.state.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = t.nextID()
	u.CreatedAt = t.now()
	t.state.users[u.ID] = *u
	return nil
}

func (t *txn) GetUser(_ context.Context, id uint64) (model.User, error) {
	u, ok := t.state.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (t *txn) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range t.state.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (t *txn) ListUsers(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(t.state.users))
	for _, u := range t.state.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *txn) UpdateUserContact(_ context.Context, id uint64, phone, department string) error {
	if err := t.write(); err != nil {
		return err
	}
	u, ok := t.state.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PhoneNumber = phone
	u.Department = department
	t.state.users[id] = u
	return nil
}

func (t *txn) UpdatePasswordHash(_ context.Context, id uint64, hash string) error {
	if err := t.write(); err != nil {
		return err
	}
	u, ok := t.state.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	t.state.users[id] = u
	return nil
}

func (t *txn) DeleteUser(_ context.Context, id uint64) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.state.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.state.users, id)
	return nil
}

// refresh tokens

func (t *txn) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	if err := t.write(); err != nil {
		return err
	}
	t.state.tokens[tokenHash] = refreshToken{userID: userID, expires: exp}
	return nil
}

func (t *txn) ValidateRefresh(_ context.Context, tokenHash string, now time.Time) (uint64, error) {
	tok, ok := t.state.tokens[tokenHash]
	if !ok || tok.revoked || now.After(tok.expires) {
		return 0, repository.ErrNotFound
	}
	return tok.userID, nil
}

func (t *txn) RevokeRefresh(_ context.Context, tokenHash string) error {
	if err := t.write(); err != nil {
		return err
	}
	if tok, ok := t.state.tokens[tokenHash]; ok {
		tok.revoked = true
		t.state.tokens[tokenHash] = tok
	}
	return nil
}

func (t *txn) RevokeAllRefresh(_ context.Context, userID uint64) error {
	if err := t.write(); err != nil {
		return err
	}
	for h, tok := range t.state.tokens {
		if tok.userID == userID {
			tok.revoked = true
			t.state.tokens[h] = tok
		}
	}
	return nil
}

// resources

func (t *txn) CreateResource(_ context.Context, res *model.Resource) error {
	if err := t.write(); err != nil {
		return err
	}
	res.ID = t.nextID()
	res.CreatedAt = t.now()
	t.state.resources[res.ID] = *res
	return nil
}

func (t *txn) listing(r model.Resource) model.ResourceListing {
	return model.ResourceListing{Resource: r, OwnerName: t.state.users[r.OwnerID].FullName}
}

func (t *txn) GetResource(_ context.Context, id uint64) (model.ResourceListing, error) {
	r, ok := t.state.resources[id]
	if !ok {
		return model.ResourceListing{}, repository.ErrNotFound
	}
	return t.listing(r), nil
}

func (t *txn) LockResource(_ context.Context, id uint64) (model.Resource, error) {
	r, ok := t.state.resources[id]
	if !ok {
		return model.Resource{}, repository.ErrNotFound
	}
	return r, nil
}

func (t *txn) SetResourceStatus(_ context.Context, id uint64, from, to model.ResourceStatus) (bool, error) {
	if err := t.write(); err != nil {
		return false, err
	}
	r, ok := t.state.resources[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	t.state.resources[id] = r
	return true, nil
}

func (t *txn) ListResources(_ context.Context, f model.ResourceFilter) ([]model.ResourceListing, error) {
	category := strings.TrimSpace(f.Category)
	if strings.EqualFold(category, "All") {
		category = ""
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := []model.ResourceListing{}
	for _, r := range t.state.resources {
		if f.AvailableOnly && r.Status != model.ResourceAvailable {
			continue
		}
		if category != "" && r.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Title), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		if f.OwnerID != 0 && r.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, t.listing(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (t *txn) CountResourcesByOwner(_ context.Context, ownerID uint64) (int, error) {
	n := 0
	for _, r := range t.state.resources {
		if r.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (t *txn) DeleteResource(_ context.Context, id uint64) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.state.resources[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.state.resources, id)
	return nil
}

// requests

func (t *txn) CreateRequest(_ context.Context, req *model.Request) error {
	if err := t.write(); err != nil {
		return err
	}
	req.ID = t.nextID()
	req.CreatedAt = t.now()
	t.state.requests[req.ID] = *req
	return nil
}

func (t *txn) GetRequest(_ context.Context, id uint64) (model.Request, error) {
	r, ok := t.state.requests[id]
	if !ok {
		return model.Request{}, repository.ErrNotFound
	}
	return r, nil
}

func (t *txn) LockRequest(ctx context.Context, id uint64) (model.Request, error) {
	return t.GetRequest(ctx, id)
}

func (t *txn) UpdateRequestStatus(_ context.Context, id uint64, from, to model.RequestStatus) (bool, error) {
	if err := t.write(); err != nil {
		return false, err
	}
	r, ok := t.state.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	t.state.requests[id] = r
	return true, nil
}

func (t *txn) DeleteRequest(_ context.Context, id uint64) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.state.requests[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.state.requests, id)
	return nil
}

func (t *txn) DeleteRequestsByResource(_ context.Context, resourceID uint64) (int64, error) {
	if err := t.write(); err != nil {
		return 0, err
	}
	var n int64
	for id, r := range t.state.requests {
		if r.ResourceID == resourceID {
			delete(t.state.requests, id)
			n++
		}
	}
	return n, nil
}

func (t *txn) ListRequests(_ context.Context, f model.RequestFilter) ([]model.RequestDetail, error) {
	out := []model.RequestDetail{}
	for _, r := range t.state.requests {
		if f.RequesterID != 0 && r.RequesterID != f.RequesterID {
			continue
		}
		if f.ResourceID != 0 && r.ResourceID != f.ResourceID {
			continue
		}
		res := t.state.resources[r.ResourceID]
		requester := t.state.users[r.RequesterID]
		owner := t.state.users[res.OwnerID]
		out = append(out, model.RequestDetail{
			Request:          r,
			ResourceTitle:    res.Title,
			ResourceCategory: res.Category,
			RequesterName:    requester.FullName,
			RequesterEmail:   requester.Email,
			OwnerID:          res.OwnerID,
			OwnerName:        owner.FullName,
			OwnerPhone:       owner.PhoneNumber,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// notifications

func (t *txn) CreateNotification(_ context.Context, n *model.Notification) error {
	if err := t.write(); err != nil {
		return err
	}
	n.ID = t.nextID()
	n.CreatedAt = t.now()
	t.state.notifications[n.ID] = *n
	return nil
}

func (t *txn) SetNotificationStatusByRequest(_ context.Context, requestID uint64, status model.RequestStatus) error {
	if err := t.write(); err != nil {
		return err
	}
	for id, n := range t.state.notifications {
		if n.RequestID != nil && *n.RequestID == requestID {
			n.Status = status
			t.state.notifications[id] = n
		}
	}
	return nil
}

func (t *txn) ListNotifications(_ context.Context, userID uint64) ([]model.Notification, error) {
	out := []model.Notification{}
	for _, n := range t.state.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (t *txn) MarkAllRead(_ context.Context, userID uint64) (int64, error) {
	if err := t.write(); err != nil {
		return 0, err
	}
	var changed int64
	for id, n := range t.state.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			t.state.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (t *txn) CountUnread(_ context.Context, userID uint64) (int, error) {
	c := 0
	for _, n := range t.state.notifications {
		if n.UserID == userID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

// favorites

func (t *txn) AddFavorite(_ context.Context, userID, resourceID uint64) error {
	if err := t.write(); err != nil {
		return err
	}
	k := favoriteKey{userID, resourceID}
	if _, ok := t.state.favorites[k]; ok {
		return repository.ErrConflict
	}
	t.state.favorites[k] = t.now()
	return nil
}

func (t *txn) RemoveFavorite(_ context.Context, userID, resourceID uint64) (bool, error) {
	if err := t.write(); err != nil {
		return false, err
	}
	k := favoriteKey{userID, resourceID}
	if _, ok := t.state.favorites[k]; !ok {
		return false, nil
	}
	delete(t.state.favorites, k)
	return true, nil
}

func (t *txn) ListFavorites(_ context.Context, userID uint64) ([]model.FavoriteListing, error) {
	out := []model.FavoriteListing{}
	for k, at := range t.state.favorites {
		if k.userID != userID {
			continue
		}
		r, ok := t.state.resources[k.resourceID]
		if !ok {
			continue
		}
		out = append(out, model.FavoriteListing{FavoritedAt: at, Listing: t.listing(r)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FavoritedAt.Equal(out[j].FavoritedAt) {
			return out[i].FavoritedAt.After(out[j].FavoritedAt)
		}
		return out[i].Listing.ID > out[j].Listing.ID
	})
	return out, nil
}

func (t *txn) DeleteFavoritesByResource(_ context.Context, resourceID uint64) error {
	if err := t.write(); err != nil {
		return err
	}
	for k := range t.state.favorites {
		if k.resourceID == resourceID {
			delete(t.state.favorites, k)
		}
	}
	return nil
}

func (t *txn) DeleteFavoritesByUser(_ context.Context, userID uint64) error {
	if err := t.write(); err != nil {
		return err
	}
	for k := range t.state.favorites {
		if k.userID == userID {
			delete(t.state.favorites, k)
		}
	}
	return nil
}
