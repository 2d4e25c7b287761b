// Package memory is an in-process implementation of repository.Store.
// Units of work run against a private copy of the state that replaces
// the live state only when the work succeeds, so a failed unit of work
// leaves no partial writes behind.  Writers are serialized by a single
// lock; readers share it.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
)

type refreshToken struct {
	userID  uint64
	expires time.Time
	revoked bool
}

type favoriteKey struct{ userID, resourceID uint64 }

type state struct {
	users         map[uint64]model.User
	tokens        map[string]refreshToken
	resources     map[uint64]model.Resource
	requests      map[uint64]model.Request
	notifications map[uint64]model.Notification
	favorites     map[favoriteKey]time.Time
	seq           uint64
}

func newState() state {
	return state{
		users:         map[uint64]model.User{},
		tokens:        map[string]refreshToken{},
		resources:     map[uint64]model.Resource{},
		requests:      map[uint64]model.Request{},
		notifications: map[uint64]model.Notification{},
		favorites:     map[favoriteKey]time.Time{},
	}
}

func (s state) clone() state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	for k, v := range s.resources {
		c.resources[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.notifications {
		if v.RequestID != nil {
			id := *v.RequestID
			v.RequestID = &id
		}
		c.notifications[k] = v
	}
	for k, v := range s.favorites {
		c.favorites[k] = v
	}
	return c
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state state
	nowFn func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFn = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{state: newState(), nowFn: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Atomic runs fn on a copy of the state and publishes the copy only if
// fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{state: s.state.clone(), now: s.nowFn}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// ReadOnly runs fn against the live state under the read lock.  Writes
// fail with repository.ErrReadOnly.
func (s *Store) ReadOnly(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&txn{state: s.state, now: s.nowFn, readOnly: true})
}

var _ repository.Store = (*Store)(nil)
