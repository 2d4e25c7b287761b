// Package service implements the marketplace: the request lifecycle
// state machine, the catalog, notifications, favorites, administration
// and the identity flows.  Every operation runs as one unit of work on a
// repository.Store and reports failures as *AppError.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/campus-connect/internal/logging"
	"github.com/iliyamo/campus-connect/internal/metrics"
	"github.com/iliyamo/campus-connect/internal/repository"
)

// Contact is what the hand-off collaborator needs to put an owner in
// touch with the requester of an accepted request.
type Contact struct {
	RequestID           uint64    `json:"request_id"`
	ResourceID          uint64    `json:"resource_id"`
	ListingTitle        string    `json:"listing_title"`
	OwnerID             uint64    `json:"owner_id"`
	OwnerName           string    `json:"owner_name"`
	RequesterID         uint64    `json:"requester_id"`
	RequesterName       string    `json:"requester_name"`
	RequesterEmail      string    `json:"requester_email"`
	RequesterPhone      string    `json:"requester_phone"`
	RequesterDepartment string    `json:"requester_department"`
	AcceptedAt          time.Time `json:"accepted_at"`
}

// ContactHandoff is invoked once after an accept commits.  Delivery is
// best effort; a returned error is logged and never reaches the caller.
type ContactHandoff interface {
	Handoff(ctx context.Context, c Contact) error
}

// Identity configures tokens, password hashing and the protected admin.
type Identity struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	AdminEmail     string
}

// Marketplace is safe for concurrent use; all shared state lives in the
// store.
type Marketplace struct {
	store    repository.Store
	handoff  ContactHandoff
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
	identity Identity
}

// Option configures a Marketplace at construction time.
type Option func(*Marketplace)

// WithHandoff sets the sink that receives contact details after an accept
// commits.  Without one, accepts skip the hand-off.
func WithHandoff(h ContactHandoff) Option { return func(m *Marketplace) { m.handoff = h } }

// WithMetrics records lifecycle counters on mt.  A nil mt disables them.
func WithMetrics(mt *metrics.Metrics) Option { return func(m *Marketplace) { m.metrics = mt } }

// WithLogger replaces the default discard logger.
func WithLogger(l *slog.Logger) Option { return func(m *Marketplace) { m.log = l } }

// WithClock overrides the UTC wall clock used for timestamps and token
// expiry.
func WithClock(now func() time.Time) Option { return func(m *Marketplace) { m.now = now } }

// WithIdentity supplies the JWT secret, token lifetimes, bcrypt cost and
// bootstrap admin email.
func WithIdentity(id Identity) Option { return func(m *Marketplace) { m.identity = id } }

// NewMarketplace wires a Marketplace over store.
func NewMarketplace(store repository.Store, opts ...Option) *Marketplace {
	m := &Marketplace{
		store: store,
		log:   logging.Discard(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Ping runs an empty read so health checks exercise the store.
func (m *Marketplace) Ping(ctx context.Context) error {
	return m.store.ReadOnly(ctx, func(repository.Tx) error { return nil })
}
