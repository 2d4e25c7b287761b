package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/campus-connect/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repo can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserStore covers the users table.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id uint64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserContact(ctx context.Context, id uint64, phone, department string) error
	UpdatePasswordHash(ctx context.Context, id uint64, hash string) error
	DeleteUser(ctx context.Context, id uint64) error
}

// TokenStore covers refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeRefresh(ctx context.Context, tokenHash string) error
	RevokeAllRefresh(ctx context.Context, userID uint64) error
}

// ResourceStore covers listings.
type ResourceStore interface {
	CreateResource(ctx context.Context, res *model.Resource) error
	GetResource(ctx context.Context, id uint64) (model.ResourceListing, error)
	LockResource(ctx context.Context, id uint64) (model.Resource, error)
	SetResourceStatus(ctx context.Context, id uint64, from, to model.ResourceStatus) (bool, error)
	ListResources(ctx context.Context, f model.ResourceFilter) ([]model.ResourceListing, error)
	CountResourcesByOwner(ctx context.Context, ownerID uint64) (int, error)
	DeleteResource(ctx context.Context, id uint64) error
}

// RequestStore covers checkout requests.
type RequestStore interface {
	CreateRequest(ctx context.Context, req *model.Request) error
	GetRequest(ctx context.Context, id uint64) (model.Request, error)
	LockRequest(ctx context.Context, id uint64) (model.Request, error)
	UpdateRequestStatus(ctx context.Context, id uint64, from, to model.RequestStatus) (bool, error)
	DeleteRequest(ctx context.Context, id uint64) error
	DeleteRequestsByResource(ctx context.Context, resourceID uint64) (int64, error)
	ListRequests(ctx context.Context, f model.RequestFilter) ([]model.RequestDetail, error)
}

// NotificationStore covers the per-user notification log.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	SetNotificationStatusByRequest(ctx context.Context, requestID uint64, status model.RequestStatus) error
	ListNotifications(ctx context.Context, userID uint64) ([]model.Notification, error)
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
	CountUnread(ctx context.Context, userID uint64) (int, error)
}

// FavoriteStore covers saved listings.
type FavoriteStore interface {
	AddFavorite(ctx context.Context, userID, resourceID uint64) error
	RemoveFavorite(ctx context.Context, userID, resourceID uint64) (bool, error)
	ListFavorites(ctx context.Context, userID uint64) ([]model.FavoriteListing, error)
	DeleteFavoritesByResource(ctx context.Context, resourceID uint64) error
	DeleteFavoritesByUser(ctx context.Context, userID uint64) error
}

// Tx is the view of the data a unit of work operates on.
type Tx interface {
	UserStore
	TokenStore
	ResourceStore
	RequestStore
	NotificationStore
	FavoriteStore
}

// Store runs units of work.  Atomic commits when fn returns nil and
// discards every write otherwise.  ReadOnly must not be used for writes.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	ReadOnly(ctx context.Context, fn func(tx Tx) error) error
}

// sqlTx binds every repo to one *sql.Tx.
type sqlTx struct {
	*UserRepo
	*TokenRepo
	*ResourceRepo
	*RequestRepo
	*NotificationRepo
	*FavoriteRepo
}

func bind(db DBTX) *sqlTx {
	return &sqlTx{
		UserRepo:         NewUserRepo(db),
		TokenRepo:        NewTokenRepo(db),
		ResourceRepo:     NewResourceRepo(db),
		RequestRepo:      NewRequestRepo(db),
		NotificationRepo: NewNotificationRepo(db),
		FavoriteRepo:     NewFavoriteRepo(db),
	}
}

// MySQLStore runs units of work as MySQL transactions.
type MySQLStore struct{ db *sql.DB }

// NewMySQLStore wraps an open connection pool.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// DB exposes the underlying pool for health checks.
func (s *MySQLStore) DB() *sql.DB { return s.db }

func (s *MySQLStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, nil, fn)
}

func (s *MySQLStore) ReadOnly(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (s *MySQLStore) run(ctx context.Context, opts *sql.TxOptions, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
