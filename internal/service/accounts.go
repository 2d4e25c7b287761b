package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
	"github.com/iliyamo/campus-connect/internal/utils"
)

// Session is the result of a successful register, login or refresh.
type Session struct {
	User    model.UserView
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// Register creates a student account and opens a session for it.
func (m *Marketplace) Register(ctx context.Context, fullName, email, password string) (Session, error) {
	user, err := m.CreateUser(ctx, NewUser{FullName: fullName, Email: email, Password: password, Role: model.RoleStudent})
	if err != nil {
		return Session{}, err
	}
	return m.openSession(ctx, user)
}

// Login checks credentials and opens a session.  Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (m *Marketplace) Login(ctx context.Context, email, password string) (Session, error) {
	var u model.User
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		u, err = tx.GetUserByEmail(ctx, email)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, NewUnauthenticatedError("invalid credentials")
	}
	if err != nil {
		return Session{}, wrap(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, NewUnauthenticatedError("invalid credentials")
	}
	return m.openSession(ctx, u.View())
}

func (m *Marketplace) openSession(ctx context.Context, user model.UserView) (Session, error) {
	s := Session{User: user}
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		s.Access, s.Refresh, err = m.issue(ctx, tx, user.ID, user.Role)
		return err
	})
	if err != nil {
		return Session{}, wrap(err)
	}
	return s, nil
}

// issue signs an access token and persists a fresh refresh token.
func (m *Marketplace) issue(ctx context.Context, tx repository.Tx, userID uint64, role string) (utils.AccessToken, utils.RefreshToken, error) {
	now := m.now()
	at, err := utils.NewAccessToken(m.identity.JWTSecret, userID, role, m.identity.AccessTTLMin, now)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	rt, err := utils.NewRefreshToken(m.identity.RefreshTTLDays, now)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	if err := tx.StoreRefresh(ctx, userID, utils.HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	return at, rt, nil
}

// Refresh exchanges a live refresh token for a new pair.  The presented
// token is revoked.
func (m *Marketplace) Refresh(ctx context.Context, raw string) (Session, error) {
	var s Session
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		u, err := m.refreshOwner(ctx, tx, raw)
		if err != nil {
			return err
		}
		if err := tx.RevokeRefresh(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return err
		}
		s.User = u.View()
		s.Access, s.Refresh, err = m.issue(ctx, tx, u.ID, u.Role)
		return err
	})
	if err != nil {
		return Session{}, wrap(err)
	}
	return s, nil
}

// RefreshAccess issues a new access token and leaves the refresh token
// untouched.
func (m *Marketplace) RefreshAccess(ctx context.Context, raw string) (utils.AccessToken, error) {
	var u model.User
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		u, err = m.refreshOwner(ctx, tx, raw)
		return err
	})
	if err != nil {
		return utils.AccessToken{}, wrap(err)
	}
	at, err := utils.NewAccessToken(m.identity.JWTSecret, u.ID, u.Role, m.identity.AccessTTLMin, m.now())
	if err != nil {
		return utils.AccessToken{}, NewInternalError(err)
	}
	return at, nil
}

func (m *Marketplace) refreshOwner(ctx context.Context, tx repository.Tx, raw string) (model.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.User{}, NewValidationError("refresh_token is required")
	}
	userID, err := tx.ValidateRefresh(ctx, utils.HashRefreshRaw(raw), m.now())
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, NewUnauthenticatedError("invalid refresh token")
	}
	if err != nil {
		return model.User{}, err
	}
	u, err := tx.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, NewUnauthenticatedError("invalid refresh token")
	}
	return u, err
}

// Logout revokes a refresh token.  Unknown tokens are not an error.
func (m *Marketplace) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewValidationError("refresh_token is required")
	}
	return wrap(m.store.Atomic(ctx, func(tx repository.Tx) error {
		return tx.RevokeRefresh(ctx, utils.HashRefreshRaw(raw))
	}))
}

// Me returns the profile of the authenticated user.
func (m *Marketplace) Me(ctx context.Context, userID uint64) (model.UserView, error) {
	var u model.User
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		u, err = tx.GetUser(ctx, userID)
		return notFoundAs(err, "user", userID)
	})
	if err != nil {
		return model.UserView{}, wrap(err)
	}
	return u.View(), nil
}

// ChangePassword replaces the caller's password after checking the
// current one.  Every refresh token of the user is revoked, so other
// sessions end when their access token expires.
func (m *Marketplace) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	if current == "" {
		return NewValidationError("current_password is required")
	}
	if len(next) < utils.MinPasswordLength {
		return NewValidationError("password must be at least 6 characters")
	}
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return notFoundAs(err, "user", userID)
		}
		if !utils.VerifyPassword(u.PasswordHash, current) {
			return NewValidationError("current password is incorrect")
		}
		hash, err := utils.HashPassword(next, m.identity.BcryptCost)
		if err != nil {
			return NewInternalError(err)
		}
		if err := tx.UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.RevokeAllRefresh(ctx, userID)
	})
	if err != nil {
		return wrap(err)
	}
	m.log.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// EnsureAdmin creates the protected admin account when it is missing and
// reports whether it did.
func (m *Marketplace) EnsureAdmin(ctx context.Context, name, password string) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(m.identity.AdminEmail))
	if email == "" {
		return false, NewValidationError("admin email is not configured")
	}
	_, err := m.createUser(ctx, NewUser{FullName: name, Email: email, Password: password, Role: model.RoleAdmin}, true)
	if errors.Is(err, ErrDuplicateEntry) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
