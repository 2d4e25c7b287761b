package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
	"github.com/iliyamo/campus-connect/internal/utils"
)

// NewUser is the input of CreateUser and Register.
type NewUser struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (in NewUser) normalize() (NewUser, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = model.RoleStudent
	}
	if in.FullName == "" {
		return in, NewValidationError("full_name is required")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return in, NewValidationError("email is invalid")
	}
	if len(in.Password) < utils.MinPasswordLength {
		return in, NewValidationError("password must be at least 6 characters")
	}
	if in.Role != model.RoleStudent && in.Role != model.RoleAdmin {
		return in, NewValidationError("role must be student or admin")
	}
	return in, nil
}

// CreateUser adds an account with the given role.
func (m *Marketplace) CreateUser(ctx context.Context, in NewUser) (model.UserView, error) {
	return m.createUser(ctx, in, false)
}

func (m *Marketplace) createUser(ctx context.Context, in NewUser, protected bool) (model.UserView, error) {
	in, err := in.normalize()
	if err != nil {
		return model.UserView{}, err
	}
	hash, err := utils.HashPassword(in.Password, m.identity.BcryptCost)
	if err != nil {
		return model.UserView{}, NewInternalError(err)
	}
	u := model.User{FullName: in.FullName, Email: in.Email, PasswordHash: hash, Role: in.Role, Protected: protected}
	err = m.store.Atomic(ctx, func(tx repository.Tx) error {
		return tx.CreateUser(ctx, &u)
	})
	if errors.Is(err, repository.ErrEmailExists) {
		return model.UserView{}, NewDuplicateEntryError("email already exists")
	}
	if err != nil {
		return model.UserView{}, wrap(err)
	}
	m.log.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u.View(), nil
}

// ListUsers returns every account.
func (m *Marketplace) ListUsers(ctx context.Context) ([]model.UserView, error) {
	var out []model.UserView
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		users, err := tx.ListUsers(ctx)
		if err != nil {
			return err
		}
		out = make([]model.UserView, 0, len(users))
		for _, u := range users {
			out = append(out, u.View())
		}
		return nil
	})
	return out, wrap(err)
}

// ListAllResources returns every listing in any status.
func (m *Marketplace) ListAllResources(ctx context.Context) ([]model.ResourceListing, error) {
	var out []model.ResourceListing
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListResources(ctx, model.ResourceFilter{})
		return err
	})
	return out, wrap(err)
}

// ListAllRequests returns every request with listing and requester
// details.
func (m *Marketplace) ListAllRequests(ctx context.Context) ([]model.RequestDetail, error) {
	var out []model.RequestDetail
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListRequests(ctx, model.RequestFilter{})
		return err
	})
	return out, wrap(err)
}

// DeleteUser removes an account.  The bootstrap admin carries a stored
// protected flag and cannot be removed, whatever ADMIN_EMAIL says now.  A
// user who still owns listings must have them removed first.  The
// user's own requests are deleted, releasing any listing they held, and
// their favorites and sessions go with them.  Notifications stay.
func (m *Marketplace) DeleteUser(ctx context.Context, id uint64) error {
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		u, err := tx.GetUser(ctx, id)
		if err != nil {
			return notFoundAs(err, "user", id)
		}
		if u.Protected {
			return NewProtectedAccountError()
		}
		owned, err := tx.CountResourcesByOwner(ctx, id)
		if err != nil {
			return err
		}
		if owned > 0 {
			return NewConflictError("user still owns listings")
		}
		reqs, err := tx.ListRequests(ctx, model.RequestFilter{RequesterID: id})
		if err != nil {
			return err
		}
		for _, r := range reqs {
			if err := tx.DeleteRequest(ctx, r.ID); err != nil {
				return err
			}
			if err := releaseIfHeld(ctx, tx, r.Request); err != nil {
				return err
			}
		}
		if err := tx.DeleteFavoritesByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.RevokeAllRefresh(ctx, id); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return wrap(err)
	}
	m.log.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// DeleteResource removes a listing together with its requests and
// favorites.  Notifications that mention it stay.
func (m *Marketplace) DeleteResource(ctx context.Context, id uint64) error {
	var dropped int64
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetResource(ctx, id); err != nil {
			return notFoundAs(err, "resource", id)
		}
		var err error
		if dropped, err = tx.DeleteRequestsByResource(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteFavoritesByResource(ctx, id); err != nil {
			return err
		}
		return tx.DeleteResource(ctx, id)
	})
	if err != nil {
		return wrap(err)
	}
	m.log.InfoContext(ctx, "resource deleted", "resource_id", id, "requests_removed", dropped)
	return nil
}
