package service

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
)

// ResourceQuery filters the public browse view.
type ResourceQuery struct {
	Category string
	Search   string
}

// NewResource is the input of CreateResource.
type NewResource struct {
	Title         string              `json:"title"`
	Category      string              `json:"category"`
	ItemCondition string              `json:"item_condition"`
	OwnershipType model.OwnershipType `json:"ownership_type"`
	Price         float64             `json:"price"`
	Description   string              `json:"description"`
}

func (in NewResource) normalize() (NewResource, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.ItemCondition = strings.TrimSpace(in.ItemCondition)
	in.Description = strings.TrimSpace(in.Description)
	in.OwnershipType = model.OwnershipType(strings.ToLower(strings.TrimSpace(string(in.OwnershipType))))

	switch {
	case in.Title == "":
		return in, NewValidationError("title is required")
	case len(in.Title) > 200:
		return in, NewValidationError("title must be at most 200 characters")
	case !slices.Contains(model.Categories, in.Category):
		return in, NewValidationError("category must be one of " + strings.Join(model.Categories, ", "))
	case in.ItemCondition == "":
		return in, NewValidationError("item_condition is required")
	case !in.OwnershipType.Valid():
		return in, NewValidationError("ownership_type must be sell or share")
	case math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0:
		return in, NewValidationError("price must be a non-negative number")
	}
	if in.OwnershipType == model.OwnershipShare {
		in.Price = 0
	}
	return in, nil
}

// ListResources returns available listings, newest first.
func (m *Marketplace) ListResources(ctx context.Context, q ResourceQuery) ([]model.ResourceListing, error) {
	var out []model.ResourceListing
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListResources(ctx, model.ResourceFilter{
			Category:      q.Category,
			Search:        q.Search,
			AvailableOnly: true,
		})
		return err
	})
	return out, wrap(err)
}

// GetResource returns one listing regardless of its status.
func (m *Marketplace) GetResource(ctx context.Context, id uint64) (model.ResourceListing, error) {
	var out model.ResourceListing
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.GetResource(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFoundError("resource", id)
		}
		return err
	})
	return out, wrap(err)
}

// CreateResource lists a new available item owned by ownerID.
func (m *Marketplace) CreateResource(ctx context.Context, ownerID uint64, in NewResource) (model.Resource, error) {
	in, err := in.normalize()
	if err != nil {
		return model.Resource{}, err
	}
	res := model.Resource{
		OwnerID:       ownerID,
		Title:         in.Title,
		Category:      in.Category,
		ItemCondition: in.ItemCondition,
		OwnershipType: in.OwnershipType,
		Price:         in.Price,
		Description:   in.Description,
		Status:        model.ResourceAvailable,
	}
	err = m.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetUser(ctx, ownerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewNotFoundError("user", ownerID)
			}
			return err
		}
		return tx.CreateResource(ctx, &res)
	})
	if err != nil {
		return model.Resource{}, wrap(err)
	}
	m.log.InfoContext(ctx, "resource listed", "resource_id", res.ID, "owner_id", ownerID, "ownership_type", res.OwnershipType)
	return res, nil
}
