package service

import (
	"context"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
)

// ToggleFavorite saves or unsaves a listing and reports whether it is
// now a favorite.
func (m *Marketplace) ToggleFavorite(ctx context.Context, actorID, resourceID uint64) (bool, error) {
	var favorited bool
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetResource(ctx, resourceID); err != nil {
			return notFoundAs(err, "resource", resourceID)
		}
		removed, err := tx.RemoveFavorite(ctx, actorID, resourceID)
		if err != nil || removed {
			return err
		}
		favorited = true
		return tx.AddFavorite(ctx, actorID, resourceID)
	})
	return favorited, wrap(err)
}

// ListFavorites returns the actor's saved listings that are still
// available.  Favorites of requested listings are hidden, not removed.
func (m *Marketplace) ListFavorites(ctx context.Context, actorID uint64) ([]model.FavoriteListing, error) {
	var out []model.FavoriteListing
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		all, err := tx.ListFavorites(ctx, actorID)
		if err != nil {
			return err
		}
		out = make([]model.FavoriteListing, 0, len(all))
		for _, f := range all {
			if f.Listing.Status == model.ResourceAvailable {
				out = append(out, f)
			}
		}
		return nil
	})
	return out, wrap(err)
}
