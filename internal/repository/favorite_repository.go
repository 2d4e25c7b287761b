package repository

import (
	"context"

	"github.com/iliyamo/campus-connect/internal/model"
)

// FavoriteRepo provides access to the 'favorites' table keyed by
// (user_id, resource_id).
type FavoriteRepo struct{ DB DBTX }

func NewFavoriteRepo(db DBTX) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// AddFavorite inserts a favorite.  ErrConflict means it already exists.
func (r *FavoriteRepo) AddFavorite(ctx context.Context, userID, resourceID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO favorites (user_id, resource_id) VALUES (?, ?)", userID, resourceID)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// RemoveFavorite deletes a favorite and reports whether one existed.
func (r *FavoriteRepo) RemoveFavorite(ctx context.Context, userID, resourceID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id = ? AND resource_id = ?", userID, resourceID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListFavorites returns a user's favorites joined with their listings,
// most recently saved first.  Favorites whose resource no longer exists
// are skipped by the join.
func (r *FavoriteRepo) ListFavorites(ctx context.Context, userID uint64) ([]model.FavoriteListing, error) {
	const q = `SELECT f.created_at, r.id, r.owner_id, r.title, r.category, r.item_condition, r.ownership_type,
       r.price, r.description, r.status, r.created_at, COALESCE(u.full_name, '')
FROM favorites f
JOIN resources r ON r.id = f.resource_id
LEFT JOIN users u ON u.id = r.owner_id
WHERE f.user_id = ?
ORDER BY f.created_at DESC, r.id DESC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.FavoriteListing{}
	for rows.Next() {
		var (
			f         model.FavoriteListing
			ownership string
			status    string
		)
		l := &f.Listing
		if err := rows.Scan(&f.FavoritedAt, &l.ID, &l.OwnerID, &l.Title, &l.Category, &l.ItemCondition,
			&ownership, &l.Price, &l.Description, &status, &l.CreatedAt, &l.OwnerName); err != nil {
			return nil, err
		}
		l.OwnershipType = model.OwnershipType(ownership)
		l.Status = model.ResourceStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteFavoritesByResource removes every favorite pointing at a resource.
func (r *FavoriteRepo) DeleteFavoritesByResource(ctx context.Context, resourceID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM favorites WHERE resource_id = ?", resourceID)
	return err
}

// DeleteFavoritesByUser removes every favorite saved by a user.
func (r *FavoriteRepo) DeleteFavoritesByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM favorites WHERE user_id = ?", userID)
	return err
}
