package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/campus-connect/internal/model"
)

// ResourceRepo provides access to the 'resources' table.  Listing reads
// join the owner's name from 'users'.
type ResourceRepo struct{ DB DBTX }

// NewResourceRepo returns a ResourceRepo bound to db, which may be a
// *sql.DB or a *sql.Tx.
func NewResourceRepo(db DBTX) *ResourceRepo { return &ResourceRepo{DB: db} }

const listingSelect = `SELECT r.id, r.owner_id, r.title, r.category, r.item_condition, r.ownership_type,
       r.price, r.description, r.status, r.created_at, COALESCE(u.full_name, '')
FROM resources r
LEFT JOIN users u ON u.id = r.owner_id`

// CreateResource inserts res and fills in its ID and CreatedAt.
func (r *ResourceRepo) CreateResource(ctx context.Context, res *model.Resource) error {
	const q = `INSERT INTO resources (owner_id, title, category, item_condition, ownership_type, price, description, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.DB.ExecContext(ctx, q,
		res.OwnerID, res.Title, res.Category, res.ItemCondition,
		string(res.OwnershipType), res.Price, res.Description, string(res.Status))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.CreatedAt = time.Now().UTC()
	return nil
}

// GetResource returns a single listing with its owner name.
func (r *ResourceRepo) GetResource(ctx context.Context, id uint64) (model.ResourceListing, error) {
	row := r.DB.QueryRowContext(ctx, listingSelect+" WHERE r.id = ?", id)
	return scanListing(row)
}

// LockResource reads the resource row with SELECT ... FOR UPDATE.  It
// only makes sense inside a transaction; the lock is held until commit
// or rollback.
func (r *ResourceRepo) LockResource(ctx context.Context, id uint64) (model.Resource, error) {
	const q = `SELECT id, owner_id, title, category, item_condition, ownership_type, price, description, status, created_at
FROM resources WHERE id = ? FOR UPDATE`
	var (
		res       model.Resource
		ownership string
		status    string
	)
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.OwnerID, &res.Title, &res.Category, &res.ItemCondition,
		&ownership, &res.Price, &res.Description, &status, &res.CreatedAt)
	if err != nil {
		return model.Resource{}, notFound(err)
	}
	res.OwnershipType = model.OwnershipType(ownership)
	res.Status = model.ResourceStatus(status)
	return res, nil
}

// SetResourceStatus moves a resource from one status to another.  The
// update is conditional on the current status so it doubles as a
// compare-and-set; ok is false when the row was not in status from.
func (r *ResourceRepo) SetResourceStatus(ctx context.Context, id uint64, from, to model.ResourceStatus) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE resources SET status = ? WHERE id = ? AND status = ?",
		string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListResources returns listings newest first.
func (r *ResourceRepo) ListResources(ctx context.Context, f model.ResourceFilter) ([]model.ResourceListing, error) {
	where := []string{}
	args := []any{}

	if f.AvailableOnly {
		where = append(where, "r.status = ?")
		args = append(args, string(model.ResourceAvailable))
	}
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, "All") {
		where = append(where, "r.category = ?")
		args = append(args, c)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		where = append(where, "(LOWER(r.title) LIKE ? OR LOWER(r.description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if f.OwnerID != 0 {
		where = append(where, "r.owner_id = ?")
		args = append(args, f.OwnerID)
	}

	q := listingSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY r.created_at DESC, r.id DESC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ResourceListing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CountResourcesByOwner reports how many listings a user owns.
func (r *ResourceRepo) CountResourcesByOwner(ctx context.Context, ownerID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM resources WHERE owner_id = ?", ownerID).Scan(&n)
	return n, err
}

// DeleteResource removes the resource row only.
func (r *ResourceRepo) DeleteResource(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func scanListing(s rowScanner) (model.ResourceListing, error) {
	var (
		l         model.ResourceListing
		ownership string
		status    string
	)
	err := s.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Category, &l.ItemCondition,
		&ownership, &l.Price, &l.Description, &status, &l.CreatedAt, &l.OwnerName)
	if err != nil {
		return model.ResourceListing{}, notFound(err)
	}
	l.OwnershipType = model.OwnershipType(ownership)
	l.Status = model.ResourceStatus(status)
	return l, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
