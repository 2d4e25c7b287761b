package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/campus-connect/internal/model"
)

// RequestRepo provides access to the 'requests' table.  A request row is
// created pending and only ever moves to accepted or declined; a
// cancelled request is deleted.
type RequestRepo struct{ DB DBTX }

// NewRequestRepo returns a RequestRepo bound to db.
func NewRequestRepo(db DBTX) *RequestRepo { return &RequestRepo{DB: db} }

const requestColumns = "id, resource_id, requester_id, request_type, phone_number, department, status, created_at"

// CreateRequest inserts req and fills in its ID and CreatedAt.
func (r *RequestRepo) CreateRequest(ctx context.Context, req *model.Request) error {
	const q = `INSERT INTO requests (resource_id, requester_id, request_type, phone_number, department, status)
VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.DB.ExecContext(ctx, q,
		req.ResourceID, req.RequesterID, string(req.RequestType),
		req.PhoneNumber, req.Department, string(req.Status))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	req.CreatedAt = time.Now().UTC()
	return nil
}

// GetRequest fetches a request by id.
func (r *RequestRepo) GetRequest(ctx context.Context, id uint64) (model.Request, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM requests WHERE id = ?", id)
	return scanRequest(row)
}

// LockRequest fetches a request by id holding a row lock until the
// surrounding transaction ends.
func (r *RequestRepo) LockRequest(ctx context.Context, id uint64) (model.Request, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM requests WHERE id = ? FOR UPDATE", id)
	return scanRequest(row)
}

// UpdateRequestStatus moves a request from one status to another.  ok is
// false when the row was not in status from.
func (r *RequestRepo) UpdateRequestStatus(ctx context.Context, id uint64, from, to model.RequestStatus) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE requests SET status = ? WHERE id = ? AND status = ?",
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

// DeleteRequest removes a request row.
func (r *RequestRepo) DeleteRequest(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM requests WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteRequestsByResource removes every request that references a
// resource and reports how many were removed.
func (r *RequestRepo) DeleteRequestsByResource(ctx context.Context, resourceID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM requests WHERE resource_id = ?", resourceID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListRequests returns requests in creation order joined with the
// listing, the requester and the listing owner.
func (r *RequestRepo) ListRequests(ctx context.Context, f model.RequestFilter) ([]model.RequestDetail, error) {
	where := []string{}
	args := []any{}
	if f.RequesterID != 0 {
		where = append(where, "q.requester_id = ?")
		args = append(args, f.RequesterID)
	}
	if f.ResourceID != 0 {
		where = append(where, "q.resource_id = ?")
		args = append(args, f.ResourceID)
	}

	q := `SELECT q.id, q.resource_id, q.requester_id, q.request_type, q.phone_number, q.department, q.status, q.created_at,
       COALESCE(r.title, ''), COALESCE(r.category, ''), COALESCE(u.full_name, ''), COALESCE(u.email, ''),
       COALESCE(r.owner_id, 0), COALESCE(o.full_name, ''), COALESCE(o.phone_number, '')
FROM requests q
LEFT JOIN resources r ON r.id = q.resource_id
LEFT JOIN users u ON u.id = q.requester_id
LEFT JOIN users o ON o.id = r.owner_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY q.created_at, q.id"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RequestDetail{}
	for rows.Next() {
		var (
			d      model.RequestDetail
			typ    string
			status string
		)
		if err := rows.Scan(&d.ID, &d.ResourceID, &d.RequesterID, &typ, &d.PhoneNumber, &d.Department,
			&status, &d.CreatedAt, &d.ResourceTitle, &d.ResourceCategory, &d.RequesterName, &d.RequesterEmail,
			&d.OwnerID, &d.OwnerName, &d.OwnerPhone); err != nil {
			return nil, err
		}
		d.RequestType = model.OwnershipType(typ)
		d.Status = model.RequestStatus(status)
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanRequest(s rowScanner) (model.Request, error) {
	var (
		req    model.Request
		typ    string
		status string
	)
	err := s.Scan(&req.ID, &req.ResourceID, &req.RequesterID, &typ,
		&req.PhoneNumber, &req.Department, &status, &req.CreatedAt)
	if err != nil {
		return model.Request{}, notFound(err)
	}
	req.RequestType = model.OwnershipType(typ)
	req.Status = model.RequestStatus(status)
	return req, nil
}
