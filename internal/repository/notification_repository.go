package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/campus-connect/internal/model"
)

// NotificationRepo provides access to the 'notifications' table.  Rows
// are never deleted; only status and is_read change after insert.
type NotificationRepo struct{ DB DBTX }

// NewNotificationRepo returns a NotificationRepo bound to db.
func NewNotificationRepo(db DBTX) *NotificationRepo { return &NotificationRepo{DB: db} }

// CreateNotification appends n and fills in its ID and CreatedAt.
func (r *NotificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications
  (user_id, type, request_id, listing_title, requester_name, requester_phone, requester_department, message, status, is_read)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var reqID sql.NullInt64
	if n.RequestID != nil {
		reqID = sql.NullInt64{Int64: int64(*n.RequestID), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, q,
		n.UserID, string(n.Type), reqID, n.ListingTitle, n.RequesterName,
		n.RequesterPhone, n.RequesterDepartment, n.Message, string(n.Status), n.IsRead)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	n.CreatedAt = time.Now().UTC()
	return nil
}

// SetNotificationStatusByRequest mirrors a request status onto the
// notifications linked to it.
func (r *NotificationRepo) SetNotificationStatusByRequest(ctx context.Context, requestID uint64, status model.RequestStatus) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET status = ? WHERE request_id = ?", string(status), requestID)
	return err
}

// ListNotifications returns a user's notifications newest first.
func (r *NotificationRepo) ListNotifications(ctx context.Context, userID uint64) ([]model.Notification, error) {
	const q = `SELECT id, user_id, type, request_id, listing_title, requester_name, requester_phone,
       requester_department, message, status, is_read, created_at
FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var (
			n      model.Notification
			typ    string
			status string
			reqID  sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &reqID, &n.ListingTitle, &n.RequesterName,
			&n.RequesterPhone, &n.RequesterDepartment, &n.Message, &status, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = model.NotificationType(typ)
		n.Status = model.RequestStatus(status)
		if reqID.Valid {
			id := uint64(reqID.Int64)
			n.RequestID = &id
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkAllRead flags every unread notification of a user as read and
// reports how many changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountUnread reports the number of unread notifications of a user.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE", userID).Scan(&n)
	return n, err
}
