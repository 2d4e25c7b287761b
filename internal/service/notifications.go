package service

import (
	"context"
	"strings"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
)

// ListNotifications returns the actor's notifications newest first and
// marks them all read in the same unit of work.  The returned entries
// keep the read flag they had before the call so clients can highlight
// what is new.
func (m *Marketplace) ListNotifications(ctx context.Context, actorID uint64) ([]model.Notification, error) {
	var out []model.Notification
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListNotifications(ctx, actorID)
		if err != nil {
			return err
		}
		_, err = tx.MarkAllRead(ctx, actorID)
		return err
	})
	return out, wrap(err)
}

// UnreadCount backs the notification badge.
func (m *Marketplace) UnreadCount(ctx context.Context, actorID uint64) (int, error) {
	var n int
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		n, err = tx.CountUnread(ctx, actorID)
		return err
	})
	return n, wrap(err)
}

// NotifyUser appends a system message to a user's notifications.
func (m *Marketplace) NotifyUser(ctx context.Context, userID uint64, message string) (model.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return model.Notification{}, NewValidationError("message is required")
	}
	n := model.Notification{
		UserID:  userID,
		Type:    model.NotificationSystem,
		Message: message,
	}
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return notFoundAs(err, "user", userID)
		}
		return tx.CreateNotification(ctx, &n)
	})
	if err != nil {
		return model.Notification{}, wrap(err)
	}
	m.log.InfoContext(ctx, "system notification sent", "user_id", userID, "notification_id", n.ID)
	return n, nil
}
