package model

import "time"

// NotificationType distinguishes request notifications from free-form
// system messages sent by an administrator.
type NotificationType string

const (
	NotificationRequest NotificationType = "request"
	NotificationSystem  NotificationType = "system"
)

// Notification is a per-user log entry.  The snapshot fields are copied
// at creation time; Status mirrors the linked request and is updated by
// accept and decline only.
type Notification struct {
	ID                  uint64           `json:"id"`
	UserID              uint64           `json:"user_id"`
	Type                NotificationType `json:"type"`
	RequestID           *uint64          `json:"request_id,omitempty"`
	ListingTitle        string           `json:"listing_title,omitempty"`
	RequesterName       string           `json:"requester_name,omitempty"`
	RequesterPhone      string           `json:"requester_phone,omitempty"`
	RequesterDepartment string           `json:"requester_department,omitempty"`
	Message             string           `json:"message,omitempty"`
	Status              RequestStatus    `json:"status,omitempty"`
	IsRead              bool             `json:"is_read"`
	CreatedAt           time.Time        `json:"created_at"`
}
