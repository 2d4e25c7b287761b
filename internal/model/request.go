package model

import "time"

// RequestStatus is the state of a checkout request.  Cancellation is
// not a status: a cancelled request is deleted.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// Holds reports whether a request in this status keeps its resource
// out of the marketplace.
func (s RequestStatus) Holds() bool { return s == RequestPending || s == RequestAccepted }

// Request records a user's claim on a resource in the `requests` table.
// RequestType is a snapshot of the resource's ownership type taken when
// the request was created.
type Request struct {
	ID          uint64        `json:"id"`
	ResourceID  uint64        `json:"resource_id"`
	RequesterID uint64        `json:"requester_id"`
	RequestType OwnershipType `json:"request_type"`
	PhoneNumber string        `json:"phone_number"`
	Department  string        `json:"department"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// RequestDetail joins a request with its listing, the requester and the
// listing owner for tracking and admin views.  OwnerPhone is empty when
// the owner never recorded one or the view withholds it.
type RequestDetail struct {
	Request
	ResourceTitle    string `json:"resource_title"`
	ResourceCategory string `json:"resource_category"`
	RequesterName    string `json:"requester_name"`
	RequesterEmail   string `json:"requester_email"`
	OwnerID          uint64 `json:"owner_id"`
	OwnerName        string `json:"owner_name"`
	OwnerPhone       string `json:"owner_phone,omitempty"`
}

// RequestFilter narrows request listings.  Zero values disable a filter.
type RequestFilter struct {
	RequesterID uint64
	ResourceID  uint64
}
