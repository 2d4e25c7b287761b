// Package queue carries the contact hand-off over RabbitMQ.  Accepting a
// request publishes a RequestAcceptedEvent; the consumer turns each event
// into the message the owner sends the requester and appends it to the
// hand-off log.
package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/campus-connect/internal/service"
)

// QueueName is the durable queue both sides declare.
const QueueName = "marketplace.request.accepted"

// RequestAcceptedEvent is the wire payload.  It is self contained so the
// consumer never reads the primary database.
type RequestAcceptedEvent struct {
	RequestID           uint64 `json:"request_id"`
	ResourceID          uint64 `json:"resource_id"`
	ListingTitle        string `json:"listing_title"`
	OwnerID             uint64 `json:"owner_id"`
	OwnerName           string `json:"owner_name"`
	RequesterID         uint64 `json:"requester_id"`
	RequesterName       string `json:"requester_name"`
	RequesterEmail      string `json:"requester_email"`
	RequesterPhone      string `json:"requester_phone"`
	RequesterDepartment string `json:"requester_department"`
	AcceptedAt          string `json:"accepted_at"`
}

// EventFromContact flattens a service.Contact for the wire.
func EventFromContact(c service.Contact) RequestAcceptedEvent {
	return RequestAcceptedEvent{
		RequestID:           c.RequestID,
		ResourceID:          c.ResourceID,
		ListingTitle:        c.ListingTitle,
		OwnerID:             c.OwnerID,
		OwnerName:           c.OwnerName,
		RequesterID:         c.RequesterID,
		RequesterName:       c.RequesterName,
		RequesterEmail:      c.RequesterEmail,
		RequesterPhone:      c.RequesterPhone,
		RequesterDepartment: c.RequesterDepartment,
		AcceptedAt:          c.AcceptedAt.UTC().Format(time.RFC3339),
	}
}

// ContactMessage is the text the owner sends to the requester.
func (ev RequestAcceptedEvent) ContactMessage() string {
	return fmt.Sprintf("Hi %s, I saw your request for my listing %q on Campus Connect.",
		ev.RequesterName, ev.ListingTitle)
}

// LogLine renders one hand-off log entry.
func (ev RequestAcceptedEvent) LogLine() string {
	return fmt.Sprintf("[%s] request accepted | request_id=%d | resource_id=%d | owner=%q | to=%q <%s> phone=%s dept=%q | message=%q\n",
		ev.AcceptedAt, ev.RequestID, ev.ResourceID, ev.OwnerName,
		ev.RequesterName, ev.RequesterEmail, ev.RequesterPhone, ev.RequesterDepartment,
		ev.ContactMessage())
}
