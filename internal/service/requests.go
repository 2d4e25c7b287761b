package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/campus-connect/internal/metrics"
	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/repository"
)

// SubmitInput is the checkout form of a requester.  An empty RequestType
// takes the resource's ownership type.
type SubmitInput struct {
	RequesterID uint64
	ResourceID  uint64
	RequestType model.OwnershipType
	PhoneNumber string
	Department  string
}

// SubmitRequest claims an available resource.  The resource flips to
// requested and the owner is notified in the same unit of work.  Of two
// concurrent submits for one resource exactly one succeeds; the other
// gets ErrResourceUnavailable.
func (m *Marketplace) SubmitRequest(ctx context.Context, in SubmitInput) (model.Request, error) {
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Department = strings.TrimSpace(in.Department)
	in.RequestType = model.OwnershipType(strings.ToLower(strings.TrimSpace(string(in.RequestType))))
	switch {
	case in.PhoneNumber == "":
		return model.Request{}, NewValidationError("phone_number is required")
	case in.Department == "":
		return model.Request{}, NewValidationError("department is required")
	case in.RequestType != "" && !in.RequestType.Valid():
		return model.Request{}, NewValidationError("request_type must be sell or share")
	}

	var req model.Request
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		requester, err := tx.GetUser(ctx, in.RequesterID)
		if err != nil {
			return notFoundAs(err, "user", in.RequesterID)
		}
		res, err := tx.LockResource(ctx, in.ResourceID)
		if err != nil {
			return notFoundAs(err, "resource", in.ResourceID)
		}
		if res.Status != model.ResourceAvailable {
			return NewResourceUnavailableError(res.ID)
		}
		reqType := in.RequestType
		if reqType == "" {
			reqType = res.OwnershipType
		}
		if reqType != res.OwnershipType {
			return NewValidationError("request_type does not match the listing's ownership type")
		}

		ok, err := tx.SetResourceStatus(ctx, res.ID, model.ResourceAvailable, model.ResourceRequested)
		if err != nil {
			return err
		}
		if !ok {
			return NewResourceUnavailableError(res.ID)
		}

		req = model.Request{
			ResourceID:  res.ID,
			RequesterID: requester.ID,
			RequestType: reqType,
			PhoneNumber: in.PhoneNumber,
			Department:  in.Department,
			Status:      model.RequestPending,
		}
		if err := tx.CreateRequest(ctx, &req); err != nil {
			return err
		}
		if err := tx.UpdateUserContact(ctx, requester.ID, in.PhoneNumber, in.Department); err != nil {
			return err
		}

		if res.OwnerID == requester.ID {
			return nil
		}
		reqID := req.ID
		return tx.CreateNotification(ctx, &model.Notification{
			UserID:              res.OwnerID,
			Type:                model.NotificationRequest,
			RequestID:           &reqID,
			ListingTitle:        res.Title,
			RequesterName:       requester.FullName,
			RequesterPhone:      in.PhoneNumber,
			RequesterDepartment: in.Department,
			Status:              model.RequestPending,
		})
	})
	if err != nil {
		if errors.Is(err, ErrResourceUnavailable) {
			m.metrics.SubmitConflict()
		}
		return model.Request{}, wrap(err)
	}
	m.metrics.Transition(metrics.TransitionSubmit)
	m.log.InfoContext(ctx, "request submitted",
		"request_id", req.ID, "resource_id", req.ResourceID, "requester_id", req.RequesterID)
	return req, nil
}

// AcceptRequest lets the owner accept a pending request.  The resource
// stays requested.  The contact hand-off runs after commit.
func (m *Marketplace) AcceptRequest(ctx context.Context, actorID, requestID uint64) (model.Request, error) {
	var (
		req     model.Request
		contact Contact
	)
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		var res model.Resource
		var err error
		req, res, err = m.decide(ctx, tx, actorID, requestID, model.RequestAccepted)
		if err != nil {
			return err
		}
		owner, err := tx.GetUser(ctx, res.OwnerID)
		if err != nil {
			return err
		}
		requester, err := tx.GetUser(ctx, req.RequesterID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		contact = Contact{
			RequestID:           req.ID,
			ResourceID:          res.ID,
			ListingTitle:        res.Title,
			OwnerID:             owner.ID,
			OwnerName:           owner.FullName,
			RequesterID:         req.RequesterID,
			RequesterName:       requester.FullName,
			RequesterEmail:      requester.Email,
			RequesterPhone:      req.PhoneNumber,
			RequesterDepartment: req.Department,
			AcceptedAt:          m.now(),
		}
		return nil
	})
	if err != nil {
		return model.Request{}, wrap(err)
	}
	m.metrics.Transition(metrics.TransitionAccept)
	m.log.InfoContext(ctx, "request accepted", "request_id", req.ID, "resource_id", req.ResourceID)

	if m.handoff != nil {
		if herr := m.handoff.Handoff(ctx, contact); herr != nil {
			m.metrics.HandoffFailure()
			m.log.WarnContext(ctx, "contact hand-off failed", "request_id", req.ID, "error", herr)
		}
	}
	return req, nil
}

// DeclineRequest lets the owner decline a pending request.  The resource
// returns to available so it can be requested again.
func (m *Marketplace) DeclineRequest(ctx context.Context, actorID, requestID uint64) (model.Request, error) {
	var req model.Request
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		var (
			res model.Resource
			err error
		)
		req, res, err = m.decide(ctx, tx, actorID, requestID, model.RequestDeclined)
		if err != nil {
			return err
		}
		_, err = tx.SetResourceStatus(ctx, res.ID, model.ResourceRequested, model.ResourceAvailable)
		return err
	})
	if err != nil {
		return model.Request{}, wrap(err)
	}
	m.metrics.Transition(metrics.TransitionDecline)
	m.log.InfoContext(ctx, "request declined", "request_id", req.ID, "resource_id", req.ResourceID)
	return req, nil
}

// decide moves a pending request to status on behalf of the resource
// owner and mirrors the status onto the owner's notification.
func (m *Marketplace) decide(ctx context.Context, tx repository.Tx, actorID, requestID uint64, status model.RequestStatus) (model.Request, model.Resource, error) {
	req, err := tx.LockRequest(ctx, requestID)
	if err != nil {
		return req, model.Resource{}, notFoundAs(err, "request", requestID)
	}
	res, err := tx.LockResource(ctx, req.ResourceID)
	if err != nil {
		return req, res, notFoundAs(err, "resource", req.ResourceID)
	}
	if res.OwnerID != actorID {
		return req, res, NewUnauthorizedError("only the owner of the listing can decide on its requests")
	}
	if req.Status != model.RequestPending {
		return req, res, NewNotPendingError(req.ID, req.Status)
	}
	ok, err := tx.UpdateRequestStatus(ctx, req.ID, model.RequestPending, status)
	if err != nil {
		return req, res, err
	}
	if !ok {
		return req, res, NewNotPendingError(req.ID, "no longer pending")
	}
	req.Status = status
	if err := tx.SetNotificationStatusByRequest(ctx, req.ID, status); err != nil {
		return req, res, err
	}
	return req, res, nil
}

// CancelRequest lets the requester withdraw a request in any status.
// The request is deleted.  A pending or accepted request was holding the
// resource, which becomes available again; a declined one was not.
func (m *Marketplace) CancelRequest(ctx context.Context, actorID, requestID uint64) error {
	var req model.Request
	err := m.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		req, err = tx.LockRequest(ctx, requestID)
		if err != nil {
			return notFoundAs(err, "request", requestID)
		}
		if req.RequesterID != actorID {
			return NewUnauthorizedError("only the requester can cancel a request")
		}
		if err := tx.DeleteRequest(ctx, req.ID); err != nil {
			return err
		}
		return releaseIfHeld(ctx, tx, req)
	})
	if err != nil {
		return wrap(err)
	}
	m.metrics.Transition(metrics.TransitionCancel)
	m.log.InfoContext(ctx, "request cancelled", "request_id", req.ID, "resource_id", req.ResourceID, "status", req.Status)
	return nil
}

// ListMyRequests returns the actor's requests in creation order.
func (m *Marketplace) ListMyRequests(ctx context.Context, actorID uint64) ([]model.RequestDetail, error) {
	var out []model.RequestDetail
	err := m.store.ReadOnly(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListRequests(ctx, model.RequestFilter{RequesterID: actorID})
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}
	// The owner's phone is released to the requester only once accepted.
	for i := range out {
		if out[i].Status != model.RequestAccepted {
			out[i].OwnerPhone = ""
		}
	}
	return out, nil
}

// releaseIfHeld returns the resource of a removed request to the
// marketplace when that request was the one holding it.
func releaseIfHeld(ctx context.Context, tx repository.Tx, req model.Request) error {
	if !req.Status.Holds() {
		return nil
	}
	_, err := tx.SetResourceStatus(ctx, req.ResourceID, model.ResourceRequested, model.ResourceAvailable)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func notFoundAs(err error, what string, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NewNotFoundError(what, id)
	}
	return err
}
