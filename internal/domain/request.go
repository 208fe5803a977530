package domain

import (
	"context"
	"fmt"
	"time"
)

// Conflict variants raised by the participation request flow. Both satisfy
// errors.Is(err, ErrConflict).
var (
	ErrDuplicateRequest = fmt.Errorf("%w: request already exists", ErrConflict)
	ErrLimitReached     = fmt.Errorf("%w: the participant limit has been reached", ErrConflict)
)

// RequestStatus is the state of a participation request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest is one user's request to attend one event.
// At most one request exists per (event, requester) pair.
// swagger:model ParticipationRequest
type ParticipationRequest struct {
	ID          int64         `json:"id"`
	EventID     int64         `json:"event"`
	RequesterID int64         `json:"requester"`
	Created     time.Time     `json:"created"`
	Status      RequestStatus `json:"status"`
}

// StatusUpdate names the requests an initiator wants to confirm or reject in bulk.
type StatusUpdate struct {
	RequestIDs []int64
	Status     RequestStatus
}

// StatusUpdateResult partitions the processed requests.
type StatusUpdateResult struct {
	Confirmed []*ParticipationRequest `json:"confirmedRequests"`
	Rejected  []*ParticipationRequest `json:"rejectedRequests"`
}

// RequestRepository defines the interface for participation request storage.
type RequestRepository interface {
	Create(ctx context.Context, req *ParticipationRequest) error
	GetByID(ctx context.Context, id int64) (*ParticipationRequest, error)
	ExistsByEventAndRequester(ctx context.Context, eventID, requesterID int64) (bool, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*ParticipationRequest, error)
	UpdateStatus(ctx context.Context, id int64, status RequestStatus) error
}

// RequestService defines the participation request business logic.
type RequestService interface {
	AddRequest(ctx context.Context, userID, eventID int64) (*ParticipationRequest, error)
	GetUserRequests(ctx context.Context, userID int64) ([]*ParticipationRequest, error)
	CancelRequest(ctx context.Context, userID, requestID int64) (*ParticipationRequest, error)
	GetEventRequests(ctx context.Context, userID, eventID int64) ([]*ParticipationRequest, error)
	UpdateRequestStatus(ctx context.Context, userID, eventID int64, update StatusUpdate) (*StatusUpdateResult, error)
}
