package domain

import (
	"context"
	"fmt"
	"time"
)

// EventState is the moderation state of an event.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// ParseEventState maps a state token onto an EventState.
// Unknown tokens fail with ErrValidation.
func ParseEventState(s string) (EventState, error) {
	switch EventState(s) {
	case EventStatePending, EventStatePublished, EventStateCanceled:
		return EventState(s), nil
	default:
		return "", fmt.Errorf("%w: unknown event state: %s", ErrValidation, s)
	}
}

// UserStateAction is the state transition an initiator may request on their own event.
type UserStateAction string

const (
	StateActionSendToReview UserStateAction = "SEND_TO_REVIEW"
	StateActionCancelReview UserStateAction = "CANCEL_REVIEW"
)

// AdminStateAction is the state transition a moderator may apply to any event.
type AdminStateAction string

const (
	StateActionPublishEvent AdminStateAction = "PUBLISH_EVENT"
	StateActionRejectEvent  AdminStateAction = "REJECT_EVENT"
)

// EventSort orders public search results.
type EventSort string

const (
	SortEventDate EventSort = "EVENT_DATE"
	SortViews     EventSort = "VIEWS"
)

// Location is the geographic point where an event takes place.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event represents a proposed or published gathering.
// Views is a cache refreshed from the stats collector; the collector stays authoritative.
// swagger:model Event
type Event struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        int64      `json:"category_id"`
	InitiatorID       int64      `json:"initiator_id"`
	Location          Location   `json:"location"`
	EventDate         time.Time  `json:"event_date"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participant_limit"`
	RequestModeration bool       `json:"request_moderation"`
	State             EventState `json:"state"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	Views             int64      `json:"views"`
}

// IsFull reports whether the event has reached its participant limit.
// A limit of zero means unlimited capacity.
func (e *Event) IsFull() bool {
	return e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit
}

// NewEventDraft carries the fields required to create an event.
type NewEventDraft struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	Location          Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

// EventPatch is a sparse update: nil fields leave the current value untouched.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// UserEventPatch is the initiator-facing patch with its own state actions.
type UserEventPatch struct {
	EventPatch
	StateAction *UserStateAction
}

// AdminEventPatch is the moderator-facing patch with its own state actions.
type AdminEventPatch struct {
	EventPatch
	StateAction *AdminStateAction
}

// PublicSearchFilter narrows the public event listing. Only PUBLISHED events
// are ever visible through it.
type PublicSearchFilter struct {
	Text       string
	Categories []int64
	Paid       *bool
	RangeStart *time.Time
	RangeEnd   *time.Time
	Page       Page
}

// AdminSearchFilter narrows the unrestricted moderator listing.
type AdminSearchFilter struct {
	Users      []int64
	States     []EventState
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
	Page       Page
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	// GetByIDForUpdate locks the event row for the duration of the surrounding
	// transaction. Must be called inside Transactor.WithinTx.
	GetByIDForUpdate(ctx context.Context, id int64) (*Event, error)
	GetByIDAndInitiator(ctx context.Context, eventID, initiatorID int64) (*Event, error)
	ListByInitiator(ctx context.Context, initiatorID int64, page Page) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	UpdateConfirmedRequests(ctx context.Context, id int64, confirmed int) error
	UpdateViews(ctx context.Context, id int64, views int64) error
	SearchPublic(ctx context.Context, filter PublicSearchFilter) ([]*Event, error)
	SearchAdmin(ctx context.Context, filter AdminSearchFilter) ([]*Event, error)
	ExistsByCategory(ctx context.Context, categoryID int64) (bool, error)
}

// EventService defines the event lifecycle business logic.
type EventService interface {
	AddEvent(ctx context.Context, userID int64, draft NewEventDraft) (*Event, error)
	GetUserEvents(ctx context.Context, userID int64, page Page) ([]*Event, error)
	GetUserEvent(ctx context.Context, userID, eventID int64) (*Event, error)
	UpdateUserEvent(ctx context.Context, userID, eventID int64, patch UserEventPatch) (*Event, error)
	UpdateEventByAdmin(ctx context.Context, eventID int64, patch AdminEventPatch) (*Event, error)
	GetPublicEvents(ctx context.Context, filter PublicSearchFilter, sort EventSort, onlyAvailable bool, ip, uri string) ([]*Event, error)
	GetPublishedEvent(ctx context.Context, eventID int64, ip, uri string) (*Event, error)
	GetAdminEvents(ctx context.Context, filter AdminSearchFilter) ([]*Event, error)
}
