package controllers

import (
	"fmt"
	"time"

	"cityevents/internal/delivery/http/helpers"
	"cityevents/internal/domain"
)

// LocationDTO is the geographic point in request and response bodies.
// swagger:model LocationDTO
type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EventFullResponse is the complete event representation.
// swagger:model EventFullResponse
type EventFullResponse struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	Description       string      `json:"description"`
	Category          int64       `json:"category"`
	Initiator         int64       `json:"initiator"`
	Location          LocationDTO `json:"location"`
	EventDate         string      `json:"eventDate"`
	Paid              bool        `json:"paid"`
	ParticipantLimit  int         `json:"participantLimit"`
	RequestModeration bool        `json:"requestModeration"`
	State             string      `json:"state"`
	CreatedOn         string      `json:"createdOn"`
	PublishedOn       string      `json:"publishedOn,omitempty"`
	ConfirmedRequests int         `json:"confirmedRequests"`
	Views             int64       `json:"views"`
}

// EventShortResponse is the condensed event representation used in listings.
// swagger:model EventShortResponse
type EventShortResponse struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Annotation        string `json:"annotation"`
	Category          int64  `json:"category"`
	Initiator         int64  `json:"initiator"`
	EventDate         string `json:"eventDate"`
	Paid              bool   `json:"paid"`
	ConfirmedRequests int    `json:"confirmedRequests"`
	Views             int64  `json:"views"`
}

// RequestResponse is the wire representation of a participation request.
// swagger:model RequestResponse
type RequestResponse struct {
	ID        int64  `json:"id"`
	Event     int64  `json:"event"`
	Requester int64  `json:"requester"`
	Created   string `json:"created"`
	Status    string `json:"status"`
}

// StatusUpdateResponse partitions a bulk moderation result.
// swagger:model StatusUpdateResponse
type StatusUpdateResponse struct {
	ConfirmedRequests []RequestResponse `json:"confirmedRequests"`
	RejectedRequests  []RequestResponse `json:"rejectedRequests"`
}

func toEventFull(event *domain.Event) EventFullResponse {
	resp := EventFullResponse{
		ID:                event.ID,
		Title:             event.Title,
		Annotation:        event.Annotation,
		Description:       event.Description,
		Category:          event.CategoryID,
		Initiator:         event.InitiatorID,
		Location:          LocationDTO{Lat: event.Location.Lat, Lon: event.Location.Lon},
		EventDate:         event.EventDate.Format(helpers.DateTimeLayout),
		Paid:              event.Paid,
		ParticipantLimit:  event.ParticipantLimit,
		RequestModeration: event.RequestModeration,
		State:             string(event.State),
		CreatedOn:         event.CreatedOn.Format(helpers.DateTimeLayout),
		ConfirmedRequests: event.ConfirmedRequests,
		Views:             event.Views,
	}
	if event.PublishedOn != nil {
		resp.PublishedOn = event.PublishedOn.Format(helpers.DateTimeLayout)
	}
	return resp
}

func toEventFullList(events []*domain.Event) []EventFullResponse {
	out := make([]EventFullResponse, 0, len(events))
	for _, event := range events {
		out = append(out, toEventFull(event))
	}
	return out
}

func toEventShort(event *domain.Event) EventShortResponse {
	return EventShortResponse{
		ID:                event.ID,
		Title:             event.Title,
		Annotation:        event.Annotation,
		Category:          event.CategoryID,
		Initiator:         event.InitiatorID,
		EventDate:         event.EventDate.Format(helpers.DateTimeLayout),
		Paid:              event.Paid,
		ConfirmedRequests: event.ConfirmedRequests,
		Views:             event.Views,
	}
}

func toEventShortList(events []*domain.Event) []EventShortResponse {
	out := make([]EventShortResponse, 0, len(events))
	for _, event := range events {
		out = append(out, toEventShort(event))
	}
	return out
}

func toRequest(req *domain.ParticipationRequest) RequestResponse {
	return RequestResponse{
		ID:        req.ID,
		Event:     req.EventID,
		Requester: req.RequesterID,
		Created:   req.Created.Format(helpers.DateTimeLayout),
		Status:    string(req.Status),
	}
}

func toRequestList(reqs []*domain.ParticipationRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toRequest(req))
	}
	return out
}

func toStatusUpdate(result *domain.StatusUpdateResult) StatusUpdateResponse {
	return StatusUpdateResponse{
		ConfirmedRequests: toRequestList(result.Confirmed),
		RejectedRequests:  toRequestList(result.Rejected),
	}
}

func parseDateTime(field, value string) (time.Time, error) {
	t, err := time.Parse(helpers.DateTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must match %s", domain.ErrValidation, field, helpers.DateTimeLayout)
	}
	return t, nil
}
