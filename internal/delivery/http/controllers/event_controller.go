package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"cityevents/internal/delivery/http/helpers"
	"cityevents/internal/domain"
)

// NewEventRequest is the request body for POST /users/{userId}/events.
// swagger:model NewEventRequest
type NewEventRequest struct {
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	Description       string      `json:"description"`
	Category          int64       `json:"category"`
	EventDate         string      `json:"eventDate"`
	Location          LocationDTO `json:"location"`
	Paid              *bool       `json:"paid"`
	ParticipantLimit  *int        `json:"participantLimit"`
	RequestModeration *bool       `json:"requestModeration"`
}

// Validate checks required fields and length bounds.
func (req NewEventRequest) Validate() []string {
	var errs []string
	if l := len(strings.TrimSpace(req.Title)); l < 3 || l > 120 {
		errs = append(errs, "title must be between 3 and 120 characters")
	}
	if l := len(strings.TrimSpace(req.Annotation)); l < 20 || l > 2000 {
		errs = append(errs, "annotation must be between 20 and 2000 characters")
	}
	if l := len(strings.TrimSpace(req.Description)); l < 20 || l > 7000 {
		errs = append(errs, "description must be between 20 and 7000 characters")
	}
	if req.Category == 0 {
		errs = append(errs, "category is required")
	}
	if req.EventDate == "" {
		errs = append(errs, "eventDate is required")
	}
	return errs
}

// UpdateEventUserRequest is the sparse patch body for the initiator-facing PATCH.
// swagger:model UpdateEventUserRequest
type UpdateEventUserRequest struct {
	Title             *string      `json:"title"`
	Annotation        *string      `json:"annotation"`
	Description       *string      `json:"description"`
	Category          *int64       `json:"category"`
	EventDate         *string      `json:"eventDate"`
	Location          *LocationDTO `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit"`
	RequestModeration *bool        `json:"requestModeration"`
	StateAction       *string      `json:"stateAction"`
}

// UpdateEventAdminRequest is the sparse patch body for the moderator-facing PATCH.
// swagger:model UpdateEventAdminRequest
type UpdateEventAdminRequest struct {
	Title             *string      `json:"title"`
	Annotation        *string      `json:"annotation"`
	Description       *string      `json:"description"`
	Category          *int64       `json:"category"`
	EventDate         *string      `json:"eventDate"`
	Location          *LocationDTO `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit"`
	RequestModeration *bool        `json:"requestModeration"`
	StateAction       *string      `json:"stateAction"`
}

type EventController struct {
	Logger *slog.Logger
	Events domain.EventService
}

func NewEventController(logger *slog.Logger, events domain.EventService) *EventController {
	return &EventController{
		Logger: logger,
		Events: events,
	}
}

// Create godoc
// @Summary Create a new event
// @Description Creates an event in state PENDING owned by the user. The event date must be at least 2 hours ahead.
// @Tags events
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param event body NewEventRequest true "Event data"
// @Success 201 {object} controllers.EventFullResponse
// @Failure 400 {object} helpers.APIError
// @Failure 404 {object} helpers.APIError
// @Router /users/{userId}/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	var req NewEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "invalid request body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", strings.Join(errs, "; "))
		return
	}
	eventDate, err := parseDateTime("eventDate", req.EventDate)
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}

	draft := domain.NewEventDraft{
		Title:             strings.TrimSpace(req.Title),
		Annotation:        strings.TrimSpace(req.Annotation),
		Description:       strings.TrimSpace(req.Description),
		CategoryID:        req.Category,
		Location:          domain.Location{Lat: req.Location.Lat, Lon: req.Location.Lon},
		EventDate:         eventDate,
		RequestModeration: true,
	}
	if req.Paid != nil {
		draft.Paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		draft.ParticipantLimit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		draft.RequestModeration = *req.RequestModeration
	}

	event, err := c.Events.AddEvent(r.Context(), userID, draft)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toEventFull(event))
}

// ListByUser godoc
// @Summary List the user's own events
// @Tags events
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param from query int false "Offset" default(0)
// @Param size query int false "Limit" default(10)
// @Success 200 {array} controllers.EventShortResponse
// @Router /users/{userId}/events [get]
func (c *EventController) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	events, err := c.Events.GetUserEvents(r.Context(), userID, helpers.ParsePage(r))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventShortList(events))
}

// GetByUser godoc
// @Summary Get one of the user's own events
// @Tags events
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.EventFullResponse
// @Failure 404 {object} helpers.APIError
// @Router /users/{userId}/events/{eventId} [get]
func (c *EventController) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	event, err := c.Events.GetUserEvent(r.Context(), userID, eventID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventFull(event))
}

// UpdateByUser godoc
// @Summary Update one of the user's own events
// @Description Sparse patch; absent fields keep their value. Fails with 409 on a published event.
// @Tags events
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Param event body UpdateEventUserRequest true "Patch"
// @Success 200 {object} controllers.EventFullResponse
// @Failure 400 {object} helpers.APIError
// @Failure 404 {object} helpers.APIError
// @Failure 409 {object} helpers.APIError
// @Router /users/{userId}/events/{eventId} [patch]
func (c *EventController) UpdateByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	var req UpdateEventUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "invalid request body")
		return
	}

	patch := domain.UserEventPatch{}
	patch.EventPatch, err = toEventPatch(req.Title, req.Annotation, req.Description, req.Category,
		req.EventDate, req.Location, req.Paid, req.ParticipantLimit, req.RequestModeration)
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if req.StateAction != nil {
		switch action := domain.UserStateAction(*req.StateAction); action {
		case domain.StateActionSendToReview, domain.StateActionCancelReview:
			patch.StateAction = &action
		default:
			helpers.WriteAPIError(w, fmt.Errorf("%w: unknown state action: %s", domain.ErrValidation, *req.StateAction))
			return
		}
	}

	event, err := c.Events.UpdateUserEvent(r.Context(), userID, eventID, patch)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventFull(event))
}

// AdminUpdate godoc
// @Summary Moderate an event
// @Description Sparse patch plus PUBLISH_EVENT / REJECT_EVENT state actions.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Param event body UpdateEventAdminRequest true "Patch"
// @Success 200 {object} controllers.EventFullResponse
// @Failure 400 {object} helpers.APIError
// @Failure 404 {object} helpers.APIError
// @Failure 409 {object} helpers.APIError
// @Router /admin/events/{eventId} [patch]
func (c *EventController) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	var req UpdateEventAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "invalid request body")
		return
	}

	patch := domain.AdminEventPatch{}
	patch.EventPatch, err = toEventPatch(req.Title, req.Annotation, req.Description, req.Category,
		req.EventDate, req.Location, req.Paid, req.ParticipantLimit, req.RequestModeration)
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if req.StateAction != nil {
		switch action := domain.AdminStateAction(*req.StateAction); action {
		case domain.StateActionPublishEvent, domain.StateActionRejectEvent:
			patch.StateAction = &action
		default:
			helpers.WriteAPIError(w, fmt.Errorf("%w: unknown state action: %s", domain.ErrValidation, *req.StateAction))
			return
		}
	}

	event, err := c.Events.UpdateEventByAdmin(r.Context(), eventID, patch)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventFull(event))
}

// AdminSearch godoc
// @Summary Filtered event listing for moderators
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query []int false "Initiator IDs"
// @Param states query []string false "Event states"
// @Param categories query []int false "Category IDs"
// @Param rangeStart query string false "Window start (yyyy-MM-dd HH:mm:ss)"
// @Param rangeEnd query string false "Window end (yyyy-MM-dd HH:mm:ss)"
// @Success 200 {array} controllers.EventFullResponse
// @Failure 400 {object} helpers.APIError
// @Router /admin/events [get]
func (c *EventController) AdminSearch(w http.ResponseWriter, r *http.Request) {
	filter := domain.AdminSearchFilter{Page: helpers.ParsePage(r)}

	var err error
	if filter.Users, err = helpers.QueryInt64List(r, "users"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if filter.Categories, err = helpers.QueryInt64List(r, "categories"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	for _, token := range r.URL.Query()["states"] {
		for _, part := range strings.Split(token, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			state, err := domain.ParseEventState(part)
			if err != nil {
				helpers.WriteAPIError(w, err)
				return
			}
			filter.States = append(filter.States, state)
		}
	}
	if filter.RangeStart, err = helpers.QueryDateTime(r, "rangeStart"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if filter.RangeEnd, err = helpers.QueryDateTime(r, "rangeEnd"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	}

	events, err := c.Events.GetAdminEvents(r.Context(), filter)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventFullList(events))
}

// PublicSearch godoc
// @Summary Public event search
// @Description Lists published events only. Records a stats hit as a side effect.
// @Tags public
// @Produce json
// @Param text query string false "Free-text filter over title and annotation"
// @Param categories query []int false "Category IDs"
// @Param paid query bool false "Paid flag"
// @Param rangeStart query string false "Window start (yyyy-MM-dd HH:mm:ss)"
// @Param rangeEnd query string false "Window end (yyyy-MM-dd HH:mm:ss)"
// @Param onlyAvailable query bool false "Hide events at their participant limit"
// @Param sort query string false "EVENT_DATE or VIEWS"
// @Success 200 {array} controllers.EventShortResponse
// @Failure 400 {object} helpers.APIError
// @Router /events [get]
func (c *EventController) PublicSearch(w http.ResponseWriter, r *http.Request) {
	filter := domain.PublicSearchFilter{
		Text: r.URL.Query().Get("text"),
		Page: helpers.ParsePage(r),
	}

	var err error
	if filter.Categories, err = helpers.QueryInt64List(r, "categories"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if filter.Paid, err = helpers.QueryBool(r, "paid"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if filter.RangeStart, err = helpers.QueryDateTime(r, "rangeStart"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if filter.RangeEnd, err = helpers.QueryDateTime(r, "rangeEnd"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	}

	onlyAvailable := false
	if v, err := helpers.QueryBool(r, "onlyAvailable"); err != nil {
		helpers.WriteAPIError(w, err)
		return
	} else if v != nil {
		onlyAvailable = *v
	}

	var sortBy domain.EventSort
	switch s := r.URL.Query().Get("sort"); domain.EventSort(s) {
	case "", domain.SortEventDate, domain.SortViews:
		sortBy = domain.EventSort(s)
	default:
		helpers.WriteAPIError(w, fmt.Errorf("%w: sort must be EVENT_DATE or VIEWS", domain.ErrValidation))
		return
	}

	events, err := c.Events.GetPublicEvents(r.Context(), filter, sortBy, onlyAvailable,
		helpers.ClientIP(r), r.URL.Path)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventShortList(events))
}

// PublicGet godoc
// @Summary Get a published event
// @Description 404 unless the event is published. Records a stats hit and refreshes the view count.
// @Tags public
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.EventFullResponse
// @Failure 404 {object} helpers.APIError
// @Router /events/{id} [get]
func (c *EventController) PublicGet(w http.ResponseWriter, r *http.Request) {
	eventID, err := helpers.PathID(r, "id")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	event, err := c.Events.GetPublishedEvent(r.Context(), eventID, helpers.ClientIP(r), r.URL.Path)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventFull(event))
}

func (c *EventController) fail(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteAPIError(w, err)
}

// toEventPatch converts the wire patch fields into the domain patch,
// parsing the event date when present.
func toEventPatch(title, annotation, description *string, category *int64, eventDate *string,
	location *LocationDTO, paid *bool, participantLimit *int, requestModeration *bool) (domain.EventPatch, error) {
	patch := domain.EventPatch{
		Title:             title,
		Annotation:        annotation,
		Description:       description,
		CategoryID:        category,
		Paid:              paid,
		ParticipantLimit:  participantLimit,
		RequestModeration: requestModeration,
	}
	if eventDate != nil {
		t, err := parseDateTime("eventDate", *eventDate)
		if err != nil {
			return domain.EventPatch{}, err
		}
		patch.EventDate = &t
	}
	if location != nil {
		patch.Location = &domain.Location{Lat: location.Lat, Lon: location.Lon}
	}
	return patch, nil
}
