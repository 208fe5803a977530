package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"cityevents/internal/delivery/http/helpers"
	"cityevents/internal/domain"
)

// StatusUpdateRequest is the bulk moderation body for an event's pending requests.
// swagger:model StatusUpdateRequest
type StatusUpdateRequest struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status"`
}

type RequestController struct {
	Logger   *slog.Logger
	Requests domain.RequestService
}

func NewRequestController(logger *slog.Logger, requests domain.RequestService) *RequestController {
	return &RequestController{
		Logger:   logger,
		Requests: requests,
	}
}

// Create godoc
// @Summary Request participation in an event
// @Description Creates a PENDING request, or a CONFIRMED one when the event skips moderation.
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Param eventId query int true "Event ID"
// @Success 201 {object} controllers.RequestResponse
// @Failure 400 {object} helpers.APIError
// @Failure 404 {object} helpers.APIError
// @Failure 409 {object} helpers.APIError
// @Router /users/{userId}/requests [post]
func (c *RequestController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	raw := r.URL.Query().Get("eventId")
	if raw == "" {
		helpers.WriteAPIError(w, fmt.Errorf("%w: eventId is required", domain.ErrValidation))
		return
	}
	eventID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || eventID <= 0 {
		helpers.WriteAPIError(w, fmt.Errorf("%w: eventId must be a positive integer", domain.ErrValidation))
		return
	}

	req, err := c.Requests.AddRequest(r.Context(), userID, eventID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toRequest(req))
}

// ListByUser godoc
// @Summary List the user's participation requests in other users' events
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Success 200 {array} controllers.RequestResponse
// @Failure 404 {object} helpers.APIError
// @Router /users/{userId}/requests [get]
func (c *RequestController) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	requests, err := c.Requests.GetUserRequests(r.Context(), userID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toRequestList(requests))
}

// Cancel godoc
// @Summary Cancel one of the user's own participation requests
// @Description Moves the request to CANCELED. Confirmed seats are released.
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Param requestId path int true "Request ID"
// @Success 200 {object} controllers.RequestResponse
// @Failure 404 {object} helpers.APIError
// @Router /users/{userId}/requests/{requestId}/cancel [patch]
func (c *RequestController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	requestID, err := helpers.PathID(r, "requestId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	req, err := c.Requests.CancelRequest(r.Context(), userID, requestID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toRequest(req))
}

// ListByEvent godoc
// @Summary List the requests to participate in the user's own event
// @Tags requests
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Success 200 {array} controllers.RequestResponse
// @Failure 404 {object} helpers.APIError
// @Router /users/{userId}/events/{eventId}/requests [get]
func (c *RequestController) ListByEvent(w http.ResponseWriter, r *http.Request) {
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
	requests, err := c.Requests.GetEventRequests(r.Context(), userID, eventID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toRequestList(requests))
}

// UpdateStatus godoc
// @Summary Confirm or reject pending requests in bulk
// @Description Confirms as many named requests as capacity allows; once the
// limit is hit the rest of the batch and all remaining pending requests are rejected.
// @Tags requests
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Param update body StatusUpdateRequest true "Requests and target status"
// @Success 200 {object} controllers.StatusUpdateResponse
// @Failure 400 {object} helpers.APIError
// @Failure 404 {object} helpers.APIError
// @Failure 409 {object} helpers.APIError
// @Router /users/{userId}/events/{eventId}/requests [patch]
func (c *RequestController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var body StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "invalid request body")
		return
	}

	update := domain.StatusUpdate{
		RequestIDs: body.RequestIDs,
		Status:     domain.RequestStatus(body.Status),
	}
	result, err := c.Requests.UpdateRequestStatus(r.Context(), userID, eventID, update)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toStatusUpdate(result))
}

func (c *RequestController) fail(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteAPIError(w, err)
}
