package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"cityevents/internal/delivery/http/helpers"
	"cityevents/internal/domain"
)

// NewUserRequest is the registration body for POST /admin/users.
// swagger:model NewUserRequest
type NewUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse is the wire representation of a user.
// swagger:model UserResponse
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUser(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

type UserController struct {
	Logger *slog.Logger
	Users  domain.UserService
}

func NewUserController(logger *slog.Logger, users domain.UserService) *UserController {
	return &UserController{
		Logger: logger,
		Users:  users,
	}
}

// Create godoc
// @Summary Register a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body NewUserRequest true "User data"
// @Success 201 {object} controllers.UserResponse
// @Failure 400 {object} helpers.APIError
// @Failure 409 {object} helpers.APIError
// @Router /admin/users [post]
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var req NewUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if l := len(name); l < 2 || l > 250 {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "name must be between 2 and 250 characters")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "email must be a valid address")
		return
	}

	user, err := c.Users.AddUser(r.Context(), name, req.Email)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toUser(user))
}

// List godoc
// @Summary List users
// @Description Returns the named users, or a page of all users when ids is empty.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param ids query []int false "User IDs"
// @Param from query int false "Offset" default(0)
// @Param size query int false "Limit" default(10)
// @Success 200 {array} controllers.UserResponse
// @Router /admin/users [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	ids, err := helpers.QueryInt64List(r, "ids")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	users, err := c.Users.GetUsers(r.Context(), ids, helpers.ParsePage(r))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUser(user))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Delete godoc
// @Summary Delete a user
// @Tags admin
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 204
// @Failure 404 {object} helpers.APIError
// @Router /admin/users/{userId} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if err := c.Users.DeleteUser(r.Context(), userID); err != nil {
		c.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *UserController) fail(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteAPIError(w, err)
}
