package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"cityevents/internal/delivery/http/helpers"
	"cityevents/internal/domain"
)

const adminTokenTTL = 12 * time.Hour

// LoginRequest is the credential body for POST /admin/auth/login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for the admin surface.
// swagger:model LoginResponse
type LoginResponse struct {
	Token string `json:"token"`
}

// AdminCredentials is the single moderator account configured at startup.
type AdminCredentials struct {
	Email        string
	PasswordHash string
	PasswordSalt string
}

type AuthController struct {
	Logger *slog.Logger
	Creds  AdminCredentials
	Hasher domain.PasswordHasher
	Issuer domain.TokenIssuer
}

func NewAuthController(logger *slog.Logger, creds AdminCredentials, hasher domain.PasswordHasher, issuer domain.TokenIssuer) *AuthController {
	return &AuthController{
		Logger: logger,
		Creds:  creds,
		Hasher: hasher,
		Issuer: issuer,
	}
}

// Login godoc
// @Summary Authenticate as the moderator
// @Description Exchanges the configured admin credentials for a bearer token.
// @Tags admin
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin credentials"
// @Success 200 {object} controllers.LoginResponse
// @Failure 401 {object} helpers.APIError
// @Router /admin/auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "invalid request body")
		return
	}
	if req.Email != c.Creds.Email {
		c.Logger.WarnContext(r.Context(), "admin login rejected", "email", req.Email)
		helpers.WriteErrorStatus(w, http.StatusUnauthorized, "Unauthorized.", "invalid credentials")
		return
	}
	if err := c.Hasher.Compare(c.Creds.PasswordHash, c.Creds.PasswordSalt, req.Password); err != nil {
		c.Logger.WarnContext(r.Context(), "admin login rejected", "email", req.Email)
		helpers.WriteErrorStatus(w, http.StatusUnauthorized, "Unauthorized.", "invalid credentials")
		return
	}

	token, err := c.Issuer.Issue(c.Creds.Email, []string{"admin"}, adminTokenTTL)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "token issue failed", "err", err)
		helpers.WriteErrorStatus(w, http.StatusInternalServerError, "Internal server error.", "could not issue token")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, LoginResponse{Token: token})
}
