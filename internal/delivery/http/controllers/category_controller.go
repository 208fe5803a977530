package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"cityevents/internal/delivery/http/helpers"
	"cityevents/internal/domain"
)

// CategoryRequest is the create/rename body for a category.
// swagger:model CategoryRequest
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse is the wire representation of a category.
// swagger:model CategoryResponse
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toCategory(category *domain.Category) CategoryResponse {
	return CategoryResponse{ID: category.ID, Name: category.Name}
}

type CategoryController struct {
	Logger     *slog.Logger
	Categories domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, categories domain.CategoryService) *CategoryController {
	return &CategoryController{
		Logger:     logger,
		Categories: categories,
	}
}

// Create godoc
// @Summary Create a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body CategoryRequest true "Category name"
// @Success 201 {object} controllers.CategoryResponse
// @Failure 400 {object} helpers.APIError
// @Failure 409 {object} helpers.APIError
// @Router /admin/categories [post]
func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 50 {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "name must be between 1 and 50 characters")
		return
	}
	category, err := c.Categories.AddCategory(r.Context(), name)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toCategory(category))
}

// Update godoc
// @Summary Rename a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param catId path int true "Category ID"
// @Param category body CategoryRequest true "Category name"
// @Success 200 {object} controllers.CategoryResponse
// @Failure 400 {object} helpers.APIError
// @Failure 404 {object} helpers.APIError
// @Failure 409 {object} helpers.APIError
// @Router /admin/categories/{catId} [patch]
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	catID, err := helpers.PathID(r, "catId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 50 {
		helpers.WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", "name must be between 1 and 50 characters")
		return
	}
	category, err := c.Categories.UpdateCategory(r.Context(), catID, name)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toCategory(category))
}

// Delete godoc
// @Summary Delete a category
// @Description Fails with 409 while any event still references the category.
// @Tags admin
// @Security BearerAuth
// @Param catId path int true "Category ID"
// @Success 204
// @Failure 404 {object} helpers.APIError
// @Failure 409 {object} helpers.APIError
// @Router /admin/categories/{catId} [delete]
func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	catID, err := helpers.PathID(r, "catId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	if err := c.Categories.DeleteCategory(r.Context(), catID); err != nil {
		c.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List godoc
// @Summary List categories
// @Tags public
// @Produce json
// @Param from query int false "Offset" default(0)
// @Param size query int false "Limit" default(10)
// @Success 200 {array} controllers.CategoryResponse
// @Router /categories [get]
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Categories.GetCategories(r.Context(), helpers.ParsePage(r))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, toCategory(category))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Get godoc
// @Summary Get a category
// @Tags public
// @Produce json
// @Param catId path int true "Category ID"
// @Success 200 {object} controllers.CategoryResponse
// @Failure 404 {object} helpers.APIError
// @Router /categories/{catId} [get]
func (c *CategoryController) Get(w http.ResponseWriter, r *http.Request) {
	catID, err := helpers.PathID(r, "catId")
	if err != nil {
		helpers.WriteAPIError(w, err)
		return
	}
	category, err := c.Categories.GetCategory(r.Context(), catID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toCategory(category))
}

func (c *CategoryController) fail(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteAPIError(w, err)
}
