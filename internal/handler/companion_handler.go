package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hassan123789/go-companion/internal/companion"
)

// CompanionHandler serves companion, category and message endpoints.
type CompanionHandler struct {
	store companion.Store
}

// NewCompanionHandler creates a new CompanionHandler.
func NewCompanionHandler(store companion.Store) *CompanionHandler {
	return &CompanionHandler{
		store: store,
	}
}

// CompanionRequest is the body of create and update requests.
type CompanionRequest struct {
	Src          string `json:"src"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
	Seed         string `json:"seed"`
	CategoryID   string `json:"categoryId"`
}

func (r CompanionRequest) toCompanion(c echo.Context) *companion.Companion {
	return &companion.Companion{
		UserID:       UserID(c),
		UserName:     c.Request().Header.Get(HeaderUserName),
		Src:          r.Src,
		Name:         r.Name,
		Description:  r.Description,
		Instructions: r.Instructions,
		Seed:         r.Seed,
		CategoryID:   r.CategoryID,
	}
}

// List handles GET /api/companion?categoryId=&name=&limit= requests.
func (h *CompanionHandler) List(c echo.Context) error {
	params := companion.ListParams{
		CategoryID: c.QueryParam("categoryId"),
		Name:       c.QueryParam("name"),
	}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return c.String(http.StatusBadRequest, "Invalid limit")
		}
		params.Limit = n
	}

	companions, err := h.store.List(c.Request().Context(), params)
	if err != nil {
		return textError(c, err)
	}
	return c.JSON(http.StatusOK, companions)
}

// Create handles POST /api/companion requests.
func (h *CompanionHandler) Create(c echo.Context) error {
	var req CompanionRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}

	created, err := h.store.Create(c.Request().Context(), req.toCompanion(c))
	if err != nil {
		return textError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/companion/:companionId requests.
func (h *CompanionHandler) Get(c echo.Context) error {
	found, err := h.store.Get(c.Request().Context(), c.Param("companionId"))
	if err != nil {
		return textError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// Update handles PATCH /api/companion/:companionId requests. Only the
// owner may update a companion.
func (h *CompanionHandler) Update(c echo.Context) error {
	var req CompanionRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}

	edit := req.toCompanion(c)
	edit.ID = c.Param("companionId")

	updated, err := h.store.Update(c.Request().Context(), edit)
	if err != nil {
		return textError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/companion/:companionId requests.
func (h *CompanionHandler) Delete(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), c.Param("companionId"), UserID(c)); err != nil {
		return textError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Messages handles GET /api/companion/:companionId/messages requests,
// returning the caller's messages with the companion, oldest first.
func (h *CompanionHandler) Messages(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("companionId")

	if _, err := h.store.Get(ctx, id); err != nil {
		return textError(c, err)
	}

	messages, err := h.store.Messages(ctx, id, UserID(c))
	if err != nil {
		return textError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

// Categories handles GET /api/categories requests.
func (h *CompanionHandler) Categories(c echo.Context) error {
	categories, err := h.store.Categories(c.Request().Context())
	if err != nil {
		return textError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}
