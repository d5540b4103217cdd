package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/services"
)

// SavedProductHandler handles save/unsave HTTP requests
type SavedProductHandler struct {
	eventService *services.EventService
}

// NewSavedProductHandler creates a new SavedProductHandler
func NewSavedProductHandler(eventService *services.EventService) *SavedProductHandler {
	return &SavedProductHandler{eventService: eventService}
}

// RegisterSavedProductRoutes registers saved product routes
func (h *SavedProductHandler) RegisterSavedProductRoutes(g *echo.Group) {
	g.POST("/products/:id/save", h.ToggleSave)
	g.GET("/products/saved", h.ListSaved)
}

// ToggleSave saves the product for the authenticated user, or unsaves it
// when already saved
func (h *SavedProductHandler) ToggleSave(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	productID := c.Param("id")

	resp, err := h.eventService.ToggleSave(c.Request().Context(), currentUserID, productID)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": resp})
}

// ListSaved lists the authenticated user's saved products
func (h *SavedProductHandler) ListSaved(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	products, err := h.eventService.SavedProducts(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"products": products}})
}
