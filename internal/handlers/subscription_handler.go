package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/services"
)

// SubscriptionHandler handles subscribe/unsubscribe HTTP requests
type SubscriptionHandler struct {
	eventService *services.EventService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(eventService *services.EventService) *SubscriptionHandler {
	return &SubscriptionHandler{eventService: eventService}
}

// RegisterSubscriptionRoutes registers subscription routes
func (h *SubscriptionHandler) RegisterSubscriptionRoutes(g *echo.Group) {
	g.POST("/users/:id/subscribe", h.Subscribe)
	g.DELETE("/users/:id/subscribe", h.Unsubscribe)
}

// Subscribe makes the authenticated user follow a seller
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	sellerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	resp, err := h.eventService.Subscribe(currentUserID, uint(sellerID))
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": resp})
}

// Unsubscribe makes the authenticated user stop following a seller
func (h *SubscriptionHandler) Unsubscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	sellerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	resp, err := h.eventService.Unsubscribe(currentUserID, uint(sellerID))
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": resp})
}
