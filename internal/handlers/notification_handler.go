package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"github.com/seamarket/backend/internal/services"
)

// NotificationHandler handles notification feed and mutation requests
type NotificationHandler struct {
	feedService         *services.FeedService
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(feedService *services.FeedService, notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		feedService:         feedService,
		notificationService: notificationService,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetFeed)
	g.POST("/notifications/seen", h.MarkSeen)
	g.POST("/notifications/:id/press", h.MarkPressed)
}

// GetFeed returns one page of the authenticated user's notification feed
func (h *NotificationHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	page, limit := paginationParams(c)

	items, err := h.feedService.GetFeed(c.Request().Context(), currentUserID, page, limit)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": items},
		"meta":    echo.Map{"currentPage": page, "itemsPerPage": limit},
	})
}

// MarkSeen marks a batch of notifications seen; unknown ids are ignored
func (h *NotificationHandler) MarkSeen(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.MarkSeenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	count, err := h.notificationService.MarkSeen(req.IDs)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkPressed flags one notification as opened and returns the record
func (h *NotificationHandler) MarkPressed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	notification, err := h.notificationService.MarkPressed(uint(id))
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"notification": notification}})
}
