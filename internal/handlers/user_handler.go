package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"github.com/seamarket/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository         repositories.UserRepository
	subscriptionRepository repositories.SubscriptionRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, subscriptionRepo repositories.SubscriptionRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo, subscriptionRepository: subscriptionRepo}
}

// RegisterUserRoutes registers user profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/subscribers", h.GetSubscribers)
}

// GetProfile retrieves the authenticated user's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile; the email is
// immutable.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Photo != "" {
		user.Photo = req.Photo
	}
	if req.About != "" {
		user.About = req.About
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.AvailableWA != nil {
		user.AvailableWA = *req.AvailableWA
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser retrieves another user's public profile with follower counts
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}

	pub := user.PublicProfile()
	if count, err := h.subscriptionRepository.GetSubscriberCount(user.ID); err == nil {
		pub.SubscriberCount = count
	}
	if count, err := h.subscriptionRepository.GetSubscriptionCount(user.ID); err == nil {
		pub.SubscriptionCount = count
	}
	return c.JSON(http.StatusOK, pub)
}

// GetSubscribers lists the public profiles of the users following a seller
func (h *UserHandler) GetSubscribers(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if _, err := h.userRepository.GetUserByID(uint(id)); err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}

	ids, err := h.subscriptionRepository.GetSubscriberIDs(uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	subscribers := make([]models.UserPublic, 0, len(ids))
	for _, subscriberID := range ids {
		user, err := h.userRepository.GetUserByID(subscriberID)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue // account deleted since subscribing
		}
		if err != nil {
			return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
		}
		subscribers = append(subscribers, user.PublicProfile())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"subscribers": subscribers}})
}

// SearchUsers finds users by name with offset pagination
func (h *UserHandler) SearchUsers(c echo.Context) error {
	key := c.QueryParam("key")
	page, limit := paginationParams(c)

	users, err := h.userRepository.SearchUsers(key, limit, page)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := make([]models.UserPublic, len(users))
	for i := range users {
		results[i] = users[i].PublicProfile()
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"users": results}})
}

// paginationParams reads page/limit query params with the shared defaults
func paginationParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}
