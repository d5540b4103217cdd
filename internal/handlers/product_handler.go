package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/events"
	"github.com/seamarket/backend/internal/models"
	"github.com/seamarket/backend/internal/repositories"
	"github.com/seamarket/backend/internal/services"
)

// ProductHandler handles product listing HTTP requests
type ProductHandler struct {
	productRepository      repositories.ProductRepository
	subscriptionRepository repositories.SubscriptionRepository
	notificationService    *services.NotificationService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(
	productRepo repositories.ProductRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	notificationService *services.NotificationService,
) *ProductHandler {
	return &ProductHandler{
		productRepository:      productRepo,
		subscriptionRepository: subscriptionRepo,
		notificationService:    notificationService,
	}
}

// RegisterProductRoutes registers product routes
func (h *ProductHandler) RegisterProductRoutes(g *echo.Group) {
	g.POST("/products", h.CreateProduct)
	g.GET("/products/mine", h.GetMyProducts)
	g.GET("/products/all", h.GetAllProducts)
	g.GET("/products/search", h.SearchProducts)
	g.GET("/products/subscriptions", h.GetSubscriptionProducts)
	g.GET("/products/seller/:id", h.GetSellerProducts)
	g.GET("/products/:id", h.GetProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)
}

// CreateProduct creates a listing owned by the authenticated user
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product := &models.Product{
		OwnerID:  currentUserID,
		Name:     req.Name,
		Price:    req.Price,
		PricePer: req.PricePer,
		Desc:     req.Desc,
		Image:    req.Image,
		ExpDate:  req.ExpDate,
	}
	if err := h.productRepository.CreateProduct(c.Request().Context(), product); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct retrieves a single listing
func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productRepository.GetProductByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, product)
}

// GetMyProducts lists the authenticated user's products, newest first
func (h *ProductHandler) GetMyProducts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	skip, limit := skipLimitParams(c)

	products, err := h.productRepository.GetProductsByOwner(c.Request().Context(), currentUserID, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"products": products}})
}

// GetSellerProducts lists another seller's products, newest first
func (h *ProductHandler) GetSellerProducts(c echo.Context) error {
	sellerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	skip, limit := skipLimitParams(c)

	products, err := h.productRepository.GetProductsByOwner(c.Request().Context(), uint(sellerID), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"products": products}})
}

// GetAllProducts lists the newest products across all sellers
func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	skip, limit := skipLimitParams(c)

	products, err := h.productRepository.GetAllProducts(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"products": products}})
}

// SearchProducts finds products by name, case-insensitive
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	key := c.QueryParam("key")
	skip, limit := skipLimitParams(c)

	products, err := h.productRepository.SearchProducts(c.Request().Context(), key, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"products": products}})
}

// GetSubscriptionProducts lists the newest products from sellers the
// authenticated user follows
func (h *ProductHandler) GetSubscriptionProducts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	skip, limit := skipLimitParams(c)

	sellerIDs, err := h.subscriptionRepository.GetSellerIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	products, err := h.productRepository.GetProductsByOwners(c.Request().Context(), sellerIDs, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"products": products}})
}

// UpdateProduct updates a listing; only the owner may update
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	productID := c.Param("id")

	var req models.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.productRepository.GetProductByID(c.Request().Context(), productID)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	if product.OwnerID != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authorized")
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Price != "" {
		product.Price = req.Price
	}
	if req.Desc != "" {
		product.Desc = req.Desc
	}
	if req.Image != nil {
		product.Image = *req.Image
	}

	if err := h.productRepository.UpdateProduct(c.Request().Context(), productID, product); err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a listing and cascades the deletion into the
// notification store via a ProductDeleted event
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	productID := c.Param("id")

	product, err := h.productRepository.GetProductByID(c.Request().Context(), productID)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	if product.OwnerID != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authorized")
	}

	if err := h.productRepository.DeleteProduct(c.Request().Context(), productID); err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	if err := h.notificationService.HandleProductDeleted(events.ProductDeleted{ProductID: productID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"message": "Product deleted"}})
}

// skipLimitParams converts page/limit query params to a skip/limit pair
func skipLimitParams(c echo.Context) (skip, limit int64) {
	page, l := paginationParams(c)
	return int64((page - 1) * l), int64(l)
}
