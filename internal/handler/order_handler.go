package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saif87211/SkFoodDelight/internal/domain"
	"github.com/saif87211/SkFoodDelight/internal/service"
	"github.com/saif87211/SkFoodDelight/pkg/middleware"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Checkout converts the caller's paid cart into an order.
func (h *OrderHandler) Checkout(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	requestID := c.GetString(middleware.RequestIDKey)

	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), claims.UserID, req, requestID)
	if err != nil {
		h.logger.Error("checkout failed",
			zap.String("user_id", claims.UserID),
			zap.String("request_id", requestID),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder returns one of the caller's own orders.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)

	order, err := h.orderService.UserOrder(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders returns the caller's order history, newest first.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)

	orders, err := h.orderService.UserOrders(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}
