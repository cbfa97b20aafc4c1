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

type AdminHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewAdminHandler(orderService *service.OrderService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// ListOrders returns orders in one lifecycle state, newest first, each with
// its items and purchaser summary. The acknowledged_at field drives the NEW
// badge in the console.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	status := domain.OrderStatus(c.DefaultQuery("status", string(domain.OrderStatusOrderIn)))

	orders, err := h.orderService.OrdersByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// OrderDetail returns the full order with purchaser identity. Opening an
// unseen active order stamps its acknowledgment watermark.
func (h *AdminHandler) OrderDetail(c *gin.Context) {
	detail, err := h.orderService.AdminOrderDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateStatus applies one state-machine transition.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	requestID := c.GetString(middleware.RequestIDKey)

	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, requestID)
	if err != nil {
		h.logger.Warn("status update rejected",
			zap.String("order_id", c.Param("id")),
			zap.String("requested", string(req.Status)),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Dashboard serves the console aggregates.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.orderService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
