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

type PaymentHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewPaymentHandler(orderService *service.OrderService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// CreateIntent opens a gateway intent priced from the caller's current cart.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)

	intent, err := h.orderService.CreatePaymentIntent(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to create payment intent",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   gin.H{"id": intent.ID},
		"token":   intent.ProviderKey,
	})
}

// Verify handles the gateway's asynchronous callback after the customer
// completes payment in the provider widget.
func (h *PaymentHandler) Verify(c *gin.Context) {
	requestID := c.GetString(middleware.RequestIDKey)

	var req domain.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	order, err := h.orderService.VerifyPayment(c.Request.Context(), req, requestID)
	if err != nil {
		h.logger.Warn("payment verification failed",
			zap.String("order_ref", req.OrderRef),
			zap.String("request_id", requestID),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "payment verified successfully",
		"order_id": order.ID,
	})
}
