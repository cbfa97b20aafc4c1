package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saif87211/SkFoodDelight/internal/domain"
	"github.com/saif87211/SkFoodDelight/internal/repository"
	"github.com/saif87211/SkFoodDelight/pkg/middleware"
)

// CartHandler is the thin cart collaborator surface the pipeline consumes
// from. Catalog management stays with the CRUD collaborator.
type CartHandler struct {
	cartRepo *repository.CartRepository
	logger   *zap.Logger
}

func NewCartHandler(cartRepo *repository.CartRepository, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartRepo: cartRepo,
		logger:   logger,
	}
}

func (h *CartHandler) List(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)

	lines, err := h.cartRepo.GetCartLines(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lines)
}

func (h *CartHandler) Add(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)

	var req domain.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	item, err := h.cartRepo.AddItem(c.Request.Context(), claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) Remove(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)

	if err := h.cartRepo.RemoveItem(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item removed from cart"})
}

func (h *CartHandler) Clear(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)

	if err := h.cartRepo.Clear(c.Request.Context(), claims.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
