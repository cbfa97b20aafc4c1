package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saif87211/SkFoodDelight/internal/domain"
)

// respondError translates the domain error taxonomy into HTTP responses.
// Internal detail is logged by callers, never exposed.
func respondError(c *gin.Context, err error) {
	var transition *domain.InvalidTransitionError

	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentRejected):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     "payment was not successful, please pay again",
			"retryable": false,
		})
	case errors.Is(err, domain.ErrPaymentGatewayUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "payment gateway unavailable, please retry",
			"retryable": true,
		})
	case errors.As(err, &transition):
		// Staff act on the true current status rather than retrying blind.
		c.JSON(http.StatusConflict, gin.H{
			"error":            transition.Error(),
			"current_status":   transition.From,
			"requested_status": transition.To,
		})
	case errors.Is(err, domain.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "order was modified by someone else, reload and retry"})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, domain.ErrPersistenceFailure):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "could not save changes, please retry",
			"retryable": true,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
