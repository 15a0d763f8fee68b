package controllers

import (
	"errors"
	"net/http"

	"github.com/agusmuss/Ecom-Next/middleware"
	"github.com/agusmuss/Ecom-Next/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutController struct {
	Service *services.CheckoutService
	Logger  *zap.Logger
}

// Checkout creates a hosted checkout session from the caller's cart and
// returns the payment URL.
func (cc *CheckoutController) Checkout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	idempotencyKey := c.GetHeader("Idempotency-Key")

	url, err := cc.Service.Checkout(c.Request.Context(), userID, idempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCartEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		case errors.Is(err, services.ErrNothingPurchasable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no purchasable items in cart"})
		default:
			cc.Logger.Error("Checkout failed", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
