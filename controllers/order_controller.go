package controllers

import (
	"errors"
	"net/http"

	"github.com/agusmuss/Ecom-Next/middleware"
	"github.com/agusmuss/Ecom-Next/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderController struct {
	Repo   repository.OrderRepo
	Logger *zap.Logger
}

// ListOrders returns the authenticated user's order history.
func (oc *OrderController) ListOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)

	orders, err := oc.Repo.FindByUser(c.Request.Context(), userID)
	if err != nil {
		oc.Logger.Error("Failed to list orders", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder returns one order by checkout session ID. Users can only read
// their own orders.
func (oc *OrderController) GetOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	sessionID := c.Param("sessionId")

	order, err := oc.Repo.FindBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		oc.Logger.Error("Failed to get order", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}
