package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ordersvc "github.com/clubworks/memberpay/internal/app/service/order"
	"github.com/clubworks/memberpay/pkg/logctx"
)

type createOrderRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,len=10,numeric"`
	Plan  string `json:"plan" binding:"required"`
}

// @Summary      Create Order
// @Description  Creates a payment order with the provider for a membership plan.
// @Tags         Order
// @Accept       json
// @Produce      json
// @Param        request body createOrderRequest true "Checkout details"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/v1/order/create [post]
func ApiCreateOrder(svc ordersvc.Creator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		res, err := svc.Create(c.Request.Context(), req.Name, req.Email, req.Phone, req.Plan)
		if err != nil {
			if errors.Is(err, ordersvc.ErrUnknownPlan) || errors.Is(err, ordersvc.ErrEmailRegistered) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			logctx.FromGin(c, log).Errorw("order_create_error", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"order_id":           res.OrderID,
			"payment_session_id": res.PaymentSessionID,
		})
	}
}
