package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clubworks/memberpay/internal/app/service/reconcile"
	"github.com/clubworks/memberpay/internal/platform/cashfree"
	"github.com/clubworks/memberpay/pkg/logctx"
)

type verifyOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// @Summary      Verify Order
// @Description  Fallback verification for when the webhook is delayed. Checks the ledger first, then the provider's order status, and provisions the account if the order is paid.
// @Tags         Order
// @Accept       json
// @Produce      json
// @Param        request body verifyOrderRequest true "Order to verify"
// @Success      200  {object}  map[string]any
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/order/verify [post]
func ApiVerifyOrder(rec reconcile.Reconciler, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing order_id"})
			return
		}

		// The browser may navigate away mid-poll; the side effects must not
		// depend on the connection staying open.
		ctx := context.WithoutCancel(c.Request.Context())

		res, err := rec.VerifyOrder(ctx, req.OrderID)
		if err != nil {
			if errors.Is(err, cashfree.ErrRequestFailed) {
				logctx.FromGin(c, log).Errorw("verify_upstream_error", "order_id", req.OrderID, "error", err.Error())
				c.JSON(http.StatusBadGateway, gin.H{"error": "failed to verify order with payment provider"})
				return
			}
			logctx.FromGin(c, log).Errorw("verify_error", "order_id", req.OrderID, "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		switch res.Outcome {
		case reconcile.OutcomeAlreadyProcessed:
			c.JSON(http.StatusOK, gin.H{
				"status":         "already_processed",
				"payment_status": res.PaymentStatus,
				"user":           res.Profile,
			})
		case reconcile.OutcomeProcessed:
			c.JSON(http.StatusOK, gin.H{
				"status":         "processed",
				"payment_status": res.PaymentStatus,
				"user":           res.Profile,
			})
		default:
			c.JSON(http.StatusOK, gin.H{
				"status":       "not_paid",
				"order_status": res.OrderStatus,
			})
		}
	}
}
