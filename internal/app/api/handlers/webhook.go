package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clubworks/memberpay/internal/app/service/reconcile"
	"github.com/clubworks/memberpay/internal/platform/cashfree"
	cfgpkg "github.com/clubworks/memberpay/pkg/config"
	"github.com/clubworks/memberpay/pkg/logctx"
)

// @Summary      Cashfree Webhook
// @Description  Handles Cashfree payment notifications. The signature over timestamp+body is verified before the body is parsed.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body cashfree.WebhookPayload true "Webhook payload"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/membership/webhook [post]
// ApiMembershipWebhook processes payment-success notifications from the provider.
func ApiMembershipWebhook(rec reconcile.Reconciler, cfg *cfgpkg.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader("x-webhook-signature")
		timestamp := c.GetHeader("x-webhook-timestamp")
		if signature == "" || timestamp == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing signature or timestamp"})
			return
		}

		rawBody, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		// Authenticity gate runs on the raw bytes, before any parsing.
		if !cashfree.VerifyWebhookSignature(cfg.Cashfree.WebhookSecret, rawBody, signature, timestamp) {
			logctx.FromGin(c, log).Warnw("webhook_invalid_signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		var payload cashfree.WebhookPayload
		if err := json.Unmarshal(rawBody, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		if payload.Type == cashfree.WebhookTypePaymentSuccess {
			if err := payload.Validate(); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		res, err := rec.ProcessWebhook(c.Request.Context(), &payload)
		if err != nil {
			logctx.FromGin(c, log).Errorw("webhook_handle_error", "error", err.Error())
			// 5xx tells the provider to retry; the signature and shape were
			// fine, the condition is transient.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "message": err.Error()})
			return
		}

		switch res.Outcome {
		case reconcile.OutcomeProcessed:
			c.JSON(http.StatusOK, gin.H{"status": "processed"})
		case reconcile.OutcomeAlreadyProcessed:
			c.JSON(http.StatusOK, gin.H{"status": "ignored_duplicate"})
		default:
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		}
	}
}
