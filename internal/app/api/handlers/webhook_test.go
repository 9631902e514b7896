package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clubworks/memberpay/internal/app/service/reconcile"
	"github.com/clubworks/memberpay/internal/platform/cashfree"
	cfgpkg "github.com/clubworks/memberpay/pkg/config"
)

type stubReconciler struct {
	webhookRes *reconcile.Result
	webhookErr error
	verifyRes  *reconcile.Result
	verifyErr  error

	webhookCalls int
}

func (s *stubReconciler) ProcessWebhook(_ context.Context, _ *cashfree.WebhookPayload) (*reconcile.Result, error) {
	s.webhookCalls++
	return s.webhookRes, s.webhookErr
}

func (s *stubReconciler) VerifyOrder(_ context.Context, _ string) (*reconcile.Result, error) {
	return s.verifyRes, s.verifyErr
}

const testWebhookSecret = "whsec_test"

func signBody(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRouter(rec reconcile.Reconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &cfgpkg.Config{Cashfree: cfgpkg.CashfreeConfig{WebhookSecret: testWebhookSecret}}
	r := gin.New()
	r.POST("/api/v1/membership/webhook", ApiMembershipWebhook(rec, cfg, zap.NewNop().Sugar()))
	return r
}

func successWebhookBody() []byte {
	return []byte(`{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"data": {
			"order": {"order_id": "order_1700000000_abc123def", "order_amount": 999},
			"payment": {"cf_payment_id": "pay_1700000001", "payment_amount": 999, "payment_status": "SUCCESS"},
			"customer_details": {"customer_email": "alice@example.com", "customer_name": "Alice", "customer_phone": "9876543210"}
		}
	}`)
}

func TestApiMembershipWebhook_MissingHeadersRejectedBeforeParsing(t *testing.T) {
	stub := &stubReconciler{}
	r := webhookRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/membership/webhook", bytes.NewReader(successWebhookBody()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, stub.webhookCalls)
}

func TestApiMembershipWebhook_InvalidSignatureRejected(t *testing.T) {
	stub := &stubReconciler{}
	r := webhookRouter(stub)

	body := successWebhookBody()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/membership/webhook", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", "bm90LXRoZS1yaWdodC1zaWc=")
	req.Header.Set("x-webhook-timestamp", "1700000000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, stub.webhookCalls)
}

func TestApiMembershipWebhook_ProcessedResponse(t *testing.T) {
	stub := &stubReconciler{webhookRes: &reconcile.Result{Outcome: reconcile.OutcomeProcessed}}
	r := webhookRouter(stub)

	body := successWebhookBody()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/membership/webhook", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", signBody("1700000000", body))
	req.Header.Set("x-webhook-timestamp", "1700000000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"processed"`)
	require.Equal(t, 1, stub.webhookCalls)
}

func TestApiMembershipWebhook_DuplicateMappedToIgnoredDuplicate(t *testing.T) {
	stub := &stubReconciler{webhookRes: &reconcile.Result{Outcome: reconcile.OutcomeAlreadyProcessed}}
	r := webhookRouter(stub)

	body := successWebhookBody()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/membership/webhook", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", signBody("1700000000", body))
	req.Header.Set("x-webhook-timestamp", "1700000000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ignored_duplicate"`)
}

func TestApiMembershipWebhook_MalformedBodyRejected(t *testing.T) {
	stub := &stubReconciler{}
	r := webhookRouter(stub)

	body := []byte(`{not json`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/membership/webhook", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", signBody("1700000000", body))
	req.Header.Set("x-webhook-timestamp", "1700000000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, stub.webhookCalls)
}

func TestApiMembershipWebhook_IncompleteSuccessPayloadRejected(t *testing.T) {
	stub := &stubReconciler{}
	r := webhookRouter(stub)

	body := []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"order_1"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/membership/webhook", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", signBody("1700000000", body))
	req.Header.Set("x-webhook-timestamp", "1700000000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, stub.webhookCalls)
}

func TestApiMembershipWebhook_InternalErrorReturns500ForRetry(t *testing.T) {
	stub := &stubReconciler{webhookErr: fmt.Errorf("identity resolution failed")}
	r := webhookRouter(stub)

	body := successWebhookBody()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/membership/webhook", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", signBody("1700000000", body))
	req.Header.Set("x-webhook-timestamp", "1700000000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "internal error")
}
