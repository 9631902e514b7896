package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clubworks/memberpay/internal/app/service/reconcile"
	"github.com/clubworks/memberpay/internal/models"
	"github.com/clubworks/memberpay/internal/platform/cashfree"
	"github.com/clubworks/memberpay/pkg/types"
)

func verifyRouter(rec reconcile.Reconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/order/verify", ApiVerifyOrder(rec, zap.NewNop().Sugar()))
	return r
}

func postVerify(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/order/verify", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiVerifyOrder_MissingOrderID(t *testing.T) {
	r := verifyRouter(&stubReconciler{})
	w := postVerify(r, `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiVerifyOrder_Processed(t *testing.T) {
	stub := &stubReconciler{verifyRes: &reconcile.Result{
		Outcome:       reconcile.OutcomeProcessed,
		PaymentStatus: models.PaymentStatusSuccess,
		Profile:       &models.Profile{ID: "id-1", Email: "alice@example.com", MembershipStatus: types.MembershipStatusActive},
	}}
	r := verifyRouter(stub)

	w := postVerify(r, `{"order_id":"order_1700000000_abc123def"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"processed"`)
	require.Contains(t, w.Body.String(), `"alice@example.com"`)
}

func TestApiVerifyOrder_AlreadyProcessed(t *testing.T) {
	stub := &stubReconciler{verifyRes: &reconcile.Result{
		Outcome:       reconcile.OutcomeAlreadyProcessed,
		PaymentStatus: models.PaymentStatusSuccess,
	}}
	r := verifyRouter(stub)

	w := postVerify(r, `{"order_id":"order_1700000000_abc123def"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"already_processed"`)
}

func TestApiVerifyOrder_NotPaid(t *testing.T) {
	stub := &stubReconciler{verifyRes: &reconcile.Result{
		Outcome:     reconcile.OutcomeNotPaid,
		OrderStatus: "ACTIVE",
	}}
	r := verifyRouter(stub)

	w := postVerify(r, `{"order_id":"order_1700000000_abc123def"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"not_paid"`)
	require.Contains(t, w.Body.String(), `"order_status":"ACTIVE"`)
}

func TestApiVerifyOrder_UpstreamFailureIs502(t *testing.T) {
	stub := &stubReconciler{verifyErr: fmt.Errorf("fetch order: %w", cashfree.ErrRequestFailed)}
	r := verifyRouter(stub)

	w := postVerify(r, `{"order_id":"order_1700000000_abc123def"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestApiVerifyOrder_InternalFailureIs500(t *testing.T) {
	stub := &stubReconciler{verifyErr: fmt.Errorf("db down")}
	r := verifyRouter(stub)

	w := postVerify(r, `{"order_id":"order_1700000000_abc123def"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
