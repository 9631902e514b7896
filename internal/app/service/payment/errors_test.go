package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clubworks/memberpay/internal/models"
)

func TestErrDuplicatePayment_IsWrapFriendly(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrDuplicatePayment)
	require.True(t, errors.Is(err, ErrDuplicatePayment))
}

func TestRecord_RejectsUnknownStatus(t *testing.T) {
	s := NewService(nil, zap.NewNop().Sugar())
	_, err := s.Record(context.Background(), &models.Payment{OrderID: "order_1", CfPaymentID: "pay_1", Status: "PAID"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid payment status")
}
