package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clubworks/memberpay/internal/models"
	"github.com/clubworks/memberpay/pkg/tool"
)

// ErrDuplicatePayment signals a unique-constraint hit on order_id or
// cf_payment_id. Callers treat it as "already processed", not as a failure.
var ErrDuplicatePayment = errors.New("duplicate payment already recorded")

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// HasProcessed reports whether a payment with the given provider payment id
// was already recorded. "Not found" is a normal result, not an error.
func (s *Service) HasProcessed(ctx context.Context, cfPaymentID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("cf_payment_id = ?", cfPaymentID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to query payments by cf_payment_id: %w", err)
	}
	return count > 0, nil
}

// FindByOrderID returns the payment recorded for an order, or nil when none
// exists yet.
func (s *Service) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query payment by order_id: %w", err)
	}
	return &p, nil
}

// FindByCfPaymentID returns the payment for a provider payment id, or nil.
func (s *Service) FindByCfPaymentID(ctx context.Context, cfPaymentID string) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Where("cf_payment_id = ?", cfPaymentID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query payment by cf_payment_id: %w", err)
	}
	return &p, nil
}

// Record appends a payment row and returns its id. The status casing is
// canonicalized to uppercase here; rows are never updated once written.
// A unique violation on order_id or cf_payment_id maps to ErrDuplicatePayment.
func (s *Service) Record(ctx context.Context, p *models.Payment) (string, error) {
	if p.ID == "" {
		p.ID = tool.GenerateUUIDV7()
	}
	p.Status = models.PaymentStatus(strings.ToUpper(string(p.Status)))
	switch p.Status {
	case models.PaymentStatusSuccess, models.PaymentStatusFailed, models.PaymentStatusPending:
	default:
		return "", fmt.Errorf("invalid payment status: %s", p.Status)
	}
	if p.PaymentTimestamp.IsZero() {
		p.PaymentTimestamp = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", fmt.Errorf("%w: order_id=%s cf_payment_id=%s", ErrDuplicatePayment, p.OrderID, p.CfPaymentID)
		}
		return "", fmt.Errorf("failed to record payment: %w", err)
	}
	return p.ID, nil
}

// ListByEmail returns a user's payment history, newest first.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	var rows []*models.Payment
	if err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return rows, nil
}
