package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clubworks/memberpay/internal/models"
	"github.com/clubworks/memberpay/pkg/logctx"
	"github.com/clubworks/memberpay/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Upsert writes the application-visible profile for an identity. An existing
// profile is updated in place (membership re-activated, payment repointed);
// otherwise a new row is inserted with id equal to the identity id.
func (s *Service) Upsert(ctx context.Context, identityID, email, name, phone, paymentID string) error {
	var existing models.Profile
	err := s.db.WithContext(ctx).Select("id").Where("id = ?", identityID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"email":             email,
			"name":              name,
			"phone":             phone,
			"payment_id":        paymentID,
			"membership_status": types.MembershipStatusActive,
		}
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", identityID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		p := &models.Profile{
			ID:               identityID,
			Email:            email,
			Name:             name,
			Phone:            phone,
			MembershipStatus: types.MembershipStatusActive,
			PaymentID:        lo.ToPtr(paymentID),
		}
		if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
			return fmt.Errorf("failed to insert profile: %w", err)
		}
	default:
		return fmt.Errorf("failed to look up profile: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("profile_upserted", "identity_id", identityID, "payment_id", paymentID)
	return nil
}

// GetByID returns a profile by identity id, or nil when none exists.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// GetByEmail returns a profile by email, or nil when none exists.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return &p, nil
}

// GetByPaymentID returns the profile pointing at a payment, or nil.
func (s *Service) GetByPaymentID(ctx context.Context, paymentID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by payment_id: %w", err)
	}
	return &p, nil
}
