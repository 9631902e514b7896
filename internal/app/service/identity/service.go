package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clubworks/memberpay/internal/models"
	"github.com/clubworks/memberpay/pkg/logctx"
	"github.com/clubworks/memberpay/pkg/tool"
)

// authScanPageSize is the page size used when scanning the auth store for an
// email. The auth store contract offers paginated listing, not get-by-email.
const authScanPageSize = 50

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// ResolveOrCreate maps an email to a durable account id, creating a new auth
// identity only when neither a profile nor an identity exists for it.
// Resolution order matters: profile store first (cheaper, consistent), then
// a paginated scan of the auth store, then create.
func (s *Service) ResolveOrCreate(ctx context.Context, email, name, phone string) (string, bool, error) {
	var prof models.Profile
	err := s.db.WithContext(ctx).Select("id").Where("email = ?", email).First(&prof).Error
	switch {
	case err == nil:
		return prof.ID, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", false, fmt.Errorf("failed to look up profile by email: %w", err)
	}

	existing, err := s.scanByEmail(ctx, email)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	id, err := s.create(ctx, email, name, phone)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *Service) scanByEmail(ctx context.Context, email string) (*models.Identity, error) {
	for page := 0; ; page++ {
		var batch []*models.Identity
		if err := s.db.WithContext(ctx).
			Order("created_at").
			Limit(authScanPageSize).
			Offset(page * authScanPageSize).
			Find(&batch).Error; err != nil {
			return nil, fmt.Errorf("failed to scan identities: %w", err)
		}
		if found, ok := lo.Find(batch, func(it *models.Identity) bool { return it.Email == email }); ok {
			return found, nil
		}
		if len(batch) < authScanPageSize {
			return nil, nil
		}
	}
}

func (s *Service) create(ctx context.Context, email, name, phone string) (string, error) {
	ident := &models.Identity{
		ID:             tool.GenerateUUIDV7(),
		Email:          email,
		EmailConfirmed: true,
		Metadata:       datatypes.NewJSONType(&models.IdentityMetadata{Name: name, Phone: phone}),
	}
	if err := s.db.WithContext(ctx).Create(ident).Error; err != nil {
		return "", fmt.Errorf("failed to create identity: %w", err)
	}

	// Fail closed: a created identity that cannot be read back is treated as
	// a creation failure, and the row is removed so a retry starts clean.
	if _, err := s.GetByID(ctx, ident.ID); err != nil {
		if delErr := s.Delete(ctx, ident.ID); delErr != nil {
			logctx.FromCtx(ctx, s.log).Errorw("identity_cleanup_failed", "identity_id", ident.ID, "error", delErr.Error())
		}
		return "", fmt.Errorf("identity created but not readable: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("identity_created", "identity_id", ident.ID)
	return ident.ID, nil
}

// GetByID fetches one identity from the auth store.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	var ident models.Identity
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&ident).Error; err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return &ident, nil
}

// Delete removes an identity. Used as the compensating action when a later
// reconciliation step fails after this execution created the identity.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Identity{}).Error; err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}
