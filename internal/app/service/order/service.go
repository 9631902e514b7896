package order

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/clubworks/memberpay/internal/app/service/profile"
	"github.com/clubworks/memberpay/internal/platform/cashfree"
	cfgpkg "github.com/clubworks/memberpay/pkg/config"
	"github.com/clubworks/memberpay/pkg/logctx"
	"github.com/clubworks/memberpay/pkg/tool"
)

var (
	// ErrUnknownPlan: the requested plan id is not configured.
	ErrUnknownPlan = errors.New("unknown membership plan")
	// ErrEmailRegistered: the email already belongs to an active member.
	ErrEmailRegistered = errors.New("email already registered")
)

type CreateResult struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
}

// Creator builds provider orders for checkout initiation.
type Creator interface {
	Create(ctx context.Context, name, email, phone, planID string) (*CreateResult, error)
}

// Service builds provider orders for membership checkouts. It only exists to
// produce the order id that reconciliation later converges on.
type Service struct {
	cfg     *cfgpkg.Config
	profSvc *profile.Service
	cf      *cashfree.Client
	log     *zap.SugaredLogger
}

func NewService(cfg *cfgpkg.Config, profSvc *profile.Service, cf *cashfree.Client, log *zap.SugaredLogger) Creator {
	return &Service{cfg: cfg, profSvc: profSvc, cf: cf, log: log}
}

// Create resolves the plan amount, generates an order id, and delegates to
// the provider. The notify URL points back at this service's webhook route.
func (s *Service) Create(ctx context.Context, name, email, phone, planID string) (*CreateResult, error) {
	plan := s.cfg.GetPlanByID(planID)
	if plan == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}

	existing, err := s.profSvc.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing.IsActiveMember() {
		return nil, fmt.Errorf("%w: %s", ErrEmailRegistered, email)
	}

	orderID := tool.GenerateOrderID()
	req := &cashfree.CreateOrderRequest{
		OrderID:       orderID,
		OrderAmount:   plan.Amount,
		OrderCurrency: plan.Currency,
		CustomerDetails: cashfree.CustomerDetails{
			CustomerID:    email,
			CustomerName:  name,
			CustomerEmail: email,
			CustomerPhone: phone,
		},
		OrderMeta: cashfree.OrderMeta{
			ReturnURL: s.cfg.AppURL + "/membership/success?order_id={order_id}",
			NotifyURL: s.cfg.AppURL + "/api/v1/membership/webhook",
		},
		OrderTags: map[string]string{"plan": plan.ID},
	}

	res, err := s.cf.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider order: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("order_created", "order_id", res.OrderID, "plan", plan.ID, "amount", plan.Amount)
	return &CreateResult{OrderID: res.OrderID, PaymentSessionID: res.PaymentSessionID}, nil
}
