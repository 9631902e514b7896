package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/clubworks/memberpay/internal/app/service/identity"
	notificationlog "github.com/clubworks/memberpay/internal/app/service/notification_log"
	"github.com/clubworks/memberpay/internal/app/service/payment"
	"github.com/clubworks/memberpay/internal/app/service/profile"
	"github.com/clubworks/memberpay/internal/models"
	"github.com/clubworks/memberpay/internal/platform/cashfree"
	"github.com/clubworks/memberpay/pkg/logctx"
	"github.com/clubworks/memberpay/pkg/types"
)

type Outcome string

const (
	// OutcomeProcessed: this execution recorded the payment and provisioned
	// the account.
	OutcomeProcessed Outcome = "processed"
	// OutcomeAlreadyProcessed: the payment was recorded before this
	// execution (earlier delivery, or a concurrent one that won the race).
	OutcomeAlreadyProcessed Outcome = "already_processed"
	// OutcomeIgnored: nothing to do (non-success status or unrelated event).
	OutcomeIgnored Outcome = "ignored"
	// OutcomeNotPaid: the provider reports the order is not paid yet.
	OutcomeNotPaid Outcome = "not_paid"
)

// Result is the terminal state of one reconciliation run.
type Result struct {
	Outcome       Outcome
	PaymentStatus models.PaymentStatus
	OrderStatus   string
	Profile       *models.Profile
}

// IdentityStore is the slice of the identity service the orchestrator needs.
type IdentityStore interface {
	ResolveOrCreate(ctx context.Context, email, name, phone string) (string, bool, error)
	Delete(ctx context.Context, id string) error
}

// PaymentStore is the idempotency ledger plus the payment recorder.
type PaymentStore interface {
	HasProcessed(ctx context.Context, cfPaymentID string) (bool, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	FindByCfPaymentID(ctx context.Context, cfPaymentID string) (*models.Payment, error)
	Record(ctx context.Context, p *models.Payment) (string, error)
}

// ProfileStore writes and reads application profiles.
type ProfileStore interface {
	Upsert(ctx context.Context, identityID, email, name, phone, paymentID string) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Profile, error)
}

// ProviderClient is the provider's order-status API used on the verify path.
type ProviderClient interface {
	FetchOrder(ctx context.Context, orderID string) (*cashfree.OrderEntity, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]*cashfree.PaymentEntity, error)
}

// NotificationLog persists the webhook audit trail.
type NotificationLog interface {
	Save(ctx context.Context, log *models.WebhookLog)
}

// Reconciler drives one reconciliation run per webhook delivery or verify poll.
type Reconciler interface {
	ProcessWebhook(ctx context.Context, payload *cashfree.WebhookPayload) (*Result, error)
	VerifyOrder(ctx context.Context, orderID string) (*Result, error)
}

// Service converts a provider-confirmed payment into identity + payment +
// profile state, exactly once per provider payment id. Application-level
// dedup checks here are a fast path only; the unique constraints enforced by
// the payment store are what hold under a true race.
type Service struct {
	idSvc    IdentityStore
	paySvc   PaymentStore
	profSvc  ProfileStore
	provider ProviderClient
	notifSvc NotificationLog
	log      *zap.SugaredLogger
}

func NewService(idSvc *identity.Service, paySvc *payment.Service, profSvc *profile.Service, provider *cashfree.Client, notifSvc *notificationlog.Service, log *zap.SugaredLogger) Reconciler {
	return &Service{idSvc: idSvc, paySvc: paySvc, profSvc: profSvc, provider: provider, notifSvc: notifSvc, log: log}
}

type provisionInput struct {
	OrderID     string
	CfPaymentID string
	Email       string
	Name        string
	Phone       string
	Amount      float64
	Method      string
	PaidAt      time.Time
}

// ProcessWebhook handles one validated payment-success notification. The
// signature gate has already run at the handler; payloads of other types or
// with non-SUCCESS payment status come back as OutcomeIgnored with no side
// effects.
func (s *Service) ProcessWebhook(ctx context.Context, payload *cashfree.WebhookPayload) (res *Result, retErr error) {
	log := logctx.FromCtx(ctx, s.log)

	var traceID string
	if v, ok := ctx.Value("traceID").(string); ok {
		traceID = v
	}
	dataBytes, _ := json.Marshal(payload)
	s.notifSvc.Save(ctx, &models.WebhookLog{
		ProviderID:       string(types.PaymentProviderCashfree),
		TraceID:          traceID,
		OrderID:          payload.Data.Order.OrderID,
		CfPaymentID:      payload.Data.Payment.CfPaymentID,
		NotificationTime: time.Now(),
		Data:             datatypes.JSON(dataBytes),
		Status:           models.WebhookLogStatusReceived,
	})
	defer func() {
		resMap := map[string]any{}
		if res != nil {
			resMap["outcome"] = res.Outcome
		}
		if retErr != nil {
			resMap["error"] = retErr.Error()
		}
		resBytes, _ := json.Marshal(resMap)
		status := models.WebhookLogStatusHandled
		if retErr != nil {
			status = models.WebhookLogStatusHandleFailed
		}
		s.notifSvc.Save(ctx, &models.WebhookLog{
			ProviderID:       string(types.PaymentProviderCashfree),
			TraceID:          traceID,
			OrderID:          payload.Data.Order.OrderID,
			CfPaymentID:      payload.Data.Payment.CfPaymentID,
			NotificationTime: time.Now(),
			Data:             datatypes.JSON(dataBytes),
			Result:           func() *datatypes.JSON { j := datatypes.JSON(resBytes); return &j }(),
			Status:           status,
		})
	}()

	if payload.Type != cashfree.WebhookTypePaymentSuccess {
		log.Infow("webhook_ignored", "type", payload.Type)
		return &Result{Outcome: OutcomeIgnored}, nil
	}
	// Case-sensitive per provider contract; acknowledge anything else to
	// stop retries without touching the stores.
	if payload.Data.Payment.PaymentStatus != cashfree.PaymentStatusSuccess {
		log.Infow("webhook_payment_not_success", "payment_status", payload.Data.Payment.PaymentStatus)
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	processed, err := s.paySvc.HasProcessed(ctx, payload.Data.Payment.CfPaymentID)
	if err != nil {
		return nil, err
	}
	if processed {
		log.Infow("webhook_duplicate", "cf_payment_id", payload.Data.Payment.CfPaymentID)
		return &Result{Outcome: OutcomeAlreadyProcessed, PaymentStatus: models.PaymentStatusSuccess}, nil
	}

	paidAt, _ := time.Parse(time.RFC3339, payload.Data.Payment.PaymentTime)
	return s.provision(ctx, &provisionInput{
		OrderID:     payload.Data.Order.OrderID,
		CfPaymentID: payload.Data.Payment.CfPaymentID,
		Email:       payload.Data.CustomerDetails.CustomerEmail,
		Name:        payload.Data.CustomerDetails.CustomerName,
		Phone:       payload.Data.CustomerDetails.CustomerPhone,
		Amount:      payload.Data.Payment.PaymentAmount,
		Method:      payload.Data.Payment.PaymentGroup,
		PaidAt:      paidAt,
	})
}

// VerifyOrder is the client-poll fallback for a delayed webhook. Trust is
// anchored by fetching the order status from the provider; no signature is
// involved on this path.
func (s *Service) VerifyOrder(ctx context.Context, orderID string) (*Result, error) {
	log := logctx.FromCtx(ctx, s.log)

	existing, err := s.paySvc.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		prof, err := s.profSvc.GetByPaymentID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		log.Infow("verify_already_recorded", "order_id", orderID)
		return &Result{Outcome: OutcomeAlreadyProcessed, PaymentStatus: existing.Status, Profile: prof}, nil
	}

	order, err := s.provider.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order from provider: %w", err)
	}
	if order.OrderStatus != cashfree.OrderStatusPaid {
		log.Infow("verify_not_paid", "order_id", orderID, "order_status", order.OrderStatus)
		return &Result{Outcome: OutcomeNotPaid, OrderStatus: order.OrderStatus}, nil
	}

	// Resolve the provider payment id for the charge. When the listing call
	// fails the order is still PAID, so fall back to a synthetic id rather
	// than dropping the provisioning.
	cfPaymentID := ""
	method := "online"
	if payments, err := s.provider.FetchOrderPayments(ctx, orderID); err != nil {
		log.Warnw("verify_fetch_payments_failed", "order_id", orderID, "error", err.Error())
	} else {
		for _, p := range payments {
			if p.PaymentStatus == cashfree.PaymentStatusSuccess {
				cfPaymentID = p.CfPaymentID
				if p.PaymentGroup != "" {
					method = p.PaymentGroup
				}
				break
			}
		}
		// The order is PAID yet the provider lists no successful attempt.
		// Flag it distinctly from a failed listing call.
		if cfPaymentID == "" {
			log.Warnw("verify_paid_without_success_attempt", "order_id", orderID, "attempts", len(payments))
		}
	}
	if cfPaymentID == "" {
		cfPaymentID = "verify_" + orderID
	}

	return s.provision(ctx, &provisionInput{
		OrderID:     orderID,
		CfPaymentID: cfPaymentID,
		Email:       order.CustomerDetails.CustomerEmail,
		Name:        order.CustomerDetails.CustomerName,
		Phone:       order.CustomerDetails.CustomerPhone,
		Amount:      order.OrderAmount,
		Method:      method,
		PaidAt:      time.Now(),
	})
}

// provision runs identity resolution, payment recording, and the profile
// write, with a compensating delete of any identity this execution created.
// The payment row is deliberately never rolled back: a charge that could not
// be fully provisioned stays on record for manual reconciliation.
func (s *Service) provision(ctx context.Context, in *provisionInput) (*Result, error) {
	log := logctx.FromCtx(ctx, s.log)

	identityID, isNew, err := s.idSvc.ResolveOrCreate(ctx, in.Email, in.Name, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("identity resolution failed: %w", err)
	}

	paymentID, err := s.paySvc.Record(ctx, &models.Payment{
		OrderID:          in.OrderID,
		CfPaymentID:      in.CfPaymentID,
		Email:            in.Email,
		Name:             in.Name,
		Phone:            in.Phone,
		Amount:           in.Amount,
		Status:           models.PaymentStatusSuccess,
		PaymentMethod:    in.Method,
		PaymentTimestamp: in.PaidAt,
	})
	if err != nil {
		if errors.Is(err, payment.ErrDuplicatePayment) {
			// A concurrent execution committed first. Its identity is the
			// durable one, so nothing created here gets rolled back.
			log.Infow("provision_lost_race", "order_id", in.OrderID, "cf_payment_id", in.CfPaymentID)
			prof, _ := s.profileForCfPayment(ctx, in.CfPaymentID)
			return &Result{Outcome: OutcomeAlreadyProcessed, PaymentStatus: models.PaymentStatusSuccess, Profile: prof}, nil
		}
		s.rollbackIdentity(ctx, identityID, isNew)
		return nil, fmt.Errorf("payment recording failed: %w", err)
	}

	if err := s.profSvc.Upsert(ctx, identityID, in.Email, in.Name, in.Phone, paymentID); err != nil {
		s.rollbackIdentity(ctx, identityID, isNew)
		return nil, fmt.Errorf("profile write failed: %w", err)
	}

	prof, err := s.profSvc.GetByID(ctx, identityID)
	if err != nil {
		log.Warnw("provision_profile_readback_failed", "identity_id", identityID, "error", err.Error())
	}
	log.Infow("provision_complete", "order_id", in.OrderID, "cf_payment_id", in.CfPaymentID, "identity_id", identityID, "new_identity", isNew)
	return &Result{Outcome: OutcomeProcessed, PaymentStatus: models.PaymentStatusSuccess, Profile: prof}, nil
}

func (s *Service) profileForCfPayment(ctx context.Context, cfPaymentID string) (*models.Profile, error) {
	p, err := s.paySvc.FindByCfPaymentID(ctx, cfPaymentID)
	if err != nil || p == nil {
		return nil, err
	}
	return s.profSvc.GetByPaymentID(ctx, p.ID)
}

func (s *Service) rollbackIdentity(ctx context.Context, identityID string, isNew bool) {
	if !isNew {
		return
	}
	if err := s.idSvc.Delete(ctx, identityID); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("identity_rollback_failed", "identity_id", identityID, "error", err.Error())
		return
	}
	logctx.FromCtx(ctx, s.log).Infow("identity_rolled_back", "identity_id", identityID)
}
