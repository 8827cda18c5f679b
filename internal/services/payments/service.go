package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nrattyp233/create-a-date/internal/domain/enums"
	"github.com/nrattyp233/create-a-date/internal/infra/paypal"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
)

const captureCompletedEvent = "PAYMENT.CAPTURE.COMPLETED"

var (
	ErrValidation     = errors.New("validation error")
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderNotOwned  = errors.New("order belongs to another user")
	ErrCaptureFailed  = errors.New("payment capture failed")
	ErrAlreadyPremium = errors.New("account is already premium")
)

type OrderStore interface {
	CreatePending(ctx context.Context, userID int64, amount, currency string) (pgrepo.OrderRecord, error)
	AttachProviderOrder(ctx context.Context, orderID, providerOrderID string) error
	FindByID(ctx context.Context, orderID string) (pgrepo.OrderRecord, error)
	FindByProviderOrder(ctx context.Context, providerOrderID string) (pgrepo.OrderRecord, error)
	MarkPaid(ctx context.Context, orderID, providerTxID, amount string) (pgrepo.OrderRecord, bool, error)
}

type PremiumStore interface {
	SetPremium(ctx context.Context, userID int64, premium bool) error
	GetPremium(ctx context.Context, userID int64) (bool, error)
}

type PremiumInvalidator interface {
	InvalidatePremium(ctx context.Context, userID int64)
}

type Provider interface {
	CreateOrder(ctx context.Context, invoiceID, amount, currency string) (paypal.Order, error)
	CaptureOrder(ctx context.Context, providerOrderID string) (paypal.Capture, error)
}

type Config struct {
	PriceUSD string
	Currency string
}

type Service struct {
	orders      OrderStore
	users       PremiumStore
	provider    Provider
	invalidator PremiumInvalidator
	logger      *zap.Logger
	cfg         Config
}

type Dependencies struct {
	Orders      OrderStore
	Users       PremiumStore
	Provider    Provider
	Invalidator PremiumInvalidator
	Logger      *zap.Logger
}

type CreateResult struct {
	OrderID         string
	ProviderOrderID string
	Amount          string
	Currency        string
}

type ConfirmResult struct {
	OrderID          string
	UserID           int64
	AlreadyProcessed bool
}

// WebhookEvent is the subset of a PayPal webhook delivery the service acts
// on. InvoiceID carries our local order id.
type WebhookEvent struct {
	EventType string
	CaptureID string
	InvoiceID string
	Amount    string
}

func NewService(deps Dependencies, cfg Config) *Service {
	if strings.TrimSpace(cfg.PriceUSD) == "" {
		cfg.PriceUSD = "10.00"
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		cfg.Currency = "USD"
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		orders:      deps.Orders,
		users:       deps.Users,
		provider:    deps.Provider,
		invalidator: deps.Invalidator,
		logger:      logger,
		cfg:         cfg,
	}
}

// CreateOrder opens a local pending order and registers it with PayPal.
// The local order id travels as the provider invoice id so the capture
// event can be tied back without trusting client input.
func (s *Service) CreateOrder(ctx context.Context, userID int64) (CreateResult, error) {
	if userID <= 0 {
		return CreateResult{}, ErrValidation
	}
	if s.orders == nil || s.users == nil || s.provider == nil {
		return CreateResult{}, fmt.Errorf("payment dependencies are not configured")
	}

	premium, err := s.users.GetPremium(ctx, userID)
	if err != nil {
		return CreateResult{}, fmt.Errorf("read premium flag: %w", err)
	}
	if premium {
		return CreateResult{}, ErrAlreadyPremium
	}

	order, err := s.orders.CreatePending(ctx, userID, s.cfg.PriceUSD, s.cfg.Currency)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create pending order: %w", err)
	}

	providerOrder, err := s.provider.CreateOrder(ctx, order.ID, order.Amount, order.Currency)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create provider order: %w", err)
	}

	if err := s.orders.AttachProviderOrder(ctx, order.ID, providerOrder.ID); err != nil {
		return CreateResult{}, fmt.Errorf("attach provider order: %w", err)
	}

	return CreateResult{
		OrderID:         order.ID,
		ProviderOrderID: providerOrder.ID,
		Amount:          order.Amount,
		Currency:        order.Currency,
	}, nil
}

// Capture finalizes an order from the client-side approval flow.
func (s *Service) Capture(ctx context.Context, userID int64, orderID string) (ConfirmResult, error) {
	if userID <= 0 || strings.TrimSpace(orderID) == "" {
		return ConfirmResult{}, ErrValidation
	}
	if s.orders == nil || s.users == nil || s.provider == nil {
		return ConfirmResult{}, fmt.Errorf("payment dependencies are not configured")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrOrderNotFound) {
			return ConfirmResult{}, ErrOrderNotFound
		}
		return ConfirmResult{}, fmt.Errorf("find order: %w", err)
	}
	if order.UserID != userID {
		return ConfirmResult{}, ErrOrderNotOwned
	}
	if order.Status == string(enums.OrderPaid) {
		return ConfirmResult{OrderID: order.ID, UserID: order.UserID, AlreadyProcessed: true}, nil
	}
	if order.ProviderOrderID == nil || *order.ProviderOrderID == "" {
		return ConfirmResult{}, ErrOrderNotFound
	}

	capture, err := s.provider.CaptureOrder(ctx, *order.ProviderOrderID)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("capture provider order: %w", err)
	}
	if !strings.EqualFold(capture.Status, "COMPLETED") {
		return ConfirmResult{}, ErrCaptureFailed
	}

	return s.confirmPaid(ctx, order.ID, capture.CaptureID, order.Amount)
}

// HandleCaptureEvent processes a provider webhook delivery. Re-delivered
// events confirm at most once; later copies report AlreadyProcessed.
func (s *Service) HandleCaptureEvent(ctx context.Context, event WebhookEvent) (ConfirmResult, error) {
	if s.orders == nil || s.users == nil {
		return ConfirmResult{}, fmt.Errorf("payment dependencies are not configured")
	}
	if event.EventType != captureCompletedEvent {
		s.logger.Debug("ignoring webhook event", zap.String("event_type", event.EventType))
		return ConfirmResult{}, nil
	}
	if strings.TrimSpace(event.InvoiceID) == "" {
		return ConfirmResult{}, ErrValidation
	}

	order, err := s.orders.FindByID(ctx, event.InvoiceID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrOrderNotFound) {
			return ConfirmResult{}, ErrOrderNotFound
		}
		return ConfirmResult{}, fmt.Errorf("find order by invoice: %w", err)
	}

	return s.confirmPaid(ctx, order.ID, event.CaptureID, event.Amount)
}

func (s *Service) confirmPaid(ctx context.Context, orderID, providerTxID, amount string) (ConfirmResult, error) {
	order, changed, err := s.orders.MarkPaid(ctx, orderID, providerTxID, amount)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("mark order paid: %w", err)
	}

	result := ConfirmResult{
		OrderID:          order.ID,
		UserID:           order.UserID,
		AlreadyProcessed: !changed,
	}
	if !changed {
		return result, nil
	}

	if err := s.users.SetPremium(ctx, order.UserID, true); err != nil {
		return ConfirmResult{}, fmt.Errorf("grant premium: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidatePremium(ctx, order.UserID)
	}

	s.logger.Info("premium purchase confirmed",
		zap.String("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
	)

	return result, nil
}
