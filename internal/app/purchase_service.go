package app

import (
	"context"
	"fmt"

	"github.com/anshxhhh/coursehaven/internal/clock"
	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLedger is the authoritative store of completed purchases. Uniqueness of
// (buyer, course) is enforced inside InsertOrderIfAbsent, not by the service.
type OrderLedger interface {
	HasCompletedOrder(ctx context.Context, buyerID, courseID string) (bool, error)
	InsertOrderIfAbsent(ctx context.Context, order domain.Order) (domain.Order, bool, error)
	ListOrdersForBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
}

// CourseStore is the catalog boundary the purchase flow reads prices from.
type CourseStore interface {
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
}

// BuyerStore resolves authenticated buyer ids to accounts.
type BuyerStore interface {
	GetUserByID(ctx context.Context, userID string) (domain.User, error)
}

// PaymentGateway wraps the external card processor. It is treated as an
// untrusted, fallible remote service.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (domain.PaymentIntent, error)
	GetIntent(ctx context.Context, intentID string) (domain.PaymentIntent, error)
}

// OrderPublisher announces newly recorded orders to downstream consumers.
type OrderPublisher interface {
	PublishOrderCompleted(ctx context.Context, order domain.Order) error
}

type PurchaseService struct {
	ledger    OrderLedger
	courses   CourseStore
	buyers    BuyerStore
	gateway   PaymentGateway
	clock     clock.Clock
	currency  string
	logger    *zap.Logger
	publisher OrderPublisher
}

const defaultCurrency = "usd"

func NewPurchaseService(ledger OrderLedger, courses CourseStore, buyers BuyerStore, gateway PaymentGateway, clk clock.Clock, opts ...PurchaseServiceOption) *PurchaseService {
	svc := &PurchaseService{
		ledger:   ledger,
		courses:  courses,
		buyers:   buyers,
		gateway:  gateway,
		clock:    clk,
		currency: defaultCurrency,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PurchaseServiceOption func(*PurchaseService)

// WithCurrency overrides the deployment currency for new payment intents.
func WithCurrency(currency string) PurchaseServiceOption {
	return func(s *PurchaseService) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithLogger overrides the no-op default logger.
func WithLogger(logger *zap.Logger) PurchaseServiceOption {
	return func(s *PurchaseService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPublisher enables order-completed event publishing.
func WithPublisher(pub OrderPublisher) PurchaseServiceOption {
	return func(s *PurchaseService) {
		s.publisher = pub
	}
}

type InitiatePurchaseResult struct {
	Course          domain.Course
	PaymentIntentID string
	ClientSecret    string
}

// InitiatePurchase checks the ledger before contacting the gateway, so a
// repeated click or retry never produces a second charge attempt for an
// already purchased course. Each successful call creates a fresh intent on
// the gateway; unused intents expire on the gateway side.
func (s *PurchaseService) InitiatePurchase(ctx context.Context, buyerID, courseID string) (InitiatePurchaseResult, error) {
	if buyerID == "" || courseID == "" {
		return InitiatePurchaseResult{}, domain.ErrInvalidID
	}

	if _, err := s.buyers.GetUserByID(ctx, buyerID); err != nil {
		return InitiatePurchaseResult{}, err
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return InitiatePurchaseResult{}, err
	}

	purchased, err := s.ledger.HasCompletedOrder(ctx, buyerID, courseID)
	if err != nil {
		return InitiatePurchaseResult{}, fmt.Errorf("check existing order: %w", err)
	}
	if purchased {
		return InitiatePurchaseResult{}, domain.ErrAlreadyPurchased
	}

	intent, err := s.gateway.CreateIntent(ctx, course.Price, s.currency)
	if err != nil {
		return InitiatePurchaseResult{}, err
	}

	return InitiatePurchaseResult{
		Course:          course,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}, nil
}

type FinalizePurchaseInput struct {
	BuyerID         string
	CourseID        string
	PaymentIntentID string
	ReportedAmount  int64
	ReportedStatus  string
}

type FinalizePurchaseResult struct {
	Order   domain.Order
	Created bool
}

// FinalizePurchase records a client-reported payment outcome. The report is
// never trusted: the intent status and amount are re-verified with the gateway
// before any write. The ledger's conditional insert makes concurrent or
// repeated finalize calls converge on the same order, so the call is safe to
// retry.
func (s *PurchaseService) FinalizePurchase(ctx context.Context, in FinalizePurchaseInput) (FinalizePurchaseResult, error) {
	if in.BuyerID == "" || in.CourseID == "" || in.PaymentIntentID == "" {
		return FinalizePurchaseResult{}, domain.ErrInvalidID
	}

	if _, err := s.buyers.GetUserByID(ctx, in.BuyerID); err != nil {
		return FinalizePurchaseResult{}, err
	}
	course, err := s.courses.GetCourse(ctx, in.CourseID)
	if err != nil {
		return FinalizePurchaseResult{}, err
	}

	if in.ReportedStatus != string(domain.IntentStatusSucceeded) {
		return FinalizePurchaseResult{}, domain.ErrPaymentNotVerified
	}

	intent, err := s.gateway.GetIntent(ctx, in.PaymentIntentID)
	if err != nil {
		return FinalizePurchaseResult{}, err
	}
	if intent.Status != domain.IntentStatusSucceeded {
		return FinalizePurchaseResult{}, domain.ErrPaymentNotVerified
	}
	if in.ReportedAmount != course.Price || intent.Amount != course.Price {
		return FinalizePurchaseResult{}, domain.ErrAmountMismatch
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		BuyerID:         in.BuyerID,
		CourseID:        in.CourseID,
		PaymentIntentID: in.PaymentIntentID,
		Amount:          course.Price,
		Status:          domain.OrderStatusCompleted,
		CreatedAt:       s.clock.Now(),
	}

	stored, created, err := s.ledger.InsertOrderIfAbsent(ctx, order)
	if err != nil {
		return FinalizePurchaseResult{}, fmt.Errorf("record order: %w", err)
	}

	if created && s.publisher != nil {
		// Best effort: the purchase is already durable, a lost event must not fail it.
		if err := s.publisher.PublishOrderCompleted(ctx, stored); err != nil {
			s.logger.Warn("publish order completed",
				zap.String("order_id", stored.ID),
				zap.Error(err),
			)
		}
	}

	return FinalizePurchaseResult{Order: stored, Created: created}, nil
}

// ListOrders returns the buyer's completed purchases, oldest first.
func (s *PurchaseService) ListOrders(ctx context.Context, buyerID string) ([]domain.Order, error) {
	if buyerID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.ledger.ListOrdersForBuyer(ctx, buyerID)
}
