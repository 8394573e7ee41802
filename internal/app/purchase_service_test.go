package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anshxhhh/coursehaven/internal/clock"
	"github.com/anshxhhh/coursehaven/internal/domain"
)

var testCourse = domain.Course{
	ID:    "course-1",
	Title: "Intro to Go",
	Price: 499,
}

var testBuyer = domain.User{
	ID:    "buyer-1",
	Email: "buyer@example.com",
}

func TestPurchaseService_InitiatePurchase(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("returns client secret for new purchase", func(t *testing.T) {
		ledger := newFakeLedger()
		gateway := &fakeGateway{
			intent: domain.PaymentIntent{
				ID:           "pi_1",
				ClientSecret: "pi_1_secret",
				Amount:       499,
				Currency:     "usd",
				Status:       domain.IntentStatusRequiresConfirmation,
			},
		}
		svc := newTestPurchaseService(ledger, gateway, now)

		res, err := svc.InitiatePurchase(context.Background(), "buyer-1", "course-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.ClientSecret != "pi_1_secret" {
			t.Fatalf("expected client secret pi_1_secret, got %s", res.ClientSecret)
		}
		if res.Course.ID != "course-1" {
			t.Fatalf("expected course-1, got %s", res.Course.ID)
		}
		if gateway.createCalls != 1 {
			t.Fatalf("expected 1 gateway call, got %d", gateway.createCalls)
		}
		if gateway.createdAmount != 499 {
			t.Fatalf("expected intent for 499, got %d", gateway.createdAmount)
		}
	})

	t.Run("already purchased short-circuits before gateway", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.add(domain.Order{
			ID:       "order-1",
			BuyerID:  "buyer-1",
			CourseID: "course-1",
			Status:   domain.OrderStatusCompleted,
		})
		gateway := &fakeGateway{}
		svc := newTestPurchaseService(ledger, gateway, now)

		_, err := svc.InitiatePurchase(context.Background(), "buyer-1", "course-1")
		if !errors.Is(err, domain.ErrAlreadyPurchased) {
			t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
		}
		if gateway.createCalls != 0 {
			t.Fatalf("expected no gateway calls, got %d", gateway.createCalls)
		}
	})

	t.Run("missing course returns error", func(t *testing.T) {
		svc := newTestPurchaseService(newFakeLedger(), &fakeGateway{}, now)

		_, err := svc.InitiatePurchase(context.Background(), "buyer-1", "missing")
		if !errors.Is(err, domain.ErrCourseNotFound) {
			t.Fatalf("expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("missing buyer returns error", func(t *testing.T) {
		svc := newTestPurchaseService(newFakeLedger(), &fakeGateway{}, now)

		_, err := svc.InitiatePurchase(context.Background(), "missing", "course-1")
		if !errors.Is(err, domain.ErrBuyerNotFound) {
			t.Fatalf("expected ErrBuyerNotFound, got %v", err)
		}
	})

	t.Run("gateway failure surfaces to caller", func(t *testing.T) {
		gateway := &fakeGateway{createErr: domain.ErrGatewayUnavailable}
		svc := newTestPurchaseService(newFakeLedger(), gateway, now)

		_, err := svc.InitiatePurchase(context.Background(), "buyer-1", "course-1")
		if !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})
}

func TestPurchaseService_FinalizePurchase(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	succeeded := domain.PaymentIntent{
		ID:     "pi_1",
		Amount: 499,
		Status: domain.IntentStatusSucceeded,
	}

	input := FinalizePurchaseInput{
		BuyerID:         "buyer-1",
		CourseID:        "course-1",
		PaymentIntentID: "pi_1",
		ReportedAmount:  499,
		ReportedStatus:  "succeeded",
	}

	t.Run("records order on verified payment", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestPurchaseService(ledger, &fakeGateway{intent: succeeded}, now)

		res, err := svc.FinalizePurchase(context.Background(), input)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Created {
			t.Fatalf("expected Created=true")
		}
		if res.Order.ID == "" {
			t.Fatalf("expected order ID to be set")
		}
		if res.Order.Amount != 499 {
			t.Fatalf("expected amount 499, got %d", res.Order.Amount)
		}
		if res.Order.Status != domain.OrderStatusCompleted {
			t.Fatalf("expected completed status, got %s", res.Order.Status)
		}
		if res.Order.CreatedAt != now {
			t.Fatalf("expected CreatedAt %v, got %v", now, res.Order.CreatedAt)
		}
		if len(ledger.ordersFor("buyer-1")) != 1 {
			t.Fatalf("expected one persisted order")
		}
	})

	t.Run("second finalize is idempotent", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestPurchaseService(ledger, &fakeGateway{intent: succeeded}, now)

		first, err := svc.FinalizePurchase(context.Background(), input)
		if err != nil {
			t.Fatalf("first finalize: %v", err)
		}
		second, err := svc.FinalizePurchase(context.Background(), input)
		if err != nil {
			t.Fatalf("second finalize: %v", err)
		}
		if second.Created {
			t.Fatalf("expected Created=false on retry")
		}
		if second.Order.ID != first.Order.ID {
			t.Fatalf("expected same order on retry, got %s vs %s", second.Order.ID, first.Order.ID)
		}
		if len(ledger.ordersFor("buyer-1")) != 1 {
			t.Fatalf("expected exactly one order after retry")
		}
	})

	t.Run("gateway status overrides client claim", func(t *testing.T) {
		gateway := &fakeGateway{intent: domain.PaymentIntent{
			ID:     "pi_1",
			Amount: 499,
			Status: domain.IntentStatusRequiresConfirmation,
		}}
		ledger := newFakeLedger()
		svc := newTestPurchaseService(ledger, gateway, now)

		_, err := svc.FinalizePurchase(context.Background(), input)
		if !errors.Is(err, domain.ErrPaymentNotVerified) {
			t.Fatalf("expected ErrPaymentNotVerified, got %v", err)
		}
		if len(ledger.ordersFor("buyer-1")) != 0 {
			t.Fatalf("expected no order recorded")
		}
	})

	t.Run("client reporting failure is not verified", func(t *testing.T) {
		in := input
		in.ReportedStatus = "failed"
		svc := newTestPurchaseService(newFakeLedger(), &fakeGateway{intent: succeeded}, now)

		_, err := svc.FinalizePurchase(context.Background(), in)
		if !errors.Is(err, domain.ErrPaymentNotVerified) {
			t.Fatalf("expected ErrPaymentNotVerified, got %v", err)
		}
	})

	t.Run("reported amount mismatch rejected despite succeeded intent", func(t *testing.T) {
		in := input
		in.ReportedAmount = 1
		ledger := newFakeLedger()
		svc := newTestPurchaseService(ledger, &fakeGateway{intent: succeeded}, now)

		_, err := svc.FinalizePurchase(context.Background(), in)
		if !errors.Is(err, domain.ErrAmountMismatch) {
			t.Fatalf("expected ErrAmountMismatch, got %v", err)
		}
		if len(ledger.ordersFor("buyer-1")) != 0 {
			t.Fatalf("expected no order recorded")
		}
	})

	t.Run("gateway amount mismatch rejected", func(t *testing.T) {
		gateway := &fakeGateway{intent: domain.PaymentIntent{
			ID:     "pi_1",
			Amount: 100,
			Status: domain.IntentStatusSucceeded,
		}}
		svc := newTestPurchaseService(newFakeLedger(), gateway, now)

		_, err := svc.FinalizePurchase(context.Background(), input)
		if !errors.Is(err, domain.ErrAmountMismatch) {
			t.Fatalf("expected ErrAmountMismatch, got %v", err)
		}
	})

	t.Run("gateway verify failure surfaces to caller", func(t *testing.T) {
		gateway := &fakeGateway{getErr: domain.ErrGatewayUnavailable}
		svc := newTestPurchaseService(newFakeLedger(), gateway, now)

		_, err := svc.FinalizePurchase(context.Background(), input)
		if !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})

	t.Run("concurrent finalize records a single order", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestPurchaseService(ledger, &fakeGateway{intent: succeeded}, now)

		const attempts = 16
		var wg sync.WaitGroup
		results := make([]FinalizePurchaseResult, attempts)
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = svc.FinalizePurchase(context.Background(), input)
			}(i)
		}
		wg.Wait()

		created := 0
		for i := 0; i < attempts; i++ {
			if errs[i] != nil {
				t.Fatalf("finalize %d: %v", i, errs[i])
			}
			if results[i].Created {
				created++
			}
			if results[i].Order.ID != results[0].Order.ID {
				t.Fatalf("finalize %d returned a different order", i)
			}
		}
		if created != 1 {
			t.Fatalf("expected exactly one Created=true, got %d", created)
		}
		if len(ledger.ordersFor("buyer-1")) != 1 {
			t.Fatalf("expected exactly one order in ledger")
		}
	})

	t.Run("publishes completed event once", func(t *testing.T) {
		ledger := newFakeLedger()
		pub := &fakePublisher{}
		svc := newTestPurchaseService(ledger, &fakeGateway{intent: succeeded}, now, WithPublisher(pub))

		if _, err := svc.FinalizePurchase(context.Background(), input); err != nil {
			t.Fatalf("first finalize: %v", err)
		}
		if _, err := svc.FinalizePurchase(context.Background(), input); err != nil {
			t.Fatalf("second finalize: %v", err)
		}
		if len(pub.published) != 1 {
			t.Fatalf("expected one published event, got %d", len(pub.published))
		}
	})
}

func newTestPurchaseService(ledger *fakeLedger, gateway *fakeGateway, now time.Time, opts ...PurchaseServiceOption) *PurchaseService {
	courses := &fakeCourseStore{courses: map[string]domain.Course{testCourse.ID: testCourse}}
	buyers := &fakeBuyerStore{users: map[string]domain.User{testBuyer.ID: testBuyer}}
	return NewPurchaseService(ledger, courses, buyers, gateway, clock.NewFixed(now), opts...)
}

type fakeLedger struct {
	mu     sync.Mutex
	orders map[string]domain.Order // keyed by buyerID+"/"+courseID
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{orders: make(map[string]domain.Order)}
}

func (f *fakeLedger) add(order domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.BuyerID+"/"+order.CourseID] = order
}

func (f *fakeLedger) ordersFor(buyerID string) []domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out
}

func (f *fakeLedger) HasCompletedOrder(_ context.Context, buyerID, courseID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.orders[buyerID+"/"+courseID]
	return ok, nil
}

func (f *fakeLedger) InsertOrderIfAbsent(_ context.Context, order domain.Order) (domain.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := order.BuyerID + "/" + order.CourseID
	if existing, ok := f.orders[key]; ok {
		return existing, false, nil
	}
	f.orders[key] = order
	return order, true, nil
}

func (f *fakeLedger) ListOrdersForBuyer(_ context.Context, buyerID string) ([]domain.Order, error) {
	return f.ordersFor(buyerID), nil
}

type fakeCourseStore struct {
	courses map[string]domain.Course
}

func (f *fakeCourseStore) GetCourse(_ context.Context, courseID string) (domain.Course, error) {
	course, ok := f.courses[courseID]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return course, nil
}

type fakeBuyerStore struct {
	users map[string]domain.User
}

func (f *fakeBuyerStore) GetUserByID(_ context.Context, userID string) (domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return domain.User{}, domain.ErrBuyerNotFound
	}
	return user, nil
}

type fakeGateway struct {
	mu            sync.Mutex
	intent        domain.PaymentIntent
	createErr     error
	getErr        error
	createCalls   int
	createdAmount int64
}

func (f *fakeGateway) CreateIntent(_ context.Context, amount int64, currency string) (domain.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.PaymentIntent{}, f.createErr
	}
	f.createCalls++
	f.createdAmount = amount
	intent := f.intent
	intent.Amount = amount
	intent.Currency = currency
	return intent, nil
}

func (f *fakeGateway) GetIntent(_ context.Context, intentID string) (domain.PaymentIntent, error) {
	if f.getErr != nil {
		return domain.PaymentIntent{}, f.getErr
	}
	intent := f.intent
	intent.ID = intentID
	return intent, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []domain.Order
}

func (f *fakePublisher) PublishOrderCompleted(_ context.Context, order domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, order)
	return nil
}
