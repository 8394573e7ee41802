package postgres

import (
	"context"
	"fmt"

	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository is the order ledger. The (buyer_id, course_id) unique
// constraint is the single enforcement point for the one-order-per-pair
// invariant; no in-process locking is involved, so concurrent finalize calls
// across any number of processes resolve at the database.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) HasCompletedOrder(ctx context.Context, buyerID, courseID string) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM orders WHERE buyer_id = $1 AND course_id = $2 AND status = 'completed'
)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, buyerID, courseID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check completed order: %w", err)
	}
	return exists, nil
}

// InsertOrderIfAbsent writes the order unless one already exists for the same
// (buyer, course) pair. When the unique constraint rejects the insert, the
// existing row is returned with created=false, so callers can treat the retry
// as already done.
func (r *OrderRepository) InsertOrderIfAbsent(ctx context.Context, order domain.Order) (domain.Order, bool, error) {
	const stmt = `
INSERT INTO orders (id, buyer_id, course_id, payment_intent_id, amount, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, stmt,
		order.ID,
		order.BuyerID,
		order.CourseID,
		order.PaymentIntentID,
		order.Amount,
		order.Status,
		order.CreatedAt,
	)
	if err == nil {
		return order, true, nil
	}

	switch {
	case isUniqueViolation(err):
		existing, lookupErr := r.getByBuyerAndCourse(ctx, order.BuyerID, order.CourseID)
		if lookupErr != nil {
			return domain.Order{}, false, lookupErr
		}
		if existing == nil {
			// The conflicting insert rolled back between our insert and read.
			return domain.Order{}, false, fmt.Errorf("insert order: %w", domain.ErrOrderExists)
		}
		return *existing, false, nil
	case isInvalidUUID(err):
		return domain.Order{}, false, domain.ErrInvalidID
	case isForeignKeyViolation(err, "buyer"):
		return domain.Order{}, false, domain.ErrBuyerNotFound
	case isForeignKeyViolation(err, "course"):
		return domain.Order{}, false, domain.ErrCourseNotFound
	default:
		return domain.Order{}, false, fmt.Errorf("insert order: %w", err)
	}
}

func (r *OrderRepository) ListOrdersForBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	const query = `
SELECT id, buyer_id, course_id, payment_intent_id, amount, status, created_at
FROM orders
WHERE buyer_id = $1
ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) getByBuyerAndCourse(ctx context.Context, buyerID, courseID string) (*domain.Order, error) {
	const query = `
SELECT id, buyer_id, course_id, payment_intent_id, amount, status, created_at
FROM orders
WHERE buyer_id = $1 AND course_id = $2`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, buyerID, courseID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.BuyerID, &o.CourseID, &o.PaymentIntentID, &o.Amount, &status, &o.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}
