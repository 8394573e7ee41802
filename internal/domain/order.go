package domain

import "time"

type OrderStatus string

const OrderStatusCompleted OrderStatus = "completed"

// Order is the durable proof that a buyer has completed payment for a course.
// At most one completed order may exist per (buyer, course) pair; orders are
// immutable once written.
type Order struct {
	ID              string
	BuyerID         string
	CourseID        string
	PaymentIntentID string
	Amount          int64
	Status          OrderStatus
	CreatedAt       time.Time
}
