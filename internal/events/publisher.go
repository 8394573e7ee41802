package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/segmentio/kafka-go"
)

const orderCompletedTopic = "coursehaven.orders.completed"

// OrderCompleted is the message body published when a new order is recorded.
type OrderCompleted struct {
	OrderID         string    `json:"order_id"`
	BuyerID         string    `json:"buyer_id"`
	CourseID        string    `json:"course_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	Amount          int64     `json:"amount"`
	CreatedAt       time.Time `json:"created_at"`
}

// Publisher writes order events to Kafka. A publisher built from an empty
// broker list is disabled and must not be used; callers check Enabled first.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher parses a comma-separated broker list. With no brokers the
// returned publisher is disabled.
func NewPublisher(brokersCSV string) *Publisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        orderCompletedTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

func (p *Publisher) PublishOrderCompleted(ctx context.Context, order domain.Order) error {
	payload := OrderCompleted{
		OrderID:         order.ID,
		BuyerID:         order.BuyerID,
		CourseID:        order.CourseID,
		PaymentIntentID: order.PaymentIntentID,
		Amount:          order.Amount,
		CreatedAt:       order.CreatedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
