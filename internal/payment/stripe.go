package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway adapts the Stripe payment-intents API to the application's
// PaymentGateway port. Stripe remains the source of truth for intent state;
// nothing here is cached or persisted.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return domain.PaymentIntent{}, classifyStripeErr(err)
	}
	return fromStripeIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return domain.PaymentIntent{}, classifyStripeErr(err)
	}
	return fromStripeIntent(pi), nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) domain.PaymentIntent {
	return domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       mapIntentStatus(pi),
	}
}

func mapIntentStatus(pi *stripe.PaymentIntent) domain.IntentStatus {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.IntentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return domain.IntentStatusCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		// Stripe rolls a declined confirmation back to requires_payment_method
		// and records the decline in LastPaymentError.
		if pi.LastPaymentError != nil {
			return domain.IntentStatusFailed
		}
		return domain.IntentStatusRequiresConfirmation
	default:
		return domain.IntentStatusRequiresConfirmation
	}
}

// classifyStripeErr separates transport faults (retryable, the processor may
// never have seen the request) from processor-side rejections (not retryable
// as-is).
func classifyStripeErr(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if stripeErr.HTTPStatusCode >= 500 || stripeErr.HTTPStatusCode == 429 {
		return fmt.Errorf("%w: %s", domain.ErrGatewayUnavailable, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %s", domain.ErrGatewayRejected, stripeErr.Msg)
}
