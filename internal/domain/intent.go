package domain

type IntentStatus string

const (
	IntentStatusRequiresConfirmation IntentStatus = "requires_confirmation"
	IntentStatusSucceeded            IntentStatus = "succeeded"
	IntentStatusFailed               IntentStatus = "failed"
	IntentStatusCanceled             IntentStatus = "canceled"
)

// PaymentIntent mirrors the gateway-side charge attempt. The gateway is its
// source of truth; it is never persisted here.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       IntentStatus
}
