package domain

import "errors"

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrBuyerNotFound      = errors.New("buyer not found")
	ErrAlreadyPurchased   = errors.New("course already purchased")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected request")
	ErrPaymentNotVerified = errors.New("payment not verified")
	ErrAmountMismatch     = errors.New("reported amount does not match course price")
	ErrOrderExists        = errors.New("order already exists")
	ErrInvalidID          = errors.New("invalid id")
	ErrCourseInUse        = errors.New("course has recorded orders")
	ErrTitleRequired      = errors.New("course title required")
	ErrInvalidPrice       = errors.New("course price must be positive")
	ErrEmailRequired      = errors.New("email required")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)
