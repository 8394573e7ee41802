package app

import (
	"context"

	"github.com/anshxhhh/coursehaven/internal/domain"
)

// AccessService decides whether a buyer may consume a course. It holds no
// state of its own; the order ledger is the single source of truth.
type AccessService struct {
	ledger OrderLedger
}

func NewAccessService(ledger OrderLedger) *AccessService {
	return &AccessService{ledger: ledger}
}

func (s *AccessService) CanAccess(ctx context.Context, buyerID, courseID string) (bool, error) {
	if buyerID == "" || courseID == "" {
		return false, domain.ErrInvalidID
	}
	return s.ledger.HasCompletedOrder(ctx, buyerID, courseID)
}
