package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/anshxhhh/coursehaven/internal/app"
	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/anshxhhh/coursehaven/internal/metrics"
)

// PurchaseFinalizer reconciles reported payment outcomes and lists orders.
type PurchaseFinalizer interface {
	FinalizePurchase(ctx context.Context, in app.FinalizePurchaseInput) (app.FinalizePurchaseResult, error)
	ListOrders(ctx context.Context, buyerID string) ([]domain.Order, error)
}

// HandleOrders serves POST /orders (finalize a purchase) and GET /orders
// (the buyer's purchase history). The buyer identity always comes from the
// verified token, never from the request body.
func HandleOrders(svc PurchaseFinalizer, verifier TokenVerifier, m *metrics.ServerMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := bearerClaims(r, verifier)
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or missing token")
			return
		}

		switch r.Method {
		case http.MethodGet:
			handleListOrders(w, r, svc, claims.UserID)
		case http.MethodPost:
			handleFinalizeOrder(w, r, svc, m, claims.UserID)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func handleListOrders(w http.ResponseWriter, r *http.Request, svc PurchaseFinalizer, buyerID string) {
	orders, err := svc.ListOrders(r.Context(), buyerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func handleFinalizeOrder(w http.ResponseWriter, r *http.Request, svc PurchaseFinalizer, m *metrics.ServerMetrics, buyerID string) {
	var req finalizeOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.CourseID == "" || req.PaymentIntentID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "course_id and payment_intent_id are required")
		return
	}

	res, err := svc.FinalizePurchase(r.Context(), app.FinalizePurchaseInput{
		BuyerID:         buyerID,
		CourseID:        req.CourseID,
		PaymentIntentID: req.PaymentIntentID,
		ReportedAmount:  req.Amount,
		ReportedStatus:  req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
		case errors.Is(err, domain.ErrCourseNotFound):
			writeError(w, http.StatusNotFound, codeCourseNotFound, domain.ErrCourseNotFound.Error())
		case errors.Is(err, domain.ErrBuyerNotFound):
			writeError(w, http.StatusUnauthorized, codeBuyerNotFound, domain.ErrBuyerNotFound.Error())
		case errors.Is(err, domain.ErrPaymentNotVerified):
			writeError(w, http.StatusUnprocessableEntity, codePaymentNotVerified, domain.ErrPaymentNotVerified.Error())
		case errors.Is(err, domain.ErrAmountMismatch):
			writeError(w, http.StatusUnprocessableEntity, codeAmountMismatch, domain.ErrAmountMismatch.Error())
		case errors.Is(err, domain.ErrGatewayUnavailable):
			writeError(w, http.StatusServiceUnavailable, codeGatewayUnavailable, domain.ErrGatewayUnavailable.Error())
		case errors.Is(err, domain.ErrGatewayRejected):
			writeError(w, http.StatusBadGateway, codeGatewayRejected, domain.ErrGatewayRejected.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	if res.Created && m != nil {
		m.PurchasesCompleted.Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	if res.Created {
		w.WriteHeader(http.StatusCreated)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(toOrderResponse(res.Order))
}

type finalizeOrderRequest struct {
	CourseID        string `json:"course_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Status          string `json:"status"`
}

type orderResponse struct {
	ID              string    `json:"id"`
	BuyerID         string    `json:"buyer_id"`
	CourseID        string    `json:"course_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	Amount          int64     `json:"amount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func toOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:              order.ID,
		BuyerID:         order.BuyerID,
		CourseID:        order.CourseID,
		PaymentIntentID: order.PaymentIntentID,
		Amount:          order.Amount,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
	}
}
