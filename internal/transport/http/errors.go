package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeCourseNotFound     = "course_not_found"
	codeBuyerNotFound      = "buyer_not_found"
	codeAlreadyPurchased   = "already_purchased"
	codeGatewayUnavailable = "gateway_unavailable"
	codeGatewayRejected    = "gateway_rejected"
	codePaymentNotVerified = "payment_not_verified"
	codeAmountMismatch     = "amount_mismatch"
	codeTitleRequired      = "title_required"
	codeInvalidPrice       = "invalid_price"
	codeCourseInUse        = "course_in_use"
	codeEmailRequired      = "email_required"
	codePasswordTooShort   = "password_too_short"
	codeEmailTaken         = "email_taken"
	codeInvalidCredentials = "invalid_credentials"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
