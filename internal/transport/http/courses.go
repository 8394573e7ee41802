package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anshxhhh/coursehaven/internal/app"
	"github.com/anshxhhh/coursehaven/internal/domain"
)

// CatalogReader is the minimal interface for public catalog reads.
type CatalogReader interface {
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
}

// PurchaseInitiator starts a purchase and returns the gateway client secret.
type PurchaseInitiator interface {
	InitiatePurchase(ctx context.Context, buyerID, courseID string) (app.InitiatePurchaseResult, error)
}

// AccessChecker gates course content behind a completed order.
type AccessChecker interface {
	CanAccess(ctx context.Context, buyerID, courseID string) (bool, error)
}

// HandleListCourses returns an HTTP handler for the public course list.
func HandleListCourses(catalog CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		courses, err := catalog.ListCourses(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]courseResponse, 0, len(courses))
		for _, course := range courses {
			resp = append(resp, toCourseResponse(course))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleCourse routes /courses/{id}, /courses/{id}/buy and
// /courses/{id}/content.
func HandleCourse(catalog CatalogReader, purchases PurchaseInitiator, access AccessChecker, verifier TokenVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, action, ok := parseCoursePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			handleGetCourse(w, r, catalog, courseID)
		case "buy":
			handleBuyCourse(w, r, purchases, verifier, courseID)
		case "content":
			handleCourseContent(w, r, catalog, access, verifier, courseID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleGetCourse(w http.ResponseWriter, r *http.Request, catalog CatalogReader, courseID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	course, err := catalog.GetCourse(r.Context(), courseID)
	if err != nil {
		switch err {
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		case domain.ErrCourseNotFound:
			writeError(w, http.StatusNotFound, codeCourseNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toCourseResponse(course))
}

func handleBuyCourse(w http.ResponseWriter, r *http.Request, purchases PurchaseInitiator, verifier TokenVerifier, courseID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	claims, err := bearerClaims(r, verifier)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or missing token")
		return
	}

	res, err := purchases.InitiatePurchase(r.Context(), claims.UserID, courseID)
	if err != nil {
		switch err {
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		case domain.ErrCourseNotFound:
			writeError(w, http.StatusNotFound, codeCourseNotFound, err.Error())
		case domain.ErrBuyerNotFound:
			writeError(w, http.StatusUnauthorized, codeBuyerNotFound, err.Error())
		case domain.ErrAlreadyPurchased:
			writeError(w, http.StatusBadRequest, codeAlreadyPurchased, err.Error())
		default:
			switch {
			case errors.Is(err, domain.ErrGatewayUnavailable):
				writeError(w, http.StatusServiceUnavailable, codeGatewayUnavailable, domain.ErrGatewayUnavailable.Error())
			case errors.Is(err, domain.ErrGatewayRejected):
				writeError(w, http.StatusBadGateway, codeGatewayRejected, domain.ErrGatewayRejected.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
		}
		return
	}

	resp := buyCourseResponse{
		Course:          toCourseResponse(res.Course),
		PaymentIntentID: res.PaymentIntentID,
		ClientSecret:    res.ClientSecret,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func handleCourseContent(w http.ResponseWriter, r *http.Request, catalog CatalogReader, access AccessChecker, verifier TokenVerifier, courseID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	claims, err := bearerClaims(r, verifier)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or missing token")
		return
	}

	allowed, err := access.CanAccess(r.Context(), claims.UserID, courseID)
	if err != nil {
		switch err {
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, codeForbidden, "course not purchased")
		return
	}

	course, err := catalog.GetCourse(r.Context(), courseID)
	if err != nil {
		switch err {
		case domain.ErrCourseNotFound:
			writeError(w, http.StatusNotFound, codeCourseNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toCourseResponse(course))
}

func parseCoursePath(path string) (courseID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "courses" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	return parts[1], parts[2], true
}

type courseResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type buyCourseResponse struct {
	Course          courseResponse `json:"course"`
	PaymentIntentID string         `json:"payment_intent_id"`
	ClientSecret    string         `json:"client_secret"`
}

func toCourseResponse(course domain.Course) courseResponse {
	return courseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price,
		ImageURL:    course.ImageURL,
		CreatedAt:   course.CreatedAt,
	}
}
