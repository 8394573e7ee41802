package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/anshxhhh/coursehaven/internal/app"
	"github.com/anshxhhh/coursehaven/internal/domain"
)

// CatalogAdmin is the minimal interface for course management.
type CatalogAdmin interface {
	CreateCourse(ctx context.Context, in app.CreateCourseInput) (domain.Course, error)
	UpdateCourse(ctx context.Context, in app.UpdateCourseInput) (domain.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
}

// HandleAdminCourses serves POST and GET on /admin/courses. Both require a
// token with the admin claim.
func HandleAdminCourses(catalog CatalogAdmin, verifier TokenVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, verifier) {
			return
		}

		switch r.Method {
		case http.MethodPost:
			handleAdminCreateCourse(w, r, catalog)
		case http.MethodGet:
			handleAdminListCourses(w, r, catalog)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminCourse serves GET, PUT and DELETE on /admin/courses/{id}.
func HandleAdminCourse(catalog CatalogAdmin, verifier TokenVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, verifier) {
			return
		}

		courseID, ok := parseAdminCoursePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			handleAdminGetCourse(w, r, catalog, courseID)
		case http.MethodPut:
			handleAdminUpdateCourse(w, r, catalog, courseID)
		case http.MethodDelete:
			handleAdminDeleteCourse(w, r, catalog, courseID)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// requireAdmin writes the error response itself when the caller is not an
// admin; handlers only continue when it returns true.
func requireAdmin(w http.ResponseWriter, r *http.Request, verifier TokenVerifier) bool {
	claims, err := bearerClaims(r, verifier)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or missing token")
		return false
	}
	if !claims.Admin {
		writeError(w, http.StatusForbidden, codeForbidden, "admin access required")
		return false
	}
	return true
}

func handleAdminCreateCourse(w http.ResponseWriter, r *http.Request, catalog CatalogAdmin) {
	var req courseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	course, err := catalog.CreateCourse(r.Context(), app.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toCourseResponse(course))
}

func handleAdminListCourses(w http.ResponseWriter, r *http.Request, catalog CatalogAdmin) {
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

func handleAdminGetCourse(w http.ResponseWriter, r *http.Request, catalog CatalogAdmin, courseID string) {
	course, err := catalog.GetCourse(r.Context(), courseID)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toCourseResponse(course))
}

func handleAdminUpdateCourse(w http.ResponseWriter, r *http.Request, catalog CatalogAdmin, courseID string) {
	var req courseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	course, err := catalog.UpdateCourse(r.Context(), app.UpdateCourseInput{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toCourseResponse(course))
}

func handleAdminDeleteCourse(w http.ResponseWriter, r *http.Request, catalog CatalogAdmin, courseID string) {
	if err := catalog.DeleteCourse(r.Context(), courseID); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
	case errors.Is(err, domain.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, codeTitleRequired, domain.ErrTitleRequired.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, domain.ErrInvalidPrice.Error())
	case errors.Is(err, domain.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, codeCourseNotFound, domain.ErrCourseNotFound.Error())
	case errors.Is(err, domain.ErrCourseInUse):
		writeError(w, http.StatusConflict, codeCourseInUse, domain.ErrCourseInUse.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func parseAdminCoursePath(path string) (courseID string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "admin" || parts[1] != "courses" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

type courseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
}
