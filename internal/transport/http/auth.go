package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/anshxhhh/coursehaven/internal/app"
	"github.com/anshxhhh/coursehaven/internal/domain"
)

// TokenVerifier is the minimal interface handlers need to check bearer tokens.
type TokenVerifier interface {
	VerifyToken(token string) (app.AuthClaims, error)
}

// bearerClaims extracts and verifies the Authorization header. The resolved
// claims are passed to services explicitly; nothing is stored in globals.
func bearerClaims(r *http.Request, verifier TokenVerifier) (app.AuthClaims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return app.AuthClaims{}, domain.ErrInvalidToken
	}
	return verifier.VerifyToken(token)
}

// IdentityHandlers serves signup and login.
type IdentityHandlers interface {
	Signup(ctx context.Context, in app.SignupInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (string, domain.User, error)
}

// HandleSignup returns an HTTP handler for user registration. Admin accounts
// are created through the admin route, which sets admin=true.
func HandleSignup(svc IdentityHandlers, admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req signupRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		user, err := svc.Signup(r.Context(), app.SignupInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Admin:     admin,
		})
		if err != nil {
			switch err {
			case domain.ErrEmailRequired:
				writeError(w, http.StatusBadRequest, codeEmailRequired, err.Error())
			case domain.ErrPasswordTooShort:
				writeError(w, http.StatusBadRequest, codePasswordTooShort, err.Error())
			case domain.ErrEmailTaken:
				writeError(w, http.StatusConflict, codeEmailTaken, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toUserResponse(user))
	}
}

// HandleLogin returns an HTTP handler that exchanges credentials for a token.
func HandleLogin(svc IdentityHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		token, user, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch err {
			case domain.ErrInvalidCredentials:
				writeError(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := loginResponse{
			Token: token,
			User:  toUserResponse(user),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Admin:     user.Admin,
		CreatedAt: user.CreatedAt,
	}
}
