package app

import (
	"context"
	"errors"
	"time"

	"github.com/anshxhhh/coursehaven/internal/clock"
	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, userID string) (domain.User, error)
}

// IdentityService handles signup, login and bearer-token verification. The
// rest of the application never sees tokens; handlers verify them here and
// pass the resolved user id into the services explicitly.
type IdentityService struct {
	repo     UserRepository
	clock    clock.Clock
	secret   []byte
	tokenTTL time.Duration
}

const defaultTokenTTL = 24 * time.Hour
const minPasswordLength = 8

func NewIdentityService(repo UserRepository, clk clock.Clock, secret []byte, opts ...IdentityServiceOption) *IdentityService {
	svc := &IdentityService{
		repo:     repo,
		clock:    clk,
		secret:   secret,
		tokenTTL: defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type IdentityServiceOption func(*IdentityService)

// WithTokenTTL overrides the default token lifetime.
func WithTokenTTL(d time.Duration) IdentityServiceOption {
	return func(s *IdentityService) {
		if d > 0 {
			s.tokenTTL = d
		}
	}
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Admin     bool
}

func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	if in.Email == "" {
		return domain.User{}, domain.ErrEmailRequired
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Admin:        in.Admin,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *IdentityService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrBuyerNotFound) {
			return "", domain.User{}, domain.ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"admin": user.Admin,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", domain.User{}, err
	}

	user.PasswordHash = ""
	return signed, user, nil
}

type AuthClaims struct {
	UserID string
	Admin  bool
}

func (s *IdentityService) VerifyToken(tokenString string) (AuthClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return AuthClaims{}, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthClaims{}, domain.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return AuthClaims{}, domain.ErrInvalidToken
	}
	admin, _ := claims["admin"].(bool)

	return AuthClaims{UserID: sub, Admin: admin}, nil
}
