package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/anshxhhh/coursehaven/internal/testutil"
	"github.com/google/uuid"
)

func TestUserRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewUserRepository(pool)

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        "ada@example.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
		Admin:        true,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != user.ID || !byEmail.Admin {
		t.Fatalf("expected stored user, got %+v", byEmail)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Email != user.Email {
		t.Fatalf("expected email %s, got %s", user.Email, byID.Email)
	}

	dup := user
	dup.ID = uuid.NewString()
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrBuyerNotFound) {
		t.Fatalf("expected ErrBuyerNotFound, got %v", err)
	}
	if _, err := repo.GetUserByID(ctx, uuid.NewString()); !errors.Is(err, domain.ErrBuyerNotFound) {
		t.Fatalf("expected ErrBuyerNotFound, got %v", err)
	}
	if _, err := repo.GetUserByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
