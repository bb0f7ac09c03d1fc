package user

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/fairprice-backend/internal/data/repos/testutil"
	"github.com/yungbote/fairprice-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*domain.User{
		{ExternalID: "user_2abc", Role: domain.RoleAdmin, OnboardingComplete: true},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	got, err := repo.GetByExternalID(ctx, tx, " user_2abc ")
	if err != nil {
		t.Fatalf("GetByExternalID: %v", err)
	}
	if got.ID != created[0].ID || !got.IsAdmin() {
		t.Fatalf("GetByExternalID: unexpected result: %+v", got)
	}

	if _, err := repo.GetByExternalID(ctx, tx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByExternalID (missing): expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByExternalID(ctx, tx, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByExternalID (empty): expected ErrNotFound, got %v", err)
	}
}
