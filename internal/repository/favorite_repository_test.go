package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestFavorites(t *testing.T) {
	repo := NewFavoriteRepository(testDB)
	ctx := context.Background()

	user, product := seedOrderFixture(t, map[string]int{"M": 1})

	t.Run("empty list is empty, not nil", func(t *testing.T) {
		ids, err := repo.ListProductIDs(ctx, user.ID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if ids == nil || len(ids) != 0 {
			t.Errorf("ids = %v, want empty slice", ids)
		}
	})

	t.Run("add is idempotent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			if err := repo.Add(ctx, user.ID, product.ID); err != nil {
				t.Fatalf("add %d failed: %v", i, err)
			}
		}
		ids, err := repo.ListProductIDs(ctx, user.ID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(ids) != 1 || ids[0] != product.ID {
			t.Errorf("ids = %v, want exactly one entry", ids)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if err := repo.Remove(ctx, user.ID, product.ID); err != nil {
				t.Fatalf("remove %d failed: %v", i, err)
			}
		}
		ids, err := repo.ListProductIDs(ctx, user.ID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("ids = %v, want empty after remove", ids)
		}
	})

	t.Run("deleting the product clears its favorites", func(t *testing.T) {
		if err := repo.Add(ctx, user.ID, product.ID); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := NewProductRepository(testDB).Delete(ctx, product.ID); err != nil {
			t.Fatalf("product delete failed: %v", err)
		}
		ids, err := repo.ListProductIDs(ctx, user.ID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("ids = %v, want favorites cascaded away", ids)
		}
	})

	t.Run("favorites are per user", func(t *testing.T) {
		otherUser, otherProduct := seedOrderFixture(t, map[string]int{"M": 1})
		if err := repo.Add(ctx, otherUser.ID, otherProduct.ID); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		ids, err := repo.ListProductIDs(ctx, user.ID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		for _, id := range ids {
			if id == otherProduct.ID {
				t.Error("user sees another user's favorite")
			}
		}
	})

	t.Run("favoriting an unknown product fails", func(t *testing.T) {
		if err := repo.Add(ctx, user.ID, uuid.New()); err == nil {
			t.Error("expected foreign key violation for unknown product")
		}
	})
}
