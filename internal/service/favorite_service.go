package service

import (
	"context"

	"modaix-api/internal/repository"

	"github.com/google/uuid"
)

// FavoriteService defines the interface for favorites business logic
type FavoriteService interface {
	List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
}

// NewFavoriteService creates a new instance of FavoriteService
func NewFavoriteService(favoriteRepo repository.FavoriteRepository) FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo}
}

func (s *favoriteService) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.favoriteRepo.ListProductIDs(ctx, userID)
}

// Add and Remove are both idempotent, so toggling twice restores the
// original favorited state
func (s *favoriteService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	return s.favoriteRepo.Add(ctx, userID, productID)
}

func (s *favoriteService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.favoriteRepo.Remove(ctx, userID, productID)
}
