// Package services – ReviewService
//
// This file implements the ReviewService, which records buyer ratings of
// shops and serves a shop's review list. One review per buyer per shop is
// enforced by the repository's unique index; the aggregate rating rides in
// the shop detail bundle, so writes invalidate that cache entry.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/cache"
	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// ReviewRepo defines the repository contract required by ReviewService.
type ReviewRepo interface {
	CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error
	ListShopReviews(ctx context.Context, db *gorm.DB, shopID uint, limit int) ([]domain.Review, error)
	GetShop(ctx context.Context, db *gorm.DB, id uint) (*domain.Shopkeeper, error)
}

// ReviewService provides shop review reads and writes.
type ReviewService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the review repository used by this service.
	Repo ReviewRepo
	// Cache holds the shop detail bundles invalidated on new reviews.
	Cache cache.Store
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB, r ReviewRepo, store cache.Store) *ReviewService {
	return &ReviewService{DB: db, Repo: r, Cache: store}
}

// Create records a buyer's rating of a shop. Ratings outside 1..5 are
// rejected, as is a second review of the same shop by the same buyer.
func (s *ReviewService) Create(ctx context.Context, shopID, userID uint, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.Repo.GetShop(ctx, s.DB, shopID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}

	r := &domain.Review{
		ShopID:  shopID,
		UserID:  userID,
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
	}
	if err := s.Repo.CreateReview(ctx, s.DB, r); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	// The detail bundle carries the aggregate rating.
	s.Cache.Invalidate(ctx, cache.KeyShopDetail(shopID))
	return r, nil
}

// List returns the newest reviews for a shop, capped at limit (all when
// limit <= 0). Missing shops map to ErrShopNotFound.
func (s *ReviewService) List(ctx context.Context, shopID uint, limit int) ([]domain.Review, error) {
	if _, err := s.Repo.GetShop(ctx, s.DB, shopID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return s.Repo.ListShopReviews(ctx, s.DB, shopID, limit)
}
