// Package services – DistanceService
//
// This file implements the DistanceService, which answers "how far is this
// shop?" for a single shop or a batch. Computed pairs are memoized in the
// result cache with no per-entry TTL; coordinates rarely move, and the
// sweeper clears the whole distance keyspace periodically. Batch evaluation
// never fails wholesale: per-item problems (unknown shop, unset or invalid
// coordinates) are reported inline on that item.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/cache"
	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// DistanceRepo defines the repository contract required by DistanceService.
type DistanceRepo interface {
	GetShop(ctx context.Context, db *gorm.DB, id uint) (*domain.Shopkeeper, error)
	ListShopsWithLocation(ctx context.Context, db *gorm.DB) ([]domain.Shopkeeper, error)
}

// DistanceService evaluates origin-to-shop distances with memoization.
type DistanceService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo resolves shops and their coordinates.
	Repo DistanceRepo
	// Cache memoizes computed pairs under the distance keyspace.
	Cache cache.Store
}

// NewDistanceService constructs a DistanceService.
func NewDistanceService(db *gorm.DB, r DistanceRepo, store cache.Store) *DistanceService {
	return &DistanceService{DB: db, Repo: r, Cache: store}
}

// DistanceResult is the outcome for one shop.
type DistanceResult struct {
	ShopID    uint     `json:"shop_id"`
	ShopName  string   `json:"shop_name,omitempty"`
	Km        *float64 `json:"distance_km"`
	Formatted string   `json:"distance,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// ErrShopHasNoLocation is returned when the shop exists but has not set its
// coordinates yet.
var ErrShopHasNoLocation = errors.New("shop has no location")

// ToShop returns the distance from origin to one shop. The origin is
// validated before the shop is resolved; shop coordinate problems surface as
// ErrShopHasNoLocation or the geo validation error.
func (s *DistanceService) ToShop(ctx context.Context, origin geo.Point, shopID uint) (*DistanceResult, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	shop, err := s.Repo.GetShop(ctx, s.DB, shopID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}

	res, err := s.evaluate(ctx, origin, shop)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// evaluate computes (or recalls) the distance from origin to a resolved
// shop. Callers have already validated the origin.
func (s *DistanceService) evaluate(ctx context.Context, origin geo.Point, shop *domain.Shopkeeper) (*DistanceResult, error) {
	if shop.Latitude == nil || shop.Longitude == nil {
		return nil, ErrShopHasNoLocation
	}

	key := cache.KeyDistance(origin.Lat, origin.Lon, shop.ID)
	km, err := cache.GetOrFetch(ctx, s.Cache, key, 0, func(ctx context.Context) (float64, error) {
		return geo.Distance(origin.Lat, origin.Lon, *shop.Latitude, *shop.Longitude)
	})
	if err != nil {
		return nil, err
	}

	return &DistanceResult{
		ShopID:    shop.ID,
		ShopName:  shop.ShopName,
		Km:        &km,
		Formatted: geo.FormatDistance(km),
	}, nil
}

// ToShops evaluates the origin against a set of shops, preserving input
// order. Shops are fetched once; unknown IDs, missing coordinates, and
// invalid stored coordinates are reported inline with a nil distance. An
// invalid origin still fails the whole call, since no item could succeed.
func (s *DistanceService) ToShops(ctx context.Context, origin geo.Point, shopIDs []uint) ([]DistanceResult, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if len(shopIDs) == 0 {
		return []DistanceResult{}, nil
	}

	shops, err := s.Repo.ListShopsWithLocation(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*domain.Shopkeeper, len(shops))
	for i := range shops {
		byID[shops[i].ID] = &shops[i]
	}

	out := make([]DistanceResult, 0, len(shopIDs))
	for _, id := range shopIDs {
		shop, ok := byID[id]
		if !ok {
			out = append(out, DistanceResult{ShopID: id, Error: ErrShopNotFound.Error()})
			continue
		}
		res, err := s.evaluate(ctx, origin, shop)
		if err != nil {
			out = append(out, DistanceResult{ShopID: id, ShopName: shop.ShopName, Error: err.Error()})
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}
