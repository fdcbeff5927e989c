// Package services – ShopService
//
// This file implements the ShopService, which serves the public shop
// directory and per-shop detail pages through the result cache, and applies
// profile and open/closed updates with the matching invalidations. Every
// write invalidates before returning, so a read that follows a write never
// sees the stale entry.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/cache"
	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// DetailReviewLimit caps how many recent reviews ride along in the shop
// detail bundle.
const DetailReviewLimit = 20

// ShopRepo defines the repository contract required by ShopService.
type ShopRepo interface {
	ListShopsWithLocation(ctx context.Context, db *gorm.DB) ([]domain.Shopkeeper, error)
	GetShopDetail(ctx context.Context, db *gorm.DB, id uint, reviewLimit int) (*repo.ShopDetail, error)
	UpdateShopProfile(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error
	UpdateShopOpenStatus(ctx context.Context, db *gorm.DB, id uint, isOpen bool) error
}

// ShopService provides the cached shop directory and shop profile writes.
type ShopService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the shop repository used by this service.
	Repo ShopRepo
	// Cache fronts the directory and detail reads.
	Cache cache.Store
	// TTLs holds listing/detail expirations from configuration.
	TTLs cache.TTLs
}

// NewShopService constructs a ShopService.
func NewShopService(db *gorm.DB, r ShopRepo, store cache.Store, ttls cache.TTLs) *ShopService {
	return &ShopService{DB: db, Repo: r, Cache: store, TTLs: ttls}
}

// ListShops returns every shop with a location, served from the cache when a
// fresh entry exists.
func (s *ShopService) ListShops(ctx context.Context) ([]domain.Shopkeeper, error) {
	return cache.GetOrFetch(ctx, s.Cache, cache.KeyShops, s.TTLs.Listing,
		func(ctx context.Context) ([]domain.Shopkeeper, error) {
			return s.Repo.ListShopsWithLocation(ctx, s.DB)
		})
}

// GetShopDetail returns the detail bundle for one shop, cache-fronted with
// the longer detail TTL. Missing shops map to ErrShopNotFound.
func (s *ShopService) GetShopDetail(ctx context.Context, shopID uint) (*repo.ShopDetail, error) {
	d, err := cache.GetOrFetch(ctx, s.Cache, cache.KeyShopDetail(shopID), s.TTLs.Detail,
		func(ctx context.Context) (*repo.ShopDetail, error) {
			return s.Repo.GetShopDetail(ctx, s.DB, shopID, DetailReviewLimit)
		})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return d, nil
}

// UpdateProfileInput carries the editable shop profile fields. Nil pointers
// mean "leave unchanged".
type UpdateProfileInput struct {
	ShopName    *string
	Category    *string
	Village     *string
	City        *string
	Latitude    *float64
	Longitude   *float64
	OwnerPhoto  *string
	ShopPhoto   *string
	OpeningTime *string
	ClosingTime *string
}

// UpdateProfile applies the provided profile changes and invalidates every
// cache entry derived from the shop: the directory, the shop's detail
// bundle, and (when coordinates changed) its memoized distances. Coordinates
// move as a pair and are range-checked before anything is written.
func (s *ShopService) UpdateProfile(ctx context.Context, shopID uint, in UpdateProfileInput) error {
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return geo.ErrNotFinite
	}
	if in.Latitude != nil {
		if err := geo.ValidateCoordinates(*in.Latitude, *in.Longitude); err != nil {
			return err
		}
	}

	updates := map[string]any{}
	setStr := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	setStr("category", in.Category)
	setStr("village", in.Village)
	setStr("city", in.City)
	setStr("owner_photo", in.OwnerPhoto)
	setStr("shop_photo", in.ShopPhoto)
	setStr("opening_time", in.OpeningTime)
	setStr("closing_time", in.ClosingTime)
	if in.ShopName != nil {
		updates["shop_name"] = titleCaser.String(strings.TrimSpace(*in.ShopName))
	}
	locationChanged := in.Latitude != nil || in.Longitude != nil
	if in.Latitude != nil {
		updates["latitude"] = *in.Latitude
	}
	if in.Longitude != nil {
		updates["longitude"] = *in.Longitude
	}

	if err := s.Repo.UpdateShopProfile(ctx, s.DB, shopID, updates); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrShopNotFound
		}
		return err
	}

	s.Cache.Invalidate(ctx, cache.KeyShops)
	s.Cache.Invalidate(ctx, cache.KeyShopDetail(shopID))
	if locationChanged {
		// Every memoized pair involving this shop is stale now.
		s.Cache.InvalidatePrefix(ctx, cache.PrefixDistance)
	}
	return nil
}

// SetOpenStatus flips the shop's open flag and invalidates the directory and
// the shop's detail entry.
func (s *ShopService) SetOpenStatus(ctx context.Context, shopID uint, isOpen bool) error {
	if err := s.Repo.UpdateShopOpenStatus(ctx, s.DB, shopID, isOpen); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrShopNotFound
		}
		return err
	}
	s.Cache.Invalidate(ctx, cache.KeyShops)
	s.Cache.Invalidate(ctx, cache.KeyShopDetail(shopID))
	return nil
}
