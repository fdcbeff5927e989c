// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the shop side
// of the Shopkeeper model: the public directory, the per-shop detail bundle,
// and profile/status updates.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
)

// ListShopsWithLocation returns every shop whose coordinates are set, ordered
// by shop name. Shops without a location are excluded because the directory
// is consumed by map and distance features.
func ListShopsWithLocation(ctx context.Context, db *gorm.DB) ([]domain.Shopkeeper, error) {
	var out []domain.Shopkeeper
	err := db.WithContext(ctx).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("shop_name asc").
		Find(&out).Error
	return out, err
}

// GetShop fetches a single shopkeeper row by ID, or ErrNotFound.
func GetShop(ctx context.Context, db *gorm.DB, id uint) (*domain.Shopkeeper, error) {
	var s domain.Shopkeeper
	err := db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateShopProfile applies the given column updates to a shopkeeper row.
// The service layer whitelists which columns may appear here. If no rows are
// affected it returns ErrNotFound.
func UpdateShopProfile(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Shopkeeper{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateShopOpenStatus flips the open/closed flag for a shop. If the shop
// does not exist it returns ErrNotFound.
func UpdateShopOpenStatus(ctx context.Context, db *gorm.DB, id uint, isOpen bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Shopkeeper{}).
		Where("id = ?", id).
		Update("is_open", isOpen)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ShopDetail bundles everything the shop page shows in one fetch: the shop
// profile, its catalog with best sellers first, the most recent reviews, and
// the aggregate rating.
type ShopDetail struct {
	Shop        domain.Shopkeeper `json:"shop"`
	Products    []domain.Product  `json:"products"`
	Reviews     []domain.Review   `json:"reviews"`
	AvgRating   float64           `json:"avg_rating"`
	ReviewCount int64             `json:"review_count"`
}

// GetShopDetail assembles the detail bundle for one shop. Products are
// ordered best sellers first then newest; reviews are the latest reviewLimit
// rows. Returns ErrNotFound when the shop does not exist.
func GetShopDetail(ctx context.Context, db *gorm.DB, id uint, reviewLimit int) (*ShopDetail, error) {
	shop, err := GetShop(ctx, db, id)
	if err != nil {
		return nil, err
	}

	products, err := ListShopProducts(ctx, db, id)
	if err != nil {
		return nil, err
	}

	reviews, err := ListShopReviews(ctx, db, id, reviewLimit)
	if err != nil {
		return nil, err
	}

	avg, count, err := ShopRating(ctx, db, id)
	if err != nil {
		return nil, err
	}

	return &ShopDetail{
		Shop:        *shop,
		Products:    products,
		Reviews:     reviews,
		AvgRating:   avg,
		ReviewCount: count,
	}, nil
}
