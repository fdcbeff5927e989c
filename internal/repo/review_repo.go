// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review
// model.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
)

// CreateReview inserts a buyer's rating of a shop. The unique index on
// (shop_id, user_id) makes a second review from the same buyer surface as
// ErrDuplicate.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListShopReviews returns the newest reviews for a shop, capped at limit.
// A limit <= 0 returns all of them.
func ListShopReviews(ctx context.Context, db *gorm.DB, shopID uint, limit int) ([]domain.Review, error) {
	var out []domain.Review
	q := db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ShopRating returns the average rating and review count for a shop. A shop
// with no reviews yields (0, 0, nil).
func ShopRating(ctx context.Context, db *gorm.DB, shopID uint) (avg float64, count int64, err error) {
	q := db.WithContext(ctx).Model(&domain.Review{}).Where("shop_id = ?", shopID)

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		Avg float64
	}
	if err = q.Select("AVG(rating) as avg").Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Avg, count, nil
}
