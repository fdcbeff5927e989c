// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model: synonym-expanded search, the special-offers listing, and CRUD
// scoped to the owning shop.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: the search function receives the already
// expanded term list from the service layer and only composes the query.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
)

// SearchRow is one search hit: a product joined with the shop columns the
// results list renders. Distance is computed later by the service layer when
// the caller supplied coordinates.
type SearchRow struct {
	ProductID      uint     `json:"product_id"`
	ProductName    string   `json:"product_name"`
	Price          float64  `json:"price"`
	Image          string   `json:"image,omitempty"`
	InStock        bool     `json:"in_stock"`
	IsBestSeller   bool     `json:"is_best_seller"`
	IsSpecialOffer bool     `json:"is_special_offer"`
	OfferMessage   string   `json:"offer_message,omitempty"`
	OriginalPrice  *float64 `json:"original_price,omitempty"`
	ShopID         uint     `json:"shop_id"`
	ShopName       string   `json:"shop_name"`
	Category       string   `json:"category"`
	Village        string   `json:"village,omitempty"`
	City           string   `json:"city,omitempty"`
	IsOpen         bool     `json:"is_open"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

const searchColumns = `products.id as product_id, products.name as product_name,
products.price, products.image, products.in_stock, products.is_best_seller,
products.is_special_offer, products.offer_message, products.original_price,
shopkeepers.id as shop_id, shopkeepers.shop_name, shopkeepers.category,
shopkeepers.village, shopkeepers.city, shopkeepers.is_open,
shopkeepers.latitude, shopkeepers.longitude`

// SearchProducts returns products whose name, shop name, or shop category
// matches ANY of the expanded terms (case-insensitive substring), paginated
// by offset/limit. Terms come pre-expanded from the search service; an empty
// term list returns an empty slice without touching the database.
func SearchProducts(ctx context.Context, db *gorm.DB, terms []string, offset, limit int) ([]SearchRow, error) {
	out := []SearchRow{}
	if len(terms) == 0 {
		return out, nil
	}

	q := db.WithContext(ctx).
		Model(&domain.Product{}).
		Select(searchColumns).
		Joins("JOIN shopkeepers ON shopkeepers.id = products.shop_id")

	// One LIKE disjunction over the three searchable columns per term.
	cond := db.Session(&gorm.Session{NewDB: true})
	for _, t := range terms {
		pat := "%" + t + "%"
		cond = cond.Or(
			db.Session(&gorm.Session{NewDB: true}).
				Where("products.name LIKE ?", pat).
				Or("shopkeepers.shop_name LIKE ?", pat).
				Or("shopkeepers.category LIKE ?", pat),
		)
	}
	q = q.Where(cond)

	err := q.
		Order("products.is_best_seller desc, products.id asc").
		Offset(offset).
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// ListSpecialOffers returns every product flagged as a special offer joined
// with its shop, cheapest first, capped at limit rows.
func ListSpecialOffers(ctx context.Context, db *gorm.DB, limit int) ([]SearchRow, error) {
	out := []SearchRow{}
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Select(searchColumns).
		Joins("JOIN shopkeepers ON shopkeepers.id = products.shop_id").
		Where("products.is_special_offer = ?", true).
		Order("products.price asc").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// GetProduct fetches a product by ID, or ErrNotFound.
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct inserts a new catalog row for a shop.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return db.WithContext(ctx).Create(p).Error
}

// UpdateProduct applies the given column updates to a product owned by
// shopID. Scoping the WHERE to the shop enforces ownership at the SQL level.
// If no rows are affected it returns ErrNotFound.
func UpdateProduct(ctx context.Context, db *gorm.DB, id, shopID uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND shop_id = ?", id, shopID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProduct removes a product owned by shopID. If no rows are affected
// it returns ErrNotFound.
func DeleteProduct(ctx context.Context, db *gorm.DB, id, shopID uint) error {
	res := db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListShopProducts returns a shop's full catalog, best sellers first then
// newest.
func ListShopProducts(ctx context.Context, db *gorm.DB, shopID uint) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("is_best_seller desc, created_at desc").
		Find(&out).Error
	return out, err
}
