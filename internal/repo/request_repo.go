// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the product
// request/response workflow: buyers broadcast "who has X?" requests, and
// shopkeepers answer them within a limited window.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
)

// CreateRequest inserts a buyer's product request.
func CreateRequest(ctx context.Context, db *gorm.DB, r *domain.ProductRequest) error {
	return db.WithContext(ctx).Create(r).Error
}

// GetRequest fetches a product request by ID, or ErrNotFound.
func GetRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ProductRequest, error) {
	var r domain.ProductRequest
	err := db.WithContext(ctx).First(&r, id).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListPendingForShop returns pending requests created after cutoff that the
// given shop has not yet answered, newest first. Requests the shop already
// responded to (including declines) are excluded by the NOT EXISTS clause.
func ListPendingForShop(ctx context.Context, db *gorm.DB, shopID uint, cutoff time.Time) ([]domain.ProductRequest, error) {
	var out []domain.ProductRequest
	err := db.WithContext(ctx).
		Where("status = ?", domain.RequestStatusPending).
		Where("created_at > ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM request_responses WHERE request_responses.request_id = product_requests.id AND request_responses.shop_id = ?)", shopID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListUserRequests returns a buyer's own requests, newest first.
func ListUserRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ProductRequest, error) {
	var out []domain.ProductRequest
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CloseRequest marks a buyer's request closed, enforcing ownership. If no
// rows are affected it returns ErrNotFound.
func CloseRequest(ctx context.Context, db *gorm.DB, id, userID uint) error {
	res := db.WithContext(ctx).
		Model(&domain.ProductRequest{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", domain.RequestStatusClosed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateResponse inserts a shop's answer to a request. The unique index on
// (request_id, shop_id) makes a second answer from the same shop surface as
// ErrDuplicate.
func CreateResponse(ctx context.Context, db *gorm.DB, r *domain.RequestResponse) error {
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ResponseRow is one request response joined with the answering shop's
// public columns, as shown in the buyer's inbox.
type ResponseRow struct {
	ID          uint      `json:"id"`
	RequestID   uint      `json:"request_id"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	Image       string    `json:"image,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"timestamp"`
	ShopID      uint      `json:"shop_id"`
	ShopName    string    `json:"shop_name"`
	Village     string    `json:"village,omitempty"`
	City        string    `json:"city,omitempty"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
}

// ListResponsesForUser returns non-archived, non-declined responses to the
// buyer's requests, newest first. Declines (product_name = 'NO') only exist
// to stop re-showing the request to that shop and are never surfaced.
func ListResponsesForUser(ctx context.Context, db *gorm.DB, userID uint) ([]ResponseRow, error) {
	out := []ResponseRow{}
	err := db.WithContext(ctx).
		Model(&domain.RequestResponse{}).
		Select(`request_responses.id, request_responses.request_id,
request_responses.product_name, request_responses.price,
request_responses.image, request_responses.note, request_responses.created_at,
shopkeepers.id as shop_id, shopkeepers.shop_name, shopkeepers.village,
shopkeepers.city, shopkeepers.latitude, shopkeepers.longitude`).
		Joins("JOIN product_requests ON product_requests.id = request_responses.request_id").
		Joins("JOIN shopkeepers ON shopkeepers.id = request_responses.shop_id").
		Where("product_requests.user_id = ?", userID).
		Where("request_responses.is_archived = ?", false).
		Where("request_responses.product_name <> ?", "NO").
		Order("request_responses.created_at desc").
		Scan(&out).Error
	return out, err
}

// ArchiveResponse hides a response from the buyer's inbox, enforcing that the
// underlying request belongs to the buyer. If no rows are affected it returns
// ErrNotFound.
func ArchiveResponse(ctx context.Context, db *gorm.DB, responseID, userID uint) error {
	res := db.WithContext(ctx).
		Model(&domain.RequestResponse{}).
		Where("id = ? AND request_id IN (SELECT id FROM product_requests WHERE user_id = ?)", responseID, userID).
		Update("is_archived", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
