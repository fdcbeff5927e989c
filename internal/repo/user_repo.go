// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the two account
// tables, users (buyers) and shopkeepers.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique constraint violations surface as ErrDuplicate.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique constraint violation, most commonly a
// mobile number that is already registered.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation detects UNIQUE constraint failures across the error
// shapes the pure-Go sqlite driver produces.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateUser inserts a new buyer account. It returns ErrDuplicate when the
// mobile number is already taken within the users table.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// CreateShopkeeper inserts a new shopkeeper account with its shop profile.
// It returns ErrDuplicate when the mobile number is already taken within the
// shopkeepers table.
func CreateShopkeeper(ctx context.Context, db *gorm.DB, s *domain.Shopkeeper) error {
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindUserByMobile fetches a buyer by mobile number, or ErrNotFound.
func FindUserByMobile(ctx context.Context, db *gorm.DB, mobile string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("mobile = ?", mobile).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindShopkeeperByMobile fetches a shopkeeper by mobile number, or ErrNotFound.
func FindShopkeeperByMobile(ctx context.Context, db *gorm.DB, mobile string) (*domain.Shopkeeper, error) {
	var s domain.Shopkeeper
	err := db.WithContext(ctx).Where("mobile = ?", mobile).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MobileExists reports whether a mobile number is registered in either
// account table. Login is a single endpoint over both tables, so uniqueness
// has to span them; the service layer calls this before creating accounts.
func MobileExists(ctx context.Context, db *gorm.DB, mobile string) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.User{}).
		Where("mobile = ?", mobile).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if err := db.WithContext(ctx).Model(&domain.Shopkeeper{}).
		Where("mobile = ?", mobile).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetUser fetches a buyer by ID, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
