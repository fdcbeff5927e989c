// Package services – AuthService
//
// This file implements the AuthService, which manages account registration
// and login for both buyers and shopkeepers. Both account kinds share one
// login endpoint, so mobile uniqueness is enforced across the two tables
// before either row is created. Passwords are hashed with bcrypt; display
// names are title-cased on the way in.
//
// Service-level errors (ErrMobileTaken, ErrInvalidCredentials, ...) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/cache"
	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// mobileRE matches exactly ten digits.
var mobileRE = regexp.MustCompile(`^\d{10}$`)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 6

// AuthRepo defines the repository contract required by AuthService.
type AuthRepo interface {
	CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error
	CreateShopkeeper(ctx context.Context, db *gorm.DB, s *domain.Shopkeeper) error
	FindUserByMobile(ctx context.Context, db *gorm.DB, mobile string) (*domain.User, error)
	FindShopkeeperByMobile(ctx context.Context, db *gorm.DB, mobile string) (*domain.Shopkeeper, error)
	MobileExists(ctx context.Context, db *gorm.DB, mobile string) (bool, error)
}

// AuthService provides registration and login for buyers and shopkeepers.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the account repository used by this service.
	Repo AuthRepo
	// Cache is invalidated when a new shop appears in the directory.
	Cache cache.Store
	// BcryptCost controls password hashing cost (bcrypt.DefaultCost if 0).
	BcryptCost int
}

// NewAuthService constructs an AuthService with default hashing cost.
func NewAuthService(db *gorm.DB, r AuthRepo, store cache.Store) *AuthService {
	return &AuthService{DB: db, Repo: r, Cache: store, BcryptCost: bcrypt.DefaultCost}
}

// titleCaser title-cases display names ("ram kirana" -> "Ram Kirana").
var titleCaser = cases.Title(language.Und)

// RegisterUserInput carries buyer registration fields.
type RegisterUserInput struct {
	Name     string
	Mobile   string
	Password string
}

// RegisterUser creates a buyer account. It validates the mobile format,
// enforces cross-table mobile uniqueness, and stores a bcrypt hash.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterUserInput) (*domain.User, error) {
	mobile := strings.TrimSpace(in.Mobile)
	if err := s.checkCredentials(ctx, mobile, in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Name:         titleCaser.String(strings.TrimSpace(in.Name)),
		Mobile:       mobile,
		PasswordHash: string(hash),
	}
	if err := s.Repo.CreateUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrMobileTaken
		}
		return nil, err
	}
	return u, nil
}

// RegisterShopkeeperInput carries shopkeeper registration fields, including
// the initial shop profile.
type RegisterShopkeeperInput struct {
	Name      string
	Mobile    string
	Password  string
	ShopName  string
	Category  string
	Village   string
	City      string
	Latitude  *float64
	Longitude *float64
}

// RegisterShopkeeper creates a shopkeeper account with its shop profile.
// Coordinates are optional; if one is given, both must be, and they must be
// in range. The shop directory cache is invalidated so the new shop shows up
// without waiting out the listing TTL.
func (s *AuthService) RegisterShopkeeper(ctx context.Context, in RegisterShopkeeperInput) (*domain.Shopkeeper, error) {
	mobile := strings.TrimSpace(in.Mobile)
	if err := s.checkCredentials(ctx, mobile, in.Password); err != nil {
		return nil, err
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, geo.ErrNotFinite
	}
	if in.Latitude != nil {
		if err := geo.ValidateCoordinates(*in.Latitude, *in.Longitude); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return nil, err
	}
	sk := &domain.Shopkeeper{
		Name:         titleCaser.String(strings.TrimSpace(in.Name)),
		Mobile:       mobile,
		PasswordHash: string(hash),
		ShopName:     titleCaser.String(strings.TrimSpace(in.ShopName)),
		Category:     strings.TrimSpace(in.Category),
		Village:      strings.TrimSpace(in.Village),
		City:         strings.TrimSpace(in.City),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		IsOpen:       true,
	}
	if err := s.Repo.CreateShopkeeper(ctx, s.DB, sk); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrMobileTaken
		}
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, cache.KeyShops)
	}
	return sk, nil
}

// LoginResult is the outcome of a successful login: exactly one of User or
// Shopkeeper is set, and UserType says which.
type LoginResult struct {
	UserType   string             `json:"user_type"`
	User       *domain.User       `json:"user,omitempty"`
	Shopkeeper *domain.Shopkeeper `json:"shopkeeper,omitempty"`
}

// Login authenticates a mobile/password pair against both account tables,
// buyers first. Unknown mobiles and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, mobile, password string) (*LoginResult, error) {
	mobile = strings.TrimSpace(mobile)
	if !mobileRE.MatchString(mobile) {
		return nil, ErrInvalidCredentials
	}

	if u, err := s.Repo.FindUserByMobile(ctx, s.DB, mobile); err == nil {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return &LoginResult{UserType: domain.UserTypeBuyer, User: u}, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	sk, err := s.Repo.FindShopkeeperByMobile(ctx, s.DB, mobile)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(sk.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &LoginResult{UserType: domain.UserTypeShopkeeper, Shopkeeper: sk}, nil
}

// checkCredentials validates the mobile format and password strength, then
// enforces cross-table mobile uniqueness.
func (s *AuthService) checkCredentials(ctx context.Context, mobile, password string) error {
	if !mobileRE.MatchString(mobile) {
		return ErrInvalidMobile
	}
	if len(password) < MinPasswordLen {
		return ErrWeakPassword
	}
	taken, err := s.Repo.MobileExists(ctx, s.DB, mobile)
	if err != nil {
		return err
	}
	if taken {
		return ErrMobileTaken
	}
	return nil
}

func (s *AuthService) cost() int {
	if s.BcryptCost > 0 {
		return s.BcryptCost
	}
	return bcrypt.DefaultCost
}
