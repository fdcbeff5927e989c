// Package services – ProductService
//
// This file implements the ProductService: synonym-expanded product search,
// the cached special-offers listing, and catalog CRUD scoped to the owning
// shop. Search expansion happens here, not in the repository, so the query
// layer only ever sees a flat term list. Writes invalidate the offers
// listing whenever the special-offer flag is involved, plus the owning
// shop's detail bundle, before returning.
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
	"github.com/tbourn/go-market-backend/internal/search"
)

// OffersLimit caps the special-offers listing.
const OffersLimit = 50

// ProductRepo defines the repository contract required by ProductService.
type ProductRepo interface {
	SearchProducts(ctx context.Context, db *gorm.DB, terms []string, offset, limit int) ([]repo.SearchRow, error)
	ListSpecialOffers(ctx context.Context, db *gorm.DB, limit int) ([]repo.SearchRow, error)
	GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error)
	CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error
	UpdateProduct(ctx context.Context, db *gorm.DB, id, shopID uint, updates map[string]any) error
	DeleteProduct(ctx context.Context, db *gorm.DB, id, shopID uint) error
}

// ProductService provides search, offers, and catalog management.
type ProductService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the product repository used by this service.
	Repo ProductRepo
	// Expander broadens queries with the synonym dictionary.
	Expander search.Expander
	// Cache fronts the offers listing and holds shop-derived entries.
	Cache cache.Store
	// TTLs holds listing/detail expirations from configuration.
	TTLs cache.TTLs
}

// NewProductService constructs a ProductService using the default synonym
// dictionary.
func NewProductService(db *gorm.DB, r ProductRepo, store cache.Store, ttls cache.TTLs) *ProductService {
	return &ProductService{
		DB:       db,
		Repo:     r,
		Expander: search.NewExpander(search.DefaultSynonyms),
		Cache:    store,
		TTLs:     ttls,
	}
}

// SearchResult is one search hit, optionally annotated with the distance
// from the caller's position to the shop.
type SearchResult struct {
	repo.SearchRow
	DistanceKm        *float64 `json:"distance_km,omitempty"`
	DistanceFormatted string   `json:"distance,omitempty"`
}

// Search expands the raw query through the synonym dictionary and returns
// matching products with shop context, paginated. A blank query returns an
// empty result without touching the database. When origin is non-nil, each
// hit whose shop has valid coordinates is annotated with the distance.
func (s *ProductService) Search(ctx context.Context, query string, page, pageSize int, origin *geo.Point) ([]SearchResult, error) {
	terms := s.Expander.Expand(query)
	if len(terms) == 0 {
		return []SearchResult{}, nil
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rows, err := s.Repo.SearchProducts(ctx, s.DB, terms, offset, pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(rows))
	for _, r := range rows {
		res := SearchResult{SearchRow: r}
		if origin != nil && r.Latitude != nil && r.Longitude != nil {
			if km, err := geo.Distance(origin.Lat, origin.Lon, *r.Latitude, *r.Longitude); err == nil {
				res.DistanceKm = &km
				res.DistanceFormatted = geo.FormatDistance(km)
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// ListOffers returns the special-offers listing, served from the cache when
// a fresh entry exists.
func (s *ProductService) ListOffers(ctx context.Context) ([]repo.SearchRow, error) {
	return cache.GetOrFetch(ctx, s.Cache, cache.KeyOffers, s.TTLs.Listing,
		func(ctx context.Context) ([]repo.SearchRow, error) {
			return s.Repo.ListSpecialOffers(ctx, s.DB, OffersLimit)
		})
}

// CreateProductInput carries new-product fields.
type CreateProductInput struct {
	Name           string
	Price          float64
	Image          string
	IsBestSeller   bool
	IsSpecialOffer bool
	OfferMessage   string
	OriginalPrice  *float64
}

// Create inserts a catalog row for the shop and invalidates the shop's
// detail bundle, plus the offers listing when the row is a special offer.
func (s *ProductService) Create(ctx context.Context, shopID uint, in CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyProductName
	}
	if in.Price < 0 {
		return nil, ErrInvalidPrice
	}

	p := &domain.Product{
		ShopID:         shopID,
		Name:           name,
		Price:          in.Price,
		Image:          in.Image,
		InStock:        true,
		IsBestSeller:   in.IsBestSeller,
		IsSpecialOffer: in.IsSpecialOffer,
		OfferMessage:   strings.TrimSpace(in.OfferMessage),
		OriginalPrice:  in.OriginalPrice,
	}
	if err := s.Repo.CreateProduct(ctx, s.DB, p); err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, cache.KeyShopDetail(shopID))
	if p.IsSpecialOffer {
		s.Cache.Invalidate(ctx, cache.KeyOffers)
	}
	return p, nil
}

// UpdateProductInput carries editable product fields. Nil pointers mean
// "leave unchanged".
type UpdateProductInput struct {
	Name           *string
	Price          *float64
	Image          *string
	InStock        *bool
	IsBestSeller   *bool
	IsSpecialOffer *bool
	OfferMessage   *string
	OriginalPrice  *float64
}

// Update applies the provided changes to a product owned by shopID. The
// offers listing is invalidated whenever the special-offer flag is touched
// or the row already is an offer, since price and message feed that listing.
func (s *ProductService) Update(ctx context.Context, productID, shopID uint, in UpdateProductInput) error {
	existing, err := s.Repo.GetProduct(ctx, s.DB, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if existing.ShopID != shopID {
		return ErrProductNotFound
	}

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return ErrEmptyProductName
		}
		updates["name"] = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return ErrInvalidPrice
		}
		updates["price"] = *in.Price
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.InStock != nil {
		updates["in_stock"] = *in.InStock
	}
	if in.IsBestSeller != nil {
		updates["is_best_seller"] = *in.IsBestSeller
	}
	if in.IsSpecialOffer != nil {
		updates["is_special_offer"] = *in.IsSpecialOffer
	}
	if in.OfferMessage != nil {
		updates["offer_message"] = strings.TrimSpace(*in.OfferMessage)
	}
	if in.OriginalPrice != nil {
		updates["original_price"] = *in.OriginalPrice
	}

	if err := s.Repo.UpdateProduct(ctx, s.DB, productID, shopID, updates); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.Cache.Invalidate(ctx, cache.KeyShopDetail(shopID))
	if existing.IsSpecialOffer || in.IsSpecialOffer != nil {
		s.Cache.Invalidate(ctx, cache.KeyOffers)
	}
	return nil
}

// Delete removes a product owned by shopID and applies the same
// invalidations as Update.
func (s *ProductService) Delete(ctx context.Context, productID, shopID uint) error {
	existing, err := s.Repo.GetProduct(ctx, s.DB, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if existing.ShopID != shopID {
		return ErrProductNotFound
	}

	if err := s.Repo.DeleteProduct(ctx, s.DB, productID, shopID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.Cache.Invalidate(ctx, cache.KeyShopDetail(shopID))
	if existing.IsSpecialOffer {
		s.Cache.Invalidate(ctx, cache.KeyOffers)
	}
	return nil
}
