package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/cache"
	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// ----- Fake repo -----

type fakeShopRepo struct {
	listCalls int
	shops     []domain.Shopkeeper
	listErr   error

	detail    *repo.ShopDetail
	detailErr error

	profileUpdates map[string]any
	profileErr     error

	statusID   uint
	statusOpen bool
	statusErr  error
}

func (r *fakeShopRepo) ListShopsWithLocation(ctx context.Context, db *gorm.DB) ([]domain.Shopkeeper, error) {
	r.listCalls++
	return r.shops, r.listErr
}

func (r *fakeShopRepo) GetShopDetail(ctx context.Context, db *gorm.DB, id uint, reviewLimit int) (*repo.ShopDetail, error) {
	return r.detail, r.detailErr
}

func (r *fakeShopRepo) UpdateShopProfile(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	r.profileUpdates = updates
	return r.profileErr
}

func (r *fakeShopRepo) UpdateShopOpenStatus(ctx context.Context, db *gorm.DB, id uint, isOpen bool) error {
	r.statusID, r.statusOpen = id, isOpen
	return r.statusErr
}

func testTTLs() cache.TTLs {
	return cache.TTLs{Listing: 30 * time.Second, Detail: 5 * time.Minute}
}

// ----- Tests -----

func TestListShops_ServedFromCache(t *testing.T) {
	ctx := context.Background()
	r := &fakeShopRepo{shops: []domain.Shopkeeper{{ID: 1, ShopName: "Ram Kirana"}}}
	s := NewShopService(nil, r, cache.NewMemory(), testTTLs())

	first, err := s.ListShops(ctx)
	if err != nil || len(first) != 1 {
		t.Fatalf("first ListShops: %v, %d", err, len(first))
	}
	second, err := s.ListShops(ctx)
	if err != nil || len(second) != 1 {
		t.Fatalf("second ListShops: %v, %d", err, len(second))
	}
	if r.listCalls != 1 {
		t.Fatalf("expected 1 repo call, got %d", r.listCalls)
	}
}

func TestGetShopDetail_NotFound(t *testing.T) {
	r := &fakeShopRepo{detailErr: repo.ErrNotFound}
	s := NewShopService(nil, r, cache.NewMemory(), testTTLs())
	if _, err := s.GetShopDetail(context.Background(), 9); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("got %v, want ErrShopNotFound", err)
	}
}

func TestUpdateProfile_InvalidatesDerivedEntries(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	store.Set(ctx, cache.KeyShops, "stale", 0)
	store.Set(ctx, cache.KeyShopDetail(3), "stale", 0)
	store.Set(ctx, cache.KeyDistance(18.52, 73.85, 3), 4.2, 0)

	r := &fakeShopRepo{}
	s := NewShopService(nil, r, store, testTTLs())

	name, lat, lon := "new name", 19.0, 74.0
	if err := s.UpdateProfile(ctx, 3, UpdateProfileInput{ShopName: &name, Latitude: &lat, Longitude: &lon}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got := r.profileUpdates["shop_name"]; got != "New Name" {
		t.Fatalf("shop name not title-cased: %v", got)
	}

	for _, k := range []string{cache.KeyShops, cache.KeyShopDetail(3), cache.KeyDistance(18.52, 73.85, 3)} {
		if _, ok := store.Get(ctx, k); ok {
			t.Fatalf("entry %q not invalidated", k)
		}
	}
}

func TestUpdateProfile_CoordinateValidation(t *testing.T) {
	ctx := context.Background()
	r := &fakeShopRepo{}
	s := NewShopService(nil, r, cache.NewMemory(), testTTLs())

	lat, lon := 18.52, 999.0
	if err := s.UpdateProfile(ctx, 3, UpdateProfileInput{Latitude: &lat, Longitude: &lon}); !errors.Is(err, geo.ErrLongitudeRange) {
		t.Fatalf("got %v, want ErrLongitudeRange", err)
	}

	// Coordinates move as a pair.
	lone := 18.52
	if err := s.UpdateProfile(ctx, 3, UpdateProfileInput{Latitude: &lone}); !errors.Is(err, geo.ErrNotFinite) {
		t.Fatalf("got %v, want ErrNotFinite", err)
	}

	if r.profileUpdates != nil {
		t.Fatalf("rejected update must not reach the repository: %v", r.profileUpdates)
	}
}

func TestUpdateProfile_NoLocationChangeKeepsDistances(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	store.Set(ctx, cache.KeyDistance(18.52, 73.85, 3), 4.2, 0)

	s := NewShopService(nil, &fakeShopRepo{}, store, testTTLs())
	city := "Pune"
	if err := s.UpdateProfile(ctx, 3, UpdateProfileInput{City: &city}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if _, ok := store.Get(ctx, cache.KeyDistance(18.52, 73.85, 3)); !ok {
		t.Fatalf("distance pair dropped without a coordinate change")
	}
}

func TestSetOpenStatus_NotFoundAndInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing shop", func(t *testing.T) {
		s := NewShopService(nil, &fakeShopRepo{statusErr: repo.ErrNotFound}, cache.NewMemory(), testTTLs())
		if err := s.SetOpenStatus(ctx, 9, false); !errors.Is(err, ErrShopNotFound) {
			t.Fatalf("got %v, want ErrShopNotFound", err)
		}
	})

	t.Run("invalidates listing and detail", func(t *testing.T) {
		store := cache.NewMemory()
		store.Set(ctx, cache.KeyShops, "stale", 0)
		store.Set(ctx, cache.KeyShopDetail(3), "stale", 0)

		r := &fakeShopRepo{}
		s := NewShopService(nil, r, store, testTTLs())
		if err := s.SetOpenStatus(ctx, 3, false); err != nil {
			t.Fatalf("SetOpenStatus: %v", err)
		}
		if r.statusID != 3 || r.statusOpen {
			t.Fatalf("repo call unexpected: id=%d open=%v", r.statusID, r.statusOpen)
		}
		if _, ok := store.Get(ctx, cache.KeyShops); ok {
			t.Fatalf("directory not invalidated")
		}
		if _, ok := store.Get(ctx, cache.KeyShopDetail(3)); ok {
			t.Fatalf("detail not invalidated")
		}
	})
}
