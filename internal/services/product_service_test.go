package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/cache"
	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// ----- Fake repo -----

type fakeProductRepo struct {
	searchTerms  []string
	searchOffset int
	searchLimit  int
	searchRows   []repo.SearchRow
	searchCalls  int

	offerRows  []repo.SearchRow
	offerCalls int

	product *domain.Product
	getErr  error

	created   *domain.Product
	updates   map[string]any
	updateErr error
	deleteErr error
}

func (r *fakeProductRepo) SearchProducts(ctx context.Context, db *gorm.DB, terms []string, offset, limit int) ([]repo.SearchRow, error) {
	r.searchCalls++
	r.searchTerms, r.searchOffset, r.searchLimit = terms, offset, limit
	return r.searchRows, nil
}

func (r *fakeProductRepo) ListSpecialOffers(ctx context.Context, db *gorm.DB, limit int) ([]repo.SearchRow, error) {
	r.offerCalls++
	return r.offerRows, nil
}

func (r *fakeProductRepo) GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	return r.product, r.getErr
}

func (r *fakeProductRepo) CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	p.ID = 1
	r.created = p
	return nil
}

func (r *fakeProductRepo) UpdateProduct(ctx context.Context, db *gorm.DB, id, shopID uint, updates map[string]any) error {
	r.updates = updates
	return r.updateErr
}

func (r *fakeProductRepo) DeleteProduct(ctx context.Context, db *gorm.DB, id, shopID uint) error {
	return r.deleteErr
}

func newProductService(r *fakeProductRepo) (*ProductService, *cache.Memory) {
	store := cache.NewMemory()
	return NewProductService(nil, r, store, testTTLs()), store
}

// ----- Tests -----

func TestSearch_BlankQuerySkipsDatabase(t *testing.T) {
	r := &fakeProductRepo{}
	s, _ := newProductService(r)

	got, err := s.Search(context.Background(), "   ", 1, 20, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 || r.searchCalls != 0 {
		t.Fatalf("blank query must short-circuit: %d results, %d calls", len(got), r.searchCalls)
	}
}

func TestSearch_ExpandsSynonymsAndPaginates(t *testing.T) {
	r := &fakeProductRepo{}
	s, _ := newProductService(r)

	if _, err := s.Search(context.Background(), "Aloo", 3, 10, nil); err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := map[string]bool{"aloo": true, "potato": true, "alu": true, "batata": true}
	for _, term := range r.searchTerms {
		delete(want, term)
	}
	if len(want) != 0 {
		t.Fatalf("missing expanded terms %v in %v", want, r.searchTerms)
	}
	if r.searchOffset != 20 || r.searchLimit != 10 {
		t.Fatalf("pagination unexpected: offset=%d limit=%d", r.searchOffset, r.searchLimit)
	}
}

func TestSearch_AnnotatesDistanceWhenOriginGiven(t *testing.T) {
	lat, lon := 48.8566, 2.3522 // Paris
	r := &fakeProductRepo{searchRows: []repo.SearchRow{
		{ProductID: 1, ProductName: "Rice", ShopID: 3, Latitude: &lat, Longitude: &lon},
		{ProductID: 2, ProductName: "Atta", ShopID: 4}, // no coordinates
	}}
	s, _ := newProductService(r)

	origin := &geo.Point{Lat: 51.5074, Lon: -0.1278} // London
	got, err := s.Search(context.Background(), "rice", 1, 20, origin)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got[0].DistanceKm == nil || *got[0].DistanceKm < 300 || *got[0].DistanceKm > 400 {
		t.Fatalf("distance annotation unexpected: %+v", got[0])
	}
	if got[0].DistanceFormatted == "" {
		t.Fatalf("formatted distance missing")
	}
	if got[1].DistanceKm != nil {
		t.Fatalf("shop without coordinates must not be annotated: %+v", got[1])
	}
}

func TestListOffers_ServedFromCache(t *testing.T) {
	r := &fakeProductRepo{offerRows: []repo.SearchRow{{ProductID: 1, ProductName: "Sugar"}}}
	s, _ := newProductService(r)
	ctx := context.Background()

	if _, err := s.ListOffers(ctx); err != nil {
		t.Fatalf("first ListOffers: %v", err)
	}
	if _, err := s.ListOffers(ctx); err != nil {
		t.Fatalf("second ListOffers: %v", err)
	}
	if r.offerCalls != 1 {
		t.Fatalf("expected 1 repo call, got %d", r.offerCalls)
	}
}

func TestCreate_ValidationAndInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("empty name", func(t *testing.T) {
		s, _ := newProductService(&fakeProductRepo{})
		if _, err := s.Create(ctx, 3, CreateProductInput{Name: "  ", Price: 10}); !errors.Is(err, ErrEmptyProductName) {
			t.Fatalf("got %v, want ErrEmptyProductName", err)
		}
	})
	t.Run("negative price", func(t *testing.T) {
		s, _ := newProductService(&fakeProductRepo{})
		if _, err := s.Create(ctx, 3, CreateProductInput{Name: "Rice", Price: -1}); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("got %v, want ErrInvalidPrice", err)
		}
	})

	t.Run("special offer invalidates offers listing", func(t *testing.T) {
		r := &fakeProductRepo{}
		s, store := newProductService(r)
		store.Set(ctx, cache.KeyOffers, "stale", 0)
		store.Set(ctx, cache.KeyShopDetail(3), "stale", 0)

		p, err := s.Create(ctx, 3, CreateProductInput{Name: "Sugar", Price: 42, IsSpecialOffer: true})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !p.InStock || p.ShopID != 3 {
			t.Fatalf("unexpected product: %+v", p)
		}
		if _, ok := store.Get(ctx, cache.KeyOffers); ok {
			t.Fatalf("offers listing not invalidated")
		}
		if _, ok := store.Get(ctx, cache.KeyShopDetail(3)); ok {
			t.Fatalf("shop detail not invalidated")
		}
	})

	t.Run("plain product keeps offers listing", func(t *testing.T) {
		r := &fakeProductRepo{}
		s, store := newProductService(r)
		store.Set(ctx, cache.KeyOffers, "fresh", 0)

		if _, err := s.Create(ctx, 3, CreateProductInput{Name: "Rice", Price: 60}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, ok := store.Get(ctx, cache.KeyOffers); !ok {
			t.Fatalf("offers listing dropped for a non-offer product")
		}
	})
}

func TestUpdate_OwnershipAndOfferInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("foreign shop", func(t *testing.T) {
		r := &fakeProductRepo{product: &domain.Product{ID: 1, ShopID: 99}}
		s, _ := newProductService(r)
		if err := s.Update(ctx, 1, 3, UpdateProductInput{}); !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("got %v, want ErrProductNotFound", err)
		}
	})

	t.Run("existing offer invalidates listing on any change", func(t *testing.T) {
		r := &fakeProductRepo{product: &domain.Product{ID: 1, ShopID: 3, IsSpecialOffer: true}}
		s, store := newProductService(r)
		store.Set(ctx, cache.KeyOffers, "stale", 0)

		price := 38.0
		if err := s.Update(ctx, 1, 3, UpdateProductInput{Price: &price}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if r.updates["price"] != 38.0 {
			t.Fatalf("price update missing: %v", r.updates)
		}
		if _, ok := store.Get(ctx, cache.KeyOffers); ok {
			t.Fatalf("offers listing not invalidated for offer row")
		}
	})

	t.Run("blank name rejected", func(t *testing.T) {
		r := &fakeProductRepo{product: &domain.Product{ID: 1, ShopID: 3}}
		s, _ := newProductService(r)
		blank := " "
		if err := s.Update(ctx, 1, 3, UpdateProductInput{Name: &blank}); !errors.Is(err, ErrEmptyProductName) {
			t.Fatalf("got %v, want ErrEmptyProductName", err)
		}
	})
}

func TestDelete_OwnershipAndInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing product", func(t *testing.T) {
		r := &fakeProductRepo{getErr: repo.ErrNotFound}
		s, _ := newProductService(r)
		if err := s.Delete(ctx, 1, 3); !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("got %v, want ErrProductNotFound", err)
		}
	})

	t.Run("offer delete invalidates listing", func(t *testing.T) {
		r := &fakeProductRepo{product: &domain.Product{ID: 1, ShopID: 3, IsSpecialOffer: true}}
		s, store := newProductService(r)
		store.Set(ctx, cache.KeyOffers, "stale", 0)

		if err := s.Delete(ctx, 1, 3); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok := store.Get(ctx, cache.KeyOffers); ok {
			t.Fatalf("offers listing not invalidated")
		}
	})
}
