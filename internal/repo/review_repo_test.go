package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-market-backend/internal/domain"
)

func TestCreateReview_OnePerBuyerPerShop(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := seedShop(t, db, "Ram Kirana", 18.52, 73.85)
	u := seedUser(t, db, "Asha")

	if err := CreateReview(ctx, db, &domain.Review{ShopID: s.ID, UserID: u.ID, Rating: 4}); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	err := CreateReview(ctx, db, &domain.Review{ShopID: s.ID, UserID: u.ID, Rating: 5})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on second review, got %v", err)
	}

	// A different buyer can still review.
	u2 := seedUser(t, db, "Vijay")
	if err := CreateReview(ctx, db, &domain.Review{ShopID: s.ID, UserID: u2.ID, Rating: 5}); err != nil {
		t.Fatalf("second buyer review: %v", err)
	}
}

func TestShopRating_AverageAndEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := seedShop(t, db, "Ram Kirana", 18.52, 73.85)

	avg, count, err := ShopRating(ctx, db, s.ID)
	if err != nil || avg != 0 || count != 0 {
		t.Fatalf("empty shop rating: avg=%v count=%d err=%v", avg, count, err)
	}

	u1 := seedUser(t, db, "Asha")
	u2 := seedUser(t, db, "Vijay")
	for _, r := range []*domain.Review{
		{ShopID: s.ID, UserID: u1.ID, Rating: 5},
		{ShopID: s.ID, UserID: u2.ID, Rating: 2},
	} {
		if err := CreateReview(ctx, db, r); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	avg, count, err = ShopRating(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("ShopRating: %v", err)
	}
	if count != 2 || avg != 3.5 {
		t.Fatalf("rating unexpected: avg=%v count=%d", avg, count)
	}
}

func TestListShopReviews_NewestFirstCapped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := seedShop(t, db, "Ram Kirana", 18.52, 73.85)

	users := []*domain.User{seedUser(t, db, "A"), seedUser(t, db, "B"), seedUser(t, db, "C")}
	for i, u := range users {
		if err := CreateReview(ctx, db, &domain.Review{ShopID: s.ID, UserID: u.ID, Rating: i + 1}); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	got, err := ListShopReviews(ctx, db, s.ID, 2)
	if err != nil {
		t.Fatalf("ListShopReviews: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected cap at 2, got %d", len(got))
	}
}
