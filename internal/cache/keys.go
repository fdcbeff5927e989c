package cache

import (
	"fmt"
	"time"
)

// TTLs groups the per-class expirations the services apply: the short TTL
// for churning listings and a longer one for per-shop detail bundles.
// Distance pairs deliberately take no TTL; they are reclaimed in bulk by the
// sweeper.
type TTLs struct {
	Listing time.Duration
	Detail  time.Duration
}

// Cache keys are structured hierarchically so collection-level invalidation
// is a prefix match. Keep these builders as the single source of key shapes.
const (
	// KeyShops caches the lightweight shop directory listing.
	KeyShops = "shops:all"

	// KeyOffers caches the special-offers listing.
	KeyOffers = "offers:all"

	// PrefixShops covers the directory plus every per-shop detail bundle.
	PrefixShops = "shops:"

	// PrefixDistance covers every memoized (origin, shop) distance pair.
	PrefixDistance = "distance:"
)

// KeyShopDetail returns the cache key for one shop's detail bundle.
func KeyShopDetail(shopID uint) string {
	return fmt.Sprintf("shops:%d:detail", shopID)
}

// KeyDistance returns the cache key for one (origin, shop) distance pair.
// Coordinates are formatted with fixed precision so the same origin always
// hits the same key within a session.
func KeyDistance(lat, lon float64, shopID uint) string {
	return fmt.Sprintf("distance:%.6f,%.6f:%d", lat, lon, shopID)
}
