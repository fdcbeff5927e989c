// Handler wiring and shared helpers.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. All service dependencies are
// consumed through interfaces so tests can substitute fakes.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/repo"
	"github.com/tbourn/go-market-backend/internal/services"
	"github.com/tbourn/go-market-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AuthService defines account registration and login operations.
type AuthService interface {
	RegisterUser(ctx context.Context, in services.RegisterUserInput) (*domain.User, error)
	RegisterShopkeeper(ctx context.Context, in services.RegisterShopkeeperInput) (*domain.Shopkeeper, error)
	Login(ctx context.Context, mobile, password string) (*services.LoginResult, error)
}

// ShopService defines shop directory and profile operations.
type ShopService interface {
	ListShops(ctx context.Context) ([]domain.Shopkeeper, error)
	GetShopDetail(ctx context.Context, shopID uint) (*repo.ShopDetail, error)
	UpdateProfile(ctx context.Context, shopID uint, in services.UpdateProfileInput) error
	SetOpenStatus(ctx context.Context, shopID uint, isOpen bool) error
}

// ProductService defines search, offers, and catalog operations.
type ProductService interface {
	Search(ctx context.Context, query string, page, pageSize int, origin *geo.Point) ([]services.SearchResult, error)
	ListOffers(ctx context.Context) ([]repo.SearchRow, error)
	Create(ctx context.Context, shopID uint, in services.CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, productID, shopID uint, in services.UpdateProductInput) error
	Delete(ctx context.Context, productID, shopID uint) error
}

// DistanceService defines origin-to-shop distance evaluation.
type DistanceService interface {
	ToShop(ctx context.Context, origin geo.Point, shopID uint) (*services.DistanceResult, error)
	ToShops(ctx context.Context, origin geo.Point, shopIDs []uint) ([]services.DistanceResult, error)
}

// ReviewService defines shop review operations.
type ReviewService interface {
	Create(ctx context.Context, shopID, userID uint, rating int, comment string) (*domain.Review, error)
	List(ctx context.Context, shopID uint, limit int) ([]domain.Review, error)
}

// ChatService defines buyer-shopkeeper messaging operations.
type ChatService interface {
	Send(ctx context.Context, senderType string, userID, shopID uint, content string) (*domain.ChatMessage, error)
	Conversation(ctx context.Context, userID, shopID uint, viewerType string) ([]domain.ChatMessage, error)
	Partners(ctx context.Context, accountID uint, accountType string) ([]uint, error)
	Archive(ctx context.Context, userID, shopID uint, viewerType string) error
}

// RequestService defines the product request/response workflow.
type RequestService interface {
	Create(ctx context.Context, userID uint, productName string, lat, lon *float64) (*domain.ProductRequest, error)
	PendingForShop(ctx context.Context, shopID uint) ([]domain.ProductRequest, error)
	MyRequests(ctx context.Context, userID uint) ([]domain.ProductRequest, error)
	Close(ctx context.Context, requestID, userID uint) error
	Respond(ctx context.Context, requestID, shopID uint, idempotencyKey string, in services.RespondInput) (*services.RespondOutcome, error)
	ResponsesForUser(ctx context.Context, userID uint) ([]repo.ResponseRow, error)
	ArchiveResponse(ctx context.Context, responseID, userID uint) error
}

// Handlers groups the HTTP endpoints for the marketplace API. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	authSvc     AuthService
	shopSvc     ShopService
	productSvc  ProductService
	distanceSvc DistanceService
	reviewSvc   ReviewService
	chatSvc     ChatService
	requestSvc  RequestService
}

// New constructs a Handlers instance bound to the given services.
func New(
	authSvc AuthService,
	shopSvc ShopService,
	productSvc ProductService,
	distanceSvc DistanceService,
	reviewSvc ReviewService,
	chatSvc ChatService,
	requestSvc RequestService,
) *Handlers {
	return &Handlers{
		authSvc:     authSvc,
		shopSvc:     shopSvc,
		productSvc:  productSvc,
		distanceSvc: distanceSvc,
		reviewSvc:   reviewSvc,
		chatSvc:     chatSvc,
		requestSvc:  requestSvc,
	}
}

//
// Identity helpers
//

// actorID extracts the acting account's ID from Gin context (set by upstream
// middleware) with an "X-User-ID" header fallback for tests and demo clients.
// Returns (0, false) when absent or malformed.
func actorID(c *gin.Context) (uint, bool) {
	if v, ok := c.Get("actorID"); ok {
		if id, ok := v.(uint); ok && id != 0 {
			return id, true
		}
	}
	if c != nil && c.Request != nil {
		if id, ok := utils.ParseUint(c.GetHeader("X-User-ID")); ok {
			return id, true
		}
	}
	return 0, false
}

// actorType reports whether the acting account is a buyer or shopkeeper,
// defaulting to buyer. Set by middleware or the "X-User-Type" header.
func actorType(c *gin.Context) string {
	if v, ok := c.Get("actorType"); ok {
		if s, ok := v.(string); ok && s == domain.UserTypeShopkeeper {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if c.GetHeader("X-User-Type") == domain.UserTypeShopkeeper {
			return domain.UserTypeShopkeeper
		}
	}
	return domain.UserTypeBuyer
}

// requireActor is actorID plus the 401 response on failure. Returns ok=false
// after writing the error.
func requireActor(c *gin.Context) (uint, bool) {
	id, ok := actorID(c)
	if !ok {
		fail(c, 401, ErrCodeUnauthorized, "missing or invalid X-User-ID")
		return 0, false
	}
	return id, true
}

//
// Shared DTO helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Count    int  `json:"count"`
	HasNext  bool `json:"has_next"`
}

// clampPagination parses and bounds page and limit query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("limit"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// originFromQuery reads optional lat/lng query params. Both present and
// well-formed yields a Point; both absent yields nil; anything else is
// reported as malformed.
func originFromQuery(c *gin.Context) (*geo.Point, bool) {
	latStr, lonStr := c.Query("lat"), c.Query("lng")
	if latStr == "" && lonStr == "" {
		return nil, true
	}
	lat, okLat := utils.ParseFloat(latStr)
	lon, okLon := utils.ParseFloat(lonStr)
	if !okLat || !okLon {
		return nil, false
	}
	return &geo.Point{Lat: lat, Lon: lon}, true
}
