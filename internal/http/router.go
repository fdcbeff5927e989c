// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/cache"
	"github.com/tbourn/go-market-backend/internal/config"
	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/http/handlers"
	"github.com/tbourn/go-market-backend/internal/http/middleware"
	"github.com/tbourn/go-market-backend/internal/repo"
	"github.com/tbourn/go-market-backend/internal/services"
)

// The shims below adapt the repository free functions to the per-service
// repo interfaces. This keeps services decoupled from the concrete repo
// package while reusing existing functions.

type authRepoShim struct{}

func (authRepoShim) CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return repo.CreateUser(ctx, db, u)
}

func (authRepoShim) CreateShopkeeper(ctx context.Context, db *gorm.DB, s *domain.Shopkeeper) error {
	return repo.CreateShopkeeper(ctx, db, s)
}

func (authRepoShim) FindUserByMobile(ctx context.Context, db *gorm.DB, mobile string) (*domain.User, error) {
	return repo.FindUserByMobile(ctx, db, mobile)
}

func (authRepoShim) FindShopkeeperByMobile(ctx context.Context, db *gorm.DB, mobile string) (*domain.Shopkeeper, error) {
	return repo.FindShopkeeperByMobile(ctx, db, mobile)
}

func (authRepoShim) MobileExists(ctx context.Context, db *gorm.DB, mobile string) (bool, error) {
	return repo.MobileExists(ctx, db, mobile)
}

type shopRepoShim struct{}

func (shopRepoShim) ListShopsWithLocation(ctx context.Context, db *gorm.DB) ([]domain.Shopkeeper, error) {
	return repo.ListShopsWithLocation(ctx, db)
}

func (shopRepoShim) GetShopDetail(ctx context.Context, db *gorm.DB, id uint, reviewLimit int) (*repo.ShopDetail, error) {
	return repo.GetShopDetail(ctx, db, id, reviewLimit)
}

func (shopRepoShim) UpdateShopProfile(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	return repo.UpdateShopProfile(ctx, db, id, updates)
}

func (shopRepoShim) UpdateShopOpenStatus(ctx context.Context, db *gorm.DB, id uint, isOpen bool) error {
	return repo.UpdateShopOpenStatus(ctx, db, id, isOpen)
}

type productRepoShim struct{}

func (productRepoShim) SearchProducts(ctx context.Context, db *gorm.DB, terms []string, offset, limit int) ([]repo.SearchRow, error) {
	return repo.SearchProducts(ctx, db, terms, offset, limit)
}

func (productRepoShim) ListSpecialOffers(ctx context.Context, db *gorm.DB, limit int) ([]repo.SearchRow, error) {
	return repo.ListSpecialOffers(ctx, db, limit)
}

func (productRepoShim) GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	return repo.GetProduct(ctx, db, id)
}

func (productRepoShim) CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return repo.CreateProduct(ctx, db, p)
}

func (productRepoShim) UpdateProduct(ctx context.Context, db *gorm.DB, id, shopID uint, updates map[string]any) error {
	return repo.UpdateProduct(ctx, db, id, shopID, updates)
}

func (productRepoShim) DeleteProduct(ctx context.Context, db *gorm.DB, id, shopID uint) error {
	return repo.DeleteProduct(ctx, db, id, shopID)
}

type distanceRepoShim struct{}

func (distanceRepoShim) GetShop(ctx context.Context, db *gorm.DB, id uint) (*domain.Shopkeeper, error) {
	return repo.GetShop(ctx, db, id)
}

func (distanceRepoShim) ListShopsWithLocation(ctx context.Context, db *gorm.DB) ([]domain.Shopkeeper, error) {
	return repo.ListShopsWithLocation(ctx, db)
}

type reviewRepoShim struct{}

func (reviewRepoShim) CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	return repo.CreateReview(ctx, db, r)
}

func (reviewRepoShim) ListShopReviews(ctx context.Context, db *gorm.DB, shopID uint, limit int) ([]domain.Review, error) {
	return repo.ListShopReviews(ctx, db, shopID, limit)
}

func (reviewRepoShim) GetShop(ctx context.Context, db *gorm.DB, id uint) (*domain.Shopkeeper, error) {
	return repo.GetShop(ctx, db, id)
}

type chatRepoShim struct{}

func (chatRepoShim) CreateMessage(ctx context.Context, db *gorm.DB, m *domain.ChatMessage) error {
	return repo.CreateMessage(ctx, db, m)
}

func (chatRepoShim) ListConversation(ctx context.Context, db *gorm.DB, userID, shopID uint, viewerType string) ([]domain.ChatMessage, error) {
	return repo.ListConversation(ctx, db, userID, shopID, viewerType)
}

func (chatRepoShim) ListChatPartners(ctx context.Context, db *gorm.DB, accountID uint, accountType string) ([]uint, error) {
	return repo.ListChatPartners(ctx, db, accountID, accountType)
}

func (chatRepoShim) HideConversation(ctx context.Context, db *gorm.DB, userID, shopID uint, viewerType string) error {
	return repo.HideConversation(ctx, db, userID, shopID, viewerType)
}

func (chatRepoShim) GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

func (chatRepoShim) GetShop(ctx context.Context, db *gorm.DB, id uint) (*domain.Shopkeeper, error) {
	return repo.GetShop(ctx, db, id)
}

type requestRepoShim struct{}

func (requestRepoShim) CreateRequest(ctx context.Context, db *gorm.DB, r *domain.ProductRequest) error {
	return repo.CreateRequest(ctx, db, r)
}

func (requestRepoShim) GetRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ProductRequest, error) {
	return repo.GetRequest(ctx, db, id)
}

func (requestRepoShim) ListPendingForShop(ctx context.Context, db *gorm.DB, shopID uint, cutoff time.Time) ([]domain.ProductRequest, error) {
	return repo.ListPendingForShop(ctx, db, shopID, cutoff)
}

func (requestRepoShim) ListUserRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ProductRequest, error) {
	return repo.ListUserRequests(ctx, db, userID)
}

func (requestRepoShim) CloseRequest(ctx context.Context, db *gorm.DB, id, userID uint) error {
	return repo.CloseRequest(ctx, db, id, userID)
}

func (requestRepoShim) CreateResponse(ctx context.Context, db *gorm.DB, r *domain.RequestResponse) error {
	return repo.CreateResponse(ctx, db, r)
}

func (requestRepoShim) ListResponsesForUser(ctx context.Context, db *gorm.DB, userID uint) ([]repo.ResponseRow, error) {
	return repo.ListResponsesForUser(ctx, db, userID)
}

func (requestRepoShim) ArchiveResponse(ctx context.Context, db *gorm.DB, responseID, userID uint) error {
	return repo.ArchiveResponse(ctx, db, responseID, userID)
}

func (requestRepoShim) GetIdempotency(ctx context.Context, db *gorm.DB, actorID uint, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, actorID, scope, key, now)
}

func (requestRepoShim) CreateIdempotency(ctx context.Context, db *gorm.DB, actorID uint, scope, key string, resultID uint, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, actorID, scope, key, resultID, status, ttl)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Response compression (skipping /metrics)
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per actor/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, store cache.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (mobile numbers are login ids)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB; product and shop photos ride in
	// request bodies as data URLs, so this is the effective photo cap too)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses; /metrics stays plaintext for Prometheus
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, actorID uint, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, actorID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per actor/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByActorOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		"X-User-ID", "X-User-Type", middleware.HeaderIdempotencyKey,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in; dev/staging only)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/cache
	ttls := cache.TTLs{Listing: cfg.Cache.ListingTTL, Detail: cfg.Cache.DetailTTL}
	authSvc := services.NewAuthService(db, authRepoShim{}, store)
	authSvc.BcryptCost = cfg.BcryptCost
	shopSvc := services.NewShopService(db, shopRepoShim{}, store, ttls)
	productSvc := services.NewProductService(db, productRepoShim{}, store, ttls)
	distanceSvc := services.NewDistanceService(db, distanceRepoShim{}, store)
	reviewSvc := services.NewReviewService(db, reviewRepoShim{}, store)
	chatSvc := services.NewChatService(db, chatRepoShim{})
	requestSvc := services.NewRequestService(db, requestRepoShim{}, cfg.IdempotencyTTL)

	h := handlers.New(authSvc, shopSvc, productSvc, distanceSvc, reviewSvc, chatSvc, requestSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Accounts
		api.POST("/auth/register", h.RegisterUser)
		api.POST("/auth/register-shopkeeper", h.RegisterShopkeeper)
		api.POST("/auth/login", h.Login)

		// Shop directory and profile
		api.GET("/shops", h.ListShops)
		api.GET("/shops/:id", h.GetShop)
		api.PUT("/shops/profile", h.UpdateShopProfile)
		api.PUT("/shops/status", h.UpdateShopStatus)

		// Reviews (nested under the shop they rate)
		api.POST("/shops/:id/reviews", h.CreateReview)
		api.GET("/shops/:id/reviews", h.ListReviews)

		// Distance
		api.GET("/shops/:id/distance", h.DistanceToShop)
		api.POST("/distances", h.DistanceToShops)

		// Catalog and search
		api.GET("/products/search", h.SearchProducts)
		api.GET("/products/offers", h.ListOffers)
		api.POST("/products", h.CreateProduct)
		api.PUT("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		// Messaging
		api.POST("/messages", h.SendMessage)
		api.GET("/messages/partners", h.ListChatPartners)
		api.GET("/messages/:partnerId", h.GetConversation)
		api.DELETE("/messages/:partnerId", h.HideConversation)

		// Product requests and responses
		api.POST("/requests", h.CreateRequest)
		api.GET("/requests/pending", h.ListPendingRequests)
		api.GET("/requests/mine", h.ListMyRequests)
		api.PUT("/requests/:id/close", h.CloseRequest)
		api.POST("/requests/:id/respond", h.RespondToRequest)
		api.GET("/responses", h.ListResponses)
		api.DELETE("/responses/:id", h.ArchiveResponse)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
