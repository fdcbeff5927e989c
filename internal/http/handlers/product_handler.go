// Product HTTP handlers.
//
// This file exposes REST endpoints for the catalog:
//   - GET    /products/search    (synonym-expanded search, optional distance annotation)
//   - GET    /products/offers    (special offers, ETag support)
//   - POST   /products           (shopkeeper create)
//   - PUT    /products/{id}      (shopkeeper update)
//   - DELETE /products/{id}      (shopkeeper delete)
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/repo"
	"github.com/tbourn/go-market-backend/internal/services"
	"github.com/tbourn/go-market-backend/internal/utils"
)

//
// DTOs
//

// CreateProductRequest is the JSON payload for adding a catalog row.
type CreateProductRequest struct {
	Name           string   `json:"name" binding:"required" example:"Basmati Rice 5kg"`
	Price          float64  `json:"price" example:"499"`
	Image          string   `json:"image" example:"https://cdn.example.com/rice.jpg"`
	IsBestSeller   bool     `json:"is_best_seller" example:"false"`
	IsSpecialOffer bool     `json:"is_special_offer" example:"true"`
	OfferMessage   string   `json:"offer_message" example:"Festival price"`
	OriginalPrice  *float64 `json:"original_price" example:"599"`
}

// UpdateProductRequest is the JSON payload for partial product updates.
// Omitted fields are left unchanged.
type UpdateProductRequest struct {
	Name           *string  `json:"name" example:"Basmati Rice 5kg"`
	Price          *float64 `json:"price" example:"479"`
	Image          *string  `json:"image" example:"https://cdn.example.com/rice.jpg"`
	InStock        *bool    `json:"in_stock" example:"true"`
	IsBestSeller   *bool    `json:"is_best_seller" example:"true"`
	IsSpecialOffer *bool    `json:"is_special_offer" example:"false"`
	OfferMessage   *string  `json:"offer_message" example:""`
	OriginalPrice  *float64 `json:"original_price" example:"599"`
}

// SearchResponse wraps a page of search hits and pagination information.
type SearchResponse struct {
	Results    []services.SearchResult `json:"results"`
	Pagination Pagination              `json:"pagination"`
}

//
// Handlers
//

// SearchProducts godoc
// @ID          searchProducts
// @Summary     Search products
// @Description Expands the query through the synonym dictionary and matches product names, shop names, and categories. When lat/lng are supplied each hit is annotated with the distance to its shop.
// @Tags        Products
// @Produce     json
//
// @Param       search  query  string  true   "Search query"          example(veggies)
// @Param       page    query  int     false  "Page number"           minimum(1) default(1)
// @Param       limit   query  int     false  "Items per page"        minimum(1) maximum(100) default(20)
// @Param       lat     query  number  false  "Caller latitude"       example(18.5204)
// @Param       lng     query  number  false  "Caller longitude"      example(73.8567)
//
// @Success     200  {object}  handlers.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/search [get]
func (h *Handlers) SearchProducts(c *gin.Context) {
	query := c.Query("search")
	page, pageSize := clampPagination(c)

	origin, okOrigin := originFromQuery(c)
	if !okOrigin {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lat and lng must both be valid numbers")
		return
	}

	results, err := h.productSvc.Search(c.Request.Context(), query, page, pageSize, origin)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSearchFailed, err.Error())
		return
	}

	resp := SearchResponse{
		Results: results,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			Count:    len(results),
			HasNext:  len(results) == pageSize,
		},
	}
	ok(c, http.StatusOK, resp)
}

// ListOffers godoc
// @ID          listOffers
// @Summary     List special offers
// @Description Returns flagged products cheapest first, capped at 50. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Products
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {array}  repo.SearchRow
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/offers [get]
func (h *Handlers) ListOffers(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.productSvc.(*services.ProductService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.OffersStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"offers:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	offers, err := h.productSvc.ListOffers(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, offers)
}

// CreateProduct godoc
// @ID          createProduct
// @Summary     Add a product
// @Description Inserts a catalog row for the acting shopkeeper.
// @Tags        Products
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Shopkeeper ID (demo header)"  example(7)
// @Param       body       body    handlers.CreateProductRequest  true  "Product payload"
//
// @Success     201  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	shopID, okID := requireActor(c)
	if !okID {
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.productSvc.Create(c.Request.Context(), shopID, services.CreateProductInput{
		Name:           req.Name,
		Price:          req.Price,
		Image:          req.Image,
		IsBestSeller:   req.IsBestSeller,
		IsSpecialOffer: req.IsSpecialOffer,
		OfferMessage:   req.OfferMessage,
		OriginalPrice:  req.OriginalPrice,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyProductName), errors.Is(err, services.ErrInvalidPrice):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, p)
}

// UpdateProduct godoc
// @ID          updateProduct
// @Summary     Update a product
// @Description Applies partial changes to a product owned by the acting shopkeeper.
// @Tags        Products
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Shopkeeper ID (demo header)"  example(7)
// @Param       id         path    int  true  "Product ID"                   example(42)
// @Param       body       body    handlers.UpdateProductRequest  true  "Product changes"
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [put]
func (h *Handlers) UpdateProduct(c *gin.Context) {
	shopID, okID := requireActor(c)
	if !okID {
		return
	}
	productID, okPID := utils.ParseUint(c.Param("id"))
	if !okPID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a positive integer")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.productSvc.Update(c.Request.Context(), productID, shopID, services.UpdateProductInput{
		Name:           req.Name,
		Price:          req.Price,
		Image:          req.Image,
		InStock:        req.InStock,
		IsBestSeller:   req.IsBestSeller,
		IsSpecialOffer: req.IsSpecialOffer,
		OfferMessage:   req.OfferMessage,
		OriginalPrice:  req.OriginalPrice,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrEmptyProductName), errors.Is(err, services.ErrInvalidPrice):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}
	noContent(c)
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Delete a product
// @Description Removes a product owned by the acting shopkeeper.
// @Tags        Products
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Shopkeeper ID (demo header)"  example(7)
// @Param       id         path    int  true  "Product ID"                   example(42)
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	shopID, okID := requireActor(c)
	if !okID {
		return
	}
	productID, okPID := utils.ParseUint(c.Param("id"))
	if !okPID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a positive integer")
		return
	}

	if err := h.productSvc.Delete(c.Request.Context(), productID, shopID); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
