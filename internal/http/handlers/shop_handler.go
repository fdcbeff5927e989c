// Shop HTTP handlers.
//
// This file exposes REST endpoints for the shop directory:
//   - GET /shops              (directory listing, ETag support)
//   - GET /shops/{id}         (detail bundle with products, reviews, rating)
//   - PUT /shops/profile      (shopkeeper profile update)
//   - PUT /shops/status       (open/closed flag)
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

// UpdateShopProfileRequest is the JSON payload for shop profile updates.
// Omitted fields are left unchanged.
type UpdateShopProfileRequest struct {
	ShopName    *string  `json:"shop_name" example:"Ram Kirana Store"`
	Category    *string  `json:"category" example:"Grocery"`
	Village     *string  `json:"village" example:"Wagholi"`
	City        *string  `json:"city" example:"Pune"`
	Latitude    *float64 `json:"latitude" example:"18.5204"`
	Longitude   *float64 `json:"longitude" example:"73.8567"`
	OwnerPhoto  *string  `json:"owner_photo" example:"https://cdn.example.com/owner.jpg"`
	ShopPhoto   *string  `json:"shop_photo" example:"https://cdn.example.com/shop.jpg"`
	OpeningTime *string  `json:"opening_time" example:"09:00"`
	ClosingTime *string  `json:"closing_time" example:"21:00"`
}

// UpdateShopStatusRequest is the JSON payload for the open/closed toggle.
type UpdateShopStatusRequest struct {
	IsOpen *bool `json:"is_open" binding:"required" example:"true"`
}

//
// Handlers
//

// ListShops godoc
// @ID          listShops
// @Summary     List shops
// @Description Returns every shop that has published a location, sorted by name. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Shops
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {array}  domain.Shopkeeper
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /shops [get]
func (h *Handlers) ListShops(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.shopSvc.(*services.ShopService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.ShopsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"shops:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	shops, err := h.shopSvc.ListShops(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, shops)
}

// GetShop godoc
// @ID          getShop
// @Summary     Get shop detail
// @Description Returns one shop together with its products, recent reviews, and average rating.
// @Tags        Shops
// @Produce     json
//
// @Param       id  path  int  true  "Shop ID"  example(7)
//
// @Success     200  {object}  repo.ShopDetail
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Shop not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/{id} [get]
func (h *Handlers) GetShop(c *gin.Context) {
	shopID, okID := utils.ParseUint(c.Param("id"))
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "shop id must be a positive integer")
		return
	}

	detail, err := h.shopSvc.GetShopDetail(c.Request.Context(), shopID)
	if err != nil {
		if errors.Is(err, services.ErrShopNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, detail)
}

// UpdateShopProfile godoc
// @ID          updateShopProfile
// @Summary     Update shop profile
// @Description Applies partial profile changes for the acting shopkeeper. Omitted fields are left unchanged.
// @Tags        Shops
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Shopkeeper ID (demo header)"  example(7)
// @Param       body       body    handlers.UpdateShopProfileRequest  true  "Profile changes"
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Shop not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/profile [put]
func (h *Handlers) UpdateShopProfile(c *gin.Context) {
	shopID, okID := requireActor(c)
	if !okID {
		return
	}

	var req UpdateShopProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.shopSvc.UpdateProfile(c.Request.Context(), shopID, services.UpdateProfileInput{
		ShopName:    req.ShopName,
		Category:    req.Category,
		Village:     req.Village,
		City:        req.City,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		OwnerPhoto:  req.OwnerPhoto,
		ShopPhoto:   req.ShopPhoto,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	})
	if err != nil {
		if errors.Is(err, services.ErrShopNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		if originError(c, err) {
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}

// UpdateShopStatus godoc
// @ID          updateShopStatus
// @Summary     Set shop open/closed
// @Description Flips the acting shopkeeper's open flag shown in the directory.
// @Tags        Shops
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Shopkeeper ID (demo header)"  example(7)
// @Param       body       body    handlers.UpdateShopStatusRequest  true  "Open flag"
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Shop not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/status [put]
func (h *Handlers) UpdateShopStatus(c *gin.Context) {
	shopID, okID := requireActor(c)
	if !okID {
		return
	}

	var req UpdateShopStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsOpen == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "is_open is required")
		return
	}

	if err := h.shopSvc.SetOpenStatus(c.Request.Context(), shopID, *req.IsOpen); err != nil {
		if errors.Is(err, services.ErrShopNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}
