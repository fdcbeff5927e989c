// Distance HTTP handlers.
//
// This file exposes REST endpoints for distance evaluation:
//   - GET  /shops/{id}/distance  (origin to one shop)
//   - POST /distances            (origin to many shops, per-item errors inline)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/services"
	"github.com/tbourn/go-market-backend/internal/utils"
)

//
// DTOs
//

// BatchDistanceRequest is the JSON payload for batch distance evaluation.
// Latitude and longitude are pointers so that an omitted field can be told
// apart from a legitimate zero.
type BatchDistanceRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required" example:"18.5204"`
	Longitude *float64 `json:"longitude" binding:"required" example:"73.8567"`
	ShopIDs   []uint   `json:"shop_ids" binding:"required" example:"7,9,12"`
}

// BatchDistanceResponse wraps per-shop outcomes in input order.
type BatchDistanceResponse struct {
	Results []services.DistanceResult `json:"results"`
}

// originError maps a coordinate validation failure to a 400 with the
// sentinel's message.
func originError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, geo.ErrNotFinite),
		errors.Is(err, geo.ErrLatitudeRange),
		errors.Is(err, geo.ErrLongitudeRange),
		errors.Is(err, geo.ErrNullIsland):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return true
	}
	return false
}

//
// Handlers
//

// DistanceToShop godoc
// @ID          distanceToShop
// @Summary     Distance to one shop
// @Description Computes the great-circle distance from the caller's position to a shop. The (0,0) point is rejected as an unset GPS reading.
// @Tags        Distance
// @Produce     json
//
// @Param       id   path   int     true  "Shop ID"          example(7)
// @Param       lat  query  number  true  "Origin latitude"  example(18.5204)
// @Param       lng  query  number  true  "Origin longitude" example(73.8567)
//
// @Success     200  {object}  services.DistanceResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Shop not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Shop has no location"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/{id}/distance [get]
func (h *Handlers) DistanceToShop(c *gin.Context) {
	shopID, okID := utils.ParseUint(c.Param("id"))
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "shop id must be a positive integer")
		return
	}

	lat, okLat := utils.ParseFloat(c.Query("lat"))
	lon, okLon := utils.ParseFloat(c.Query("lng"))
	if !okLat || !okLon {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lat and lng query params are required")
		return
	}

	res, err := h.distanceSvc.ToShop(c.Request.Context(), geo.Point{Lat: lat, Lon: lon}, shopID)
	if err != nil {
		switch {
		case originError(c, err):
		case errors.Is(err, services.ErrShopNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrShopHasNoLocation):
			fail(c, http.StatusUnprocessableEntity, ErrCodeDistanceFailed, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeDistanceFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}

// DistanceToShops godoc
// @ID          distanceToShops
// @Summary     Distance to many shops
// @Description Evaluates one origin against a list of shops in a single call. Per-shop problems (unknown ID, unset coordinates) are reported inline on that item; only an invalid origin fails the whole request.
// @Tags        Distance
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.BatchDistanceRequest  true  "Origin and shop IDs"
//
// @Success     200  {object}  handlers.BatchDistanceResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /distances [post]
func (h *Handlers) DistanceToShops(c *gin.Context) {
	var req BatchDistanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "latitude, longitude, and shop_ids are required")
		return
	}

	origin := geo.Point{Lat: *req.Latitude, Lon: *req.Longitude}
	results, err := h.distanceSvc.ToShops(c.Request.Context(), origin, req.ShopIDs)
	if err != nil {
		if originError(c, err) {
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDistanceFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, BatchDistanceResponse{Results: results})
}
