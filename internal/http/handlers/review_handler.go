// Review HTTP handlers.
//
// This file exposes REST endpoints for shop reviews:
//   - POST /shops/{id}/reviews  (one review per buyer per shop)
//   - GET  /shops/{id}/reviews  (newest first)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-market-backend/internal/services"
	"github.com/tbourn/go-market-backend/internal/utils"
)

// CreateReviewRequest is the JSON payload for leaving a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required" example:"4"`
	Comment string `json:"comment" example:"Fresh stock, fair prices"`
}

// CreateReview godoc
// @ID          createReview
// @Summary     Review a shop
// @Description Leaves a 1-5 star review. A buyer can review each shop once.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Buyer ID (demo header)"  example(3)
// @Param       id         path    int  true  "Shop ID"                 example(7)
// @Param       body       body    handlers.CreateReviewRequest  true  "Review payload"
//
// @Success     201  {object}  domain.Review
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Shop not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already reviewed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/{id}/reviews [post]
func (h *Handlers) CreateReview(c *gin.Context) {
	userID, okID := requireActor(c)
	if !okID {
		return
	}
	shopID, okSID := utils.ParseUint(c.Param("id"))
	if !okSID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "shop id must be a positive integer")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	rev, err := h.reviewSvc.Create(c.Request.Context(), shopID, userID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrShopNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrAlreadyReviewed):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, rev)
}

// ListReviews godoc
// @ID          listReviews
// @Summary     List shop reviews
// @Description Returns a shop's reviews, newest first.
// @Tags        Reviews
// @Produce     json
//
// @Param       id     path   int  true   "Shop ID"            example(7)
// @Param       limit  query  int  false  "Max reviews (0 = all)"  default(0)
//
// @Success     200  {array}   domain.Review
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Shop not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/{id}/reviews [get]
func (h *Handlers) ListReviews(c *gin.Context) {
	shopID, okSID := utils.ParseUint(c.Param("id"))
	if !okSID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "shop id must be a positive integer")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0)

	reviews, err := h.reviewSvc.List(c.Request.Context(), shopID, limit)
	if err != nil {
		if errors.Is(err, services.ErrShopNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, reviews)
}
