// Product request HTTP handlers.
//
// This file exposes REST endpoints for the request/response workflow:
//   - POST   /requests                (buyer broadcasts "who has X?")
//   - GET    /requests/pending        (shopkeeper's answerable requests)
//   - GET    /requests/mine           (buyer's own requests)
//   - PUT    /requests/{id}/close     (buyer closes a request)
//   - POST   /requests/{id}/respond   (shopkeeper answers or declines, idempotent)
//   - GET    /responses               (buyer's inbox)
//   - DELETE /responses/{id}          (buyer archives an answer)
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

// CreateRequestRequest is the JSON payload for broadcasting a product
// request. Coordinates are optional but must come as a pair.
type CreateRequestRequest struct {
	ProductName string   `json:"product_name" binding:"required" example:"fresh paneer"`
	Latitude    *float64 `json:"latitude" example:"18.5204"`
	Longitude   *float64 `json:"longitude" example:"73.8567"`
}

// RespondRequest is the JSON payload for answering a product request.
// Setting decline records a refusal and ignores the product fields.
type RespondRequest struct {
	ProductName string  `json:"product_name" example:"Amul Paneer 200g"`
	Price       float64 `json:"price" example:"95"`
	Image       string  `json:"image" example:"https://cdn.example.com/paneer.jpg"`
	Note        string  `json:"note" example:"Fresh stock arrived today"`
	Decline     bool    `json:"decline" example:"false"`
}

//
// Handlers
//

// CreateRequest godoc
// @ID          createRequest
// @Summary     Broadcast a product request
// @Description Posts a buyer's "who has X?" request, visible to shopkeepers for two hours.
// @Tags        Requests
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Buyer ID (demo header)"  example(3)
// @Param       body       body    handlers.CreateRequestRequest  true  "Request payload"
//
// @Success     201  {object}  domain.ProductRequest
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests [post]
func (h *Handlers) CreateRequest(c *gin.Context) {
	userID, okID := requireActor(c)
	if !okID {
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	r, err := h.requestSvc.Create(c.Request.Context(), userID, req.ProductName, req.Latitude, req.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyProductName):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, geo.ErrNotFinite),
			errors.Is(err, geo.ErrLatitudeRange),
			errors.Is(err, geo.ErrLongitudeRange),
			errors.Is(err, geo.ErrNullIsland):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, r)
}

// ListPendingRequests godoc
// @ID          listPendingRequests
// @Summary     List answerable requests
// @Description Returns pending requests from the last two hours that the acting shopkeeper has not answered yet.
// @Tags        Requests
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Shopkeeper ID (demo header)"  example(7)
//
// @Success     200  {array}   domain.ProductRequest
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/pending [get]
func (h *Handlers) ListPendingRequests(c *gin.Context) {
	shopID, okID := requireActor(c)
	if !okID {
		return
	}

	reqs, err := h.requestSvc.PendingForShop(c.Request.Context(), shopID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, reqs)
}

// ListMyRequests godoc
// @ID          listMyRequests
// @Summary     List own requests
// @Description Returns the acting buyer's requests, newest first.
// @Tags        Requests
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Buyer ID (demo header)"  example(3)
//
// @Success     200  {array}   domain.ProductRequest
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/mine [get]
func (h *Handlers) ListMyRequests(c *gin.Context) {
	userID, okID := requireActor(c)
	if !okID {
		return
	}

	reqs, err := h.requestSvc.MyRequests(c.Request.Context(), userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, reqs)
}

// CloseRequest godoc
// @ID          closeRequest
// @Summary     Close a request
// @Description Marks the acting buyer's request closed so shops stop seeing it.
// @Tags        Requests
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Buyer ID (demo header)"  example(3)
// @Param       id         path    int  true  "Request ID"              example(42)
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id}/close [put]
func (h *Handlers) CloseRequest(c *gin.Context) {
	userID, okID := requireActor(c)
	if !okID {
		return
	}
	requestID, okRID := utils.ParseUint(c.Param("id"))
	if !okRID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a positive integer")
		return
	}

	if err := h.requestSvc.Close(c.Request.Context(), requestID, userID); err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}

// RespondToRequest godoc
// @ID          respondToRequest
// @Summary     Answer a request
// @Description Records the acting shopkeeper's answer (or decline) to a pending request. Each shop answers a request once; retries with the same Idempotency-Key replay the recorded outcome.
// @Tags        Requests
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  int     true   "Shopkeeper ID (demo header)"     example(7)
// @Param       Idempotency-Key  header  string  false  "Client-generated retry key"      example(4f9d5c3a)
// @Param       id               path    int     true   "Request ID"                      example(42)
// @Param       body             body    handlers.RespondRequest  true  "Answer payload"
//
// @Success     200  {object}  services.RespondOutcome  "Replayed earlier outcome"
// @Success     201  {object}  services.RespondOutcome
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Closed or already answered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id}/respond [post]
func (h *Handlers) RespondToRequest(c *gin.Context) {
	shopID, okID := requireActor(c)
	if !okID {
		return
	}
	requestID, okRID := utils.ParseUint(c.Param("id"))
	if !okRID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a positive integer")
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	outcome, err := h.requestSvc.Respond(c.Request.Context(), requestID, shopID,
		c.GetHeader("Idempotency-Key"), services.RespondInput{
			ProductName: req.ProductName,
			Price:       req.Price,
			Image:       req.Image,
			Note:        req.Note,
			Decline:     req.Decline,
		})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrRequestClosed), errors.Is(err, services.ErrDuplicateResponse):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		case errors.Is(err, services.ErrInvalidPrice):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	status := http.StatusCreated
	if outcome.Replayed {
		status = http.StatusOK
	}
	ok(c, status, outcome)
}

// ListResponses godoc
// @ID          listResponses
// @Summary     List response inbox
// @Description Returns shop answers to the acting buyer's requests, newest first. Declines and archived entries are filtered out.
// @Tags        Requests
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Buyer ID (demo header)"  example(3)
//
// @Success     200  {array}   repo.ResponseRow
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /responses [get]
func (h *Handlers) ListResponses(c *gin.Context) {
	userID, okID := requireActor(c)
	if !okID {
		return
	}

	rows, err := h.requestSvc.ResponsesForUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// ArchiveResponse godoc
// @ID          archiveResponse
// @Summary     Archive a response
// @Description Hides one answer from the acting buyer's inbox.
// @Tags        Requests
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Buyer ID (demo header)"  example(3)
// @Param       id         path    int  true  "Response ID"             example(13)
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Response not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /responses/{id} [delete]
func (h *Handlers) ArchiveResponse(c *gin.Context) {
	userID, okID := requireActor(c)
	if !okID {
		return
	}
	responseID, okRID := utils.ParseUint(c.Param("id"))
	if !okRID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "response id must be a positive integer")
		return
	}

	if err := h.requestSvc.ArchiveResponse(c.Request.Context(), responseID, userID); err != nil {
		if errors.Is(err, services.ErrResponseNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}
