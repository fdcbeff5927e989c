// Auth HTTP handlers.
//
// This file exposes REST endpoints for account management:
//   - POST /auth/register             (buyer signup)
//   - POST /auth/register-shopkeeper  (shopkeeper signup with shop profile)
//   - POST /auth/login                (shared login over both account kinds)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-market-backend/internal/services"
)

//
// DTOs
//

// RegisterUserRequest is the JSON payload for buyer signup.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required" example:"Asha Patil"`
	Mobile   string `json:"mobile" binding:"required" example:"9876543210"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// RegisterShopkeeperRequest is the JSON payload for shopkeeper signup.
type RegisterShopkeeperRequest struct {
	Name      string   `json:"name" binding:"required" example:"Ram Sharma"`
	Mobile    string   `json:"mobile" binding:"required" example:"9876543211"`
	Password  string   `json:"password" binding:"required" example:"secret1"`
	ShopName  string   `json:"shop_name" binding:"required" example:"Ram Kirana"`
	Category  string   `json:"category" example:"Grocery"`
	Village   string   `json:"village" example:"Wagholi"`
	City      string   `json:"city" example:"Pune"`
	Latitude  *float64 `json:"latitude" example:"18.5204"`
	Longitude *float64 `json:"longitude" example:"73.8567"`
}

// LoginRequest is the JSON payload for the shared login endpoint.
type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required" example:"9876543210"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

//
// Handlers
//

// RegisterUser godoc
// @ID          registerUser
// @Summary     Register a buyer account
// @Description Creates a buyer account. Mobile numbers are unique across buyers and shopkeepers.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterUserRequest  true  "Signup payload"
//
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Mobile already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.authSvc.RegisterUser(c.Request.Context(), services.RegisterUserInput{
		Name: req.Name, Mobile: req.Mobile, Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMobileTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		case errors.Is(err, services.ErrInvalidMobile), errors.Is(err, services.ErrWeakPassword):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeRegisterFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, u)
}

// RegisterShopkeeper godoc
// @ID          registerShopkeeper
// @Summary     Register a shopkeeper account
// @Description Creates a shopkeeper account together with its shop profile.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterShopkeeperRequest  true  "Signup payload"
//
// @Success     201  {object}  domain.Shopkeeper
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Mobile already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register-shopkeeper [post]
func (h *Handlers) RegisterShopkeeper(c *gin.Context) {
	var req RegisterShopkeeperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sk, err := h.authSvc.RegisterShopkeeper(c.Request.Context(), services.RegisterShopkeeperInput{
		Name:      req.Name,
		Mobile:    req.Mobile,
		Password:  req.Password,
		ShopName:  req.ShopName,
		Category:  req.Category,
		Village:   req.Village,
		City:      req.City,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		if originError(c, err) {
			return
		}
		switch {
		case errors.Is(err, services.ErrMobileTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		case errors.Is(err, services.ErrInvalidMobile), errors.Is(err, services.ErrWeakPassword):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeRegisterFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, sk)
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Authenticates a mobile/password pair against both account kinds and reports which matched.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  services.LoginResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.authSvc.Login(c.Request.Context(), req.Mobile, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}
