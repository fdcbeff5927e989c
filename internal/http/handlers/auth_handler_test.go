package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/services"
)

func TestRegisterUser_BadJSON_Success_Conflict_Weak(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Bad JSON -> 400
	{
		h := newStubHandlers()
		r := gin.New()
		r.POST("/register/user", h.RegisterUser)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/register/user", bytes.NewBufferString("{bad"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Success -> 201, input passed through
	{
		var got services.RegisterUserInput
		auth := stubAuthSvc{
			registerUser: func(_ context.Context, in services.RegisterUserInput) (*domain.User, error) {
				got = in
				return &domain.User{ID: 5, Name: in.Name, Mobile: in.Mobile}, nil
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/register/user", h.RegisterUser)

		w := httptest.NewRecorder()
		body := `{"name":"asha","mobile":"9876543210","password":"secret1"}`
		req := httptest.NewRequest(http.MethodPost, "/register/user", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("register -> %d body=%s", w.Code, w.Body.String())
		}
		if got.Mobile != "9876543210" || got.Password != "secret1" {
			t.Fatalf("service input mismatch: %+v", got)
		}
		var out domain.User
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.ID != 5 {
			t.Fatalf("unexpected user: %#v", out)
		}
	}

	// Taken mobile -> 409
	{
		auth := stubAuthSvc{
			registerUser: func(context.Context, services.RegisterUserInput) (*domain.User, error) {
				return nil, services.ErrMobileTaken
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/register/user", h.RegisterUser)

		w := httptest.NewRecorder()
		body := `{"name":"a","mobile":"9876543210","password":"secret1"}`
		req := httptest.NewRequest(http.MethodPost, "/register/user", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusConflict {
			t.Fatalf("conflict -> %d", w.Code)
		}
	}

	// Weak password -> 400
	{
		auth := stubAuthSvc{
			registerUser: func(context.Context, services.RegisterUserInput) (*domain.User, error) {
				return nil, services.ErrWeakPassword
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/register/user", h.RegisterUser)

		w := httptest.NewRecorder()
		body := `{"name":"a","mobile":"9876543210","password":"abc"}`
		req := httptest.NewRequest(http.MethodPost, "/register/user", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("weak password -> %d", w.Code)
		}
	}
}

func TestRegisterShopkeeper_Success_And_InvalidMobile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Success with coordinates
	{
		var got services.RegisterShopkeeperInput
		auth := stubAuthSvc{
			registerShop: func(_ context.Context, in services.RegisterShopkeeperInput) (*domain.Shopkeeper, error) {
				got = in
				return &domain.Shopkeeper{ID: 9, ShopName: in.ShopName}, nil
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/register/shopkeeper", h.RegisterShopkeeper)

		w := httptest.NewRecorder()
		body := `{"name":"ram","mobile":"9876543211","password":"secret1","shop_name":"ram kirana","latitude":18.52,"longitude":73.85}`
		req := httptest.NewRequest(http.MethodPost, "/register/shopkeeper", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("register -> %d body=%s", w.Code, w.Body.String())
		}
		if got.ShopName != "ram kirana" || got.Latitude == nil || *got.Latitude != 18.52 {
			t.Fatalf("service input mismatch: %+v", got)
		}
	}

	// Invalid mobile -> 400
	{
		auth := stubAuthSvc{
			registerShop: func(context.Context, services.RegisterShopkeeperInput) (*domain.Shopkeeper, error) {
				return nil, services.ErrInvalidMobile
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/register/shopkeeper", h.RegisterShopkeeper)

		w := httptest.NewRecorder()
		body := `{"name":"ram","mobile":"12","password":"secret1","shop_name":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/register/shopkeeper", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("invalid mobile -> %d", w.Code)
		}
	}

	// Out-of-range coordinates -> 400, not 500
	{
		auth := stubAuthSvc{
			registerShop: func(context.Context, services.RegisterShopkeeperInput) (*domain.Shopkeeper, error) {
				return nil, geo.ErrLatitudeRange
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/register/shopkeeper", h.RegisterShopkeeper)

		w := httptest.NewRecorder()
		body := `{"name":"ram","mobile":"9876543211","password":"secret1","shop_name":"x","latitude":999,"longitude":73.85}`
		req := httptest.NewRequest(http.MethodPost, "/register/shopkeeper", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad coordinates -> %d body=%s", w.Code, w.Body.String())
		}
	}
}

func TestLogin_Success_Invalid_Internal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Success -> 200 with user_type
	{
		auth := stubAuthSvc{
			login: func(_ context.Context, mobile, password string) (*services.LoginResult, error) {
				return &services.LoginResult{
					UserType:   domain.UserTypeShopkeeper,
					Shopkeeper: &domain.Shopkeeper{ID: 3, Mobile: mobile},
				}, nil
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/login", h.Login)

		w := httptest.NewRecorder()
		body := `{"mobile":"9876543211","password":"secret1"}`
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("login -> %d body=%s", w.Code, w.Body.String())
		}
		var out services.LoginResult
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.UserType != domain.UserTypeShopkeeper || out.Shopkeeper == nil {
			t.Fatalf("unexpected result: %#v", out)
		}
	}

	// Wrong credentials -> 401
	{
		auth := stubAuthSvc{
			login: func(context.Context, string, string) (*services.LoginResult, error) {
				return nil, services.ErrInvalidCredentials
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/login", h.Login)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"mobile":"9876543211","password":"nope"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("unauthorized -> %d", w.Code)
		}
	}

	// DB failure -> 500
	{
		auth := stubAuthSvc{
			login: func(context.Context, string, string) (*services.LoginResult, error) {
				return nil, gorm.ErrInvalidField
			},
		}
		h := New(auth, stubShopSvc{}, stubProductSvc{}, stubDistanceSvc{}, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/login", h.Login)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"mobile":"9876543211","password":"x"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("internal -> %d", w.Code)
		}
	}
}
