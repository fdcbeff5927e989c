package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/services"
)

func TestDistanceToShop_Validation_NotFound_NoLocation_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// missing query params -> 400
	{
		h := newStubHandlers()
		r := gin.New()
		r.GET("/distance/:id", h.DistanceToShop)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/distance/7", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing params -> %d", w.Code)
		}
	}

	// null island origin -> 400 with the sentinel message
	{
		svc := stubDistanceSvc{
			toShop: func(_ context.Context, origin geo.Point, _ uint) (*services.DistanceResult, error) {
				return nil, origin.Validate()
			},
		}
		h := New(stubAuthSvc{}, stubShopSvc{}, stubProductSvc{}, svc, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.GET("/distance/:id", h.DistanceToShop)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/distance/7?lat=0&lng=0", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("null island -> %d", w.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json: %v", err)
		}
		if resp.Code != ErrCodeBadRequest {
			t.Fatalf("error code = %q", resp.Code)
		}
	}

	// unknown shop -> 404
	{
		svc := stubDistanceSvc{
			toShop: func(context.Context, geo.Point, uint) (*services.DistanceResult, error) {
				return nil, services.ErrShopNotFound
			},
		}
		h := New(stubAuthSvc{}, stubShopSvc{}, stubProductSvc{}, svc, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.GET("/distance/:id", h.DistanceToShop)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/distance/99?lat=18.5&lng=73.8", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("not found -> %d", w.Code)
		}
	}

	// unlocated shop -> 422
	{
		svc := stubDistanceSvc{
			toShop: func(context.Context, geo.Point, uint) (*services.DistanceResult, error) {
				return nil, services.ErrShopHasNoLocation
			},
		}
		h := New(stubAuthSvc{}, stubShopSvc{}, stubProductSvc{}, svc, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.GET("/distance/:id", h.DistanceToShop)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/distance/7?lat=18.5&lng=73.8", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("no location -> %d", w.Code)
		}
	}

	// success -> 200
	{
		km := 3.25
		svc := stubDistanceSvc{
			toShop: func(_ context.Context, _ geo.Point, shopID uint) (*services.DistanceResult, error) {
				return &services.DistanceResult{
					ShopID: shopID, ShopName: "Ram Kirana", Km: &km, Formatted: "3.25 km",
				}, nil
			},
		}
		h := New(stubAuthSvc{}, stubShopSvc{}, stubProductSvc{}, svc, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.GET("/distance/:id", h.DistanceToShop)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/distance/7?lat=18.5&lng=73.8", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("distance -> %d body=%s", w.Code, w.Body.String())
		}
		var out services.DistanceResult
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.ShopID != 7 || out.Km == nil || *out.Km != 3.25 || out.Formatted != "3.25 km" {
			t.Fatalf("unexpected result: %#v", out)
		}
	}
}

func TestDistanceToShops_Binding_Success_InlineErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// missing coordinates -> 400 (zero would be ambiguous without pointers)
	{
		h := newStubHandlers()
		r := gin.New()
		r.POST("/distance/batch", h.DistanceToShops)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/distance/batch", bytes.NewBufferString(`{"shop_ids":[1]}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing coords -> %d", w.Code)
		}
	}

	// success: order preserved, per-item error inline
	{
		svc := stubDistanceSvc{
			toShops: func(_ context.Context, origin geo.Point, ids []uint) ([]services.DistanceResult, error) {
				if origin.Lat != 18.5 || len(ids) != 2 {
					t.Fatalf("args mismatch: %v %v", origin, ids)
				}
				km := 1.5
				return []services.DistanceResult{
					{ShopID: ids[0], Km: &km, Formatted: "1.50 km"},
					{ShopID: ids[1], Error: services.ErrShopNotFound.Error()},
				}, nil
			},
		}
		h := New(stubAuthSvc{}, stubShopSvc{}, stubProductSvc{}, svc, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/distance/batch", h.DistanceToShops)

		w := httptest.NewRecorder()
		body := `{"latitude":18.5,"longitude":73.8,"shop_ids":[7,99]}`
		req := httptest.NewRequest(http.MethodPost, "/distance/batch", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("batch -> %d body=%s", w.Code, w.Body.String())
		}
		var out BatchDistanceResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if len(out.Results) != 2 || out.Results[0].ShopID != 7 || out.Results[1].Error == "" {
			t.Fatalf("unexpected results: %#v", out.Results)
		}
	}

	// invalid origin fails wholesale -> 400
	{
		svc := stubDistanceSvc{
			toShops: func(context.Context, geo.Point, []uint) ([]services.DistanceResult, error) {
				return nil, geo.ErrLatitudeRange
			},
		}
		h := New(stubAuthSvc{}, stubShopSvc{}, stubProductSvc{}, svc, stubReviewSvc{}, stubChatSvc{}, stubRequestSvc{})
		r := gin.New()
		r.POST("/distance/batch", h.DistanceToShops)

		w := httptest.NewRecorder()
		body := `{"latitude":95,"longitude":73.8,"shop_ids":[7]}`
		req := httptest.NewRequest(http.MethodPost, "/distance/batch", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad origin -> %d", w.Code)
		}
	}
}
