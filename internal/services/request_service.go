// Package services – RequestService
//
// This file implements the RequestService, which runs the product request
// workflow: buyers broadcast "who has X?", shopkeepers see pending requests
// for a limited window and answer (or decline) once each, and buyers read
// and archive the answers. Responding is idempotent: a retried POST with the
// same Idempotency-Key replays the recorded outcome instead of re-executing.
package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// PendingWindow is how long a pending request stays visible to shopkeepers.
const PendingWindow = 2 * time.Hour

// DeclineMarker is the ProductName recorded when a shop declines a request.
// It only exists to stop re-showing the request to that shop and is filtered
// out of the buyer's inbox.
const DeclineMarker = "NO"

// RequestRepo defines the repository contract required by RequestService.
type RequestRepo interface {
	CreateRequest(ctx context.Context, db *gorm.DB, r *domain.ProductRequest) error
	GetRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ProductRequest, error)
	ListPendingForShop(ctx context.Context, db *gorm.DB, shopID uint, cutoff time.Time) ([]domain.ProductRequest, error)
	ListUserRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ProductRequest, error)
	CloseRequest(ctx context.Context, db *gorm.DB, id, userID uint) error
	CreateResponse(ctx context.Context, db *gorm.DB, r *domain.RequestResponse) error
	ListResponsesForUser(ctx context.Context, db *gorm.DB, userID uint) ([]repo.ResponseRow, error)
	ArchiveResponse(ctx context.Context, db *gorm.DB, responseID, userID uint) error
	GetIdempotency(ctx context.Context, db *gorm.DB, actorID uint, scope, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, actorID uint, scope, key string, resultID uint, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// RequestService runs the product request/response workflow.
type RequestService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the request repository used by this service.
	Repo RequestRepo
	// IdempotencyTTL bounds how long a recorded response key replays.
	IdempotencyTTL time.Duration
}

// NewRequestService constructs a RequestService.
func NewRequestService(db *gorm.DB, r RequestRepo, idempotencyTTL time.Duration) *RequestService {
	return &RequestService{DB: db, Repo: r, IdempotencyTTL: idempotencyTTL}
}

// Create broadcasts a buyer's product request. Coordinates are optional; if
// one is given, both must be, and they must be valid.
func (s *RequestService) Create(ctx context.Context, userID uint, productName string, lat, lon *float64) (*domain.ProductRequest, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, ErrEmptyProductName
	}
	if (lat == nil) != (lon == nil) {
		return nil, geo.ErrNotFinite
	}
	if lat != nil {
		if err := geo.ValidateCoordinates(*lat, *lon); err != nil {
			return nil, err
		}
	}

	r := &domain.ProductRequest{
		UserID:      userID,
		ProductName: productName,
		Latitude:    lat,
		Longitude:   lon,
		Status:      domain.RequestStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.CreateRequest(ctx, s.DB, r); err != nil {
		return nil, err
	}
	return r, nil
}

// PendingForShop returns requests the shop can still answer: pending, inside
// the visibility window, and not yet answered by this shop.
func (s *RequestService) PendingForShop(ctx context.Context, shopID uint) ([]domain.ProductRequest, error) {
	cutoff := time.Now().UTC().Add(-PendingWindow)
	return s.Repo.ListPendingForShop(ctx, s.DB, shopID, cutoff)
}

// MyRequests returns the buyer's own requests, newest first.
func (s *RequestService) MyRequests(ctx context.Context, userID uint) ([]domain.ProductRequest, error) {
	return s.Repo.ListUserRequests(ctx, s.DB, userID)
}

// Close marks a buyer's request closed. Missing or foreign requests map to
// ErrRequestNotFound.
func (s *RequestService) Close(ctx context.Context, requestID, userID uint) error {
	if err := s.Repo.CloseRequest(ctx, s.DB, requestID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	return nil
}

// RespondInput carries a shop's answer. Declines set Decline and ignore the
// product fields.
type RespondInput struct {
	ProductName string
	Price       float64
	Image       string
	Note        string
	Decline     bool
}

// RespondOutcome reports a response creation plus whether it was replayed
// from an earlier identical request.
type RespondOutcome struct {
	Response *domain.RequestResponse `json:"response"`
	Replayed bool                    `json:"replayed"`
}

// respondScope builds the idempotency scope for answering one request.
func respondScope(requestID uint) string {
	return "respond:" + strconv.FormatUint(uint64(requestID), 10)
}

// Respond records a shop's answer to a request. With a non-empty
// idempotencyKey, a retry of the same (shop, request, key) replays the
// original outcome; without one, a second answer surfaces as
// ErrDuplicateResponse via the unique index.
func (s *RequestService) Respond(ctx context.Context, requestID, shopID uint, idempotencyKey string, in RespondInput) (*RespondOutcome, error) {
	req, err := s.Repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		return nil, ErrRequestClosed
	}

	idempotencyKey = strings.TrimSpace(idempotencyKey)
	scope := respondScope(requestID)
	if idempotencyKey != "" {
		if rec, err := s.Repo.GetIdempotency(ctx, s.DB, shopID, scope, idempotencyKey, time.Now().UTC()); err == nil && rec != nil {
			return &RespondOutcome{
				Response: &domain.RequestResponse{ID: rec.ResultID, RequestID: requestID, ShopID: shopID},
				Replayed: true,
			}, nil
		} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	resp := &domain.RequestResponse{
		RequestID: requestID,
		ShopID:    shopID,
		CreatedAt: time.Now().UTC(),
	}
	if in.Decline {
		resp.ProductName = DeclineMarker
	} else {
		name := strings.TrimSpace(in.ProductName)
		if name == "" {
			name = req.ProductName
		}
		if in.Price < 0 {
			return nil, ErrInvalidPrice
		}
		resp.ProductName = name
		resp.Price = in.Price
		resp.Image = in.Image
		resp.Note = strings.TrimSpace(in.Note)
	}

	if err := s.Repo.CreateResponse(ctx, s.DB, resp); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateResponse
		}
		return nil, err
	}

	if idempotencyKey != "" {
		// Best effort: a lost record only costs one replay opportunity.
		_, _ = s.Repo.CreateIdempotency(ctx, s.DB, shopID, scope, idempotencyKey, resp.ID, http.StatusCreated, s.IdempotencyTTL)
	}
	return &RespondOutcome{Response: resp}, nil
}

// ResponsesForUser returns the buyer's inbox: real, non-archived answers to
// their requests, newest first.
func (s *RequestService) ResponsesForUser(ctx context.Context, userID uint) ([]repo.ResponseRow, error) {
	return s.Repo.ListResponsesForUser(ctx, s.DB, userID)
}

// ArchiveResponse hides one answer from the buyer's inbox. Missing or
// foreign responses map to ErrResponseNotFound.
func (s *RequestService) ArchiveResponse(ctx context.Context, responseID, userID uint) error {
	if err := s.Repo.ArchiveResponse(ctx, s.DB, responseID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrResponseNotFound
		}
		return err
	}
	return nil
}
