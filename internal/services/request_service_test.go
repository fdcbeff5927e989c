package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/geo"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// ----- Fake repo -----

type fakeRequestRepo struct {
	request *domain.ProductRequest
	getErr  error

	createdRequest  *domain.ProductRequest
	createdResponse *domain.RequestResponse
	respondErr      error

	pendingCutoff time.Time
	pending       []domain.ProductRequest

	idemRecord  *domain.Idempotency
	idemCreated *domain.Idempotency

	closeErr   error
	archiveErr error
}

func (r *fakeRequestRepo) CreateRequest(ctx context.Context, db *gorm.DB, pr *domain.ProductRequest) error {
	pr.ID = 42
	r.createdRequest = pr
	return nil
}

func (r *fakeRequestRepo) GetRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ProductRequest, error) {
	return r.request, r.getErr
}

func (r *fakeRequestRepo) ListPendingForShop(ctx context.Context, db *gorm.DB, shopID uint, cutoff time.Time) ([]domain.ProductRequest, error) {
	r.pendingCutoff = cutoff
	return r.pending, nil
}

func (r *fakeRequestRepo) ListUserRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ProductRequest, error) {
	return nil, nil
}

func (r *fakeRequestRepo) CloseRequest(ctx context.Context, db *gorm.DB, id, userID uint) error {
	return r.closeErr
}

func (r *fakeRequestRepo) CreateResponse(ctx context.Context, db *gorm.DB, resp *domain.RequestResponse) error {
	if r.respondErr != nil {
		return r.respondErr
	}
	resp.ID = 7
	r.createdResponse = resp
	return nil
}

func (r *fakeRequestRepo) ListResponsesForUser(ctx context.Context, db *gorm.DB, userID uint) ([]repo.ResponseRow, error) {
	return nil, nil
}

func (r *fakeRequestRepo) ArchiveResponse(ctx context.Context, db *gorm.DB, responseID, userID uint) error {
	return r.archiveErr
}

func (r *fakeRequestRepo) GetIdempotency(ctx context.Context, db *gorm.DB, actorID uint, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if r.idemRecord == nil {
		return nil, repo.ErrNotFound
	}
	return r.idemRecord, nil
}

func (r *fakeRequestRepo) CreateIdempotency(ctx context.Context, db *gorm.DB, actorID uint, scope, key string, resultID uint, status int, ttl time.Duration) (*domain.Idempotency, error) {
	r.idemCreated = &domain.Idempotency{ActorID: actorID, Scope: scope, Key: key, ResultID: resultID, Status: status}
	return r.idemCreated, nil
}

func pendingRequest() *domain.ProductRequest {
	return &domain.ProductRequest{ID: 42, UserID: 7, ProductName: "Jaggery", Status: domain.RequestStatusPending}
}

// ----- Tests -----

func TestRequestCreate_Validation(t *testing.T) {
	s := NewRequestService(nil, &fakeRequestRepo{}, time.Hour)
	ctx := context.Background()
	lat, lon := 18.52, 73.85

	if _, err := s.Create(ctx, 7, "  ", nil, nil); !errors.Is(err, ErrEmptyProductName) {
		t.Fatalf("got %v, want ErrEmptyProductName", err)
	}
	if _, err := s.Create(ctx, 7, "Jaggery", &lat, nil); err == nil {
		t.Fatalf("expected error for half-set coordinates")
	}
	bad := 91.0
	if _, err := s.Create(ctx, 7, "Jaggery", &bad, &lon); !errors.Is(err, geo.ErrLatitudeRange) {
		t.Fatalf("got %v, want ErrLatitudeRange", err)
	}

	r := &fakeRequestRepo{}
	s = NewRequestService(nil, r, time.Hour)
	req, err := s.Create(ctx, 7, "Jaggery", &lat, &lon)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.Status != domain.RequestStatusPending || req.UserID != 7 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestPendingForShop_UsesVisibilityWindow(t *testing.T) {
	r := &fakeRequestRepo{}
	s := NewRequestService(nil, r, time.Hour)

	before := time.Now().UTC().Add(-PendingWindow)
	if _, err := s.PendingForShop(context.Background(), 3); err != nil {
		t.Fatalf("PendingForShop: %v", err)
	}
	if r.pendingCutoff.Before(before.Add(-time.Minute)) || r.pendingCutoff.After(time.Now().UTC()) {
		t.Fatalf("cutoff not ~2h ago: %v", r.pendingCutoff)
	}
}

func TestRespond_StateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing request", func(t *testing.T) {
		s := NewRequestService(nil, &fakeRequestRepo{getErr: repo.ErrNotFound}, time.Hour)
		if _, err := s.Respond(ctx, 42, 3, "", RespondInput{}); !errors.Is(err, ErrRequestNotFound) {
			t.Fatalf("got %v, want ErrRequestNotFound", err)
		}
	})
	t.Run("closed request", func(t *testing.T) {
		req := pendingRequest()
		req.Status = domain.RequestStatusClosed
		s := NewRequestService(nil, &fakeRequestRepo{request: req}, time.Hour)
		if _, err := s.Respond(ctx, 42, 3, "", RespondInput{}); !errors.Is(err, ErrRequestClosed) {
			t.Fatalf("got %v, want ErrRequestClosed", err)
		}
	})
	t.Run("second answer", func(t *testing.T) {
		s := NewRequestService(nil, &fakeRequestRepo{request: pendingRequest(), respondErr: repo.ErrDuplicate}, time.Hour)
		if _, err := s.Respond(ctx, 42, 3, "", RespondInput{Price: 60}); !errors.Is(err, ErrDuplicateResponse) {
			t.Fatalf("got %v, want ErrDuplicateResponse", err)
		}
	})
}

func TestRespond_DeclineAndDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("decline records marker", func(t *testing.T) {
		r := &fakeRequestRepo{request: pendingRequest()}
		s := NewRequestService(nil, r, time.Hour)
		out, err := s.Respond(ctx, 42, 3, "", RespondInput{Decline: true})
		if err != nil {
			t.Fatalf("Respond: %v", err)
		}
		if out.Response.ProductName != DeclineMarker || out.Replayed {
			t.Fatalf("unexpected outcome: %+v", out)
		}
	})

	t.Run("blank product name defaults to the asked-for product", func(t *testing.T) {
		r := &fakeRequestRepo{request: pendingRequest()}
		s := NewRequestService(nil, r, time.Hour)
		out, err := s.Respond(ctx, 42, 3, "", RespondInput{Price: 60})
		if err != nil {
			t.Fatalf("Respond: %v", err)
		}
		if out.Response.ProductName != "Jaggery" || out.Response.Price != 60 {
			t.Fatalf("unexpected response: %+v", out.Response)
		}
	})
}

func TestRespond_IdempotentReplay(t *testing.T) {
	ctx := context.Background()

	t.Run("first call records the key", func(t *testing.T) {
		r := &fakeRequestRepo{request: pendingRequest()}
		s := NewRequestService(nil, r, time.Hour)
		out, err := s.Respond(ctx, 42, 3, "retry-1", RespondInput{Price: 60})
		if err != nil || out.Replayed {
			t.Fatalf("first call: %v %+v", err, out)
		}
		if r.idemCreated == nil || r.idemCreated.Scope != "respond:42" || r.idemCreated.Key != "retry-1" {
			t.Fatalf("idempotency record not written: %+v", r.idemCreated)
		}
	})

	t.Run("retry replays without re-executing", func(t *testing.T) {
		r := &fakeRequestRepo{
			request:    pendingRequest(),
			idemRecord: &domain.Idempotency{ActorID: 3, Scope: "respond:42", Key: "retry-1", ResultID: 7},
		}
		s := NewRequestService(nil, r, time.Hour)
		out, err := s.Respond(ctx, 42, 3, "retry-1", RespondInput{Price: 60})
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		if !out.Replayed || out.Response.ID != 7 {
			t.Fatalf("expected replayed outcome, got %+v", out)
		}
		if r.createdResponse != nil {
			t.Fatalf("replay must not create a second response")
		}
	})
}

func TestCloseAndArchive_ErrorMapping(t *testing.T) {
	ctx := context.Background()

	s := NewRequestService(nil, &fakeRequestRepo{closeErr: repo.ErrNotFound}, time.Hour)
	if err := s.Close(ctx, 42, 7); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("got %v, want ErrRequestNotFound", err)
	}

	s = NewRequestService(nil, &fakeRequestRepo{archiveErr: repo.ErrNotFound}, time.Hour)
	if err := s.ArchiveResponse(ctx, 7, 7); !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("got %v, want ErrResponseNotFound", err)
	}
}
