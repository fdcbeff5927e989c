package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, 7, "respond:42", "k-1", 101, 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.ResultID != 101 || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, 7, "respond:42", "k-1", now)
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.ResultID != 101 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestIdempotency_DuplicateTuple(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, 7, "respond:42", "k-1", 101, 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := CreateIdempotency(ctx, db, 7, "respond:42", "k-1", 102, 201, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// A different actor or scope with the same key is a distinct tuple.
	if _, err := CreateIdempotency(ctx, db, 8, "respond:42", "k-1", 103, 201, time.Hour); err != nil {
		t.Fatalf("different actor: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, 7, "respond:43", "k-1", 104, 201, time.Hour); err != nil {
		t.Fatalf("different scope: %v", err)
	}
}

func TestIdempotency_ExpiredReadsAsNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, 7, "respond:42", "k-1", 101, 201, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := GetIdempotency(ctx, db, 7, "respond:42", "k-1", time.Now().UTC().Add(time.Second))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired record, got %v", err)
	}
}

func TestIdempotency_EmptyScopeIsNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := GetIdempotency(context.Background(), db, 7, "  ", "k-1", time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank scope, got %v", err)
	}
}
