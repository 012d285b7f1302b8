package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "predictions_user_match_unique"}
	if !isUniqueViolation(unique) {
		t.Fatalf("expected true for 23505")
	}
	if !isUniqueViolation(fmt.Errorf("insert prediction: %w", unique)) {
		t.Fatalf("expected true for wrapped 23505")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatalf("expected false for foreign key violation")
	}
	if isUniqueViolation(errors.New("not a pq error")) {
		t.Fatalf("expected false for non-pq error")
	}
}

func TestNullConversions(t *testing.T) {
	at := time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)

	if got := nullTimeToTimePtr(sql.NullTime{Time: at, Valid: true}); got == nil || !got.Equal(at) {
		t.Fatalf("unexpected time pointer: %v", got)
	}
	if got := nullTimeToTimePtr(sql.NullTime{}); got != nil {
		t.Fatalf("expected nil for invalid time, got %v", got)
	}

	if got := nullInt64ToInt64Ptr(sql.NullInt64{Int64: 5, Valid: true}); got == nil || *got != 5 {
		t.Fatalf("unexpected int64 pointer: %v", got)
	}
	if got := nullInt64ToInt64Ptr(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil for invalid int64, got %v", got)
	}

	if got := nullInt64ToIntPtr(sql.NullInt64{Int64: 10, Valid: true}); got == nil || *got != 10 {
		t.Fatalf("unexpected int pointer: %v", got)
	}
	if got := nullInt64ToIntPtr(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil for invalid int, got %v", got)
	}

	if got := nullStringToString(sql.NullString{String: "x", Valid: true}); got != "x" {
		t.Fatalf("unexpected string: %q", got)
	}
	if got := nullStringToString(sql.NullString{}); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
