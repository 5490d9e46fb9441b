package timerange

import (
	"testing"
	"time"
)

func TestParseBareDatesPinToUTCMidnight(t *testing.T) {
	r, err := Parse("2025-09-01", "2025-09-05", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	wantFrom := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	if !r.From.Equal(wantFrom) {
		t.Errorf("From = %v, want %v", r.From, wantFrom)
	}

	// A bare `to` date covers the whole day: the bound is the start of the
	// next UTC day, exclusive.
	wantTo := time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC)
	if !r.To.Equal(wantTo) {
		t.Errorf("To = %v, want %v", r.To, wantTo)
	}
}

func TestRangeEndIsExclusive(t *testing.T) {
	r, err := Parse("2025-09-01", "2025-09-05", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	lastSecond := time.Date(2025, 9, 5, 23, 59, 59, 0, time.UTC)
	if !r.Contains(lastSecond) {
		t.Errorf("expected %v to be inside the range", lastSecond)
	}

	nextMidnight := time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC)
	if r.Contains(nextMidnight) {
		t.Errorf("expected %v to be outside the range", nextMidnight)
	}
}

func TestParseRFC3339Bounds(t *testing.T) {
	r, err := Parse("2025-09-01T06:30:00Z", "2025-09-02T18:00:00+02:00", time.Hour)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if !r.From.Equal(time.Date(2025, 9, 1, 6, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected From: %v", r.From)
	}
	if !r.To.Equal(time.Date(2025, 9, 2, 16, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected To (should be normalized to UTC): %v", r.To)
	}
}

func TestParseDefaultsToFallbackWindow(t *testing.T) {
	before := time.Now().UTC()
	r, err := Parse("", "", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	after := time.Now().UTC()

	if r.To.Before(before) || r.To.After(after) {
		t.Errorf("To should be now, got %v", r.To)
	}
	if got := r.To.Sub(r.From); got != 30*24*time.Hour {
		t.Errorf("window = %v, want 720h", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("yesterday", "", time.Hour); err == nil {
		t.Error("expected error for malformed from")
	}
	if _, err := Parse("", "soon", time.Hour); err == nil {
		t.Error("expected error for malformed to")
	}
	if _, err := Parse("2025-09-05", "2025-09-01", time.Hour); err == nil {
		t.Error("expected error for inverted range")
	}
}
