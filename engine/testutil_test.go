package engine

import (
	"testing"
	"time"
)

// ============================================================================
// TEST HELPERS — deterministic sources and a fixed clock
// ============================================================================

// testNow pins the clock so window math is stable across runs.
var testNow = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

// constSource always returns the same uniform draw.
type constSource struct {
	v float64
}

func (s constSource) Float64() float64 { return s.v }

// seqSource replays a fixed sequence of draws, wrapping around.
type seqSource struct {
	values []float64
	i      int
}

func (s *seqSource) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func assertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func assertInRange(t *testing.T, v, lo, hi float64, msg string) {
	t.Helper()
	if v < lo || v > hi {
		t.Errorf("%s: %v outside [%v, %v]", msg, v, lo, hi)
	}
}
