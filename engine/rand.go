package engine

import (
	"math"
	"math/rand"
)

// ============================================================================
// RANDOMNESS SOURCE — Injected, seedable draws
// ============================================================================
// Every stochastic choice in the engine flows through one injected Source,
// so a fixed seed reproduces an identical dataset and tests can substitute
// deterministic sequences. Nothing in this package touches the global
// rand state.
// ============================================================================

// Source supplies uniform draws in [0, 1). All generation randomness is
// derived from this single method.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded pseudo-random Source. The same seed yields
// the same draw sequence.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Uniform draws from [min, max).
func Uniform(src Source, min, max float64) float64 {
	return min + src.Float64()*(max-min)
}

// Intn draws an integer from [min, max], both bounds inclusive.
func Intn(src Source, min, max int) int {
	return min + int(src.Float64()*float64(max-min+1))
}

// Normal draws from a Gaussian with the given mean and standard deviation
// via the Box-Muller transform. Zero uniforms are redrawn so the log
// stays finite.
func Normal(src Source, mean, stddev float64) float64 {
	u1 := src.Float64()
	for u1 == 0 {
		u1 = src.Float64()
	}
	u2 := src.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stddev*z
}

// Bernoulli draws true with probability p.
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}

// Choice draws one option uniformly. Repeating an option weights it.
func Choice[T any](src Source, options []T) T {
	return options[int(src.Float64()*float64(len(options)))]
}

// ============================================================================
// SURPRISE FACTOR
// ============================================================================

// surpriseBands is the weighted mixture behind bill surprise: half of all
// bills land within 10% of the expected amount, with a thin tail of large
// surprises. Bands are selected by cumulative weight, then the factor is
// positioned uniformly within the band.
var surpriseBands = []struct {
	cumWeight float64
	min, max  float64
}{
	{0.50, 0.0, 0.1},
	{0.80, 0.1, 0.2},
	{0.90, 0.2, 0.4},
	{0.95, 0.4, 0.6},
	{0.98, 0.6, 0.8},
	{1.00, 0.8, 1.0},
}

// SurpriseFactor draws a bill's surprise factor in [0, 1): first draw
// picks the band, second positions within it.
func SurpriseFactor(src Source) float64 {
	pick := src.Float64()
	for _, band := range surpriseBands {
		if pick < band.cumWeight {
			return Uniform(src, band.min, band.max)
		}
	}
	last := surpriseBands[len(surpriseBands)-1]
	return Uniform(src, last.min, last.max)
}
