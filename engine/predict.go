package engine

import "math"

// ============================================================================
// TREND PREDICTOR — One-step-ahead DSO forecast
// ============================================================================
// Ordinary least squares over the last six monthly points, extrapolated
// one period. Not a time-series model: it degrades to last-known-value
// whenever regression would be meaningless.
// ============================================================================

// predictionWindow is how many trailing points feed the regression.
const predictionWindow = 6

// PredictNextDSO forecasts the next period's DSO from an ordered monthly
// series. Fewer than 3 points returns the last value (0 for an empty
// series); a degenerate slope denominator also falls back to the last
// value. The result is clamped to >= 0 — DSO cannot be negative.
func PredictNextDSO(series []MonthlyDSOPoint) int {
	if len(series) == 0 {
		return 0
	}
	last := series[len(series)-1].DSO
	if len(series) < 3 {
		return last
	}

	recent := series
	if len(recent) > predictionWindow {
		recent = recent[len(recent)-predictionWindow:]
	}

	n := float64(len(recent))
	var sumX, sumY, sumXY, sumX2 float64
	for i, point := range recent {
		x := float64(i)
		y := float64(point.DSO)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return last
	}

	slope := (n*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / n

	prediction := math.Round(slope*n + intercept)
	if prediction < 0 {
		return 0
	}
	return int(prediction)
}
