package engine

import (
	"math"
	"time"
)

// ============================================================================
// CHURN RISK DERIVER — DSO regime -> risk score + category
// ============================================================================
// Phase two of the pipeline, run exactly once after billing exists. Each
// regime adds controlled randomness within its band so the mapping is not
// a step function, but the category is stable for a given DSO regime.
// ============================================================================

// maxChurnRisk caps the derived score.
const maxChurnRisk = 0.95

// DeriveChurnRisk computes each organization's current DSO and maps it to
// a churn-risk score and category. It returns new organization values
// with Risk populated; the input slice is not mutated.
func DeriveChurnRisk(organizations []Organization, bills []Bill, now time.Time, src Source) []Organization {
	derived := make([]Organization, len(organizations))
	for i, org := range organizations {
		dso := CurrentDSO(bills, org.ID, now)
		risk := math.Min(maxChurnRisk, churnRiskForDSO(src, dso))

		org.Risk = &RiskProfile{
			DSO:       dso,
			ChurnRisk: risk,
			Category:  RiskCategoryFor(risk),
		}
		derived[i] = org
	}
	return derived
}

// churnRiskForDSO draws a risk score from the band for the DSO regime.
//
//	dso <= 2        excellent: [0.10, 0.25]
//	2 < dso <= 10   good: band slides up with (dso-2)/8, within [0.25, 0.55]
//	dso > 10        at-risk: band slides with min(1,(dso-10)/10), within [0.60, 0.85]
func churnRiskForDSO(src Source, dso int) float64 {
	switch {
	case dso <= 2:
		return Uniform(src, 0.10, 0.25)
	case dso <= 10:
		f := float64(dso-2) / 8
		return Uniform(src, 0.25+f*0.15, 0.40+f*0.15)
	default:
		f := math.Min(1, float64(dso-10)/10)
		return Uniform(src, 0.60+f*0.10, 0.75+f*0.10)
	}
}
