package engine

import (
	"math"
	"testing"
	"time"
)

// ============================================================================
// CHURN DERIVATION TESTS
// ============================================================================

func TestChurnRiskBands(t *testing.T) {
	// A midpoint draw lands each regime in the center of its band.
	mid := constSource{0.5}
	cases := []struct {
		dso  int
		want float64
	}{
		{0, 0.175},
		{2, 0.175},
		{3, 0.34375}, // f=1/8
		{6, 0.4},     // f=1/2
		{10, 0.475},  // f=1
		{11, 0.685},  // f=0.1
		{15, 0.725},  // f=0.5
		{20, 0.775},  // f=1
		{40, 0.775},  // f capped at 1
	}
	for _, tc := range cases {
		got := churnRiskForDSO(mid, tc.dso)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("churnRiskForDSO(dso=%d) = %v, want %v", tc.dso, got, tc.want)
		}
	}
}

func TestChurnRiskRegimeCategories(t *testing.T) {
	// Regardless of the draw, the regime pins the category at the extremes.
	for _, draw := range []float64{0.01, 0.5, 0.99} {
		src := constSource{draw}
		if got := RiskCategoryFor(churnRiskForDSO(src, 1)); got != RiskLow {
			t.Errorf("draw %.2f: dso 1 categorized %s, want Low", draw, got)
		}
		if got := RiskCategoryFor(churnRiskForDSO(src, 20)); got != RiskHigh {
			t.Errorf("draw %.2f: dso 20 categorized %s, want High", draw, got)
		}
	}
}

func TestDeriveChurnRisk(t *testing.T) {
	orgs := []Organization{
		{ID: "ORG-0001", Name: "Acme Corp", SatisfactionScore: 90},
		{ID: "ORG-0002", Name: "TechStart Inc", SatisfactionScore: 40},
	}
	bills := []Bill{
		paidBill("ORG-0001", testNow.AddDate(0, 0, -30), 1),
		paidBill("ORG-0002", testNow.AddDate(0, 0, -30), 18),
	}

	derived := DeriveChurnRisk(orgs, bills, testNow, NewSource(42))

	assertEqual(t, len(derived), 2, "derived count")
	for i, org := range derived {
		if org.Risk == nil {
			t.Fatalf("%s: risk not populated", org.ID)
		}
		assertInRange(t, org.Risk.ChurnRisk, 0, maxChurnRisk, org.ID+" risk cap")
		assertEqual(t, org.Risk.Category, RiskCategoryFor(org.Risk.ChurnRisk), org.ID+" category consistency")

		// Two-phase construction: the input slice stays untouched.
		if orgs[i].Risk != nil {
			t.Errorf("%s: input organization mutated", orgs[i].ID)
		}
	}

	assertEqual(t, derived[0].Risk.DSO, 1, "fast payer DSO")
	assertEqual(t, derived[1].Risk.DSO, 18, "slow payer DSO")
	assertEqual(t, derived[0].Risk.Category, RiskLow, "fast payer category")
	assertEqual(t, derived[1].Risk.Category, RiskHigh, "slow payer category")
}

func TestDeriveChurnRiskNoBills(t *testing.T) {
	orgs := []Organization{{ID: "ORG-0001", CreatedDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}}
	derived := DeriveChurnRisk(orgs, nil, testNow, NewSource(1))

	// No billing history reads as DSO 0, the excellent regime.
	assertEqual(t, derived[0].Risk.DSO, 0, "DSO without bills")
	assertEqual(t, derived[0].Risk.Category, RiskLow, "category without bills")
}
