package engine

import (
	"fmt"
	"math"
	"time"
)

// ============================================================================
// INSIGHT RULE ENGINE — Ranked findings over aggregate metrics
// ============================================================================
// A fixed, ordered rule list evaluated against one precomputed Aggregates
// value. Each rule is an independent predicate+formatter contributing at
// most one insight; output keeps rule order (most operationally urgent
// first) and is capped at three.
// ============================================================================

// maxInsights caps the emitted findings.
const maxInsights = 3

// spotlightThreshold decides between the best-performer spotlight
// (filtered views) and the portfolio health score (full-size sets).
const spotlightThreshold = 25

// Aggregates holds every metric the rules read, computed once per view.
// Rates are percentages in [0, 100].
type Aggregates struct {
	TotalOrgs       int     `json:"totalOrgs"`
	TotalAccounts   int     `json:"totalAccounts"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
	HighRiskOrgs    int     `json:"highRiskOrgs"`
	ChurnRate       float64 `json:"churnRate"`
	CurrentDSO      int     `json:"currentDSO"`
	AutopayRate     float64 `json:"autopayRate"`
	PaperlessRate   float64 `json:"paperlessRate"`
	UnpaidAmount    float64 `json:"unpaidAmount"`
	TotalRevenue    float64 `json:"totalRevenue"`
	UnpaidRate      float64 `json:"unpaidRate"`
	HealthScore     float64 `json:"healthScore"`

	// BestPerformer is the organization maximizing satisfaction among
	// those with DSO <= 5, nil when none qualifies.
	BestPerformer *Organization `json:"bestPerformer,omitempty"`
}

// ComputeAggregates derives the rule inputs from a (possibly filtered)
// snapshot. Empty collections produce neutral zero aggregates.
func ComputeAggregates(organizations []Organization, accounts []Account, bills []Bill, now time.Time) Aggregates {
	agg := Aggregates{
		TotalOrgs:     len(organizations),
		TotalAccounts: len(accounts),
		CurrentDSO:    CurrentDSO(bills, "", now),
	}

	var satisfactionSum float64
	var best *Organization
	for i := range organizations {
		org := &organizations[i]
		satisfactionSum += org.SatisfactionScore
		if org.Risk == nil {
			continue
		}
		if org.Risk.Category == RiskHigh {
			agg.HighRiskOrgs++
		}
		if org.Risk.DSO <= 5 && (best == nil || org.SatisfactionScore > best.SatisfactionScore) {
			best = org
		}
	}
	if best != nil {
		copied := *best
		agg.BestPerformer = &copied
	}

	if agg.TotalOrgs > 0 {
		agg.AvgSatisfaction = satisfactionSum / float64(agg.TotalOrgs)
		agg.ChurnRate = float64(agg.HighRiskOrgs) / float64(agg.TotalOrgs) * 100
	}

	if agg.TotalAccounts > 0 {
		autopay, paperless := 0, 0
		for i := range accounts {
			if accounts[i].Autopay {
				autopay++
			}
			if accounts[i].Paperless {
				paperless++
			}
		}
		agg.AutopayRate = float64(autopay) / float64(agg.TotalAccounts) * 100
		agg.PaperlessRate = float64(paperless) / float64(agg.TotalAccounts) * 100
	}

	for i := range bills {
		agg.TotalRevenue += bills[i].Amount
		if !bills[i].Paid {
			agg.UnpaidAmount += bills[i].Amount
		}
	}
	if agg.TotalRevenue > 0 {
		agg.UnpaidRate = agg.UnpaidAmount / agg.TotalRevenue * 100
	}

	agg.HealthScore = (agg.AvgSatisfaction/100*0.3 +
		(1-agg.ChurnRate/100)*0.3 +
		agg.AutopayRate/100*0.2 +
		math.Max(0, 1-float64(agg.CurrentDSO)/30)*0.2) * 100

	return agg
}

// ComputeInsights evaluates the rule list over a snapshot and returns up
// to three findings in rule order. An empty organization set yields none.
func ComputeInsights(organizations []Organization, accounts []Account, bills []Bill, now time.Time) []Insight {
	if len(organizations) == 0 {
		return nil
	}
	return EvaluateRules(ComputeAggregates(organizations, accounts, bills, now))
}

// EvaluateRules runs the fixed rule list against precomputed aggregates.
// Exposed separately so each rule threshold can be exercised without
// regenerating data.
func EvaluateRules(agg Aggregates) []Insight {
	var insights []Insight
	for _, rule := range insightRules {
		if insight, ok := rule.apply(agg); ok {
			insights = append(insights, insight)
			if len(insights) == maxInsights {
				break
			}
		}
	}
	return insights
}

// ============================================================================
// RULE LIST — fixed priority order
// ============================================================================

type insightRule struct {
	name  string
	apply func(Aggregates) (Insight, bool)
}

var insightRules = []insightRule{
	{name: "dso-band", apply: dsoBandInsight},
	{name: "churn-rate", apply: churnRateInsight},
	{name: "satisfaction", apply: satisfactionInsight},
	{name: "receivables", apply: receivablesInsight},
	{name: "spotlight", apply: spotlightInsight},
}

// dsoBandInsight always fires: critical above 10 days, informational in
// the 3-10 band, positive below 3.
func dsoBandInsight(agg Aggregates) (Insight, bool) {
	switch {
	case agg.CurrentDSO > 10:
		return Insight{
			Type:  "warning",
			Icon:  "⚠️",
			Title: "High Days Sales Outstanding",
			Message: fmt.Sprintf("Average DSO is %d days, indicating payment collection delays. This correlates with %.0f%% high-risk customers. Consider implementing automated payment reminders or incentivizing autopay enrollment.",
				agg.CurrentDSO, agg.ChurnRate),
		}, true
	case agg.CurrentDSO >= 3:
		return Insight{
			Type:  "info",
			Icon:  "ℹ️",
			Title: "Moderate Payment Collection Times",
			Message: fmt.Sprintf("DSO is %d days. While within acceptable range, there's opportunity to improve by promoting autopay (current adoption: %.0f%%).",
				agg.CurrentDSO, agg.AutopayRate),
		}, true
	default:
		return Insight{
			Type:  "success",
			Icon:  "✅",
			Title: "Excellent Payment Performance",
			Message: fmt.Sprintf("Outstanding DSO of %d days indicates healthy payment collection. %.0f%% autopay adoption is driving timely payments.",
				agg.CurrentDSO, agg.AutopayRate),
		}, true
	}
}

// churnRateInsight fires above 15%: a critical finding past 30%, a lesser
// warning in between.
func churnRateInsight(agg Aggregates) (Insight, bool) {
	switch {
	case agg.ChurnRate > 30:
		return Insight{
			Type:  "critical",
			Icon:  "🚨",
			Title: "Critical Churn Risk",
			Message: fmt.Sprintf("%d organizations (%.0f%%) are at high risk of churning. Immediate action required: Focus on orgs with DSO > 10 days and satisfaction < 60%%. Consider personalized retention offers.",
				agg.HighRiskOrgs, agg.ChurnRate),
		}, true
	case agg.ChurnRate > 15:
		return Insight{
			Type:  "warning",
			Icon:  "⚡",
			Title: "Elevated Churn Risk",
			Message: fmt.Sprintf("%.0f%% of organizations showing elevated churn risk. Review billing surprise factors and payment experience for these accounts.",
				agg.ChurnRate),
		}, true
	default:
		return Insight{}, false
	}
}

// satisfactionInsight warns below 70; above 80 it flags a growth
// opportunity, but only when the weaker adoption program trails 70%.
func satisfactionInsight(agg Aggregates) (Insight, bool) {
	if agg.AvgSatisfaction < 70 {
		return Insight{
			Type:  "warning",
			Icon:  "📉",
			Title: "Below-Target Satisfaction",
			Message: fmt.Sprintf("Average satisfaction is %.0f%%. Analysis shows strong correlation between high DSO and low satisfaction. Streamlining billing and payment processes could improve scores by 10-15%%.",
				agg.AvgSatisfaction),
		}, true
	}
	if agg.AvgSatisfaction > 80 {
		lowAdoption := math.Min(agg.AutopayRate, agg.PaperlessRate)
		if lowAdoption < 70 {
			program := "paperless"
			if agg.AutopayRate < agg.PaperlessRate {
				program = "autopay"
			}
			return Insight{
				Type:  "opportunity",
				Icon:  "💡",
				Title: "Growth Opportunity Identified",
				Message: fmt.Sprintf("With %.0f%% satisfaction, customers are receptive to new features. Consider campaigns to boost %s adoption from %.0f%% to reduce DSO further.",
					agg.AvgSatisfaction, program, lowAdoption),
			}, true
		}
	}
	return Insight{}, false
}

// receivablesInsight warns when over 20% of revenue is unpaid.
func receivablesInsight(agg Aggregates) (Insight, bool) {
	if agg.UnpaidRate <= 20 {
		return Insight{}, false
	}
	return Insight{
		Type:  "warning",
		Icon:  "💰",
		Title: "High Outstanding Receivables",
		Message: fmt.Sprintf("%.0f%% of total revenue ($%s) remains unpaid. %.0f%% of accounts lack autopay. Automated payment solutions could recover significant revenue.",
			agg.UnpaidRate, FormatAmount(agg.UnpaidAmount), 100-agg.AutopayRate),
	}, true
}

// spotlightInsight closes the list: filtered views get a best-performer
// spotlight, full-size sets a composite health score when it clears 75.
func spotlightInsight(agg Aggregates) (Insight, bool) {
	if agg.TotalOrgs < spotlightThreshold {
		best := agg.BestPerformer
		if best == nil || best.Risk == nil {
			return Insight{}, false
		}
		return Insight{
			Type:  "success",
			Icon:  "🌟",
			Title: "Best Practice Model",
			Message: fmt.Sprintf("%s demonstrates excellence: %.0f%% satisfaction with %d day DSO. Their %.0f%% autopay adoption can serve as a benchmark.",
				best.Name, best.SatisfactionScore, best.Risk.DSO, best.AutopayAdoption),
		}, true
	}

	if agg.HealthScore < 75 {
		return Insight{}, false
	}
	return Insight{
		Type:  "success",
		Icon:  "📊",
		Title: "Strong Overall Performance",
		Message: fmt.Sprintf("Portfolio health score: %.0f/100. Satisfaction (%.0f%%) and DSO (%d days) are within healthy ranges. Continue monitoring high-risk segments.",
			agg.HealthScore, agg.AvgSatisfaction, agg.CurrentDSO),
	}, true
}

// ============================================================================
// FORMATTING
// ============================================================================

// FormatAmount renders a dollar figure with comma separators, no cents.
func FormatAmount(v float64) string {
	n := int64(math.Round(v))
	if n < 0 {
		return "-" + FormatAmount(-v)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatAmount(float64(n/1000)), n%1000)
}
