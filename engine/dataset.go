package engine

import (
	"math"
	"sort"
	"time"
)

// ============================================================================
// DATASET — One generation pass, explicit ownership, filtered views
// ============================================================================
// The snapshot is built once by NewDataset and passed by reference to all
// consumers — no process-wide mutable state. Views are subsets selected
// per filter; every view aggregate is recomputed in full on demand, there
// is no incremental update path.
// ============================================================================

// Dataset is the immutable in-memory snapshot for one session.
type Dataset struct {
	Organizations []Organization `json:"organizations"`
	Accounts      []Account      `json:"accounts"`
	Bills         []Bill         `json:"bills"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}

// NewDataset runs the full pipeline: population, accounts, bills, then
// churn derivation — the single point where risk fields come into
// existence. Consumers never observe organizations with Risk == nil.
func NewDataset(src Source, organizationCount int, now time.Time) *Dataset {
	orgs := GeneratePopulation(src, organizationCount)
	accounts := GenerateAccounts(src, orgs)
	bills := GenerateBills(src, accounts, orgs, now)
	orgs = DeriveChurnRisk(orgs, bills, now, src)

	return &Dataset{
		Organizations: orgs,
		Accounts:      accounts,
		Bills:         bills,
		GeneratedAt:   now,
	}
}

// ============================================================================
// FILTERS
// ============================================================================

// Filter selects a subset of the snapshot. Zero-valued fields are
// unrestricted; non-zero fields AND-combine. A non-empty AccountID wins:
// the view narrows to that account and its organization.
type Filter struct {
	Size      OrgSize      `json:"size,omitempty"`
	Risk      RiskCategory `json:"risk,omitempty"`
	OrgID     string       `json:"orgId,omitempty"`
	AccountID string       `json:"accountId,omitempty"`
}

// IsEmpty reports whether the filter selects everything.
func (f Filter) IsEmpty() bool {
	return f.Size == "" && f.Risk == "" && f.OrgID == "" && f.AccountID == ""
}

// Select returns the view matching a filter. Unknown ids yield an empty
// view — a normal state, not an error.
func (d *Dataset) Select(f Filter) View {
	view := View{now: d.GeneratedAt}

	if f.AccountID != "" {
		for i := range d.Accounts {
			if d.Accounts[i].ID == f.AccountID {
				view.Accounts = append(view.Accounts, d.Accounts[i])
				break
			}
		}
		if len(view.Accounts) == 1 {
			orgID := view.Accounts[0].OrganizationID
			for i := range d.Organizations {
				if d.Organizations[i].ID == orgID {
					view.Organizations = append(view.Organizations, d.Organizations[i])
					break
				}
			}
		}
	} else {
		for i := range d.Organizations {
			org := &d.Organizations[i]
			if f.Size != "" && org.Size != f.Size {
				continue
			}
			if f.Risk != "" && (org.Risk == nil || org.Risk.Category != f.Risk) {
				continue
			}
			if f.OrgID != "" && org.ID != f.OrgID {
				continue
			}
			view.Organizations = append(view.Organizations, *org)
		}

		orgIDs := make(map[string]bool, len(view.Organizations))
		for i := range view.Organizations {
			orgIDs[view.Organizations[i].ID] = true
		}
		for i := range d.Accounts {
			if orgIDs[d.Accounts[i].OrganizationID] {
				view.Accounts = append(view.Accounts, d.Accounts[i])
			}
		}
	}

	accountIDs := make(map[string]bool, len(view.Accounts))
	for i := range view.Accounts {
		accountIDs[view.Accounts[i].ID] = true
	}
	for i := range d.Bills {
		if accountIDs[d.Bills[i].AccountID] {
			view.Bills = append(view.Bills, d.Bills[i])
		}
	}

	return view
}

// Full returns the unfiltered view.
func (d *Dataset) Full() View {
	return d.Select(Filter{})
}

// ============================================================================
// VIEW — per-filter recomputation surface
// ============================================================================

// View is a filtered subset of the snapshot. All derived numbers are
// recomputed from the subset on each call.
type View struct {
	Organizations []Organization `json:"organizations"`
	Accounts      []Account      `json:"accounts"`
	Bills         []Bill         `json:"bills"`

	now time.Time
}

// Metrics holds the overview card numbers. Rates are percentages.
type Metrics struct {
	TotalOrgs       int     `json:"totalOrgs"`
	TotalAccounts   int     `json:"totalAccounts"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
	AutopayRate     float64 `json:"autopayRate"`
	PaperlessRate   float64 `json:"paperlessRate"`
	ChurnRiskRate   float64 `json:"churnRiskRate"`
	TotalRevenue    float64 `json:"totalRevenue"`
	AvgSurprise     float64 `json:"avgSurprise"`
	AvgUtilization  float64 `json:"avgUtilization"`
	CurrentDSO      int     `json:"currentDSO"`
}

// Metrics computes the overview cards for this view.
func (v View) Metrics() Metrics {
	agg := ComputeAggregates(v.Organizations, v.Accounts, v.Bills, v.now)

	var surpriseSum float64
	for i := range v.Bills {
		surpriseSum += v.Bills[i].SurpriseFactor
	}
	avgSurprise := 0.0
	if len(v.Bills) > 0 {
		avgSurprise = surpriseSum / float64(len(v.Bills)) * 100
	}

	var utilizationSum float64
	for i := range v.Accounts {
		var perAccount float64
		for _, service := range Services {
			perAccount += float64(v.Accounts[i].ServiceUtilization[service])
		}
		utilizationSum += perAccount / float64(len(Services))
	}
	avgUtilization := 0.0
	if len(v.Accounts) > 0 {
		avgUtilization = utilizationSum / float64(len(v.Accounts))
	}

	return Metrics{
		TotalOrgs:       agg.TotalOrgs,
		TotalAccounts:   agg.TotalAccounts,
		AvgSatisfaction: RoundTo1(agg.AvgSatisfaction),
		AutopayRate:     RoundTo1(agg.AutopayRate),
		PaperlessRate:   RoundTo1(agg.PaperlessRate),
		ChurnRiskRate:   RoundTo1(agg.ChurnRate),
		TotalRevenue:    math.Round(agg.TotalRevenue),
		AvgSurprise:     RoundTo1(avgSurprise),
		AvgUtilization:  RoundTo1(avgUtilization),
		CurrentDSO:      agg.CurrentDSO,
	}
}

// Insights runs the rule engine over this view.
func (v View) Insights() []Insight {
	return ComputeInsights(v.Organizations, v.Accounts, v.Bills, v.now)
}

// ServiceUtilizationPoint is the average utilization for one service.
type ServiceUtilizationPoint struct {
	Service     string `json:"service"`
	Utilization int    `json:"utilization"`
}

// ServiceUtilization averages per-service utilization across the view's
// accounts, in fixed service order.
func (v View) ServiceUtilization() []ServiceUtilizationPoint {
	points := make([]ServiceUtilizationPoint, 0, len(Services))
	for _, service := range Services {
		total := 0
		for i := range v.Accounts {
			total += v.Accounts[i].ServiceUtilization[service]
		}
		avg := 0
		if len(v.Accounts) > 0 {
			avg = int(math.Round(float64(total) / float64(len(v.Accounts))))
		}
		points = append(points, ServiceUtilizationPoint{Service: service, Utilization: avg})
	}
	return points
}

// SurpriseBucket is one histogram bin of per-organization average
// surprise factor.
type SurpriseBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// SurpriseHistogram buckets organizations into ten fixed 10%-wide bins by
// their average bill surprise factor. All ten bins are always returned so
// the chart shows the full distribution.
func (v View) SurpriseHistogram() []SurpriseBucket {
	type orgSurprise struct {
		total float64
		count int
	}
	byOrg := make(map[string]*orgSurprise)
	for i := range v.Bills {
		bill := &v.Bills[i]
		entry := byOrg[bill.OrganizationID]
		if entry == nil {
			entry = &orgSurprise{}
			byOrg[bill.OrganizationID] = entry
		}
		entry.total += bill.SurpriseFactor
		entry.count++
	}

	buckets := make([]SurpriseBucket, 10)
	for i := range buckets {
		buckets[i].Range = surpriseBucketLabel(i)
	}
	for _, entry := range byOrg {
		pct := entry.total / float64(entry.count) * 100
		idx := int(pct / 10)
		if idx >= len(buckets) {
			idx = len(buckets) - 1
		}
		buckets[idx].Count++
	}
	return buckets
}

func surpriseBucketLabel(i int) string {
	return labelPct(i*10) + "-" + labelPct((i+1)*10) + "%"
}

func labelPct(v int) string {
	digits := [11]string{"0", "10", "20", "30", "40", "50", "60", "70", "80", "90", "100"}
	return digits[v/10]
}

// HighRisk returns the n organizations with the highest churn risk,
// highest first. Organizations without derived risk sort last.
func (v View) HighRisk(n int) []Organization {
	ranked := make([]Organization, len(v.Organizations))
	copy(ranked, v.Organizations)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].Risk, ranked[j].Risk
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return ri.ChurnRisk > rj.ChurnRisk
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
