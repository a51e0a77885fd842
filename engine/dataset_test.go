package engine

import (
	"testing"
	"time"
)

// ============================================================================
// DATASET & VIEW TESTS
// ============================================================================

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	return NewDataset(NewSource(42), 10, testNow)
}

func TestNewDatasetPipeline(t *testing.T) {
	ds := testDataset(t)

	assertEqual(t, len(ds.Organizations), 10, "organization count")
	if len(ds.Accounts) == 0 || len(ds.Bills) == 0 {
		t.Fatalf("pipeline incomplete: %d accounts, %d bills", len(ds.Accounts), len(ds.Bills))
	}
	assertEqual(t, ds.GeneratedAt, testNow, "generation timestamp")

	// Risk is derived for every organization before the dataset is handed out.
	for _, org := range ds.Organizations {
		if org.Risk == nil {
			t.Errorf("%s: risk missing after construction", org.ID)
		}
	}

	wantAccounts := 0
	for _, org := range ds.Organizations {
		wantAccounts += org.AccountCount
	}
	assertEqual(t, len(ds.Accounts), wantAccounts, "account total matches declared counts")
}

func TestNewDatasetReproducible(t *testing.T) {
	a := NewDataset(NewSource(7), 5, testNow)
	b := NewDataset(NewSource(7), 5, testNow)

	assertEqual(t, len(a.Bills), len(b.Bills), "bill count")
	for i := range a.Organizations {
		assertEqual(t, a.Organizations[i].SatisfactionScore, b.Organizations[i].SatisfactionScore,
			a.Organizations[i].ID+" satisfaction")
		assertEqual(t, a.Organizations[i].Risk.ChurnRisk, b.Organizations[i].Risk.ChurnRisk,
			a.Organizations[i].ID+" churn risk")
	}
}

func TestSelectBySize(t *testing.T) {
	ds := testDataset(t)
	view := ds.Select(Filter{Size: SizeSmall})

	orgIDs := map[string]bool{}
	for _, org := range view.Organizations {
		assertEqual(t, org.Size, SizeSmall, org.ID+" size")
		orgIDs[org.ID] = true
	}
	for _, account := range view.Accounts {
		if !orgIDs[account.OrganizationID] {
			t.Errorf("account %s leaked from an unselected organization", account.ID)
		}
	}
	accountIDs := map[string]bool{}
	for _, account := range view.Accounts {
		accountIDs[account.ID] = true
	}
	for _, bill := range view.Bills {
		if !accountIDs[bill.AccountID] {
			t.Errorf("bill %s leaked from an unselected account", bill.ID)
		}
	}
}

func TestSelectByAccountWins(t *testing.T) {
	ds := testDataset(t)
	target := ds.Accounts[0]

	// The account filter overrides everything else.
	view := ds.Select(Filter{AccountID: target.ID, Size: SizeEnterprise, OrgID: "ORG-9999"})

	assertEqual(t, len(view.Accounts), 1, "account narrowing")
	assertEqual(t, view.Accounts[0].ID, target.ID, "selected account")
	assertEqual(t, len(view.Organizations), 1, "owning organization included")
	assertEqual(t, view.Organizations[0].ID, target.OrganizationID, "owning organization id")
	for _, bill := range view.Bills {
		assertEqual(t, bill.AccountID, target.ID, "bill scoping")
	}
}

func TestSelectUnknownIDsYieldEmptyView(t *testing.T) {
	ds := testDataset(t)

	view := ds.Select(Filter{OrgID: "ORG-9999"})
	assertEqual(t, len(view.Organizations), 0, "unknown org")
	assertEqual(t, len(view.Accounts), 0, "accounts for unknown org")

	view = ds.Select(Filter{AccountID: "ACC-999999"})
	assertEqual(t, len(view.Accounts), 0, "unknown account")

	// Empty views still answer every question without panicking.
	metrics := view.Metrics()
	assertEqual(t, metrics.TotalOrgs, 0, "empty metrics orgs")
	assertEqual(t, metrics.CurrentDSO, 0, "empty metrics DSO")
	if insights := view.Insights(); len(insights) != 0 {
		t.Errorf("empty view produced insights: %v", insights)
	}
}

func TestFullViewMetrics(t *testing.T) {
	ds := testDataset(t)
	metrics := ds.Full().Metrics()

	assertEqual(t, metrics.TotalOrgs, 10, "total orgs")
	assertEqual(t, metrics.TotalAccounts, len(ds.Accounts), "total accounts")
	assertInRange(t, metrics.AvgSatisfaction, 0, 100, "avg satisfaction")
	assertInRange(t, metrics.AutopayRate, 0, 100, "autopay rate")
	assertInRange(t, metrics.ChurnRiskRate, 0, 100, "churn rate")
	assertInRange(t, metrics.AvgSurprise, 0, 100, "avg surprise")
	assertInRange(t, metrics.AvgUtilization, 10, 95, "avg utilization")
	if metrics.TotalRevenue <= 0 {
		t.Errorf("total revenue %v, want > 0", metrics.TotalRevenue)
	}
	t.Logf("metrics: %+v", metrics)
}

func TestServiceUtilizationAverages(t *testing.T) {
	view := View{
		Accounts: []Account{
			{ID: "ACC-000001", ServiceUtilization: map[string]int{"Voice": 40, "Data": 90, "SMS": 10, "Roaming": 50, "International": 20}},
			{ID: "ACC-000002", ServiceUtilization: map[string]int{"Voice": 60, "Data": 70, "SMS": 30, "Roaming": 50, "International": 21}},
		},
		now: testNow,
	}

	points := view.ServiceUtilization()
	assertEqual(t, len(points), len(Services), "one point per service")
	assertEqual(t, points[0].Service, "Voice", "service order")
	assertEqual(t, points[0].Utilization, 50, "voice average")
	assertEqual(t, points[1].Utilization, 80, "data average")
	assertEqual(t, points[4].Utilization, 21, "rounded average") // 20.5 rounds up
}

func TestSurpriseHistogramShape(t *testing.T) {
	view := View{
		Bills: []Bill{
			{OrganizationID: "ORG-0001", SurpriseFactor: 0.05},
			{OrganizationID: "ORG-0001", SurpriseFactor: 0.07}, // avg 6% -> first bucket
			{OrganizationID: "ORG-0002", SurpriseFactor: 0.55}, // -> sixth bucket
			{OrganizationID: "ORG-0003", SurpriseFactor: 1.0},  // boundary -> last bucket
		},
		now: testNow,
	}

	buckets := view.SurpriseHistogram()
	assertEqual(t, len(buckets), 10, "bucket count")
	assertEqual(t, buckets[0].Range, "0-10%", "first label")
	assertEqual(t, buckets[9].Range, "90-100%", "last label")
	assertEqual(t, buckets[0].Count, 1, "low-surprise org")
	assertEqual(t, buckets[5].Count, 1, "mid-surprise org")
	assertEqual(t, buckets[9].Count, 1, "boundary org lands in last bucket")

	total := 0
	for _, bucket := range buckets {
		total += bucket.Count
	}
	assertEqual(t, total, 3, "each org counted once")
}

func TestHighRiskRanking(t *testing.T) {
	ds := testDataset(t)
	top := ds.Full().HighRisk(3)

	assertEqual(t, len(top), 3, "requested count")
	for i := 1; i < len(top); i++ {
		if top[i].Risk.ChurnRisk > top[i-1].Risk.ChurnRisk {
			t.Errorf("ranking out of order at %d: %.2f after %.2f",
				i, top[i].Risk.ChurnRisk, top[i-1].Risk.ChurnRisk)
		}
	}

	// Asking for more than exists returns everything.
	assertEqual(t, len(ds.Full().HighRisk(100)), 10, "over-ask")
}

func TestAccountBillDatesWithinWindow(t *testing.T) {
	ds := testDataset(t)
	windowStart := time.Date(testNow.Year(), testNow.Month()-billingMonths+1, 1, 0, 0, 0, 0, time.UTC)
	for _, bill := range ds.Bills {
		if bill.BillDate.Before(windowStart) || bill.BillDate.After(testNow.AddDate(0, 0, 28)) {
			t.Errorf("bill %s dated %s outside generation window", bill.ID, bill.BillDate.Format("2006-01-02"))
		}
	}
}
