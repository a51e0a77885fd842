package engine

import (
	"math"
	"testing"
	"time"
)

// ============================================================================
// BILLING TESTS
// ============================================================================

func billingFixture(t *testing.T) ([]Organization, []Account, []Bill) {
	t.Helper()
	src := NewSource(42)
	orgs := GeneratePopulation(src, 6)
	accounts := GenerateAccounts(src, orgs)
	bills := GenerateBills(src, accounts, orgs, testNow)
	return orgs, accounts, bills
}

func TestGenerateBillsInvariants(t *testing.T) {
	_, accounts, bills := billingFixture(t)

	if len(bills) == 0 {
		t.Fatal("no bills generated")
	}

	accountByID := map[string]Account{}
	for _, account := range accounts {
		accountByID[account.ID] = account
	}

	for i := range bills {
		bill := &bills[i]
		account, ok := accountByID[bill.AccountID]
		if !ok {
			t.Fatalf("bill %s references unknown account %s", bill.ID, bill.AccountID)
		}
		assertEqual(t, bill.OrganizationID, account.OrganizationID, bill.ID+" organization")

		if bill.BillDate.Before(account.CreatedDate) {
			t.Errorf("bill %s dated %s before account creation %s",
				bill.ID, bill.BillDate.Format("2006-01-02"), account.CreatedDate.Format("2006-01-02"))
		}

		wantDue := bill.BillDate.AddDate(0, 0, paymentTermDays)
		if !bill.DueDate.Equal(wantDue) {
			t.Errorf("bill %s due %s, want %s", bill.ID, bill.DueDate, wantDue)
		}

		var chargeSum float64
		assertEqual(t, len(bill.ServiceCharges), len(Services), bill.ID+" service charges")
		for service, charge := range bill.ServiceCharges {
			if charge < 0 {
				t.Errorf("bill %s: negative %s charge %v", bill.ID, service, charge)
			}
			chargeSum += charge
		}
		if bill.Amount < chargeSum-0.01 {
			t.Errorf("bill %s: amount %.2f below service charges %.2f", bill.ID, bill.Amount, chargeSum)
		}

		assertInRange(t, bill.SurpriseFactor, 0, 1, bill.ID+" surprise factor")

		if bill.Paid {
			if bill.PaidDate == nil {
				t.Errorf("bill %s paid without payment date", bill.ID)
			} else if !bill.PaidDate.After(bill.BillDate) {
				t.Errorf("bill %s paid %s, not after bill date %s", bill.ID, bill.PaidDate, bill.BillDate)
			}
		} else if bill.PaidDate != nil {
			t.Errorf("bill %s unpaid but has payment date", bill.ID)
		}
	}
}

func TestGenerateBillsSkipsPreCreationMonths(t *testing.T) {
	org := Organization{
		ID: "ORG-0001", Name: "Acme Corp", AccountCount: 1,
		SatisfactionScore: 80,
		CreatedDate:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	account := Account{
		ID: "ACC-000001", OrganizationID: org.ID,
		ServiceUtilization: map[string]int{},
		// Created mid-window: only ~3 months of bills can exist.
		CreatedDate: testNow.AddDate(0, -3, 0),
	}

	bills := GenerateBills(NewSource(5), []Account{account}, []Organization{org}, testNow)
	if len(bills) > 4 {
		t.Errorf("got %d bills for a 3-month-old account", len(bills))
	}
	for _, bill := range bills {
		if bill.BillDate.Before(account.CreatedDate) {
			t.Errorf("bill %s predates account creation", bill.ID)
		}
	}
}

func TestGenerateBillsPanicsOnOrphanAccount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for account referencing unknown organization")
		}
	}()

	orphan := Account{ID: "ACC-000001", OrganizationID: "ORG-9999"}
	GenerateBills(NewSource(1), []Account{orphan}, nil, testNow)
}

func TestSatisfactionDrivesPaymentSpeed(t *testing.T) {
	// Two single-account orgs at opposite satisfaction extremes. The happy
	// org must settle faster on average.
	makeOrg := func(id string, satisfaction float64) Organization {
		return Organization{
			ID: id, Name: id, AccountCount: 1,
			SatisfactionScore: satisfaction,
			CreatedDate:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	makeAccount := func(id, orgID string) Account {
		return Account{
			ID: id, OrganizationID: orgID,
			ServiceUtilization: map[string]int{},
			CreatedDate:        time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	happy := makeOrg("ORG-0001", 98)
	unhappy := makeOrg("ORG-0002", 20)
	accounts := []Account{makeAccount("ACC-000001", happy.ID), makeAccount("ACC-000002", unhappy.ID)}

	src := NewSource(11)
	avgDays := func(orgID string) float64 {
		var total float64
		count := 0
		// Average over many simulated years to drown the noise.
		for round := 0; round < 40; round++ {
			bills := GenerateBills(src, accounts, []Organization{happy, unhappy}, testNow)
			for _, bill := range bills {
				if bill.OrganizationID != orgID || !bill.Paid {
					continue
				}
				total += bill.PaidDate.Sub(bill.BillDate).Hours() / 24
				count++
			}
		}
		return total / math.Max(1, float64(count))
	}

	happyDays := avgDays(happy.ID)
	unhappyDays := avgDays(unhappy.ID)
	t.Logf("avg days to payment: satisfied=%.1f dissatisfied=%.1f", happyDays, unhappyDays)
	if happyDays >= unhappyDays {
		t.Errorf("satisfied org pays in %.1f days, dissatisfied in %.1f — correlation inverted",
			happyDays, unhappyDays)
	}
}
