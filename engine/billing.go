package engine

import (
	"fmt"
	"math"
	"time"
)

// ============================================================================
// BILLING SIMULATOR — Monthly bills with satisfaction-correlated payment
// ============================================================================
// The causal model the rest of the pipeline recovers: happier organizations
// pay faster. Each organization gets a target DSO inverse to its
// satisfaction, and paid bills settle around that target.
// ============================================================================

// billingMonths is the fixed trailing window of generated history.
const billingMonths = 12

// paymentTermDays is the gap between bill date and due date.
const paymentTermDays = 15

// GenerateBills produces bills for each (account, month) pair in the
// trailing window ending at now, skipping months before account creation.
//
// An account referencing an unknown organization is a generator bug, not
// an input condition — it panics rather than silently dropping bills.
func GenerateBills(src Source, accounts []Account, organizations []Organization, now time.Time) []Bill {
	orgByID := make(map[string]Organization, len(organizations))
	for _, org := range organizations {
		orgByID[org.ID] = org
	}

	var bills []Bill
	for _, account := range accounts {
		org, ok := orgByID[account.OrganizationID]
		if !ok {
			panic(fmt.Sprintf("engine: account %s references unknown organization %s",
				account.ID, account.OrganizationID))
		}

		satisfactionFactor := org.SatisfactionScore / 100

		// Target days-to-payment, inverse to satisfaction: a fully
		// satisfied organization pays immediately, the floor case takes
		// the full 20 days.
		targetDSO := clampFloat(20*(1-satisfactionFactor), 0, 20)

		for monthOffset := 0; monthOffset < billingMonths; monthOffset++ {
			billDate := time.Date(now.Year(), now.Month()-time.Month(monthOffset),
				Intn(src, 1, 28), 0, 0, 0, 0, time.UTC)
			if billDate.Before(account.CreatedDate) {
				continue
			}

			baseAmount := Normal(src, 150, 50)

			serviceCharges := make(map[string]float64, len(Services))
			var totalServiceCharges float64
			for _, service := range Services {
				utilization := float64(account.ServiceUtilization[service]) / 100
				charge := math.Max(0, Normal(src, 30*utilization, 15))
				serviceCharges[service] = RoundTo2(charge)
				totalServiceCharges += serviceCharges[service]
			}

			// Payment probability rises with satisfaction, autopay, and
			// bill age, capped at 95% so some receivables always remain.
			autopayBoost := 0.0
			if account.Autopay {
				autopayBoost = 0.2
			}
			ageBoost := math.Min(0.4, float64(monthOffset)*0.05)
			paymentProbability := math.Min(0.95, 0.4+satisfactionFactor*0.4+autopayBoost+ageBoost)

			bill := Bill{
				ID:             fmt.Sprintf("BILL-%s-%04d%02d", account.ID, billDate.Year(), int(billDate.Month())),
				AccountID:      account.ID,
				OrganizationID: account.OrganizationID,
				BillDate:       billDate,
				DueDate:        billDate.AddDate(0, 0, paymentTermDays),
				Amount:         RoundTo2(baseAmount + totalServiceCharges),
				ServiceCharges: serviceCharges,
				SurpriseFactor: RoundTo2(SurpriseFactor(src)),
			}

			if Bernoulli(src, paymentProbability) {
				daysToPayment := math.Max(1, math.Round(Normal(src, targetDSO, targetDSO*0.3)))
				paidDate := billDate.Add(time.Duration(daysToPayment) * 24 * time.Hour)
				bill.Paid = true
				bill.PaidDate = &paidDate
			}

			bills = append(bills, bill)
		}
	}
	return bills
}
