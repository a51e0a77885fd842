package engine

import (
	"math"
	"time"
)

// ============================================================================
// DSO AGGREGATOR — Days Sales Outstanding
// ============================================================================
// The single definition of DSO in the repo. Display values, churn risk,
// and predictions all trace back to these two functions — no component
// recomputes DSO independently, so the metrics stay internally consistent.
//
// Day counting: a paid bill contributes paidDate − billDate, an unpaid
// bill contributes now − billDate. Both in fractional days, averaged,
// then rounded.
// ============================================================================

// currentWindowDays is the trailing window CurrentDSO considers.
const currentWindowDays = 90

// trendMonths is the number of calendar buckets MonthlyDSO produces.
const trendMonths = 12

// CurrentDSO returns the rounded average days outstanding over bills from
// the trailing 90 days, scoped to orgID when non-empty. An empty
// qualifying set yields 0 — a normal state for a filtered view, not an
// error.
func CurrentDSO(bills []Bill, orgID string, now time.Time) int {
	var totalDays float64
	count := 0

	for i := range bills {
		bill := &bills[i]
		if orgID != "" && bill.OrganizationID != orgID {
			continue
		}
		if daysBetween(bill.BillDate, now) > currentWindowDays {
			continue
		}
		days, ok := billDaysOutstanding(bill, now)
		if !ok {
			continue
		}
		totalDays += days
		count++
	}

	if count == 0 {
		return 0
	}
	return int(math.Round(totalDays / float64(count)))
}

// MonthlyDSO returns exactly 12 points, one per trailing calendar month,
// oldest first, scoped to orgID when non-empty. Months with no bills
// report DSO 0 and Samples 0 so the trend chart always has a value.
func MonthlyDSO(bills []Bill, orgID string, now time.Time) []MonthlyDSOPoint {
	points := make([]MonthlyDSOPoint, 0, trendMonths)

	for i := trendMonths - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		nextMonth := monthStart.AddDate(0, 1, 0)

		var totalDays float64
		count := 0
		for j := range bills {
			bill := &bills[j]
			if orgID != "" && bill.OrganizationID != orgID {
				continue
			}
			if bill.BillDate.Before(monthStart) || !bill.BillDate.Before(nextMonth) {
				continue
			}
			days, ok := billDaysOutstanding(bill, now)
			if !ok {
				continue
			}
			totalDays += days
			count++
		}

		dso := 0
		if count > 0 {
			dso = int(math.Round(totalDays / float64(count)))
		}

		points = append(points, MonthlyDSOPoint{
			Month:   monthStart.Format("Jan 2006"),
			Key:     monthStart.Year()*100 + int(monthStart.Month()),
			DSO:     dso,
			Samples: count,
		})
	}

	return points
}

// billDaysOutstanding returns the day count a bill contributes, or false
// for bills marked paid without a payment date.
func billDaysOutstanding(bill *Bill, now time.Time) (float64, bool) {
	if bill.Paid {
		if bill.PaidDate == nil {
			return 0, false
		}
		return daysBetween(bill.BillDate, *bill.PaidDate), true
	}
	return daysBetween(bill.BillDate, now), true
}

// daysBetween returns fractional days from a to b.
func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
