package engine

import (
	"math"
	"time"
)

// ============================================================================
// ENGINE TYPES — Telecom Account Analytics
// ============================================================================
// JSON tags are camelCase to match the dashboard's data contract.
//
// Dependency: engine has ZERO external dependencies.
// ============================================================================

// Services lists the five fixed service categories, in display order.
var Services = []string{"Voice", "Data", "SMS", "Roaming", "International"}

// OrgSize buckets an organization by its account count.
type OrgSize string

const (
	SizeSmall      OrgSize = "Small"      // <= 5 accounts
	SizeMedium     OrgSize = "Medium"     // <= 20
	SizeLarge      OrgSize = "Large"      // <= 50
	SizeEnterprise OrgSize = "Enterprise" // everything above
)

// RiskCategory buckets a churn-risk score at thresholds 0.3 and 0.6.
type RiskCategory string

const (
	RiskLow    RiskCategory = "Low"
	RiskMedium RiskCategory = "Medium"
	RiskHigh   RiskCategory = "High"
)

// AccountType is the billing arrangement for an account.
type AccountType string

const (
	Postpaid AccountType = "Postpaid"
	Prepaid  AccountType = "Prepaid"
)

// AccountStatus is the service state of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "Active"
	StatusSuspended AccountStatus = "Suspended"
)

// ============================================================================
// ENTITIES
// ============================================================================

// Organization is a business customer owning one or more accounts.
//
// Risk is nil until DeriveChurnRisk runs — generation is two-phase, so a
// half-built organization is never observable with placeholder risk values.
type Organization struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	AccountCount      int          `json:"accountCount"`
	Size              OrgSize      `json:"size"`
	SatisfactionScore float64      `json:"satisfactionScore"`
	AutopayAdoption   float64      `json:"autopayAdoption"`
	PaperlessAdoption float64      `json:"paperlessAdoption"`
	AverageBillAmount float64      `json:"averageBillAmount"`
	CreatedDate       time.Time    `json:"createdDate"`
	Risk              *RiskProfile `json:"risk,omitempty"`
}

// RiskProfile holds the DSO-derived churn fields, populated once after
// billing exists and immutable thereafter.
type RiskProfile struct {
	DSO       int          `json:"dso"`
	ChurnRisk float64      `json:"churnRisk"`
	Category  RiskCategory `json:"churnRiskCategory"`
}

// Account is a single telecom line belonging to exactly one organization.
// OrganizationName and PhoneNumber are denormalized for display.
type Account struct {
	ID                 string         `json:"id"`
	OrganizationID     string         `json:"organizationId"`
	OrganizationName   string         `json:"organizationName"`
	PhoneNumber        string         `json:"phoneNumber"`
	AccountType        AccountType    `json:"accountType"`
	Status             AccountStatus  `json:"status"`
	Autopay            bool           `json:"autopay"`
	Paperless          bool           `json:"paperless"`
	ServiceUtilization map[string]int `json:"serviceUtilization"` // service -> percent in [10,95]
	CreatedDate        time.Time      `json:"createdDate"`
}

// Bill is one monthly invoice. Payment state is decided at generation
// time; bills are immutable after creation.
type Bill struct {
	ID             string             `json:"id"`
	AccountID      string             `json:"accountId"`
	OrganizationID string             `json:"organizationId"`
	BillDate       time.Time          `json:"billDate"`
	DueDate        time.Time          `json:"dueDate"`
	Amount         float64            `json:"amount"`
	ServiceCharges map[string]float64 `json:"serviceCharges"`
	Paid           bool               `json:"paid"`
	PaidDate       *time.Time         `json:"paidDate,omitempty"`
	SurpriseFactor float64            `json:"surpriseFactor"`
}

// ============================================================================
// DERIVED VALUES — recomputed per view, never stored
// ============================================================================

// MonthlyDSOPoint is one calendar-month DSO sample.
// Samples carries the bill count behind the value: a zero-DSO month with
// Samples == 0 means "no data", not "paid instantly".
type MonthlyDSOPoint struct {
	Month   string `json:"month"` // e.g. "Sep 2025"
	Key     int    `json:"key"`   // sortable year*100 + month
	DSO     int    `json:"dso"`
	Samples int    `json:"samples"`
}

// Insight is one human-readable finding from the rule engine.
type Insight struct {
	Type    string `json:"type"` // critical, warning, info, success, opportunity
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ============================================================================
// BUCKETING & ROUNDING
// ============================================================================

// OrgSizeFor buckets an account count into a size category.
func OrgSizeFor(accountCount int) OrgSize {
	switch {
	case accountCount <= 5:
		return SizeSmall
	case accountCount <= 20:
		return SizeMedium
	case accountCount <= 50:
		return SizeLarge
	default:
		return SizeEnterprise
	}
}

// RiskCategoryFor buckets a churn-risk score at 0.3 / 0.6.
func RiskCategoryFor(risk float64) RiskCategory {
	switch {
	case risk < 0.3:
		return RiskLow
	case risk < 0.6:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// RoundTo1 rounds to 1 decimal place.
func RoundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clampFloat restricts v to [lo, hi].
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
