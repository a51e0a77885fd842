package engine

import (
	"fmt"
	"math"
	"time"
)

// ============================================================================
// POPULATION GENERATOR — Organizations and their Accounts
// ============================================================================
// Phase one of the pipeline. Organizations come out with Risk == nil;
// churn fields are derived later, once bills exist.
// ============================================================================

// organizationNames bounds how many organizations one pass can produce.
var organizationNames = []string{
	"Acme Corp", "TechStart Inc", "Global Solutions", "Enterprise Systems",
	"Digital Innovations", "Cloud Services Ltd", "Network Solutions",
	"Smart Tech", "Future Communications", "Connect Plus",
	"Business Network", "Corporate Telecom", "Data Dynamics",
	"Mobile First", "Enterprise Connect", "Digital Wave",
	"Tech Ventures", "Global Connect", "Business Solutions",
	"Innovation Labs", "Metro Networks", "City Communications",
	"Regional Telecom", "Local Business", "Small Ventures",
}

// DefaultOrganizationCount is used when the caller passes count <= 0.
const DefaultOrganizationCount = 25

// GeneratePopulation produces count organizations with independently
// sampled attributes. Count is clamped to the name pool.
func GeneratePopulation(src Source, count int) []Organization {
	if count <= 0 {
		count = DefaultOrganizationCount
	}
	if count > len(organizationNames) {
		count = len(organizationNames)
	}

	orgs := make([]Organization, 0, count)
	for i := 0; i < count; i++ {
		accountCount := int(math.Max(1, math.Round(Normal(src, 15, 20))))
		avgBillPerAccount := math.Round(Normal(src, 500, 200))

		orgs = append(orgs, Organization{
			ID:                fmt.Sprintf("ORG-%04d", i+1),
			Name:              organizationNames[i],
			AccountCount:      accountCount,
			Size:              OrgSizeFor(accountCount),
			SatisfactionScore: RoundTo1(clampFloat(Normal(src, 75, 15), 0, 100)),
			AutopayAdoption:   clampFloat(Normal(src, 60, 20), 0, 100),
			PaperlessAdoption: clampFloat(Normal(src, 70, 18), 0, 100),
			AverageBillAmount: avgBillPerAccount * float64(accountCount),
			CreatedDate:       time.Date(2020, time.Month(Intn(src, 1, 12)), Intn(src, 1, 28), 0, 0, 0, 0, time.UTC),
		})
	}
	return orgs
}

// GenerateAccounts produces exactly AccountCount accounts per organization.
// Autopay and paperless are independent Bernoulli trials at the parent's
// adoption rate; an account is never created before its organization.
func GenerateAccounts(src Source, organizations []Organization) []Account {
	var accounts []Account
	accountID := 1

	for _, org := range organizations {
		for i := 0; i < org.AccountCount; i++ {
			utilization := make(map[string]int, len(Services))
			for _, service := range Services {
				utilization[service] = int(math.Round(Uniform(src, 10, 95)))
			}

			created := org.CreatedDate.AddDate(0, Intn(src, 0, 24), 0)
			created = time.Date(created.Year(), created.Month(), Intn(src, 1, 28), 0, 0, 0, 0, time.UTC)
			if created.Before(org.CreatedDate) {
				created = org.CreatedDate
			}

			accounts = append(accounts, Account{
				ID:                 fmt.Sprintf("ACC-%06d", accountID),
				OrganizationID:     org.ID,
				OrganizationName:   org.Name,
				PhoneNumber:        fmt.Sprintf("+1-555-%04d-%04d", Intn(src, 1000, 9999), Intn(src, 1000, 9999)),
				AccountType:        Choice(src, []AccountType{Postpaid, Prepaid}),
				Status:             Choice(src, []AccountStatus{StatusActive, StatusActive, StatusActive, StatusSuspended}),
				Autopay:            Bernoulli(src, org.AutopayAdoption/100),
				Paperless:          Bernoulli(src, org.PaperlessAdoption/100),
				ServiceUtilization: utilization,
				CreatedDate:        created,
			})
			accountID++
		}
	}
	return accounts
}
