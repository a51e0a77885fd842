package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/teleview-org/teleview/engine"
)

// ============================================================================
// CSV HELPER — Writes engine results as CSV
// ============================================================================
// Consumer decides where the CSV goes (file, stdout, HTTP response). These
// helpers only serialize; they never touch the filesystem themselves.
// ============================================================================

// WriteOrganizationsCSV writes one row per organization, risk columns
// included. Organizations without derived risk get empty risk cells.
func WriteOrganizationsCSV(w io.Writer, organizations []engine.Organization) error {
	writer := csv.NewWriter(w)

	header := []string{
		"id", "name", "size", "account_count", "satisfaction_score",
		"autopay_adoption", "paperless_adoption", "average_bill_amount",
		"dso", "churn_risk", "risk_category",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range organizations {
		org := &organizations[i]
		dso, churn, category := "", "", ""
		if org.Risk != nil {
			dso = strconv.Itoa(org.Risk.DSO)
			churn = strconv.FormatFloat(org.Risk.ChurnRisk, 'f', 2, 64)
			category = string(org.Risk.Category)
		}
		row := []string{
			org.ID,
			org.Name,
			string(org.Size),
			strconv.Itoa(org.AccountCount),
			strconv.FormatFloat(org.SatisfactionScore, 'f', 1, 64),
			strconv.FormatFloat(org.AutopayAdoption, 'f', 1, 64),
			strconv.FormatFloat(org.PaperlessAdoption, 'f', 1, 64),
			strconv.FormatFloat(org.AverageBillAmount, 'f', 2, 64),
			dso, churn, category,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTrendCSV writes the monthly DSO series with the forecast appended
// as a final "predicted" row.
func WriteTrendCSV(w io.Writer, trend engine.TrendReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"month", "dso", "samples", "kind"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, point := range trend.Points {
		row := []string{point.Month, strconv.Itoa(point.DSO), strconv.Itoa(point.Samples), "actual"}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	predicted := []string{trend.PredictedMonth, strconv.Itoa(trend.Predicted), "", "predicted"}
	if err := writer.Write(predicted); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}

	writer.Flush()
	return writer.Error()
}
