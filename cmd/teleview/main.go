package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/teleview-org/teleview/config"
	"github.com/teleview-org/teleview/engine"
	"github.com/teleview-org/teleview/helpers"
	"github.com/teleview-org/teleview/server"
)

// ============================================================================
// TELEVIEW CLI — Synthetic telecom account analytics
// ============================================================================

const version = "0.3.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "Path to YAML config file (optional)")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based, varies per run)")
	count := flag.Int("count", 0, "Number of organizations to generate (0 = config default)")
	format := flag.String("format", "json", "Output format: json, pretty, text, csv")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	serve := flag.Bool("serve", false, "Serve the generated dataset over HTTP instead of printing")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Teleview — synthetic telecom account analytics

Usage:
  teleview --seed 42 --format pretty
  teleview --count 50 --format csv --out orgs.csv
  teleview --serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  TELEVIEW_ADDR             Listen address for --serve (overrides config)
  TELEVIEW_ORG_COUNT        Organization count (overrides config)
  TELEVIEW_ALLOWED_ORIGINS  CORS origin for --serve

Formats:
  json      Full JSON report (default)
  pretty    Pretty-printed JSON
  text      Human-readable summary
  csv       Organizations + trend as CSV (ready for Sheets/Excel)

Examples:
  # Reproducible dataset, readable report
  teleview --seed 42 --format text

  # Export organization table for a spreadsheet
  teleview --seed 42 --format csv --out orgs.csv

  # Back the dashboard
  teleview --seed 42 --serve
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("teleview %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}

	orgCount := cfg.Generator.OrganizationCount
	if *count > 0 {
		orgCount = *count
	}

	actualSeed := *seed
	if actualSeed == 0 {
		actualSeed = time.Now().UnixNano()
	}

	// ── Generate ──────────────────────────────────────────────────────────
	now := time.Now().UTC()
	src := engine.NewSource(actualSeed)
	dataset := engine.NewDataset(src, orgCount, now)
	log.Printf("📊 Generated %d organizations, %d accounts, %d bills (seed %d)",
		len(dataset.Organizations), len(dataset.Accounts), len(dataset.Bills), actualSeed)

	// ── Serve mode ────────────────────────────────────────────────────────
	if *serve {
		srv := server.New(dataset, server.Options{
			Addr:           cfg.Server.Addr,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})
		if err := srv.Start(); err != nil {
			fatalf("Server failed: %v", err)
		}
		return
	}

	// ── Output writer ─────────────────────────────────────────────────────
	writer := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	view := dataset.Full()

	// ── Render output ─────────────────────────────────────────────────────
	switch *format {
	case "csv":
		if err := helpers.WriteOrganizationsCSV(writer, view.Organizations); err != nil {
			fatalf("Failed to write CSV: %v", err)
		}
		fmt.Fprintln(writer)
		if err := helpers.WriteTrendCSV(writer, view.DSOTrend()); err != nil {
			fatalf("Failed to write CSV: %v", err)
		}
		if *outFile != "" {
			log.Printf("📄 CSV written to %s", *outFile)
		}
	case "text":
		printReport(writer, view)
	default:
		out := cliOutput{
			Seed:     actualSeed,
			Metrics:  view.Metrics(),
			Trend:    view.DSOTrend(),
			Insights: view.Insights(),
			HighRisk: view.HighRisk(5),
		}
		writeJSON(writer, out, *format)
		if *outFile != "" {
			log.Printf("📄 Report written to %s", *outFile)
		}
	}
}

// ============================================================================
// OUTPUT TYPES
// ============================================================================

type cliOutput struct {
	Seed     int64                 `json:"seed"`
	Metrics  engine.Metrics        `json:"metrics"`
	Trend    engine.TrendReport    `json:"trend"`
	Insights []engine.Insight      `json:"insights"`
	HighRisk []engine.Organization `json:"highRisk"`
}

// ============================================================================
// TEXT REPORT
// ============================================================================

func printReport(w *os.File, view engine.View) {
	metrics := view.Metrics()
	trend := view.DSOTrend()

	fmt.Fprintln(w, "=== Account Portfolio ===")
	fmt.Fprintf(w, "Organizations:    %d\n", metrics.TotalOrgs)
	fmt.Fprintf(w, "Accounts:         %d\n", metrics.TotalAccounts)
	fmt.Fprintf(w, "Satisfaction:     %.1f%%\n", metrics.AvgSatisfaction)
	fmt.Fprintf(w, "Autopay:          %.1f%%\n", metrics.AutopayRate)
	fmt.Fprintf(w, "Churn risk:       %.1f%%\n", metrics.ChurnRiskRate)
	fmt.Fprintf(w, "Revenue (12 mo):  $%s\n", engine.FormatAmount(metrics.TotalRevenue))
	fmt.Fprintf(w, "Current DSO:      %d days\n", metrics.CurrentDSO)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== DSO Trend ===")
	for _, point := range trend.Points {
		fmt.Fprintf(w, "%-9s %3d days  (%d bills)\n", point.Month, point.DSO, point.Samples)
	}
	fmt.Fprintf(w, "%-9s %3d days  (predicted)\n", trend.PredictedMonth, trend.Predicted)
	fmt.Fprintln(w)

	insights := view.Insights()
	if len(insights) > 0 {
		fmt.Fprintln(w, "=== Insights ===")
		for _, insight := range insights {
			fmt.Fprintf(w, "%s %s\n   %s\n", insight.Icon, insight.Title, insight.Message)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "=== Highest Churn Risk ===")
	for _, org := range view.HighRisk(5) {
		if org.Risk == nil {
			continue
		}
		fmt.Fprintf(w, "%-28s %s  DSO %2d  risk %.2f\n",
			org.Name, org.Risk.Category, org.Risk.DSO, org.Risk.ChurnRisk)
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w *os.File, v interface{}, format string) {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		fatalf("Failed to marshal output: %v", err)
	}
	fmt.Fprintln(w, string(out))
}

// ============================================================================
// HELPERS
// ============================================================================

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
