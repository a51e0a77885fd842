package engine

import "time"

// ============================================================================
// TREND PAYLOAD — Monthly series + forecast, chart-ready
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TrendReport bundles the monthly DSO series with its one-step forecast
// and a render-ready chart.
type TrendReport struct {
	Points         []MonthlyDSOPoint `json:"points"`
	Predicted      int               `json:"predicted"`
	PredictedMonth string            `json:"predictedMonth"`
	Chart          *ChartConfig      `json:"chart,omitempty"`
}

// DSOTrend computes the 12-month DSO series for this view, forecasts the
// next month, and builds the chart.
func (v View) DSOTrend() TrendReport {
	points := MonthlyDSO(v.Bills, "", v.now)
	predicted := PredictNextDSO(points)
	month := nextMonthLabel(points)

	return TrendReport{
		Points:         points,
		Predicted:      predicted,
		PredictedMonth: month,
		Chart:          BuildDSOTrendChart(points, predicted, month),
	}
}

// BuildDSOTrendChart renders the history as one line series and the
// forecast as a single-point second series.
func BuildDSOTrendChart(points []MonthlyDSOPoint, predicted int, predictedMonth string) *ChartConfig {
	if len(points) == 0 {
		return nil
	}

	history := make([]ChartPoint, 0, len(points))
	for _, point := range points {
		history = append(history, ChartPoint{
			Label: point.Month,
			Value: float64(point.DSO),
		})
	}

	series := []ChartSeries{
		{Name: "DSO", Data: history, Color: defaultColors[0]},
		{Name: "Predicted", Data: []ChartPoint{{Label: predictedMonth, Value: float64(predicted)}}, Color: defaultColors[2]},
	}

	return &ChartConfig{
		ChartType:  "line",
		Title:      "DSO Trend (12 Months)",
		XAxis:      "Month",
		YAxis:      "Days",
		Series:     series,
		Colors:     []string{defaultColors[0], defaultColors[2]},
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// nextMonthLabel derives the forecast month label from the last point's
// calendar key.
func nextMonthLabel(points []MonthlyDSOPoint) string {
	if len(points) == 0 {
		return ""
	}
	key := points[len(points)-1].Key
	last := time.Date(key/100, time.Month(key%100), 1, 0, 0, 0, 0, time.UTC)
	return last.AddDate(0, 1, 0).Format("Jan 2006")
}
