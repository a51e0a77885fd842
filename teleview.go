// Package teleview provides a synthetic telecom-account analytics engine.
// It generates a statistically coherent population of organizations,
// accounts, and bills, then derives financial health metrics from it:
// Days Sales Outstanding, a one-step DSO forecast, churn risk, and a
// ranked list of plain-language insights.
//
// Usage:
//
//	import "github.com/teleview-org/teleview/engine"
//
//	src := engine.NewSource(time.Now().UnixNano())
//	ds := engine.NewDataset(src, 25, time.Now())
//
//	view := ds.Select(engine.Filter{Size: engine.SizeEnterprise})
//	metrics := view.Metrics()
//	insights := view.Insights()
//	trend := view.DSOTrend()
//
// The engine is a one-shot, in-memory batch computation: one generation
// pass produces the full dataset, and every filtered view recomputes its
// aggregates from scratch. The engine never touches the network or disk —
// serving the snapshot to a dashboard is handled by the server package.
package teleview
