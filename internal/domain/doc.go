// Package domain models year-loss-table (YLT) climate adjustment requests and results.
//
// # Inputs
//
// A run reads four files from a single data directory:
//
//	sample-ylt.csv           the year-loss table to adjust
//	counts.parquet           precomputed event counts
//	climate_metrics.parquet  precomputed climate metrics (e.g. MDR SST per year)
//	gates.parquet            precomputed gating thresholds
//
// The parquet tables are opaque to this service; only the external adjustment
// routine reads them.
//
// # YLT Conventions
//
// Each YLT row is one simulated loss event inside one simulated year ("sample").
// The adjustment routine is told which CSV columns carry which meaning:
//
//	event_id    event identifier
//	year        sample index, 1..10000
//	latitude    event latitude (degrees)
//	longitude   event longitude (degrees)
//	intensity   peak intensity, in m/s
//	loss        total loss for the event
//
// # Adjustment Parameters
//
// Baseline years 1990-2020 define the historical climate; the target year 2022
// is the forecast year. The baseline is filtered by main-development-region
// (MDR) sea surface temperature over the full range, and the target keeps the
// 10 warmest ("top") years. Scenario "FCT" with timing "may" selects the May
// seasonal forecast. Ensemble adjustment is "empirical".
//
// # Results
//
// The routine returns a table whose columns and row count it alone decides.
// The service keeps the first five rows in producer order and serializes them
// as a JSON array of flat objects.
package domain
