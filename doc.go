// Package habitable lists the confirmed Kepler planets that could support
// liquid water on their surface.
//
// The program reads the Kepler objects-of-interest (KOI) cumulative table
// from ./kepler_data.csv, keeps every row where
//
//   - koi_disposition is exactly "CONFIRMED",
//   - koi_insol (stellar flux, Earth = 1) lies strictly between 0.36 and 1.11,
//   - koi_prad (planet radius, Earth = 1) is below 1.6,
//
// and prints the kepler_name of the kept rows, in file order, as one JSON
// array on stdout. Diagnostics go to stderr.
//
// # Layout
//
//   - cmd/habitable: the command line entry point
//   - internal/pipeline: runs the scan and renders the listing
//   - pkg/connector/sources/csv: the CSV row source
//   - pkg/filter: the habitability predicate
//   - pkg/models: the record type and KOI column names
//   - pkg/config, pkg/logger, pkg/errors, pkg/metrics, pkg/observability:
//     ambient configuration, logging, error types, counters and tracing
//
// # Quick Start
//
// Export the KOI cumulative table from the NASA Exoplanet Archive as CSV,
// save it as kepler_data.csv and run:
//
//	$ go run ./cmd/habitable
package habitable
