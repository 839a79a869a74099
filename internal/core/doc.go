// Package core provides the business logic for indicator ingestion and range
// classification.
//
// The package has no knowledge of HTTP or SQL. It talks to storage through
// the interfaces in store.go, so the same [Service] backs the web server, the
// ingestctl command and the tests.
//
// # Ingestion
//
// A batch is a set of files named "<code> - <text>.<csv|xlsx>". Each file
// carries one series: the code binds it to a registered [Series], the first
// column names entities and every 4-digit header token is a period column.
//
// [Service.Ingest] runs in two phases:
//
//  1. Validate: decode every filename, look up every series code, load the
//     entity registry, parse every body and resolve every entity name.
//  2. Commit: write all observations with one [ObservationStore.BulkUpsert],
//     replace the period registry and classify series that had no ranges.
//
// Any failure in phase 1 returns a [*BatchError] and nothing is written.
// Each upsert replaces the whole values map of an observation.
//
// # Classification
//
// [Classify] buckets a value set into four [Range] segments, highest first.
// Three strategies exist (equal count, equal interval, value quartile);
// manual series keep whatever ranges are stored. Bounds are clamped at zero,
// rounded to two decimals and separated by 0.01.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - ING001-ING009: Ingestion and classification errors
//   - DB004-DB007: Database connectivity errors
//   - FILE001-FILE003: Upload size and form errors
//   - UPL002-UPL005: Busy, cancelled or timed out batches
//
// # Audit Logging
//
// Ingests, classifications and period changes are recorded in the audit log
// with a severity level:
//
//   - Low: Automatic first-time classification
//   - Medium: Manual classification, period toggles
//   - High: Ingestion batches
//   - Critical: Period data deletion
package core
