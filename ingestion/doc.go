// Package ingestion loads committee datasets into the candidate repository.
//
// A dataset file is YAML (JSON documents are accepted as well). It is either
// a flat list of committee rows, one per (researcher, conference edition)
// pair, or a mapping with explicit "researchers" and "editions" lists. Rows
// naming the same researcher are merged; later rows only fill fields that
// are still missing.
//
// Source fields that arrive under several names are resolved once here:
//   - cited_by_count, falling back to citation_count
//   - works_count, falling back to worksCount
//   - counts_by_year, given either as a list or as JSON text
//
// The Pipeline stores candidates in batches and optionally hands every stored
// batch to a Warmer on a worker pool. Warm-up errors are logged but do not
// fail the import.
package ingestion
