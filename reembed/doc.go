// Package reembed rebuilds the cached profile embeddings of stored candidates.
//
// Candidates are processed in batches with one embedding request per batch.
// Failed requests are retried with exponential backoff. Entries that already
// match the current model and profile text are skipped unless a forced
// rebuild is requested.
package reembed
