// Package capture provides the note capture pipeline.
//
// The Pipeline type persists notes synchronously, deduplicating by source
// URL so a re-captured page updates its existing note, then enriches them
// asynchronously on a worker pool:
//   - Generating content embeddings and invalidating the search cache
//   - Suggesting tags for notes captured without any (when enabled)
//
// Enrichment errors are logged but never fail the capture; a note whose
// embedding is missing simply stays out of semantic ranking until the
// next re-embedding pass.
package capture
