// Package reembed rebuilds the embedding records for every stored note,
// typically after switching to a new embedding model.
//
// Runs are batched, report progress, retry transient embedding failures
// with exponential backoff, and can resume from a checkpoint after an
// interruption. Vectors are normalized before storage so cosine
// similarity stays well behaved.
package reembed
