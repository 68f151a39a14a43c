// Package ingestion imports knowledge bases into storage and warms the vector
// store for them.
//
// The Pipeline type manages the import workflow:
//   - Saving the corpus under its name
//   - Embedding the passages that have no stored vector, in batches
//   - Recording the embedding model on the knowledge base once every batch succeeds
//
// Batches run concurrently on a worker pool. Batch failures are retried with
// exponential backoff, logged, and reported by Wait; they do not fail Import.
package ingestion
