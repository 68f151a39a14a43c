// Package cached layers an in-memory LRU and an optional persistent
// VectorStore in front of any ai.Embedder.
//
// Keys combine the text with the model name, so switching models never
// returns stale vectors. Batches stay index-aligned with their input and only
// texts missing from both layers are sent to the wrapped embedder.
package cached
