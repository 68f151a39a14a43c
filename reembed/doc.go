// Package reembed recomputes stored passage vectors with a new or updated
// embedding model.
//
// This package supports batch processing of knowledge base passages, progress
// tracking, retry logic with exponential backoff, and vector normalization so
// stored vectors stay comparable under cosine similarity.
package reembed
