// Package static provides an offline ai.AIProvider.
//
// Vectors are built from hashed word tokens and character trigrams after
// accent folding, then normalized to unit length. Semantic quality is far
// below a trained model but the output is deterministic and needs no network,
// which makes it useful for tests, demos, and air-gapped deployments.
package static
