// Package semantic scores candidates by embedding similarity between their
// profile text and the ranking query.
//
// Candidate vectors are cached per candidate, keyed by embedding model and a
// content hash of the profile text, so a vector is recomputed only when the
// profile or the model changes. When no embedder is available every score is 0.
package semantic
