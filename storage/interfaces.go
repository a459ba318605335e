package storage

import (
	"context"

	"github.com/poiesic/pcrank/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	// Closing a repository does not close the shared backend.
	Close() error
}

// CandidateRepository provides read and write access to the candidate
// population and the conference editions they served on.
type CandidateRepository interface {
	Repository

	// AddCandidates stores one or more candidates, replacing any existing
	// candidate with the same ID. Candidates with ID=0 take the ID of the
	// stored candidate with the same normalized name, or receive a new ID
	// from a sequence. Editions referenced by services are registered, and the
	// membership index is rebuilt for every stored candidate.
	// Returns the candidates with IDs and InsertedAt populated.
	AddCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error)

	// GetCandidate retrieves a single candidate by ID.
	// Returns ErrNotFound if the candidate doesn't exist.
	GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error)

	// FindByName retrieves the candidate whose normalized name equals the
	// normalized form of name (see core.NormalizeName).
	// Returns ErrNotFound if no candidate has that name.
	FindByName(ctx context.Context, name string) (*core.Candidate, error)

	// AllCandidates returns every stored candidate in ascending ID order.
	AllCandidates(ctx context.Context) ([]*core.Candidate, error)

	// AddEditions registers conference editions that may have no members yet.
	AddEditions(ctx context.Context, editions ...*core.Edition) error

	// Memberships returns every (candidate, edition) service link.
	Memberships(ctx context.Context) ([]core.Membership, error)

	// Stats returns structural counts of the stored dataset.
	Stats(ctx context.Context) (core.DatasetStats, error)
}

// CentralityCache persists the centrality vector of the co-membership graph.
type CentralityCache interface {
	// LoadCentrality returns the entry stored under key.
	// Returns nil, nil if no entry exists.
	// Returns an error wrapping ErrSerializationFailed for malformed entries.
	LoadCentrality(ctx context.Context, key string) (*core.CentralityEntry, error)

	// SaveCentrality stores entry under entry.Key, fully replacing any
	// previous entry.
	SaveCentrality(ctx context.Context, entry *core.CentralityEntry) error
}

// EmbeddingCache persists candidate profile embeddings, one entry per candidate.
type EmbeddingCache interface {
	// LoadEmbedding returns the entry for a candidate.
	// Returns nil, nil if no entry exists.
	// Returns an error wrapping ErrSerializationFailed for malformed entries.
	LoadEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingEntry, error)

	// SaveEmbedding upserts the entry for entry.CandidateID.
	// UpdatedAt is set to the current time when zero.
	SaveEmbedding(ctx context.Context, entry *core.EmbeddingEntry) error
}
