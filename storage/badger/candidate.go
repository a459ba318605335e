package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/storage"
)

// CandidateRepository implements storage.CandidateRepository for BadgerDB.
type CandidateRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CandidateRepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(backend *Backend) (*CandidateRepository, error) {
	idSeq, err := backend.GetSequence(candidateIDSeq)
	if err != nil {
		return nil, err
	}

	return &CandidateRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *CandidateRepository) Close() error {
	return r.idSeq.Release()
}

// nextFreeID draws IDs from the sequence until it finds one not already used
// by an explicitly numbered candidate.
func (r *CandidateRepository) nextFreeID(tx *badger.Txn) (core.ID, error) {
	for {
		next, err := r.idSeq.Next()
		if err != nil {
			return 0, err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if next == 0 {
			continue
		}
		_, err = tx.Get(makeCandidateKey(core.ID(next)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return core.ID(next), nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// AddCandidates stores candidates, replacing existing ones with the same ID.
func (r *CandidateRepository) AddCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error) {
	err := r.backend.Update(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, candidate := range candidates {
			name := core.NormalizeName(candidate.FullName)
			if candidate.Id == 0 && name != "" {
				id, err := lookupName(tx, name)
				if err != nil {
					return err
				}
				candidate.Id = id
			}
			if candidate.Id == 0 {
				id, err := r.nextFreeID(tx)
				if err != nil {
					return err
				}
				candidate.Id = id
			}
			if candidate.InsertedAt.IsZero() {
				candidate.InsertedAt = now
			}

			if err := r.reindexName(tx, candidate.Id, name); err != nil {
				return err
			}

			// Store primary record
			value, err := storage.MarshalCandidate(candidate)
			if err != nil {
				return err
			}
			if err := tx.Set(makeCandidateKey(candidate.Id), value); err != nil {
				return err
			}

			// Rebuild membership index
			if err := r.clearMemberships(tx, candidate.Id); err != nil {
				return err
			}
			for _, service := range candidate.Services {
				edition := &core.Edition{
					Id:     service.EditionID(),
					Series: service.Series,
					Year:   service.Year,
				}
				if err := putEdition(tx, edition); err != nil {
					return err
				}
				if err := tx.Set(makeMembershipKey(candidate.Id, edition.Id), []byte{}); err != nil {
					return err
				}
			}
		}
		return nil
	})

	return candidates, err
}

// lookupName returns the ID indexed under a normalized name, or 0.
func lookupName(tx *badger.Txn, normalized string) (core.ID, error) {
	item, err := tx.Get(makeNameKey(normalized))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var id core.ID
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("%w: name index entry of length %d", storage.ErrSerializationFailed, len(val))
		}
		id = core.ID(binary.BigEndian.Uint64(val))
		return nil
	})
	return id, err
}

// reindexName points the name index at id, dropping the entry of the
// name previously stored under id if it changed.
func (r *CandidateRepository) reindexName(tx *badger.Txn, id core.ID, name string) error {
	item, err := tx.Get(makeCandidateKey(id))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return err
	default:
		var previous *core.Candidate
		if err := item.Value(func(val []byte) error {
			var decodeErr error
			previous, decodeErr = storage.UnmarshalCandidate(val)
			return decodeErr
		}); err != nil {
			return err
		}
		old := core.NormalizeName(previous.FullName)
		if old != "" && old != name {
			owner, err := lookupName(tx, old)
			if err != nil {
				return err
			}
			if owner == id {
				if err := tx.Delete(makeNameKey(old)); err != nil {
					return err
				}
			}
		}
	}

	if name == "" {
		return nil
	}
	return tx.Set(makeNameKey(name), binary.BigEndian.AppendUint64(nil, uint64(id)))
}

// clearMemberships removes every membership index entry of a candidate.
func (r *CandidateRepository) clearMemberships(tx *badger.Txn, id core.ID) error {
	var stale [][]byte
	err := scanPrefix(tx, makePartialMembershipKey(id), false, func(item *badger.Item) error {
		stale = append(stale, item.KeyCopy(nil))
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range stale {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// GetCandidate retrieves a single candidate by ID.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error) {
	var result *core.Candidate
	err := r.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCandidateKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalCandidate(val)
			return err
		})
	})
	return result, err
}

// FindByName retrieves a candidate through the normalized-name index.
func (r *CandidateRepository) FindByName(ctx context.Context, name string) (*core.Candidate, error) {
	normalized := core.NormalizeName(name)
	if normalized == "" {
		return nil, storage.ErrNotFound
	}

	var id core.ID
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		id, err = lookupName(tx, normalized)
		return err
	})
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, storage.ErrNotFound
	}
	return r.GetCandidate(ctx, id)
}

// AllCandidates returns every candidate in ascending ID order.
func (r *CandidateRepository) AllCandidates(ctx context.Context) ([]*core.Candidate, error) {
	var results []*core.Candidate
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, prefixOf(candidatePrefix), true, func(item *badger.Item) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				candidate, err := storage.UnmarshalCandidate(val)
				if err != nil {
					return err
				}
				results = append(results, candidate)
				return nil
			})
		})
	})
	return results, err
}

// AddEditions registers conference editions.
func (r *CandidateRepository) AddEditions(ctx context.Context, editions ...*core.Edition) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		for _, edition := range editions {
			if edition.Id == 0 {
				edition.Id = core.EditionID(edition.Series, edition.Year)
			}
			if err := putEdition(tx, edition); err != nil {
				return err
			}
		}
		return nil
	})
}

func putEdition(tx *badger.Txn, edition *core.Edition) error {
	value, err := storage.MarshalEdition(edition)
	if err != nil {
		return err
	}
	return tx.Set(makeEditionKey(edition.Id), value)
}

// Memberships returns every (candidate, edition) link, ordered by candidate.
func (r *CandidateRepository) Memberships(ctx context.Context) ([]core.Membership, error) {
	var results []core.Membership
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, prefixOf(membershipPrefix), false, func(item *badger.Item) error {
			m, err := parseMembershipKey(item.Key())
			if err != nil {
				return err
			}
			results = append(results, m)
			return nil
		})
	})
	return results, err
}

// Stats counts memberships, candidates and editions and finds the latest
// edition year.
func (r *CandidateRepository) Stats(ctx context.Context) (core.DatasetStats, error) {
	var stats core.DatasetStats
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		if stats.Memberships, err = countPrefix(tx, prefixOf(membershipPrefix)); err != nil {
			return err
		}
		if stats.Candidates, err = countPrefix(tx, prefixOf(candidatePrefix)); err != nil {
			return err
		}
		return scanPrefix(tx, prefixOf(editionPrefix), true, func(item *badger.Item) error {
			return item.Value(func(val []byte) error {
				edition, err := storage.UnmarshalEdition(val)
				if err != nil {
					return err
				}
				stats.Editions++
				if !stats.HasEditions || edition.Year > stats.MaxEditionYear {
					stats.MaxEditionYear = edition.Year
				}
				stats.HasEditions = true
				return nil
			})
		})
	})
	return stats, err
}
