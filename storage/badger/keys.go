package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/pcrank/core"
)

// Key prefixes for different data types
const (
	candidatePrefix  = "cand"
	candidateIDSeq   = "candseq"
	namePrefix       = "name"
	editionPrefix    = "edtn"
	membershipPrefix = "mbrs"
	centralityPrefix = "cent"
	embeddingPrefix  = "embd"
)

// makeIDKey generates a key of the form prefix:id with a big-endian ID, so
// iteration follows ascending ID order.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCandidateKey generates a key for a candidate by ID.
func makeCandidateKey(id core.ID) []byte {
	return makeIDKey(candidatePrefix, id)
}

// makeNameKey generates the name index key for a normalized candidate name.
// Format: prefix:normalizedName
func makeNameKey(normalized string) []byte {
	return []byte(namePrefix + ":" + normalized)
}

// makeEditionKey generates a key for an edition by ID.
func makeEditionKey(id core.ID) []byte {
	return makeIDKey(editionPrefix, id)
}

// makeMembershipKey generates a composite key for the membership index.
// Format: prefix:candidateID:editionID
func makeMembershipKey(candidateID, editionID core.ID) []byte {
	buf := makeIDKey(membershipPrefix, candidateID)
	return binary.BigEndian.AppendUint64(buf, uint64(editionID))
}

// makePartialMembershipKey generates a partial key for one candidate's memberships.
// Format: prefix:candidateID
func makePartialMembershipKey(candidateID core.ID) []byte {
	return makeIDKey(membershipPrefix, candidateID)
}

// parseMembershipKey extracts the candidate and edition IDs from a membership key.
func parseMembershipKey(key []byte) (core.Membership, error) {
	offset := len(membershipPrefix) + 1
	if len(key) != offset+16 {
		return core.Membership{}, fmt.Errorf("malformed membership key of length %d", len(key))
	}
	return core.Membership{
		CandidateID: core.ID(binary.BigEndian.Uint64(key[offset:])),
		EditionID:   core.ID(binary.BigEndian.Uint64(key[offset+8:])),
	}, nil
}

// makeCentralityKey generates a key for a centrality cache entry.
func makeCentralityKey(key string) []byte {
	return []byte(fmt.Sprintf("%s:%s", centralityPrefix, key))
}

// makeEmbeddingKey generates a key for a candidate's embedding entry.
func makeEmbeddingKey(id core.ID) []byte {
	return makeIDKey(embeddingPrefix, id)
}

// prefixOf returns the iteration prefix for keys built with makeIDKey.
func prefixOf(prefix string) []byte {
	return []byte(prefix + ":")
}
