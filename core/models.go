package core

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Candidates carry dataset identifiers or sequence-generated ones;
// editions use content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentHash returns the hex-encoded BLAKE2b-256 digest of text.
// It is used to detect changes in embedding inputs.
func ContentHash(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// EditionID returns the content-derived ID of a conference edition.
// Series names are compared case-insensitively.
func EditionID(series string, year int) ID {
	return IDFromContent(strings.ToLower(strings.TrimSpace(series)) + "|" + strconv.Itoa(year))
}

// NormalizeName folds a person's name for identity matching: lowercase with
// whitespace runs collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// YearCount is one bucket of a candidate's per-year bibliometric counts.
type YearCount struct {
	Year         int `json:"year" cbor:"1,keyasint"`
	WorksCount   int `json:"works_count" cbor:"2,keyasint"`
	CitedByCount int `json:"cited_by_count" cbor:"3,keyasint"`
}

// Publication is a single authored work. Year is 0 when unknown.
type Publication struct {
	Title string `json:"title" cbor:"1,keyasint"`
	Year  int    `json:"year,omitempty" cbor:"2,keyasint,omitempty"`
	Venue string `json:"venue,omitempty" cbor:"3,keyasint,omitempty"`
}

// Service is a prior program-committee membership.
type Service struct {
	Series string `json:"series" cbor:"1,keyasint"`
	Year   int    `json:"year" cbor:"2,keyasint"`
	Role   string `json:"role,omitempty" cbor:"3,keyasint,omitempty"`
}

// EditionID returns the ID of the conference edition this service belongs to.
func (s Service) EditionID() ID {
	return EditionID(s.Series, s.Year)
}

// Candidate is a researcher who may be recommended for a committee seat.
//
// Counters are pointers so that an absent value is distinguishable from zero.
// Fallback fields from heterogeneous sources are resolved at import time;
// the canonical fields below are the only ones scoring reads.
type Candidate struct {
	Id           ID            `json:"id" cbor:"1,keyasint"`
	FullName     string        `json:"full_name" cbor:"2,keyasint"`
	Affiliation  string        `json:"affiliation,omitempty" cbor:"3,keyasint,omitempty"`
	Country      string        `json:"country,omitempty" cbor:"4,keyasint,omitempty"`
	Interests    string        `json:"research_interests,omitempty" cbor:"5,keyasint,omitempty"`
	Topics       []string      `json:"topics,omitempty" cbor:"6,keyasint,omitempty"`
	WorksCount   *int          `json:"works_count,omitempty" cbor:"7,keyasint,omitempty"`
	CitedByCount *int          `json:"cited_by_count,omitempty" cbor:"8,keyasint,omitempty"`
	HIndex       *int          `json:"h_index,omitempty" cbor:"9,keyasint,omitempty"`
	CountsByYear []YearCount   `json:"counts_by_year,omitempty" cbor:"10,keyasint,omitempty"`
	Bio          string        `json:"bio,omitempty" cbor:"11,keyasint,omitempty"`
	Publications []Publication `json:"publications,omitempty" cbor:"12,keyasint,omitempty"`
	Services     []Service     `json:"services,omitempty" cbor:"13,keyasint,omitempty"`
	InsertedAt   time.Time     `json:"inserted_at" cbor:"14,keyasint"`
}

// Edition is a single year of a conference series.
type Edition struct {
	Id     ID     `cbor:"1,keyasint"`
	Series string `cbor:"2,keyasint"`
	Year   int    `cbor:"3,keyasint"`
}

// Membership links a candidate to an edition they served on.
type Membership struct {
	CandidateID ID
	EditionID   ID
}

// DatasetStats summarizes the structural size of the stored dataset.
// HasEditions is false when no edition is known, in which case MaxEditionYear is 0.
type DatasetStats struct {
	Memberships    int
	Candidates     int
	Editions       int
	MaxEditionYear int
	HasEditions    bool
}

// Query describes the committee seat being filled.
type Query struct {
	// Series is the target conference series, or "" for none.
	Series string
	// Year is the target edition year, or 0 when unset.
	Year int
	// Topics are the requested topic phrases, in priority order.
	Topics []string
	// Lookback is the recency window in years. Negative values are treated as 0.
	Lookback int
}

// Breakdown holds the per-signal sub-scores of one candidate, each in [0,1].
type Breakdown struct {
	TopicSimilarity   float64 `json:"topic_sim"`
	SemanticScore     float64 `json:"semantic_score"`
	PublicationRecent float64 `json:"pub_recency_score"`
	ServiceRecent     float64 `json:"pc_recency_score"`
	Impact            float64 `json:"impact_score"`
	Centrality        float64 `json:"pagerank_score"`
	Experience        float64 `json:"experience_score"`
	Newcomer          float64 `json:"newcomer_score"`
}

// Recommendation is a scored candidate.
type Recommendation struct {
	Candidate *Candidate `json:"candidate"`
	Score     float64    `json:"score"`
	Breakdown Breakdown  `json:"breakdown"`
}

// CentralityEntry is the cached centrality vector for the co-membership graph.
type CentralityEntry struct {
	Key        string
	ComputedAt time.Time
	Signature  string
	Values     map[ID]float64
}

// EmbeddingEntry is the cached profile embedding of a candidate.
type EmbeddingEntry struct {
	CandidateID ID
	ModelName   string
	ContentHash string
	UpdatedAt   time.Time
	Vector      []float32
}
