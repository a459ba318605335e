// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/pcrank/core"
)

// encMode writes timestamps with nanosecond precision.
var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// MarshalCandidate serializes a Candidate to bytes.
func MarshalCandidate(c *core.Candidate) ([]byte, error) {
	bs, err := encMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: candidate %d: %w", ErrSerializationFailed, c.Id, err)
	}
	return bs, nil
}

// UnmarshalCandidate deserializes a Candidate from bytes.
func UnmarshalCandidate(data []byte) (*core.Candidate, error) {
	var c core.Candidate
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: candidate: %w", ErrSerializationFailed, err)
	}
	return &c, nil
}

// MarshalEdition serializes an Edition to bytes.
func MarshalEdition(e *core.Edition) ([]byte, error) {
	bs, err := encMode.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: edition %d: %w", ErrSerializationFailed, e.Id, err)
	}
	return bs, nil
}

// UnmarshalEdition deserializes an Edition from bytes.
func UnmarshalEdition(data []byte) (*core.Edition, error) {
	var e core.Edition
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: edition: %w", ErrSerializationFailed, err)
	}
	return &e, nil
}

// centralityRecord is the stored form of a CentralityEntry.
type centralityRecord struct {
	Key        string             `cbor:"1,keyasint"`
	ComputedAt int64              `cbor:"2,keyasint"`
	Signature  string             `cbor:"3,keyasint"`
	Values     map[uint64]float64 `cbor:"4,keyasint"`
}

// MarshalCentrality serializes a CentralityEntry to bytes.
func MarshalCentrality(entry *core.CentralityEntry) ([]byte, error) {
	rec := centralityRecord{
		Key:        entry.Key,
		ComputedAt: entry.ComputedAt.UnixMicro(),
		Signature:  entry.Signature,
		Values:     make(map[uint64]float64, len(entry.Values)),
	}
	for id, v := range entry.Values {
		rec.Values[uint64(id)] = v
	}
	bs, err := encMode.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: centrality %s: %w", ErrSerializationFailed, entry.Key, err)
	}
	return bs, nil
}

// UnmarshalCentrality deserializes a CentralityEntry from bytes.
func UnmarshalCentrality(data []byte) (*core.CentralityEntry, error) {
	var rec centralityRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: centrality: %w", ErrSerializationFailed, err)
	}
	if rec.Key == "" {
		return nil, fmt.Errorf("%w: centrality: missing key", ErrSerializationFailed)
	}
	entry := &core.CentralityEntry{
		Key:        rec.Key,
		ComputedAt: time.UnixMicro(rec.ComputedAt).UTC(),
		Signature:  rec.Signature,
		Values:     make(map[core.ID]float64, len(rec.Values)),
	}
	for id, v := range rec.Values {
		entry.Values[core.ID(id)] = v
	}
	return entry, nil
}

// MarshalEmbedding serializes an EmbeddingEntry to bytes.
//
// Layout: candidate ID, model name, content hash, UpdatedAt in Unix
// microseconds, vector length, then raw float32 components.
func MarshalEmbedding(entry *core.EmbeddingEntry) []byte {
	id := uint64(entry.CandidateID)
	updated := entry.UpdatedAt.UnixMicro()

	size := varint.Uint64.Size(id) +
		ord.String.Size(entry.ModelName) +
		ord.String.Size(entry.ContentHash) +
		varint.Int64.Size(updated) +
		varint.Int.Size(len(entry.Vector))
	for _, f := range entry.Vector {
		size += raw.Float32.Size(f)
	}

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(id, buf)
	n += ord.String.Marshal(entry.ModelName, buf[n:])
	n += ord.String.Marshal(entry.ContentHash, buf[n:])
	n += varint.Int64.Marshal(updated, buf[n:])
	n += varint.Int.Marshal(len(entry.Vector), buf[n:])
	for _, f := range entry.Vector {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	return buf
}

// UnmarshalEmbedding deserializes an EmbeddingEntry from bytes.
func UnmarshalEmbedding(data []byte) (*core.EmbeddingEntry, error) {
	fail := func(field string, err error) (*core.EmbeddingEntry, error) {
		return nil, fmt.Errorf("%w: embedding %s: %w", ErrSerializationFailed, field, err)
	}

	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return fail("candidate id", err)
	}
	offset := n

	model, n, err := ord.String.Unmarshal(data[offset:])
	if err != nil {
		return fail("model name", err)
	}
	offset += n

	hash, n, err := ord.String.Unmarshal(data[offset:])
	if err != nil {
		return fail("content hash", err)
	}
	offset += n

	updated, n, err := varint.Int64.Unmarshal(data[offset:])
	if err != nil {
		return fail("updated at", err)
	}
	offset += n

	length, n, err := varint.Int.Unmarshal(data[offset:])
	if err != nil {
		return fail("vector length", err)
	}
	offset += n
	if length < 0 || length*4 > len(data)-offset {
		return fail("vector", ErrTruncatedData)
	}

	vector := make([]float32, length)
	for i := range vector {
		vector[i], n, err = raw.Float32.Unmarshal(data[offset:])
		if err != nil {
			return fail("vector", err)
		}
		offset += n
	}

	return &core.EmbeddingEntry{
		CandidateID: core.ID(id),
		ModelName:   model,
		ContentHash: hash,
		UpdatedAt:   time.UnixMicro(updated).UTC(),
		Vector:      vector,
	}, nil
}
