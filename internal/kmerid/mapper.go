// Package kmerid interns distinct k-mer substrings into a dense set of
// integer identifiers, scoped to one Mapper.
package kmerid

import (
	"sync"
	"sync/atomic"

	"github.com/zeebo/wyhash"
)

// ID is the dense integer identifier assigned to a distinct k-mer.
type ID uint64

// numShards bounds lock contention on concurrent intern calls; each shard
// owns a disjoint slice of the hash space, picked with the same fast-hash
// trick for bucketing (github.com/zeebo/wyhash).
const numShards = 64

type shard struct {
	mu  sync.Mutex
	ids map[string]ID
}

// Mapper is a thread-safe interner: every distinct k-mer string observed
// across any number of genes gets exactly one ID, assigned in order of
// first sighting. It maps strings to IDs only; there is no ID-to-string
// lookup. IDs are never reused and the mapping only grows for the lifetime
// of the Mapper.
type Mapper struct {
	shards [numShards]shard
	next   atomic.Uint64
}

// NewMapper returns an empty interner.
func NewMapper() *Mapper {
	m := &Mapper{}
	for i := range m.shards {
		m.shards[i].ids = make(map[string]ID, 1024)
	}
	return m
}

func (m *Mapper) shardFor(kmer string) *shard {
	h := wyhash.Hash([]byte(kmer), 0)
	return &m.shards[h%numShards]
}

// Intern returns the ID for kmer, allocating a new one on first sighting.
// Concurrent interns of the same substring return the same ID; concurrent
// interns of distinct substrings always return distinct IDs.
func (m *Mapper) Intern(kmer string) ID {
	s := m.shardFor(kmer)
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.ids[kmer]; ok {
		return id
	}
	id := ID(m.next.Add(1) - 1)
	s.ids[kmer] = id
	return id
}

// Size returns the number of distinct k-mers interned so far.
func (m *Mapper) Size() int {
	return int(m.next.Load())
}
