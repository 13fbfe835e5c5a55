// Package kmerset holds, for one gene, the ordered multiset of k-mer
// occurrences keyed by dense k-mer id.
package kmerset

import (
	"github.com/twotwotwo/sorts"

	"github.com/SimoneColli/PanDelos-plus/internal/kmerid"
)

// Entry is one (k-mer id, multiplicity) pair.
type Entry struct {
	ID    kmerid.ID
	Count uint32
}

type entrySlice []Entry

func (s entrySlice) Len() int           { return len(s) }
func (s entrySlice) Less(i, j int) bool { return s[i].ID < s[j].ID }
func (s entrySlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Container is a gene's k-mer multiset: pairs sorted ascending by id, each
// id appearing at most once, plus the cached aggregates the similarity
// kernel relies on to avoid re-scanning the sequence.
type Container struct {
	entries []Entry
	minKey  kmerid.ID
	maxKey  kmerid.ID
	total   uint64
}

// Empty returns a container with no k-mers, as required for genes shorter
// than k.
func Empty() *Container {
	return &Container{}
}

// Build slides a length-k window over alphabet, interns every substring via
// mapper, and returns the resulting sorted multiset. If len(alphabet) < k
// the result is Empty().
func Build(alphabet string, k int, mapper *kmerid.Mapper) *Container {
	n := len(alphabet)
	if n < k {
		return Empty()
	}

	counts := make(map[kmerid.ID]uint32, n-k+1)
	for i := 0; i+k <= n; i++ {
		id := mapper.Intern(alphabet[i : i+k])
		counts[id]++
	}

	entries := make(entrySlice, 0, len(counts))
	for id, cnt := range counts {
		entries = append(entries, Entry{ID: id, Count: cnt})
	}
	sorts.Quicksort(entries)

	c := &Container{entries: entries}
	if len(entries) > 0 {
		c.minKey = entries[0].ID
		c.maxKey = entries[len(entries)-1].ID
	}
	for _, e := range entries {
		c.total += uint64(e.Count)
	}
	return c
}

// Entries returns the sorted (id, multiplicity) pairs. The slice must not
// be mutated by callers.
func (c *Container) Entries() []Entry { return c.entries }

// Len returns the number of distinct k-mer ids stored.
func (c *Container) Len() int { return len(c.entries) }

// MinKey returns the smallest stored id. Only valid when Len() > 0.
func (c *Container) MinKey() kmerid.ID { return c.minKey }

// MaxKey returns the largest stored id. Only valid when Len() > 0.
func (c *Container) MaxKey() kmerid.ID { return c.maxKey }

// TotalMultiplicity returns the sum of all multiplicities, i.e. the number
// of valid k-mer occurrences in the originating gene.
func (c *Container) TotalMultiplicity() uint64 { return c.total }
