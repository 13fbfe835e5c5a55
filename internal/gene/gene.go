// Package gene defines the immutable gene descriptor and the ordered
// genome/genome-container collections that hold them.
package gene

import (
	"fmt"

	"github.com/SimoneColli/PanDelos-plus/internal/kmerid"
	"github.com/SimoneColli/PanDelos-plus/internal/kmerset"
)

// Gene is an immutable descriptor of one gene: its alphabet, the ordinal
// position of its source line in the originating file, the id of the
// genome it belongs to, and a lazily-built k-mer container.
type Gene struct {
	Alphabet     string
	FilePosition int
	GenomeID     int

	kmers *kmerset.Container
}

// New constructs a Gene without a k-mer container; the container is built
// later by CreateAndCalculateAllKmers.
func New(alphabet string, filePosition, genomeID int) *Gene {
	return &Gene{Alphabet: alphabet, FilePosition: filePosition, GenomeID: genomeID}
}

// AlphabetLength returns len(alphabet).
func (g *Gene) AlphabetLength() int { return len(g.Alphabet) }

// CreateAndCalculateAllKmers builds this gene's k-mer container, interning
// every k-mer through mapper. It may be called again later to rebuild the
// container (a gene may be reindexed multiple times across the driver's
// build-on-demand mode).
func (g *Gene) CreateAndCalculateAllKmers(k int, mapper *kmerid.Mapper) {
	g.kmers = kmerset.Build(g.Alphabet, k, mapper)
}

// DeleteAllKmers drops the k-mer container, freeing its memory.
func (g *Gene) DeleteAllKmers() {
	g.kmers = nil
}

// KmerContainer returns the gene's k-mer container. It panics if called
// before CreateAndCalculateAllKmers — the same "must be built first"
// precondition.
func (g *Gene) KmerContainer() *kmerset.Container {
	if g.kmers == nil {
		panic(fmt.Sprintf("gene at file position %d: k-mer container not built", g.FilePosition))
	}
	return g.kmers
}

// KmersNum returns the total count of k-mer occurrences in this gene.
func (g *Gene) KmersNum() uint64 {
	return g.KmerContainer().TotalMultiplicity()
}
