package gene

import (
	"github.com/SimoneColli/PanDelos-plus/internal/kmerid"
	"github.com/SimoneColli/PanDelos-plus/internal/workerpool"
)

// Genome is an ordered collection of Genes identified by GenomeID. A gene's
// local index within its genome's Genes slice is its row/column index in
// the driver's score matrix.
type Genome struct {
	ID    int
	Genes []*Gene
}

// Size returns the number of genes in the genome.
func (g *Genome) Size() int { return len(g.Genes) }

// CreateAndCalculateAllKmers builds the k-mer container of every gene in
// the genome, one pool task per gene, and blocks until all of them finish.
func (g *Genome) CreateAndCalculateAllKmers(k int, mapper *kmerid.Mapper, pool *workerpool.Pool) {
	for _, gn := range g.Genes {
		gn := gn
		pool.Execute(func() {
			gn.CreateAndCalculateAllKmers(k, mapper)
		})
	}
	pool.Wait()
}

// DeleteAllKmers drops every gene's k-mer container, freeing the memory
// before the driver moves on to the next genome slot.
func (g *Genome) DeleteAllKmers(pool *workerpool.Pool) {
	for _, gn := range g.Genes {
		gn := gn
		pool.Execute(func() {
			gn.DeleteAllKmers()
		})
	}
	pool.Wait()
}

// GenomesContainer is an ordered collection of Genomes.
type GenomesContainer struct {
	Genomes []*Genome
}

// NewGenomesContainer wraps an ordered slice of genomes.
func NewGenomesContainer(genomes []*Genome) *GenomesContainer {
	return &GenomesContainer{Genomes: genomes}
}
