// Package homology orchestrates the full Bidirectional Best Hit pipeline:
// k-mer build/teardown strategy, row-phase similarity computation, column-
// phase BBH extraction, and edge emission.
package homology

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/SimoneColli/PanDelos-plus/internal/bbh"
	"github.com/SimoneColli/PanDelos-plus/internal/gene"
	"github.com/SimoneColli/PanDelos-plus/internal/kmerid"
	"github.com/SimoneColli/PanDelos-plus/internal/score"
	"github.com/SimoneColli/PanDelos-plus/internal/similarity"
	"github.com/SimoneColli/PanDelos-plus/internal/sink"
	"github.com/SimoneColli/PanDelos-plus/internal/workerpool"
)

// ErrConfiguration is returned by NewDriver when its parameters are invalid.
var ErrConfiguration = errors.New("homology: invalid configuration")

// Driver owns the worker pool and the output sink for the lifetime of a
// run, and exclusively owns every per-pair score/candidate container for
// the duration of that one pair's computation.
type Driver struct {
	k        int
	pool     *workerpool.Pool
	sink     sink.Sink
	debugDir string
	progress func()
}

// SetDebugDir turns on the opt-in per-pair diagnostics (score matrix and
// candidate list dumps), a runtime switch rather than a build-time flag.
// Empty (the default) disables it.
func (d *Driver) SetDebugDir(dir string) {
	d.debugDir = dir
}

// SetProgress registers fn to be called once every time a row genome has
// been fully processed (its self-comparison and every comparison against a
// later genome, in both pipeline modes). A caller can use this to drive a
// progress bar sized to the genome count; fn must be safe to call from the
// goroutine running ComputeAllBBH.
func (d *Driver) SetProgress(fn func()) {
	d.progress = fn
}

func (d *Driver) reportProgress() {
	if d.progress != nil {
		d.progress()
	}
}

// NewDriver constructs a driver. k must be > 0; threadCount <= 0 defaults
// to host parallelism (see workerpool.New).
func NewDriver(k, threadCount int, out sink.Sink) (*Driver, error) {
	if k <= 0 {
		return nil, errors.Wrapf(ErrConfiguration, "k must be > 0, got %d", k)
	}
	return &Driver{
		k:    k,
		pool: workerpool.New(threadCount),
		sink: out,
	}, nil
}

// Close stops the worker pool and closes the output sink. It is the
// caller's responsibility to call Close exactly once after the run.
func (d *Driver) Close() error {
	d.pool.Stop()
	return d.sink.Close()
}

// ComputeAllBBH runs the full pipeline over gc. mode=true selects
// build-on-demand (index at most two genomes at once, rebuilding as the
// driver advances); mode=false selects build-once (index every genome up
// front). Both modes emit the same multiset of edges.
func (d *Driver) ComputeAllBBH(gc *gene.GenomesContainer, mode bool) error {
	if mode {
		return d.computeOnDemand(gc.Genomes)
	}
	return d.computeBuildOnce(gc.Genomes)
}

func (d *Driver) computeOnDemand(genomes []*gene.Genome) error {
	for i, row := range genomes {
		mapper := kmerid.NewMapper()

		row.CreateAndCalculateAllKmers(d.k, mapper, d.pool)
		if err := d.sameGenome(row); err != nil {
			return err
		}

		for j := i + 1; j < len(genomes); j++ {
			col := genomes[j]
			col.CreateAndCalculateAllKmers(d.k, mapper, d.pool)
			if err := d.differentGenomes(col, row); err != nil {
				return err
			}
			col.DeleteAllKmers(d.pool)
		}

		row.DeleteAllKmers(d.pool)
		d.reportProgress()
	}
	return nil
}

func (d *Driver) computeBuildOnce(genomes []*gene.Genome) error {
	mapper := kmerid.NewMapper()
	for _, g := range genomes {
		g.CreateAndCalculateAllKmers(d.k, mapper, d.pool)
	}

	for i, row := range genomes {
		if err := d.sameGenome(row); err != nil {
			return err
		}
		for j := i + 1; j < len(genomes); j++ {
			if err := d.differentGenomes(genomes[j], row); err != nil {
				return err
			}
		}
		row.DeleteAllKmers(d.pool)
		d.reportProgress()
	}
	return nil
}

// differentGenomes computes BBH edges between colGenome's genes (matrix
// columns) and rowGenome's genes (matrix rows).
func (d *Driver) differentGenomes(colGenome, rowGenome *gene.Genome) error {
	rowGenes := rowGenome.Genes
	colGenes := colGenome.Genes

	candidates := bbh.NewContainer(len(rowGenes))
	scores := score.New(len(rowGenes), len(colGenes))

	d.calculateRow(rowGenes, colGenes, candidates, scores)

	if d.debugDir != "" {
		if err := d.writeDebugArtifacts(rowGenome.ID, colGenome.ID, rowGenes, colGenes, scores, candidates); err != nil {
			return err
		}
	}

	return d.checkForBBH(colGenes, rowGenes, candidates, scores, false)
}

func (d *Driver) sameGenome(g *gene.Genome) error {
	genes := g.Genes

	candidates := bbh.NewContainer(len(genes))
	scores := score.New(len(genes), len(genes))

	d.calculateRowSame(genes, candidates, scores)

	if d.debugDir != "" {
		if err := d.writeDebugArtifacts(g.ID, g.ID, genes, genes, scores, candidates); err != nil {
			return err
		}
	}

	return d.checkForBBH(genes, genes, candidates, scores, true)
}

// writeDebugArtifacts dumps the full score matrix and the per-row candidate
// list for one genome pair, named the way the original's #ifdef matrixPrint
// / candidatePrint blocks did ("<row>_<col>_matrix.csv",
// "<row>_<col>_candidates.csv"), restored here as an opt-in runtime path.
func (d *Driver) writeDebugArtifacts(rowID, colID int, rowGenes, colGenes []*gene.Gene, scores *score.Container, candidates *bbh.Container) error {
	if err := os.MkdirAll(d.debugDir, 0777); err != nil {
		return errors.Wrapf(err, "creating debug directory %s", d.debugDir)
	}

	prefix := strconv.Itoa(rowID) + "_" + strconv.Itoa(colID)

	if err := writeMatrixCSV(filepath.Join(d.debugDir, prefix+"_matrix.csv"), rowGenes, colGenes, scores); err != nil {
		return err
	}
	return writeCandidatesCSV(filepath.Join(d.debugDir, prefix+"_candidates.csv"), rowGenes, colGenes, candidates)
}

func writeMatrixCSV(path string, rowGenes, colGenes []*gene.Gene, scores *score.Container) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating debug artifact %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for col, colGene := range colGenes {
		if col > 0 {
			w.WriteByte(',')
		}
		w.WriteString(strconv.Itoa(colGene.FilePosition))
	}
	w.WriteByte('\n')

	for row, rowGene := range rowGenes {
		w.WriteString(strconv.Itoa(rowGene.FilePosition))
		for col := range colGenes {
			w.WriteByte(',')
			w.WriteString(strconv.FormatFloat(scores.Get(row, col), 'g', -1, 64))
		}
		w.WriteByte('\n')
	}
	return errors.Wrapf(w.Flush(), "writing debug artifact %s", path)
}

func writeCandidatesCSV(path string, rowGenes, colGenes []*gene.Gene, candidates *bbh.Container) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating debug artifact %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	w.WriteString("row,col,score\n")
	for row, rowGene := range rowGenes {
		c := candidates.CandidateAt(row)
		for col := range c.BestColumns() {
			w.WriteString(strconv.Itoa(rowGene.FilePosition))
			w.WriteByte(',')
			w.WriteString(strconv.Itoa(colGenes[col].FilePosition))
			w.WriteByte(',')
			w.WriteString(strconv.FormatFloat(c.BestScore(), 'g', -1, 64))
			w.WriteByte('\n')
		}
	}
	return errors.Wrapf(w.Flush(), "writing debug artifact %s", path)
}

// calculateRow computes similarity(row, col) for every (row, col) pair
// between two distinct gene lists, one pool task per row, partitioning
// writes so no cell or candidate row is ever touched by two tasks.
func (d *Driver) calculateRow(rowGenes, colGenes []*gene.Gene, candidates *bbh.Container, scores *score.Container) {
	for row := range rowGenes {
		row := row
		rowGene := rowGenes[row]
		d.pool.Execute(func() {
			for col, colGene := range colGenes {
				s := similarity.Score(
					rowGene.AlphabetLength(), colGene.AlphabetLength(),
					rowGene.KmerContainer(), colGene.KmerContainer(),
				)
				scores.Set(row, col, s)
				candidates.AddCandidate(row, s, col)
			}
		})
	}
	d.pool.Wait()
}

// calculateRowSame is calculateRow specialized for comparing a genome
// against itself: only the upper triangle (col > row) is computed, the
// diagonal is implicitly 0 and excluded from candidacy.
func (d *Driver) calculateRowSame(genes []*gene.Gene, candidates *bbh.Container, scores *score.Container) {
	for row := range genes {
		row := row
		rowGene := genes[row]
		d.pool.Execute(func() {
			for col := row + 1; col < len(genes); col++ {
				colGene := genes[col]
				s := similarity.Score(
					rowGene.AlphabetLength(), colGene.AlphabetLength(),
					rowGene.KmerContainer(), colGene.KmerContainer(),
				)
				scores.Set(row, col, s)
				candidates.AddCandidate(row, s, col)
			}
		})
	}
	d.pool.Wait()
}

// checkForBBH extracts BBH edges from the scores/candidates of one genome
// pair and writes them to the sink. same selects the diagonal-respecting
// scan range used when a genome is compared against itself.
func (d *Driver) checkForBBH(colGenes, rowGenes []*gene.Gene, candidates *bbh.Container, scores *score.Container, same bool) error {
	match := candidates.GetPossibleMatch()

	var mu sync.Mutex
	var firstErr error
	recordErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for col := range match {
		col := col
		d.pool.Execute(func() {
			scanLimit := len(rowGenes)
			if same {
				scanLimit = col
			}

			bestScore := -1.0
			bestRows := make(map[int]struct{})
			for row := 0; row < scanLimit; row++ {
				s := scores.Get(row, col)
				switch {
				case s > bestScore:
					bestScore = s
					bestRows = map[int]struct{}{row: {}}
				case s == bestScore:
					bestRows[row] = struct{}{}
				}
			}

			if bestScore <= 0 {
				return
			}

			colFilePos := colGenes[col].FilePosition
			for row := range bestRows {
				if bestScore == candidates.BestScore(row) {
					line := fmt.Sprintf("%d,%d,%g", rowGenes[row].FilePosition, colFilePos, bestScore)
					if err := d.sink.Write(line); err != nil {
						recordErr(errors.Wrap(err, "writing BBH edge"))
					}
				}
			}
		})
	}
	d.pool.Wait()

	return firstErr
}
