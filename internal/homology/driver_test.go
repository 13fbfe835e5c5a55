package homology

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/SimoneColli/PanDelos-plus/internal/gene"
)

// memSink is an in-memory sink.Sink used to make driver output assertable
// without touching the filesystem.
type memSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *memSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	return nil
}

func (s *memSink) Close() error { return nil }

func (s *memSink) sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.lines...)
	sort.Strings(out)
	return out
}

func genomeOf(id int, alphabets ...string) *gene.Genome {
	genes := make([]*gene.Gene, len(alphabets))
	for i, a := range alphabets {
		genes[i] = gene.New(a, i, id)
	}
	return &gene.Genome{ID: id, Genes: genes}
}

func runPipeline(t *testing.T, k, threads int, mode bool, genomes ...*gene.Genome) []string {
	t.Helper()
	out := &memSink{}
	d, err := NewDriver(k, threads, out)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	defer d.Close()

	gc := gene.NewGenomesContainer(genomes)
	if err := d.ComputeAllBBH(gc, mode); err != nil {
		t.Fatalf("ComputeAllBBH: %v", err)
	}
	return out.sorted()
}

// NewDriver rejects a non-positive k.
func TestNewDriverRejectsInvalidK(t *testing.T) {
	if _, err := NewDriver(0, 1, &memSink{}); err == nil {
		t.Fatal("expected an error for k=0")
	}
}

// Two genomes with one identical gene each produce exactly one edge.
func TestScenarioIdenticalShortGenes(t *testing.T) {
	g0 := genomeOf(0, "AAAA")
	g1 := genomeOf(1, "AAAA")

	lines := runPipeline(t, 3, 2, true, g0, g1)
	want := []string{"0,0,1"}
	if !equalStrings(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

// AAAA vs AAAC at k=3 scores 1/3.
func TestScenarioOneThird(t *testing.T) {
	g0 := genomeOf(0, "AAAA")
	g1 := genomeOf(1, "AAAC")

	lines := runPipeline(t, 3, 2, true, g0, g1)
	want := []string{fmt.Sprintf("0,0,%g", 1.0/3.0)}
	if !equalStrings(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

// A pair whose lengths fail the length gate produces no edge.
func TestScenarioLengthGateSuppressesEdge(t *testing.T) {
	g0 := genomeOf(0, "AAAAA")
	g1 := genomeOf(1, "AA")

	lines := runPipeline(t, 2, 2, true, g0, g1)
	if len(lines) != 0 {
		t.Fatalf("expected no edges from the length gate, got %v", lines)
	}
}

// A gene far shorter than its partner contributes no edge end-to-end.
func TestScenarioShorterThanK(t *testing.T) {
	g0 := genomeOf(0, "A")
	g1 := genomeOf(1, "AAAA")

	lines := runPipeline(t, 3, 2, true, g0, g1)
	if len(lines) != 0 {
		t.Fatalf("expected no edges, got %v", lines)
	}
}

// Three identical genes within one genome tie pairwise, so every pair is a
// mutual best hit and the full triangle of edges is emitted.
func TestScenarioThreeWayTieWithinGenome(t *testing.T) {
	g0 := genomeOf(0, "AAAA", "AAAA", "AAAA")

	lines := runPipeline(t, 3, 2, true, g0)
	want := []string{"0,1,1", "0,2,1", "1,2,1"}
	if !equalStrings(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

// The build-on-demand and build-once k-mer lifecycle modes emit the same edge multiset.
func TestModeEquivalence(t *testing.T) {
	mkGenomes := func() []*gene.Genome {
		return []*gene.Genome{
			genomeOf(0, "AAAA", "ACGTACGTAC", "AAAC"),
			genomeOf(1, "AAAA", "TTTTGGGGCC"),
			genomeOf(2, "AAAC", "ACGTACGTAC"),
		}
	}

	onDemand := runPipeline(t, 3, 2, true, mkGenomes()...)
	buildOnce := runPipeline(t, 3, 2, false, mkGenomes()...)

	if !equalStrings(onDemand, buildOnce) {
		t.Fatalf("mode mismatch:\non-demand=%v\nbuild-once=%v", onDemand, buildOnce)
	}
}

// The emitted edge set does not depend on the worker pool's thread count.
func TestThreadCountInvariance(t *testing.T) {
	mkGenomes := func() []*gene.Genome {
		return []*gene.Genome{
			genomeOf(0, "AAAA", "ACGTACGTAC", "AAAC"),
			genomeOf(1, "AAAA", "TTTTGGGGCC"),
		}
	}

	single := runPipeline(t, 3, 1, true, mkGenomes()...)
	parallel := runPipeline(t, 3, 8, true, mkGenomes()...)

	if !equalStrings(single, parallel) {
		t.Fatalf("thread count changed the edge set:\nthreads=1: %v\nthreads=8: %v", single, parallel)
	}
}

// SetDebugDir writes a matrix and candidates CSV per genome pair.
func TestDebugDirWritesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	debugDir := filepath.Join(dir, "debug")

	out := &memSink{}
	d, err := NewDriver(3, 2, out)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	d.SetDebugDir(debugDir)
	defer d.Close()

	g0 := genomeOf(0, "AAAA")
	g1 := genomeOf(1, "AAAC")
	gc := gene.NewGenomesContainer([]*gene.Genome{g0, g1})

	if err := d.ComputeAllBBH(gc, true); err != nil {
		t.Fatalf("ComputeAllBBH: %v", err)
	}

	matrixPath := filepath.Join(debugDir, "0_1_matrix.csv")
	if _, err := os.Stat(matrixPath); err != nil {
		t.Fatalf("expected matrix diagnostic at %s: %v", matrixPath, err)
	}
	candidatesPath := filepath.Join(debugDir, "0_1_candidates.csv")
	if _, err := os.Stat(candidatesPath); err != nil {
		t.Fatalf("expected candidates diagnostic at %s: %v", candidatesPath, err)
	}
}

// SetProgress fires once per row genome, regardless of pipeline mode.
func TestSetProgressFiresOncePerGenome(t *testing.T) {
	mkGenomes := func() []*gene.Genome {
		return []*gene.Genome{
			genomeOf(0, "AAAA", "AAAC"),
			genomeOf(1, "AAAA"),
			genomeOf(2, "TTTTGGGGCC"),
		}
	}

	for _, mode := range []bool{true, false} {
		out := &memSink{}
		d, err := NewDriver(3, 2, out)
		if err != nil {
			t.Fatalf("NewDriver: %v", err)
		}

		var mu sync.Mutex
		calls := 0
		d.SetProgress(func() {
			mu.Lock()
			calls++
			mu.Unlock()
		})

		genomes := mkGenomes()
		gc := gene.NewGenomesContainer(genomes)
		if err := d.ComputeAllBBH(gc, mode); err != nil {
			t.Fatalf("ComputeAllBBH: %v", err)
		}
		d.Close()

		if calls != len(genomes) {
			t.Fatalf("mode=%v: expected %d progress calls, got %d", mode, len(genomes), calls)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
