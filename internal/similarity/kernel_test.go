package similarity

import (
	"math"
	"testing"

	"github.com/SimoneColli/PanDelos-plus/internal/kmerid"
	"github.com/SimoneColli/PanDelos-plus/internal/kmerset"
)

const k = 3

func build(t *testing.T, m *kmerid.Mapper, alphabet string) *kmerset.Container {
	t.Helper()
	return kmerset.Build(alphabet, k, m)
}

// A gene compared against itself scores 1 whenever it has at least k characters.
func TestSelfSimilarity(t *testing.T) {
	m := kmerid.NewMapper()
	c := build(t, m, "ACGTACGTAC")

	s := Score(10, 10, c, c)
	if math.Abs(s-1) > 1e-12 {
		t.Fatalf("expected self-similarity 1, got %v", s)
	}
}

// Similarity does not depend on argument order.
func TestSymmetry(t *testing.T) {
	m := kmerid.NewMapper()
	a := build(t, m, "AAAA")
	b := build(t, m, "AAAC")

	s1 := Score(4, 4, a, b)
	s2 := Score(4, 4, b, a)
	if s1 != s2 {
		t.Fatalf("similarity not symmetric: %v != %v", s1, s2)
	}
}

// Similarity is always within [0, 1].
func TestRange(t *testing.T) {
	m := kmerid.NewMapper()
	a := build(t, m, "ACGTACGTACGT")
	b := build(t, m, "TTTTGGGGCCCC")

	s := Score(12, 12, a, b)
	if s < 0 || s > 1 {
		t.Fatalf("similarity out of range: %v", s)
	}
}

// Two genes with no k-mer in common score 0.
func TestDisjointScoresZero(t *testing.T) {
	m := kmerid.NewMapper()
	a := build(t, m, "AAAAAA")
	b := build(t, m, "CCCCCC")

	if s := Score(6, 6, a, b); s != 0 {
		t.Fatalf("expected 0 for disjoint k-mer sets, got %v", s)
	}
}

// Two identical 4-character genes at k=3 score 1.
func TestScenarioIdenticalShortGenes(t *testing.T) {
	m := kmerid.NewMapper()
	g1 := build(t, m, "AAAA")
	g2 := build(t, m, "AAAA")

	if s := Score(4, 4, g1, g2); s != 1 {
		t.Fatalf("expected score 1, got %v", s)
	}
}

// AAAA vs AAAC at k=3 scores 1/3.
func TestScenarioOneThird(t *testing.T) {
	m := kmerid.NewMapper()
	g1 := build(t, m, "AAAA")
	g2 := build(t, m, "AAAC")

	s := Score(4, 4, g1, g2)
	want := 1.0 / 3.0
	if math.Abs(s-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, s)
	}
}

// The length gate rejects mismatched lengths
// before the containers are even consulted.
func TestScenarioLengthGate(t *testing.T) {
	m := kmerid.NewMapper()
	g1 := kmerset.Build("AAAAA", 2, m)
	g2 := kmerset.Build("AA", 2, m)

	if s := Score(5, 2, g1, g2); s != 0 {
		t.Fatalf("expected 0 from the length gate, got %v", s)
	}
}

// A gene shorter than k yields an empty container and similarity 0.
func TestScenarioShorterThanK(t *testing.T) {
	m := kmerid.NewMapper()
	g1 := kmerset.Build("A", 3, m)
	g2 := kmerset.Build("AAAA", 3, m)

	if s := Score(1, 4, g1, g2); s != 0 {
		t.Fatalf("expected 0, got %v", s)
	}
}
