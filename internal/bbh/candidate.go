// Package bbh tracks, per row, the current best score seen and the set of
// column indices attaining it, and builds the column -> {rows} inversion
// the driver's column phase checks for Bidirectional Best Hits.
package bbh

// Candidate holds one row's running best score and the columns that
// attain it. It is never locked: the driver partitions the row phase so
// that a given row is mutated by exactly one worker task at a time.
type Candidate struct {
	bestScore float64
	bestCols  map[int]struct{}
}

// add updates the candidate with a freshly-computed (score, col) pair,
// following the policy: a strictly better score replaces the
// set, a tying positive score is added to it, anything else is a no-op.
// Zero scores never produce a candidate, so a later "is this the column's
// best score" check can never be satisfied by a vacuous 0-vs-0 tie.
func (c *Candidate) add(score float64, col int) {
	switch {
	case score > c.bestScore:
		c.bestScore = score
		c.bestCols = map[int]struct{}{col: {}}
	case score == c.bestScore && score > 0:
		if c.bestCols == nil {
			c.bestCols = make(map[int]struct{}, 1)
		}
		c.bestCols[col] = struct{}{}
	}
}

// BestScore returns the candidate's current best score.
func (c *Candidate) BestScore() float64 { return c.bestScore }

// BestColumns returns the columns currently tied for the best score.
func (c *Candidate) BestColumns() map[int]struct{} { return c.bestCols }

// Container is a fixed-capacity vector of Candidates, one per row.
type Container struct {
	candidates []Candidate
}

// NewContainer allocates a container for the given number of rows.
func NewContainer(rows int) *Container {
	return &Container{candidates: make([]Candidate, rows)}
}

// AddCandidate records a freshly-computed score for (row, col). Concurrent
// calls are safe as long as no two calls share the same row at once.
func (c *Container) AddCandidate(row int, score float64, col int) {
	c.candidates[row].add(score, col)
}

// BestScore returns row's current best score.
func (c *Container) BestScore(row int) float64 {
	return c.candidates[row].bestScore
}

// CandidateAt returns a reference to row's Candidate.
func (c *Container) CandidateAt(row int) *Candidate {
	return &c.candidates[row]
}

// Capacity returns the number of rows the container was built for.
func (c *Container) Capacity() int { return len(c.candidates) }

// GetPossibleMatch builds the column -> {rows} inversion: for every row and
// every column in that row's BestColumns, row is inserted into the set
// keyed by that column. The returned map is owned by the caller.
func (c *Container) GetPossibleMatch() map[int]map[int]struct{} {
	match := make(map[int]map[int]struct{})
	for row := range c.candidates {
		for col := range c.candidates[row].bestCols {
			rows, ok := match[col]
			if !ok {
				rows = make(map[int]struct{})
				match[col] = rows
			}
			rows[row] = struct{}{}
		}
	}
	return match
}
