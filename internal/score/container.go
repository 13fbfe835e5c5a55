// Package score holds the dense rows x cols similarity matrix computed for
// one genome pair.
package score

// Container is a dense rows x cols matrix of similarity scores. Cells are
// default-initialized to 0. Callers must guarantee at most one writer per
// cell before any reader runs — the row phase's row-partitioning gives
// exactly that, so no internal locking is needed.
type Container struct {
	rows, cols int
	data       []float64
}

// New allocates a zeroed rows x cols matrix.
func New(rows, cols int) *Container {
	return &Container{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Rows returns the number of rows.
func (c *Container) Rows() int { return c.rows }

// Cols returns the number of columns.
func (c *Container) Cols() int { return c.cols }

// Set stores s at (row, col).
func (c *Container) Set(row, col int, s float64) {
	c.data[row*c.cols+col] = s
}

// Get returns the score at (row, col).
func (c *Container) Get(row, col int) float64 {
	return c.data[row*c.cols+col]
}
