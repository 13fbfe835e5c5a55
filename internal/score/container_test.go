package score

import "testing"

func TestSetGetRoundTrip(t *testing.T) {
	c := New(3, 4)
	c.Set(1, 2, 0.5)
	c.Set(0, 0, 1.0)

	if got := c.Get(1, 2); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := c.Get(0, 0); got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
	if got := c.Get(2, 3); got != 0 {
		t.Fatalf("expected untouched cell to be 0, got %v", got)
	}
}

func TestDimensions(t *testing.T) {
	c := New(5, 7)
	if c.Rows() != 5 || c.Cols() != 7 {
		t.Fatalf("expected 5x7, got %dx%d", c.Rows(), c.Cols())
	}
}
