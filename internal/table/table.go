package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDomain is returned for tables that cannot be interpolated.
var ErrDomain = errors.New("table: invalid sample table")

// Table is an ordered sequence of (x, y) samples with non-decreasing x.
// A Table is immutable after construction and safe for concurrent use.
type Table struct {
	xs []float64
	ys []float64
}

// New copies xs and ys into a Table. Repeated x values are allowed; they
// describe a step in y such as an absorption edge.
func New(xs, ys []float64) (*Table, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x values but %d y values", ErrDomain, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrDomain, len(xs))
	}
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return nil, fmt.Errorf("%w: non-finite value in row %d", ErrDomain, i)
		}
		if i > 0 && xs[i] < xs[i-1] {
			return nil, fmt.Errorf("%w: x not ascending at row %d (%g < %g)", ErrDomain, i, xs[i], xs[i-1])
		}
	}

	t := &Table{
		xs: make([]float64, len(xs)),
		ys: make([]float64, len(ys)),
	}
	copy(t.xs, xs)
	copy(t.ys, ys)
	return t, nil
}

// FromRows builds a Table from (x, y) pairs.
func FromRows(rows [][2]float64) (*Table, error) {
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i], ys[i] = r[0], r[1]
	}
	return New(xs, ys)
}

// Eval returns the linearly interpolated y at x. Queries outside the table
// return the nearest boundary y.
func (t *Table) Eval(x float64) float64 {
	n := len(t.xs)
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x <= t.xs[0] {
		if x == t.xs[0] {
			// right-most of any duplicates at the first x
			return t.ys[t.upper(x)-1]
		}
		return t.ys[0]
	}
	if x >= t.xs[n-1] {
		return t.ys[n-1]
	}

	// j is the last sample with xs[j] <= x, so xs[j+1] > x
	j := t.upper(x) - 1
	x0, x1 := t.xs[j], t.xs[j+1]
	y0, y1 := t.ys[j], t.ys[j+1]
	slope := (y1 - y0) / (x1 - x0)
	return y0 + slope*(x-x0)
}

// EvalAll evaluates every query in xs.
func (t *Table) EvalAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = t.Eval(x)
	}
	return out
}

// upper returns the index of the first sample with x strictly greater than x.
func (t *Table) upper(x float64) int {
	return sort.Search(len(t.xs), func(i int) bool { return t.xs[i] > x })
}

func (t *Table) Len() int { return len(t.xs) }

// Domain returns the first and last sample x.
func (t *Table) Domain() (lo, hi float64) {
	return t.xs[0], t.xs[len(t.xs)-1]
}

// Points returns a copy of the samples as (x, y) pairs.
func (t *Table) Points() [][2]float64 {
	rows := make([][2]float64, len(t.xs))
	for i := range t.xs {
		rows[i] = [2]float64{t.xs[i], t.ys[i]}
	}
	return rows
}
