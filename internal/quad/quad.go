// Package quad integrates one-dimensional functions by global adaptive
// bisection.
//
// Every panel is evaluated with a fixed-order Gauss–Legendre rule from
// gonum. A panel's error is estimated by comparing the rule applied to the
// whole panel with the sum over its two halves; the panel with the largest
// estimate is bisected until the summed estimate meets the tolerance or the
// subdivision budget runs out.
//
// The estimate cannot see features narrower than the node spacing of a
// panel. Callers that know where such a feature sits pass its location as
// a breakpoint; every breakpoint starts a panel of its own.
//
// Integrands may call back into an [Integrator] (nested integrals); an
// Integrator holds no mutable state and is safe for concurrent use.
package quad

import (
	"container/heap"
	"math"
	"sort"
	"sync"

	gquad "gonum.org/v1/gonum/integrate/quad"
)

const (
	DefaultAbsTol          = 1.49e-8
	DefaultRelTol          = 1.49e-8
	DefaultMaxSubdivisions = 100
	DefaultNodes           = 10
)

// Options controls accuracy and work limits of an Integrator.
type Options struct {
	AbsTol          float64
	RelTol          float64
	MaxSubdivisions int
	// Nodes is the Gauss–Legendre order used on each panel.
	Nodes int
	// Concurrent is forwarded to gonum's quad.Fixed; values <= 1 evaluate
	// panel nodes serially.
	Concurrent int
}

func DefaultOptions() Options {
	return Options{
		AbsTol:          DefaultAbsTol,
		RelTol:          DefaultRelTol,
		MaxSubdivisions: DefaultMaxSubdivisions,
		Nodes:           DefaultNodes,
	}
}

// Result is the outcome of one integral.
type Result struct {
	Value        float64
	AbsErr       float64
	Subdivisions int
	Evaluations  int
}

type Integrator struct {
	opts Options
}

// New returns an Integrator. Zero or negative option fields take their
// defaults; a zero tolerance is kept only if the other tolerance is set.
func New(opts Options) *Integrator {
	def := DefaultOptions()
	if opts.AbsTol <= 0 && opts.RelTol <= 0 {
		opts.AbsTol, opts.RelTol = def.AbsTol, def.RelTol
	}
	if opts.AbsTol < 0 {
		opts.AbsTol = 0
	}
	if opts.RelTol < 0 {
		opts.RelTol = 0
	}
	if opts.MaxSubdivisions <= 0 {
		opts.MaxSubdivisions = def.MaxSubdivisions
	}
	if opts.Nodes <= 0 {
		opts.Nodes = def.Nodes
	}
	return &Integrator{opts: opts}
}

func (in *Integrator) Options() Options { return in.opts }

// Integrate computes the integral of f over [a, b]. Reversed bounds negate
// the result and a == b yields exactly 0 without calling f. Breakpoints
// outside the open interval (a, b) are ignored.
func (in *Integrator) Integrate(f func(float64) float64, a, b float64, breaks ...float64) (Result, error) {
	switch {
	case !finite(a) || !finite(b):
		return Result{}, &QuadratureError{Reason: "non-finite bounds", Lo: a, Hi: b}
	case a == b:
		return Result{}, nil
	case a > b:
		res, err := in.Integrate(f, b, a, breaks...)
		res.Value = -res.Value
		return res, err
	}

	var res Result
	n := in.opts.Nodes
	panel := func(lo, hi float64) float64 {
		res.Evaluations += n
		return gquad.Fixed(f, lo, hi, n, gquad.Legendre{}, in.opts.Concurrent)
	}
	bisect := func(lo, hi, whole float64) *segment {
		mid := lo + (hi-lo)/2
		left, right := panel(lo, mid), panel(mid, hi)
		v := left + right
		return &segment{lo: lo, mid: mid, hi: hi, left: left, right: right, value: v, err: math.Abs(v - whole)}
	}

	pts := panelEdges(a, b, breaks)
	segs := make(segmentHeap, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, bisect(pts[i], pts[i+1], panel(pts[i], pts[i+1])))
	}
	heap.Init(&segs)
	for {
		res.Value, res.AbsErr = segs.totals()
		if !finite(res.Value) || !finite(res.AbsErr) {
			return res, in.fail("non-finite integrand", a, b, res)
		}
		if res.AbsErr <= math.Max(in.opts.AbsTol, in.opts.RelTol*math.Abs(res.Value)) {
			return res, nil
		}
		if res.Subdivisions >= in.opts.MaxSubdivisions {
			return res, in.fail("subdivision limit reached", a, b, res)
		}

		worst := heap.Pop(&segs).(*segment)
		if worst.hi-worst.lo <= 100*epsilon*math.Max(math.Abs(worst.lo), math.Abs(worst.hi)) {
			return res, in.fail("roundoff limits interval bisection", a, b, res)
		}
		heap.Push(&segs, bisect(worst.lo, worst.mid, worst.left))
		heap.Push(&segs, bisect(worst.mid, worst.hi, worst.right))
		res.Subdivisions++
	}
}

// IntegrateFallible is Integrate for integrands that can fail, typically
// because they evaluate an inner integral. The first error returned by f
// stops the integration and is returned unchanged.
func (in *Integrator) IntegrateFallible(f func(float64) (float64, error), a, b float64, breaks ...float64) (Result, error) {
	var (
		mu       sync.Mutex
		firstErr error
	)
	g := func(x float64) float64 {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			return math.NaN()
		}

		v, err := f(x)
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return math.NaN()
		}
		return v
	}

	res, err := in.Integrate(g, a, b, breaks...)

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return res, firstErr
	}
	return res, err
}

func (in *Integrator) fail(reason string, a, b float64, res Result) error {
	return &QuadratureError{
		Reason:       reason,
		Lo:           a,
		Hi:           b,
		Value:        res.Value,
		AbsErr:       res.AbsErr,
		Subdivisions: res.Subdivisions,
	}
}

// Integrate computes the integral of f over [a, b] with default options.
func Integrate(f func(float64) float64, a, b float64, breaks ...float64) (Result, error) {
	return New(DefaultOptions()).Integrate(f, a, b, breaks...)
}

// panelEdges returns a, the finite breakpoints strictly inside (a, b) in
// ascending order without repeats, and b.
func panelEdges(a, b float64, breaks []float64) []float64 {
	pts := make([]float64, 0, len(breaks)+2)
	pts = append(pts, a)
	inner := make([]float64, 0, len(breaks))
	for _, x := range breaks {
		if finite(x) && x > a && x < b {
			inner = append(inner, x)
		}
	}
	sort.Float64s(inner)
	for _, x := range inner {
		if x != pts[len(pts)-1] {
			pts = append(pts, x)
		}
	}
	return append(pts, b)
}

const epsilon = 2.220446049250313e-16

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// segment is a bisected panel: left and right are the rule applied to the
// two halves and become the coarse estimates of the children.
type segment struct {
	lo, mid, hi float64
	left, right float64
	value, err  float64
}

// segmentHeap is a max-heap on the error estimate.
type segmentHeap []*segment

func (h segmentHeap) Len() int            { return len(h) }
func (h segmentHeap) Less(i, j int) bool  { return h[i].err > h[j].err }
func (h segmentHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *segmentHeap) Push(x interface{}) { *h = append(*h, x.(*segment)) }

func (h *segmentHeap) Pop() interface{} {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}

func (h segmentHeap) totals() (value, absErr float64) {
	for _, s := range h {
		value += s.value
		absErr += s.err
	}
	return value, absErr
}
