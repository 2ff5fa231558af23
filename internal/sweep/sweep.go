// Package sweep evaluates yields and efficiencies over many energies on a
// bounded pool of goroutines.
package sweep

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"

	"github.com/san-kum/nucyield/internal/attenuation"
	"github.com/san-kum/nucyield/internal/efficiency"
	"github.com/san-kum/nucyield/internal/table"
	"github.com/san-kum/nucyield/internal/yield"
)

type YieldPoint struct {
	Energy       float64 `json:"energy_kev"`
	Yield        float64 `json:"yield"`
	AbsErr       float64 `json:"abs_err"`
	Subdivisions int     `json:"subdivisions"`
}

type EfficiencyPoint struct {
	Energy     float64 `json:"energy_mev"`
	Mu         float64 `json:"mu_per_cm"`
	Efficiency float64 `json:"efficiency"`
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n < 1:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Map calls fn for every index in [0, n) using at most workers goroutines
// (workers <= 0 means unbounded) and returns the results in index order.
// The first error cancels the remaining work and is returned.
func Map[T any](ctx context.Context, workers, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Yields integrates the yield window ending at each energy (keV).
func Yields(ctx context.Context, workers int, calc *yield.Calculator, energies []float64, deltaE float64, cross, stop *table.Table) ([]YieldPoint, error) {
	start := time.Now()
	pts, err := Map(ctx, workers, len(energies), func(_ context.Context, i int) (YieldPoint, error) {
		e := energies[i]
		res, err := calc.YieldEstimate(e, deltaE, cross, stop)
		if err != nil {
			return YieldPoint{}, err
		}
		klog.V(4).Infof("yield E=%g keV: %g (err %.2g, %d subdivisions)", e, res.Value, res.AbsErr, res.Subdivisions)
		return YieldPoint{Energy: e, Yield: res.Value, AbsErr: res.AbsErr, Subdivisions: res.Subdivisions}, nil
	})
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("yield sweep: %d energies in %v", len(energies), time.Since(start))
	return pts, nil
}

// Efficiencies evaluates the detector efficiency at each tabulated
// coefficient. A geometry with a zero source radius is treated as a point
// source, anything else as a uniform disk.
func Efficiencies(ctx context.Context, workers int, model *efficiency.Model, geo efficiency.Geometry, coeffs []attenuation.Coefficient) ([]EfficiencyPoint, error) {
	start := time.Now()
	eval := model.Point
	if geo.SourceRadius > 0 {
		eval = model.Disk
	}

	pts, err := Map(ctx, workers, len(coeffs), func(_ context.Context, i int) (EfficiencyPoint, error) {
		c := coeffs[i]
		eff, err := eval(c.Mu, geo)
		if err != nil {
			return EfficiencyPoint{}, err
		}
		klog.V(4).Infof("efficiency E=%g MeV mu=%g: %g", c.Energy, c.Mu, eff)
		return EfficiencyPoint{Energy: c.Energy, Mu: c.Mu, Efficiency: eff}, nil
	})
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("efficiency sweep: %d energies in %v", len(coeffs), time.Since(start))
	return pts, nil
}
