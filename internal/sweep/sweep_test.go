package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/nucyield/internal/attenuation"
	"github.com/san-kum/nucyield/internal/efficiency"
	"github.com/san-kum/nucyield/internal/quad"
	"github.com/san-kum/nucyield/internal/table"
	"github.com/san-kum/nucyield/internal/yield"
)

func TestLinspace(t *testing.T) {
	g := NewWithT(t)

	g.Expect(Linspace(300, 400, 5)).To(Equal([]float64{300, 325, 350, 375, 400}))
	g.Expect(Linspace(300, 400, 1)).To(Equal([]float64{300}))
	g.Expect(Linspace(300, 400, 0)).To(BeEmpty())

	grid := Linspace(300, 400, 100)
	g.Expect(grid).To(HaveLen(100))
	g.Expect(grid[0]).To(Equal(300.0))
	g.Expect(grid[99]).To(Equal(400.0))
}

func TestMapPreservesOrder(t *testing.T) {
	g := NewWithT(t)

	out, err := Map(context.Background(), 3, 50, func(_ context.Context, i int) (int, error) {
		return i * i, nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(HaveLen(50))
	for i, v := range out {
		g.Expect(v).To(Equal(i * i))
	}
}

func TestMapRespectsLimit(t *testing.T) {
	g := NewWithT(t)

	var active, peak int32
	_, err := Map(context.Background(), 2, 20, func(_ context.Context, i int) (int, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&active, -1)
		return i, nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(atomic.LoadInt32(&peak)).To(BeNumerically("<=", 2))
}

func TestMapFirstError(t *testing.T) {
	g := NewWithT(t)
	boom := errors.New("boom")

	out, err := Map(context.Background(), 1, 10, func(_ context.Context, i int) (int, error) {
		if i == 3 {
			return 0, boom
		}
		return i, nil
	})
	g.Expect(err).To(MatchError(boom))
	g.Expect(out).To(BeNil())
}

func TestMapCancelled(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	_, err := Map(ctx, 2, 10, func(_ context.Context, i int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return i, nil
	})
	g.Expect(err).To(MatchError(context.Canceled))
	g.Expect(atomic.LoadInt32(&calls)).To(BeZero())
}

func TestYields(t *testing.T) {
	g := NewWithT(t)

	cross, err := table.FromRows([][2]float64{{0, 1}, {10, 1}})
	g.Expect(err).NotTo(HaveOccurred())
	stop, err := table.FromRows([][2]float64{{0, 5}, {1000, 5}})
	g.Expect(err).NotTo(HaveOccurred())

	energies := Linspace(300, 400, 11)
	pts, err := Yields(context.Background(), 4, yield.NewCalculator(quad.DefaultOptions()), energies, 33, cross, stop)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pts).To(HaveLen(11))
	for i, p := range pts {
		g.Expect(p.Energy).To(Equal(energies[i]))
		g.Expect(p.Yield).To(BeNumerically("~", 6.6e-6, 1e-14))
	}
}

func TestYieldsPropagatesError(t *testing.T) {
	g := NewWithT(t)

	cross, _ := table.FromRows([][2]float64{{0, 1}, {10, 1}})
	stop, _ := table.FromRows([][2]float64{{0, 5}, {1000, 5}})

	_, err := Yields(context.Background(), 2, yield.NewCalculator(quad.DefaultOptions()), []float64{300, 350}, -1, cross, stop)
	g.Expect(errors.Is(err, yield.ErrInvalidWindow)).To(BeTrue())
}

func TestEfficiencies(t *testing.T) {
	g := NewWithT(t)

	nai, err := attenuation.Lookup("nai")
	g.Expect(err).NotTo(HaveOccurred())
	coeffs := []attenuation.Coefficient{
		{Energy: 0.3, Mu: nai.Coefficient(0.3)},
		{Energy: 1.0, Mu: nai.Coefficient(1.0)},
		{Energy: 10, Mu: nai.Coefficient(10)},
	}
	geo := efficiency.Geometry{Thickness: 7.62, Gap: 1, Radius: 3.72}
	model := efficiency.New(quad.DefaultOptions())

	pts, err := Efficiencies(context.Background(), 3, model, geo, coeffs)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pts).To(HaveLen(3))
	for i, p := range pts {
		want, err := model.Point(coeffs[i].Mu, geo)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(p.Energy).To(Equal(coeffs[i].Energy))
		g.Expect(p.Efficiency).To(Equal(want))
	}
	// Attenuation falls from 0.3 to 1 MeV, so does the efficiency.
	g.Expect(pts[0].Efficiency).To(BeNumerically(">", pts[1].Efficiency))
}

func TestEfficienciesDisk(t *testing.T) {
	g := NewWithT(t)

	geo := efficiency.Geometry{Thickness: 7.62, Gap: 1, Radius: 3.72, SourceRadius: 1}
	model := efficiency.New(quad.DefaultOptions())
	coeffs := []attenuation.Coefficient{{Energy: 1.0, Mu: 5.762e-2 * 3.67}}

	pts, err := Efficiencies(context.Background(), 1, model, geo, coeffs)
	g.Expect(err).NotTo(HaveOccurred())
	want, err := model.Disk(coeffs[0].Mu, geo)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pts[0].Efficiency).To(Equal(want))
}
