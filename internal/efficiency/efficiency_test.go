package efficiency_test

import (
	"math"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"
	gquad "gonum.org/v1/gonum/integrate/quad"

	"github.com/san-kum/nucyield/internal/efficiency"
	"github.com/san-kum/nucyield/internal/quad"
)

// 3"x3" NaI(Tl) well counter geometry
var nai = efficiency.Geometry{Thickness: 7.62, Gap: 1, Radius: 3.72}

// mu at 1 MeV: 5.762e-2 cm2/g times 3.67 g/cm3
const mu1MeV = 5.762e-2 * 3.67

// reference evaluates the efficiency formulas with fixed high-order
// Gauss–Legendre rules. The side integral is split at log-spaced distances
// above mu2 so that the absorption layer of an opaque detector is resolved.
func reference(t, h, b, m, r float64) float64 {
	const n = 200
	outer := func(phi float64) float64 {
		s := -m*math.Sin(phi) + math.Sqrt(r*r-m*m*math.Cos(phi)*math.Cos(phi))
		mu1 := (h + b) / math.Sqrt((h+b)*(h+b)+s*s)
		mu2 := b / math.Sqrt(b*b+s*s)
		through := gquad.Fixed(func(mu float64) float64 {
			return 1 - math.Exp(-t*h/mu)
		}, mu1, 1, n, nil, 0)
		f2 := func(mu float64) float64 {
			return 1 - math.Exp(-t*math.Max(0, s/math.Sqrt(1-mu*mu)-b/mu))
		}
		side := 0.0
		hi := mu1
		for d := (mu1 - mu2) / 10; d > 1e-14; d /= 10 {
			side += gquad.Fixed(f2, mu2+d, hi, 40, nil, 0)
			hi = mu2 + d
		}
		side += gquad.Fixed(f2, mu2, hi, 40, nil, 0)
		return through + side
	}
	return gquad.Fixed(outer, -math.Pi/2, math.Pi/2, n, nil, 0) / (2 * math.Pi)
}

var _ = g.Describe("Point source efficiency", func() {
	g.It("reproduces a direct high-order integration on axis", func() {
		got, err := efficiency.PointSource(mu1MeV, nai)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(got).To(o.BeNumerically("~", reference(mu1MeV, 7.62, 1, 0, 3.72), 1e-6))
	})

	g.It("reproduces a direct high-order integration off axis", func() {
		geo := nai
		geo.Offset = 1.5
		got, err := efficiency.PointSource(mu1MeV, geo)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(got).To(o.BeNumerically("~", reference(mu1MeV, 7.62, 1, 1.5, 3.72), 1e-6))
	})

	g.DescribeTable("stays within [0, 1]",
		func(t, offset float64) {
			geo := nai
			geo.Offset = offset
			got, err := efficiency.PointSource(t, geo)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(got).To(o.BeNumerically(">=", 0))
			o.Expect(got).To(o.BeNumerically("<=", 1))
		},
		g.Entry("transparent", 1e-4, 0.0),
		g.Entry("1 MeV on axis", mu1MeV, 0.0),
		g.Entry("100 keV off axis", 1.576*3.67, 2.0),
		g.Entry("source at the rim", mu1MeV, 3.72),
		g.Entry("1 keV fully opaque", 7.794e3*3.67, 0.0),
	)

	g.DescribeTable("resolves the absorption layer of an opaque detector",
		func(t, offset float64) {
			geo := nai
			geo.Offset = offset
			got, err := efficiency.PointSource(t, geo)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(got).To(o.BeNumerically("~", reference(t, 7.62, 1, offset, 3.72), 2e-8))
		},
		g.Entry("1 keV on axis", 7.794e3*3.67, 0.0),
		g.Entry("1 keV off axis", 7.794e3*3.67, 1.5),
		g.Entry("20 keV on axis", 2.071e1*3.67, 0.0),
	)

	g.It("is exactly zero without attenuation", func() {
		got, err := efficiency.PointSource(0, nai)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(got).To(o.BeZero())
	})

	g.It("approaches the geometric solid angle for an opaque detector", func() {
		got, err := efficiency.PointSource(1e4, nai)
		o.Expect(err).NotTo(o.HaveOccurred())
		solid := 0.5 * (1 - nai.Gap/math.Hypot(nai.Gap, nai.Radius))
		o.Expect(got).To(o.BeNumerically("~", solid, 1e-3))
		o.Expect(got).To(o.BeNumerically("<=", solid))
	})

	g.It("increases with the attenuation coefficient", func() {
		prev := 0.0
		for _, t := range []float64{0.05, 0.2, 1, 5} {
			got, err := efficiency.PointSource(t, nai)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(got).To(o.BeNumerically(">", prev))
			prev = got
		}
	})

	g.It("does not depend on the sign of the offset", func() {
		pos, neg := nai, nai
		pos.Offset, neg.Offset = 2.1, -2.1
		a, err := efficiency.PointSource(mu1MeV, pos)
		o.Expect(err).NotTo(o.HaveOccurred())
		b, err := efficiency.PointSource(mu1MeV, neg)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(a).To(o.BeNumerically("~", b, 1e-9))
	})

	g.It("falls off as the source moves toward the rim", func() {
		center, err := efficiency.PointSource(mu1MeV, nai)
		o.Expect(err).NotTo(o.HaveOccurred())
		geo := nai
		geo.Offset = 3
		off, err := efficiency.PointSource(mu1MeV, geo)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(off).To(o.BeNumerically("<", center))
	})

	g.It("rejects invalid input", func() {
		bad := nai
		bad.Offset = 5
		_, err := efficiency.PointSource(mu1MeV, bad)
		o.Expect(err).To(o.MatchError(efficiency.ErrInvalidGeometry))

		_, err = efficiency.PointSource(-1, nai)
		o.Expect(err).To(o.MatchError(efficiency.ErrInvalidAttenuation))

		_, err = efficiency.PointSource(math.NaN(), nai)
		o.Expect(err).To(o.MatchError(efficiency.ErrInvalidAttenuation))
	})

	g.It("surfaces an exhausted subdivision budget", func() {
		// Off axis every level has a non-polynomial integrand, so no panel
		// pair can agree to 1e-300.
		m := efficiency.New(quad.Options{AbsTol: 1e-300, RelTol: 1e-300, MaxSubdivisions: 1})
		geo := nai
		geo.Offset = 1.5
		_, err := m.Point(1.576*3.67, geo)
		o.Expect(err).To(o.MatchError(quad.ErrNumerical))
	})
})

var _ = g.Describe("Disk source efficiency", func() {
	g.It("returns the on-axis point value for a zero radius", func() {
		point, err := efficiency.PointSource(mu1MeV, nai)
		o.Expect(err).NotTo(o.HaveOccurred())
		disk, err := efficiency.DiskSource(mu1MeV, nai)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(disk).To(o.Equal(point))
	})

	g.It("converges to the point value as the radius shrinks", func() {
		point, err := efficiency.PointSource(mu1MeV, nai)
		o.Expect(err).NotTo(o.HaveOccurred())
		geo := nai
		geo.SourceRadius = 1e-3
		disk, err := efficiency.DiskSource(mu1MeV, geo)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(disk).To(o.BeNumerically("~", point, 1e-6))
	})

	g.It("lies in [0, 1] and below the on-axis point value", func() {
		point, err := efficiency.PointSource(mu1MeV, nai)
		o.Expect(err).NotTo(o.HaveOccurred())
		geo := nai
		geo.SourceRadius = 1
		disk, err := efficiency.DiskSource(mu1MeV, geo)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(disk).To(o.BeNumerically(">", 0))
		o.Expect(disk).To(o.BeNumerically("<", point))
	})

	g.It("ignores the point offset", func() {
		geo := nai
		geo.SourceRadius = 0.5
		a, err := efficiency.DiskSource(mu1MeV, geo)
		o.Expect(err).NotTo(o.HaveOccurred())
		geo.Offset = 2
		b, err := efficiency.DiskSource(mu1MeV, geo)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(a).To(o.Equal(b))
	})

	g.It("rejects a source wider than the detector", func() {
		geo := nai
		geo.SourceRadius = 4
		_, err := efficiency.DiskSource(mu1MeV, geo)
		o.Expect(err).To(o.MatchError(efficiency.ErrInvalidGeometry))
	})
})
