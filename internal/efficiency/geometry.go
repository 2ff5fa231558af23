package efficiency

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidGeometry indicates detector or source dimensions outside
	// their physical range.
	ErrInvalidGeometry = errors.New("efficiency: invalid detector geometry")

	// ErrInvalidAttenuation indicates a negative or non-finite linear
	// attenuation coefficient.
	ErrInvalidAttenuation = errors.New("efficiency: invalid attenuation coefficient")
)

// Geometry describes the detector and source, all lengths in cm.
type Geometry struct {
	Thickness    float64 `yaml:"thickness" json:"thickness"`         // H
	Gap          float64 `yaml:"gap" json:"gap"`                     // b, source to front face
	Radius       float64 `yaml:"radius" json:"radius"`               // R
	Offset       float64 `yaml:"offset" json:"offset"`               // m, source offset from the axis
	SourceRadius float64 `yaml:"source_radius" json:"source_radius"` // g, 0 for a point source
}

// Validate checks the point-source constraints: H, b, R > 0, |m| <= R and
// g >= 0.
func (g Geometry) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"thickness", g.Thickness},
		{"gap", g.Gap},
		{"radius", g.Radius},
		{"offset", g.Offset},
		{"source radius", g.SourceRadius},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidGeometry, v.name)
		}
	}

	switch {
	case g.Thickness <= 0:
		return fmt.Errorf("%w: thickness must be positive, got %g", ErrInvalidGeometry, g.Thickness)
	case g.Gap <= 0:
		return fmt.Errorf("%w: gap must be positive, got %g", ErrInvalidGeometry, g.Gap)
	case g.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidGeometry, g.Radius)
	case math.Abs(g.Offset) > g.Radius:
		return fmt.Errorf("%w: offset %g exceeds radius %g", ErrInvalidGeometry, g.Offset, g.Radius)
	case g.SourceRadius < 0:
		return fmt.Errorf("%w: source radius must be non-negative, got %g", ErrInvalidGeometry, g.SourceRadius)
	}
	return nil
}

// Chord returns the radial distance from the source projection to the rim
// of the detector face along azimuth phi.
func Chord(phi, offset, radius float64) float64 {
	c := math.Cos(phi)
	return -offset*math.Sin(phi) + math.Sqrt(math.Max(0, radius*radius-offset*offset*c*c))
}

// Mu1 is the direction cosine of the ray that reaches the rim of the back
// face; steeper rays traverse the full thickness.
func Mu1(thickness, gap, s float64) float64 {
	hb := thickness + gap
	return hb / math.Sqrt(hb*hb+s*s)
}

// Mu2 is the direction cosine of the ray that grazes the rim of the front
// face; shallower rays miss the detector.
func Mu2(gap, s float64) float64 {
	return gap / math.Sqrt(gap*gap+s*s)
}

// F1 is the absorption probability along a ray crossing the full thickness.
func F1(mu, t, thickness float64) float64 {
	return -math.Expm1(-t * thickness / mu)
}

// F2 is the absorption probability along a ray leaving through the curved
// side.
func F2(mu, t, gap, s float64) float64 {
	return -math.Expm1(-t * math.Max(0, SidePath(mu, gap, s)))
}

// SidePath is the path length inside the detector of a ray leaving through
// the curved side. It is zero at Mu2 and increases with mu.
func SidePath(mu, gap, s float64) float64 {
	return s/math.Sqrt(1-mu*mu) - gap/mu
}

// layerDepths are the optical depths T*path at which SideLayer places
// breakpoints.
var layerDepths = [...]float64{1, 4, 16, 40}

// SideLayer returns the direction cosines in (mu2, mu1) at which the side
// path reaches each of layerDepths mean free paths. For large t, F2 climbs
// from 0 to 1 in a layer of width about 1/t above mu2 that a fixed-order
// panel over [mu2, mu1] would step over.
func SideLayer(t, gap, s, mu2, mu1 float64) []float64 {
	if t <= 0 || !(mu1 > mu2) {
		return nil
	}
	top := t * SidePath(mu1, gap, s)
	var out []float64
	for _, q := range layerDepths {
		if q >= top {
			break
		}
		out = append(out, solveSidePath(q/t, gap, s, mu2, mu1))
	}
	return out
}

// solveSidePath finds mu in [lo, hi] with SidePath(mu) = path by bisection.
func solveSidePath(path, gap, s, lo, hi float64) float64 {
	for i := 0; i < 200 && hi-lo > 4*epsilon*hi; i++ {
		mid := lo + (hi-lo)/2
		if SidePath(mid, gap, s) < path {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2
}

const epsilon = 2.220446049250313e-16
