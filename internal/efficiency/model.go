package efficiency

import (
	"fmt"
	"math"

	"github.com/san-kum/nucyield/internal/quad"
)

// Model evaluates efficiencies with a shared quadrature configuration.
type Model struct {
	integ *quad.Integrator
}

func New(opts quad.Options) *Model {
	return &Model{integ: quad.New(opts)}
}

// Point returns the efficiency for a point source at geo.Offset. The
// attenuation coefficient t is in 1/cm. geo.SourceRadius is ignored.
func (m *Model) Point(t float64, geo Geometry) (float64, error) {
	if err := checkAttenuation(t); err != nil {
		return 0, err
	}
	geo.SourceRadius = 0
	if err := geo.Validate(); err != nil {
		return 0, err
	}
	return m.point(t, geo.Thickness, geo.Gap, geo.Offset, geo.Radius)
}

// Disk returns the efficiency for a uniform disk source of radius
// geo.SourceRadius centred on the detector axis. geo.Offset is ignored. A
// zero source radius returns the on-axis point-source efficiency.
func (m *Model) Disk(t float64, geo Geometry) (float64, error) {
	if err := checkAttenuation(t); err != nil {
		return 0, err
	}
	geo.Offset = 0
	if err := geo.Validate(); err != nil {
		return 0, err
	}
	g := geo.SourceRadius
	if g > geo.Radius {
		return 0, fmt.Errorf("%w: source radius %g exceeds detector radius %g", ErrInvalidGeometry, g, geo.Radius)
	}
	if g == 0 {
		return m.point(t, geo.Thickness, geo.Gap, 0, geo.Radius)
	}

	// (2/g^2) * int_0^g r eps(r) dr, integrated over u = r/g so the
	// tolerances stay relative to the efficiency rather than to g^2.
	res, err := m.integ.IntegrateFallible(func(u float64) (float64, error) {
		eps, err := m.point(t, geo.Thickness, geo.Gap, g*u, geo.Radius)
		return u * eps, err
	}, 0, 1)
	if err != nil {
		return 0, fmt.Errorf("disk integral: %w", err)
	}
	return 2 * res.Value, nil
}

func (m *Model) point(t, h, b, off, r float64) (float64, error) {
	res, err := m.integ.IntegrateFallible(func(phi float64) (float64, error) {
		return m.azimuthal(phi, t, h, b, off, r)
	}, -math.Pi/2, math.Pi/2)
	if err != nil {
		return 0, fmt.Errorf("point source integral (offset %g): %w", off, err)
	}
	return res.Value / (2 * math.Pi), nil
}

// azimuthal is the inner integral over mu at a fixed azimuth.
func (m *Model) azimuthal(phi, t, h, b, off, r float64) (float64, error) {
	s := Chord(phi, off, r)
	mu1 := Mu1(h, b, s)
	mu2 := Mu2(b, s)

	through, err := m.integ.Integrate(func(mu float64) float64 {
		return F1(mu, t, h)
	}, mu1, 1)
	if err != nil {
		return 0, err
	}
	side, err := m.integ.Integrate(func(mu float64) float64 {
		return F2(mu, t, b, s)
	}, mu2, mu1, SideLayer(t, b, s, mu2, mu1)...)
	if err != nil {
		return 0, err
	}
	return through.Value + side.Value, nil
}

func checkAttenuation(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("%w: %g", ErrInvalidAttenuation, t)
	}
	return nil
}

var defaultModel = New(quad.DefaultOptions())

// PointSource is Model.Point with default quadrature options.
func PointSource(t float64, geo Geometry) (float64, error) {
	return defaultModel.Point(t, geo)
}

// DiskSource is Model.Disk with default quadrature options.
func DiskSource(t float64, geo Geometry) (float64, error) {
	return defaultModel.Disk(t, geo)
}
