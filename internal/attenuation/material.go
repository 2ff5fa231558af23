// Package attenuation converts tabulated mass attenuation coefficients into
// linear attenuation coefficients for detector materials.
package attenuation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/nucyield/internal/table"
)

var (
	ErrUnknownMaterial = errors.New("attenuation: unknown material")
	ErrInvalidDensity  = errors.New("attenuation: density must be positive")
)

// Material is a detector material with a mass attenuation table indexed by
// photon energy in MeV.
type Material struct {
	Name    string
	Density float64 // g/cm^3
	tau     *table.Table
}

// Coefficient is one row of a material table with its linear coefficient.
type Coefficient struct {
	Energy float64 `json:"energy_mev"`
	Tau    float64 `json:"tau_cm2_g"`
	Mu     float64 `json:"mu_per_cm"`
}

func NewMaterial(name string, density float64, tau *table.Table) (*Material, error) {
	if density <= 0 || math.IsNaN(density) || math.IsInf(density, 0) {
		return nil, fmt.Errorf("%w: %s has density %g", ErrInvalidDensity, name, density)
	}
	return &Material{Name: name, Density: density, tau: tau}, nil
}

// LoadMaterial reads a mass attenuation table (MeV, cm^2/g) from path.
func LoadMaterial(name, path string, density float64) (*Material, error) {
	tau, err := table.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewMaterial(name, density, tau)
}

// MassAttenuation returns the interpolated tau at energy MeV in cm^2/g.
func (m *Material) MassAttenuation(energy float64) float64 {
	return m.tau.Eval(energy)
}

// Coefficient returns the linear attenuation coefficient at energy MeV in 1/cm.
func (m *Material) Coefficient(energy float64) float64 {
	return m.MassAttenuation(energy) * m.Density
}

// At returns the interpolated row at energy MeV.
func (m *Material) At(energy float64) Coefficient {
	tau := m.MassAttenuation(energy)
	return Coefficient{Energy: energy, Tau: tau, Mu: tau * m.Density}
}

// Coefficients converts every tabulated row, edges included, in table order.
func (m *Material) Coefficients() []Coefficient {
	pts := m.tau.Points()
	out := make([]Coefficient, len(pts))
	for i, p := range pts {
		out[i] = Coefficient{Energy: p[0], Tau: p[1], Mu: p[1] * m.Density}
	}
	return out
}

// WithDensity returns a copy of m at a different density.
func (m *Material) WithDensity(density float64) (*Material, error) {
	return NewMaterial(m.Name, density, m.tau)
}

type builtin struct {
	rows    [][2]float64
	density float64
}

var builtins = map[string]builtin{
	"nai": {rows: naiXCOM, density: naiDensity},
}

// Lookup returns a built-in material at its nominal density.
func Lookup(name string) (*Material, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownMaterial, name, Names())
	}
	tau, err := table.FromRows(b.rows)
	if err != nil {
		return nil, err
	}
	return NewMaterial(name, b.density, tau)
}

func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
