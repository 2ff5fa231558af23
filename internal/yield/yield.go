// Package yield computes thick-target reaction yields from tabulated cross
// sections and stopping powers.
//
// Cross-section tables are indexed by energy in MeV, stopping-power tables
// by energy in keV. Yields are integrated over an energy-loss window
// [E - dE, E] in keV.
package yield

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/nucyield/internal/config"
	"github.com/san-kum/nucyield/internal/quad"
	"github.com/san-kum/nucyield/internal/table"
)

// ErrInvalidWindow indicates a negative or non-finite energy window.
var ErrInvalidWindow = errors.New("yield: invalid energy window")

// ThicknessAtoms converts a mass thickness in ug/cm^2 into an areal density
// in atoms/cm^2. activeAtoms is the number of reacting atoms per molecule
// and molarMass is in g/mol; molarMass must be positive.
func ThicknessAtoms(massThickness, activeAtoms, molarMass float64) float64 {
	return activeAtoms * massThickness * config.MicrogramToGram * config.Avogadro / molarMass
}

// IncidentParticles returns the number of beam particles carrying charge
// coulombs at the given charge state.
func IncidentParticles(charge float64, chargeState int) float64 {
	return charge / (float64(chargeState) * config.ElementaryCharge)
}

// Differential is the yield integrand at energy keV.
func Differential(energy float64, cross, stop *table.Table) float64 {
	sigma := cross.Eval(energy / config.KeVPerMeV)
	eps := stop.Eval(energy)
	return config.BarnToCm2 * sigma / eps * config.YieldArealScale * config.YieldEnergyScale
}

// Calculator integrates yields with a fixed quadrature configuration.
type Calculator struct {
	integ *quad.Integrator
}

func NewCalculator(opts quad.Options) *Calculator {
	return &Calculator{integ: quad.New(opts)}
}

// Yield integrates Differential over [energy - deltaE, energy].
func (c *Calculator) Yield(energy, deltaE float64, cross, stop *table.Table) (float64, error) {
	res, err := c.YieldEstimate(energy, deltaE, cross, stop)
	return res.Value, err
}

// YieldEstimate is Yield with the quadrature error estimate and work counts.
func (c *Calculator) YieldEstimate(energy, deltaE float64, cross, stop *table.Table) (quad.Result, error) {
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return quad.Result{}, fmt.Errorf("%w: energy %g", ErrInvalidWindow, energy)
	}
	if math.IsNaN(deltaE) || math.IsInf(deltaE, 0) || deltaE < 0 {
		return quad.Result{}, fmt.Errorf("%w: delta_e %g", ErrInvalidWindow, deltaE)
	}
	if deltaE == 0 {
		return quad.Result{}, nil
	}

	res, err := c.integ.Integrate(func(e float64) float64 {
		return Differential(e, cross, stop)
	}, energy-deltaE, energy)
	if err != nil {
		return res, fmt.Errorf("yield at %g keV: %w", energy, err)
	}
	return res, nil
}

var defaultCalculator = NewCalculator(quad.DefaultOptions())

// Calculate is Calculator.Yield with default quadrature options.
func Calculate(energy, deltaE float64, cross, stop *table.Table) (float64, error) {
	return defaultCalculator.Yield(energy, deltaE, cross, stop)
}
