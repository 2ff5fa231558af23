package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nucyield/internal/efficiency"
	"github.com/san-kum/nucyield/internal/quad"
)

const (
	DefaultEnergyMin    = 300.0 // keV
	DefaultEnergyMax    = 400.0 // keV
	DefaultEnergyPoints = 100
	DefaultDeltaE       = 33.0 // keV
	DefaultDetector     = "nai-3x3"
	DefaultMaterial     = "nai"
	DefaultDensity      = 3.67 // g/cm^3
)

type Config struct {
	Workers    int              `yaml:"workers"`
	Quadrature QuadratureConfig `yaml:"quadrature"`
	Yield      YieldConfig      `yaml:"yield"`
	Efficiency EfficiencyConfig `yaml:"efficiency"`
}

type QuadratureConfig struct {
	AbsTol          float64 `yaml:"abs_tol"`
	RelTol          float64 `yaml:"rel_tol"`
	MaxSubdivisions int     `yaml:"max_subdivisions"`
	Nodes           int     `yaml:"nodes"`
	Concurrent      int     `yaml:"concurrent"`
}

type YieldConfig struct {
	CrossSection  string  `yaml:"cross_section"`
	StoppingPower string  `yaml:"stopping_power"`
	EnergyMin     float64 `yaml:"energy_min"`
	EnergyMax     float64 `yaml:"energy_max"`
	Points        int     `yaml:"points"`
	DeltaE        float64 `yaml:"delta_e"`
}

type EfficiencyConfig struct {
	Detector string              `yaml:"detector"`
	Geometry efficiency.Geometry `yaml:"geometry"`
	Material string              `yaml:"material"`
	Density  float64             `yaml:"density"`
	// Energies in MeV; empty means every row of the material table.
	Energies []float64 `yaml:"energies"`
}

func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.GOMAXPROCS(0),
		Quadrature: QuadratureConfig{
			AbsTol:          quad.DefaultAbsTol,
			RelTol:          quad.DefaultRelTol,
			MaxSubdivisions: quad.DefaultMaxSubdivisions,
			Nodes:           quad.DefaultNodes,
		},
		Yield: YieldConfig{
			EnergyMin: DefaultEnergyMin,
			EnergyMax: DefaultEnergyMax,
			Points:    DefaultEnergyPoints,
			DeltaE:    DefaultDeltaE,
		},
		Efficiency: EfficiencyConfig{
			Detector: DefaultDetector,
			Geometry: *GetPreset(DefaultDetector),
			Material: DefaultMaterial,
			Density:  DefaultDensity,
		},
	}
}

// Load reads a YAML config on top of the defaults. A named detector preset
// fills the geometry unless the file also sets the geometry explicitly.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Efficiency.Geometry = efficiency.Geometry{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Efficiency.Geometry == (efficiency.Geometry{}) {
		geo := GetPreset(cfg.Efficiency.Detector)
		if geo == nil {
			return nil, fmt.Errorf("unknown detector preset: %s (available: %v)", cfg.Efficiency.Detector, ListPresets())
		}
		cfg.Efficiency.Geometry = *geo
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	q := c.Quadrature
	if q.AbsTol < 0 || q.RelTol < 0 {
		return fmt.Errorf("quadrature tolerances must be non-negative")
	}
	if q.MaxSubdivisions < 0 || q.Nodes < 0 || q.Concurrent < 0 {
		return fmt.Errorf("quadrature limits must be non-negative")
	}
	y := c.Yield
	if y.Points < 1 {
		return fmt.Errorf("yield points must be positive, got %d", y.Points)
	}
	if y.EnergyMax < y.EnergyMin {
		return fmt.Errorf("yield energy range [%g, %g] is reversed", y.EnergyMin, y.EnergyMax)
	}
	if y.DeltaE < 0 {
		return fmt.Errorf("yield delta_e must be non-negative, got %g", y.DeltaE)
	}
	if c.Efficiency.Density <= 0 {
		return fmt.Errorf("material density must be positive, got %g", c.Efficiency.Density)
	}
	return c.Efficiency.Geometry.Validate()
}

// QuadratureOptions converts the quadrature section for the integrators.
func (c *Config) QuadratureOptions() quad.Options {
	return quad.Options{
		AbsTol:          c.Quadrature.AbsTol,
		RelTol:          c.Quadrature.RelTol,
		MaxSubdivisions: c.Quadrature.MaxSubdivisions,
		Nodes:           c.Quadrature.Nodes,
		Concurrent:      c.Quadrature.Concurrent,
	}
}
