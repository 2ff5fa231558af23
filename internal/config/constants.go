package config

// Physical constants.
const (
	Avogadro         = 6.022e23        // atoms/mol
	ElementaryCharge = 1.602176634e-19 // C
)

// Unit conversions.
const (
	MicrogramToGram = 1e-6
	BarnToCm2       = 1e-24
	KeVPerMeV       = 1e3
)

// Yield normalization: results are per 1e15 atoms/cm^2 and per keV of
// energy loss expressed in eV.
const (
	YieldArealScale  = 1e15
	YieldEnergyScale = 1e3
)
