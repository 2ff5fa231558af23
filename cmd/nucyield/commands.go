package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/san-kum/nucyield/internal/attenuation"
	"github.com/san-kum/nucyield/internal/config"
	"github.com/san-kum/nucyield/internal/efficiency"
	"github.com/san-kum/nucyield/internal/report"
	"github.com/san-kum/nucyield/internal/storage"
	"github.com/san-kum/nucyield/internal/sweep"
	"github.com/san-kum/nucyield/internal/table"
	"github.com/san-kum/nucyield/internal/yield"
)

func runYield(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("cross") {
		crossFile = cfg.Yield.CrossSection
	}
	if !flags.Changed("stopping") {
		stopFile = cfg.Yield.StoppingPower
	}
	if !flags.Changed("emin") {
		energyMin = cfg.Yield.EnergyMin
	}
	if !flags.Changed("emax") {
		energyMax = cfg.Yield.EnergyMax
	}
	if !flags.Changed("points") {
		points = cfg.Yield.Points
	}
	if !flags.Changed("delta-e") {
		deltaE = cfg.Yield.DeltaE
	}
	cfg.Yield = config.YieldConfig{
		CrossSection:  crossFile,
		StoppingPower: stopFile,
		EnergyMin:     energyMin,
		EnergyMax:     energyMax,
		Points:        points,
		DeltaE:        deltaE,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if crossFile == "" || stopFile == "" {
		return fmt.Errorf("cross-section and stopping-power tables are required (--cross, --stopping)")
	}

	cross, err := table.LoadFile(crossFile)
	if err != nil {
		return err
	}
	stop, err := table.LoadFile(stopFile)
	if err != nil {
		return err
	}

	energies := sweep.Linspace(energyMin, energyMax, points)
	if flags.Changed("energy") {
		energies = []float64{energyKeV}
	}

	klog.Infof("yield sweep: %d energies, delta_e=%g keV, %d workers", len(energies), deltaE, cfg.Workers)
	start := time.Now()
	calc := yield.NewCalculator(cfg.QuadratureOptions())
	pts, err := sweep.Yields(cmd.Context(), cfg.Workers, calc, energies, deltaE, cross, stop)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fields := []report.Field{
		report.F("cross section", "%s", describeTable(crossFile, cross, "MeV")),
		report.F("stopping power", "%s", describeTable(stopFile, stop, "keV")),
		report.F("window", "%g keV", deltaE),
		report.F("energies", "%d", len(pts)),
		report.F("elapsed", "%v", elapsed),
	}

	if !noSave {
		rows := make([][]float64, len(pts))
		for i, p := range pts {
			rows[i] = []float64{p.Energy, p.Yield, p.AbsErr}
		}
		runID, err := saveRun(storage.RunMetadata{
			Kind: "yield",
			Params: map[string]float64{
				"energy_min": energies[0],
				"energy_max": energies[len(energies)-1],
				"delta_e":    deltaE,
				"abs_tol":    cfg.Quadrature.AbsTol,
				"rel_tol":    cfg.Quadrature.RelTol,
			},
			Inputs: map[string]string{
				"cross_section":  crossFile,
				"stopping_power": stopFile,
			},
			Columns: []string{"energy_kev", "yield", "abs_err"},
		}, rows)
		if err != nil {
			return err
		}
		fields = append(fields, report.F("run id", "%s", runID))
	}

	if err := report.Summary(os.Stdout, "yield", fields); err != nil {
		return err
	}
	fmt.Println(report.Separator(60))
	return report.Yields(os.Stdout, pts)
}

func runEfficiency(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	geo, err := resolveGeometry(cmd, cfg)
	if err != nil {
		return err
	}
	mat, err := resolveMaterial(cmd, cfg)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var coeffs []attenuation.Coefficient
	switch {
	case flags.Changed("mu"):
		coeffs = []attenuation.Coefficient{{Energy: energyMeV, Mu: mu}}
	case flags.Changed("energy"):
		coeffs = []attenuation.Coefficient{mat.At(energyMeV)}
	case len(cfg.Efficiency.Energies) > 0:
		for _, e := range cfg.Efficiency.Energies {
			coeffs = append(coeffs, mat.At(e))
		}
	default:
		coeffs = mat.Coefficients()
	}

	source := "point"
	if geo.SourceRadius > 0 {
		source = "disk"
	}
	klog.Infof("efficiency sweep: %d energies, %s source, %d workers", len(coeffs), source, cfg.Workers)
	start := time.Now()
	model := efficiency.New(cfg.QuadratureOptions())
	pts, err := sweep.Efficiencies(cmd.Context(), cfg.Workers, model, geo, coeffs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fields := []report.Field{
		report.F("detector", "%s", detector),
		report.F("geometry", "H=%g b=%g R=%g m=%g g=%g cm", geo.Thickness, geo.Gap, geo.Radius, geo.Offset, geo.SourceRadius),
		report.F("source", "%s", source),
		report.F("material", "%s (%g g/cm^3)", mat.Name, mat.Density),
		report.F("energies", "%d", len(pts)),
		report.F("elapsed", "%v", elapsed),
	}

	if !noSave {
		rows := make([][]float64, len(pts))
		for i, p := range pts {
			rows[i] = []float64{p.Energy, p.Mu, p.Efficiency}
		}
		runID, err := saveRun(storage.RunMetadata{
			Kind: "efficiency",
			Params: map[string]float64{
				"thickness":     geo.Thickness,
				"gap":           geo.Gap,
				"radius":        geo.Radius,
				"offset":        geo.Offset,
				"source_radius": geo.SourceRadius,
				"density":       mat.Density,
			},
			Inputs: map[string]string{
				"detector": detector,
				"material": mat.Name,
			},
			Columns: []string{"energy_mev", "mu_per_cm", "efficiency"},
		}, rows)
		if err != nil {
			return err
		}
		fields = append(fields, report.F("run id", "%s", runID))
	}

	if err := report.Summary(os.Stdout, "efficiency", fields); err != nil {
		return err
	}
	fmt.Println(report.Separator(60))
	return report.Efficiencies(os.Stdout, pts)
}

// resolveGeometry starts from the config (or --detector preset) and applies
// any explicit geometry flags on top.
func resolveGeometry(cmd *cobra.Command, cfg *config.Config) (efficiency.Geometry, error) {
	flags := cmd.Flags()
	geo := cfg.Efficiency.Geometry
	if flags.Changed("detector") {
		preset := config.GetPreset(detector)
		if preset == nil {
			return geo, fmt.Errorf("unknown detector preset: %s (available: %v)", detector, config.ListPresets())
		}
		geo = *preset
	} else {
		detector = cfg.Efficiency.Detector
	}

	if flags.Changed("thickness") {
		geo.Thickness = thickness
	}
	if flags.Changed("gap") {
		geo.Gap = gap
	}
	if flags.Changed("radius") {
		geo.Radius = radius
	}
	if flags.Changed("offset") {
		geo.Offset = offset
	}
	if flags.Changed("source-radius") {
		geo.SourceRadius = sourceRadius
	}
	if geo.SourceRadius > 0 && geo.Offset != 0 {
		return geo, fmt.Errorf("%w: offset %g only applies to point sources, disk sources are centred (source radius %g, use --source-radius 0)",
			efficiency.ErrInvalidGeometry, geo.Offset, geo.SourceRadius)
	}
	return geo, geo.Validate()
}

func resolveMaterial(cmd *cobra.Command, cfg *config.Config) (*attenuation.Material, error) {
	flags := cmd.Flags()
	if !flags.Changed("material") {
		material = cfg.Efficiency.Material
	}
	if !flags.Changed("density") {
		density = cfg.Efficiency.Density
	}

	if materialFile != "" {
		name := filepath.Base(materialFile)
		return attenuation.LoadMaterial(name, materialFile, density)
	}
	mat, err := attenuation.Lookup(material)
	if err != nil {
		return nil, err
	}
	if density != mat.Density {
		return mat.WithDensity(density)
	}
	return mat, nil
}

func runThickness(cmd *cobra.Command, args []string) error {
	if molarMass <= 0 {
		return fmt.Errorf("molar mass must be positive, got %g", molarMass)
	}

	atoms := yield.ThicknessAtoms(massThickness, activeAtoms, molarMass)
	fields := []report.Field{
		report.F("mass thickness", "%g ug/cm^2", massThickness),
		report.F("atoms/molecule", "%g", activeAtoms),
		report.F("molar mass", "%g g/mol", molarMass),
		report.F("areal density", "%.6e atoms/cm^2", atoms),
		report.F("per 1e15", "%.6g", atoms/config.YieldArealScale),
	}
	if cmd.Flags().Changed("charge") {
		if chargeState < 1 {
			return fmt.Errorf("charge state must be positive, got %d", chargeState)
		}
		fields = append(fields, report.F("incident particles", "%.6e", yield.IncidentParticles(charge, chargeState)))
	}
	return report.Summary(os.Stdout, "thickness", fields)
}

func runAttenuation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mat, err := resolveMaterial(cmd, cfg)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		e, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid energy %q: %w", args[0], err)
		}
		return report.Coefficients(os.Stdout, []attenuation.Coefficient{mat.At(e)})
	}

	fmt.Println(report.TitleStyle.Render(fmt.Sprintf("%s (%g g/cm^3)", mat.Name, mat.Density)))
	return report.Coefficients(os.Stdout, mat.Coefficients())
}

func describeTable(path string, t *table.Table, unit string) string {
	lo, hi := t.Domain()
	return fmt.Sprintf("%s (%d rows, %g-%g %s)", path, t.Len(), lo, hi, unit)
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func saveRun(meta storage.RunMetadata, rows [][]float64) (string, error) {
	st, err := openStore()
	if err != nil {
		return "", err
	}
	runID, err := st.Save(meta, rows)
	if err != nil {
		return "", err
	}
	klog.V(1).Infof("saved run %s to %s", runID, st.Dir())
	return runID, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	return report.Runs(os.Stdout, runs)
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	columns, rows, err := st.LoadPoints(runID)
	if err != nil {
		return err
	}

	fields := []report.Field{
		report.F("kind", "%s", meta.Kind),
		report.F("time", "%s", meta.Timestamp.Format("2006-01-02 15:04:05")),
		report.F("points", "%d", meta.Points),
	}
	for _, name := range sortedKeys(meta.Inputs) {
		fields = append(fields, report.F(name, "%s", meta.Inputs[name]))
	}
	for _, name := range sortedKeys(meta.Params) {
		fields = append(fields, report.F(name, "%s", formatFloat(meta.Params[name])))
	}
	if err := report.Summary(os.Stdout, meta.ID, fields); err != nil {
		return err
	}
	fmt.Println(report.Separator(60))
	return report.Points(os.Stdout, columns, rows)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.ExportCSV(os.Stdout, args[0])
	}

	file, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer file.Close()
	return st.ExportCSV(file, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.ExportJSONStdout(args[0])
	}
	return st.ExportJSON(outFile, args[0])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
