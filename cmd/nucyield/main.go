package main

import (
	"context"
	goflag "flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/san-kum/nucyield/internal/config"
	"github.com/san-kum/nucyield/internal/report"
	"github.com/san-kum/nucyield/internal/storage"
)

var (
	dataDir    string
	configFile string
	workers    int
	noSave     bool
	// Quadrature
	absTol   float64
	relTol   float64
	maxSubdv int
	nodes    int
	// Yield sweep
	crossFile string
	stopFile  string
	energyMin float64
	energyMax float64
	points    int
	deltaE    float64
	energyKeV float64
	// Efficiency
	detector     string
	thickness    float64
	gap          float64
	radius       float64
	offset       float64
	sourceRadius float64
	material     string
	materialFile string
	density      float64
	energyMeV    float64
	mu           float64
	// Thickness conversion
	massThickness float64
	activeAtoms   float64
	molarMass     float64
	charge        float64
	chargeState   int
	// Export destination, stdout when empty
	outFile string
)

func main() {
	defer klog.Flush()

	rootCmd := &cobra.Command{
		Use:           "nucyield",
		Short:         "thick-target yields and NaI detector efficiencies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nucyield", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	yieldCmd := &cobra.Command{
		Use:   "yield",
		Short: "integrate the yield over an energy sweep",
		RunE:  runYield,
	}
	yieldCmd.Flags().StringVar(&crossFile, "cross", "", "cross-section table (MeV, barn)")
	yieldCmd.Flags().StringVar(&stopFile, "stopping", "", "stopping-power table (keV, eV/(1e15 atoms/cm^2))")
	yieldCmd.Flags().Float64Var(&energyMin, "emin", config.DefaultEnergyMin, "lowest beam energy (keV)")
	yieldCmd.Flags().Float64Var(&energyMax, "emax", config.DefaultEnergyMax, "highest beam energy (keV)")
	yieldCmd.Flags().IntVar(&points, "points", config.DefaultEnergyPoints, "number of energies")
	yieldCmd.Flags().Float64Var(&deltaE, "delta-e", config.DefaultDeltaE, "energy lost in the target (keV)")
	yieldCmd.Flags().Float64Var(&energyKeV, "energy", 0, "single beam energy (keV), overrides the sweep")
	addRunFlags(yieldCmd)

	efficiencyCmd := &cobra.Command{
		Use:   "efficiency",
		Short: "total efficiency of a cylindrical detector",
		RunE:  runEfficiency,
	}
	addGeometryFlags(efficiencyCmd)
	efficiencyCmd.Flags().StringVar(&material, "material", config.DefaultMaterial, "built-in detector material")
	efficiencyCmd.Flags().StringVar(&materialFile, "material-file", "", "mass attenuation table (MeV, cm^2/g)")
	efficiencyCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "material density (g/cm^3)")
	efficiencyCmd.Flags().Float64Var(&energyMeV, "energy", 0, "single gamma energy (MeV)")
	efficiencyCmd.Flags().Float64Var(&mu, "mu", 0, "linear attenuation coefficient (1/cm), bypasses the material table")
	addRunFlags(efficiencyCmd)

	thicknessCmd := &cobra.Command{
		Use:   "thickness",
		Short: "convert a mass thickness to atoms/cm^2",
		RunE:  runThickness,
	}
	thicknessCmd.Flags().Float64Var(&massThickness, "mass", 0, "mass thickness (ug/cm^2)")
	thicknessCmd.Flags().Float64Var(&activeAtoms, "atoms", 1, "reacting atoms per molecule")
	thicknessCmd.Flags().Float64Var(&molarMass, "molar-mass", 0, "molar mass (g/mol)")
	thicknessCmd.Flags().Float64Var(&charge, "charge", 0, "integrated beam charge (C)")
	thicknessCmd.Flags().IntVar(&chargeState, "charge-state", 1, "beam charge state")
	_ = thicknessCmd.MarkFlagRequired("mass")
	_ = thicknessCmd.MarkFlagRequired("molar-mass")

	attenuationCmd := &cobra.Command{
		Use:   "attenuation [energy_mev]",
		Short: "linear attenuation coefficients of a material",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAttenuation,
	}
	attenuationCmd.Flags().StringVar(&material, "material", config.DefaultMaterial, "built-in detector material")
	attenuationCmd.Flags().StringVar(&materialFile, "material-file", "", "mass attenuation table (MeV, cm^2/g)")
	attenuationCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "material density (g/cm^3)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list detector presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("detector presets:")
			for _, name := range config.ListPresets() {
				g := config.Presets[name]
				fmt.Printf("  %-16s H=%g b=%g R=%g m=%g g=%g\n", name, g.Thickness, g.Gap, g.Radius, g.Offset, g.SourceRadius)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file")

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}

	rootCmd.AddCommand(yieldCmd, efficiencyCmd, thicknessCmd, attenuationCmd, presetsCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd, initConfigCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, report.ErrorStyle.Render("error: ")+err.Error())
		klog.Flush()
		os.Exit(1)
	}
}

func addGeometryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&detector, "detector", config.DefaultDetector, "detector preset")
	cmd.Flags().Float64Var(&thickness, "thickness", 0, "detector thickness H (cm)")
	cmd.Flags().Float64Var(&gap, "gap", 0, "source to detector distance b (cm)")
	cmd.Flags().Float64Var(&radius, "radius", 0, "detector radius R (cm)")
	cmd.Flags().Float64Var(&offset, "offset", 0, "point source offset from the axis m (cm)")
	cmd.Flags().Float64Var(&sourceRadius, "source-radius", 0, "disk source radius g (cm), 0 for a point source")
}

func addRunFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().IntVar(&workers, "workers", def.Workers, "parallel workers")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().Float64Var(&absTol, "abs-tol", def.Quadrature.AbsTol, "absolute quadrature tolerance")
	cmd.Flags().Float64Var(&relTol, "rel-tol", def.Quadrature.RelTol, "relative quadrature tolerance")
	cmd.Flags().IntVar(&maxSubdv, "max-subdivisions", def.Quadrature.MaxSubdivisions, "subdivision budget per integral")
	cmd.Flags().IntVar(&nodes, "nodes", def.Quadrature.Nodes, "Gauss-Legendre nodes per panel")
}

// loadConfig reads --config when given and applies its values to every
// flag the user did not set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		klog.V(1).Infof("loaded config %s", configFile)
	}

	flags := cmd.Flags()
	if !flags.Changed("workers") {
		workers = cfg.Workers
	}
	if !flags.Changed("abs-tol") {
		absTol = cfg.Quadrature.AbsTol
	}
	if !flags.Changed("rel-tol") {
		relTol = cfg.Quadrature.RelTol
	}
	if !flags.Changed("max-subdivisions") {
		maxSubdv = cfg.Quadrature.MaxSubdivisions
	}
	if !flags.Changed("nodes") {
		nodes = cfg.Quadrature.Nodes
	}
	cfg.Workers = workers
	cfg.Quadrature.AbsTol = absTol
	cfg.Quadrature.RelTol = relTol
	cfg.Quadrature.MaxSubdivisions = maxSubdv
	cfg.Quadrature.Nodes = nodes
	return cfg, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
