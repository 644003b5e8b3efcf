package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mpole/internal/config"
	"github.com/san-kum/mpole/internal/hippo"
	"github.com/san-kum/mpole/internal/mpole"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	asJSON     bool

	// Potential scan line.
	scanOrigin    string
	scanDirection string
	scanLength    float64
	scanSamples   int

	// Energy scan.
	scanParticle int
	scanFrom     float64
	scanTo       float64
	scanSteps    int

	plotHeight int
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mpole",
		Short: "polarizable multipole electrostatics lab",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "system file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a built-in system")

	energyCmd := &cobra.Command{
		Use:   "energy",
		Short: "evaluate energy and forces",
		RunE:  runEnergy,
	}
	energyCmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")

	dipolesCmd := &cobra.Command{
		Use:   "dipoles",
		Short: "permanent and induced dipoles per site",
		RunE:  runDipoles,
	}

	momentsCmd := &cobra.Command{
		Use:   "moments",
		Short: "system multipole moments about the center of mass",
		RunE:  runMoments,
	}
	momentsCmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")

	potentialCmd := &cobra.Command{
		Use:   "potential",
		Short: "electrostatic potential along a line",
		RunE:  runPotential,
	}
	potentialCmd.Flags().StringVar(&scanOrigin, "origin", "0,0,0", "line origin (x,y,z in Å)")
	potentialCmd.Flags().StringVar(&scanDirection, "direction", "1,0,0", "line direction")
	potentialCmd.Flags().Float64Var(&scanLength, "length", 10.0, "line length (Å)")
	potentialCmd.Flags().IntVar(&scanSamples, "samples", 60, "number of sample points")
	potentialCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "energy profile while translating one particle",
		RunE:  runScan,
	}
	scanCmd.Flags().IntVar(&scanParticle, "particle", 0, "particle to translate")
	scanCmd.Flags().StringVar(&scanDirection, "direction", "1,0,0", "translation direction")
	scanCmd.Flags().Float64Var(&scanFrom, "from", -0.5, "start displacement (Å)")
	scanCmd.Flags().Float64Var(&scanTo, "to", 3.0, "end displacement (Å)")
	scanCmd.Flags().IntVar(&scanSteps, "steps", 50, "number of displacements")
	scanCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in systems",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a system file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				cfg = config.GetPreset(preset)
				if cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			return config.Save(args[0], cfg)
		},
	}

	rootCmd.AddCommand(energyCmd, dipolesCmd, momentsCmd, potentialCmd, scanCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSystem resolves the preset or config file into a force and its
// coordinates.
func loadSystem() (*config.Config, *hippo.Force, []mpole.Vec3, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, nil, nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		return nil, nil, nil, fmt.Errorf("provide --config or --preset")
	}
	f, positions, err := cfg.BuildForce()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, f, positions, nil
}

func runEnergy(cmd *cobra.Command, args []string) error {
	cfg, f, positions, err := loadSystem()
	if err != nil {
		return err
	}

	forces := make([]mpole.Vec3, len(positions))
	start := time.Now()
	energy, err := f.ComputeForceAndEnergy(positions, forces)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	res := f.SCFResult()

	if asJSON {
		out := struct {
			Energy     float64      `json:"energy"`
			Forces     []mpole.Vec3 `json:"forces"`
			Iterations int          `json:"scf_iterations"`
			Residual   float64      `json:"scf_residual"`
			Converged  bool         `json:"scf_converged"`
		}{energy, forces, res.Iterations, res.Residual, res.Converged}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s / %s", cfg.Method, cfg.Polarization)))
	fmt.Printf("energy: %.6f kcal/mol\n", energy)
	fmt.Printf("scf: %d iterations, residual %.3e\n", res.Iterations, res.Residual)
	if !res.Converged {
		fmt.Println(warnStyle.Render("warning: induced dipoles did not converge"))
	}
	fmt.Printf("elapsed: %v\n\n", elapsed)

	fmt.Println(sectionStyle.Render("forces (kcal/mol/Å)"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SITE\tFX\tFY\tFZ\t|F|")
	for i, fc := range forces {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t%.6f\n", i, fc.X, fc.Y, fc.Z, fc.Norm())
	}
	return w.Flush()
}

func runDipoles(cmd *cobra.Command, args []string) error {
	_, f, positions, err := loadSystem()
	if err != nil {
		return err
	}

	perm, err := f.LabFramePermanentDipoles(positions)
	if err != nil {
		return err
	}
	induced, res, err := f.InducedDipoles(positions)
	if err != nil {
		return err
	}
	if !res.Converged {
		fmt.Println(warnStyle.Render("warning: induced dipoles did not converge"))
	}
	if len(res.Residuals) >= 2 {
		logRes := make([]float64, len(res.Residuals))
		for i, r := range res.Residuals {
			logRes[i] = math.Log10(math.Max(r, 1e-16))
		}
		fmt.Println(sectionStyle.Render("scf convergence (log10 residual per iteration)"))
		fmt.Println(asciigraph.Plot(logRes, asciigraph.Height(8), asciigraph.Width(60)))
		fmt.Println()
	}

	fmt.Println(sectionStyle.Render("site dipoles (e·Å, lab frame)"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SITE\tPERM\t|PERM|\tINDUCED\t|INDUCED|")
	for i := range perm {
		fmt.Fprintf(w, "%d\t%.4f,%.4f,%.4f\t%.4f\t%.4f,%.4f,%.4f\t%.4f\n",
			i,
			perm[i].X, perm[i].Y, perm[i].Z, perm[i].Norm(),
			induced[i].X, induced[i].Y, induced[i].Z, induced[i].Norm(),
		)
	}
	return w.Flush()
}

func runMoments(cmd *cobra.Command, args []string) error {
	_, f, positions, err := loadSystem()
	if err != nil {
		return err
	}
	moments, err := f.SystemMultipoleMoments(positions)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(moments)
	}

	fmt.Println(sectionStyle.Render("system moments (center of mass)"))
	fmt.Printf("charge: %.6f e\n", moments.Charge)
	fmt.Printf("dipole: %.6f %.6f %.6f Debye  (|µ| = %.6f)\n",
		moments.Dipole.X, moments.Dipole.Y, moments.Dipole.Z, moments.Dipole.Norm())
	fmt.Println("quadrupole (Debye·Å):")
	for _, row := range moments.Quadrupole {
		fmt.Printf("  %10.6f %10.6f %10.6f\n", row[0], row[1], row[2])
	}
	return nil
}

func runPotential(cmd *cobra.Command, args []string) error {
	_, f, positions, err := loadSystem()
	if err != nil {
		return err
	}
	origin, err := parseVec(scanOrigin)
	if err != nil {
		return err
	}
	dir, err := parseVec(scanDirection)
	if err != nil {
		return err
	}
	if dir.Norm() == 0 {
		return fmt.Errorf("direction must be nonzero")
	}
	dir = dir.Scale(1 / dir.Norm())
	if scanSamples < 2 {
		return fmt.Errorf("need at least 2 samples")
	}

	points := make([]mpole.Vec3, scanSamples)
	for i := range points {
		s := scanLength * float64(i) / float64(scanSamples-1)
		points[i] = origin.Add(dir.Scale(s))
	}
	potentials, err := f.ElectrostaticPotential(positions, points)
	if err != nil {
		return err
	}

	fmt.Println(sectionStyle.Render("potential (kcal/mol/e) along scan line"))
	fmt.Println(asciigraph.Plot(potentials, asciigraph.Height(plotHeight), asciigraph.Width(70)))
	fmt.Printf("from %s over %.1f Å along %s\n", scanOrigin, scanLength, scanDirection)
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	_, f, positions, err := loadSystem()
	if err != nil {
		return err
	}
	if scanParticle < 0 || scanParticle >= len(positions) {
		return fmt.Errorf("particle %d out of range", scanParticle)
	}
	dir, err := parseVec(scanDirection)
	if err != nil {
		return err
	}
	if dir.Norm() == 0 {
		return fmt.Errorf("direction must be nonzero")
	}
	dir = dir.Scale(1 / dir.Norm())
	if scanSteps < 2 {
		return fmt.Errorf("need at least 2 steps")
	}

	base := positions[scanParticle]
	energies := make([]float64, scanSteps)
	displaced := make([]mpole.Vec3, len(positions))
	forces := make([]mpole.Vec3, len(positions))
	minE, minS := math.Inf(1), 0.0
	for i := 0; i < scanSteps; i++ {
		s := scanFrom + (scanTo-scanFrom)*float64(i)/float64(scanSteps-1)
		copy(displaced, positions)
		displaced[scanParticle] = base.Add(dir.Scale(s))
		for j := range forces {
			forces[j] = mpole.Vec3{}
		}
		e, err := f.ComputeForceAndEnergy(displaced, forces)
		if err != nil {
			return err
		}
		energies[i] = e
		if e < minE {
			minE, minS = e, s
		}
	}

	fmt.Println(sectionStyle.Render(fmt.Sprintf("energy (kcal/mol) vs displacement of particle %d", scanParticle)))
	fmt.Println(asciigraph.Plot(energies, asciigraph.Height(plotHeight), asciigraph.Width(70)))
	fmt.Printf("displacement %.2f .. %.2f Å along %s\n", scanFrom, scanTo, scanDirection)
	fmt.Printf("minimum: %.6f kcal/mol at %.3f Å\n", minE, minS)
	return nil
}

func parseVec(s string) (mpole.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mpole.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mpole.Vec3{}, fmt.Errorf("bad component %q: %w", p, err)
		}
		out[i] = v
	}
	return mpole.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}
