package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mpole/internal/hippo"
	"github.com/san-kum/mpole/internal/mpole"
	"github.com/san-kum/mpole/internal/scf"
)

const (
	DefaultEpsilon       = 1e-5
	DefaultMaxIterations = 60
	DefaultCutoff        = 8.0
	DefaultTolerance     = 1e-4
)

// Config describes a multipole system and the solver settings for it.
type Config struct {
	Polarization  string    `yaml:"polarization"`
	Epsilon       float64   `yaml:"epsilon"`
	MaxIterations int       `yaml:"max_iterations"`
	Coefficients  []float64 `yaml:"coefficients,omitempty"`

	Method         string     `yaml:"method"`
	Cutoff         float64    `yaml:"cutoff,omitempty"`
	EwaldAlpha     float64    `yaml:"ewald_alpha,omitempty"`
	GridDimensions [3]int     `yaml:"grid_dimensions,omitempty"`
	ErrorTolerance float64    `yaml:"error_tolerance,omitempty"`
	Box            *BoxConfig `yaml:"box,omitempty"`

	Particles  []ParticleConfig  `yaml:"particles"`
	Exceptions []ExceptionConfig `yaml:"exceptions,omitempty"`
}

// BoxConfig holds the periodic box vectors in reduced form.
type BoxConfig struct {
	A [3]float64 `yaml:"a"`
	B [3]float64 `yaml:"b"`
	C [3]float64 `yaml:"c"`
}

type FrameConfig struct {
	Axis string `yaml:"axis"`
	Z    int    `yaml:"z"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

type ParticleConfig struct {
	Position [3]float64 `yaml:"position"`
	Mass     float64    `yaml:"mass"`

	CoreCharge    float64    `yaml:"core_charge"`
	ValenceCharge float64    `yaml:"valence_charge"`
	Dipole        [3]float64 `yaml:"dipole,omitempty"`
	Quadrupole    [6]float64 `yaml:"quadrupole,omitempty"`

	Frame FrameConfig `yaml:"frame"`

	Alpha          float64 `yaml:"alpha"`
	Polarizability float64 `yaml:"polarizability"`
	Thole          float64 `yaml:"thole,omitempty"`

	C6         float64 `yaml:"c6,omitempty"`
	PauliK     float64 `yaml:"pauli_k,omitempty"`
	PauliQ     float64 `yaml:"pauli_q,omitempty"`
	PauliAlpha float64 `yaml:"pauli_alpha,omitempty"`
	EpsilonCT  float64 `yaml:"epsilon_ct,omitempty"`
	DampingCT  float64 `yaml:"damping_ct,omitempty"`
}

type ExceptionConfig struct {
	I int `yaml:"i"`
	J int `yaml:"j"`

	MultipoleMultipole float64 `yaml:"multipole_multipole"`
	DipoleMultipole    float64 `yaml:"dipole_multipole"`
	DipoleDipole       float64 `yaml:"dipole_dipole"`
	Dispersion         float64 `yaml:"dispersion"`
	Repulsion          float64 `yaml:"repulsion"`
	ChargeTransfer     float64 `yaml:"charge_transfer"`
}

func DefaultConfig() *Config {
	return &Config{
		Polarization:  "mutual",
		Epsilon:       DefaultEpsilon,
		MaxIterations: DefaultMaxIterations,
		Method:        "nocutoff",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

var axisNames = map[string]mpole.AxisType{
	"z-then-x":   mpole.ZThenX,
	"bisector":   mpole.Bisector,
	"z-bisect":   mpole.ZBisect,
	"three-fold": mpole.ThreeFold,
	"z-only":     mpole.ZOnly,
	"none":       mpole.NoAxisType,
	"":           mpole.NoAxisType,
}

func (fc *FrameConfig) frame() (mpole.Frame, error) {
	axis, ok := axisNames[fc.Axis]
	if !ok {
		return mpole.Frame{}, fmt.Errorf("unknown frame axis %q", fc.Axis)
	}
	f := mpole.Frame{Axis: axis, ZParticle: fc.Z, XParticle: fc.X, YParticle: fc.Y}
	if axis == mpole.NoAxisType {
		f.ZParticle, f.XParticle, f.YParticle = -1, -1, -1
	}
	return f, nil
}

// ParticleList converts the per-site entries into force-field particles.
func (c *Config) ParticleList() ([]mpole.Particle, error) {
	particles := make([]mpole.Particle, len(c.Particles))
	for i, pc := range c.Particles {
		f, err := pc.Frame.frame()
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", i, err)
		}
		particles[i] = mpole.Particle{
			Mass:           pc.Mass,
			CoreCharge:     pc.CoreCharge,
			ValenceCharge:  pc.ValenceCharge,
			Dipole:         mpole.Vec3{X: pc.Dipole[0], Y: pc.Dipole[1], Z: pc.Dipole[2]},
			Quadrupole:     mpole.Quadrupole(pc.Quadrupole),
			Frame:          f,
			Alpha:          pc.Alpha,
			Polarizability: pc.Polarizability,
			Thole:          pc.Thole,
			C6:             pc.C6,
			PauliK:         pc.PauliK,
			PauliQ:         pc.PauliQ,
			PauliAlpha:     pc.PauliAlpha,
			EpsilonCT:      pc.EpsilonCT,
			DampingCT:      pc.DampingCT,
		}
	}
	return particles, nil
}

// Positions returns the configured coordinates.
func (c *Config) Positions() []mpole.Vec3 {
	positions := make([]mpole.Vec3, len(c.Particles))
	for i, pc := range c.Particles {
		positions[i] = mpole.Vec3{X: pc.Position[0], Y: pc.Position[1], Z: pc.Position[2]}
	}
	return positions
}

// ExceptionList converts the scale-factor overrides.
func (c *Config) ExceptionList() []mpole.Exception {
	if len(c.Exceptions) == 0 {
		return nil
	}
	out := make([]mpole.Exception, len(c.Exceptions))
	for i, ec := range c.Exceptions {
		out[i] = mpole.Exception{
			I:                       ec.I,
			J:                       ec.J,
			MultipoleMultipoleScale: ec.MultipoleMultipole,
			DipoleMultipoleScale:    ec.DipoleMultipole,
			DipoleDipoleScale:       ec.DipoleDipole,
			DispersionScale:         ec.Dispersion,
			RepulsionScale:          ec.Repulsion,
			ChargeTransferScale:     ec.ChargeTransfer,
		}
	}
	return out
}

// Options maps the solver and method settings onto force options.
func (c *Config) Options() (hippo.Options, error) {
	var opts hippo.Options

	switch c.Polarization {
	case "direct":
		opts.Polarization = scf.Direct
	case "", "mutual":
		opts.Polarization = scf.Mutual
	case "extrapolated":
		opts.Polarization = scf.Extrapolated
	default:
		return opts, fmt.Errorf("unknown polarization mode %q", c.Polarization)
	}
	opts.Epsilon = c.Epsilon
	opts.MaxIterations = c.MaxIterations
	opts.Coefficients = c.Coefficients

	switch c.Method {
	case "", "nocutoff":
		opts.Method = hippo.NoCutoff
	case "pme":
		opts.Method = hippo.PME
		if c.Box == nil {
			return opts, fmt.Errorf("pme requires a box")
		}
		opts.Box = mpole.Box{
			{X: c.Box.A[0], Y: c.Box.A[1], Z: c.Box.A[2]},
			{X: c.Box.B[0], Y: c.Box.B[1], Z: c.Box.B[2]},
			{X: c.Box.C[0], Y: c.Box.C[1], Z: c.Box.C[2]},
		}
		opts.Cutoff = c.Cutoff
		if opts.Cutoff == 0 {
			opts.Cutoff = DefaultCutoff
		}
		opts.Alpha = c.EwaldAlpha
		opts.GridDimensions = c.GridDimensions
		opts.ErrorTolerance = c.ErrorTolerance
	default:
		return opts, fmt.Errorf("unknown method %q", c.Method)
	}
	return opts, nil
}

// BuildForce assembles the configured force and its coordinates.
func (c *Config) BuildForce() (*hippo.Force, []mpole.Vec3, error) {
	particles, err := c.ParticleList()
	if err != nil {
		return nil, nil, err
	}
	opts, err := c.Options()
	if err != nil {
		return nil, nil, err
	}
	f, err := hippo.NewForce(particles, c.ExceptionList(), opts)
	if err != nil {
		return nil, nil, err
	}
	return f, c.Positions(), nil
}
