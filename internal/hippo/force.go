// Package hippo evaluates the full polarizable multipole interaction:
// molecular-frame moments are rotated into the lab frame, the induced
// dipoles are converged against the fixed fields, and the real-space,
// reciprocal-space and self contributions are assembled into per-particle
// forces and a scalar energy.
package hippo

import (
	"fmt"

	"github.com/san-kum/mpole/internal/compute"
	"github.com/san-kum/mpole/internal/direct"
	"github.com/san-kum/mpole/internal/frame"
	"github.com/san-kum/mpole/internal/mpole"
	"github.com/san-kum/mpole/internal/pme"
	"github.com/san-kum/mpole/internal/scf"
)

// Method selects how the long-range electrostatics is summed.
type Method int

const (
	// NoCutoff sums every pair directly with no periodicity.
	NoCutoff Method = iota
	// PME splits the periodic sum into a cutoff real-space part and a
	// gridded reciprocal part.
	PME
)

func (m Method) String() string {
	switch m {
	case NoCutoff:
		return "no-cutoff"
	case PME:
		return "pme"
	}
	return "invalid"
}

// Options configure a Force beyond its particles and exceptions. Zero
// values select the defaults noted per field.
type Options struct {
	Polarization scf.Mode

	// Mutual-solve convergence target (default 1e-5) and iteration cap
	// (default 60).
	Epsilon       float64
	MaxIterations int

	// Extrapolation coefficients (default scf.DefaultCoefficients).
	Coefficients []float64

	Method Method

	// PME parameters. Box and Cutoff are required for PME; Alpha and
	// GridDimensions are derived from ErrorTolerance (default 1e-4)
	// when left zero.
	Box            mpole.Box
	Cutoff         float64
	Alpha          float64
	GridDimensions [3]int
	ErrorTolerance float64

	Backend compute.Backend
}

// Force evaluates the nonbonded interaction for one particle set. A Force
// is built once per system and reused across evaluations; it is not safe
// for concurrent use.
type Force struct {
	particles  []mpole.Particle
	exceptions map[[2]int]mpole.Exception
	opts       Options

	polarizability []float64

	sites  []mpole.Site
	engine *direct.Engine
	recip  *pme.Engine

	dState, pState scf.State
	lastResult     scf.Result
}

// NewForce validates the particle frames and parameters and prepares the
// evaluation engines. Configuration problems are reported immediately
// rather than at the first evaluation.
func NewForce(particles []mpole.Particle, exceptions []mpole.Exception, opts Options) (*Force, error) {
	n := len(particles)
	for i := range particles {
		if err := validateFrame(i, n, particles[i].Frame); err != nil {
			return nil, err
		}
		if particles[i].Polarizability < 0 {
			return nil, &mpole.SetupError{Particle: i, Wrapped: mpole.ErrInvalidParameter}
		}
	}
	for _, ex := range exceptions {
		if ex.I < 0 || ex.I >= n || ex.J < 0 || ex.J >= n || ex.I == ex.J {
			return nil, fmt.Errorf("exception %d-%d: %w", ex.I, ex.J, mpole.ErrInvalidParameter)
		}
	}

	if opts.Epsilon == 0 {
		opts.Epsilon = 1e-5
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = 60
	}
	if len(opts.Coefficients) == 0 {
		opts.Coefficients = scf.DefaultCoefficients
	}

	f := &Force{
		particles:      particles,
		exceptions:     make(map[[2]int]mpole.Exception, 2*len(exceptions)),
		opts:           opts,
		polarizability: make([]float64, n),
		sites:          make([]mpole.Site, n),
	}
	for _, ex := range exceptions {
		f.exceptions[[2]int{ex.I, ex.J}] = ex
		f.exceptions[[2]int{ex.J, ex.I}] = ex
	}
	for i := range particles {
		f.polarizability[i] = particles[i].Polarizability
	}
	f.engine = direct.NewEngine(f.sites, exceptions, opts.Backend)

	if opts.Method == PME {
		if err := f.initRecip(opts.Box); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Force) initRecip(box mpole.Box) error {
	if !box.IsValid() {
		return mpole.ErrInvalidBox
	}
	if f.opts.Cutoff <= 0 {
		return fmt.Errorf("pme cutoff %g: %w", f.opts.Cutoff, mpole.ErrInvalidParameter)
	}
	alpha, dims := f.opts.Alpha, f.opts.GridDimensions
	if alpha == 0 || dims[0] == 0 {
		tol := f.opts.ErrorTolerance
		if tol == 0 {
			tol = 1e-4
		}
		dAlpha, dDims := pme.EwaldParameters(tol, f.opts.Cutoff, box)
		if alpha == 0 {
			alpha = dAlpha
		}
		if dims[0] == 0 {
			dims = dDims
		}
	}
	recip, err := pme.NewEngine(f.sites, f.exceptions, box, alpha, f.opts.Cutoff, dims)
	if err != nil {
		return err
	}
	f.recip = recip
	f.opts.Box = box
	return nil
}

// SetPeriodicBox replaces the periodic box for a PME force. The grid
// dimensions are kept; only the box and its reciprocal change.
func (f *Force) SetPeriodicBox(box mpole.Box) error {
	if f.recip == nil {
		return fmt.Errorf("not a periodic force: %w", mpole.ErrInvalidParameter)
	}
	f.opts.GridDimensions = f.recip.GridDimensions()
	f.opts.Alpha = f.recip.Alpha()
	return f.initRecip(box)
}

func validateFrame(i, n int, fr mpole.Frame) error {
	if fr.Axis < 0 || fr.Axis >= mpole.LastAxisType {
		return &mpole.SetupError{Particle: i, Wrapped: mpole.ErrInvalidAxisType}
	}
	if fr.Axis == mpole.NoAxisType {
		return nil
	}
	inRange := func(p int) bool { return p >= 0 && p < n && p != i }
	if !inRange(fr.ZParticle) {
		return &mpole.SetupError{Particle: i, Wrapped: mpole.ErrBadFrameReference}
	}
	needX := fr.Axis != mpole.ZOnly
	if needX && !inRange(fr.XParticle) {
		return &mpole.SetupError{Particle: i, Wrapped: mpole.ErrBadFrameReference}
	}
	needY := fr.Axis == mpole.ZBisect || fr.Axis == mpole.ThreeFold
	if needY && !inRange(fr.YParticle) {
		return &mpole.SetupError{Particle: i, Wrapped: mpole.ErrBadFrameReference}
	}
	return nil
}

// setup rebuilds the lab-frame sites from the particle parameters at the
// given positions and converges the induced dipoles.
func (f *Force) setup(positions []mpole.Vec3) error {
	if len(positions) != len(f.particles) {
		return fmt.Errorf("got %d positions for %d particles: %w",
			len(positions), len(f.particles), mpole.ErrInvalidParameter)
	}
	for i := range f.particles {
		if err := f.buildSite(i, positions); err != nil {
			return err
		}
	}
	f.solveInduced()
	return nil
}

func (f *Force) buildSite(i int, positions []mpole.Vec3) error {
	p := &f.particles[i]
	s := &f.sites[i]
	s.Index = i
	s.Position = positions[i]
	s.CoreCharge = p.CoreCharge
	s.ValenceCharge = p.ValenceCharge
	s.Alpha = p.Alpha
	s.Polarizability = p.Polarizability
	s.Thole = p.Thole
	s.C6 = p.C6
	s.PauliK = p.PauliK
	s.PauliQ = p.PauliQ
	s.PauliAlpha = p.PauliAlpha
	s.EpsilonCT = p.EpsilonCT
	s.DampingCT = p.DampingCT

	dip := p.Dipole
	quad := p.Quadrupole
	sphD := frame.SphericalDipole(dip)
	sphQ := frame.SphericalQuadrupole(quad)

	fr := p.Frame
	if fr.Axis == mpole.ZThenX && fr.YParticle >= 0 &&
		frame.IsImproper(positions[i], positions[fr.ZParticle], positions[fr.XParticle], positions[fr.YParticle]) {
		frame.FlipChiral(&dip, &quad, &sphD, &sphQ)
	}

	rot := frame.Identity
	if fr.Axis != mpole.NoAxisType {
		var xPos, yPos mpole.Vec3
		if fr.XParticle >= 0 {
			xPos = positions[fr.XParticle]
		}
		if fr.YParticle >= 0 {
			yPos = positions[fr.YParticle]
		}
		var err error
		rot, err = frame.Build(fr.Axis, positions[i], positions[fr.ZParticle], xPos, yPos)
		if err != nil {
			return &mpole.SetupError{Particle: i, Wrapped: err}
		}
	}
	s.Dipole = rot.RotateDipole(dip)
	s.Quadrupole = rot.RotateQuadrupole(quad)
	s.SphericalDipole = rot.RotateSphericalDipole(sphD)
	s.SphericalQuadrupole = rot.RotateSphericalQuadrupole(sphQ)
	return nil
}

// solveInduced computes the fixed fields, premultiplies by the
// polarizabilities and runs the configured induced-dipole solver.
func (f *Force) solveInduced() {
	n := len(f.sites)
	fieldD := make([]mpole.Vec3, n)
	fieldP := make([]mpole.Vec3, n)
	if f.recip != nil {
		f.recip.FixedFields(fieldD, fieldP)
	} else {
		f.engine.FixedFields(fieldD, fieldP)
	}
	directD := make([]mpole.Vec3, n)
	directP := make([]mpole.Vec3, n)
	for i := 0; i < n; i++ {
		directD[i] = fieldD[i].Scale(f.polarizability[i])
		directP[i] = fieldP[i].Scale(f.polarizability[i])
	}

	solver := &scf.Solver{
		Polarizability: f.polarizability,
		Mode:           f.opts.Polarization,
		Epsilon:        f.opts.Epsilon,
		MaxIterations:  f.opts.MaxIterations,
		Coefficients:   f.opts.Coefficients,
		WantGradients:  f.recip != nil && f.opts.Polarization != scf.Direct,
	}
	f.dState, f.pState, f.lastResult = solver.Solve(directD, directP, f.evalInducedFields)
}

// evalInducedFields is the FieldFunc handed to the solver: the mutual
// dipole field for every channel, by direct pair sweep or by the
// reciprocal engine.
func (f *Force) evalInducedFields(channels []*scf.Channel) {
	if f.recip != nil {
		for _, ch := range channels {
			for i := range ch.Field {
				ch.Field[i] = mpole.Vec3{}
			}
		}
		f.recip.InducedFields(channels)
		return
	}
	dchs := make([]direct.Channel, len(channels))
	for i, ch := range channels {
		dchs[i] = direct.Channel{Dipoles: ch.Dipoles, Field: ch.Field}
	}
	f.engine.InducedFields(dchs)
}

// SCFResult reports how the last induced-dipole solve went. A
// non-converged result still produced usable dipoles; the caller decides
// whether the residual is acceptable.
func (f *Force) SCFResult() scf.Result {
	return f.lastResult
}
