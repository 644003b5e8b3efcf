package hippo

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mpole/internal/mpole"
	"github.com/san-kum/mpole/internal/scf"
)

// chargeParticle is a bare point-charge site with finite damping widths
// so every pair kernel stays well defined.
func chargeParticle(core float64) mpole.Particle {
	return mpole.Particle{
		Mass:       1.0,
		CoreCharge: core,
		Frame:      mpole.Frame{Axis: mpole.NoAxisType, ZParticle: -1, XParticle: -1, YParticle: -1},
		Alpha:      3.0,
		PauliAlpha: 4.0,
	}
}

func TestTwoChargeCoulomb(t *testing.T) {
	particles := []mpole.Particle{chargeParticle(1.0), chargeParticle(-1.0)}
	positions := []mpole.Vec3{{}, {X: 3.0}}

	f, err := NewForce(particles, nil, Options{Polarization: scf.Direct})
	if err != nil {
		t.Fatalf("NewForce: %v", err)
	}
	forces := make([]mpole.Vec3, 2)
	energy, err := f.ComputeForceAndEnergy(positions, forces)
	if err != nil {
		t.Fatalf("ComputeForceAndEnergy: %v", err)
	}

	wantE := -mpole.Electric / 3.0
	if math.Abs(energy-wantE)/math.Abs(wantE) > 1e-6 {
		t.Errorf("energy = %v, want %v", energy, wantE)
	}

	// Opposite charges attract: the force on particle 0 points toward
	// particle 1 at +x, with magnitude q1*q2/r^2.
	wantF := mpole.Electric / 9.0
	if math.Abs(forces[0].X-wantF)/wantF > 1e-6 {
		t.Errorf("force[0].x = %v, want %v", forces[0].X, wantF)
	}
	if math.Abs(forces[0].Y) > 1e-9 || math.Abs(forces[0].Z) > 1e-9 {
		t.Errorf("force[0] off axis: %v", forces[0])
	}
	sum := forces[0].Add(forces[1])
	if sum.Norm() > 1e-9 {
		t.Errorf("forces not antisymmetric: %v %v", forces[0], forces[1])
	}
}

// waterLike builds a three-site system with an anchored multipole on the
// heavy site and polarizable charge sites as its frame anchors.
func waterLike() ([]mpole.Particle, []mpole.Vec3) {
	heavy := mpole.Particle{
		Mass:          16.0,
		CoreCharge:    4.0,
		ValenceCharge: -4.7,
		Dipole:        mpole.Vec3{X: 0.05, Z: 0.12},
		Quadrupole:    mpole.Quadrupole{0.02, 0.0, 0.01, -0.01, 0.0, -0.01},
		Frame:         mpole.Frame{Axis: mpole.ZThenX, ZParticle: 1, XParticle: 2, YParticle: -1},
		Alpha:         4.0,
		Polarizability: 0.8,
		C6:             0.6,
		PauliK:         1.2,
		PauliAlpha:     4.2,
		EpsilonCT:      0.02,
		DampingCT:      3.5,
	}
	light := mpole.Particle{
		Mass:          1.0,
		CoreCharge:    1.0,
		ValenceCharge: -0.65,
		Frame:         mpole.Frame{Axis: mpole.NoAxisType, ZParticle: -1, XParticle: -1, YParticle: -1},
		Alpha:         4.5,
		Polarizability: 0.3,
		C6:             0.2,
		PauliK:         0.5,
		PauliAlpha:     4.5,
		EpsilonCT:      0.01,
		DampingCT:      4.0,
	}
	particles := []mpole.Particle{heavy, light, light}
	positions := []mpole.Vec3{
		{},
		{Z: 0.96},
		{X: 0.93, Z: -0.24},
	}
	return particles, positions
}

func TestNetForceZero(t *testing.T) {
	particles, positions := waterLike()
	f, err := NewForce(particles, nil, Options{Polarization: scf.Mutual, Epsilon: 1e-8})
	if err != nil {
		t.Fatalf("NewForce: %v", err)
	}
	forces := make([]mpole.Vec3, len(particles))
	energy, err := f.ComputeForceAndEnergy(positions, forces)
	if err != nil {
		t.Fatalf("ComputeForceAndEnergy: %v", err)
	}
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		t.Fatalf("energy not finite: %v", energy)
	}

	// Pair forces are antisymmetric and torque mapping redistributes
	// within the frame, so the net force must vanish.
	var sum mpole.Vec3
	for _, fc := range forces {
		sum = sum.Add(fc)
	}
	if sum.Norm() > 1e-6 {
		t.Errorf("net force = %v, want 0", sum)
	}
}

func TestExtrapolatedSingleOrderMatchesDirect(t *testing.T) {
	particles, positions := waterLike()

	direct, err := NewForce(particles, nil, Options{Polarization: scf.Direct})
	if err != nil {
		t.Fatalf("NewForce direct: %v", err)
	}
	extrap, err := NewForce(particles, nil, Options{
		Polarization: scf.Extrapolated,
		Coefficients: []float64{1.0},
	})
	if err != nil {
		t.Fatalf("NewForce extrapolated: %v", err)
	}

	fd := make([]mpole.Vec3, len(particles))
	fe := make([]mpole.Vec3, len(particles))
	ed, err := direct.ComputeForceAndEnergy(positions, fd)
	if err != nil {
		t.Fatalf("direct evaluation: %v", err)
	}
	ee, err := extrap.ComputeForceAndEnergy(positions, fe)
	if err != nil {
		t.Fatalf("extrapolated evaluation: %v", err)
	}

	// A single unit coefficient keeps only the zeroth perturbation order,
	// which is exactly the direct-polarization model.
	if math.Abs(ed-ee) > 1e-9*math.Abs(ed) {
		t.Errorf("energies differ: direct %v, extrapolated %v", ed, ee)
	}
	for i := range fd {
		if fd[i].Sub(fe[i]).Norm() > 1e-8 {
			t.Errorf("site %d forces differ: %v vs %v", i, fd[i], fe[i])
		}
	}
}

func TestElectrostaticPotentialPointCharge(t *testing.T) {
	particles := []mpole.Particle{chargeParticle(1.0)}
	positions := []mpole.Vec3{{}}
	points := []mpole.Vec3{{X: 2.5}, {Y: -4.0}}

	f, err := NewForce(particles, nil, Options{Polarization: scf.Direct})
	if err != nil {
		t.Fatalf("NewForce: %v", err)
	}
	potentials, err := f.ElectrostaticPotential(positions, points)
	if err != nil {
		t.Fatalf("ElectrostaticPotential: %v", err)
	}

	for i, r := range []float64{2.5, 4.0} {
		want := mpole.Electric / r
		if math.Abs(potentials[i]-want)/want > 1e-9 {
			t.Errorf("point %d: potential = %v, want %v", i, potentials[i], want)
		}
	}
}

func TestSystemMomentsPointDipole(t *testing.T) {
	p := mpole.Particle{
		Mass:   1.0,
		Dipole: mpole.Vec3{Z: 0.5},
		Frame:  mpole.Frame{Axis: mpole.NoAxisType, ZParticle: -1, XParticle: -1, YParticle: -1},
		Alpha:  3.0,
	}
	positions := []mpole.Vec3{{X: 1.0, Y: 2.0, Z: 3.0}}

	f, err := NewForce([]mpole.Particle{p}, nil, Options{Polarization: scf.Direct})
	if err != nil {
		t.Fatalf("NewForce: %v", err)
	}
	moments, err := f.SystemMultipoleMoments(positions)
	if err != nil {
		t.Fatalf("SystemMultipoleMoments: %v", err)
	}

	if math.Abs(moments.Charge) > 1e-12 {
		t.Errorf("net charge = %v, want 0", moments.Charge)
	}
	wantZ := 0.5 * 4.80321
	if math.Abs(moments.Dipole.Z-wantZ) > 1e-9 {
		t.Errorf("dipole z = %v Debye, want %v", moments.Dipole.Z, wantZ)
	}
	if math.Abs(moments.Dipole.X) > 1e-9 || math.Abs(moments.Dipole.Y) > 1e-9 {
		t.Errorf("dipole off axis: %v", moments.Dipole)
	}
}

func TestTotalDipolesArePermanentPlusInduced(t *testing.T) {
	particles, positions := waterLike()
	f, err := NewForce(particles, nil, Options{Polarization: scf.Mutual})
	if err != nil {
		t.Fatalf("NewForce: %v", err)
	}
	perm, err := f.LabFramePermanentDipoles(positions)
	if err != nil {
		t.Fatalf("LabFramePermanentDipoles: %v", err)
	}
	induced, res, err := f.InducedDipoles(positions)
	if err != nil {
		t.Fatalf("InducedDipoles: %v", err)
	}
	if !res.Converged {
		t.Fatalf("mutual solve did not converge: %+v", res)
	}
	total, err := f.TotalDipoles(positions)
	if err != nil {
		t.Fatalf("TotalDipoles: %v", err)
	}
	for i := range total {
		want := perm[i].Add(induced[i])
		if total[i].Sub(want).Norm() > 1e-12 {
			t.Errorf("site %d: total %v, want %v", i, total[i], want)
		}
	}
}

func TestPMEEvaluationRuns(t *testing.T) {
	particles, positions := waterLike()
	box := mpole.Box{
		{X: 18.0},
		{Y: 18.0},
		{Z: 18.0},
	}
	f, err := NewForce(particles, nil, Options{
		Polarization: scf.Mutual,
		Method:       PME,
		Box:          box,
		Cutoff:       7.0,
	})
	if err != nil {
		t.Fatalf("NewForce: %v", err)
	}
	forces := make([]mpole.Vec3, len(particles))
	energy, err := f.ComputeForceAndEnergy(positions, forces)
	if err != nil {
		t.Fatalf("ComputeForceAndEnergy: %v", err)
	}
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		t.Fatalf("energy not finite: %v", energy)
	}
	for i, fc := range forces {
		if !fc.IsValid() {
			t.Errorf("site %d force not finite: %v", i, fc)
		}
	}
}

func TestNewForceValidation(t *testing.T) {
	good := chargeParticle(1.0)

	bad := good
	bad.Frame.Axis = mpole.LastAxisType
	if _, err := NewForce([]mpole.Particle{bad}, nil, Options{}); !errors.Is(err, mpole.ErrInvalidAxisType) {
		t.Errorf("invalid axis: got %v", err)
	}

	bad = good
	bad.Frame = mpole.Frame{Axis: mpole.ZThenX, ZParticle: 0, XParticle: -1, YParticle: -1}
	if _, err := NewForce([]mpole.Particle{bad}, nil, Options{}); !errors.Is(err, mpole.ErrBadFrameReference) {
		t.Errorf("self-referencing frame: got %v", err)
	}

	bad = good
	bad.Polarizability = -0.1
	if _, err := NewForce([]mpole.Particle{bad}, nil, Options{}); !errors.Is(err, mpole.ErrInvalidParameter) {
		t.Errorf("negative polarizability: got %v", err)
	}

	ex := []mpole.Exception{{I: 0, J: 5}}
	if _, err := NewForce([]mpole.Particle{good, good}, ex, Options{}); !errors.Is(err, mpole.ErrInvalidParameter) {
		t.Errorf("out-of-range exception: got %v", err)
	}

	if _, err := NewForce([]mpole.Particle{good}, nil, Options{Method: PME, Cutoff: 7.0}); !errors.Is(err, mpole.ErrInvalidBox) {
		t.Errorf("missing box: got %v", err)
	}

	var setupErr *mpole.SetupError
	bad = good
	bad.Frame.Axis = mpole.LastAxisType
	_, err := NewForce([]mpole.Particle{good, bad}, nil, Options{})
	if !errors.As(err, &setupErr) || setupErr.Particle != 1 {
		t.Errorf("setup error particle index: got %v", err)
	}
}

// TestMutualForcesMatchEnergyDerivative displaces every particle along
// every axis and checks the analytic force against the central-difference
// energy derivative. The converged mutual energy is variational in the
// dipoles, so this pins the explicit µ·∂T/∂R·µ force term.
func TestMutualForcesMatchEnergyDerivative(t *testing.T) {
	particles, base := waterLike()
	f, err := NewForce(particles, nil, Options{
		Polarization:  scf.Mutual,
		Epsilon:       1e-10,
		MaxIterations: 200,
	})
	if err != nil {
		t.Fatalf("NewForce: %v", err)
	}

	energyAt := func(positions []mpole.Vec3) float64 {
		forces := make([]mpole.Vec3, len(particles))
		e, err := f.ComputeForceAndEnergy(positions, forces)
		if err != nil {
			t.Fatalf("ComputeForceAndEnergy: %v", err)
		}
		return e
	}

	forces := make([]mpole.Vec3, len(particles))
	if _, err := f.ComputeForceAndEnergy(base, forces); err != nil {
		t.Fatalf("ComputeForceAndEnergy: %v", err)
	}

	const h = 1e-5
	for p := range base {
		for axis := 0; axis < 3; axis++ {
			plus := append([]mpole.Vec3(nil), base...)
			minus := append([]mpole.Vec3(nil), base...)
			switch axis {
			case 0:
				plus[p].X += h
				minus[p].X -= h
			case 1:
				plus[p].Y += h
				minus[p].Y -= h
			case 2:
				plus[p].Z += h
				minus[p].Z -= h
			}
			fd := -(energyAt(plus) - energyAt(minus)) / (2 * h)

			var got float64
			switch axis {
			case 0:
				got = forces[p].X
			case 1:
				got = forces[p].Y
			case 2:
				got = forces[p].Z
			}
			if math.Abs(got-fd) > 1e-4+1e-5*math.Abs(fd) {
				t.Errorf("particle %d axis %d: force %v, -dE/dx %v", p, axis, got, fd)
			}
		}
	}
}
