package direct

import (
	"math"
	"testing"

	"github.com/san-kum/mpole/internal/mpole"
)

func chargeSite(index int, charge float64, pos mpole.Vec3) mpole.Site {
	return mpole.Site{Index: index, Position: pos, CoreCharge: charge}
}

func sweep(e *Engine, forces, torques []mpole.Vec3) float64 {
	n := len(e.Sites)
	induced := make([]mpole.Vec3, n)
	return e.Interactions(induced, nil, []float64{1}, forces, torques)
}

func TestTwoChargeEnergy(t *testing.T) {
	sites := []mpole.Site{
		chargeSite(0, 1, mpole.Vec3{}),
		chargeSite(1, -1, mpole.Vec3{X: 3}),
	}
	e := NewEngine(sites, nil, nil)
	forces := make([]mpole.Vec3, 2)
	torques := make([]mpole.Vec3, 2)
	energy := sweep(e, forces, torques)

	want := -mpole.Electric / 3
	if math.Abs(energy-want) > 1e-9*math.Abs(want) {
		t.Errorf("energy = %g, want %g", energy, want)
	}

	// The sweep accumulates the energy gradient: the pair attracts, so the
	// gradient on site 0 points away from site 1.
	wantGrad := -mpole.Electric / 9
	if math.Abs(forces[0].X-wantGrad) > 1e-9*math.Abs(wantGrad) {
		t.Errorf("grad[0].X = %g, want %g", forces[0].X, wantGrad)
	}
	if math.Abs(forces[0].Y) > 1e-12 || math.Abs(forces[0].Z) > 1e-12 {
		t.Errorf("off-axis gradient: %+v", forces[0])
	}
}

func TestChargeDipoleEnergySign(t *testing.T) {
	// A dipole pointing away from a positive charge sits in its field at
	// -p*E = -Electric*q*p/r².
	sites := []mpole.Site{
		chargeSite(0, 1, mpole.Vec3{}),
		{
			Index:    1,
			Position: mpole.Vec3{X: 3},
			Dipole:   mpole.Vec3{X: 0.5},
			Alpha:    4.0,
		},
	}
	e := NewEngine(sites, nil, nil)
	forces := make([]mpole.Vec3, 2)
	torques := make([]mpole.Vec3, 2)
	energy := sweep(e, forces, torques)

	want := -mpole.Electric * 0.5 / 9
	if math.Abs(energy-want) > 1e-2*math.Abs(want) {
		t.Errorf("energy = %g, want about %g", energy, want)
	}
	if energy >= 0 {
		t.Errorf("outward dipole next to a positive charge must bind, got %g", energy)
	}
}

func TestInteractionsAntisymmetry(t *testing.T) {
	sites := []mpole.Site{
		{
			Index:         0,
			Position:      mpole.Vec3{X: 0.1, Y: -0.2, Z: 0.3},
			CoreCharge:    6,
			ValenceCharge: -5.2,
			Dipole:        mpole.Vec3{X: 0.05, Y: -0.1, Z: 0.2},
			Quadrupole:    mpole.Quadrupole{0.3, -0.1, -0.2, 0.05, -0.02, -0.35},
			Alpha:         3.8,
			PauliK:        2.1,
			PauliQ:        1.5,
			PauliAlpha:    4.2,
			C6:            0.8,
			EpsilonCT:     3.5,
			DampingCT:     3.0,
		},
		{
			Index:         1,
			Position:      mpole.Vec3{X: 2.4, Y: 0.5, Z: -0.7},
			CoreCharge:    1,
			ValenceCharge: -0.8,
			Dipole:        mpole.Vec3{X: -0.12, Y: 0.04, Z: 0.09},
			Quadrupole:    mpole.Quadrupole{-0.1, 0.05, 0.05, 0.02, -0.03, 0.08},
			Alpha:         2.9,
			PauliK:        1.2,
			PauliQ:        0.9,
			PauliAlpha:    4.8,
			C6:            0.5,
			EpsilonCT:     2.0,
			DampingCT:     3.4,
		},
	}
	e := NewEngine(sites, nil, nil)
	forces := make([]mpole.Vec3, 2)
	torques := make([]mpole.Vec3, 2)
	induced := []mpole.Vec3{
		{X: 0.01, Y: -0.02, Z: 0.005},
		{X: -0.008, Y: 0.015, Z: 0.01},
	}
	e.Interactions(induced, nil, []float64{1}, forces, torques)

	sum := forces[0].Add(forces[1])
	if sum.Norm() > 1e-10 {
		t.Errorf("pair forces do not cancel: %+v", sum)
	}
	if forces[0].Norm() < 1e-12 {
		t.Error("expected a nonzero pair force")
	}
}

func TestExceptionScaling(t *testing.T) {
	sites := []mpole.Site{
		chargeSite(0, 1, mpole.Vec3{}),
		chargeSite(1, -1, mpole.Vec3{X: 3}),
	}
	ex := []mpole.Exception{{I: 0, J: 1}}
	e := NewEngine(sites, ex, nil)
	forces := make([]mpole.Vec3, 2)
	torques := make([]mpole.Vec3, 2)
	energy := sweep(e, forces, torques)
	if math.Abs(energy) > 1e-12 {
		t.Errorf("fully excluded pair still has energy %g", energy)
	}
	if forces[0].Norm() > 1e-12 || forces[1].Norm() > 1e-12 {
		t.Errorf("fully excluded pair still has forces %+v %+v", forces[0], forces[1])
	}

	half := []mpole.Exception{{I: 0, J: 1, MultipoleMultipoleScale: 0.5}}
	e = NewEngine(sites, half, nil)
	forces = make([]mpole.Vec3, 2)
	torques = make([]mpole.Vec3, 2)
	energy = sweep(e, forces, torques)
	want := -0.5 * mpole.Electric / 3
	if math.Abs(energy-want) > 1e-9*math.Abs(want) {
		t.Errorf("half-scaled energy = %g, want %g", energy, want)
	}
}

func TestFixedFieldsPointCharge(t *testing.T) {
	sites := []mpole.Site{
		{Index: 0, Position: mpole.Vec3{}},
		chargeSite(1, 1, mpole.Vec3{X: 2}),
	}
	e := NewEngine(sites, nil, nil)
	fieldD := make([]mpole.Vec3, 2)
	fieldP := make([]mpole.Vec3, 2)
	e.FixedFields(fieldD, fieldP)

	// Field of a positive charge at +2x, sampled at the origin.
	want := -1.0 / 4
	if math.Abs(fieldD[0].X-want) > 1e-12 {
		t.Errorf("fieldD[0].X = %g, want %g", fieldD[0].X, want)
	}
	if math.Abs(fieldP[0].X-want) > 1e-12 {
		t.Errorf("fieldP[0].X = %g, want %g", fieldP[0].X, want)
	}
	if fieldD[1].Norm() > 1e-12 {
		t.Errorf("momentless probe generated a field: %+v", fieldD[1])
	}
}

func TestInducedFieldsAxialDipole(t *testing.T) {
	// On the dipole axis the field is 2µ/r³; widths large enough that the
	// mutual damping has died off.
	sites := []mpole.Site{
		{Index: 0, Position: mpole.Vec3{}, Alpha: 4.0},
		{Index: 1, Position: mpole.Vec3{X: 5}, Alpha: 4.0},
	}
	e := NewEngine(sites, nil, nil)
	channels := []Channel{{
		Dipoles: []mpole.Vec3{{}, {X: 0.3}},
		Field:   make([]mpole.Vec3, 2),
	}}
	e.InducedFields(channels)

	want := 2 * 0.3 / 125
	if math.Abs(channels[0].Field[0].X-want) > 1e-3*want {
		t.Errorf("axial dipole field = %g, want %g", channels[0].Field[0].X, want)
	}
	if math.Abs(channels[0].Field[0].Y) > 1e-12 {
		t.Errorf("off-axis field component: %+v", channels[0].Field[0])
	}
}

func TestSitePotentialMoments(t *testing.T) {
	s := mpole.Site{
		CoreCharge:    1,
		ValenceCharge: -0.4,
		Dipole:        mpole.Vec3{Z: 0.2},
	}
	deltaR := mpole.Vec3{Z: 2} // site sits above the probe

	got := SitePotential(&s, mpole.Vec3{}, deltaR)
	// Monopole 0.6/2 minus the dipole term 0.2*2/8.
	want := 0.3 - 0.05
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("potential = %g, want %g", got, want)
	}

	// An induced dipole adds on top of the permanent one.
	withInduced := SitePotential(&s, mpole.Vec3{Z: 0.1}, deltaR)
	if math.Abs(withInduced-(want-0.1*2.0/8)) > 1e-12 {
		t.Errorf("potential with induced dipole = %g", withInduced)
	}
}
