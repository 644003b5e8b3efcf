package mpole

import "math"

// Electric converts charge-squared-over-distance into kcal/mol
// (Coulomb constant in e², Å, kcal/mol units).
const Electric = 332.063713299

// Quadrupole component indices for the packed symmetric storage.
const (
	QXX = iota
	QXY
	QXZ
	QYY
	QYZ
	QZZ
)

// Quadrupole is a traceless symmetric tensor packed as
// {xx, xy, xz, yy, yz, zz}.
type Quadrupole [6]float64

// Trace returns xx+yy+zz; zero for a well-formed traceless quadrupole.
func (q Quadrupole) Trace() float64 {
	return q[QXX] + q[QYY] + q[QZZ]
}

/// Apply contracts the tensor with a vector: (Q·v).
func (q Quadrupole) Apply(v Vec3) Vec3 {
	return Vec3{
		q[QXX]*v.X + q[QXY]*v.Y + q[QXZ]*v.Z,
		q[QXY]*v.X + q[QYY]*v.Y + q[QYZ]*v.Z,
		q[QXZ]*v.X + q[QYZ]*v.Y + q[QZZ]*v.Z,
	}
}

// AxisType selects how a particle's local frame is anchored to its
// neighbors.
type AxisType int

const (
	ZThenX AxisType = iota
	Bisector
	ZBisect
	ThreeFold
	ZOnly
	NoAxisType
	LastAxisType
)

func (a AxisType) String() string {
	switch a {
	case ZThenX:
		return "z-then-x"
	case Bisector:
		return "bisector"
	case ZBisect:
		return "z-bisect"
	case ThreeFold:
		return "three-fold"
	case ZOnly:
		return "z-only"
	case NoAxisType:
		return "none"
	}
	return "invalid"
}

// Frame anchors a particle's molecular frame to neighbor particles.
// Unused anchors are -1.
type Frame struct {
	Axis      AxisType
	ZParticle int
	XParticle int
	YParticle int
}

// Particle carries the per-site force-field parameters. Multipoles are
// given in the molecular frame and rotated into the lab frame each
// evaluation.
type Particle struct {
	// Mass weights the center-of-mass reference of the system moments;
	// it plays no role in the force evaluation.
	Mass float64

	CoreCharge    float64
	ValenceCharge float64
	Dipole        Vec3
	Quadrupole    Quadrupole

	Frame Frame

	// Charge-penetration damping width (inverse length).
	Alpha float64

	Polarizability float64

	// Thole factor for the AMOEBA-style damping variant.
	Thole float64

	// Dispersion.
	C6 float64

	// Pauli repulsion.
	PauliK     float64
	PauliQ     float64
	PauliAlpha float64

	// Charge transfer: magnitude and decay rate.
	EpsilonCT float64
	DampingCT float64
}

// Charge is the total monopole, core plus valence.
func (p *Particle) Charge() float64 {
	return p.CoreCharge + p.ValenceCharge
}

// Exception overrides the scale factors for one particle pair.
type Exception struct {
	I, J int

	MultipoleMultipoleScale float64
	DipoleMultipoleScale    float64
	DipoleDipoleScale       float64
	DispersionScale         float64
	RepulsionScale          float64
	ChargeTransferScale     float64
}

// Box holds three (possibly triclinic) periodic box vectors, reduced form:
// a along x, b in the xy plane.
type Box [3]Vec3

// Volume returns the box volume a·(b×c).
func (b Box) Volume() float64 {
	return b[0].Dot(b[1].Cross(b[2]))
}

// IsValid reports whether the box is reduced-form with positive volume.
func (b Box) IsValid() bool {
	if b[0].Y != 0 || b[0].Z != 0 || b[1].Z != 0 {
		return false
	}
	return b.Volume() > 1e-12 && !math.IsInf(b.Volume(), 0)
}
