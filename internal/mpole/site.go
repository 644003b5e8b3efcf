package mpole

// Site is the per-evaluation working record for one particle: its position
// and its multipole moments rotated into the lab frame, together with the
// parameters the pair kernels consume. Sites are rebuilt from the Particle
// array every force evaluation.
type Site struct {
	Index    int
	Position Vec3

	CoreCharge    float64
	ValenceCharge float64
	Dipole        Vec3
	Quadrupole    Quadrupole

	SphericalDipole     [3]float64
	SphericalQuadrupole [5]float64

	Alpha          float64
	Polarizability float64
	Thole          float64

	C6         float64
	PauliK     float64
	PauliQ     float64
	PauliAlpha float64
	EpsilonCT  float64
	DampingCT  float64
}

// QuadRows returns the rows of the full symmetric quadrupole tensor.
func (s *Site) QuadRows() (qx, qy, qz Vec3) {
	q := s.Quadrupole
	qx = Vec3{q[QXX], q[QXY], q[QXZ]}
	qy = Vec3{q[QXY], q[QYY], q[QYZ]}
	qz = Vec3{q[QXZ], q[QYZ], q[QZZ]}
	return
}
