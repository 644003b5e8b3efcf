package hippo

import (
	"github.com/san-kum/mpole/internal/direct"
	"github.com/san-kum/mpole/internal/mpole"
	"github.com/san-kum/mpole/internal/scf"
)

// debyePerEAngstrom converts a dipole in e·Å to Debye.
const debyePerEAngstrom = 4.80321

// InducedDipoles converges the induced dipoles at the given positions and
// returns the d-channel set together with the solve diagnostics.
func (f *Force) InducedDipoles(positions []mpole.Vec3) ([]mpole.Vec3, scf.Result, error) {
	if err := f.setup(positions); err != nil {
		return nil, scf.Result{}, err
	}
	out := make([]mpole.Vec3, len(f.sites))
	copy(out, f.dState.Dipoles)
	return out, f.lastResult, nil
}

// LabFramePermanentDipoles returns the permanent dipoles rotated into the
// lab frame at the given positions.
func (f *Force) LabFramePermanentDipoles(positions []mpole.Vec3) ([]mpole.Vec3, error) {
	if err := f.setup(positions); err != nil {
		return nil, err
	}
	out := make([]mpole.Vec3, len(f.sites))
	for i := range f.sites {
		out[i] = f.sites[i].Dipole
	}
	return out, nil
}

// TotalDipoles returns the permanent plus induced dipole at every site.
func (f *Force) TotalDipoles(positions []mpole.Vec3) ([]mpole.Vec3, error) {
	if err := f.setup(positions); err != nil {
		return nil, err
	}
	out := make([]mpole.Vec3, len(f.sites))
	for i := range f.sites {
		out[i] = f.sites[i].Dipole.Add(f.dState.Dipoles[i])
	}
	return out, nil
}

// ElectrostaticPotential evaluates the potential of the converged system
// at each probe point, in kcal/(mol·e).
func (f *Force) ElectrostaticPotential(positions, points []mpole.Vec3) ([]float64, error) {
	if err := f.setup(positions); err != nil {
		return nil, err
	}
	potential := make([]float64, len(points))
	for i := range f.sites {
		s := &f.sites[i]
		induced := f.dState.Dipoles[i]
		for j, pt := range points {
			deltaR := s.Position.Sub(pt)
			if f.recip != nil {
				deltaR = f.recip.PeriodicDelta(deltaR)
			}
			potential[j] += direct.SitePotential(s, induced, deltaR)
		}
	}
	for j := range potential {
		potential[j] *= mpole.Electric
	}
	return potential, nil
}

// Moments are the system multipole moments about the center of mass.
// Dipoles are in Debye, quadrupoles in Debye·Å.
type Moments struct {
	Charge     float64
	Dipole     mpole.Vec3
	Quadrupole [3][3]float64
}

// SystemMultipoleMoments sums the point charges, permanent and induced
// dipoles and permanent quadrupoles into net moments about the
// mass-weighted center.
func (f *Force) SystemMultipoleMoments(positions []mpole.Vec3) (Moments, error) {
	if err := f.setup(positions); err != nil {
		return Moments{}, err
	}

	var com mpole.Vec3
	totalMass := 0.0
	for i := range f.particles {
		m := f.particles[i].Mass
		totalMass += m
		com = com.Add(positions[i].Scale(m))
	}
	if totalMass > 0 {
		com = com.Scale(1 / totalMass)
	}

	var mo Moments
	var quad [3][3]float64
	for i := range f.sites {
		s := &f.sites[i]
		q := s.CoreCharge + s.ValenceCharge
		local := positions[i].Sub(com)
		net := s.Dipole.Add(f.dState.Dipoles[i])

		mo.Charge += q
		mo.Dipole = mo.Dipole.Add(local.Scale(q)).Add(net)

		r := [3]float64{local.X, local.Y, local.Z}
		d := [3]float64{net.X, net.Y, net.Z}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				quad[a][b] += r[a]*r[b]*q + r[a]*d[b] + r[b]*d[a]
			}
		}
	}

	// Detrace the point-charge and dipole contribution, then fold in the
	// already-traceless site quadrupoles.
	qave := (quad[0][0] + quad[1][1] + quad[2][2]) / 3
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if a == b {
				quad[a][b] = 1.5 * (quad[a][b] - qave)
			} else {
				quad[a][b] = 1.5 * quad[a][b]
			}
		}
	}
	for i := range f.sites {
		sq := f.sites[i].Quadrupole
		quad[0][0] += 3 * sq[mpole.QXX]
		quad[1][1] += 3 * sq[mpole.QYY]
		quad[2][2] += 3 * sq[mpole.QZZ]
		quad[0][1] += 3 * sq[mpole.QXY]
		quad[1][0] += 3 * sq[mpole.QXY]
		quad[0][2] += 3 * sq[mpole.QXZ]
		quad[2][0] += 3 * sq[mpole.QXZ]
		quad[1][2] += 3 * sq[mpole.QYZ]
		quad[2][1] += 3 * sq[mpole.QYZ]
	}

	mo.Dipole = mo.Dipole.Scale(debyePerEAngstrom)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			mo.Quadrupole[a][b] = quad[a][b] * debyePerEAngstrom
		}
	}
	return mo, nil
}
