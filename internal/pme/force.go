package pme

import (
	"github.com/san-kum/mpole/internal/mpole"
)

// deriv1..deriv3 map a fractional multipole component to the phi index
// holding its x, y or z derivative.
var (
	deriv1 = [10]int{1, 4, 7, 8, 10, 15, 17, 13, 14, 19}
	deriv2 = [10]int{2, 7, 5, 9, 13, 11, 18, 15, 19, 16}
	deriv3 = [10]int{3, 8, 9, 6, 14, 16, 12, 19, 17, 18}
)

// RecipFixedForceEnergy accumulates the reciprocal-space force and torque
// of the permanent multipoles and returns their reciprocal energy. It
// consumes the phi potential recorded by FixedFields.
func (e *Engine) RecipFixedForceEnergy(forces, torques []mpole.Vec3) float64 {
	cphi := make([]float64, 10*len(e.sites))
	e.transformPotentialToCartesian(e.phi, cphi)
	ftc := e.fracToCart()
	energy := 0.0
	var multipole [10]float64
	for i := range e.sites {
		s := &e.sites[i]

		// Torque from the Cartesian potential derivatives.
		multipole[0] = s.CoreCharge + s.ValenceCharge
		multipole[1] = s.Dipole.X
		multipole[2] = s.Dipole.Y
		multipole[3] = s.Dipole.Z
		multipole[4] = s.Quadrupole[mpole.QXX]
		multipole[5] = s.Quadrupole[mpole.QYY]
		multipole[6] = s.Quadrupole[mpole.QZZ]
		multipole[7] = s.Quadrupole[mpole.QXY] * 2
		multipole[8] = s.Quadrupole[mpole.QXZ] * 2
		multipole[9] = s.Quadrupole[mpole.QYZ] * 2

		phi := cphi[10*i : 10*i+10]
		torques[i] = torques[i].Add(mpole.Vec3{
			X: mpole.Electric * (multipole[3]*phi[2] - multipole[2]*phi[3] +
				2*(multipole[6]-multipole[5])*phi[9] +
				multipole[8]*phi[7] + multipole[9]*phi[5] -
				multipole[7]*phi[8] - multipole[9]*phi[6]),
			Y: mpole.Electric * (multipole[1]*phi[3] - multipole[3]*phi[1] +
				2*(multipole[4]-multipole[6])*phi[8] +
				multipole[7]*phi[9] + multipole[8]*phi[6] -
				multipole[8]*phi[4] - multipole[9]*phi[7]),
			Z: mpole.Electric * (multipole[2]*phi[1] - multipole[1]*phi[2] +
				2*(multipole[5]-multipole[4])*phi[7] +
				multipole[7]*phi[4] + multipole[9]*phi[8] -
				multipole[7]*phi[5] - multipole[8]*phi[9]),
		})

		// Force and energy from the fractional multipoles.
		t := &e.transformed[i]
		multipole[1] = t.dipole.X
		multipole[2] = t.dipole.Y
		multipole[3] = t.dipole.Z
		multipole[4] = t.quadrupole[mpole.QXX]
		multipole[5] = t.quadrupole[mpole.QYY]
		multipole[6] = t.quadrupole[mpole.QZZ]
		multipole[7] = t.quadrupole[mpole.QXY]
		multipole[8] = t.quadrupole[mpole.QXZ]
		multipole[9] = t.quadrupole[mpole.QYZ]

		var f [3]float64
		for k := 0; k < 10; k++ {
			energy += multipole[k] * e.phi[20*i+k]
			f[0] += multipole[k] * e.phi[20*i+deriv1[k]]
			f[1] += multipole[k] * e.phi[20*i+deriv2[k]]
			f[2] += multipole[k] * e.phi[20*i+deriv3[k]]
		}
		f[0] *= mpole.Electric
		f[1] *= mpole.Electric
		f[2] *= mpole.Electric
		forces[i] = forces[i].Sub(mpole.Vec3{
			X: f[0]*ftc[0][0] + f[1]*ftc[0][1] + f[2]*ftc[0][2],
			Y: f[0]*ftc[1][0] + f[1]*ftc[1][1] + f[2]*ftc[1][2],
			Z: f[0]*ftc[2][0] + f[1]*ftc[2][1] + f[2]*ftc[2][2],
		})
	}
	return 0.5 * mpole.Electric * energy
}

// RecipInducedForceEnergy accumulates the reciprocal-space force and
// torque of the induced dipoles and returns their reciprocal energy. It
// consumes phi from FixedFields and phid/phip/phidp from the last
// InducedFields evaluation.
func (e *Engine) RecipInducedForceEnergy(inducedD, inducedP []mpole.Vec3, forces, torques []mpole.Vec3) float64 {
	cphi := make([]float64, 10*len(e.sites))
	e.transformPotentialToCartesian(e.phidp, cphi)
	var ctf [3][3]float64
	ftc := e.fracToCart()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ctf[j][i] = ftc[i][j]
		}
	}
	energy := 0.0
	var multipole [10]float64
	for i := range e.sites {
		s := &e.sites[i]

		multipole[0] = s.CoreCharge + s.ValenceCharge
		multipole[1] = s.Dipole.X
		multipole[2] = s.Dipole.Y
		multipole[3] = s.Dipole.Z
		multipole[4] = s.Quadrupole[mpole.QXX]
		multipole[5] = s.Quadrupole[mpole.QYY]
		multipole[6] = s.Quadrupole[mpole.QZZ]
		multipole[7] = s.Quadrupole[mpole.QXY] * 2
		multipole[8] = s.Quadrupole[mpole.QXZ] * 2
		multipole[9] = s.Quadrupole[mpole.QYZ] * 2

		phi := cphi[10*i : 10*i+10]
		torques[i] = torques[i].Add(mpole.Vec3{
			X: 0.5 * mpole.Electric * (multipole[3]*phi[2] - multipole[2]*phi[3] +
				2*(multipole[6]-multipole[5])*phi[9] +
				multipole[8]*phi[7] + multipole[9]*phi[5] -
				multipole[7]*phi[8] - multipole[9]*phi[6]),
			Y: 0.5 * mpole.Electric * (multipole[1]*phi[3] - multipole[3]*phi[1] +
				2*(multipole[4]-multipole[6])*phi[8] +
				multipole[7]*phi[9] + multipole[8]*phi[6] -
				multipole[8]*phi[4] - multipole[9]*phi[7]),
			Z: 0.5 * mpole.Electric * (multipole[2]*phi[1] - multipole[1]*phi[2] +
				2*(multipole[5]-multipole[4])*phi[7] +
				multipole[7]*phi[4] + multipole[9]*phi[8] -
				multipole[7]*phi[5] - multipole[8]*phi[9]),
		})

		t := &e.transformed[i]
		multipole[1] = t.dipole.X
		multipole[2] = t.dipole.Y
		multipole[3] = t.dipole.Z
		multipole[4] = t.quadrupole[mpole.QXX]
		multipole[5] = t.quadrupole[mpole.QYY]
		multipole[6] = t.quadrupole[mpole.QZZ]
		multipole[7] = t.quadrupole[mpole.QXY]
		multipole[8] = t.quadrupole[mpole.QXZ]
		multipole[9] = t.quadrupole[mpole.QYZ]

		fd := rotateToFrac(inducedD[i], ctf)
		fp := rotateToFrac(inducedP[i], ctf)
		ud := [3]float64{fd.X, fd.Y, fd.Z}
		up := [3]float64{fp.X, fp.Y, fp.Z}

		energy += (ud[0] + up[0]) * e.phi[20*i+1]
		energy += (ud[1] + up[1]) * e.phi[20*i+2]
		energy += (ud[2] + up[2]) * e.phi[20*i+3]

		var f [3]float64
		for k := 0; k < 3; k++ {
			j1 := deriv1[k+1]
			j2 := deriv2[k+1]
			j3 := deriv3[k+1]
			f[0] += (ud[k] + up[k]) * e.phi[20*i+j1]
			f[1] += (ud[k] + up[k]) * e.phi[20*i+j2]
			f[2] += (ud[k] + up[k]) * e.phi[20*i+j3]
		}
		for k := 0; k < 10; k++ {
			f[0] += multipole[k] * e.phidp[20*i+deriv1[k]]
			f[1] += multipole[k] * e.phidp[20*i+deriv2[k]]
			f[2] += multipole[k] * e.phidp[20*i+deriv3[k]]
		}
		f[0] *= 0.5 * mpole.Electric
		f[1] *= 0.5 * mpole.Electric
		f[2] *= 0.5 * mpole.Electric
		forces[i] = forces[i].Sub(mpole.Vec3{
			X: f[0]*ftc[0][0] + f[1]*ftc[0][1] + f[2]*ftc[0][2],
			Y: f[0]*ftc[1][0] + f[1]*ftc[1][1] + f[2]*ftc[1][2],
			Z: f[0]*ftc[2][0] + f[1]*ftc[2][1] + f[2]*ftc[2][2],
		})
	}
	return 0.25 * mpole.Electric * energy
}

// SelfEnergy is the closed-form Ewald self interaction of every site's
// charge, dipole (permanent plus averaged induced) and quadrupole.
func (e *Engine) SelfEnergy(inducedD, inducedP []mpole.Vec3) float64 {
	var cii, dii, qii float64
	for i := range e.sites {
		s := &e.sites[i]
		charge := s.CoreCharge + s.ValenceCharge
		cii += charge * charge
		avg := inducedD[i].Add(inducedP[i]).Scale(0.5)
		dii += s.Dipole.Dot(s.Dipole.Add(avg))
		for _, q := range s.SphericalQuadrupole {
			qii += q * q
		}
	}
	prefac := -e.alpha * mpole.Electric / sqrtPi
	a2 := e.alpha * e.alpha
	a4 := a2 * a2
	return prefac * (cii + (2.0/3.0)*a2*dii + (4.0/15.0)*a4*qii)
}

// SelfTorques adds the torque of each permanent dipole against its own
// averaged induced dipole in the Ewald self field.
func (e *Engine) SelfTorques(inducedD, inducedP []mpole.Vec3, torques []mpole.Vec3) {
	term := (2.0 / 3.0) * mpole.Electric * e.alpha * e.alpha * e.alpha / sqrtPi
	for i := range e.sites {
		ui := inducedD[i].Add(inducedP[i])
		torques[i] = torques[i].Add(e.sites[i].Dipole.Cross(ui).Scale(term))
	}
}
