package pme

import (
	"math"

	"github.com/san-kum/mpole/internal/damping"
	"github.com/san-kum/mpole/internal/mpole"
	"github.com/san-kum/mpole/internal/scf"
)

// FixedFields computes the permanent-multipole field at every site for
// both polarization channels: the reciprocal-space contribution, the
// Ewald self term, and the short-range real-space correction within the
// cutoff. Both output slices are overwritten.
func (e *Engine) FixedFields(fieldD, fieldP []mpole.Vec3) {
	e.computeSplines()
	e.spreadFixedMultipoles()
	e.forwardFFT()
	e.convolve()
	e.inverseFFT()
	e.computeFixedPotential()

	// Reciprocal field is the negated Cartesian gradient of phi.
	ftc := e.fracToCart()
	for i := range e.sites {
		p1, p2, p3 := e.phi[20*i+1], e.phi[20*i+2], e.phi[20*i+3]
		fieldD[i] = mpole.Vec3{
			X: -(p1*ftc[0][0] + p2*ftc[0][1] + p3*ftc[0][2]),
			Y: -(p1*ftc[1][0] + p2*ftc[1][1] + p3*ftc[1][2]),
			Z: -(p1*ftc[2][0] + p2*ftc[2][1] + p3*ftc[2][2]),
		}
	}

	// Self field.
	term := (4.0 / 3.0) * e.alpha * e.alpha * e.alpha / sqrtPi
	for i := range e.sites {
		fieldD[i] = fieldD[i].Add(e.sites[i].Dipole.Scale(term))
		fieldP[i] = fieldD[i]
	}

	// Real-space correction within the cutoff.
	cutoff2 := e.cutoff * e.cutoff
	n := len(e.sites)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sc := e.scales(i, j)
			e.fixedFieldCorrectionPair(i, j, sc.DipoleMultipoleScale, cutoff2, fieldD, fieldP)
			e.fixedFieldCorrectionPair(j, i, sc.DipoleMultipoleScale, cutoff2, fieldD, fieldP)
		}
	}
}

// fixedFieldCorrectionPair adds the erfc-screened, damping-corrected
// real-space field at site i due to the permanent moments of site j.
func (e *Engine) fixedFieldCorrectionPair(i, j int, dscale, cutoff2 float64, fieldD, fieldP []mpole.Vec3) {
	si, sj := &e.sites[i], &e.sites[j]
	deltaR := e.PeriodicDelta(sj.Position.Sub(si.Position))
	r2 := deltaR.Dot(deltaR)
	if r2 > cutoff2 {
		return
	}
	r := math.Sqrt(r2)

	_, bn1, bn2, bn3 := damping.EwaldBn(e.alpha, r)
	fdamp3, fdamp5, fdamp7 := damping.DirectField(sj.Alpha, r)
	rInv := 1 / r
	rInv2 := rInv * rInv
	rInv3 := rInv * rInv2
	rInv5 := rInv3 * rInv2
	rInv7 := rInv5 * rInv2

	rr3 := bn1 - (1-dscale)*rInv3
	rr3j := bn1 - (1-dscale*fdamp3)*rInv3
	rr5j := bn2 - (1-dscale*fdamp5)*rInv5
	rr7j := bn3 - (1-dscale*fdamp7)*rInv7

	qx, qy, qz := sj.QuadRows()
	qDotDelta := mpole.Vec3{
		X: deltaR.Dot(qx),
		Y: deltaR.Dot(qy),
		Z: deltaR.Dot(qz),
	}
	dipoleDelta := sj.Dipole.Dot(deltaR)
	qdpoleDelta := qDotDelta.Dot(deltaR)
	factor := rr3*sj.CoreCharge + rr3j*sj.ValenceCharge -
		3*rr5j*dipoleDelta + 15*rr7j*qdpoleDelta
	field := deltaR.Scale(factor).
		Add(sj.Dipole.Scale(rr3j)).
		Sub(qDotDelta.Scale(6 * rr5j))
	fieldD[i] = fieldD[i].Add(field)
	fieldP[i] = fieldP[i].Add(field)
}

// InducedFields adds the reciprocal-space induced-dipole field and its
// gradient, plus the Ewald self field, to both channels. channels[0] is
// the d channel, channels[1] the p channel; the caller zeroes the
// accumulators beforehand.
func (e *Engine) InducedFields(channels []*scf.Channel) {
	chD, chP := channels[0], channels[1]
	e.spreadInducedDipoles(chD.Dipoles, chP.Dipoles)
	e.forwardFFT()
	e.convolve()
	e.inverseFFT()
	e.computeInducedPotential()

	ftc := e.fracToCart()
	for i := range e.sites {
		d1, d2, d3 := e.phid[10*i+1], e.phid[10*i+2], e.phid[10*i+3]
		chD.Field[i] = chD.Field[i].Sub(mpole.Vec3{
			X: d1*ftc[0][0] + d2*ftc[0][1] + d3*ftc[0][2],
			Y: d1*ftc[1][0] + d2*ftc[1][1] + d3*ftc[1][2],
			Z: d1*ftc[2][0] + d2*ftc[2][1] + d3*ftc[2][2],
		})
		p1, p2, p3 := e.phip[10*i+1], e.phip[10*i+2], e.phip[10*i+3]
		chP.Field[i] = chP.Field[i].Sub(mpole.Vec3{
			X: p1*ftc[0][0] + p2*ftc[0][1] + p3*ftc[0][2],
			Y: p1*ftc[1][0] + p2*ftc[1][1] + p3*ftc[1][2],
			Z: p1*ftc[2][0] + p2*ftc[2][1] + p3*ftc[2][2],
		})
	}

	if chD.FieldGradient != nil {
		e.addFieldGradient(e.phid, chD.FieldGradient, ftc)
	}
	if chP.FieldGradient != nil {
		e.addFieldGradient(e.phip, chP.FieldGradient, ftc)
	}

	// Self field.
	term := (4.0 / 3.0) * e.alpha * e.alpha * e.alpha / sqrtPi
	for _, ch := range channels {
		for i := range ch.Field {
			ch.Field[i] = ch.Field[i].Add(ch.Dipoles[i].Scale(term))
		}
	}
}

// addFieldGradient converts the fractional second derivatives of one
// channel's potential to Cartesian components and subtracts them from the
// gradient accumulator, ordered XX, YY, ZZ, XY, XZ, YZ.
func (e *Engine) addFieldGradient(phi []float64, grad [][6]float64, ftc [3][3]float64) {
	for i := range e.sites {
		emat := [3][3]float64{
			{phi[10*i+4], phi[10*i+7], phi[10*i+8]},
			{phi[10*i+7], phi[10*i+5], phi[10*i+9]},
			{phi[10*i+8], phi[10*i+9], phi[10*i+6]},
		}
		var exx, eyy, ezz, exy, exz, eyz float64
		for k := 0; k < 3; k++ {
			for l := 0; l < 3; l++ {
				exx += ftc[0][k] * emat[k][l] * ftc[0][l]
				eyy += ftc[1][k] * emat[k][l] * ftc[1][l]
				ezz += ftc[2][k] * emat[k][l] * ftc[2][l]
				exy += ftc[0][k] * emat[k][l] * ftc[1][l]
				exz += ftc[0][k] * emat[k][l] * ftc[2][l]
				eyz += ftc[1][k] * emat[k][l] * ftc[2][l]
			}
		}
		grad[i][0] -= exx
		grad[i][1] -= eyy
		grad[i][2] -= ezz
		grad[i][3] -= exy
		grad[i][4] -= exz
		grad[i][5] -= eyz
	}
}
