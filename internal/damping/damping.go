// Package damping supplies the charge-penetration damping factors that
// attenuate the bare 1/r^n ladders at short range. Each family follows a
// valence-electron overlap model parameterized by per-particle damping
// widths; all factors approach 1 as r grows and 0 (or a finite overlap
// value) as r goes to 0.
package damping

import "math"

// DirectField returns fdamp3, fdamp5, fdamp7 attenuating the field of a
// damped charge density at distance r, width alpha.
func DirectField(alpha, r float64) (fdamp3, fdamp5, fdamp7 float64) {
	ar := alpha * r
	ar2 := ar * ar
	ar3 := ar2 * ar
	ar4 := ar2 * ar2
	expAR := math.Exp(-ar)
	fdamp3 = 1 - (1+ar+ar2/2)*expAR
	fdamp5 = 1 - (1+ar+ar2/2+ar3/6)*expAR
	fdamp7 = 1 - (1+ar+ar2/2+ar3/6+ar4/30)*expAR
	return
}

// MutualField returns fdamp3, fdamp5 for the field of one damped density
// acting on another. The equal-width case needs its own series; the
// general case is a partial-fraction combination of the two widths.
func MutualField(alphaI, alphaJ, r float64) (fdamp3, fdamp5 float64) {
	arI := alphaI * r
	arI2 := arI * arI
	arI3 := arI2 * arI
	expARI := math.Exp(-arI)
	if alphaI == alphaJ {
		arI4 := arI3 * arI
		arI5 := arI4 * arI
		fdamp3 = 1 - (1+arI+arI2/2+(7*arI3+arI4)/48)*expARI
		fdamp5 = 1 - (1+arI+arI2/2+arI3/6+arI4/24+arI5/144)*expARI
		return
	}
	arJ := alphaJ * r
	arJ2 := arJ * arJ
	arJ3 := arJ2 * arJ
	expARJ := math.Exp(-arJ)
	aI2 := alphaI * alphaI
	aJ2 := alphaJ * alphaJ
	a := aJ2 / (aJ2 - aI2)
	b := aI2 / (aI2 - aJ2)
	a2 := a * a
	b2 := b * b
	fdamp3 = 1 - a2*(1+arI+arI2/2)*expARI -
		b2*(1+arJ+arJ2/2)*expARJ -
		2*a2*b*(1+arI)*expARI -
		2*b2*a*(1+arJ)*expARJ
	fdamp5 = 1 - a2*(1+arI+arI2/2+arI3/6)*expARI -
		b2*(1+arJ+arJ2/2+arJ3/6)*expARJ -
		2*a2*b*(1+arI+arI2/3)*expARI -
		2*b2*a*(1+arJ+arJ2/3)*expARJ
	return
}

// Overlap holds the one-center (I, J) and two-center (IJ) overlap damping
// factors used by the electrostatic pair energy.
type Overlap struct {
	I1, I3, I5, I7, I9           float64
	J1, J3, J5, J7, J9           float64
	IJ1, IJ3, IJ5, IJ7, IJ9, IJ11 float64
}

// OverlapFactors computes the full overlap ladder for widths alphaI and
// alphaJ at distance r.
func OverlapFactors(alphaI, alphaJ, r float64) Overlap {
	var o Overlap
	arI := alphaI * r
	arI2 := arI * arI
	arI3 := arI2 * arI
	arI4 := arI2 * arI2
	arI5 := arI3 * arI2
	arI6 := arI3 * arI3
	expARI := math.Exp(-arI)
	o.I1 = 1 - (1+arI/2)*expARI
	o.I3 = 1 - (1+arI+arI2/2)*expARI
	o.I5 = 1 - (1+arI+arI2/2+arI3/6)*expARI
	o.I7 = 1 - (1+arI+arI2/2+arI3/6+arI4/30)*expARI
	o.I9 = 1 - (1+arI+arI2/2+arI3/6+4*arI4/105+arI5/210)*expARI
	if alphaI == alphaJ {
		o.J1, o.J3, o.J5, o.J7, o.J9 = o.I1, o.I3, o.I5, o.I7, o.I9
		arI7 := arI4 * arI3
		arI8 := arI4 * arI4
		o.IJ1 = 1 - (1+11*arI/16+3*arI2/16+arI3/48)*expARI
		o.IJ3 = 1 - (1+arI+arI2/2+(7*arI3+arI4)/48)*expARI
		o.IJ5 = 1 - (1+arI+arI2/2+arI3/6+arI4/24+arI5/144)*expARI
		o.IJ7 = 1 - (1+arI+arI2/2+arI3/6+arI4/24+arI5/120+arI6/720)*expARI
		o.IJ9 = 1 - (1+arI+arI2/2+arI3/6+arI4/24+arI5/120+arI6/720+arI7/5040)*expARI
		o.IJ11 = 1 - (1+arI+arI2/2+arI3/6+arI4/24+arI5/120+arI6/720+arI7/5040+arI8/45360)*expARI
		return o
	}
	arJ := alphaJ * r
	arJ2 := arJ * arJ
	arJ3 := arJ2 * arJ
	arJ4 := arJ2 * arJ2
	arJ5 := arJ3 * arJ2
	arJ6 := arJ3 * arJ3
	expARJ := math.Exp(-arJ)
	aI2 := alphaI * alphaI
	aJ2 := alphaJ * alphaJ
	a := aJ2 / (aJ2 - aI2)
	b := aI2 / (aI2 - aJ2)
	a2 := a * a
	b2 := b * b
	o.J1 = 1 - (1+arJ/2)*expARJ
	o.J3 = 1 - (1+arJ+arJ2/2)*expARJ
	o.J5 = 1 - (1+arJ+arJ2/2+arJ3/6)*expARJ
	o.J7 = 1 - (1+arJ+arJ2/2+arJ3/6+arJ4/30)*expARJ
	o.J9 = 1 - (1+arJ+arJ2/2+arJ3/6+4*arJ4/105+arJ5/210)*expARJ
	o.IJ1 = 1 - a2*(1+2*b+arI/2)*expARI -
		b2*(1+2*a+arJ/2)*expARJ
	o.IJ3 = 1 - a2*(1+arI+arI2/2)*expARI -
		b2*(1+arJ+arJ2/2)*expARJ -
		2*a2*b*(1+arI)*expARI -
		2*b2*a*(1+arJ)*expARJ
	o.IJ5 = 1 - a2*(1+arI+arI2/2+arI3/6)*expARI -
		b2*(1+arJ+arJ2/2+arJ3/6)*expARJ -
		2*a2*b*(1+arI+arI2/3)*expARI -
		2*b2*a*(1+arJ+arJ2/3)*expARJ
	o.IJ7 = 1 - a2*(1+arI+arI2/2+arI3/6+arI4/30)*expARI -
		b2*(1+arJ+arJ2/2+arJ3/6+arJ4/30)*expARJ -
		2*a2*b*(1+arI+2*arI2/5+arI3/15)*expARI -
		2*b2*a*(1+arJ+2*arJ2/5+arJ3/15)*expARJ
	o.IJ9 = 1 - a2*(1+arI+arI2/2+arI3/6+4*arI4/105+arI5/210)*expARI -
		b2*(1+arJ+arJ2/2+arJ3/6+4*arJ4/105+arJ5/210)*expARJ -
		2*a2*b*(1+arI+3*arI2/7+2*arI3/21+arI4/105)*expARI -
		2*b2*a*(1+arJ+3*arJ2/7+2*arJ3/21+arJ4/105)*expARJ
	o.IJ11 = 1 - a2*(1+arI+arI2/2+arI3/6+5*arI4/126+2*arI5/315+arI6/1890)*expARI -
		b2*(1+arJ+arJ2/2+arJ3/6+5*arJ4/126+2*arJ5/315+arJ6/1890)*expARJ -
		2*a2*b*(1+arI+4*arI2/9+arI3/9+arI4/63+arI5/945)*expARI -
		2*b2*a*(1+arJ+4*arJ2/9+arJ3/9+arJ4/63+arJ5/945)*expARJ
	return o
}

// Dispersion returns the C6 dispersion damping factor and its radial
// derivative term.
func Dispersion(alphaI, alphaJ, r float64) (fdamp, ddamp float64) {
	arI := alphaI * r
	arI2 := arI * arI
	arI3 := arI2 * arI
	expARI := math.Exp(-arI)
	var fdamp3, fdamp5 float64
	if alphaI == alphaJ {
		arI4 := arI3 * arI
		arI5 := arI4 * arI
		fdamp3 = 1 - (1+arI+arI2/2+(7*arI3+arI4)/48)*expARI
		fdamp5 = 1 - (1+arI+arI2/2+arI3/6+arI4/24+arI5/144)*expARI
		ddamp = alphaI * (arI5 - 3*arI3 - 3*arI2) * expARI / 96
	} else {
		arJ := alphaJ * r
		arJ2 := arJ * arJ
		arJ3 := arJ2 * arJ
		expARJ := math.Exp(-arJ)
		aI2 := alphaI * alphaI
		aJ2 := alphaJ * alphaJ
		a := aJ2 / (aJ2 - aI2)
		b := aI2 / (aI2 - aJ2)
		a2 := a * a
		b2 := b * b
		fdamp3 = 1 - a2*(1+arI+arI2/2)*expARI -
			b2*(1+arJ+arJ2/2)*expARJ -
			2*a2*b*(1+arI)*expARI -
			2*b2*a*(1+arJ)*expARJ
		fdamp5 = 1 - a2*(1+arI+arI2/2+arI3/6)*expARI -
			b2*(1+arJ+arJ2/2+arJ3/6)*expARJ -
			2*a2*b*(1+arI+arI2/3)*expARI -
			2*b2*a*(1+arJ+arJ2/3)*expARJ
		ddamp = (a2*arI2*alphaI*expARI*(r*alphaI+4*b-1) +
			b2*arJ2*alphaJ*expARJ*(r*alphaJ+4*a-1)) / 4
	}
	fdamp = 1.5*fdamp5 - 0.5*fdamp3
	return
}

// Repulsion holds the Pauli repulsion overlap ladder through order 11.
type Repulsion struct {
	F1, F3, F5, F7, F9, F11 float64
}

// RepulsionFactors computes the exponential-orbital overlap factors for
// Pauli size parameters pauliAlphaI and pauliAlphaJ at distance r.
func RepulsionFactors(pauliAlphaI, pauliAlphaJ, r float64) Repulsion {
	r2 := r * r
	r3 := r2 * r
	r4 := r2 * r2
	r5 := r3 * r2
	r6 := r3 * r3
	aI2 := 0.5 * pauliAlphaI
	arI2 := aI2 * r
	expI := math.Exp(-arI2)
	aI22 := aI2 * aI2
	aI23 := aI22 * aI2
	aI24 := aI22 * aI22
	aI25 := aI23 * aI22
	aI26 := aI23 * aI23
	var fexp, fexp1, fexp2, fexp3, fexp4, fexp5, pre float64
	if pauliAlphaI == pauliAlphaJ {
		r7 := r4 * r3
		r8 := r4 * r4
		aI27 := aI24 * aI23
		pre = 128
		fexp = (r + aI2*r2 + aI22*r3/3) * expI
		fexp1 = (aI22*r3 + aI23*r4) * expI / 3
		fexp2 = aI24 * expI * r5 / 9
		fexp3 = aI25 * expI * r6 / 45
		fexp4 = (aI25*r6 + aI26*r7) * expI / 315
		fexp5 = (aI25*r6 + aI26*r7 + aI27*r8/3) * expI / 945
	} else {
		aJ2 := 0.5 * pauliAlphaJ
		arJ2 := aJ2 * r
		expJ := math.Exp(-arJ2)
		aJ22 := aJ2 * aJ2
		aJ23 := aJ22 * aJ2
		aJ24 := aJ22 * aJ22
		aJ25 := aJ23 * aJ22
		aJ26 := aJ23 * aJ23
		scale := 1 / (aI22 - aJ22)
		pre = 8192 * aI23 * aJ23 * (scale * scale * scale * scale)
		tmp := 4 * aI2 * aJ2 * scale
		fexp = (arI2-tmp)*expJ + (arJ2+tmp)*expI
		fexp1 = (aI2*aJ2*r2-4*aI2*aJ22*r*scale-4*aI2*aJ2*scale)*expJ +
			(aI2*aJ2*r2+4*aI22*aJ2*r*scale+4*aI2*aJ2*scale)*expI
		fexp2 = (aI2*aJ2*r2/3+aI2*aJ22*r3/3-4.0/3*aI2*aJ23*r2*scale-4*aI2*aJ22*r*scale-4*aI2*aJ2*scale)*expJ +
			(aI2*aJ2*r2/3+aI22*aJ2*r3/3+4.0/3*aI23*aJ2*r2*scale+4*aI22*aJ2*r*scale+4*aI2*aJ2*scale)*expI
		fexp3 = (aI2*aJ23*r4/15+aI2*aJ22*r3/5+aI2*aJ2*r2/5-4.0/15*aI2*aJ24*r3*scale-8.0/5*aI2*aJ23*r2*scale-4*aI2*aJ22*r*scale-4*scale*aI2*aJ2)*expJ +
			(aI23*aJ2*r4/15+aI22*aJ2*r3/5+aI2*aJ2*r2/5+4.0/15*aI24*aJ2*r3*scale+8.0/5*aI23*aJ2*r2*scale+4*aI22*aJ2*r*scale+4*scale*aI2*aJ2)*expI
		fexp4 = (aI2*aJ24*r5/105+2.0/35*aI2*aJ23*r4+aI2*aJ22*r3/7+aI2*aJ2*r2/7-4.0/105*aI2*aJ25*r4*scale-8.0/21*aI2*aJ24*r3*scale-12.0/7*aI2*aJ23*r2*scale-4*aI2*aJ22*r*scale-4*aI2*aJ2*scale)*expJ +
			(aI24*aJ2*r5/105+2.0/35*aI23*aJ2*r4+aI22*aJ2*r3/7+aI2*aJ2*r2/7+4.0/105*aI25*aJ2*r4*scale+8.0/21*aI24*aJ2*r3*scale+12.0/7*aI23*aJ2*r2*scale+4*aI22*aJ2*r*scale+4*aI2*aJ2*scale)*expI
		fexp5 = (aI2*aJ25*r6/945+2.0/189*aI2*aJ24*r5+aI2*aJ23*r4/21+aI2*aJ22*r3/9+aI2*aJ2*r2/9-4.0/945*aI2*aJ26*r5*scale-4.0/63*aI2*aJ25*r4*scale-4.0/9*aI2*aJ24*r3*scale-16.0/9*aI2*aJ23*r2*scale-4*aI2*aJ22*r*scale-4*aI2*aJ2*scale)*expJ +
			(aI25*aJ2*r6/945+2.0/189*aI24*aJ2*r5+aI23*aJ2*r4/21+aI22*aJ2*r3/9+aI2*aJ2*r2/9+4.0/945*aI26*aJ2*r5*scale+4.0/63*aI25*aJ2*r4*scale+4.0/9*aI24*aJ2*r3*scale+16.0/9*aI23*aJ2*r2*scale+4*aI22*aJ2*r*scale+4*aI2*aJ2*scale)*expI
	}
	fexp = fexp / r
	fexp1 = fexp1 / r3
	fexp2 = 3 * fexp2 / r5
	fexp3 = 15 * fexp3 / (r5 * r2)
	fexp4 = 105 * fexp4 / (r5 * r4)
	fexp5 = 945 * fexp5 / (r5 * r6)
	return Repulsion{
		F1:  0.5 * pre * fexp * fexp,
		F3:  pre * fexp * fexp1,
		F5:  pre * (fexp*fexp2 + fexp1*fexp1),
		F7:  pre * (fexp*fexp3 + 3*fexp1*fexp2),
		F9:  pre * (fexp*fexp4 + 4*fexp1*fexp3 + 3*fexp2*fexp2),
		F11: pre * (fexp*fexp5 + 5*fexp1*fexp4 + 10*fexp2*fexp3),
	}
}
