package damping

import "math"

// TholeScaledInverseRs fills rr with the odd inverse-distance ladder
// {1/r³, 3/r⁵, 15/r⁷, ...} attenuated by Thole's exponential damping.
// dampI and dampJ are the particles' damping radii (typically
// polarizability^(1/6)); the softer Thole factor of the pair wins. Only
// the first three entries are damped.
func TholeScaledInverseRs(dampI, dampJ, tholeI, tholeJ, r float64, rr []float64) {
	rInv := 1 / r
	r2Inv := rInv * rInv

	rr[0] = rInv * r2Inv
	constantFactor := 3.0
	for i := 1; i < len(rr); i++ {
		rr[i] = constantFactor * rr[i-1] * r2Inv
		constantFactor += 2
	}

	damp := dampI * dampJ
	if damp == 0 {
		return
	}
	pgamma := math.Min(tholeI, tholeJ)
	ratio := r / damp
	damp = -pgamma * ratio * ratio * ratio
	if damp <= -50 {
		return
	}
	dampExp := math.Exp(damp)
	rr[0] *= 1 - dampExp
	rr[1] *= 1 - (1-damp)*dampExp
	if len(rr) > 2 {
		rr[2] *= 1 - (1-damp+0.6*damp*damp)*dampExp
	}
}

// EwaldBn returns the erfc-screened interaction ladder bn0..bn3 for Ewald
// real-space sums at splitting parameter alpha.
func EwaldBn(alpha, r float64) (bn0, bn1, bn2, bn3 float64) {
	rInv := 1 / r
	rInv2 := rInv * rInv
	ralpha := alpha * r
	bn0 = math.Erfc(ralpha) * rInv
	alsq2 := 2 * alpha * alpha
	alsq2n := 1 / (math.Sqrt(math.Pi) * alpha)
	exp2a := math.Exp(-ralpha * ralpha)
	alsq2n *= alsq2
	bn1 = (bn0 + alsq2n*exp2a) * rInv2
	alsq2n *= alsq2
	bn2 = (3*bn1 + alsq2n*exp2a) * rInv2
	alsq2n *= alsq2
	bn3 = (5*bn2 + alsq2n*exp2a) * rInv2
	return
}
