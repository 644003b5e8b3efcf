package damping

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDirectFieldLimits(t *testing.T) {
	// At short range the damped field vanishes.
	f3, f5, f7 := DirectField(3.0, 1e-6)
	if f3 > 1e-9 || f5 > 1e-9 || f7 > 1e-9 {
		t.Errorf("short-range factors not near zero: %g %g %g", f3, f5, f7)
	}

	// Far away the bare interaction is recovered.
	f3, f5, f7 = DirectField(3.0, 20.0)
	if !approxEqual(f3, 1, 1e-12) || !approxEqual(f5, 1, 1e-12) || !approxEqual(f7, 1, 1e-12) {
		t.Errorf("long-range factors not near one: %g %g %g", f3, f5, f7)
	}

	// Higher orders carry more series terms and damp harder.
	f3, f5, f7 = DirectField(3.0, 1.0)
	if !(f7 < f5 && f5 < f3) {
		t.Errorf("expected f7 < f5 < f3, got %g %g %g", f3, f5, f7)
	}
	for _, f := range []float64{f3, f5, f7} {
		if f <= 0 || f >= 1 {
			t.Errorf("factor outside (0,1): %g", f)
		}
	}
}

func TestDirectFieldSpotValue(t *testing.T) {
	// alpha*r = 2 makes the series easy to restate directly.
	f3, f5, f7 := DirectField(2.0, 1.0)
	e := math.Exp(-2)
	if want := 1 - 5*e; !approxEqual(f3, want, 1e-14) {
		t.Errorf("fdamp3 = %g, want %g", f3, want)
	}
	if want := 1 - (5+8.0/6)*e; !approxEqual(f5, want, 1e-14) {
		t.Errorf("fdamp5 = %g, want %g", f5, want)
	}
	if want := 1 - (5+8.0/6+16.0/30)*e; !approxEqual(f7, want, 1e-14) {
		t.Errorf("fdamp7 = %g, want %g", f7, want)
	}
}

func TestMutualFieldNearDegenerateContinuity(t *testing.T) {
	const alpha = 3.2
	const r = 1.7
	f3eq, f5eq := MutualField(alpha, alpha, r)
	f3ne, f5ne := MutualField(alpha, alpha*(1+1e-4), r)
	if !approxEqual(f3eq, f3ne, 5e-4) {
		t.Errorf("fdamp3 jumps across the degenerate branch: %g vs %g", f3eq, f3ne)
	}
	if !approxEqual(f5eq, f5ne, 5e-4) {
		t.Errorf("fdamp5 jumps across the degenerate branch: %g vs %g", f5eq, f5ne)
	}
}

func TestMutualFieldLimits(t *testing.T) {
	f3, f5 := MutualField(3.0, 4.0, 25.0)
	if !approxEqual(f3, 1, 1e-12) || !approxEqual(f5, 1, 1e-12) {
		t.Errorf("long-range mutual factors not near one: %g %g", f3, f5)
	}
	f3, f5 = MutualField(3.0, 4.0, 1e-6)
	if f3 > 1e-9 || f5 > 1e-9 {
		t.Errorf("short-range mutual factors not near zero: %g %g", f3, f5)
	}
}

func TestOverlapFactorsLimits(t *testing.T) {
	for _, tc := range []struct {
		name           string
		alphaI, alphaJ float64
	}{
		{"equal", 3.0, 3.0},
		{"unequal", 3.0, 4.5},
	} {
		short := OverlapFactors(tc.alphaI, tc.alphaJ, 1e-6)
		long := OverlapFactors(tc.alphaI, tc.alphaJ, 30.0)
		mid := OverlapFactors(tc.alphaI, tc.alphaJ, 1.2)

		shortVals := []float64{short.I1, short.J1, short.IJ1, short.IJ3, short.IJ11}
		for i, v := range shortVals {
			if v > 1e-9 {
				t.Errorf("%s: short-range overlap factor %d = %g, want ~0", tc.name, i, v)
			}
		}
		longVals := []float64{long.I1, long.I9, long.J1, long.J9, long.IJ1, long.IJ11}
		for i, v := range longVals {
			if !approxEqual(v, 1, 1e-10) {
				t.Errorf("%s: long-range overlap factor %d = %g, want 1", tc.name, i, v)
			}
		}
		midVals := []float64{mid.I1, mid.I3, mid.I5, mid.I7, mid.I9,
			mid.J1, mid.J3, mid.J5, mid.J7, mid.J9,
			mid.IJ1, mid.IJ3, mid.IJ5, mid.IJ7, mid.IJ9, mid.IJ11}
		for i, v := range midVals {
			if v <= 0 || v >= 1 {
				t.Errorf("%s: overlap factor %d outside (0,1): %g", tc.name, i, v)
			}
		}
	}
}

func TestOverlapFactorsEqualBranchMatchesGeneral(t *testing.T) {
	const alpha = 3.6
	const r = 1.4
	eq := OverlapFactors(alpha, alpha, r)
	ne := OverlapFactors(alpha, alpha*(1+1e-4), r)
	pairs := []struct {
		name string
		a, b float64
	}{
		{"IJ1", eq.IJ1, ne.IJ1},
		{"IJ3", eq.IJ3, ne.IJ3},
		{"IJ5", eq.IJ5, ne.IJ5},
		{"IJ7", eq.IJ7, ne.IJ7},
		{"IJ9", eq.IJ9, ne.IJ9},
		{"IJ11", eq.IJ11, ne.IJ11},
	}
	for _, p := range pairs {
		if !approxEqual(p.a, p.b, 1e-3) {
			t.Errorf("%s jumps across the degenerate branch: %g vs %g", p.name, p.a, p.b)
		}
	}
}

func TestDispersionLimits(t *testing.T) {
	fdamp, ddamp := Dispersion(3.0, 3.0, 25.0)
	if !approxEqual(fdamp, 1, 1e-12) {
		t.Errorf("long-range dispersion damping = %g, want 1", fdamp)
	}
	if math.Abs(ddamp) > 1e-12 {
		t.Errorf("long-range dispersion derivative = %g, want 0", ddamp)
	}
	fdamp, _ = Dispersion(3.0, 4.0, 1e-6)
	if fdamp > 1e-9 {
		t.Errorf("short-range dispersion damping = %g, want ~0", fdamp)
	}
}

func TestDispersionDerivative(t *testing.T) {
	const h = 1e-6
	for _, tc := range []struct {
		name           string
		alphaI, alphaJ float64
	}{
		{"equal", 3.0, 3.0},
		{"unequal", 2.5, 4.0},
	} {
		for _, r := range []float64{0.8, 1.5, 3.0} {
			_, ddamp := Dispersion(tc.alphaI, tc.alphaJ, r)
			fPlus, _ := Dispersion(tc.alphaI, tc.alphaJ, r+h)
			fMinus, _ := Dispersion(tc.alphaI, tc.alphaJ, r-h)
			numeric := (fPlus - fMinus) / (2 * h)
			if !approxEqual(ddamp, numeric, 1e-5) {
				t.Errorf("%s r=%g: ddamp = %g, finite difference %g", tc.name, r, ddamp, numeric)
			}
		}
	}
}

func TestRepulsionFactorsDecay(t *testing.T) {
	for _, tc := range []struct {
		name           string
		alphaI, alphaJ float64
	}{
		{"equal", 4.0, 4.0},
		{"unequal", 3.5, 5.0},
	} {
		near := RepulsionFactors(tc.alphaI, tc.alphaJ, 2.0)
		far := RepulsionFactors(tc.alphaI, tc.alphaJ, 5.0)
		if near.F1 <= 0 || far.F1 <= 0 {
			t.Errorf("%s: F1 not positive: %g %g", tc.name, near.F1, far.F1)
		}
		if far.F1 >= near.F1 {
			t.Errorf("%s: F1 does not decay with distance: %g -> %g", tc.name, near.F1, far.F1)
		}
		// The overlap dies off exponentially, not polynomially.
		if far.F1/near.F1 > 1e-2 {
			t.Errorf("%s: F1 decay too slow: ratio %g", tc.name, far.F1/near.F1)
		}
	}
}

func TestTholeScaledInverseRsUndamped(t *testing.T) {
	rr := make([]float64, 4)
	const r = 2.0
	TholeScaledInverseRs(0, 1.1, 0.39, 0.39, r, rr)
	want := []float64{
		1 / (r * r * r),
		3 / math.Pow(r, 5),
		15 / math.Pow(r, 7),
		105 / math.Pow(r, 9),
	}
	for i := range rr {
		if !approxEqual(rr[i], want[i], 1e-14*want[i]) {
			t.Errorf("rr[%d] = %g, want %g", i, rr[i], want[i])
		}
	}
}

func TestTholeScaledInverseRsDamping(t *testing.T) {
	bare := make([]float64, 3)
	damped := make([]float64, 3)
	const r = 1.5
	TholeScaledInverseRs(0, 0, 0.39, 0.39, r, bare)
	TholeScaledInverseRs(1.2, 1.2, 0.39, 0.39, r, damped)
	for i := range damped {
		if damped[i] >= bare[i] {
			t.Errorf("rr[%d] not attenuated: %g >= %g", i, damped[i], bare[i])
		}
		if damped[i] <= 0 {
			t.Errorf("rr[%d] not positive: %g", i, damped[i])
		}
	}

	// Far outside the damping radius the bare ladder comes back.
	TholeScaledInverseRs(0, 0, 0.39, 0.39, 10.0, bare)
	TholeScaledInverseRs(1.2, 1.2, 0.39, 0.39, 10.0, damped)
	for i := range damped {
		if !approxEqual(damped[i], bare[i], 1e-12*bare[i]) {
			t.Errorf("rr[%d] = %g, want bare %g", i, damped[i], bare[i])
		}
	}
}

func TestEwaldBnSmallAlphaRecoversBareLadder(t *testing.T) {
	const r = 2.0
	bn0, bn1, bn2, bn3 := EwaldBn(1e-5, r)
	if !approxEqual(bn0, 1/r, 1e-4) {
		t.Errorf("bn0 = %g, want %g", bn0, 1/r)
	}
	if !approxEqual(bn1, 1/(r*r*r), 1e-4) {
		t.Errorf("bn1 = %g, want %g", bn1, 1/(r*r*r))
	}
	if !approxEqual(bn2, 3/math.Pow(r, 5), 1e-4) {
		t.Errorf("bn2 = %g, want %g", bn2, 3/math.Pow(r, 5))
	}
	if !approxEqual(bn3, 15/math.Pow(r, 7), 1e-4) {
		t.Errorf("bn3 = %g, want %g", bn3, 15/math.Pow(r, 7))
	}
}

func TestEwaldBnRecursion(t *testing.T) {
	// Each order satisfies b(n+1) = -b(n)'/r.
	const alpha = 0.4
	const r = 2.3
	const h = 1e-6
	_, bn1, bn2, bn3 := EwaldBn(alpha, r)
	b0p, b1p, b2p, _ := EwaldBn(alpha, r+h)
	b0m, b1m, b2m, _ := EwaldBn(alpha, r-h)
	if numeric := -(b0p - b0m) / (2 * h * r); !approxEqual(bn1, numeric, 1e-7) {
		t.Errorf("bn1 = %g, recursion gives %g", bn1, numeric)
	}
	if numeric := -(b1p - b1m) / (2 * h * r); !approxEqual(bn2, numeric, 1e-7) {
		t.Errorf("bn2 = %g, recursion gives %g", bn2, numeric)
	}
	if numeric := -(b2p - b2m) / (2 * h * r); !approxEqual(bn3, numeric, 1e-7) {
		t.Errorf("bn3 = %g, recursion gives %g", bn3, numeric)
	}
}
