package pme

// computeFixedPotential interpolates the fractional potential and its
// derivatives through third order at every site, into phi.
func (e *Engine) computeFixedPotential() {
	for m := range e.sites {
		origin := e.gridOrigin[m]
		var tuv [20]float64
		for iz := 0; iz < Order; iz++ {
			k := origin[2] + iz
			if k >= e.dims[2] {
				k -= e.dims[2]
			}
			v := e.theta[2][m*Order+iz]
			var tu00, tu10, tu01, tu20, tu11, tu02, tu30, tu21, tu12, tu03 float64
			for iy := 0; iy < Order; iy++ {
				j := origin[1] + iy
				if j >= e.dims[1] {
					j -= e.dims[1]
				}
				u := e.theta[1][m*Order+iy]
				var t weights
				for ix := 0; ix < Order; ix++ {
					i := origin[0] + ix
					if i >= e.dims[0] {
						i -= e.dims[0]
					}
					tq := real(e.grid[e.gridIndex(i, j, k)])
					tadd := e.theta[0][m*Order+ix]
					t[0] += tq * tadd[0]
					t[1] += tq * tadd[1]
					t[2] += tq * tadd[2]
					t[3] += tq * tadd[3]
				}
				tu00 += t[0] * u[0]
				tu10 += t[1] * u[0]
				tu01 += t[0] * u[1]
				tu20 += t[2] * u[0]
				tu11 += t[1] * u[1]
				tu02 += t[0] * u[2]
				tu30 += t[3] * u[0]
				tu21 += t[2] * u[1]
				tu12 += t[1] * u[2]
				tu03 += t[0] * u[3]
			}
			tuv[0] += tu00 * v[0]
			tuv[1] += tu10 * v[0]
			tuv[2] += tu01 * v[0]
			tuv[3] += tu00 * v[1]
			tuv[4] += tu20 * v[0]
			tuv[5] += tu02 * v[0]
			tuv[6] += tu00 * v[2]
			tuv[7] += tu11 * v[0]
			tuv[8] += tu10 * v[1]
			tuv[9] += tu01 * v[1]
			tuv[10] += tu30 * v[0]
			tuv[11] += tu03 * v[0]
			tuv[12] += tu00 * v[3]
			tuv[13] += tu21 * v[0]
			tuv[14] += tu20 * v[1]
			tuv[15] += tu12 * v[0]
			tuv[16] += tu02 * v[1]
			tuv[17] += tu10 * v[2]
			tuv[18] += tu01 * v[2]
			tuv[19] += tu11 * v[1]
		}
		copy(e.phi[20*m:20*m+20], tuv[:])
	}
}

// computeInducedPotential interpolates the two induced-dipole channels
// (real part = d, imaginary part = p) into phid, phip and their sum with
// third derivatives into phidp.
func (e *Engine) computeInducedPotential() {
	for m := range e.sites {
		origin := e.gridOrigin[m]
		var tuvD, tuvP [10]float64
		var tuv [20]float64
		for iz := 0; iz < Order; iz++ {
			k := origin[2] + iz
			if k >= e.dims[2] {
				k -= e.dims[2]
			}
			v := e.theta[2][m*Order+iz]
			var tuD, tuP [6]float64
			var tu00, tu10, tu01, tu20, tu11, tu02, tu30, tu21, tu12, tu03 float64
			for iy := 0; iy < Order; iy++ {
				j := origin[1] + iy
				if j >= e.dims[1] {
					j -= e.dims[1]
				}
				u := e.theta[1][m*Order+iy]
				var tD, tP [3]float64
				t3 := 0.0
				for ix := 0; ix < Order; ix++ {
					i := origin[0] + ix
					if i >= e.dims[0] {
						i -= e.dims[0]
					}
					tq := e.grid[e.gridIndex(i, j, k)]
					tadd := e.theta[0][m*Order+ix]
					tD[0] += real(tq) * tadd[0]
					tD[1] += real(tq) * tadd[1]
					tD[2] += real(tq) * tadd[2]
					tP[0] += imag(tq) * tadd[0]
					tP[1] += imag(tq) * tadd[1]
					tP[2] += imag(tq) * tadd[2]
					t3 += (real(tq) + imag(tq)) * tadd[3]
				}
				tuD[0] += tD[0] * u[0]
				tuD[1] += tD[1] * u[0]
				tuD[2] += tD[0] * u[1]
				tuD[3] += tD[2] * u[0]
				tuD[4] += tD[1] * u[1]
				tuD[5] += tD[0] * u[2]
				tuP[0] += tP[0] * u[0]
				tuP[1] += tP[1] * u[0]
				tuP[2] += tP[0] * u[1]
				tuP[3] += tP[2] * u[0]
				tuP[4] += tP[1] * u[1]
				tuP[5] += tP[0] * u[2]
				t0 := tD[0] + tP[0]
				t1 := tD[1] + tP[1]
				t2 := tD[2] + tP[2]
				tu00 += t0 * u[0]
				tu10 += t1 * u[0]
				tu01 += t0 * u[1]
				tu20 += t2 * u[0]
				tu11 += t1 * u[1]
				tu02 += t0 * u[2]
				tu30 += t3 * u[0]
				tu21 += t2 * u[1]
				tu12 += t1 * u[2]
				tu03 += t0 * u[3]
			}
			tuvD[1] += tuD[1] * v[0]
			tuvD[2] += tuD[2] * v[0]
			tuvD[3] += tuD[0] * v[1]
			tuvD[4] += tuD[3] * v[0]
			tuvD[5] += tuD[5] * v[0]
			tuvD[6] += tuD[0] * v[2]
			tuvD[7] += tuD[4] * v[0]
			tuvD[8] += tuD[1] * v[1]
			tuvD[9] += tuD[2] * v[1]
			tuvP[1] += tuP[1] * v[0]
			tuvP[2] += tuP[2] * v[0]
			tuvP[3] += tuP[0] * v[1]
			tuvP[4] += tuP[3] * v[0]
			tuvP[5] += tuP[5] * v[0]
			tuvP[6] += tuP[0] * v[2]
			tuvP[7] += tuP[4] * v[0]
			tuvP[8] += tuP[1] * v[1]
			tuvP[9] += tuP[2] * v[1]
			tuv[0] += tu00 * v[0]
			tuv[1] += tu10 * v[0]
			tuv[2] += tu01 * v[0]
			tuv[3] += tu00 * v[1]
			tuv[4] += tu20 * v[0]
			tuv[5] += tu02 * v[0]
			tuv[6] += tu00 * v[2]
			tuv[7] += tu11 * v[0]
			tuv[8] += tu10 * v[1]
			tuv[9] += tu01 * v[1]
			tuv[10] += tu30 * v[0]
			tuv[11] += tu03 * v[0]
			tuv[12] += tu00 * v[3]
			tuv[13] += tu21 * v[0]
			tuv[14] += tu20 * v[1]
			tuv[15] += tu12 * v[0]
			tuv[16] += tu02 * v[1]
			tuv[17] += tu10 * v[2]
			tuv[18] += tu01 * v[2]
			tuv[19] += tu11 * v[1]
		}
		tuvD[0] = 0
		tuvP[0] = 0
		copy(e.phid[10*m:10*m+10], tuvD[:])
		copy(e.phip[10*m:10*m+10], tuvP[:])
		copy(e.phidp[20*m:20*m+20], tuv[:])
	}
}

// transformPotentialToCartesian converts a 20-stride fractional potential
// array to a 10-stride Cartesian one (value, gradient, second
// derivatives).
func (e *Engine) transformPotentialToCartesian(fphi, cphi []float64) {
	var a [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[i][j] = float64(e.dims[j]) * comp(e.recip[i], j)
		}
	}
	index1 := [6]int{0, 1, 2, 0, 0, 1}
	index2 := [6]int{0, 1, 2, 1, 2, 2}
	var b [6][6]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 6; j++ {
			b[i][j] = a[index1[i]][index1[j]] * a[index2[i]][index2[j]]
			if index1[j] != index2[j] {
				b[i][j] *= 2
			}
		}
	}
	for i := 3; i < 6; i++ {
		for j := 0; j < 6; j++ {
			b[i][j] = a[index1[i]][index1[j]] * a[index2[i]][index2[j]]
			if index1[j] != index2[j] {
				b[i][j] += a[index1[i]][index2[j]] * a[index2[i]][index1[j]]
			}
		}
	}

	for i := range e.sites {
		cphi[10*i] = fphi[20*i]
		cphi[10*i+1] = a[0][0]*fphi[20*i+1] + a[0][1]*fphi[20*i+2] + a[0][2]*fphi[20*i+3]
		cphi[10*i+2] = a[1][0]*fphi[20*i+1] + a[1][1]*fphi[20*i+2] + a[1][2]*fphi[20*i+3]
		cphi[10*i+3] = a[2][0]*fphi[20*i+1] + a[2][1]*fphi[20*i+2] + a[2][2]*fphi[20*i+3]
		for j := 0; j < 6; j++ {
			cphi[10*i+4+j] = 0
			for k := 0; k < 6; k++ {
				cphi[10*i+4+j] += b[j][k] * fphi[20*i+4+k]
			}
		}
	}
}
