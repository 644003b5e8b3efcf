package pme

import (
	"math"

	"github.com/san-kum/mpole/internal/mpole"
)

func (e *Engine) gridIndex(x, y, z int) int {
	return x*e.dims[1]*e.dims[2] + y*e.dims[2] + z
}

func (e *Engine) clearGrid() {
	for i := range e.grid {
		e.grid[i] = 0
	}
}

// transformMultipoles converts each site's permanent moments to
// fractional (grid) coordinates.
func (e *Engine) transformMultipoles() {
	var a [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[j][i] = float64(e.dims[j]) * comp(e.recip[i], j)
		}
	}
	index1 := [6]int{0, 0, 0, 1, 1, 2}
	index2 := [6]int{0, 1, 2, 1, 2, 2}
	var b [6][6]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			b[i][j] = a[index1[i]][index1[j]] * a[index2[i]][index2[j]]
			if index1[i] != index2[i] {
				b[i][j] += a[index1[i]][index2[j]] * a[index2[i]][index1[j]]
			}
		}
	}

	quadScale := [6]float64{1, 2, 2, 1, 2, 1}
	for i := range e.sites {
		s := &e.sites[i]
		t := &e.transformed[i]
		t.charge = s.CoreCharge + s.ValenceCharge
		d := [3]float64{s.Dipole.X, s.Dipole.Y, s.Dipole.Z}
		var fd [3]float64
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				fd[j] += a[j][k] * d[k]
			}
		}
		t.dipole = mpole.Vec3{X: fd[0], Y: fd[1], Z: fd[2]}
		for j := 0; j < 6; j++ {
			t.quadrupole[j] = 0
			for k := 0; k < 6; k++ {
				t.quadrupole[j] += quadScale[k] * b[j][k] * s.Quadrupole[k]
			}
		}
	}
}

// spreadFixedMultipoles places every site's fractional charge, dipole and
// quadrupole onto the Order^3 neighboring grid points.
func (e *Engine) spreadFixedMultipoles() {
	e.transformMultipoles()
	e.clearGrid()

	for atom := range e.sites {
		t0 := e.transformed[atom]
		qxx := t0.quadrupole[mpole.QXX]
		qxy := t0.quadrupole[mpole.QXY]
		qxz := t0.quadrupole[mpole.QXZ]
		qyy := t0.quadrupole[mpole.QYY]
		qyz := t0.quadrupole[mpole.QYZ]
		qzz := t0.quadrupole[mpole.QZZ]
		origin := e.gridOrigin[atom]
		for ix := 0; ix < Order; ix++ {
			x := (origin[0] + ix) % e.dims[0]
			t := e.theta[0][atom*Order+ix]
			for iy := 0; iy < Order; iy++ {
				y := (origin[1] + iy) % e.dims[1]
				u := e.theta[1][atom*Order+iy]
				term0 := t0.charge*t[0]*u[0] + t0.dipole.Y*t[0]*u[1] + qyy*t[0]*u[2] +
					t0.dipole.X*t[1]*u[0] + qxy*t[1]*u[1] + qxx*t[2]*u[0]
				term1 := t0.dipole.Z*t[0]*u[0] + qyz*t[0]*u[1] + qxz*t[1]*u[0]
				term2 := qzz * t[0] * u[0]
				for iz := 0; iz < Order; iz++ {
					z := (origin[2] + iz) % e.dims[2]
					v := e.theta[2][atom*Order+iz]
					e.grid[e.gridIndex(x, y, z)] += complex(term0*v[0]+term1*v[1]+term2*v[2], 0)
				}
			}
		}
	}
}

// spreadInducedDipoles places both channels' induced dipoles on the grid
// at once, d in the real part and p in the imaginary part, halving the
// FFT count.
func (e *Engine) spreadInducedDipoles(dipolesD, dipolesP []mpole.Vec3) {
	var cartToFrac [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cartToFrac[j][i] = float64(e.dims[j]) * comp(e.recip[i], j)
		}
	}
	e.clearGrid()

	for atom := range e.sites {
		d := rotateToFrac(dipolesD[atom], cartToFrac)
		p := rotateToFrac(dipolesP[atom], cartToFrac)
		origin := e.gridOrigin[atom]
		for ix := 0; ix < Order; ix++ {
			x := (origin[0] + ix) % e.dims[0]
			t := e.theta[0][atom*Order+ix]
			for iy := 0; iy < Order; iy++ {
				y := (origin[1] + iy) % e.dims[1]
				u := e.theta[1][atom*Order+iy]
				term01 := d.Y*t[0]*u[1] + d.X*t[1]*u[0]
				term11 := d.Z * t[0] * u[0]
				term02 := p.Y*t[0]*u[1] + p.X*t[1]*u[0]
				term12 := p.Z * t[0] * u[0]
				for iz := 0; iz < Order; iz++ {
					z := (origin[2] + iz) % e.dims[2]
					v := e.theta[2][atom*Order+iz]
					e.grid[e.gridIndex(x, y, z)] += complex(term01*v[0]+term11*v[1], term02*v[0]+term12*v[1])
				}
			}
		}
	}
}

func rotateToFrac(v mpole.Vec3, m [3][3]float64) mpole.Vec3 {
	return mpole.Vec3{
		X: v.X*m[0][0] + v.Y*m[0][1] + v.Z*m[0][2],
		Y: v.X*m[1][0] + v.Y*m[1][1] + v.Z*m[1][2],
		Z: v.X*m[2][0] + v.Y*m[2][1] + v.Z*m[2][2],
	}
}

// forwardFFT and inverseFFT apply unnormalized 3D transforms one axis at
// a time. Both directions are unnormalized, matching the structure-factor
// convention the convolution kernel assumes.
func (e *Engine) forwardFFT() { e.fft3d(true) }

func (e *Engine) inverseFFT() { e.fft3d(false) }

func (e *Engine) fft3d(forward bool) {
	nx, ny, nz := e.dims[0], e.dims[1], e.dims[2]

	// z axis: contiguous runs.
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			run := e.grid[e.gridIndex(x, y, 0) : e.gridIndex(x, y, 0)+nz]
			if forward {
				e.fft[2].Coefficients(run, run)
			} else {
				e.fft[2].Sequence(run, run)
			}
		}
	}

	// y axis: stride nz.
	for x := 0; x < nx; x++ {
		for z := 0; z < nz; z++ {
			for y := 0; y < ny; y++ {
				e.scratch[y] = e.grid[e.gridIndex(x, y, z)]
			}
			line := e.scratch[:ny]
			if forward {
				e.fft[1].Coefficients(line, line)
			} else {
				e.fft[1].Sequence(line, line)
			}
			for y := 0; y < ny; y++ {
				e.grid[e.gridIndex(x, y, z)] = e.scratch[y]
			}
		}
	}

	// x axis: stride ny*nz.
	for y := 0; y < ny; y++ {
		for z := 0; z < nz; z++ {
			for x := 0; x < nx; x++ {
				e.scratch[x] = e.grid[e.gridIndex(x, y, z)]
			}
			line := e.scratch[:nx]
			if forward {
				e.fft[0].Coefficients(line, line)
			} else {
				e.fft[0].Sequence(line, line)
			}
			for x := 0; x < nx; x++ {
				e.grid[e.gridIndex(x, y, z)] = e.scratch[x]
			}
		}
	}
}

// convolve multiplies every non-zero frequency by the damped Green's
// function with the B-spline modulus correction. The DC term is zeroed;
// the self-energy term covers it.
func (e *Engine) convolve() {
	expFactor := math.Pi * math.Pi / (e.alpha * e.alpha)
	scaleFactor := 1.0 / (math.Pi * e.box.Volume())

	for index := range e.grid {
		kx := index / (e.dims[1] * e.dims[2])
		remainder := index - kx*e.dims[1]*e.dims[2]
		ky := remainder / e.dims[2]
		kz := remainder - ky*e.dims[2]

		if kx == 0 && ky == 0 && kz == 0 {
			e.grid[index] = 0
			continue
		}

		mx := kx
		if kx >= (e.dims[0]+1)/2 {
			mx = kx - e.dims[0]
		}
		my := ky
		if ky >= (e.dims[1]+1)/2 {
			my = ky - e.dims[1]
		}
		mz := kz
		if kz >= (e.dims[2]+1)/2 {
			mz = kz - e.dims[2]
		}

		mhx := float64(mx) * e.recip[0].X
		mhy := float64(mx)*e.recip[1].X + float64(my)*e.recip[1].Y
		mhz := float64(mx)*e.recip[2].X + float64(my)*e.recip[2].Y + float64(mz)*e.recip[2].Z

		m2 := mhx*mhx + mhy*mhy + mhz*mhz
		denom := m2 * e.moduli[0][kx] * e.moduli[1][ky] * e.moduli[2][kz]
		eterm := scaleFactor * math.Exp(-expFactor*m2) / denom
		e.grid[index] *= complex(eterm, 0)
	}
}
