package pme

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/mpole/internal/mpole"
)

// computeModuli fills the per-axis squared DFT magnitudes of the spline,
// with the near-zero floor correction and the zeta series that corrects
// Euler-spline interpolation bias.
func (e *Engine) computeModuli() {
	// Cox-de Boor spline values at x = 0.
	var array [Order]float64
	array[0] = 1
	for k := 2; k < Order; k++ {
		denom := 1.0 / float64(k)
		array[k] = 0
		for i := 1; i < k; i++ {
			array[k-i] = (float64(i)*array[k-i-1] + float64(k-i+1)*array[k-i]) * denom
		}
		array[0] = array[0] * denom
	}

	for dim := 0; dim < 3; dim++ {
		size := e.dims[dim]
		data := make([]float64, size)
		for i := 0; i < Order && i+1 < size; i++ {
			data[i+1] = array[i]
		}
		coeffs := fft.FFTReal(data)
		moduli := make([]float64, size)
		for i, c := range coeffs {
			moduli[i] = real(c)*real(c) + imag(c)*imag(c)
		}

		// Floor correction for near-zero moduli.
		const eps = 1.0e-7
		if moduli[0] < eps {
			moduli[0] = 0.5 * moduli[1]
		}
		for i := 1; i < size-1; i++ {
			if moduli[i] < eps {
				moduli[i] = 0.5 * (moduli[i-1] + moduli[i+1])
			}
		}
		if moduli[size-1] < eps {
			moduli[size-1] = 0.5 * moduli[size-2]
		}

		// Apply the optimal zeta coefficient.
		const jcut = 50
		for i := 1; i <= size; i++ {
			k := i - 1
			if i > size/2 {
				k -= size
			}
			zeta := 1.0
			if k != 0 {
				sum1, sum2 := 1.0, 1.0
				factor := math.Pi * float64(k) / float64(size)
				for j := 1; j <= jcut; j++ {
					arg := factor / (factor + math.Pi*float64(j))
					sum1 += math.Pow(arg, Order)
					sum2 += math.Pow(arg, 2*Order)
				}
				for j := 1; j <= jcut; j++ {
					arg := factor / (factor - math.Pi*float64(j))
					sum1 += math.Pow(arg, Order)
					sum2 += math.Pow(arg, 2*Order)
				}
				zeta = sum2 / sum1
			}
			moduli[i-1] *= zeta * zeta
		}
		e.moduli[dim] = moduli
	}
}

// splinePoint evaluates the order-5 B-spline and its first three
// derivatives at fractional offset w, for each of the Order support
// points along one axis.
func splinePoint(w float64) [Order]weights {
	var array [Order][Order]float64

	array[1][1] = w
	array[1][0] = 1 - w

	array[2][2] = 0.5 * w * array[1][1]
	array[2][1] = 0.5 * ((1+w)*array[1][0] + (2-w)*array[1][1])
	array[2][0] = 0.5 * (1 - w) * array[1][0]

	for i := 4; i <= Order; i++ {
		k := i - 1
		denom := 1.0 / float64(k)
		array[i-1][i-1] = denom * w * array[k-1][k-1]
		for j := 1; j <= i-2; j++ {
			array[i-1][i-j-1] = denom * ((w+float64(j))*array[k-1][i-j-2] + (float64(i-j)-w)*array[k-1][i-j-1])
		}
		array[i-1][0] = denom * (1 - w) * array[k-1][0]
	}

	// Each differencing pass turns the row holding an order-k spline into
	// coefficients of its next derivative.
	promote := func(row, top int) {
		array[row-1][top-1] = array[row-1][top-2]
		for i := top - 1; i >= 2; i-- {
			array[row-1][i-1] = array[row-1][i-2] - array[row-1][i-1]
		}
		array[row-1][0] = -array[row-1][0]
	}
	promote(Order-1, Order)

	promote(Order-2, Order-1)
	promote(Order-2, Order)

	promote(Order-3, Order-2)
	promote(Order-3, Order-1)
	promote(Order-3, Order)

	var out [Order]weights
	for i := 0; i < Order; i++ {
		out[i] = weights{
			array[Order-1][i],
			array[Order-2][i],
			array[Order-3][i],
			array[Order-4][i],
		}
	}
	return out
}

// computeSplines records, for every site, the grid origin and the spline
// weights along each axis at the site's fractional position.
func (e *Engine) computeSplines() {
	for i := range e.sites {
		pos := e.PeriodicDelta(e.sites[i].Position)
		var origin [3]int
		for axis := 0; axis < 3; axis++ {
			w := pos.X*comp(e.recip[0], axis) + pos.Y*comp(e.recip[1], axis) + pos.Z*comp(e.recip[2], axis)
			fr := float64(e.dims[axis]) * (w - math.Trunc(w+0.5) + 0.5)
			ifr := int(math.Floor(fr))
			w = fr - float64(ifr)
			origin[axis] = ifr - Order + 1
			if origin[axis] < 0 {
				origin[axis] += e.dims[axis]
			}
			theta := splinePoint(w)
			for k := 0; k < Order; k++ {
				e.theta[axis][i*Order+k] = theta[k]
			}
		}
		e.gridOrigin[i] = origin
	}
}

func comp(v mpole.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}
