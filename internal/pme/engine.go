// Package pme implements the reciprocal-space particle-mesh Ewald engine:
// B-spline spreading of charges, dipoles and quadrupoles onto a complex
// grid, FFT convolution with the damped Green's function, and
// interpolation of the potential and its derivatives back to the sites.
package pme

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/san-kum/mpole/internal/mpole"
)

// Order is the B-spline interpolation order.
const Order = 5

var sqrtPi = math.Sqrt(math.Pi)

// weights holds a spline value and its first three derivatives at one of
// the Order support points of an axis.
type weights [4]float64

// fracMultipole is a permanent multipole transformed to fractional
// (grid) coordinates.
type fracMultipole struct {
	charge     float64
	dipole     mpole.Vec3
	quadrupole [6]float64
}

// Engine evaluates reciprocal-space fields, energies, forces and torques
// for a periodic system. The grid and the per-site interpolated
// potentials are scratch state reused across the phases of one force
// evaluation.
type Engine struct {
	sites      []mpole.Site
	exceptions map[[2]int]mpole.Exception

	box    mpole.Box
	recip  [3]mpole.Vec3
	alpha  float64
	cutoff float64
	dims   [3]int

	grid    []complex128
	scratch []complex128
	fft     [3]*fourier.CmplxFFT
	moduli  [3][]float64

	theta       [3][]weights
	gridOrigin  [][3]int
	transformed []fracMultipole

	// Interpolated potentials: phi and phidp hold value through third
	// derivatives (20 per site), phid and phip value through second
	// derivatives (10 per site).
	phi, phidp []float64
	phid, phip []float64
}

// NewEngine validates the periodic setup and allocates the grid state.
// Exceptions use the same map layout as the direct-space engine, keyed by
// both orderings of the pair.
func NewEngine(sites []mpole.Site, exceptions map[[2]int]mpole.Exception, box mpole.Box, alpha, cutoff float64, dims [3]int) (*Engine, error) {
	if !box.IsValid() {
		return nil, mpole.ErrInvalidBox
	}
	if alpha <= 0 || cutoff <= 0 {
		return nil, mpole.ErrInvalidParameter
	}
	e := &Engine{
		sites:      sites,
		exceptions: exceptions,
		alpha:      alpha,
		cutoff:     cutoff,
	}
	e.setBox(box)
	if err := e.SetGridDimensions(dims); err != nil {
		return nil, err
	}
	n := len(sites)
	e.gridOrigin = make([][3]int, n)
	e.transformed = make([]fracMultipole, n)
	e.phi = make([]float64, 20*n)
	e.phidp = make([]float64, 20*n)
	e.phid = make([]float64, 10*n)
	e.phip = make([]float64, 10*n)
	for i := range e.theta {
		e.theta[i] = make([]weights, Order*n)
	}
	return e, nil
}

func (e *Engine) setBox(box mpole.Box) {
	e.box = box
	scale := 1.0 / box.Volume()
	a, b, c := box[0], box[1], box[2]
	e.recip[0] = mpole.Vec3{X: b.Y * c.Z * scale}
	e.recip[1] = mpole.Vec3{X: -b.X * c.Z * scale, Y: a.X * c.Z * scale}
	e.recip[2] = mpole.Vec3{
		X: (b.X*c.Y - b.Y*c.X) * scale,
		Y: -a.X * c.Y * scale,
		Z: a.X * b.Y * scale,
	}
}

// SetGridDimensions resizes the grid and recomputes the B-spline moduli.
// A call with the current dimensions is a no-op.
func (e *Engine) SetGridDimensions(dims [3]int) error {
	for _, d := range dims {
		if d < Order {
			return mpole.ErrGridTooSmall
		}
	}
	if dims == e.dims {
		return nil
	}
	e.dims = dims
	total := dims[0] * dims[1] * dims[2]
	e.grid = make([]complex128, total)
	max := dims[0]
	for _, d := range dims[1:] {
		if d > max {
			max = d
		}
	}
	e.scratch = make([]complex128, max)
	for i := range e.fft {
		e.fft[i] = fourier.NewCmplxFFT(dims[i])
	}
	e.computeModuli()
	return nil
}

// GridDimensions returns the current grid size per axis.
func (e *Engine) GridDimensions() [3]int { return e.dims }

// Alpha returns the Ewald attenuation parameter.
func (e *Engine) Alpha() float64 { return e.alpha }

// PeriodicDelta wraps a displacement into the primary box image.
func (e *Engine) PeriodicDelta(deltaR mpole.Vec3) mpole.Vec3 {
	deltaR = deltaR.Sub(e.box[2].Scale(math.Floor(deltaR.Z*e.recip[2].Z + 0.5)))
	deltaR = deltaR.Sub(e.box[1].Scale(math.Floor(deltaR.Y*e.recip[1].Y + 0.5)))
	deltaR = deltaR.Sub(e.box[0].Scale(math.Floor(deltaR.X*e.recip[0].X + 0.5)))
	return deltaR
}

// fracToCart returns the matrix taking fractional derivative components
// to Cartesian ones: fracToCart[i][j] = dims[j]*recip[i][j].
func (e *Engine) fracToCart() [3][3]float64 {
	var m [3][3]float64
	for i := 0; i < 3; i++ {
		r := [3]float64{e.recip[i].X, e.recip[i].Y, e.recip[i].Z}
		for j := 0; j < 3; j++ {
			m[i][j] = float64(e.dims[j]) * r[j]
		}
	}
	return m
}

func (e *Engine) scales(i, j int) mpole.Exception {
	if ex, ok := e.exceptions[[2]int{i, j}]; ok {
		return ex
	}
	return mpole.Exception{
		MultipoleMultipoleScale: 1,
		DipoleMultipoleScale:    1,
		DipoleDipoleScale:       1,
		DispersionScale:         1,
		RepulsionScale:          1,
		ChargeTransferScale:     1,
	}
}

// EwaldParameters derives the attenuation parameter and grid dimensions
// from an error tolerance, cutoff and box, rounding each grid size up to
// a product of small primes.
func EwaldParameters(tolerance, cutoff float64, box mpole.Box) (alpha float64, dims [3]int) {
	alpha = math.Sqrt(-math.Log(2*tolerance)) / cutoff
	edges := [3]float64{box[0].X, box[1].Y, box[2].Z}
	for i, edge := range edges {
		size := int(math.Ceil(2 * alpha * edge / (3 * math.Pow(tolerance, 0.2))))
		if size < Order {
			size = Order
		}
		dims[i] = roundToFFTSize(size)
	}
	return alpha, dims
}

func roundToFFTSize(n int) int {
	for {
		m := n
		for _, p := range []int{2, 3, 5} {
			for m%p == 0 {
				m /= p
			}
		}
		if m == 1 {
			return n
		}
		n++
	}
}
