// Package scf solves for the induced dipoles: a one-shot direct solve, a
// DIIS-accelerated mutual fixed-point iteration, or a truncated
// perturbation-series extrapolation.
package scf

import (
	"math"

	"github.com/san-kum/mpole/internal/mpole"
)

// Mode selects the polarization solver variant.
type Mode int

const (
	Direct Mode = iota
	Mutual
	Extrapolated
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Mutual:
		return "mutual"
	case Extrapolated:
		return "extrapolated"
	}
	return "invalid"
}

// Channel carries one polarization channel through a field evaluation:
// the current dipoles in, the field they experience out. FieldGradient is
// filled per atom (six symmetric components) when non-nil; only the
// reciprocal-space evaluators need it.
type Channel struct {
	Dipoles       []mpole.Vec3
	Field         []mpole.Vec3
	FieldGradient [][6]float64
}

// FieldFunc evaluates the induced-dipole field for every channel at once.
type FieldFunc func(channels []*Channel)

// Result reports how a solve went. Non-convergence is not an error: the
// dipoles hold the last iterate and Converged is false, so the caller
// decides whether a degraded result is acceptable.
type Result struct {
	Iterations int
	Residual   float64
	Converged  bool

	// Residual RMS per iteration; empty for the one-shot modes.
	Residuals []float64
}

// State is the output of one polarization channel: the final dipoles plus
// the per-order perturbation history consumed by the dipole-response
// force terms.
type State struct {
	Dipoles        []mpole.Vec3
	PTDipoles      [][]mpole.Vec3
	FieldGradients [][][6]float64
}

// Solver converges the induced dipoles of both polarization channels.
type Solver struct {
	Polarizability []float64

	Mode          Mode
	Epsilon       float64
	MaxIterations int

	// Extrapolation coefficients; the suffix sums are derived per solve.
	Coefficients []float64

	// DIIS history depth.
	MaxHistory int

	// Record per-order field gradients (needed by reciprocal engines).
	WantGradients bool
}

// DefaultCoefficients is the standard 3-term extrapolation weighting.
var DefaultCoefficients = []float64{0.042, 0.635, 0.414}

// PartialSums returns the suffix sums of the extrapolation coefficients:
// out[i] = Σ_{j≥i} c[j].
func PartialSums(coefficients []float64) []float64 {
	out := make([]float64, len(coefficients))
	for i := range coefficients {
		for j := i; j < len(coefficients); j++ {
			out[i] += coefficients[j]
		}
	}
	return out
}

// Solve computes both channels' induced dipoles from the polarizability-
// premultiplied fixed fields (directD[i] = α_i·E_fixed_i). eval is called
// once per iteration or perturbation order.
func (s *Solver) Solve(directD, directP []mpole.Vec3, eval FieldFunc) (dState, pState State, res Result) {
	dState.Dipoles = cloneVecs(directD)
	pState.Dipoles = cloneVecs(directP)

	switch s.Mode {
	case Direct:
		dState.PTDipoles = [][]mpole.Vec3{cloneVecs(dState.Dipoles)}
		pState.PTDipoles = [][]mpole.Vec3{cloneVecs(pState.Dipoles)}
		res = Result{Iterations: 0, Residual: 0, Converged: true}
	case Mutual:
		res = s.convergeByDIIS(directD, directP, &dState, &pState, eval)
	case Extrapolated:
		res = s.convergeByExtrapolation(&dState, &pState, eval)
	}
	return
}

// convergeByExtrapolation applies the field operator a fixed number of
// times, recording each order, then blends with the coefficient suffix
// sums.
func (s *Solver) convergeByExtrapolation(dState, pState *State, eval FieldFunc) Result {
	n := len(dState.Dipoles)
	coefficients := s.Coefficients
	if len(coefficients) == 0 {
		coefficients = DefaultCoefficients
	}
	maxOrder := len(coefficients)
	partial := PartialSums(coefficients)

	chD := &Channel{Dipoles: dState.Dipoles, Field: make([]mpole.Vec3, n)}
	chP := &Channel{Dipoles: pState.Dipoles, Field: make([]mpole.Vec3, n)}
	if s.WantGradients {
		chD.FieldGradient = make([][6]float64, n)
		chP.FieldGradient = make([][6]float64, n)
	}
	channels := []*Channel{chD, chP}

	dState.PTDipoles = [][]mpole.Vec3{cloneVecs(dState.Dipoles)}
	pState.PTDipoles = [][]mpole.Vec3{cloneVecs(pState.Dipoles)}

	for order := 1; order < maxOrder; order++ {
		for _, ch := range channels {
			for i := range ch.FieldGradient {
				ch.FieldGradient[i] = [6]float64{}
			}
		}
		eval(channels)
		for i := 0; i < n; i++ {
			chD.Dipoles[i] = chD.Field[i].Scale(s.Polarizability[i])
			chP.Dipoles[i] = chP.Field[i].Scale(s.Polarizability[i])
		}
		dState.PTDipoles = append(dState.PTDipoles, cloneVecs(chD.Dipoles))
		pState.PTDipoles = append(pState.PTDipoles, cloneVecs(chP.Dipoles))
		if s.WantGradients {
			dState.FieldGradients = append(dState.FieldGradients, cloneGrads(chD.FieldGradient))
			pState.FieldGradients = append(pState.FieldGradients, cloneGrads(chP.FieldGradient))
		}
	}

	for i := 0; i < n; i++ {
		var d, p mpole.Vec3
		for order := 0; order < maxOrder; order++ {
			d = d.Add(dState.PTDipoles[order][i].Scale(partial[order]))
			p = p.Add(pState.PTDipoles[order][i].Scale(partial[order]))
		}
		chD.Dipoles[i] = d
		chP.Dipoles[i] = p
	}
	eval(channels)

	return Result{Iterations: maxOrder - 1, Residual: 0, Converged: true}
}

func cloneVecs(v []mpole.Vec3) []mpole.Vec3 {
	c := make([]mpole.Vec3, len(v))
	copy(c, v)
	return c
}

func cloneGrads(g [][6]float64) [][6]float64 {
	c := make([][6]float64, len(g))
	copy(c, g)
	return c
}

// rms is the root-mean-square over all components of both channels.
func rms(errD, errP []mpole.Vec3) float64 {
	sum := 0.0
	for i := range errD {
		sum += errD[i].Norm2() + errP[i].Norm2()
	}
	return math.Sqrt(sum / float64(6*len(errD)))
}
