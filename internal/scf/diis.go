package scf

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mpole/internal/mpole"
)

// diisHistory holds the Pulay extrapolation state: the trial dipoles of
// the last few iterations and their residuals, concatenated over both
// polarization channels.
type diisHistory struct {
	trials    [][]mpole.Vec3
	residuals [][]mpole.Vec3
	max       int
}

func (h *diisHistory) push(trial, residual []mpole.Vec3, pool *VecPool) {
	h.trials = append(h.trials, trial)
	h.residuals = append(h.residuals, residual)
	if len(h.trials) > h.max {
		pool.Put(h.trials[0])
		pool.Put(h.residuals[0])
		h.trials = h.trials[1:]
		h.residuals = h.residuals[1:]
	}
}

// buildB assembles the bordered overlap matrix B[i][j] = r_i·r_j with a
// row and column of -1 enforcing Σc = 1. The overlap block is divided by
// its mean magnitude before factorization: near convergence the raw
// overlaps shrink toward underflow and the unscaled bordered system
// starves the LU pivots. The constraint rows stay unscaled, so the
// multiplier absorbs the factor and the coefficients are unchanged.
func (h *diisHistory) buildB() *mat.Dense {
	dim := len(h.trials) + 1
	b := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim-1; i++ {
		b.Set(i, dim-1, -1)
		b.Set(dim-1, i, -1)
	}
	total := 0.0
	for i := range h.residuals {
		for j := range h.residuals {
			sum := 0.0
			for k := range h.residuals[i] {
				sum += h.residuals[i][k].Dot(h.residuals[j][k])
			}
			b.Set(i, j, sum)
			total += math.Abs(sum)
		}
	}
	if mean := total / float64((dim-1)*(dim-1)); mean > 0 {
		for i := 0; i < dim-1; i++ {
			for j := 0; j < dim-1; j++ {
				b.Set(i, j, b.At(i, j)/mean)
			}
		}
	}
	return b
}

// extrapolate solves the bordered system and returns the blended dipole
// estimate. A singular overlap matrix falls back to the newest trial.
func (h *diisHistory) extrapolate() []mpole.Vec3 {
	newest := h.trials[len(h.trials)-1]
	if len(h.trials) < 2 {
		return newest
	}

	bmat := h.buildB()
	rhs := mat.NewVecDense(len(h.trials)+1, nil)
	rhs.SetVec(len(h.trials), -1)

	var lu mat.LU
	lu.Factorize(bmat)
	var coefs mat.VecDense
	if err := lu.SolveVecTo(&coefs, false, rhs); err != nil {
		return newest
	}

	blended := make([]mpole.Vec3, len(newest))
	for j := range h.trials {
		c := coefs.AtVec(j)
		for k := range blended {
			blended[k] = blended[k].Add(h.trials[j][k].Scale(c))
		}
	}
	return blended
}

// convergeByDIIS iterates µ ← α·(E_fixed + E_induced(µ)) with Pulay
// mixing over the concatenated d/p channels until the residual RMS drops
// below Epsilon or MaxIterations is exhausted.
func (s *Solver) convergeByDIIS(directD, directP []mpole.Vec3, dState, pState *State, eval FieldFunc) Result {
	n := len(directD)
	dState.PTDipoles = [][]mpole.Vec3{cloneVecs(directD)}
	pState.PTDipoles = [][]mpole.Vec3{cloneVecs(directP)}

	chD := &Channel{Dipoles: dState.Dipoles, Field: make([]mpole.Vec3, n)}
	chP := &Channel{Dipoles: pState.Dipoles, Field: make([]mpole.Vec3, n)}
	if s.WantGradients {
		chD.FieldGradient = make([][6]float64, n)
		chP.FieldGradient = make([][6]float64, n)
	}
	channels := []*Channel{chD, chP}

	maxHistory := s.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 20
	}
	history := &diisHistory{max: maxHistory}
	pool := NewVecPool(2 * n)

	res := Result{Residual: math.Inf(1)}
	for iter := 0; iter < s.MaxIterations; iter++ {
		for _, ch := range channels {
			for i := range ch.FieldGradient {
				ch.FieldGradient[i] = [6]float64{}
			}
		}
		eval(channels)

		trial := pool.Get()
		residual := pool.Get()
		errD := make([]mpole.Vec3, n)
		errP := make([]mpole.Vec3, n)
		for i := 0; i < n; i++ {
			newD := directD[i].Add(chD.Field[i].Scale(s.Polarizability[i]))
			newP := directP[i].Add(chP.Field[i].Scale(s.Polarizability[i]))
			errD[i] = newD.Sub(chD.Dipoles[i])
			errP[i] = newP.Sub(chP.Dipoles[i])
			trial[i], trial[n+i] = newD, newP
			residual[i], residual[n+i] = errD[i], errP[i]
		}
		history.push(trial, residual, pool)

		blended := history.extrapolate()
		for i := 0; i < n; i++ {
			chD.Dipoles[i] = blended[i]
			chP.Dipoles[i] = blended[n+i]
		}

		res.Iterations = iter + 1
		res.Residual = rms(errD, errP)
		res.Residuals = append(res.Residuals, res.Residual)
		if res.Residual < s.Epsilon {
			res.Converged = true
			break
		}
	}

	// Final fields for the converged dipoles so the caller's channel
	// buffers (and gradients) match the solution.
	for _, ch := range channels {
		for i := range ch.FieldGradient {
			ch.FieldGradient[i] = [6]float64{}
		}
	}
	eval(channels)
	if s.WantGradients {
		dState.FieldGradients = append(dState.FieldGradients, cloneGrads(chD.FieldGradient))
		pState.FieldGradients = append(pState.FieldGradients, cloneGrads(chP.FieldGradient))
	}
	return res
}
