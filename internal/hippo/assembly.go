package hippo

import (
	"github.com/san-kum/mpole/internal/frame"
	"github.com/san-kum/mpole/internal/mpole"
	"github.com/san-kum/mpole/internal/scf"
)

// ComputeForceAndEnergy runs a full evaluation at the given positions:
// frames, induced dipoles, pair and reciprocal interactions, torque
// mapping. Forces are accumulated into the forces slice and the total
// energy is returned in kcal/mol.
func (f *Force) ComputeForceAndEnergy(positions []mpole.Vec3, forces []mpole.Vec3) (float64, error) {
	if err := f.setup(positions); err != nil {
		return 0, err
	}
	torques := make([]mpole.Vec3, len(f.sites))
	// The pair and reciprocal kernels accumulate the energy gradient;
	// the force is its negation.
	grad := make([]mpole.Vec3, len(f.sites))

	var energy float64
	if f.recip != nil {
		energy = f.periodicInteractions(grad, torques)
	} else {
		energy = f.engine.Interactions(f.dState.Dipoles, f.responseDipoles(&f.dState), f.responseCoefficients(), grad, torques)
	}
	// OpenMM's reference HIPPO kernels apply this correction on the
	// non-periodic path only; it runs for PME here too so both methods
	// report the same polarization energy for the same converged dipoles.
	energy += f.polarizationEnergyCorrection()

	f.mapTorques(torques, grad)
	for i := range grad {
		forces[i] = forces[i].Sub(grad[i])
	}
	return energy, nil
}

// periodicInteractions assembles the PME energy: self torques, the
// reciprocal induced and fixed contributions, the self energy and the
// dipole-response forces.
func (f *Force) periodicInteractions(forces, torques []mpole.Vec3) float64 {
	// The direct-polarization solver never evaluates the induced fields,
	// so the induced potentials need one refresh before the force pass.
	if f.opts.Polarization == scf.Direct {
		n := len(f.sites)
		channels := []*scf.Channel{
			{Dipoles: f.dState.Dipoles, Field: make([]mpole.Vec3, n)},
			{Dipoles: f.pState.Dipoles, Field: make([]mpole.Vec3, n)},
		}
		f.evalInducedFields(channels)
	}

	f.recip.SelfTorques(f.dState.Dipoles, f.pState.Dipoles, torques)
	energy := f.recip.RecipInducedForceEnergy(f.dState.Dipoles, f.pState.Dipoles, forces, torques)
	energy += f.recip.RecipFixedForceEnergy(forces, torques)
	energy += f.recip.SelfEnergy(f.dState.Dipoles, f.pState.Dipoles)
	f.addDipoleResponseForces(forces)
	return energy
}

// responseCoefficients are the order-pair weights of the dipole-response
// force terms: the coefficient suffix sums for extrapolated polarization.
// A converged mutual solve still needs the explicit µ·∂T/∂R·µ term of the
// energy at fixed dipoles, which a single unit-weighted order pair over
// the converged set supplies. A direct solve carries no response terms,
// which the single-entry weighting encodes.
func (f *Force) responseCoefficients() []float64 {
	switch f.opts.Polarization {
	case scf.Extrapolated:
		return scf.PartialSums(f.opts.Coefficients)
	case scf.Mutual:
		return []float64{0, 1}
	}
	return []float64{1}
}

// responseDipoles is the per-order dipole history the response terms
// consume: the perturbation orders for extrapolated polarization, the
// converged dipoles as a single order for mutual.
func (f *Force) responseDipoles(st *scf.State) [][]mpole.Vec3 {
	if f.opts.Polarization == scf.Mutual {
		return [][]mpole.Vec3{st.Dipoles}
	}
	return st.PTDipoles
}

// addDipoleResponseForces adds the cross-order µ(l)·∇E(µ(m)) forces from
// the reciprocal field gradients recorded during the solve.
func (f *Force) addDipoleResponseForces(forces []mpole.Vec3) {
	coeffs := f.responseCoefficients()
	ptD := f.responseDipoles(&f.dState)
	ptP := f.responseDipoles(&f.pState)
	maxOrder := len(coeffs)
	for i := range forces {
		for l := 0; l < maxOrder-1; l++ {
			for m := 0; m < maxOrder-1-l; m++ {
				p := coeffs[l+m+1]
				if p < 1e-6 && p > -1e-6 {
					continue
				}
				uD := ptD[l][i]
				gP := &f.pState.FieldGradients[m][i]
				uP := ptP[l][i]
				gD := &f.dState.FieldGradients[m][i]
				forces[i] = forces[i].Add(mpole.Vec3{
					X: uD.X*gP[0] + uD.Y*gP[3] + uD.Z*gP[4] +
						uP.X*gD[0] + uP.Y*gD[3] + uP.Z*gD[4],
					Y: uD.X*gP[3] + uD.Y*gP[1] + uD.Z*gP[5] +
						uP.X*gD[3] + uP.Y*gD[1] + uP.Z*gD[5],
					Z: uD.X*gP[4] + uD.Y*gP[5] + uD.Z*gP[2] +
						uP.X*gD[4] + uP.Y*gD[5] + uP.Z*gD[2],
				}.Scale(0.5 * mpole.Electric * p))
			}
		}
	}
}

// polarizationEnergyCorrection converts the accumulated µ·E pair terms
// into the proper polarization energy: -½ Σ µ0·µ/α over polarizable
// sites.
func (f *Force) polarizationEnergyCorrection() float64 {
	energy := 0.0
	for i := range f.sites {
		alpha := f.polarizability[i]
		if alpha <= 0 {
			continue
		}
		energy -= (0.5 * mpole.Electric / alpha) * f.dState.PTDipoles[0][i].Dot(f.dState.Dipoles[i])
	}
	return energy
}

// mapTorques converts the accumulated frame torques into forces on each
// particle and its frame anchors.
func (f *Force) mapTorques(torques, forces []mpole.Vec3) {
	for i := range f.particles {
		fr := f.particles[i].Frame
		if fr.Axis == mpole.NoAxisType {
			continue
		}
		hasX := fr.XParticle >= 0
		hasY := fr.YParticle >= 0
		var xPos, yPos mpole.Vec3
		if hasX {
			xPos = f.sites[fr.XParticle].Position
		}
		if hasY {
			yPos = f.sites[fr.YParticle].Position
		}
		tf := frame.MapTorque(fr.Axis, f.sites[i].Position, f.sites[fr.ZParticle].Position,
			xPos, yPos, hasX, hasY, torques[i])
		forces[i] = forces[i].Add(tf.Particle)
		forces[fr.ZParticle] = forces[fr.ZParticle].Add(tf.Z)
		if hasX {
			forces[fr.XParticle] = forces[fr.XParticle].Add(tf.X)
		}
		if hasY {
			forces[fr.YParticle] = forces[fr.YParticle].Add(tf.Y)
		}
	}
}
