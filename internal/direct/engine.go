// Package direct evaluates the real-space pairwise interactions: permanent
// multipole fields and electrostatics, induced-dipole fields and forces,
// dispersion, Pauli repulsion and charge transfer, all with
// charge-penetration damping.
package direct

import (
	"github.com/san-kum/mpole/internal/compute"
	"github.com/san-kum/mpole/internal/mpole"
)

// Engine runs the O(N²) real-space sweeps over one set of lab-frame sites.
type Engine struct {
	Sites      []mpole.Site
	exceptions map[[2]int]mpole.Exception
	backend    compute.Backend
}

func NewEngine(sites []mpole.Site, exceptions []mpole.Exception, backend compute.Backend) *Engine {
	ex := make(map[[2]int]mpole.Exception, 2*len(exceptions))
	for _, e := range exceptions {
		ex[[2]int{e.I, e.J}] = e
		ex[[2]int{e.J, e.I}] = e
	}
	if backend == nil {
		backend = compute.GetBackend()
	}
	return &Engine{Sites: sites, exceptions: ex, backend: backend}
}

// scales returns the per-channel scale factors for a pair; non-exception
// pairs interact at full strength.
func (e *Engine) scales(i, j int) mpole.Exception {
	if ex, ok := e.exceptions[[2]int{i, j}]; ok {
		return ex
	}
	return mpole.Exception{
		I: i, J: j,
		MultipoleMultipoleScale: 1,
		DipoleMultipoleScale:    1,
		DipoleDipoleScale:       1,
		DispersionScale:         1,
		RepulsionScale:          1,
		ChargeTransferScale:     1,
	}
}

// Channel pairs one set of induced dipoles with the field they generate.
// The solver iterates the d and p polarization channels together.
type Channel struct {
	Dipoles []mpole.Vec3
	Field   []mpole.Vec3
}
