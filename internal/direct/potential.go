package direct

import (
	"math"

	"github.com/san-kum/mpole/internal/mpole"
)

// SitePotential returns the electrostatic potential contribution of one
// site at a probe point, given deltaR = sitePosition - point (already
// wrapped for periodic systems). The monopole, permanent dipole, induced
// dipole and quadrupole all contribute; no damping is applied at probe
// points.
func SitePotential(s *mpole.Site, induced mpole.Vec3, deltaR mpole.Vec3) float64 {
	r2 := deltaR.Dot(deltaR)
	r := math.Sqrt(r2)

	rr1 := 1 / r
	rr2 := rr1 * rr1
	rr3 := rr1 * rr2
	potential := (s.CoreCharge + s.ValenceCharge) * rr1

	scd := s.Dipole.Dot(deltaR)
	scu := induced.Dot(deltaR)
	potential -= (scd + scu) * rr3

	rr5 := 3 * rr3 * rr2
	scq := deltaR.Dot(s.Quadrupole.Apply(deltaR))
	potential += scq * rr5
	return potential
}
