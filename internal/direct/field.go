package direct

import (
	"math"

	"github.com/san-kum/mpole/internal/damping"
	"github.com/san-kum/mpole/internal/mpole"
)

// FixedFields accumulates the field of every permanent multipole at every
// other site into the d and p polarization channels.
func (e *Engine) FixedFields(fieldD, fieldP []mpole.Vec3) {
	n := len(e.Sites)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sc := e.scales(i, j)
			f := fixedFieldAt(&e.Sites[i], &e.Sites[j])
			fieldD[i] = fieldD[i].Sub(f.Scale(sc.DipoleMultipoleScale))
			fieldP[i] = fieldP[i].Sub(f.Scale(sc.DipoleMultipoleScale))
		}
	}
}

// fixedFieldAt is the (negated) field at site i due to the permanent
// moments of site j, with j's direct damping applied to the valence terms.
func fixedFieldAt(si, sj *mpole.Site) mpole.Vec3 {
	deltaR := sj.Position.Sub(si.Position)
	r := deltaR.Norm()
	fdamp3, fdamp5, fdamp7 := damping.DirectField(sj.Alpha, r)
	rInv := 1 / r
	rInv2 := rInv * rInv
	rInv3 := rInv * rInv2
	rInv5 := rInv3 * rInv2
	rInv7 := rInv5 * rInv2

	qx, qy, qz := sj.QuadRows()
	qDotDelta := mpole.Vec3{
		X: deltaR.Dot(qx),
		Y: deltaR.Dot(qy),
		Z: deltaR.Dot(qz),
	}
	dipoleDelta := sj.Dipole.Dot(deltaR)
	qdpoleDelta := qDotDelta.Dot(deltaR)
	factor := rInv3*sj.CoreCharge + fdamp3*rInv3*sj.ValenceCharge -
		3*fdamp5*rInv5*dipoleDelta + 15*fdamp7*rInv7*qdpoleDelta
	return deltaR.Scale(factor).
		Add(sj.Dipole.Scale(fdamp3 * rInv3)).
		Sub(qDotDelta.Scale(6 * fdamp5 * rInv5))
}

// InducedFields accumulates the mutual-dipole field for every channel.
// Fields are zeroed first; every unordered pair contributes to both sites.
func (e *Engine) InducedFields(channels []Channel) {
	n := len(e.Sites)
	for _, ch := range channels {
		for i := range ch.Field {
			ch.Field[i] = mpole.Vec3{}
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			e.inducedFieldPair(i, j, channels)
		}
	}
}

func (e *Engine) inducedFieldPair(i, j int, channels []Channel) {
	si, sj := &e.Sites[i], &e.Sites[j]
	deltaR := sj.Position.Sub(si.Position)
	r := math.Sqrt(deltaR.Dot(deltaR))
	fdamp3, fdamp5 := damping.MutualField(si.Alpha, sj.Alpha, r)
	rInv := 1 / r
	rInv2 := rInv * rInv
	rInv3 := rInv * rInv2
	scale3 := -fdamp3 * rInv3
	scale5 := 3 * fdamp5 * rInv3 * rInv2
	if ex, ok := e.exceptions[[2]int{i, j}]; ok {
		scale3 *= ex.DipoleDipoleScale
		scale5 *= ex.DipoleDipoleScale
	}
	for _, ch := range channels {
		dDotDelta := scale5 * ch.Dipoles[j].Dot(deltaR)
		ch.Field[i] = ch.Field[i].Add(ch.Dipoles[j].Scale(scale3)).Add(deltaR.Scale(dDotDelta))
		dDotDelta = scale5 * ch.Dipoles[i].Dot(deltaR)
		ch.Field[j] = ch.Field[j].Add(ch.Dipoles[i].Scale(scale3)).Add(deltaR.Scale(dDotDelta))
	}
}
