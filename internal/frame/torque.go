package frame

import (
	"math"

	"github.com/san-kum/mpole/internal/mpole"
)

// TorqueForces are the forces equivalent to a frame torque, distributed
// over the particle and its anchors. They sum to zero.
type TorqueForces struct {
	Particle mpole.Vec3
	Z        mpole.Vec3
	X        mpole.Vec3
	Y        mpole.Vec3
}

// MapTorque converts the torque on an anchored particle into forces on the
// particle and the anchors that define its frame. zPos is the Z anchor,
// xPos the X anchor (ignored when hasX is false), yPos the Y anchor
// (ignored when hasY is false). NoAxisType frames carry no torque and map
// to zero forces.
func MapTorque(axis mpole.AxisType, pos, zPos, xPos, yPos mpole.Vec3, hasX, hasY bool, torque mpole.Vec3) TorqueForces {
	var tf TorqueForces
	if axis == mpole.NoAxisType {
		return tf
	}

	vectorU := zPos.Sub(pos)
	normU := vectorU.Norm()
	vectorU = vectorU.Scale(1 / normU)

	var vectorV mpole.Vec3
	if hasX {
		vectorV = xPos.Sub(pos)
	} else {
		vectorV = arbitraryX(vectorU)
	}
	normV := vectorV.Norm()
	vectorV = vectorV.Scale(1 / normV)

	var vectorW mpole.Vec3
	if hasY && (axis == mpole.ZBisect || axis == mpole.ThreeFold) {
		vectorW = yPos.Sub(pos)
	} else {
		vectorW = vectorU.Cross(vectorV)
	}
	normW := vectorW.Norm()
	vectorW = vectorW.Scale(1 / normW)

	vectorUV := vectorV.Cross(vectorU).Normalized()
	vectorUW := vectorW.Cross(vectorU).Normalized()
	vectorVW := vectorW.Cross(vectorV).Normalized()

	cosUV := vectorU.Dot(vectorV)
	sinUV := math.Sqrt(1 - cosUV*cosUV)
	cosUW := vectorU.Dot(vectorW)
	sinUW := math.Sqrt(1 - cosUW*cosUW)
	cosVW := vectorV.Dot(vectorW)
	sinVW := math.Sqrt(1 - cosVW*cosVW)

	dphiU := -vectorU.Dot(torque)
	dphiV := -vectorV.Dot(torque)
	dphiW := -vectorW.Dot(torque)

	switch axis {
	case mpole.ZThenX, mpole.Bisector:
		factor1 := dphiV / (normU * sinUV)
		factor2 := dphiW / normU
		factor3 := -dphiU / (normV * sinUV)
		factor4 := 0.0
		if axis == mpole.Bisector {
			factor2 *= 0.5
			factor4 = 0.5 * dphiW / normV
		}
		forceU := vectorUV.Scale(factor1).Add(vectorUW.Scale(factor2))
		forceV := vectorUV.Scale(factor3).Add(vectorVW.Scale(factor4))
		tf.Z = forceU
		tf.X = forceV
		tf.Particle = forceU.Add(forceV).Scale(-1)

	case mpole.ZBisect:
		vectorR := vectorV.Add(vectorW).Normalized()
		vectorS := vectorU.Cross(vectorR).Normalized()

		vectorUR := vectorR.Cross(vectorU).Normalized()
		vectorUS := vectorS.Cross(vectorU).Normalized()

		cosUR := vectorU.Dot(vectorR)
		sinUR := math.Sqrt(1 - cosUR*cosUR)
		cosVS := vectorV.Dot(vectorS)
		sinVS := math.Sqrt(1 - cosVS*cosVS)
		cosWS := vectorW.Dot(vectorS)
		sinWS := math.Sqrt(1 - cosWS*cosWS)

		t1 := vectorV.Sub(vectorS.Scale(cosVS)).Normalized()
		t2 := vectorW.Sub(vectorS.Scale(cosWS)).Normalized()

		ut1cos := vectorU.Dot(t1)
		ut1sin := math.Sqrt(1 - ut1cos*ut1cos)
		ut2cos := vectorU.Dot(t2)
		ut2sin := math.Sqrt(1 - ut2cos*ut2cos)

		dphiR := -vectorR.Dot(torque)
		dphiS := -vectorS.Dot(torque)

		factor1 := dphiR / (normU * sinUR)
		factor2 := dphiS / normU
		factor3 := dphiU / (normV * (ut1sin + ut2sin))
		factor4 := dphiU / (normW * (ut1sin + ut2sin))

		forceU := vectorUR.Scale(factor1).Add(vectorUS.Scale(factor2))
		forceV := vectorS.Scale(sinVS).Sub(t1.Scale(cosVS)).Scale(factor3)
		forceW := vectorS.Scale(sinWS).Sub(t2.Scale(cosWS)).Scale(factor4)
		tf.Z = forceU
		tf.X = forceV
		tf.Y = forceW
		tf.Particle = forceU.Add(forceV).Add(forceW).Scale(-1)

	case mpole.ThreeFold:
		du := vectorUW.Scale(dphiW / (normU * sinUW)).
			Add(vectorUV.Scale(dphiV / (normU * sinUV))).
			Sub(vectorUW.Scale(dphiU / (normU * sinUW))).
			Sub(vectorUV.Scale(dphiU / (normU * sinUV))).
			Scale(1.0 / 3.0)
		dv := vectorVW.Scale(dphiW / (normV * sinVW)).
			Sub(vectorUV.Scale(dphiU / (normV * sinUV))).
			Sub(vectorVW.Scale(dphiV / (normV * sinVW))).
			Add(vectorUV.Scale(dphiV / (normV * sinUV))).
			Scale(1.0 / 3.0)
		dw := vectorUW.Scale(-dphiU / (normW * sinUW)).
			Sub(vectorVW.Scale(dphiV / (normW * sinVW))).
			Add(vectorUW.Scale(dphiW / (normW * sinUW))).
			Add(vectorVW.Scale(dphiW / (normW * sinVW))).
			Scale(1.0 / 3.0)
		tf.Z = du
		tf.X = dv
		if hasY {
			tf.Y = dw
		}
		tf.Particle = du.Add(dv).Add(dw).Scale(-1)

	case mpole.ZOnly:
		du := vectorUV.Scale(dphiV / (normU * sinUV)).Add(vectorUW.Scale(dphiW / normU))
		tf.Z = du
		tf.Particle = du.Scale(-1)
	}
	return tf
}
