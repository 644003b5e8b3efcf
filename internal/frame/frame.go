// Package frame rotates molecular-frame multipoles into the lab frame and
// maps frame torques back onto forces on the anchor particles.
package frame

import (
	"math"

	"github.com/san-kum/mpole/internal/mpole"
)

// Rotation holds the lab-frame axes of a particle's local frame. The rows
// are the X, Y and Z axes expressed in lab coordinates.
type Rotation struct {
	X, Y, Z mpole.Vec3
}

// Identity is the rotation of an unanchored particle.
var Identity = Rotation{
	X: mpole.Vec3{X: 1},
	Y: mpole.Vec3{Y: 1},
	Z: mpole.Vec3{Z: 1},
}

// Build constructs the local frame for a particle at pos. zPos is required
// for every anchored axis type; xPos and yPos are consulted per axis type
// and may be zero-valued otherwise.
func Build(axis mpole.AxisType, pos, zPos, xPos, yPos mpole.Vec3) (Rotation, error) {
	if axis == mpole.NoAxisType {
		return Identity, nil
	}

	vz := zPos.Sub(pos).Normalized()
	var vx mpole.Vec3

	switch axis {
	case mpole.ZOnly:
		vx = arbitraryX(vz)
	case mpole.ZThenX:
		vx = xPos.Sub(pos)
	case mpole.Bisector:
		vx = xPos.Sub(pos).Normalized()
		vz = vz.Add(vx).Normalized()
	case mpole.ZBisect:
		vx = xPos.Sub(pos).Normalized()
		vy := yPos.Sub(pos).Normalized()
		vx = vx.Add(vy).Normalized()
	case mpole.ThreeFold:
		vx = xPos.Sub(pos).Normalized()
		vy := yPos.Sub(pos).Normalized()
		vz = vz.Add(vx).Add(vy).Normalized()
	default:
		return Identity, mpole.ErrInvalidAxisType
	}

	// Gram-Schmidt X against Z.
	vx = vx.Sub(vz.Scale(vz.Dot(vx))).Normalized()
	vy := vz.Cross(vx)
	return Rotation{X: vx, Y: vy, Z: vz}, nil
}

// arbitraryX picks a lab axis not nearly parallel to z.
func arbitraryX(vz mpole.Vec3) mpole.Vec3 {
	if math.Abs(vz.X) < 0.866 {
		return mpole.Vec3{X: 1}
	}
	return mpole.Vec3{Y: 1}
}

// IsImproper reports whether the tetrahedron (particle, Z, X, Y) is
// left-handed. Only meaningful for ZThenX frames with a Y anchor; the
// caller negates the chirality-sensitive multipole components when true.
func IsImproper(pos, zPos, xPos, yPos mpole.Vec3) bool {
	deltaAD := pos.Sub(yPos)
	deltaBD := zPos.Sub(yPos)
	deltaCD := xPos.Sub(yPos)
	volume := deltaBD.Cross(deltaCD).Dot(deltaAD)
	return volume < 0
}

// FlipChiral negates the y-sensitive components of a molecular-frame
// multipole in place, reflecting it through the frame's xz plane.
func FlipChiral(dipole *mpole.Vec3, quad *mpole.Quadrupole, sphD *[3]float64, sphQ *[5]float64) {
	dipole.Y *= -1
	quad[mpole.QXY] *= -1
	quad[mpole.QYZ] *= -1
	sphD[2] *= -1
	sphQ[2] *= -1
	sphQ[4] *= -1
}

// RotateDipole returns the lab-frame image of a molecular-frame dipole.
func (r Rotation) RotateDipole(d mpole.Vec3) mpole.Vec3 {
	return r.X.Scale(d.X).Add(r.Y.Scale(d.Y)).Add(r.Z.Scale(d.Z))
}

// RotateQuadrupole returns the lab-frame image of a molecular-frame
// quadrupole via the quadratic form R^T Q R.
func (r Rotation) RotateQuadrupole(q mpole.Quadrupole) mpole.Quadrupole {
	rows := [3][3]float64{
		{r.X.X, r.X.Y, r.X.Z},
		{r.Y.X, r.Y.Y, r.Y.Z},
		{r.Z.X, r.Z.Y, r.Z.Z},
	}
	m := [3][3]float64{
		{q[mpole.QXX], q[mpole.QXY], q[mpole.QXZ]},
		{q[mpole.QXY], q[mpole.QYY], q[mpole.QYZ]},
		{q[mpole.QXZ], q[mpole.QYZ], q[mpole.QZZ]},
	}
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					out[i][j] += rows[k][i] * rows[l][j] * m[k][l]
				}
			}
		}
	}
	return mpole.Quadrupole{out[0][0], out[0][1], out[0][2], out[1][1], out[1][2], out[2][2]}
}

// SphericalDipole converts a cartesian dipole to the spherical-harmonic
// ordering {z, x, y}.
func SphericalDipole(d mpole.Vec3) [3]float64 {
	return [3]float64{d.Z, d.X, d.Y}
}

// SphericalQuadrupole converts a packed traceless quadrupole to its
// 5-component spherical-harmonic form.
func SphericalQuadrupole(q mpole.Quadrupole) [5]float64 {
	s := math.Sqrt(3)
	return [5]float64{
		3 * q[mpole.QZZ],
		(2 / s) * 3 * q[mpole.QXZ],
		(2 / s) * 3 * q[mpole.QYZ],
		(1 / s) * 3 * (q[mpole.QXX] - q[mpole.QYY]),
		(2 / s) * 3 * q[mpole.QXY],
	}
}

// sphericalAxes reorders the frame axes to the {z, x, y} convention used
// by the spherical-harmonic rotation.
func (r Rotation) sphericalAxes() [3][3]float64 {
	return [3][3]float64{
		{r.Z.Z, r.X.Z, r.Y.Z},
		{r.Z.X, r.X.X, r.Y.X},
		{r.Z.Y, r.X.Y, r.Y.Y},
	}
}

// RotateSphericalDipole rotates a {z,x,y}-ordered dipole into the lab frame.
func (r Rotation) RotateSphericalDipole(d [3]float64) [3]float64 {
	d1 := r.sphericalAxes()
	var out [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i] += d1[i][j] * d[j]
		}
	}
	return out
}

// RotateSphericalQuadrupole rotates a 5-component spherical quadrupole via
// the closed-form rank-2 Wigner rotation induced by the frame axes.
func (r Rotation) RotateSphericalQuadrupole(q [5]float64) [5]float64 {
	d2 := sphericalQuadrupoleRotation(r.sphericalAxes())
	var out [5]float64
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			out[i] += d2[i][j] * q[j]
		}
	}
	return out
}

func sphericalQuadrupoleRotation(d1 [3][3]float64) [5][5]float64 {
	s3 := math.Sqrt(3)
	var d2 [5][5]float64
	d2[0][0] = 0.5 * (3.0*d1[0][0]*d1[0][0] - 1.0)
	d2[1][0] = s3 * d1[0][0] * d1[1][0]
	d2[2][0] = s3 * d1[0][0] * d1[2][0]
	d2[3][0] = 0.5 * s3 * (d1[1][0]*d1[1][0] - d1[2][0]*d1[2][0])
	d2[4][0] = s3 * d1[1][0] * d1[2][0]
	d2[0][1] = s3 * d1[0][0] * d1[0][1]
	d2[1][1] = d1[1][0]*d1[0][1] + d1[0][0]*d1[1][1]
	d2[2][1] = d1[2][0]*d1[0][1] + d1[0][0]*d1[2][1]
	d2[3][1] = d1[1][0]*d1[1][1] - d1[2][0]*d1[2][1]
	d2[4][1] = d1[2][0]*d1[1][1] + d1[1][0]*d1[2][1]
	d2[0][2] = s3 * d1[0][0] * d1[0][2]
	d2[1][2] = d1[1][0]*d1[0][2] + d1[0][0]*d1[1][2]
	d2[2][2] = d1[2][0]*d1[0][2] + d1[0][0]*d1[2][2]
	d2[3][2] = d1[1][0]*d1[1][2] - d1[2][0]*d1[2][2]
	d2[4][2] = d1[2][0]*d1[1][2] + d1[1][0]*d1[2][2]
	d2[0][3] = 0.5 * s3 * (d1[0][1]*d1[0][1] - d1[0][2]*d1[0][2])
	d2[1][3] = d1[0][1]*d1[1][1] - d1[0][2]*d1[1][2]
	d2[2][3] = d1[0][1]*d1[2][1] - d1[0][2]*d1[2][2]
	d2[3][3] = 0.5 * (d1[1][1]*d1[1][1] - d1[2][1]*d1[2][1] - d1[1][2]*d1[1][2] + d1[2][2]*d1[2][2])
	d2[4][3] = d1[1][1]*d1[2][1] - d1[1][2]*d1[2][2]
	d2[0][4] = s3 * d1[0][1] * d1[0][2]
	d2[1][4] = d1[1][1]*d1[0][2] + d1[0][1]*d1[1][2]
	d2[2][4] = d1[2][1]*d1[0][2] + d1[0][1]*d1[2][2]
	d2[3][4] = d1[1][1]*d1[1][2] - d1[2][1]*d1[2][2]
	d2[4][4] = d1[2][1]*d1[1][2] + d1[1][1]*d1[2][2]
	return d2
}
