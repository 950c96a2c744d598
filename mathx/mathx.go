// Package mathx holds the handful of 3D helpers the locomotion code needs
// beyond what mathgl ships: safe normalization, vector lerp, tangent bases
// and look-rotations.
package mathx

import (
	"github.com/go-gl/mathgl/mgl64"
)

// degenerate vectors below this squared length are treated as zero.
const epsSq = 1e-12

// SafeNormalize returns v normalized, or fallback when v is too short to
// carry a direction.
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	if v.LenSqr() < epsSq {
		return fallback
	}
	return v.Normalize()
}

// Lerp interpolates a toward b by t, unclamped.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// ProjectOnPlane removes from v its component along the unit normal n.
func ProjectOnPlane(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}

// Basis returns two unit vectors spanning the plane orthogonal to the unit
// axis, forming a right-handed frame with it.
func Basis(axis mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ref := mgl64.Vec3{0, 1, 0}
	if axis.Y() > 0.99 || axis.Y() < -0.99 {
		ref = mgl64.Vec3{1, 0, 0}
	}

	t1 := ref.Cross(axis).Normalize()
	t2 := axis.Cross(t1)
	return t1, t2
}

// LookRotation builds the rotation whose local +Z points along forward and
// whose local +Y points along up. Forward is re-orthogonalized against up,
// so the two need not be perpendicular; they must not be parallel.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	u := up.Normalize()

	f := ProjectOnPlane(forward, u)
	if f.LenSqr() < epsSq {
		// Forward is parallel to up; pick any tangent.
		f, _ = Basis(u)
	} else {
		f = f.Normalize()
	}

	r := u.Cross(f)

	m := mgl64.Mat3FromCols(r, u, f)
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}
