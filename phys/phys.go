// Package phys defines the collision-query boundary between the locomotion
// code and whatever physics engine hosts it. Queries are synchronous and run
// against the engine's current frame snapshot.
package phys

import "github.com/go-gl/mathgl/mgl64"

// Mask filters which collision layers a cast may hit.
type Mask uint32

// MaskAll hits every layer.
const MaskAll Mask = ^Mask(0)

// Hit describes a ray or sphere cast contact.
type Hit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Caster is the query service the host engine must supply. Directions are
// expected to be unit vectors; callers normalize before casting.
type Caster interface {
	Raycast(origin, dir mgl64.Vec3, maxDist float64, mask Mask) (Hit, bool)
	SphereCast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDist float64, mask Mask) (Hit, bool)
}
