package mirror

import (
	"math"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

// Plane is the mirror glass: a fixed center and a unit normal pointing out of
// the glass toward the observer's side.
type Plane struct {
	Center geom.Vec3 `json:"center"`
	Normal geom.Vec3 `json:"normal"`
}

// NewPlane normalizes normal, falling back to +Z when it is degenerate.
func NewPlane(center, normal geom.Vec3) Plane {
	return Plane{Center: center, Normal: normal.NormalizeOr(geom.Forward)}
}

// SignedDistance is positive on the observer's side of the glass.
func (p Plane) SignedDistance(point geom.Vec3) float64 {
	return point.Sub(p.Center).Dot(p.Normal)
}

// Tangent is the horizontal axis lying in the glass.
func (p Plane) Tangent() geom.Vec3 {
	return geom.Up.Cross(p.Normal).NormalizeOr(geom.Right)
}

// Facing is the horizontal direction out of the glass, toward the observer.
func (p Plane) Facing() geom.Vec3 {
	return p.Normal.Flatten().NormalizeOr(geom.Forward)
}

// ReflectPosition mirrors an observer eye position into an actor root position:
// the normal component is reflected about the center, the root drops by
// eyeHeight (never below floor), and the result is clamped to at most overlap
// past the glass.
func (p Plane) ReflectPosition(eye geom.Vec3, eyeHeight, floor, overlap float64) geom.Vec3 {
	d := p.SignedDistance(eye)
	r := eye.Sub(p.Normal.Scale(2 * d))
	r.Y = math.Max(floor, eye.Y-eyeHeight)
	return p.Clamp(r, overlap)
}

// ReflectForward mirrors a facing direction and flattens it onto the floor.
func (p Plane) ReflectForward(forward geom.Vec3) geom.Vec3 {
	return forward.Reflect(p.Normal).Flatten().NormalizeOr(p.Facing())
}

// Clamp pulls point back so it is never more than overlap past the glass.
func (p Plane) Clamp(point geom.Vec3, overlap float64) geom.Vec3 {
	d := p.SignedDistance(point)
	if d > overlap {
		point = point.Sub(p.Normal.Scale(d - overlap))
	}
	return point
}

// SwapSide negates the tangent component of point relative to the center.
func (p Plane) SwapSide(point geom.Vec3) geom.Vec3 {
	t := p.Tangent()
	return point.Sub(t.Scale(2 * point.Sub(p.Center).Dot(t)))
}

// SwapDirection negates the tangent component of a direction.
func (p Plane) SwapDirection(dir geom.Vec3) geom.Vec3 {
	return dir.Reflect(p.Tangent())
}
