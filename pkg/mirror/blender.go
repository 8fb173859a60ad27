package mirror

import "github.com/teslashibe/go-mirror/pkg/geom"

// Blender eases the rendered transform toward the director's target and keeps
// it on the actor's side of the glass.
type Blender struct {
	plane   Plane
	overlap float64
	cur     Transform
	ready   bool
}

// NewBlender creates a blender with no rendered transform yet.
func NewBlender(plane Plane, overlap float64) *Blender {
	return &Blender{
		plane:   plane,
		overlap: overlap,
		cur:     Transform{Rotation: geom.Identity, Head: geom.Identity},
	}
}

// Ready reports whether a transform has been rendered at least once.
func (b *Blender) Ready() bool { return b.ready }

// Current returns the rendered transform.
func (b *Blender) Current() Transform { return b.cur }

// Snap jumps straight to target.
func (b *Blender) Snap(target Transform) {
	b.Set(target)
}

// Set places the rendered transform exactly, applying only the plane clamp.
func (b *Blender) Set(t Transform) {
	b.cur = Transform{
		Position: b.plane.Clamp(t.Position, b.overlap),
		Rotation: t.Rotation.Normalize(),
		Head:     t.Head.Normalize(),
	}
	b.ready = true
}

// Blend moves toward target with exponential smoothing at the given rates.
// snapHead places the head exactly on target instead of easing it.
func (b *Blender) Blend(target Transform, rates Rates, dt float64, snapHead bool) Transform {
	if !b.ready {
		b.Snap(target)
		return b.cur
	}

	k := geom.ExpFactor(rates.Position, dt)
	pos := b.cur.Position.Add(target.Position.Sub(b.cur.Position).Scale(k))
	rot := b.cur.Rotation.Slerp(target.Rotation, geom.ExpFactor(rates.Rotation, dt))
	head := target.Head
	if !snapHead {
		head = b.cur.Head.Slerp(target.Head, geom.ExpFactor(rates.Head, dt))
	}

	// Never let a bad frame poison the state.
	if !pos.IsFinite() {
		pos = target.Position
	}
	if !rot.IsFinite() {
		rot = target.Rotation
	}
	if !head.IsFinite() {
		head = target.Head
	}

	b.Set(Transform{Position: pos, Rotation: rot, Head: head})
	return b.cur
}
