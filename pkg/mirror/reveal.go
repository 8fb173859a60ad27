package mirror

import (
	"math"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

type revealState int

const (
	revealIdle revealState = iota
	revealPending
	revealRunning
	revealDone
)

func (s revealState) String() string {
	switch s {
	case revealPending:
		return "pending"
	case revealRunning:
		return "running"
	case revealDone:
		return "done"
	}
	return "idle"
}

// reveal is the one-shot approach-and-vanish sequence.
type reveal struct {
	state        revealState
	triggered    bool
	s            span
	from         Transform
	to           geom.Vec3
	toRot        geom.Quat
	completeFlag bool
}

// RequestReveal arms the one-shot reveal. It returns false if the reveal was
// already triggered or the ending sequence owns the actor.
func (a *Actor) RequestReveal() bool {
	if a.reveal.triggered || a.ending.phase != EndingIdle {
		return false
	}
	a.reveal.triggered = true
	a.reveal.state = revealPending
	return true
}

// ConsumeRevealComplete returns true exactly once after the reveal finishes.
func (a *Actor) ConsumeRevealComplete() bool {
	if !a.reveal.completeFlag {
		return false
	}
	a.reveal.completeFlag = false
	return true
}

func (a *Actor) beginReveal(observer Pose) {
	if !a.blend.Ready() {
		f, _ := a.dir.resolve(observer, a.history)
		a.blend.Snap(f.target)
	}
	a.dir.endActive()
	a.dir.endFreeze()
	a.restore = nil

	from := a.blend.Current()
	d := a.plane.SignedDistance(from.Position)
	stop := math.Min(d+a.cfg.RevealAdvance, a.cfg.PlaneOverlap)

	r := &a.reveal
	r.state = revealRunning
	r.s = span{duration: a.cfg.RevealDuration.Seconds()}
	r.from = from
	r.to = from.Position.Add(a.plane.Normal.Scale(stop - d))
	r.toRot = geom.LookRotation(a.plane.Facing())

	a.emit(Event{Kind: EventRevealStarted, Layer: LayerReveal, Duration: r.s.duration})
}

// updateReveal plays the scripted motion; it bypasses the blender.
func (a *Actor) updateReveal(observer Pose, dt float64) {
	r := &a.reveal
	if r.state == revealPending {
		a.beginReveal(observer)
	} else {
		r.s.advance(dt)
	}

	k := r.s.progress()
	rot := r.from.Rotation.Slerp(r.toRot, k)
	a.target = Transform{
		Position: r.from.Position.Lerp(r.to, k),
		Rotation: rot,
		Head:     r.from.Head.Slerp(r.toRot, k),
	}
	a.blend.Set(a.target)

	if r.s.done() {
		r.state = revealDone
		r.completeFlag = true
		a.emit(Event{Kind: EventRevealComplete, Layer: LayerReveal})
		a.log.Info("reveal complete", "tick", a.tick)
		a.setVisible(false)
		return
	}
	a.setVisible(true)
}
