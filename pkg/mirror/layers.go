package mirror

import (
	"math"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

// Layer identifies one of the behavior layers, listed from highest precedence.
type Layer string

const (
	LayerNone         Layer = ""
	LayerEnding       Layer = "ending"
	LayerReveal       Layer = "reveal"
	LayerFreeze       Layer = "freeze"
	LayerIndependence Layer = "independence"
	LayerDrift        Layer = "drift"
	LayerAutonomous   Layer = "autonomous"
)

// Variant names.
const (
	DriftPause = "pause"
	DriftSlow  = "slow"
	DriftLook  = "look"

	AnomalySideStep    = "sideStep"
	AnomalyHeadTilt    = "headTilt"
	AnomalyDelayedHead = "delayedHeadTracking"

	IndependenceDelayed  = "delayed"
	IndependenceOpposite = "opposite"
	IndependenceLook     = "independentLook"
)

var (
	driftVariants        = []string{DriftPause, DriftSlow, DriftLook}
	anomalyVariants      = []string{AnomalySideStep, AnomalyHeadTilt, AnomalyDelayedHead}
	independenceVariants = []string{IndependenceDelayed, IndependenceOpposite, IndependenceLook}
)

// frame is the target the director resolves for one tick.
type frame struct {
	target    Transform
	rates     Rates
	snapHead  bool
	observer  Pose
	plane     Plane
	eyeHeight float64
}

// headLookAt orients the head from the target body toward the live observer.
func (f *frame) headLookAt() geom.Quat {
	eye := f.target.Position.Add(geom.Up.Scale(f.eyeHeight))
	return geom.LookRotation(f.observer.Position.Sub(eye))
}

// span tracks progress through a fixed-length activity.
type span struct {
	elapsed  float64
	duration float64
}

func (s *span) advance(dt float64) { s.elapsed += dt }

func (s *span) done() bool { return s.elapsed >= s.duration-timeEpsilon }

func (s *span) progress() float64 {
	if s.duration <= 0 {
		return 1
	}
	return geom.Clamp(s.elapsed/s.duration, 0, 1)
}

// behavior is the active primary sub-state: exactly one of the drift,
// autonomous anomaly or independence variants below.
type behavior interface {
	layer() Layer
	variant() string
	timing() *span
	extraDelay() int
	apply(f *frame)
}

// driftPause holds the rendered pose.
type driftPause struct {
	s    span
	hold Transform
}

func (b *driftPause) layer() Layer { return LayerDrift }
func (b *driftPause) variant() string { return DriftPause }
func (b *driftPause) timing() *span { return &b.s }
func (b *driftPause) extraDelay() int { return 0 }
func (b *driftPause) apply(f *frame) { f.target = b.hold }

// driftSlow lags further behind and eases sluggishly.
type driftSlow struct {
	s      span
	frames int
	rates  Rates
}

func (b *driftSlow) layer() Layer { return LayerDrift }
func (b *driftSlow) variant() string { return DriftSlow }
func (b *driftSlow) timing() *span { return &b.s }
func (b *driftSlow) extraDelay() int { return b.frames }
func (b *driftSlow) apply(f *frame) { f.rates = b.rates }

// driftLook turns only the head toward the observer.
type driftLook struct {
	s span
}

func (b *driftLook) layer() Layer { return LayerDrift }
func (b *driftLook) variant() string { return DriftLook }
func (b *driftLook) timing() *span { return &b.s }
func (b *driftLook) extraDelay() int { return 0 }
func (b *driftLook) apply(f *frame) { f.target.Head = f.headLookAt() }

// sideStep sways the body sideways along the glass and back.
type sideStep struct {
	s      span
	amount float64
}

func (b *sideStep) layer() Layer { return LayerAutonomous }
func (b *sideStep) variant() string { return AnomalySideStep }
func (b *sideStep) timing() *span { return &b.s }
func (b *sideStep) extraDelay() int { return 0 }

func (b *sideStep) apply(f *frame) {
	offset := f.plane.Tangent().Scale(b.amount * geom.SineEnvelope(b.s.progress()))
	f.target.Position = f.target.Position.Add(offset)
}

// headTilt rolls the head in and back out.
type headTilt struct {
	s     span
	angle float64 // radians, signed
}

func (b *headTilt) layer() Layer { return LayerAutonomous }
func (b *headTilt) variant() string { return AnomalyHeadTilt }
func (b *headTilt) timing() *span { return &b.s }
func (b *headTilt) extraDelay() int { return 0 }

func (b *headTilt) apply(f *frame) {
	roll := geom.AxisAngle(geom.Forward, b.angle*geom.SineEnvelope(b.s.progress()))
	f.target.Head = f.target.Head.Mul(roll)
}

// delayedHead pins the body while the head keeps tracking the observer live.
type delayedHead struct {
	s    span
	hold Transform
}

func (b *delayedHead) layer() Layer { return LayerAutonomous }
func (b *delayedHead) variant() string { return AnomalyDelayedHead }
func (b *delayedHead) timing() *span { return &b.s }
func (b *delayedHead) extraDelay() int { return 0 }

func (b *delayedHead) apply(f *frame) {
	f.target.Position = b.hold.Position
	f.target.Rotation = b.hold.Rotation
	f.target.Head = f.headLookAt()
}

// independentDelay falls far behind, ramping the extra delay in.
type independentDelay struct {
	s      span
	frames int
	ramp   float64
}

func (b *independentDelay) layer() Layer { return LayerIndependence }
func (b *independentDelay) variant() string { return IndependenceDelayed }
func (b *independentDelay) timing() *span { return &b.s }
func (b *independentDelay) apply(*frame) {}

func (b *independentDelay) extraDelay() int {
	if b.ramp <= 0 {
		return b.frames
	}
	k := geom.Clamp(b.s.elapsed/b.ramp, 0, 1)
	return int(math.Round(float64(b.frames) * k))
}

// independentOpposite steps to the side a real mirror would not show.
type independentOpposite struct {
	s span
}

func (b *independentOpposite) layer() Layer { return LayerIndependence }
func (b *independentOpposite) variant() string { return IndependenceOpposite }
func (b *independentOpposite) timing() *span { return &b.s }
func (b *independentOpposite) extraDelay() int { return 0 }

func (b *independentOpposite) apply(f *frame) {
	f.target.Position = f.plane.SwapSide(f.target.Position)
	fwd := f.plane.SwapDirection(f.target.Rotation.Forward()).Flatten().NormalizeOr(f.plane.Facing())
	f.target.Rotation = geom.LookRotation(fwd)
	f.target.Head = f.target.Rotation
}

// independentLook snaps the head onto the observer regardless of delay.
type independentLook struct {
	s span
}

func (b *independentLook) layer() Layer { return LayerIndependence }
func (b *independentLook) variant() string { return IndependenceLook }
func (b *independentLook) timing() *span { return &b.s }
func (b *independentLook) extraDelay() int { return 0 }

func (b *independentLook) apply(f *frame) {
	f.target.Head = f.headLookAt()
	f.snapHead = true
}
