package mirror

import (
	"github.com/teslashibe/go-mirror/pkg/geom"
)

// timeEpsilon absorbs float accumulation when comparing elapsed time against
// fixed durations.
const timeEpsilon = 1e-9

// freezeState is an active escalation freeze.
type freezeState struct {
	s    span
	hold Transform
}

// director owns the freeze, independence, drift and autonomous layers and
// resolves them into a single target transform each tick.
//
// Timers of a layer only count down while that layer could actually fire:
// drift and autonomous wait for the primary slot to be free, and nothing below
// an active freeze advances. A lower layer therefore never fires just to be
// overridden on the same tick.
type director struct {
	cfg   Config
	rng   Rand
	plane Plane
	emit  func(Event)

	active behavior

	driftTimer        float64
	autonomousTimer   float64
	independenceTimer float64

	freezeEnabled bool
	freezeTimer   float64
	freeze        *freezeState

	extraDelay int
}

func newDirector(cfg Config, rng Rand, plane Plane, emit func(Event)) *director {
	d := &director{cfg: cfg, rng: rng, plane: plane, emit: emit}
	d.rollDrift()
	d.rollAutonomous()
	d.rollIndependence()
	return d
}

func (d *director) rollDrift() { d.driftTimer = d.cfg.DriftInterval.Sample(d.rng) }
func (d *director) rollAutonomous() { d.autonomousTimer = d.cfg.AutonomousInterval.Sample(d.rng) }
func (d *director) rollIndependence() { d.independenceTimer = d.cfg.IndependenceInterval.Sample(d.rng) }
func (d *director) rollFreeze() { d.freezeTimer = d.cfg.FreezeInterval.Sample(d.rng) }

func (d *director) rollFor(l Layer) {
	switch l {
	case LayerDrift:
		d.rollDrift()
	case LayerAutonomous:
		d.rollAutonomous()
	case LayerIndependence:
		d.rollIndependence()
	}
}

// delayFrames is the history offset used for this tick.
func (d *director) delayFrames() int {
	n := d.cfg.BaseDelayFrames + d.extraDelay
	if d.active != nil {
		n += d.active.extraDelay()
	}
	return n
}

// anomalous reports whether anything is bending the reflection right now.
func (d *director) anomalous() bool {
	return d.active != nil || d.freeze != nil
}

// setFreezeEnabled toggles the freeze escalation. Disabling cancels an active
// freeze and clears the timer.
func (d *director) setFreezeEnabled(enabled bool) {
	if enabled == d.freezeEnabled {
		return
	}
	d.freezeEnabled = enabled
	if enabled {
		d.rollFreeze()
		return
	}
	d.endFreeze()
	d.freezeTimer = 0
}

// advance moves every layer timer forward by dt in precedence order.
// current is the transform on screen, captured by layers that hold a pose.
func (d *director) advance(dt float64, current Transform) {
	if d.freeze != nil {
		d.freeze.s.advance(dt)
		if d.freeze.s.done() {
			d.endFreeze()
			d.rollFreeze()
		}
		return
	}
	if d.freezeEnabled {
		d.freezeTimer -= dt
		if d.freezeTimer <= 0 {
			d.startFreeze(current)
			return
		}
	}

	if d.active != nil {
		d.active.timing().advance(dt)
		if d.active.timing().done() {
			d.endActive()
		}
	}

	if d.active == nil || d.active.layer() != LayerIndependence {
		d.independenceTimer -= dt
		if d.independenceTimer <= 0 {
			d.startIndependence(independenceVariants[d.rng.Intn(len(independenceVariants))])
			return
		}
	}

	if d.active != nil {
		return
	}
	d.driftTimer -= dt
	d.autonomousTimer -= dt
	switch {
	case d.driftTimer <= 0:
		d.startDrift(driftVariants[d.rng.Intn(len(driftVariants))], current)
		if d.autonomousTimer <= 0 {
			d.rollAutonomous()
		}
	case d.autonomousTimer <= 0:
		d.startAutonomous(anomalyVariants[d.rng.Intn(len(anomalyVariants))], current)
	}
}

// resolve computes the target for this tick from the delayed history entry
// and whichever layers are active.
func (d *director) resolve(observer Pose, history *History) (frame, int) {
	delay := d.delayFrames()
	delayed, ok := history.Peek(delay)
	if !ok {
		delayed = observer
	}

	pos := d.plane.ReflectPosition(delayed.Position, d.cfg.EyeHeight, d.cfg.FloorHeight, d.cfg.PlaneOverlap)
	rot := geom.LookRotation(d.plane.ReflectForward(delayed.Forward))

	f := frame{
		target:    Transform{Position: pos, Rotation: rot, Head: rot},
		rates:     d.cfg.Rates,
		observer:  observer,
		plane:     d.plane,
		eyeHeight: d.cfg.EyeHeight,
	}
	if d.active != nil {
		d.active.apply(&f)
	}
	if d.freeze != nil {
		f.target = d.freeze.hold
		f.rates = d.cfg.Rates
		f.snapHead = false
	}
	f.target.Position = d.plane.Clamp(f.target.Position, d.cfg.PlaneOverlap)
	return f, delay
}

func (d *director) startFreeze(current Transform) {
	d.freeze = &freezeState{s: span{duration: d.cfg.FreezeDuration.Seconds()}, hold: current}
	d.emit(Event{Kind: EventLayerStarted, Layer: LayerFreeze, Duration: d.freeze.s.duration})
}

func (d *director) endFreeze() {
	if d.freeze == nil {
		return
	}
	d.freeze = nil
	d.emit(Event{Kind: EventLayerEnded, Layer: LayerFreeze})
}

func (d *director) start(b behavior) {
	d.active = b
	d.emit(Event{
		Kind:     EventLayerStarted,
		Layer:    b.layer(),
		Variant:  b.variant(),
		Duration: b.timing().duration,
	})
}

// endActive finishes the primary behavior and re-rolls its layer timer.
func (d *director) endActive() {
	if d.active == nil {
		return
	}
	b := d.active
	d.active = nil
	d.rollFor(b.layer())
	d.emit(Event{Kind: EventLayerEnded, Layer: b.layer(), Variant: b.variant()})
}

func (d *director) startDrift(variant string, current Transform) {
	switch variant {
	case DriftPause:
		d.start(&driftPause{s: span{duration: d.cfg.DriftPauseDuration.Sample(d.rng)}, hold: current})
	case DriftSlow:
		d.start(&driftSlow{
			s:      span{duration: d.cfg.DriftSlowDuration.Seconds()},
			frames: d.cfg.DriftSlowExtraFrames,
			rates:  d.cfg.SlowRates,
		})
	case DriftLook:
		d.start(&driftLook{s: span{duration: d.cfg.DriftLookDuration.Seconds()}})
	}
}

func (d *director) startAutonomous(variant string, current Transform) {
	switch variant {
	case AnomalySideStep:
		dur := d.cfg.SideStepDuration.Sample(d.rng)
		amount := (d.rng.Float64()*2 - 1) * d.cfg.SideStepAmplitude
		d.start(&sideStep{s: span{duration: dur}, amount: amount})
	case AnomalyHeadTilt:
		angle := geom.Radians(d.cfg.HeadTiltDegrees.Sample(d.rng))
		if d.rng.Float64() < 0.5 {
			angle = -angle
		}
		d.start(&headTilt{s: span{duration: d.cfg.HeadTiltDuration.Seconds()}, angle: angle})
	case AnomalyDelayedHead:
		d.start(&delayedHead{s: span{duration: d.cfg.DelayedHeadTrackDuration.Sample(d.rng)}, hold: current})
	}
}

// startIndependence preempts any drift or autonomous behavior.
func (d *director) startIndependence(variant string) {
	if d.active != nil {
		d.endActive()
	}
	s := span{duration: d.cfg.IndependenceDuration.Sample(d.rng)}
	switch variant {
	case IndependenceDelayed:
		d.start(&independentDelay{
			s:      s,
			frames: d.cfg.IndependenceDelayFrames.Sample(d.rng),
			ramp:   d.cfg.IndependenceDelayRamp.Seconds(),
		})
	case IndependenceOpposite:
		d.start(&independentOpposite{s: s})
	case IndependenceLook:
		d.start(&independentLook{s: s})
	}
}

// cancelTransient drops every active layer and re-rolls all timers, as when
// the observer looks away.
func (d *director) cancelTransient() {
	d.endActive()
	d.endFreeze()
	d.rollDrift()
	d.rollAutonomous()
	d.rollIndependence()
	if d.freezeEnabled {
		d.rollFreeze()
	}
}
