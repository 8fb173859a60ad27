// Package mirror simulates a reflection that is almost, but not quite, the
// observer's mirror image.
//
// An Actor is advanced once per host frame with the observer's pose. It
// replays that pose from a short history, reflected through the mirror plane,
// and layers timed anomalies on top: ambient drift, autonomous anomalies,
// independence, escalation freezes, a one-shot reveal, and a terminal ending
// sequence. All state is owned by the Actor; it is not safe for concurrent use.
//
// Hosts should call DrainEvents every frame. Undrained events are kept up to
// MaxPendingEvents, after which the oldest are discarded.
package mirror

import (
	"io"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

// Option configures an Actor.
type Option func(*Actor)

// WithRand injects the random source used for every timer and variant.
func WithRand(r Rand) Option {
	return func(a *Actor) { a.rng = r }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(a *Actor) { a.log = l }
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(a *Actor) { a.id = id }
}

// restoreState eases an interrupted anomaly back to the canonical pose.
type restoreState struct {
	s    span
	from Transform
}

// Actor is the reflection.
type Actor struct {
	id    string
	cfg   Config
	plane Plane
	gate  Gate
	rng   Rand
	log   *slog.Logger

	history *History
	dir     *director
	blend   *Blender
	reveal  reveal
	ending  endingSequence
	restore *restoreState

	visible  bool
	tracking bool // last tick went through normal tracking while visible
	residual bool // hidden while an anomaly was bending the pose

	observer Pose
	target   Transform
	delay    int

	tick   uint64
	clock  float64
	events []Event
}

// NewActor creates the reflection for a mirror. Pass WithRand for
// deterministic behavior.
func NewActor(plane Plane, cfg Config, opts ...Option) *Actor {
	plane = NewPlane(plane.Center, plane.Normal)
	a := &Actor{
		cfg:     cfg,
		plane:   plane,
		gate:    NewGate(plane, cfg),
		history: NewHistory(cfg.HistoryCapacity),
		blend:   NewBlender(plane, cfg.PlaneOverlap),
		target:  Transform{Rotation: geom.Identity, Head: geom.Identity},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = NewRand(0)
	}
	if a.log == nil {
		a.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if a.id == "" {
		a.id = uuid.NewString()
	}
	a.log = a.log.With("session", a.id)
	a.observer = Pose{Position: plane.Center.Add(plane.Normal), Forward: plane.Normal.Neg()}
	a.dir = newDirector(cfg, a.rng, plane, a.emit)
	return a
}

// ID returns the session identifier.
func (a *Actor) ID() string { return a.id }

// Plane returns the mirror plane.
func (a *Actor) Plane() Plane { return a.plane }

// Config returns the tuning in use.
func (a *Actor) Config() Config { return a.cfg }

// Visible reports whether the actor should be rendered.
func (a *Actor) Visible() bool { return a.visible }

// Transform returns the rendered body and head transform.
func (a *Actor) Transform() Transform { return a.blend.Current() }

// SetExtraDelay adds escalation delay frames, effective on the next Update.
// Values beyond the history capacity replay the oldest recorded pose.
func (a *Actor) SetExtraDelay(frames int) {
	a.dir.extraDelay = min(max(frames, 0), a.history.Cap())
}

// SetFreezeEnabled toggles freeze escalation. Disabling resets its timer.
func (a *Actor) SetFreezeEnabled(enabled bool) {
	if a.ending.phase != EndingIdle {
		return
	}
	a.dir.setFreezeEnabled(enabled)
}

// Update advances the simulation by one host frame. dt is in seconds and is
// clamped to Config.MaxDelta.
func (a *Actor) Update(observer Pose, dt float64) {
	dt = a.sanitizeDelta(dt)
	observer = a.sanitizeObserver(observer)
	a.tick++
	a.clock += dt
	a.observer = observer

	switch {
	case a.ending.phase != EndingIdle:
		a.updateEnding(dt)
	case a.reveal.state == revealPending || a.reveal.state == revealRunning:
		a.updateReveal(observer, dt)
	case a.reveal.state == revealDone:
		a.setVisible(false)
	default:
		a.updateTracking(observer, dt)
	}
}

// updateTracking is the normal path: gate, record, direct, blend.
func (a *Actor) updateTracking(observer Pose, dt float64) {
	if !a.gate.IsVisible(observer) {
		if a.tracking {
			a.loseSight()
		}
		a.setVisible(false)
		return
	}

	a.history.Record(observer)
	sighted := !a.tracking
	a.tracking = true
	if !sighted {
		a.dir.advance(dt, a.blend.Current())
	}

	f, delay := a.dir.resolve(observer, a.history)
	a.target = f.target
	a.delay = delay

	switch {
	case sighted:
		a.onSighted(observer, f.target)
	case a.restore != nil:
		a.stepRestore(dt, f.target)
	default:
		a.blend.Blend(f.target, f.rates, dt, f.snapHead)
	}
	a.setVisible(true)
}

// loseSight cancels every transient layer when the observer looks away.
func (a *Actor) loseSight() {
	a.residual = a.dir.anomalous() || a.restore != nil
	a.dir.cancelTransient()
	a.restore = nil
	a.tracking = false
}

// onSighted places the actor on the first visible tick. If an anomaly was cut
// off while hidden and the observer is looking straight at the glass, the pose
// eases back instead of snapping.
func (a *Actor) onSighted(observer Pose, target Transform) {
	residual := a.residual
	a.residual = false

	if residual && a.blend.Ready() &&
		a.gate.Alignment(observer) >= a.cfg.DirectLookThreshold &&
		a.blend.Current().Position.Dist(target.Position) > a.cfg.RestoreThreshold {
		a.restore = &restoreState{
			s:    span{duration: a.cfg.RestoreDuration.Sample(a.rng)},
			from: a.blend.Current(),
		}
		a.emit(Event{Kind: EventRestoreStarted, Duration: a.restore.s.duration})
		return
	}
	a.blend.Snap(target)
}

func (a *Actor) stepRestore(dt float64, target Transform) {
	r := a.restore
	r.s.advance(dt)
	k := geom.Smoothstep(r.s.progress())
	a.blend.Set(Transform{
		Position: r.from.Position.Lerp(target.Position, k),
		Rotation: r.from.Rotation.Slerp(target.Rotation, k),
		Head:     r.from.Head.Slerp(target.Head, k),
	})
	if r.s.done() {
		a.restore = nil
	}
}

func (a *Actor) setVisible(v bool) {
	if v == a.visible {
		return
	}
	a.visible = v
	if v {
		a.emit(Event{Kind: EventShown})
	} else {
		a.emit(Event{Kind: EventHidden})
	}
}

// sanitizeDelta clamps stalled frames and replaces garbage deltas.
func (a *Actor) sanitizeDelta(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return a.cfg.NominalDelta.Seconds()
	}
	if dt < 0 {
		return 0
	}
	return math.Min(dt, a.cfg.MaxDelta.Seconds())
}

// sanitizeObserver substitutes the last good values for non-finite input.
func (a *Actor) sanitizeObserver(p Pose) Pose {
	if !p.Position.IsFinite() {
		p.Position = a.observer.Position
	}
	fallback := a.observer.Forward.NormalizeOr(a.plane.Normal.Neg())
	p.Forward = p.Forward.NormalizeOr(fallback)
	return p
}
