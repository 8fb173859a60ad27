// Package sim hosts a mirror actor: it drives Update at a fixed tick rate,
// applies external triggers on the update goroutine, plays scripted
// scenarios and publishes frames and events.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-mirror/pkg/mirror"
)

const (
	DefaultTickInterval = time.Second / 60
	DefaultEventBuffer  = 256
	commandBuffer       = 64
)

// Publish topics.
const (
	TopicFrame = "frame"
	TopicEvent = "event"
)

// Publisher receives frames and events; hub.Hub satisfies it.
type Publisher interface {
	Publish(topic string, v any) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithTickInterval sets the host frame period for Run.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithPublisher streams frames and events to p.
func WithPublisher(p Publisher) Option {
	return func(r *Runner) { r.pub = p }
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithScenario drives the observer and narrative triggers from s.
func WithScenario(s *Scenario) Option {
	return func(r *Runner) { r.play = &playback{scenario: s} }
}

// WithObserver sets the fixed observer pose used without a scenario.
func WithObserver(p mirror.Pose) Option {
	return func(r *Runner) { r.observer = p }
}

// WithEventBuffer sets how many recent events are retained for Events.
func WithEventBuffer(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.eventCap = n
		}
	}
}

// WithEscalation applies an initial escalation level.
func WithEscalation(level int) Option {
	return func(r *Runner) { r.initial = &level }
}

type command struct {
	fn   func()
	done chan struct{}
}

// Runner owns one Actor. Only the goroutine calling Step (directly or via
// Run) touches the actor; everything else goes through the command queue.
type Runner struct {
	actor    *mirror.Actor
	log      *slog.Logger
	pub      Publisher
	interval time.Duration
	play     *playback
	cmds     chan command
	stopped  chan struct{}
	stopOnce sync.Once
	initial  *int

	// Update goroutine only.
	observer   mirror.Pose
	elapsed    float64
	escalation int

	mu       sync.RWMutex
	snap     mirror.Snapshot
	events   []mirror.Event
	eventCap int
	level    int
	finished bool
}

// DefaultObserver stands in front of the glass at eye height, looking at it.
func DefaultObserver(plane mirror.Plane) mirror.Pose {
	pos := plane.Center.Add(plane.Normal.Scale(4))
	pos.Y = 1.6
	return mirror.NewPose(pos, plane.Normal.Neg())
}

// NewRunner wraps actor.
func NewRunner(actor *mirror.Actor, opts ...Option) *Runner {
	r := &Runner{
		actor:    actor,
		interval: DefaultTickInterval,
		cmds:     make(chan command, commandBuffer),
		stopped:  make(chan struct{}),
		observer: DefaultObserver(actor.Plane()),
		eventCap: DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r.log = r.log.With("session", actor.ID())
	if r.play != nil {
		r.observer = r.play.scenario.ObserverAt(0)
	}
	if r.initial != nil {
		r.escalate(*r.initial)
		r.level = r.escalation
	}
	r.snap = actor.Snapshot()
	return r
}

// Interval returns the host frame period.
func (r *Runner) Interval() time.Duration { return r.interval }

// Run ticks the actor until ctx is cancelled. dt is the measured wall time
// between ticks; the actor clamps spikes.
func (r *Runner) Run(ctx context.Context) error {
	defer r.stop()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("runner started", "interval", r.interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("runner stopped", "tick", r.Snapshot().Tick)
			return nil
		case now := <-ticker.C:
			r.Step(now.Sub(last).Seconds())
			last = now
		}
	}
}

func (r *Runner) stop() {
	r.stopOnce.Do(func() { close(r.stopped) })
}

// Step runs one frame: queued commands, scenario actions, actor Update,
// then publication. Callers waiting in Exec are released once the frame's
// snapshot is stored. It must not be called concurrently with Run.
func (r *Runner) Step(dt float64) {
	executed := r.drain()
	defer func() {
		for _, done := range executed {
			close(done)
		}
	}()

	if r.play != nil {
		r.elapsed += dt
		r.observer = r.play.scenario.ObserverAt(r.elapsed)
		for _, act := range r.play.due(r.elapsed) {
			r.apply(act)
		}
	}

	r.actor.Update(r.observer, dt)
	snap := r.actor.Snapshot()
	events := r.actor.DrainEvents()

	r.mu.Lock()
	r.snap = snap
	r.level = r.escalation
	r.events = append(r.events, events...)
	if over := len(r.events) - r.eventCap; over > 0 {
		r.events = append(r.events[:0:0], r.events[over:]...)
	}
	if r.play != nil && r.elapsed >= r.play.scenario.End() {
		r.finished = true
	}
	r.mu.Unlock()

	r.publish(snap, events)
}

func (r *Runner) drain() []chan struct{} {
	var executed []chan struct{}
	for {
		select {
		case c := <-r.cmds:
			c.fn()
			executed = append(executed, c.done)
		default:
			return executed
		}
	}
}

func (r *Runner) publish(snap mirror.Snapshot, events []mirror.Event) {
	if r.pub == nil {
		return
	}
	for _, ev := range events {
		if err := r.pub.Publish(TopicEvent, ev); err != nil {
			r.log.Warn("publish event failed", "error", err)
		}
	}
	if err := r.pub.Publish(TopicFrame, snap); err != nil {
		r.log.Warn("publish frame failed", "error", err)
	}
}

// apply runs one scenario action on the update goroutine.
func (r *Runner) apply(act Action) {
	r.log.Debug("scenario action", "action", act.Kind, "t", act.T)
	switch act.Kind {
	case ActionReveal:
		r.actor.RequestReveal()
	case ActionEnding:
		r.actor.StartEndingSequence(r.observer)
	case ActionEndingPhase:
		r.actor.SetEndingSequenceState(act.Phase, r.observer)
	case ActionExtraDelay:
		r.actor.SetExtraDelay(act.Value)
	case ActionFreeze:
		enabled := true
		if act.Enabled != nil {
			enabled = *act.Enabled
		}
		r.actor.SetFreezeEnabled(enabled)
	case ActionEscalation:
		r.escalate(act.Value)
	}
}

func (r *Runner) escalate(level int) Escalation {
	e := EscalationFor(level)
	r.escalation = e.Level
	r.actor.SetExtraDelay(e.ExtraDelay)
	r.actor.SetFreezeEnabled(e.Freeze)
	r.log.Info("escalation changed", "level", e.Level, "extra_delay", e.ExtraDelay, "freeze", e.Freeze)
	return e
}

// Exec queues fn to run on the update goroutine before the next frame and
// waits until that frame has been stepped.
func (r *Runner) Exec(ctx context.Context, fn func(a *mirror.Actor, observer mirror.Pose)) error {
	c := command{
		fn:   func() { fn(r.actor, r.observer) },
		done: make(chan struct{}),
	}
	select {
	case r.cmds <- c:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("queue command: %w", ctx.Err())
	}
	select {
	case <-c.done:
		return nil
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("await command: %w", ctx.Err())
	}
}

// RequestReveal arms the scripted reveal.
func (r *Runner) RequestReveal(ctx context.Context) (bool, error) {
	var ok bool
	err := r.Exec(ctx, func(a *mirror.Actor, _ mirror.Pose) { ok = a.RequestReveal() })
	return ok, err
}

// StartEnding begins the ending sequence at desync.
func (r *Runner) StartEnding(ctx context.Context) (bool, error) {
	var ok bool
	err := r.Exec(ctx, func(a *mirror.Actor, p mirror.Pose) { ok = a.StartEndingSequence(p) })
	return ok, err
}

// SetEndingPhase jumps the ending forward to the named phase.
func (r *Runner) SetEndingPhase(ctx context.Context, name string) (bool, error) {
	phase, err := mirror.ParseEndingPhase(name)
	if err != nil {
		return false, err
	}
	var ok bool
	err = r.Exec(ctx, func(a *mirror.Actor, p mirror.Pose) { ok = a.SetEndingPhase(phase, p) })
	return ok, err
}

// SetEscalationLevel applies EscalationFor(level) and returns what was applied.
func (r *Runner) SetEscalationLevel(ctx context.Context, level int) (Escalation, error) {
	var e Escalation
	err := r.Exec(ctx, func(*mirror.Actor, mirror.Pose) { e = r.escalate(level) })
	return e, err
}

// Snapshot returns the state after the most recent frame.
func (r *Runner) Snapshot() mirror.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Events returns up to limit of the most recent events, oldest first. A
// non-positive limit returns all retained events.
func (r *Runner) Events(limit int) []mirror.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := r.events
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]mirror.Event, len(events))
	copy(out, events)
	return out
}

// EscalationLevel returns the last applied escalation level.
func (r *Runner) EscalationLevel() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.level
}

// Finished reports whether scenario playback has reached its end.
func (r *Runner) Finished() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finished
}

// Config returns the actor tuning.
func (r *Runner) Config() mirror.Config { return r.actor.Config() }

// Plane returns the mirror plane.
func (r *Runner) Plane() mirror.Plane { return r.actor.Plane() }
