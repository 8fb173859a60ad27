package mirror

import (
	"fmt"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

// EndingPhase is a step of the terminal ending sequence. Phases only move
// forward.
type EndingPhase int

const (
	EndingIdle EndingPhase = iota
	EndingDesync
	EndingWalkForward
	EndingDisappear
	EndingBehindReveal
	EndingFadeOut

	endingPhaseCount
)

var endingPhaseNames = [endingPhaseCount]string{
	EndingIdle:         "idle",
	EndingDesync:       "desync",
	EndingWalkForward:  "walkForward",
	EndingDisappear:    "disappear",
	EndingBehindReveal: "behindReveal",
	EndingFadeOut:      "fadeOut",
}

func (p EndingPhase) String() string {
	if p < 0 || p >= endingPhaseCount {
		return fmt.Sprintf("EndingPhase(%d)", int(p))
	}
	return endingPhaseNames[p]
}

// MarshalText encodes the phase by name.
func (p EndingPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *EndingPhase) UnmarshalText(b []byte) error {
	v, err := ParseEndingPhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParseEndingPhase maps a phase name to its EndingPhase.
func ParseEndingPhase(name string) (EndingPhase, error) {
	for i, n := range endingPhaseNames {
		if n == name {
			return EndingPhase(i), nil
		}
	}
	return EndingIdle, fmt.Errorf("%w: %q", ErrUnknownEndingPhase, name)
}

// showsActor reports whether the actor is rendered during the phase.
func (p EndingPhase) showsActor() bool {
	return p == EndingDesync || p == EndingWalkForward
}

// endingSequence is the terminal override.
type endingSequence struct {
	phase     EndingPhase
	elapsed   float64
	durations [endingPhaseCount]float64
	snapshot  Pose
	from      Transform // frozen desync pose
	to        geom.Vec3 // walk destination at the glass
	completed bool
}

// StartEndingSequence arms the ending from idle. It returns false when the
// ending has already started.
func (a *Actor) StartEndingSequence(observer Pose) bool {
	if a.ending.phase != EndingIdle {
		return false
	}
	a.enterEnding(EndingDesync, a.sanitizeObserver(observer))
	return true
}

// SetEndingSequenceState forces the named phase. Unknown names and phases at
// or before the current one are ignored and reported as false.
func (a *Actor) SetEndingSequenceState(name string, observer Pose) bool {
	phase, err := ParseEndingPhase(name)
	if err != nil {
		a.log.Warn("ignoring ending phase", "phase", name, "error", err)
		return false
	}
	return a.SetEndingPhase(phase, observer)
}

// SetEndingPhase is SetEndingSequenceState with a typed phase.
func (a *Actor) SetEndingPhase(phase EndingPhase, observer Pose) bool {
	if phase <= a.ending.phase || phase >= endingPhaseCount {
		return false
	}
	a.enterEnding(phase, a.sanitizeObserver(observer))
	return true
}

// EndingPhase returns the current ending phase.
func (a *Actor) EndingPhase() EndingPhase {
	return a.ending.phase
}

func (a *Actor) enterEnding(phase EndingPhase, observer Pose) {
	if a.ending.phase == EndingIdle {
		a.beginEnding(observer)
	}
	a.setEndingPhase(phase)
}

// beginEnding cancels every other layer and captures the desync pose.
func (a *Actor) beginEnding(observer Pose) {
	a.dir.endActive()
	a.dir.endFreeze()
	a.dir.freezeEnabled = false
	if a.reveal.state == revealPending || a.reveal.state == revealRunning {
		a.reveal.state = revealIdle
		a.reveal.completeFlag = false
	}
	a.restore = nil

	src := observer
	if p, ok := a.history.Peek(a.dir.delayFrames()); ok {
		src = p
	}
	pos := a.plane.ReflectPosition(src.Position, a.cfg.EyeHeight, a.cfg.FloorHeight, a.cfg.PlaneOverlap)
	face := observer.Position.Sub(pos).Flatten().NormalizeOr(a.plane.Facing())
	rot := geom.LookRotation(face)

	d := a.plane.SignedDistance(pos)
	a.ending.snapshot = observer
	a.ending.from = Transform{Position: pos, Rotation: rot, Head: rot}
	a.ending.to = pos.Add(a.plane.Normal.Scale(a.cfg.PlaneOverlap - d))
	a.ending.durations = a.cfg.endingDurations()

	a.log.Info("ending sequence started", "tick", a.tick)
}

func (a *Actor) setEndingPhase(phase EndingPhase) {
	a.ending.phase = phase
	a.ending.elapsed = 0
	a.emit(Event{Kind: EventEndingPhase, Layer: LayerEnding, Phase: phase.String(), Duration: a.ending.durations[phase]})
	if phase == EndingBehindReveal {
		a.emit(Event{Kind: EventStalkerSpawn, Layer: LayerEnding, Phase: phase.String()})
	}
}

// updateEnding advances the phase clock and poses the actor for the phase.
func (a *Actor) updateEnding(dt float64) {
	e := &a.ending
	e.elapsed += dt
	for e.phase < EndingFadeOut && e.elapsed >= e.durations[e.phase]-timeEpsilon {
		rest := e.elapsed - e.durations[e.phase]
		a.setEndingPhase(e.phase + 1)
		e.elapsed = max(rest, 0)
	}
	if e.phase == EndingFadeOut && !e.completed && e.elapsed >= e.durations[EndingFadeOut]-timeEpsilon {
		e.completed = true
		a.emit(Event{Kind: EventEndingComplete, Layer: LayerEnding, Phase: e.phase.String()})
	}

	if !e.phase.showsActor() {
		a.setVisible(false)
		return
	}

	target := e.from
	if e.phase == EndingWalkForward {
		k := 1.0
		if d := e.durations[EndingWalkForward]; d > 0 {
			k = geom.Smoothstep(e.elapsed / d)
		}
		target.Position = e.from.Position.Lerp(e.to, k)
	}
	a.target = target

	if !a.blend.Ready() {
		a.blend.Snap(target)
	} else {
		a.blend.Blend(target, a.cfg.EndingRates, dt, false)
	}
	a.setVisible(true)
}
