package mirror

import "github.com/google/uuid"

// EventKind names a state change reported to collaborators.
type EventKind string

const (
	EventShown          EventKind = "shown"
	EventHidden         EventKind = "hidden"
	EventLayerStarted   EventKind = "layer_started"
	EventLayerEnded     EventKind = "layer_ended"
	EventRestoreStarted EventKind = "restore_started"
	EventRevealStarted  EventKind = "reveal_started"
	EventRevealComplete EventKind = "reveal_complete"
	EventEndingPhase    EventKind = "ending_phase"
	EventStalkerSpawn   EventKind = "stalker_spawn"
	EventEndingComplete EventKind = "ending_complete"
)

// Event is one entry of the actor's outbound event stream.
type Event struct {
	ID       string    `json:"id"`
	Tick     uint64    `json:"tick"`
	Time     float64   `json:"time"` // Simulated seconds since creation
	Kind     EventKind `json:"kind"`
	Layer    Layer     `json:"layer,omitempty"`
	Variant  string    `json:"variant,omitempty"`
	Phase    string    `json:"phase,omitempty"`
	Duration float64   `json:"duration,omitempty"`
}

// MaxPendingEvents bounds the events held between DrainEvents calls.
const MaxPendingEvents = 1024

func (a *Actor) emit(ev Event) {
	ev.ID = uuid.NewString()
	ev.Tick = a.tick
	ev.Time = a.clock
	if len(a.events) >= MaxPendingEvents {
		n := copy(a.events, a.events[len(a.events)-MaxPendingEvents+1:])
		a.events = a.events[:n]
	}
	a.events = append(a.events, ev)

	a.log.Debug("mirror event",
		"kind", ev.Kind,
		"layer", ev.Layer,
		"variant", ev.Variant,
		"phase", ev.Phase,
		"duration", ev.Duration,
		"tick", ev.Tick,
	)
}

// DrainEvents returns events produced since the previous call and clears them.
func (a *Actor) DrainEvents() []Event {
	if len(a.events) == 0 {
		return nil
	}
	out := a.events
	a.events = nil
	return out
}
