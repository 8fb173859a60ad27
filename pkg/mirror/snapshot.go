package mirror

// Snapshot is a read-only view of the actor after an Update, for renderers,
// dashboards and tests.
type Snapshot struct {
	SessionID        string      `json:"session_id"`
	Tick             uint64      `json:"tick"`
	Time             float64     `json:"time"`
	Visible          bool        `json:"visible"`
	Transform        Transform   `json:"transform"`
	Target           Transform   `json:"target"`
	Layer            Layer       `json:"layer"`
	Variant          string      `json:"variant,omitempty"`
	Freeze           bool        `json:"freeze"`
	FreezeEnabled    bool        `json:"freeze_enabled"`
	ExtraDelayFrames int         `json:"extra_delay_frames"`
	DelayFrames      int         `json:"delay_frames"`
	Restoring        bool        `json:"restoring"`
	Reveal           string      `json:"reveal"`
	EndingPhase      EndingPhase `json:"ending_phase"`
	HistoryLen       int         `json:"history_len"`
	Observer         Pose        `json:"observer"`
}

// Snapshot captures the current state.
func (a *Actor) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:        a.id,
		Tick:             a.tick,
		Time:             a.clock,
		Visible:          a.visible,
		Transform:        a.blend.Current(),
		Target:           a.target,
		Freeze:           a.dir.freeze != nil,
		FreezeEnabled:    a.dir.freezeEnabled,
		ExtraDelayFrames: a.dir.extraDelay,
		DelayFrames:      a.delay,
		Restoring:        a.restore != nil,
		Reveal:           a.reveal.state.String(),
		EndingPhase:      a.ending.phase,
		HistoryLen:       a.history.Len(),
		Observer:         a.observer,
	}
	switch {
	case a.ending.phase != EndingIdle:
		s.Layer = LayerEnding
		s.Variant = a.ending.phase.String()
	case a.reveal.state == revealRunning:
		s.Layer = LayerReveal
	case a.dir.freeze != nil:
		s.Layer = LayerFreeze
	case a.dir.active != nil:
		s.Layer = a.dir.active.layer()
		s.Variant = a.dir.active.variant()
	}
	return s
}
