package sim

// MaxEscalation is the highest escalation level.
const MaxEscalation = 4

// Escalation is the actor tuning for one narrative escalation level.
type Escalation struct {
	Level      int  `json:"level"`
	ExtraDelay int  `json:"extra_delay_frames"`
	Freeze     bool `json:"freeze"`
}

var escalationTable = [MaxEscalation + 1]Escalation{
	{Level: 0, ExtraDelay: 0, Freeze: false},
	{Level: 1, ExtraDelay: 4, Freeze: false},
	{Level: 2, ExtraDelay: 10, Freeze: false},
	{Level: 3, ExtraDelay: 10, Freeze: true},
	{Level: 4, ExtraDelay: 24, Freeze: true},
}

// EscalationFor returns the tuning for level, clamped to 0..MaxEscalation.
func EscalationFor(level int) Escalation {
	if level < 0 {
		level = 0
	}
	if level > MaxEscalation {
		level = MaxEscalation
	}
	return escalationTable[level]
}
