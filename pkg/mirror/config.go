package mirror

import (
	"fmt"
	"strings"
	"time"
)

// DurationRange is an inclusive range sampled uniformly for randomized timers.
type DurationRange struct {
	Min time.Duration `json:"min"`
	Max time.Duration `json:"max"`
}

// Sample returns a uniform draw from the range, in seconds.
func (r DurationRange) Sample(rng Rand) float64 {
	lo, hi := r.Min.Seconds(), r.Max.Seconds()
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// FloatRange is an inclusive range of plain values.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Sample returns a uniform draw from the range.
func (r FloatRange) Sample(rng Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// IntRange is an inclusive range of integers.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Sample returns a uniform draw from [Min, Max].
func (r IntRange) Sample(rng Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// Rates are exponential smoothing rates (per second) for the blender.
type Rates struct {
	Position float64 `json:"position"`
	Rotation float64 `json:"rotation"`
	Head     float64 `json:"head"`
}

// Config holds all tunable parameters for the reflection actor
type Config struct {
	// History
	HistoryCapacity int // Poses kept for delayed playback
	BaseDelayFrames int // Frames behind the observer during normal tracking

	// Reflection geometry
	EyeHeight    float64 // Observer eye height above the actor's root
	FloorHeight  float64 // Lowest allowed root height
	PlaneOverlap float64 // How far past the glass the actor may stand

	// Visibility
	VisibilityRadius    float64 // Max observer distance to the mirror center
	FacingThreshold     float64 // Min dot(forward, toMirror) to be visible
	DirectLookThreshold float64 // Dot treated as "looking straight at the mirror"

	// Tick safety
	MaxDelta     time.Duration // Per-tick clamp for stalled host loops
	NominalDelta time.Duration // Substituted for non-finite deltas

	// Blending
	Rates       Rates // Normal tracking
	SlowRates   Rates // "slow" drift
	EndingRates Rates // Ending desync / walk

	// Drift
	DriftInterval        DurationRange
	DriftPauseDuration   DurationRange
	DriftSlowDuration    time.Duration
	DriftSlowExtraFrames int
	DriftLookDuration    time.Duration

	// Autonomous anomalies
	AutonomousInterval       DurationRange
	SideStepDuration         DurationRange
	SideStepAmplitude        float64 // Max lateral offset (either side)
	HeadTiltDuration         time.Duration
	HeadTiltDegrees          FloatRange
	DelayedHeadTrackDuration DurationRange

	// Independence
	IndependenceInterval    DurationRange
	IndependenceDuration    DurationRange
	IndependenceDelayFrames IntRange
	IndependenceDelayRamp   time.Duration // Time to ramp the extra delay in

	// Freeze escalation
	FreezeInterval DurationRange
	FreezeDuration time.Duration

	// Reveal
	RevealDuration time.Duration
	RevealAdvance  float64 // Distance moved toward the observer

	// Restore after an interrupted anomaly
	RestoreDuration  DurationRange
	RestoreThreshold float64 // Residual distance that counts as "still anomalous"

	// Ending sequence phase durations
	EndingDesync       time.Duration
	EndingWalkForward  time.Duration
	EndingDisappear    time.Duration
	EndingBehindReveal time.Duration
	EndingFadeOut      time.Duration
}

// DefaultConfig returns the tuning the experience ships with
func DefaultConfig() Config {
	return Config{
		HistoryCapacity: 240,
		BaseDelayFrames: 20,

		EyeHeight:    1.6,
		FloorHeight:  0,
		PlaneOverlap: 0.2,

		VisibilityRadius:    8.0,
		FacingThreshold:     0.55,
		DirectLookThreshold: 0.84,

		MaxDelta:     100 * time.Millisecond,
		NominalDelta: time.Second / 60,

		Rates:       Rates{Position: 8.5, Rotation: 8.0, Head: 7.0},
		SlowRates:   Rates{Position: 2.8, Rotation: 2.8, Head: 7.0},
		EndingRates: Rates{Position: 2.4, Rotation: 2.8, Head: 7.0},

		DriftInterval:        DurationRange{6 * time.Second, 12 * time.Second},
		DriftPauseDuration:   DurationRange{800 * time.Millisecond, 1500 * time.Millisecond},
		DriftSlowDuration:    2 * time.Second,
		DriftSlowExtraFrames: 5,
		DriftLookDuration:    1100 * time.Millisecond,

		AutonomousInterval:       DurationRange{15 * time.Second, 25 * time.Second},
		SideStepDuration:         DurationRange{1200 * time.Millisecond, 2 * time.Second},
		SideStepAmplitude:        0.35,
		HeadTiltDuration:         1500 * time.Millisecond,
		HeadTiltDegrees:          FloatRange{10, 18},
		DelayedHeadTrackDuration: DurationRange{1500 * time.Millisecond, 3 * time.Second},

		IndependenceInterval:    DurationRange{30 * time.Second, 60 * time.Second},
		IndependenceDuration:    DurationRange{1 * time.Second, 2 * time.Second},
		IndependenceDelayFrames: IntRange{60, 120},
		IndependenceDelayRamp:   400 * time.Millisecond,

		FreezeInterval: DurationRange{10 * time.Second, 18 * time.Second},
		FreezeDuration: 2 * time.Second,

		RevealDuration: 1 * time.Second,
		RevealAdvance:  1.5,

		RestoreDuration:  DurationRange{1 * time.Second, 2500 * time.Millisecond},
		RestoreThreshold: 0.05,

		EndingDesync:       2 * time.Second,
		EndingWalkForward:  3 * time.Second,
		EndingDisappear:    350 * time.Millisecond,
		EndingBehindReveal: 1 * time.Second,
		EndingFadeOut:      3 * time.Second,
	}
}

// SubtleConfig returns a configuration where anomalies are rarer and gentler
func SubtleConfig() Config {
	cfg := DefaultConfig()
	cfg.DriftInterval = DurationRange{10 * time.Second, 18 * time.Second}
	cfg.AutonomousInterval = DurationRange{25 * time.Second, 40 * time.Second}
	cfg.IndependenceInterval = DurationRange{60 * time.Second, 90 * time.Second}
	cfg.SideStepAmplitude = 0.2
	cfg.HeadTiltDegrees = FloatRange{6, 10}
	return cfg
}

// HostileConfig returns a configuration for late-game escalation
func HostileConfig() Config {
	cfg := DefaultConfig()
	cfg.DriftInterval = DurationRange{4 * time.Second, 8 * time.Second}
	cfg.AutonomousInterval = DurationRange{8 * time.Second, 14 * time.Second}
	cfg.IndependenceInterval = DurationRange{15 * time.Second, 30 * time.Second}
	cfg.FreezeInterval = DurationRange{6 * time.Second, 10 * time.Second}
	cfg.SideStepAmplitude = 0.5
	return cfg
}

// PresetConfig returns the named preset ("default", "subtle", "hostile").
func PresetConfig(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultConfig(), nil
	case "subtle":
		return SubtleConfig(), nil
	case "hostile":
		return HostileConfig(), nil
	}
	return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// endingDurations returns the fixed length of each ending phase in seconds,
// indexed by EndingPhase.
func (c Config) endingDurations() [endingPhaseCount]float64 {
	return [endingPhaseCount]float64{
		EndingIdle:         0,
		EndingDesync:       c.EndingDesync.Seconds(),
		EndingWalkForward:  c.EndingWalkForward.Seconds(),
		EndingDisappear:    c.EndingDisappear.Seconds(),
		EndingBehindReveal: c.EndingBehindReveal.Seconds(),
		EndingFadeOut:      c.EndingFadeOut.Seconds(),
	}
}
