package mirror

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HistoryCapacity != 240 {
		t.Errorf("Expected HistoryCapacity=240, got %d", cfg.HistoryCapacity)
	}
	if cfg.BaseDelayFrames != 20 {
		t.Errorf("Expected BaseDelayFrames=20, got %d", cfg.BaseDelayFrames)
	}
	if cfg.VisibilityRadius != 8 || cfg.FacingThreshold != 0.55 {
		t.Errorf("Unexpected visibility gate %v/%v", cfg.VisibilityRadius, cfg.FacingThreshold)
	}
	if cfg.Rates.Position != 8.5 || cfg.Rates.Rotation != 8.0 || cfg.Rates.Head != 7.0 {
		t.Errorf("Unexpected blend rates %+v", cfg.Rates)
	}
	if cfg.MaxDelta != 100*time.Millisecond {
		t.Errorf("Expected MaxDelta=100ms, got %v", cfg.MaxDelta)
	}

	total := cfg.EndingDesync + cfg.EndingWalkForward + cfg.EndingDisappear + cfg.EndingBehindReveal + cfg.EndingFadeOut
	if total != 9350*time.Millisecond {
		t.Errorf("Expected 9.35s ending, got %v", total)
	}
}

func TestPresets_RangesOrdered(t *testing.T) {
	for _, name := range []string{"default", "subtle", "hostile"} {
		cfg, err := PresetConfig(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		ranges := []DurationRange{
			cfg.DriftInterval, cfg.DriftPauseDuration, cfg.AutonomousInterval,
			cfg.SideStepDuration, cfg.DelayedHeadTrackDuration, cfg.IndependenceInterval,
			cfg.IndependenceDuration, cfg.FreezeInterval, cfg.RestoreDuration,
		}
		for i, r := range ranges {
			if r.Min > r.Max || r.Min <= 0 {
				t.Errorf("%s: range %d invalid: %+v", name, i, r)
			}
		}
	}
}

func TestPresetConfig_Unknown(t *testing.T) {
	_, err := PresetConfig("nightmare")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}
}

func TestRanges_HitBounds(t *testing.T) {
	r := DurationRange{6 * time.Second, 12 * time.Second}
	if got := r.Sample(NewFixedRand(0)); got != 6 {
		t.Errorf("Expected 6s at 0, got %v", got)
	}
	if got := r.Sample(NewFixedRand(1)); got != 12 {
		t.Errorf("Expected 12s at 1, got %v", got)
	}

	ir := IntRange{60, 120}
	if got := ir.Sample(NewFixedRand(0)); got != 60 {
		t.Errorf("Expected 60 at 0, got %d", got)
	}
	if got := ir.Sample(NewFixedRand(1)); got != 120 {
		t.Errorf("Expected 120 at 1, got %d", got)
	}
}

func TestParseEndingPhase(t *testing.T) {
	for p := EndingIdle; p < endingPhaseCount; p++ {
		got, err := ParseEndingPhase(p.String())
		if err != nil || got != p {
			t.Errorf("round trip %v: got %v, %v", p, got, err)
		}
	}
	if _, err := ParseEndingPhase("credits"); !errors.Is(err, ErrUnknownEndingPhase) {
		t.Errorf("Expected ErrUnknownEndingPhase, got %v", err)
	}
}
