package mirror

import (
	"testing"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

func poseX(x float64) Pose {
	return Pose{Position: geom.V(x, 0, 0), Forward: geom.Forward}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(240)

	if _, ok := h.Peek(0); ok {
		t.Error("Expected Peek on empty history to report !ok")
	}
	if h.Len() != 0 {
		t.Errorf("Expected Len=0, got %d", h.Len())
	}
}

func TestHistory_PeekFromEnd(t *testing.T) {
	h := NewHistory(240)
	for i := 0; i < 50; i++ {
		h.Record(poseX(float64(i)))
	}

	tests := []struct {
		back int
		want float64
	}{
		{0, 49},
		{1, 48},
		{20, 29},
		{49, 0},
		{500, 0}, // clamps to oldest
		{-3, 49}, // negative treated as most recent
	}

	for _, tc := range tests {
		p, ok := h.Peek(tc.back)
		if !ok {
			t.Fatalf("Peek(%d) reported !ok", tc.back)
		}
		if p.Position.X != tc.want {
			t.Errorf("Peek(%d) = %v, want %v", tc.back, p.Position.X, tc.want)
		}
	}
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(240)
	for i := 0; i < 300; i++ {
		h.Record(poseX(float64(i)))
	}

	if h.Len() != 240 {
		t.Fatalf("Expected Len capped at 240, got %d", h.Len())
	}

	oldest, _ := h.Peek(1000)
	if oldest.Position.X != 60 {
		t.Errorf("Expected oldest entry 60 after eviction, got %v", oldest.Position.X)
	}
	newest, _ := h.Peek(0)
	if newest.Position.X != 299 {
		t.Errorf("Expected newest entry 299, got %v", newest.Position.X)
	}
}
