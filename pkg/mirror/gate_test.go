package mirror

import (
	"testing"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

func TestGate_IsVisible(t *testing.T) {
	g := NewGate(testPlane(), DefaultConfig())

	tests := []struct {
		name string
		pose Pose
		want bool
	}{
		{"facing at 3 units", NewPose(geom.V(0, 1.8, -6), towardMirror), true},
		{"facing away", NewPose(geom.V(0, 1.8, -6), geom.V(0, 0, 1)), false},
		{"too far", NewPose(geom.V(0, 1.8, 0), towardMirror), false},
		{"at radius edge", NewPose(geom.V(0, 1.8, -1), towardMirror), true},
		{"sideways", NewPose(geom.V(0, 1.8, -6), geom.V(1, 0, 0)), false},
		{"glancing", NewPose(geom.V(0, 1.8, -6), geom.V(1, 0, -1)), true},
	}

	for _, tc := range tests {
		if got := g.IsVisible(tc.pose); got != tc.want {
			t.Errorf("%s: IsVisible = %v, want %v (alignment %.3f)",
				tc.name, got, tc.want, g.Alignment(tc.pose))
		}
	}
}

func TestGate_FirstLookThreshold(t *testing.T) {
	g := NewGate(testPlane(), DefaultConfig())
	g.FacingThreshold = DefaultConfig().DirectLookThreshold

	// 45° off axis passes the normal gate but not the first-look gate.
	if g.IsVisible(NewPose(geom.V(0, 1.8, -6), geom.V(1, 0, -1))) {
		t.Error("Expected 45° glance to fail the 0.84 threshold")
	}
	if !g.IsVisible(NewPose(geom.V(0, 1.8, -6), towardMirror)) {
		t.Error("Expected direct look to pass the 0.84 threshold")
	}
}
