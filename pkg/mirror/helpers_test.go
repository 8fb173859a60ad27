package mirror

import (
	"math"
	"testing"
	"time"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

const frameDT = 1.0 / 60

var towardMirror = geom.V(0, 0, -1)

func testPlane() Plane {
	return NewPlane(geom.V(0, 1.8, -9), geom.V(0, 0, 1))
}

// quietConfig suppresses every randomized layer so tests can start them by hand.
func quietConfig() Config {
	cfg := DefaultConfig()
	hour := DurationRange{time.Hour, time.Hour}
	cfg.DriftInterval = hour
	cfg.AutonomousInterval = hour
	cfg.IndependenceInterval = hour
	cfg.FreezeInterval = hour
	return cfg
}

func newQuietActor(values ...float64) *Actor {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return NewActor(testPlane(), quietConfig(), WithRand(NewFixedRand(values...)))
}

// walker stands 6 units in front of the glass, facing it, drifting along X.
func walker(i int) Pose {
	return NewPose(geom.V(0.01*float64(i), 1.6, -3), towardMirror)
}

func step(a *Actor, p Pose, seconds float64) {
	n := int(math.Round(seconds / frameDT))
	for i := 0; i < n; i++ {
		a.Update(p, frameDT)
	}
}

func assertVec(t *testing.T, label string, got, want geom.Vec3, tol float64) {
	t.Helper()
	if !got.ApproxEqual(want, tol) {
		t.Errorf("%s: expected %v, got %v", label, want, got)
	}
}

func countEvents(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
