package mirror

import (
	"math"
	"testing"
	"time"

	"github.com/teslashibe/go-mirror/pkg/geom"
)

func TestDrift_PauseHoldsPose(t *testing.T) {
	a := newQuietActor()
	for i := 1; i <= 60; i++ {
		a.Update(walker(i), frameDT)
	}

	hold := a.Transform()
	a.dir.startDrift(DriftPause, hold)
	for i := 61; i <= 70; i++ {
		a.Update(walker(i), frameDT)
	}

	s := a.Snapshot()
	if s.Layer != LayerDrift || s.Variant != DriftPause {
		t.Fatalf("Expected drift/pause, got %q/%q", s.Layer, s.Variant)
	}
	assertVec(t, "held target", s.Target.Position, hold.Position, 1e-12)
	assertVec(t, "held render", s.Transform.Position, hold.Position, 1e-9)
}

func TestDrift_SlowAddsDelayAndEasing(t *testing.T) {
	a := newQuietActor()
	for i := 1; i <= 60; i++ {
		a.Update(walker(i), frameDT)
	}

	a.dir.startDrift(DriftSlow, a.Transform())
	a.Update(walker(61), frameDT)

	s := a.Snapshot()
	if s.DelayFrames != 25 {
		t.Errorf("Expected 25 delay frames during slow drift, got %d", s.DelayFrames)
	}
	assertVec(t, "slow target", s.Target.Position, geom.V(0.36, 0, -15), 1e-9)

	f, _ := a.dir.resolve(walker(61), a.history)
	if f.rates != a.cfg.SlowRates {
		t.Errorf("Expected slow rates, got %+v", f.rates)
	}
}

func TestDrift_LookTurnsOnlyHead(t *testing.T) {
	a := newQuietActor()
	obs := NewPose(geom.V(1.5, 1.6, -4), geom.V(0.5, 0, -1))
	step(a, obs, 0.5)

	a.dir.startDrift(DriftLook, a.Transform())
	a.Update(obs, frameDT)

	s := a.Snapshot()
	body, _ := geom.V(0.5, 0, 1).Normalize()
	assertVec(t, "body", s.Target.Rotation.Forward(), body, 1e-9)

	eye := s.Target.Position.Add(geom.V(0, 1.6, 0))
	want, _ := obs.Position.Sub(eye).Normalize()
	assertVec(t, "head", s.Target.Head.Forward(), want, 1e-9)

	step(a, obs, 1.2)
	if a.Snapshot().Layer != LayerNone {
		t.Error("Expected look drift to end after 1.1s")
	}
}

func TestAutonomous_SideStepEnvelope(t *testing.T) {
	a := newQuietActor(1.0)
	obs := NewPose(geom.V(0, 1.6, -4), towardMirror)
	step(a, obs, 0.5)
	canonical := a.Snapshot().Target.Position

	a.dir.startAutonomous(AnomalySideStep, a.Transform())
	step(a, obs, 1.0)

	// Longest duration (2.0s) and full amplitude; 1.0s in is the peak.
	offset := a.Snapshot().Target.Position.Sub(canonical)
	assertVec(t, "peak offset", offset, geom.V(0.35, 0, 0), 1e-6)

	step(a, obs, 1.0)
	s := a.Snapshot()
	if s.Layer != LayerNone {
		t.Errorf("Expected side step finished, got %q", s.Layer)
	}
	assertVec(t, "back in place", s.Target.Position, canonical, 1e-9)
}

func TestAutonomous_HeadTilt(t *testing.T) {
	a := newQuietActor(1.0)
	obs := NewPose(geom.V(0, 1.6, -4), towardMirror)
	step(a, obs, 0.5)

	a.dir.startAutonomous(AnomalyHeadTilt, a.Transform())
	step(a, obs, 0.75)

	s := a.Snapshot()
	if got := s.Target.Head.Angle(s.Target.Rotation); math.Abs(got-geom.Radians(18)) > 1e-6 {
		t.Errorf("Expected 18° roll at the envelope peak, got %.3f°", got*180/math.Pi)
	}
	assertVec(t, "head still faces out", s.Target.Head.Forward(), s.Target.Rotation.Forward(), 1e-9)
}

func TestAutonomous_DelayedHeadTracking(t *testing.T) {
	a := newQuietActor()
	for i := 1; i <= 60; i++ {
		a.Update(walker(i), frameDT)
	}

	hold := a.Transform()
	a.dir.startAutonomous(AnomalyDelayedHead, hold)
	for i := 61; i <= 90; i++ {
		a.Update(walker(i), frameDT)
	}

	s := a.Snapshot()
	assertVec(t, "body pinned", s.Target.Position, hold.Position, 1e-12)

	eye := hold.Position.Add(geom.V(0, 1.6, 0))
	want, _ := walker(90).Position.Sub(eye).Normalize()
	assertVec(t, "head tracks live observer", s.Target.Head.Forward(), want, 1e-9)
}

func TestIndependence_PreemptsDrift(t *testing.T) {
	a := newQuietActor()
	obs := NewPose(geom.V(0, 1.6, -4), towardMirror)
	step(a, obs, 0.5)
	a.DrainEvents()

	a.dir.startDrift(DriftLook, a.Transform())
	a.dir.independenceTimer = 0.001
	a.Update(obs, frameDT)

	s := a.Snapshot()
	if s.Layer != LayerIndependence {
		t.Fatalf("Expected independence to preempt drift, got %q", s.Layer)
	}
	// FixedRand(0.5) picks the middle variant.
	if s.Variant != IndependenceOpposite {
		t.Errorf("Expected opposite variant, got %q", s.Variant)
	}

	var endedDrift bool
	for _, ev := range a.DrainEvents() {
		if ev.Kind == EventLayerEnded && ev.Layer == LayerDrift {
			endedDrift = true
		}
	}
	if !endedDrift {
		t.Error("Expected the drift to be ended")
	}
	if a.dir.driftTimer != time.Hour.Seconds() {
		t.Errorf("Expected drift timer re-rolled, got %v", a.dir.driftTimer)
	}
}

func TestIndependence_Opposite(t *testing.T) {
	a := newQuietActor()
	obs := NewPose(geom.V(1, 1.6, -4), geom.V(0.3, 0, -1))
	step(a, obs, 0.5)

	a.dir.startIndependence(IndependenceOpposite)
	a.Update(obs, frameDT)

	s := a.Snapshot()
	assertVec(t, "swapped side", s.Target.Position, geom.V(-1, 0, -14), 1e-9)

	want, _ := geom.V(-0.3, 0, 1).Normalize()
	assertVec(t, "swapped facing", s.Target.Rotation.Forward(), want, 1e-9)
}

func TestIndependence_DelayedRampsIn(t *testing.T) {
	a := newQuietActor(1.0)
	for i := 1; i <= 200; i++ {
		a.Update(walker(i), frameDT)
	}

	a.dir.startIndependence(IndependenceDelayed)
	a.Update(walker(201), frameDT)
	early := a.Snapshot().DelayFrames
	if early <= 20 || early >= 140 {
		t.Errorf("Expected extra delay to be ramping, got %d total", early)
	}

	for i := 202; i <= 230; i++ {
		a.Update(walker(i), frameDT)
	}
	s := a.Snapshot()
	if s.DelayFrames != 140 {
		t.Errorf("Expected 20+120 delay frames after the ramp, got %d", s.DelayFrames)
	}
	assertVec(t, "far behind", s.Target.Position, geom.V(0.01*90, 0, -15), 1e-9)
}

func TestIndependence_LookSnapsHead(t *testing.T) {
	a := newQuietActor()
	obs := NewPose(geom.V(2, 1.6, -4), geom.V(0.5, 0, -1))
	step(a, obs, 0.5)

	a.dir.startIndependence(IndependenceLook)
	a.Update(obs, frameDT)

	s := a.Snapshot()
	if s.Transform.Head.Angle(s.Target.Head) > 1e-6 {
		t.Error("Expected head to snap onto the observer")
	}
	if s.Transform.Head.Angle(s.Transform.Rotation) < 0.1 {
		t.Error("Expected head to diverge from the body")
	}
}

func TestFreeze_OverridesAndPausesTimers(t *testing.T) {
	cfg := quietConfig()
	cfg.FreezeInterval = DurationRange{time.Second, time.Second}
	a := NewActor(testPlane(), cfg, WithRand(NewFixedRand(0.5)))

	for i := 1; i <= 30; i++ {
		a.Update(walker(i), frameDT)
	}
	a.SetFreezeEnabled(true)
	for i := 31; i <= 95; i++ {
		a.Update(walker(i), frameDT)
	}

	s := a.Snapshot()
	if s.Layer != LayerFreeze || !s.Freeze {
		t.Fatalf("Expected freeze active, got %q", s.Layer)
	}
	held := s.Target.Position
	driftTimer := a.dir.driftTimer

	for i := 96; i <= 150; i++ {
		a.Update(walker(i), frameDT)
	}
	s = a.Snapshot()
	assertVec(t, "frozen", s.Target.Position, held, 1e-12)
	if a.dir.driftTimer != driftTimer {
		t.Error("Expected drift timer paused during freeze")
	}

	for i := 151; i <= 220; i++ {
		a.Update(walker(i), frameDT)
	}
	if a.Snapshot().Freeze {
		t.Error("Expected freeze to end after 2s")
	}
}

func TestFreeze_DisableResets(t *testing.T) {
	cfg := quietConfig()
	cfg.FreezeInterval = DurationRange{500 * time.Millisecond, 500 * time.Millisecond}
	a := NewActor(testPlane(), cfg, WithRand(NewFixedRand(0.5)))
	obs := NewPose(geom.V(0, 1.6, -4), towardMirror)

	a.SetFreezeEnabled(true)
	step(a, obs, 1.0)
	if !a.Snapshot().Freeze {
		t.Fatal("Expected freeze active")
	}

	a.SetFreezeEnabled(false)
	if a.Snapshot().Freeze || a.dir.freezeTimer != 0 {
		t.Error("Expected disable to cancel the freeze and reset its timer")
	}
	step(a, obs, 2.0)
	if a.Snapshot().Freeze {
		t.Error("Expected no freeze while disabled")
	}
}

func TestDirector_DriftWinsSameTick(t *testing.T) {
	a := newQuietActor()
	obs := NewPose(geom.V(0, 1.6, -4), towardMirror)
	step(a, obs, 0.5)

	a.dir.driftTimer = 0.001
	a.dir.autonomousTimer = 0.001
	a.Update(obs, frameDT)

	if got := a.Snapshot().Layer; got != LayerDrift {
		t.Errorf("Expected drift to take precedence, got %q", got)
	}
	if a.dir.autonomousTimer != time.Hour.Seconds() {
		t.Errorf("Expected autonomous timer re-rolled, got %v", a.dir.autonomousTimer)
	}
}

func TestDirector_TimersWaitForPrimarySlot(t *testing.T) {
	a := newQuietActor()
	obs := NewPose(geom.V(0, 1.6, -4), towardMirror)
	step(a, obs, 0.5)

	a.dir.startDrift(DriftLook, a.Transform())
	before := a.dir.autonomousTimer
	step(a, obs, 0.5)

	if a.dir.autonomousTimer != before {
		t.Error("Expected autonomous timer to wait while drift is active")
	}
	if a.dir.independenceTimer >= time.Hour.Seconds() {
		t.Error("Expected independence timer to keep running")
	}
}
