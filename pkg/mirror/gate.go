package mirror

// Gate decides whether the reflection should be rendered for an observer pose.
type Gate struct {
	Plane           Plane
	Radius          float64
	FacingThreshold float64
}

// NewGate builds a gate from the plane and tuning.
func NewGate(plane Plane, cfg Config) Gate {
	return Gate{Plane: plane, Radius: cfg.VisibilityRadius, FacingThreshold: cfg.FacingThreshold}
}

// Alignment returns dot(forward, direction from observer to the mirror center).
// An observer standing on the center counts as fully aligned.
func (g Gate) Alignment(observer Pose) float64 {
	toMirror, ok := g.Plane.Center.Sub(observer.Position).Normalize()
	if !ok {
		return 1
	}
	fwd, ok := observer.Forward.Normalize()
	if !ok {
		return 0
	}
	return fwd.Dot(toMirror)
}

// IsVisible reports whether the observer is close enough and facing the glass.
func (g Gate) IsVisible(observer Pose) bool {
	if observer.Position.Dist(g.Plane.Center) > g.Radius {
		return false
	}
	return g.Alignment(observer) > g.FacingThreshold
}
