package mirror

import "github.com/teslashibe/go-mirror/pkg/geom"

// Pose is an observer position (eye point) and facing direction.
type Pose struct {
	Position geom.Vec3 `json:"position" yaml:"position"`
	Forward  geom.Vec3 `json:"forward" yaml:"forward"`
}

// NewPose builds a pose, normalizing forward (degenerate input faces +Z).
func NewPose(position, forward geom.Vec3) Pose {
	return Pose{Position: position, Forward: forward.NormalizeOr(geom.Forward)}
}

// Transform is the rendered state of the actor: body placement plus an
// independently animated head orientation.
type Transform struct {
	Position geom.Vec3 `json:"position"`
	Rotation geom.Quat `json:"rotation"`
	Head     geom.Quat `json:"head"`
}
