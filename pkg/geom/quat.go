package geom

import "math"

// Quat is a rotation quaternion. The identity faces +Z with +Y up.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity is the zero rotation.
var Identity = Quat{W: 1}

// AxisAngle builds a rotation of angle radians around a unit axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// YawPitchRoll composes yaw (around Y), then pitch (around local X), then roll
// (around local Z).
func YawPitchRoll(yaw, pitch, roll float64) Quat {
	return AxisAngle(Up, yaw).Mul(AxisAngle(Right, pitch)).Mul(AxisAngle(Forward, roll))
}

// LookRotation orients +Z along dir. Degenerate directions yield the identity.
func LookRotation(dir Vec3) Quat {
	d, ok := dir.Normalize()
	if !ok {
		return Identity
	}
	yaw := math.Atan2(d.X, d.Z)
	pitch := -math.Asin(clamp(d.Y, -1, 1))
	return YawPitchRoll(yaw, pitch, 0)
}

// Mul returns q*o (o applied first).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quat) Dot(o Quat) float64 { return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W }

// Normalize returns q scaled to unit length, or the identity if degenerate.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.Dot(q))
	if l < Epsilon || math.IsNaN(l) {
		return Identity
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Forward is the rotated +Z axis.
func (q Quat) Forward() Vec3 { return q.Rotate(Forward) }

// Angle returns the angle in radians between two rotations.
func (q Quat) Angle(o Quat) float64 {
	d := math.Abs(q.Normalize().Dot(o.Normalize()))
	return 2 * math.Acos(clamp(d, -1, 1))
}

// Slerp interpolates along the shortest arc from q to o.
func (q Quat) Slerp(o Quat, t float64) Quat {
	t = clamp(t, 0, 1)
	d := q.Dot(o)
	if d < 0 {
		o = Quat{-o.X, -o.Y, -o.Z, -o.W}
		d = -d
	}
	if d > 0.9995 {
		// Nearly parallel: nlerp avoids dividing by a tiny sine.
		return Quat{
			lerp(q.X, o.X, t), lerp(q.Y, o.Y, t), lerp(q.Z, o.Z, t), lerp(q.W, o.W, t),
		}.Normalize()
	}
	theta := math.Acos(d)
	sin := math.Sin(theta)
	a := math.Sin((1-t)*theta) / sin
	b := math.Sin(t*theta) / sin
	return Quat{
		q.X*a + o.X*b, q.Y*a + o.Y*b, q.Z*a + o.Z*b, q.W*a + o.W*b,
	}.Normalize()
}

// IsFinite reports whether every component is a finite number.
func (q Quat) IsFinite() bool {
	return isFinite(q.X) && isFinite(q.Y) && isFinite(q.Z) && isFinite(q.W)
}
