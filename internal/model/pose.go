package model

import "github.com/go-gl/mathgl/mgl32"

// Pose is a position + rotation pair. Value type, passed by value.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Rotation: mgl32.QuatIdent()}
}

// NewPose creates a Pose at position with rotation.
func NewPose(position mgl32.Vec3, rotation mgl32.Quat) Pose {
	return Pose{Position: position, Rotation: rotation}
}

// PoseAt creates an unrotated Pose at (x, y, z).
func PoseAt(x, y, z float32) Pose {
	return Pose{Position: mgl32.Vec3{x, y, z}, Rotation: mgl32.QuatIdent()}
}

// WithPosition returns a copy of p moved to position (immutable pattern).
func (p Pose) WithPosition(position mgl32.Vec3) Pose {
	p.Position = position
	return p
}

// WithRotation returns a copy of p with rotation replaced (immutable pattern).
func (p Pose) WithRotation(rotation mgl32.Quat) Pose {
	p.Rotation = rotation
	return p
}

// DistanceSquared returns squared distance between a and b (no sqrt on the hot path).
func DistanceSquared(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}
