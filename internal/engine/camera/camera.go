// Package camera provides the orbit camera used by the viewer.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit limits and input scales.
const (
	MinPitch = -89.0
	MaxPitch = 89.0

	MinRadius = 1.0
	MaxRadius = 500.0

	DefaultYaw         = -90.0
	DefaultPitch       = 0.0
	DefaultRadius      = 500.0
	DefaultSensitivity = 0.1

	// ScrollSpeed is the radius change per scroll unit.
	ScrollSpeed = 5.0
)

// WorldUp is the fixed up vector used for the view matrix.
var WorldUp = mgl32.Vec3{0, 1, 0}

// OrbitCamera orbits around a fixed target point. Angles are in degrees.
type OrbitCamera struct {
	// Target is the point the camera looks at.
	Target mgl32.Vec3

	// Spherical coordinates
	Yaw    float32
	Pitch  float32 // clamped to [MinPitch, MaxPitch]
	Radius float32 // clamped to [MinRadius, MaxRadius]

	// Sensitivity scales pointer deltas into degrees.
	Sensitivity float32

	position mgl32.Vec3
}

// NewOrbitCamera creates a camera in front of the origin, looking down -Z.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		Yaw:         DefaultYaw,
		Pitch:       DefaultPitch,
		Radius:      DefaultRadius,
		Sensitivity: DefaultSensitivity,
	}
	c.update()
	return c
}

// ApplyPointerDelta rotates the camera. Moving the pointer up (negative dy)
// raises the pitch.
func (c *OrbitCamera) ApplyPointerDelta(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += -dy * c.Sensitivity
	c.update()
}

// ApplyScroll moves the camera toward (positive dy) or away from the target.
func (c *OrbitCamera) ApplyScroll(dy float32) {
	c.Radius -= dy * ScrollSpeed
	c.update()
}

// SetTarget moves the orbit center.
func (c *OrbitCamera) SetTarget(target mgl32.Vec3) {
	c.Target = target
	c.update()
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	return c.position
}

// Direction returns the unit vector from the target toward the camera.
func (c *OrbitCamera) Direction() mgl32.Vec3 {
	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)

	dir := mgl32.Vec3{
		cos(yaw) * cos(pitch),
		sin(pitch),
		sin(yaw) * cos(pitch),
	}
	return dir.Normalize()
}

// ViewMatrix returns the look-at transform for the current position.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.Target, WorldUp)
}

// update clamps the spherical coordinates and recomputes the position.
func (c *OrbitCamera) update() {
	c.Pitch = mgl32.Clamp(c.Pitch, MinPitch, MaxPitch)
	c.Radius = mgl32.Clamp(c.Radius, MinRadius, MaxRadius)
	c.position = c.Target.Add(c.Direction().Mul(c.Radius))
}

func sin(rad float32) float32 { return float32(math.Sin(float64(rad))) }
func cos(rad float32) float32 { return float32(math.Cos(float64(rad))) }
