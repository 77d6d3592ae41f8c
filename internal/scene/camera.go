package scene

import "math"

// PerspectiveCamera mirrors the usual perspective camera parameters; FOV is vertical, in degrees
type PerspectiveCamera struct {
	FOV      float64
	Aspect   float64
	Near     float64
	Far      float64
	Position Vec3
	Target   Vec3

	projectionUpdates int
}

// NewPerspectiveCamera creates a camera at the origin looking down -Z
func NewPerspectiveCamera(fov, aspect, near, far float64) *PerspectiveCamera {
	return &PerspectiveCamera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Target: Vec3{0, 0, -1},
	}
}

// LookAt points the camera at target
func (c *PerspectiveCamera) LookAt(target Vec3) {
	c.Target = target
}

// UpdateProjectionMatrix must be called after changing FOV, Aspect, Near or Far
func (c *PerspectiveCamera) UpdateProjectionMatrix() {
	c.projectionUpdates++
}

// ProjectionUpdates reports how many times the projection was rebuilt
func (c *PerspectiveCamera) ProjectionUpdates() int {
	return c.projectionUpdates
}

// HalfFOVRadians returns half the vertical field of view in radians
func (c *PerspectiveCamera) HalfFOVRadians() float64 {
	return c.FOV * math.Pi / 360
}

// Distance returns the distance from the camera to its target
func (c *PerspectiveCamera) Distance() float64 {
	return c.Position.Sub(c.Target).Length()
}
