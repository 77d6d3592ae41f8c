package scene

import "math"

// OrbitControls keeps a camera orbiting a target with optional damping and a distance cap
type OrbitControls struct {
	Camera        *PerspectiveCamera
	Target        Vec3
	MinDistance   float64
	MaxDistance   float64
	EnableDamping bool
	DampingFactor float64

	// Pending rotation applied on Update (radians around Y), decayed by damping
	velocity float64
	updates  int64
	disposed bool
}

// NewOrbitControls attaches controls to camera
func NewOrbitControls(camera *PerspectiveCamera) *OrbitControls {
	return &OrbitControls{
		Camera:        camera,
		Target:        camera.Target,
		MaxDistance:   0,
		EnableDamping: true,
		DampingFactor: 0.05,
	}
}

// Rotate queues an orbit around the target's vertical axis
func (c *OrbitControls) Rotate(radians float64) {
	c.velocity += radians
}

// Update advances damping and clamps the camera distance. It returns true when the camera moved.
func (c *OrbitControls) Update() bool {
	if c.disposed || c.Camera == nil {
		return false
	}
	c.updates++
	moved := false

	if c.velocity != 0 {
		step := c.velocity
		if c.EnableDamping {
			step = c.velocity * c.DampingFactor
			c.velocity -= step
			if math.Abs(c.velocity) < 1e-6 {
				c.velocity = 0
			}
		} else {
			c.velocity = 0
		}
		offset := c.Camera.Position.Sub(c.Target)
		half := step / 2
		rot := Quat{Y: math.Sin(half), W: math.Cos(half)}
		c.Camera.Position = c.Target.Add(rot.Rotate(offset))
		moved = true
	}

	offset := c.Camera.Position.Sub(c.Target)
	dist := offset.Length()
	if c.MaxDistance > 0 && dist > c.MaxDistance {
		c.Camera.Position = c.Target.Add(offset.Normalize().Scale(c.MaxDistance))
		moved = true
	} else if c.MinDistance > 0 && dist < c.MinDistance && dist > 0 {
		c.Camera.Position = c.Target.Add(offset.Normalize().Scale(c.MinDistance))
		moved = true
	}

	c.Camera.LookAt(c.Target)
	return moved
}

// Updates reports how many times Update ran
func (c *OrbitControls) Updates() int64 { return c.updates }

// Dispose detaches the controls; Update becomes a no-op
func (c *OrbitControls) Dispose() { c.disposed = true }

func (c *OrbitControls) Disposed() bool { return c.disposed }
