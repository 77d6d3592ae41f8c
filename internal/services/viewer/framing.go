package viewer

import (
	"math"

	"github.com/ternarybob/tagview/internal/scene"
)

const (
	// FramingMargin pads the distance at which the model exactly fills the view
	FramingMargin = 1.5
	// FarPlaneFactor multiplies the camera to far-edge distance
	FarPlaneFactor = 3
	// OrbitLimitFactor caps zoom-out relative to the framing distance
	OrbitLimitFactor = 2

	// fallbackDistance frames models with no measurable extent
	fallbackDistance = 5
)

// Framing is the camera placement computed for a model
type Framing struct {
	Center      scene.Vec3 // model center before recentering
	Size        scene.Vec3
	Distance    float64
	Far         float64
	MaxDistance float64
}

// FrameModel moves root so its bounds are centered on the origin, then places the camera on
// +Z far enough to see the whole model and limits the orbit controls.
func FrameModel(root *scene.Node, camera *scene.PerspectiveCamera, controls *scene.OrbitControls) Framing {
	box := root.BoundingBox()
	center := box.Center()
	size := box.Size()

	root.Transform.Position = root.Transform.Position.Sub(center)

	maxDim := size.MaxComponent()
	distance := math.Abs(maxDim / 2 / math.Tan(camera.HalfFOVRadians()))
	distance *= FramingMargin
	if maxDim <= 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		distance = fallbackDistance
	}

	// After recentering the nearest face sits at -size.Z/2
	minZ := -size.Z / 2
	far := (distance - minZ) * FarPlaneFactor
	if far <= camera.Near {
		far = CameraFar
	}

	camera.Position = scene.Vec3{X: 0, Y: 0, Z: distance}
	camera.Far = far
	camera.LookAt(scene.Vec3{})
	camera.UpdateProjectionMatrix()

	if controls != nil {
		controls.Target = scene.Vec3{}
		controls.MaxDistance = distance * OrbitLimitFactor
		controls.Update()
	}

	return Framing{
		Center:      center,
		Size:        size,
		Distance:    distance,
		Far:         far,
		MaxDistance: distance * OrbitLimitFactor,
	}
}
