package viewer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/tagview/internal/scene"
)

func TestFrameModel(t *testing.T) {
	tests := []struct {
		name string
		min  scene.Vec3
		max  scene.Vec3
	}{
		{"unit cube at origin", scene.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, scene.Vec3{X: 0.5, Y: 0.5, Z: 0.5}},
		{"tall offset box", scene.Vec3{X: 10, Y: 0, Z: 3}, scene.Vec3{X: 12, Y: 8, Z: 4}},
		{"flat plate", scene.Vec3{X: -4, Y: 0, Z: -4}, scene.Vec3{X: 4, Y: 0, Z: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := scene.NewNode("model")
			root.Add(scene.NewMeshNode("mesh", &scene.Geometry{Bounds: scene.Box3{Min: tt.min, Max: tt.max}}, scene.MaterialSlot{}))

			camera := scene.NewPerspectiveCamera(CameraFOV, 1, CameraNear, CameraFar)
			controls := scene.NewOrbitControls(camera)
			framing := FrameModel(root, camera, controls)

			size := tt.max.Sub(tt.min)
			maxDim := size.MaxComponent()
			wantDistance := math.Abs(maxDim/2/math.Tan(CameraFOV*math.Pi/360)) * FramingMargin

			assert.InDelta(t, wantDistance, framing.Distance, 1e-9)
			assert.InDelta(t, wantDistance, camera.Position.Z, 1e-9)
			assert.InDelta(t, (wantDistance+size.Z/2)*FarPlaneFactor, camera.Far, 1e-9)
			assert.InDelta(t, wantDistance*OrbitLimitFactor, controls.MaxDistance, 1e-9)
			assert.Equal(t, scene.Vec3{}, controls.Target)

			center := root.BoundingBox().Center()
			assert.InDelta(t, 0, center.X, 1e-9)
			assert.InDelta(t, 0, center.Y, 1e-9)
			assert.InDelta(t, 0, center.Z, 1e-9)

			// Whole model lies between the near and far planes
			assert.Greater(t, camera.Far, camera.Position.Z+size.Z/2)
		})
	}
}

func TestFrameModel_EmptyModel(t *testing.T) {
	root := scene.NewNode("empty")
	camera := scene.NewPerspectiveCamera(CameraFOV, 1, CameraNear, CameraFar)
	framing := FrameModel(root, camera, nil)

	assert.Equal(t, float64(fallbackDistance), framing.Distance)
	assert.Equal(t, float64(fallbackDistance), camera.Position.Z)
	assert.Greater(t, camera.Far, camera.Near)
}

func TestApplyHighlight(t *testing.T) {
	single := &scene.Material{}
	a, b := &scene.Material{}, &scene.Material{}

	root := scene.NewNode("root")
	root.Add(scene.NewMeshNode("single", nil, scene.SingleMaterial(single)))
	group := scene.NewNode("group")
	group.Add(scene.NewMeshNode("multi", nil, scene.MultipleMaterials(a, b)))
	group.Add(scene.NewMeshNode("bare", nil, scene.MaterialSlot{}))
	root.Add(group)

	touched := ApplyHighlight(root, HighlightEmissive)
	assert.Equal(t, 3, touched)
	for _, m := range []*scene.Material{single, a, b} {
		assert.Equal(t, "#222222", m.Emissive.Hex())
	}
}
