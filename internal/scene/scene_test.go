package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCube() *Geometry {
	return &Geometry{
		Bounds:      Box3{Min: Vec3{-0.5, -0.5, -0.5}, Max: Vec3{0.5, 0.5, 0.5}},
		VertexCount: 8,
	}
}

func TestBox3_EmptyAndExpand(t *testing.T) {
	box := EmptyBox()
	assert.True(t, box.IsEmpty())
	assert.Equal(t, Vec3{}, box.Size())

	box = box.ExpandByPoint(Vec3{1, 2, 3}).ExpandByPoint(Vec3{-1, 0, 5})
	assert.False(t, box.IsEmpty())
	assert.Equal(t, Vec3{-1, 0, 3}, box.Min)
	assert.Equal(t, Vec3{1, 2, 5}, box.Max)
	assert.Equal(t, Vec3{2, 2, 2}, box.Size())
	assert.Equal(t, Vec3{0, 1, 4}, box.Center())
}

func TestNode_BoundingBoxAppliesTransforms(t *testing.T) {
	root := NewNode("root")
	root.Transform.Position = Vec3{10, 0, 0}

	child := NewMeshNode("cube", unitCube(), SingleMaterial(&Material{}))
	child.Transform.Scale = Vec3{2, 2, 2}
	child.Transform.Position = Vec3{0, 1, 0}
	root.Add(child)

	box := root.BoundingBox()
	assert.InDelta(t, 9, box.Min.X, 1e-9)
	assert.InDelta(t, 11, box.Max.X, 1e-9)
	assert.InDelta(t, 0, box.Min.Y, 1e-9)
	assert.InDelta(t, 2, box.Max.Y, 1e-9)
}

func TestNode_BoundingBoxRotation(t *testing.T) {
	node := NewMeshNode("bar", &Geometry{Bounds: Box3{Min: Vec3{-2, 0, 0}, Max: Vec3{2, 0, 0}}}, MaterialSlot{})
	half := math.Pi / 4 // 90 degrees around Z
	node.Transform.Rotation = Quat{Z: math.Sin(half), W: math.Cos(half)}

	box := node.BoundingBox()
	assert.InDelta(t, 0, box.Size().X, 1e-9)
	assert.InDelta(t, 4, box.Size().Y, 1e-9)
}

func TestNode_AddRemoveTraverse(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewMeshNode("c", unitCube(), MaterialSlot{})
	a.Add(b)
	b.Add(c)

	var names []string
	a.Traverse(func(n *Node) { names = append(names, n.Name) })
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, 1, a.MeshCount())

	// Re-parenting detaches from the old parent
	a.Add(c)
	assert.Empty(t, b.Children)
	assert.Same(t, a, c.Parent())

	a.Remove(c)
	assert.Nil(t, c.Parent())
	assert.Equal(t, 0, a.MeshCount())
}

func TestNode_Dispose(t *testing.T) {
	m1, m2, m3 := &Material{}, &Material{}, &Material{}
	g1, g2 := unitCube(), unitCube()

	root := NewNode("root")
	root.Add(NewMeshNode("single", g1, SingleMaterial(m1)))
	root.Add(NewMeshNode("multi", g2, MultipleMaterials(m2, m3)))
	root.Add(NewMeshNode("bare", nil, MaterialSlot{}))

	root.Dispose()

	for _, m := range []*Material{m1, m2, m3} {
		assert.True(t, m.Disposed())
	}
	assert.True(t, g1.Disposed())
	assert.True(t, g2.Disposed())
}

func TestMaterialSlot_Each(t *testing.T) {
	tests := []struct {
		name string
		slot MaterialSlot
		want int
	}{
		{"absent", MaterialSlot{}, 0},
		{"single", SingleMaterial(&Material{}), 1},
		{"single nil", SingleMaterial(nil), 0},
		{"multiple", MultipleMaterials(&Material{}, nil, &Material{}), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := 0
			tt.slot.Each(func(*Material) { count++ })
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestColor_HexRoundTrip(t *testing.T) {
	c, err := ParseColor("#222222")
	require.NoError(t, err)
	assert.Equal(t, Color(0x222222), c)
	assert.Equal(t, "#222222", c.Hex())

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)
}

func TestSurface_ObserveAndDetach(t *testing.T) {
	surface := NewSurface(800, 600)
	assert.InDelta(t, 800.0/600.0, surface.Aspect(), 1e-9)

	var got [][2]int
	unobserve := surface.Observe(func(w, h int) { got = append(got, [2]int{w, h}) })
	assert.Equal(t, 1, surface.ObserverCount())

	require.NoError(t, surface.Resize(1024, 512))
	require.NoError(t, surface.Resize(1024, 512)) // unchanged size does not notify
	assert.Equal(t, [][2]int{{1024, 512}}, got)

	unobserve()
	unobserve()
	assert.Equal(t, 0, surface.ObserverCount())

	require.NoError(t, surface.Resize(640, 480))
	assert.Len(t, got, 1)

	assert.Error(t, surface.Resize(0, 10))
}

func TestSurface_NotifiesInRegistrationOrder(t *testing.T) {
	surface := NewSurface(800, 600)

	// Sessions come and go; only the attached observers are called
	for i := 0; i < 1000; i++ {
		surface.Observe(func(w, h int) {})()
	}

	var order []string
	detach := surface.Observe(func(w, h int) { order = append(order, "first") })
	surface.Observe(func(w, h int) { order = append(order, "second") })
	surface.Observe(func(w, h int) { order = append(order, "third") })
	detach()

	require.NoError(t, surface.Resize(1024, 768))
	assert.Equal(t, []string{"second", "third"}, order)
	assert.Equal(t, 2, surface.ObserverCount())
}

func TestOrbitControls_ClampsToMaxDistance(t *testing.T) {
	camera := NewPerspectiveCamera(75, 1, 0.1, 1000)
	camera.Position = Vec3{0, 0, 100}
	controls := NewOrbitControls(camera)
	controls.Target = Vec3{}
	controls.MaxDistance = 10

	assert.True(t, controls.Update())
	assert.InDelta(t, 10, camera.Distance(), 1e-9)
	assert.Equal(t, int64(1), controls.Updates())

	controls.Dispose()
	assert.False(t, controls.Update())
	assert.Equal(t, int64(1), controls.Updates())
}

func TestOrbitControls_DampedRotationKeepsDistance(t *testing.T) {
	camera := NewPerspectiveCamera(75, 1, 0.1, 1000)
	camera.Position = Vec3{0, 0, 5}
	controls := NewOrbitControls(camera)
	controls.Target = Vec3{}

	controls.Rotate(math.Pi / 2)
	for i := 0; i < 10; i++ {
		controls.Update()
	}
	assert.InDelta(t, 5, camera.Distance(), 1e-9)
	assert.NotEqual(t, 0.0, camera.Position.X)
}

func TestHeadlessRenderer(t *testing.T) {
	surface := NewSurface(320, 240)
	r, err := NewHeadlessRenderer(surface)
	require.NoError(t, err)
	renderer := r.(*HeadlessRenderer)

	scene := NewScene()
	scene.Add(NewMeshNode("cube", unitCube(), MaterialSlot{}))
	camera := NewPerspectiveCamera(75, surface.Aspect(), 0.1, 1000)

	require.NoError(t, renderer.Render(scene, camera))
	require.NoError(t, renderer.Render(scene, camera))
	assert.Equal(t, int64(2), renderer.Frames())
	assert.Equal(t, 1, renderer.LastMeshCount())

	renderer.SetSize(100, 50)
	w, h := renderer.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	renderer.Dispose()
	assert.ErrorIs(t, renderer.Render(scene, camera), ErrRendererDisposed)
}
