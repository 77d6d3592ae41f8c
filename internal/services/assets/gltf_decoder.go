// Package assets fetches 3D assets from the content source and decodes them into scene graphs.
package assets

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/scene"
)

// GLTFDecoder decodes binary glTF (.glb) and embedded-buffer .gltf assets
type GLTFDecoder struct {
	source interfaces.ContentSource
	logger arbor.ILogger
}

// NewGLTFDecoder creates a decoder reading from source
func NewGLTFDecoder(source interfaces.ContentSource, logger arbor.ILogger) *GLTFDecoder {
	return &GLTFDecoder{source: source, logger: logger}
}

// Decode fetches path and builds its default scene. progress receives byte counts as the
// asset streams in; cancelling ctx aborts the read.
func (d *GLTFDecoder) Decode(ctx context.Context, path string, progress interfaces.ProgressFunc) (*scene.Node, error) {
	rc, size, err := d.source.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset %s: %w", path, err)
	}
	defer rc.Close()

	reader := &progressReader{ctx: ctx, r: rc, total: size, progress: progress}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(reader).Decode(doc); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to decode asset %s: %w", path, err)
	}

	root, err := BuildScene(doc, path)
	if err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("path", path).
		Int64("bytes", reader.loaded).
		Int("nodes", len(doc.Nodes)).
		Int("meshes", root.MeshCount()).
		Msg("Asset decoded")

	return root, nil
}

// progressReader reports cumulative bytes read and stops once ctx is done
type progressReader struct {
	ctx      context.Context
	r        io.Reader
	loaded   int64
	total    int64
	progress interfaces.ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(buf)
	if n > 0 {
		p.loaded += int64(n)
		if p.progress != nil {
			p.progress(p.loaded, p.total)
		}
	}
	return n, err
}

// BuildScene converts a decoded document into a scene graph rooted at a group named after path.
// Mesh bounds come from the POSITION accessor min/max, so vertex buffers are never read.
func BuildScene(doc *gltf.Document, path string) (*scene.Node, error) {
	root := scene.NewNode(path)

	materials := make([]*scene.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		materials[i] = convertMaterial(m)
	}

	built := make(map[int]bool)
	var build func(index int) (*scene.Node, error)
	build = func(index int) (*scene.Node, error) {
		if index < 0 || index >= len(doc.Nodes) {
			return nil, fmt.Errorf("node index %d out of range", index)
		}
		if built[index] {
			return nil, fmt.Errorf("node %d appears more than once in the hierarchy", index)
		}
		built[index] = true

		src := doc.Nodes[index]
		node := scene.NewNode(src.Name)
		node.Transform = nodeTransform(src)

		if src.Mesh != nil {
			meshIndex := int(*src.Mesh)
			if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
				return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
			}
			for i, prim := range doc.Meshes[meshIndex].Primitives {
				geometry := primitiveGeometry(doc, prim)
				slot := scene.MaterialSlot{}
				if prim.Material != nil {
					mi := int(*prim.Material)
					if mi >= 0 && mi < len(materials) {
						slot = scene.SingleMaterial(materials[mi])
					}
				}
				child := scene.NewMeshNode(fmt.Sprintf("%s#%d", doc.Meshes[meshIndex].Name, i), geometry, slot)
				node.Add(child)
			}
		}

		for _, c := range src.Children {
			child, err := build(int(c))
			if err != nil {
				return nil, err
			}
			node.Add(child)
		}
		return node, nil
	}

	for _, index := range rootNodes(doc) {
		node, err := build(index)
		if err != nil {
			return nil, fmt.Errorf("invalid asset %s: %w", path, err)
		}
		root.Add(node)
	}

	return root, nil
}

// rootNodes returns the node indices of the default scene, or every parentless node
// when the document declares no scenes
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		sceneIndex := 0
		if doc.Scene != nil {
			sceneIndex = int(*doc.Scene)
		}
		if sceneIndex < 0 || sceneIndex >= len(doc.Scenes) {
			sceneIndex = 0
		}
		out := make([]int, 0, len(doc.Scenes[sceneIndex].Nodes))
		for _, n := range doc.Scenes[sceneIndex].Nodes {
			out = append(out, int(n))
		}
		return out
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[int(c)] = true
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !isChild[i] {
			out = append(out, i)
		}
	}
	return out
}

func convertMaterial(m *gltf.Material) *scene.Material {
	if m == nil {
		return &scene.Material{Color: scene.White}
	}
	return &scene.Material{
		Name:     m.Name,
		Color:    scene.White,
		Emissive: scene.Black,
	}
}

func primitiveGeometry(doc *gltf.Document, prim *gltf.Primitive) *scene.Geometry {
	geometry := &scene.Geometry{Bounds: scene.EmptyBox()}

	index, ok := prim.Attributes["POSITION"]
	if !ok {
		return geometry
	}
	ai := int(index)
	if ai < 0 || ai >= len(doc.Accessors) {
		return geometry
	}

	accessor := doc.Accessors[ai]
	geometry.VertexCount = int(accessor.Count)
	if len(accessor.Min) >= 3 && len(accessor.Max) >= 3 {
		geometry.Bounds = scene.Box3{
			Min: scene.Vec3{X: float64(accessor.Min[0]), Y: float64(accessor.Min[1]), Z: float64(accessor.Min[2])},
			Max: scene.Vec3{X: float64(accessor.Max[0]), Y: float64(accessor.Max[1]), Z: float64(accessor.Max[2])},
		}
	}
	return geometry
}

// nodeTransform reads TRS properties, falling back to decomposing the matrix when one is set.
// Zero scale and zero rotation are treated as unset.
func nodeTransform(n *gltf.Node) scene.Transform {
	var m [16]float64
	for i, v := range n.Matrix {
		m[i] = float64(v)
	}
	if !isIdentityOrZero(m) {
		return decomposeMatrix(m)
	}

	t := scene.IdentityTransform
	t.Position = scene.Vec3{X: float64(n.Translation[0]), Y: float64(n.Translation[1]), Z: float64(n.Translation[2])}

	scale := scene.Vec3{X: float64(n.Scale[0]), Y: float64(n.Scale[1]), Z: float64(n.Scale[2])}
	if scale != (scene.Vec3{}) {
		t.Scale = scale
	}

	rot := scene.Quat{X: float64(n.Rotation[0]), Y: float64(n.Rotation[1]), Z: float64(n.Rotation[2]), W: float64(n.Rotation[3])}
	if rot != (scene.Quat{}) {
		t.Rotation = rot
	}
	return t
}

func isIdentityOrZero(m [16]float64) bool {
	zero := true
	for _, v := range m {
		if v != 0 {
			zero = false
			break
		}
	}
	if zero {
		return true
	}
	for i, v := range m {
		want := 0.0
		if i%5 == 0 {
			want = 1
		}
		if v != want {
			return false
		}
	}
	return true
}

// decomposeMatrix splits a column-major affine matrix into translation, rotation and scale
func decomposeMatrix(m [16]float64) scene.Transform {
	col := func(c int) scene.Vec3 { return scene.Vec3{X: m[c*4], Y: m[c*4+1], Z: m[c*4+2]} }
	sx, sy, sz := col(0).Length(), col(1).Length(), col(2).Length()

	t := scene.Transform{
		Position: scene.Vec3{X: m[12], Y: m[13], Z: m[14]},
		Scale:    scene.Vec3{X: sx, Y: sy, Z: sz},
		Rotation: scene.IdentityQuat,
	}
	if sx == 0 || sy == 0 || sz == 0 {
		return t
	}

	// Rotation matrix rows r[row][col]
	r := [3][3]float64{
		{m[0] / sx, m[4] / sy, m[8] / sz},
		{m[1] / sx, m[5] / sy, m[9] / sz},
		{m[2] / sx, m[6] / sy, m[10] / sz},
	}
	t.Rotation = quatFromRotation(r)
	return t
}

func quatFromRotation(r [3][3]float64) scene.Quat {
	trace := r[0][0] + r[1][1] + r[2][2]
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return scene.Quat{
			W: 0.25 / s,
			X: (r[2][1] - r[1][2]) * s,
			Y: (r[0][2] - r[2][0]) * s,
			Z: (r[1][0] - r[0][1]) * s,
		}
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := 2 * math.Sqrt(1+r[0][0]-r[1][1]-r[2][2])
		return scene.Quat{
			W: (r[2][1] - r[1][2]) / s,
			X: 0.25 * s,
			Y: (r[0][1] + r[1][0]) / s,
			Z: (r[0][2] + r[2][0]) / s,
		}
	case r[1][1] > r[2][2]:
		s := 2 * math.Sqrt(1+r[1][1]-r[0][0]-r[2][2])
		return scene.Quat{
			W: (r[0][2] - r[2][0]) / s,
			X: (r[0][1] + r[1][0]) / s,
			Y: 0.25 * s,
			Z: (r[1][2] + r[2][1]) / s,
		}
	default:
		s := 2 * math.Sqrt(1+r[2][2]-r[0][0]-r[1][1])
		return scene.Quat{
			W: (r[1][0] - r[0][1]) / s,
			X: (r[0][2] + r[2][0]) / s,
			Y: (r[1][2] + r[2][1]) / s,
			Z: 0.25 * s,
		}
	}
}
