package scene

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Color is a 24-bit RGB value
type Color uint32

const (
	White Color = 0xffffff
	Black Color = 0x000000
)

// Hex formats the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// ParseColor parses #rrggbb or rrggbb
func ParseColor(s string) (Color, error) {
	var v uint32
	if _, err := fmt.Sscanf(strings.TrimPrefix(s, "#"), "%06x", &v); err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// Material is a surface description owned by a mesh
type Material struct {
	Name     string
	Color    Color
	Emissive Color
	disposed atomic.Bool
}

func (m *Material) Dispose()       { m.disposed.Store(true) }
func (m *Material) Disposed() bool { return m.disposed.Load() }

// MaterialKind distinguishes the shapes a mesh's material slot can take
type MaterialKind int

const (
	MaterialAbsent MaterialKind = iota
	MaterialSingle
	MaterialMultiple
)

// MaterialSlot holds zero, one or many materials of a mesh
type MaterialSlot struct {
	Kind     MaterialKind
	Single   *Material
	Multiple []*Material
}

// SingleMaterial builds a slot holding one material
func SingleMaterial(m *Material) MaterialSlot {
	if m == nil {
		return MaterialSlot{}
	}
	return MaterialSlot{Kind: MaterialSingle, Single: m}
}

// MultipleMaterials builds a slot for meshes with per-group materials
func MultipleMaterials(ms ...*Material) MaterialSlot {
	if len(ms) == 0 {
		return MaterialSlot{}
	}
	return MaterialSlot{Kind: MaterialMultiple, Multiple: ms}
}

// Each visits every material in the slot; Absent visits nothing
func (s MaterialSlot) Each(fn func(*Material)) {
	switch s.Kind {
	case MaterialSingle:
		if s.Single != nil {
			fn(s.Single)
		}
	case MaterialMultiple:
		for _, m := range s.Multiple {
			if m != nil {
				fn(m)
			}
		}
	}
}

// Geometry is vertex data reduced to what the viewer needs: local bounds and counts
type Geometry struct {
	Bounds      Box3
	VertexCount int
	disposed    atomic.Bool
}

func (g *Geometry) Dispose()       { g.disposed.Store(true) }
func (g *Geometry) Disposed() bool { return g.disposed.Load() }

// Mesh pairs geometry with its material slot
type Mesh struct {
	Geometry *Geometry
	Material MaterialSlot
}

// Node is a scene graph element. A node without Mesh is a group.
type Node struct {
	Name      string
	Transform Transform
	Mesh      *Mesh
	Children  []*Node
	parent    *Node
}

// NewNode creates a group node with the identity transform
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: IdentityTransform}
}

// NewMeshNode creates a node carrying a mesh
func NewMeshNode(name string, geometry *Geometry, material MaterialSlot) *Node {
	n := NewNode(name)
	n.Mesh = &Mesh{Geometry: geometry, Material: material}
	return n
}

// Add attaches child to n, detaching it from any previous parent
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.Children = append(n.Children, child)
}

// Remove detaches child; it is a no-op when child is not a direct child
func (n *Node) Remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) Parent() *Node { return n.parent }

// Traverse visits n and all descendants depth-first, parents before children
func (n *Node) Traverse(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// WorldTransform composes transforms from the root down to n
func (n *Node) WorldTransform() Transform {
	t := n.Transform
	for p := n.parent; p != nil; p = p.parent {
		t = t.Then(p.Transform)
	}
	return t
}

// BoundingBox returns the world-space box enclosing every mesh under n
func (n *Node) BoundingBox() Box3 {
	box := EmptyBox()
	var walk func(node *Node, parent Transform)
	walk = func(node *Node, parent Transform) {
		world := node.Transform.Then(parent)
		if node.Mesh != nil && node.Mesh.Geometry != nil {
			box = box.Union(node.Mesh.Geometry.Bounds.Transformed(world))
		}
		for _, c := range node.Children {
			walk(c, world)
		}
	}

	parent := IdentityTransform
	if n.parent != nil {
		parent = n.parent.WorldTransform()
	}
	walk(n, parent)
	return box
}

// MeshCount returns the number of mesh nodes under n
func (n *Node) MeshCount() int {
	count := 0
	n.Traverse(func(node *Node) {
		if node.Mesh != nil {
			count++
		}
	})
	return count
}

// Dispose releases every geometry and material under n
func (n *Node) Dispose() {
	n.Traverse(func(node *Node) {
		if node.Mesh == nil {
			return
		}
		if node.Mesh.Geometry != nil {
			node.Mesh.Geometry.Dispose()
		}
		node.Mesh.Material.Each(func(m *Material) { m.Dispose() })
	})
}
