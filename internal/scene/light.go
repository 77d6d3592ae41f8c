package scene

// AmbientLight lights every surface equally
type AmbientLight struct {
	Color     Color
	Intensity float64
}

// DirectionalLight shines from Position towards the origin
type DirectionalLight struct {
	Color     Color
	Intensity float64
	Position  Vec3
}

// Scene is the root container handed to a renderer
type Scene struct {
	Root        *Node
	Ambient     *AmbientLight
	Directional []*DirectionalLight
}

// NewScene creates an empty scene with a root group
func NewScene() *Scene {
	return &Scene{Root: NewNode("scene")}
}

func (s *Scene) Add(node *Node)    { s.Root.Add(node) }
func (s *Scene) Remove(node *Node) { s.Root.Remove(node) }

// AddDirectional adds a directional light
func (s *Scene) AddDirectional(light *DirectionalLight) {
	s.Directional = append(s.Directional, light)
}
