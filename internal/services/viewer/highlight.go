package viewer

import "github.com/ternarybob/tagview/internal/scene"

// HighlightEmissive is the self-illumination given to every material of a loaded model
var HighlightEmissive = scene.Color(0x222222)

// ApplyHighlight sets emissive on every material under root and returns how many it touched.
// Meshes without materials are skipped.
func ApplyHighlight(root *scene.Node, emissive scene.Color) int {
	touched := 0
	root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		n.Mesh.Material.Each(func(m *scene.Material) {
			m.Emissive = emissive
			touched++
		})
	})
	return touched
}
