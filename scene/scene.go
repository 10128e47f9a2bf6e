package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/extras"
	"github.com/milk9111/arena/geometry"
)

// Scene is one decoded scene of a glTF document, ready to instantiate.
type Scene struct {
	Name  string
	Nodes []Node
	// Roots are indices into Nodes of the scene's top-level nodes.
	Roots []int
	// Meshes holds the store handle of every primitive, indexed by the
	// values found in Node.Primitives. Filled when the asset is polled.
	Meshes []geometry.MeshHandle
}

// Node is one scene-graph node.
type Node struct {
	Name      string
	Transform component.Transform
	Extras    extras.Extras
	// HasExtras is set when the node carried an extras blob at all, even
	// one with no recognised fields.
	HasExtras bool
	Children  []int
	// Primitives are indices into the decoded mesh list, one per drawable
	// primitive of the node's mesh.
	Primitives []int
}

// SplitLabel splits "path/file.glb#Scene2" into the file path and scene
// index. A missing label selects -1, meaning the document's default scene.
func SplitLabel(path string) (string, int, error) {
	file, label, found := strings.Cut(path, "#")
	if !found || label == "" {
		return file, -1, nil
	}
	num, ok := strings.CutPrefix(label, "Scene")
	if !ok {
		return "", 0, fmt.Errorf("scene: unsupported asset label %q", label)
	}
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 0 {
		return "", 0, fmt.Errorf("scene: bad scene index in label %q", label)
	}
	return file, idx, nil
}
