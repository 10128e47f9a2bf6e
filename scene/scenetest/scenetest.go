// Package scenetest builds small glTF documents in memory for tests and
// tooling.
package scenetest

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// CubePositions and CubeIndices describe a unit cube with outward winding.
var (
	CubePositions = [][3]float32{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	CubeIndices = []uint16{
		0, 2, 1, 0, 3, 2,
		4, 5, 6, 4, 6, 7,
		0, 1, 5, 0, 5, 4,
		3, 7, 6, 3, 6, 2,
		0, 4, 7, 0, 7, 3,
		1, 2, 6, 1, 6, 5,
	}
)

type Builder struct {
	doc *gltf.Document
}

func New() *Builder {
	return &Builder{doc: gltf.NewDocument()}
}

// Mesh adds a single-primitive mesh. positions may be any accessor layout
// modeler can write; indices may be nil, []uint16 or []uint32.
func (b *Builder) Mesh(name string, positions any, indices any) int {
	var pos int
	if p, ok := positions.([][3]float32); ok {
		pos = modeler.WritePosition(b.doc, p)
	} else {
		pos = modeler.WriteAccessor(b.doc, gltf.TargetArrayBuffer, positions)
	}
	prim := &gltf.Primitive{Attributes: map[string]int{gltf.POSITION: pos}}
	if indices != nil {
		prim.Indices = gltf.Index(modeler.WriteIndices(b.doc, indices))
	}
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
	return len(b.doc.Meshes) - 1
}

func (b *Builder) Cube(name string) int {
	return b.Mesh(name, CubePositions, CubeIndices)
}

// Node adds a node. mesh < 0 means no mesh; extras nil means no extras blob.
func (b *Builder) Node(name string, mesh int, extras map[string]any, children ...int) int {
	n := &gltf.Node{Name: name, Children: children}
	if mesh >= 0 {
		n.Mesh = gltf.Index(mesh)
	}
	if extras != nil {
		n.Extras = extras
	}
	b.doc.Nodes = append(b.doc.Nodes, n)
	return len(b.doc.Nodes) - 1
}

// Translate sets a node's translation.
func (b *Builder) Translate(node int, x, y, z float64) {
	b.doc.Nodes[node].Translation = [3]float64{x, y, z}
}

// Roots appends top-level nodes to the default scene.
func (b *Builder) Roots(nodes ...int) *Builder {
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, nodes...)
	return b
}

func (b *Builder) Doc() *gltf.Document {
	return b.doc
}

// SaveGLB writes the document as a binary glTF file.
func (b *Builder) SaveGLB(path string) error {
	return gltf.SaveBinary(b.doc, path)
}

// Arena builds the canonical test map: a floor collider with a static body,
// a sensor trigger with a custom debug colour, a decoration without extras
// and a player spawn marker.
func Arena() *Builder {
	b := New()
	floorMesh := b.Cube("Floor")
	triggerMesh := b.Cube("Trigger")
	propMesh := b.Cube("Crate")

	floor := b.Node("Floor", floorMesh, map[string]any{
		"rigid_body": "Static",
		"collider":   "Solid",
	})
	trigger := b.Node("Trigger", triggerMesh, map[string]any{
		"collider":    "Sensor",
		"debug_color": "#00ff00",
	})
	prop := b.Node("Crate", propMesh, nil)
	spawn := b.Node("PlayerSpawn", -1, nil)
	b.Translate(spawn, 0, 1, 4)
	return b.Roots(floor, trigger, prop, spawn)
}
