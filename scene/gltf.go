package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/extras"
	"github.com/milk9111/arena/geometry"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// decoded is the output of a background load, before its meshes are moved
// into the shared store on the tick thread.
type decoded struct {
	scene  *Scene
	meshes []*geometry.Mesh
}

// decodeDocument converts scene idx of doc (-1 = default scene) into a
// Scene plus the primitive meshes it references. Bad per-node extras are
// logged and dropped; bad accessors fail the whole asset.
func decodeDocument(doc *gltf.Document, idx int, log *zap.Logger) (*decoded, error) {
	if idx < 0 {
		idx = 0
		if doc.Scene != nil {
			idx = *doc.Scene
		}
	}
	if idx >= len(doc.Scenes) || doc.Scenes[idx] == nil {
		return nil, fmt.Errorf("%w: scene %d of %d", ErrNoScene, idx, len(doc.Scenes))
	}
	src := doc.Scenes[idx]

	out := &decoded{scene: &Scene{Name: src.Name}}
	if out.scene.Name == "" {
		out.scene.Name = fmt.Sprintf("Scene%d", idx)
	}

	// Nodes stay in visiting while their subtree is walked; reaching one
	// again there is a cycle, reaching a finished one a second parent.
	nodeIndex := make(map[int]int, len(doc.Nodes))
	visiting := make(map[int]bool)
	meshCache := make(map[int][]int)

	var visit func(n int) (int, error)
	visit = func(n int) (int, error) {
		if n < 0 || n >= len(doc.Nodes) {
			return 0, fmt.Errorf("scene: node index %d out of range", n)
		}
		if visiting[n] {
			return 0, fmt.Errorf("%w: node %d (%q) is part of a cycle", ErrNodeGraph, n, doc.Nodes[n].Name)
		}
		if _, ok := nodeIndex[n]; ok {
			return 0, fmt.Errorf("%w: node %d (%q) has more than one parent", ErrNodeGraph, n, doc.Nodes[n].Name)
		}
		visiting[n] = true
		defer delete(visiting, n)

		src := doc.Nodes[n]
		node := Node{
			Name:      src.Name,
			Transform: nodeTransform(src),
		}
		ex, err := extras.FromAny(src.Extras)
		if err != nil {
			log.Warn("dropping node extras", zap.String("node", src.Name), zap.Int("index", n), zap.Error(err))
		}
		node.Extras = ex
		node.HasExtras = src.Extras != nil

		if src.Mesh != nil {
			prims, ok := meshCache[*src.Mesh]
			if !ok {
				var err error
				prims, err = decodeMesh(doc, *src.Mesh, out)
				if err != nil {
					return 0, err
				}
				meshCache[*src.Mesh] = prims
			}
			node.Primitives = prims
		}

		at := len(out.scene.Nodes)
		nodeIndex[n] = at
		out.scene.Nodes = append(out.scene.Nodes, node)
		for _, c := range src.Children {
			ci, err := visit(c)
			if err != nil {
				return 0, err
			}
			out.scene.Nodes[at].Children = append(out.scene.Nodes[at].Children, ci)
		}
		return at, nil
	}

	for _, n := range src.Nodes {
		at, err := visit(n)
		if err != nil {
			return nil, err
		}
		out.scene.Roots = append(out.scene.Roots, at)
	}
	return out, nil
}

func nodeTransform(n *gltf.Node) component.Transform {
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return component.Transform{
		Translation: mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		Rotation:    mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}},
		Scale:       mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}

func decodeMesh(doc *gltf.Document, idx int, out *decoded) ([]int, error) {
	if idx < 0 || idx >= len(doc.Meshes) {
		return nil, fmt.Errorf("scene: mesh index %d out of range", idx)
	}
	src := doc.Meshes[idx]
	prims := make([]int, 0, len(src.Primitives))
	for pi, p := range src.Primitives {
		m := geometry.NewMesh(fmt.Sprintf("%s/Primitive%d", meshName(src, idx), pi))
		m.Topology = topology(p.Mode)
		if acr, ok := p.Attributes[gltf.POSITION]; ok {
			attr, err := readPositions(doc, acr)
			if err != nil {
				return nil, fmt.Errorf("scene: mesh %q primitive %d: %w", src.Name, pi, err)
			}
			m.SetAttribute(geometry.AttributePosition, attr)
		}
		if p.Indices != nil {
			ind, err := readIndices(doc, *p.Indices)
			if err != nil {
				return nil, fmt.Errorf("scene: mesh %q primitive %d: %w", src.Name, pi, err)
			}
			m.Indices = ind
		}
		prims = append(prims, len(out.meshes))
		out.meshes = append(out.meshes, m)
	}
	return prims, nil
}

func meshName(m *gltf.Mesh, idx int) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("Mesh%d", idx)
}

func topology(mode gltf.PrimitiveMode) geometry.Topology {
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		return geometry.TopologyTriangleStrip
	case gltf.PrimitiveTriangleFan:
		return geometry.TopologyTriangleFan
	case gltf.PrimitiveLines, gltf.PrimitiveLineLoop, gltf.PrimitiveLineStrip:
		return geometry.TopologyLines
	case gltf.PrimitivePoints:
		return geometry.TopologyPoints
	default:
		return geometry.TopologyTriangleList
	}
}

// readPositions decodes a position accessor without converting its layout;
// the extractor decides which layouts it accepts.
func readPositions(doc *gltf.Document, idx int) (geometry.VertexAttribute, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return geometry.VertexAttribute{}, err
	}
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return geometry.VertexAttribute{}, fmt.Errorf("read positions: %w", err)
	}
	attr := geometry.VertexAttribute{Normalized: acr.Normalized, Values: data}
	switch data.(type) {
	case [][3]float32:
		attr.Format = geometry.FormatFloat32x3
	case [][2]float32:
		attr.Format = geometry.FormatFloat32x2
	case [][4]float32:
		attr.Format = geometry.FormatFloat32x4
	case [][3]int8:
		attr.Format = geometry.FormatSint8x3
	case [][3]uint8:
		attr.Format = geometry.FormatUint8x3
	case [][3]int16:
		attr.Format = geometry.FormatSint16x3
	case [][3]uint16:
		attr.Format = geometry.FormatUint16x3
	case [][3]uint32:
		attr.Format = geometry.FormatUint32x3
	default:
		attr.Format = geometry.FormatUnknown
	}
	return attr, nil
}

func readIndices(doc *gltf.Document, idx int) (*geometry.Indices, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	if acr.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("index accessor %d has type %v", idx, acr.Type)
	}
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read indices: %w", err)
	}
	switch ind := data.(type) {
	case []uint32:
		return geometry.IndicesU32(ind), nil
	case []uint16:
		return geometry.IndicesU16(ind), nil
	case []uint8:
		wide := make([]uint16, len(ind))
		for i, v := range ind {
			wide[i] = uint16(v)
		}
		return geometry.IndicesU16(wide), nil
	default:
		return nil, fmt.Errorf("index accessor %d holds %T", idx, data)
	}
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}
