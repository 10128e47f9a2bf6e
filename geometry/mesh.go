package geometry

import "fmt"

// AttributePosition is the glTF semantic of the vertex position attribute.
const AttributePosition = "POSITION"

// VertexFormat is the numeric layout of one vertex attribute element.
type VertexFormat int

const (
	FormatUnknown VertexFormat = iota
	FormatFloat32x2
	FormatFloat32x3
	FormatFloat32x4
	FormatSint8x3
	FormatUint8x3
	FormatSint16x3
	FormatUint16x3
	FormatUint32x3
)

func (f VertexFormat) String() string {
	switch f {
	case FormatFloat32x2:
		return "float32x2"
	case FormatFloat32x3:
		return "float32x3"
	case FormatFloat32x4:
		return "float32x4"
	case FormatSint8x3:
		return "sint8x3"
	case FormatUint8x3:
		return "uint8x3"
	case FormatSint16x3:
		return "sint16x3"
	case FormatUint16x3:
		return "uint16x3"
	case FormatUint32x3:
		return "uint32x3"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// VertexAttribute holds one decoded attribute buffer. Values is
// [][3]float32 for FormatFloat32x3; other formats keep whatever slice the
// decoder produced.
type VertexAttribute struct {
	Format     VertexFormat
	Normalized bool
	Values     any
}

// IndexFormat is the width of the triangle index buffer.
type IndexFormat int

const (
	IndexU16 IndexFormat = iota + 1
	IndexU32
)

// Indices is a triangle-list index buffer in one of two widths.
type Indices struct {
	Format IndexFormat
	U16    []uint16
	U32    []uint32
}

func IndicesU32(ind []uint32) *Indices { return &Indices{Format: IndexU32, U32: ind} }
func IndicesU16(ind []uint16) *Indices { return &Indices{Format: IndexU16, U16: ind} }

func (ix *Indices) Len() int {
	if ix == nil {
		return 0
	}
	switch ix.Format {
	case IndexU16:
		return len(ix.U16)
	case IndexU32:
		return len(ix.U32)
	}
	return 0
}

// At returns the i-th index widened to 32 bits.
func (ix *Indices) At(i int) uint32 {
	if ix.Format == IndexU16 {
		return uint32(ix.U16[i])
	}
	return ix.U32[i]
}

// Topology is the primitive assembly mode of a mesh.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyTriangleFan
	TopologyLines
	TopologyPoints
)

// Mesh is the engine-side mesh asset: named attribute buffers plus an
// optional index buffer. The compiler only reads it.
type Mesh struct {
	Name       string
	Topology   Topology
	Attributes map[string]VertexAttribute
	Indices    *Indices
}

func NewMesh(name string) *Mesh {
	return &Mesh{Name: name, Attributes: make(map[string]VertexAttribute)}
}

// SetPositions stores a float32x3 position buffer.
func (m *Mesh) SetPositions(pos [][3]float32) *Mesh {
	m.SetAttribute(AttributePosition, VertexAttribute{Format: FormatFloat32x3, Values: pos})
	return m
}

func (m *Mesh) SetAttribute(name string, attr VertexAttribute) {
	if m.Attributes == nil {
		m.Attributes = make(map[string]VertexAttribute)
	}
	m.Attributes[name] = attr
}

func (m *Mesh) Attribute(name string) (VertexAttribute, bool) {
	if m == nil {
		return VertexAttribute{}, false
	}
	a, ok := m.Attributes[name]
	return a, ok
}
