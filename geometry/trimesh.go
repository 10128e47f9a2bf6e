package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrMissingIndices   = errors.New("geometry: mesh has no index buffer")
	ErrMissingPositions = errors.New("geometry: mesh has no position attribute")
)

// FormatError reports a buffer the extractor cannot interpret.
type FormatError struct {
	Mesh      string
	Attribute string
	Reason    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("geometry: mesh %q attribute %s: %s", e.Mesh, e.Attribute, e.Reason)
}

// TriMesh is the physics-ready form of a mesh: a vertex list and a triangle
// list indexing into it, both in source order.
type TriMesh struct {
	Vertices  []mgl32.Vec3
	Triangles [][3]uint32
}

func (t TriMesh) Empty() bool {
	return len(t.Triangles) == 0
}

// Triangle returns the three corners of triangle i in winding order.
func (t TriMesh) Triangle(i int) [3]mgl32.Vec3 {
	tri := t.Triangles[i]
	return [3]mgl32.Vec3{t.Vertices[tri[0]], t.Vertices[tri[1]], t.Vertices[tri[2]]}
}

// Bounds returns the axis-aligned box around every vertex.
func (t TriMesh) Bounds() (min, max mgl32.Vec3) {
	if len(t.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	for _, v := range t.Vertices {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max
}

// ExtractTriMesh converts a mesh's float32x3 positions and triangle-list
// indices into a TriMesh. Any other position layout is a *FormatError rather
// than an empty shape; a mesh without indices fails with ErrMissingIndices.
func ExtractTriMesh(m *Mesh) (TriMesh, error) {
	if m == nil {
		return TriMesh{}, ErrMissingPositions
	}
	attr, ok := m.Attribute(AttributePosition)
	if !ok {
		return TriMesh{}, fmt.Errorf("%w: %q", ErrMissingPositions, m.Name)
	}
	if attr.Format != FormatFloat32x3 {
		return TriMesh{}, &FormatError{
			Mesh:      m.Name,
			Attribute: AttributePosition,
			Reason:    fmt.Sprintf("unsupported vertex format %s, want %s", attr.Format, FormatFloat32x3),
		}
	}
	pos, ok := attr.Values.([][3]float32)
	if !ok {
		return TriMesh{}, &FormatError{
			Mesh:      m.Name,
			Attribute: AttributePosition,
			Reason:    fmt.Sprintf("float32x3 attribute holds %T", attr.Values),
		}
	}
	if m.Topology != TopologyTriangleList {
		return TriMesh{}, &FormatError{
			Mesh:      m.Name,
			Attribute: "indices",
			Reason:    fmt.Sprintf("topology %d is not a triangle list", m.Topology),
		}
	}
	if m.Indices == nil || m.Indices.Len() == 0 {
		return TriMesh{}, fmt.Errorf("%w: %q", ErrMissingIndices, m.Name)
	}

	n := m.Indices.Len()
	if n%3 != 0 {
		return TriMesh{}, &FormatError{
			Mesh:      m.Name,
			Attribute: "indices",
			Reason:    fmt.Sprintf("%d indices is not a triangle list", n),
		}
	}

	out := TriMesh{
		Vertices:  make([]mgl32.Vec3, len(pos)),
		Triangles: make([][3]uint32, n/3),
	}
	for i, p := range pos {
		out.Vertices[i] = mgl32.Vec3{p[0], p[1], p[2]}
	}
	limit := uint32(len(pos))
	for i := range out.Triangles {
		tri := [3]uint32{m.Indices.At(i * 3), m.Indices.At(i*3 + 1), m.Indices.At(i*3 + 2)}
		for _, idx := range tri {
			if idx >= limit {
				return TriMesh{}, &FormatError{
					Mesh:      m.Name,
					Attribute: "indices",
					Reason:    fmt.Sprintf("triangle %d references vertex %d of %d", i, idx, limit),
				}
			}
		}
		out.Triangles[i] = tri
	}
	return out, nil
}
