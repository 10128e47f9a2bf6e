package physics

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

var (
	fallbackShapeColor = color.NRGBA{R: 26, G: 153, B: 26, A: 128}
	sensorShapeColor   = color.NRGBA{R: 255, G: 217, B: 51, A: 255}
)

// Camera maps ground-plane coordinates to screen pixels.
type Camera struct {
	X, Y float64
	Zoom float64
}

// DrawDebug draws every shape of the space, coloured by its entity's
// DebugCollider.
func (s *System) DrawDebug(w *ecs.World, screen *ebiten.Image, cam Camera) {
	if s == nil || w == nil || screen == nil {
		return
	}
	if cam.Zoom <= 0 {
		cam.Zoom = 1
	}
	cp.DrawSpace(s.space, &debugDrawer{sys: s, w: w, screen: screen, cam: cam})
}

// DrawStats prints body counts in the top-left corner.
func (s *System) DrawStats(screen *ebiten.Image, x, y int) {
	if s == nil || screen == nil {
		return
	}
	shapes, polys, segs := 0, 0, 0
	for _, info := range s.entities {
		shapes += len(info.shapes)
		polys += info.polys
		segs += info.segments
	}
	text := fmt.Sprintf("Colliders: %d\nShapes: %d (%d tris, %d edges)", len(s.entities), shapes, polys, segs)
	ebitenutil.DebugPrintAt(screen, text, x, y)
}

type debugDrawer struct {
	sys    *System
	w      *ecs.World
	screen *ebiten.Image
	cam    Camera
}

func (d *debugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, fill)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, fill)
}

func (d *debugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *debugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
	if radius > 0 {
		d.drawCircle(a, radius, fill)
		d.drawCircle(b, radius, fill)
	}
}

func (d *debugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], fill)
}

func (d *debugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *debugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *debugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *debugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return toFColor(d.sys.shapeColor(d.w, shape))
}

func (d *debugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *debugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *debugDrawer) Data() interface{} {
	return nil
}

func (d *debugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.cam.toScreen(a)
	x2, y2 := d.cam.toScreen(b)
	ebitenutil.DrawLine(d.screen, x1, y1, x2, y2, toNRGBA(c))
}

func (d *debugDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *debugDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, c)
}

// shapeColor picks the DebugCollider colour of the shape's entity, falling
// back to a sensor or solid default.
func (s *System) shapeColor(w *ecs.World, shape *cp.Shape) color.NRGBA {
	if shape == nil {
		return fallbackShapeColor
	}
	if e, ok := s.owners[shape]; ok {
		if dbg, ok := ecs.Get(w, e, component.DebugColliderComponent); ok {
			return dbg.Color
		}
	}
	if shape.Sensor() {
		return sensorShapeColor
	}
	return fallbackShapeColor
}

func (c Camera) toScreen(v cp.Vector) (float64, float64) {
	return (v.X - c.X) * c.Zoom, (v.Y - c.Y) * c.Zoom
}

func toFColor(c color.NRGBA) cp.FColor {
	return cp.FColor{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
