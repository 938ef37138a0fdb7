// Package transform holds the camera state of a tiled Web-Mercator map view and
// derives the per-tile matrices used to draw it.
//
// Screen coordinates are pixels with the origin in the top-left corner and y
// pointing down. The pan offset (x, y) is expressed in projected units at the
// current scale: x grows as the map moves right, y grows as the map moves down,
// so a positive y brings northern latitudes to the viewport centre.
package transform

import (
	"math"

	"github.com/go-spatial/geom"
)

const (
	// DefaultTileSize is the reference pixel size of a tile at scale 1.
	DefaultTileSize = 512

	// Extent is the internal coordinate resolution of a tile.
	Extent = 4096

	// pivotRadius is the minimum distance between a rotation gesture's start
	// point and its pivot.
	pivotRadius = 200.0

	// clipDepth pushes tiles behind the near clipping plane.
	clipDepth = -1.0
)

// Transform is the camera of a single map view.
type Transform struct {
	width, height int

	// pan offset in projected units
	x, y float64

	angle float64
	scale float64

	tileSize float64
	proj     projection
}

// Option configures a Transform.
type Option func(t *Transform)

// WithTileSize sets the reference tile pixel size.
func WithTileSize(size int) Option {
	return func(t *Transform) {
		t.tileSize = float64(size)
	}
}

// WithViewport sets the initial viewport size.
func WithViewport(width, height int) Option {
	return func(t *Transform) {
		t.width = width
		t.height = height
	}
}

// New returns a Transform at scale 1, angle 0 and no pan.
func New(options ...Option) Transform {
	t := Transform{
		scale:    1,
		tileSize: DefaultTileSize,
	}
	for _, opt := range options {
		opt(&t)
	}
	t.SetScale(t.scale)
	t.SetAngle(t.angle)
	return t
}

// SetViewport sets the pixel size of the drawing surface.
func (t *Transform) SetViewport(width, height int) {
	t.width = width
	t.height = height
}

// Size returns the viewport size in pixels.
func (t Transform) Size() (width, height int) {
	return t.width, t.height
}

// TileSize returns the reference tile pixel size.
func (t Transform) TileSize() float64 { return t.tileSize }

// Angle returns the rotation in radians, within (-π, π].
func (t Transform) Angle() float64 { return t.angle }

// Scale returns the linear zoom factor.
func (t Transform) Scale() float64 { return t.scale }

// Zoom returns log2 of the scale.
func (t Transform) Zoom() float64 { return math.Log2(t.scale) }

// Offset returns the pan offset in projected units.
func (t Transform) Offset() (x, y float64) { return t.x, t.y }

// Pan shifts the camera by a screen-space delta. The delta is rotated by
// -angle so that screen directions hold regardless of the map rotation.
func (t *Transform) Pan(dx, dy float64) {
	t.x += math.Cos(t.angle)*dx + math.Sin(t.angle)*dy
	t.y += math.Cos(t.angle)*dy + math.Sin(-t.angle)*dx
}

// ZoomAround multiplies the scale by ds while keeping the world point under
// the screen point (ax, ay) in place.
func (t *Transform) ZoomAround(ds, ax, ay float64) {
	dx := (ax - float64(t.width)/2) * (1 - ds)
	dy := (ay - float64(t.height)/2) * (1 - ds)
	fx := math.Cos(t.angle)*dx + math.Sin(t.angle)*dy
	fy := math.Cos(t.angle)*dy + math.Sin(-t.angle)*dx

	t.scale *= ds
	t.proj = newProjection(t.scale * t.tileSize)
	t.x = t.x*ds + fx
	t.y = t.y*ds + fy
}

// RotateAround adds the signed angle swept from start to end, measured around
// the viewport centre. When start lies closer than 200 pixels to the centre the
// pivot moves to 200 pixels behind start, along the centre-to-start direction.
//
// anchor does not move the pivot; it is accepted so gesture handlers can pass
// the recognizer's anchor unchanged.
func (t *Transform) RotateAround(anchor, start, end geom.Point) {
	cx, cy := float64(t.width)/2, float64(t.height)/2

	bx := start.X() - cx
	by := start.Y() - cy
	if math.Hypot(bx, by) < pivotRadius {
		a := math.Atan2(by, bx)
		cx = start.X() - math.Cos(a)*pivotRadius
		cy = start.Y() - math.Sin(a)*pivotRadius
	}

	delta := angleBetween(start.X()-cx, start.Y()-cy, end.X()-cx, end.Y()-cy)
	t.SetAngle(t.angle + delta)
}

// SetAngle sets the rotation, wrapped into (-π, π].
func (t *Transform) SetAngle(angle float64) {
	t.angle = NormalizeAngle(angle)
}

// SetScale sets the zoom factor. The pan offset is rescaled so the visual
// centre stays on the same world point.
func (t *Transform) SetScale(scale float64) {
	factor := scale / t.scale
	t.x *= factor
	t.y *= factor
	t.scale = scale
	t.proj = newProjection(t.scale * t.tileSize)
}

// SetZoom sets the scale to 2^zoom.
func (t *Transform) SetZoom(zoom float64) {
	t.SetScale(math.Pow(2, zoom))
}

// SetLonLat centres the view on a geographic position in degrees. Latitudes
// beyond the Mercator limit are saturated.
func (t *Transform) SetLonLat(lon, lat float64) {
	t.x = -lon * t.proj.degUnits
	t.y = t.proj.radUnits * mercatorY(lat)
}

// LonLat returns the geographic position at the viewport centre.
func (t Transform) LonLat() (lon, lat float64) {
	lon = -t.x / t.proj.degUnits
	lat = inverseMercatorY(t.y / t.proj.radUnits)
	return lon, lat
}

// PixelX is the screen x at which the projected origin (the world's left edge) renders.
func (t Transform) PixelX() float64 {
	return (float64(t.width)-t.scale*t.tileSize)/2 + t.x
}

// PixelY is the screen y at which the projected origin (the world's top edge) renders.
func (t Transform) PixelY() float64 {
	return (float64(t.height)-t.scale*t.tileSize)/2 + t.y
}

// ScreenOrigin returns PixelX and PixelY as a point.
func (t Transform) ScreenOrigin() geom.Point {
	return geom.Point{t.PixelX(), t.PixelY()}
}

// WorldSize is the pixel size of the whole world at the current scale.
func (t Transform) WorldSize() float64 {
	return t.scale * t.tileSize
}

// ScreenToWorld converts a screen point to world pixels at the current scale,
// with (0, 0) at the north-west corner of the world.
func (t Transform) ScreenToWorld(p geom.Point) geom.Point {
	cx, cy := float64(t.width)/2, float64(t.height)/2
	qx, qy := rotate(p.X()-cx, p.Y()-cy, -t.angle)
	return geom.Point{qx + cx - t.PixelX(), qy + cy - t.PixelY()}
}

// WorldToScreen is the inverse of ScreenToWorld.
func (t Transform) WorldToScreen(w geom.Point) geom.Point {
	cx, cy := float64(t.width)/2, float64(t.height)/2
	qx, qy := rotate(w.X()+t.PixelX()-cx, w.Y()+t.PixelY()-cy, t.angle)
	return geom.Point{qx + cx, qy + cy}
}

// ScreenToLonLat returns the geographic position rendered at a screen point.
func (t Transform) ScreenToLonLat(p geom.Point) (lon, lat float64) {
	w := t.ScreenToWorld(p)
	return Unproject(geom.Point{w.X() / t.WorldSize(), w.Y() / t.WorldSize()})
}

// LonLatToScreen returns the screen point at which a geographic position renders.
func (t Transform) LonLatToScreen(lon, lat float64) geom.Point {
	n := Project(lon, lat)
	return t.WorldToScreen(geom.Point{n.X() * t.WorldSize(), n.Y() * t.WorldSize()})
}

func rotate(x, y, angle float64) (float64, float64) {
	s, c := math.Sincos(angle)
	return c*x - s*y, s*x + c*y
}

// angleBetween returns the signed angle from (x1, y1) to (x2, y2).
func angleBetween(x1, y1, x2, y2 float64) float64 {
	return math.Atan2(x1*y2-y1*x2, x1*x2+y1*y2)
}
