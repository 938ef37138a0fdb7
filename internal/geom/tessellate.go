package geom

import (
	"math"

	"github.com/go-spatial/geom/slippy"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"

	"mapview/internal/linebuf"
	"mapview/internal/transform"
)

// tilePad is how far, in tile units, strips extend past the tile edge before
// they are clipped.
const tilePad = transform.Extent / 16

// Tessellate writes every line and polygon ring of d that touches tile into buf
// as tile-local strips in [0, transform.Extent], clipped tilePad units outside
// the tile. Strips are separated by one degenerate vertex. It returns the
// number of strips written.
func Tessellate(d Data, tile *slippy.Tile, buf *linebuf.Buffer) int {
	t := tessellator{
		buf:  buf,
		n:    math.Exp2(float64(tile.Z)),
		col:  float64(tile.X),
		row:  float64(tile.Y),
		last: -1,
	}
	if buf.Len() > 0 {
		c := buf.Coordinates()
		t.last = vertexKey(c[len(c)-2], c[len(c)-1])
	}
	for _, ls := range d.Lines {
		t.strip(ls)
	}
	for _, poly := range d.Polygons {
		for _, ring := range poly {
			t.strip(closeRing(ring))
		}
	}
	return t.strips
}

// Outline writes the tile border as a closed strip.
func Outline(buf *linebuf.Buffer) {
	if buf.Len() > 0 {
		buf.AddDegenerate()
	}
	for _, c := range [][2]int16{{0, 0}, {transform.Extent, 0}, {transform.Extent, transform.Extent}, {0, transform.Extent}, {0, 0}} {
		buf.AddCoordinate(c[0], c[1])
	}
}

type tessellator struct {
	buf         *linebuf.Buffer
	n, col, row float64
	strips      int
	last        int64
	local       orb.LineString
	quantized   []int16
}

// tileBound is the tile in local units, grown by tilePad on every side.
var tileBound = orb.Bound{
	Min: orb.Point{-tilePad, -tilePad},
	Max: orb.Point{transform.Extent + tilePad, transform.Extent + tilePad},
}

// strip projects pts into tile units and writes the parts inside tileBound.
func (t *tessellator) strip(pts []orb.Point) {
	if len(pts) < 2 {
		return
	}
	t.local = t.local[:0]
	for _, p := range pts {
		w := transform.Project(p.Lon(), p.Lat())
		t.local = append(t.local, orb.Point{
			(w.X()*t.n - t.col) * transform.Extent,
			(w.Y()*t.n - t.row) * transform.Extent,
		})
	}
	for _, part := range clip.LineString(tileBound, t.local) {
		t.emit(part)
	}
}

// emit quantizes a clipped part and appends it, separated from the previous
// strip by a degenerate unless it starts where that strip ended.
func (t *tessellator) emit(part orb.LineString) {
	t.quantized = t.quantized[:0]
	for _, p := range part {
		x, y := int16(math.Round(p.X())), int16(math.Round(p.Y()))
		if k := len(t.quantized); k >= 2 && t.quantized[k-2] == x && t.quantized[k-1] == y {
			continue
		}
		t.quantized = append(t.quantized, x, y)
	}
	if len(t.quantized) < 4 {
		return
	}

	first := vertexKey(t.quantized[0], t.quantized[1])
	if t.buf.Len() > 0 && first != t.last {
		t.buf.AddDegenerate()
	}
	start := 0
	if first == t.last {
		// continue the previous strip instead of repeating its end
		start = 2
	}
	for i := start; i < len(t.quantized); i += 2 {
		t.buf.AddCoordinate(t.quantized[i], t.quantized[i+1])
	}
	k := len(t.quantized)
	t.last = vertexKey(t.quantized[k-2], t.quantized[k-1])
	t.strips++
}

func vertexKey(x, y int16) int64 {
	return int64(uint16(x))<<16 | int64(uint16(y))
}

func closeRing(r orb.Ring) []orb.Point {
	if len(r) == 0 || r.Closed() {
		return r
	}
	return append(r[:len(r):len(r)], r[0])
}
