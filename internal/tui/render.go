package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-spatial/geom"
	"github.com/paulmach/orb"

	"mapview/internal/linebuf"
)

// renderMap draws the visible tiles and points into a w x h cell canvas.
func (m Model) renderMap(w, h int) string {
	br := newBrailleBuf(w, h)

	z := m.cam.TileZoom()
	for _, tile := range m.cam.CoveringTiles(z) {
		mat := m.cam.MatrixFor(tile)
		if m.showGrid {
			m.drawBuffer(br, m.grid, mat)
		}
		if !m.showLines && !m.showPolys {
			continue
		}
		tb, err := m.tiles.get(m.data, tile)
		if err != nil {
			m.log.Warn("tile cache reset", "err", err)
		}
		if m.showPolys {
			m.drawBuffer(br, tb.polys, mat)
		}
		if m.showLines {
			m.drawBuffer(br, tb.lines, mat)
		}
	}

	if m.showPoints {
		for _, p := range m.data.Points {
			s := m.cam.LonLatToScreen(p.Lon(), p.Lat())
			if math.IsNaN(s.X()) || math.IsNaN(s.Y()) {
				continue
			}
			br.setPixel(int(math.Floor(s.X())), int(math.Floor(s.Y())))
		}
	}

	lines := br.toLines()
	if m.hoverVertex {
		cx := m.hoverMicX / 2
		cy := m.hoverMicY / 4
		if cy >= 0 && cy < len(lines) {
			r := []rune(lines[cy])
			if cx >= 0 && cx < len(r) {
				circle := hoverStyle.Render("◯")
				lines[cy] = string(r[:cx]) + circle + string(r[cx+1:])
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) drawBuffer(br *brailleBuf, buf *linebuf.Buffer, mat mgl64.Mat4) {
	if buf.Len() < 2 {
		return
	}
	if err := buf.Bind(); err != nil {
		m.log.Error("bind tile buffer", "err", err)
		return
	}
	if err := m.device.DrawLineStrip(mat, br.drawSegment); err != nil {
		m.log.Error("draw tile buffer", "err", err)
	}
}

// cellCentre returns the micro-pixel at the centre of a map cell.
func cellCentre(cx, cy int) geom.Point {
	return geom.Point{float64(cx*2) + 1, float64(cy*4) + 2}
}

// nearestVertex finds the data vertex rendered closest to the micro-pixel
// (x, y) within radius micro-pixels.
func (m Model) nearestVertex(x, y, radius float64) (orb.Point, geom.Point, bool) {
	best := radius * radius
	var bestGeo orb.Point
	var bestScreen geom.Point
	found := false
	visit := func(p orb.Point) {
		s := m.cam.LonLatToScreen(p.Lon(), p.Lat())
		dx, dy := s.X()-x, s.Y()-y
		if d := dx*dx + dy*dy; d <= best {
			best, bestGeo, bestScreen, found = d, p, s, true
		}
	}
	if m.showPoints {
		for _, p := range m.data.Points {
			visit(p)
		}
	}
	if m.showLines {
		for _, ls := range m.data.Lines {
			for _, p := range ls {
				visit(p)
			}
		}
	}
	if m.showPolys {
		for _, poly := range m.data.Polygons {
			for _, ring := range poly {
				for _, p := range ring {
					visit(p)
				}
			}
		}
	}
	return bestGeo, bestScreen, found
}

// inspect builds the popup describing the vertex nearest the viewport centre.
func (m Model) inspect() (string, bool) {
	w, h := m.cam.Size()
	p, _, ok := m.nearestVertex(float64(w)/2, float64(h)/2, math.Inf(1))
	if !ok {
		return "", false
	}
	name := m.selPath
	if name == "" {
		name = "<pasted>"
	}
	b := m.data.BBox
	pts, ls, polys := m.data.Counts()
	meta := []string{
		titleStyle.Render("inspect"),
		fmt.Sprintf("source: %s", name),
		fmt.Sprintf("bbox: [%.5f, %.5f, %.5f, %.5f]", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()),
		fmt.Sprintf("counts: pts=%d ls=%d poly=%d", pts, ls, polys),
		fmt.Sprintf("nearest: lon=%.6f lat=%.6f", p.Lon(), p.Lat()),
		fmt.Sprintf("zoom: %.2f  tile zoom: %d  cached tiles: %d", m.cam.Zoom(), m.cam.TileZoom(), m.tiles.len()),
		"crs: EPSG:4326 → EPSG:3857",
	}
	return lipgloss.JoinVertical(lipgloss.Left, meta...), true
}
