// Package geom loads vector features in geographic coordinates and
// tessellates them into per-tile line vertex buffers.
package geom

import (
	"github.com/paulmach/orb"
)

// Data is a minimal geometry container for rendering. Coordinates are
// longitude, latitude in degrees.
type Data struct {
	Points   []orb.Point
	Lines    []orb.LineString
	Polygons []orb.Polygon // first ring outer, following rings holes
	BBox     orb.Bound

	// Attribute table, one row per feature.
	Columns []string
	Rows    [][]string

	boxed bool
}

// Empty reports whether no coordinates were loaded.
func (d *Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}

// Counts returns the number of points, lines and polygons.
func (d *Data) Counts() (points, lines, polygons int) {
	return len(d.Points), len(d.Lines), len(d.Polygons)
}

// Add flattens g into d and grows the bounding box.
func (d *Data) Add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		d.Points = append(d.Points, g)
		d.extend(g)
	case orb.MultiPoint:
		for _, p := range g {
			d.Add(p)
		}
	case orb.LineString:
		if len(g) == 0 {
			return
		}
		d.Lines = append(d.Lines, g)
		for _, p := range g {
			d.extend(p)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			d.Add(ls)
		}
	case orb.Ring:
		d.Add(orb.Polygon{g})
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return
		}
		d.Polygons = append(d.Polygons, g)
		for _, r := range g {
			for _, p := range r {
				d.extend(p)
			}
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			d.Add(poly)
		}
	case orb.Collection:
		for _, sub := range g {
			d.Add(sub)
		}
	case orb.Bound:
		d.Add(g.ToPolygon())
	}
}

func (d *Data) extend(p orb.Point) {
	if !d.boxed {
		d.BBox = p.Bound()
		d.boxed = true
		return
	}
	d.BBox = d.BBox.Extend(p)
}
