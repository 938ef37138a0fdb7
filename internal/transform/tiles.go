package transform

import (
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
)

// MaxTileZoom is the deepest tile level CoveringTiles will address.
const MaxTileZoom = 22

// TileZoom returns the integral tile level for the current scale.
func (t Transform) TileZoom() uint {
	z := math.Floor(t.Zoom())
	if z < 0 || math.IsNaN(z) {
		return 0
	}
	if z > MaxTileZoom {
		return MaxTileZoom
	}
	return uint(z)
}

// CoveringTiles returns the tiles at level z that intersect the viewport,
// row by row from the north-west.
func (t Transform) CoveringTiles(z uint) []*slippy.Tile {
	if t.width <= 0 || t.height <= 0 {
		return nil
	}
	n := math.Pow(2, float64(z))
	tileSize := t.WorldSize() / n

	w, h := float64(t.width), float64(t.height)
	corners := []geom.Point{{0, 0}, {w, 0}, {0, h}, {w, h}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := t.ScreenToWorld(c)
		minX = math.Min(minX, p.X()/tileSize)
		minY = math.Min(minY, p.Y()/tileSize)
		maxX = math.Max(maxX, p.X()/tileSize)
		maxY = math.Max(maxY, p.Y()/tileSize)
	}

	x0, x1 := clampTile(minX, n), clampTile(maxX, n)
	y0, y1 := clampTile(minY, n), clampTile(maxY, n)
	if maxX < 0 || maxY < 0 || minX >= n || minY >= n {
		return nil
	}

	tiles := make([]*slippy.Tile, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			tiles = append(tiles, slippy.NewTile(z, x, y))
		}
	}
	return tiles
}

func clampTile(v, n float64) uint {
	v = math.Floor(v)
	if v < 0 {
		return 0
	}
	if v > n-1 {
		return uint(n - 1)
	}
	return uint(v)
}
