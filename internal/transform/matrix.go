package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-spatial/geom/slippy"
)

// TileMatrix returns the matrix that maps tile-local coordinates (0..Extent)
// of tile z/col/row to screen pixels, with z pushed behind the near plane.
//
// Rotation about the viewport centre is applied before the camera translation
// so tiles turn around the centre of the view rather than the world origin.
func (t Transform) TileMatrix(z, col, row uint) mgl64.Mat4 {
	tileScale := math.Pow(2, float64(z))
	tileSize := t.scale * t.tileSize / tileScale
	s := t.scale / tileScale / (Extent / t.tileSize)
	hw, hh := float64(t.width)/2, float64(t.height)/2

	m := mgl64.Ident4()
	m = m.Mul4(mgl64.Translate3D(hw, hh, 0))
	m = m.Mul4(mgl64.HomogRotate3DZ(t.angle))
	m = m.Mul4(mgl64.Translate3D(-hw, -hh, 0))
	m = m.Mul4(mgl64.Translate3D(t.PixelX(), t.PixelY(), 0))
	m = m.Mul4(mgl64.Translate3D(float64(col)*tileSize, float64(row)*tileSize, 0))
	m = m.Mul4(mgl64.Scale3D(s, s, 1))
	m = m.Mul4(mgl64.Translate3D(0, 0, clipDepth))
	return m
}

// MatrixFor is TileMatrix for a slippy tile.
func (t Transform) MatrixFor(tile *slippy.Tile) mgl64.Mat4 {
	return t.TileMatrix(tile.Z, tile.X, tile.Y)
}
