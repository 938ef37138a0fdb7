package tui

import (
	"errors"

	"github.com/go-spatial/geom/slippy"

	"mapview/internal/geom"
	"mapview/internal/linebuf"
)

type tileKey struct {
	z, x, y uint
}

// tileBuffers holds one tile's tessellated layers.
type tileBuffers struct {
	lines *linebuf.Buffer
	polys *linebuf.Buffer
}

// tileCache builds tile buffers on first use. When it grows past limit every
// buffer is released and building starts over.
type tileCache struct {
	device linebuf.Device
	limit  int
	tiles  map[tileKey]*tileBuffers
}

func newTileCache(device linebuf.Device, limit int) *tileCache {
	if limit <= 0 {
		limit = 256
	}
	return &tileCache{device: device, limit: limit, tiles: make(map[tileKey]*tileBuffers)}
}

func (c *tileCache) get(d geom.Data, tile *slippy.Tile) (*tileBuffers, error) {
	key := tileKey{uint(tile.Z), uint(tile.X), uint(tile.Y)}
	if tb, ok := c.tiles[key]; ok {
		return tb, nil
	}
	var err error
	if len(c.tiles) >= c.limit {
		err = c.reset()
	}
	tb := &tileBuffers{lines: linebuf.New(c.device), polys: linebuf.New(c.device)}
	geom.Tessellate(geom.Data{Lines: d.Lines}, tile, tb.lines)
	geom.Tessellate(geom.Data{Polygons: d.Polygons}, tile, tb.polys)
	c.tiles[key] = tb
	return tb, err
}

func (c *tileCache) len() int { return len(c.tiles) }

func (c *tileCache) reset() error {
	var errs []error
	for key, tb := range c.tiles {
		errs = append(errs, tb.lines.Close(), tb.polys.Close())
		delete(c.tiles, key)
	}
	return errors.Join(errs...)
}
