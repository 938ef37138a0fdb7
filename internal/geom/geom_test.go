package geom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-spatial/geom/slippy"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/internal/linebuf"
	"mapview/internal/transform"
)

func TestAddFlattensGeometries(t *testing.T) {
	var d Data
	d.Add(orb.Collection{
		orb.Point{1, 2},
		orb.MultiPoint{{3, 4}, {-5, 6}},
		orb.LineString{{0, 0}, {10, -10}},
		orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}},
		orb.LineString{},
	})

	p, l, g := d.Counts()
	assert.Equal(t, 3, p)
	assert.Equal(t, 1, l)
	assert.Equal(t, 1, g)
	assert.Equal(t, orb.Bound{Min: orb.Point{-5, -10}, Max: orb.Point{10, 6}}, d.BBox)
}

func TestBBoxStartsAtFirstPoint(t *testing.T) {
	var d Data
	d.Add(orb.Point{20, 30})
	assert.Equal(t, orb.Bound{Min: orb.Point{20, 30}, Max: orb.Point{20, 30}}, d.BBox)
}

func TestParseWKT(t *testing.T) {
	d, err := ParseWKT("POINT (4.9 52.4)\nLINESTRING (0 0, 1 1); POLYGON ((0 0, 2 0, 2 2, 0 0))")
	require.NoError(t, err)
	p, l, g := d.Counts()
	assert.Equal(t, []int{1, 1, 1}, []int{p, l, g})
	assert.Equal(t, orb.Point{4.9, 52.4}, d.Points[0])
}

func TestParseWKTErrors(t *testing.T) {
	_, err := ParseWKT("   ")
	assert.Error(t, err)

	_, err = ParseWKT("POINT (nope)")
	assert.Error(t, err)
}

func TestParseGeoJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		points int
		lines  int
		cols   []string
	}{
		{
			name: "collection",
			input: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{"name":"a","n":1},"geometry":{"type":"Point","coordinates":[1,2]}},
				{"type":"Feature","properties":{"name":"b"},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}
			]}`,
			points: 1, lines: 1, cols: []string{"n", "name"},
		},
		{
			name:   "feature",
			input:  `{"type":"Feature","properties":null,"geometry":{"type":"MultiPoint","coordinates":[[1,2],[3,4]]}}`,
			points: 2,
		},
		{
			name:  "bare geometry",
			input: `{"type":"LineString","coordinates":[[0,0],[5,5]]}`,
			lines: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseGeoJSON([]byte(tt.input))
			require.NoError(t, err)
			p, l, _ := d.Counts()
			assert.Equal(t, tt.points, p)
			assert.Equal(t, tt.lines, l)
			assert.Equal(t, tt.cols, d.Columns)
		})
	}
}

func TestParseGeoJSONRows(t *testing.T) {
	d, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"a","n":1},"geometry":{"type":"Point","coordinates":[1,2]}},
		{"type":"Feature","properties":{"name":"b"},"geometry":{"type":"Point","coordinates":[3,4]}}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "a"}, {"", "b"}}, d.Rows)
}

func TestParseGeoJSONRowsSkipNullGeometry(t *testing.T) {
	d, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"ghost"},"geometry":null},
		{"type":"Feature","properties":{"name":"b"},"geometry":{"type":"Point","coordinates":[3,4]}}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, d.Columns)
	assert.Equal(t, [][]string{{"b"}}, d.Rows)
}

func TestParseGeoJSONEmpty(t *testing.T) {
	_, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.Error(t, err)

	_, err = ParseGeoJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	in := "name, Latitude, LON\nA, 52.1, 4.3\nbad, x, 1\nB, -10, 20\n"
	d, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []orb.Point{{4.3, 52.1}, {20, -10}}, d.Points)
	assert.Equal(t, []string{"name", "Latitude", "LON"}, d.Columns)
	assert.Len(t, d.Rows, 2)
}

func TestParseCSVMissingColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)
}

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document><Folder>
  <Placemark><name>pin</name><Point><coordinates>4.9,52.4,0</coordinates></Point></Placemark>
  <Placemark><name>road</name><LineString><coordinates>
    0,0 1,1
    2,1
  </coordinates></LineString></Placemark>
  <Placemark><name>area</name><MultiGeometry>
    <Polygon><outerBoundaryIs><LinearRing><coordinates>0,0 1,0 1,1 0,0</coordinates></LinearRing></outerBoundaryIs></Polygon>
  </MultiGeometry></Placemark>
</Folder></Document></kml>`

func TestParseKML(t *testing.T) {
	d, err := ParseKML(strings.NewReader(sampleKML))
	require.NoError(t, err)
	assert.Equal(t, []orb.Point{{4.9, 52.4}}, d.Points)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 1}, {2, 1}}, d.Lines[0])
	assert.Len(t, d.Polygons, 1)
	assert.Equal(t, [][]string{{"pin"}, {"road"}, {"area"}}, d.Rows)
}

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.wkt":     "POINT (1 2)",
		"b.GeoJSON": `{"type":"Point","coordinates":[1,2]}`,
		"c.csv":     "lat,lon\n2,1\n",
		"d.kml":     sampleKML,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		d, err := Load(path)
		require.NoError(t, err, name)
		assert.False(t, d.Empty(), name)
	}

	_, err := Load(filepath.Join(dir, "x.shp"))
	assert.ErrorContains(t, err, "unsupported")
	_, err = Load(filepath.Join(dir, "missing.wkt"))
	assert.Error(t, err)
}

func newBuffer() *linebuf.Buffer {
	return linebuf.New(linebuf.NewHostDevice())
}

func TestTessellateWorldTile(t *testing.T) {
	var d Data
	d.Add(orb.LineString{{-180, 0}, {0, 0}, {180, 0}})

	buf := newBuffer()
	n := Tessellate(d, slippy.NewTile(0, 0, 0), buf)
	require.Equal(t, 1, n)
	assert.Equal(t, []int16{0, 2048, 2048, 2048, 4096, 2048}, buf.Coordinates())
}

func TestTessellateLocalToTile(t *testing.T) {
	var d Data
	// centre of the world sits at the north-west corner of tile 1/1/1
	d.Add(orb.LineString{{0, 0}, {90, 0}})

	buf := newBuffer()
	require.Equal(t, 1, Tessellate(d, slippy.NewTile(1, 1, 1), buf))
	assert.Equal(t, []int16{0, 0, 2048, 0}, buf.Coordinates())
}

func TestTessellateSkipsDistantStrips(t *testing.T) {
	var d Data
	d.Add(orb.LineString{{-170, 60}, {-160, 60}})

	buf := newBuffer()
	assert.Zero(t, Tessellate(d, slippy.NewTile(2, 3, 3), buf))
	assert.Zero(t, buf.Len())
}

func TestTessellateSeparatesStrips(t *testing.T) {
	var d Data
	d.Add(orb.LineString{{-90, 0}, {0, 0}})
	d.Add(orb.LineString{{0, 0}, {90, 0}})    // continues the first
	d.Add(orb.LineString{{-90, 45}, {0, 45}}) // needs a break

	buf := newBuffer()
	require.Equal(t, 3, Tessellate(d, slippy.NewTile(0, 0, 0), buf))
	c := buf.Coordinates()
	assert.Equal(t, []int16{1024, 2048, 2048, 2048, 3072, 2048}, c[:6])
	// degenerate repeats the last vertex of the previous strip
	assert.Equal(t, []int16{3072, 2048}, c[6:8])
	assert.Equal(t, 6, buf.Len())
}

func TestTessellateDropsDuplicatesAndClosesRings(t *testing.T) {
	var d Data
	d.Add(orb.Polygon{{{0, 0}, {0, 0}, {90, 0}, {90, -45}}})

	buf := newBuffer()
	require.Equal(t, 1, Tessellate(d, slippy.NewTile(0, 0, 0), buf))
	c := buf.Coordinates()
	require.Equal(t, 4, buf.Len())
	assert.Equal(t, c[:2], c[len(c)-2:])
	for i := 2; i < len(c); i += 2 {
		assert.False(t, c[i] == c[i-2] && c[i+1] == c[i-1], "repeated vertex at %d", i/2)
	}
}

func TestTessellateDrawsWithoutSpuriousBreaks(t *testing.T) {
	var d Data
	d.Add(orb.LineString{{-90, 0}, {0, 0}, {0, 30}})
	d.Add(orb.LineString{{10, 10}, {20, 20}})

	dev := linebuf.NewHostDevice()
	buf := linebuf.New(dev)
	Tessellate(d, slippy.NewTile(0, 0, 0), buf)
	require.NoError(t, buf.Bind())

	var segs int
	require.NoError(t, dev.DrawLineStrip(transform.New().TileMatrix(0, 0, 0), func(_, _, _, _ float64) { segs++ }))
	assert.Equal(t, 3, segs)
}

func TestTessellateClipsKeepingSlope(t *testing.T) {
	var d Data
	d.Add(orb.LineString{{0, 0}, {90, 10}})

	buf := newBuffer()
	require.Equal(t, 1, Tessellate(d, slippy.NewTile(8, 128, 127), buf))
	c := buf.Coordinates()
	require.Len(t, c, 4)
	for _, v := range c {
		assert.GreaterOrEqual(t, v, int16(-tilePad))
		assert.LessOrEqual(t, v, int16(transform.Extent+tilePad))
	}

	// where the line crosses the tile's right edge
	a, b := transform.Project(0, 0), transform.Project(90, 10)
	local := func(v, origin float64) float64 { return (v*256 - origin) * transform.Extent }
	ax, ay := local(a.X(), 128), local(a.Y(), 127)
	bx, by := local(b.X(), 128), local(b.Y(), 127)
	want := ay + (transform.Extent-ax)*(by-ay)/(bx-ax)

	x0, y0, x1, y1 := float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3])
	got := y0 + (transform.Extent-x0)*(y1-y0)/(x1-x0)
	assert.InDelta(t, want, got, 2)
}

func TestTessellateSplitsStripsLeavingTheTile(t *testing.T) {
	var d Data
	// out through the east edge of tile 1/0/0 and back in
	d.Add(orb.LineString{{-90, 45}, {90, 45}, {-90, 60}})

	buf := newBuffer()
	require.Equal(t, 2, Tessellate(d, slippy.NewTile(1, 0, 0), buf))
	c := buf.Coordinates()
	require.Equal(t, 5, buf.Len())
	assert.Equal(t, int16(transform.Extent+tilePad), c[2])
	assert.Equal(t, c[2:4], c[4:6], "degenerate between parts")
	assert.Equal(t, int16(transform.Extent+tilePad), c[6])
	assert.NotEqual(t, c[3], c[7])
}

func TestOutline(t *testing.T) {
	buf := newBuffer()
	Outline(buf)
	assert.Equal(t, 5, buf.Len())
	buf.AddCoordinate(1, 1)
	Outline(buf)
	assert.Equal(t, 12, buf.Len())
}
