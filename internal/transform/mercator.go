package transform

import (
	"math"

	"github.com/go-spatial/geom"
)

const (
	d2r = math.Pi / 180
	r2d = 180 / math.Pi

	// maxSine keeps the projection finite at the poles.
	maxSine = 0.9999
)

// projection holds the constants derived from the world pixel size.
type projection struct {
	halfSize float64 // world size / 2
	degUnits float64 // projected units per degree of longitude
	radUnits float64 // projected units per radian
}

func newProjection(worldSize float64) projection {
	return projection{
		halfSize: worldSize / 2,
		degUnits: worldSize / 360,
		radUnits: worldSize / (2 * math.Pi),
	}
}

// mercatorY is the spherical Mercator ordinate of lat (degrees), in radians.
func mercatorY(lat float64) float64 {
	f := math.Min(math.Max(math.Sin(d2r*lat), -maxSine), maxSine)
	return 0.5 * math.Log((1+f)/(1-f))
}

func inverseMercatorY(y float64) float64 {
	return r2d * (2*math.Atan(math.Exp(y)) - 0.5*math.Pi)
}

// Project maps lon/lat in degrees onto the unit world square, with (0, 0) at
// the north-west corner and (1, 1) at the south-east corner.
func Project(lon, lat float64) geom.Point {
	return geom.Point{
		lon/360 + 0.5,
		0.5 - mercatorY(lat)/(2*math.Pi),
	}
}

// Unproject is the inverse of Project.
func Unproject(p geom.Point) (lon, lat float64) {
	lon = (p.X() - 0.5) * 360
	lat = inverseMercatorY((0.5 - p.Y()) * 2 * math.Pi)
	return lon, lat
}
