package geom

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlPlacemark struct {
	Name       string        `xml:"name"`
	Points     []kmlCoords   `xml:"Point"`
	LineString []kmlCoords   `xml:"LineString"`
	Polygons   []kmlPolygon  `xml:"Polygon"`
	Multi      *kmlPlacemark `xml:"MultiGeometry"`
}

// ParseKML extracts Point, LineString and Polygon placemarks, including
// those inside MultiGeometry and nested Folders. Altitudes are ignored.
func ParseKML(r io.Reader) (Data, error) {
	var d Data
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Data{}, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return Data{}, err
		}
		addPlacemark(&d, &pm)
		d.Rows = append(d.Rows, []string{pm.Name})
	}
	if d.Empty() {
		return Data{}, errors.New("kml: no coordinates found")
	}
	d.Columns = []string{"name"}
	return d, nil
}

func addPlacemark(d *Data, pm *kmlPlacemark) {
	for _, p := range pm.Points {
		for _, pt := range parseKMLCoords(p.Coordinates) {
			d.Add(pt)
		}
	}
	for _, ls := range pm.LineString {
		d.Add(orb.LineString(parseKMLCoords(ls.Coordinates)))
	}
	for _, poly := range pm.Polygons {
		rings := orb.Polygon{orb.Ring(parseKMLCoords(poly.Outer.Coordinates))}
		for _, in := range poly.Inner {
			rings = append(rings, orb.Ring(parseKMLCoords(in.Coordinates)))
		}
		d.Add(rings)
	}
	if pm.Multi != nil {
		addPlacemark(d, pm.Multi)
	}
}

// parseKMLCoords parses whitespace separated "lon,lat[,alt]" tuples.
func parseKMLCoords(s string) []orb.Point {
	var pts []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts
}
