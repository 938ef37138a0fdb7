package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb/geojson"
)

// ParseGeoJSON decodes a FeatureCollection, a Feature or a bare geometry.
// Feature properties become the attribute table.
func ParseGeoJSON(data []byte) (Data, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Data{}, fmt.Errorf("geojson: %w", err)
	}

	var features []*geojson.Feature
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return Data{}, err
		}
		features = fc.Features
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return Data{}, err
		}
		features = []*geojson.Feature{f}
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return Data{}, err
		}
		features = []*geojson.Feature{geojson.NewFeature(g.Geometry())}
	}

	var d Data
	kept := make([]*geojson.Feature, 0, len(features))
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		d.Add(f.Geometry)
		kept = append(kept, f)
	}
	if d.Empty() {
		return Data{}, errors.New("geojson: no coordinates parsed")
	}
	d.Columns, d.Rows = propertyTable(kept)
	return d, nil
}

func propertyTable(features []*geojson.Feature) ([]string, [][]string) {
	seen := map[string]bool{}
	var cols []string
	for _, f := range features {
		for k := range f.Properties {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	if len(cols) == 0 {
		return nil, nil
	}
	sort.Strings(cols)

	rows := make([][]string, 0, len(features))
	for _, f := range features {
		row := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := f.Properties[c]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}
	return cols, rows
}
