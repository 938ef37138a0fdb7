package geom

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extensions lists the file extensions Load understands.
var Extensions = []string{".geojson", ".json", ".csv", ".kml", ".wkt"}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads a vector file, choosing the decoder by extension.
func Load(path string) (Data, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return Data{}, fmt.Errorf("unsupported file: %s", ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()

	var d Data
	switch ext {
	case ".csv":
		d, err = ParseCSV(f)
	case ".kml":
		d, err = ParseKML(f)
	default:
		var raw []byte
		raw, err = io.ReadAll(f)
		if err != nil {
			break
		}
		if ext == ".wkt" {
			d, err = ParseWKT(string(raw))
		} else {
			d, err = ParseGeoJSON(raw)
		}
	}
	if err != nil {
		return Data{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return d, nil
}
