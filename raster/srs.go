package raster

import (
	"fmt"
	"strconv"
	"strings"
)

// SpatialRef is the subset of a coordinate reference system the drivers need.
type SpatialRef interface {
	// LinearUnit returns the unit name and its size in meters. ok is false
	// when the definition carries no unit.
	LinearUnit() (name string, toMeters float64, ok bool)
	IsGeographic() bool
	WKT() string
}

// CoordinateTransformer converts points from a reference system to
// geographic longitude/latitude.
type CoordinateTransformer interface {
	ToGeographic(srs SpatialRef, x, y float64) (lon, lat float64, err error)
}

// WKT is a spatial reference held as well-known text, as found in ESRI
// .prj files.
type WKT string

// WKT returns the definition text.
func (w WKT) WKT() string {
	return string(w)
}

// IsGeographic reports whether the root node is a geographic CRS.
func (w WKT) IsGeographic() bool {
	root := strings.ToUpper(strings.TrimSpace(string(w)))
	return strings.HasPrefix(root, "GEOGCS") || strings.HasPrefix(root, "GEOGCRS")
}

// LinearUnit returns the last UNIT node directly under the root node.
func (w WKT) LinearUnit() (string, float64, bool) {
	args, ok := rootChild(string(w), "UNIT", "LENGTHUNIT")
	if !ok || len(args) == 0 {
		return "", 0, false
	}
	name := strings.Trim(strings.TrimSpace(args[0]), `"`)
	scale := 1.0
	if len(args) > 1 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64); err == nil {
			scale = v
		}
	}
	return name, scale, true
}

// rootChild finds the last node with one of the given keywords at depth one
// and returns its top-level arguments.
func rootChild(text string, keywords ...string) ([]string, bool) {
	depth := 0
	inQuote := false
	found := -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[' || c == '(':
			if depth == 1 {
				start := i - 1
				for start >= 0 && isKeywordByte(text[start]) {
					start--
				}
				kw := strings.ToUpper(text[start+1 : i])
				for _, k := range keywords {
					if kw == k {
						found = i
					}
				}
			}
			depth++
		case c == ']' || c == ')':
			depth--
		}
	}
	if found < 0 {
		return nil, false
	}
	return splitArgs(text[found+1:]), true
}

func isKeywordByte(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// splitArgs splits the arguments of a node up to its closing bracket.
func splitArgs(s string) []string {
	var args []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			if depth == 0 {
				return append(args, s[start:i])
			}
			depth--
		case c == ',' && depth == 0:
			args = append(args, s[start:i])
			start = i + 1
		}
	}
	return append(args, s[start:])
}

// GeographicPassthrough transforms points of a geographic reference system,
// which are already longitude/latitude.
type GeographicPassthrough struct{}

// ToGeographic returns x and y unchanged for geographic systems.
func (GeographicPassthrough) ToGeographic(srs SpatialRef, x, y float64) (float64, float64, error) {
	if srs == nil || !srs.IsGeographic() {
		return 0, 0, fmt.Errorf("%w: no transformation to geographic coordinates", ErrNotSupported)
	}
	return x, y, nil
}
