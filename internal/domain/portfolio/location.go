package portfolio

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var citiesYAML []byte

// Coordinate is a geographic position in degrees.
type Coordinate struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// LocationTable resolves a company's free-text location to a coordinate.
// It is read-only after construction and safe for concurrent use.
type LocationTable struct {
	cities   map[string]Coordinate
	fallback Coordinate
}

type locationFile struct {
	Fallback Coordinate            `yaml:"fallback"`
	Cities   map[string]Coordinate `yaml:"cities"`
}

// ParseLocationTable decodes a YAML city table of the form
//
//	fallback: {lat: 40, lng: 0}
//	cities:
//	  "New York, NY": {lat: 40.7128, lng: -74.006}
func ParseLocationTable(data []byte) (*LocationTable, error) {
	var f locationFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode location table: %w", err)
	}
	for name, c := range f.Cities {
		if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
			return nil, fmt.Errorf("location %q out of range: (%g, %g)", name, c.Lat, c.Lng)
		}
	}
	if f.Cities == nil {
		f.Cities = map[string]Coordinate{}
	}
	return &LocationTable{cities: f.Cities, fallback: f.Fallback}, nil
}

// DefaultLocationTable returns the built-in table of portfolio cities.
func DefaultLocationTable() *LocationTable {
	t, err := ParseLocationTable(citiesYAML)
	if err != nil {
		panic(fmt.Sprintf("portfolio: embedded cities.yaml: %v", err))
	}
	return t
}

// Resolve returns the coordinate for location.  Lookup is exact; unknown
// locations resolve to the fallback coordinate and ok is false.
func (t *LocationTable) Resolve(location string) (c Coordinate, ok bool) {
	if c, ok = t.cities[location]; ok {
		return c, true
	}
	return t.fallback, false
}

// Lookup is Resolve without the ok flag.
func (t *LocationTable) Lookup(location string) Coordinate {
	c, _ := t.Resolve(location)
	return c
}

// Fallback returns the coordinate used for unknown locations.
func (t *LocationTable) Fallback() Coordinate { return t.fallback }

// Len returns the number of known cities.
func (t *LocationTable) Len() int { return len(t.cities) }

// Names returns the known city names in sorted order.
func (t *LocationTable) Names() []string {
	names := make([]string, 0, len(t.cities))
	for n := range t.cities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

//Personal.AI order the ending
