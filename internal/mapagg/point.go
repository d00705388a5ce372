// Package mapagg merges the heterogeneous geospatial sources shown on
// the map (curated resources, the Ticketmaster feed, locally-approved
// events and POI recommendations) into one canonical, duplicate-free
// render list under per-category visibility and radius filters.
package mapagg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source tags a point with the collection it came from.
type Source string

const (
	SourceResource     Source = "resource"
	SourcePOI          Source = "poi"
	SourceTicketmaster Source = "ticketmaster"
	SourceLocalEvent   Source = "local_event"
)

// LatLng is a numeric coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are real numbers.
func (c LatLng) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lng) && !math.IsInf(c.Lng, 0)
}

// Point is the canonical record every source is normalized into as soon
// as it enters the aggregator.
type Point struct {
	ID       string  `json:"id"`
	Source   Source  `json:"source"`
	Category string  `json:"category,omitempty"`
	Title    string  `json:"title"`
	Venue    string  `json:"venue,omitempty"`
	Coord    LatLng  `json:"coord"`
	Date     string  `json:"date,omitempty"`
	Price    string  `json:"price,omitempty"`
	URL      string  `json:"url,omitempty"`
	Priority float64 `json:"priority,omitempty"`
}

// ParseCoord converts a string-shaped coordinate component ("-33.45") to
// a number. Empty or malformed values report ok=false; the caller drops
// the record rather than erroring, since partial map data beats no map.
func ParseCoord(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// key identifies a point for deduplication. Records carrying a source ID
// use it; the rest fall back to title plus coarse coordinates.
func (p Point) key() string {
	if p.ID != "" {
		return string(p.Source) + ":" + p.ID
	}
	return fmt.Sprintf("%s:%s:%.4f:%.4f", p.Source, p.Title, p.Coord.Lat, p.Coord.Lng)
}
