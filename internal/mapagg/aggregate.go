package mapagg

import "github.com/rmsalud/salud-api/internal/geo"

// CompactLimit caps the compact view so no source drowns out the rest on
// a small screen.
const CompactLimit = 6

// Per-round quotas for the compact view interleaving.
const (
	compactPOIsPerRound         = 2
	compactResourcesPerRound    = 1
	compactTicketmasterPerRound = 2
	compactLocalPerRound        = 1
)

// Filters holds one visibility flag per display category. POI categories
// absent from the map are hidden.
type Filters struct {
	Resources     bool
	Ticketmaster  bool
	LocalEvents   bool
	POICategories map[string]bool
}

// AllVisible returns filters with every source and POI category enabled.
func AllVisible() Filters {
	categories := map[string]bool{}
	for _, c := range []string{"gym", "sports", "park", "bike", "market", "supermarket", "restaurant", "bakery", "shop"} {
		categories[c] = true
	}
	return Filters{Resources: true, Ticketmaster: true, LocalEvents: true, POICategories: categories}
}

// Input gathers everything the aggregator needs for one render pass.
type Input struct {
	Resources    []Point
	Ticketmaster []Point
	LocalEvents  []Point
	POIs         []Point

	// Viewer is the last-known user or map-search position. Resources are
	// kept only within RadiusKm of it; events and POIs arrive pre-filtered
	// by radius server-side and are not re-filtered here.
	Viewer   *LatLng
	RadiusKm float64

	Filters Filters
	Compact bool
}

// Aggregate normalizes, filters, deduplicates and orders the sources
// into the final render list. Records with invalid coordinates are
// dropped silently regardless of filter state.
func Aggregate(in Input) []Point {
	pois := visible(in.POIs, func(p Point) bool {
		return in.Filters.POICategories[p.Category]
	})
	resources := visible(in.Resources, func(p Point) bool {
		if !in.Filters.Resources {
			return false
		}
		if in.Viewer == nil || in.RadiusKm <= 0 {
			return true
		}
		return geo.DistanceKm(in.Viewer.Lat, in.Viewer.Lng, p.Coord.Lat, p.Coord.Lng) <= in.RadiusKm
	})
	ticketmaster := visible(in.Ticketmaster, func(Point) bool { return in.Filters.Ticketmaster })
	local := visible(in.LocalEvents, func(Point) bool { return in.Filters.LocalEvents })

	if in.Compact {
		return dedupe(interleave(pois, resources, ticketmaster, local))
	}

	full := make([]Point, 0, len(pois)+len(resources)+len(ticketmaster)+len(local))
	full = append(full, pois...)
	full = append(full, resources...)
	full = append(full, ticketmaster...)
	full = append(full, local...)
	return dedupe(full)
}

func visible(points []Point, keep func(Point) bool) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if !p.Coord.Valid() {
			continue
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// interleave round-robins across the sources, taking up to its quota
// from each per round, until the compact limit is reached or every
// source is drained.
func interleave(pois, resources, ticketmaster, local []Point) []Point {
	out := make([]Point, 0, CompactLimit)
	quotas := []struct {
		points  []Point
		perTurn int
	}{
		{pois, compactPOIsPerRound},
		{resources, compactResourcesPerRound},
		{ticketmaster, compactTicketmasterPerRound},
		{local, compactLocalPerRound},
	}
	offsets := make([]int, len(quotas))

	for len(out) < CompactLimit {
		progressed := false
		for i, q := range quotas {
			for n := 0; n < q.perTurn && offsets[i] < len(q.points) && len(out) < CompactLimit; n++ {
				out = append(out, q.points[offsets[i]])
				offsets[i]++
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

func dedupe(points []Point) []Point {
	seen := make(map[string]bool, len(points))
	out := points[:0]
	for _, p := range points {
		k := p.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
