package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/mapagg"
	"github.com/rmsalud/salud-api/internal/services"
)

type geoQuery struct {
	lat, lng   float64
	radiusKm   float64
	windowDays int
	hasCoords  bool
}

// coordsFromQuery reads lat/lng/radius_km from the query string,
// falling back to the configured defaults for radius and window.
func (h *Handler) coordsFromQuery(r *http.Request, requireCoords bool) (geoQuery, error) {
	q := geoQuery{radiusKm: h.eventsCfg.DefaultRadiusKm, windowDays: h.eventsCfg.WindowDays}

	latStr, lngStr := r.URL.Query().Get("lat"), r.URL.Query().Get("lng")
	if latStr == "" && lngStr == "" {
		if requireCoords {
			return q, apperrors.NewValidationError("lat and lng query parameters are required")
		}
		q.radiusKm = 0 // no viewer position, no radius filter
		return q, nil
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	if latErr != nil || lngErr != nil {
		return q, apperrors.NewValidationError("lat and lng must be decimal degrees")
	}
	q.lat, q.lng, q.hasCoords = lat, lng, true

	if radiusStr := r.URL.Query().Get("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			return q, apperrors.NewValidationError("radius_km must be a positive number")
		}
		q.radiusKm = radius
	}
	return q, nil
}

// filtersFromQuery builds the visibility filters. Sources are visible by
// default; ?hide=resources,ticketmaster turns feeds off and
// ?poi_categories=gym,park narrows POIs to the named categories.
func filtersFromQuery(r *http.Request) mapagg.Filters {
	filters := mapagg.AllVisible()
	for _, name := range strings.Split(r.URL.Query().Get("hide"), ",") {
		switch strings.TrimSpace(name) {
		case "resources":
			filters.Resources = false
		case "ticketmaster":
			filters.Ticketmaster = false
		case "local_events":
			filters.LocalEvents = false
		}
	}
	if raw := r.URL.Query().Get("poi_categories"); raw != "" {
		categories := map[string]bool{}
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories[c] = true
			}
		}
		filters.POICategories = categories
	}
	return filters
}

// MapView returns the aggregated map render list for a viewer position.
func (h *Handler) MapView(w http.ResponseWriter, r *http.Request) {
	q, err := h.coordsFromQuery(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.maps.View(r.Context(), userID(r), services.MapQuery{
		Lat:      q.lat,
		Lng:      q.lng,
		RadiusKm: q.radiusKm,
		Compact:  r.URL.Query().Get("view") == "compact",
		Filters:  filtersFromQuery(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Resources returns the curated health resources feed.
func (h *Handler) Resources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.recs.Resources())
}

// POIs returns goal-driven place recommendations around a coordinate.
func (h *Handler) POIs(w http.ResponseWriter, r *http.Request) {
	q, err := h.coordsFromQuery(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pois, err := h.recs.POIs(r.Context(), userID(r), q.lat, q.lng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pois)
}
