package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/config"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/logger"
	"github.com/rmsalud/salud-api/internal/mapagg"
	"github.com/rmsalud/salud-api/internal/provider/ticketmaster"
	"github.com/rmsalud/salud-api/internal/utils"
)

// eventSearcher is the slice of the Ticketmaster client the map needs.
type eventSearcher interface {
	SearchEvents(ctx context.Context, p ticketmaster.SearchParams) ([]ticketmaster.Event, error)
}

// MapService assembles the map render list from its four sources. The
// two remote-ish feeds (Ticketmaster and locally-approved events) are
// fetched concurrently and fail independently: a dead feed degrades the
// map, it never blanks it.
type MapService struct {
	tm     eventSearcher
	events *EventService
	recs   *RecommendationService
	cfg    config.EventsConfig
	errs   *apperrors.Handler
}

func NewMapService(tm eventSearcher, events *EventService, recs *RecommendationService, cfg config.EventsConfig) *MapService {
	return &MapService{
		tm:     tm,
		events: events,
		recs:   recs,
		cfg:    cfg,
		errs:   apperrors.NewHandler(logger.GetLogger()),
	}
}

// MapQuery is one map render request.
type MapQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64 // 0 means the configured default
	Compact  bool
	Filters  mapagg.Filters
}

// MapView is the aggregated result. FeedErrors carries a user-facing
// message per failed source so the client can badge degraded feeds.
type MapView struct {
	Points     []mapagg.Point    `json:"points"`
	FeedErrors map[string]string `json:"feed_errors,omitempty"`
}

// View fetches, normalizes and aggregates all map sources for a viewer
// position.
func (s *MapService) View(ctx context.Context, userID uint, q MapQuery) (*MapView, error) {
	radius := q.RadiusKm
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusKm
	}

	var (
		wg       sync.WaitGroup
		tmPoints []mapagg.Point
		tmErr    error
		local    []mapagg.Point
		localErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		events, err := s.tm.SearchEvents(ctx, ticketmaster.SearchParams{
			Lat:        q.Lat,
			Lng:        q.Lng,
			RadiusKm:   int(radius),
			Size:       50,
			WindowDays: s.cfg.WindowDays,
		})
		if err != nil {
			tmErr = apperrors.NewExternalAPIError(err, "ticketmaster")
			return
		}
		tmPoints = ticketmasterPoints(events)
	}()
	go func() {
		defer wg.Done()
		approved, err := s.events.Approved(ctx, q.Lat, q.Lng, radius, s.cfg.WindowDays)
		if err != nil {
			localErr = err
			return
		}
		local = localEventPoints(approved)
	}()
	wg.Wait()

	pois, err := s.recs.POIs(ctx, userID, q.Lat, q.Lng)
	if err != nil {
		return nil, err
	}

	feedErrors := map[string]string{}
	if tmErr != nil {
		s.errs.Handle(ctx, tmErr)
		feedErrors["ticketmaster"] = "external events are temporarily unavailable"
	}
	if localErr != nil {
		s.errs.Handle(ctx, localErr)
		feedErrors["local_events"] = "community events are temporarily unavailable"
	}
	if len(feedErrors) == 0 {
		feedErrors = nil
	}

	viewer := &mapagg.LatLng{Lat: q.Lat, Lng: q.Lng}
	points := mapagg.Aggregate(mapagg.Input{
		Resources:    resourcePoints(s.recs.Resources()),
		Ticketmaster: tmPoints,
		LocalEvents:  local,
		POIs:         poiPoints(pois),
		Viewer:       viewer,
		RadiusKm:     radius,
		Filters:      q.Filters,
		Compact:      q.Compact,
	})

	return &MapView{Points: points, FeedErrors: feedErrors}, nil
}

func ticketmasterPoints(events []ticketmaster.Event) []mapagg.Point {
	points := make([]mapagg.Point, 0, len(events))
	for _, ev := range events {
		points = append(points, mapagg.Point{
			ID:       ev.ID,
			Source:   mapagg.SourceTicketmaster,
			Category: ev.Category,
			Title:    ev.Title,
			Venue:    ev.Venue,
			Coord:    mapagg.LatLng{Lat: ev.Lat, Lng: ev.Lng},
			Date:     ev.Date,
			Price:    ev.Price,
			URL:      ev.URL,
		})
	}
	return points
}

func localEventPoints(events []database.EventRequest) []mapagg.Point {
	points := make([]mapagg.Point, 0, len(events))
	for _, ev := range events {
		lat, okLat := mapagg.ParseCoord(ev.Latitude)
		lng, okLng := mapagg.ParseCoord(ev.Longitude)
		if !okLat || !okLng {
			continue
		}
		price := "Free"
		if ev.TicketType == "paid" && ev.Price != nil {
			price = fmt.Sprintf("$%.0f", *ev.Price)
		}
		points = append(points, mapagg.Point{
			ID:       strconv.FormatUint(uint64(ev.ID), 10),
			Source:   mapagg.SourceLocalEvent,
			Category: ev.Category,
			Title:    ev.EventName,
			Venue:    ev.Address,
			Coord:    mapagg.LatLng{Lat: lat, Lng: lng},
			Date:     ev.StartsAt.Format(utils.DateLayout),
			Price:    price,
			URL:      ev.EventURL,
		})
	}
	return points
}

func resourcePoints(resources []Resource) []mapagg.Point {
	points := make([]mapagg.Point, 0, len(resources))
	for _, r := range resources {
		points = append(points, mapagg.Point{
			ID:       r.ID,
			Source:   mapagg.SourceResource,
			Category: r.Category,
			Title:    r.Title,
			Venue:    r.Venue,
			Coord:    mapagg.LatLng{Lat: r.Lat, Lng: r.Lng},
			Date:     r.Date,
			URL:      r.URL,
		})
	}
	return points
}

func poiPoints(pois []POI) []mapagg.Point {
	points := make([]mapagg.Point, 0, len(pois))
	for _, p := range pois {
		points = append(points, mapagg.Point{
			ID:       p.ID,
			Source:   mapagg.SourcePOI,
			Category: p.Category,
			Title:    p.Name,
			Coord:    mapagg.LatLng{Lat: p.Lat, Lng: p.Lng},
			Priority: p.Priority,
		})
	}
	return points
}
