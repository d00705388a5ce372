package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/metabolic"
	"github.com/rmsalud/salud-api/internal/utils"
)

func isNoActiveGoal(err error) bool {
	return errors.Is(err, apperrors.ErrNoActiveGoal)
}

// Resource is a curated health resource (talks, workshops, fairs) shown
// in the recommendations feed and on the map.
type Resource struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Venue       string  `json:"venue"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	URL         string  `json:"url,omitempty"`
}

// POI is a recommended place category instance near a coordinate,
// scored so the client can rank markers.
type POI struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Priority    float64 `json:"priority"`
}

// resourceTemplate is a catalog entry; the date is an offset in days from
// today so the feed always shows upcoming items.
type resourceTemplate struct {
	id          string
	title       string
	description string
	category    string
	daysAhead   int
	venue       string
	lat, lng    float64
	url         string
}

// The curated catalog. Coordinates are fixed venues in Santiago.
var resourceCatalog = []resourceTemplate{
	{
		id:          "res-nutrition-talk",
		title:       "Healthy Eating on a Budget",
		description: "Open talk by municipal nutritionists on planning affordable, balanced meals.",
		category:    "talk",
		daysAhead:   3,
		venue:       "Centro Cultural Gabriela Mistral",
		lat:         -33.4418, lng: -70.6396,
	},
	{
		id:          "res-cooking-workshop",
		title:       "Batch Cooking Workshop",
		description: "Hands-on workshop preparing a week of portioned meals in one session.",
		category:    "workshop",
		daysAhead:   7,
		venue:       "Mercado Central",
		lat:         -33.4333, lng: -70.6510,
	},
	{
		id:          "res-health-fair",
		title:       "Community Health Fair",
		description: "Free body-composition measurements, blood pressure checks and nutrition counseling.",
		category:    "fair",
		daysAhead:   10,
		venue:       "Parque O'Higgins",
		lat:         -33.4650, lng: -70.6590,
	},
	{
		id:          "res-running-clinic",
		title:       "Beginner Running Clinic",
		description: "Coached group sessions for people starting a running habit, all paces welcome.",
		category:    "workshop",
		daysAhead:   5,
		venue:       "Parque Forestal",
		lat:         -33.4355, lng: -70.6430,
	},
	{
		id:          "res-mindful-eating",
		title:       "Mindful Eating Seminar",
		description: "Seminar on hunger cues, portion awareness and eating without distraction.",
		category:    "talk",
		daysAhead:   14,
		venue:       "Biblioteca de Santiago",
		lat:         -33.4477, lng: -70.6770,
	},
}

// poiTemplate describes one recommended place; offsets are in decimal
// degrees from the viewer position (roughly 0.01 deg = 1.1 km).
type poiTemplate struct {
	name        string
	category    string
	description string
	dLat, dLng  float64
}

// Place sets per goal direction. Loss goals favor places to burn
// calories; gain goals favor places to buy and eat quality food.
var lossPOIs = []poiTemplate{
	{"Municipal Gym", "gym", "Public gym with low-cost day passes and group classes.", 0.008, 0.005},
	{"Sports Complex", "sports", "Courts and fields open for drop-in play.", -0.006, 0.009},
	{"City Park Circuit", "park", "Park with a marked walking and running circuit.", 0.004, -0.007},
	{"Bike Rental Station", "bike", "Shared-bike station for commuting or exercise rides.", -0.009, -0.004},
	{"Outdoor Calisthenics Park", "gym", "Free outdoor training structures.", 0.011, -0.002},
}

var gainPOIs = []poiTemplate{
	{"Neighborhood Supermarket", "supermarket", "Full-range supermarket for calorie-dense staples.", 0.005, 0.006},
	{"Farmers' Market", "market", "Fresh produce, eggs and dairy at market prices.", -0.007, 0.004},
	{"Home-style Restaurant", "restaurant", "Generous traditional plates at lunch prices.", 0.006, -0.008},
	{"Artisanal Bakery", "bakery", "Fresh bread and baked goods daily.", -0.004, -0.006},
	{"Bulk Foods Shop", "shop", "Nuts, grains and dried fruit sold by weight.", 0.009, 0.003},
}

// With no active goal the feed mixes both directions.
var defaultPOIs = []poiTemplate{
	lossPOIs[2], // park
	lossPOIs[0], // gym
	gainPOIs[0], // supermarket
	gainPOIs[1], // market
}

// RecommendationService produces the curated resources feed and the
// goal-driven place recommendations.
type RecommendationService struct {
	goals *GoalService
}

func NewRecommendationService(goals *GoalService) *RecommendationService {
	return &RecommendationService{goals: goals}
}

// Resources returns the curated catalog with concrete upcoming dates.
func (s *RecommendationService) Resources() []Resource {
	today := utils.Today()
	out := make([]Resource, 0, len(resourceCatalog))
	for _, t := range resourceCatalog {
		out = append(out, Resource{
			ID:          t.id,
			Title:       t.title,
			Description: t.description,
			Category:    t.category,
			Date:        today.AddDate(0, 0, t.daysAhead).Format(utils.DateLayout),
			Venue:       t.venue,
			Lat:         t.lat,
			Lng:         t.lng,
			URL:         t.url,
		})
	}
	return out
}

// POIs returns recommended places around a coordinate, picked by the
// direction of the user's active goal. Priority decreases down the list
// so the first recommendation ranks highest.
func (s *RecommendationService) POIs(ctx context.Context, userID uint, lat, lng float64) ([]POI, error) {
	templates := defaultPOIs
	view, err := s.goals.Active(ctx, userID)
	switch {
	case err == nil && view.GoalType == metabolic.GoalLoss:
		templates = lossPOIs
	case err == nil && view.GoalType == metabolic.GoalGain:
		templates = gainPOIs
	case err != nil && !isNoActiveGoal(err):
		return nil, err
	}

	out := make([]POI, 0, len(templates))
	for i, t := range templates {
		out = append(out, POI{
			ID:          fmt.Sprintf("poi-%s-%d", t.category, i),
			Name:        t.name,
			Category:    t.category,
			Description: t.description,
			Lat:         lat + t.dLat,
			Lng:         lng + t.dLng,
			Priority:    float64(len(templates) - i),
		})
	}
	return out, nil
}
