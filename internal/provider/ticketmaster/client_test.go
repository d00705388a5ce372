package ticketmaster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "_embedded": {
    "events": [
      {
        "id": "ev-1",
        "name": "Night Run Santiago",
        "url": "https://tickets.example/ev-1",
        "dates": {"start": {"localDate": "2026-01-15", "localTime": "20:00:00", "dateTime": "2026-01-15T23:00:00Z"}},
        "classifications": [{"segment": {"name": "Sports"}, "genre": {"name": "Running"}}],
        "priceRanges": [{"currency": "CLP", "min": 10000, "max": 25000}],
        "images": [{"url": "https://img.example/ev-1.jpg"}],
        "_embedded": {"venues": [{
          "name": "Parque O'Higgins",
          "location": {"latitude": "-33.4650", "longitude": "-70.6590"},
          "address": {"line1": "Av. Beauchef 851"},
          "city": {"name": "Santiago"}
        }]}
      },
      {
        "id": "ev-2",
        "name": "Concert Without Venue Coordinates",
        "dates": {"start": {"localDate": "2026-01-20"}},
        "classifications": [{"segment": {"name": "Music"}}],
        "_embedded": {"venues": [{"name": "Unknown Hall", "location": {"latitude": "", "longitude": ""}}]}
      },
      {
        "id": "ev-3",
        "name": "Jazz Evening",
        "dates": {"start": {"localDate": "2026-02-01"}},
        "classifications": [{"segment": {"name": "Music"}, "genre": {"name": "Jazz"}}],
        "_embedded": {"venues": [{
          "name": "Teatro Municipal",
          "location": {"latitude": "-33.4395", "longitude": "-70.6490"},
          "city": {"name": "Santiago"}
        }]}
      }
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()}
}

func TestSearchEventsTransformsAndDropsUnmappable(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	})

	events, err := client.SearchEvents(context.Background(), SearchParams{
		Lat: -33.4489, Lng: -70.6693, RadiusKm: 40, Size: 20, WindowDays: 90,
	})
	require.NoError(t, err)

	// ev-2 has no valid coordinates and must be dropped.
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "ev-1", first.ID)
	assert.Equal(t, "Night Run Santiago", first.Title)
	assert.Equal(t, "Parque O'Higgins", first.Venue)
	assert.InDelta(t, -33.4650, first.Lat, 1e-6)
	assert.InDelta(t, -70.6590, first.Lng, 1e-6)
	assert.Equal(t, "Sports", first.Category)
	assert.Equal(t, "Running", first.Genre)
	assert.Equal(t, "CLP $10000 - $25000", first.Price)
	assert.Equal(t, "2026-01-15T23:00:00Z", first.Date)

	second := events[1]
	assert.Equal(t, "Price not available", second.Price)
	assert.Equal(t, "2026-02-01", second.Date)

	assert.Equal(t, "test-key", gotQuery["apikey"][0])
	assert.Equal(t, "km", gotQuery["unit"][0])
	assert.Equal(t, "date,asc", gotQuery["sort"][0])
	assert.NotEmpty(t, gotQuery["startDateTime"])
	assert.NotEmpty(t, gotQuery["endDateTime"])
}

func TestSearchEventsCategoryFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	})

	events, err := client.SearchEvents(context.Background(), SearchParams{
		Lat: -33.4489, Lng: -70.6693, RadiusKm: 40, Size: 20,
		Categories: []string{"music"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-3", events[0].ID)
}

func TestSearchEventsErrorMapping(t *testing.T) {
	cases := []struct {
		status  int
		message string
	}{
		{http.StatusUnauthorized, "invalid Ticketmaster API key"},
		{http.StatusTooManyRequests, "request limit exceeded"},
		{http.StatusInternalServerError, "status 500"},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := client.SearchEvents(context.Background(), SearchParams{Lat: 0, Lng: 0, RadiusKm: 10, Size: 5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), tc.message)
	}
}

func TestSearchEventsEmptyFeed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	events, err := client.SearchEvents(context.Background(), SearchParams{Lat: 0, Lng: 0, RadiusKm: 10, Size: 5})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSearchEventsRequiresAPIKey(t *testing.T) {
	client := &Client{}
	_, err := client.SearchEvents(context.Background(), SearchParams{})
	assert.Error(t, err)
}
