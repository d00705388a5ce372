// Package ticketmaster is a minimal client for the Discovery API,
// covering the geo event search the map feature needs.
package ticketmaster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://app.ticketmaster.com/discovery/v2"

// Event is a Discovery API event reduced to the fields the map renders.
// Events without a resolvable venue coordinate are dropped during
// transformation, never returned.
type Event struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Venue    string  `json:"venue"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Category string  `json:"category"`
	Genre    string  `json:"genre"`
	Date     string  `json:"date"` // ISO datetime or local date
	Time     string  `json:"time"`
	Price    string  `json:"price"`
	URL      string  `json:"url"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	ImageURL string  `json:"image_url"`
}

// SearchParams bounds a geographic event search.
type SearchParams struct {
	Lat        float64
	Lng        float64
	RadiusKm   int
	Size       int
	Categories []string // segment names to keep, e.g. sports, music
	WindowDays int      // forward time window, 0 disables the date filter
}

// Client calls the Ticketmaster Discovery API. BaseURL and HTTPClient
// can be overridden for tests.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// SearchEvents returns upcoming events around a coordinate, soonest
// first.
func (c *Client) SearchEvents(ctx context.Context, p SearchParams) ([]Event, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("missing Ticketmaster API key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	q := url.Values{}
	q.Set("apikey", c.APIKey)
	q.Set("latlong", fmt.Sprintf("%f,%f", p.Lat, p.Lng))
	q.Set("radius", fmt.Sprintf("%d", p.RadiusKm))
	q.Set("unit", "km")
	q.Set("size", fmt.Sprintf("%d", p.Size))
	q.Set("sort", "date,asc")
	if p.WindowDays > 0 {
		now := time.Now().UTC()
		q.Set("startDateTime", now.Format("2006-01-02T15:04:05Z"))
		q.Set("endDateTime", now.AddDate(0, 0, p.WindowDays).Format("2006-01-02T15:04:05Z"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/events.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create Ticketmaster request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute Ticketmaster request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("invalid Ticketmaster API key")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("Ticketmaster request limit exceeded")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("Ticketmaster responded with status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode Ticketmaster response: %w", err)
	}

	events := transform(payload.Embedded.Events)
	if len(p.Categories) > 0 {
		events = filterByCategory(events, p.Categories)
	}
	return events, nil
}

type searchResponse struct {
	Embedded struct {
		Events []rawEvent `json:"events"`
	} `json:"_embedded"`
}

type rawEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
			DateTime  string `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
	PriceRanges []struct {
		Currency string  `json:"currency"`
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
	} `json:"priceRanges"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Embedded struct {
		Venues []struct {
			Name     string `json:"name"`
			Location struct {
				Latitude  string `json:"latitude"`
				Longitude string `json:"longitude"`
			} `json:"location"`
			Address struct {
				Line1 string `json:"line1"`
			} `json:"address"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
		} `json:"venues"`
	} `json:"_embedded"`
}

func transform(raw []rawEvent) []Event {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		if len(r.Embedded.Venues) == 0 {
			continue
		}
		venue := r.Embedded.Venues[0]
		lat, latErr := parseFloat(venue.Location.Latitude)
		lng, lngErr := parseFloat(venue.Location.Longitude)
		if latErr != nil || lngErr != nil {
			// Unmappable events are useless to the map; skip them.
			continue
		}

		ev := Event{
			ID:       r.ID,
			Title:    r.Name,
			Venue:    venue.Name,
			Lat:      lat,
			Lng:      lng,
			Category: "Event",
			Price:    "Price not available",
			URL:      r.URL,
			Address:  venue.Address.Line1,
			City:     venue.City.Name,
			Time:     r.Dates.Start.LocalTime,
		}
		if len(r.Classifications) > 0 {
			if name := r.Classifications[0].Segment.Name; name != "" {
				ev.Category = name
			}
			ev.Genre = r.Classifications[0].Genre.Name
		}
		if len(r.PriceRanges) > 0 {
			pr := r.PriceRanges[0]
			ev.Price = fmt.Sprintf("%s $%.0f - $%.0f", pr.Currency, pr.Min, pr.Max)
		}
		if r.Dates.Start.DateTime != "" {
			ev.Date = r.Dates.Start.DateTime
		} else {
			ev.Date = r.Dates.Start.LocalDate
		}
		if len(r.Images) > 0 {
			ev.ImageURL = r.Images[0].URL
		}
		events = append(events, ev)
	}
	return events
}

func filterByCategory(events []Event, categories []string) []Event {
	wanted := make([]string, 0, len(categories))
	for _, c := range categories {
		wanted = append(wanted, strings.ToLower(c))
	}
	out := events[:0]
	for _, ev := range events {
		category := strings.ToLower(ev.Category)
		for _, w := range wanted {
			if strings.Contains(category, w) {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
