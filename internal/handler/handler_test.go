package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rmsalud/salud-api/internal/auth"
	"github.com/rmsalud/salud-api/internal/config"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/provider/ticketmaster"
	"github.com/rmsalud/salud-api/internal/services"
	"github.com/rmsalud/salud-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubSearcher struct {
	events []ticketmaster.Event
}

func (s *stubSearcher) SearchEvents(context.Context, ticketmaster.SearchParams) ([]ticketmaster.Event, error) {
	return s.events, nil
}

type testServer struct {
	srv *httptest.Server
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	eventsCfg := config.EventsConfig{DefaultRadiusKm: 40, WindowDays: 90}
	users := services.NewUserService(db)
	activities := services.NewActivityService(db)
	meals := services.NewMealService(db)
	goals := services.NewGoalService(db)
	progress := services.NewProgressService(db, goals)
	events := services.NewEventService(db, nil)
	recs := services.NewRecommendationService(goals)
	maps := services.NewMapService(&stubSearcher{}, events, recs, eventsCfg)

	tokens := auth.NewManager(config.AuthConfig{
		Secret:     "test-secret",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	h := New(Services{
		Users:      users,
		Activities: activities,
		Meals:      meals,
		Goals:      goals,
		Progress:   progress,
		Events:     events,
		Recs:       recs,
		Maps:       maps,
	}, tokens, eventsCfg)

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, db: db}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// signup registers a user and returns the access token.
func (ts *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	resp, body := ts.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":      email,
		"password":   "supersecret",
		"first_name": "Test",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tokens := body["tokens"].(map[string]any)
	return tokens["access"].(string)
}

func (ts *testServer) completeProfile(t *testing.T, token string) {
	t.Helper()
	resp, _ := ts.request(t, http.MethodPut, "/api/me", token, map[string]any{
		"age": 30, "weight_kg": 80.0, "height_cm": 175.0, "sex": "M",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (ts *testServer) makeStaff(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, ts.db.Model(&database.User{}).
		Where("email = ?", email).
		Update("is_staff", true).Error)
}

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "ana@example.com")

	resp, body := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "supersecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := body["tokens"].(map[string]any)["access"].(string)

	resp, body = ts.request(t, http.MethodGet, "/api/me", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ana@example.com", body["email"])
	assert.Equal(t, false, body["profile_complete"])
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.request(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.request(t, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRotatesTokens(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ana@example.com", "password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	refresh := body["tokens"].(map[string]any)["refresh"].(string)

	resp, body = ts.request(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refresh": refresh})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := body["tokens"].(map[string]any)["access"].(string)

	resp, _ = ts.request(t, http.MethodGet, "/api/me", access, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// An access token is not accepted as a refresh token.
	access2 := body["tokens"].(map[string]any)["access"].(string)
	resp, _ = ts.request(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refresh": access2})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidationDetails(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "not-an-email", "password": "short",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.NotEmpty(t, body["details"])
}

func TestProfileGateOnGoals(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "ana@example.com")

	targetDate := time.Now().AddDate(0, 0, 50).Format(utils.DateLayout)
	goalBody := map[string]any{
		"current_weight_kg": 80.0,
		"target_weight_kg":  75.0,
		"target_date":       targetDate,
		"activity_level":    "moderate",
	}

	resp, body := ts.request(t, http.MethodPost, "/api/goals", token, goalBody)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "PROFILE_INCOMPLETE", body["code"])

	ts.completeProfile(t, token)

	resp, body = ts.request(t, http.MethodPost, "/api/goals", token, goalBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "loss", body["goal_type"])
	assert.Equal(t, "healthy", body["pace"])
}

func TestGoalProgressAndSummaryFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "ana@example.com")
	ts.completeProfile(t, token)

	targetDate := time.Now().AddDate(0, 0, 50).Format(utils.DateLayout)
	resp, _ := ts.request(t, http.MethodPost, "/api/goals", token, map[string]any{
		"current_weight_kg": 80.0,
		"target_weight_kg":  75.0,
		"target_date":       targetDate,
		"activity_level":    "moderate",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	today := time.Now().Format(utils.DateLayout)
	resp, _ = ts.request(t, http.MethodPost, "/api/meals", token, map[string]any{
		"name": "Lunch", "calories": 900, "slot": "lunch", "date": today,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = ts.request(t, http.MethodPost, "/api/activities", token, map[string]any{
		"type": "run", "duration_min": 30, "calories": 300, "date": today,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := ts.request(t, http.MethodGet, "/api/progress", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deviation := body["deviation"].(map[string]any)
	assert.EqualValues(t, 1, deviation["elapsed_days"])
	assert.EqualValues(t, 600, deviation["actual_cumulative"])

	resp, body = ts.request(t, http.MethodGet, "/api/summary/today", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 900, body["consumed"])
	assert.EqualValues(t, 300, body["burned"])
	assert.EqualValues(t, 600, body["net"])
	assert.Contains(t, body, "daily_target")
}

func TestEventModerationFlow(t *testing.T) {
	ts := newTestServer(t)

	submission := map[string]any{
		"contact_name":  "Carla Soto",
		"contact_email": "carla@example.com",
		"event_name":    "Sunday Fun Run",
		"starts_at":     time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
		"category":      "sports",
		"ticket_type":   "free",
		"address":       "Av. Beauchef 851",
		"latitude":      "-33.4650",
		"longitude":     "-70.6590",
	}
	resp, body := ts.request(t, http.MethodPost, "/api/events", "", submission)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	code := body["tracking_code"].(string)
	require.NotEmpty(t, code)

	resp, body = ts.request(t, http.MethodGet, "/api/events/status/"+code, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", body["status"])

	// Regular users cannot moderate.
	userToken := ts.signup(t, "ana@example.com")
	resp, _ = ts.request(t, http.MethodGet, "/api/admin/events", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := ts.signup(t, "admin@example.com")
	ts.makeStaff(t, "admin@example.com")

	pending := bodyList(t, ts, "/api/admin/events?status=pending", adminToken)
	require.Len(t, pending, 1)
	id := uint(pending[0]["ID"].(float64))

	resp, body = ts.request(t, http.MethodPost, fmt.Sprintf("/api/admin/events/%d/approve", id), adminToken, map[string]any{
		"comments": "looks great",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", body["Status"])

	// The approved event shows up in the public feed.
	feed := bodyList(t, ts, "/api/events?lat=-33.4489&lng=-70.6693", "")
	require.Len(t, feed, 1)
	assert.Equal(t, "Sunday Fun Run", feed[0]["event_name"])
	// Contact details never leak into the public feed.
	assert.NotContains(t, feed[0], "ContactEmail")
	assert.NotContains(t, feed[0], "contact_email")

	resp, body = ts.request(t, http.MethodGet, "/api/admin/events/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["approved"])
}

// bodyList fetches a JSON array endpoint.
func bodyList(t *testing.T, ts *testServer, path, token string) []map[string]any {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	return list
}

func TestMapEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "ana@example.com")
	ts.completeProfile(t, token)

	resp, _ := ts.request(t, http.MethodGet, "/api/map", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := ts.request(t, http.MethodGet, "/api/map?lat=-33.4489&lng=-70.6693&view=compact", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	points := body["points"].([]any)
	assert.NotEmpty(t, points)
	assert.LessOrEqual(t, len(points), 6)
}

func TestRecommendationEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "ana@example.com")

	resp, _ := ts.request(t, http.MethodGet, "/api/recommendations/resources", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// POIs sit behind the profile gate.
	resp, _ = ts.request(t, http.MethodGet, "/api/recommendations/pois?lat=-33.44&lng=-70.66", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ts.completeProfile(t, token)
	resp, _ = ts.request(t, http.MethodGet, "/api/recommendations/pois?lat=-33.44&lng=-70.66", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
