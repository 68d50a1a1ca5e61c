package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riverwatch/go-flood-routes/internal/geo"
	"github.com/riverwatch/go-flood-routes/internal/models"
	"github.com/riverwatch/go-flood-routes/internal/risk"
	"github.com/riverwatch/go-flood-routes/internal/routing"
)

// mockRiverRepo implements repository.RiverRepository for testing
type mockRiverRepo struct {
	mu       sync.Mutex
	readings []models.RiverReading
}

func (m *mockRiverRepo) UpsertReading(ctx context.Context, r *models.RiverReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.readings {
		if m.readings[i].ID == r.ID {
			m.readings[i] = *r
			return nil
		}
	}
	m.readings = append(m.readings, *r)
	return nil
}

func (m *mockRiverRepo) GetReadingByID(ctx context.Context, id string) (*models.RiverReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.readings {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *mockRiverRepo) GetReadingsByArea(ctx context.Context, lat, lon, radiusKm float64) ([]models.RiverReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dLat, dLon := geo.BoundingDegrees(lat, radiusKm)
	var results []models.RiverReading
	for _, r := range m.readings {
		if r.Latitude >= lat-dLat && r.Latitude <= lat+dLat &&
			r.Longitude >= lon-dLon && r.Longitude <= lon+dLon {
			results = append(results, r)
		}
	}
	return results, nil
}

// mockRoadRepo implements repository.RoadRepository for testing
type mockRoadRepo struct {
	mu    sync.Mutex
	roads []models.RoadSegment
}

func (m *mockRoadRepo) AddRoad(ctx context.Context, road *models.RoadSegment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if road.Status == "" {
		road.Status = models.RoadStatusSafe
	}
	m.roads = append(m.roads, *road)
	return nil
}

func (m *mockRoadRepo) GetRoadsByArea(ctx context.Context, lat, lon, radiusKm float64) ([]models.RoadSegment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dLat, dLon := geo.BoundingDegrees(lat, radiusKm)
	inBox := func(rLat, rLon float64) bool {
		return rLat >= lat-dLat && rLat <= lat+dLat &&
			rLon >= lon-dLon && rLon <= lon+dLon
	}
	var results []models.RoadSegment
	for _, r := range m.roads {
		if inBox(r.StartLatitude, r.StartLongitude) || inBox(r.EndLatitude, r.EndLongitude) {
			results = append(results, r)
		}
	}
	return results, nil
}

func (m *mockRoadRepo) UpdateRoadStatus(ctx context.Context, id string, status models.RoadStatus) (*models.RoadSegment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.roads {
		if m.roads[i].ID == id {
			m.roads[i].Status = status
			road := m.roads[i]
			return &road, nil
		}
	}
	return nil, nil
}

// mockSubRepo implements repository.SubscriptionRepository for testing
type mockSubRepo struct {
	mu   sync.Mutex
	subs []models.Subscription
}

func (m *mockSubRepo) AddSubscription(ctx context.Context, s *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, *s)
	return nil
}

func (m *mockSubRepo) DeleteSubscription(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("subscription not found: %s", id)
}

func (m *mockSubRepo) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Subscription, len(m.subs))
	copy(out, m.subs)
	return out, nil
}

func (m *mockSubRepo) SetLastNotified(ctx context.Context, id string, level models.RiskLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].LastNotified = level
		}
	}
	return nil
}

func setupTestRouter(rivers *mockRiverRepo, roads *mockRoadRepo, subs *mockSubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	assessor := risk.NewAssessor(
		risk.NewRiverLookup(rivers),
		risk.Classifier{DistanceOverrideKm: risk.DefaultDistanceOverrideKm},
		risk.DefaultSearchRadiusKm,
	)
	status := routing.NewStatusService(roads, rivers)
	composer := routing.NewComposer(roads, status)

	router := gin.New()
	handler := NewHandler(assessor, status, composer, rivers, roads, subs)
	handler.RegisterRoutes(router)
	return router
}

func gauge(id string, lat, lon, level float64, threshold *float64) models.RiverReading {
	return models.RiverReading{
		ID:                id,
		Source:            "test",
		River:             "Thames",
		Station:           id,
		Latitude:          lat,
		Longitude:         lon,
		Level:             level,
		CriticalThreshold: threshold,
		RecordedAt:        time.Now(),
		CreatedAt:         time.Now(),
	}
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(&mockRiverRepo{}, &mockRoadRepo{}, &mockSubRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestGetRisk_HighNearFloodedGauge(t *testing.T) {
	threshold := 2.0
	rivers := &mockRiverRepo{readings: []models.RiverReading{
		gauge("g1", 51.51, -0.12, 3.5, &threshold),
	}}
	router := setupTestRouter(rivers, &mockRoadRepo{}, &mockSubRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/risk?lat=51.5074&lon=-0.1278", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var assessment models.RiskAssessment
	if err := json.Unmarshal(w.Body.Bytes(), &assessment); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if assessment.RiskLevel != models.RiskLevelHigh {
		t.Errorf("expected HIGH, got %s", assessment.RiskLevel)
	}
	if assessment.WaterLevel != 3.5 || assessment.ThresholdLevel != 2.0 {
		t.Errorf("unexpected levels: water=%v threshold=%v", assessment.WaterLevel, assessment.ThresholdLevel)
	}
	if assessment.RiverName == nil || *assessment.RiverName != "Thames" {
		t.Errorf("expected river Thames, got %v", assessment.RiverName)
	}
}

func TestGetRisk_NoGaugeInRange(t *testing.T) {
	router := setupTestRouter(&mockRiverRepo{}, &mockRoadRepo{}, &mockSubRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/risk?lat=51.5&lon=-0.12", nil)
	router.ServeHTTP(w, req)

	var assessment models.RiskAssessment
	json.Unmarshal(w.Body.Bytes(), &assessment)

	if assessment.RiskLevel != models.RiskLevelLow {
		t.Errorf("expected LOW, got %s", assessment.RiskLevel)
	}
	if assessment.DistanceToRiver != nil || assessment.RiverName != nil {
		t.Error("expected null distance and river name with no gauge in range")
	}
}

func TestGetRisk_InvalidParams(t *testing.T) {
	router := setupTestRouter(&mockRiverRepo{}, &mockRoadRepo{}, &mockSubRepo{})

	for _, query := range []string{"", "lat=abc&lon=0", "lat=91&lon=0", "lat=0&lon=181"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/risk?"+query, nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected status 400, got %d", query, w.Code)
		}
	}
}

func TestGetRoadStatus(t *testing.T) {
	threshold := 2.0
	rivers := &mockRiverRepo{readings: []models.RiverReading{
		gauge("g1", 51.5074, -0.1278, 3.5, &threshold),
	}}
	router := setupTestRouter(rivers, &mockRoadRepo{}, &mockSubRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/roads?start_lat=51.5074&start_lon=-0.1278&end_lat=51.52&end_lon=-0.10", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]models.RoadStatus
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp["status"] != models.RoadStatusUnderFlood {
		t.Errorf("expected UNDER_FLOOD, got %s", resp["status"])
	}
}

func TestGetRoutes_NoRoadsFallsBackToDirect(t *testing.T) {
	router := setupTestRouter(&mockRiverRepo{}, &mockRoadRepo{}, &mockSubRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/routes?start_lat=51.50&start_lon=-0.12&end_lat=51.52&end_lon=-0.10", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var routes []models.RouteSegment
	if err := json.Unmarshal(w.Body.Bytes(), &routes); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if len(routes) != 1 {
		t.Fatalf("expected 1 direct route, got %d", len(routes))
	}
	if routes[0].Status != models.RoadStatusSafe || len(routes[0].Path) != 2 {
		t.Errorf("unexpected direct route: %+v", routes[0])
	}
}

func TestGetRoutes_SafeOnlyFiltersFloodedRoads(t *testing.T) {
	threshold := 2.0
	rivers := &mockRiverRepo{readings: []models.RiverReading{
		gauge("g1", 51.52, -0.10, 3.5, &threshold),
	}}
	roads := &mockRoadRepo{roads: []models.RoadSegment{
		{
			ID: "r_safe", Name: "Dry road", Status: models.RoadStatusSafe,
			StartLatitude: 51.46, StartLongitude: -0.20,
			EndLatitude: 51.47, EndLongitude: -0.19,
		},
		{
			ID: "r_wet", Name: "Flooded road", Status: models.RoadStatusSafe,
			StartLatitude: 51.52, StartLongitude: -0.10,
			EndLatitude: 51.53, EndLongitude: -0.09,
		},
	}}
	router := setupTestRouter(rivers, roads, &mockSubRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/routes?start_lat=51.46&start_lon=-0.20&end_lat=51.53&end_lon=-0.09&safe_only=true", nil)
	router.ServeHTTP(w, req)

	var routes []models.RouteSegment
	if err := json.Unmarshal(w.Body.Bytes(), &routes); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	for _, r := range routes {
		if r.Status != models.RoadStatusSafe {
			t.Errorf("safe_only returned %s route %s", r.Status, r.Name)
		}
	}
	found := false
	for _, r := range routes {
		if r.ID == "r_safe" {
			found = true
		}
		if r.ID == "r_wet" {
			t.Error("flooded road should have been filtered out")
		}
	}
	if !found {
		t.Error("expected the dry road to survive the filter")
	}
}

func TestGetRoutes_GeoJSONFormat(t *testing.T) {
	router := setupTestRouter(&mockRiverRepo{}, &mockRoadRepo{}, &mockSubRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/routes?start_lat=51.50&start_lon=-0.12&end_lat=51.52&end_lon=-0.10&format=geojson", nil)
	router.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", ct)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected type FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	feature := fc.Features[0]
	if feature.Geometry.Type != "LineString" {
		t.Errorf("expected LineString, got %s", feature.Geometry.Type)
	}
	// GeoJSON orders coordinates lon first.
	if len(feature.Geometry.Coordinates) != 2 || feature.Geometry.Coordinates[0][0] != -0.12 {
		t.Errorf("unexpected coordinates: %v", feature.Geometry.Coordinates)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	subs := &mockSubRepo{}
	router := setupTestRouter(&mockRiverRepo{}, &mockRoadRepo{}, subs)

	body, _ := json.Marshal(map[string]any{
		"email":     "user@example.com",
		"latitude":  51.5074,
		"longitude": -0.1278,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/subscriptions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["id"] == "" {
		t.Fatal("expected a subscription id")
	}

	stored, _ := subs.ListSubscriptions(context.Background())
	if len(stored) != 1 || stored[0].LastNotified != models.RiskLevelLow {
		t.Fatalf("unexpected stored subscriptions: %+v", stored)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/subscriptions/"+resp["id"], nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	stored, _ = subs.ListSubscriptions(context.Background())
	if len(stored) != 0 {
		t.Errorf("expected subscription removed, %d remain", len(stored))
	}
}

func TestCreateSubscription_RejectsBadEmail(t *testing.T) {
	router := setupTestRouter(&mockRiverRepo{}, &mockRoadRepo{}, &mockSubRepo{})

	body, _ := json.Marshal(map[string]any{
		"email":     "not-an-email",
		"latitude":  51.5,
		"longitude": -0.12,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/subscriptions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestDeleteSubscription_Missing(t *testing.T) {
	router := setupTestRouter(&mockRiverRepo{}, &mockRoadRepo{}, &mockSubRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/subscriptions/nope", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestCreateTestReading_FeedsRiskAnswers(t *testing.T) {
	rivers := &mockRiverRepo{}
	router := setupTestRouter(rivers, &mockRoadRepo{}, &mockSubRepo{})

	body, _ := json.Marshal(map[string]any{
		"river":     "Severn",
		"station":   "Worcester",
		"latitude":  52.19,
		"longitude": -2.22,
		"level":     6.0,
		"threshold": 4.0,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/debug/reading", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/risk?lat=52.19&lon=-2.22", nil)
	router.ServeHTTP(w, req)

	var assessment models.RiskAssessment
	json.Unmarshal(w.Body.Bytes(), &assessment)
	if assessment.RiskLevel != models.RiskLevelHigh {
		t.Errorf("expected HIGH from injected reading, got %s", assessment.RiskLevel)
	}
}

func TestCreateRoad_SeedsNetwork(t *testing.T) {
	roads := &mockRoadRepo{}
	router := setupTestRouter(&mockRiverRepo{}, roads, &mockSubRepo{})

	body, _ := json.Marshal(map[string]any{
		"name":      "High Street",
		"start_lat": 51.50, "start_lon": -0.12,
		"end_lat": 51.51, "end_lon": -0.11,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/debug/road", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	stored, _ := roads.GetRoadsByArea(context.Background(), 51.505, -0.115, 5)
	if len(stored) != 1 {
		t.Fatalf("expected 1 seeded road, got %d", len(stored))
	}
	if stored[0].Status != models.RoadStatusSafe {
		t.Errorf("seeded road should start SAFE, got %s", stored[0].Status)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(2))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	var limited bool
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Error("expected the burst to trip the rate limit")
	}
}
