package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riverwatch/go-flood-routes/internal/models"
	"github.com/riverwatch/go-flood-routes/internal/repository"
	"github.com/riverwatch/go-flood-routes/internal/risk"
	"github.com/riverwatch/go-flood-routes/internal/routing"
)

type Handler struct {
	assessor *risk.Assessor
	status   *routing.StatusService
	composer *routing.Composer
	rivers   repository.RiverRepository
	roads    repository.RoadRepository
	subs     repository.SubscriptionRepository
}

func NewHandler(
	assessor *risk.Assessor,
	status *routing.StatusService,
	composer *routing.Composer,
	rivers repository.RiverRepository,
	roads repository.RoadRepository,
	subs repository.SubscriptionRepository,
) *Handler {
	return &Handler{
		assessor: assessor,
		status:   status,
		composer: composer,
		rivers:   rivers,
		roads:    roads,
		subs:     subs,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/api/risk", h.getRisk)
	r.GET("/api/roads", h.getRoadStatus)
	r.GET("/api/routes", h.getRoutes)
	r.POST("/api/subscriptions", h.createSubscription)
	r.DELETE("/api/subscriptions/:id", h.deleteSubscription)
	r.POST("/api/debug/reading", h.createTestReading)
	r.POST("/api/debug/road", h.createRoad)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getRisk(c *gin.Context) {
	lat, lon, ok := coordParams(c, "lat", "lon")
	if !ok {
		return
	}

	assessment, err := h.assessor.Assess(c.Request.Context(), lat, lon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to assess flood risk",
		})
		return
	}

	c.JSON(http.StatusOK, assessment)
}

func (h *Handler) getRoadStatus(c *gin.Context) {
	start, end, ok := endpointParams(c)
	if !ok {
		return
	}

	status, err := h.status.AssessBetween(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to assess road status",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *Handler) getRoutes(c *gin.Context) {
	start, end, ok := endpointParams(c)
	if !ok {
		return
	}

	routes, err := h.composer.ComposeRoutes(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to compose routes",
		})
		return
	}

	if safeOnly, _ := strconv.ParseBool(c.Query("safe_only")); safeOnly {
		filtered := make([]models.RouteSegment, 0, len(routes))
		for _, r := range routes {
			if r.Status == models.RoadStatusSafe {
				filtered = append(filtered, r)
			}
		}
		routes = filtered
	}

	if c.Query("format") == "geojson" {
		fc := toGeoJSON(routes)
		c.Header("Content-Type", "application/geo+json")
		c.JSON(http.StatusOK, fc)
		return
	}

	c.JSON(http.StatusOK, routes)
}

type subscriptionRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

func (h *Handler) createSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := &models.Subscription{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LastNotified: models.RiskLevelLow,
		CreatedAt:    time.Now(),
	}
	if err := h.subs.AddSubscription(c.Request.Context(), sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to store subscription",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": sub.ID})
}

func (h *Handler) deleteSubscription(c *gin.Context) {
	if err := h.subs.DeleteSubscription(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscription removed"})
}

type testReadingRequest struct {
	River     string   `json:"river"`
	Station   string   `json:"station"`
	Latitude  float64  `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64  `json:"longitude" binding:"min=-180,max=180"`
	Level     float64  `json:"level"`
	Threshold *float64 `json:"threshold"`
}

// createTestReading injects a gauge reading directly, bypassing the pollers.
// Useful for exercising risk and routing answers against known data.
func (h *Handler) createTestReading(c *gin.Context) {
	var req testReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading := &models.RiverReading{
		ID:                fmt.Sprintf("debug_%d", time.Now().UnixNano()),
		Source:            "debug",
		River:             req.River,
		Station:           req.Station,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		Level:             req.Level,
		CriticalThreshold: req.Threshold,
		RecordedAt:        time.Now(),
		CreatedAt:         time.Now(),
	}
	if err := h.rivers.UpsertReading(c.Request.Context(), reading); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to store reading",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": reading.ID})
}

type roadRequest struct {
	Name     string  `json:"name" binding:"required"`
	StartLat float64 `json:"start_lat" binding:"min=-90,max=90"`
	StartLon float64 `json:"start_lon" binding:"min=-180,max=180"`
	EndLat   float64 `json:"end_lat" binding:"min=-90,max=90"`
	EndLon   float64 `json:"end_lon" binding:"min=-180,max=180"`
}

// createRoad seeds a road segment into the network. New roads start SAFE and
// are refreshed against river data whenever routes touch them.
func (h *Handler) createRoad(c *gin.Context) {
	var req roadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	road := &models.RoadSegment{
		ID:             uuid.NewString(),
		Name:           req.Name,
		StartLatitude:  req.StartLat,
		StartLongitude: req.StartLon,
		EndLatitude:    req.EndLat,
		EndLongitude:   req.EndLon,
	}
	if err := h.roads.AddRoad(c.Request.Context(), road); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to store road",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": road.ID})
}

func coordParams(c *gin.Context, latKey, lonKey string) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(c.Query(latKey), 64)
	if err != nil || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", latKey)})
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(c.Query(lonKey), 64)
	if err != nil || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", lonKey)})
		return 0, 0, false
	}
	return lat, lon, true
}

func endpointParams(c *gin.Context) (models.Coordinate, models.Coordinate, bool) {
	startLat, startLon, ok := coordParams(c, "start_lat", "start_lon")
	if !ok {
		return models.Coordinate{}, models.Coordinate{}, false
	}
	endLat, endLon, ok := coordParams(c, "end_lat", "end_lon")
	if !ok {
		return models.Coordinate{}, models.Coordinate{}, false
	}
	return models.Coordinate{Latitude: startLat, Longitude: startLon},
		models.Coordinate{Latitude: endLat, Longitude: endLon}, true
}
