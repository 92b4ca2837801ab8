package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homeanalyzer/server/internal/alerts"
	"homeanalyzer/server/internal/market"
	"homeanalyzer/server/internal/models"
	"homeanalyzer/server/internal/scoring"
	"homeanalyzer/server/internal/valuation"
)

// Predictor produces a valuation for a property.
type Predictor interface {
	Predict(property models.PropertyRecord) (models.ValuationResult, error)
}

// Resolver turns a listing URL into a property record.
type Resolver interface {
	Resolve(listingURL string) (models.PropertyRecord, error)
}

// ComparablesFinder looks up nearby recent sales.
type ComparablesFinder interface {
	Find(property models.PropertyRecord, limit int) ([]models.ComparableSale, scoring.MarketSignal, error)
}

// TrendProvider computes neighborhood market trends.
type TrendProvider interface {
	NeighborhoodTrends(address string) (models.NeighborhoodTrends, error)
}

// VelocitySource supplies the fallback sale-velocity signal per city.
type VelocitySource interface {
	Velocity(city string) (int, bool)
}

type Handler struct {
	evaluator   *scoring.Evaluator
	model       Predictor
	resolver    Resolver
	comparables ComparablesFinder
	trends      TrendProvider
	snapshot    VelocitySource
	alerts      *alerts.Service
	compsLimit  int
	logger      *logrus.Logger
}

func NewHandler(
	evaluator *scoring.Evaluator,
	model Predictor,
	resolver Resolver,
	comparables ComparablesFinder,
	trends TrendProvider,
	snapshot VelocitySource,
	alertService *alerts.Service,
	compsLimit int,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if compsLimit <= 0 {
		compsLimit = 5
	}
	return &Handler{
		evaluator:   evaluator,
		model:       model,
		resolver:    resolver,
		comparables: comparables,
		trends:      trends,
		snapshot:    snapshot,
		alerts:      alertService,
		compsLimit:  compsLimit,
		logger:      logger,
	}
}

// AnalyzeRequest is the tagged input for property analysis: either a listing
// URL or the property attributes themselves.
type AnalyzeRequest struct {
	ZillowURL    string  `json:"zillow_url"`
	Address      string  `json:"address"`
	Price        int     `json:"price"`
	Sqft         int     `json:"sqft"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	YearBuilt    int     `json:"year_built"`
	PropertyType string  `json:"property_type"`
}

type TrendsRequest struct {
	Address string `json:"address" binding:"required"`
}

// analysisPayload extends the deal assessment with the derived price fields
// the front-end renders alongside it.
type analysisPayload struct {
	models.DealAssessment
	PredictedValue        int `json:"predicted_value"`
	PricePerSqft          int `json:"price_per_sqft"`
	PredictedPricePerSqft int `json:"predicted_price_per_sqft"`
}

// AnalyzeProperty resolves and validates the input, runs the valuation model
// and the deal evaluator, and attaches comparable sales.
func (h *Handler) AnalyzeProperty(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse analyze request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var property models.PropertyRecord
	switch {
	case req.ZillowURL != "":
		resolved, err := h.resolver.Resolve(req.ZillowURL)
		if err != nil {
			h.logger.WithError(err).WithField("url", req.ZillowURL).Error("Failed to resolve listing URL")
			c.JSON(http.StatusNotFound, gin.H{"error": "Could not fetch property data"})
			return
		}
		property = resolved
	case req.Address != "":
		property = models.PropertyRecord{
			Address:      req.Address,
			Price:        req.Price,
			Sqft:         req.Sqft,
			Bedrooms:     req.Bedrooms,
			Bathrooms:    req.Bathrooms,
			YearBuilt:    req.YearBuilt,
			PropertyType: req.PropertyType,
		}
		if err := validateRecord(property); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide zillow_url or property details"})
		return
	}

	property = normalizeRecord(property)

	predicted, err := h.model.Predict(property)
	if err != nil {
		if errors.Is(err, valuation.ErrInvalidFeatureVector) {
			h.logger.WithError(err).Warn("Out-of-domain feature vector")
		} else {
			h.logger.WithError(err).Error("Valuation model failed")
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed"})
		return
	}

	comps, signal, err := h.comparables.Find(property, h.compsLimit)
	if err != nil {
		// Degraded response: comparables omitted, analysis unaffected
		h.logger.WithError(err).Warn("Comparables lookup failed")
		comps = nil
		signal = scoring.MarketSignal{}
	}
	if comps == nil {
		comps = []models.ComparableSale{}
	}
	if !signal.Available && h.snapshot != nil {
		if velocity, ok := h.snapshot.Velocity(market.CityFromAddress(property.Address)); ok {
			signal = scoring.MarketSignal{RecentSales: velocity, Available: true}
		}
	}

	assessment, err := h.evaluator.Evaluate(property, predicted, signal)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Deal evaluation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	if h.alerts != nil && h.alerts.ShouldNotify(assessment.DealScore) {
		go func() {
			if err := h.alerts.NotifyDeal(property, predicted, assessment); err != nil {
				h.logger.WithError(err).Error("Failed to send deal alert")
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{
		"property": property,
		"analysis": analysisPayload{
			DealAssessment:        assessment,
			PredictedValue:        int(math.Round(predicted.PredictedValue)),
			PricePerSqft:          property.Price / property.Sqft,
			PredictedPricePerSqft: int(math.Round(predicted.PredictedPricePerSqft)),
		},
		"comparables": comps,
	})
}

// NeighborhoodTrends returns market trends for the area around an address.
func (h *Handler) NeighborhoodTrends(c *gin.Context) {
	var req TrendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse trends request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	trends, err := h.trends.NeighborhoodTrends(req.Address)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute neighborhood trends")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get neighborhood trends"})
		return
	}

	c.JSON(http.StatusOK, trends)
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validateRecord enforces the submission invariants on caller-provided
// records. Resolved listings use tolerant defaults and skip this path.
func validateRecord(property models.PropertyRecord) error {
	if property.Address == "" {
		return fmt.Errorf("address must not be empty")
	}
	if property.Price < 1000 || property.Price > 50000000 {
		return fmt.Errorf("price must be between 1,000 and 50,000,000")
	}
	if property.Sqft < 100 || property.Sqft > 50000 {
		return fmt.Errorf("sqft must be between 100 and 50,000")
	}
	if property.Bedrooms < 0 {
		return fmt.Errorf("bedrooms must not be negative")
	}
	if property.Bathrooms < 0 {
		return fmt.Errorf("bathrooms must not be negative")
	}
	if property.YearBuilt < 1800 || property.YearBuilt > time.Now().Year() {
		return fmt.Errorf("year_built must be between 1800 and the current year")
	}
	return nil
}

func normalizeRecord(property models.PropertyRecord) models.PropertyRecord {
	if property.PropertyType == "" {
		property.PropertyType = models.PropertyTypeHouse
	}
	return property
}
