package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"homeanalyzer/server/internal/models"
	"homeanalyzer/server/internal/scoring"
	"homeanalyzer/server/internal/valuation"
)

// MockPredictor is a mock implementation of the Predictor interface
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(property models.PropertyRecord) (models.ValuationResult, error) {
	args := m.Called(property)
	return args.Get(0).(models.ValuationResult), args.Error(1)
}

// MockFinder is a mock implementation of the ComparablesFinder interface
type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) Find(property models.PropertyRecord, limit int) ([]models.ComparableSale, scoring.MarketSignal, error) {
	args := m.Called(property, limit)
	comps, _ := args.Get(0).([]models.ComparableSale)
	return comps, args.Get(1).(scoring.MarketSignal), args.Error(2)
}

// MockResolver is a mock implementation of the Resolver interface
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(listingURL string) (models.PropertyRecord, error) {
	args := m.Called(listingURL)
	return args.Get(0).(models.PropertyRecord), args.Error(1)
}

// MockTrends is a mock implementation of the TrendProvider interface
type MockTrends struct {
	mock.Mock
}

func (m *MockTrends) NeighborhoodTrends(address string) (models.NeighborhoodTrends, error) {
	args := m.Called(address)
	return args.Get(0).(models.NeighborhoodTrends), args.Error(1)
}

type fixedVelocity struct {
	count int
	ok    bool
}

func (f fixedVelocity) Velocity(string) (int, bool) {
	return f.count, f.ok
}

type analyzeResponse struct {
	Property models.PropertyRecord `json:"property"`
	Analysis struct {
		models.DealAssessment
		PredictedValue        int `json:"predicted_value"`
		PricePerSqft          int `json:"price_per_sqft"`
		PredictedPricePerSqft int `json:"predicted_price_per_sqft"`
	} `json:"analysis"`
	Comparables []models.ComparableSale `json:"comparables"`
}

func newTestRouter(predictor Predictor, resolver Resolver, finder ComparablesFinder, trends TrendProvider, snapshot VelocitySource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()

	handler := NewHandler(
		scoring.NewEvaluator(0),
		predictor,
		resolver,
		finder,
		trends,
		snapshot,
		nil,
		5,
		logger,
	)

	router := gin.New()
	router.Use(RequestID())
	SetupRoutes(router, handler)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validRequest() map[string]interface{} {
	return map[string]interface{}{
		"address":       "123 Oak Ave, Seattle, WA",
		"price":         450000,
		"sqft":          1800,
		"bedrooms":      3,
		"bathrooms":     2.0,
		"year_built":    1995,
		"property_type": "House",
	}
}

func TestAnalyzeProperty_Success(t *testing.T) {
	predictor := &MockPredictor{}
	predictor.On("Predict", mock.Anything).Return(models.ValuationResult{
		PredictedValue:        425000,
		PredictedPricePerSqft: 425000.0 / 1800,
	}, nil)

	finder := &MockFinder{}
	finder.On("Find", mock.Anything, 5).Return(
		[]models.ComparableSale{{Address: "125 Oak Ave", SalePrice: 430000, SaleDate: "2026-07-01", Sqft: 1750, Bedrooms: 3, Bathrooms: 2}},
		scoring.MarketSignal{RecentSales: 4, Available: true},
		nil,
	)

	router := newTestRouter(predictor, &MockResolver{}, finder, &MockTrends{}, fixedVelocity{})
	w := postJSON(router, "/api/analyze-property", validRequest())

	require.Equal(t, http.StatusOK, w.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 7.2, resp.Analysis.DealScore)
	assert.Equal(t, models.AssessmentFairlyPriced, resp.Analysis.PricingAssessment)
	assert.Equal(t, 100, resp.Analysis.ValueDrivers.Sum())
	assert.Equal(t, 425000, resp.Analysis.PredictedValue)
	assert.Equal(t, 250, resp.Analysis.PricePerSqft)
	assert.Equal(t, 236, resp.Analysis.PredictedPricePerSqft)
	assert.Len(t, resp.Comparables, 1)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	predictor.AssertExpectations(t)
	finder.AssertExpectations(t)
}

func TestAnalyzeProperty_ZillowURLMode(t *testing.T) {
	resolved := models.PropertyRecord{
		Address:      "77 Hillcrest Ave, Portland, OR",
		Price:        520000,
		Sqft:         2100,
		Bedrooms:     4,
		Bathrooms:    2.5,
		YearBuilt:    2012,
		PropertyType: models.PropertyTypeHouse,
	}

	resolver := &MockResolver{}
	resolver.On("Resolve", "https://www.zillow.com/homedetails/example").Return(resolved, nil)

	predictor := &MockPredictor{}
	predictor.On("Predict", resolved).Return(models.ValuationResult{PredictedValue: 540000, PredictedPricePerSqft: 540000.0 / 2100}, nil)

	finder := &MockFinder{}
	finder.On("Find", resolved, 5).Return([]models.ComparableSale{}, scoring.MarketSignal{}, nil)

	router := newTestRouter(predictor, resolver, finder, &MockTrends{}, fixedVelocity{})
	w := postJSON(router, "/api/analyze-property", map[string]interface{}{
		"zillow_url": "https://www.zillow.com/homedetails/example",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, resolved.Address, resp.Property.Address)

	resolver.AssertExpectations(t)
}

func TestAnalyzeProperty_ResolverFailure(t *testing.T) {
	resolver := &MockResolver{}
	resolver.On("Resolve", mock.Anything).Return(models.PropertyRecord{}, errors.New("status 403"))

	router := newTestRouter(&MockPredictor{}, resolver, &MockFinder{}, &MockTrends{}, fixedVelocity{})
	w := postJSON(router, "/api/analyze-property", map[string]interface{}{"zillow_url": "https://example.com"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Could not fetch property data")
}

func TestAnalyzeProperty_MissingInput(t *testing.T) {
	router := newTestRouter(&MockPredictor{}, &MockResolver{}, &MockFinder{}, &MockTrends{}, fixedVelocity{})
	w := postJSON(router, "/api/analyze-property", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please provide zillow_url or property details")
}

func TestAnalyzeProperty_Validation(t *testing.T) {
	router := newTestRouter(&MockPredictor{}, &MockResolver{}, &MockFinder{}, &MockTrends{}, fixedVelocity{})

	tests := []struct {
		name    string
		mutate  func(map[string]interface{})
		message string
	}{
		{"price too low", func(r map[string]interface{}) { r["price"] = 500 }, "price"},
		{"price too high", func(r map[string]interface{}) { r["price"] = 60000000 }, "price"},
		{"sqft too small", func(r map[string]interface{}) { r["sqft"] = 50 }, "sqft"},
		{"sqft too large", func(r map[string]interface{}) { r["sqft"] = 80000 }, "sqft"},
		{"year too early", func(r map[string]interface{}) { r["year_built"] = 1700 }, "year_built"},
		{"year in future", func(r map[string]interface{}) { r["year_built"] = 2300 }, "year_built"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			w := postJSON(router, "/api/analyze-property", req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestAnalyzeProperty_ModelUnavailable(t *testing.T) {
	predictor := &MockPredictor{}
	predictor.On("Predict", mock.Anything).Return(models.ValuationResult{}, fmt.Errorf("%w: no artifact loaded", valuation.ErrModelUnavailable))

	router := newTestRouter(predictor, &MockResolver{}, &MockFinder{}, &MockTrends{}, fixedVelocity{})
	w := postJSON(router, "/api/analyze-property", validRequest())

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "analysis failed")
}

func TestAnalyzeProperty_ComparablesDegraded(t *testing.T) {
	predictor := &MockPredictor{}
	predictor.On("Predict", mock.Anything).Return(models.ValuationResult{PredictedValue: 425000}, nil)

	finder := &MockFinder{}
	finder.On("Find", mock.Anything, 5).Return(nil, scoring.MarketSignal{}, errors.New("store offline"))

	// Snapshot supplies the market-timing signal when comparables fail
	router := newTestRouter(predictor, &MockResolver{}, finder, &MockTrends{}, fixedVelocity{count: 8, ok: true})
	w := postJSON(router, "/api/analyze-property", validRequest())

	require.Equal(t, http.StatusOK, w.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Comparables)
	assert.NotNil(t, resp.Comparables)
	assert.Equal(t, 10, resp.Analysis.ValueDrivers.MarketTiming)
}

func TestNeighborhoodTrends_Success(t *testing.T) {
	trends := &MockTrends{}
	trends.On("NeighborhoodTrends", "123 Oak Ave, Seattle, WA").Return(models.NeighborhoodTrends{
		Location:     "Seattle",
		AveragePrice: 475000,
		PriceTrend:   []models.TrendPoint{{Month: "2026-07", Price: 470000}},
		DaysOnMarket: 25,
		PricePerSqft: 285,
		MarketStatus: "seller",
		TotalSales:   42,
	}, nil)

	router := newTestRouter(&MockPredictor{}, &MockResolver{}, &MockFinder{}, trends, fixedVelocity{})
	w := postJSON(router, "/api/neighborhood-trends", map[string]interface{}{"address": "123 Oak Ave, Seattle, WA"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.NeighborhoodTrends
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Seattle", resp.Location)
	assert.Equal(t, "seller", resp.MarketStatus)
	trends.AssertExpectations(t)
}

func TestNeighborhoodTrends_MissingAddress(t *testing.T) {
	router := newTestRouter(&MockPredictor{}, &MockResolver{}, &MockFinder{}, &MockTrends{}, fixedVelocity{})
	w := postJSON(router, "/api/neighborhood-trends", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&MockPredictor{}, &MockResolver{}, &MockFinder{}, &MockTrends{}, fixedVelocity{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
