package listing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html>
<head><title>1015 Pine St, Seattle, WA 98101 | Listings</title></head>
<body>
<h1 class="address">1015 Pine St, Seattle, WA 98101</h1>
<span class="price">$450,000</span>
<ul>
  <li>3 bd</li>
  <li>2.5 ba</li>
  <li>1,850 sqft</li>
</ul>
<p>Charming condo built in 2015 near downtown.</p>
</body>
</html>`

func TestResolve_ExtractsFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage))
	}))
	defer server.Close()

	resolver := NewResolver(logrus.New())
	record, err := resolver.Resolve(server.URL)
	require.NoError(t, err)

	assert.Equal(t, "1015 Pine St, Seattle, WA 98101", record.Address)
	assert.Equal(t, 450000, record.Price)
	assert.Equal(t, 1850, record.Sqft)
	assert.Equal(t, 3, record.Bedrooms)
	assert.Equal(t, 2.5, record.Bathrooms)
	assert.Equal(t, 2015, record.YearBuilt)
	assert.Equal(t, "Condo", record.PropertyType)
}

func TestResolve_DefaultsWhenFieldsMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing to see here</body></html>`))
	}))
	defer server.Close()

	resolver := NewResolver(logrus.New())
	record, err := resolver.Resolve(server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Unknown Address", record.Address)
	assert.Equal(t, defaultPrice, record.Price)
	assert.Equal(t, defaultSqft, record.Sqft)
	assert.Equal(t, defaultBedrooms, record.Bedrooms)
	assert.Equal(t, defaultBathrooms, record.Bathrooms)
	assert.Equal(t, defaultYearBuilt, record.YearBuilt)
	assert.Equal(t, "House", record.PropertyType)
}

func TestResolve_TitleFallbackForAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>22 Elm St, Portland | For Sale</title></head><body></body></html>`))
	}))
	defer server.Close()

	resolver := NewResolver(logrus.New())
	record, err := resolver.Resolve(server.URL)
	require.NoError(t, err)
	assert.Equal(t, "22 Elm St, Portland", record.Address)
}

func TestResolve_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	resolver := NewResolver(logrus.New())
	_, err := resolver.Resolve(server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestResolve_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	resolver := NewResolver(logrus.New())
	_, err := resolver.Resolve(server.URL)
	assert.Error(t, err)
}

func TestExtractPropertyType(t *testing.T) {
	tests := []struct {
		page string
		want string
	}{
		{"a lovely townhome in the city", "Townhouse"},
		{"spacious Townhouse with garage", "Townhouse"},
		{"modern condo downtown", "Condo"},
		{"classic family home", "House"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractPropertyType(tt.page), tt.page)
	}
}
