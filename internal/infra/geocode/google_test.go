package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{apiKey: "test-key", baseURL: srv.URL, httpClient: srv.Client()}
}

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "4750 Commerce Parkway", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "4750 Commerce Pkwy, Chattanooga, TN 37416, USA",
				"address_components": [
					{"long_name": "Chattanooga", "short_name": "Chattanooga", "types": ["locality", "political"]},
					{"long_name": "Hamilton County", "short_name": "Hamilton County", "types": ["administrative_area_level_2", "political"]},
					{"long_name": "Tennessee", "short_name": "TN", "types": ["administrative_area_level_1", "political"]}
				],
				"geometry": {"location": {"lat": 35.0456, "lng": -85.3097}}
			}]
		}`))
	}))
	defer srv.Close()

	loc, err := testClient(srv).Geocode(context.Background(), "4750 Commerce Parkway")
	require.NoError(t, err)
	assert.Equal(t, 35.0456, loc.Lat)
	assert.Equal(t, -85.3097, loc.Lng)
	assert.Equal(t, "Chattanooga", loc.City)
	assert.Equal(t, "Hamilton County", loc.County)
	assert.Equal(t, "TN", loc.State)
	assert.Equal(t, "4750 Commerce Pkwy, Chattanooga, TN 37416, USA", loc.Formatted)
}

func TestGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).Geocode(context.Background(), "nowhere at all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZERO_RESULTS")
}

func TestGeocodeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv).Geocode(context.Background(), "1 Main St")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestAerialImage(t *testing.T) {
	imageBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/staticmap", r.URL.Path)
		assert.Equal(t, "satellite", r.URL.Query().Get("maptype"))
		assert.Equal(t, "18", r.URL.Query().Get("zoom"))
		w.Write(imageBytes)
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "aerial.jpg")
	require.NoError(t, testClient(srv).AerialImage(context.Background(), 35.0456, -85.3097, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, data)
}

func TestStreetViewImageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/streetview", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "street.jpg")
	err := testClient(srv).StreetViewImage(context.Background(), "1 Main St", outPath)
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no partial file is left behind")
}
