package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposePlaceName(t *testing.T) {
	tests := []struct {
		name     string
		resp     reverseResponse
		expected string
	}{
		{
			name: "Full address",
			resp: withAddress("12", "High Street", "Northside", "", "Springfield", "", ""),
			expected: "12 High Street, Northside, Springfield",
		},
		{
			name:     "Road only",
			resp:     withAddress("", "High Street", "", "", "", "", ""),
			expected: "High Street",
		},
		{
			name:     "Suburb stands in for neighbourhood",
			resp:     withAddress("", "", "", "Westside", "", "Smalltown", ""),
			expected: "Westside, Smalltown",
		},
		{
			name:     "Duplicate component skipped",
			resp:     withAddress("", "Springfield", "Springfield", "", "Springfield", "", ""),
			expected: "Springfield",
		},
		{
			name:     "Village as city fallback",
			resp:     withAddress("", "", "", "", "", "", "Tinyville"),
			expected: "Tinyville",
		},
		{
			name:     "Nothing available",
			resp:     reverseResponse{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, composePlaceName(tt.resp))
		})
	}
}

func withAddress(house, road, neighbourhood, suburb, city, town, village string) reverseResponse {
	var r reverseResponse
	r.Address.HouseNumber = house
	r.Address.Road = road
	r.Address.Neighbourhood = neighbourhood
	r.Address.Suburb = suburb
	r.Address.City = city
	r.Address.Town = town
	r.Address.Village = village
	return r
}

func TestPlaceNameFromServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name":"somewhere","address":{"house_number":"1","road":"Main Road","city":"Springfield"}}`))
	}))
	defer server.Close()

	g := NewGeocoder(server.URL, nil)
	name := g.PlaceName(context.Background(), 51.5, -0.12)
	assert.Equal(t, "1 Main Road, Springfield", name)
}

func TestPlaceNameFallsBackToCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := NewGeocoder(server.URL, nil)
	name := g.PlaceName(context.Background(), 51.5, -0.12)
	assert.Equal(t, "51.500000, -0.120000", name)
}

func TestPlaceNameWithoutGeocoderConfigured(t *testing.T) {
	g := NewGeocoder("", nil)
	name := g.PlaceName(context.Background(), 1.25, 103.8)
	assert.Equal(t, "1.250000, 103.800000", name)
}
