package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AcquireTimeout bounds location acquisition and reverse geocoding. Lookups
// that run longer degrade to "unavailable" rather than holding up a clock
// action.
const AcquireTimeout = 15 * time.Second

// LocationProvider yields the device position for a clock action. Returning
// (nil, nil) means the device could not produce a fix inside the time box.
type LocationProvider interface {
	Acquire(ctx context.Context) (*Coordinates, error)
}

// Geocoder resolves coordinates to a human-readable place name. Results are
// display/audit only and never feed admission decisions.
type Geocoder struct {
	BaseURL string
	Client  *http.Client
	Logger  *logrus.Logger
}

func NewGeocoder(baseURL string, logger *logrus.Logger) *Geocoder {
	return &Geocoder{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: AcquireTimeout},
		Logger:  logger,
	}
}

// reverseResponse is the subset of the Nominatim reverse endpoint we read.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber   string `json:"house_number"`
		Road          string `json:"road"`
		Neighbourhood string `json:"neighbourhood"`
		Suburb        string `json:"suburb"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
	} `json:"address"`
}

// PlaceName reverse-geocodes the point, preferring the most specific address
// components and skipping duplicates. Falls back to raw coordinates. It never
// returns an error; failures are logged and swallowed.
func (g *Geocoder) PlaceName(ctx context.Context, lat, lon float64) string {
	raw := fmt.Sprintf("%.6f, %.6f", lat, lon)

	if g == nil || g.BaseURL == "" {
		return raw
	}

	ctx, cancel := context.WithTimeout(ctx, AcquireTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%s&lon=%s",
		strings.TrimRight(g.BaseURL, "/"),
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lon)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return raw
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		if g.Logger != nil {
			g.Logger.WithFields(logrus.Fields{
				"module":   "geo",
				"funcName": "PlaceName",
			}).Warn(err.Error())
		}
		return raw
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return raw
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return raw
	}

	if name := composePlaceName(parsed); name != "" {
		return name
	}
	if parsed.DisplayName != "" {
		return parsed.DisplayName
	}
	return raw
}

// composePlaceName builds "12 High Street, Northside, Springfield" style
// names from the most specific components available.
func composePlaceName(r reverseResponse) string {
	var parts []string

	street := strings.TrimSpace(strings.TrimSpace(r.Address.HouseNumber) + " " + r.Address.Road)
	if street != "" {
		parts = append(parts, street)
	}

	neighbourhood := r.Address.Neighbourhood
	if neighbourhood == "" {
		neighbourhood = r.Address.Suburb
	}
	if neighbourhood != "" && !containsFold(parts, neighbourhood) {
		parts = append(parts, neighbourhood)
	}

	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}
	if city != "" && !containsFold(parts, city) {
		parts = append(parts, city)
	}

	return strings.Join(parts, ", ")
}

func containsFold(parts []string, s string) bool {
	for _, p := range parts {
		if strings.EqualFold(p, s) {
			return true
		}
	}
	return false
}
