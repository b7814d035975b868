package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

const (
	placesDefaultURL = "https://maps.googleapis.com/maps/api/place"
	placesTimeout    = 5 * time.Second
	// placesQPS is the request budget shared by all calls of one client.
	placesQPS = 3
)

// Place is a nearby search result.
type Place struct {
	PlaceID          string   `json:"placeId"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity,omitempty"`
	Types            []string `json:"types,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"userRatingsTotal,omitempty"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
}

// PlaceDetails is the detailed record of one place.
type PlaceDetails struct {
	PlaceID          string   `json:"placeId"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formattedAddress,omitempty"`
	PhoneNumber      string   `json:"phoneNumber,omitempty"`
	Website          string   `json:"website,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	Types            []string `json:"types,omitempty"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
}

// PlacesClient queries the Google Places web service.
type PlacesClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewPlacesClient constructs a PlacesClient with the given API key.
func NewPlacesClient(apiKey string) *PlacesClient {
	return NewPlacesClientWithURL(placesDefaultURL, apiKey)
}

// NewPlacesClientWithURL constructs a PlacesClient pointing at a custom base URL (for tests).
func NewPlacesClientWithURL(baseURL, apiKey string) *PlacesClient {
	if baseURL == "" {
		baseURL = placesDefaultURL
	}
	return &PlacesClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  newHTTPClient(placesTimeout),
		limiter: rate.NewLimiter(rate.Limit(placesQPS), 1),
	}
}

type placesGeometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type placesNearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID          string         `json:"place_id"`
		Name             string         `json:"name"`
		Vicinity         string         `json:"vicinity"`
		Types            []string       `json:"types"`
		Rating           float64        `json:"rating"`
		UserRatingsTotal int            `json:"user_ratings_total"`
		Geometry         placesGeometry `json:"geometry"`
	} `json:"results"`
}

type placesDetailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		PlaceID                  string         `json:"place_id"`
		Name                     string         `json:"name"`
		FormattedAddress         string         `json:"formatted_address"`
		InternationalPhoneNumber string         `json:"international_phone_number"`
		Website                  string         `json:"website"`
		Rating                   float64        `json:"rating"`
		Types                    []string       `json:"types"`
		Geometry                 placesGeometry `json:"geometry"`
	} `json:"result"`
}

// NearbySearch lists places of placeType within radiusMeters of the point.
// An empty placeType matches every type.
func (c *PlacesClient) NearbySearch(ctx context.Context, lat, lon float64, radiusMeters int, placeType string) ([]Place, error) {
	query := url.Values{}
	query.Set("location", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("radius", strconv.Itoa(radiusMeters))
	if placeType != "" {
		query.Set("type", placeType)
	}
	query.Set("key", c.apiKey)

	var raw placesNearbyResponse
	if err := c.get(ctx, "/nearbysearch/json", query, &raw); err != nil {
		return nil, fmt.Errorf("places nearby search: %w", err)
	}
	if err := checkStatus(raw.Status, raw.ErrorMessage); err != nil {
		return nil, fmt.Errorf("places nearby search: %w", err)
	}

	places := make([]Place, 0, len(raw.Results))
	for _, r := range raw.Results {
		places = append(places, Place{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			Vicinity:         r.Vicinity,
			Types:            r.Types,
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
			Latitude:         r.Geometry.Location.Lat,
			Longitude:        r.Geometry.Location.Lng,
		})
	}
	return places, nil
}

// PlaceDetails fetches the details of one place.
func (c *PlacesClient) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	query := url.Values{}
	query.Set("place_id", placeID)
	query.Set("key", c.apiKey)

	var raw placesDetailsResponse
	if err := c.get(ctx, "/details/json", query, &raw); err != nil {
		return nil, fmt.Errorf("places details for %s: %w", placeID, err)
	}
	if err := checkStatus(raw.Status, raw.ErrorMessage); err != nil {
		return nil, fmt.Errorf("places details for %s: %w", placeID, err)
	}

	r := raw.Result
	return &PlaceDetails{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		PhoneNumber:      r.InternationalPhoneNumber,
		Website:          r.Website,
		Rating:           r.Rating,
		Types:            r.Types,
		Latitude:         r.Geometry.Location.Lat,
		Longitude:        r.Geometry.Location.Lng,
	}, nil
}

func (c *PlacesClient) get(ctx context.Context, path string, query url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for places rate limit: %w", err)
	}
	return doGet(ctx, c.client, c.baseURL+path, query, dst)
}

func checkStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	default:
		return ierr.NewError("places api status "+status).
			WithMessage(message).
			Mark(ierr.ErrHTTPClient)
	}
}
