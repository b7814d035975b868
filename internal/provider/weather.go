package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	owmDefaultURL  = "https://api.openweathermap.org/data/2.5"
	weatherTimeout = 10 * time.Second
)

// Conditions is a current weather observation.
type Conditions struct {
	Temperature float64
	Humidity    int
	Condition   string
	Description string
	ObservedAt  time.Time
}

// WeatherClient fetches current conditions from OpenWeatherMap.
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewWeatherClient constructs a WeatherClient with the given API key.
func NewWeatherClient(apiKey string) *WeatherClient {
	return NewWeatherClientWithURL(owmDefaultURL, apiKey)
}

// NewWeatherClientWithURL constructs a WeatherClient pointing at a custom base URL (for tests).
func NewWeatherClientWithURL(baseURL, apiKey string) *WeatherClient {
	if baseURL == "" {
		baseURL = owmDefaultURL
	}
	return &WeatherClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient(weatherTimeout)}
}

type owmResponse struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// CurrentConditions retrieves the weather at the given coordinates.
func (c *WeatherClient) CurrentConditions(ctx context.Context, lat, lon float64) (*Conditions, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	var raw owmResponse
	if err := doGet(ctx, c.client, c.baseURL+"/weather", query, &raw); err != nil {
		return nil, fmt.Errorf("openweathermap conditions at %.4f,%.4f: %w", lat, lon, err)
	}

	cond := &Conditions{
		Temperature: raw.Main.Temp,
		Humidity:    raw.Main.Humidity,
		ObservedAt:  time.Now().UTC(),
	}
	if raw.Dt > 0 {
		cond.ObservedAt = time.Unix(raw.Dt, 0).UTC()
	}
	if len(raw.Weather) > 0 {
		cond.Condition = raw.Weather[0].Main
		cond.Description = raw.Weather[0].Description
	}
	return cond, nil
}
