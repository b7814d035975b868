package catalog

import "github.com/samber/lo"

// Destination is a travel destination.
type Destination struct {
	Base
	Name                string            `json:"name,omitempty"`
	Region              string            `json:"region,omitempty"`
	NearestAirportID    string            `json:"nearestAirportId,omitempty"`
	NearestAirportCode  string            `json:"nearestAirportCode,omitempty"`
	Description         string            `json:"description,omitempty"`
	Highlights          []string          `json:"highlights"`
	Images              []string          `json:"images"`
	Videos              []string          `json:"videos"`
	VirtualTourURL      string            `json:"virtualTourUrl,omitempty"`
	BestSeason          string            `json:"bestSeason,omitempty"`
	AverageStayDuration *int              `json:"averageStayDuration,omitempty"`
	PopularityScore     *float64          `json:"popularityScore,omitempty"`
	Latitude            *float64          `json:"latitude,omitempty"`
	Longitude           *float64          `json:"longitude,omitempty"`
	CurrentWeather      *WeatherInfo      `json:"currentWeather,omitempty"`
	Stats               *DestinationStats `json:"stats,omitempty"`
}

// WeatherInfo is a point-in-time weather observation.
type WeatherInfo struct {
	Temperature *float64  `json:"temperature,omitempty"`
	Condition   string    `json:"condition,omitempty"`
	Humidity    *int      `json:"humidity,omitempty"`
	Description string    `json:"description,omitempty"`
	LastUpdated Timestamp `json:"lastUpdated"`
}

type DestinationStats struct {
	TotalAttractions    *int     `json:"totalAttractions,omitempty"`
	TotalAccommodations *int     `json:"totalAccommodations,omitempty"`
	TotalActivities     *int     `json:"totalActivities,omitempty"`
	TotalEvents         *int     `json:"totalEvents,omitempty"`
	AverageRating       *float64 `json:"averageRating,omitempty"`
	TotalReviews        *int     `json:"totalReviews,omitempty"`
	MonthlyVisitors     *int     `json:"monthlyVisitors,omitempty"`
}

// ZeroDestinationStats returns stats with every counter set to zero.
func ZeroDestinationStats() *DestinationStats {
	return &DestinationStats{
		TotalAttractions:    lo.ToPtr(0),
		TotalAccommodations: lo.ToPtr(0),
		TotalActivities:     lo.ToPtr(0),
		TotalEvents:         lo.ToPtr(0),
		AverageRating:       lo.ToPtr(0.0),
		TotalReviews:        lo.ToPtr(0),
		MonthlyVisitors:     lo.ToPtr(0),
	}
}

// HasCoordinates reports whether both latitude and longitude are set.
func (d *Destination) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}

func (d *Destination) SearchFields() []string {
	return []string{d.Name, d.Description}
}
