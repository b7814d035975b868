package dto

import "github.com/neexbeast/flysen-catalog/internal/catalog"

type Destination struct {
	Meta
	Name                string                    `json:"name,omitempty" validate:"required,max=200"`
	Region              string                    `json:"region,omitempty" validate:"max=100"`
	NearestAirportID    string                    `json:"nearestAirportId,omitempty"`
	NearestAirportCode  string                    `json:"nearestAirportCode,omitempty" validate:"omitempty,len=3,alpha"`
	Description         string                    `json:"description,omitempty"`
	Highlights          []string                  `json:"highlights,omitempty"`
	Images              []string                  `json:"images,omitempty" validate:"omitempty,dive,url"`
	Videos              []string                  `json:"videos,omitempty" validate:"omitempty,dive,url"`
	VirtualTourURL      string                    `json:"virtualTourUrl,omitempty" validate:"omitempty,url"`
	BestSeason          string                    `json:"bestSeason,omitempty"`
	AverageStayDuration *int                      `json:"averageStayDuration,omitempty" validate:"omitempty,gte=0"`
	PopularityScore     *float64                  `json:"popularityScore,omitempty" validate:"omitempty,gte=0"`
	Latitude            *float64                  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude           *float64                  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	CurrentWeather      *WeatherInfo              `json:"currentWeather,omitempty"`
	Stats               *catalog.DestinationStats `json:"stats,omitempty"`
}

func (Destination) RequiredOnCreate() []string { return []string{"Name"} }

func FromDestination(d *catalog.Destination) Destination {
	return Destination{
		Meta:                fromBase(d.Base),
		Name:                d.Name,
		Region:              d.Region,
		NearestAirportID:    d.NearestAirportID,
		NearestAirportCode:  d.NearestAirportCode,
		Description:         d.Description,
		Highlights:          d.Highlights,
		Images:              d.Images,
		Videos:              d.Videos,
		VirtualTourURL:      d.VirtualTourURL,
		BestSeason:          d.BestSeason,
		AverageStayDuration: d.AverageStayDuration,
		PopularityScore:     d.PopularityScore,
		Latitude:            d.Latitude,
		Longitude:           d.Longitude,
		CurrentWeather:      fromWeather(d.CurrentWeather),
		Stats:               d.Stats,
	}
}

func (d *Destination) ToModel() (*catalog.Destination, error) {
	weather, err := d.CurrentWeather.toModel()
	if err != nil {
		return nil, err
	}
	return &catalog.Destination{
		Base:                d.toBase(),
		Name:                d.Name,
		Region:              d.Region,
		NearestAirportID:    d.NearestAirportID,
		NearestAirportCode:  d.NearestAirportCode,
		Description:         d.Description,
		Highlights:          d.Highlights,
		Images:              d.Images,
		Videos:              d.Videos,
		VirtualTourURL:      d.VirtualTourURL,
		BestSeason:          d.BestSeason,
		AverageStayDuration: d.AverageStayDuration,
		PopularityScore:     d.PopularityScore,
		Latitude:            d.Latitude,
		Longitude:           d.Longitude,
		CurrentWeather:      weather,
		Stats:               d.Stats,
	}, nil
}
