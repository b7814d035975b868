package catalog

import "github.com/shopspring/decimal"

// AirportService is a shop, lounge or other facility inside an airport.
type AirportService struct {
	Base
	AirportID            string                  `json:"airportId,omitempty"`
	AirportCode          string                  `json:"airportCode,omitempty"`
	Name                 string                  `json:"name,omitempty"`
	Category             ServiceCategory         `json:"category,omitempty"`
	Description          string                  `json:"description,omitempty"`
	LocationMap          string                  `json:"locationMap,omitempty"`
	OpeningHours         map[string]OpeningHours `json:"openingHours,omitempty"`
	ContactInfo          *ContactInfo            `json:"contactInfo,omitempty"`
	Images               []string                `json:"images"`
	Logo                 string                  `json:"logo,omitempty"`
	Score                *float64                `json:"score,omitempty"`
	QRCode               string                  `json:"qrCode,omitempty"`
	Products             []Product               `json:"products"`
	Terminal             string                  `json:"terminal,omitempty"`
	Gate                 string                  `json:"gate,omitempty"`
	Floor                string                  `json:"floor,omitempty"`
	Amenities            []string                `json:"amenities"`
	PaymentMethods       []string                `json:"paymentMethods"`
	WheelchairAccessible *bool                   `json:"wheelchairAccessible,omitempty"`
	// AverageServiceTime is in minutes.
	AverageServiceTime *int     `json:"averageServiceTime,omitempty"`
	Rating             *float64 `json:"rating,omitempty"`
	ReviewsCount       *int     `json:"reviewsCount,omitempty"`
}

// OpeningHours holds "HH:MM" times for one weekday.
type OpeningHours struct {
	OpenTime    string `json:"openTime,omitempty"`
	CloseTime   string `json:"closeTime,omitempty"`
	Closed      bool   `json:"closed"`
	Open24Hours bool   `json:"open24Hours"`
}

type ContactInfo struct {
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Website          string `json:"website,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
}

// Product is an item sold by an airport service.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	Image       string           `json:"image,omitempty"`
	Description string           `json:"description,omitempty"`
	InStock     bool             `json:"inStock"`
	Tags        []string         `json:"tags"`
	// EstimatedPrepTime is in minutes.
	EstimatedPrepTime *int              `json:"estimatedPrepTime,omitempty"`
	NutritionalInfo   map[string]string `json:"nutritionalInfo,omitempty"`
}

func (s *AirportService) SearchFields() []string {
	return []string{s.Name, s.Description, string(s.Category)}
}
