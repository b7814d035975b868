package dto

import (
	"github.com/shopspring/decimal"

	"github.com/neexbeast/flysen-catalog/internal/catalog"
)

type AirportService struct {
	Meta
	AirportID            string                          `json:"airportId,omitempty" validate:"required"`
	AirportCode          string                          `json:"airportCode,omitempty" validate:"omitempty,len=3,alpha"`
	Name                 string                          `json:"name,omitempty" validate:"required,max=200"`
	Category             string                          `json:"category,omitempty" validate:"required"`
	Description          string                          `json:"description,omitempty"`
	LocationMap          string                          `json:"locationMap,omitempty"`
	OpeningHours         map[string]catalog.OpeningHours `json:"openingHours,omitempty"`
	ContactInfo          *catalog.ContactInfo            `json:"contactInfo,omitempty"`
	Images               []string                        `json:"images,omitempty" validate:"omitempty,dive,url"`
	Logo                 string                          `json:"logo,omitempty"`
	Score                *float64                        `json:"score,omitempty"`
	QRCode               string                          `json:"qrCode,omitempty"`
	Products             []Product                       `json:"products,omitempty" validate:"omitempty,dive"`
	Terminal             string                          `json:"terminal,omitempty"`
	Gate                 string                          `json:"gate,omitempty"`
	Floor                string                          `json:"floor,omitempty"`
	Amenities            []string                        `json:"amenities,omitempty"`
	PaymentMethods       []string                        `json:"paymentMethods,omitempty"`
	WheelchairAccessible *bool                           `json:"wheelchairAccessible,omitempty"`
	AverageServiceTime   *int                            `json:"averageServiceTime,omitempty" validate:"omitempty,gte=0"`
	Rating               *float64                        `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewsCount         *int                            `json:"reviewsCount,omitempty" validate:"omitempty,gte=0"`
}

func (AirportService) RequiredOnCreate() []string {
	return []string{"AirportID", "Name", "Category"}
}

type Product struct {
	ID                string            `json:"id,omitempty"`
	Name              string            `json:"name" validate:"required,max=200"`
	Price             *decimal.Decimal  `json:"price,omitempty"`
	Currency          string            `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Image             string            `json:"image,omitempty" validate:"omitempty,url"`
	Description       string            `json:"description,omitempty"`
	InStock           bool              `json:"inStock"`
	Tags              []string          `json:"tags,omitempty"`
	EstimatedPrepTime *int              `json:"estimatedPrepTime,omitempty" validate:"omitempty,gte=0"`
	NutritionalInfo   map[string]string `json:"nutritionalInfo,omitempty"`
}

// Products are always sent whole, so every rule applies on update too.
func (Product) RequiredOnCreate() []string { return nil }

func FromProduct(p catalog.Product) Product {
	return Product{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price,
		Currency:          p.Currency,
		Image:             p.Image,
		Description:       p.Description,
		InStock:           p.InStock,
		Tags:              p.Tags,
		EstimatedPrepTime: p.EstimatedPrepTime,
		NutritionalInfo:   p.NutritionalInfo,
	}
}

func (p *Product) ToModel() catalog.Product {
	return catalog.Product{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price,
		Currency:          p.Currency,
		Image:             p.Image,
		Description:       p.Description,
		InStock:           p.InStock,
		Tags:              p.Tags,
		EstimatedPrepTime: p.EstimatedPrepTime,
		NutritionalInfo:   p.NutritionalInfo,
	}
}

func FromAirportService(s *catalog.AirportService) AirportService {
	products := make([]Product, 0, len(s.Products))
	for _, p := range s.Products {
		products = append(products, FromProduct(p))
	}
	return AirportService{
		Meta:                 fromBase(s.Base),
		AirportID:            s.AirportID,
		AirportCode:          s.AirportCode,
		Name:                 s.Name,
		Category:             string(s.Category),
		Description:          s.Description,
		LocationMap:          s.LocationMap,
		OpeningHours:         s.OpeningHours,
		ContactInfo:          s.ContactInfo,
		Images:               s.Images,
		Logo:                 s.Logo,
		Score:                s.Score,
		QRCode:               s.QRCode,
		Products:             products,
		Terminal:             s.Terminal,
		Gate:                 s.Gate,
		Floor:                s.Floor,
		Amenities:            s.Amenities,
		PaymentMethods:       s.PaymentMethods,
		WheelchairAccessible: s.WheelchairAccessible,
		AverageServiceTime:   s.AverageServiceTime,
		Rating:               s.Rating,
		ReviewsCount:         s.ReviewsCount,
	}
}

// ToModel fails on an unknown category label.
func (s *AirportService) ToModel() (*catalog.AirportService, error) {
	m := &catalog.AirportService{
		Base:                 s.toBase(),
		AirportID:            s.AirportID,
		AirportCode:          s.AirportCode,
		Name:                 s.Name,
		Description:          s.Description,
		LocationMap:          s.LocationMap,
		OpeningHours:         s.OpeningHours,
		ContactInfo:          s.ContactInfo,
		Images:               s.Images,
		Logo:                 s.Logo,
		Score:                s.Score,
		QRCode:               s.QRCode,
		Terminal:             s.Terminal,
		Gate:                 s.Gate,
		Floor:                s.Floor,
		Amenities:            s.Amenities,
		PaymentMethods:       s.PaymentMethods,
		WheelchairAccessible: s.WheelchairAccessible,
		AverageServiceTime:   s.AverageServiceTime,
		Rating:               s.Rating,
		ReviewsCount:         s.ReviewsCount,
	}
	if s.Category != "" {
		category, err := catalog.ParseServiceCategory(s.Category)
		if err != nil {
			return nil, err
		}
		m.Category = category
	}
	// An explicit empty list clears the stored products.
	if s.Products != nil {
		m.Products = make([]catalog.Product, 0, len(s.Products))
		for _, p := range s.Products {
			m.Products = append(m.Products, p.ToModel())
		}
	}
	return m, nil
}
