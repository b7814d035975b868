package catalog

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Event is a dated happening at a destination.
type Event struct {
	Base
	Name              string           `json:"name,omitempty"`
	Type              EventType        `json:"type,omitempty"`
	DestinationID     string           `json:"destinationId,omitempty"`
	DestinationName   string           `json:"destinationName,omitempty"`
	Date              Timestamp        `json:"date"`
	EndDate           Timestamp        `json:"endDate"`
	Venue             string           `json:"venue,omitempty"`
	Description       string           `json:"description,omitempty"`
	Images            []string         `json:"images"`
	TicketPrice       *decimal.Decimal `json:"ticketPrice,omitempty"`
	Capacity          *int             `json:"capacity,omitempty"`
	RemainingCapacity *int             `json:"remainingCapacity,omitempty"`
	Featured          *bool            `json:"featured,omitempty"`
	Latitude          *float64         `json:"latitude,omitempty"`
	Longitude         *float64         `json:"longitude,omitempty"`
	Address           string           `json:"address,omitempty"`
	Organizer         *OrganizerInfo   `json:"organizer,omitempty"`
	Stats             *EventStats      `json:"stats,omitempty"`
	Status            EventStatus      `json:"status,omitempty"`
}

type OrganizerInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

type EventStats struct {
	TotalBookings      *int     `json:"totalBookings,omitempty"`
	TotalViews         *int     `json:"totalViews,omitempty"`
	AverageRating      *float64 `json:"averageRating,omitempty"`
	TotalReviews       *int     `json:"totalReviews,omitempty"`
	ExpressOffersCount *int     `json:"expressOffersCount,omitempty"`
}

// ZeroEventStats returns stats with every counter set to zero.
func ZeroEventStats() *EventStats {
	return &EventStats{
		TotalBookings:      lo.ToPtr(0),
		TotalViews:         lo.ToPtr(0),
		AverageRating:      lo.ToPtr(0.0),
		TotalReviews:       lo.ToPtr(0),
		ExpressOffersCount: lo.ToPtr(0),
	}
}

func (e *Event) SearchFields() []string {
	return []string{e.Name, e.Description, string(e.Type)}
}
