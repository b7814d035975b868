package dto

import (
	"github.com/shopspring/decimal"

	"github.com/neexbeast/flysen-catalog/internal/catalog"
)

type Event struct {
	Meta
	Name              string                 `json:"name,omitempty" validate:"required,max=200"`
	Type              string                 `json:"type,omitempty" validate:"required"`
	DestinationID     string                 `json:"destinationId,omitempty"`
	DestinationName   string                 `json:"destinationName,omitempty"`
	Date              string                 `json:"date,omitempty" validate:"required"`
	EndDate           string                 `json:"endDate,omitempty"`
	Venue             string                 `json:"venue,omitempty"`
	Description       string                 `json:"description,omitempty"`
	Images            []string               `json:"images,omitempty" validate:"omitempty,dive,url"`
	TicketPrice       *decimal.Decimal       `json:"ticketPrice,omitempty"`
	Capacity          *int                   `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	RemainingCapacity *int                   `json:"remainingCapacity,omitempty" validate:"omitempty,gte=0"`
	Featured          *bool                  `json:"featured,omitempty"`
	Latitude          *float64               `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude         *float64               `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Address           string                 `json:"address,omitempty"`
	Organizer         *catalog.OrganizerInfo `json:"organizer,omitempty"`
	Stats             *catalog.EventStats    `json:"stats,omitempty"`
	Status            string                 `json:"status,omitempty"`
}

func (Event) RequiredOnCreate() []string { return []string{"Name", "Type", "Date"} }

func FromEvent(e *catalog.Event) Event {
	return Event{
		Meta:              fromBase(e.Base),
		Name:              e.Name,
		Type:              string(e.Type),
		DestinationID:     e.DestinationID,
		DestinationName:   e.DestinationName,
		Date:              formatTime(e.Date),
		EndDate:           formatTime(e.EndDate),
		Venue:             e.Venue,
		Description:       e.Description,
		Images:            e.Images,
		TicketPrice:       e.TicketPrice,
		Capacity:          e.Capacity,
		RemainingCapacity: e.RemainingCapacity,
		Featured:          e.Featured,
		Latitude:          e.Latitude,
		Longitude:         e.Longitude,
		Address:           e.Address,
		Organizer:         e.Organizer,
		Stats:             e.Stats,
		Status:            string(e.Status),
	}
}

// ToModel fails on malformed dates and unknown type or status labels.
// Empty labels stay empty.
func (e *Event) ToModel() (*catalog.Event, error) {
	m := &catalog.Event{
		Base:              e.toBase(),
		Name:              e.Name,
		DestinationID:     e.DestinationID,
		DestinationName:   e.DestinationName,
		Venue:             e.Venue,
		Description:       e.Description,
		Images:            e.Images,
		TicketPrice:       e.TicketPrice,
		Capacity:          e.Capacity,
		RemainingCapacity: e.RemainingCapacity,
		Featured:          e.Featured,
		Latitude:          e.Latitude,
		Longitude:         e.Longitude,
		Address:           e.Address,
		Organizer:         e.Organizer,
		Stats:             e.Stats,
	}

	var err error
	if e.Type != "" {
		if m.Type, err = catalog.ParseEventType(e.Type); err != nil {
			return nil, err
		}
	}
	if e.Status != "" {
		if m.Status, err = catalog.ParseEventStatus(e.Status); err != nil {
			return nil, err
		}
	}
	if m.Date, err = parseTime("date", e.Date); err != nil {
		return nil, err
	}
	if m.EndDate, err = parseTime("endDate", e.EndDate); err != nil {
		return nil, err
	}
	return m, nil
}
