package api

import (
	"context"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	"github.com/neexbeast/flysen-catalog/internal/catalog"
	"github.com/neexbeast/flysen-catalog/internal/repository"
	"github.com/neexbeast/flysen-catalog/internal/service"
)

// DestinationService defines the destination operations needed by handlers.
type DestinationService interface {
	Create(ctx context.Context, d *catalog.Destination) (*catalog.Destination, error)
	Get(ctx context.Context, id string) (*catalog.Destination, error)
	Page(ctx context.Context, req repository.PageRequest) repository.PageResult[*catalog.Destination]
	ByRegion(ctx context.Context, region string) []*catalog.Destination
	Popular(ctx context.Context, limit int) []*catalog.Destination
	Search(ctx context.Context, term string) []*catalog.Destination
	Update(ctx context.Context, id string, d *catalog.Destination) (*catalog.Destination, error)
	Delete(ctx context.Context, id string) error
	Nearby(ctx context.Context, id string, radiusMeters int, placeType string) ([]service.NearbyPlace, error)
}

// EventService defines the event operations needed by handlers.
type EventService interface {
	Create(ctx context.Context, e *catalog.Event) (*catalog.Event, error)
	Get(ctx context.Context, id string) (*catalog.Event, error)
	Page(ctx context.Context, req repository.PageRequest) repository.PageResult[*catalog.Event]
	ByDestination(ctx context.Context, destinationID string) []*catalog.Event
	Upcoming(ctx context.Context, days, limit int) []*catalog.Event
	Featured(ctx context.Context, limit int) []*catalog.Event
	ByType(ctx context.Context, t catalog.EventType) []*catalog.Event
	Update(ctx context.Context, id string, e *catalog.Event) (*catalog.Event, error)
	Delete(ctx context.Context, id string) error
}

// AirportServiceService defines the airport service operations needed by handlers.
type AirportServiceService interface {
	Create(ctx context.Context, s *catalog.AirportService) (*catalog.AirportService, error)
	Get(ctx context.Context, id string) (*catalog.AirportService, error)
	Page(ctx context.Context, req repository.PageRequest) repository.PageResult[*catalog.AirportService]
	ByAirport(ctx context.Context, airportID string) []*catalog.AirportService
	ByAirportCode(ctx context.Context, code string) []*catalog.AirportService
	ByCategory(ctx context.Context, airportID string, category catalog.ServiceCategory) []*catalog.AirportService
	TopRated(ctx context.Context, airportID string, limit int) []*catalog.AirportService
	ByTerminal(ctx context.Context, airportID, terminal string) []*catalog.AirportService
	Search(ctx context.Context, airportID, term string) []*catalog.AirportService
	Update(ctx context.Context, id string, s *catalog.AirportService) (*catalog.AirportService, error)
	Delete(ctx context.Context, id string) error
	AddProduct(ctx context.Context, serviceID string, p catalog.Product) (*catalog.AirportService, error)
	UpdateProduct(ctx context.Context, serviceID, productID string, p catalog.Product) (*catalog.AirportService, error)
	RemoveProduct(ctx context.Context, serviceID, productID string) (*catalog.AirportService, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerStates reports the current state of every circuit breaker.
type BreakerStates interface {
	Snapshot() map[string]breaker.State
}
