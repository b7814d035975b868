package repository

import (
	"log/slog"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	"github.com/neexbeast/flysen-catalog/internal/catalog"
	"github.com/neexbeast/flysen-catalog/internal/storage"
)

const (
	DestinationsCollection    = "destinations"
	EventsCollection          = "events"
	AirportServicesCollection = "airport_services"
)

type (
	Destinations    = Repository[catalog.Destination, *catalog.Destination]
	Events          = Repository[catalog.Event, *catalog.Event]
	AirportServices = Repository[catalog.AirportService, *catalog.AirportService]
	Products        = SubItems[catalog.AirportService, *catalog.AirportService, catalog.Product]
)

func NewDestinations(store storage.Store, breakers *breaker.Registry, log *slog.Logger) *Destinations {
	return New[catalog.Destination](DestinationsCollection, store, breakers, log)
}

func NewEvents(store storage.Store, breakers *breaker.Registry, log *slog.Logger) *Events {
	return New[catalog.Event](EventsCollection, store, breakers, log)
}

func NewAirportServices(store storage.Store, breakers *breaker.Registry, log *slog.Logger) *AirportServices {
	return New[catalog.AirportService](AirportServicesCollection, store, breakers, log)
}

// NewProducts edits the products list of airport services.
func NewProducts(services *AirportServices) *Products {
	return NewSubItems(services, "products",
		func(s *catalog.AirportService) *[]catalog.Product { return &s.Products },
		func(p *catalog.Product) *string { return &p.ID })
}
