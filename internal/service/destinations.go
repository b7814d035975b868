package service

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/flysen-catalog/internal/breaker"
	"github.com/neexbeast/flysen-catalog/internal/catalog"
	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
	"github.com/neexbeast/flysen-catalog/internal/provider"
	"github.com/neexbeast/flysen-catalog/internal/repository"
)

const (
	DefaultNearbyRadius = 5000
	// nearbyDetailsLimit is how many of the closest places get a details lookup.
	nearbyDetailsLimit = 5
)

// PlacesFinder is the interface satisfied by provider.PlacesClient.
type PlacesFinder interface {
	NearbySearch(ctx context.Context, lat, lon float64, radiusMeters int, placeType string) ([]provider.Place, error)
	PlaceDetails(ctx context.Context, placeID string) (*provider.PlaceDetails, error)
}

// NearbyPlace is a place around a destination, with details when the lookup
// succeeded.
type NearbyPlace struct {
	provider.Place
	Details *provider.PlaceDetails `json:"details,omitempty"`
}

// Destinations manages destinations and their live weather.
type Destinations struct {
	repo     *repository.Destinations
	weather  *WeatherEnricher
	places   PlacesFinder
	breakers *breaker.Registry
	log      *slog.Logger
}

// NewDestinations constructs a Destinations service. places may be nil, in
// which case Nearby always returns an empty list.
func NewDestinations(repo *repository.Destinations, weather *WeatherEnricher, places PlacesFinder, breakers *breaker.Registry, log *slog.Logger) *Destinations {
	if log == nil {
		log = slog.Default()
	}
	return &Destinations{repo: repo, weather: weather, places: places, breakers: breakers, log: log}
}

// Create stores d with zeroed stats when none are given and current weather
// when it has coordinates.
func (s *Destinations) Create(ctx context.Context, d *catalog.Destination) (*catalog.Destination, error) {
	if d.Stats == nil {
		d.Stats = catalog.ZeroDestinationStats()
	}
	s.enrich(ctx, d)

	if _, err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Get returns the destination with weather fetched for this read. The
// fetched weather is not persisted.
func (s *Destinations) Get(ctx context.Context, id string) (*catalog.Destination, error) {
	d, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return nil, notFound("destination", id)
	}
	s.enrich(ctx, d)
	return d, nil
}

func (s *Destinations) List(ctx context.Context, limit int, cursor string) []*catalog.Destination {
	return s.repo.List(ctx, limit, cursor)
}

func (s *Destinations) Page(ctx context.Context, req repository.PageRequest) repository.PageResult[*catalog.Destination] {
	return s.repo.Page(ctx, req)
}

func (s *Destinations) ByRegion(ctx context.Context, region string) []*catalog.Destination {
	return s.repo.ListByField(ctx, "region", region)
}

// Popular returns destinations by popularity score, highest first. Those
// without a score are left out.
func (s *Destinations) Popular(ctx context.Context, limit int) []*catalog.Destination {
	return s.repo.ListTopRated(ctx, "", nil, limit, func(d *catalog.Destination) *float64 {
		return d.PopularityScore
	})
}

func (s *Destinations) Search(ctx context.Context, term string) []*catalog.Destination {
	return s.repo.Search(ctx, "", nil, term)
}

// Update merges d into the stored destination and returns the result.
func (s *Destinations) Update(ctx context.Context, id string, d *catalog.Destination) (*catalog.Destination, error) {
	if err := s.repo.Update(ctx, id, d); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Destinations) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Nearby lists places of placeType around the destination. Details of the
// closest places are fetched in parallel; a failed lookup leaves Details nil.
// Provider failures degrade to an empty list.
func (s *Destinations) Nearby(ctx context.Context, id string, radiusMeters int, placeType string) ([]NearbyPlace, error) {
	d, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return nil, notFound("destination", id)
	}
	if !d.HasCoordinates() {
		return nil, ierr.NewError("destination has no coordinates").
			WithHintf("destination %q has no coordinates", id).
			Mark(ierr.ErrValidation)
	}
	if s.places == nil {
		return []NearbyPlace{}, nil
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultNearbyRadius
	}

	lat, lon := *d.Latitude, *d.Longitude
	places, err := breaker.Execute(ctx, s.breakers, breaker.PlacesAPI,
		func(ctx context.Context) ([]provider.Place, error) {
			return s.places.NearbySearch(ctx, lat, lon, radiusMeters, placeType)
		},
		breaker.ReadFallback[[]provider.Place](s.log, breaker.PlacesAPI, "nearby_search"))
	if err != nil {
		s.log.Warn("nearby search failed", "destination_id", id, "err", err)
		return []NearbyPlace{}, nil
	}

	out := lo.Map(places, func(p provider.Place, _ int) NearbyPlace { return NearbyPlace{Place: p} })
	s.fetchDetails(ctx, out[:min(len(out), nearbyDetailsLimit)])
	return out, nil
}

// fetchDetails fills in details for every place. All failures are non-fatal.
func (s *Destinations) fetchDetails(ctx context.Context, places []NearbyPlace) {
	g, gCtx := errgroup.WithContext(ctx)
	for i := range places {
		p := &places[i]
		g.Go(func() error {
			details, err := breaker.Execute(gCtx, s.breakers, breaker.PlacesAPI,
				func(ctx context.Context) (*provider.PlaceDetails, error) {
					return s.places.PlaceDetails(ctx, p.PlaceID)
				},
				breaker.ReadFallback[*provider.PlaceDetails](s.log, breaker.PlacesAPI, "place_details"))
			if err != nil {
				s.log.Warn("place details failed", "place_id", p.PlaceID, "err", err)
				return nil
			}
			p.Details = details
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Destinations) enrich(ctx context.Context, d *catalog.Destination) {
	if s.weather == nil || !d.HasCoordinates() {
		return
	}
	d.CurrentWeather = s.weather.Enrich(ctx, *d.Latitude, *d.Longitude, d.CurrentWeather)
}
