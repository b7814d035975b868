package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// DefaultRequestsPerMinute is the per-IP rate limit used when none is configured.
const DefaultRequestsPerMinute = 60

// NewRouter builds and returns the Chi router with all routes configured.
// The health endpoint is unauthenticated; all catalog routes require bearer auth.
// Rate limiting is applied globally per client IP.
func NewRouter(handlers *Handlers, token string, requestsPerMinute int, health http.HandlerFunc, log *slog.Logger) *chi.Mux {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(token, log))
			mountCatalog(r, handlers)
		})
	})

	return r
}

func mountCatalog(r chi.Router, handlers *Handlers) {
	r.Route("/destinations", func(r chi.Router) {
		r.Post("/", handlers.CreateDestination)
		r.Get("/", handlers.ListDestinations)
		r.Get("/region/{region}", handlers.DestinationsByRegion)
		r.Get("/popular", handlers.PopularDestinations)
		r.Get("/search", handlers.SearchDestinations)
		r.Get("/{id}", handlers.GetDestination)
		r.Get("/{id}/nearby", handlers.NearbyPlaces)
		r.Put("/{id}", handlers.UpdateDestination)
		r.Delete("/{id}", handlers.DeleteDestination)
	})

	r.Route("/events", func(r chi.Router) {
		r.Post("/", handlers.CreateEvent)
		r.Get("/", handlers.ListEvents)
		r.Get("/destination/{destinationId}", handlers.EventsByDestination)
		r.Get("/upcoming", handlers.UpcomingEvents)
		r.Get("/featured", handlers.FeaturedEvents)
		r.Get("/type/{type}", handlers.EventsByType)
		r.Get("/{id}", handlers.GetEvent)
		r.Put("/{id}", handlers.UpdateEvent)
		r.Delete("/{id}", handlers.DeleteEvent)
	})

	r.Route("/airport-services", func(r chi.Router) {
		r.Post("/", handlers.CreateAirportService)
		r.Get("/", handlers.ListAirportServices)
		r.Get("/airport-code/{airportCode}", handlers.ServicesByAirportCode)
		r.Route("/airport/{airportId}", func(r chi.Router) {
			r.Get("/", handlers.ServicesByAirport)
			r.Get("/category/{category}", handlers.ServicesByCategory)
			r.Get("/top-rated", handlers.TopRatedServices)
			r.Get("/terminal/{terminal}", handlers.ServicesByTerminal)
			r.Get("/search", handlers.SearchServices)
		})
		r.Get("/{id}", handlers.GetAirportService)
		r.Put("/{id}", handlers.UpdateAirportService)
		r.Delete("/{id}", handlers.DeleteAirportService)
		r.Post("/{id}/products", handlers.AddProduct)
		r.Put("/{id}/products/{productId}", handlers.UpdateProduct)
		r.Delete("/{id}/products/{productId}", handlers.RemoveProduct)
	})
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
