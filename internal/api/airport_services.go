package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/flysen-catalog/internal/api/dto"
	"github.com/neexbeast/flysen-catalog/internal/catalog"
	"github.com/neexbeast/flysen-catalog/internal/repository"
)

// CreateAirportService handles POST /api/v1/airport-services.
func (h *Handlers) CreateAirportService(w http.ResponseWriter, r *http.Request) {
	var in dto.AirportService
	if err := dto.Decode(r.Body, &in, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := in.ToModel()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.services.Create(r.Context(), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Airport service created successfully", dto.FromAirportService(created))
}

// GetAirportService handles GET /api/v1/airport-services/{id}.
func (h *Handlers) GetAirportService(w http.ResponseWriter, r *http.Request) {
	s, err := h.services.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Airport service retrieved successfully", dto.FromAirportService(s))
}

// ListAirportServices handles GET /api/v1/airport-services?limit=&lastDocumentId=.
func (h *Handlers) ListAirportServices(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", repository.DefaultPageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page := h.services.Page(r.Context(), repository.PageRequest{
		Limit:  limit,
		Cursor: r.URL.Query().Get("lastDocumentId"),
	})
	writeJSON(w, http.StatusOK, response{
		Success:    true,
		Message:    "Airport services retrieved successfully",
		Data:       mapAll(page.Items, dto.FromAirportService),
		NextCursor: page.NextCursor,
	})
}

// ServicesByAirport handles GET /api/v1/airport-services/airport/{airportId}.
func (h *Handlers) ServicesByAirport(w http.ResponseWriter, r *http.Request) {
	items := h.services.ByAirport(r.Context(), chi.URLParam(r, "airportId"))
	writeOK(w, http.StatusOK, "Airport services retrieved successfully", mapAll(items, dto.FromAirportService))
}

// ServicesByAirportCode handles GET /api/v1/airport-services/airport-code/{airportCode}.
func (h *Handlers) ServicesByAirportCode(w http.ResponseWriter, r *http.Request) {
	items := h.services.ByAirportCode(r.Context(), chi.URLParam(r, "airportCode"))
	writeOK(w, http.StatusOK, "Airport services retrieved successfully", mapAll(items, dto.FromAirportService))
}

// ServicesByCategory handles GET /api/v1/airport-services/airport/{airportId}/category/{category}.
func (h *Handlers) ServicesByCategory(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseServiceCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := h.services.ByCategory(r.Context(), chi.URLParam(r, "airportId"), category)
	writeOK(w, http.StatusOK, "Airport services retrieved successfully", mapAll(items, dto.FromAirportService))
}

// TopRatedServices handles GET /api/v1/airport-services/airport/{airportId}/top-rated?limit=.
func (h *Handlers) TopRatedServices(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := h.services.TopRated(r.Context(), chi.URLParam(r, "airportId"), limit)
	writeOK(w, http.StatusOK, "Top rated services retrieved successfully", mapAll(items, dto.FromAirportService))
}

// ServicesByTerminal handles GET /api/v1/airport-services/airport/{airportId}/terminal/{terminal}.
func (h *Handlers) ServicesByTerminal(w http.ResponseWriter, r *http.Request) {
	items := h.services.ByTerminal(r.Context(), chi.URLParam(r, "airportId"), chi.URLParam(r, "terminal"))
	writeOK(w, http.StatusOK, "Airport services retrieved successfully", mapAll(items, dto.FromAirportService))
}

// SearchServices handles GET /api/v1/airport-services/airport/{airportId}/search?query=.
func (h *Handlers) SearchServices(w http.ResponseWriter, r *http.Request) {
	term, err := requiredQuery(r, "query")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := h.services.Search(r.Context(), chi.URLParam(r, "airportId"), term)
	writeOK(w, http.StatusOK, "Search completed successfully", mapAll(items, dto.FromAirportService))
}

// UpdateAirportService handles PUT /api/v1/airport-services/{id}.
func (h *Handlers) UpdateAirportService(w http.ResponseWriter, r *http.Request) {
	var in dto.AirportService
	if err := dto.Decode(r.Body, &in, true); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := in.ToModel()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.services.Update(r.Context(), chi.URLParam(r, "id"), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Airport service updated successfully", dto.FromAirportService(updated))
}

// DeleteAirportService handles DELETE /api/v1/airport-services/{id}.
func (h *Handlers) DeleteAirportService(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Airport service deleted successfully", nil)
}

// AddProduct handles POST /api/v1/airport-services/{id}/products.
func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	var in dto.Product
	if err := dto.Decode(r.Body, &in, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	s, err := h.services.AddProduct(r.Context(), chi.URLParam(r, "id"), in.ToModel())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Product added successfully", dto.FromAirportService(s))
}

// UpdateProduct handles PUT /api/v1/airport-services/{id}/products/{productId}.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in dto.Product
	if err := dto.Decode(r.Body, &in, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	s, err := h.services.UpdateProduct(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productId"), in.ToModel())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Product updated successfully", dto.FromAirportService(s))
}

// RemoveProduct handles DELETE /api/v1/airport-services/{id}/products/{productId}.
func (h *Handlers) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	s, err := h.services.RemoveProduct(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Product removed successfully", dto.FromAirportService(s))
}
