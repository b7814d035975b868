package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/flysen-catalog/internal/api/dto"
	"github.com/neexbeast/flysen-catalog/internal/repository"
	"github.com/neexbeast/flysen-catalog/internal/service"
)

// CreateDestination handles POST /api/v1/destinations.
func (h *Handlers) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var in dto.Destination
	if err := dto.Decode(r.Body, &in, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := in.ToModel()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.destinations.Create(r.Context(), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Destination created successfully", dto.FromDestination(created))
}

// GetDestination handles GET /api/v1/destinations/{id}.
func (h *Handlers) GetDestination(w http.ResponseWriter, r *http.Request) {
	d, err := h.destinations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Destination retrieved successfully", dto.FromDestination(d))
}

// ListDestinations handles GET /api/v1/destinations?limit=&lastDocumentId=.
func (h *Handlers) ListDestinations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", repository.DefaultPageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page := h.destinations.Page(r.Context(), repository.PageRequest{
		Limit:  limit,
		Cursor: r.URL.Query().Get("lastDocumentId"),
	})
	writeJSON(w, http.StatusOK, response{
		Success:    true,
		Message:    "Destinations retrieved successfully",
		Data:       mapAll(page.Items, dto.FromDestination),
		NextCursor: page.NextCursor,
	})
}

// DestinationsByRegion handles GET /api/v1/destinations/region/{region}.
func (h *Handlers) DestinationsByRegion(w http.ResponseWriter, r *http.Request) {
	items := h.destinations.ByRegion(r.Context(), chi.URLParam(r, "region"))
	writeOK(w, http.StatusOK, "Destinations retrieved successfully", mapAll(items, dto.FromDestination))
}

// PopularDestinations handles GET /api/v1/destinations/popular?limit=.
func (h *Handlers) PopularDestinations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := h.destinations.Popular(r.Context(), limit)
	writeOK(w, http.StatusOK, "Popular destinations retrieved successfully", mapAll(items, dto.FromDestination))
}

// SearchDestinations handles GET /api/v1/destinations/search?query=.
func (h *Handlers) SearchDestinations(w http.ResponseWriter, r *http.Request) {
	term, err := requiredQuery(r, "query")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := h.destinations.Search(r.Context(), term)
	writeOK(w, http.StatusOK, "Search completed successfully", mapAll(items, dto.FromDestination))
}

// UpdateDestination handles PUT /api/v1/destinations/{id}. Only the fields
// present in the body change.
func (h *Handlers) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	var in dto.Destination
	if err := dto.Decode(r.Body, &in, true); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := in.ToModel()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.destinations.Update(r.Context(), chi.URLParam(r, "id"), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Destination updated successfully", dto.FromDestination(updated))
}

// DeleteDestination handles DELETE /api/v1/destinations/{id}.
func (h *Handlers) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	if err := h.destinations.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Destination deleted successfully", nil)
}

// NearbyPlaces handles GET /api/v1/destinations/{id}/nearby?radius=&type=.
func (h *Handlers) NearbyPlaces(w http.ResponseWriter, r *http.Request) {
	radius, err := queryInt(r, "radius", service.DefaultNearbyRadius)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	places, err := h.destinations.Nearby(r.Context(), chi.URLParam(r, "id"), radius, r.URL.Query().Get("type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Nearby places retrieved successfully", places)
}
