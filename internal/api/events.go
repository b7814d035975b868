package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/flysen-catalog/internal/api/dto"
	"github.com/neexbeast/flysen-catalog/internal/catalog"
	"github.com/neexbeast/flysen-catalog/internal/repository"
	"github.com/neexbeast/flysen-catalog/internal/service"
)

// CreateEvent handles POST /api/v1/events.
func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in dto.Event
	if err := dto.Decode(r.Body, &in, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := in.ToModel()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.events.Create(r.Context(), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Event created successfully", dto.FromEvent(created))
}

// GetEvent handles GET /api/v1/events/{id}.
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Event retrieved successfully", dto.FromEvent(e))
}

// ListEvents handles GET /api/v1/events?limit=&lastDocumentId=.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", repository.DefaultPageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page := h.events.Page(r.Context(), repository.PageRequest{
		Limit:  limit,
		Cursor: r.URL.Query().Get("lastDocumentId"),
	})
	writeJSON(w, http.StatusOK, response{
		Success:    true,
		Message:    "Events retrieved successfully",
		Data:       mapAll(page.Items, dto.FromEvent),
		NextCursor: page.NextCursor,
	})
}

// EventsByDestination handles GET /api/v1/events/destination/{destinationId}.
func (h *Handlers) EventsByDestination(w http.ResponseWriter, r *http.Request) {
	items := h.events.ByDestination(r.Context(), chi.URLParam(r, "destinationId"))
	writeOK(w, http.StatusOK, "Events retrieved successfully", mapAll(items, dto.FromEvent))
}

// UpcomingEvents handles GET /api/v1/events/upcoming?days=&limit=.
func (h *Handlers) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", service.DefaultUpcomingDays)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", repository.DefaultPageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := h.events.Upcoming(r.Context(), days, limit)
	writeOK(w, http.StatusOK, "Upcoming events retrieved successfully", mapAll(items, dto.FromEvent))
}

// FeaturedEvents handles GET /api/v1/events/featured?limit=.
func (h *Handlers) FeaturedEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := h.events.Featured(r.Context(), limit)
	writeOK(w, http.StatusOK, "Featured events retrieved successfully", mapAll(items, dto.FromEvent))
}

// EventsByType handles GET /api/v1/events/type/{type}.
func (h *Handlers) EventsByType(w http.ResponseWriter, r *http.Request) {
	t, err := catalog.ParseEventType(chi.URLParam(r, "type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := h.events.ByType(r.Context(), t)
	writeOK(w, http.StatusOK, "Events retrieved successfully", mapAll(items, dto.FromEvent))
}

// UpdateEvent handles PUT /api/v1/events/{id}.
func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in dto.Event
	if err := dto.Decode(r.Body, &in, true); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := in.ToModel()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.events.Update(r.Context(), chi.URLParam(r, "id"), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Event updated successfully", dto.FromEvent(updated))
}

// DeleteEvent handles DELETE /api/v1/events/{id}.
func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Event deleted successfully", nil)
}
