// internal/reference/handler.go
package reference

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"equiptrack/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.handleListAll)
	r.Get("/active", h.handleListActive)
	r.Get("/custom", h.handleListCustom)
	r.Get("/system", h.handleListSystem)
	r.Get("/name/{name}", h.handleFindByName)
	r.Post("/", h.handleCreate)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handleFindByID)
		r.Put("/", h.handleUpdate)
		r.Delete("/", h.handleSoftDelete)
		r.Delete("/hard", h.handleHardDelete)
		r.Post("/reactivate", h.handleReactivate)
	})

	return r
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListAll)
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListActive)
}

func (h *Handler) handleListCustom(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListCustom)
}

func (h *Handler) handleListSystem(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListSystem)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fn func(context.Context) ([]*Entity, error)) {
	entities, err := fn(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entities == nil {
		entities = []*Entity{}
	}
	httpx.JSON(w, http.StatusOK, entities)
}

func (h *Handler) handleFindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	entity, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entity)
}

func (h *Handler) handleFindByName(w http.ResponseWriter, r *http.Request) {
	entity, err := h.service.FindByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entity)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	entity, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entity)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	entity, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entity)
}

func (h *Handler) handleSoftDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.SoftDelete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.HardDelete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	entity, err := h.service.Reactivate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entity)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var duplicateErr *DuplicateNameError

	switch {
	case errors.As(err, &validationErr):
		httpx.Error(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &duplicateErr):
		httpx.Error(w, http.StatusConflict, duplicateErr.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, ErrNotFound.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
