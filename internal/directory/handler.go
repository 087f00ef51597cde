// internal/directory/handler.go
package directory

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

	r.Post("/", h.handleCreate)
	r.Get("/", h.handleListAll)
	r.Get("/active", h.handleListActive)
	r.Get("/search", h.handleSearch)
	r.Get("/email/{email}", h.handleFindByEmail)
	r.Get("/registration/{registrationID}", h.handleFindByRegistration)
	r.Get("/department/{department}", h.handleListByDepartment)
	r.Get("/role/{role}", h.handleListByRole)
	r.Get("/check/email/{email}", h.handleCheckEmail)
	r.Get("/check/registration/{registrationID}", h.handleCheckRegistration)
	r.Get("/stats/count", h.handleCountUsers)
	r.Get("/stats/department", h.handleCountByDepartment)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handleFindByID)
		r.Put("/", h.handleUpdate)
		r.Delete("/", h.handleDeactivate)
		r.Post("/reactivate", h.handleReactivate)
	})

	return r
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
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

	user, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleFindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	user, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleFindByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.FindByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleFindByRegistration(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.FindByRegistrationID(r.Context(), chi.URLParam(r, "registrationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListAll)
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListActive)
}

func (h *Handler) handleListByDepartment(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")
	h.list(w, r, func(ctx context.Context) ([]*User, error) {
		return h.service.ListByDepartment(ctx, department)
	})
}

func (h *Handler) handleListByRole(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	h.list(w, r, func(ctx context.Context) ([]*User, error) {
		return h.service.ListByRole(ctx, role)
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	h.list(w, r, func(ctx context.Context) ([]*User, error) {
		return h.service.Search(ctx, term)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fn func(context.Context) ([]*User, error)) {
	users, err := fn(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []*User{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Deactivate(r.Context(), id); err != nil {
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

	if err := h.service.Reactivate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.ExistsByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, exists)
}

func (h *Handler) handleCheckRegistration(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.ExistsByRegistrationID(r.Context(), chi.URLParam(r, "registrationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, exists)
}

func (h *Handler) handleCountUsers(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}

func (h *Handler) handleCountByDepartment(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountByDepartment(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var duplicateEmail *DuplicateEmailError
	var duplicateReg *DuplicateRegistrationError

	switch {
	case errors.As(err, &validationErr):
		httpx.Error(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &duplicateEmail):
		httpx.Error(w, http.StatusConflict, duplicateEmail.Error())
	case errors.As(err, &duplicateReg):
		httpx.Error(w, http.StatusConflict, duplicateReg.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrRateLimited):
		httpx.Error(w, http.StatusTooManyRequests, ErrRateLimited.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
