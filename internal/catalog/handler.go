// internal/catalog/handler.go
package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"equiptrack/internal/httpx"
	"equiptrack/internal/reference"
)

// EntityResolver looks up a reference entity by id. Satisfied by the
// reference services for categories, brands and locations.
type EntityResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*reference.Entity, error)
}

type Handler struct {
	service    Service
	categories EntityResolver
	brands     EntityResolver
	locations  EntityResolver
}

func NewHandler(service Service, categories, brands, locations EntityResolver) *Handler {
	return &Handler{
		service:    service,
		categories: categories,
		brands:     brands,
		locations:  locations,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.listAll)
	r.Get("/active", h.listActive)
	r.Get("/available", h.listAvailable)
	r.Get("/unavailable", h.listUnavailable)
	r.Get("/search", h.search)
	r.Get("/filters", h.findByFilters)
	r.Get("/low-availability", h.lowAvailability)
	r.Get("/stats/category", h.countByCategory)
	r.Get("/stats/summary", h.totals)
	r.Get("/code/{code}", h.findByCode)
	r.Get("/serial/{serial}", h.findBySerial)
	r.Get("/check/code/{code}", h.checkCode)
	r.Get("/check/serial/{serial}", h.checkSerial)
	r.Get("/category/{name}", h.findByCategory)
	r.Get("/brand/{name}", h.findByBrand)
	r.Get("/model/{name}", h.findByModel)
	r.Get("/location/{name}", h.findByLocation)
	r.Get("/condition/{condition}", h.findByCondition)
	r.Post("/", h.create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.findByID)
		r.Put("/", h.update)
		r.Delete("/", h.deactivate)
		r.Post("/loan", h.loan)
		r.Post("/return", h.returnLoan)
		r.Get("/available", h.available)
	})

	return r
}

// resolveRefs verifies the reference entities named by the input. A missing
// category rejects the request; unresolvable brand or location references are
// dropped rather than rejected, the product is still usable without them.
func (h *Handler) resolveRefs(ctx context.Context, in *Input) error {
	if in.CategoryID != uuid.Nil {
		if _, err := h.categories.FindByID(ctx, in.CategoryID); err != nil {
			return &ValidationError{Reason: "category not found"}
		}
	}
	if in.BrandID != nil {
		if _, err := h.brands.FindByID(ctx, *in.BrandID); err != nil {
			in.BrandID = nil
		}
	}
	if in.LocationID != nil {
		if _, err := h.locations.FindByID(ctx, *in.LocationID); err != nil {
			in.LocationID = nil
		}
	}
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.resolveRefs(r.Context(), &in); err != nil {
		writeError(w, err)
		return
	}
	product, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.resolveRefs(r.Context(), &in); err != nil {
		writeError(w, err)
		return
	}
	product, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) findByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	product, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) findByCode(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.FindByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) findBySerial(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.FindBySerial(r.Context(), chi.URLParam(r, "serial"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) loan(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.service.RegisterLoan)
}

func (h *Handler) returnLoan(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.service.RegisterReturn)
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, int) (*Product, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	quantity, err := parseQuantity(r, 1)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid quantity")
		return
	}
	product, err := fn(r.Context(), id, quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) available(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSON(w, http.StatusOK, false)
		return
	}
	quantity, err := parseQuantity(r, 1)
	if err != nil {
		httpx.JSON(w, http.StatusOK, false)
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.CheckAvailability(r.Context(), id, quantity))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListAll)
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListActive)
}

func (h *Handler) listAvailable(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListAvailable)
}

func (h *Handler) listUnavailable(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListUnavailable)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fn func(context.Context) ([]*Product, error)) {
	products, err := fn(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.SearchByTerm(r.Context(), r.URL.Query().Get("term"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) findByFilters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.service.FindByFilters(r.Context(), q.Get("category"), q.Get("brand"), q.Get("condition"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) lowAvailability(w http.ResponseWriter, r *http.Request) {
	min := 1
	if raw := r.URL.Query().Get("minQuantity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid minQuantity")
			return
		}
		min = parsed
	}
	products, err := h.service.ListLowAvailability(r.Context(), min)
	if err != nil {
		writeError(w, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) findByCategory(w http.ResponseWriter, r *http.Request) {
	h.listBy(w, r, h.service.FindByCategory, chi.URLParam(r, "name"))
}

func (h *Handler) findByBrand(w http.ResponseWriter, r *http.Request) {
	h.listBy(w, r, h.service.FindByBrand, chi.URLParam(r, "name"))
}

func (h *Handler) findByModel(w http.ResponseWriter, r *http.Request) {
	h.listBy(w, r, h.service.FindByModel, chi.URLParam(r, "name"))
}

func (h *Handler) findByLocation(w http.ResponseWriter, r *http.Request) {
	h.listBy(w, r, h.service.FindByLocation, chi.URLParam(r, "name"))
}

func (h *Handler) findByCondition(w http.ResponseWriter, r *http.Request) {
	h.listBy(w, r, h.service.FindByCondition, chi.URLParam(r, "condition"))
}

func (h *Handler) listBy(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) ([]*Product, error), arg string) {
	products, err := fn(r.Context(), arg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) countByCategory(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountByCategory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) checkCode(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.ExistsByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, exists)
}

func (h *Handler) checkSerial(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.ExistsBySerial(r.Context(), chi.URLParam(r, "serial"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, exists)
}

func writeProducts(w http.ResponseWriter, products []*Product) {
	if products == nil {
		products = []*Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

func parseQuantity(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("quantity")
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	var insufficient *InsufficientAvailabilityError
	var overReturn *OverReturnError
	var dupCode *DuplicateCodeError
	var dupSerial *DuplicateSerialError

	switch {
	case errors.As(err, &validation),
		errors.As(err, &insufficient),
		errors.As(err, &overReturn):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &dupCode), errors.As(err, &dupSerial):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "product not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
