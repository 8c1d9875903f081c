package rates

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vetro-erp/vetro-erp/internal/platform/httpx"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// Handler manages rate tier endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers rate tier routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/rates/categories", h.categories)
	r.Get("/rates/{category}", h.list)
	r.Post("/rates", h.create)
	r.Patch("/rates/tiers/{id}", h.update)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.Error("list rate categories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": list})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	category := pricing.Category(chi.URLParam(r, "category"))
	list, err := h.service.List(r.Context(), category)
	if err != nil {
		h.logger.Error("list rate tiers", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]TierResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toResponse(t))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tiers": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateTierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	tier, err := h.service.CreateTier(r.Context(), req)
	if err != nil {
		h.respondError(w, "create rate tier", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*tier))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req UpdateTierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	tier, err := h.service.UpdateTier(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update rate tier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*tier))
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, pricing.ErrOverlappingTiers), errors.Is(err, pricing.ErrInvalidTierRange):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Tier", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
