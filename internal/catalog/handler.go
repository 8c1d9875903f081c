package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vetro-erp/vetro-erp/internal/platform/httpx"
)

// Handler manages glass catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers glass catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/glass-types", h.list)
	r.Post("/glass-types", h.create)
	r.Get("/glass-types/{id}", h.show)
	r.Patch("/glass-types/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListGlassRequest{Limit: 100}
	if s := r.URL.Query().Get("search"); s != "" {
		req.Search = &s
	}
	if a := r.URL.Query().Get("is_active"); a != "" {
		active := a == "true"
		req.IsActive = &active
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			req.Limit = n
		}
	}

	list, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list glass types", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]GlassResponse, 0, len(list))
	for _, g := range list {
		out = append(out, toResponse(g))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"glass_types": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateGlassRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	glass, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create glass type", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*glass))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	glass, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get glass type", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*glass))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req UpdateGlassRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	glass, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update glass type", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*glass))
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyExists):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
