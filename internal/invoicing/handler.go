package invoicing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vetro-erp/vetro-erp/internal/catalog"
	"github.com/vetro-erp/vetro-erp/internal/customers"
	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/platform/httpx"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// Handler manages invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.list)
	r.Post("/invoices", h.create)
	r.Get("/invoices/{id}", h.show)
	r.Post("/invoices/{id}/lines", h.addLine)
	r.Get("/invoices/{id}/payments", h.payments)
	r.Post("/invoices/{id}/payments", h.recordPayment)
	r.Delete("/invoices/{id}/payments/{paymentID}", h.reversePayment)
	r.Post("/invoices/{id}/cancel", h.cancel)
	r.Post("/pricing/quote", h.quote)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListInvoicesRequest{Limit: 100}
	if c := r.URL.Query().Get("customer_id"); c != "" {
		if id, err := strconv.ParseInt(c, 10, 64); err == nil {
			req.CustomerID = &id
		}
	}
	if s := r.URL.Query().Get("status"); s != "" {
		req.Status = &s
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			req.Limit = n
		}
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	list, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]InvoiceView, 0, len(list))
	for _, snap := range list {
		out = append(out, toInvoiceView(snap))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	snap, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toInvoiceView(*snap))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	snap, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInvoiceView(*snap))
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req LineInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	snap, err := h.service.AddLine(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "add invoice line", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInvoiceView(*snap))
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	list, err := h.service.Payments(r.Context(), id)
	if err != nil {
		h.respondError(w, "list payments", err)
		return
	}
	out := make([]PaymentView, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentView(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": out})
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	payment, snap, err := h.service.RecordPayment(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "record payment", err)
		return
	}
	resp := map[string]any{"invoice": toInvoiceView(*snap)}
	if payment != nil {
		resp["payment"] = toPaymentView(*payment)
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) reversePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	paymentID, err := parseID(r, "paymentID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payment ID", err.Error())
		return
	}

	snap, err := h.service.ReversePayment(r.Context(), id, paymentID)
	if err != nil {
		h.respondError(w, "reverse payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInvoiceView(*snap))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	snap, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondError(w, "cancel invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInvoiceView(*snap))
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	view, err := h.service.Quote(r.Context(), req)
	if err != nil {
		h.respondError(w, "pricing quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var validationErr *pricing.ValidationError
	switch {
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, customers.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvoiceClosed), errors.Is(err, ErrInvoiceCancelled),
		errors.Is(err, ErrPaymentExceedsBalance), errors.Is(err, ErrReversalExceedsPaid),
		errors.Is(err, ErrCashMustPayInFull), errors.Is(err, customers.ErrCashCustomerBalance),
		errors.Is(err, customers.ErrInsufficientBalance), errors.Is(err, catalog.ErrInactiveGlass):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &validationErr),
		errors.Is(err, pricing.ErrNoRateForThickness),
		errors.Is(err, geometry.ErrNonPositiveDimension):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Line", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
