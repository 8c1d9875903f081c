// Package jobs owns the asynchronous side of the system: invoice document
// rendering and payment notifications, processed by a separate worker binary
// over an Asynq queue.
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvoiceRender renders a printable document for an issued invoice.
	TaskInvoiceRender = "invoice:render"
	// TaskPaymentNotify fans out a notification for a recorded payment.
	TaskPaymentNotify = "payment:notify"
)

// InvoiceRenderPayload identifies the invoice to render.
type InvoiceRenderPayload struct {
	InvoiceID int64 `json:"invoice_id"`
}

// PaymentNotifyPayload carries what a notification needs to say.
type PaymentNotifyPayload struct {
	InvoiceID int64  `json:"invoice_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// NewInvoiceRenderTask constructs an Asynq task for invoice rendering.
func NewInvoiceRenderTask(payload InvoiceRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceRender, data), nil
}

// NewPaymentNotifyTask constructs an Asynq task for a payment notification.
func NewPaymentNotifyTask(payload PaymentNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentNotify, data), nil
}

// Renderer submits invoice documents to the external render service.
type Renderer struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

// NewRenderer builds a Renderer targeting the configured render service.
func NewRenderer(logger *slog.Logger, baseURL string) *Renderer {
	return &Renderer{
		logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// HandleInvoiceRender processes TaskInvoiceRender tasks.
func (r *Renderer) HandleInvoiceRender(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	body, err := json.Marshal(map[string]any{"invoice_id": payload.InvoiceID})
	if err != nil {
		return asynq.SkipRetry
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/render/invoice", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("jobs: render invoice %d: %w", payload.InvoiceID, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("jobs: render invoice %d: status %d", payload.InvoiceID, resp.StatusCode)
	}

	r.logger.Info("invoice rendered", slog.Int64("invoice_id", payload.InvoiceID))
	return nil
}

// HandlePaymentNotify processes TaskPaymentNotify tasks.
func (r *Renderer) HandlePaymentNotify(ctx context.Context, t *asynq.Task) error {
	var payload PaymentNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Notification delivery is log-only until a channel is picked.
	r.logger.Info("payment recorded",
		slog.Int64("invoice_id", payload.InvoiceID),
		slog.String("amount", payload.Amount),
		slog.String("currency", payload.Currency),
	)
	return nil
}
