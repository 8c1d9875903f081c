package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/vetro-erp/vetro-erp/internal/observability"
)

func TestJobMetricsCountsOutcomes(t *testing.T) {
	metrics := observability.NewMetrics()
	mw := jobMetrics(metrics)

	ok := mw(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return nil }))
	failing := mw(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return errors.New("boom") }))

	require.NoError(t, ok.ProcessTask(context.Background(), asynq.NewTask(TaskInvoiceRender, nil)))
	require.Error(t, failing.ProcessTask(context.Background(), asynq.NewTask(TaskPaymentNotify, nil)))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rr.Body.String()
	require.Contains(t, body, `vetro_jobs_total{outcome="ok",task="invoice:render"} 1`)
	require.Contains(t, body, `vetro_jobs_total{outcome="error",task="payment:notify"} 1`)
}

func TestJobMetricsNilMetricsPassesThrough(t *testing.T) {
	h := jobMetrics(nil)(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return nil }))
	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(TaskInvoiceRender, nil)))
}
