package forecast

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forecastclient "github.com/Abka012/Odin-AI/internal/clients/http/forecast"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

func newAdapter(t *testing.T, handler http.HandlerFunc, opts ...Option) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := forecastclient.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return NewAdapter(client, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func TestAdapterForecast(t *testing.T) {
	adapter := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/predict/Milk" {
			_, _ = w.Write([]byte(`{"forecastedDemand": 12}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	demand, err := adapter.Forecast(context.Background(), "Milk")
	require.NoError(t, err)
	assert.Equal(t, float64(12), demand)

	_, err = adapter.Forecast(context.Background(), "Bread")
	assert.ErrorIs(t, err, ports.ErrForecastFailed)
}

func TestAdapterInsightsFallsBackToEmpty(t *testing.T) {
	adapter := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/predict-stockouts" {
			_, _ = w.Write([]byte(`[{"productName": "Milk", "daysUntilStockout": 3}]`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	rows := adapter.Insights(context.Background(), ports.InsightStockouts)
	require.Len(t, rows, 1)
	assert.Equal(t, "Milk", rows[0]["productName"])

	rows = adapter.Insights(context.Background(), ports.InsightSupplierScorecard)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestNilAdapter(t *testing.T) {
	var adapter *Adapter
	_, err := adapter.Forecast(context.Background(), "Milk")
	assert.ErrorIs(t, err, ports.ErrForecastFailed)
	assert.Empty(t, adapter.Insights(context.Background(), ports.InsightReorder))
}

func TestAdapterInsightsCache(t *testing.T) {
	var reorderCalls, scorecardCalls atomic.Int32
	adapter := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reorder":
			reorderCalls.Add(1)
			_, _ = w.Write([]byte(`[{"productName": "Milk"}]`))
		default:
			scorecardCalls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}
	}, WithInsightsCache(8, time.Minute))

	for i := 0; i < 3; i++ {
		rows := adapter.Insights(context.Background(), ports.InsightReorder)
		require.Len(t, rows, 1)
		assert.Empty(t, adapter.Insights(context.Background(), ports.InsightSupplierScorecard))
	}
	assert.Equal(t, int32(1), reorderCalls.Load())
	// failures are not cached
	assert.Equal(t, int32(3), scorecardCalls.Load())
}

func TestAdapterForecastIsNeverCached(t *testing.T) {
	var calls atomic.Int32
	adapter := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"forecastedDemand": 4}`))
	}, WithInsightsCache(8, time.Minute))

	for i := 0; i < 2; i++ {
		_, err := adapter.Forecast(context.Background(), "Milk")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), calls.Load())
}
