package application

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invalerts "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/alerts"
	invmemory "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/memory"
)

func TestReduceStock_AlertsLoggedOncePerCondition(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	recorder := &recordingAlerts{}
	svc := NewService(invmemory.NewRepository(), &fakeForecast{},
		WithAlertPublisher(invalerts.Fanout{invalerts.NewLogPublisher(logger), recorder}),
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logger),
	)
	ctx := context.Background()

	added, err := svc.AddOrMergeItem(ctx, milk(10))
	require.NoError(t, err)
	buf.Reset()

	_, err = svc.ReduceStock(ctx, added.Item.ID, 8)
	require.NoError(t, err)

	assert.Len(t, recorder.kinds(), 2)
	warnings := 0
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "level=WARN") {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings, buf.String())
}
