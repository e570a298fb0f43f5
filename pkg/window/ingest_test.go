package window

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringwindow/errors"
	"github.com/c360/ringwindow/metric"
	fixtures "github.com/c360/ringwindow/testutil"
)

func TestWindow_IngestValid(t *testing.T) {
	for _, validate := range []bool{false, true} {
		cfg := DefaultConfig("cpu", 10)
		cfg.ValidateSchema = validate
		w := newTestWindow(t, cfg)

		for _, payload := range fixtures.ValidSamples {
			require.NoError(t, w.Ingest(t.Context(), []byte(payload)), payload)
		}

		got := w.Samples()
		require.Len(t, got, len(fixtures.ValidSamples))
		assert.Equal(t, "s1", got[0].ID)
		assert.Equal(t, fixtures.BaseTime, got[0].Timestamp)
		assert.Equal(t, map[string]string{"host": "edge-1"}, got[2].Labels)
		assert.Equal(t, "samples.mem", got[3].Subject)
		assert.Equal(t, 1024.0, got[3].Value)
		assert.NotEmpty(t, got[3].ID)
		assert.False(t, got[3].Timestamp.IsZero())
	}
}

func TestWindow_IngestInvalid(t *testing.T) {
	for _, validate := range []bool{false, true} {
		cfg := DefaultConfig("cpu", 10)
		cfg.ValidateSchema = validate
		w := newTestWindow(t, cfg)

		for name, payload := range fixtures.InvalidSamples {
			err := w.Ingest(t.Context(), []byte(payload))
			require.Error(t, err, "%s (schema=%v)", name, validate)
			assert.ErrorIs(t, err, errors.ErrInvalidData, name)
			assert.True(t, errors.IsInvalid(err), name)
		}

		assert.Zero(t, w.Len())
		assert.Equal(t, uint64(len(fixtures.InvalidSamples)), w.Summary().Rejected)
	}
}

func TestWindow_IngestSchemaOnlyChecks(t *testing.T) {
	payload := []byte(`{"subject": "samples.cpu", "value": 1, "timestamp": 12}`)

	// Without schema validation the decoder rejects it too, but with a
	// different reason label.
	registry := metric.NewMetricsRegistry()
	cfg := DefaultConfig("cpu", 4)
	cfg.ValidateSchema = true
	cfg.Registry = registry
	w := newTestWindow(t, cfg)

	err := w.Ingest(t.Context(), payload)
	require.ErrorIs(t, err, errors.ErrInvalidData)
	assert.Contains(t, err.Error(), "timestamp")

	core := registry.CoreMetrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(core.SamplesRejected.WithLabelValues("cpu", "schema")))
	assert.Equal(t, 0.0, testutil.ToFloat64(core.SamplesRejected.WithLabelValues("cpu", "decode")))
}

func TestWindow_IngestCancelledContext(t *testing.T) {
	w := newTestWindow(t, DefaultConfig("cpu", 4))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := w.Ingest(ctx, fixtures.SamplePayload("samples.cpu", 1, 0))
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsTransient(err))
	assert.Zero(t, w.Len())
}

func TestWindow_IngestRecordsDuration(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	cfg := DefaultConfig("cpu", 4)
	cfg.Registry = registry
	w := newTestWindow(t, cfg)

	for i := range 3 {
		require.NoError(t, w.Ingest(t.Context(), fixtures.SamplePayload("samples.cpu", float64(i), i)))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(registry.CoreMetrics().SamplesIngested.WithLabelValues("cpu")))
	assert.Equal(t, 1, testutil.CollectAndCount(registry.CoreMetrics().IngestDuration))
	assert.Equal(t, fixtures.BaseTime.Add(2*time.Second), w.Summary().Newest)
}
