package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stagehand/config"
	"stagehand/infras/otel"
	"stagehand/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func record(t *testing.T, fn func(scope otel.Scope)) sdktrace.ReadOnlySpan {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "service.Update")
	scope := otel.NewScope(span)
	fn(scope)
	scope.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	return ended[0]
}

func attributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	values := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		values[kv.Key] = kv.Value
	}

	return values
}

func TestScope_TraceError(t *testing.T) {
	t.Run("client errors leave the status unset", func(t *testing.T) {
		span := record(t, func(scope otel.Scope) {
			scope.TraceError(failure.Locked("performance starts within the hour"))
		})

		assert.Equal(t, codes.Unset, span.Status().Code)
		assert.Equal(t, int64(423), attributes(span)["error.code"].AsInt64())
		require.Len(t, span.Events(), 1)
	})

	t.Run("server errors mark the span", func(t *testing.T) {
		span := record(t, func(scope otel.Scope) {
			scope.TraceError(errors.New("pq: connection refused"))
		})

		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Equal(t, "pq: connection refused", span.Status().Description)
	})

	t.Run("nil is ignored", func(t *testing.T) {
		span := record(t, func(scope otel.Scope) {
			scope.TraceIfError(nil)
		})

		assert.Empty(t, span.Events())
		assert.Empty(t, span.Attributes())
	})
}

func TestScope_SetAttributes(t *testing.T) {
	start := time.Date(2024, 6, 15, 22, 0, 0, 0, time.FixedZone("EDT", -4*60*60))

	span := record(t, func(scope otel.Scope) {
		scope.SetAttribute("rows", 3)
		scope.SetAttributes(map[string]any{
			"starts_at": start,
			"locked":    true,
			"lead":      90 * time.Minute,
		})
	})

	values := attributes(span)

	assert.Equal(t, int64(3), values["rows"].AsInt64())
	assert.Equal(t, "2024-06-16T02:00:00Z", values["starts_at"].AsString())
	assert.True(t, values["locked"].AsBool())
	assert.Equal(t, "1h30m0s", values["lead"].AsString())
}

func TestNewAndShutdown(t *testing.T) {
	tracer := otel.New(&config.Config{})

	ctx, scope := tracer.NewScope(context.Background(), "handler", "handler.GetSchedule")
	require.NotNil(t, ctx)
	scope.AddEvent("schedule rendered")
	scope.End()

	require.NoError(t, otel.Shutdown(context.Background()))
}
