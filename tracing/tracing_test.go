package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestInit_Disabled(t *testing.T) {
	assert.NoError(t, Init(Config{}))
}

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("way", "test", exporter))

	ctx, parent := StartSpan(context.Background(), "engine.advanceRouting", KindServer)
	parent.WithAttributes(map[string]string{"obligation.id": "o1"})
	_, child := StartSpan(ctx, "store.commit", KindClient)
	EndSpan(child, errors.New("conflict"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "store.commit", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, "engine.advanceRouting", spans[1].Name)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
}

func TestEndSpan_Nil(t *testing.T) {
	assert.NotPanics(t, func() { EndSpan(nil, nil) })
	var s *Span
	assert.Nil(t, s.WithAttributes(map[string]string{"k": "v"}))
}
