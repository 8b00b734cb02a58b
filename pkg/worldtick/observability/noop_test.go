package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordDispatch(ctx, "Move", "success", time.Millisecond)
		m.RecordDispatchError(ctx, "Move")
		m.RecordExpiration(ctx, "Move", "count")
		m.RecordAssignment(ctx, "partition", 1, nil)
		m.RecordAssignment(ctx, "partition", 0, errors.New("x"))
		m.RecordDeadLetter(ctx, "Move")
	})
}

func TestNoopSpanManager(t *testing.T) {
	m := NoopSpanManager{}
	ctx := context.Background()

	t.Run("returns the same context", func(t *testing.T) {
		got, span := m.StartDispatchSpan(ctx, "Move", 1)
		assert.Equal(t, ctx, got)
		assert.NotNil(t, span)
		assert.False(t, span.IsRecording())
	})

	t.Run("end and events do not panic", func(t *testing.T) {
		_, span := m.StartDispatchSpan(ctx, "Move", 1)
		assert.NotPanics(t, func() {
			m.AddSpanEvent(ctx, "x", attribute.String("k", "v"))
			m.EndSpanWithError(span, errors.New("x"))
		})
	})
}
