package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("operation", "add"),
		attribute.String("contractor_id", "acme-x1y2z"),
		attribute.String("outcome", "ok"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "operation" && attrs[1].Key != "operation" {
		t.Fatalf("expected operation to be retained")
	}
	if attrs[0].Key != "outcome" && attrs[1].Key != "outcome" {
		t.Fatalf("expected outcome to be retained")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordMembershipWrite(context.Background(), "add", nil)
		m.RecordTransition(context.Background(), "pending", "assigned")
		m.RecordIdentityOperation(context.Background(), "sign_in", errors.New("x"))
		m.RecordRateLimitDenied(context.Background(), "/auth/signin", "throttled")
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "branchops"}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordMembershipWrite(context.Background(), "remove", nil)
}
