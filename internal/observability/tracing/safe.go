package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// Span attributes never carry personal data: emails, names and phone numbers
// stay out of traces.
var blockedAttributeFragments = []string{"email", "password", "token", "telefono", "phone", "nombre", "name"}

// SafeAttributes drops attributes whose key looks like personal data.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		key := strings.ToLower(string(attr.Key))
		blocked := false
		for _, fragment := range blockedAttributeFragments {
			if strings.Contains(key, fragment) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, attr)
		}
	}
	return out
}

// SafeError reduces err to its message with any email-like tokens masked.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	fields := strings.Fields(err.Error())
	for i, f := range fields {
		if strings.Contains(f, "@") {
			fields[i] = "[redacted]"
		}
	}
	return errors.New(strings.Join(fields, " "))
}

func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
