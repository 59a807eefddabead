package odoo

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ganot/shipdash/internal/odoo"

type callMetrics struct {
	calls    metric.Int64Counter
	retries  metric.Int64Counter
	reauths  metric.Int64Counter
	failures metric.Int64Counter
}

// newCallMetrics uses the global meter provider, which is a no-op until the
// process installs one.
func newCallMetrics() *callMetrics {
	meter := otel.Meter(meterName)
	m := &callMetrics{}
	m.calls, _ = meter.Int64Counter("odoo.calls", metric.WithDescription("Remote calls attempted"))
	m.retries, _ = meter.Int64Counter("odoo.retries", metric.WithDescription("Remote calls retried after a transient failure"))
	m.reauths, _ = meter.Int64Counter("odoo.reauthentications", metric.WithDescription("Sessions refreshed after expiry"))
	m.failures, _ = meter.Int64Counter("odoo.failures", metric.WithDescription("Logical calls that ended in a terminal error"))
	return m
}

func (m *callMetrics) attempt(ctx context.Context, req Request) {
	if m == nil || m.calls == nil {
		return
	}
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("odoo.model", req.Model),
		attribute.String("odoo.method", req.Method),
	))
}

func (m *callMetrics) retry(ctx context.Context, reason string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *callMetrics) reauth(ctx context.Context) {
	if m == nil || m.reauths == nil {
		return
	}
	m.reauths.Add(ctx, 1)
}

func (m *callMetrics) failure(ctx context.Context, req Request) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("odoo.model", req.Model),
		attribute.String("odoo.method", req.Method),
	))
}
