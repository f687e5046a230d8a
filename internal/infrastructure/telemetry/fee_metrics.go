package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by the service metrics
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrPaymentMethod  = attribute.Key("payment_method")
	AttrInvoiceStatus  = attribute.Key("invoice_status")
	AttrRejectReason   = attribute.Key("reason")
)

// FeeMetrics counts fee ledger events. Amounts are recorded in minor units
// (paise/cents) so counters stay integral.
type FeeMetrics struct {
	payments          metric.Int64Counter
	collected         metric.Int64Counter
	statusChanges     metric.Int64Counter
	handoversAccepted metric.Int64Counter
	handedOver        metric.Int64Counter
	handoversRejected metric.Int64Counter
}

// NewFeeMetrics creates the fee instruments on meter
func NewFeeMetrics(meter metric.Meter) (*FeeMetrics, error) {
	if meter == nil {
		return nil, fmt.Errorf("NewFeeMetrics: meter cannot be nil")
	}
	m := &FeeMetrics{}
	counters := []struct {
		dst        *metric.Int64Counter
		name, desc string
		unit       string
	}{
		{&m.payments, "fee_payments_recorded_total", "Fee payments recorded", "{payments}"},
		{&m.collected, "fee_amount_collected_minor_total", "Amount collected in minor currency units", "{minor}"},
		{&m.statusChanges, "fee_invoice_status_changes_total", "Invoice status transitions", "{transitions}"},
		{&m.handoversAccepted, "fee_handovers_accepted_total", "Cash handovers accepted", "{handovers}"},
		{&m.handedOver, "fee_amount_handed_over_minor_total", "Amount handed over in minor currency units", "{minor}"},
		{&m.handoversRejected, "fee_handovers_rejected_total", "Cash handovers rejected", "{handovers}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

func minorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// PaymentRecorded counts a committed payment and its amount
func (m *FeeMetrics) PaymentRecorded(ctx context.Context, method string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(AttrPaymentMethod.String(method))
	m.payments.Add(ctx, 1, attrs)
	m.collected.Add(ctx, minorUnits(amount), attrs)
}

// InvoiceStatusChanged counts an invoice moving into status
func (m *FeeMetrics) InvoiceStatusChanged(ctx context.Context, status string) {
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(AttrInvoiceStatus.String(status)))
}

// HandoverAccepted counts an accepted handover and its amount
func (m *FeeMetrics) HandoverAccepted(ctx context.Context, amount decimal.Decimal) {
	m.handoversAccepted.Add(ctx, 1)
	m.handedOver.Add(ctx, minorUnits(amount))
}

// HandoverRejected counts a rejected handover by error code
func (m *FeeMetrics) HandoverRejected(ctx context.Context, reason string) {
	m.handoversRejected.Add(ctx, 1, metric.WithAttributes(AttrRejectReason.String(reason)))
}
