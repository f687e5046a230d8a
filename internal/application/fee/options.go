// Package fee holds the fee ledger use cases: fee structures, invoices,
// payments, cash handovers and receipts.
package fee

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Metrics receives fee ledger business events
type Metrics interface {
	PaymentRecorded(ctx context.Context, method string, amount decimal.Decimal)
	InvoiceStatusChanged(ctx context.Context, status string)
	HandoverAccepted(ctx context.Context, amount decimal.Decimal)
	HandoverRejected(ctx context.Context, reason string)
}

type nopMetrics struct{}

func (nopMetrics) PaymentRecorded(context.Context, string, decimal.Decimal) {}
func (nopMetrics) InvoiceStatusChanged(context.Context, string)             {}
func (nopMetrics) HandoverAccepted(context.Context, decimal.Decimal)        {}
func (nopMetrics) HandoverRejected(context.Context, string)                 {}

// Option configures the ambient collaborators shared by every fee service
type Option func(*base)

type base struct {
	now     func() time.Time
	logger  *zap.Logger
	metrics Metrics
}

func newBase(logger *zap.Logger, opts []Option) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := base{
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// WithClock replaces the wall clock used to stamp entities and derive statuses
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithMetrics sets the business metrics sink
func WithMetrics(m Metrics) Option {
	return func(b *base) {
		if m != nil {
			b.metrics = m
		}
	}
}
