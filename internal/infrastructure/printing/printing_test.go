package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/infrastructure/config"
)

type capturePrinter struct {
	html  string
	paper PaperSize
	err   error
}

func (c *capturePrinter) PrintHTML(_ context.Context, html string, paper PaperSize) ([]byte, error) {
	c.html = html
	c.paper = paper
	if c.err != nil {
		return nil, c.err
	}
	return []byte("%PDF-1.4"), nil
}

func (c *capturePrinter) Close() error { return nil }

func samplePayload() *fee.ReceiptPayload {
	return &fee.ReceiptPayload{
		Payment: fee.ReceiptPayment{
			ReceiptNumber: "RCPT-20260407-3FA85F64",
			Amount:        decimal.RequireFromString("125000.5"),
			PaidDate:      time.Date(2026, 4, 7, 9, 30, 0, 0, time.UTC),
			Method:        fee.PaymentMethodBankTransfer,
			FeeType:       "Tuition",
			TransactionID: "UTR123",
		},
		Student: fee.ReceiptStudent{Name: "Asha <Rao>", RollNumber: "17", ClassName: "Grade 5 - B"},
		School:  fee.ReceiptSchool{Name: "Green Valley School", LogoURL: "https://cdn.example.com/logo.png"},
	}
}

// ============================================================================
// Formatter
// ============================================================================

func TestFormatter_Amount(t *testing.T) {
	f := NewFormatter("en-US", "USD")
	assert.Equal(t, "USD 5,000.00", f.Amount(decimal.NewFromInt(5000)))
	assert.Equal(t, "USD 1,234,567.89", f.Amount(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "USD -12.50", f.Amount(decimal.RequireFromString("-12.5")))
	assert.Equal(t, "USD 0.00", f.Amount(decimal.Zero))

	plain := NewFormatter("en-US", "not-a-currency")
	assert.Equal(t, "20,000.00", plain.Amount(decimal.NewFromInt(20000)))
}

func TestFormatter_Label(t *testing.T) {
	f := NewFormatter("en", "INR")
	assert.Equal(t, "Bank Transfer", f.Label("BANK_TRANSFER"))
	assert.Equal(t, "Cash", f.Label("CASH"))
	assert.Equal(t, "07 Apr 2026", f.Date(time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC)))
	assert.Empty(t, f.Date(time.Time{}))
}

func TestFormatter_BadLocale(t *testing.T) {
	f := NewFormatter("??", "")
	assert.Equal(t, "1,000.00", f.Amount(decimal.NewFromInt(1000)))
}

// ============================================================================
// Paper
// ============================================================================

func TestPaperSize(t *testing.T) {
	assert.Equal(t, PaperSizeA4, ParsePaperSize("a4"))
	assert.Equal(t, PaperSizeLetter, ParsePaperSize("Letter"))
	assert.Equal(t, PaperSizeA5, ParsePaperSize("B5"))

	w, h := PaperSizeA5.Dimensions()
	assert.Equal(t, 148, w)
	assert.Equal(t, 210, h)

	p := printParamsFor(PaperSizeA4)
	assert.InDelta(t, 8.2677, p.paperWidth, 0.001)
	assert.InDelta(t, 11.6929, p.paperHeight, 0.001)
}

// ============================================================================
// ReceiptRenderer
// ============================================================================

func TestReceiptRenderer_RenderReceipt(t *testing.T) {
	printer := &capturePrinter{}
	r, err := NewReceiptRenderer(printer, config.PrintingConfig{PaperSize: "A4", Locale: "en-US", CurrencyCode: "USD"})
	require.NoError(t, err)

	pdf, err := r.RenderReceipt(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
	assert.Equal(t, PaperSizeA4, printer.paper)

	html := printer.html
	assert.Contains(t, html, "RCPT-20260407-3FA85F64")
	assert.Contains(t, html, "USD 125,000.50")
	assert.Contains(t, html, "Bank Transfer")
	assert.Contains(t, html, "Grade 5 - B")
	assert.Contains(t, html, "07 Apr 2026")
	assert.Contains(t, html, `src="https://cdn.example.com/logo.png"`)
	assert.Contains(t, html, "Asha &lt;Rao&gt;")
	assert.NotContains(t, html, "Remarks")
}

func TestReceiptRenderer_WithoutOptionalSections(t *testing.T) {
	r, err := NewReceiptRenderer(&capturePrinter{}, config.PrintingConfig{})
	require.NoError(t, err)

	payload := samplePayload()
	payload.School.LogoURL = ""
	payload.Student.ClassName = ""
	payload.Payment.FeeType = fee.GeneralFeeLabel

	html, err := r.HTML(payload)
	require.NoError(t, err)
	assert.NotContains(t, html, "<img")
	assert.NotContains(t, html, ">Class<")
	assert.Contains(t, html, "General Fee")
}

func TestReceiptRenderer_PrinterError(t *testing.T) {
	boom := NewRenderError(ErrCodeRenderTimeout, "timed out", nil)
	r, err := NewReceiptRenderer(&capturePrinter{err: boom}, config.PrintingConfig{})
	require.NoError(t, err)

	_, err = r.RenderReceipt(context.Background(), samplePayload())
	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeRenderTimeout, re.Code)
}

func TestChromedpPrinter_RejectsEmptyHTML(t *testing.T) {
	p, err := NewChromedpPrinter(config.PrintingConfig{Timeout: time.Second}, nil)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.PrintHTML(context.Background(), "   ", PaperSizeA5)
	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)
}
