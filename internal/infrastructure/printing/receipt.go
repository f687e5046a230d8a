package printing

import (
	"bytes"
	"context"
	"embed"
	"html/template"

	feeapp "github.com/schoolfee/backend/internal/application/fee"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/infrastructure/config"
)

//go:embed templates/receipt.html
var templateFS embed.FS

var _ feeapp.ReceiptRenderer = (*ReceiptRenderer)(nil)

// ReceiptRenderer prints fee receipts
type ReceiptRenderer struct {
	printer HTMLPrinter
	tmpl    *template.Template
	format  *Formatter
	paper   PaperSize
}

// NewReceiptRenderer parses the receipt template
func NewReceiptRenderer(printer HTMLPrinter, cfg config.PrintingConfig) (*ReceiptRenderer, error) {
	f := NewFormatter(cfg.Locale, cfg.CurrencyCode)
	tmpl, err := template.New("receipt.html").Funcs(template.FuncMap{
		"amount": f.Amount,
		"date":   f.Date,
		"label":  func(m fee.PaymentMethod) string { return f.Label(string(m)) },
	}).ParseFS(templateFS, "templates/receipt.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplate, "failed to parse receipt template", err)
	}
	return &ReceiptRenderer{
		printer: printer,
		tmpl:    tmpl,
		format:  f,
		paper:   ParsePaperSize(cfg.PaperSize),
	}, nil
}

// HTML renders the receipt document without printing it
func (r *ReceiptRenderer) HTML(payload *fee.ReceiptPayload) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, payload); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to execute receipt template", err)
	}
	return buf.String(), nil
}

// RenderReceipt renders payload and prints it to PDF
func (r *ReceiptRenderer) RenderReceipt(ctx context.Context, payload *fee.ReceiptPayload) ([]byte, error) {
	html, err := r.HTML(payload)
	if err != nil {
		return nil, err
	}
	return r.printer.PrintHTML(ctx, html, r.paper)
}
