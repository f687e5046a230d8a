// Package printing renders fee receipts to PDF.
//
// A ReceiptRenderer turns a fee.ReceiptPayload into HTML with html/template and
// hands the document to an HTMLPrinter. ChromedpPrinter is the production
// printer and drives headless Chrome over the DevTools protocol:
//
//	printer, err := NewChromedpPrinter(cfg.Printing, logger)
//	if err != nil {
//	    return err
//	}
//	defer printer.Close()
//
//	renderer, err := NewReceiptRenderer(printer, cfg.Printing)
//	pdf, err := renderer.RenderReceipt(ctx, payload)
package printing
