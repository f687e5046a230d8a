package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/schoolfee/backend/internal/infrastructure/config"
)

const (
	defaultChromeTimeout = 30 * time.Second
	receiptMarginMM      = 8
)

// ChromedpPrinter prints HTML with a shared headless Chrome allocator.
// Each job gets its own browser tab; MaxConcurrent bounds how many run at once.
type ChromedpPrinter struct {
	timeout     time.Duration
	logger      *zap.Logger
	slots       *semaphore.Weighted
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpPrinter prepares the Chrome allocator. Chrome itself starts lazily
// on the first print.
func NewChromedpPrinter(cfg config.PrintingConfig, logger *zap.Logger) (*ChromedpPrinter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultChromeTimeout
	}
	slots := cfg.MaxConcurrent
	if slots <= 0 {
		slots = 1
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpPrinter{
		timeout:     timeout,
		logger:      logger,
		slots:       semaphore.NewWeighted(int64(slots)),
		allocCtx:    allocCtx,
		allocCancel: cancel,
	}, nil
}

// PrintHTML renders html to a PDF on the given paper
func (p *ChromedpPrinter) PrintHTML(ctx context.Context, html string, paper PaperSize) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "timed out waiting for a print slot", err)
	}
	defer p.slots.Release(1)

	start := time.Now()
	tabCtx, tabCancel := chromedp.NewContext(p.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			p.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()
	// stop the tab when the caller's deadline passes
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	params := printParamsFor(paper)
	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.margin).
				WithMarginRight(params.margin).
				WithMarginBottom(params.margin).
				WithMarginLeft(params.margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", p.timeout), err)
		}
		p.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	p.logger.Debug("Receipt PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.String("paper", string(paper)),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

// Close shuts the browser down
func (p *ChromedpPrinter) Close() error {
	if p.allocCancel != nil {
		p.allocCancel()
	}
	return nil
}

type printParams struct {
	paperWidth  float64
	paperHeight float64
	margin      float64
}

// printParamsFor converts paper dimensions to the inches Chrome expects
func printParamsFor(paper PaperSize) printParams {
	w, h := paper.Dimensions()
	return printParams{
		paperWidth:  mmToInches(float64(w)),
		paperHeight: mmToInches(float64(h)),
		margin:      mmToInches(receiptMarginMM),
	}
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ HTMLPrinter = (*ChromedpPrinter)(nil)
