// Package browser owns the run's chromedp allocator and hands out
// bounded-lifetime derived sessions, so one hung session cannot starve
// the others.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chenmingwei23/smart-dine/internal/crawler"
)

// startupTimeout bounds the initial browser warmup. Exceeding it is fatal to
// the whole run.
const startupTimeout = 30 * time.Second

// Manager implements crawler.Browser on top of a single long-lived chromedp
// exec allocator.
type Manager struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	limiter       *rate.Limiter
	logger        *zap.Logger
	cfg           crawler.Config
	closeOnce     sync.Once
}

// New starts the automation allocator and warms up a browser process. A
// warmup failure within the startup deadline returns an error wrapping
// crawler.ErrBrowserStart.
func New(cfg crawler.Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	warmupCtx, warmupCancel := context.WithTimeout(browserCtx, startupTimeout)
	defer warmupCancel()
	if err := chromedp.Run(warmupCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: chromedp warmup: %v", crawler.ErrBrowserStart, err)
	}

	var limiter *rate.Limiter
	if cfg.NavigateQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.NavigateQPS), 1)
	}

	return &Manager{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		limiter:       limiter,
		logger:        logger,
		cfg:           cfg,
	}, nil
}

// NewSession derives a tab context with the timeout appropriate to kind.
// The session unwinds when ctx (normally the run deadline) fires, when its
// own timeout elapses, or when the returned cancel runs.
func (m *Manager) NewSession(ctx context.Context, kind crawler.SessionKind) (crawler.PageQuery, context.CancelFunc, error) {
	timeout := m.cfg.SearchTimeout
	if kind == crawler.SessionDetail {
		timeout = m.cfg.DetailTimeout
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx)
	timedCtx, timedCancel := context.WithTimeout(tabCtx, timeout)
	stopForward := forwardCancel(ctx, timedCancel)

	cancel := func() {
		stopForward()
		timedCancel()
		tabCancel()
	}
	return newPage(timedCtx, m.limiter, m.cfg.UserAgent), cancel, nil
}

// Close tears down the browser and allocator contexts. Safe to call from
// every exit path; only the first call does the teardown.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.browserCancel()
		m.allocCancel()
	})
	return nil
}

// forwardCancel propagates parent cancellation into cancel until the
// returned stop function runs.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
