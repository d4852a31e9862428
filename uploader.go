package noteslatex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// settleWindow is how long the network must stay quiet after the load
// event before navigation counts as settled.
const settleWindow = 500 * time.Millisecond

// pollInterval is how often the result region is checked for visibility.
const pollInterval = 250 * time.Millisecond

// Uploader drives the conversion site through a browser: upload an image,
// trigger the conversion, wait for the rendered LaTeX, scrape it back out.
//
// An Uploader manages one browser instance that is reused across
// submissions. It is safe for concurrent use, though conversions are
// typically run one at a time to stay polite to the service.
//
// Call [Uploader.Close] when the Uploader is no longer needed to release
// browser resources.
type Uploader struct {
	cfg           uploaderConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Submitter is the seam between the batch pipeline and the browser: one
// image in, its scraped conversion result out. [Uploader] is the production
// implementation; tests substitute stubs so the pipeline can run without a
// browser or the external service.
type Submitter interface {
	Submit(ctx context.Context, imagePath string) (*Result, error)
}

// NewUploader creates an Uploader with the given options.
//
// It starts the browser eagerly so startup errors surface here rather than
// on the first submission. By default the browser window is visible; use
// [WithHeadless] to hide it. The caller must call [Uploader.Close] when
// finished.
func NewUploader(opts ...Option) (*Uploader, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if _, err := url.ParseRequestURI(cfg.targetURL); err != nil {
		return nil, fmt.Errorf("noteslatex: invalid target URL %q: %w", cfg.targetURL, err)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("noteslatex: starting browser: %w", err)
	}

	return &Uploader{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Uploader, including the browser
// process. Close is idempotent.
func (u *Uploader) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return nil
	}
	u.closed = true
	u.browserCancel()
	u.allocCancel()
	return nil
}

// Submit runs one image through the conversion page in a fresh tab:
// navigate and let the network settle, attach the file, click the submit
// control, wait for the result region to become visible, and scrape it.
//
// Navigation and form interaction are bounded by the navigation timeout;
// the wait for the result by the result timeout, after which Submit returns
// [ErrResultTimeout]. Any error leaves the Uploader usable for the next
// submission.
func (u *Uploader) Submit(ctx context.Context, imagePath string) (*Result, error) {
	if err := u.checkClosed(); err != nil {
		return nil, err
	}

	// DOM.setFileInputFiles requires an absolute path.
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return nil, fmt.Errorf("noteslatex: resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("noteslatex: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(u.browserCtx)
	defer tabCancel()

	// Tear the tab down if the caller's context ends first.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	if err := u.loadAndSubmit(tabCtx, abs); err != nil {
		return nil, err
	}

	html, err := u.awaitResult(tabCtx)
	if err != nil {
		return nil, err
	}
	return &Result{html: html, text: resultText(html)}, nil
}

// loadAndSubmit performs steps 1-3 of a submission under the navigation
// timeout: fresh navigation with network settle, file attach, submit click.
func (u *Uploader) loadAndSubmit(tabCtx context.Context, imagePath string) error {
	ctx, cancel := stepCtx(tabCtx, u.cfg.navTimeout)
	defer cancel()

	// The watcher must listen before Navigate to count the document request.
	watcher := newNetworkWatcher(ctx)
	if err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.Navigate(u.cfg.targetURL),
	); err != nil {
		return fmt.Errorf("noteslatex: navigating to %s: %w", u.cfg.targetURL, err)
	}
	if err := watcher.waitIdle(ctx, settleWindow); err != nil {
		return fmt.Errorf("noteslatex: waiting for %s to settle: %w", u.cfg.targetURL, err)
	}

	if err := chromedp.Run(ctx,
		chromedp.SetUploadFiles(u.cfg.selectors.FileInput, []string{imagePath}, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("noteslatex: attaching %s: %w", filepath.Base(imagePath), err)
	}
	fmt.Fprintln(u.cfg.progress, "  ✓ File uploaded")

	if err := chromedp.Run(ctx,
		chromedp.Click(u.cfg.selectors.Submit, chromedp.BySearch, chromedp.NodeVisible),
	); err != nil {
		return fmt.Errorf("noteslatex: clicking submit control: %w", err)
	}
	fmt.Fprintln(u.cfg.progress, "  ⏳ Waiting for conversion...")
	return nil
}

// awaitResult polls until some element matching the result selector group
// is visible and returns its outer HTML, bounded by the result timeout.
func (u *Uploader) awaitResult(tabCtx context.Context) (string, error) {
	ctx, cancel := stepCtx(tabCtx, u.cfg.resultTimeout)
	defer cancel()

	expr := visibleResultJS(u.cfg.selectors.Result)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var html string
		if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &html)); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", ErrResultTimeout
			}
			return "", fmt.Errorf("noteslatex: reading result region: %w", err)
		}
		if html != "" {
			return html, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", ErrResultTimeout
			}
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (u *Uploader) checkClosed() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrClosed
	}
	return nil
}

// stepCtx bounds one submission step when d is positive.
func stepCtx(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}

// visibleResultJS builds a JS expression evaluating to the outer HTML of
// the first visible element matching the selector group, or "" while none
// is visible.
func visibleResultJS(selector string) string {
	sel, _ := json.Marshal(selector)
	return fmt.Sprintf(`(() => {
	for (const el of document.querySelectorAll(%s)) {
		const style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') {
			continue;
		}
		if (el.offsetWidth > 0 || el.offsetHeight > 0 || el.getClientRects().length > 0) {
			return el.outerHTML;
		}
	}
	return "";
})()`, sel)
}

// networkWatcher tracks in-flight requests on one tab so navigation can
// wait for the network to go quiet.
type networkWatcher struct {
	mu      sync.Mutex
	pending map[network.RequestID]struct{}
	last    time.Time
}

func newNetworkWatcher(ctx context.Context) *networkWatcher {
	w := &networkWatcher{
		pending: make(map[network.RequestID]struct{}),
		last:    time.Now(),
	}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		w.mu.Lock()
		defer w.mu.Unlock()
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			w.pending[e.RequestID] = struct{}{}
			w.last = time.Now()
		case *network.EventLoadingFinished:
			delete(w.pending, e.RequestID)
			w.last = time.Now()
		case *network.EventLoadingFailed:
			delete(w.pending, e.RequestID)
			w.last = time.Now()
		case *network.EventRequestServedFromCache:
			delete(w.pending, e.RequestID)
			w.last = time.Now()
		}
	})
	return w
}

// waitIdle blocks until no request has been in flight for at least quiet,
// or ctx ends.
func (w *networkWatcher) waitIdle(ctx context.Context, quiet time.Duration) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.mu.Lock()
			idle := len(w.pending) == 0 && time.Since(w.last) >= quiet
			w.mu.Unlock()
			if idle {
				return nil
			}
		}
	}
}

// --- Package-level convenience functions ---

// SubmitFile converts a single image using a temporary [Uploader]. This is
// convenient for one-off conversions. For a batch, create an [Uploader]
// with [NewUploader] to reuse the browser instance across items.
func SubmitFile(ctx context.Context, imagePath string, opts ...Option) (*Result, error) {
	up, err := NewUploader(opts...)
	if err != nil {
		return nil, err
	}
	defer up.Close()
	return up.Submit(ctx, imagePath)
}
