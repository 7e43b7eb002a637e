// Package browser acquires page content. The primary path renders the
// page in a headless browser so script-injected content and encoded
// payloads are visible; the fallback path is a plain HTTP fetch that
// parses but never executes anything.
package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/ppiankov/solvent/internal/model"
)

// captureScript mirrors what a reader sees plus the script bodies
// worth scanning for encoded payloads
const captureScript = `(() => {
	const bodyText = document.body ? document.body.innerText : "";
	let scriptContent = "";
	for (const script of document.querySelectorAll("script")) {
		const content = script.textContent || "";
		if (content.includes("atob(") || content.includes("base64")) {
			scriptContent += content + "\n";
		}
	}
	return {
		body_text: bodyText,
		script_content: scriptContent,
		full_html: document.documentElement.outerHTML,
	};
})()`

type capture struct {
	BodyText      string `json:"body_text"`
	ScriptContent string `json:"script_content"`
	FullHTML      string `json:"full_html"`
}

// Renderer drives one exclusively-owned headless browser session,
// reused serially across the page fetches of a single chain.
type Renderer struct {
	cfg model.BrowserConfig
	log *slog.Logger

	mu          sync.Mutex
	browserCtx  context.Context
	cancelFns   []context.CancelFunc
	initialized bool
}

// NewRenderer creates a renderer; the browser launches lazily on the
// first fetch so chains that never need rendering pay nothing.
func NewRenderer(cfg model.BrowserConfig, logger *slog.Logger) *Renderer {
	return &Renderer{cfg: cfg, log: logger}
}

func (r *Renderer) setup(ctx context.Context) error {
	if r.initialized {
		return nil
	}
	if r.cfg.Disabled {
		return errors.New("rendered acquisition disabled by configuration")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.NoSandbox,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// launch now so setup failures surface here, not mid-fetch
	startCtx, cancel := context.WithTimeout(browserCtx, r.cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return err
	}

	r.browserCtx = browserCtx
	r.cancelFns = []context.CancelFunc{cancelBrowser, cancelAlloc}
	r.initialized = true
	r.log.Info("browser session started", "headless", r.cfg.Headless)
	return nil
}

// Fetch renders the URL and captures its content. On navigation
// timeout it salvages whatever markup is loaded instead of failing.
func (r *Renderer) Fetch(ctx context.Context, pageURL string) (model.PageContent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.setup(ctx); err != nil {
		return model.PageContent{}, err
	}

	tabCtx, closeTab := chromedp.NewContext(r.browserCtx)
	defer closeTab()

	navCtx, cancel := context.WithTimeout(tabCtx, r.cfg.Timeout)
	defer cancel()

	idle := watchNetworkIdle(navCtx)

	var rendered string
	var captured capture
	err := chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		waitFor(idle),
		chromedp.Sleep(r.cfg.SettleDelay),
		chromedp.OuterHTML("html", &rendered, chromedp.ByQuery),
		chromedp.Evaluate(captureScript, &captured),
	)
	if err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			if salvaged, serr := r.salvage(tabCtx); serr == nil {
				r.log.Warn("navigation timed out, salvaged partial markup", "url", pageURL)
				return salvaged, nil
			}
		}
		return model.PageContent{}, err
	}

	return model.PageContent{
		HTML:        rendered,
		VisibleText: captured.BodyText,
		Scripts:     captured.ScriptContent,
		FullHTML:    captured.FullHTML,
	}, nil
}

// salvage grabs whatever markup the tab holds after a timeout
func (r *Renderer) salvage(tabCtx context.Context) (model.PageContent, error) {
	ctx, cancel := context.WithTimeout(tabCtx, 3*time.Second)
	defer cancel()

	var markup string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return model.PageContent{}, err
	}
	return model.PageContent{HTML: markup, FullHTML: markup}, nil
}

// Close releases the browser session. Safe to call more than once.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cancel := range r.cancelFns {
		cancel()
	}
	r.cancelFns = nil
	r.browserCtx = nil
	r.initialized = false
	return nil
}

// watchNetworkIdle returns a channel closed once no request has been
// in flight for half a second. Dynamic pages keep issuing requests
// after load; waiting for quiescence lets injected content appear.
func watchNetworkIdle(ctx context.Context) <-chan struct{} {
	idle := make(chan struct{})
	activity := make(chan int, 64)

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			select {
			case activity <- 1:
			default:
			}
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			select {
			case activity <- -1:
			default:
			}
		}
	})

	go func() {
		defer close(idle)
		inflight := 0
		quiet := time.NewTimer(500 * time.Millisecond)
		defer quiet.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case delta := <-activity:
				inflight += delta
				if inflight < 0 {
					inflight = 0
				}
				if inflight == 0 {
					quiet.Reset(500 * time.Millisecond)
				}
			case <-quiet.C:
				if inflight == 0 {
					return
				}
				quiet.Reset(500 * time.Millisecond)
			}
		}
	}()

	return idle
}

// waitFor adapts a channel into a chromedp action
func waitFor(ch <-chan struct{}) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
			return nil
		}
	})
}
