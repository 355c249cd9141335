// Package browser drives the catalog UI through Chrome with chromedp.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/artpar/catalogctl/ports"
)

// Options configures the browser.
type Options struct {
	BaseURL  string
	Headless bool
	ExecPath string // empty uses the chromedp default lookup
	Width    int
	Height   int
	Logger   zerolog.Logger
}

// Browser owns one Chrome process and one tab.
type Browser struct {
	tab         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	baseURL     string
	logger      zerolog.Logger
}

// Launch starts Chrome and opens a tab.
func Launch(opts Options) (*Browser, error) {
	width, height := opts.Width, opts.Height
	if width == 0 || height == 0 {
		width, height = 1920, 1080
	}

	alloc := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(width, height),
	)
	if opts.ExecPath != "" {
		alloc = append(alloc, chromedp.ExecPath(opts.ExecPath))
	}

	logger := opts.Logger.With().Str("component", "browser").Logger()
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), alloc...)
	tab, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		logger.Debug().Msgf(format, args...)
	}))

	// response events back ExpectResponse
	if err := chromedp.Run(tab, network.Enable()); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Browser{
		tab:         tab,
		cancel:      cancel,
		allocCancel: allocCancel,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		logger:      logger,
	}, nil
}

// Page returns the page driver for the browser's tab.
func (b *Browser) Page() *Page {
	return &Page{tab: b.tab, baseURL: b.baseURL, logger: b.logger}
}

// Close shuts the tab and the browser down.
func (b *Browser) Close() {
	b.cancel()
	b.allocCancel()
}

// Page implements ports.Page on a chromedp tab.
type Page struct {
	tab     context.Context
	baseURL string
	logger  zerolog.Logger
}

// run executes actions on the tab, bounded by ctx.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tab)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads url. Paths starting with "/" are resolved against the base URL.
func (p *Page) Navigate(ctx context.Context, url string) error {
	url = p.resolve(url)
	p.logger.Debug().Str("url", url).Msg("navigate")
	return p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Fill replaces the value of the matched input.
func (p *Page) Fill(ctx context.Context, selector, value string) error {
	by := queryBy(selector)
	return p.run(ctx,
		chromedp.WaitVisible(selector, by),
		chromedp.Clear(selector, by),
		chromedp.SendKeys(selector, value, by),
	)
}

// Click clicks the matched element once visible.
func (p *Page) Click(ctx context.Context, selector string) error {
	by := queryBy(selector)
	return p.run(ctx,
		chromedp.WaitVisible(selector, by),
		chromedp.Click(selector, by),
	)
}

// WaitVisible blocks until the selector matches a visible element.
func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.WaitVisible(selector, queryBy(selector)))
}

// WaitHidden blocks until the selector matches nothing visible, including
// when the element is removed from the document.
func (p *Page) WaitHidden(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Poll(hiddenExpr(selector), nil, chromedp.WithPollingInterval(100*time.Millisecond)))
}

// Text returns the text content of the matched element.
func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	var text string
	err := p.run(ctx, chromedp.Text(selector, &text, queryBy(selector)))
	return strings.TrimSpace(text), err
}

// ExpectResponse listens for a response whose URL satisfies match. Start it
// before the action that triggers the request. The listener ends when wait
// returns or ctx is done, whichever comes first.
func (p *Page) ExpectResponse(ctx context.Context, match func(url string) bool) func() error {
	got := make(chan int64, 1)
	listenCtx, cancel := scopeListener(p.tab, ctx)

	chromedp.ListenTarget(listenCtx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Response == nil || !match(e.Response.URL) {
			return
		}
		select {
		case got <- e.Response.Status:
		default:
		}
	})

	return func() error {
		defer cancel()
		select {
		case status := <-got:
			p.logger.Debug().Int64("status", status).Msg("response observed")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// scopeListener derives a listener context from tab that is cancelled with
// ctx or by the returned func.
func scopeListener(tab, ctx context.Context) (context.Context, context.CancelFunc) {
	listenCtx, cancel := context.WithCancel(tab)
	stop := context.AfterFunc(ctx, cancel)
	return listenCtx, func() {
		stop()
		cancel()
	}
}

func (p *Page) resolve(url string) string {
	if strings.HasPrefix(url, "/") {
		return p.baseURL + url
	}
	return url
}

// queryBy selects XPath lookup for selectors starting with "/".
func queryBy(selector string) chromedp.QueryOption {
	if strings.HasPrefix(selector, "/") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// hiddenExpr builds a JS predicate that is true when no matched element is visible.
func hiddenExpr(selector string) string {
	quoted, _ := json.Marshal(selector)
	lookup := fmt.Sprintf("document.querySelector(%s)", quoted)
	if strings.HasPrefix(selector, "/") {
		lookup = fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", quoted)
	}
	return fmt.Sprintf("(() => { const el = %s; return !el || el.offsetParent === null; })()", lookup)
}

// Ensure interface compliance.
var _ ports.Page = (*Page)(nil)
