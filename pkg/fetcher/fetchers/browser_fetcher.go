package fetchers

import (
	"context"
	"fmt"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/pagesift/pagesift/pkg/fetcher"
	"github.com/pagesift/pagesift/pkg/proxy"
	"github.com/pagesift/pagesift/pkg/types"
)

const (
	defaultNavigationTimeout = 60 * time.Second
	scrollPause              = 1000 // ms between scroll steps
)

// stealthScript masks the most common headless tells before any page script
// runs. Sites with real bot defenses need the platform proxy on top of this.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3] });
`

// BrowserFetcher renders a target with headless chromium. Each Fetch launches
// its own browser so a crashed page never poisons a later target.
type BrowserFetcher struct {
	TargetCtx types.ExecutionContext
}

func init() {
	fetcher.RegisterFetcherFactory("browser", func(ctx types.ExecutionContext) (fetcher.PageFetcher, error) {
		return &BrowserFetcher{TargetCtx: ctx}, nil
	})
}

func (bf *BrowserFetcher) Validate() error {
	target := bf.TargetCtx.Target

	if err := validateCommonTarget(target); err != nil {
		return err
	}

	if target.Scrolls < 0 {
		return fmt.Errorf("target %q: scrolls must not be negative", target.ID)
	}

	for i, cookie := range target.Cookies {
		if cookie.Name == "" {
			return fmt.Errorf("target %q: cookies[%d] is missing 'name'", target.ID, i)
		}
	}

	return nil
}

func (bf *BrowserFetcher) Fetch(ctx context.Context) (*types.PageContent, error) {
	target := bf.TargetCtx.Target
	logger := bf.TargetCtx.Logger

	timeout := defaultNavigationTimeout
	if target.Timeout != "" {
		parsed, err := time.ParseDuration(target.Timeout)
		if err != nil {
			logger.Warn().Err(err).Str("timeout", target.Timeout).Msg("Failed to parse timeout duration, using default")
		} else {
			timeout = parsed
		}
	}

	// The timeout bounds the whole fetch, not just navigation: driver start,
	// launch, scrolling, and content capture all count against it.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runtime, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright driver: %w", err)
	}
	defer runtime.Stop()

	launchOpts := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(true),
	}
	if server := proxy.ServerURL(target.Proxy); server != "" {
		logger.Info().Str("proxy_server", server).Msg("Launching browser with proxy")
		launchOpts.Proxy = &pw.Proxy{Server: server}
	}

	browser, err := runtime.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("launching chromium: %w", err)
	}
	defer browser.Close()

	contextOpts := pw.BrowserNewContextOptions{}
	if target.UserAgent != "" {
		contextOpts.UserAgent = pw.String(target.UserAgent)
	}
	browserCtx, err := browser.NewContext(contextOpts)
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	defer browserCtx.Close()

	if len(target.Cookies) > 0 {
		if err := browserCtx.AddCookies(toPlaywrightCookies(target.URL, target.Cookies)); err != nil {
			return nil, fmt.Errorf("adding cookies to browser context: %w", err)
		}
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()

	if err := page.AddInitScript(pw.Script{Content: pw.String(stealthScript)}); err != nil {
		return nil, fmt.Errorf("installing stealth init script: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info().Str("url", target.URL).Msg("Navigating to page")
	if _, err := page.Goto(target.URL, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateNetworkidle,
		Timeout:   pw.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("navigating to %q: %w", target.URL, err)
	}

	if target.WaitFor != "" {
		logger.Debug().Str("selector", target.WaitFor).Msg("Waiting for selector")
		if _, err := page.WaitForSelector(target.WaitFor, pw.PageWaitForSelectorOptions{
			Timeout: pw.Float(float64(timeout.Milliseconds())),
		}); err != nil {
			return nil, fmt.Errorf("waiting for selector %q on %q: %w", target.WaitFor, target.URL, err)
		}
	}

	for i := 0; i < target.Scrolls; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight)"); err != nil {
			logger.Warn().Err(err).Int("scroll", i+1).Msg("Scroll step failed, continuing")
			break
		}
		page.WaitForTimeout(scrollPause)
	}
	if target.Scrolls > 0 {
		logger.Debug().Int("scrolls", target.Scrolls).Msg("Finished scrolling page")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("reading page content for %q: %w", target.URL, err)
	}

	title, err := page.Title()
	if err != nil {
		title = ""
	}

	return &types.PageContent{
		URL:       target.URL,
		HTML:      html,
		Title:     title,
		FetchedAt: time.Now(),
	}, nil
}

// toPlaywrightCookies converts job cookies. Playwright requires either a
// domain+path pair or a URL per cookie; cookies without a domain inherit the
// target URL.
func toPlaywrightCookies(targetURL string, cookies []types.Cookie) []pw.OptionalCookie {
	out := make([]pw.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		oc := pw.OptionalCookie{
			Name:  c.Name,
			Value: c.Value,
		}
		if c.Domain != "" {
			oc.Domain = pw.String(c.Domain)
			path := c.Path
			if path == "" {
				path = "/"
			}
			oc.Path = pw.String(path)
		} else {
			oc.URL = pw.String(targetURL)
		}
		out = append(out, oc)
	}
	return out
}
