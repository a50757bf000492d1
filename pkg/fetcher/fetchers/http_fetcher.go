package fetchers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pagesift/pagesift/pkg/fetcher"
	"github.com/pagesift/pagesift/pkg/proxy"
	"github.com/pagesift/pagesift/pkg/types"
)

const (
	defaultHttpTimeout = 30 * time.Second
	defaultUserAgent   = "Pagesift-Http-Client/1.0"
)

// HttpFetcher grabs a target with a plain GET. For pages that render
// server-side it skips the whole browser launch; anything that needs
// JavaScript belongs on the browser engine.
type HttpFetcher struct {
	TargetCtx types.ExecutionContext
}

func init() {
	fetcher.RegisterFetcherFactory("http", func(ctx types.ExecutionContext) (fetcher.PageFetcher, error) {
		return &HttpFetcher{TargetCtx: ctx}, nil
	})
}

func (hf *HttpFetcher) Validate() error {
	target := hf.TargetCtx.Target

	if err := validateCommonTarget(target); err != nil {
		return err
	}

	if target.Scrolls > 0 {
		return fmt.Errorf("target %q: 'scrolls' requires the browser engine", target.ID)
	}
	if target.WaitFor != "" {
		return fmt.Errorf("target %q: 'wait_for' requires the browser engine", target.ID)
	}

	return nil
}

func (hf *HttpFetcher) Fetch(ctx context.Context) (*types.PageContent, error) {
	target := hf.TargetCtx.Target
	logger := hf.TargetCtx.Logger

	timeout := defaultHttpTimeout
	if target.Timeout != "" {
		parsedDuration, err := time.ParseDuration(target.Timeout)
		if err != nil {
			logger.Warn().Err(err).Str("timeout", target.Timeout).Msg("Failed to parse timeout duration, using default")
		} else {
			timeout = parsedDuration
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request for %q: %w", target.URL, err)
	}

	userAgent := target.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	for _, cookie := range target.Cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value, Path: cookie.Path})
	}

	client := &http.Client{}
	if server := proxy.ServerURL(target.Proxy); server != "" {
		transport, err := proxyTransport(server)
		if err != nil {
			return nil, err
		}
		client.Transport = transport
	}

	logger.Info().Str("url", target.URL).Msg("Fetching page over HTTP")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", target.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body from %q: %w", target.URL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().Int("status_code", resp.StatusCode).Str("url", target.URL).Msg("Received non-success HTTP response (non-2xx)")
	}

	html := string(body)
	if strings.ToValidUTF8(html, "") != html {
		return nil, fmt.Errorf("response body from %q is not valid UTF-8 text", target.URL)
	}

	return &types.PageContent{
		URL:       target.URL,
		HTML:      html,
		FetchedAt: time.Now(),
	}, nil
}
