package fetchers

import (
	"fmt"
	"net/http"
	"net/url"
)

func proxyTransport(server string) (*http.Transport, error) {
	proxyURL, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy server URL %q: %w", server, err)
	}
	return &http.Transport{Proxy: http.ProxyURL(proxyURL)}, nil
}
