package types

import "time"

// Target is a single page extraction: one URL, one field map, one provider.
type Target struct {
	ID              string            `yaml:"id" json:"id"`
	URL             string            `yaml:"url" json:"url"`
	Engine          string            `yaml:"engine,omitempty" json:"engine,omitempty"`
	Provider        string            `yaml:"provider" json:"provider"`
	Elements        map[string]string `yaml:"elements" json:"elements"`
	Prompt          string            `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Scrolls         int               `yaml:"scrolls,omitempty" json:"scrolls,omitempty"`
	WaitFor         string            `yaml:"wait_for,omitempty" json:"wait_for,omitempty"`
	UserAgent       string            `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	Timeout         string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MaxContentChars int               `yaml:"max_content_chars,omitempty" json:"max_content_chars,omitempty"`
	Cookies         []Cookie          `yaml:"cookies,omitempty" json:"cookies,omitempty"`
	Proxy           *ProxyConfig      `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

// Cookie is a browser cookie added to the context before navigation.
type Cookie struct {
	Name   string `yaml:"name" json:"name"`
	Value  string `yaml:"value" json:"value"`
	Domain string `yaml:"domain,omitempty" json:"domain,omitempty"`
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
}

// ProxyConfig selects either the hosting platform's proxy pool or a custom
// proxy list. Mirrors the platform's proxyConfiguration input object.
type ProxyConfig struct {
	UsePlatformProxy bool     `yaml:"use_platform_proxy,omitempty" json:"useApifyProxy,omitempty"`
	Groups           []string `yaml:"groups,omitempty" json:"apifyProxyGroups,omitempty"`
	Country          string   `yaml:"country,omitempty" json:"apifyProxyCountry,omitempty"`
	ProxyURLs        []string `yaml:"proxy_urls,omitempty" json:"proxyUrls,omitempty"`
}

// PageContent is what a fetcher hands to the extraction pipeline.
type PageContent struct {
	URL       string
	HTML      string
	Title     string
	FetchedAt time.Time
}

// TargetResult holds the records extracted for one target.
type TargetResult struct {
	URL       string           `json:"url"`
	Items     []map[string]any `json:"items"`
	FetchedAt time.Time        `json:"fetched_at"`
}
