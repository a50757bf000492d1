// Package proxy turns the platform proxy configuration from the actor input
// into a proxy server URL the browser can launch with.
package proxy

import (
	"fmt"
	"os"
	"strings"

	"github.com/pagesift/pagesift/pkg/types"
)

const (
	defaultHostname = "proxy.apify.com"
	defaultPort     = "8000"
	defaultUsername = "auto"
)

// ServerURL builds the proxy server URL for a configuration. An empty string
// means no proxy.
//
// Platform proxy URLs take the form http://<user>@<host>:<port> where the
// username encodes the session: "auto" for the shared pool, "auto+GROUP" for
// specific groups, "auto+country-XX" to pin a country. Country takes
// precedence over groups when both are set. The platform runtime supplies
// real credentials through env at run time.
func ServerURL(cfg *types.ProxyConfig) string {
	if cfg == nil {
		return ""
	}

	if cfg.UsePlatformProxy {
		hostname := envOr("ACTOR_PROXY_HOSTNAME", defaultHostname)
		port := envOr("ACTOR_PROXY_PORT", defaultPort)

		username := defaultUsername
		if len(cfg.Groups) > 0 {
			username = fmt.Sprintf("%s+%s", defaultUsername, strings.Join(cfg.Groups, "+"))
		}
		if cfg.Country != "" {
			username = fmt.Sprintf("%s+country-%s", defaultUsername, cfg.Country)
		}

		if password := os.Getenv("ACTOR_PROXY_PASSWORD"); password != "" {
			return fmt.Sprintf("http://%s:%s@%s:%s", username, password, hostname, port)
		}
		return fmt.Sprintf("http://%s@%s:%s", username, hostname, port)
	}

	if len(cfg.ProxyURLs) > 0 {
		return cfg.ProxyURLs[0]
	}

	return ""
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
