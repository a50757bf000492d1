package fetchers

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pagesift/pagesift/pkg/types"
)

// validateCommonTarget covers the checks every engine needs: a well-formed
// http(s) URL and, when set, a parseable timeout.
func validateCommonTarget(target types.Target) error {
	if target.URL == "" {
		return fmt.Errorf("target %q must define 'url'", target.ID)
	}

	parsed, err := url.Parse(target.URL)
	if err != nil {
		return fmt.Errorf("target %q: invalid url %q: %w", target.ID, target.URL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("target %q: url %q must use http or https", target.ID, target.URL)
	}

	if target.Timeout != "" {
		if _, err := time.ParseDuration(target.Timeout); err != nil {
			return fmt.Errorf("target %q: invalid timeout %q: %w", target.ID, target.Timeout, err)
		}
	}

	return nil
}
