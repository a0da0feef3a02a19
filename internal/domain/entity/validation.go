package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength caps stored URLs; longer values are rejected outright.
const maxURLLength = 2048

// checkHTTPURL requires an absolute http(s) URL with a host.
func checkHTTPURL(field, raw string) error {
	switch {
	case raw == "":
		return &ValidationError{Field: field, Message: "is required"}
	case len(raw) > maxURLLength:
		return &ValidationError{Field: field, Message: fmt.Sprintf("must not exceed %d characters", maxURLLength)}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: field, Message: "is not a valid URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: field, Message: "must use http or https"}
	}
	if u.Host == "" {
		return &ValidationError{Field: field, Message: "must have a host"}
	}
	return nil
}

// Validate reports whether a crawled article can be stored. Crawlers return
// whatever they scraped, so blank titles and relative links end up here.
func (a RawArticle) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	return checkHTTPURL("url", strings.TrimSpace(a.URL))
}
