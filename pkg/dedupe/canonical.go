package dedupe

import (
	"net/url"
	"strings"
)

// trackingParams are removed from query strings, compared case-insensitively.
var trackingParams = map[string]struct{}{
	// UTM family
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	// ad platform click ids
	"gclid":   {},
	"fbclid":  {},
	"msclkid": {},
	"yclid":   {},
	// email campaigns
	"mc_cid": {},
	"mc_eid": {},
	// generic
	"ref": {},
	"src": {},
}

// IsTrackingParam reports whether key is stripped by CanonicalURL.
func IsTrackingParam(key string) bool {
	_, ok := trackingParams[strings.ToLower(key)]
	return ok
}

// CanonicalURL strips tracking query parameters from rawURL and re-encodes the
// remaining parameters sorted by key. Scheme and host are lower-cased.
// Blank, relative or malformed URLs are returned unchanged.
func CanonicalURL(rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return rawURL
	}

	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return rawURL
	}
	for key := range query {
		if IsTrackingParam(key) {
			query.Del(key)
		}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = query.Encode()
	u.ForceQuery = false
	return u.String()
}
