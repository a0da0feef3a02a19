package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
var pathPatterns = []*PathPattern{
	// Watch routes with IDs
	{Pattern: regexp.MustCompile(`^/watches/` + uuidPattern + `$`), Template: "/watches/:id"},
	{Pattern: regexp.MustCompile(`^/watches/` + uuidPattern + `/alerts$`), Template: "/watches/:id/alerts"},
	{Pattern: regexp.MustCompile(`^/watches/` + uuidPattern + `/refresh$`), Template: "/watches/:id/refresh"},
	{Pattern: regexp.MustCompile(`^/watches/` + uuidPattern + `/news$`), Template: "/watches/:id/news"},

	// News routes with IDs
	{Pattern: regexp.MustCompile(`^/news/` + uuidPattern + `/read$`), Template: "/news/:id/read"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /watches/{uuid}) to template format (e.g., /watches/:id).
// Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/watches/0b7f7a8e-...")        // "/watches/:id"
//	NormalizePath("/watches/0b7f7a8e-.../news")   // "/watches/:id/news"
//	NormalizePath("/news/0b7f7a8e-.../read")      // "/news/:id/read"
//	NormalizePath("/watches")                     // "/watches" (unchanged)
//	NormalizePath("/health")                      // "/health" (unchanged)
//
// Query parameters and trailing slashes are stripped first.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// ルート以外の末尾スラッシュを除去
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization: the template routes plus the static endpoints
// (/watches, /health, /health/ready, /metrics, ...).
func GetExpectedCardinality() int {
	staticCount := 6
	return len(pathPatterns) + staticCount
}
