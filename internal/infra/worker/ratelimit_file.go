package worker

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"stocknews-notifier/internal/usecase/crawl"
)

// rateLimitFile is the YAML layout of RATE_LIMIT_OVERRIDES_FILE:
//
//	hosts:
//	  finance.yahoo.com:
//	    requests_per_second: 0.5
//	    requests_per_minute: 6
type rateLimitFile struct {
	Hosts map[string]crawl.RateLimitSettings `yaml:"hosts"`
}

// FileRateLimits is a crawl.RateLimitSource backed by a YAML overrides file.
// The file is re-read whenever its modification time changes, so edits
// apply to the next crawl job without a restart.
type FileRateLimits struct {
	path     string
	defaults crawl.RateLimitSettings

	mu      sync.Mutex
	modTime time.Time
	hosts   map[string]crawl.RateLimitSettings
}

// NewFileRateLimits creates a source reading overrides from path. An empty
// path yields the defaults for every host.
func NewFileRateLimits(path string, defaults crawl.RateLimitSettings) *FileRateLimits {
	return &FileRateLimits{path: path, defaults: defaults}
}

// RateLimits implements crawl.RateLimitSource. When the file cannot be read
// or parsed the last good overrides are returned together with the error.
func (f *FileRateLimits) RateLimits(_ context.Context) (crawl.RateLimits, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.path == "" {
		return crawl.RateLimits{Default: f.defaults}, nil
	}

	err := f.reloadLocked()
	return crawl.RateLimits{Default: f.defaults, Hosts: f.hosts}, err
}

func (f *FileRateLimits) reloadLocked() error {
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("stat rate limit overrides: %w", err)
	}
	if f.hosts != nil && info.ModTime().Equal(f.modTime) {
		return nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read rate limit overrides: %w", err)
	}
	hosts, err := parseRateLimitOverrides(data)
	if err != nil {
		return err
	}

	f.hosts = hosts
	f.modTime = info.ModTime()
	return nil
}

func parseRateLimitOverrides(data []byte) (map[string]crawl.RateLimitSettings, error) {
	var file rateLimitFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rate limit overrides: %w", err)
	}

	hosts := make(map[string]crawl.RateLimitSettings, len(file.Hosts))
	for host, s := range file.Hosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			continue
		}
		if s.RequestsPerSecond < 0 || s.RequestsPerMinute < 0 {
			return nil, fmt.Errorf("parse rate limit overrides: negative rate for %s", host)
		}
		hosts[host] = s
	}
	return hosts, nil
}
