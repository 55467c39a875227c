package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRegistry   = "https://registry.pontis.dev"
	httpClientTimeout = 30 * time.Second
	defaultUserAgent  = "pontis/0.1.0"
)

// Client downloads declaration archives for package versions from a registry
// chain.
type Client struct {
	httpClient *http.Client
	userAgent  string
	registries []string
	log        *zap.Logger
}

// NewClient creates a Client that reads the PONTIS_REGISTRY environment
// variable to determine the registry chain (comma- or pipe-separated URLs).
// If unset, it defaults to the public registry.
func NewClient(log *zap.Logger) *Client {
	chain := os.Getenv("PONTIS_REGISTRY")
	if strings.TrimSpace(chain) == "" {
		chain = defaultRegistry
	}

	normalized := strings.ReplaceAll(chain, "|", ",")
	parts := strings.Split(normalized, ",")
	registries := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			registries = append(registries, trimmed)
		}
	}

	return &Client{
		httpClient: &http.Client{Timeout: httpClientTimeout},
		userAgent:  defaultUserAgent,
		registries: registries,
		log:        log,
	}
}

// DownloadArchive fetches the declaration archive for the given package and
// version from the registry chain, returning the raw zip bytes on success.
func (c *Client) DownloadArchive(ctx context.Context, pkg, version string) ([]byte, error) {
	escaped := url.PathEscape(pkg)

	for i, registry := range c.registries {
		if registry == "off" {
			c.log.Warn("registry chain contains 'off', stopping")
			return nil, fmt.Errorf("package %s@%s not found on any registry", pkg, version)
		}

		archiveURL := fmt.Sprintf("%s/%s/-/%s.zip", registry, escaped, version)

		data, tryNext, fetchErr := c.fetch(ctx, archiveURL)
		if fetchErr == nil {
			return data, nil
		}

		if tryNext && i < len(c.registries)-1 {
			c.log.Debug("registry miss, trying next",
				zap.String("url", archiveURL), zap.Error(fetchErr))
			continue
		}

		return nil, fetchErr
	}

	return nil, fmt.Errorf("package %s@%s not found on any registry", pkg, version)
}

// fetch performs a single HTTP GET. It returns (data, tryNext, error); tryNext
// signals that the caller should attempt the next registry in the chain.
func (c *Client) fetch(ctx context.Context, archiveURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building request for %s: %w", archiveURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level error; the next registry may still respond.
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, true, fmt.Errorf("registry returned %d for %s", resp.StatusCode, archiveURL)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, archiveURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("reading response body from %s: %w", archiveURL, err)
	}

	return data, false, nil
}
