// Package resource fetches external quiz resources and converts them
// into prompt-ready text. Only the network fetch can fail; every
// per-type handler degrades to best-effort text with a reason tag
// instead of erroring, so a malformed file never aborts a chain.
package resource

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ppiankov/solvent/internal/model"
	"github.com/ppiankov/solvent/internal/util"
	"github.com/ppiankov/solvent/internal/worker"
)

// Materializer fetches resources with per-domain rate limiting and an
// optional robots.txt politeness check.
type Materializer struct {
	client  *http.Client
	limiter *worker.Limiter
	robots  *util.Robots // nil unless politeness is enabled
	cfg     model.HTTPConfig
	log     *slog.Logger
}

// NewMaterializer creates a materializer from the HTTP configuration
func NewMaterializer(cfg model.HTTPConfig, limiter *worker.Limiter, logger *slog.Logger) *Materializer {
	transport := http.DefaultTransport
	if cfg.InsecureTLS {
		transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}

	var robots *util.Robots
	if cfg.RespectRobots {
		robots = util.NewRobots(cfg.UserAgent, cfg.Timeout)
	}

	return &Materializer{
		client:  &http.Client{Timeout: cfg.Timeout, Transport: transport},
		limiter: limiter,
		robots:  robots,
		cfg:     cfg,
		log:     logger,
	}
}

// Fetch retrieves one resource and summarizes it by content type.
// Network and HTTP failures surface as ResourceFetchError; callers
// must treat them as per-resource, not chain-fatal.
func (m *Materializer) Fetch(ctx context.Context, rawURL string, headers map[string]string) (model.Resource, error) {
	if m.robots != nil && !m.robots.Allowed(ctx, rawURL) {
		return model.Resource{}, &model.ResourceFetchError{URL: rawURL, Err: fmt.Errorf("disallowed by robots.txt")}
	}

	if err := m.limiter.Wait(ctx, rawURL); err != nil {
		return model.Resource{}, &model.ResourceFetchError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.Resource{}, &model.ResourceFetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", m.cfg.UserAgent)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return model.Resource{}, &model.ResourceFetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Resource{}, &model.ResourceFetchError{URL: rawURL, Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, m.cfg.MaxBodyBytes))
	if err != nil {
		return model.Resource{}, &model.ResourceFetchError{URL: rawURL, Err: err}
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	return m.summarize(content, contentType, rawURL), nil
}

// summarize dispatches by declared content type first, URL extension
// second; unmatched content falls through to an extension-only pass
// and finally to plain-text handling.
func (m *Materializer) summarize(content []byte, contentType, rawURL string) model.Resource {
	lower := strings.ToLower(rawURL)

	switch {
	case strings.Contains(contentType, "csv") || strings.HasSuffix(lower, ".csv"):
		return summarizeCSV(content)
	case strings.Contains(contentType, "pdf") || strings.HasSuffix(lower, ".pdf"):
		return summarizePDF(content)
	case strings.Contains(contentType, "json") || strings.HasSuffix(lower, ".json"):
		return summarizeJSON(content)
	case strings.Contains(contentType, "spreadsheet") || strings.Contains(contentType, "excel") ||
		strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
		return summarizeSpreadsheet(content)
	case strings.Contains(contentType, "image") || hasAnySuffix(lower, ".png", ".jpg", ".jpeg", ".gif"):
		return summarizeImage(content)
	case strings.Contains(contentType, "html") || strings.HasSuffix(lower, ".html") ||
		strings.Contains(lower, "/table-page") || strings.Contains(lower, "/secret-page"):
		return summarizeHTML(content, rawURL)
	case strings.Contains(contentType, "xml") || strings.HasSuffix(lower, ".xml"):
		return summarizeXML(content)
	case strings.Contains(contentType, "text") || strings.HasSuffix(lower, ".txt"):
		return summarizeText(content)
	}

	// second pass on extension alone for servers with lazy headers
	switch {
	case hasAnySuffix(lower, ".xlsx", ".xls"):
		return summarizeSpreadsheet(content)
	case hasAnySuffix(lower, ".png", ".jpg", ".jpeg", ".gif", ".bmp"):
		return summarizeImage(content)
	}
	return summarizeText(content)
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// Close releases idle connections held by the fetch client
func (m *Materializer) Close() error {
	m.client.CloseIdleConnections()
	return nil
}
