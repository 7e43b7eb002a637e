package browser

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/solvent/internal/model"
)

// Fallback fetches pages over plain HTTP and parses them without
// executing anything. It serves two roles: the acquisition fallback
// when rendering is unavailable, and the dedicated header-discovery
// re-fetch before resource gathering.
type Fallback struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewFallback creates a plain fetcher with the given HTTP settings
func NewFallback(cfg model.HTTPConfig) *Fallback {
	transport := http.DefaultTransport
	if cfg.InsecureTLS {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Fallback{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
}

// Fetch retrieves and parses the page: visible text with script/style
// stripped, raw script bodies kept aside for payload scanning.
func (f *Fallback) Fetch(ctx context.Context, pageURL string) (model.PageContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return model.PageContent{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return model.PageContent{}, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.PageContent{}, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return model.PageContent{}, fmt.Errorf("read body: %w", err)
	}

	return parseStatic(string(body))
}

// parseStatic splits raw markup into the PageContent fields
func parseStatic(markup string) (model.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return model.PageContent{}, fmt.Errorf("parse markup: %w", err)
	}

	var scripts strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if text := s.Text(); text != "" {
			scripts.WriteString(text)
			scripts.WriteString("\n")
		}
	})

	// strip scripts and styles, then read what's left as visible text
	doc.Find("script, style").Remove()
	visible := strings.TrimSpace(doc.Text())

	return model.PageContent{
		HTML:        markup,
		VisibleText: visible,
		Scripts:     scripts.String(),
		FullHTML:    markup,
	}, nil
}

// Close satisfies the acquirer teardown contract; the fallback holds
// no session state beyond idle connections.
func (f *Fallback) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
