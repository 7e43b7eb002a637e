package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/solvent/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "test-agent",
		MaxBodyBytes: 1_000_000,
	}
}

func TestFallbackFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q", ua)
		}
		_, _ = w.Write([]byte(`<html><head><style>.x{color:red}</style></head>
<body><h1>Question</h1><p>What is 2+2?</p>
<script>var hidden = atob("SGVsbG8=");</script>
</body></html>`))
	}))
	defer srv.Close()

	f := NewFallback(testHTTPConfig())
	defer f.Close()

	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !strings.Contains(page.VisibleText, "What is 2+2?") {
		t.Errorf("VisibleText = %q, want the question text", page.VisibleText)
	}
	if strings.Contains(page.VisibleText, "atob") || strings.Contains(page.VisibleText, "color:red") {
		t.Errorf("VisibleText leaked script/style content: %q", page.VisibleText)
	}
	if !strings.Contains(page.Scripts, "atob") {
		t.Errorf("Scripts = %q, want the script body kept aside", page.Scripts)
	}
	if page.HTML == "" || page.FullHTML == "" {
		t.Error("raw markup should be preserved")
	}
}

func TestFallbackFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFallback(testHTTPConfig())
	defer f.Close()

	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("want error for a 500 response")
	}
}

func TestFallbackFetch_RedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	f := NewFallback(testHTTPConfig())
	defer f.Close()

	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("want error after exceeding the redirect limit")
	}
}

func TestParseStatic_EmptyBody(t *testing.T) {
	page, err := parseStatic("")
	if err != nil {
		t.Fatalf("parseStatic: %v", err)
	}
	if page.VisibleText != "" {
		t.Errorf("VisibleText = %q, want empty", page.VisibleText)
	}
}
