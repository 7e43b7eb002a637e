package submit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/solvent/internal/model"
	"github.com/ppiankov/solvent/internal/worker"
)

func newTestSubmitter() *Submitter {
	return NewSubmitter(
		model.HTTPConfig{Timeout: 5 * time.Second},
		worker.NewLimiter(1000, 1000),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestSubmit_Success(t *testing.T) {
	var received model.Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"correct": true, "url": "https://q/next"}`))
	}))
	defer srv.Close()

	s := newTestSubmitter()
	defer s.Close()

	verdict, err := s.Submit(context.Background(), "a@b.c", "sec", "https://q/page1", int64(42), srv.URL)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !verdict.Correct || verdict.URL != "https://q/next" {
		t.Errorf("verdict = %+v", verdict)
	}
	// the body must carry the quiz page URL, not the submit target
	if received.URL != "https://q/page1" {
		t.Errorf("submitted URL = %q, want the page URL", received.URL)
	}
	if received.Answer != float64(42) {
		t.Errorf("submitted answer = %v", received.Answer)
	}
}

func TestSubmit_PlainTextResponseDegrades(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"contains correct", "Well done, that is Correct!", true},
		{"plain rejection", "try again", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := newTestSubmitter()
			defer s.Close()

			verdict, err := s.Submit(context.Background(), "a@b.c", "sec", "https://q/p", "x", srv.URL)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if verdict.Correct != tt.want {
				t.Errorf("Correct = %v, want %v", verdict.Correct, tt.want)
			}
			if verdict.URL != "" {
				t.Errorf("URL = %q, want empty for non-JSON responses", verdict.URL)
			}
		})
	}
}

func TestSubmit_Non200IsNegativeVerdictNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := newTestSubmitter()
	defer s.Close()

	verdict, err := s.Submit(context.Background(), "a@b.c", "sec", "https://q/p", "x", srv.URL)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if verdict.Correct {
		t.Error("non-200 should read as wrong")
	}
	if !strings.Contains(verdict.Reason, "HTTP 429") {
		t.Errorf("Reason = %q, want status code", verdict.Reason)
	}
}

func TestSubmit_OversizedPayloadNeverHitsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	s := newTestSubmitter()
	defer s.Close()

	// JSON-escaped this stays above the 1MB gate even after truncation
	huge := strings.Repeat(`"`, 600_000)
	verdict, err := s.Submit(context.Background(), "a@b.c", "sec", "https://q/p", huge, srv.URL)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if verdict.Correct {
		t.Error("oversized payload should read as wrong")
	}
	if !strings.Contains(verdict.Reason, "1MB") {
		t.Errorf("Reason = %q, want the size limit named", verdict.Reason)
	}
	if hits.Load() != 0 {
		t.Errorf("server hits = %d, want 0", hits.Load())
	}
}

func TestSubmit_HugeStringTruncated(t *testing.T) {
	var received model.Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`{"correct": false}`))
	}))
	defer srv.Close()

	s := newTestSubmitter()
	defer s.Close()

	huge := strings.Repeat("a", 600_000)
	if _, err := s.Submit(context.Background(), "a@b.c", "sec", "https://q/p", huge, srv.URL); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got, _ := received.Answer.(string)
	if len(got) > maxAnswerBytes+20 {
		t.Errorf("answer length = %d, want truncation near %d", len(got), maxAnswerBytes)
	}
	if !strings.HasSuffix(got, "...[truncated]") {
		t.Error("truncated answer should carry the marker")
	}
}

func TestSubmit_RetriesTransportFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			// kill the connection mid-response
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("hijacking unsupported")
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		_, _ = w.Write([]byte(`{"correct": true}`))
	}))
	defer srv.Close()

	s := newTestSubmitter()
	defer s.Close()

	verdict, err := s.Submit(context.Background(), "a@b.c", "sec", "https://q/p", "x", srv.URL)
	if err != nil {
		t.Fatalf("Submit after retries: %v", err)
	}
	if !verdict.Correct {
		t.Errorf("verdict = %+v, want success on third attempt", verdict)
	}
	if hits.Load() != 3 {
		t.Errorf("attempts = %d, want 3", hits.Load())
	}
}

func TestSubmit_ExhaustionReturnsSubmissionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj := w.(http.Hijacker)
		conn, _, _ := hj.Hijack()
		conn.Close()
	}))
	defer srv.Close()

	s := newTestSubmitter()
	defer s.Close()

	_, err := s.Submit(context.Background(), "a@b.c", "sec", "https://q/p", "x", srv.URL)

	var subErr *model.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("err = %v, want SubmissionError after exhausting retries", err)
	}
	if !strings.Contains(err.Error(), srv.URL) {
		t.Errorf("err = %v, want the submit URL named", err)
	}
}
