// Package submit posts candidate answers to scoring endpoints and
// parses their verdicts.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/solvent/internal/model"
	"github.com/ppiankov/solvent/internal/worker"
)

const (
	// scoring endpoints reject bodies of 1MB and up; the gate runs
	// locally so an oversized answer never even hits the network
	maxPayloadBytes = 1_000_000
	// string answers are truncated before the gate
	maxAnswerBytes = 500_000

	maxAttempts = 3
	retryDelay  = time.Second
)

// Submitter posts answers with bounded retries on transport failure
type Submitter struct {
	client  *http.Client
	limiter *worker.Limiter
	log     *slog.Logger
}

// NewSubmitter creates a submitter sharing the chain's rate limiter
func NewSubmitter(cfg model.HTTPConfig, limiter *worker.Limiter, logger *slog.Logger) *Submitter {
	return &Submitter{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     logger,
	}
}

// Submit posts the answer to submitURL. The submission body carries
// the quiz page URL (chainURL), never the submit target. Transport
// failures retry with fixed backoff; exhaustion propagates the last
// error so the chain can treat the page as fatal.
func (s *Submitter) Submit(ctx context.Context, email, secret, chainURL string, answer any, submitURL string) (model.Verdict, error) {
	submission := model.Submission{
		Email:  email,
		Secret: secret,
		URL:    chainURL,
		Answer: truncateAnswer(answer),
	}

	payload, err := json.Marshal(submission)
	if err != nil {
		return model.Verdict{}, &model.SubmissionError{URL: submitURL, Err: err}
	}

	if len(payload) >= maxPayloadBytes {
		s.log.Error("payload exceeds limit", "bytes", len(payload))
		return model.Verdict{Correct: false, Reason: "Payload size exceeds 1MB limit"}, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return model.Verdict{}, &model.SubmissionError{URL: submitURL, Err: ctx.Err()}
			case <-time.After(retryDelay):
			}
		}

		verdict, err := s.post(ctx, submitURL, payload)
		if err == nil {
			return verdict, nil
		}
		lastErr = err
		s.log.Warn("submission attempt failed", "attempt", attempt+1, "url", submitURL, "error", err)
	}

	return model.Verdict{}, &model.SubmissionError{URL: submitURL, Err: lastErr}
}

func (s *Submitter) post(ctx context.Context, submitURL string, payload []byte) (model.Verdict, error) {
	if err := s.limiter.Wait(ctx, submitURL); err != nil {
		return model.Verdict{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(payload))
	if err != nil {
		return model.Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.Verdict{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Verdict{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return model.Verdict{
			Correct: false,
			Reason:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}, nil
	}

	var verdict model.Verdict
	if err := json.Unmarshal(body, &verdict); err != nil {
		// some endpoints answer 200 with plain text; scrape what we can
		return model.Verdict{
			Correct: strings.Contains(strings.ToLower(string(body)), "correct"),
			Reason:  string(body),
		}, nil
	}
	return verdict, nil
}

// truncateAnswer caps huge string answers so the payload gate has a
// chance of passing
func truncateAnswer(answer any) any {
	if s, ok := answer.(string); ok && len(s) > maxAnswerBytes {
		return s[:maxAnswerBytes] + "...[truncated]"
	}
	return answer
}

// Close releases idle connections
func (s *Submitter) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
