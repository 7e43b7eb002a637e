// Package solver runs one quiz chain end to end: fetch page, extract
// question, gather resources, reason, submit, follow the next URL.
package solver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/solvent/internal/extract"
	"github.com/ppiankov/solvent/internal/llm"
	"github.com/ppiankov/solvent/internal/model"
)

// Acquirer fetches one page and returns its captured content
type Acquirer interface {
	Fetch(ctx context.Context, pageURL string) (model.PageContent, error)
	Close() error
}

// ResourceFetcher materializes one external resource into text
type ResourceFetcher interface {
	Fetch(ctx context.Context, rawURL string, headers map[string]string) (model.Resource, error)
	Close() error
}

// Reasoner produces candidate answers for questions
type Reasoner interface {
	Reason(ctx context.Context, req llm.Request) model.Reasoning
}

// AnswerSubmitter posts an answer and reports the verdict
type AnswerSubmitter interface {
	Submit(ctx context.Context, email, secret, chainURL string, answer any, submitURL string) (model.Verdict, error)
	Close() error
}

// Progress receives chain lifecycle events, typically from a registry
// entry tracking the chain for status queries. All methods must be
// safe for concurrent use.
type Progress interface {
	PageStarted(pageURL string)
	VerdictReceived(v model.Verdict)
	Finished(err error)
}

// NopProgress discards all events
type NopProgress struct{}

func (NopProgress) PageStarted(string)            {}
func (NopProgress) VerdictReceived(model.Verdict) {}
func (NopProgress) Finished(error)                {}

// Solver walks one chain. Each chain owns its own acquirers and
// submitter; only the reasoning engine is shared across chains.
type Solver struct {
	req       model.ChainRequest
	cfg       model.SolverConfig
	primary   Acquirer
	fallback  Acquirer
	resources ResourceFetcher
	engine    Reasoner
	submitter AnswerSubmitter
	progress  Progress
	log       *slog.Logger

	start time.Time
}

// New assembles a solver for one chain request
func New(req model.ChainRequest, cfg model.SolverConfig, primary, fallback Acquirer, resources ResourceFetcher, engine Reasoner, submitter AnswerSubmitter, progress Progress, logger *slog.Logger) *Solver {
	if progress == nil {
		progress = NopProgress{}
	}
	return &Solver{
		req:       req,
		cfg:       cfg,
		primary:   primary,
		fallback:  fallback,
		resources: resources,
		engine:    engine,
		submitter: submitter,
		progress:  progress,
		log:       logger,
		start:     time.Now(),
	}
}

// Run walks the chain until it yields no next URL, a page becomes
// unsolvable, or the wall-clock budget runs out. The budget is checked
// before each page fetch, never mid-page.
func (s *Solver) Run(ctx context.Context) error {
	defer s.teardown()

	current := s.req.URL
	pages := 0

	for current != "" {
		if elapsed := time.Since(s.start); elapsed > s.cfg.TotalBudget {
			s.log.Warn("time budget exhausted", "elapsed", elapsed, "pages", pages)
			break
		}
		if err := ctx.Err(); err != nil {
			s.progress.Finished(err)
			return err
		}

		s.log.Info("solving page", "url", current, "page", pages+1)
		s.progress.PageStarted(current)

		page, err := s.acquire(ctx, current)
		if err != nil {
			s.log.Error("page acquisition failed on both paths", "url", current, "error", err)
			s.progress.Finished(err)
			return err
		}

		question := extract.Parse(page, current)
		quizContext := s.gatherContext(ctx, question, current)

		verdict, err := s.solvePage(ctx, question, quizContext, current)
		if err != nil {
			s.log.Error("page unsolvable", "url", current, "error", err)
			s.progress.Finished(err)
			return err
		}

		s.progress.VerdictReceived(verdict)
		pages++

		// any next URL advances the chain, even after a wrong answer
		if verdict.URL == "" {
			s.log.Info("chain complete", "pages", pages, "correct", verdict.Correct)
			break
		}
		if !verdict.Correct {
			s.log.Warn("answer wrong, following next URL anyway", "next", verdict.URL, "reason", verdict.Reason)
		}
		current = verdict.URL
	}

	s.progress.Finished(nil)
	return nil
}

// acquire tries the rendering path first and degrades to the static
// fetcher. Both failing makes the page, and thus the chain, fatal.
func (s *Solver) acquire(ctx context.Context, pageURL string) (model.PageContent, error) {
	page, primaryErr := s.primary.Fetch(ctx, pageURL)
	if primaryErr == nil {
		return page, nil
	}
	s.log.Warn("primary acquisition failed, trying fallback", "url", pageURL, "error", primaryErr)

	page, fallbackErr := s.fallback.Fetch(ctx, pageURL)
	if fallbackErr == nil {
		return page, nil
	}
	return model.PageContent{}, &model.AcquisitionError{URL: pageURL, Primary: primaryErr, Fallback: fallbackErr}
}

// gatherContext materializes the question's resources into one text
// block. Per-resource failures become inline notes; they never stop
// the remaining resources or the solve.
func (s *Solver) gatherContext(ctx context.Context, question model.Question, pageURL string) string {
	if len(question.Resources) == 0 {
		return "No external resources required."
	}

	headers := s.discoverHeaders(ctx, pageURL)

	var b strings.Builder
	b.WriteString("EXTERNAL RESOURCES:\n\n")
	for _, resURL := range question.Resources {
		res, err := s.resources.Fetch(ctx, resURL, headers)
		if err != nil {
			s.log.Warn("resource fetch failed", "url", resURL, "error", err)
			fmt.Fprintf(&b, "Error fetching %s: %v\n\n", resURL, err)
			continue
		}

		fmt.Fprintf(&b, "Resource: %s\n", resURL)
		if len(headers) > 0 {
			fmt.Fprintf(&b, "Headers used: %v\n", headerNames(headers))
		}
		if res.Degraded != "" {
			fmt.Fprintf(&b, "Note: degraded to raw text (%s)\n", res.Degraded)
		}
		fmt.Fprintf(&b, "Content:\n%s\n---\n\n", res.Content)
	}
	return b.String()
}

// discoverHeaders re-fetches the page over the static path and scans
// its text for API credentials the question expects us to send along.
// The rendered capture can lose these, so this is a dedicated pass.
func (s *Solver) discoverHeaders(ctx context.Context, pageURL string) map[string]string {
	page, err := s.fallback.Fetch(ctx, pageURL)
	if err != nil {
		s.log.Warn("header discovery fetch failed", "url", pageURL, "error", err)
		return nil
	}
	headers := extract.ExtractHeaders(page.VisibleText + "\n" + page.Scripts)
	if len(headers) > 0 {
		s.log.Info("discovered request headers", "names", headerNames(headers))
	}
	return headers
}

// solvePage runs the attempt loop for one question. It keeps the last
// verdict so a wrong-but-advancing answer still moves the chain.
func (s *Solver) solvePage(ctx context.Context, question model.Question, quizContext, pageURL string) (model.Verdict, error) {
	var last model.Verdict

	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		reasoning := s.engine.Reason(ctx, llm.Request{
			Question: question.Text,
			Context:  quizContext,
			Kind:     question.Kind,
			Attempt:  attempt,
		})

		answer := Coerce(reasoning.Answer, question.Kind)
		s.log.Info("submitting answer", "attempt", attempt+1, "kind", string(question.Kind), "confidence", reasoning.Confidence)

		verdict, err := s.submitter.Submit(ctx, s.req.Email, s.req.Secret, pageURL, answer, question.SubmitURL)
		if err != nil {
			// transport exhaustion: the page cannot be scored at all
			return last, err
		}

		last = verdict
		if verdict.Correct {
			return last, nil
		}
		s.log.Warn("answer rejected", "attempt", attempt+1, "reason", verdict.Reason)

		if attempt < s.cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-time.After(s.cfg.RetryDelay):
			}
		}
	}
	return last, nil
}

// teardown closes every per-chain component once, logging failures
func (s *Solver) teardown() {
	for name, c := range map[string]interface{ Close() error }{
		"renderer":  s.primary,
		"fallback":  s.fallback,
		"resources": s.resources,
		"submitter": s.submitter,
	} {
		if err := c.Close(); err != nil {
			s.log.Warn("teardown close failed", "component", name, "error", err)
		}
	}
}

func headerNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	return names
}
