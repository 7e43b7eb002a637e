package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/solvent/internal/model"
)

var (
	numberPattern  = regexp.MustCompile(`-?\d+\.?\d*`)
	integerPattern = regexp.MustCompile(`\d+`)
	jsonPattern    = regexp.MustCompile(`(?s)\{.*\}`)
)

// Engine drives a ranked list of reasoning backends. Each retry shifts
// the tried window toward presumed-more-capable models, with overlap;
// when every backend in a window fails the engine degrades to a
// heuristic answer instead of failing the call.
type Engine struct {
	client   Client
	backends []Backend
	log      *slog.Logger
}

// NewEngine probes the configured models against the endpoint once and
// keeps only the ones actually served, tagged by role in escalation
// order. When none of the configured models exist it falls back to any
// served model matching the gemini-flash family pattern.
func NewEngine(ctx context.Context, client Client, cfg model.LLMConfig, logger *slog.Logger) (*Engine, error) {
	available, err := client.ListModels(ctx)
	if err != nil {
		return nil, &model.ConfigurationError{Field: "llm", Reason: "cannot list backend models: " + err.Error()}
	}

	served := make(map[string]bool, len(available))
	for _, id := range available {
		served[strings.TrimPrefix(id, "models/")] = true
	}

	var backends []Backend
	configured := append([]string{cfg.PrimaryModel}, cfg.FallbackModels...)
	for i, name := range configured {
		if name == "" {
			continue
		}
		if !served[strings.TrimPrefix(name, "models/")] {
			logger.Warn("configured model not served", "model", name)
			continue
		}
		role := RoleFallback
		if i == 0 {
			role = RolePrimary
		}
		backends = append(backends, Backend{Model: name, Role: role})
		logger.Info("loaded backend", "model", name, "role", string(role))
	}

	if len(backends) == 0 {
		for _, id := range available {
			name := strings.TrimPrefix(id, "models/")
			if strings.Contains(name, "gemini") && strings.Contains(name, "flash") {
				backends = append(backends, Backend{Model: name, Role: RoleEmergency})
				logger.Info("loaded emergency backend", "model", name)
				break
			}
		}
	}

	if len(backends) == 0 {
		return nil, &model.ConfigurationError{Field: "llm.primary_model", Reason: "no configured model is available"}
	}

	return &Engine{client: client, backends: backends, log: logger}, nil
}

// Backends returns the probed escalation list
func (e *Engine) Backends() []Backend { return e.backends }

// windowFor returns the half-open backend index range tried for an
// attempt. The window start never decreases as attempts grow, and the
// window is never empty as long as any backend exists.
func windowFor(attempt, total int) (start, end int) {
	switch attempt {
	case 0:
		start, end = 0, 2
	case 1:
		start, end = 1, 3
	default:
		start, end = 2, total
	}
	if end > total {
		end = total
	}
	if start >= total {
		start = total - 1
	}
	if end <= start {
		end = start + 1
	}
	return start, end
}

// Reason produces a typed candidate answer for the question. It never
// fails: backend errors escalate within the attempt window and the
// heuristic fallback catches total exhaustion.
func (e *Engine) Reason(ctx context.Context, req Request) model.Reasoning {
	prompt := buildPrompt(req)
	start, end := windowFor(req.Attempt, len(e.backends))

	for _, b := range e.backends[start:end] {
		res, err := e.client.Generate(ctx, b.Model, prompt)
		if err != nil {
			e.log.Warn("backend failed", "model", b.Model, "role", string(b.Role), "attempt", req.Attempt, "error", err)
			continue
		}

		answer := parseResponse(res.Text, req.Kind)
		reasoning := model.Reasoning{
			Answer:     answer,
			Confidence: confidence(res, answer),
			Raw:        res.Text,
		}
		e.log.Info("reasoning done", "model", b.Model, "attempt", req.Attempt, "confidence", reasoning.Confidence)
		return reasoning
	}

	e.log.Warn("all backends failed, using heuristic fallback", "attempt", req.Attempt)
	return heuristicFallback(req)
}

// ValidateAnswer asks the primary backend whether the answer looks
// reasonable. Advisory only: any failure reads as acceptance, it never
// gates submission.
func (e *Engine) ValidateAnswer(ctx context.Context, question string, answer any, kind model.AnswerKind) bool {
	prompt := buildValidationPrompt(question, answer, kind)
	res, err := e.client.Generate(ctx, e.backends[0].Model, prompt)
	if err != nil {
		return true
	}
	v := strings.ToLower(strings.TrimSpace(res.Text))
	return v == "true" || v == "yes"
}

// parseResponse converts backend text into the expected answer kind
func parseResponse(text string, kind model.AnswerKind) any {
	cleaned := strings.TrimSpace(text)

	switch kind {
	case model.KindNumber:
		tok := numberPattern.FindString(cleaned)
		if tok == "" {
			return int64(0)
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return int64(0)
		}
		if f == math.Trunc(f) {
			return int64(f)
		}
		return f

	case model.KindBoolean:
		switch strings.ToLower(cleaned) {
		case "true", "yes", "1", "correct":
			return true
		}
		return false

	case model.KindJSON:
		span := jsonPattern.FindString(cleaned)
		if span == "" {
			return map[string]any{"error": "no valid JSON found"}
		}
		var v any
		if err := json.Unmarshal([]byte(span), &v); err != nil {
			return map[string]any{"error": "invalid JSON format"}
		}
		return v

	default: // STRING and BASE64_FILE pass through unchanged
		return cleaned
	}
}

// confidence scores an answer from backend signals and answer shape
func confidence(res Result, answer any) float64 {
	score := 0.7
	if !res.Blocked {
		score += 0.2
	}
	if answer == nil {
		score -= 0.3
	} else if s, ok := answer.(string); ok && len(strings.TrimSpace(s)) < 2 {
		score -= 0.3
	}
	return math.Max(0.1, math.Min(1.0, score))
}

// heuristicFallback answers without any backend. Sum-style questions
// get the sum of bare integers in the context; everything else gets a
// fixed low-confidence default.
func heuristicFallback(req Request) model.Reasoning {
	q := strings.ToLower(req.Question)
	if strings.Contains(q, "sum") && strings.Contains(q, "value") {
		var total int64
		found := false
		for _, tok := range integerPattern.FindAllString(req.Context, -1) {
			if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
				total += n
				found = true
			}
		}
		if found {
			return model.Reasoning{
				Answer:     total,
				Confidence: 0.3,
				Raw:        "heuristic: summed all integers found in context",
			}
		}
	}

	var answer any = int64(0)
	if req.Kind == model.KindString {
		answer = "Unknown"
	}
	return model.Reasoning{
		Answer:     answer,
		Confidence: 0.1,
		Raw:        "heuristic: all backends failed, default answer",
	}
}
