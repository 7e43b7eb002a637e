package model

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.Email = "student@example.com"
	cfg.Auth.Secret = "topsecret"

	tests := []struct {
		name   string
		email  string
		secret string
		want   bool
	}{
		{"exact match", "student@example.com", "topsecret", true},
		{"wrong secret", "student@example.com", "nope", false},
		{"wrong email", "other@example.com", "topsecret", false},
		{"case sensitive", "Student@example.com", "topsecret", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ValidateCredentials(tt.email, tt.secret); got != tt.want {
				t.Errorf("ValidateCredentials(%q, %q) = %v, want %v", tt.email, tt.secret, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig_Bounds(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Solver.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Solver.MaxAttempts)
	}
	if cfg.Solver.TotalBudget.Seconds() != 180 {
		t.Errorf("TotalBudget = %v, want 180s", cfg.Solver.TotalBudget)
	}
	if cfg.LLM.PrimaryModel == "" || len(cfg.LLM.FallbackModels) == 0 {
		t.Error("default model escalation list must be populated")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "none"},
		{"acquisition", &AcquisitionError{URL: "u"}, "acquisition"},
		{"resource", &ResourceFetchError{URL: "u"}, "resource"},
		{"submission", &SubmissionError{URL: "u"}, "network"},
		{"validation", &ValidationError{Reason: "bad"}, "authentication"},
		{"configuration", &ConfigurationError{Field: "llm"}, "configuration"},
		{"other", errors.New("weird"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &SubmissionError{URL: "https://q/check", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("SubmissionError should unwrap to the transport error")
	}
	if !strings.Contains(err.Error(), "https://q/check") {
		t.Errorf("Error() = %q, want the URL named", err.Error())
	}
}
