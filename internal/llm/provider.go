package llm

import (
	"context"

	"github.com/ppiankov/solvent/internal/model"
)

// Role tags a backend's place in the escalation order
type Role string

const (
	RolePrimary   Role = "primary"
	RoleFallback  Role = "fallback"
	RoleEmergency Role = "emergency"
)

// Backend is one ranked reasoning model
type Backend struct {
	Model string
	Role  Role
}

// Result is one backend generation
type Result struct {
	Text    string
	Blocked bool // content-safety block reported by the backend
}

// Client is the transport to a family of reasoning models
type Client interface {
	// Generate runs one prompt against a specific model
	Generate(ctx context.Context, model, prompt string) (Result, error)

	// ListModels returns the identifiers the endpoint actually serves
	ListModels(ctx context.Context) ([]string, error)
}

// Request is the input for one reasoning attempt
type Request struct {
	Question string
	Context  string
	Kind     model.AnswerKind
	Attempt  int // zero-based; attempts after the first get a retry note
}
