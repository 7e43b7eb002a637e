package solver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/solvent/internal/model"
)

var coerceNumberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// Coerce converts a reasoning answer into the shape the question
// expects before submission. Coercion is idempotent: feeding an
// already-coerced value back in returns it unchanged.
func Coerce(answer any, kind model.AnswerKind) any {
	switch kind {
	case model.KindNumber:
		return coerceNumber(answer)
	case model.KindBoolean:
		return coerceBoolean(answer)
	case model.KindJSON:
		return coerceJSON(answer)
	case model.KindBase64File:
		return coerceBase64(answer)
	default:
		if s, ok := answer.(string); ok {
			return s
		}
		return fmt.Sprint(answer)
	}
}

func coerceNumber(answer any) any {
	switch v := answer.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		if v == math.Trunc(v) {
			return int64(v)
		}
		return v
	case string:
		tok := coerceNumberPattern.FindString(v)
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
	default:
		return int64(0)
	}
}

func coerceBoolean(answer any) bool {
	switch v := answer.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1", "correct":
			return true
		}
		return false
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

func coerceJSON(answer any) any {
	switch v := answer.(type) {
	case map[string]any, []any:
		return v
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			return parsed
		}
		return map[string]any{"answer": v}
	default:
		return map[string]any{"answer": fmt.Sprint(v)}
	}
}

// coerceBase64 leaves already-encoded strings alone: anything that is
// syntactically valid base64 is treated as encoded. Encoding output is
// itself valid base64, so running twice never double-encodes.
func coerceBase64(answer any) string {
	s, ok := answer.(string)
	if !ok {
		s = fmt.Sprint(answer)
	}
	if _, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s)); err == nil {
		return s
	}
	return base64.StdEncoding.EncodeToString([]byte(s))
}
