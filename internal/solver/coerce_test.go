package solver

import (
	"encoding/base64"
	"reflect"
	"testing"

	"github.com/ppiankov/solvent/internal/model"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name   string
		answer any
		kind   model.AnswerKind
		want   any
	}{
		{"number from string", "The total is 42", model.KindNumber, int64(42)},
		{"number float kept", 3.5, model.KindNumber, 3.5},
		{"whole float to int", 42.0, model.KindNumber, int64(42)},
		{"number garbage", "none", model.KindNumber, int64(0)},
		{"number from weird type", []int{1}, model.KindNumber, int64(0)},
		{"bool from yes", "Yes", model.KindBoolean, true},
		{"bool from correct", "correct", model.KindBoolean, true},
		{"bool from no", "no", model.KindBoolean, false},
		{"bool from nonzero", int64(5), model.KindBoolean, true},
		{"string passthrough", "Paris", model.KindString, "Paris"},
		{"string from number", int64(7), model.KindString, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.answer, tt.kind); got != tt.want {
				t.Errorf("Coerce = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestCoerce_JSON(t *testing.T) {
	parsed := Coerce(`{"total": 10}`, model.KindJSON)
	if m, ok := parsed.(map[string]any); !ok || m["total"] != float64(10) {
		t.Errorf("Coerce JSON string = %v, want parsed object", parsed)
	}

	wrapped := Coerce("not json at all", model.KindJSON)
	if m, ok := wrapped.(map[string]any); !ok || m["answer"] != "not json at all" {
		t.Errorf("Coerce invalid JSON = %v, want wrapped answer", wrapped)
	}

	passthrough := Coerce(map[string]any{"a": 1}, model.KindJSON)
	if !reflect.DeepEqual(passthrough, map[string]any{"a": 1}) {
		t.Errorf("Coerce map = %v, want unchanged", passthrough)
	}
}

func TestCoerce_Base64(t *testing.T) {
	encoded := Coerce("raw file content \xff", model.KindBase64File)
	s, ok := encoded.(string)
	if !ok {
		t.Fatalf("Coerce base64 = %T, want string", encoded)
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		t.Errorf("Coerce produced invalid base64: %v", err)
	}

	already := base64.StdEncoding.EncodeToString([]byte("hello world"))
	if got := Coerce(already, model.KindBase64File); got != already {
		t.Errorf("Coerce re-encoded an already-encoded value: %v", got)
	}
}

func TestCoerce_Idempotent(t *testing.T) {
	inputs := []struct {
		answer any
		kind   model.AnswerKind
	}{
		{"count is 42", model.KindNumber},
		{3.14, model.KindNumber},
		{"yes", model.KindBoolean},
		{`{"x": 1}`, model.KindJSON},
		{"plain text", model.KindString},
		{"file body \xfe\xff", model.KindBase64File},
	}

	for _, in := range inputs {
		once := Coerce(in.answer, in.kind)
		twice := Coerce(once, in.kind)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Coerce(%v, %s) not idempotent: %v != %v", in.answer, in.kind, once, twice)
		}
	}
}
