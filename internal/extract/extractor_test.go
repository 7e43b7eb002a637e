package extract

import (
	"strings"
	"testing"

	"github.com/ppiankov/solvent/internal/model"
)

func TestParse_SubmitURLFromTemplate(t *testing.T) {
	page := model.PageContent{
		VisibleText: "What is 2+2?\nSubmit your answer to: https://quiz.example.com/check",
	}

	q := Parse(page, "https://quiz.example.com/page/1")

	if q.SubmitURL != "https://quiz.example.com/check" {
		t.Errorf("SubmitURL = %q, want the template match", q.SubmitURL)
	}
}

func TestParse_SubmitURLFallsBackToPageURL(t *testing.T) {
	page := model.PageContent{VisibleText: "What color is the sky?"}

	q := Parse(page, "https://quiz.example.com/page/7")

	if q.SubmitURL != "https://quiz.example.com/page/7" {
		t.Errorf("SubmitURL = %q, want the page URL fallback", q.SubmitURL)
	}
}

func TestParse_RelativeSubmitURLResolved(t *testing.T) {
	page := model.PageContent{
		VisibleText: "Post your answer to /api/check-answer",
	}

	q := Parse(page, "https://quiz.example.com/page/1")

	if q.SubmitURL != "https://quiz.example.com/api/check-answer" {
		t.Errorf("SubmitURL = %q, want resolved against the page URL", q.SubmitURL)
	}
}

func TestParse_DecodedInstructionsFlowIntoQuestion(t *testing.T) {
	page := model.PageContent{
		VisibleText: "Follow the hidden instructions.",
		// "Hello" encoded
		Scripts: `document.body.innerText = atob("SGVsbG8=");`,
	}

	q := Parse(page, "https://quiz.example.com/page/1")

	if q.Instructions != "Hello" {
		t.Errorf("Instructions = %q, want decoded payload", q.Instructions)
	}
}

func TestParse_ResourcesCollectedAndSubmitExcluded(t *testing.T) {
	page := model.PageContent{
		VisibleText: "Sum the values in https://files.example.com/data.csv and submit to https://quiz.example.com/check",
		HTML:        `<a href="https://files.example.com/report.pdf">report</a>`,
	}

	q := Parse(page, "https://quiz.example.com/page/1")

	want := map[string]bool{
		"https://files.example.com/data.csv":   true,
		"https://files.example.com/report.pdf": true,
	}
	if len(q.Resources) != len(want) {
		t.Fatalf("Resources = %v, want %d entries", q.Resources, len(want))
	}
	for _, r := range q.Resources {
		if !want[r] {
			t.Errorf("unexpected resource %q", r)
		}
		if strings.Contains(r, "check") {
			t.Errorf("submission endpoint %q leaked into resources", r)
		}
	}
}

func TestParse_ResourcesDeduplicated(t *testing.T) {
	page := model.PageContent{
		VisibleText: "Get https://files.example.com/data.csv",
		HTML:        `<a href="https://files.example.com/data.csv">same file</a>`,
	}

	q := Parse(page, "https://quiz.example.com/page/1")

	if len(q.Resources) != 1 {
		t.Errorf("Resources = %v, want 1 deduplicated entry", q.Resources)
	}
}

func TestAnswerKind(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.AnswerKind
	}{
		{"sum question", "What is the sum of the values?", model.KindNumber},
		{"count question", "How many rows are in the table?", model.KindNumber},
		{"yes-no maps to string", "Is it true that water boils at 100C?", model.KindString},
		{"json question", "Return a JSON object with the totals", model.KindJSON},
		{"file question", "Encode the attachment as base64", model.KindBase64File},
		{"plain question", "What color is the sky?", model.KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answerKind(tt.text); got != tt.want {
				t.Errorf("answerKind(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnswerKind_PrimalityAsksForText(t *testing.T) {
	// this phrasing carries numeric keywords but wants literal yes/no
	text := "Is 97 a prime number? Answer with 'yes' or 'no'."
	if got := answerKind(text); got != model.KindString {
		t.Errorf("answerKind = %q, want %q despite numeric keywords", got, model.KindString)
	}
}

func TestQuestionText_SuppressesJSONExamples(t *testing.T) {
	text := `What is the answer?
{
  "email": "your-email@example.com",
  "answer": 42
}
Send it soon.`

	got := questionText(text)

	if strings.Contains(got, "your-email") {
		t.Errorf("questionText kept the JSON example: %q", got)
	}
	if !strings.Contains(got, "What is the answer?") || !strings.Contains(got, "Send it soon.") {
		t.Errorf("questionText dropped surrounding prose: %q", got)
	}
}

func TestQuestionText_CapsAtTenLines(t *testing.T) {
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = "line"
	}

	got := questionText(strings.Join(lines, "\n"))

	if n := len(strings.Split(got, "\n")); n != 10 {
		t.Errorf("questionText kept %d lines, want 10", n)
	}
}

func TestParse_EmptyPage(t *testing.T) {
	q := Parse(model.PageContent{}, "https://quiz.example.com/page/1")

	if q.SubmitURL != "https://quiz.example.com/page/1" {
		t.Errorf("SubmitURL = %q, want page URL", q.SubmitURL)
	}
	if q.Kind != model.KindString {
		t.Errorf("Kind = %q, want default string", q.Kind)
	}
	if len(q.Resources) != 0 {
		t.Errorf("Resources = %v, want none", q.Resources)
	}
}
