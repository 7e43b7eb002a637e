package model

// AnswerKind is the shape a quiz question expects the answer in
type AnswerKind string

const (
	KindNumber     AnswerKind = "number"
	KindString     AnswerKind = "string"
	KindBoolean    AnswerKind = "boolean"
	KindJSON       AnswerKind = "json"
	KindBase64File AnswerKind = "base64_file"
)

// ChainRequest is the immutable input to one chain run
type ChainRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// PageContent holds the raw capture of one page fetch.
// Produced once per URL and discarded after extraction.
type PageContent struct {
	HTML        string // raw markup as served (or as rendered, primary path)
	VisibleText string // text visible to a reader, scripts/styles stripped
	Scripts     string // script bodies worth scanning for encoded payloads
	FullHTML    string // full rendered markup including dynamic injections
}

// Question is the structured form of one quiz page
type Question struct {
	Text         string     `json:"question_text"`
	SubmitURL    string     `json:"submit_url"` // never empty: falls back to the page URL
	Resources    []string   `json:"resources,omitempty"`
	Kind         AnswerKind `json:"expected_type"`
	Instructions string     `json:"instructions,omitempty"` // decoded hidden payloads, if any
}

// Submission is the JSON body posted to a scoring endpoint.
// URL carries the quiz page URL, never the submit target.
type Submission struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
	Answer any    `json:"answer"`
}

// Verdict is the scoring endpoint's structured response
type Verdict struct {
	Correct bool   `json:"correct"`
	URL     string `json:"url,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Resource is the materialized form of one external resource.
// Degraded carries the reason when a handler had to fall back to
// best-effort text instead of its structured summary.
type Resource struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Degraded string         `json:"degraded,omitempty"`
}

// Reasoning is the outcome of one reasoning attempt
type Reasoning struct {
	Answer     any
	Confidence float64
	Raw        string // the backend's verbatim response text
}
