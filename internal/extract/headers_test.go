package extract

import "testing"

func TestExtractHeaders_APIKey(t *testing.T) {
	text := "Fetch the endpoint using header X-API-Key: abc123"

	headers := ExtractHeaders(text)

	if headers["X-API-Key"] != "abc123" {
		t.Errorf("X-API-Key = %q, want abc123", headers["X-API-Key"])
	}
}

func TestExtractHeaders_BearerNormalized(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare token gets prefix", "Authorization: tok-999", "Bearer tok-999"},
		{"existing bearer untouched", "Authorization: Bearer tok-999", "Bearer tok-999"},
		{"bearer phrasing", "Use Bearer sk-12345 for all requests", "Bearer sk-12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := ExtractHeaders(tt.text)
			if headers["Authorization"] != tt.want {
				t.Errorf("Authorization = %q, want %q", headers["Authorization"], tt.want)
			}
		})
	}
}

func TestExtractHeaders_NothingFound(t *testing.T) {
	if headers := ExtractHeaders("just a plain question"); len(headers) != 0 {
		t.Errorf("headers = %v, want none", headers)
	}
}

func TestDecodeHiddenPayload(t *testing.T) {
	tests := []struct {
		name    string
		scripts string
		want    string
	}{
		{"empty", "", ""},
		{"atob call", `x.innerText = atob("SGVsbG8=");`, "Hello"},
		{"invalid base64 skipped", `atob("!!!not-base64!!!")`, ""},
		{"binary payload skipped", `atob("/////w==")`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeHiddenPayload(tt.scripts); got != tt.want {
				t.Errorf("DecodeHiddenPayload = %q, want %q", got, tt.want)
			}
		})
	}
}
