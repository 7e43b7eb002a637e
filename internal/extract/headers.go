package extract

import (
	"regexp"
	"strings"
)

// headerPatterns map a header name to the instruction phrasings that
// reveal its value. First match per header wins.
var headerPatterns = map[string][]*regexp.Regexp{
	"Authorization": {
		regexp.MustCompile(`(?i)Authorization:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Use Authorization:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Bearer\s+([^\s\n]+)`),
		regexp.MustCompile(`(?i)Authorization\s+header:\s*([^\n]+)`),
	},
	"X-API-Key": {
		regexp.MustCompile(`(?i)X-API-Key:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)API[-\s]?key:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Use API key:\s*([^\n]+)`),
	},
	"Content-Type": {
		regexp.MustCompile(`(?i)Content-Type:\s*([^\n]+)`),
	},
}

// ExtractHeaders scans instruction text for API header values. Bare
// Authorization tokens are normalized to a Bearer-prefixed value.
func ExtractHeaders(text string) map[string]string {
	headers := make(map[string]string)

	for name, patterns := range headerPatterns {
		for _, pattern := range patterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value := strings.TrimSpace(m[1])
			if name == "Authorization" && !strings.Contains(strings.ToLower(value), "bearer") {
				value = "Bearer " + value
			}
			headers[name] = value
			break
		}
	}

	return headers
}
