package extract

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	atobPattern = regexp.MustCompile(`atob\(['"]([^'"]+)['"]\)`)
	// bare quoted base64 runs long enough to carry instructions
	bareBase64Pattern = regexp.MustCompile(`['"]([A-Za-z0-9+/=]{20,}={0,2})['"]`)
)

// DecodeHiddenPayload scans script text for encoded instructions and
// returns them decoded, atob-call matches before bare quoted strings.
// Matches that do not decode to UTF-8 text are silently skipped.
func DecodeHiddenPayload(scripts string) string {
	if scripts == "" {
		return ""
	}

	var decoded []string

	for _, m := range atobPattern.FindAllStringSubmatch(scripts, -1) {
		if text, ok := decodeBase64Text(m[1]); ok {
			decoded = append(decoded, text)
		}
	}

	for _, m := range bareBase64Pattern.FindAllStringSubmatch(scripts, -1) {
		if text, ok := decodeBase64Text(m[1]); ok {
			decoded = append(decoded, text)
		}
	}

	return strings.Join(decoded, "\n")
}

func decodeBase64Text(encoded string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}
