package resource

import (
	"encoding/json"
	"encoding/xml"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ppiankov/solvent/internal/model"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	nanTokens      = regexp.MustCompile(`\bNaN\b`)
	nullTokens     = regexp.MustCompile(`\bnull\b`)
	emptyCSVCells  = regexp.MustCompile(`,\s*,`)
)

// summarizeText decodes and cleanses plain text
func summarizeText(content []byte) model.Resource {
	var text string
	encoding := "utf-8"
	if utf8.Valid(content) {
		text = string(content)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
		if err != nil {
			decoded = content
		}
		text = string(decoded)
		encoding = "latin-1"
	}

	cleaned := cleanseText(text)
	return model.Resource{
		Content:  cleaned,
		Metadata: map[string]any{"type": "text", "encoding": encoding, "size": len(cleaned)},
	}
}

// cleanseText collapses whitespace and scrubs common data noise
func cleanseText(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = nanTokens.ReplaceAllString(text, "")
	text = nullTokens.ReplaceAllString(text, "")
	text = emptyCSVCells.ReplaceAllString(text, ",")
	return strings.TrimSpace(text)
}

// summarizeXML reports the root element shape and a truncated
// serialization rather than the whole document.
func summarizeXML(content []byte) model.Resource {
	decoder := xml.NewDecoder(strings.NewReader(string(content)))

	var root *xml.StartElement
	childCount := 0
	depth := 0

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				start := t.Copy()
				root = &start
			} else if depth == 2 {
				childCount++
			}
		case xml.EndElement:
			depth--
		}
	}

	if root == nil {
		return model.Resource{
			Content:  cleanseText(string(content)),
			Metadata: map[string]any{"type": "text"},
			Degraded: "xml parse failed: no root element",
		}
	}

	attrs := make(map[string]string, len(root.Attr))
	for _, a := range root.Attr {
		attrs[a.Name.Local] = a.Value
	}

	sample := string(content)
	if len(sample) > 500 {
		sample = sample[:500] + "..."
	}

	encoded, _ := json.Marshal(map[string]any{
		"root_tag":       root.Name.Local,
		"attributes":     attrs,
		"children_count": childCount,
		"sample_content": sample,
	})

	return model.Resource{
		Content:  string(encoded),
		Metadata: map[string]any{"type": "xml"},
	}
}
