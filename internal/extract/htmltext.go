package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// stripTags renders markup as plain text, skipping script/style
// subtrees. When the markup does not parse it degrades to a crude
// regex strip rather than failing.
func stripTags(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return crudeStrip(markup)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String())
}

var (
	scriptStylePattern = regexp.MustCompile(`(?s)<script.*?</script>|<style.*?</style>`)
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
)

func crudeStrip(markup string) string {
	text := scriptStylePattern.ReplaceAllString(markup, "")
	text = tagPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
