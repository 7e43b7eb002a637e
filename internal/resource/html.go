package resource

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/solvent/internal/model"
)

// summarizeHTML extracts every table row-by-row, then the full page
// text, prefixed with the source URL so the prompt can tell resources
// apart.
func summarizeHTML(content []byte, rawURL string) model.Resource {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return model.Resource{
			Content:  cleanseText(string(content)),
			Metadata: map[string]any{"type": "text"},
			Degraded: "html parse failed: " + err.Error(),
		}
	}

	var tables []string
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		var b strings.Builder
		fmt.Fprintf(&b, "Table %d:", i+1)
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			fmt.Fprintf(&b, "\n%v", cells)
		})
		tables = append(tables, b.String())
	})

	text := strings.TrimSpace(doc.Text())

	var b strings.Builder
	fmt.Fprintf(&b, "Page URL: %s\n\nExtracted Tables:\n", rawURL)
	b.WriteString(strings.Join(tables, "\n\n"))
	fmt.Fprintf(&b, "\n\nFull Text:\n%s", text)

	return model.Resource{
		Content:  b.String(),
		Metadata: map[string]any{"type": "html", "tables": len(tables)},
	}
}
