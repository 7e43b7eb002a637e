package resource

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ppiankov/solvent/internal/model"
)

// summarizePDF extracts text per page, joined with page-boundary
// markers. A PDF with no recoverable text yields a fixed marker.
func summarizePDF(content []byte) (res model.Resource) {
	// the pdf reader panics on some malformed files; a panic here must
	// degrade like any other handler failure
	defer func() {
		if r := recover(); r != nil {
			res = model.Resource{
				Content:  fmt.Sprintf("Error processing PDF: %v", r),
				Metadata: map[string]any{"type": "pdf"},
				Degraded: fmt.Sprintf("%v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return model.Resource{
			Content:  "Error processing PDF: " + err.Error(),
			Metadata: map[string]any{"type": "pdf"},
			Degraded: err.Error(),
		}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("--- Page %d ---\n%s", i, text))
	}

	if len(pages) == 0 {
		return model.Resource{
			Content:  "No text extracted from PDF",
			Metadata: map[string]any{"type": "pdf", "pages": 0},
		}
	}

	return model.Resource{
		Content:  strings.Join(pages, "\n"),
		Metadata: map[string]any{"type": "pdf", "pages": len(pages)},
	}
}
