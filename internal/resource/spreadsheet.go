package resource

import (
	"bytes"
	"encoding/json"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/solvent/internal/model"
)

// summarizeSpreadsheet enumerates every sheet and emits name, shape,
// columns and a first-rows preview per sheet.
func summarizeSpreadsheet(content []byte) model.Resource {
	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return model.Resource{
			Content:  "Error processing spreadsheet: " + err.Error(),
			Metadata: map[string]any{"type": "excel"},
			Degraded: err.Error(),
		}
	}
	defer book.Close()

	var sheets []map[string]any
	for _, name := range book.GetSheetList() {
		rows, err := book.GetRows(name)
		if err != nil {
			sheets = append(sheets, map[string]any{"sheet_name": name, "error": err.Error()})
			continue
		}

		var columns []string
		var head [][]string
		width := 0
		if len(rows) > 0 {
			columns = rows[0]
			width = len(rows[0])
			head = rows[1:]
			if len(head) > 5 {
				head = head[:5]
			}
		}

		sheets = append(sheets, map[string]any{
			"sheet_name": name,
			"shape":      []int{len(rows), width},
			"columns":    columns,
			"head":       head,
		})
	}

	encoded, err := json.Marshal(map[string]any{
		"sheets":       sheets,
		"total_sheets": len(sheets),
	})
	if err != nil {
		return model.Resource{
			Content:  "Error processing spreadsheet: " + err.Error(),
			Metadata: map[string]any{"type": "excel"},
			Degraded: err.Error(),
		}
	}

	return model.Resource{
		Content:  string(encoded),
		Metadata: map[string]any{"type": "excel", "sheets": len(sheets)},
	}
}
