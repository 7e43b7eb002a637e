package resource

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"

	"github.com/ppiankov/solvent/internal/model"
)

// summarizeCSV parses the file into a frame and emits shape, columns,
// per-column types, a head preview and numeric describe-stats as one
// JSON-encoded string.
func summarizeCSV(content []byte) model.Resource {
	text := decodeTabular(content)

	df := dataframe.ReadCSV(strings.NewReader(text))
	if df.Error() != nil {
		return model.Resource{
			Content:  cleanseText(text),
			Metadata: map[string]any{"type": "text"},
			Degraded: "csv parse failed: " + df.Error().Error(),
		}
	}

	rows, cols := df.Dims()
	types := make(map[string]string, cols)
	numeric := false
	for i, name := range df.Names() {
		t := df.Types()[i]
		types[name] = string(t)
		if t == series.Int || t == series.Float {
			numeric = true
		}
	}

	summary := map[string]any{
		"shape":   []int{rows, cols},
		"columns": df.Names(),
		"dtypes":  types,
		"head":    headRecords(df, 5),
	}
	if numeric {
		summary["description"] = df.Describe().Records()
	}

	encoded, err := json.Marshal(summary)
	if err != nil {
		return model.Resource{
			Content:  cleanseText(text),
			Metadata: map[string]any{"type": "text"},
			Degraded: "csv summary encoding failed: " + err.Error(),
		}
	}

	return model.Resource{
		Content:  string(encoded),
		Metadata: map[string]any{"type": "csv", "rows": rows, "columns": cols},
	}
}

// headRecords returns up to n data rows, header included
func headRecords(df dataframe.DataFrame, n int) [][]string {
	records := df.Records()
	if len(records) > n+1 {
		records = records[:n+1]
	}
	return records
}

// decodeTabular tries UTF-8, Latin-1 and Windows-1252 in order and
// treats the content as raw bytes when everything fails
func decodeTabular(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content); err == nil {
		return string(decoded)
	}
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(content); err == nil {
		return string(decoded)
	}
	return string(content)
}
