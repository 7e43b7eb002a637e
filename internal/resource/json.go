package resource

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/solvent/internal/model"
)

// summarizeJSON emits a structural summary, plus a derived numeric
// summary when the document is an object with a numeric "values"
// array — the most common quiz data shape.
func summarizeJSON(content []byte) model.Resource {
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return model.Resource{
			Content:  cleanseText(string(content)),
			Metadata: map[string]any{"type": "text"},
			Degraded: "json parse failed: " + err.Error(),
		}
	}

	var b strings.Builder
	b.WriteString(structuralSummary(doc))

	if obj, ok := doc.(map[string]any); ok {
		if values, ok := numericValues(obj["values"]); ok && len(values) > 0 {
			sum, min, max := values[0], values[0], values[0]
			for _, v := range values[1:] {
				sum += v
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			fmt.Fprintf(&b, "\nThe JSON contains an array 'values' with these numbers: %v", values)
			fmt.Fprintf(&b, "\n- Sum: %v", trimFloat(sum))
			fmt.Fprintf(&b, "\n- Max: %v", trimFloat(max))
			fmt.Fprintf(&b, "\n- Min: %v", trimFloat(min))
			fmt.Fprintf(&b, "\n- Average: %.2f", sum/float64(len(values)))
		}
	}

	return model.Resource{
		Content:  b.String(),
		Metadata: map[string]any{"type": "json", "size": len(content)},
	}
}

func structuralSummary(doc any) string {
	switch v := doc.(type) {
	case []any:
		preview := v
		if len(preview) > 3 {
			preview = preview[:3]
		}
		encoded, _ := json.MarshalIndent(preview, "", "  ")
		return fmt.Sprintf("JSON array with %d items. First few items: %s", len(v), encoded)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sample := make(map[string]any, 3)
		for _, k := range keys {
			if len(sample) == 3 {
				break
			}
			sample[k] = v[k]
		}
		encoded, _ := json.MarshalIndent(sample, "", "  ")
		return fmt.Sprintf("JSON object with keys: %v. Sample: %s", keys, encoded)
	default:
		encoded, _ := json.MarshalIndent(doc, "", "  ")
		return string(encoded)
	}
}

func numericValues(raw any) ([]float64, bool) {
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	values := make([]float64, 0, len(list))
	for _, item := range list {
		n, ok := item.(float64)
		if !ok {
			return nil, false
		}
		values = append(values, n)
	}
	return values, true
}

// trimFloat renders whole numbers without a fractional part
func trimFloat(f float64) any {
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}
