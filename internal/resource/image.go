package resource

import (
	"encoding/base64"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ppiankov/solvent/internal/model"
)

// summarizeImage runs OCR over the image. When OCR fails entirely the
// image degrades to base64 text so the reasoning prompt still carries
// something to work with.
func summarizeImage(content []byte) model.Resource {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(content); err != nil {
		return imageFallback(content, err.Error())
	}

	text, err := client.Text()
	if err != nil {
		return imageFallback(content, err.Error())
	}

	if strings.TrimSpace(text) == "" {
		return model.Resource{
			Content:  "No text detected in image",
			Metadata: map[string]any{"type": "image", "processing": "none", "size": len(content)},
		}
	}

	return model.Resource{
		Content:  text,
		Metadata: map[string]any{"type": "image", "processing": "ocr", "size": len(content)},
	}
}

func imageFallback(content []byte, reason string) model.Resource {
	return model.Resource{
		Content:  base64.StdEncoding.EncodeToString(content),
		Metadata: map[string]any{"type": "image", "processing": "base64"},
		Degraded: reason,
	}
}
