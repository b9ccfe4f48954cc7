package fileparse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages caps how many pages of a document are extracted.
const maxPDFPages = 50

func parsePDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf parsing failed: %w", err)
	}

	total := reader.NumPage()
	pages := total
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	var parts []string
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not discard the rest.
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, fmt.Sprintf("[Page %d]\n%s", i, text))
		}
	}
	if total > pages {
		parts = append(parts, fmt.Sprintf("... %d pages total, parsed the first %d", total, pages))
	}

	if len(parts) == 0 {
		return "[pdf has no extractable text; it may be a scanned document]", nil
	}
	return strings.Join(parts, "\n\n"), nil
}
