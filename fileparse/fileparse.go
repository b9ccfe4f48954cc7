// Package fileparse extracts plain text from uploaded documents so the
// content can be placed into a prompt. Parsing is best-effort: failures
// and unsupported formats become bracketed markers in the extracted
// text, never request errors.
package fileparse

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Result is the normalized outcome of parsing one file.
type Result struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

type parseFunc func(data []byte) (string, error)

// parsers is the closed set of supported extensions. Dispatch happens
// through this table; adding a format means adding an entry.
var parsers = map[string]parseFunc{
	"txt":  parseText,
	"md":   parseText,
	"csv":  parseCSV,
	"xlsx": parseExcel,
	"pdf":  parsePDF,
	"docx": parseDocx,
	"pptx": parsePptx,
}

// legacyNotes covers old binary formats that are not parsed.
var legacyNotes = map[string]string{
	"xls": "[note: .xls is the legacy Excel format; convert to .xlsx and re-upload for extraction]",
	"doc": "[note: .doc is the legacy Word format; convert to .docx and re-upload for extraction]",
	"ppt": "[note: .ppt is the legacy PowerPoint format; convert to .pptx and re-upload for extraction]",
}

// Parse extracts text from one file.
func Parse(filename string, data []byte) Result {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	res := Result{Name: filename, Type: ext}

	if note, ok := legacyNotes[ext]; ok {
		res.Content = note
		return res
	}

	parse, ok := parsers[ext]
	if !ok {
		log.Warn().Str("file", filename).Str("ext", ext).Msg("unsupported file format")
		res.Content = fmt.Sprintf("[unsupported file format: %s]", ext)
		res.Error = "unsupported file format"
		return res
	}

	content, err := parse(data)
	if err != nil {
		log.Error().Err(err).Str("file", filename).Msg("file parsing failed")
		res.Content = fmt.Sprintf("[parse failed: %v]", err)
		res.Error = err.Error()
		return res
	}
	res.Content = content
	return res
}

func parseText(data []byte) (string, error) {
	return string(data), nil
}
