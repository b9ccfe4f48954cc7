package fileparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// docx and pptx are zip archives of XML parts. Text lives in <w:t> /
// <a:t> elements; paragraph and row boundaries map to line breaks. That
// is little enough structure to walk with encoding/xml directly.

func parseDocx(data []byte) (string, error) {
	doc, err := readZipPart(data, "word/document.xml")
	if err != nil {
		return "", fmt.Errorf("docx parsing failed: %w", err)
	}
	text, err := extractXMLText(doc, "t", "p")
	if err != nil {
		return "", fmt.Errorf("docx parsing failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "[word file is empty or unreadable]", nil
	}
	return text, nil
}

func parsePptx(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pptx parsing failed: %w", err)
	}

	var slides []string
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f.Name)
		}
	}
	sort.Strings(slides)

	var parts []string
	for i, name := range slides {
		content, err := readZipFile(r, name)
		if err != nil {
			continue
		}
		text, err := extractXMLText(content, "t", "p")
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Slide %d]\n%s", i+1, text))
	}
	if len(parts) == 0 {
		return "[pptx has no extractable text; it may contain only images or charts]", nil
	}
	return strings.Join(parts, "\n\n"), nil
}

func readZipPart(data []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return readZipFile(r, name)
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("missing archive part %s", name)
}

// extractXMLText collects character data inside elements named textEl
// (namespace-local name) and emits a newline at the end of each breakEl.
func extractXMLText(content []byte, textEl, breakEl string) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var b strings.Builder
	inText := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textEl {
				inText++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case textEl:
				if inText > 0 {
					inText--
				}
			case breakEl:
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText > 0 {
				b.Write(t)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
