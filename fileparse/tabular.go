package fileparse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxTableRows caps how many rows of a sheet end up in the prompt.
const maxTableRows = 100

func parseCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("csv parsing failed: %w", err)
	}
	content := renderTable("Sheet1", records)
	if strings.TrimSpace(content) == "" {
		return "[csv file is empty]", nil
	}
	return content, nil
}

func parseExcel(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("excel parsing failed: %w", err)
	}
	defer f.Close()

	var parts []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if part := renderTable(sheet, rows); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "[excel file is empty or unreadable]", nil
	}
	return strings.Join(parts, "\n\n"), nil
}

// renderTable formats rows as pipe-separated lines under a sheet header,
// truncated at maxTableRows with a marker.
func renderTable(title string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Sheet: %s]\n", title)
	shown := rows
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	for _, row := range shown {
		b.WriteString(strings.Join(row, " | "))
		b.WriteByte('\n')
	}
	if len(rows) > maxTableRows {
		fmt.Fprintf(&b, "... %d rows total, showing the first %d\n", len(rows), maxTableRows)
	}
	return strings.TrimRight(b.String(), "\n")
}
