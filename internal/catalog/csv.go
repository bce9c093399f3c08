package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// exportColumns is the canonical column order for both import headers and
// export output.
var exportColumns = []string{"name", "unit", "category", "brand", "stock", "status", "image"}

// ParseCSV decodes CSV bytes into header-mapped records. The first
// non-empty row is the header; column names are matched case-insensitively
// and cell values are trimmed. Rows that are entirely blank are dropped.
// Extra columns are ignored; short rows leave the trailing fields absent.
func ParseCSV(data []byte) ([]Record, error) {
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	// Locate the header row, skipping leading blank lines.
	headerIdx := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return []Record{}, nil
	}

	header := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		header[i] = strings.ToLower(cleanCell(h))
	}

	records := make([]Record, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			rec[name] = strings.TrimSpace(row[i])
		}
		records = append(records, rec)
	}

	return records, nil
}

// WriteCSV renders products in the seven-column export format. Quoting
// follows encoding/csv: fields containing commas, quotes, or newlines are
// wrapped in double quotes with embedded quotes doubled. Absent images
// render as empty fields.
func WriteCSV(w io.Writer, products []Product) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range products {
		image := ""
		if p.Image != nil {
			image = *p.Image
		}
		row := []string{
			p.Name, p.Unit, p.Category, p.Brand,
			strconv.Itoa(p.Stock), string(p.Status), image,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode
// replacement character so the CSV reader never chokes on stray
// Windows-1252 or Latin-1 bytes.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// cleanCell strips common CSV artifacts from a header cell: surrounding
// whitespace, Excel formula prefixes (="value"), and stray quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
