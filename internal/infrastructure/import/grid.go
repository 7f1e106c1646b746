package poimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Format identifies how an upload was decoded
type Format string

const (
	FormatCSV           Format = "csv"
	FormatXLSX          Format = "xlsx"
	FormatSpreadsheetML Format = "xml"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// Grid is a decoded sheet: rows of cell text, ragged rows allowed
type Grid [][]string

// Cell returns the trimmed text at (r, c) or "" when out of range
func (g Grid) Cell(r, c int) string {
	if r < 0 || r >= len(g) || c < 0 || c >= len(g[r]) {
		return ""
	}
	return strings.TrimSpace(g[r][c])
}

func cell(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

func rowBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// DetectFormat sniffs the content; the filename is not trusted
func DetectFormat(data []byte) (Format, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrEmptyFile
	}
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return "", fmt.Errorf("%w: legacy .xls workbooks must be saved as .xlsx", ErrUnsupportedFormat)
	case isSpreadsheetML(data):
		return FormatSpreadsheetML, nil
	}
	return FormatCSV, nil
}

// DecodeGrid turns raw upload bytes into a Grid
func DecodeGrid(data []byte) (Grid, Format, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, "", err
	}
	var g Grid
	switch format {
	case FormatXLSX:
		g, err = readXLSX(data)
	case FormatSpreadsheetML:
		g, err = readSpreadsheetML(data)
	default:
		g, err = readCSV(data)
	}
	if err != nil {
		return nil, format, err
	}
	if len(g) == 0 {
		return nil, format, ErrEmptyFile
	}
	return g, format, nil
}

// readCSV strips a UTF-8 BOM, validates the encoding and reads every record.
// Quoted cells may span lines; rows may have different widths.
func readCSV(data []byte) (Grid, error) {
	br := bufio.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	if err := validateUTF8(br); err != nil {
		return nil, err
	}

	r := csv.NewReader(br)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var g Grid
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(g)+1, err)
		}
		g = append(g, record)
	}
	return g, nil
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return ErrEmptyFile
	}
	// a multi-byte rune may straddle the peek boundary
	for i := 0; i < utf8.UTFMax && len(content) == checkSize && !utf8.Valid(content); i++ {
		content = content[:len(content)-1]
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// readXLSX returns the first sheet that has any content.
// Raw cell values are used so dates arrive as serial numbers rather than
// in whatever display format the exporter chose.
func readXLSX(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrUnreadableWorkbook, sheet, err)
		}
		for _, row := range rows {
			if !rowBlank(row) {
				return rows, nil
			}
		}
	}
	return nil, ErrEmptyFile
}
