package poimport

import (
	"errors"
	"fmt"

	"github.com/pohub/backend/internal/domain/purchaseorder"
)

// Row warning codes
const (
	ErrCodeImportMalformedRow      = "ERR_IMPORT_MALFORMED_ROW"
	ErrCodeImportInvalidLineNo     = "ERR_IMPORT_INVALID_LINE_NUMBER"
	ErrCodeImportInvalidQuantity   = "ERR_IMPORT_INVALID_QUANTITY"
	ErrCodeImportForeignPO         = "ERR_IMPORT_FOREIGN_PO"
	ErrCodeImportTotalsMismatch    = "ERR_IMPORT_TOTALS_MISMATCH"
	ErrCodeImportSyntheticPONumber = "ERR_IMPORT_SYNTHETIC_PO_NUMBER"
)

// Structural parse errors
var (
	// ErrEmptyFile is returned when the upload has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when CSV text is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrUnreadableWorkbook is returned when a spreadsheet cannot be opened
	ErrUnreadableWorkbook = errors.New("unreadable workbook")

	// ErrUnsupportedFormat is returned for binary formats we cannot decode
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrPONumberNotFound is returned when no PO-number marker is present
	ErrPONumberNotFound = errors.New("po number marker not found")

	// ErrTableNotFound is returned when the line-item table header is never located
	ErrTableNotFound = errors.New("line item table not found")

	// ErrNoDataRows is returned when the table yields no valid line
	ErrNoDataRows = errors.New("line item table contains no data rows")

	// ErrUnrecognizedFormat is returned when no parser accepts a file
	ErrUnrecognizedFormat = errors.New("unable to parse file format")

	// ErrUnknownVendor is returned when no parser is registered for a vendor
	ErrUnknownVendor = errors.New("no parser registered for vendor")
)

// ParseError is a structural failure of one vendor parser
type ParseError struct {
	Vendor purchaseorder.Vendor
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Vendor.DisplayName(), e.Err)
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(v purchaseorder.Vendor, err error) *ParseError {
	return &ParseError{Vendor: v, Err: err}
}

// RowWarning describes a row that was skipped or a value that was questioned
type RowWarning struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (w RowWarning) Error() string {
	if w.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", w.Row, w.Column, w.Message)
	}
	return fmt.Sprintf("row %d: %s", w.Row, w.Message)
}

// Skipped reports whether the warning represents a dropped row
func (w RowWarning) Skipped() bool {
	switch w.Code {
	case ErrCodeImportMalformedRow, ErrCodeImportInvalidLineNo, ErrCodeImportInvalidQuantity, ErrCodeImportForeignPO:
		return true
	}
	return false
}

// warningCollection keeps at most max warnings but counts all of them
type warningCollection struct {
	items   []RowWarning
	max     int
	total   int
	skipped int
}

func newWarningCollection(limit int) *warningCollection {
	if limit <= 0 {
		limit = 100
	}
	return &warningCollection{max: limit}
}

func (c *warningCollection) add(w RowWarning) {
	c.total++
	if w.Skipped() {
		c.skipped++
	}
	if len(c.items) < c.max {
		c.items = append(c.items, w)
	}
}

func (c *warningCollection) skip(row int, column, code, message, value string) {
	c.add(RowWarning{Row: row, Column: column, Code: code, Message: message, Value: value})
}

func (c *warningCollection) truncated() bool {
	return c.total > len(c.items)
}
