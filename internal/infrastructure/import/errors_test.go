package poimport

import (
	"errors"
	"testing"

	"github.com/pohub/backend/internal/domain/purchaseorder"
	"github.com/stretchr/testify/assert"
)

func TestRowWarning_Error(t *testing.T) {
	w := RowWarning{Row: 7, Column: "Qty", Code: ErrCodeImportInvalidQuantity, Message: "quantity must be positive"}
	assert.Equal(t, "row 7, column 'Qty': quantity must be positive", w.Error())

	w = RowWarning{Row: 3, Code: ErrCodeImportMalformedRow, Message: "too few cells"}
	assert.Equal(t, "row 3: too few cells", w.Error())
}

func TestRowWarning_Skipped(t *testing.T) {
	assert.True(t, RowWarning{Code: ErrCodeImportMalformedRow}.Skipped())
	assert.True(t, RowWarning{Code: ErrCodeImportForeignPO}.Skipped())
	assert.False(t, RowWarning{Code: ErrCodeImportTotalsMismatch}.Skipped())
	assert.False(t, RowWarning{Code: ErrCodeImportSyntheticPONumber}.Skipped())
}

func TestWarningCollection(t *testing.T) {
	c := newWarningCollection(2)
	c.skip(1, "", ErrCodeImportMalformedRow, "bad", "")
	c.skip(2, "Qty", ErrCodeImportInvalidQuantity, "bad", "x")
	c.add(RowWarning{Row: 3, Code: ErrCodeImportTotalsMismatch, Message: "mismatch"})

	assert.Len(t, c.items, 2)
	assert.Equal(t, 3, c.total)
	assert.Equal(t, 2, c.skipped)
	assert.True(t, c.truncated())

	assert.Equal(t, 100, newWarningCollection(0).max)
}

func TestParseError(t *testing.T) {
	err := parseErr(purchaseorder.VendorZepto, ErrTableNotFound)
	assert.True(t, errors.Is(err, ErrTableNotFound))
	assert.Contains(t, err.Error(), purchaseorder.VendorZepto.DisplayName())

	var pe *ParseError
	assert.True(t, errors.As(error(err), &pe))
	assert.Equal(t, purchaseorder.VendorZepto, pe.Vendor)
}
