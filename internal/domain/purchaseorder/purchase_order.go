package purchaseorder

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pohub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const maxPONumberLength = 100

var hundred = decimal.NewFromInt(100)

// Header is the PO-level record shared by every vendor
type Header struct {
	shared.BaseEntity
	Vendor           Vendor
	PONumber         string
	Status           Status
	OrderDate        *time.Time
	ExpiryDate       *time.Time
	DeliveryDate     *time.Time
	SupplierName     string
	SupplierGSTIN    string
	BuyerGSTIN       string
	BillingAddress   string
	ShippingAddress  string
	DeliveryLocation string
	PaymentTerms     string

	TotalQuantity     int64
	TotalTaxableValue decimal.Decimal
	TotalTaxAmount    decimal.Decimal
	TotalAmount       decimal.Decimal

	// Attributes holds vendor-specific metadata that has no column of its own.
	Attributes map[string]string

	SourceFileKey string
	CreatedBy     string
	UploadedBy    string
}

// Line is one item row of a purchase order.
// Money fields are null when the source cell was absent or unparseable.
type Line struct {
	ID         uuid.UUID
	LineNumber int
	SKU        string
	HSNCode    string
	EAN        string
	Title      string
	Quantity   int64

	CostPrice decimal.NullDecimal
	MRP       decimal.NullDecimal

	// The four tax components are independent; a line may carry all of them.
	CGSTRate   decimal.NullDecimal
	CGSTAmount decimal.NullDecimal
	SGSTRate   decimal.NullDecimal
	SGSTAmount decimal.NullDecimal
	IGSTRate   decimal.NullDecimal
	IGSTAmount decimal.NullDecimal
	CessRate   decimal.NullDecimal
	CessAmount decimal.NullDecimal

	TaxableValue decimal.NullDecimal
	TaxAmount    decimal.NullDecimal
	TotalAmount  decimal.NullDecimal

	Status     string
	Attributes map[string]string
}

// PurchaseOrder is the aggregate: one header plus its lines
type PurchaseOrder struct {
	Header Header
	Lines  []Line
}

// NewPurchaseOrder creates an open purchase order with a fresh identity
func NewPurchaseOrder(vendor Vendor, poNumber string, lines []Line) *PurchaseOrder {
	order := &PurchaseOrder{
		Header: Header{
			BaseEntity: shared.NewBaseEntity(),
			Vendor:     vendor,
			PONumber:   strings.TrimSpace(poNumber),
			Status:     StatusOpen,
		},
		Lines: lines,
	}
	order.RecomputeTotals()
	return order
}

// ItemCount returns the number of lines
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Lines)
}

// Derive fills derived money fields the source left empty.
// Present values are never overwritten.
func (l *Line) Derive() {
	qty := decimal.NewFromInt(l.Quantity)
	if !l.TaxableValue.Valid && l.CostPrice.Valid {
		l.TaxableValue = valid(l.CostPrice.Decimal.Mul(qty))
	}

	if l.TaxableValue.Valid {
		base := l.TaxableValue.Decimal
		fillComponent(&l.CGSTAmount, l.CGSTRate, base)
		fillComponent(&l.SGSTAmount, l.SGSTRate, base)
		fillComponent(&l.IGSTAmount, l.IGSTRate, base)
		fillComponent(&l.CessAmount, l.CessRate, base)
	}

	if !l.TaxAmount.Valid {
		sum, found := sumValid(l.CGSTAmount, l.SGSTAmount, l.IGSTAmount, l.CessAmount)
		if found {
			l.TaxAmount = valid(sum)
		}
	}

	if !l.TotalAmount.Valid && l.TaxableValue.Valid {
		total := l.TaxableValue.Decimal
		if l.TaxAmount.Valid {
			total = total.Add(l.TaxAmount.Decimal)
		}
		l.TotalAmount = valid(total)
	}
}

func fillComponent(amount *decimal.NullDecimal, rate decimal.NullDecimal, base decimal.Decimal) {
	if amount.Valid || !rate.Valid {
		return
	}
	*amount = valid(base.Mul(rate.Decimal).Div(hundred).Round(2))
}

// RecomputeTotals derives line fields and rebuilds the header totals from the lines.
// Unparseable (null) line values are excluded from the sums.
func (o *PurchaseOrder) RecomputeTotals() {
	var qty int64
	taxable := decimal.Zero
	tax := decimal.Zero
	total := decimal.Zero

	for i := range o.Lines {
		l := &o.Lines[i]
		l.Derive()
		qty += l.Quantity
		if l.TaxableValue.Valid {
			taxable = taxable.Add(l.TaxableValue.Decimal)
		}
		if l.TaxAmount.Valid {
			tax = tax.Add(l.TaxAmount.Decimal)
		}
		if l.TotalAmount.Valid {
			total = total.Add(l.TotalAmount.Decimal)
		}
	}

	o.Header.TotalQuantity = qty
	o.Header.TotalTaxableValue = taxable
	o.Header.TotalTaxAmount = tax
	o.Header.TotalAmount = total
}

// Validate checks the invariants a PO must satisfy before it is persisted
func (o *PurchaseOrder) Validate() error {
	h := &o.Header
	if !h.Vendor.IsValid() {
		return shared.NewDomainError("INVALID_VENDOR", fmt.Sprintf("unsupported vendor: %s", h.Vendor))
	}
	if strings.TrimSpace(h.PONumber) == "" {
		return shared.NewDomainError("INVALID_PO_NUMBER", "po_number is required")
	}
	if len(h.PONumber) > maxPONumberLength {
		return shared.NewDomainError("INVALID_PO_NUMBER", fmt.Sprintf("po_number cannot exceed %d characters", maxPONumberLength))
	}
	if !h.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("invalid status: %s", h.Status))
	}
	if err := checkWidths("", []fieldWidth{
		{"supplier_name", h.SupplierName, 300},
		{"supplier_gstin", h.SupplierGSTIN, 20},
		{"buyer_gstin", h.BuyerGSTIN, 20},
		{"delivery_location", h.DeliveryLocation, 300},
		{"payment_terms", h.PaymentTerms, 200},
		{"source_file_key", h.SourceFileKey, 500},
		{"created_by", h.CreatedBy, 100},
		{"uploaded_by", h.UploadedBy, 100},
	}); err != nil {
		return err
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	for i, l := range o.Lines {
		if err := checkWidths(fmt.Sprintf("line %d: ", i+1), []fieldWidth{
			{"sku", l.SKU, 100},
			{"hsn_code", l.HSNCode, 20},
			{"ean", l.EAN, 32},
			{"status", l.Status, 50},
		}); err != nil {
			return err
		}
		if l.Quantity < 0 {
			return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("line %d: quantity cannot be negative", i+1))
		}
		if l.LineNumber <= 0 {
			return shared.NewDomainError("INVALID_LINE_NUMBER", fmt.Sprintf("line %d: line_number must be positive", i+1))
		}
	}
	return nil
}

// fieldWidth is a text field and the width of the column storing it
type fieldWidth struct {
	name  string
	value string
	max   int
}

func checkWidths(prefix string, fields []fieldWidth) error {
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return shared.NewDomainError("FIELD_TOO_LONG",
				fmt.Sprintf("%s%s cannot exceed %d characters", prefix, f.name, f.max))
		}
	}
	return nil
}

// ChangeStatus moves the PO to target if the transition is allowed
func (o *PurchaseOrder) ChangeStatus(target Status) error {
	if o.Header.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("purchase order is %s and can no longer change", o.Header.Status))
	}
	if !o.Header.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("cannot change status from %s to %s", o.Header.Status, target))
	}
	o.Header.Status = target
	o.Header.Touch()
	return nil
}

// ReplaceLines swaps the full line set and recomputes totals
func (o *PurchaseOrder) ReplaceLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrNoLines
	}
	o.Lines = lines
	o.RecomputeTotals()
	o.Header.Touch()
	return nil
}

// Renumber assigns positional line numbers to lines that have none
func (o *PurchaseOrder) Renumber() {
	for i := range o.Lines {
		if o.Lines[i].LineNumber <= 0 {
			o.Lines[i].LineNumber = i + 1
		}
	}
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func sumValid(values ...decimal.NullDecimal) (decimal.Decimal, bool) {
	sum := decimal.Zero
	found := false
	for _, v := range values {
		if v.Valid {
			sum = sum.Add(v.Decimal)
			found = true
		}
	}
	return sum, found
}

// StatedTotals are totals printed in the source document or echoed by a client
type StatedTotals struct {
	Quantity     *int64
	TaxableValue decimal.NullDecimal
	TaxAmount    decimal.NullDecimal
	TotalAmount  decimal.NullDecimal
}

// ReconcileStated applies stated totals as a fallback to computed ones.
// A stated value wins only where the computed sum is zero; where both are
// non-zero and disagree, the computed sum is kept and the field is reported.
func (o *PurchaseOrder) ReconcileStated(stated StatedTotals) []string {
	var mismatches []string
	h := &o.Header

	if stated.Quantity != nil && *stated.Quantity != 0 {
		switch {
		case h.TotalQuantity == 0:
			h.TotalQuantity = *stated.Quantity
		case h.TotalQuantity != *stated.Quantity:
			mismatches = append(mismatches, "total_quantity")
		}
	}

	reconcile := func(field string, computed *decimal.Decimal, s decimal.NullDecimal) {
		if !s.Valid || s.Decimal.IsZero() {
			return
		}
		switch {
		case computed.IsZero():
			*computed = s.Decimal
		case !computed.Round(2).Equal(s.Decimal.Round(2)):
			mismatches = append(mismatches, field)
		}
	}
	reconcile("total_taxable_value", &h.TotalTaxableValue, stated.TaxableValue)
	reconcile("total_tax_amount", &h.TotalTaxAmount, stated.TaxAmount)
	reconcile("total_amount", &h.TotalAmount, stated.TotalAmount)

	return mismatches
}
