package poimport

import (
	"fmt"
	"strings"
	"time"

	"github.com/pohub/backend/internal/domain/purchaseorder"
)

// field names a header or line value a layout can locate
type field int

const (
	fieldNone field = iota

	// header fields
	fieldPONumber
	fieldStatus
	fieldOrderDate
	fieldExpiryDate
	fieldDeliveryDate
	fieldSupplierName
	fieldSupplierGSTIN
	fieldBuyerGSTIN
	fieldBillingAddress
	fieldShippingAddress
	fieldDeliveryLocation
	fieldPaymentTerms

	// line fields
	fieldLineNumber
	fieldSKU
	fieldHSN
	fieldEAN
	fieldTitle
	fieldQuantity
	fieldCostPrice
	fieldMRP
	fieldCGSTRate
	fieldCGSTAmount
	fieldSGSTRate
	fieldSGSTAmount
	fieldIGSTRate
	fieldIGSTAmount
	fieldCessRate
	fieldCessAmount
	fieldTaxableValue
	fieldTaxAmount
	fieldTotalAmount
	fieldLineStatus
)

// sentinel is a header-block label. When attr is set the value is stored
// under that key in Header.Attributes instead of a typed field.
type sentinel struct {
	field  field
	attr   string
	labels []string
}

// column is a line-table column. Header fields may also appear as columns
// in flat exports where every row repeats the PO details.
type column struct {
	field   field
	attr    string
	aliases []string
}

// layout describes where one vendor keeps things
type layout struct {
	vendor    purchaseorder.Vendor
	placement Placement
	sentinels []sentinel
	markers   []string
	columns   []column
	// anchor is the column whose blank cell ends the table; column 0 when unset
	anchor field
	// statedTotals enables the "Total Quantity" / "Net amount" cross-check
	statedTotals bool
}

const (
	// how many leading rows structural scoring looks at
	scoreScanRows = 60
	tableScore    = 10
)

func (l *layout) allLabels() labelSet {
	var all []string
	for _, s := range l.sentinels {
		all = append(all, s.labels...)
	}
	return newLabelSet(all...)
}

// score counts matched sentinels and table markers. A row holding every
// marker is worth tableScore on its own.
func (l *layout) score(g Grid) int {
	best := 0
	for r := 0; r < len(g) && r < scoreScanRows; r++ {
		if h := markerHits(g[r], l.markers); h > best {
			best = h
		}
	}
	score := best
	if best == len(l.markers) {
		score = tableScore
	}
	for _, s := range l.sentinels {
		if labelPresent(g, scoreScanRows, newLabelSet(s.labels...)) {
			score++
		}
	}
	return score
}

// headerBlock reads every sentinel from the rows above the table
type headerBlock struct {
	values map[field]string
	attrs  map[string]string
}

func (l *layout) readHeaderBlock(g Grid, limit int) headerBlock {
	hb := headerBlock{values: map[field]string{}, attrs: map[string]string{}}
	stop := l.allLabels()
	for _, s := range l.sentinels {
		m, ok := findLabel(g, limit, l.placement, newLabelSet(s.labels...), stop)
		if !ok {
			continue
		}
		v := cleanText(m.value)
		if s.attr != "" {
			hb.attrs[s.attr] = v
		} else {
			hb.values[s.field] = v
		}
	}
	return hb
}

// table is a located line-item table
type table struct {
	headerRow int
	cols      map[field]int
	attrCols  map[string]int
}

func (l *layout) locateTable(g Grid) (*table, error) {
	hdr, ok := findTable(g, 0, l.markers)
	if !ok {
		return nil, fmt.Errorf("%w: expected columns %s", ErrTableNotFound, strings.Join(l.markers, ", "))
	}
	t := &table{headerRow: hdr, cols: map[field]int{}, attrCols: map[string]int{}}
	for _, c := range l.columns {
		idx, ok := columnIndex(g[hdr], c.aliases)
		if !ok {
			continue
		}
		if c.attr != "" {
			t.attrCols[c.attr] = idx
		} else if _, taken := t.cols[c.field]; !taken {
			t.cols[c.field] = idx
		}
	}
	if _, ok := t.cols[fieldQuantity]; !ok {
		return nil, fmt.Errorf("%w: quantity column missing", ErrTableNotFound)
	}
	return t, nil
}

// record is one accepted data row
type record struct {
	row        int
	lineNumber int
	values     map[field]string
	attrs      map[string]string
}

// scan walks data rows below the table header. A blank anchor cell or a
// totals row ends the table; a row with a non-numeric line number or an
// unreadable quantity is skipped and reported.
func (l *layout) scan(g Grid, t *table, w *warningCollection) []record {
	anchor := 0
	if l.anchor != fieldNone {
		if c, ok := t.cols[l.anchor]; ok {
			anchor = c
		}
	}
	header := g[t.headerRow]

	var out []record
	for r := t.headerRow + 1; r < len(g); r++ {
		row := g[r]
		if rowBlank(row) || cell(row, anchor) == "" || isTotalsRow(row) {
			break
		}

		rec := record{row: r + 1, values: make(map[field]string, len(t.cols)), attrs: make(map[string]string, len(t.attrCols))}
		for f, c := range t.cols {
			rec.values[f] = cell(row, c)
		}
		for k, c := range t.attrCols {
			if v := cell(row, c); v != "" {
				rec.attrs[k] = cleanText(v)
			}
		}

		if c, ok := t.cols[fieldLineNumber]; ok {
			n, ok := parseLineNumber(rec.values[fieldLineNumber])
			if !ok {
				w.skip(rec.row, cell(header, c), ErrCodeImportInvalidLineNo,
					"line number is not numeric, row skipped", rec.values[fieldLineNumber])
				continue
			}
			rec.lineNumber = n
		}
		if _, ok := ParseQuantity(rec.values[fieldQuantity]); !ok {
			w.skip(rec.row, cell(header, t.cols[fieldQuantity]), ErrCodeImportInvalidQuantity,
				"quantity is not numeric, row skipped", rec.values[fieldQuantity])
			continue
		}
		out = append(out, rec)
	}
	return out
}

// readStatedTotals reads the vendor's printed totals below the table
func (l *layout) readStatedTotals(g Grid, from int) purchaseorder.StatedTotals {
	var st purchaseorder.StatedTotals
	if !l.statedTotals {
		return st
	}
	rest := g[from:]
	if m, ok := findLabel(rest, 0, PlaceRight, newLabelSet("Total Quantity", "Total Qty"), nil); ok {
		if q, ok := ParseQuantity(m.value); ok {
			st.Quantity = &q
		}
	}
	if m, ok := findLabel(rest, 0, PlaceRight, newLabelSet("Net amount", "Grand Total", "Net Payable"), nil); ok {
		st.TotalAmount = ParseDecimal(m.value)
	}
	return st
}

// buildLine converts a record into a domain line
func buildLine(rec record, position int) purchaseorder.Line {
	v := rec.values
	qty, _ := ParseQuantity(v[fieldQuantity])
	n := rec.lineNumber
	if n == 0 {
		n = position
	}
	l := purchaseorder.Line{
		LineNumber:   n,
		SKU:          cleanText(v[fieldSKU]),
		HSNCode:      cleanText(v[fieldHSN]),
		EAN:          cleanText(v[fieldEAN]),
		Title:        cleanText(v[fieldTitle]),
		Quantity:     qty,
		CostPrice:    ParseDecimal(v[fieldCostPrice]),
		MRP:          ParseDecimal(v[fieldMRP]),
		CGSTRate:     ParseDecimal(v[fieldCGSTRate]),
		CGSTAmount:   ParseDecimal(v[fieldCGSTAmount]),
		SGSTRate:     ParseDecimal(v[fieldSGSTRate]),
		SGSTAmount:   ParseDecimal(v[fieldSGSTAmount]),
		IGSTRate:     ParseDecimal(v[fieldIGSTRate]),
		IGSTAmount:   ParseDecimal(v[fieldIGSTAmount]),
		CessRate:     ParseDecimal(v[fieldCessRate]),
		CessAmount:   ParseDecimal(v[fieldCessAmount]),
		TaxableValue: ParseDecimal(v[fieldTaxableValue]),
		TaxAmount:    ParseDecimal(v[fieldTaxAmount]),
		TotalAmount:  ParseDecimal(v[fieldTotalAmount]),
		Status:       cleanText(v[fieldLineStatus]),
	}
	if len(rec.attrs) > 0 {
		l.Attributes = rec.attrs
	}
	return l
}

// applyHeader copies located header values onto h. Values already set win.
func applyHeader(h *purchaseorder.Header, values map[field]string, attrs map[string]string) {
	setText := func(dst *string, f field) {
		if *dst == "" {
			*dst = cleanText(values[f])
		}
	}
	setDate := func(dst **time.Time, f field) {
		if *dst == nil {
			*dst = ParseDate(values[f])
		}
	}

	setText(&h.PONumber, fieldPONumber)
	setText(&h.SupplierName, fieldSupplierName)
	setText(&h.SupplierGSTIN, fieldSupplierGSTIN)
	setText(&h.BuyerGSTIN, fieldBuyerGSTIN)
	setText(&h.BillingAddress, fieldBillingAddress)
	setText(&h.ShippingAddress, fieldShippingAddress)
	setText(&h.DeliveryLocation, fieldDeliveryLocation)
	setText(&h.PaymentTerms, fieldPaymentTerms)
	setDate(&h.OrderDate, fieldOrderDate)
	setDate(&h.ExpiryDate, fieldExpiryDate)
	setDate(&h.DeliveryDate, fieldDeliveryDate)
	if raw := values[fieldStatus]; raw != "" && h.Status == purchaseorder.StatusOpen {
		h.Status = purchaseorder.NormalizeStatus(raw)
	}

	for k, v := range attrs {
		if v == "" {
			continue
		}
		if h.Attributes == nil {
			h.Attributes = map[string]string{}
		}
		if _, ok := h.Attributes[k]; !ok {
			h.Attributes[k] = v
		}
	}
}

// assemble builds the aggregate and recomputes its totals from the lines
func assemble(vendor purchaseorder.Vendor, poNumber, uploadedBy string, lines []purchaseorder.Line) *purchaseorder.PurchaseOrder {
	order := purchaseorder.NewPurchaseOrder(vendor, poNumber, lines)
	order.Header.UploadedBy = uploadedBy
	order.Header.CreatedBy = uploadedBy
	return order
}

// reconcile applies stated totals and reports disagreements as warnings
func reconcile(order *purchaseorder.PurchaseOrder, st purchaseorder.StatedTotals, row int, w *warningCollection) {
	for _, f := range order.ReconcileStated(st) {
		w.add(RowWarning{
			Row:     row,
			Column:  f,
			Code:    ErrCodeImportTotalsMismatch,
			Message: "stated total differs from the sum of lines; computed value kept",
		})
	}
}

// syntheticNumber is used when a multi-PO export leaves the PO column blank
func syntheticNumber(v purchaseorder.Vendor, now time.Time) string {
	return fmt.Sprintf("%s_%d", v.Prefix(), now.UnixMilli())
}
