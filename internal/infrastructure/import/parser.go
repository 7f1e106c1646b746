package poimport

import (
	"errors"
	"time"

	"github.com/pohub/backend/internal/domain/purchaseorder"
)

// Parser turns one vendor's export into purchase orders.
// Parsers are pure: no I/O, no logging. Problems with single rows are
// returned as warnings on the Result.
type Parser interface {
	Vendor() purchaseorder.Vendor
	// Score reports how well g matches this vendor's layout; 0 means not at all
	Score(g Grid) int
	ParseGrid(g Grid, uploadedBy string) (*Result, error)
	Parse(data []byte, uploadedBy string) (*Result, error)
}

// Result is the outcome of a successful parse
type Result struct {
	Vendor   purchaseorder.Vendor
	Format   Format
	Orders   []*purchaseorder.PurchaseOrder
	Warnings []RowWarning
	// WarningCount includes warnings dropped once the list was full
	WarningCount int
	// Skipped is the number of data rows that were not turned into lines
	Skipped int
}

// Single returns the only order of a single-PO parse
func (r *Result) Single() *purchaseorder.PurchaseOrder {
	if len(r.Orders) == 0 {
		return nil
	}
	return r.Orders[0]
}

// Option configures a vendor parser
type Option func(*tableParser)

// WithClock overrides the clock used for synthetic PO numbers
func WithClock(now func() time.Time) Option {
	return func(p *tableParser) {
		p.now = now
	}
}

// WithWarningLimit caps the number of warnings kept on a Result
func WithWarningLimit(n int) Option {
	return func(p *tableParser) {
		p.warningLimit = n
	}
}

type mode int

const (
	// modeHeaderBlock: labelled header block above a line table, one PO
	modeHeaderBlock mode = iota
	// modeFlat: one table, every row repeats the PO details, one PO per file
	modeFlat
	// modeGrouped: one table holding rows for several POs
	modeGrouped
)

// tableParser is the shared engine behind every vendor parser
type tableParser struct {
	layout       layout
	mode         mode
	now          func() time.Time
	warningLimit int
}

func newTableParser(l layout, m mode, opts ...Option) *tableParser {
	p := &tableParser{layout: l, mode: m, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Vendor returns the vendor this parser handles
func (p *tableParser) Vendor() purchaseorder.Vendor {
	return p.layout.vendor
}

// Score implements Parser
func (p *tableParser) Score(g Grid) int {
	return p.layout.score(g)
}

// Parse decodes data and parses the resulting grid
func (p *tableParser) Parse(data []byte, uploadedBy string) (*Result, error) {
	g, format, err := DecodeGrid(data)
	if err != nil {
		return nil, parseErr(p.layout.vendor, err)
	}
	res, err := p.ParseGrid(g, uploadedBy)
	if err != nil {
		return nil, err
	}
	res.Format = format
	return res, nil
}

// ParseGrid implements Parser
func (p *tableParser) ParseGrid(g Grid, uploadedBy string) (*Result, error) {
	l := &p.layout
	t, tableErr := l.locateTable(g)

	var hb headerBlock
	if p.mode == modeHeaderBlock {
		limit := len(g)
		if tableErr == nil {
			limit = t.headerRow
		}
		hb = l.readHeaderBlock(g, limit)
		_, poColumn := tableColumn(t, fieldPONumber)
		if hb.values[fieldPONumber] == "" && !poColumn {
			return nil, parseErr(l.vendor, ErrPONumberNotFound)
		}
	}
	if tableErr != nil {
		return nil, parseErr(l.vendor, tableErr)
	}

	w := newWarningCollection(p.warningLimit)
	recs := l.scan(g, t, w)
	if len(recs) == 0 {
		return nil, parseErr(l.vendor, ErrNoDataRows)
	}

	var (
		orders []*purchaseorder.PurchaseOrder
		err    error
	)
	switch p.mode {
	case modeGrouped:
		orders = p.grouped(recs, uploadedBy, w)
	case modeFlat:
		orders, err = p.flat(g, t, recs, uploadedBy, w)
	default:
		orders, err = p.headerBlock(hb, recs, uploadedBy)
	}
	if err != nil {
		return nil, parseErr(l.vendor, err)
	}

	if len(orders) == 1 {
		end := recs[len(recs)-1].row
		reconcile(orders[0], l.readStatedTotals(g, end), end+1, w)
	}

	return &Result{
		Vendor:       l.vendor,
		Orders:       orders,
		Warnings:     w.items,
		WarningCount: w.total,
		Skipped:      w.skipped,
	}, nil
}

func tableColumn(t *table, f field) (int, bool) {
	if t == nil {
		return -1, false
	}
	c, ok := t.cols[f]
	return c, ok
}

func (p *tableParser) headerBlock(hb headerBlock, recs []record, uploadedBy string) ([]*purchaseorder.PurchaseOrder, error) {
	lines := make([]purchaseorder.Line, 0, len(recs))
	for i, rec := range recs {
		lines = append(lines, buildLine(rec, i+1))
	}
	order := assemble(p.layout.vendor, "", uploadedBy, lines)
	applyHeader(&order.Header, hb.values, hb.attrs)
	applyHeader(&order.Header, recs[0].values, nil)
	if order.Header.PONumber == "" {
		return nil, ErrPONumberNotFound
	}
	return []*purchaseorder.PurchaseOrder{order}, nil
}

// flat builds a single PO from a table whose first row carries the header.
// Rows naming a different PO are skipped.
func (p *tableParser) flat(g Grid, t *table, recs []record, uploadedBy string, w *warningCollection) ([]*purchaseorder.PurchaseOrder, error) {
	poNumber := cleanText(recs[0].values[fieldPONumber])
	if poNumber == "" {
		return nil, ErrPONumberNotFound
	}
	poCol, _ := tableColumn(t, fieldPONumber)

	lines := make([]purchaseorder.Line, 0, len(recs))
	for _, rec := range recs {
		if n := cleanText(rec.values[fieldPONumber]); n != "" && n != poNumber {
			w.skip(rec.row, g.Cell(t.headerRow, poCol), ErrCodeImportForeignPO,
				"row belongs to another purchase order, row skipped", n)
			continue
		}
		lines = append(lines, buildLine(rec, len(lines)+1))
	}

	order := assemble(p.layout.vendor, poNumber, uploadedBy, lines)
	applyHeader(&order.Header, recs[0].values, nil)
	return []*purchaseorder.PurchaseOrder{order}, nil
}

// grouped splits rows by PO number, keeping first-seen order.
// Rows without a number share one synthetic number.
func (p *tableParser) grouped(recs []record, uploadedBy string, w *warningCollection) []*purchaseorder.PurchaseOrder {
	var (
		order     []string
		groups    = map[string][]record{}
		synthetic string
	)
	for _, rec := range recs {
		n := cleanText(rec.values[fieldPONumber])
		if n == "" {
			if synthetic == "" {
				synthetic = syntheticNumber(p.layout.vendor, p.now())
				w.add(RowWarning{
					Row:     rec.row,
					Code:    ErrCodeImportSyntheticPONumber,
					Message: "po number missing, generated " + synthetic,
					Value:   synthetic,
				})
			}
			n = synthetic
		}
		if _, seen := groups[n]; !seen {
			order = append(order, n)
		}
		groups[n] = append(groups[n], rec)
	}

	out := make([]*purchaseorder.PurchaseOrder, 0, len(order))
	for _, n := range order {
		rows := groups[n]
		lines := make([]purchaseorder.Line, 0, len(rows))
		for i, rec := range rows {
			lines = append(lines, buildLine(rec, i+1))
		}
		po := assemble(p.layout.vendor, n, uploadedBy, lines)
		applyHeader(&po.Header, rows[0].values, nil)
		out = append(out, po)
	}
	return out
}

// IsParseError reports whether err is a structural parse failure
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
