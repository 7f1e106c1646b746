package purchaseorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/pohub/backend/internal/domain/purchaseorder"
	poimport "github.com/pohub/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ============================================================================
// PO payloads
// ============================================================================

// HeaderDTO is the PO header as shown in previews and accepted on import.
// Dates are strings so a client may echo back whatever the preview showed.
type HeaderDTO struct {
	ID               *uuid.UUID        `json:"id,omitempty"`
	Vendor           string            `json:"vendor"`
	PONumber         string            `json:"po_number" binding:"max=100"`
	Status           string            `json:"status"`
	OrderDate        *string           `json:"order_date"`
	ExpiryDate       *string           `json:"expiry_date"`
	DeliveryDate     *string           `json:"delivery_date"`
	SupplierName     *string           `json:"supplier_name"`
	SupplierGSTIN    string            `json:"supplier_gstin,omitempty"`
	BuyerGSTIN       string            `json:"buyer_gstin,omitempty"`
	BillingAddress   string            `json:"billing_address,omitempty"`
	ShippingAddress  string            `json:"shipping_address,omitempty"`
	DeliveryLocation string            `json:"delivery_location,omitempty"`
	PaymentTerms     string            `json:"payment_terms,omitempty"`
	TotalQuantity    int64             `json:"total_quantity"`
	TotalTaxable     string            `json:"total_taxable_value"`
	TotalTax         string            `json:"total_tax_amount"`
	TotalAmount      string            `json:"total_amount"`
	Attributes       map[string]string `json:"attributes,omitempty"`
	SourceFileKey    string            `json:"source_file_key,omitempty"`
	CreatedBy        string            `json:"created_by,omitempty"`
	UploadedBy       string            `json:"uploaded_by,omitempty"`
	CreatedAt        *time.Time        `json:"created_at,omitempty"`
	UpdatedAt        *time.Time        `json:"updated_at,omitempty"`
}

// LineDTO is one line item. Money fields are null when unknown.
type LineDTO struct {
	LineNumber   int                 `json:"line_number"`
	SKU          string              `json:"sku,omitempty"`
	HSNCode      string              `json:"hsn_code,omitempty"`
	EAN          string              `json:"ean,omitempty"`
	Title        string              `json:"title,omitempty"`
	Quantity     int64               `json:"quantity" binding:"gte=0"`
	CostPrice    decimal.NullDecimal `json:"cost_price"`
	MRP          decimal.NullDecimal `json:"mrp"`
	CGSTRate     decimal.NullDecimal `json:"cgst_rate"`
	CGSTAmount   decimal.NullDecimal `json:"cgst_amount"`
	SGSTRate     decimal.NullDecimal `json:"sgst_rate"`
	SGSTAmount   decimal.NullDecimal `json:"sgst_amount"`
	IGSTRate     decimal.NullDecimal `json:"igst_rate"`
	IGSTAmount   decimal.NullDecimal `json:"igst_amount"`
	CessRate     decimal.NullDecimal `json:"cess_rate"`
	CessAmount   decimal.NullDecimal `json:"cess_amount"`
	TaxableValue decimal.NullDecimal `json:"taxable_value"`
	TaxAmount    decimal.NullDecimal `json:"tax_amount"`
	TotalAmount  decimal.NullDecimal `json:"total_amount"`
	Status       string              `json:"status,omitempty"`
	Attributes   map[string]string   `json:"attributes,omitempty"`
}

// POPayload is one purchase order with its summary figures
type POPayload struct {
	Header        HeaderDTO `json:"header"`
	Lines         []LineDTO `json:"lines"`
	TotalItems    int       `json:"totalItems"`
	TotalQuantity int64     `json:"totalQuantity"`
	TotalAmount   string    `json:"totalAmount"`
}

// ============================================================================
// Preview
// ============================================================================

// PreviewInput is an uploaded file waiting to be parsed
type PreviewInput struct {
	Filename string
	Data     []byte
	// Vendor forces a parser; empty means detect
	Vendor     string
	UploadedBy string
}

// PreviewResult is what the client reviews before importing.
// Single-PO vendors fill the embedded payload; multi-PO vendors fill POList.
type PreviewResult struct {
	*POPayload
	POList         []POPayload           `json:"poList,omitempty"`
	TotalPOs       int                   `json:"totalPOs,omitempty"`
	DetectedVendor string                `json:"detectedVendor"`
	DetectedBy     string                `json:"detectedBy"`
	Format         string                `json:"format"`
	SkippedRows    int                   `json:"skippedRows"`
	Warnings       []poimport.RowWarning `json:"warnings"`
	WarningCount   int                   `json:"warningCount"`
	SourceFileKey  string                `json:"sourceFileKey,omitempty"`
}

// ============================================================================
// Import
// ============================================================================

// ImportRequest is the body of an import call: either one {header, lines}
// or a poList
type ImportRequest struct {
	Header *HeaderDTO  `json:"header"`
	Lines  []LineDTO   `json:"lines"`
	POList []POPayload `json:"poList"`
}

// Orders flattens the request into one payload per PO
func (r ImportRequest) Orders() []POPayload {
	if len(r.POList) > 0 {
		return r.POList
	}
	if r.Header == nil {
		return nil
	}
	return []POPayload{{Header: *r.Header, Lines: r.Lines}}
}

// ImportInput is a batch of POs to persist
type ImportInput struct {
	Orders         []POPayload
	IdempotencyKey string
	UploadedBy     string
}

// ImportItemResult is the outcome for one PO of a batch
type ImportItemResult struct {
	PONumber string     `json:"poNumber"`
	Success  bool       `json:"success"`
	ID       *uuid.UUID `json:"id,omitempty"`
	Error    string     `json:"error,omitempty"`
	Code     string     `json:"code,omitempty"`
}

// ImportReport collects per-PO results of a multi-PO import
type ImportReport struct {
	Results  []ImportItemResult `json:"results"`
	Imported int                `json:"imported"`
	Failed   int                `json:"failed"`
}

// ImportOutcome holds exactly one of Order or Report
type ImportOutcome struct {
	Order    *POPayload    `json:"order,omitempty"`
	Report   *ImportReport `json:"report,omitempty"`
	Replayed bool          `json:"-"`
}

// ============================================================================
// CRUD
// ============================================================================

// UpdateInput patches header fields. Nil fields are left unchanged.
// When Lines is non-nil the line set is replaced.
type UpdateInput struct {
	OrderDate        *string           `json:"order_date"`
	ExpiryDate       *string           `json:"expiry_date"`
	DeliveryDate     *string           `json:"delivery_date"`
	SupplierName     *string           `json:"supplier_name"`
	SupplierGSTIN    *string           `json:"supplier_gstin"`
	BuyerGSTIN       *string           `json:"buyer_gstin"`
	BillingAddress   *string           `json:"billing_address"`
	ShippingAddress  *string           `json:"shipping_address"`
	DeliveryLocation *string           `json:"delivery_location"`
	PaymentTerms     *string           `json:"payment_terms"`
	Attributes       map[string]string `json:"attributes"`
	Lines            []LineDTO         `json:"lines"`
}

// UpdateStatusRequest changes the lifecycle status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,po_status"`
}

// ListQuery is the PO list filter as received from the query string
type ListQuery struct {
	Vendor   string `form:"vendor" binding:"omitempty,po_vendor"`
	Status   string `form:"status" binding:"omitempty,po_status"`
	Search   string `form:"search"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=po_number vendor status order_date total_amount created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// VendorInfo describes a supported marketplace
type VendorInfo struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	MultiPO     bool   `json:"multiPO"`
}

// ============================================================================
// Mapping
// ============================================================================

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	return poimport.ParseDate(*s)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToHeaderDTO converts a domain header
func ToHeaderDTO(h *purchaseorder.Header) HeaderDTO {
	dto := HeaderDTO{
		Vendor:           h.Vendor.String(),
		PONumber:         h.PONumber,
		Status:           h.Status.String(),
		OrderDate:        formatDate(h.OrderDate),
		ExpiryDate:       formatDate(h.ExpiryDate),
		DeliveryDate:     formatDate(h.DeliveryDate),
		SupplierGSTIN:    h.SupplierGSTIN,
		BuyerGSTIN:       h.BuyerGSTIN,
		BillingAddress:   h.BillingAddress,
		ShippingAddress:  h.ShippingAddress,
		DeliveryLocation: h.DeliveryLocation,
		PaymentTerms:     h.PaymentTerms,
		TotalQuantity:    h.TotalQuantity,
		TotalTaxable:     money(h.TotalTaxableValue),
		TotalTax:         money(h.TotalTaxAmount),
		TotalAmount:      money(h.TotalAmount),
		Attributes:       h.Attributes,
		SourceFileKey:    h.SourceFileKey,
		CreatedBy:        h.CreatedBy,
		UploadedBy:       h.UploadedBy,
	}
	if h.SupplierName != "" {
		name := h.SupplierName
		dto.SupplierName = &name
	}
	if h.ID != uuid.Nil {
		id := h.ID
		dto.ID = &id
	}
	if !h.CreatedAt.IsZero() {
		createdAt, updatedAt := h.CreatedAt, h.UpdatedAt
		dto.CreatedAt = &createdAt
		dto.UpdatedAt = &updatedAt
	}
	return dto
}

// ToLineDTO converts a domain line
func ToLineDTO(l *purchaseorder.Line) LineDTO {
	return LineDTO{
		LineNumber:   l.LineNumber,
		SKU:          l.SKU,
		HSNCode:      l.HSNCode,
		EAN:          l.EAN,
		Title:        l.Title,
		Quantity:     l.Quantity,
		CostPrice:    l.CostPrice,
		MRP:          l.MRP,
		CGSTRate:     l.CGSTRate,
		CGSTAmount:   l.CGSTAmount,
		SGSTRate:     l.SGSTRate,
		SGSTAmount:   l.SGSTAmount,
		IGSTRate:     l.IGSTRate,
		IGSTAmount:   l.IGSTAmount,
		CessRate:     l.CessRate,
		CessAmount:   l.CessAmount,
		TaxableValue: l.TaxableValue,
		TaxAmount:    l.TaxAmount,
		TotalAmount:  l.TotalAmount,
		Status:       l.Status,
		Attributes:   l.Attributes,
	}
}

// ToPayload converts a full order
func ToPayload(o *purchaseorder.PurchaseOrder) POPayload {
	lines := make([]LineDTO, len(o.Lines))
	for i := range o.Lines {
		lines[i] = ToLineDTO(&o.Lines[i])
	}
	return POPayload{
		Header:        ToHeaderDTO(&o.Header),
		Lines:         lines,
		TotalItems:    o.ItemCount(),
		TotalQuantity: o.Header.TotalQuantity,
		TotalAmount:   money(o.Header.TotalAmount),
	}
}

// previewPayload is ToPayload with display cleanup of the supplier name
func previewPayload(o *purchaseorder.PurchaseOrder) POPayload {
	p := ToPayload(o)
	if p.Header.SupplierName != nil {
		if clean := poimport.SanitizeDisplay(*p.Header.SupplierName); clean == "" {
			p.Header.SupplierName = nil
		} else {
			p.Header.SupplierName = &clean
		}
	}
	return p
}

func toDomainLines(in []LineDTO) []purchaseorder.Line {
	lines := make([]purchaseorder.Line, len(in))
	for i, l := range in {
		lines[i] = purchaseorder.Line{
			ID:           uuid.New(),
			LineNumber:   l.LineNumber,
			SKU:          l.SKU,
			HSNCode:      l.HSNCode,
			EAN:          l.EAN,
			Title:        l.Title,
			Quantity:     l.Quantity,
			CostPrice:    l.CostPrice,
			MRP:          l.MRP,
			CGSTRate:     l.CGSTRate,
			CGSTAmount:   l.CGSTAmount,
			SGSTRate:     l.SGSTRate,
			SGSTAmount:   l.SGSTAmount,
			IGSTRate:     l.IGSTRate,
			IGSTAmount:   l.IGSTAmount,
			CessRate:     l.CessRate,
			CessAmount:   l.CessAmount,
			TaxableValue: l.TaxableValue,
			TaxAmount:    l.TaxAmount,
			TotalAmount:  l.TotalAmount,
			Status:       l.Status,
			Attributes:   l.Attributes,
		}
	}
	return lines
}

// statedTotals reads the totals a client echoed back from a preview
func statedTotals(p POPayload) purchaseorder.StatedTotals {
	h := p.Header
	st := purchaseorder.StatedTotals{
		TaxableValue: poimport.ParseDecimal(h.TotalTaxable),
		TaxAmount:    poimport.ParseDecimal(h.TotalTax),
		TotalAmount:  poimport.ParseDecimal(h.TotalAmount),
	}
	if !st.TotalAmount.Valid {
		st.TotalAmount = poimport.ParseDecimal(p.TotalAmount)
	}
	q := h.TotalQuantity
	if q == 0 {
		q = p.TotalQuantity
	}
	if q != 0 {
		st.Quantity = &q
	}
	return st
}

// toDomain builds a fresh order from a client payload. Totals are
// recomputed from the lines; echoed totals only fill sums that come out
// zero. Date strings are coerced, invalid ones becoming nil.
func toDomain(vendor purchaseorder.Vendor, p POPayload, uploadedBy string) *purchaseorder.PurchaseOrder {
	h := p.Header
	order := purchaseorder.NewPurchaseOrder(vendor, h.PONumber, toDomainLines(p.Lines))
	order.Renumber()
	order.ReconcileStated(statedTotals(p))

	oh := &order.Header
	if h.Status != "" {
		oh.Status = purchaseorder.NormalizeStatus(h.Status)
	}
	oh.OrderDate = parseDate(h.OrderDate)
	oh.ExpiryDate = parseDate(h.ExpiryDate)
	oh.DeliveryDate = parseDate(h.DeliveryDate)
	if h.SupplierName != nil {
		oh.SupplierName = *h.SupplierName
	}
	oh.SupplierGSTIN = h.SupplierGSTIN
	oh.BuyerGSTIN = h.BuyerGSTIN
	oh.BillingAddress = h.BillingAddress
	oh.ShippingAddress = h.ShippingAddress
	oh.DeliveryLocation = h.DeliveryLocation
	oh.PaymentTerms = h.PaymentTerms
	oh.Attributes = h.Attributes
	oh.SourceFileKey = h.SourceFileKey
	oh.CreatedBy = uploadedBy
	oh.UploadedBy = h.UploadedBy
	if oh.UploadedBy == "" {
		oh.UploadedBy = uploadedBy
	}
	return order
}
