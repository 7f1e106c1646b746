package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pohub/backend/internal/domain/purchaseorder"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// POHeaderModel is the persistence model for a purchase order header.
// (vendor, po_number) is unique.
type POHeaderModel struct {
	BaseModel
	Vendor            purchaseorder.Vendor `gorm:"type:varchar(20);not null;uniqueIndex:idx_po_headers_vendor_number,priority:1"`
	PONumber          string               `gorm:"column:po_number;type:varchar(100);not null;uniqueIndex:idx_po_headers_vendor_number,priority:2"`
	Status            purchaseorder.Status `gorm:"type:varchar(20);not null;default:'Open';index"`
	OrderDate         *time.Time           `gorm:"index"`
	ExpiryDate        *time.Time
	DeliveryDate      *time.Time
	SupplierName      string          `gorm:"type:varchar(300)"`
	SupplierGSTIN     string          `gorm:"column:supplier_gstin;type:varchar(20)"`
	BuyerGSTIN        string          `gorm:"column:buyer_gstin;type:varchar(20)"`
	BillingAddress    string          `gorm:"type:text"`
	ShippingAddress   string          `gorm:"type:text"`
	DeliveryLocation  string          `gorm:"type:varchar(300)"`
	PaymentTerms      string          `gorm:"type:varchar(200)"`
	TotalQuantity     int64           `gorm:"not null;default:0"`
	TotalTaxableValue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalTaxAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Attributes        datatypes.JSONMap
	SourceFileKey     string        `gorm:"type:varchar(500)"`
	CreatedBy         string        `gorm:"type:varchar(100)"`
	UploadedBy        string        `gorm:"type:varchar(100)"`
	Lines             []POLineModel `gorm:"foreignKey:HeaderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (POHeaderModel) TableName() string {
	return "po_headers"
}

// POLineModel is the persistence model for one purchase order line
type POLineModel struct {
	ID           uuid.UUID           `gorm:"type:uuid;primary_key"`
	HeaderID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	LineNumber   int                 `gorm:"not null"`
	SKU          string              `gorm:"column:sku;type:varchar(100)"`
	HSNCode      string              `gorm:"column:hsn_code;type:varchar(20)"`
	EAN          string              `gorm:"column:ean;type:varchar(32)"`
	Title        string              `gorm:"type:text"`
	Quantity     int64               `gorm:"not null;default:0"`
	CostPrice    decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	MRP          decimal.NullDecimal `gorm:"column:mrp;type:decimal(18,4)"`
	CGSTRate     decimal.NullDecimal `gorm:"column:cgst_rate;type:decimal(7,4)"`
	CGSTAmount   decimal.NullDecimal `gorm:"column:cgst_amount;type:decimal(18,4)"`
	SGSTRate     decimal.NullDecimal `gorm:"column:sgst_rate;type:decimal(7,4)"`
	SGSTAmount   decimal.NullDecimal `gorm:"column:sgst_amount;type:decimal(18,4)"`
	IGSTRate     decimal.NullDecimal `gorm:"column:igst_rate;type:decimal(7,4)"`
	IGSTAmount   decimal.NullDecimal `gorm:"column:igst_amount;type:decimal(18,4)"`
	CessRate     decimal.NullDecimal `gorm:"type:decimal(7,4)"`
	CessAmount   decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	TaxableValue decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	TaxAmount    decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	TotalAmount  decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Status       string              `gorm:"type:varchar(50)"`
	Attributes   datatypes.JSONMap
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (POLineModel) TableName() string {
	return "po_lines"
}

// HeaderToDomain converts the header columns only; Lines is left nil
func (m *POHeaderModel) HeaderToDomain() purchaseorder.Header {
	return purchaseorder.Header{
		BaseEntity:        m.BaseModel.entity(),
		Vendor:            m.Vendor,
		PONumber:          m.PONumber,
		Status:            m.Status,
		OrderDate:         m.OrderDate,
		ExpiryDate:        m.ExpiryDate,
		DeliveryDate:      m.DeliveryDate,
		SupplierName:      m.SupplierName,
		SupplierGSTIN:     m.SupplierGSTIN,
		BuyerGSTIN:        m.BuyerGSTIN,
		BillingAddress:    m.BillingAddress,
		ShippingAddress:   m.ShippingAddress,
		DeliveryLocation:  m.DeliveryLocation,
		PaymentTerms:      m.PaymentTerms,
		TotalQuantity:     m.TotalQuantity,
		TotalTaxableValue: m.TotalTaxableValue,
		TotalTaxAmount:    m.TotalTaxAmount,
		TotalAmount:       m.TotalAmount,
		Attributes:        fromJSONMap(m.Attributes),
		SourceFileKey:     m.SourceFileKey,
		CreatedBy:         m.CreatedBy,
		UploadedBy:        m.UploadedBy,
	}
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *POHeaderModel) ToDomain() *purchaseorder.PurchaseOrder {
	order := &purchaseorder.PurchaseOrder{
		Header: m.HeaderToDomain(),
		Lines:  make([]purchaseorder.Line, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// FromDomain populates the header columns from a domain PurchaseOrder.
// Lines are built separately with LineModelsFromDomain.
func (m *POHeaderModel) FromDomain(o *purchaseorder.PurchaseOrder) {
	h := &o.Header
	m.setEntity(h.BaseEntity)
	m.Vendor = h.Vendor
	m.PONumber = h.PONumber
	m.Status = h.Status
	m.OrderDate = h.OrderDate
	m.ExpiryDate = h.ExpiryDate
	m.DeliveryDate = h.DeliveryDate
	m.SupplierName = h.SupplierName
	m.SupplierGSTIN = h.SupplierGSTIN
	m.BuyerGSTIN = h.BuyerGSTIN
	m.BillingAddress = h.BillingAddress
	m.ShippingAddress = h.ShippingAddress
	m.DeliveryLocation = h.DeliveryLocation
	m.PaymentTerms = h.PaymentTerms
	m.TotalQuantity = h.TotalQuantity
	m.TotalTaxableValue = h.TotalTaxableValue
	m.TotalTaxAmount = h.TotalTaxAmount
	m.TotalAmount = h.TotalAmount
	m.Attributes = toJSONMap(h.Attributes)
	m.SourceFileKey = h.SourceFileKey
	m.CreatedBy = h.CreatedBy
	m.UploadedBy = h.UploadedBy
}

// POHeaderModelFromDomain creates a header model from a domain PurchaseOrder
func POHeaderModelFromDomain(o *purchaseorder.PurchaseOrder) *POHeaderModel {
	m := &POHeaderModel{}
	m.FromDomain(o)
	return m
}

// ToDomain converts the persistence model to a domain Line
func (m *POLineModel) ToDomain() purchaseorder.Line {
	return purchaseorder.Line{
		ID:           m.ID,
		LineNumber:   m.LineNumber,
		SKU:          m.SKU,
		HSNCode:      m.HSNCode,
		EAN:          m.EAN,
		Title:        m.Title,
		Quantity:     m.Quantity,
		CostPrice:    m.CostPrice,
		MRP:          m.MRP,
		CGSTRate:     m.CGSTRate,
		CGSTAmount:   m.CGSTAmount,
		SGSTRate:     m.SGSTRate,
		SGSTAmount:   m.SGSTAmount,
		IGSTRate:     m.IGSTRate,
		IGSTAmount:   m.IGSTAmount,
		CessRate:     m.CessRate,
		CessAmount:   m.CessAmount,
		TaxableValue: m.TaxableValue,
		TaxAmount:    m.TaxAmount,
		TotalAmount:  m.TotalAmount,
		Status:       m.Status,
		Attributes:   fromJSONMap(m.Attributes),
	}
}

// LineModelsFromDomain builds line models for headerID, assigning ids to new lines
func LineModelsFromDomain(headerID uuid.UUID, lines []purchaseorder.Line, now time.Time) []POLineModel {
	out := make([]POLineModel, len(lines))
	for i, l := range lines {
		id := l.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		out[i] = POLineModel{
			ID:           id,
			HeaderID:     headerID,
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
			Attributes:   toJSONMap(l.Attributes),
			CreatedAt:    now,
		}
	}
	return out
}

func toJSONMap(attrs map[string]string) datatypes.JSONMap {
	if len(attrs) == 0 {
		return nil
	}
	m := make(datatypes.JSONMap, len(attrs))
	for k, v := range attrs {
		m[k] = v
	}
	return m
}

func fromJSONMap(m datatypes.JSONMap) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
