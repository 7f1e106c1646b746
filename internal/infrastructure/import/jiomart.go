package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// JioMartParser reads JioMart purchase orders
type JioMartParser struct{ *tableParser }

// NewJioMartParser creates a JioMart parser
func NewJioMartParser(opts ...Option) *JioMartParser {
	return &JioMartParser{newTableParser(jioMartLayout, modeHeaderBlock, opts...)}
}

var jioMartLayout = layout{
	vendor:    purchaseorder.VendorJioMart,
	placement: PlaceRight,
	sentinels: []sentinel{
		label(fieldPONumber, "PO Number", "PO No"),
		label(fieldOrderDate, "PO Date"),
		label(fieldDeliveryDate, "Delivery Date"),
		label(fieldSupplierName, "Vendor Name"),
		label(fieldSupplierGSTIN, "Vendor GSTIN"),
		label(fieldDeliveryLocation, "Delivery Location", "Ship To"),
	},
	markers: []string{"Sr No", "Article Code"},
	columns: withGST(
		col(fieldLineNumber, "Sr No"),
		col(fieldSKU, "Article Code"),
		col(fieldTitle, "Article Description", "Description"),
		col(fieldHSN, "HSN Code"),
		col(fieldEAN, "EAN"),
		col(fieldQuantity, "Quantity", "Order Qty", "PO Qty"),
		col(fieldCostPrice, "Basic Cost", "Unit Cost"),
		col(fieldMRP, "MRP"),
		col(fieldTaxableValue, "Taxable Value"),
		col(fieldTaxAmount, "Tax Amount"),
		col(fieldTotalAmount, "Total Amount", "Net Amount"),
	),
}
