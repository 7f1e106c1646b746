package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// SwiggyParser reads Swiggy Instamart POs, shipped as .xlsx or as
// SpreadsheetML (Excel 2003 XML)
type SwiggyParser struct{ *tableParser }

// NewSwiggyParser creates a Swiggy parser
func NewSwiggyParser(opts ...Option) *SwiggyParser {
	return &SwiggyParser{newTableParser(swiggyLayout, modeHeaderBlock, opts...)}
}

var swiggyLayout = layout{
	vendor:    purchaseorder.VendorSwiggy,
	placement: PlaceRight,
	sentinels: []sentinel{
		label(fieldPONumber, "PO No", "PO Number"),
		label(fieldOrderDate, "PO Date"),
		label(fieldExpiryDate, "PO Expiry Date"),
		label(fieldSupplierName, "Vendor Name"),
		label(fieldSupplierGSTIN, "Vendor GSTIN"),
		label(fieldBillingAddress, "Billing Address"),
		label(fieldShippingAddress, "Shipping Address"),
		label(fieldPaymentTerms, "Payment Terms"),
		label(fieldDeliveryDate, "Delivery Date"),
	},
	markers: []string{"S.No", "Item Code"},
	columns: withGST(
		col(fieldLineNumber, "S.No"),
		col(fieldSKU, "Item Code"),
		col(fieldTitle, "Item Description", "Item Name"),
		col(fieldHSN, "HSN Code", "HSN"),
		col(fieldEAN, "EAN", "EAN Code"),
		col(fieldQuantity, "Quantity", "Ordered Qty", "Qty"),
		col(fieldCostPrice, "Unit Based Cost", "Unit Cost"),
		col(fieldMRP, "MRP"),
		col(fieldTaxableValue, "Taxable Value"),
		col(fieldTaxAmount, "Tax Amount", "Total Tax"),
		col(fieldTotalAmount, "Total Value", "Line Total", "Total Amount"),
	),
	statedTotals: true,
}
