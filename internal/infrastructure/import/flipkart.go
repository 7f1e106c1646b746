package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// FlipkartParser reads Flipkart purchase-order CSVs: a labelled header
// block with values to the right, then the item table
type FlipkartParser struct{ *tableParser }

// NewFlipkartParser creates a Flipkart parser
func NewFlipkartParser(opts ...Option) *FlipkartParser {
	return &FlipkartParser{newTableParser(flipkartLayout, modeHeaderBlock, opts...)}
}

var flipkartLayout = layout{
	vendor:    purchaseorder.VendorFlipkart,
	placement: PlaceRight,
	sentinels: []sentinel{
		label(fieldPONumber, "PO#", "PO Number"),
		attrLabel("nature_of_supply", "Nature Of Supply"),
		label(fieldOrderDate, "CREATED DATE", "PO Date"),
		label(fieldExpiryDate, "PO Expiry", "Expiry Date"),
		label(fieldSupplierName, "SUPPLIER NAME"),
		attrLabel("supplier_address", "SUPPLIER ADDRESS"),
		label(fieldSupplierGSTIN, "GSTIN"),
		label(fieldBillingAddress, "BILLED TO ADDRESS", "Billing Address"),
		label(fieldShippingAddress, "SHIPPED TO ADDRESS", "Shipping Address"),
		label(fieldPaymentTerms, "Payment Term", "Payment Terms"),
		label(fieldStatus, "PO Status"),
	},
	markers: []string{"S. no.", "HSN/SA Code"},
	columns: withGST(
		col(fieldLineNumber, "S. no."),
		col(fieldSKU, "FSN/ISBN13", "FSN"),
		col(fieldHSN, "HSN/SA Code"),
		col(fieldEAN, "EAN"),
		col(fieldTitle, "Title", "Description"),
		col(fieldQuantity, "Quantity", "Qty"),
		col(fieldCostPrice, "Supplier Price", "Unit Price"),
		col(fieldMRP, "Supplier MRP", "MRP"),
		col(fieldTaxableValue, "Taxable Value"),
		col(fieldTaxAmount, "Tax Amount"),
		col(fieldTotalAmount, "Total Amount"),
		attrCol("brand", "Brand"),
		attrCol("category", "Category"),
	),
}
