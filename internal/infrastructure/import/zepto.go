package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// ZeptoParser reads Zepto CSVs. There is no header block: every row repeats
// the PO details and the first row supplies the header.
type ZeptoParser struct{ *tableParser }

// NewZeptoParser creates a Zepto parser
func NewZeptoParser(opts ...Option) *ZeptoParser {
	return &ZeptoParser{newTableParser(zeptoLayout, modeFlat, opts...)}
}

var zeptoLayout = layout{
	vendor:  purchaseorder.VendorZepto,
	markers: []string{"PO No.", "PO Qty"},
	anchor:  fieldPONumber,
	columns: withGST(
		col(fieldPONumber, "PO No.", "PO Number"),
		col(fieldOrderDate, "PO Date", "PO Created Date"),
		col(fieldExpiryDate, "PO Expiry Date", "Expiry Date"),
		col(fieldStatus, "Status", "PO Status"),
		col(fieldSupplierName, "Vendor Name"),
		col(fieldDeliveryLocation, "Delivery Location", "City"),
		col(fieldSKU, "SKU", "SKU Code", "Material Code"),
		col(fieldTitle, "SKU Desc", "SKU Name", "Product Name"),
		col(fieldEAN, "EAN", "EAN No"),
		col(fieldHSN, "HSN", "HSN Code"),
		col(fieldQuantity, "PO Qty"),
		col(fieldCostPrice, "Unit Base Cost", "Cost Price", "Landing Cost"),
		col(fieldMRP, "MRP"),
		col(fieldTaxableValue, "Taxable Value", "Base Value"),
		col(fieldTaxAmount, "Tax Amount", "GST Amount"),
		col(fieldTotalAmount, "Total Value", "Total Amount"),
		attrCol("brand", "Brand"),
	),
}
