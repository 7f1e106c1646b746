package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// BlinkitParser reads Blinkit workbooks, which may hold several POs in one
// flat table. Rows are grouped by PO number.
type BlinkitParser struct{ *tableParser }

// NewBlinkitParser creates a Blinkit parser
func NewBlinkitParser(opts ...Option) *BlinkitParser {
	return &BlinkitParser{newTableParser(blinkitLayout, modeGrouped, opts...)}
}

var blinkitLayout = layout{
	vendor:  purchaseorder.VendorBlinkit,
	markers: []string{"Item Id", "Quantity"},
	anchor:  fieldSKU,
	columns: withGST(
		col(fieldPONumber, "PO Number", "PO No"),
		col(fieldOrderDate, "Order Date", "PO Date"),
		col(fieldExpiryDate, "Expiry Date", "PO Expiry Date"),
		col(fieldStatus, "PO State", "Status"),
		col(fieldSupplierName, "Vendor Name"),
		col(fieldDeliveryLocation, "Facility Name", "Delivery Location"),
		col(fieldSKU, "Item Id"),
		col(fieldTitle, "Name", "Item Name", "Product Name"),
		col(fieldEAN, "UPC", "EAN"),
		col(fieldHSN, "HSN Code"),
		col(fieldQuantity, "Quantity", "Units Ordered"),
		col(fieldCostPrice, "Landing Rate", "Basic Cost Price"),
		col(fieldMRP, "MRP"),
		col(fieldTaxableValue, "Taxable Value"),
		col(fieldTaxAmount, "Tax Amount"),
		col(fieldTotalAmount, "Total Amount"),
		attrCol("case_size", "Case Size"),
	),
}
