package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// ZomatoParser reads Zomato Hyperpure purchase orders
type ZomatoParser struct{ *tableParser }

// NewZomatoParser creates a Zomato parser
func NewZomatoParser(opts ...Option) *ZomatoParser {
	return &ZomatoParser{newTableParser(zomatoLayout, modeHeaderBlock, opts...)}
}

var zomatoLayout = layout{
	vendor:    purchaseorder.VendorZomato,
	placement: PlaceRight,
	sentinels: []sentinel{
		label(fieldPONumber, "PO Number"),
		label(fieldOrderDate, "PO Date"),
		label(fieldDeliveryDate, "Delivery Date"),
		label(fieldSupplierName, "Vendor Name"),
		label(fieldSupplierGSTIN, "Vendor GSTIN"),
		label(fieldShippingAddress, "Outlet Address"),
	},
	markers: []string{"S No", "Product Name"},
	columns: withGST(
		col(fieldLineNumber, "S No"),
		col(fieldSKU, "Product ID", "SKU"),
		col(fieldTitle, "Product Name"),
		col(fieldHSN, "HSN Code", "HSN"),
		col(fieldQuantity, "Quantity", "Qty"),
		col(fieldCostPrice, "Unit Price", "Rate"),
		col(fieldMRP, "MRP"),
		col(fieldTaxableValue, "Taxable Amount", "Taxable Value"),
		col(fieldTaxAmount, "Tax Amount"),
		col(fieldTotalAmount, "Total Amount"),
		attrCol("uom", "UOM", "Unit"),
	),
}
