package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// DealshareParser reads Dealshare exports: a flat table, one PO per file
type DealshareParser struct{ *tableParser }

// NewDealshareParser creates a Dealshare parser
func NewDealshareParser(opts ...Option) *DealshareParser {
	return &DealshareParser{newTableParser(dealshareLayout, modeFlat, opts...)}
}

var dealshareLayout = layout{
	vendor:  purchaseorder.VendorDealshare,
	markers: []string{"PO Number", "SKU ID"},
	anchor:  fieldSKU,
	columns: withGST(
		col(fieldPONumber, "PO Number"),
		col(fieldOrderDate, "PO Date", "Created At"),
		col(fieldExpiryDate, "Expiry Date", "PO Expiry"),
		col(fieldSupplierName, "Vendor Name", "Seller Name"),
		col(fieldDeliveryLocation, "Warehouse", "Delivery Location"),
		col(fieldSKU, "SKU ID"),
		col(fieldTitle, "Product Name", "SKU Name"),
		col(fieldHSN, "HSN", "HSN Code"),
		col(fieldEAN, "EAN"),
		col(fieldQuantity, "Quantity", "Qty", "PO Qty"),
		col(fieldCostPrice, "Buying Price", "Cost Price", "Unit Price"),
		col(fieldMRP, "MRP"),
		col(fieldTaxableValue, "Taxable Value"),
		col(fieldTaxAmount, "GST Amount", "Tax Amount"),
		col(fieldTotalAmount, "Total Amount", "Total Value"),
	),
}
