package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// CityMallParser reads City Mall CSVs. Header labels end in a colon and may
// carry their value in the same cell.
type CityMallParser struct{ *tableParser }

// NewCityMallParser creates a City Mall parser
func NewCityMallParser(opts ...Option) *CityMallParser {
	return &CityMallParser{newTableParser(cityMallLayout, modeHeaderBlock, opts...)}
}

var cityMallLayout = layout{
	vendor:    purchaseorder.VendorCityMall,
	placement: PlaceRight,
	sentinels: []sentinel{
		label(fieldPONumber, "PO Number :"),
		label(fieldOrderDate, "PO Date :"),
		label(fieldExpiryDate, "Expiry Date :"),
		label(fieldSupplierName, "Vendor Name :"),
		label(fieldSupplierGSTIN, "Vendor GSTIN :"),
		label(fieldBillingAddress, "Billing Address :"),
		label(fieldShippingAddress, "Delivery Address :"),
		label(fieldBuyerGSTIN, "Buyer GSTIN :", "GSTIN :"),
	},
	markers: []string{"S.No", "HSN Code"},
	columns: withGST(
		col(fieldLineNumber, "S.No"),
		col(fieldSKU, "SKU", "Product ID", "Item Code"),
		col(fieldTitle, "Product Name", "Item Name", "Description"),
		col(fieldEAN, "EAN", "Barcode"),
		col(fieldHSN, "HSN Code"),
		col(fieldQuantity, "Quantity", "Qty"),
		col(fieldCostPrice, "Unit Price", "Cost Price", "Rate"),
		col(fieldMRP, "MRP"),
		col(fieldTaxableValue, "Taxable Amount", "Taxable Value"),
		col(fieldTaxAmount, "Tax Amount", "GST Amount"),
		col(fieldTotalAmount, "Total Amount", "Amount"),
	),
}
