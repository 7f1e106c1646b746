package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// BigBasketParser reads BigBasket purchase-order workbooks
type BigBasketParser struct{ *tableParser }

// NewBigBasketParser creates a BigBasket parser
func NewBigBasketParser(opts ...Option) *BigBasketParser {
	return &BigBasketParser{newTableParser(bigBasketLayout, modeHeaderBlock, opts...)}
}

var bigBasketLayout = layout{
	vendor:    purchaseorder.VendorBigBasket,
	placement: PlaceRight,
	sentinels: []sentinel{
		label(fieldPONumber, "PO Number"),
		label(fieldOrderDate, "PO Date"),
		label(fieldExpiryDate, "PO Expiry Date"),
		label(fieldSupplierName, "SUPPLIER NAME"),
		label(fieldSupplierGSTIN, "Supplier GSTIN"),
		label(fieldShippingAddress, "Delivery Address"),
		label(fieldBuyerGSTIN, "Buyer GSTIN", "BB GSTIN"),
		attrLabel("warehouse", "Warehouse", "DC Name"),
	},
	markers: []string{"S.No", "SKU Code"},
	columns: withGST(
		col(fieldLineNumber, "S.No"),
		col(fieldSKU, "SKU Code"),
		col(fieldTitle, "Description", "SKU Description", "Product Description"),
		col(fieldHSN, "HSN Code"),
		col(fieldEAN, "EAN Code", "EAN"),
		col(fieldQuantity, "Quantity", "Qty"),
		col(fieldCostPrice, "Basic Cost", "Unit Cost"),
		col(fieldMRP, "MRP"),
		col(fieldTaxableValue, "Taxable Value"),
		col(fieldTaxAmount, "Tax Amount"),
		col(fieldTotalAmount, "Total Value", "Total Amount"),
	),
	statedTotals: true,
}
