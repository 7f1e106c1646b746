package poimport

import "github.com/pohub/backend/internal/domain/purchaseorder"

// AmazonParser reads Vendor Central PO exports. One file may hold several
// POs; the delivery window maps to the order and expiry dates.
type AmazonParser struct{ *tableParser }

// NewAmazonParser creates an Amazon parser
func NewAmazonParser(opts ...Option) *AmazonParser {
	return &AmazonParser{newTableParser(amazonLayout, modeGrouped, opts...)}
}

var amazonLayout = layout{
	vendor:  purchaseorder.VendorAmazon,
	markers: []string{"PO", "ASIN"},
	anchor:  fieldSKU,
	columns: withGST(
		col(fieldPONumber, "PO", "PO Number"),
		col(fieldSupplierName, "Vendor", "Vendor Code"),
		col(fieldDeliveryLocation, "Ship to location", "Ship To"),
		col(fieldOrderDate, "Window start"),
		col(fieldExpiryDate, "Window end"),
		col(fieldSKU, "ASIN"),
		col(fieldEAN, "External Id", "EAN"),
		col(fieldTitle, "Title"),
		col(fieldLineStatus, "Availability"),
		col(fieldQuantity, "Requested quantity", "Quantity Requested", "Quantity"),
		col(fieldCostPrice, "Unit Cost", "Cost"),
		col(fieldTaxableValue, "Total cost"),
		col(fieldMRP, "MRP", "List Price"),
		attrCol("model_number", "Model number"),
		attrCol("accepted_quantity", "Accepted quantity"),
	),
}
