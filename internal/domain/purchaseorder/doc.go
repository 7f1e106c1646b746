// Package purchaseorder contains the purchase order bounded context.
//
// Every marketplace (Flipkart, Zepto, Blinkit, ...) sends its own PO export.
// They all land in one model: a Header tagged with its Vendor plus a slice of
// Lines. Fields that only one vendor carries live in the Attributes maps, so
// the vendor tag together with Attributes acts as the per-vendor variant.
//
// Header totals are never authored directly. They are always the sum of the
// lines, see PurchaseOrder.RecomputeTotals.
package purchaseorder
