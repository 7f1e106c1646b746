package purchaseorder

import (
	"fmt"

	"github.com/pohub/backend/internal/domain/shared"
)

var (
	// ErrNoLines is returned when a PO would be stored without any line
	ErrNoLines = shared.NewDomainError("NO_LINES", "purchase order must have at least one line")
	// ErrPurchaseOrderNotFound is returned when a PO does not exist
	ErrPurchaseOrderNotFound = shared.NewDomainError("NOT_FOUND", "purchase order not found")
)

// NewDuplicateError reports that poNumber is already stored for vendor.
// It matches shared.ErrAlreadyExists under errors.Is.
func NewDuplicateError(vendor Vendor, poNumber string) *shared.DomainError {
	return shared.NewDomainError("ALREADY_EXISTS",
		fmt.Sprintf("po %s already exists for %s", poNumber, vendor.DisplayName()))
}
