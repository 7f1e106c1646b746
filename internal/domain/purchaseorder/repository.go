package purchaseorder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pohub/backend/internal/domain/shared"
)

// ListFilter narrows a PO listing
type ListFilter struct {
	shared.Filter
	Vendor   Vendor
	Status   Status
	DateFrom *time.Time
	DateTo   *time.Time
}

// Repository persists purchase orders.
// Uniqueness of (vendor, po_number) is enforced by storage: Create returns a
// duplicate error (see NewDuplicateError) when the pair already exists.
type Repository interface {
	Create(ctx context.Context, order *PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByNumber(ctx context.Context, vendor Vendor, poNumber string) (*PurchaseOrder, error)
	ExistsByNumber(ctx context.Context, vendor Vendor, poNumber string) (bool, error)
	// Update saves header changes; when replaceLines is true the stored
	// lines are deleted and order.Lines inserted in the same transaction.
	Update(ctx context.Context, order *PurchaseOrder, replaceLines bool) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]Header, int64, error)
}
