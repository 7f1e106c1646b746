package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pohub/backend/internal/domain/purchaseorder"
	"github.com/pohub/backend/internal/domain/shared"
	"github.com/pohub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// lines are inserted in batches of this size
const lineBatchSize = 100

const pgUniqueViolation = "23505"

// GormPurchaseOrderRepository implements purchaseorder.Repository using GORM
type GormPurchaseOrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db, now: time.Now}
}

// Create inserts the header and then its lines in one transaction.
// A (vendor, po_number) collision is reported as a duplicate error.
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *purchaseorder.PurchaseOrder) error {
	h := &order.Header
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	now := r.now()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now

	header := models.POHeaderModelFromDomain(order)
	lines := models.LineModelsFromDomain(h.ID, order.Lines, now)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(header).Error; err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := tx.CreateInBatches(&lines, lineBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return purchaseorder.NewDuplicateError(h.Vendor, h.PONumber)
		}
		return fmt.Errorf("failed to create po %s for %s: %w", h.PONumber, h.Vendor, err)
	}

	for i := range order.Lines {
		order.Lines[i].ID = lines[i].ID
	}
	return nil
}

// FindByID finds a purchase order with its lines
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchaseorder.PurchaseOrder, error) {
	var model models.POHeaderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, purchaseorder.ErrPurchaseOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a purchase order by vendor and PO number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, vendor purchaseorder.Vendor, poNumber string) (*purchaseorder.PurchaseOrder, error) {
	var model models.POHeaderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("vendor = ? AND po_number = ?", vendor, poNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, purchaseorder.ErrPurchaseOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks whether a PO number is already stored for vendor
func (r *GormPurchaseOrderRepository) ExistsByNumber(ctx context.Context, vendor purchaseorder.Vendor, poNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.POHeaderModel{}).
		Where("vendor = ? AND po_number = ?", vendor, poNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update saves header fields. With replaceLines the stored lines are deleted
// and order.Lines inserted in the same transaction.
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, order *purchaseorder.PurchaseOrder, replaceLines bool) error {
	h := &order.Header
	h.UpdatedAt = r.now()
	m := models.POHeaderModelFromDomain(order)

	var lines []models.POLineModel
	if replaceLines {
		for i := range order.Lines {
			order.Lines[i].ID = uuid.Nil
		}
		lines = models.LineModelsFromDomain(h.ID, order.Lines, h.UpdatedAt)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.POHeaderModel{}).
			Where("id = ?", h.ID).
			Updates(map[string]interface{}{
				"status":              m.Status,
				"order_date":          m.OrderDate,
				"expiry_date":         m.ExpiryDate,
				"delivery_date":       m.DeliveryDate,
				"supplier_name":       m.SupplierName,
				"supplier_gstin":      m.SupplierGSTIN,
				"buyer_gstin":         m.BuyerGSTIN,
				"billing_address":     m.BillingAddress,
				"shipping_address":    m.ShippingAddress,
				"delivery_location":   m.DeliveryLocation,
				"payment_terms":       m.PaymentTerms,
				"total_quantity":      m.TotalQuantity,
				"total_taxable_value": m.TotalTaxableValue,
				"total_tax_amount":    m.TotalTaxAmount,
				"total_amount":        m.TotalAmount,
				"attributes":          m.Attributes,
				"updated_at":          m.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return purchaseorder.ErrPurchaseOrderNotFound
		}

		if !replaceLines {
			return nil
		}
		if err := tx.Where("header_id = ?", h.ID).Delete(&models.POLineModel{}).Error; err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := tx.CreateInBatches(&lines, lineBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range lines {
		order.Lines[i].ID = lines[i].ID
	}
	return nil
}

// UpdateStatus sets the status of one purchase order
func (r *GormPurchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status purchaseorder.Status) error {
	result := r.db.WithContext(ctx).Model(&models.POHeaderModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": r.now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return purchaseorder.ErrPurchaseOrderNotFound
	}
	return nil
}

// Delete removes a purchase order and its lines
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("header_id = ?", id).Delete(&models.POLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.POHeaderModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return purchaseorder.ErrPurchaseOrderNotFound
		}
		return nil
	})
}

// List returns one page of headers and the total number of matches
func (r *GormPurchaseOrderRepository) List(ctx context.Context, filter purchaseorder.ListFilter) ([]purchaseorder.Header, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.POHeaderModel{})
	// a session lets the filtered query serve both the count and the page
	query = r.applyFilterWithoutPagination(query, filter).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var headerModels []models.POHeaderModel
	if err := r.applyPagination(query, filter.Filter).Find(&headerModels).Error; err != nil {
		return nil, 0, err
	}

	headers := make([]purchaseorder.Header, len(headerModels))
	for i := range headerModels {
		headers[i] = headerModels[i].HeaderToDomain()
	}
	return headers, total, nil
}

func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter purchaseorder.ListFilter) *gorm.DB {
	if filter.Vendor != "" {
		query = query.Where("vendor = ?", filter.Vendor)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := containsPattern(strings.ToLower(strings.TrimSpace(filter.Search)))
		query = query.Where(`(LOWER(po_number) LIKE ? ESCAPE '\' OR LOWER(supplier_name) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.DateFrom != nil {
		query = query.Where("order_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("order_date <= ?", *filter.DateTo)
	}
	return query
}

func (r *GormPurchaseOrderRepository) applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = query.Order(orderClause(filter))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 1 {
			query = query.Offset(filter.Offset())
		}
	}
	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a search term into a LIKE pattern matching it literally
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

// isUniqueViolation recognises unique-constraint failures from postgres and sqlite
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ensure GormPurchaseOrderRepository implements purchaseorder.Repository
var _ purchaseorder.Repository = (*GormPurchaseOrderRepository)(nil)
