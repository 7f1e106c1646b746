package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pohub/backend/internal/domain/purchaseorder"
	"github.com/pohub/backend/internal/domain/shared"
	"github.com/pohub/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testOrder(vendor purchaseorder.Vendor, number string, quantities ...int64) *purchaseorder.PurchaseOrder {
	lines := make([]purchaseorder.Line, len(quantities))
	for i, q := range quantities {
		lines[i] = purchaseorder.Line{
			LineNumber: i + 1,
			SKU:        "SKU-" + string(rune('A'+i)),
			Title:      "Toor Dal 1kg",
			Quantity:   q,
			CostPrice:  dec("10.50"),
			CGSTRate:   dec("2.5"),
			SGSTRate:   dec("2.5"),
			Attributes: map[string]string{"fsn": "FSN00" + string(rune('1'+i))},
		}
	}
	order := purchaseorder.NewPurchaseOrder(vendor, number, lines)
	order.Header.SupplierName = "Shree Traders"
	order.Header.OrderDate = date(2024, time.March, 15)
	order.Header.Attributes = map[string]string{"nature_of_supply": "Intra State"}
	order.Header.UploadedBy = "ops"
	return order
}

func newSQLiteRepository(t *testing.T) *GormPurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(newSQLiteDatabase(t).DB)
}

func TestGormPurchaseOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	order := testOrder(purchaseorder.VendorFlipkart, "PO-1001", 4, 6)

	require.NoError(t, repo.Create(ctx, order))
	for _, l := range order.Lines {
		assert.NotEqual(t, uuid.Nil, l.ID)
	}

	found, err := repo.FindByID(ctx, order.Header.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-1001", found.Header.PONumber)
	assert.Equal(t, purchaseorder.VendorFlipkart, found.Header.Vendor)
	assert.Equal(t, purchaseorder.StatusOpen, found.Header.Status)
	assert.Equal(t, int64(10), found.Header.TotalQuantity)
	assert.True(t, order.Header.TotalAmount.Equal(found.Header.TotalAmount),
		"want %s got %s", order.Header.TotalAmount, found.Header.TotalAmount)
	assert.Equal(t, "Intra State", found.Header.Attributes["nature_of_supply"])
	require.NotNil(t, found.Header.OrderDate)
	assert.True(t, found.Header.OrderDate.Equal(*order.Header.OrderDate))

	require.Len(t, found.Lines, 2)
	assert.Equal(t, 1, found.Lines[0].LineNumber)
	assert.Equal(t, 2, found.Lines[1].LineNumber)
	assert.Equal(t, "FSN002", found.Lines[1].Attributes["fsn"])
	assert.True(t, found.Lines[0].CostPrice.Valid)
	assert.True(t, found.Lines[0].CostPrice.Decimal.Equal(decimal.RequireFromString("10.5")))
	assert.False(t, found.Lines[0].MRP.Valid)

	byNumber, err := repo.FindByNumber(ctx, purchaseorder.VendorFlipkart, "PO-1001")
	require.NoError(t, err)
	assert.Equal(t, order.Header.ID, byNumber.Header.ID)

	exists, err := repo.ExistsByNumber(ctx, purchaseorder.VendorFlipkart, "PO-1001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNumber(ctx, purchaseorder.VendorZepto, "PO-1001")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormPurchaseOrderRepository_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	require.NoError(t, repo.Create(ctx, testOrder(purchaseorder.VendorZepto, "PO-1001", 5)))

	err := repo.Create(ctx, testOrder(purchaseorder.VendorZepto, "PO-1001", 7))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "po PO-1001 already exists")

	// same number under another vendor is a different PO
	require.NoError(t, repo.Create(ctx, testOrder(purchaseorder.VendorBlinkit, "PO-1001", 5)))

	// the failed create left no orphan lines behind
	var lines int64
	require.NoError(t, repo.db.Model(&models.POLineModel{}).Count(&lines).Error)
	assert.Equal(t, int64(2), lines)
}

func TestGormPurchaseOrderRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, purchaseorder.ErrPurchaseOrderNotFound)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByNumber(ctx, purchaseorder.VendorAmazon, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), purchaseorder.StatusClosed), shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, testOrder(purchaseorder.VendorAmazon, "X", 1), false), shared.ErrNotFound)
}

func TestGormPurchaseOrderRepository_UpdateReplacesLines(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	order := testOrder(purchaseorder.VendorSwiggy, "SWG-77", 1, 2, 3)
	require.NoError(t, repo.Create(ctx, order))

	order.Header.PaymentTerms = "45 days"
	require.NoError(t, order.ReplaceLines([]purchaseorder.Line{
		{LineNumber: 1, SKU: "NEW-1", Quantity: 20, CostPrice: dec("5")},
	}))
	require.NoError(t, repo.Update(ctx, order, true))

	found, err := repo.FindByID(ctx, order.Header.ID)
	require.NoError(t, err)
	assert.Equal(t, "45 days", found.Header.PaymentTerms)
	assert.Equal(t, int64(20), found.Header.TotalQuantity)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "NEW-1", found.Lines[0].SKU)
	assert.Equal(t, order.Lines[0].ID, found.Lines[0].ID)

	// header-only update keeps the lines
	order.Header.DeliveryLocation = "Bhiwandi DC"
	require.NoError(t, repo.Update(ctx, order, false))
	found, err = repo.FindByID(ctx, order.Header.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bhiwandi DC", found.Header.DeliveryLocation)
	assert.Len(t, found.Lines, 1)
}

func TestGormPurchaseOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	order := testOrder(purchaseorder.VendorJioMart, "JIO-1", 1)
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.UpdateStatus(ctx, order.Header.ID, purchaseorder.StatusCancelled))

	found, err := repo.FindByID(ctx, order.Header.ID)
	require.NoError(t, err)
	assert.Equal(t, purchaseorder.StatusCancelled, found.Header.Status)
}

func TestGormPurchaseOrderRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	keep := testOrder(purchaseorder.VendorZomato, "ZOM-1", 1)
	drop := testOrder(purchaseorder.VendorZomato, "ZOM-2", 1, 1, 1)
	require.NoError(t, repo.Create(ctx, keep))
	require.NoError(t, repo.Create(ctx, drop))

	require.NoError(t, repo.Delete(ctx, drop.Header.ID))

	_, err := repo.FindByID(ctx, drop.Header.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var lines int64
	require.NoError(t, repo.db.Model(&models.POLineModel{}).Where("header_id = ?", drop.Header.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	found, err := repo.FindByID(ctx, keep.Header.ID)
	require.NoError(t, err)
	assert.Len(t, found.Lines, 1)
}

func TestGormPurchaseOrderRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	seed := []struct {
		vendor   purchaseorder.Vendor
		number   string
		supplier string
		day      int
		status   purchaseorder.Status
	}{
		{purchaseorder.VendorZepto, "ZEP-001", "Shree Traders", 1, purchaseorder.StatusOpen},
		{purchaseorder.VendorZepto, "ZEP-002", "Balaji Foods", 5, purchaseorder.StatusClosed},
		{purchaseorder.VendorZepto, "ZEP-003", "Balaji Foods", 10, purchaseorder.StatusOpen},
		{purchaseorder.VendorBigBasket, "BB-001", "Shree Traders", 12, purchaseorder.StatusOpen},
	}
	for _, s := range seed {
		o := testOrder(s.vendor, s.number, 1)
		o.Header.SupplierName = s.supplier
		o.Header.OrderDate = date(2024, time.April, s.day)
		o.Header.Status = s.status
		require.NoError(t, repo.Create(ctx, o))
	}

	list := func(f purchaseorder.ListFilter) ([]string, int64) {
		t.Helper()
		headers, total, err := repo.List(ctx, f)
		require.NoError(t, err)
		numbers := make([]string, len(headers))
		for i, h := range headers {
			numbers[i] = h.PONumber
		}
		return numbers, total
	}
	byNumber := shared.Filter{Page: 1, PageSize: 10, OrderBy: "po_number", OrderDir: "asc"}

	t.Run("vendor filter", func(t *testing.T) {
		numbers, total := list(purchaseorder.ListFilter{Filter: byNumber, Vendor: purchaseorder.VendorZepto})
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []string{"ZEP-001", "ZEP-002", "ZEP-003"}, numbers)
	})

	t.Run("status filter", func(t *testing.T) {
		numbers, total := list(purchaseorder.ListFilter{Filter: byNumber, Status: purchaseorder.StatusClosed})
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []string{"ZEP-002"}, numbers)
	})

	t.Run("search matches supplier case-insensitively", func(t *testing.T) {
		f := byNumber
		f.Search = "balaji"
		numbers, _ := list(purchaseorder.ListFilter{Filter: f})
		assert.Equal(t, []string{"ZEP-002", "ZEP-003"}, numbers)
	})

	t.Run("search matches po number", func(t *testing.T) {
		f := byNumber
		f.Search = "bb-"
		numbers, _ := list(purchaseorder.ListFilter{Filter: f})
		assert.Equal(t, []string{"BB-001"}, numbers)
	})

	t.Run("order date range", func(t *testing.T) {
		numbers, total := list(purchaseorder.ListFilter{
			Filter:   byNumber,
			DateFrom: date(2024, time.April, 5),
			DateTo:   date(2024, time.April, 10),
		})
		assert.Equal(t, int64(2), total)
		assert.Equal(t, []string{"ZEP-002", "ZEP-003"}, numbers)
	})

	t.Run("pagination keeps the full count", func(t *testing.T) {
		f := byNumber
		f.Page = 2
		f.PageSize = 3
		numbers, total := list(purchaseorder.ListFilter{Filter: f})
		assert.Equal(t, int64(4), total)
		assert.Equal(t, []string{"ZEP-003"}, numbers)
	})

	t.Run("unknown sort field falls back to created_at", func(t *testing.T) {
		f := byNumber
		f.OrderBy = "po_number; DROP TABLE po_headers"
		_, total := list(purchaseorder.ListFilter{Filter: f})
		assert.Equal(t, int64(4), total)
	})
}

func TestGormPurchaseOrderRepository_SearchIsLiteral(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	seed := []struct{ number, supplier string }{
		{"PO_1", "Shree Traders"},
		{"POX1", "Shree Traders"},
		{"PO-2", "Flat 100% Foods"},
		{"PO-3", "Flat 1000 Foods"},
		{"PO-4", `Acme\Delhi`},
	}
	for _, s := range seed {
		o := testOrder(purchaseorder.VendorZepto, s.number, 1)
		o.Header.SupplierName = s.supplier
		require.NoError(t, repo.Create(ctx, o))
	}

	search := func(term string) []string {
		t.Helper()
		f := shared.Filter{Page: 1, PageSize: 10, OrderBy: "po_number", OrderDir: "asc", Search: term}
		headers, _, err := repo.List(ctx, purchaseorder.ListFilter{Filter: f})
		require.NoError(t, err)
		numbers := make([]string, len(headers))
		for i, h := range headers {
			numbers[i] = h.PONumber
		}
		return numbers
	}

	assert.Equal(t, []string{"PO_1"}, search("PO_1"))
	assert.Equal(t, []string{"PO-2"}, search("100%"))
	assert.Equal(t, []string{"PO-4"}, search(`acme\delhi`))
	assert.Equal(t, []string{"PO-2", "PO-3"}, search("100"))
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"zep", "%zep%"},
		{"po_1", `%po\_1%`},
		{"100%", `%100\%%`},
		{`a\b`, `%a\\b%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPattern(tt.term), tt.term)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"postgres 23505", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped postgres", errors.Join(errors.New("insert"), &pgconn.PgError{Code: "23505"}), true},
		{"postgres fk violation", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: po_headers.vendor, po_headers.po_number"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

// SQL shape against the postgres dialect

func TestGormPurchaseOrderRepository_FindByNumber_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormPurchaseOrderRepository(db.DB)

	mock.ExpectQuery(`SELECT \* FROM "po_headers" WHERE vendor = \$1 AND po_number = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor", "po_number"}))

	_, err := repo.FindByNumber(context.Background(), purchaseorder.VendorZepto, "PO-1001")
	assert.ErrorIs(t, err, purchaseorder.ErrPurchaseOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPurchaseOrderRepository_UpdateStatus_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormPurchaseOrderRepository(db.DB)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	id := uuid.New()

	mock.ExpectExec(`UPDATE "po_headers" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(purchaseorder.StatusClosed, fixed, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), id, purchaseorder.StatusClosed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPurchaseOrderRepository_Delete_SQL(t *testing.T) {
	t.Run("lines then header in one transaction", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormPurchaseOrderRepository(db.DB)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "po_lines" WHERE header_id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM "po_headers" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing header rolls back", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormPurchaseOrderRepository(db.DB)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "po_lines"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "po_headers"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_Create_BeginFails(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormPurchaseOrderRepository(db.DB)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err := repo.Create(context.Background(), testOrder(purchaseorder.VendorDealshare, "DS-9", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create po DS-9")
	assert.NotErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormPurchaseOrderRepository_List_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormPurchaseOrderRepository(db.DB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "po_headers" WHERE vendor = \$1 AND status = \$2`).
		WithArgs(purchaseorder.VendorAmazon, purchaseorder.StatusOpen).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "po_headers" WHERE vendor = \$1 AND status = \$2 ORDER BY total_amount ASC, id ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	headers, total, err := repo.List(context.Background(), purchaseorder.ListFilter{
		Filter: shared.Filter{Page: 1, PageSize: 25, OrderBy: "total_amount", OrderDir: "asc"},
		Vendor: purchaseorder.VendorAmazon,
		Status: purchaseorder.StatusOpen,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, headers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
