package purchaseorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pohub/backend/internal/domain/purchaseorder"
	"github.com/pohub/backend/internal/domain/shared"
	poimport "github.com/pohub/backend/internal/infrastructure/import"
	"github.com/pohub/backend/internal/infrastructure/logger"
	"github.com/pohub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	spanService       = "purchase_order"
	defaultMaxFile    = 5 << 20
	maxListPageSize   = 100
	anonymousUploader = "anonymous"
)

// Service handles previews, imports and maintenance of purchase orders
type Service struct {
	repo        purchaseorder.Repository
	registry    *poimport.Registry
	archive     ArchiveStorage
	cache       shared.ResultCache
	resultTTL   time.Duration
	metrics     Metrics
	logger      *zap.Logger
	maxFileSize int64
}

// NewService creates a Service. Archive, result cache and metrics are optional.
func NewService(repo purchaseorder.Repository, registry *poimport.Registry) *Service {
	return &Service{
		repo:        repo,
		registry:    registry,
		resultTTL:   shared.DefaultResultTTL,
		metrics:     nopMetrics{},
		logger:      zap.NewNop(),
		maxFileSize: defaultMaxFile,
	}
}

// SetArchive sets where previewed uploads are archived
func (s *Service) SetArchive(a ArchiveStorage) {
	s.archive = a
}

// SetResultCache enables idempotent imports
func (s *Service) SetResultCache(c shared.ResultCache, ttl time.Duration) {
	s.cache = c
	if ttl > 0 {
		s.resultTTL = ttl
	}
}

// SetMetrics sets the import metrics collector
func (s *Service) SetMetrics(m Metrics) {
	if m == nil {
		m = nopMetrics{}
	}
	s.metrics = m
}

// SetLogger sets the base logger
func (s *Service) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetMaxFileSize sets the upload limit in bytes
func (s *Service) SetMaxFileSize(n int64) {
	if n > 0 {
		s.maxFileSize = n
	}
}

// MaxFileSize returns the upload limit in bytes
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *Service) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, s.logger)
}

// Vendors lists the marketplaces a file can be parsed for
func (s *Service) Vendors() []VendorInfo {
	vendors := s.registry.Vendors()
	out := make([]VendorInfo, len(vendors))
	for i, v := range vendors {
		out[i] = VendorInfo{Code: v.String(), DisplayName: v.DisplayName(), MultiPO: v.MultiPO()}
	}
	return out
}

// Create stores a manually entered purchase order
func (s *Service) Create(ctx context.Context, vendorName string, p POPayload, uploadedBy string) (*POPayload, error) {
	vendor, err := purchaseorder.ParseVendor(vendorName)
	if err != nil {
		return nil, invalidInput(err)
	}
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "create",
		telemetry.SpanAttrVendor, vendor.String(),
		telemetry.SpanAttrPONumber, p.Header.PONumber,
	)
	defer span.End()

	order, err := s.importOne(ctx, vendor, p, uploaderOr(uploadedBy))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	out := ToPayload(order)
	return &out, nil
}

// Get returns one purchase order with its lines
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*POPayload, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToPayload(order)
	return &out, nil
}

// GetByNumber returns the purchase order a vendor knows as poNumber
func (s *Service) GetByNumber(ctx context.Context, vendorName, poNumber string) (*POPayload, error) {
	vendor, err := purchaseorder.ParseVendor(vendorName)
	if err != nil {
		return nil, invalidInput(err)
	}
	order, err := s.repo.FindByNumber(ctx, vendor, strings.TrimSpace(poNumber))
	if err != nil {
		return nil, err
	}
	out := ToPayload(order)
	return &out, nil
}

// List returns a page of PO headers
func (s *Service) List(ctx context.Context, q ListQuery) (*shared.Paginated[HeaderDTO], error) {
	filter := purchaseorder.ListFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
			Search:   strings.TrimSpace(q.Search),
		},
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	filter.Normalize(maxListPageSize)

	if q.Vendor != "" {
		v, err := purchaseorder.ParseVendor(q.Vendor)
		if err != nil {
			return nil, invalidInput(err)
		}
		filter.Vendor = v
	}
	if q.Status != "" {
		st := purchaseorder.Status(q.Status)
		if !st.IsValid() {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("invalid status: %s", q.Status))
		}
		filter.Status = st
	}
	if q.From != "" {
		if filter.DateFrom = poimport.ParseDate(q.From); filter.DateFrom == nil {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("invalid from date: %s", q.From))
		}
	}
	if q.To != "" {
		if filter.DateTo = poimport.ParseDate(q.To); filter.DateTo == nil {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("invalid to date: %s", q.To))
		}
	}

	headers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]HeaderDTO, len(headers))
	for i := range headers {
		items[i] = ToHeaderDTO(&headers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update patches header fields and optionally replaces the lines.
// Vendor and PO number cannot change.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*POPayload, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "update")
	defer span.End()

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	h := &order.Header
	setText := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setDate := func(dst **time.Time, v *string) {
		if v != nil {
			*dst = poimport.ParseDate(*v)
		}
	}
	setText(&h.SupplierName, in.SupplierName)
	setText(&h.SupplierGSTIN, in.SupplierGSTIN)
	setText(&h.BuyerGSTIN, in.BuyerGSTIN)
	setText(&h.BillingAddress, in.BillingAddress)
	setText(&h.ShippingAddress, in.ShippingAddress)
	setText(&h.DeliveryLocation, in.DeliveryLocation)
	setText(&h.PaymentTerms, in.PaymentTerms)
	setDate(&h.OrderDate, in.OrderDate)
	setDate(&h.ExpiryDate, in.ExpiryDate)
	setDate(&h.DeliveryDate, in.DeliveryDate)
	if in.Attributes != nil {
		h.Attributes = in.Attributes
	}

	replace := in.Lines != nil
	if replace {
		if err := order.ReplaceLines(toDomainLines(in.Lines)); err != nil {
			return nil, invalidInput(err)
		}
		order.Renumber()
	}
	h.Touch()
	if err := order.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrVendor, h.Vendor.String(),
		telemetry.SpanAttrPONumber, h.PONumber,
		telemetry.SpanAttrLineCount, len(order.Lines),
	)
	if err := s.repo.Update(ctx, order, replace); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		return nil, internalError(fmt.Sprintf("failed to update po %s for %s", h.PONumber, h.Vendor.DisplayName()), err)
	}

	s.log(ctx).Info("Purchase order updated",
		zap.String("vendor", h.Vendor.String()),
		zap.String("po_number", h.PONumber),
		zap.Bool("lines_replaced", replace),
	)
	out := ToPayload(order)
	return &out, nil
}

// UpdateStatus moves a purchase order to another lifecycle status
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*POPayload, error) {
	target := purchaseorder.Status(strings.TrimSpace(status))
	if !target.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("invalid status: %s", status))
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.ChangeStatus(target); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}

	s.log(ctx).Info("Purchase order status changed",
		zap.String("vendor", order.Header.Vendor.String()),
		zap.String("po_number", order.Header.PONumber),
		zap.String("status", target.String()),
	)
	out := ToPayload(order)
	return &out, nil
}

// Delete removes a purchase order and its lines
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx).Info("Purchase order deleted", zap.String("id", id.String()))
	return nil
}

func uploaderOr(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return anonymousUploader
}
