package purchaseorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pohub/backend/internal/domain/purchaseorder"
	"github.com/pohub/backend/internal/domain/shared"
	poimport "github.com/pohub/backend/internal/infrastructure/import"
	"github.com/pohub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Preview parses an upload without storing anything but the archived file
func (s *Service) Preview(ctx context.Context, in PreviewInput) (*PreviewResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "preview",
		telemetry.SpanAttrFileName, in.Filename,
		telemetry.SpanAttrFileSize, len(in.Data),
	)
	defer span.End()

	if size := int64(len(in.Data)); size > s.maxFileSize {
		err := fileTooLarge(size, s.maxFileSize)
		telemetry.RecordError(span, err)
		return nil, err
	}
	uploadedBy := uploaderOr(in.UploadedBy)

	start := time.Now()
	det, err := s.detect(in, uploadedBy)
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("PO file rejected",
			zap.String("file", in.Filename),
			zap.Int("size", len(in.Data)),
			zap.Error(err),
		)
		return nil, err
	}
	res := det.Result
	vendor := det.Vendor.String()

	s.metrics.FileParsed(ctx, vendor, det.Method, time.Since(start))
	s.metrics.RowsSkipped(ctx, vendor, res.Skipped)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrVendor, vendor,
		telemetry.SpanAttrDetectedBy, det.Method,
		telemetry.SpanAttrPOCount, len(res.Orders),
		telemetry.SpanAttrSkipped, res.Skipped,
	)

	log := s.log(ctx).With(zap.String("vendor", vendor), zap.String("file", in.Filename))
	for _, w := range res.Warnings {
		log.Warn("PO row warning",
			zap.Int("row", w.Row),
			zap.String("column", w.Column),
			zap.String("code", w.Code),
			zap.String("reason", w.Message),
			zap.String("value", w.Value),
		)
	}
	if dropped := res.WarningCount - len(res.Warnings); dropped > 0 {
		log.Warn("PO row warnings truncated", zap.Int("dropped", dropped))
	}

	key := s.archiveUpload(ctx, det.Vendor, in.Filename, in.Data)

	out := &PreviewResult{
		DetectedVendor: vendor,
		DetectedBy:     det.Method,
		Format:         string(res.Format),
		SkippedRows:    res.Skipped,
		Warnings:       res.Warnings,
		WarningCount:   res.WarningCount,
		SourceFileKey:  key,
	}
	if out.Warnings == nil {
		out.Warnings = []poimport.RowWarning{}
	}

	payloads := make([]POPayload, len(res.Orders))
	for i, o := range res.Orders {
		o.Header.SourceFileKey = key
		payloads[i] = previewPayload(o)
	}
	if det.Vendor.MultiPO() {
		out.POList = payloads
		out.TotalPOs = len(payloads)
	} else {
		out.POPayload = &payloads[0]
	}

	log.Info("PO file parsed",
		zap.String("detected_by", det.Method),
		zap.Int("orders", len(res.Orders)),
		zap.Int("skipped_rows", res.Skipped),
	)
	return out, nil
}

func (s *Service) detect(in PreviewInput, uploadedBy string) (*poimport.Detection, error) {
	if in.Vendor != "" {
		v, err := purchaseorder.ParseVendor(in.Vendor)
		if err != nil {
			return nil, invalidInput(err)
		}
		det, err := s.registry.ParseAs(v, in.Data, uploadedBy)
		if err != nil {
			return nil, parseFailed(err)
		}
		return det, nil
	}
	det, err := s.registry.Detect(in.Filename, in.Data, uploadedBy)
	if err != nil {
		return nil, parseFailed(err)
	}
	return det, nil
}

// archiveUpload stores the raw file. Failures are logged and yield an empty key.
func (s *Service) archiveUpload(ctx context.Context, vendor purchaseorder.Vendor, filename string, data []byte) string {
	if s.archive == nil {
		return ""
	}
	key, err := s.archive.Archive(ctx, vendor, filename, data)
	if err != nil {
		s.log(ctx).Warn("Failed to archive upload",
			zap.String("vendor", vendor.String()),
			zap.String("file", filename),
			zap.Error(err),
		)
		return ""
	}
	return key
}

// Import persists previewed purchase orders. A single PO returns the stored
// order or its error; several POs, or any PO of a multi-PO vendor, are
// attempted one by one and reported per PO.
func (s *Service) Import(ctx context.Context, vendorName string, in ImportInput) (*ImportOutcome, error) {
	vendor, err := purchaseorder.ParseVendor(vendorName)
	if err != nil {
		return nil, invalidInput(err)
	}
	if len(in.Orders) == 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "no purchase orders to import")
	}
	uploadedBy := uploaderOr(in.UploadedBy)

	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "import",
		telemetry.SpanAttrVendor, vendor.String(),
		telemetry.SpanAttrPOCount, len(in.Orders),
	)
	defer span.End()

	cacheKey := ""
	if s.cache != nil && in.IdempotencyKey != "" {
		cacheKey = vendor.String() + ":" + in.IdempotencyKey
		if out, ok := s.replay(ctx, cacheKey); ok {
			s.metrics.Imported(ctx, vendor.String(), telemetry.OutcomeReplayed)
			telemetry.AddEvent(span, "import_replayed")
			return out, nil
		}
	}

	out := &ImportOutcome{}
	if len(in.Orders) == 1 && !vendor.MultiPO() {
		order, err := s.importOne(ctx, vendor, in.Orders[0], uploadedBy)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		payload := ToPayload(order)
		out.Order = &payload
	} else {
		out.Report = s.importBatch(ctx, vendor, in.Orders, uploadedBy)
	}

	if cacheKey != "" {
		s.remember(ctx, cacheKey, out)
	}
	return out, nil
}

func (s *Service) importBatch(ctx context.Context, vendor purchaseorder.Vendor, orders []POPayload, uploadedBy string) *ImportReport {
	report := &ImportReport{Results: make([]ImportItemResult, 0, len(orders))}
	for _, p := range orders {
		item := ImportItemResult{PONumber: p.Header.PONumber}
		order, err := s.importOne(ctx, vendor, p, uploadedBy)
		if err != nil {
			item.Error = err.Error()
			item.Code = errorCode(err)
			report.Failed++
		} else {
			id := order.Header.ID
			item.Success = true
			item.ID = &id
			report.Imported++
		}
		report.Results = append(report.Results, item)
	}
	s.log(ctx).Info("PO batch imported",
		zap.String("vendor", vendor.String()),
		zap.Int("imported", report.Imported),
		zap.Int("failed", report.Failed),
	)
	return report
}

// importOne validates and stores one PO. The existence check only fails
// fast; the unique index decides.
func (s *Service) importOne(ctx context.Context, vendor purchaseorder.Vendor, p POPayload, uploadedBy string) (*purchaseorder.PurchaseOrder, error) {
	order := toDomain(vendor, p, uploadedBy)
	h := &order.Header
	log := s.log(ctx).With(zap.String("vendor", vendor.String()), zap.String("po_number", h.PONumber))

	if err := order.Validate(); err != nil {
		s.metrics.Imported(ctx, vendor.String(), telemetry.OutcomeInvalid)
		log.Warn("PO rejected", zap.Error(err))
		return nil, invalidInput(err)
	}

	exists, err := s.repo.ExistsByNumber(ctx, vendor, h.PONumber)
	if err != nil {
		log.Warn("Duplicate check failed, relying on unique index", zap.Error(err))
	} else if exists {
		s.metrics.Imported(ctx, vendor.String(), telemetry.OutcomeDuplicate)
		return nil, purchaseorder.NewDuplicateError(vendor, h.PONumber)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.metrics.Imported(ctx, vendor.String(), telemetry.OutcomeDuplicate)
			return nil, err
		}
		s.metrics.Imported(ctx, vendor.String(), telemetry.OutcomeFailed)
		log.Error("PO import failed", zap.Error(err))
		return nil, internalError(fmt.Sprintf("failed to import po %s for %s", h.PONumber, vendor.DisplayName()), err)
	}

	s.metrics.Imported(ctx, vendor.String(), telemetry.OutcomeCreated)
	log.Info("PO imported",
		zap.String("id", h.ID.String()),
		zap.Int("lines", len(order.Lines)),
		zap.Int64("total_quantity", h.TotalQuantity),
		zap.String("total_amount", money(h.TotalAmount)),
	)
	return order, nil
}

func (s *Service) replay(ctx context.Context, key string) (*ImportOutcome, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log(ctx).Warn("Result cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var out ImportOutcome
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log(ctx).Warn("Discarding unreadable cached result", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	out.Replayed = true
	return &out, true
}

func (s *Service) remember(ctx context.Context, key string, out *ImportOutcome) {
	raw, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := s.cache.Put(ctx, key, raw, s.resultTTL); err != nil {
		s.log(ctx).Warn("Result cache write failed", zap.String("key", key), zap.Error(err))
	}
}
