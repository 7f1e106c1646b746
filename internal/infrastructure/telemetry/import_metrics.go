package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Import outcomes recorded on po.imports
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
	OutcomeReplayed  = "replayed"
)

// ImportMetrics counts parsed files, skipped rows and import outcomes
type ImportMetrics struct {
	filesParsed   *Counter
	rowsSkipped   *Counter
	imports       *Counter
	parseDuration *Histogram
}

// NewImportMetrics registers the import instruments on meter
func NewImportMetrics(meter metric.Meter) (*ImportMetrics, error) {
	filesParsed, err := NewCounter(meter, "po.files.parsed", "Vendor files parsed successfully", "{file}")
	if err != nil {
		return nil, err
	}
	rowsSkipped, err := NewCounter(meter, "po.rows.skipped", "Data rows dropped while parsing", "{row}")
	if err != nil {
		return nil, err
	}
	imports, err := NewCounter(meter, "po.imports", "Purchase order import attempts by outcome", "{po}")
	if err != nil {
		return nil, err
	}
	parseDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "po.parse.duration",
		Description: "Time spent decoding and parsing an upload",
		Unit:        "s",
		Boundaries:  ParseDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &ImportMetrics{
		filesParsed:   filesParsed,
		rowsSkipped:   rowsSkipped,
		imports:       imports,
		parseDuration: parseDuration,
	}, nil
}

// FileParsed records a successful parse
func (m *ImportMetrics) FileParsed(ctx context.Context, vendor, method string, elapsed time.Duration) {
	m.filesParsed.Inc(ctx, AttrVendor.String(vendor), AttrMethod.String(method))
	m.parseDuration.RecordDuration(ctx, elapsed, AttrVendor.String(vendor))
}

// RowsSkipped records rows dropped by a parser
func (m *ImportMetrics) RowsSkipped(ctx context.Context, vendor string, n int) {
	if n <= 0 {
		return
	}
	m.rowsSkipped.Add(ctx, int64(n), AttrVendor.String(vendor))
}

// Imported records the outcome of one PO import
func (m *ImportMetrics) Imported(ctx context.Context, vendor, outcome string) {
	m.imports.Inc(ctx, AttrVendor.String(vendor), AttrOutcome.String(outcome))
}
