package purchaseorder

import (
	"context"
	"time"

	"github.com/pohub/backend/internal/domain/purchaseorder"
)

// ArchiveStorage keeps a copy of every previewed upload and returns its key.
// An empty key means the file was not archived.
type ArchiveStorage interface {
	Archive(ctx context.Context, vendor purchaseorder.Vendor, filename string, data []byte) (string, error)
}

// Metrics receives import counters
type Metrics interface {
	FileParsed(ctx context.Context, vendor, method string, elapsed time.Duration)
	RowsSkipped(ctx context.Context, vendor string, n int)
	Imported(ctx context.Context, vendor, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) FileParsed(context.Context, string, string, time.Duration) {}
func (nopMetrics) RowsSkipped(context.Context, string, int)                  {}
func (nopMetrics) Imported(context.Context, string, string)                  {}
