// Package storage archives uploaded vendor files in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	poapp "github.com/pohub/backend/internal/application/purchaseorder"
	"github.com/pohub/backend/internal/domain/purchaseorder"
)

// DefaultPrefix is the key prefix used when none is configured
const DefaultPrefix = "uploads"

const maxNameLength = 120

// KeyBuilder names archived uploads as
// <prefix>/<vendor>/<yyyy>/<mm>/<dd>/<uuid>-<sanitized filename>
type KeyBuilder struct {
	Prefix string
	Now    func() time.Time
	NewID  func() uuid.UUID
}

// NewKeyBuilder creates a key builder with the given prefix
func NewKeyBuilder(prefix string) KeyBuilder {
	return KeyBuilder{Prefix: prefix, Now: time.Now, NewID: uuid.New}
}

// Build returns the storage key for one upload
func (b KeyBuilder) Build(vendor purchaseorder.Vendor, filename string) string {
	prefix := strings.Trim(b.Prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	newID := uuid.New
	if b.NewID != nil {
		newID = b.NewID
	}
	vendorDir := string(vendor)
	if vendorDir == "" {
		vendorDir = "unknown"
	}

	t := now().UTC()
	return path.Join(prefix, vendorDir, t.Format("2006"), t.Format("01"), t.Format("02"),
		newID().String()+"-"+SanitizeFilename(filename))
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore from the
// base name; anything else becomes an underscore
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	if len(out) > maxNameLength {
		out = out[len(out)-maxNameLength:]
	}
	return out
}

// ContentType guesses the MIME type from a file name
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xml":
		return "application/xml"
	}
	return "application/octet-stream"
}

// NopArchive discards uploads. It is used when storage is disabled.
type NopArchive struct{}

// NewNopArchive creates a NopArchive
func NewNopArchive() *NopArchive {
	return &NopArchive{}
}

// Archive returns an empty key
func (NopArchive) Archive(ctx context.Context, vendor purchaseorder.Vendor, filename string, data []byte) (string, error) {
	return "", nil
}

var _ poapp.ArchiveStorage = (*NopArchive)(nil)

// objectPutter is the single call an archive needs from a bucket
type objectPutter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Archiver stores each upload under a KeyBuilder key
type Archiver struct {
	store objectPutter
	keys  KeyBuilder
}

// NewArchiver wraps store with the given key layout
func NewArchiver(store objectPutter, keys KeyBuilder) *Archiver {
	return &Archiver{store: store, keys: keys}
}

// Archive uploads data and returns its key
func (a *Archiver) Archive(ctx context.Context, vendor purchaseorder.Vendor, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("nothing to archive")
	}
	key := a.keys.Build(vendor, filename)
	if err := a.store.Put(ctx, key, data, ContentType(filename)); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filename, err)
	}
	return key, nil
}

var _ poapp.ArchiveStorage = (*Archiver)(nil)
