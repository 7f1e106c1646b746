package migration

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListMigrations(Files, SourceDir)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "000001_create_po_tables", names[0])

	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	r, identifier, err := src.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_po_tables", identifier)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	sql := string(body)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS po_headers")
	assert.Contains(t, sql, "ON DELETE CASCADE")
	assert.True(t, strings.Contains(sql, "idx_po_headers_vendor_number ON po_headers (vendor, po_number)"))

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	_ = down.Close()
}
