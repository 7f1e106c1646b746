package persistence

import (
	"strings"

	"github.com/pohub/backend/internal/domain/shared"
)

const defaultPOSortColumn = "created_at"

// poSortColumns whitelists the columns a PO listing may be ordered by.
// Anything else falls back to created_at so user input never reaches SQL.
var poSortColumns = map[string]struct{}{
	"created_at":    {},
	"updated_at":    {},
	"vendor":        {},
	"po_number":     {},
	"status":        {},
	"order_date":    {},
	"expiry_date":   {},
	"supplier_name": {},
	"total_amount":  {},
}

// orderClause builds the ORDER BY for a listing. id breaks ties so that
// paging stays stable across rows sharing the sort value.
func orderClause(f shared.Filter) string {
	col := strings.ToLower(strings.TrimSpace(f.OrderBy))
	if _, ok := poSortColumns[col]; !ok {
		col = defaultPOSortColumn
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(f.OrderDir), "asc") {
		dir = "ASC"
	}
	return col + " " + dir + ", id ASC"
}
