package importing

import (
	"fmt"

	"donation-import-backend/internal/services/association"
)

// DuplicateGuard flags rows within one invoice that resolve to the same
// child. The check is deliberately same-invoice only: one child carrying
// several sponsorships across different invoices is a valid business
// scenario, not an export error.
type DuplicateGuard struct {
	// (invoice, child key) -> row numbers referencing that child
	groups map[string][]int
}

// NewDuplicateGuard runs the pre-pass over every parsed row, so collisions
// are visible file-wide before any row is processed, not just against
// earlier rows.
func NewDuplicateGuard(rows []*ImportRow) *DuplicateGuard {
	groups := make(map[string][]int)
	for _, row := range rows {
		if row.InvoiceID == "" {
			continue
		}
		for _, key := range association.ChildKeys(row.View()) {
			k := groupKey(row.InvoiceID, key)
			groups[k] = append(groups[k], row.RowNumber)
		}
	}
	return &DuplicateGuard{groups: groups}
}

// Check reports whether the row collides with another row in its invoice,
// and a reason naming the first colliding row. Colliding rows are still
// persisted; they are flagged, not dropped.
func (g *DuplicateGuard) Check(row *ImportRow) (bool, string) {
	if row.InvoiceID == "" {
		return false, ""
	}
	for _, key := range association.ChildKeys(row.View()) {
		rowNumbers := g.groups[groupKey(row.InvoiceID, key)]
		if len(rowNumbers) < 2 {
			continue
		}
		for _, other := range rowNumbers {
			if other != row.RowNumber {
				return true, fmt.Sprintf(
					"duplicate child reference in same invoice, see row %d", other)
			}
		}
	}
	return false, ""
}

func groupKey(invoiceID, childKey string) string {
	return invoiceID + "\x00" + childKey
}
