package importing

import (
	"fmt"
	"strings"
	"time"

	"donation-import-backend/internal/services/association"
)

// Metadata keys the processor export may carry.
const (
	metaChildKey   = "child_name"
	metaProjectKey = "project_title"
)

// ImportRow is the typed view of one export line. It lives only for the
// duration of the run; nothing persists it.
type ImportRow struct {
	RowNumber int

	Amount    int64 // minor units
	Currency  string
	Date      time.Time
	RawStatus string

	Nickname    string
	Description string
	Metadata    map[string]string

	ChargeID       string
	SubscriptionID string
	CustomerID     string
	InvoiceID      string // grouping key for duplicate detection

	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
}

// View projects the row for the association resolver. A metadata key that is
// present but blank counts as absent; only a non-empty value is a reference.
func (r *ImportRow) View() association.RowView {
	view := association.RowView{
		RowNumber:   r.RowNumber,
		Nickname:    r.Nickname,
		Description: r.Description,
	}
	if v := strings.TrimSpace(r.Metadata[metaChildKey]); v != "" {
		view.ChildRef = v
		view.HasChildRef = true
	}
	if v := strings.TrimSpace(r.Metadata[metaProjectKey]); v != "" {
		view.ProjectRef = v
		view.HasProjectRef = true
	}
	return view
}

// RowError is a recoverable per-row failure: recorded in the batch summary,
// never aborts the run.
type RowError struct {
	RowNumber int    `json:"row_number"`
	Message   string `json:"message"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.RowNumber, e.Message)
}
