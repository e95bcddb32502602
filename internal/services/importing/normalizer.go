package importing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Export column names. Columns are matched by header name, not position, so
// vendors can reorder or append columns without breaking the import.
const (
	colChargeID        = "charge_id"
	colSubscriptionID  = "subscription_id"
	colCustomerID      = "customer_id"
	colInvoiceID       = "invoice_id"
	colAmount          = "amount"
	colCurrency        = "currency"
	colDate            = "date"
	colStatus          = "status"
	colNickname        = "nickname"
	colDescription     = "description"
	colMetadata        = "metadata"
	colCustomerName    = "customer_name"
	colCustomerEmail   = "customer_email"
	colCustomerPhone   = "customer_phone"
	colCustomerAddress = "customer_address"
)

var requiredColumns = []string{colChargeID, colAmount, colDate, colStatus}

// Currencies whose minor unit equals the major unit.
var zeroDecimalCurrencies = map[string]bool{
	"jpy": true,
	"krw": true,
	"vnd": true,
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
}

// RowNormalizer converts raw export records into typed ImportRows. It is a
// pure transform: no store access, no side effects.
type RowNormalizer struct {
	index map[string]int
}

// NewRowNormalizer builds the column index from the header row. A header
// missing any required column is a file-level schema error; no row could be
// parsed, so the whole run aborts.
func NewRowNormalizer(header []string) (*RowNormalizer, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.Errorf("export header is missing required column %q", col)
		}
	}
	return &RowNormalizer{index: index}, nil
}

// Normalize parses one record. Failures are *RowError values naming the row
// number and reason; the orchestrator records them and moves on.
func (n *RowNormalizer) Normalize(record []string, rowNumber int) (*ImportRow, error) {
	row := &ImportRow{
		RowNumber:       rowNumber,
		RawStatus:       strings.TrimSpace(n.field(record, colStatus)),
		Nickname:        sanitizeText(n.field(record, colNickname)),
		Description:     sanitizeText(n.field(record, colDescription)),
		ChargeID:        strings.TrimSpace(n.field(record, colChargeID)),
		SubscriptionID:  strings.TrimSpace(n.field(record, colSubscriptionID)),
		CustomerID:      strings.TrimSpace(n.field(record, colCustomerID)),
		InvoiceID:       strings.TrimSpace(n.field(record, colInvoiceID)),
		CustomerName:    sanitizeText(n.field(record, colCustomerName)),
		CustomerEmail:   strings.TrimSpace(n.field(record, colCustomerEmail)),
		CustomerPhone:   strings.TrimSpace(n.field(record, colCustomerPhone)),
		CustomerAddress: sanitizeText(n.field(record, colCustomerAddress)),
	}

	if row.ChargeID == "" {
		return nil, &RowError{RowNumber: rowNumber, Message: "missing charge_id"}
	}
	if row.RawStatus == "" {
		return nil, &RowError{RowNumber: rowNumber, Message: "missing status"}
	}

	row.Currency = strings.ToLower(strings.TrimSpace(n.field(record, colCurrency)))
	if row.Currency == "" {
		row.Currency = "usd"
	}

	amount, err := parseAmount(n.field(record, colAmount), row.Currency)
	if err != nil {
		return nil, &RowError{RowNumber: rowNumber, Message: err.Error()}
	}
	row.Amount = amount

	date, err := parseDate(n.field(record, colDate))
	if err != nil {
		return nil, &RowError{RowNumber: rowNumber, Message: err.Error()}
	}
	row.Date = date

	meta, err := parseMetadata(n.field(record, colMetadata))
	if err != nil {
		return nil, &RowError{RowNumber: rowNumber, Message: err.Error()}
	}
	row.Metadata = meta

	return row, nil
}

func (n *RowNormalizer) field(record []string, column string) string {
	i, ok := n.index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// parseAmount converts the vendor's major-unit decimal string into integer
// minor units. decimal avoids float drift on values like "19.99".
func parseAmount(raw, currency string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing amount")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q", raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %q", raw)
	}
	shift := int32(2)
	if zeroDecimalCurrencies[currency] {
		shift = 0
	}
	minor := d.Shift(shift)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q has sub-minor-unit precision", raw)
	}
	return minor.IntPart(), nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func parseMetadata(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(sanitizeText(raw)), &meta); err != nil {
		return nil, fmt.Errorf("malformed metadata JSON")
	}
	if len(meta) == 0 {
		return nil, nil
	}
	return meta, nil
}

// sanitizeText replaces invalid byte sequences instead of failing: exports
// with broken encodings in human-authored fields still import.
func sanitizeText(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, "�"))
}
