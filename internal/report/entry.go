package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/validator"
)

// Entry is one report row: an invoice's extracted fields and its verdict.
type Entry struct {
	Source    string
	Status    string
	Data      *validator.InvoiceData
	Result    *validator.Result
	Timestamp time.Time
}

// FromInvoice builds an Entry from a persisted invoice. Unreadable JSON
// columns are left empty.
func FromInvoice(inv *domain.Invoice) Entry {
	e := Entry{
		Source:    inv.ID.String(),
		Status:    string(inv.Status),
		Timestamp: inv.CreatedAt,
	}
	if len(inv.ExtractedData) > 0 {
		if data, err := validator.DecodeInvoiceData(inv.ExtractedData); err == nil {
			e.Data = data
		}
	}
	if len(inv.ValidationResult) > 0 {
		var res validator.Result
		if err := json.Unmarshal(inv.ValidationResult, &res); err == nil {
			e.Result = &res
		}
	}
	return e
}

// columns defines the header row shared by the CSV and XLSX writers.
var columns = []string{
	"Source",
	"Status",
	"Invoice Number",
	"Invoice Date",
	"Due Date",
	"Supplier",
	"Bill To",
	"Currency",
	"Total",
	"Tax",
	"Line Item Count",
	"Valid",
	"Score",
	"Errors",
	"Warnings",
	"Error Codes",
	"Warning Codes",
	"Correlation ID",
	"Timestamp",
}

// Column indexes referenced outside entryToRow.
const (
	colValid = 11
	colScore = 12
)

// entryToRow converts an entry to one value per column. Amounts and counts
// stay numeric so spreadsheets can sum them; missing values are "".
func entryToRow(e *Entry) []interface{} {
	row := make([]interface{}, len(columns))
	for i := range row {
		row[i] = ""
	}

	row[0] = e.Source
	row[1] = e.Status
	if !e.Timestamp.IsZero() {
		row[18] = e.Timestamp.UTC().Format(time.RFC3339)
	}

	if d := e.Data; d != nil {
		row[2] = deref(d.InvoiceNumber)
		row[3] = deref(d.InvoiceDate)
		row[4] = deref(d.DueDate)
		row[5] = deref(d.SupplierName)
		row[6] = deref(d.BillTo)
		row[7] = deref(d.Currency)
		if d.TotalAmount != nil {
			row[8] = *d.TotalAmount
		}
		if d.TaxAmount != nil {
			row[9] = *d.TaxAmount
		}
		row[10] = len(d.LineItems)
	}

	if r := e.Result; r != nil {
		row[colValid] = formatBool(r.IsValid)
		row[colScore] = r.ValidationScore
		row[13] = len(r.Errors)
		row[14] = len(r.Warnings)
		row[15] = strings.Join(r.ErrorCodes(), ", ")
		row[16] = strings.Join(r.WarningCodes(), ", ")
		row[17] = r.CorrelationID
	}

	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// cellString renders a row value for text output.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), ext)
}
