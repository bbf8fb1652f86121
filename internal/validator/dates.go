package validator

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// dateLayouts are tried in order. YYYY-MM-DD is canonical.
var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
}

// parseDate parses s and truncates it to a UTC calendar date.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return toDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", s)
}

func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b; negative when b is before a.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// dateValue returns the parsed date of a present field; ok is false when the
// field is absent, empty or unparseable.
func dateValue(s *string) (time.Time, bool) {
	if !nonEmpty(s) {
		return time.Time{}, false
	}
	t, err := parseDate(*s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func checkDates(in *RuleInput) *Outcome {
	out := &Outcome{}
	d := in.Data

	for _, f := range []struct {
		name  string
		value *string
	}{
		{FieldInvoiceDate, d.InvoiceDate},
		{FieldDueDate, d.DueDate},
	} {
		if !nonEmpty(f.value) {
			continue
		}
		if _, err := parseDate(*f.value); err != nil {
			out.addError(f.name, CodeInvalidDateFormat,
				fmt.Sprintf("%s %q is not a valid date (expected YYYY-MM-DD)", f.name, *f.value))
		}
	}

	invDate, ok := dateValue(d.InvoiceDate)
	if !ok {
		return out
	}

	if !in.Config.AllowFutureInvoiceDates && invDate.After(in.Today) {
		out.addError(FieldInvoiceDate, CodeFutureInvoiceDate,
			fmt.Sprintf("invoice date %s is after %s", invDate.Format(dateLayout), in.Today.Format(dateLayout)))
	}

	if maxAge := in.Config.MaxInvoiceAgeDays; maxAge > 0 {
		if age := daysBetween(invDate, in.Today); age > maxAge {
			out.addWarning(FieldInvoiceDate, CodeOldInvoiceDate,
				fmt.Sprintf("invoice is %d days old, maximum is %d", age, maxAge), ImpactMedium)
		}
	}

	return out
}
