package validator

// FieldStatusValue is the review state of a single field.
type FieldStatusValue string

const (
	FieldStatusValid   FieldStatusValue = "valid"
	FieldStatusInvalid FieldStatusValue = "invalid"
	FieldStatusUnsure  FieldStatusValue = "unsure"
)

// FieldStatus is the computed validation state for a single field path.
type FieldStatus struct {
	Status   FieldStatusValue `json:"status"`
	Messages []string         `json:"messages"`
}

// ComputeFieldStatuses derives per-field statuses from a result. A field with
// an error is invalid, one with only warnings is unsure, and fields present in
// data without findings are valid. Findings without a field are skipped.
func ComputeFieldStatuses(res *Result, data *InvoiceData) map[string]*FieldStatus {
	statuses := make(map[string]*FieldStatus)
	if data != nil {
		for _, f := range KnownFields() {
			if fieldPresent(data, f) {
				statuses[f] = &FieldStatus{Status: FieldStatusValid, Messages: []string{}}
			}
		}
	}
	if res == nil {
		return statuses
	}

	get := func(field string) *FieldStatus {
		fs, ok := statuses[field]
		if !ok {
			fs = &FieldStatus{Status: FieldStatusValid, Messages: []string{}}
			statuses[field] = fs
		}
		return fs
	}

	for _, e := range res.Errors {
		if e.Field == "" {
			continue
		}
		fs := get(e.Field)
		fs.Status = FieldStatusInvalid
		fs.Messages = append(fs.Messages, e.Message)
	}
	for _, w := range res.Warnings {
		if w.Field == "" {
			continue
		}
		fs := get(w.Field)
		if fs.Status != FieldStatusInvalid {
			fs.Status = FieldStatusUnsure
		}
		fs.Messages = append(fs.Messages, w.Message)
	}
	return statuses
}
