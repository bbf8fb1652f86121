package validator

import (
	"context"
	"time"
)

// Rule is one check in the pipeline. Built-in checks and caller-supplied
// business rules share this interface.
type Rule interface {
	Name() string
	Description() string
	Severity() Severity
	Evaluate(ctx context.Context, in *RuleInput) (*Outcome, error)
}

// RuleInput is what a rule evaluates.
type RuleInput struct {
	Data   *InvoiceData
	Config *Config
	// Today is the validation date (UTC midnight).
	Today time.Time
}

// Outcome is the partial result a rule contributes.
type Outcome struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
	// Corrections carries suggested replacement values; only non-nil fields apply.
	Corrections *InvoiceData
	// DataCorrections names the corrections offered in Corrections.
	DataCorrections []string
}

func (o *Outcome) addError(field, code, msg string) {
	o.Errors = append(o.Errors, newError(field, code, msg))
}

func (o *Outcome) addWarning(field, code, msg string, impact Impact) {
	o.Warnings = append(o.Warnings, newWarning(field, code, msg, impact))
}

// CheckFunc is the signature of a caller-supplied business check.
type CheckFunc func(ctx context.Context, data *InvoiceData) (*Outcome, error)

type businessRule struct {
	name        string
	description string
	severity    Severity
	check       CheckFunc
}

// NewBusinessRule wraps a caller-supplied check as a Rule. Errors returned by
// a warning-severity rule are reported as medium-impact warnings.
func NewBusinessRule(name, description string, severity Severity, check CheckFunc) Rule {
	if severity == "" {
		severity = SeverityError
	}
	return &businessRule{name: name, description: description, severity: severity, check: check}
}

func (r *businessRule) Name() string        { return r.name }
func (r *businessRule) Description() string { return r.description }
func (r *businessRule) Severity() Severity  { return r.severity }

func (r *businessRule) Evaluate(ctx context.Context, in *RuleInput) (*Outcome, error) {
	return r.check(ctx, in.Data)
}

// ruleKind decides which metadata list a built-in rule is recorded in.
type ruleKind int

const (
	kindStructural ruleKind = iota
	kindBusiness
)

// builtinRule wraps a pure check function and its metadata.
type builtinRule struct {
	name        string
	description string
	kind        ruleKind
	eval        func(in *RuleInput) *Outcome
}

func (r *builtinRule) Name() string        { return r.name }
func (r *builtinRule) Description() string { return r.description }
func (r *builtinRule) Severity() Severity  { return SeverityError }

func (r *builtinRule) Evaluate(_ context.Context, in *RuleInput) (*Outcome, error) {
	return r.eval(in), nil
}

// BuiltinRules returns the built-in checks in evaluation order.
func BuiltinRules() []Rule {
	builtins := builtinRules()
	rules := make([]Rule, len(builtins))
	for i, r := range builtins {
		rules[i] = r
	}
	return rules
}

func builtinRules() []*builtinRule {
	return []*builtinRule{
		{name: RuleRequiredFields, description: "Configured required fields are present", kind: kindStructural, eval: checkRequiredFields},
		{name: RuleFieldFormats, description: "Invoice number and currency are well formed", kind: kindStructural, eval: checkFieldFormats},
		{name: RuleDateValidation, description: "Dates parse and fall within the allowed window", kind: kindStructural, eval: checkDates},
		{name: RuleAmountValidation, description: "Amounts are within configured bounds", kind: kindStructural, eval: checkAmounts},
		{name: CheckDateChronology, description: "Due date is not before invoice date", kind: kindBusiness, eval: checkChronology},
		{name: CheckPaymentTerms, description: "Payment terms are within the usual range", kind: kindBusiness, eval: checkPaymentTerms},
		{name: CheckTaxRatio, description: "Tax is a plausible share of the total", kind: kindBusiness, eval: checkTaxRatio},
		{name: CheckLineItemsTotal, description: "Line items add up to the invoice total", kind: kindBusiness, eval: checkLineItemsTotal},
	}
}

// Built-in rule and check names recorded in Result.Metadata.
const (
	RuleRequiredFields   = "required_fields"
	RuleFieldFormats     = "field_formats"
	RuleDateValidation   = "date_validation"
	RuleAmountValidation = "amount_validation"

	CheckDateChronology = "date_chronology"
	CheckPaymentTerms   = "payment_terms"
	CheckTaxRatio       = "tax_ratio"
	CheckLineItemsTotal = "line_items_total"
)
