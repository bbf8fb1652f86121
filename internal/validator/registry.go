package validator

import (
	"context"
	"fmt"
	"sort"
)

// Registry maps rule names to business rules so callers that cannot pass
// code, such as HTTP clients, can enable rules by name.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule, replacing any rule with the same name.
func (r *Registry) Register(rule Rule) {
	r.rules[rule.Name()] = rule
}

// Get returns the rule with the given name, or nil if not found.
func (r *Registry) Get(name string) Rule {
	return r.rules[name]
}

// All returns all registered rules sorted by name.
func (r *Registry) All() []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Resolve looks up names in order. Unknown names are an error.
func (r *Registry) Resolve(names []string) ([]Rule, error) {
	out := make([]Rule, 0, len(names))
	for _, name := range names {
		rule := r.Get(name)
		if rule == nil {
			return nil, fmt.Errorf("unknown business rule %q", name)
		}
		out = append(out, rule)
	}
	return out, nil
}

// Names of the rules returned by StandardRules.
const (
	RuleSupplierRequired  = "supplier_required"
	RuleLineItemsRequired = "line_items_required"
	RuleTaxDeclared       = "tax_declared"
)

// Codes raised by StandardRules.
const (
	CodeSupplierMissing  = "SUPPLIER_NAME_MISSING"
	CodeLineItemsMissing = "LINE_ITEMS_MISSING"
	CodeTaxMissing       = "TAX_AMOUNT_MISSING"
)

// StandardRules returns the optional business rules shipped with the service.
func StandardRules() []Rule {
	return []Rule{
		NewBusinessRule(RuleSupplierRequired, "Supplier name is present", SeverityWarning,
			func(_ context.Context, d *InvoiceData) (*Outcome, error) {
				out := &Outcome{}
				if !nonEmpty(d.SupplierName) {
					out.addError(FieldSupplierName, CodeSupplierMissing, "supplier name is missing")
				}
				return out, nil
			}),
		NewBusinessRule(RuleLineItemsRequired, "Invoice lists at least one line item", SeverityError,
			func(_ context.Context, d *InvoiceData) (*Outcome, error) {
				out := &Outcome{}
				if len(d.LineItems) == 0 {
					out.addError(FieldLineItems, CodeLineItemsMissing, "invoice has no line items")
				}
				return out, nil
			}),
		NewBusinessRule(RuleTaxDeclared, "Tax amount is declared", SeverityWarning,
			func(_ context.Context, d *InvoiceData) (*Outcome, error) {
				out := &Outcome{}
				if d.TaxAmount == nil {
					out.addError(FieldTaxAmount, CodeTaxMissing, "tax amount is not declared")
				}
				return out, nil
			}),
	}
}

// NewStandardRegistry returns a Registry holding StandardRules.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range StandardRules() {
		r.Register(rule)
	}
	return r
}
