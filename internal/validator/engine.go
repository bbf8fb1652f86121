package validator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tiendc/go-deepcopy"
)

// Engine runs the validation pipeline. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	defaults    Config
	now         func() time.Time
	concurrency int
	log         logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to resolve "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithConcurrency bounds how many invoices a batch validates at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger used for processing failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine. A nil defaults uses DefaultConfig.
func NewEngine(defaults *Config, opts ...Option) *Engine {
	cfg := DefaultConfig()
	if defaults != nil {
		cfg = defaults.Clone()
	}
	e := &Engine{
		defaults:    cfg,
		now:         time.Now,
		concurrency: runtime.NumCPU(),
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Defaults returns a copy of the engine's default configuration.
func (e *Engine) Defaults() Config {
	return e.defaults.Clone()
}

// ValidateInvoice validates one invoice. A nil cfg uses the engine defaults.
// An empty correlationID is replaced with a generated one. The returned error
// is always a *ProcessingError; an invalid invoice is not an error.
func (e *Engine) ValidateInvoice(ctx context.Context, data *InvoiceData, cfg *Config, correlationID string) (*Result, error) {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	if cfg == nil {
		c := e.defaults.Clone()
		cfg = &c
	}
	if data == nil {
		return nil, e.fail(correlationID, "", ErrNilInvoice)
	}

	res := &Result{
		CorrelationID: correlationID,
		Errors:        []ValidationError{},
		Warnings:      []ValidationWarning{},
		Metadata: Metadata{
			RulesApplied:        []string{},
			BusinessLogicChecks: []string{},
			DataCorrections:     []string{},
		},
	}
	in := &RuleInput{Data: data, Config: cfg, Today: toDate(e.now().UTC())}

	for _, r := range builtinRules() {
		out, err := evaluate(ctx, r, in)
		if err != nil {
			return nil, e.fail(correlationID, r.Name(), err)
		}
		if r.kind == kindStructural {
			res.Metadata.RulesApplied = append(res.Metadata.RulesApplied, r.Name())
		} else {
			res.Metadata.BusinessLogicChecks = append(res.Metadata.BusinessLogicChecks, r.Name())
		}
		merge(res, out, SeverityError)
	}

	for i, r := range cfg.BusinessRules {
		name, severity, err := describe(r)
		if err != nil {
			return nil, e.fail(correlationID, fmt.Sprintf("business_rules[%d]", i), err)
		}
		var cp InvoiceData
		if err := deepcopy.Copy(&cp, *data); err != nil {
			return nil, e.fail(correlationID, name, fmt.Errorf("copying input: %w", err))
		}
		out, err := evaluate(ctx, r, &RuleInput{Data: &cp, Config: cfg, Today: in.Today})
		if err != nil {
			return nil, e.fail(correlationID, name, err)
		}
		res.Metadata.BusinessLogicChecks = append(res.Metadata.BusinessLogicChecks, name)
		merge(res, out, severity)
	}

	res.IsValid = len(res.Errors) == 0
	res.ValidationScore = Score(res.Errors, res.Warnings)
	return res, nil
}

func (e *Engine) fail(correlationID, rule string, err error) error {
	pe := &ProcessingError{CorrelationID: correlationID, Rule: rule, Err: err}
	e.log.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"rule":           rule,
	}).WithError(err).Error("validator.Engine: processing failure")
	return pe
}

// describe reads a caller rule's name and severity. Nil rules, and rules
// whose accessors panic, are reported as ErrNilRule.
func describe(r Rule) (name string, severity Severity, err error) {
	if r == nil {
		return "", "", ErrNilRule
	}
	defer func() {
		if p := recover(); p != nil {
			name, severity, err = "", "", fmt.Errorf("%w: %v", ErrNilRule, p)
		}
	}()
	return r.Name(), r.Severity(), nil
}

// evaluate runs a rule, turning a panic into an error.
func evaluate(ctx context.Context, r Rule, in *RuleInput) (out *Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("rule panicked: %v", p)
		}
	}()
	return r.Evaluate(ctx, in)
}

func merge(res *Result, out *Outcome, severity Severity) {
	if out == nil {
		return
	}
	for _, ve := range out.Errors {
		if severity == SeverityWarning {
			res.Warnings = append(res.Warnings, newWarning(ve.Field, ve.Code, ve.Message, ImpactMedium))
			continue
		}
		ve.Severity = SeverityError
		res.Errors = append(res.Errors, ve)
	}
	for _, w := range out.Warnings {
		if w.Impact == "" {
			w.Impact = ImpactMedium
		}
		res.Warnings = append(res.Warnings, w)
	}
	if out.Corrections != nil {
		if res.CorrectedData == nil {
			res.CorrectedData = &InvoiceData{}
		}
		applyCorrections(res.CorrectedData, out.Corrections)
		res.Metadata.DataCorrections = append(res.Metadata.DataCorrections, out.DataCorrections...)
	}
}

func applyCorrections(dst, src *InvoiceData) {
	if src.InvoiceNumber != nil {
		dst.InvoiceNumber = String(*src.InvoiceNumber)
	}
	if src.InvoiceDate != nil {
		dst.InvoiceDate = String(*src.InvoiceDate)
	}
	if src.DueDate != nil {
		dst.DueDate = String(*src.DueDate)
	}
	if src.TotalAmount != nil {
		dst.TotalAmount = Float(*src.TotalAmount)
	}
	if src.TaxAmount != nil {
		dst.TaxAmount = Float(*src.TaxAmount)
	}
	if src.SupplierName != nil {
		dst.SupplierName = String(*src.SupplierName)
	}
	if src.BillTo != nil {
		dst.BillTo = String(*src.BillTo)
	}
	if src.Currency != nil {
		dst.Currency = String(*src.Currency)
	}
	if src.LineItems != nil {
		dst.LineItems = append([]LineItem(nil), src.LineItems...)
	}
}
