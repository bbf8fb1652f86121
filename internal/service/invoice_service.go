package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/parser"
	"invoiceguard/internal/port"
	"invoiceguard/internal/report"
	"invoiceguard/internal/validator"
)

// defaultMaxParseAttempts applies when InvoiceServiceConfig leaves it unset.
const defaultMaxParseAttempts = 5

// Recorder receives pipeline outcomes for metrics.
type Recorder interface {
	RecordValidation(isValid bool, score int)
	RecordValidationFailure()
	RecordExtraction(result string)
}

type noopRecorder struct{}

func (noopRecorder) RecordValidation(bool, int) {}
func (noopRecorder) RecordValidationFailure()   {}
func (noopRecorder) RecordExtraction(string)    {}

// UploadInput is the DTO for invoice uploads.
type UploadInput struct {
	FileUploadInput
	CorrelationID string
}

// ValidateInput is the DTO for validate-only requests.
type ValidateInput struct {
	Data json.RawMessage
	// Config holds overrides applied on top of the server defaults.
	Config json.RawMessage
	// BusinessRules names registry rules to run after the built-in checks.
	BusinessRules []string
	CorrelationID string
}

// BatchValidateInput is the DTO for batch validate-only requests.
type BatchValidateInput struct {
	Invoices      []json.RawMessage
	Config        json.RawMessage
	BusinessRules []string
	CorrelationID string
}

// ExportFormat selects the Export encoding.
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// InvoiceService defines the invoice processing contract.
type InvoiceService interface {
	Upload(ctx context.Context, input UploadInput) (*domain.Invoice, error)
	Validate(ctx context.Context, input ValidateInput) (*validator.Result, error)
	ValidateBatch(ctx context.Context, input BatchValidateInput) ([]*validator.Result, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error)
	Statistics(ctx context.Context, limit int) (*validator.Statistics, error)
	Export(ctx context.Context, w io.Writer, format ExportFormat, filter domain.InvoiceFilter) error
	Rules() []validator.Rule
	// ProcessQueued extracts and validates a claimed invoice. The invoice
	// must already be in processing status with ParseAttempts incremented.
	ProcessQueued(ctx context.Context, inv *domain.Invoice, maxAttempts int)
}

// InvoiceServiceConfig holds pipeline settings.
type InvoiceServiceConfig struct {
	MaxBatchSize     int
	MaxParseAttempts int
	// UploadRules run on every uploaded invoice after the built-in checks.
	UploadRules []validator.Rule
	Metrics     Recorder
}

type invoiceService struct {
	files       FileService
	invoiceRepo port.InvoiceRepository
	parser      port.DocumentParser
	notifier    port.Notifier
	engine      *validator.Engine
	registry    *validator.Registry
	cfg         InvoiceServiceConfig
	metrics     Recorder
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	files FileService,
	invoiceRepo port.InvoiceRepository,
	docParser port.DocumentParser,
	notifier port.Notifier,
	engine *validator.Engine,
	registry *validator.Registry,
	cfg InvoiceServiceConfig,
	log logrus.FieldLogger,
) InvoiceService {
	if cfg.MaxParseAttempts <= 0 {
		cfg.MaxParseAttempts = defaultMaxParseAttempts
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &invoiceService{
		files:       files,
		invoiceRepo: invoiceRepo,
		parser:      docParser,
		notifier:    notifier,
		engine:      engine,
		registry:    registry,
		cfg:         cfg,
		metrics:     metrics,
		log:         log,
		now:         time.Now,
	}
}

func (s *invoiceService) Upload(ctx context.Context, input UploadInput) (*domain.Invoice, error) {
	stored, err := s.files.Store(ctx, input.FileUploadInput)
	if err != nil {
		return nil, err
	}

	correlationID := input.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	inv := &domain.Invoice{
		ID:               uuid.New(),
		FileID:           stored.Meta.ID,
		CorrelationID:    correlationID,
		Status:           domain.InvoiceStatusProcessing,
		ExtractedData:    json.RawMessage("{}"),
		ValidationResult: json.RawMessage("{}"),
		FieldStatuses:    json.RawMessage("{}"),
		ParseAttempts:    1,
	}

	s.logFor(inv).Infof("invoiceService.Upload: creating invoice for file %s", stored.Meta.ID)

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	s.process(ctx, inv, stored, s.cfg.MaxParseAttempts)
	return inv, nil
}

func (s *invoiceService) ProcessQueued(ctx context.Context, inv *domain.Invoice, maxAttempts int) {
	stored, err := s.files.Fetch(ctx, inv.FileID)
	if err != nil {
		s.failProcessing(ctx, inv, err.Error())
		return
	}
	s.process(ctx, inv, stored, maxAttempts)
}

// process runs extraction then validation and persists the outcome on inv.
func (s *invoiceService) process(ctx context.Context, inv *domain.Invoice, stored *StoredFile, maxAttempts int) {
	output, err := s.parser.Parse(ctx, port.ParseInput{
		FileBytes:   stored.Bytes,
		ContentType: stored.Meta.ContentType,
		FileName:    stored.Meta.OriginalName,
	})
	if err != nil {
		s.handleExtractError(ctx, inv, err, maxAttempts)
		return
	}
	s.metrics.RecordExtraction("success")

	inv.ParserModel = output.ModelUsed
	inv.ExtractedData = output.StructuredData

	data, err := validator.DecodeInvoiceData(output.StructuredData)
	if err != nil {
		s.failProcessing(ctx, inv, fmt.Sprintf("decoding extracted data: %v", err))
		return
	}

	cfg := s.engine.Defaults()
	cfg.BusinessRules = append(cfg.BusinessRules, s.cfg.UploadRules...)
	res, err := s.engine.ValidateInvoice(ctx, data, &cfg, inv.CorrelationID)
	if err != nil {
		s.metrics.RecordValidationFailure()
		s.failProcessing(ctx, inv, err.Error())
		return
	}
	s.metrics.RecordValidation(res.IsValid, res.ValidationScore)

	if err := s.applyResult(inv, res, data); err != nil {
		s.failProcessing(ctx, inv, err.Error())
		return
	}
	if err := s.invoiceRepo.UpdateResult(ctx, inv); err != nil {
		s.failProcessing(ctx, inv, fmt.Sprintf("saving validation result: %v", err))
		return
	}

	s.logFor(inv).WithField("score", res.ValidationScore).Infof("invoiceService.process: invoice %s", inv.Status)

	if !res.IsValid && s.notifier != nil {
		if err := s.notifier.NotifyRejected(ctx, inv, summarize(res)); err != nil {
			s.logFor(inv).WithError(err).Warn("invoiceService.process: rejection notification failed")
		}
	}
}

func (s *invoiceService) applyResult(inv *domain.Invoice, res *validator.Result, data *validator.InvoiceData) error {
	resJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding validation result: %w", err)
	}
	statusJSON, err := json.Marshal(validator.ComputeFieldStatuses(res, data))
	if err != nil {
		return fmt.Errorf("encoding field statuses: %w", err)
	}

	now := s.now().UTC()
	inv.ValidationResult = resJSON
	inv.FieldStatuses = statusJSON
	inv.IsValid = res.IsValid
	inv.ValidationScore = res.ValidationScore
	inv.ErrorCount = len(res.Errors)
	inv.WarningCount = len(res.Warnings)
	inv.ProcessingError = ""
	inv.RetryAfter = nil
	inv.ValidatedAt = &now
	if res.IsValid {
		inv.Status = domain.InvoiceStatusAccepted
	} else {
		inv.Status = domain.InvoiceStatusRejected
	}
	return nil
}

// handleExtractError queues the invoice for retry on a rate limit while
// attempts remain. Otherwise the invoice is marked failed.
func (s *invoiceService) handleExtractError(ctx context.Context, inv *domain.Invoice, extractErr error, maxAttempts int) {
	rl, ok := parser.AsRateLimit(extractErr)
	if ok && inv.ParseAttempts < maxAttempts {
		s.metrics.RecordExtraction("rate_limited")
		retryAt := s.now().UTC().Add(retryDelay(inv.ParseAttempts, rl.RetryAfter))
		if err := s.invoiceRepo.Requeue(ctx, inv.ID, inv.ParseAttempts, retryAt); err != nil {
			s.failProcessing(ctx, inv, fmt.Sprintf("queueing rate limited invoice: %v", err))
			return
		}
		inv.Status = domain.InvoiceStatusQueued
		inv.RetryAfter = &retryAt
		inv.ProcessingError = fmt.Sprintf("rate limited by %s, queued for retry", rl.Provider)
		s.logFor(inv).Infof("invoiceService.handleExtractError: queued for retry after %s", retryAt.Format(time.RFC3339))
		return
	}
	s.metrics.RecordExtraction("error")
	s.failProcessing(ctx, inv, fmt.Sprintf("%v: %v", domain.ErrExtractionFailed, extractErr))
}

func (s *invoiceService) failProcessing(ctx context.Context, inv *domain.Invoice, errMsg string) {
	s.logFor(inv).Errorf("invoiceService.failProcessing: %s", errMsg)
	inv.Status = domain.InvoiceStatusFailed
	inv.ProcessingError = errMsg
	inv.RetryAfter = nil
	if err := s.invoiceRepo.UpdateResult(ctx, inv); err != nil {
		s.logFor(inv).WithError(err).Error("invoiceService.failProcessing: failed to update status")
	}
}

const (
	baseRetryDelay = 30 * time.Second
	maxRetryDelay  = 30 * time.Minute
)

// retryDelay doubles from baseRetryDelay per attempt, capped at maxRetryDelay,
// and never undercuts the provider's hint.
func retryDelay(attempts int, hint time.Duration) time.Duration {
	d := baseRetryDelay
	for i := 1; i < attempts && d < maxRetryDelay; i++ {
		d *= 2
	}
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	if hint > d {
		return hint
	}
	return d
}

// summarize lists a result's errors for the rejection notice.
func summarize(res *validator.Result) string {
	lines := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		if e.Field != "" {
			lines = append(lines, fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", e.Code, e.Message))
		}
	}
	return strings.Join(lines, "\n")
}

func (s *invoiceService) logFor(inv *domain.Invoice) logrus.FieldLogger {
	return s.log.WithFields(logrus.Fields{
		"invoice_id":     inv.ID.String(),
		"correlation_id": inv.CorrelationID,
	})
}

func (s *invoiceService) Validate(ctx context.Context, input ValidateInput) (*validator.Result, error) {
	cfg, err := s.buildConfig(input.Config, input.BusinessRules)
	if err != nil {
		return nil, err
	}
	data, err := validator.DecodeInvoiceData(input.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInvoiceData, err)
	}

	res, err := s.engine.ValidateInvoice(ctx, data, cfg, input.CorrelationID)
	if err != nil {
		s.metrics.RecordValidationFailure()
		return nil, err
	}
	s.metrics.RecordValidation(res.IsValid, res.ValidationScore)
	return res, nil
}

func (s *invoiceService) ValidateBatch(ctx context.Context, input BatchValidateInput) ([]*validator.Result, error) {
	if s.cfg.MaxBatchSize > 0 && len(input.Invoices) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d invoices (max %d)", domain.ErrBatchTooLarge, len(input.Invoices), s.cfg.MaxBatchSize)
	}
	cfg, err := s.buildConfig(input.Config, input.BusinessRules)
	if err != nil {
		return nil, err
	}

	// Undecodable elements stay nil; the engine reports them in-band.
	list := make([]*validator.InvoiceData, len(input.Invoices))
	for i, raw := range input.Invoices {
		data, err := validator.DecodeInvoiceData(raw)
		if err != nil {
			s.log.WithField("correlation_id", input.CorrelationID).
				Warnf("invoiceService.ValidateBatch: element %d is not an invoice object", i)
			continue
		}
		list[i] = data
	}

	results := s.engine.ValidateInvoices(ctx, list, cfg, input.CorrelationID)
	for i, res := range results {
		if list[i] == nil {
			s.metrics.RecordValidationFailure()
			continue
		}
		s.metrics.RecordValidation(res.IsValid, res.ValidationScore)
	}
	return results, nil
}

// buildConfig layers JSON overrides on the engine defaults and resolves
// named business rules.
func (s *invoiceService) buildConfig(overrides json.RawMessage, ruleNames []string) (*validator.Config, error) {
	cfg := s.engine.Defaults()
	if trimmed := strings.TrimSpace(string(overrides)); trimmed != "" && trimmed != "null" {
		if err := json.Unmarshal(overrides, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if len(ruleNames) > 0 {
		rules, err := s.registry.Resolve(ruleNames)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
		cfg.BusinessRules = append(cfg.BusinessRules, rules...)
	}
	return &cfg, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.List(ctx, filter)
}

func (s *invoiceService) Statistics(ctx context.Context, limit int) (*validator.Statistics, error) {
	rows, err := s.invoiceRepo.ListValidationResults(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading validation results: %w", err)
	}
	results := make([]*validator.Result, 0, len(rows))
	for _, row := range rows {
		var res validator.Result
		if err := json.Unmarshal(row, &res); err != nil {
			s.log.WithError(err).Warn("invoiceService.Statistics: skipping unreadable result")
			continue
		}
		results = append(results, &res)
	}
	return validator.GetValidationStatistics(results), nil
}

// exportPageSize is the number of invoices loaded per List call during export.
const exportPageSize = 200

func (s *invoiceService) Export(ctx context.Context, w io.Writer, format ExportFormat, filter domain.InvoiceFilter) error {
	var entries []report.Entry
	filter.Offset = 0
	filter.Limit = exportPageSize
	for {
		page, total, err := s.invoiceRepo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("listing invoices: %w", err)
		}
		for i := range page {
			entries = append(entries, report.FromInvoice(&page[i]))
		}
		filter.Offset += len(page)
		if len(page) == 0 || filter.Offset >= total {
			break
		}
	}

	switch format {
	case ExportCSV:
		if _, err := w.Write(report.BOM); err != nil {
			return err
		}
		cw := report.NewCSVWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return err
		}
		if err := cw.WriteEntries(entries); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	default:
		return report.WriteXLSX(w, entries)
	}
}

func (s *invoiceService) Rules() []validator.Rule {
	return s.registry.All()
}
