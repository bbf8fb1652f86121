package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/parser"
	"invoiceguard/internal/port"
	"invoiceguard/internal/service"
	"invoiceguard/internal/validator"
	"invoiceguard/mocks"
)

type fixture struct {
	fileRepo    *mocks.MockFileMetaRepo
	storage     *mocks.MockObjectStorage
	invoiceRepo *mocks.MockInvoiceRepo
	parser      *mocks.MockDocumentParser
	notifier    *mocks.MockNotifier
	recorder    *fakeRecorder
	svc         service.InvoiceService
}

func newFixture(cfg service.InvoiceServiceConfig) *fixture {
	f := &fixture{
		fileRepo:    new(mocks.MockFileMetaRepo),
		storage:     new(mocks.MockObjectStorage),
		invoiceRepo: new(mocks.MockInvoiceRepo),
		parser:      new(mocks.MockDocumentParser),
		notifier:    new(mocks.MockNotifier),
		recorder:    newFakeRecorder(),
	}
	cfg.Metrics = f.recorder
	files := service.NewFileService(f.fileRepo, f.storage, testFileConfig(), discardLogger())
	f.svc = service.NewInvoiceService(files, f.invoiceRepo, f.parser, f.notifier,
		testEngine(), validator.NewStandardRegistry(), cfg, discardLogger())
	return f
}

// expectStored sets up a successful file store.
func (f *fixture) expectStored() {
	f.fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).Return(&port.UploadOutput{}, nil)
	f.fileRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.FileStatusUploaded).Return(nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
}

func uploadInput() service.UploadInput {
	file, header := createMultipartFile("invoice.pdf", pdfContent(), "application/pdf")
	return service.UploadInput{
		FileUploadInput: service.FileUploadInput{UploadedBy: "alice", File: file, Header: header},
		CorrelationID:   "corr-upload",
	}
}

func TestInvoiceService_Upload_Accepted(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.MatchedBy(func(in port.ParseInput) bool {
		return in.ContentType == "application/pdf" && in.FileName == "invoice.pdf"
	})).Return(&port.ParseOutput{StructuredData: json.RawMessage(cleanInvoiceJSON), ModelUsed: "claude-test"}, nil)
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusAccepted, inv.Status)
	assert.Equal(t, "corr-upload", inv.CorrelationID)
	assert.Equal(t, "claude-test", inv.ParserModel)
	assert.True(t, inv.IsValid)
	assert.Equal(t, 100, inv.ValidationScore)
	assert.NotNil(t, inv.ValidatedAt)

	var res validator.Result
	require.NoError(t, json.Unmarshal(inv.ValidationResult, &res))
	assert.Equal(t, "corr-upload", res.CorrelationID)

	var statuses map[string]validator.FieldStatus
	require.NoError(t, json.Unmarshal(inv.FieldStatuses, &statuses))
	assert.Equal(t, validator.FieldStatusValid, statuses["invoice_number"].Status)

	f.notifier.AssertNotCalled(t, "NotifyRejected", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1, f.recorder.valid)
	assert.Equal(t, 1, f.recorder.extractions["success"])
}

func TestInvoiceService_Upload_RejectedNotifies(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.Anything).
		Return(&port.ParseOutput{StructuredData: json.RawMessage(missingDueDateJSON), ModelUsed: "m"}, nil)
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("NotifyRejected", mock.Anything, mock.AnythingOfType("*domain.Invoice"),
		mock.MatchedBy(func(s string) bool {
			return strings.Contains(s, "REQUIRED_FIELD_MISSING (due_date)")
		})).Return(nil)

	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusRejected, inv.Status)
	assert.False(t, inv.IsValid)
	assert.Equal(t, 1, inv.ErrorCount)
	assert.Less(t, inv.ValidationScore, 50)
	f.notifier.AssertExpectations(t)
	assert.Equal(t, 1, f.recorder.invalid)
}

func TestInvoiceService_Upload_NotifierErrorIsNotFatal(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.Anything).
		Return(&port.ParseOutput{StructuredData: json.RawMessage(missingDueDateJSON)}, nil)
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("NotifyRejected", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("ses down"))

	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusRejected, inv.Status)
}

func TestInvoiceService_Upload_UploadRulesApplied(t *testing.T) {
	rules, err := validator.NewStandardRegistry().Resolve([]string{validator.RuleLineItemsRequired})
	require.NoError(t, err)

	f := newFixture(service.InvoiceServiceConfig{UploadRules: rules})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.Anything).
		Return(&port.ParseOutput{StructuredData: json.RawMessage(cleanInvoiceJSON)}, nil)
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("NotifyRejected", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusRejected, inv.Status)
	var res validator.Result
	require.NoError(t, json.Unmarshal(inv.ValidationResult, &res))
	assert.Equal(t, []string{validator.CodeLineItemsMissing}, res.ErrorCodes())
}

func TestInvoiceService_Upload_RateLimitedIsQueued(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{MaxParseAttempts: 3})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.Anything).
		Return(nil, parser.NewRateLimitError("claude", errors.New("429"), 120))
	f.invoiceRepo.On("Requeue", mock.Anything, mock.AnythingOfType("uuid.UUID"), 1, mock.AnythingOfType("time.Time")).Return(nil)

	before := time.Now()
	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusQueued, inv.Status)
	require.NotNil(t, inv.RetryAfter)
	assert.True(t, inv.RetryAfter.After(before.Add(119*time.Second)))
	assert.Contains(t, inv.ProcessingError, "claude")
	f.invoiceRepo.AssertNotCalled(t, "UpdateResult", mock.Anything, mock.Anything)
	assert.Equal(t, 1, f.recorder.extractions["rate_limited"])
}

func TestInvoiceService_Upload_SaveResultFailureMarksFailed(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.Anything).
		Return(&port.ParseOutput{StructuredData: json.RawMessage(missingDueDateJSON)}, nil)
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusRejected
	})).Return(errors.New("db down")).Once()
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusFailed
	})).Return(nil).Once()

	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusFailed, inv.Status)
	assert.Contains(t, inv.ProcessingError, "db down")
	f.invoiceRepo.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "NotifyRejected", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Upload_RequeueFailureMarksFailed(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{MaxParseAttempts: 3})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.Anything).
		Return(nil, parser.NewRateLimitError("claude", errors.New("429"), 60))
	f.invoiceRepo.On("Requeue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusFailed
	})).Return(nil)

	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusFailed, inv.Status)
	assert.Nil(t, inv.RetryAfter)
	assert.Contains(t, inv.ProcessingError, "db down")
	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Upload_ExtractionFailure(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.Anything).Return(nil, errors.New("model exploded"))
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusFailed
	})).Return(nil)

	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusFailed, inv.Status)
	assert.Contains(t, inv.ProcessingError, "model exploded")
	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Upload_NonObjectExtraction(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	f.expectStored()
	f.parser.On("Parse", mock.Anything, mock.Anything).
		Return(&port.ParseOutput{StructuredData: json.RawMessage(`[1,2,3]`)}, nil)
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.Anything).Return(nil)

	inv, err := f.svc.Upload(context.Background(), uploadInput())

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusFailed, inv.Status)
	assert.Contains(t, inv.ProcessingError, "decoding extracted data")
}

func TestInvoiceService_Upload_RejectsBadFile(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	file, header := createMultipartFile("notes.txt", []byte("hello"), "text/plain")

	_, err := f.svc.Upload(context.Background(), service.UploadInput{
		FileUploadInput: service.FileUploadInput{File: file, Header: header},
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_ProcessQueued_Success(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	fileID := uuid.New()
	f.fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{ID: fileID, S3Bucket: "b", S3Key: "k", ContentType: "image/png", OriginalName: "scan.png"}, nil)
	f.storage.On("Download", mock.Anything, "b", "k").Return(pngContent(), nil)
	f.parser.On("Parse", mock.Anything, mock.MatchedBy(func(in port.ParseInput) bool {
		return in.ContentType == "image/png"
	})).Return(&port.ParseOutput{StructuredData: json.RawMessage(cleanInvoiceJSON)}, nil)
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.Anything).Return(nil)

	inv := &domain.Invoice{ID: uuid.New(), FileID: fileID, Status: domain.InvoiceStatusProcessing, ParseAttempts: 2}
	f.svc.ProcessQueued(context.Background(), inv, 5)

	assert.Equal(t, domain.InvoiceStatusAccepted, inv.Status)
	assert.Nil(t, inv.RetryAfter)
}

func TestInvoiceService_ProcessQueued_MaxAttemptsFails(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	fileID := uuid.New()
	f.fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{ID: fileID, S3Bucket: "b", S3Key: "k", ContentType: "application/pdf"}, nil)
	f.storage.On("Download", mock.Anything, "b", "k").Return(pdfContent(), nil)
	f.parser.On("Parse", mock.Anything, mock.Anything).
		Return(nil, parser.NewRateLimitError("openai", errors.New("429"), 0))
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.Anything).Return(nil)

	inv := &domain.Invoice{ID: uuid.New(), FileID: fileID, Status: domain.InvoiceStatusProcessing, ParseAttempts: 5}
	f.svc.ProcessQueued(context.Background(), inv, 5)

	assert.Equal(t, domain.InvoiceStatusFailed, inv.Status)
	f.invoiceRepo.AssertNotCalled(t, "Requeue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_ProcessQueued_MissingFile(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	fileID := uuid.New()
	f.fileRepo.On("GetByID", mock.Anything, fileID).Return(nil, domain.ErrNotFound)
	f.invoiceRepo.On("UpdateResult", mock.Anything, mock.Anything).Return(nil)

	inv := &domain.Invoice{ID: uuid.New(), FileID: fileID, Status: domain.InvoiceStatusProcessing, ParseAttempts: 1}
	f.svc.ProcessQueued(context.Background(), inv, 5)

	assert.Equal(t, domain.InvoiceStatusFailed, inv.Status)
	f.parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestInvoiceService_Validate(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})

	res, err := f.svc.Validate(context.Background(), service.ValidateInput{
		Data:          json.RawMessage(cleanInvoiceJSON),
		CorrelationID: "c-1",
	})

	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, 100, res.ValidationScore)
	assert.Equal(t, "c-1", res.CorrelationID)
	assert.Equal(t, 1, f.recorder.valid)
}

func TestInvoiceService_Validate_ConfigOverrides(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})

	res, err := f.svc.Validate(context.Background(), service.ValidateInput{
		Data:   json.RawMessage(missingDueDateJSON),
		Config: json.RawMessage(`{"required_fields":["invoice_number","total_amount"]}`),
	})

	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestInvoiceService_Validate_NamedBusinessRules(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})

	res, err := f.svc.Validate(context.Background(), service.ValidateInput{
		Data:          json.RawMessage(cleanInvoiceJSON),
		BusinessRules: []string{validator.RuleLineItemsRequired, validator.RuleTaxDeclared},
	})

	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{validator.CodeLineItemsMissing}, res.ErrorCodes())
	assert.Contains(t, res.Metadata.BusinessLogicChecks, validator.RuleTaxDeclared)
}

func TestInvoiceService_Validate_BadInput(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})

	tests := []struct {
		name  string
		input service.ValidateInput
		want  error
	}{
		{"non-object data", service.ValidateInput{Data: json.RawMessage(`"hello"`)}, domain.ErrInvalidInvoiceData},
		{"malformed config", service.ValidateInput{Data: json.RawMessage(cleanInvoiceJSON), Config: json.RawMessage(`{"min_amount":"x"}`)}, domain.ErrInvalidConfig},
		{"unknown required field", service.ValidateInput{Data: json.RawMessage(cleanInvoiceJSON), Config: json.RawMessage(`{"required_fields":["po_number"]}`)}, domain.ErrInvalidConfig},
		{"unknown rule", service.ValidateInput{Data: json.RawMessage(cleanInvoiceJSON), BusinessRules: []string{"no_such_rule"}}, domain.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Validate(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInvoiceService_ValidateBatch(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{MaxBatchSize: 10})

	results, err := f.svc.ValidateBatch(context.Background(), service.BatchValidateInput{
		Invoices: []json.RawMessage{
			json.RawMessage(cleanInvoiceJSON),
			json.RawMessage(`42`),
			json.RawMessage(missingDueDateJSON),
		},
		CorrelationID: "batch",
	})

	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].IsValid)
	assert.Equal(t, "batch:0", results[0].CorrelationID)

	assert.False(t, results[1].IsValid)
	assert.Equal(t, 0, results[1].ValidationScore)
	assert.Equal(t, []string{validator.CodeValidationError}, results[1].ErrorCodes())
	assert.Equal(t, "batch:1", results[1].CorrelationID)

	assert.Equal(t, []string{validator.CodeRequiredFieldMissing}, results[2].ErrorCodes())

	assert.Equal(t, 1, f.recorder.valid)
	assert.Equal(t, 1, f.recorder.invalid)
	assert.Equal(t, 1, f.recorder.failures)
}

func TestInvoiceService_ValidateBatch_TooLarge(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{MaxBatchSize: 1})

	_, err := f.svc.ValidateBatch(context.Background(), service.BatchValidateInput{
		Invoices: []json.RawMessage{json.RawMessage(`{}`), json.RawMessage(`{}`)},
	})

	assert.ErrorIs(t, err, domain.ErrBatchTooLarge)
}

func TestInvoiceService_ValidateBatch_Empty(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})

	results, err := f.svc.ValidateBatch(context.Background(), service.BatchValidateInput{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInvoiceService_Statistics(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	valid, _ := json.Marshal(validator.Result{IsValid: true, ValidationScore: 100})
	invalid, _ := json.Marshal(validator.Result{
		IsValid:         false,
		ValidationScore: 45,
		Errors:          []validator.ValidationError{{Code: validator.CodeRequiredFieldMissing}},
	})
	f.invoiceRepo.On("ListValidationResults", mock.Anything, 100).
		Return([][]byte{valid, invalid, []byte("not json")}, nil)

	stats, err := f.svc.Statistics(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalValidated)
	assert.Equal(t, 1, stats.ValidCount)
	assert.InDelta(t, 72.5, stats.AverageScore, 0.001)
	assert.Equal(t, []validator.CodeCount{{Code: validator.CodeRequiredFieldMissing, Count: 1}}, stats.CommonErrors)
}

func TestInvoiceService_Statistics_RepoError(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	f.invoiceRepo.On("ListValidationResults", mock.Anything, 10).Return(nil, errors.New("db down"))

	_, err := f.svc.Statistics(context.Background(), 10)

	assert.Error(t, err)
}

func exportInvoices() []domain.Invoice {
	res, _ := json.Marshal(validator.Result{IsValid: true, ValidationScore: 100, CorrelationID: "c-1"})
	return []domain.Invoice{
		{
			ID:               uuid.New(),
			Status:           domain.InvoiceStatusAccepted,
			ExtractedData:    json.RawMessage(cleanInvoiceJSON),
			ValidationResult: res,
			CreatedAt:        fixedToday,
		},
		{ID: uuid.New(), Status: domain.InvoiceStatusQueued, CreatedAt: fixedToday},
	}
}

func TestInvoiceService_Export_CSV(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	f.invoiceRepo.On("List", mock.Anything, mock.MatchedBy(func(fl domain.InvoiceFilter) bool {
		return fl.Offset == 0 && fl.Status == domain.InvoiceStatusAccepted
	})).Return(exportInvoices(), 2, nil).Once()

	var buf bytes.Buffer
	err := f.svc.Export(context.Background(), &buf, service.ExportCSV, domain.InvoiceFilter{Status: domain.InvoiceStatusAccepted})

	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))
	assert.Contains(t, out, "Invoice Number")
	assert.Contains(t, out, "INV-001")
	assert.Equal(t, 3, strings.Count(strings.TrimSpace(out), "\n")+1)
	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Export_XLSXPaginates(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})
	invs := exportInvoices()
	f.invoiceRepo.On("List", mock.Anything, mock.MatchedBy(func(fl domain.InvoiceFilter) bool { return fl.Offset == 0 })).
		Return(invs[:1], 2, nil).Once()
	f.invoiceRepo.On("List", mock.Anything, mock.MatchedBy(func(fl domain.InvoiceFilter) bool { return fl.Offset == 1 })).
		Return(invs[1:], 2, nil).Once()

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(context.Background(), &buf, service.ExportXLSX, domain.InvoiceFilter{}))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	rows, err := wb.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Rules(t *testing.T) {
	f := newFixture(service.InvoiceServiceConfig{})

	rules := f.svc.Rules()

	require.Len(t, rules, 3)
	assert.Equal(t, validator.RuleLineItemsRequired, rules[0].Name())
}
