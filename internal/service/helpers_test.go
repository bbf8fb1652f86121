package service_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"time"

	"github.com/sirupsen/logrus"

	"invoiceguard/internal/validator"
)

var fixedToday = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

const (
	cleanInvoiceJSON = `{"invoice_number":"INV-001","invoice_date":"2024-01-01","due_date":"2024-01-31",` +
		`"total_amount":1000,"tax_amount":100,"supplier_name":"ACME Corp","bill_to":"Customer Inc","currency":"USD"}`
	missingDueDateJSON = `{"invoiceNumber":"INV-002","invoiceDate":"2024-01-01","totalAmount":"250.00"}`
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testEngine() *validator.Engine {
	return validator.NewEngine(nil,
		validator.WithClock(func() time.Time { return fixedToday }),
		validator.WithLogger(discardLogger()),
		validator.WithConcurrency(4),
	)
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(filename string, content []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, _ := writer.CreatePart(h)
	_, _ = part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content) + 1024))
	file, _ := form.File["file"][0].Open()
	return file, form.File["file"][0]
}

// pdfContent returns minimal valid PDF bytes.
func pdfContent() []byte {
	return []byte("%PDF-1.4 test content that is at least a few bytes long for detection purposes")
}

// pngContent returns minimal valid PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

type fakeRecorder struct {
	valid, invalid, failures int
	extractions              map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{extractions: map[string]int{}}
}

func (f *fakeRecorder) RecordValidation(isValid bool, _ int) {
	if isValid {
		f.valid++
	} else {
		f.invalid++
	}
}

func (f *fakeRecorder) RecordValidationFailure()       { f.failures++ }
func (f *fakeRecorder) RecordExtraction(result string) { f.extractions[result]++ }
