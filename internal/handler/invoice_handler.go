package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/middleware"
	"invoiceguard/internal/report"
	"invoiceguard/internal/service"
	"invoiceguard/internal/validator"
)

const (
	defaultStatsLimit = 1000
	maxStatsLimit     = 10000

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// InvoiceHandler handles invoice upload, validation and reporting endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	fileService    service.FileService
	log            logrus.FieldLogger
	now            func() time.Time
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService, fileService service.FileService, log logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		fileService:    fileService,
		log:            log,
		now:            time.Now,
	}
}

// Upload handles POST /api/v1/invoices/upload
// @Summary Upload an invoice
// @Description Upload an invoice file (PDF, JPG, PNG). The file is stored, its fields are extracted and the result is validated.
// @Description Accepted invoices return 201, rejected invoices 422 with the full result, and rate-limited extractions 202 with a queued invoice.
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice file (PDF, JPG, or PNG)"
// @Param X-Correlation-ID header string false "Correlation id echoed on the response and stored with the result"
// @Success 201 {object} Response{data=domain.Invoice} "Invoice accepted"
// @Success 202 {object} Response{data=domain.Invoice} "Extraction queued for retry"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody{data=domain.Invoice} "Invoice rejected"
// @Failure 429 {object} ErrorResponseBody "Too many uploads"
// @Failure 500 {object} ErrorResponseBody "Upload or processing failed"
// @Security BearerAuth
// @Router /invoices/upload [post]
func (h *InvoiceHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	input := service.UploadInput{
		FileUploadInput: service.FileUploadInput{
			UploadedBy: uploaderFrom(c),
			File:       file,
			Header:     header,
		},
		CorrelationID: middleware.GetCorrelationID(c),
	}

	inv, err := h.invoiceService.Upload(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	switch inv.Status {
	case domain.InvoiceStatusAccepted:
		RespondCreated(c, inv)
	case domain.InvoiceStatusQueued:
		c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: inv})
	case domain.InvoiceStatusRejected:
		RespondErrorWithData(c, http.StatusUnprocessableEntity, "INVOICE_REJECTED",
			fmt.Sprintf("invoice failed validation with %d error(s)", inv.ErrorCount), inv)
	default:
		h.log.WithFields(logrus.Fields{
			"correlation_id": inv.CorrelationID,
			"invoice_id":     inv.ID.String(),
		}).Errorf("InvoiceHandler.Upload: processing failed: %s", inv.ProcessingError)
		RespondErrorWithData(c, http.StatusInternalServerError, "PROCESSING_FAILED",
			"invoice could not be processed", inv)
	}
}

// Validate handles POST /api/v1/invoices/validate
// @Summary Validate extracted invoice data
// @Description Validate an already-extracted invoice without storing it. Config fields override the server defaults.
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "Invoice data and optional overrides"
// @Param X-Correlation-ID header string false "Correlation id recorded on the result"
// @Success 200 {object} Response{data=validator.Result} "Invoice is valid"
// @Failure 400 {object} ErrorResponseBody "Malformed request, data or config"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 422 {object} ErrorResponseBody{data=validator.Result} "Invoice is invalid"
// @Failure 500 {object} ErrorResponseBody "Validation could not be completed"
// @Security BearerAuth
// @Router /invoices/validate [post]
func (h *InvoiceHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must contain a data object")
		return
	}

	res, err := h.invoiceService.Validate(c.Request.Context(), service.ValidateInput{
		Data:          req.Data,
		Config:        req.Config,
		BusinessRules: req.BusinessRules,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	if !res.IsValid {
		RespondErrorWithData(c, http.StatusUnprocessableEntity, "INVOICE_INVALID",
			fmt.Sprintf("invoice failed validation with %d error(s)", len(res.Errors)), res)
		return
	}
	RespondOK(c, res)
}

// ValidateBatch handles POST /api/v1/invoices/validate/batch
// @Summary Validate a batch of extracted invoices
// @Description Validate several invoices with one config. Results keep input order; elements that fail are reported in-band with a VALIDATION_ERROR and score 0.
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body BatchValidateRequest true "Invoices and optional overrides"
// @Success 200 {object} Response{data=BatchValidateResponse} "Batch results"
// @Failure 400 {object} ErrorResponseBody "Malformed request or config"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "Batch too large"
// @Security BearerAuth
// @Router /invoices/validate/batch [post]
func (h *InvoiceHandler) ValidateBatch(c *gin.Context) {
	var req BatchValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must contain an invoices array")
		return
	}

	results, err := h.invoiceService.ValidateBatch(c.Request.Context(), service.BatchValidateInput{
		Invoices:      req.Invoices,
		Config:        req.Config,
		BusinessRules: req.BusinessRules,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, BatchValidateResponse{
		Results:    results,
		Statistics: validator.GetValidationStatistics(results),
	})
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description List stored invoices, newest first, optionally filtered by status
// @Tags invoices
// @Produce json
// @Param status query string false "Filter by status (queued, processing, accepted, rejected, failed)"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} Response{data=[]domain.Invoice,meta=PagMeta} "List of invoices"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 500 {object} ErrorResponseBody "Internal server error"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	status, ok := parseStatus(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	invoices, total, err := h.invoiceService.List(c.Request.Context(), domain.InvoiceFilter{
		Status: status,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get an invoice
// @Description Get a stored invoice with its extracted data, validation result and field statuses
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Success 200 {object} Response{data=domain.Invoice} "Invoice"
// @Failure 400 {object} ErrorResponseBody "Invalid invoice ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, inv)
}

// Download handles GET /api/v1/invoices/:id/download
// @Summary Get a download URL for the original invoice file
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Success 200 {object} Response{data=InvoiceDownload} "Invoice and presigned URL"
// @Failure 400 {object} ErrorResponseBody "Invalid invoice ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 500 {object} ErrorResponseBody "Internal server error"
// @Security BearerAuth
// @Router /invoices/{id}/download [get]
func (h *InvoiceHandler) Download(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	url, err := h.fileService.GetDownloadURL(c.Request.Context(), inv.FileID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, InvoiceDownload{Invoice: *inv, DownloadURL: url})
}

// Stats handles GET /api/v1/invoices/stats
// @Summary Validation statistics
// @Description Aggregate the most recent stored validation results
// @Tags invoices
// @Produce json
// @Param limit query int false "Number of recent results to aggregate" default(1000)
// @Success 200 {object} Response{data=validator.Statistics} "Statistics"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 500 {object} ErrorResponseBody "Internal server error"
// @Security BearerAuth
// @Router /invoices/stats [get]
func (h *InvoiceHandler) Stats(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultStatsLimit)))
	if limit <= 0 {
		limit = defaultStatsLimit
	}
	if limit > maxStatsLimit {
		limit = maxStatsLimit
	}

	stats, err := h.invoiceService.Statistics(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, stats)
}

// Export handles GET /api/v1/invoices/export
// @Summary Export invoices
// @Description Download stored invoices with their verdicts as an Excel workbook or CSV file
// @Tags invoices
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param format query string false "xlsx or csv" default(xlsx)
// @Param status query string false "Filter by status"
// @Success 200 {file} file "Report file"
// @Failure 400 {object} ErrorResponseBody "Invalid format or status"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 500 {object} ErrorResponseBody "Internal server error"
// @Security BearerAuth
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportXLSX)))
	var contentType string
	switch format {
	case service.ExportXLSX:
		contentType = contentTypeXLSX
	case service.ExportCSV:
		contentType = contentTypeCSV
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv")
		return
	}

	status, ok := parseStatus(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.invoiceService.Export(c.Request.Context(), &buf, format, domain.InvoiceFilter{Status: status}); err != nil {
		HandleError(c, h.log, err)
		return
	}

	filename := report.BuildFilename("invoices", string(format), h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Rules handles GET /api/v1/invoices/rules
// @Summary List validation rules
// @Description List the built-in checks and the named business rules that can be requested in business_rules
// @Tags invoices
// @Produce json
// @Success 200 {object} Response{data=RulesResponse} "Rules"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /invoices/rules [get]
func (h *InvoiceHandler) Rules(c *gin.Context) {
	RespondOK(c, RulesResponse{
		Builtin:  describeRules(validator.BuiltinRules()),
		Business: describeRules(h.invoiceService.Rules()),
	})
}

func describeRules(rules []validator.Rule) []RuleInfo {
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleInfo{Name: r.Name(), Description: r.Description(), Severity: string(r.Severity())})
	}
	return out
}

// uploaderFrom names the uploader: the token subject when auth is on,
// else the optional uploaded_by form field.
func uploaderFrom(c *gin.Context) string {
	if subject := middleware.GetSubject(c); subject != "" {
		return subject
	}
	if by := c.PostForm("uploaded_by"); by != "" {
		return by
	}
	return "anonymous"
}

func parseInvoiceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseStatus(c *gin.Context) (domain.InvoiceStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return "", true
	}
	status := domain.InvoiceStatus(raw)
	if !status.Valid() {
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be one of queued, processing, accepted, rejected, failed")
		return "", false
	}
	return status, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
