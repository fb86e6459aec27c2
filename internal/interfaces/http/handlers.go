package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/ar-reminder/internal/clock"
	"github.com/garyjia/ar-reminder/internal/history"
	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/garyjia/ar-reminder/internal/reminder"
	"github.com/garyjia/ar-reminder/internal/report"
	"github.com/garyjia/ar-reminder/internal/spreadsheet"
	"github.com/garyjia/ar-reminder/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	version         = "1.0.0"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	reasonNoWork     = "no_work"
	reasonNoInvoices = "no_invoices"

	exportDateLayout = "2006-01-02"
)

// Dependencies wires the core pipelines into the handlers. Exports may be
// nil, which disables saving and downloading exports.
type Dependencies struct {
	Clock      clock.Clock
	Reminders  *reminder.Pipeline
	Aggregator *report.Aggregator
	Exports    *storage.ExportStore
	MaxHistory int
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	clock      clock.Clock
	reminders  *reminder.Pipeline
	aggregator *report.Aggregator
	exports    *storage.ExportStore
	maxHistory int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, logger *zap.Logger) *Handlers {
	c := deps.Clock
	if c == nil {
		c = clock.New()
	}
	return &Handlers{
		clock:      c,
		reminders:  deps.Reminders,
		aggregator: deps.Aggregator,
		exports:    deps.Exports,
		maxHistory: deps.MaxHistory,
		validator:  validator.New(),
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ReminderResponse is the result of a reminder run
type ReminderResponse struct {
	RequestID          string           `json:"request_id"`
	Emails             *reminder.Emails `json:"emails"`
	RemovedNoContact   []string         `json:"removed_no_contact"`
	SkippedAlreadySent []string         `json:"skipped_already_sent"`
	Exports            reminder.Exports `json:"exports"`
	SavedFiles         []string         `json:"saved_files,omitempty"`
}

// NoWorkResponse explains why a reminder run produced nothing
type NoWorkResponse struct {
	Cause              string   `json:"cause"`
	RemovedNoContact   []string `json:"removed_no_contact"`
	SkippedAlreadySent []string `json:"skipped_already_sent"`
}

// ReportResponse is the result of an AR report run
type ReportResponse struct {
	RequestID       string `json:"request_id"`
	HistoryFilename string `json:"history_filename"`
	SavedFile       string `json:"saved_file,omitempty"`
	history.Update
}

type reminderForm struct {
	Signature   string `form:"signature" validate:"max=2000"`
	SaveExports bool   `form:"save_exports"`
}

type reportForm struct {
	Save bool `form:"save"`
}

type wipForm struct {
	SentCustomers []string `form:"sent_customer" validate:"dive,max=500"`
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}

// uploadStatus maps upload failures onto a status code
func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
			Version:   version,
		},
	})
}

// GenerateReminders handles POST /api/reminders
func (h *Handlers) GenerateReminders(c *gin.Context) {
	requestID := c.GetString("request_id")

	form, err := c.MultipartForm()
	if err != nil {
		h.logger.Warn("Invalid multipart form", zap.String("request_id", requestID), zap.Error(err))
		fail(c, uploadStatus(err), "invalid multipart form")
		return
	}

	var req reminderForm
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid form fields")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		fail(c, http.StatusBadRequest, "signature is too long")
		return
	}

	sheets, err := decodeUploads(c.Request.Context(), form, []upload{
		{field: "invoices", required: true},
		{field: "no_contact", required: true},
		{field: "sent_invoices"},
		{field: "customer_emails"},
		{field: "invoice_links"},
	})
	if err != nil {
		h.logger.Warn("Failed to decode reminder uploads", zap.String("request_id", requestID), zap.Error(err))
		fail(c, uploadStatus(err), err.Error())
		return
	}

	noContact := sheets["no_contact"]
	in := reminder.PrepareInput{
		Invoices:  sheets["invoices"].Rows,
		NoContact: invoice.NoContactFromRows(noContact.Rows, noContact.FirstHeader()),
	}
	if sent, ok := sheets["sent_invoices"]; ok {
		in.Sent = invoice.RowsToEntries(sent.Rows)
	}

	wc, err := h.reminders.Prepare(in)
	if reminder.IsNoWork(err) {
		body := NoWorkResponse{
			Cause:              noWorkCause(err),
			RemovedNoContact:   []string{},
			SkippedAlreadySent: []string{},
		}
		if wc != nil {
			body.RemovedNoContact = wc.RemovedNoContact()
			body.SkippedAlreadySent = wc.SkippedAlreadySent()
		}
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   err.Error(),
			Reason:  reasonNoWork,
			Data:    body,
		})
		return
	}
	if err != nil {
		h.logger.Error("Failed to prepare reminders", zap.String("request_id", requestID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to prepare reminders")
		return
	}

	var contacts []reminder.Contact
	if s, ok := sheets["customer_emails"]; ok {
		contacts = reminder.ParseCustomerEmails(s.Rows)
	}
	var links map[string]string
	if s, ok := sheets["invoice_links"]; ok {
		links = reminder.ParseInvoiceLinks(s.Rows)
	}
	book := reminder.NewContactBook(contacts, links)

	emails, err := h.reminders.Generate(wc, book, reminder.GenerateOptions{Signature: req.Signature})
	if err != nil {
		h.logger.Error("Failed to generate reminders", zap.String("request_id", requestID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to generate reminders")
		return
	}

	exports := wc.PendingExports(book)
	exports.Sent = reminder.SentNumbers(emails)

	resp := ReminderResponse{
		RequestID:          requestID,
		Emails:             emails,
		RemovedNoContact:   wc.RemovedNoContact(),
		SkippedAlreadySent: emails.SkippedAlreadySent,
		Exports:            exports,
	}

	if req.SaveExports {
		saved, err := h.saveReminderExports(wc, exports)
		if err != nil {
			h.logger.Error("Failed to save reminder exports", zap.String("request_id", requestID), zap.Error(err))
			fail(c, http.StatusInternalServerError, "failed to save exports")
			return
		}
		resp.SavedFiles = saved
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

func noWorkCause(err error) string {
	if errors.Is(err, reminder.ErrNoValidInvoices) {
		return "no_valid_invoices"
	}
	return "no_eligible_customers"
}

// saveReminderExports writes the contact, link and sent-ledger sheets.
// The sent sheet holds the prior ledger plus this run's current invoices.
func (h *Handlers) saveReminderExports(wc *reminder.WorkContext, exports reminder.Exports) ([]string, error) {
	if h.exports == nil {
		return nil, errors.New("export storage is not configured")
	}
	date := wc.Now().Format(exportDateLayout)
	ledger := wc.Ledger().With(exports.Sent...)

	sheets := []struct {
		name    string
		sheet   string
		headers []string
		rows    [][]any
	}{
		{name: "customer-emails-" + date + ".xlsx", sheet: "Customer Emails", headers: reminder.ContactHeaders, rows: reminder.ContactRows(exports.Contacts)},
		{name: "invoice-links-" + date + ".xlsx", sheet: "Invoice Links", headers: reminder.LinkHeaders, rows: reminder.LinkRows(exports.Links)},
		{name: "sent-invoices-" + date + ".xlsx", sheet: "Sent Invoices", headers: reminder.SentHeaders, rows: reminder.SentRows(ledger.Keys())},
	}

	saved := make([]string, 0, len(sheets))
	for _, s := range sheets {
		path, err := h.exports.Save(s.name, storage.FileTypeExcel, func(w io.Writer) error {
			return spreadsheet.WriteRows(w, s.sheet, s.headers, s.rows)
		})
		if err != nil {
			return nil, err
		}
		saved = append(saved, filepath.Base(path))
	}
	return saved, nil
}

// GenerateReport handles POST /api/reports
func (h *Handlers) GenerateReport(c *gin.Context) {
	requestID := c.GetString("request_id")

	form, err := c.MultipartForm()
	if err != nil {
		fail(c, uploadStatus(err), "invalid multipart form")
		return
	}
	var req reportForm
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid form fields")
		return
	}

	sheets, err := decodeUploads(c.Request.Context(), form, []upload{{field: "invoices", required: true}})
	if err != nil {
		fail(c, uploadStatus(err), err.Error())
		return
	}

	prior := history.NewWithMaxEntries(h.maxHistory)
	if fh := fileHeader(form, "history"); fh != nil {
		f, err := fh.Open()
		if err != nil {
			fail(c, http.StatusBadRequest, "failed to open history upload")
			return
		}
		prior, err = history.Read(f)
		f.Close()
		if err != nil {
			h.logger.Warn("Rejected history upload", zap.String("request_id", requestID), zap.Error(err))
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	run, err := h.aggregator.Run(sheets["invoices"].Rows)
	if errors.Is(err, report.ErrNoInvoices) {
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error(), Reason: reasonNoInvoices})
		return
	}
	if err != nil {
		h.logger.Error("Failed to aggregate AR run", zap.String("request_id", requestID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to build report")
		return
	}

	resp := ReportResponse{
		RequestID:       requestID,
		HistoryFilename: history.ExportFilename(h.clock.Now()),
		Update:          history.Record(prior, *run),
	}

	if req.Save {
		if h.exports == nil {
			fail(c, http.StatusInternalServerError, "export storage is not configured")
			return
		}
		path, err := h.exports.Save(resp.HistoryFilename, storage.FileTypeJSON, func(w io.Writer) error {
			return history.Write(w, resp.History)
		})
		if err != nil {
			h.logger.Error("Failed to save history", zap.String("request_id", requestID), zap.Error(err))
			fail(c, http.StatusInternalServerError, "failed to save history")
			return
		}
		resp.SavedFile = filepath.Base(path)
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// LabelWIP handles POST /api/wip and answers with the labelled workbook
func (h *Handlers) LabelWIP(c *gin.Context) {
	requestID := c.GetString("request_id")

	form, err := c.MultipartForm()
	if err != nil {
		fail(c, uploadStatus(err), "invalid multipart form")
		return
	}
	var req wipForm
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid form fields")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		fail(c, http.StatusBadRequest, "customer name is too long")
		return
	}

	wip := fileHeader(form, "wip")
	if wip == nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("%s: wip", errMissingUpload))
		return
	}

	sheets, err := decodeUploads(c.Request.Context(), form, []upload{
		{field: "no_contact"},
		{field: "sent_customers"},
	})
	if err != nil {
		fail(c, uploadStatus(err), err.Error())
		return
	}
	noContact := sheets["no_contact"].FirstColumn()
	sent := append(sheets["sent_customers"].FirstColumn(), req.SentCustomers...)

	f, err := wip.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "failed to open wip upload")
		return
	}
	defer f.Close()

	var out bytes.Buffer
	updated, err := spreadsheet.LabelWIP(f, &out, noContact, sent)
	if err != nil {
		h.logger.Warn("Failed to label WIP workbook", zap.String("request_id", requestID), zap.Error(err))
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("WIP workbook labelled",
		zap.String("request_id", requestID),
		zap.String("file", wip.Filename),
		zap.Int("updated", updated))

	filename := spreadsheet.WIPFilename(wip.Filename, h.clock.Now())
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Header("X-Updated-Count", strconv.Itoa(updated))
	c.Data(http.StatusOK, xlsxContentType, out.Bytes())
}

// DownloadExport handles GET /api/exports/:name
func (h *Handlers) DownloadExport(c *gin.Context) {
	if h.exports == nil {
		fail(c, http.StatusNotFound, "exports are disabled")
		return
	}
	name := storage.SanitizeName(c.Param("name"))

	f, err := h.exports.Open(name)
	if err != nil {
		fail(c, http.StatusNotFound, "export not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to read export")
		return
	}

	contentType := "application/json"
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		contentType = xlsxContentType
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, f, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": name}),
	})
}
