package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"batch-reconciliation-backend/internal/export"
	"batch-reconciliation-backend/internal/ingest"
	"batch-reconciliation-backend/internal/services/matching"
	service "batch-reconciliation-backend/internal/services/reconciliation"
	"batch-reconciliation-backend/internal/templates"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReconciliationHandler struct {
	service       *service.ReconciliationService
	log           *logrus.Logger
	maxUploadSize int64
}

func NewReconciliationHandler(s *service.ReconciliationService, log *logrus.Logger, maxUploadSize int64) *ReconciliationHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 32 << 20
	}
	return &ReconciliationHandler{service: s, log: log, maxUploadSize: maxUploadSize}
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsConfigurationError(err), service.IsDataError(err),
		errors.Is(err, templates.ErrInvalidName), errors.Is(err, matching.ErrUnboundRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// InspectLedger parses the uploaded ledger exports and lists their accounts.
func (h *ReconciliationHandler) InspectLedger(c *gin.Context) {
	form, err := h.multipart(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files required"})
		return
	}

	load, err := h.loadLedger(files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if load.RowCount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "no valid cash receipt journal rows found",
			"skipped": load.Skipped,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files":    load.Files,
		"skipped":  load.Skipped,
		"rowCount": load.RowCount,
		"accounts": ingest.Accounts(load.Rows, matching.DefaultLedgerColumns),
	})
}

// InspectBank parses a bank statement and returns its columns for mapping.
func (h *ReconciliationHandler) InspectBank(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	table, err := h.parseUpload(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(table.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bank file has no data rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":     fileHeader.Filename,
		"columns":  table.NonEmptyColumns(),
		"rowCount": len(table.Rows),
		"preview":  table.Preview(5),
	})
}

// Run reconciles rows supplied in the JSON body.
func (h *ReconciliationHandler) Run(c *gin.Context) {
	var req service.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.run(c, req)
}

// Upload reconciles uploaded files. Form fields: ledger (one or more files),
// bank (file), mapping and accountMap (JSON), account, template, mode.
func (h *ReconciliationHandler) Upload(c *gin.Context) {
	form, err := h.multipart(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ledgerFiles := form.File["ledger"]
	bankFiles := form.File["bank"]
	if len(ledgerFiles) == 0 || len(bankFiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ledger and bank files required"})
		return
	}

	req := service.RunRequest{
		Account:  c.PostForm("account"),
		Template: c.PostForm("template"),
		Mode:     c.PostForm("mode"),
	}
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Mapping); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mapping"})
			return
		}
	}
	if raw := c.PostForm("accountMap"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.AccountMap); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid accountMap"})
			return
		}
	}

	load, err := h.loadLedger(ledgerFiles)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if load.RowCount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid cash receipt journal rows found", "skipped": load.Skipped})
		return
	}
	bank, err := h.parseUpload(bankFiles[0])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.log.WithFields(logrus.Fields{
		"ledger_files": load.Files,
		"ledger_rows":  load.RowCount,
		"bank_file":    bankFiles[0].Filename,
		"bank_rows":    len(bank.Rows),
	}).Info("files received")

	req.LedgerRows = load.Rows
	req.BankRows = bank.Rows
	h.run(c, req)
}

func (h *ReconciliationHandler) run(c *gin.Context, req service.RunRequest) {
	report, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReconciliationHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}
	report, err := h.service.GetRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReconciliationHandler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	var cursor service.RunCursor
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := service.ParseRunCursor(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
			return
		}
		cursor = parsed
	}

	items, hasMore, err := h.service.ListRuns(c.Request.Context(), c.Query("account"), cursor, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	nextCursor := ""
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = service.RunCursor{CreatedAt: last.CreatedAt, ID: last.ID}.String()
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

// ExportRun streams the run as an xlsx workbook.
func (h *ReconciliationHandler) ExportRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}
	report, err := h.service.GetRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, report.Result, now); err != nil {
		h.log.WithError(err).WithField("run_id", id).Error("export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(report.Result.SelectedAccount, now)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ReconciliationHandler) multipart(c *gin.Context) (*multipart.Form, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	return form, nil
}

func (h *ReconciliationHandler) loadLedger(files []*multipart.FileHeader) (*ingest.LedgerLoad, error) {
	sources := make([]ingest.Source, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("cannot open %s: %w", fh.Filename, err)
		}
		defer f.Close()
		sources = append(sources, ingest.Source{Name: fh.Filename, Reader: f})
	}
	load := ingest.LoadLedger(sources, matching.DefaultLedgerColumns)
	for _, skipped := range load.Skipped {
		h.log.WithField("file", skipped.Name).Warn(skipped.Reason)
	}
	return load, nil
}

func (h *ReconciliationHandler) parseUpload(fh *multipart.FileHeader) (*ingest.Table, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	table, err := ingest.ParseFile(fh.Filename, f)
	if err != nil {
		return nil, fmt.Errorf("error analyzing file %q: %w", fh.Filename, err)
	}
	return table, nil
}
