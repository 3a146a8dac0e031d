package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	engagementapp "github.com/scg/portal/internal/application/engagement"
	reportapp "github.com/scg/portal/internal/application/report"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const reportPageSize = 10

// ReportService ingests, browses and triages scanner reports
type ReportService interface {
	Dispatch(ctx context.Context, serviceID uuid.UUID, view string) (*catalog.Service, catalog.ReportKind, error)
	List(ctx context.Context, customerID, serviceID uuid.UUID, filter reportapp.ReportListFilter) ([]reportapp.ReportResponse, int64, error)
	Upload(ctx context.Context, customerID, serviceID uuid.UUID, in reportapp.UploadInput) (*reportapp.UploadResponse, error)
	Get(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (*reportapp.ReportDetailResponse, error)
	StatusSummary(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (map[report.FindingStatus]report.StatusCount, error)
	StatusCounts(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (map[report.FindingStatus]int64, error)
	BulkUpdateStatus(ctx context.Context, customerID, serviceID, reportID, userID uuid.UUID, req reportapp.BulkStatusRequest) (*reportapp.BulkStatusResponse, error)
	Delete(ctx context.Context, customerID, serviceID, reportID uuid.UUID) error
	Selection(ctx context.Context, customerID uuid.UUID) (*reportapp.SelectionResponse, error)
	Export(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (*reportapp.ExportResult, error)
}

// SupportReportService builds the virtual reports of support services
type SupportReportService interface {
	List(ctx context.Context, customerID, serviceID uuid.UUID) ([]engagement.SupportLine, error)
	Detail(ctx context.Context, customerID, serviceID, contractID uuid.UUID, sort string) (*engagementapp.SupportDetailResponse, error)
}

// ReportHandler serves /customers/{customer_id}/reports. The report type of
// the service in the path decides which backend answers.
type ReportHandler struct {
	BaseHandler
	reports     ReportService
	support     SupportReportService
	maxFileSize int64
}

// NewReportHandler creates a new ReportHandler. maxFileSize <= 0 disables the upload size check.
func NewReportHandler(reports ReportService, support SupportReportService, maxFileSize int64) *ReportHandler {
	return &ReportHandler{reports: reports, support: support, maxFileSize: maxFileSize}
}

// Selection godoc
// @ID           reportSelection
// @Summary      Contracts and services a customer can browse reports for
// @Tags         reports
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[reportapp.SelectionResponse]
// @Security     BearerAuth
// @Router       /customers/{customer_id}/reports [get]
func (h *ReportHandler) Selection(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	resp, err := h.reports.Selection(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @ID           listReports
// @Summary      List the reports of a service
// @Description  Scanner services list uploaded reports, newest first. Support services list the contracts holding the service with their hours.
// @Tags         reports
// @Produce      json
// @Param        customer_id path  string true  "Customer ID" format(uuid)
// @Param        service_id  path  string true  "Service ID" format(uuid)
// @Param        page        query int    false "Page"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} APIResponse[[]reportapp.ReportResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/reports/{service_id} [get]
func (h *ReportHandler) List(c *gin.Context) {
	customerID, serviceID, ok := h.servicePath(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	_, kind, err := h.reports.Dispatch(ctx, serviceID, reportapp.ViewList)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if kind == catalog.ReportKindSupport {
		lines, err := h.support.List(ctx, customerID, serviceID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, lines)
		return
	}

	var filter reportapp.ReportListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	reports, total, err := h.reports.List(ctx, customerID, serviceID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := dto.DefaultPage(filter.Page, filter.PageSize, reportPageSize)
	h.SuccessWithMeta(c, reports, total, page, pageSize)
}

// Upload godoc
// @ID           uploadReport
// @Summary      Upload a scanner report
// @Description  Parses a Nessus or Burp Suite JSON export and stores its findings
// @Tags         reports
// @Accept       multipart/form-data
// @Produce      json
// @Param        customer_id path     string true "Customer ID" format(uuid)
// @Param        service_id  path     string true "Service ID" format(uuid)
// @Param        file        formData file   true "Scanner JSON export"
// @Param        name        formData string true "Report name"
// @Param        contract_id formData string true "Contract ID" format(uuid)
// @Success      201 {object} APIResponse[reportapp.UploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/reports/{service_id} [post]
func (h *ReportHandler) Upload(c *gin.Context) {
	customerID, serviceID, ok := h.servicePath(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var form reportapp.UploadForm
	if err := c.ShouldBind(&form); err != nil {
		h.bindFailed(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "A report file is required")
		return
	}
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			fmt.Sprintf("File exceeds the maximum size of %d bytes", h.maxFileSize))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.HandleError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	resp, err := h.reports.Upload(c.Request.Context(), customerID, serviceID, reportapp.UploadInput{
		ContractID: uuid.MustParse(form.ContractID),
		Name:       form.Name,
		Filename:   fh.Filename,
		Data:       data,
		UploadedBy: userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Info("Report uploaded",
		zap.String("report_id", resp.Report.ID.String()),
		zap.Int("findings", resp.FindingCount),
		zap.Int("warnings", len(resp.Warnings)),
	)
	h.Created(c, resp)
}

// Detail godoc
// @ID           getReport
// @Summary      Get a report with its grouped findings
// @Description  For support services report_id is a contract ID and the response lists its engagements, an hours histogram and stats.
// @Tags         reports
// @Produce      json
// @Param        customer_id path  string true  "Customer ID" format(uuid)
// @Param        service_id  path  string true  "Service ID" format(uuid)
// @Param        report_id   path  string true  "Report ID, or contract ID for support services" format(uuid)
// @Param        sort        query string false "Support engagement order"
// @Success      200 {object} APIResponse[reportapp.ReportDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/reports/{service_id}/{report_id} [get]
func (h *ReportHandler) Detail(c *gin.Context) {
	customerID, serviceID, reportID, ok := h.reportPath(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	_, kind, err := h.reports.Dispatch(ctx, serviceID, reportapp.ViewDetail)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if kind == catalog.ReportKindSupport {
		detail, err := h.support.Detail(ctx, customerID, serviceID, reportID, c.Query("sort"))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, detail)
		return
	}

	detail, err := h.reports.Get(ctx, customerID, serviceID, reportID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Delete godoc
// @ID           deleteReport
// @Summary      Delete a report and its findings
// @Tags         reports
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        service_id  path string true "Service ID" format(uuid)
// @Param        report_id   path string true "Report ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/reports/{service_id}/{report_id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	customerID, serviceID, reportID, ok := h.reportPath(c)
	if !ok {
		return
	}
	if err := h.reports.Delete(c.Request.Context(), customerID, serviceID, reportID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// StatusSummary godoc
// @ID           reportStatusSummary
// @Summary      Finding counts per status
// @Description  Only statuses that occur are returned. With counts_only=true the values are bare counts.
// @Tags         reports
// @Produce      json
// @Param        customer_id path  string true  "Customer ID" format(uuid)
// @Param        service_id  path  string true  "Service ID" format(uuid)
// @Param        report_id   path  string true  "Report ID" format(uuid)
// @Param        counts_only query bool   false "Return counts without labels"
// @Success      200 {object} APIResponse[map[string]report.StatusCount]
// @Security     BearerAuth
// @Router       /customers/{customer_id}/reports/{service_id}/{report_id}/status-summary [get]
func (h *ReportHandler) StatusSummary(c *gin.Context) {
	customerID, serviceID, reportID, ok := h.reportPath(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if countsOnly, _ := strconv.ParseBool(c.Query("counts_only")); countsOnly {
		counts, err := h.reports.StatusCounts(ctx, customerID, serviceID, reportID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, counts)
		return
	}

	summary, err := h.reports.StatusSummary(ctx, customerID, serviceID, reportID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// BulkStatus godoc
// @ID           bulkUpdateFindingStatus
// @Summary      Change the status of findings in bulk
// @Description  Nessus bulk types: single, vulnerability, risk_factor. Burp bulk types: single, signature, severity.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        service_id  path string true "Service ID" format(uuid)
// @Param        report_id   path string true "Report ID" format(uuid)
// @Param        request     body reportapp.BulkStatusRequest true "Selection and new status"
// @Success      200 {object} APIResponse[reportapp.BulkStatusResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/reports/{service_id}/{report_id}/bulk-status [post]
func (h *ReportHandler) BulkStatus(c *gin.Context) {
	customerID, serviceID, reportID, ok := h.reportPath(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req reportapp.BulkStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.reports.BulkUpdateStatus(c.Request.Context(), customerID, serviceID, reportID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Export godoc
// @ID           exportReport
// @Summary      Export a report summary as PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        service_id  path string true "Service ID" format(uuid)
// @Param        report_id   path string true "Report ID" format(uuid)
// @Success      200 {file} binary
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/reports/{service_id}/{report_id}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	customerID, serviceID, reportID, ok := h.reportPath(c)
	if !ok {
		return
	}
	doc, err := h.reports.Export(c.Request.Context(), customerID, serviceID, reportID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

func (h *ReportHandler) servicePath(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	customerID, ok := h.customerID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	serviceID, ok := h.uuidParam(c, "service_id", "service")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return customerID, serviceID, true
}

func (h *ReportHandler) reportPath(c *gin.Context) (uuid.UUID, uuid.UUID, uuid.UUID, bool) {
	customerID, serviceID, ok := h.servicePath(c)
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	reportID, ok := h.uuidParam(c, "report_id", "report")
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return customerID, serviceID, reportID, true
}
