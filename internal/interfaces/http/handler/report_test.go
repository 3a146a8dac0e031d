package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	engagementapp "github.com/scg/portal/internal/application/engagement"
	reportapp "github.com/scg/portal/internal/application/report"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/interfaces/http/dto"
	"github.com/scg/portal/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Dispatch(ctx context.Context, serviceID uuid.UUID, view string) (*catalog.Service, catalog.ReportKind, error) {
	args := m.Called(ctx, serviceID, view)
	svc, _ := args.Get(0).(*catalog.Service)
	return svc, args.Get(1).(catalog.ReportKind), args.Error(2)
}

func (m *MockReportService) List(ctx context.Context, customerID, serviceID uuid.UUID, filter reportapp.ReportListFilter) ([]reportapp.ReportResponse, int64, error) {
	args := m.Called(ctx, customerID, serviceID, filter)
	return args.Get(0).([]reportapp.ReportResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportService) Upload(ctx context.Context, customerID, serviceID uuid.UUID, in reportapp.UploadInput) (*reportapp.UploadResponse, error) {
	args := m.Called(ctx, customerID, serviceID, in)
	resp, _ := args.Get(0).(*reportapp.UploadResponse)
	return resp, args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (*reportapp.ReportDetailResponse, error) {
	args := m.Called(ctx, customerID, serviceID, reportID)
	resp, _ := args.Get(0).(*reportapp.ReportDetailResponse)
	return resp, args.Error(1)
}

func (m *MockReportService) StatusSummary(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (map[report.FindingStatus]report.StatusCount, error) {
	args := m.Called(ctx, customerID, serviceID, reportID)
	out, _ := args.Get(0).(map[report.FindingStatus]report.StatusCount)
	return out, args.Error(1)
}

func (m *MockReportService) StatusCounts(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (map[report.FindingStatus]int64, error) {
	args := m.Called(ctx, customerID, serviceID, reportID)
	out, _ := args.Get(0).(map[report.FindingStatus]int64)
	return out, args.Error(1)
}

func (m *MockReportService) BulkUpdateStatus(ctx context.Context, customerID, serviceID, reportID, userID uuid.UUID, req reportapp.BulkStatusRequest) (*reportapp.BulkStatusResponse, error) {
	args := m.Called(ctx, customerID, serviceID, reportID, userID, req)
	resp, _ := args.Get(0).(*reportapp.BulkStatusResponse)
	return resp, args.Error(1)
}

func (m *MockReportService) Delete(ctx context.Context, customerID, serviceID, reportID uuid.UUID) error {
	return m.Called(ctx, customerID, serviceID, reportID).Error(0)
}

func (m *MockReportService) Selection(ctx context.Context, customerID uuid.UUID) (*reportapp.SelectionResponse, error) {
	args := m.Called(ctx, customerID)
	resp, _ := args.Get(0).(*reportapp.SelectionResponse)
	return resp, args.Error(1)
}

func (m *MockReportService) Export(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (*reportapp.ExportResult, error) {
	args := m.Called(ctx, customerID, serviceID, reportID)
	resp, _ := args.Get(0).(*reportapp.ExportResult)
	return resp, args.Error(1)
}

type MockSupportReportService struct {
	mock.Mock
}

func (m *MockSupportReportService) List(ctx context.Context, customerID, serviceID uuid.UUID) ([]engagement.SupportLine, error) {
	args := m.Called(ctx, customerID, serviceID)
	out, _ := args.Get(0).([]engagement.SupportLine)
	return out, args.Error(1)
}

func (m *MockSupportReportService) Detail(ctx context.Context, customerID, serviceID, contractID uuid.UUID, sort string) (*engagementapp.SupportDetailResponse, error) {
	args := m.Called(ctx, customerID, serviceID, contractID, sort)
	out, _ := args.Get(0).(*engagementapp.SupportDetailResponse)
	return out, args.Error(1)
}

func reportRouter(reports *MockReportService, support *MockSupportReportService, maxFileSize int64) *gin.Engine {
	h := NewReportHandler(reports, support, maxFileSize)
	r := gin.New()
	r.Use(authAs(staffClaims()))
	g := r.Group("/customers/:customer_id/reports", middleware.CustomerAccess())
	g.GET("", h.Selection)
	g.GET("/:service_id", h.List)
	g.POST("/:service_id", h.Upload)
	g.GET("/:service_id/:report_id", h.Detail)
	g.DELETE("/:service_id/:report_id", h.Delete)
	g.GET("/:service_id/:report_id/status-summary", h.StatusSummary)
	g.POST("/:service_id/:report_id/bulk-status", h.BulkStatus)
	g.GET("/:service_id/:report_id/export", h.Export)
	return r
}

func multipartUpload(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "scan.json")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestReportHandler_List_Scanner(t *testing.T) {
	customerID, serviceID := uuid.New(), uuid.New()
	reports := new(MockReportService)
	reports.On("Dispatch", mock.Anything, serviceID, reportapp.ViewList).Return(&catalog.Service{}, catalog.ReportKindNessus, nil)
	reports.On("List", mock.Anything, customerID, serviceID, reportapp.ReportListFilter{Page: 2}).
		Return([]reportapp.ReportResponse{{Name: "Q1 external"}}, int64(11), nil)

	w := performRequest(reportRouter(reports, new(MockSupportReportService), 0), http.MethodGet,
		"/customers/"+customerID.String()+"/reports/"+serviceID.String()+"?page=2", nil)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	assert.Equal(t, 10, env.Meta.PageSize)
	assert.Equal(t, 2, env.Meta.TotalPages)
}

func TestReportHandler_List_Support(t *testing.T) {
	customerID, serviceID := uuid.New(), uuid.New()
	reports := new(MockReportService)
	reports.On("Dispatch", mock.Anything, serviceID, reportapp.ViewList).Return(&catalog.Service{}, catalog.ReportKindSupport, nil)
	support := new(MockSupportReportService)
	support.On("List", mock.Anything, customerID, serviceID).Return([]engagement.SupportLine{{ContractNumber: "SCG-1"}}, nil)

	w := performRequest(reportRouter(reports, support, 0), http.MethodGet,
		"/customers/"+customerID.String()+"/reports/"+serviceID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	got := decodeData[[]engagement.SupportLine](t, w)
	assert.Equal(t, "SCG-1", got[0].ContractNumber)
	reports.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_UnsupportedReportType(t *testing.T) {
	customerID, serviceID := uuid.New(), uuid.New()
	reports := new(MockReportService)
	reports.On("Dispatch", mock.Anything, serviceID, reportapp.ViewDetail).
		Return(nil, catalog.ReportKind(""), reportapp.UnsupportedViewError("Web", reportapp.ViewDetail))

	w := performRequest(reportRouter(reports, new(MockSupportReportService), 0), http.MethodGet,
		"/customers/"+customerID.String()+"/reports/"+serviceID.String()+"/"+uuid.NewString(), nil)

	assertError(t, w, http.StatusNotFound, dto.ErrCodeUnsupportedType)
	assert.Contains(t, decodeEnvelope(t, w).Error.Message, "Web - detail")
}

func TestReportHandler_Detail_SupportSort(t *testing.T) {
	customerID, serviceID, contractID := uuid.New(), uuid.New(), uuid.New()
	reports := new(MockReportService)
	reports.On("Dispatch", mock.Anything, serviceID, reportapp.ViewDetail).Return(&catalog.Service{}, catalog.ReportKindSupport, nil)
	support := new(MockSupportReportService)
	support.On("Detail", mock.Anything, customerID, serviceID, contractID, "-hours_used").
		Return(&engagementapp.SupportDetailResponse{Histogram: []engagement.DailyHours{{Date: "2024-02-01"}}}, nil)

	w := performRequest(reportRouter(reports, support, 0), http.MethodGet,
		"/customers/"+customerID.String()+"/reports/"+serviceID.String()+"/"+contractID.String()+"?sort=-hours_used", nil)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	support.AssertExpectations(t)
}

func TestReportHandler_Upload(t *testing.T) {
	customerID, serviceID, contractID := uuid.New(), uuid.New(), uuid.New()
	claims := staffClaims()
	file := []byte(`{"scan_date": "2024-03-01", "inventory": [], "alert_report": []}`)
	reports := new(MockReportService)
	reports.On("Upload", mock.Anything, customerID, serviceID, mock.MatchedBy(func(in reportapp.UploadInput) bool {
		return in.ContractID == contractID && in.Name == "March scan" && in.Filename == "scan.json" &&
			bytes.Equal(in.Data, file) && in.UploadedBy.String() == claims.UserID
	})).Return(&reportapp.UploadResponse{Report: reportapp.ReportResponse{ID: uuid.New()}, Warnings: []string{"Signature with ID 1 not found."}}, nil)

	h := NewReportHandler(reports, new(MockSupportReportService), 1<<20)
	r := gin.New()
	r.POST("/customers/:customer_id/reports/:service_id", authAs(claims), middleware.CustomerAccess(), h.Upload)

	body, contentType := multipartUpload(t, map[string]string{"name": "March scan", "contract_id": contractID.String()}, file)
	req := httptest.NewRequest(http.MethodPost, "/customers/"+customerID.String()+"/reports/"+serviceID.String(), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decodeData[reportapp.UploadResponse](t, w)
	assert.Len(t, got.Warnings, 1)
	reports.AssertExpectations(t)
}

func TestReportHandler_Upload_Rejected(t *testing.T) {
	customerID, serviceID := uuid.New(), uuid.New()
	reports := new(MockReportService)
	path := "/customers/" + customerID.String() + "/reports/" + serviceID.String()

	send := func(fields map[string]string, file []byte, limit int64) *httptest.ResponseRecorder {
		body, contentType := multipartUpload(t, fields, file)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		reportRouter(reports, new(MockSupportReportService), limit).ServeHTTP(w, req)
		return w
	}

	t.Run("missing contract", func(t *testing.T) {
		w := send(map[string]string{"name": "scan"}, []byte("{}"), 0)
		assertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("missing file", func(t *testing.T) {
		w := send(map[string]string{"name": "scan", "contract_id": uuid.NewString()}, nil, 0)
		assertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("file too large", func(t *testing.T) {
		w := send(map[string]string{"name": "scan", "contract_id": uuid.NewString()}, bytes.Repeat([]byte("x"), 64), 16)
		assertError(t, w, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge)
	})

	reports.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_StatusSummary(t *testing.T) {
	customerID, serviceID, reportID := uuid.New(), uuid.New(), uuid.New()
	reports := new(MockReportService)
	reports.On("StatusSummary", mock.Anything, customerID, serviceID, reportID).
		Return(map[report.FindingStatus]report.StatusCount{report.StatusFixed: {Label: "Fixed", Count: 3}}, nil)
	reports.On("StatusCounts", mock.Anything, customerID, serviceID, reportID).
		Return(map[report.FindingStatus]int64{report.StatusFixed: 3}, nil)
	router := reportRouter(reports, new(MockSupportReportService), 0)
	base := "/customers/" + customerID.String() + "/reports/" + serviceID.String() + "/" + reportID.String() + "/status-summary"

	w := performRequest(router, http.MethodGet, base, nil)
	summary := decodeData[map[string]report.StatusCount](t, w)
	assert.Equal(t, "Fixed", summary["fixed"].Label)

	w = performRequest(router, http.MethodGet, base+"?counts_only=true", nil)
	counts := decodeData[map[string]int64](t, w)
	assert.Equal(t, int64(3), counts["fixed"])
}

func TestReportHandler_BulkStatus(t *testing.T) {
	customerID, serviceID, reportID := uuid.New(), uuid.New(), uuid.New()
	claims := staffClaims()
	reports := new(MockReportService)
	good := reportapp.BulkStatusRequest{Status: "fixed", BulkType: "risk_factor", RiskFactor: "High"}
	reports.On("BulkUpdateStatus", mock.Anything, customerID, serviceID, reportID, uuid.MustParse(claims.UserID), good).
		Return(&reportapp.BulkStatusResponse{Success: true, NewStatus: report.StatusFixed, UpdatedCount: 4}, nil)
	bad := reportapp.BulkStatusRequest{Status: "done", BulkType: "single"}
	reports.On("BulkUpdateStatus", mock.Anything, customerID, serviceID, reportID, mock.Anything, bad).
		Return(nil, shared.NewDomainError("INVALID_STATUS", "Invalid status: done"))

	h := NewReportHandler(reports, new(MockSupportReportService), 0)
	r := gin.New()
	r.POST("/customers/:customer_id/reports/:service_id/:report_id/bulk-status", authAs(claims), middleware.CustomerAccess(), h.BulkStatus)
	path := "/customers/" + customerID.String() + "/reports/" + serviceID.String() + "/" + reportID.String() + "/bulk-status"

	w := performRequest(r, http.MethodPost, path, good)
	got := decodeData[reportapp.BulkStatusResponse](t, w)
	assert.True(t, got.Success)
	assert.Equal(t, 4, got.UpdatedCount)

	w = performRequest(r, http.MethodPost, path, bad)
	assertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestReportHandler_Export(t *testing.T) {
	customerID, serviceID, reportID := uuid.New(), uuid.New(), uuid.New()
	reports := new(MockReportService)
	reports.On("Export", mock.Anything, customerID, serviceID, reportID).
		Return(&reportapp.ExportResult{Filename: "q1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}, nil).Once()
	reports.On("Export", mock.Anything, customerID, serviceID, reportID).Return(nil, reportapp.ErrPrintingDisabled).Once()
	router := reportRouter(reports, new(MockSupportReportService), 0)
	path := "/customers/" + customerID.String() + "/reports/" + serviceID.String() + "/" + reportID.String() + "/export"

	w := performRequest(router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="q1.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w = performRequest(router, http.MethodGet, path, nil)
	assertError(t, w, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable)
}

func TestReportHandler_SelectionAndDelete(t *testing.T) {
	customerID, serviceID, reportID := uuid.New(), uuid.New(), uuid.New()
	reports := new(MockReportService)
	reports.On("Selection", mock.Anything, customerID).Return(&reportapp.SelectionResponse{
		ReportTypes: []report.ReportTypeGroup{{ReportType: "Nessus"}},
	}, nil)
	reports.On("Delete", mock.Anything, customerID, serviceID, reportID).Return(nil)
	router := reportRouter(reports, new(MockSupportReportService), 0)

	w := performRequest(router, http.MethodGet, "/customers/"+customerID.String()+"/reports", nil)
	got := decodeData[reportapp.SelectionResponse](t, w)
	assert.Equal(t, "Nessus", got.ReportTypes[0].ReportType)

	w = performRequest(router, http.MethodDelete, "/customers/"+customerID.String()+"/reports/"+serviceID.String()+"/"+reportID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	reports.AssertExpectations(t)
}
