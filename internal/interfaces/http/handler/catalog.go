package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/scg/portal/internal/application/catalog"
	"github.com/scg/portal/internal/interfaces/http/dto"
)

// ServiceCatalogService manages billable services
type ServiceCatalogService interface {
	Create(ctx context.Context, req catalogapp.CreateServiceRequest) (*catalogapp.ServiceResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateServiceRequest) (*catalogapp.ServiceResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ServiceResponse, error)
	List(ctx context.Context, filter catalogapp.ServiceListFilter) ([]catalogapp.ServiceResponse, int64, error)
	Activate(ctx context.Context, id uuid.UUID) (*catalogapp.ServiceResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*catalogapp.ServiceResponse, error)
}

// ReportTypeService manages report types
type ReportTypeService interface {
	Create(ctx context.Context, req catalogapp.CreateReportTypeRequest) (*catalogapp.ReportTypeResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateReportTypeRequest) (*catalogapp.ReportTypeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ReportTypeResponse, error)
	List(ctx context.Context, search string) ([]catalogapp.ReportTypeResponse, int64, error)
}

// CatalogHandler serves the service catalog and the report types
type CatalogHandler struct {
	BaseHandler
	services    ServiceCatalogService
	reportTypes ReportTypeService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(services ServiceCatalogService, reportTypes ReportTypeService) *CatalogHandler {
	return &CatalogHandler{services: services, reportTypes: reportTypes}
}

// ListServices godoc
// @ID           listServices
// @Summary      List catalog services
// @Tags         catalog
// @Produce      json
// @Param        search         query string false "Search on code and name"
// @Param        is_active      query bool   false "Active flag"
// @Param        report_type_id query string false "Report type" format(uuid)
// @Param        page           query int    false "Page"
// @Param        page_size      query int    false "Page size"
// @Success      200 {object} APIResponse[[]catalogapp.ServiceResponse]
// @Security     BearerAuth
// @Router       /catalog/services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	var filter catalogapp.ServiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	services, total, err := h.services.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := dto.DefaultPage(filter.Page, filter.PageSize, 20)
	h.SuccessWithMeta(c, services, total, page, pageSize)
}

// CreateService godoc
// @ID           createService
// @Summary      Add a service to the catalog
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateServiceRequest true "Service"
// @Success      201 {object} APIResponse[catalogapp.ServiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/services [post]
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req catalogapp.CreateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	svc, err := h.services.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, svc)
}

// GetService godoc
// @ID           getService
// @Summary      Get a catalog service
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ServiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/services/{id} [get]
func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "service")
	if !ok {
		return
	}
	svc, err := h.services.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, svc)
}

// UpdateService godoc
// @ID           updateService
// @Summary      Update a catalog service
// @Description  A price change refreshes the totals of contracts using the service
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id      path string true "Service ID" format(uuid)
// @Param        request body catalogapp.UpdateServiceRequest true "Service"
// @Success      200 {object} APIResponse[catalogapp.ServiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/services/{id} [put]
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "service")
	if !ok {
		return
	}
	var req catalogapp.UpdateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	svc, err := h.services.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, svc)
}

// DeleteService godoc
// @ID           deleteService
// @Summary      Delete a catalog service
// @Tags         catalog
// @Param        id path string true "Service ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/services/{id} [delete]
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "service")
	if !ok {
		return
	}
	if err := h.services.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ActivateService godoc
// @ID           activateService
// @Summary      Activate a catalog service
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ServiceResponse]
// @Security     BearerAuth
// @Router       /catalog/services/{id}/activate [post]
func (h *CatalogHandler) ActivateService(c *gin.Context) {
	h.toggleService(c, h.services.Activate)
}

// DeactivateService godoc
// @ID           deactivateService
// @Summary      Deactivate a catalog service
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ServiceResponse]
// @Security     BearerAuth
// @Router       /catalog/services/{id}/deactivate [post]
func (h *CatalogHandler) DeactivateService(c *gin.Context) {
	h.toggleService(c, h.services.Deactivate)
}

func (h *CatalogHandler) toggleService(c *gin.Context, apply func(context.Context, uuid.UUID) (*catalogapp.ServiceResponse, error)) {
	id, ok := h.uuidParam(c, "id", "service")
	if !ok {
		return
	}
	svc, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, svc)
}

// ListReportTypes godoc
// @ID           listReportTypes
// @Summary      List report types
// @Tags         catalog
// @Produce      json
// @Param        search query string false "Name search"
// @Success      200 {object} APIResponse[[]catalogapp.ReportTypeResponse]
// @Security     BearerAuth
// @Router       /catalog/report-types [get]
func (h *CatalogHandler) ListReportTypes(c *gin.Context) {
	types, total, err := h.reportTypes.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, types, total, 1, max(int(total), 1))
}

// CreateReportType godoc
// @ID           createReportType
// @Summary      Create a report type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateReportTypeRequest true "Report type"
// @Success      201 {object} APIResponse[catalogapp.ReportTypeResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/report-types [post]
func (h *CatalogHandler) CreateReportType(c *gin.Context) {
	var req catalogapp.CreateReportTypeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rt, err := h.reportTypes.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rt)
}

// GetReportType godoc
// @ID           getReportType
// @Summary      Get a report type
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Report type ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ReportTypeResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/report-types/{id} [get]
func (h *CatalogHandler) GetReportType(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "report type")
	if !ok {
		return
	}
	rt, err := h.reportTypes.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rt)
}

// UpdateReportType godoc
// @ID           updateReportType
// @Summary      Update a report type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id      path string true "Report type ID" format(uuid)
// @Param        request body catalogapp.UpdateReportTypeRequest true "Report type"
// @Success      200 {object} APIResponse[catalogapp.ReportTypeResponse]
// @Security     BearerAuth
// @Router       /catalog/report-types/{id} [put]
func (h *CatalogHandler) UpdateReportType(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "report type")
	if !ok {
		return
	}
	var req catalogapp.UpdateReportTypeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rt, err := h.reportTypes.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rt)
}

// DeleteReportType godoc
// @ID           deleteReportType
// @Summary      Delete a report type
// @Description  Services using it keep existing with no report type
// @Tags         catalog
// @Param        id path string true "Report type ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /catalog/report-types/{id} [delete]
func (h *CatalogHandler) DeleteReportType(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "report type")
	if !ok {
		return
	}
	if err := h.reportTypes.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
