package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	engagementapp "github.com/scg/portal/internal/application/engagement"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// EngagementService manages support engagements and their time entries
type EngagementService interface {
	CreateOptions(ctx context.Context, customerID uuid.UUID) ([]engagementapp.ContractOption, error)
	List(ctx context.Context, customerID uuid.UUID, filter engagementapp.EngagementListFilter) ([]engagementapp.EngagementResponse, int64, error)
	Create(ctx context.Context, customerID, userID uuid.UUID, req engagementapp.CreateEngagementRequest) (*engagementapp.EngagementResponse, error)
	Get(ctx context.Context, customerID, id uuid.UUID) (*engagementapp.EngagementDetailResponse, error)
	Update(ctx context.Context, customerID, id uuid.UUID, req engagementapp.UpdateEngagementRequest) (*engagementapp.EngagementResponse, error)
	ChangeStatus(ctx context.Context, customerID, id uuid.UUID, req engagementapp.ChangeStatusRequest) (*engagementapp.EngagementResponse, error)
	Delete(ctx context.Context, customerID, id uuid.UUID) error
	AddTimeEntry(ctx context.Context, customerID, engagementID, userID uuid.UUID, req engagementapp.TimeEntryRequest) (*engagementapp.TimeEntryResult, error)
	UpdateTimeEntry(ctx context.Context, customerID, entryID uuid.UUID, req engagementapp.TimeEntryRequest) (*engagementapp.TimeEntryResult, error)
	DeleteTimeEntry(ctx context.Context, customerID, entryID uuid.UUID) error
}

// EngagementHandler handles support engagements of a customer
type EngagementHandler struct {
	BaseHandler
	engagements EngagementService
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engagements EngagementService) *EngagementHandler {
	return &EngagementHandler{engagements: engagements}
}

// Options godoc
// @ID           engagementOptions
// @Summary      Contracts and support lines an engagement can be opened on
// @Tags         engagements
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[[]engagementapp.ContractOption]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/engagements/options [get]
func (h *EngagementHandler) Options(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	options, err := h.engagements.CreateOptions(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// List godoc
// @ID           listEngagements
// @Summary      List engagements
// @Tags         engagements
// @Produce      json
// @Param        customer_id path  string true  "Customer ID" format(uuid)
// @Param        contract_id query string false "Contract" format(uuid)
// @Param        status      query string false "Status"
// @Param        priority    query string false "Priority"
// @Param        page        query int    false "Page"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} APIResponse[[]engagementapp.EngagementResponse]
// @Security     BearerAuth
// @Router       /customers/{customer_id}/engagements [get]
func (h *EngagementHandler) List(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var filter engagementapp.EngagementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.engagements.List(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := dto.DefaultPage(filter.Page, filter.PageSize, 20)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Create godoc
// @ID           createEngagement
// @Summary      Open an engagement on a support line
// @Description  The contract must be active and the line must be a support service
// @Tags         engagements
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        request     body engagementapp.CreateEngagementRequest true "Engagement"
// @Success      201 {object} APIResponse[engagementapp.EngagementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/engagements [post]
func (h *EngagementHandler) Create(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req engagementapp.CreateEngagementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.engagements.Create(c.Request.Context(), customerID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @ID           getEngagement
// @Summary      Get an engagement with its time entries and hour usage
// @Tags         engagements
// @Produce      json
// @Param        customer_id   path string true "Customer ID" format(uuid)
// @Param        engagement_id path string true "Engagement ID" format(uuid)
// @Success      200 {object} APIResponse[engagementapp.EngagementDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/engagements/{engagement_id} [get]
func (h *EngagementHandler) Get(c *gin.Context) {
	customerID, id, ok := h.engagementPath(c)
	if !ok {
		return
	}
	resp, err := h.engagements.Get(c.Request.Context(), customerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @ID           updateEngagement
// @Summary      Update an engagement
// @Tags         engagements
// @Accept       json
// @Produce      json
// @Param        customer_id   path string true "Customer ID" format(uuid)
// @Param        engagement_id path string true "Engagement ID" format(uuid)
// @Param        request       body engagementapp.UpdateEngagementRequest true "Engagement"
// @Success      200 {object} APIResponse[engagementapp.EngagementResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/engagements/{engagement_id} [put]
func (h *EngagementHandler) Update(c *gin.Context) {
	customerID, id, ok := h.engagementPath(c)
	if !ok {
		return
	}
	var req engagementapp.UpdateEngagementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.engagements.Update(c.Request.Context(), customerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeStatus godoc
// @ID           changeEngagementStatus
// @Summary      Change the status of an engagement
// @Tags         engagements
// @Accept       json
// @Produce      json
// @Param        customer_id   path string true "Customer ID" format(uuid)
// @Param        engagement_id path string true "Engagement ID" format(uuid)
// @Param        request       body engagementapp.ChangeStatusRequest true "Status"
// @Success      200 {object} APIResponse[engagementapp.EngagementResponse]
// @Security     BearerAuth
// @Router       /customers/{customer_id}/engagements/{engagement_id}/status [patch]
func (h *EngagementHandler) ChangeStatus(c *gin.Context) {
	customerID, id, ok := h.engagementPath(c)
	if !ok {
		return
	}
	var req engagementapp.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.engagements.ChangeStatus(c.Request.Context(), customerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteEngagement
// @Summary      Delete an engagement and its time entries
// @Tags         engagements
// @Param        customer_id   path string true "Customer ID" format(uuid)
// @Param        engagement_id path string true "Engagement ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /customers/{customer_id}/engagements/{engagement_id} [delete]
func (h *EngagementHandler) Delete(c *gin.Context) {
	customerID, id, ok := h.engagementPath(c)
	if !ok {
		return
	}
	if err := h.engagements.Delete(c.Request.Context(), customerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddTimeEntry godoc
// @ID           addTimeEntry
// @Summary      Log hours on an engagement
// @Description  Exceeding the contracted hours is allowed and returns a warning
// @Tags         engagements
// @Accept       json
// @Produce      json
// @Param        customer_id   path string true "Customer ID" format(uuid)
// @Param        engagement_id path string true "Engagement ID" format(uuid)
// @Param        request       body engagementapp.TimeEntryRequest true "Time entry"
// @Success      201 {object} APIResponse[engagementapp.TimeEntryResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/engagements/{engagement_id}/time-entries [post]
func (h *EngagementHandler) AddTimeEntry(c *gin.Context) {
	customerID, id, ok := h.engagementPath(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req engagementapp.TimeEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.engagements.AddTimeEntry(c.Request.Context(), customerID, id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.logOverrun(c, result)
	h.Created(c, result)
}

// UpdateTimeEntry godoc
// @ID           updateTimeEntry
// @Summary      Edit a time entry
// @Tags         engagements
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        entry_id    path string true "Time entry ID" format(uuid)
// @Param        request     body engagementapp.TimeEntryRequest true "Time entry"
// @Success      200 {object} APIResponse[engagementapp.TimeEntryResult]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/time-entries/{entry_id} [put]
func (h *EngagementHandler) UpdateTimeEntry(c *gin.Context) {
	customerID, entryID, ok := h.entryPath(c)
	if !ok {
		return
	}
	var req engagementapp.TimeEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.engagements.UpdateTimeEntry(c.Request.Context(), customerID, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.logOverrun(c, result)
	h.Success(c, result)
}

// DeleteTimeEntry godoc
// @ID           deleteTimeEntry
// @Summary      Delete a time entry
// @Tags         engagements
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        entry_id    path string true "Time entry ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/time-entries/{entry_id} [delete]
func (h *EngagementHandler) DeleteTimeEntry(c *gin.Context) {
	customerID, entryID, ok := h.entryPath(c)
	if !ok {
		return
	}
	if err := h.engagements.DeleteTimeEntry(c.Request.Context(), customerID, entryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *EngagementHandler) logOverrun(c *gin.Context, result *engagementapp.TimeEntryResult) {
	if result.Warning == "" {
		return
	}
	logger.GetGinLogger(c).Warn("Contracted hours exceeded",
		zap.String("engagement_id", result.Entry.EngagementID.String()),
		zap.String("hours_spent", result.Entry.HoursSpent.String()),
	)
}

func (h *EngagementHandler) engagementPath(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	customerID, ok := h.customerID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.uuidParam(c, "engagement_id", "engagement")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return customerID, id, true
}

func (h *EngagementHandler) entryPath(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	customerID, ok := h.customerID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.uuidParam(c, "entry_id", "time entry")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return customerID, id, true
}
