package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	customerapp "github.com/scg/portal/internal/application/customer"
	"github.com/scg/portal/internal/interfaces/http/dto"
	"github.com/scg/portal/internal/interfaces/http/middleware"
)

// CustomerService is the part of the customer application service the handler uses
type CustomerService interface {
	Create(ctx context.Context, req customerapp.CreateCustomerRequest) (*customerapp.CustomerResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*customerapp.CustomerResponse, error)
	List(ctx context.Context, filter customerapp.CustomerListFilter) ([]customerapp.CustomerResponse, int64, error)
	ListSelectable(ctx context.Context, isStaff bool, memberOf []uuid.UUID) ([]customerapp.CustomerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req customerapp.UpdateCustomerRequest) (*customerapp.CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body customerapp.CreateCustomerRequest true "Customer"
// @Success      201 {object} APIResponse[customerapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Description  Paginated customer list for staff, searchable by name and filterable by type
// @Tags         customers
// @Produce      json
// @Param        search    query string false "Name search"
// @Param        type      query string false "Customer type" Enums(customer, main, reseller)
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} APIResponse[[]customerapp.CustomerResponse]
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var filter customerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	customers, total, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := dto.DefaultPage(filter.Page, filter.PageSize, 20)
	h.SuccessWithMeta(c, customers, total, page, pageSize)
}

// Selectable godoc
// @ID           listSelectableCustomers
// @Summary      Customers the caller may select
// @Description  Staff get every customer, other users the customers they belong to
// @Tags         customers
// @Produce      json
// @Success      200 {object} APIResponse[[]customerapp.CustomerResponse]
// @Security     BearerAuth
// @Router       /customers/selectable [get]
func (h *CustomerHandler) Selectable(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	memberOf, err := claims.GetCustomerUUIDs()
	if err != nil {
		h.Unauthorized(c, "Invalid token")
		return
	}

	customers, err := h.customerService.ListSelectable(c.Request.Context(), claims.IsStaff, memberOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customers)
}

// Get godoc
// @ID           getCustomer
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[customerapp.CustomerResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        request body customerapp.UpdateCustomerRequest true "Customer"
// @Success      200 {object} APIResponse[customerapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req customerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Description  Deletes the customer with its contracts, reports and engagements
// @Tags         customers
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), customerID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
