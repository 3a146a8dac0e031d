package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contractapp "github.com/scg/portal/internal/application/contract"
	"github.com/scg/portal/internal/domain/shared"
)

// ContractService manages customer contracts and their service lines
type ContractService interface {
	Create(ctx context.Context, customerID uuid.UUID, req contractapp.CreateContractRequest) (*contractapp.ContractResponse, error)
	Update(ctx context.Context, customerID, contractID uuid.UUID, req contractapp.UpdateContractRequest) (*contractapp.ContractResponse, error)
	Delete(ctx context.Context, customerID, contractID uuid.UUID) error
	ChangeStatus(ctx context.Context, customerID, contractID uuid.UUID, req contractapp.ChangeStatusRequest) (*contractapp.ContractResponse, error)
	AddLine(ctx context.Context, customerID, contractID uuid.UUID, req contractapp.ContractLineInput) (*contractapp.ContractTotalsResponse, error)
	RemoveLine(ctx context.Context, customerID, contractID, lineID uuid.UUID) (*contractapp.ContractTotalsResponse, error)
	Get(ctx context.Context, customerID, contractID uuid.UUID) (*contractapp.ContractDetailResponse, error)
	List(ctx context.Context, customerID uuid.UUID, f contractapp.ContractListFilter) (*shared.Paginated[contractapp.ContractResponse], error)
}

// PaymentService records contract payments
type PaymentService interface {
	Record(ctx context.Context, customerID uuid.UUID, req contractapp.RecordPaymentRequest) (*contractapp.PaymentResponse, error)
	ListByContract(ctx context.Context, customerID, contractID uuid.UUID) ([]contractapp.PaymentResponse, error)
	Get(ctx context.Context, customerID, paymentID uuid.UUID) (*contractapp.PaymentResponse, error)
}

// ContractHandler handles contract and payment endpoints of a customer
type ContractHandler struct {
	BaseHandler
	contracts ContractService
	payments  PaymentService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contracts ContractService, payments PaymentService) *ContractHandler {
	return &ContractHandler{contracts: contracts, payments: payments}
}

// List godoc
// @ID           listContracts
// @Summary      List contracts
// @Tags         contracts
// @Produce      json
// @Param        customer_id path  string true  "Customer ID" format(uuid)
// @Param        status      query string false "Status filter"
// @Param        order_by    query string false "Order field"
// @Param        order_dir   query string false "asc or desc"
// @Param        page        query int    false "Page"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} APIResponse[[]contractapp.ContractResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var filter contractapp.ContractListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.contracts.List(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Create godoc
// @ID           createContract
// @Summary      Create a contract
// @Description  The contract number is derived from the start date
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        request     body contractapp.CreateContractRequest true "Contract"
// @Success      201 {object} APIResponse[contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req contractapp.CreateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = &userID

	resp, err := h.contracts.Create(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @ID           getContract
// @Summary      Get a contract with its lines and payments
// @Tags         contracts
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        contract_id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[contractapp.ContractDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts/{contract_id} [get]
func (h *ContractHandler) Get(c *gin.Context) {
	customerID, contractID, ok := h.contractPath(c)
	if !ok {
		return
	}
	resp, err := h.contracts.Get(c.Request.Context(), customerID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @ID           updateContract
// @Summary      Update a contract
// @Description  Replaces the service lines and recomputes the totals
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        contract_id path string true "Contract ID" format(uuid)
// @Param        request     body contractapp.UpdateContractRequest true "Contract"
// @Success      200 {object} APIResponse[contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts/{contract_id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
	customerID, contractID, ok := h.contractPath(c)
	if !ok {
		return
	}
	var req contractapp.UpdateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.contracts.Update(c.Request.Context(), customerID, contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteContract
// @Summary      Delete a contract
// @Tags         contracts
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        contract_id path string true "Contract ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts/{contract_id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
	customerID, contractID, ok := h.contractPath(c)
	if !ok {
		return
	}
	if err := h.contracts.Delete(c.Request.Context(), customerID, contractID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangeStatus godoc
// @ID           changeContractStatus
// @Summary      Change the status of a contract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        contract_id path string true "Contract ID" format(uuid)
// @Param        request     body contractapp.ChangeStatusRequest true "Status"
// @Success      200 {object} APIResponse[contractapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts/{contract_id}/status [patch]
func (h *ContractHandler) ChangeStatus(c *gin.Context) {
	customerID, contractID, ok := h.contractPath(c)
	if !ok {
		return
	}
	var req contractapp.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.contracts.ChangeStatus(c.Request.Context(), customerID, contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddLine godoc
// @ID           addContractLine
// @Summary      Add a service line to a contract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        contract_id path string true "Contract ID" format(uuid)
// @Param        request     body contractapp.ContractLineInput true "Line"
// @Success      201 {object} APIResponse[contractapp.ContractTotalsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts/{contract_id}/lines [post]
func (h *ContractHandler) AddLine(c *gin.Context) {
	customerID, contractID, ok := h.contractPath(c)
	if !ok {
		return
	}
	var req contractapp.ContractLineInput
	if !h.bindJSON(c, &req) {
		return
	}
	totals, err := h.contracts.AddLine(c.Request.Context(), customerID, contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, totals)
}

// RemoveLine godoc
// @ID           removeContractLine
// @Summary      Remove a service line from a contract
// @Tags         contracts
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        contract_id path string true "Contract ID" format(uuid)
// @Param        line_id     path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[contractapp.ContractTotalsResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts/{contract_id}/lines/{line_id} [delete]
func (h *ContractHandler) RemoveLine(c *gin.Context) {
	customerID, contractID, ok := h.contractPath(c)
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "line_id", "line")
	if !ok {
		return
	}
	totals, err := h.contracts.RemoveLine(c.Request.Context(), customerID, contractID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// ListPayments godoc
// @ID           listContractPayments
// @Summary      List the payments of a contract
// @Tags         payments
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        contract_id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[[]contractapp.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts/{contract_id}/payments [get]
func (h *ContractHandler) ListPayments(c *gin.Context) {
	customerID, contractID, ok := h.contractPath(c)
	if !ok {
		return
	}
	payments, err := h.payments.ListByContract(c.Request.Context(), customerID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// RecordPayment godoc
// @ID           recordPayment
// @Summary      Record a payment against a contract
// @Description  Updates the total paid and the balance of the contract
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        contract_id path string true "Contract ID" format(uuid)
// @Param        request     body contractapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[contractapp.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/contracts/{contract_id}/payments [post]
func (h *ContractHandler) RecordPayment(c *gin.Context) {
	customerID, contractID, ok := h.contractPath(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	// the path decides the contract; seeded so the body may omit it
	req := contractapp.RecordPaymentRequest{ContractID: contractID}
	if !h.bindJSON(c, &req) {
		return
	}
	req.ContractID = contractID
	req.CreatedBy = &userID

	resp, err := h.payments.Record(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetPayment godoc
// @ID           getPayment
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        payment_id  path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[contractapp.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/payments/{payment_id} [get]
func (h *ContractHandler) GetPayment(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	paymentID, ok := h.uuidParam(c, "payment_id", "payment")
	if !ok {
		return
	}
	resp, err := h.payments.Get(c.Request.Context(), customerID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *ContractHandler) contractPath(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	customerID, ok := h.customerID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	contractID, ok := h.uuidParam(c, "contract_id", "contract")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return customerID, contractID, true
}
