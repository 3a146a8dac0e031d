package handler

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	signatureapp "github.com/scg/portal/internal/application/signature"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/domain/signature"
	"github.com/scg/portal/internal/interfaces/http/dto"
)

const signaturePageSize = 50

// SignatureService manages the Nessus and Burp Suite signature catalogs
type SignatureService interface {
	List(ctx context.Context, scanner signature.ScannerType, filter signatureapp.SignatureListFilter) ([]signatureapp.SignatureResponse, int64, error)
	Get(ctx context.Context, scanner signature.ScannerType, id int) (*signatureapp.SignatureResponse, error)
	Create(ctx context.Context, scanner signature.ScannerType, req signatureapp.SignatureRequest) (*signatureapp.SignatureResponse, error)
	Update(ctx context.Context, scanner signature.ScannerType, id int, req signatureapp.SignatureRequest) (*signatureapp.SignatureResponse, error)
	Delete(ctx context.Context, scanner signature.ScannerType, id int) error
	Upload(ctx context.Context, scanner signature.ScannerType, entries []json.RawMessage) (signature.UploadResult, error)
}

// SignatureHandler serves /signatures/{scanner_type}
type SignatureHandler struct {
	BaseHandler
	signatures SignatureService
}

// NewSignatureHandler creates a new SignatureHandler
func NewSignatureHandler(signatures SignatureService) *SignatureHandler {
	return &SignatureHandler{signatures: signatures}
}

// List godoc
// @ID           listSignatures
// @Summary      List signatures of a scanner
// @Tags         signatures
// @Produce      json
// @Param        scanner_type path  string true  "nessus or burpsuite"
// @Param        search       query string false "Search on name and description"
// @Param        id           query int    false "Exact signature ID"
// @Param        risk_factor  query string false "Nessus risk factor"
// @Param        page         query int    false "Page"
// @Param        page_size    query int    false "Page size"
// @Success      200 {object} APIResponse[[]signatureapp.SignatureResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /signatures/{scanner_type} [get]
func (h *SignatureHandler) List(c *gin.Context) {
	scanner, ok := h.scanner(c, signature.ViewList)
	if !ok {
		return
	}
	var filter signatureapp.SignatureListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.signatures.List(c.Request.Context(), scanner, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := dto.DefaultPage(filter.Page, filter.PageSize, signaturePageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Get godoc
// @ID           getSignature
// @Summary      Get a signature
// @Tags         signatures
// @Produce      json
// @Param        scanner_type path string true "nessus or burpsuite"
// @Param        id           path int    true "Signature ID"
// @Success      200 {object} APIResponse[signatureapp.SignatureResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /signatures/{scanner_type}/{id} [get]
func (h *SignatureHandler) Get(c *gin.Context) {
	scanner, id, ok := h.signaturePath(c, signature.ViewDetail)
	if !ok {
		return
	}
	sig, err := h.signatures.Get(c.Request.Context(), scanner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sig)
}

// Create godoc
// @ID           createSignature
// @Summary      Create a signature
// @Tags         signatures
// @Accept       json
// @Produce      json
// @Param        scanner_type path string true "nessus or burpsuite"
// @Param        request      body signatureapp.SignatureRequest true "Signature"
// @Success      201 {object} APIResponse[signatureapp.SignatureResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /signatures/{scanner_type} [post]
func (h *SignatureHandler) Create(c *gin.Context) {
	scanner, ok := h.scanner(c, signature.ViewCreate)
	if !ok {
		return
	}
	var req signatureapp.SignatureRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sig, err := h.signatures.Create(c.Request.Context(), scanner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sig)
}

// Update godoc
// @ID           updateSignature
// @Summary      Update a signature
// @Tags         signatures
// @Accept       json
// @Produce      json
// @Param        scanner_type path string true "nessus or burpsuite"
// @Param        id           path int    true "Signature ID"
// @Param        request      body signatureapp.SignatureRequest true "Signature"
// @Success      200 {object} APIResponse[signatureapp.SignatureResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /signatures/{scanner_type}/{id} [put]
func (h *SignatureHandler) Update(c *gin.Context) {
	scanner, id, ok := h.signaturePath(c, signature.ViewUpdate)
	if !ok {
		return
	}
	var req signatureapp.SignatureRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sig, err := h.signatures.Update(c.Request.Context(), scanner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sig)
}

// Delete godoc
// @ID           deleteSignature
// @Summary      Delete a signature
// @Tags         signatures
// @Param        scanner_type path string true "nessus or burpsuite"
// @Param        id           path int    true "Signature ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /signatures/{scanner_type}/{id} [delete]
func (h *SignatureHandler) Delete(c *gin.Context) {
	scanner, id, ok := h.signaturePath(c, signature.ViewDelete)
	if !ok {
		return
	}
	if err := h.signatures.Delete(c.Request.Context(), scanner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Upload godoc
// @ID           uploadSignatures
// @Summary      Bulk upsert signatures
// @Description  The body is a JSON array in the scanner's export format. Malformed entries are counted as errors.
// @Tags         signatures
// @Accept       json
// @Produce      json
// @Param        scanner_type path string true "nessus or burpsuite"
// @Param        request      body []object true "Signature entries"
// @Success      200 {object} APIResponse[signature.UploadResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /signatures/{scanner_type}/upload [post]
func (h *SignatureHandler) Upload(c *gin.Context) {
	scanner, ok := h.scanner(c, signature.ViewUpload)
	if !ok {
		return
	}
	var entries []json.RawMessage
	if err := json.NewDecoder(c.Request.Body).Decode(&entries); err != nil {
		h.HandleError(c, shared.NewDomainError("INVALID_JSON", "Invalid JSON file."))
		return
	}

	result, err := h.signatures.Upload(c.Request.Context(), scanner, entries)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *SignatureHandler) scanner(c *gin.Context, view signature.View) (signature.ScannerType, bool) {
	scanner, err := signature.ParseScannerView(c.Param("scanner_type"), view)
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return scanner, true
}

func (h *SignatureHandler) signaturePath(c *gin.Context, view signature.View) (signature.ScannerType, int, bool) {
	scanner, ok := h.scanner(c, view)
	if !ok {
		return "", 0, false
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.BadRequest(c, "Signature ID must be a positive integer.")
		return "", 0, false
	}
	return scanner, id, true
}
