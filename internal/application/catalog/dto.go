package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateServiceRequest represents a request to add a service to the catalog
type CreateServiceRequest struct {
	ServiceCode  string          `json:"service_code" binding:"required,min=1,max=50"`
	Name         string          `json:"name" binding:"required,min=1,max=100"`
	Description  string          `json:"description" binding:"max=2000"`
	Price        decimal.Decimal `json:"price" binding:"required"`
	ReportTypeID *uuid.UUID      `json:"report_type_id"`
}

// UpdateServiceRequest represents a request to update a service.
// A nil ServiceCode keeps the current code.
type UpdateServiceRequest struct {
	ServiceCode  *string         `json:"service_code" binding:"omitempty,min=1,max=50"`
	Name         string          `json:"name" binding:"required,min=1,max=100"`
	Description  string          `json:"description" binding:"max=2000"`
	Price        decimal.Decimal `json:"price" binding:"required"`
	ReportTypeID *uuid.UUID      `json:"report_type_id"`
}

// ServiceListFilter represents filter options for the service list
type ServiceListFilter struct {
	Search       string `form:"search"`
	IsActive     *bool  `form:"is_active"`
	ReportTypeID string `form:"report_type_id" binding:"omitempty,uuid"`
	OrderBy      string `form:"order_by" binding:"omitempty,oneof=service_code name price created_at"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ServiceResponse represents a service in API responses
type ServiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	ServiceCode    string          `json:"service_code"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	IsActive       bool            `json:"is_active"`
	ReportTypeID   *uuid.UUID      `json:"report_type_id"`
	ReportTypeName string          `json:"report_type_name,omitempty"`
	ReportKind     string          `json:"report_kind"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToServiceResponse converts a domain service to a response
func ToServiceResponse(s *catalog.Service) ServiceResponse {
	resp := ServiceResponse{
		ID:           s.ID,
		ServiceCode:  s.ServiceCode,
		Name:         s.Name,
		Description:  s.Description,
		Price:        s.Price,
		IsActive:     s.IsActive,
		ReportTypeID: s.ReportTypeID,
		ReportKind:   string(s.ReportKind()),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.ReportType != nil {
		resp.ReportTypeName = s.ReportType.Name
	}
	return resp
}

// ToServiceResponses converts a slice of services
func ToServiceResponses(services []catalog.Service) []ServiceResponse {
	out := make([]ServiceResponse, len(services))
	for i := range services {
		out[i] = ToServiceResponse(&services[i])
	}
	return out
}

// CreateReportTypeRequest represents a request to create a report type
type CreateReportTypeRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateReportTypeRequest represents a request to update a report type
type UpdateReportTypeRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
	IsActive    *bool  `json:"is_active"`
}

// ReportTypeResponse represents a report type in API responses
type ReportTypeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	Kind        string    `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToReportTypeResponse converts a domain report type to a response
func ToReportTypeResponse(rt *catalog.ReportType) ReportTypeResponse {
	return ReportTypeResponse{
		ID:          rt.ID,
		Name:        rt.Name,
		Description: rt.Description,
		IsActive:    rt.IsActive,
		Kind:        string(rt.Kind()),
		CreatedAt:   rt.CreatedAt,
	}
}

// ToReportTypeResponses converts a slice of report types
func ToReportTypeResponses(types []catalog.ReportType) []ReportTypeResponse {
	out := make([]ReportTypeResponse, len(types))
	for i := range types {
		out[i] = ToReportTypeResponse(&types[i])
	}
	return out
}
