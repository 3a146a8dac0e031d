package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// likePattern builds a case-insensitive LIKE pattern; callers compare against LOWER(column)
func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.ToLower(strings.TrimSpace(search)))
	return "%" + escaped + "%"
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"type":       true,
}

// ServiceSortFields contains allowed sort fields for services
var ServiceSortFields = map[string]bool{
	"created_at":   true,
	"service_code": true,
	"name":         true,
	"price":        true,
}

// ReportTypeSortFields contains allowed sort fields for report types
var ReportTypeSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
}

// ContractSortFields contains allowed sort fields for contracts
var ContractSortFields = map[string]bool{
	"created_at":      true,
	"contract_number": true,
	"start_date":      true,
	"end_date":        true,
	"status":          true,
	"total":           true,
	"balance":         true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"created_at":    true,
	"email":         true,
	"first_name":    true,
	"last_name":     true,
	"last_login_at": true,
}

// SignatureSortFields contains allowed sort fields for scanner signatures
var SignatureSortFields = map[string]bool{
	"id":          true,
	"name":        true,
	"last_update": true,
}

// NessusSignatureSortFields adds the risk factor to the signature fields
var NessusSignatureSortFields = map[string]bool{
	"id":          true,
	"name":        true,
	"last_update": true,
	"risk_factor": true,
}

// ReportSortFields contains allowed sort fields for reports
var ReportSortFields = map[string]bool{
	"created_at": true,
	"date":       true,
	"name":       true,
}

// EngagementSortFields contains allowed sort fields for engagements
var EngagementSortFields = map[string]bool{
	"created_at":        true,
	"engagement_number": true,
	"name":              true,
	"status":            true,
	"priority":          true,
}
