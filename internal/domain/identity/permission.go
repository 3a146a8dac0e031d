package identity

import (
	"sort"
	"strings"

	"github.com/scg/portal/internal/domain/shared"
)

// Permission is a functional permission in resource:action form
type Permission struct {
	Code     string
	Resource string
	Action   string
}

// Permission codes checked by the HTTP layer
const (
	PermCustomerView   = "customer:view"
	PermCustomerManage = "customer:manage"
	PermContractView   = "contract:view"
	PermContractManage = "contract:manage"
	PermPaymentView    = "payment:view"
	PermPaymentCreate  = "payment:create"
	PermCatalogManage  = "catalog:manage"
	PermSignatureView  = "signature:view"
	PermSignatureEdit  = "signature:manage"
	PermUserView       = "user:view"
	PermUserManage     = "user:manage"
	PermReportView     = "report:view"
	PermReportUpload   = "report:upload"
	PermReportDelete   = "report:delete"
	PermFindingUpdate  = "finding:update"
	PermEngagementView = "engagement:view"
	PermEngagementEdit = "engagement:manage"
	PermTimeEntryEdit  = "time_entry:manage"
)

var permissionCatalog = map[string]string{
	PermCustomerView:   "View customers",
	PermCustomerManage: "Create, change and delete customers",
	PermContractView:   "View contracts",
	PermContractManage: "Create, change and delete contracts",
	PermPaymentView:    "View payments",
	PermPaymentCreate:  "Record payments",
	PermCatalogManage:  "Manage services and report types",
	PermSignatureView:  "View scanner signatures",
	PermSignatureEdit:  "Create, change, delete and upload signatures",
	PermUserView:       "View users in the same customer",
	PermUserManage:     "Add and change users in the same customer",
	PermReportView:     "View reports",
	PermReportUpload:   "Upload reports",
	PermReportDelete:   "Delete reports",
	PermFindingUpdate:  "Change finding status",
	PermEngagementView: "View engagements",
	PermEngagementEdit: "Create, change and delete engagements",
	PermTimeEntryEdit:  "Log and change time entries",
}

// DefaultCustomerPermissions are granted to users created in a customer scope
var DefaultCustomerPermissions = []string{
	PermContractView,
	PermPaymentView,
	PermReportView,
	PermFindingUpdate,
	PermEngagementView,
	PermUserView,
}

// ParsePermission validates a code against the catalog
func ParsePermission(code string) (*Permission, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	parts := strings.SplitN(code, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, shared.NewDomainError("INVALID_PERMISSION_CODE", "Permission code must be in format 'resource:action'")
	}
	if _, ok := permissionCatalog[code]; !ok {
		return nil, shared.NewDomainError("UNKNOWN_PERMISSION", "Unknown permission: "+code)
	}
	return &Permission{Code: code, Resource: parts[0], Action: parts[1]}, nil
}

// AllPermissionCodes returns every known permission, sorted
func AllPermissionCodes() []string {
	codes := make([]string, 0, len(permissionCatalog))
	for c := range permissionCatalog {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// PermissionDescription returns the human description of a code
func PermissionDescription(code string) string {
	return permissionCatalog[code]
}
