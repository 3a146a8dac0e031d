package router

import (
	"github.com/gin-gonic/gin"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/interfaces/http/handler"
	"github.com/scg/portal/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers served under /api/v1
type Handlers struct {
	Auth       *handler.AuthHandler
	Customer   *handler.CustomerHandler
	Catalog    *handler.CatalogHandler
	Contract   *handler.ContractHandler
	User       *handler.UserHandler
	Signature  *handler.SignatureHandler
	Report     *handler.ReportHandler
	Engagement *handler.EngagementHandler
}

// API builds the portal route table.
// Authenticate is required; AuthLimit may be nil.
type API struct {
	Handlers     Handlers
	Authenticate gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
}

// Groups returns the route groups in registration order
func (a API) Groups() []*DomainGroup {
	return []*DomainGroup{
		a.publicAuth(),
		a.session(),
		a.customers(),
		a.catalog(),
		a.signatures(),
		a.customerScope(),
	}
}

// Register adds every group to r
func (a API) Register(r *Router) *Router {
	for _, g := range a.Groups() {
		r.Register(g)
	}
	return r
}

func (a API) publicAuth() *DomainGroup {
	h := a.Handlers.Auth
	g := NewDomainGroup("auth", "/auth")
	if a.AuthLimit != nil {
		g.Use(a.AuthLimit)
	}
	return g.POST("/login", h.Login).
		POST("/refresh", h.Refresh).
		POST("/password-reset", h.RequestPasswordReset).
		POST("/password-reset/confirm", h.ConfirmPasswordReset)
}

func (a API) session() *DomainGroup {
	h := a.Handlers.Auth
	return NewDomainGroup("session", "/auth").
		Use(a.Authenticate).
		POST("/logout", h.Logout).
		GET("/me", h.Me).
		PUT("/me", h.UpdateProfile)
}

func (a API) customers() *DomainGroup {
	h := a.Handlers.Customer
	staff := middleware.RequireStaff()
	return NewDomainGroup("customers", "/customers").
		Use(a.Authenticate).
		GET("", staff, h.List).
		POST("", staff, h.Create).
		GET("/selectable", h.Selectable)
}

func (a API) catalog() *DomainGroup {
	h := a.Handlers.Catalog
	g := NewDomainGroup("catalog", "/catalog").Use(a.Authenticate, middleware.RequireStaff())

	g.Group("services", "/services").
		GET("", h.ListServices).
		POST("", h.CreateService).
		GET("/:id", h.GetService).
		PUT("/:id", h.UpdateService).
		DELETE("/:id", h.DeleteService).
		POST("/:id/activate", h.ActivateService).
		POST("/:id/deactivate", h.DeactivateService)

	g.Group("report-types", "/report-types").
		GET("", h.ListReportTypes).
		POST("", h.CreateReportType).
		GET("/:id", h.GetReportType).
		PUT("/:id", h.UpdateReportType).
		DELETE("/:id", h.DeleteReportType)
	return g
}

func (a API) signatures() *DomainGroup {
	h := a.Handlers.Signature
	return NewDomainGroup("signatures", "/signatures/:scanner_type").
		Use(a.Authenticate, middleware.RequireStaff()).
		GET("", h.List).
		POST("", h.Create).
		POST("/upload", h.Upload).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

// customerScope holds everything addressed under /customers/:customer_id
func (a API) customerScope() *DomainGroup {
	perm := middleware.RequirePermission
	staff := middleware.RequireStaff()

	customer := a.Handlers.Customer
	g := NewDomainGroup("customer", "/customers/:"+middleware.CustomerIDParam).
		Use(a.Authenticate, middleware.CustomerAccess()).
		GET("", customer.Get).
		PUT("", staff, customer.Update).
		DELETE("", staff, customer.Delete)

	contracts := a.Handlers.Contract
	g.Group("contracts", "/contracts").
		GET("", perm(identity.PermContractView), contracts.List).
		POST("", perm(identity.PermContractManage), contracts.Create).
		GET("/:contract_id", perm(identity.PermContractView), contracts.Get).
		PUT("/:contract_id", perm(identity.PermContractManage), contracts.Update).
		DELETE("/:contract_id", perm(identity.PermContractManage), contracts.Delete).
		PATCH("/:contract_id/status", perm(identity.PermContractManage), contracts.ChangeStatus).
		POST("/:contract_id/lines", perm(identity.PermContractManage), contracts.AddLine).
		DELETE("/:contract_id/lines/:line_id", perm(identity.PermContractManage), contracts.RemoveLine).
		GET("/:contract_id/payments", perm(identity.PermPaymentView), contracts.ListPayments).
		POST("/:contract_id/payments", perm(identity.PermPaymentCreate), contracts.RecordPayment)
	g.GET("/payments/:payment_id", perm(identity.PermPaymentView), contracts.GetPayment)

	users := a.Handlers.User
	g.Group("users", "/users").
		GET("", perm(identity.PermUserView), users.List).
		POST("", perm(identity.PermUserManage), users.Create).
		GET("/:user_id", perm(identity.PermUserView), users.Get).
		PUT("/:user_id", perm(identity.PermUserManage), users.Update).
		DELETE("/:user_id", perm(identity.PermUserManage), users.Delete).
		POST("/:user_id/activate", perm(identity.PermUserManage), users.Activate).
		POST("/:user_id/deactivate", perm(identity.PermUserManage), users.Deactivate).
		POST("/:user_id/reset-password", perm(identity.PermUserManage), users.SendResetLink)

	reports := a.Handlers.Report
	g.Group("reports", "/reports").
		GET("", perm(identity.PermReportView), reports.Selection).
		GET("/:service_id", perm(identity.PermReportView), reports.List).
		POST("/:service_id", perm(identity.PermReportUpload), reports.Upload).
		GET("/:service_id/:report_id", perm(identity.PermReportView), reports.Detail).
		DELETE("/:service_id/:report_id", perm(identity.PermReportDelete), reports.Delete).
		GET("/:service_id/:report_id/status-summary", perm(identity.PermReportView), reports.StatusSummary).
		POST("/:service_id/:report_id/bulk-status", perm(identity.PermFindingUpdate), reports.BulkStatus).
		GET("/:service_id/:report_id/export", perm(identity.PermReportView), reports.Export)

	engagements := a.Handlers.Engagement
	g.Group("engagements", "/engagements").
		GET("/options", perm(identity.PermEngagementEdit), engagements.Options).
		GET("", perm(identity.PermEngagementView), engagements.List).
		POST("", perm(identity.PermEngagementEdit), engagements.Create).
		GET("/:engagement_id", perm(identity.PermEngagementView), engagements.Get).
		PUT("/:engagement_id", perm(identity.PermEngagementEdit), engagements.Update).
		PATCH("/:engagement_id/status", perm(identity.PermEngagementEdit), engagements.ChangeStatus).
		DELETE("/:engagement_id", perm(identity.PermEngagementEdit), engagements.Delete).
		POST("/:engagement_id/time-entries", perm(identity.PermTimeEntryEdit), engagements.AddTimeEntry)
	g.Group("time-entries", "/time-entries").
		PUT("/:entry_id", perm(identity.PermTimeEntryEdit), engagements.UpdateTimeEntry).
		DELETE("/:entry_id", perm(identity.PermTimeEntryEdit), engagements.DeleteTimeEntry)

	return g
}
