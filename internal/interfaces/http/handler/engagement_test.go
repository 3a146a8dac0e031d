package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	engagementapp "github.com/scg/portal/internal/application/engagement"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/auth"
	"github.com/scg/portal/internal/interfaces/http/dto"
	"github.com/scg/portal/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockEngagementService struct {
	mock.Mock
}

func (m *MockEngagementService) result(args mock.Arguments) (*engagementapp.EngagementResponse, error) {
	resp, _ := args.Get(0).(*engagementapp.EngagementResponse)
	return resp, args.Error(1)
}

func (m *MockEngagementService) entry(args mock.Arguments) (*engagementapp.TimeEntryResult, error) {
	resp, _ := args.Get(0).(*engagementapp.TimeEntryResult)
	return resp, args.Error(1)
}

func (m *MockEngagementService) CreateOptions(ctx context.Context, customerID uuid.UUID) ([]engagementapp.ContractOption, error) {
	args := m.Called(ctx, customerID)
	out, _ := args.Get(0).([]engagementapp.ContractOption)
	return out, args.Error(1)
}

func (m *MockEngagementService) List(ctx context.Context, customerID uuid.UUID, filter engagementapp.EngagementListFilter) ([]engagementapp.EngagementResponse, int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]engagementapp.EngagementResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockEngagementService) Create(ctx context.Context, customerID, userID uuid.UUID, req engagementapp.CreateEngagementRequest) (*engagementapp.EngagementResponse, error) {
	return m.result(m.Called(ctx, customerID, userID, req))
}

func (m *MockEngagementService) Get(ctx context.Context, customerID, id uuid.UUID) (*engagementapp.EngagementDetailResponse, error) {
	args := m.Called(ctx, customerID, id)
	resp, _ := args.Get(0).(*engagementapp.EngagementDetailResponse)
	return resp, args.Error(1)
}

func (m *MockEngagementService) Update(ctx context.Context, customerID, id uuid.UUID, req engagementapp.UpdateEngagementRequest) (*engagementapp.EngagementResponse, error) {
	return m.result(m.Called(ctx, customerID, id, req))
}

func (m *MockEngagementService) ChangeStatus(ctx context.Context, customerID, id uuid.UUID, req engagementapp.ChangeStatusRequest) (*engagementapp.EngagementResponse, error) {
	return m.result(m.Called(ctx, customerID, id, req))
}

func (m *MockEngagementService) Delete(ctx context.Context, customerID, id uuid.UUID) error {
	return m.Called(ctx, customerID, id).Error(0)
}

func (m *MockEngagementService) AddTimeEntry(ctx context.Context, customerID, engagementID, userID uuid.UUID, req engagementapp.TimeEntryRequest) (*engagementapp.TimeEntryResult, error) {
	return m.entry(m.Called(ctx, customerID, engagementID, userID, req))
}

func (m *MockEngagementService) UpdateTimeEntry(ctx context.Context, customerID, entryID uuid.UUID, req engagementapp.TimeEntryRequest) (*engagementapp.TimeEntryResult, error) {
	return m.entry(m.Called(ctx, customerID, entryID, req))
}

func (m *MockEngagementService) DeleteTimeEntry(ctx context.Context, customerID, entryID uuid.UUID) error {
	return m.Called(ctx, customerID, entryID).Error(0)
}

func engagementRouter(svc *MockEngagementService, claims *auth.Claims) *gin.Engine {
	h := NewEngagementHandler(svc)
	r := gin.New()
	r.Use(authAs(claims))
	scoped := r.Group("/customers/:customer_id", middleware.CustomerAccess())
	g := scoped.Group("/engagements")
	g.GET("/options", h.Options)
	g.GET("", h.List)
	g.POST("", middleware.RequirePermission(identity.PermEngagementEdit), h.Create)
	g.GET("/:engagement_id", h.Get)
	g.PUT("/:engagement_id", h.Update)
	g.PATCH("/:engagement_id/status", h.ChangeStatus)
	g.DELETE("/:engagement_id", h.Delete)
	g.POST("/:engagement_id/time-entries", h.AddTimeEntry)
	scoped.PUT("/time-entries/:entry_id", h.UpdateTimeEntry)
	scoped.DELETE("/time-entries/:entry_id", h.DeleteTimeEntry)
	return r
}

func TestEngagementHandler_Options_None(t *testing.T) {
	customerID := uuid.New()
	svc := new(MockEngagementService)
	svc.On("CreateOptions", mock.Anything, customerID).
		Return(nil, shared.NewDomainError("NOT_FOUND", "No active contracts found for this customer"))

	w := performRequest(engagementRouter(svc, staffClaims()), http.MethodGet, "/customers/"+customerID.String()+"/engagements/options", nil)

	assertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestEngagementHandler_Create(t *testing.T) {
	customerID, lineID := uuid.New(), uuid.New()
	claims := memberClaims(customerID, identity.PermEngagementEdit)
	svc := new(MockEngagementService)
	req := engagementapp.CreateEngagementRequest{ContractServiceID: lineID, Name: "VPN outage", ClientDescription: "Cannot connect"}
	svc.On("Create", mock.Anything, customerID, uuid.MustParse(claims.UserID), req).
		Return(&engagementapp.EngagementResponse{EngagementNumber: "EFF-0001", Status: engagement.StatusOpen}, nil)

	w := performRequest(engagementRouter(svc, claims), http.MethodPost, "/customers/"+customerID.String()+"/engagements", req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "EFF-0001", decodeData[engagementapp.EngagementResponse](t, w).EngagementNumber)
}

func TestEngagementHandler_Create_InactiveContract(t *testing.T) {
	customerID := uuid.New()
	svc := new(MockEngagementService)
	svc.On("Create", mock.Anything, customerID, mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("CONTRACT_NOT_ACTIVE", "Engagements can only be created for active contracts."))

	w := performRequest(engagementRouter(svc, staffClaims()), http.MethodPost, "/customers/"+customerID.String()+"/engagements",
		map[string]any{"contract_service_id": uuid.NewString(), "name": "x", "client_description": "y"})

	assertError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeBusinessRule)
}

func TestEngagementHandler_List(t *testing.T) {
	customerID := uuid.New()
	svc := new(MockEngagementService)
	filter := engagementapp.EngagementListFilter{Status: "OPEN", Priority: "HIGH"}
	svc.On("List", mock.Anything, customerID, filter).Return([]engagementapp.EngagementResponse{{Name: "VPN outage"}}, int64(1), nil)
	router := engagementRouter(svc, staffClaims())

	w := performRequest(router, http.MethodGet, "/customers/"+customerID.String()+"/engagements?status=OPEN&priority=HIGH", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(router, http.MethodGet, "/customers/"+customerID.String()+"/engagements?priority=CRITICAL", nil)
	assertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestEngagementHandler_AddTimeEntry_Overrun(t *testing.T) {
	customerID, engagementID := uuid.New(), uuid.New()
	claims := staffClaims()
	svc := new(MockEngagementService)
	warning := "This entry will exceed the contracted hours. Contracted: 10h, Total used: 11.5h, This entry: 2h"
	svc.On("AddTimeEntry", mock.Anything, customerID, engagementID, uuid.MustParse(claims.UserID), mock.MatchedBy(func(req engagementapp.TimeEntryRequest) bool {
		return req.HoursSpent.Equal(decimal.NewFromInt(2)) && req.Date == ""
	})).Return(&engagementapp.TimeEntryResult{
		Entry:   engagementapp.TimeEntryResponse{EngagementID: engagementID, HoursSpent: decimal.NewFromInt(2)},
		Warning: warning,
	}, nil)

	w := performRequest(engagementRouter(svc, claims), http.MethodPost,
		"/customers/"+customerID.String()+"/engagements/"+engagementID.String()+"/time-entries",
		map[string]any{"client_comment": "Reset tunnel", "hours_spent": "2"})

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, warning, decodeData[engagementapp.TimeEntryResult](t, w).Warning)
}

func TestEngagementHandler_TimeEntryUpdateAndDelete(t *testing.T) {
	customerID, entryID := uuid.New(), uuid.New()
	svc := new(MockEngagementService)
	svc.On("UpdateTimeEntry", mock.Anything, customerID, entryID, mock.Anything).
		Return(nil, shared.NewDomainError("INVALID_HOURS", "Hours must be in increments of 0.5"))
	svc.On("DeleteTimeEntry", mock.Anything, customerID, entryID).Return(nil)
	router := engagementRouter(svc, staffClaims())
	path := "/customers/" + customerID.String() + "/time-entries/" + entryID.String()

	w := performRequest(router, http.MethodPut, path, map[string]any{"client_comment": "x", "hours_spent": "0.3"})
	assertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)

	w = performRequest(router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEngagementHandler_GetAndStatus(t *testing.T) {
	customerID, id := uuid.New(), uuid.New()
	svc := new(MockEngagementService)
	svc.On("Get", mock.Anything, customerID, id).Return(&engagementapp.EngagementDetailResponse{
		Engagement: engagementapp.EngagementResponse{ID: id},
	}, nil)
	svc.On("ChangeStatus", mock.Anything, customerID, id, engagementapp.ChangeStatusRequest{Status: "RESOLVED"}).
		Return(&engagementapp.EngagementResponse{ID: id, Status: engagement.StatusResolved}, nil)
	router := engagementRouter(svc, staffClaims())
	path := "/customers/" + customerID.String() + "/engagements/" + id.String()

	w := performRequest(router, http.MethodGet, path, nil)
	assert.Equal(t, id, decodeData[engagementapp.EngagementDetailResponse](t, w).Engagement.ID)

	w = performRequest(router, http.MethodPatch, path+"/status", map[string]string{"status": "RESOLVED"})
	assert.Equal(t, engagement.StatusResolved, decodeData[engagementapp.EngagementResponse](t, w).Status)

	w = performRequest(router, http.MethodPatch, path+"/status", map[string]string{"status": "DONE"})
	assertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}
