//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/scg/portal/internal/application/catalog"
	contractapp "github.com/scg/portal/internal/application/contract"
	customerapp "github.com/scg/portal/internal/application/customer"
	engagementapp "github.com/scg/portal/internal/application/engagement"
	identityapp "github.com/scg/portal/internal/application/identity"
	reportapp "github.com/scg/portal/internal/application/report"
	signatureapp "github.com/scg/portal/internal/application/signature"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/infrastructure/auth"
	"github.com/scg/portal/internal/infrastructure/cache"
	"github.com/scg/portal/internal/infrastructure/config"
	"github.com/scg/portal/internal/infrastructure/event"
	"github.com/scg/portal/internal/infrastructure/notification"
	"github.com/scg/portal/internal/infrastructure/persistence"
	"github.com/scg/portal/internal/interfaces/http/handler"
	"github.com/scg/portal/internal/interfaces/http/middleware"
	"github.com/scg/portal/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	frontendURL   = "https://portal.test"
	adminEmail    = "admin@scg.test"
	adminPassword = "Granite-Lantern-Orbit-42"
)

// recordingMailer keeps sent messages instead of delivering them
type recordingMailer struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notification.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// lastResetToken extracts the token from the newest account mail
func (m *recordingMailer) lastResetToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no account mail was sent")

	body := m.sent[len(m.sent)-1].Text
	i := strings.Index(body, frontendURL)
	require.GreaterOrEqual(t, i, 0, "mail has no reset link")
	link := body[i:]
	if end := strings.IndexAny(link, " \n\r"); end >= 0 {
		link = link[:end]
	}
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

// TestServer is the full portal API on a test database
type TestServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Mailer *recordingMailer
	Users  *persistence.GormUserRepository
}

// NewTestServer wires the API the way cmd/server does, with in-memory
// token stores instead of Redis and a recording mailer.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	tdb := NewTestDB(t)
	db := tdb.DB
	log := zap.NewNop()
	middleware.SetupValidator()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-key-with-32-chars!!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "scg-portal-test",
		MaxRefreshCount:        10,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	resetTokens := cache.NewInMemoryResetTokenStore()
	policy := identityapp.PasswordPolicyFromConfig(config.SecurityConfig{})

	customerRepo := persistence.NewGormCustomerRepository(db)
	serviceRepo := persistence.NewGormServiceRepository(db)
	reportTypeRepo := persistence.NewGormReportTypeRepository(db)
	contractRepo := persistence.NewGormContractRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	nessusRepo := persistence.NewGormNessusSignatureRepository(db)
	burpRepo := persistence.NewGormBurpSuiteSignatureRepository(db)
	reportRepo := persistence.NewGormReportRepository(db).WithFindingBatchSize(2)
	engagementRepo := persistence.NewGormEngagementRepository(db)

	bus := event.NewInMemoryEventBus(log)
	mailer := &recordingMailer{}

	contracts := contractapp.NewContractService(contractRepo, paymentRepo, serviceRepo, customerRepo, bus, log)
	resets := identityapp.NewPasswordResetService(userRepo, resetTokens, bus, policy, time.Hour, log)
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(identityapp.NewAuthService(userRepo, jwtService, blacklist, policy, log), resets),
		Customer: handler.NewCustomerHandler(customerapp.NewCustomerService(customerRepo, bus, log)),
		Catalog: handler.NewCatalogHandler(
			catalogapp.NewServiceCatalogService(serviceRepo, reportTypeRepo, bus, log),
			catalogapp.NewReportTypeService(reportTypeRepo, log)),
		Contract: handler.NewContractHandler(contracts,
			contractapp.NewPaymentService(paymentRepo, contractRepo, persistence.NewGormTransactionScope(db), bus, log)),
		User: handler.NewUserHandler(identityapp.NewUserService(userRepo, customerRepo, resets, blacklist,
			15*time.Minute, bus, log)),
		Signature: handler.NewSignatureHandler(signatureapp.NewSignatureService(nessusRepo, burpRepo, log)),
		Report: handler.NewReportHandler(
			reportapp.NewReportService(reportRepo, contractRepo, serviceRepo, nessusRepo, burpRepo, userRepo, bus, log,
				reportapp.WithTransactionScope(persistence.NewGormReportTransactionScope(db, 2))),
			engagementapp.NewSupportReportService(engagementRepo, contractRepo),
			10<<20),
		Engagement: handler.NewEngagementHandler(engagementapp.NewEngagementService(engagementRepo, contractRepo, serviceRepo, log)),
	}

	bus.Subscribe(contractapp.NewServicePriceChangedHandler(contractRepo, contracts, log))
	bus.Subscribe(notification.NewAccountMailHandler(mailer, frontendURL, log))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.API{
		Handlers: handlers,
		Authenticate: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
	}.Register(router.NewRouter(engine)).Setup()

	admin, err := identity.NewSuperuser(adminEmail, adminPassword, policy)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(context.Background(), admin))

	return &TestServer{DB: tdb, Engine: engine, Mailer: mailer, Users: userRepo}
}

// envelope is the portal's response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

// Response is a recorded API response
type Response struct {
	Code int
	Body envelope
}

// Decode unmarshals the data member into v
func (r Response) Decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Data, v))
}

// ErrorCode returns the error code, or "" for success
func (r Response) ErrorCode() string {
	if r.Body.Error == nil {
		return ""
	}
	return r.Body.Error.Code
}

// Do sends a JSON request under /api/v1 with an optional bearer token
func (s *TestServer) Do(t *testing.T, method, path, token string, body any) Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(t, req, token)
}

// Upload posts a multipart report upload
func (s *TestServer) Upload(t *testing.T, path, token string, fields map[string]string, filename string, file []byte) Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.serve(t, req, token)
}

func (s *TestServer) serve(t *testing.T, req *http.Request, token string) Response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	resp := Response{Code: rec.Code}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp.Body), rec.Body.String())
	}
	return resp
}

// Login returns an access token for the credentials
func (s *TestServer) Login(t *testing.T, email, password string) string {
	t.Helper()
	resp := s.Do(t, http.MethodPost, "/auth/login", "", identityapp.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.Code, resp.ErrorCode())
	var login identityapp.LoginResponse
	resp.Decode(t, &login)
	return login.AccessToken
}

// idOf decodes the id member of the response data
func idOf(t *testing.T, resp Response) uuid.UUID {
	t.Helper()
	var v struct {
		ID uuid.UUID `json:"id"`
	}
	resp.Decode(t, &v)
	require.NotEqual(t, uuid.Nil, v.ID)
	return v.ID
}
