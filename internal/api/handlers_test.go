package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/invest-tracker/internal/auth"
	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/models"
	"github.com/invest-tracker/internal/service"
	"github.com/invest-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock services with overridable behavior per test

type mockAuthService struct {
	registerFunc func(ctx context.Context, input service.RegisterInput) (*models.User, error)
	loginFunc    func(ctx context.Context, email, password string) (*models.User, string, error)
}

func (m *mockAuthService) Register(ctx context.Context, input service.RegisterInput) (*models.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, input)
	}
	return &models.User{ID: "user-1", Email: input.Email}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return &models.User{ID: "user-1", Email: email}, "token", nil
}

func (m *mockAuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, Email: "alice@example.com"}, nil
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID string, input service.ProfileInput) (*models.User, error) {
	return &models.User{ID: userID, Email: "alice@example.com", Name: input.Name}, nil
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	return nil
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error { return nil }

func (m *mockAuthService) ResetPassword(ctx context.Context, token, next string) error { return nil }

type mockOperationService struct {
	createFunc func(ctx context.Context, ownerID string, input service.OperationInput) (*models.Operation, error)
	deleteFunc func(ctx context.Context, ownerID, id string) error
	deleted    []string
}

func (m *mockOperationService) Create(ctx context.Context, ownerID string, input service.OperationInput) (*models.Operation, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, ownerID, input)
	}
	return &models.Operation{ID: "op-1", UserID: ownerID, Asset: input.Asset}, nil
}

func (m *mockOperationService) List(ctx context.Context, ownerID string) ([]*models.Operation, error) {
	return []*models.Operation{}, nil
}

func (m *mockOperationService) Get(ctx context.Context, ownerID, id string) (*models.Operation, error) {
	return &models.Operation{ID: id, UserID: ownerID}, nil
}

func (m *mockOperationService) Update(ctx context.Context, ownerID, id string, input service.OperationInput) (*models.Operation, error) {
	return &models.Operation{ID: id, UserID: ownerID}, nil
}

func (m *mockOperationService) Delete(ctx context.Context, ownerID, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ownerID, id)
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockPortfolioService struct{}

func (m *mockPortfolioService) DetailedPortfolio(ctx context.Context, ownerID string) ([]models.EnrichedPosition, *models.PortfolioSummary, error) {
	return []models.EnrichedPosition{}, &models.PortfolioSummary{}, nil
}

func (m *mockPortfolioService) DashboardSummary(ctx context.Context, ownerID string) (*models.PortfolioSummary, error) {
	return &models.PortfolioSummary{TotalInvested: 1000, CurrentValue: 1100, ResultValue: 100, ResultPercent: 10, PositionCount: 1}, nil
}

type mockQuoteService struct {
	searchErr error
}

func (m *mockQuoteService) GetQuotes(ctx context.Context, symbols []string) []models.Quote {
	quotes := make([]models.Quote, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		quotes = append(quotes, models.Quote{Symbol: s, Price: 10})
	}
	return quotes
}

func (m *mockQuoteService) GetChart(ctx context.Context, symbol string) *models.ChartSeries {
	return &models.ChartSeries{Symbol: strings.ToUpper(symbol), Bars: []models.ChartBar{}}
}

func (m *mockQuoteService) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return []models.SearchResult{{Symbol: "PETR4", Name: "Petrobras"}}, nil
}

type mockReportService struct{}

func (m *mockReportService) Generate(ctx context.Context, ownerID string, format types.ReportFormat, start, end models.Date) (*service.Report, error) {
	if !format.Valid() {
		return nil, &types.ServiceError{Code: types.CodeInvalidInput, Message: "Invalid input"}
	}
	return &service.Report{
		Filename:    fmt.Sprintf("operations-report-%s-to-%s.%s", start, end, format),
		ContentType: "text/csv",
		Data:        []byte("Date,Type,Asset,Quantity,Price,Total\n"),
	}, nil
}

type testEnv struct {
	server     *Server
	tokens     *auth.TokenManager
	auth       *mockAuthService
	operations *mockOperationService
	quotes     *mockQuoteService
}

func newTestEnv() *testEnv {
	tokens := auth.NewTokenManager("test-secret", time.Hour, time.Hour)
	env := &testEnv{
		tokens:     tokens,
		auth:       &mockAuthService{},
		operations: &mockOperationService{},
		quotes:     &mockQuoteService{},
	}

	cfg := &ServerConfig{
		Host:      "127.0.0.1",
		Port:      "0",
		AuthRPS:   100,
		AuthBurst: 100,
	}

	env.server = NewServer(
		cfg,
		env.auth,
		env.operations,
		&mockPortfolioService{},
		env.quotes,
		&mockReportService{},
		tokens,
		logging.NewLogger(logging.LevelFatal, logging.FormatText),
	)
	return env
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) sessionToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.IssueSession("user-1", "alice@example.com")
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ServiceError {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv()
	rec := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/operations"},
		{http.MethodGet, "/api/portfolio/detailed"},
		{http.MethodGet, "/api/quotes/PETR4"},
		{http.MethodGet, "/api/reports?format=csv&startDate=2024-01-01&endDate=2024-01-31"},
		{http.MethodGet, "/api/profile"},
	}

	for _, tc := range paths {
		rec := env.request(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, types.CodeUnauthorized, decodeError(t, rec).Code)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	env := newTestEnv()
	rec := env.request(t, http.MethodGet, "/api/operations", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodPost, "/api/register", "", map[string]string{
		"email": "alice@example.com", "password": "s3cret1",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	env := newTestEnv()
	env.auth.registerFunc = func(ctx context.Context, input service.RegisterInput) (*models.User, error) {
		return nil, &types.ServiceError{Code: types.CodeEmailInUse, Message: "Email is already registered"}
	}

	rec := env.request(t, http.MethodPost, "/api/register", "", map[string]string{
		"email": "alice@example.com", "password": "s3cret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, types.CodeEmailInUse, decodeError(t, rec).Code)
}

func TestLoginFailureReturnsFieldDetails(t *testing.T) {
	env := newTestEnv()
	env.auth.loginFunc = func(ctx context.Context, email, password string) (*models.User, string, error) {
		return nil, "", &types.ServiceError{
			Code:    types.CodeUnauthorized,
			Message: "Invalid email or password",
			Details: map[string]interface{}{"field": "password"},
		}
	}

	rec := env.request(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	serviceErr := decodeError(t, rec)
	assert.Equal(t, "password", serviceErr.Details["field"])
}

func TestCreateOperationValidationError(t *testing.T) {
	env := newTestEnv()
	env.operations.createFunc = func(ctx context.Context, ownerID string, input service.OperationInput) (*models.Operation, error) {
		return nil, &types.ServiceError{
			Code:    types.CodeInvalidInput,
			Message: "Invalid input",
			Details: map[string]interface{}{"quantity": "quantity must be greater than zero"},
		}
	}

	rec := env.request(t, http.MethodPost, "/api/operations", env.sessionToken(t), map[string]interface{}{
		"date": "2024-01-01", "type": "buy", "asset": "PETR4", "quantity": 0, "price": 10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "quantity")
}

func TestCreateOperationMalformedBody(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/operations", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+env.sessionToken(t))
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteOperationSuccessIs204(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodDelete, "/api/operations/op-1", env.sessionToken(t), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Equal(t, []string{"op-1"}, env.operations.deleted)
}

func TestDeleteForeignOperationIs404(t *testing.T) {
	env := newTestEnv()
	env.operations.deleteFunc = func(ctx context.Context, ownerID, id string) error {
		return &types.ServiceError{Code: types.CodeNotFound, Message: "Operation not found"}
	}

	rec := env.request(t, http.MethodDelete, "/api/operations/op-2", env.sessionToken(t), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, types.CodeNotFound, decodeError(t, rec).Code)
}

func TestGetQuotesSplitsTickers(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodGet, "/api/quotes/PETR4,VALE3", env.sessionToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var quotes []models.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quotes))
	require.Len(t, quotes, 2)
	assert.Equal(t, "PETR4", quotes[0].Symbol)
	assert.Equal(t, "VALE3", quotes[1].Symbol)
}

func TestPortfolioSummaryEndpoint(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodGet, "/api/portfolio/summary", env.sessionToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.PortfolioSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.InDelta(t, 1100, summary.CurrentValue, 1e-9)
}

func TestSearchStocksRequiresQuery(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodGet, "/api/search/stocks", env.sessionToken(t), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchStocksUpstreamFailureIs502(t *testing.T) {
	env := newTestEnv()
	env.quotes.searchErr = fmt.Errorf("upstream unavailable")

	rec := env.request(t, http.MethodGet, "/api/search/stocks?q=petro", env.sessionToken(t), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, types.CodeUpstreamUnavailable, decodeError(t, rec).Code)
}

func TestReportDownloadHeaders(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodGet, "/api/reports?format=csv&startDate=2024-01-01&endDate=2024-01-31", env.sessionToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "operations-report-2024-01-01-to-2024-01-31.csv")
}

func TestReportInvalidDates(t *testing.T) {
	env := newTestEnv()

	rec := env.request(t, http.MethodGet, "/api/reports?format=csv&startDate=bogus&endDate=2024-01-31", env.sessionToken(t), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "startDate")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
