// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/invest-tracker/internal/auth"
	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/models"
	"github.com/invest-tracker/internal/service"
	"github.com/invest-tracker/internal/types"
)

// Service interfaces for dependency injection and testing

// AuthServiceInterface defines the account and session operations
type AuthServiceInterface interface {
	Register(ctx context.Context, input service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, input service.ProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, next string) error
}

// OperationServiceInterface defines the ledger operations
type OperationServiceInterface interface {
	Create(ctx context.Context, ownerID string, input service.OperationInput) (*models.Operation, error)
	List(ctx context.Context, ownerID string) ([]*models.Operation, error)
	Get(ctx context.Context, ownerID, id string) (*models.Operation, error)
	Update(ctx context.Context, ownerID, id string, input service.OperationInput) (*models.Operation, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// PortfolioServiceInterface defines the valuation operations
type PortfolioServiceInterface interface {
	DetailedPortfolio(ctx context.Context, ownerID string) ([]models.EnrichedPosition, *models.PortfolioSummary, error)
	DashboardSummary(ctx context.Context, ownerID string) (*models.PortfolioSummary, error)
}

// QuoteServiceInterface defines the market data operations
type QuoteServiceInterface interface {
	GetQuotes(ctx context.Context, symbols []string) []models.Quote
	GetChart(ctx context.Context, symbol string) *models.ChartSeries
	Search(ctx context.Context, term string) ([]models.SearchResult, error)
}

// ReportServiceInterface defines report generation
type ReportServiceInterface interface {
	Generate(ctx context.Context, ownerID string, format types.ReportFormat, start, end models.Date) (*service.Report, error)
}

// Server represents the HTTP API server.
type Server struct {
	router           *mux.Router
	httpServer       *http.Server
	authService      AuthServiceInterface
	operationService OperationServiceInterface
	portfolioService PortfolioServiceInterface
	quoteService     QuoteServiceInterface
	reportService    ReportServiceInterface
	tokens           *auth.TokenManager
	config           *ServerConfig
	logger           *logging.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AuthRPS         int // Requests per second on unauthenticated endpoints
	AuthBurst       int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	authService AuthServiceInterface,
	operationService OperationServiceInterface,
	portfolioService PortfolioServiceInterface,
	quoteService QuoteServiceInterface,
	reportService ReportServiceInterface,
	tokens *auth.TokenManager,
	logger *logging.Logger,
) *Server {
	s := &Server{
		router:           mux.NewRouter(),
		authService:      authService,
		operationService: operationService,
		portfolioService: portfolioService,
		quoteService:     quoteService,
		reportService:    reportService,
		tokens:           tokens,
		config:           config,
		logger:           logger,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Preflight requests need a matching route for the CORS middleware to run
	s.router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	api := s.router.PathPrefix("/api").Subrouter()

	// Public endpoints, rate limited per client IP
	limiter := NewRateLimiter(s.config.AuthRPS, s.config.AuthBurst)
	api.HandleFunc("/register", limiter.Limit(s.handleRegister)).Methods("POST")
	api.HandleFunc("/login", limiter.Limit(s.handleLogin)).Methods("POST")
	api.HandleFunc("/forgot-password", limiter.Limit(s.handleForgotPassword)).Methods("POST")
	api.HandleFunc("/reset-password", limiter.Limit(s.handleResetPassword)).Methods("POST")

	// Everything below requires a session token
	protected := api.NewRoute().Subrouter()
	protected.Use(AuthMiddleware(s.tokens))

	// Profile endpoints
	protected.HandleFunc("/profile", s.handleGetProfile).Methods("GET")
	protected.HandleFunc("/profile", s.handleUpdateProfile).Methods("PUT")
	protected.HandleFunc("/profile/change-password", s.handleChangePassword).Methods("PUT")

	// Operation ledger endpoints
	protected.HandleFunc("/operations", s.handleCreateOperation).Methods("POST")
	protected.HandleFunc("/operations", s.handleListOperations).Methods("GET")
	protected.HandleFunc("/operations/{id}", s.handleGetOperation).Methods("GET")
	protected.HandleFunc("/operations/{id}", s.handleUpdateOperation).Methods("PUT")
	protected.HandleFunc("/operations/{id}", s.handleDeleteOperation).Methods("DELETE")

	// Portfolio endpoints
	protected.HandleFunc("/portfolio/detailed", s.handleDetailedPortfolio).Methods("GET")
	protected.HandleFunc("/portfolio/summary", s.handlePortfolioSummary).Methods("GET")

	// Market data endpoints
	protected.HandleFunc("/quotes/{tickers}", s.handleGetQuotes).Methods("GET")
	protected.HandleFunc("/chart/{ticker}", s.handleGetChart).Methods("GET")
	protected.HandleFunc("/search/stocks", s.handleSearchStocks).Methods("GET")

	// Report endpoints
	protected.HandleFunc("/reports", s.handleGenerateReport).Methods("GET")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "invest-tracker",
	})
}

// Handler returns the configured router, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
