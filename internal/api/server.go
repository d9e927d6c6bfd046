// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/service"
	"github.com/wallet-ledger/internal/types"
)

// Service interfaces for dependency injection and testing

// SyncServiceInterface defines the sync orchestration operations.
type SyncServiceInterface interface {
	SyncWallet(ctx context.Context, walletID string, force bool) (*models.SyncResult, error)
	SyncAll(ctx context.Context) ([]*models.SyncResult, error)
}

// SyncStatusInterface exposes per-wallet sync state.
type SyncStatusInterface interface {
	Status(walletID string) models.SyncState
}

// WalletStoreInterface defines the wallet persistence operations the
// handlers need.
type WalletStoreInterface interface {
	Create(ctx context.Context, w *models.Wallet) error
	GetByID(ctx context.Context, id string) (*models.Wallet, error)
	ListActive(ctx context.Context) ([]*models.Wallet, error)
	Rename(ctx context.Context, id, name string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// TransactionStoreInterface defines the transaction read operations.
type TransactionStoreInterface interface {
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*models.Transaction, error)
	ListConfirmedByWallet(ctx context.Context, walletID string) ([]*models.Transaction, error)
	CountByWallet(ctx context.Context, walletID string) (int64, error)
}

// BalanceServiceInterface defines historical balance reconstruction.
type BalanceServiceInterface interface {
	HistoricalBalances(ctx context.Context, wallet *models.Wallet, start, end time.Time) ([]*models.BalanceSnapshot, error)
}

// PeriodServiceInterface defines period figure resolution and ingest.
type PeriodServiceInterface interface {
	Report(ctx context.Context, date time.Time) (*service.PeriodReport, error)
	Ingest(ctx context.Context, p types.Period, date time.Time, datum *models.PeriodDatum) error
}

// DashboardServiceInterface defines dashboard summary operations.
type DashboardServiceInterface interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
	Refresh(ctx context.Context) (*models.DashboardSummary, error)
}

// Pinger reports backend liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	config     *config.ServerConfig

	wallets      WalletStoreInterface
	transactions TransactionStoreInterface
	syncService  SyncServiceInterface
	syncStatus   SyncStatusInterface
	balances     BalanceServiceInterface
	periods      PeriodServiceInterface
	dashboard    DashboardServiceInterface

	db    Pinger
	cache Pinger
}

// Deps bundles the server's collaborators.
type Deps struct {
	Wallets      WalletStoreInterface
	Transactions TransactionStoreInterface
	SyncService  SyncServiceInterface
	SyncStatus   SyncStatusInterface
	Balances     BalanceServiceInterface
	Periods      PeriodServiceInterface
	Dashboard    DashboardServiceInterface
	DB           Pinger
	Cache        Pinger
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.ServerConfig, deps Deps) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		config:       cfg,
		wallets:      deps.Wallets,
		transactions: deps.Transactions,
		syncService:  deps.SyncService,
		syncStatus:   deps.SyncStatus,
		balances:     deps.Balances,
		periods:      deps.Periods,
		dashboard:    deps.Dashboard,
		db:           deps.DB,
		cache:        deps.Cache,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes.
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.ClientRPS)

	// Middleware order matters: logging wraps everything, rate limiting
	// comes after CORS so preflight requests are never throttled.
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
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
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Wallet endpoints
	api.HandleFunc("/wallets", s.handleCreateWallet).Methods("POST")
	api.HandleFunc("/wallets", s.handleListWallets).Methods("GET")
	api.HandleFunc("/wallets/{id}", s.handleGetWallet).Methods("GET")
	api.HandleFunc("/wallets/{id}", s.handleUpdateWallet).Methods("PUT")
	api.HandleFunc("/wallets/{id}/transactions", s.handleGetTransactions).Methods("GET")

	// Sync endpoints
	api.HandleFunc("/wallets/{id}/sync", s.handleSyncWallet).Methods("POST")
	api.HandleFunc("/wallets/{id}/sync-status", s.handleSyncStatus).Methods("GET")
	api.HandleFunc("/sync", s.handleSyncAll).Methods("POST")

	// Balance and export endpoints
	api.HandleFunc("/wallets/{id}/balances", s.handleGetBalances).Methods("GET")
	api.HandleFunc("/wallets/{id}/export", s.handleExport).Methods("GET")

	// Period and dashboard endpoints
	api.HandleFunc("/periods", s.handleGetPeriods).Methods("GET")
	api.HandleFunc("/periods/{period}", s.handleIngestPeriod).Methods("PUT")
	api.HandleFunc("/dashboard", s.handleGetDashboard).Methods("GET")
	api.HandleFunc("/dashboard/refresh", s.handleRefreshDashboard).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}

	for name, p := range map[string]Pinger{"postgres": s.db, "redis": s.cache} {
		if p == nil {
			continue
		}
		if err := p.Ping(r.Context()); err != nil {
			checks[name] = err.Error()
			status = "degraded"
		} else {
			checks[name] = "ok"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": "wallet-ledger",
		"checks":  checks,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Global().WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Global().Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
