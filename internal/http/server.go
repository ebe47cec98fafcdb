// Package http exposes the JSON API. Handlers decode and encode; every
// decision about ownership, validation, and credentials lives in the
// services and auth packages.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

type Server struct {
	http.Server

	accounts      *services.AccountService
	transactions  *services.TransactionService
	budgets       *services.BudgetService
	reports       *services.ReportService
	authenticator *auth.Authenticator

	corsOrigin  string
	authLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// Config carries the server's own knobs; service wiring comes separately.
type Config struct {
	Addr            string
	CORSAllowOrigin string

	// AuthRequestsPerMinute bounds login/register attempts per client IP.
	// Zero disables the limiter.
	AuthRequestsPerMinute int
}

func NewServer(cfg Config, accounts *services.AccountService, transactions *services.TransactionService,
	budgets *services.BudgetService, reports *services.ReportService, authenticator *auth.Authenticator) *Server {

	s := &Server{
		accounts:      accounts,
		transactions:  transactions,
		budgets:       budgets,
		reports:       reports,
		authenticator: authenticator,
		corsOrigin:    cfg.CORSAllowOrigin,
	}
	if cfg.AuthRequestsPerMinute > 0 {
		s.authLimiter = ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.AuthRequestsPerMinute,
		})
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/register", s.withAuthRateLimit(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.withAuthRateLimit(s.handleLogin))
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	mux.HandleFunc("GET /api/profile", s.requireAuth(s.handleProfile))
	mux.HandleFunc("GET /api/categories", s.requireAuth(s.handleListCategories))

	mux.HandleFunc("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.requireAuth(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.requireAuth(s.handleCreateBudget))

	mux.HandleFunc("GET /api/reports/spending-by-category", s.requireAuth(s.handleSpendingReport))

	traced := trace.NewMiddleware(clientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           traced.Middleware(headers.Middleware(s.withCORS(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Shutdown stops the rate limiter alongside the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.authLimiter != nil {
			s.authLimiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
