// Package server wires the service layer to a JSON-over-HTTP API.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/colocash/colocash/internal/auth"
	"github.com/colocash/colocash/internal/middleware"
	"github.com/colocash/colocash/internal/service"
)

// Server holds the services behind the HTTP API.
type Server struct {
	settlement  *service.SettlementService
	colocations *service.ColocationService
	auth        *service.AuthService
	jwtManager  *auth.JWTManager
}

// New creates a Server over the given services.
func New(settlement *service.SettlementService, colocations *service.ColocationService, authSvc *service.AuthService, jwtManager *auth.JWTManager) *Server {
	return &Server{
		settlement:  settlement,
		colocations: colocations,
		auth:        authSvc,
		jwtManager:  jwtManager,
	}
}

// Handler builds the full routing table with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	authed := http.NewServeMux()
	authed.HandleFunc("POST /api/colocations", s.handleCreateColocation)
	authed.HandleFunc("GET /api/colocations", s.handleListColocations)
	authed.HandleFunc("GET /api/colocations/{id}", s.handleGetColocation)
	authed.HandleFunc("POST /api/colocations/{id}/members", s.handleAddMember)
	authed.HandleFunc("GET /api/colocations/{id}/expenses", s.handleColocationExpenses)

	authed.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	authed.HandleFunc("GET /api/expenses", s.handleUserExpenses)
	authed.HandleFunc("GET /api/expenses/pending-payments", s.handlePendingPayments)
	authed.HandleFunc("GET /api/expenses/pending-confirmations", s.handlePendingConfirmations)
	authed.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	authed.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	authed.HandleFunc("POST /api/expenses/{id}/validate", s.handleValidatePayment)
	authed.HandleFunc("POST /api/expenses/{id}/confirm", s.handleConfirmPayment)
	authed.HandleFunc("POST /api/expenses/{id}/confirm-all", s.handleConfirmAllPayments)

	mux.Handle("/api/", middleware.RequireAuth(s.jwtManager)(authed))

	return middleware.Logging(middleware.CORS(middleware.Metrics(mux)))
}
