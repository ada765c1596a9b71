package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/colocash/colocash/internal/errs"
	"github.com/colocash/colocash/internal/middleware"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createColocationRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	MemberID string `json:"member_id"`
}

type createExpenseRequest struct {
	ColocationID   string   `json:"colocation_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Amount         string   `json:"amount"`
	ParticipantIDs []string `json:"participant_ids"`
}

type validatePaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type confirmPaymentRequest struct {
	MemberID string `json:"member_id"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.auth.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	respond(w, result, err, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.auth.Login(r.Context(), req.Email, req.Password)
	respond(w, result, err, http.StatusOK)
}

func (s *Server) handleCreateColocation(w http.ResponseWriter, r *http.Request) {
	var req createColocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := s.colocations.CreateColocation(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	respond(w, view, err, http.StatusCreated)
}

func (s *Server) handleListColocations(w http.ResponseWriter, r *http.Request) {
	views, err := s.colocations.ListColocations(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, views, err, http.StatusOK)
}

func (s *Server) handleGetColocation(w http.ResponseWriter, r *http.Request) {
	view, err := s.colocations.GetColocation(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	respond(w, view, err, http.StatusOK)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := s.colocations.AddMember(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.MemberID)
	respond(w, view, err, http.StatusOK)
}

func (s *Server) handleColocationExpenses(w http.ResponseWriter, r *http.Request) {
	views, err := s.settlement.GetColocationExpenses(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	respond(w, views, err, http.StatusOK)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errs.Invalid("invalid amount %q", req.Amount))
		return
	}
	view, err := s.settlement.CreateExpense(r.Context(), middleware.GetUserID(r.Context()),
		req.ColocationID, req.Title, req.Description, amount, req.ParticipantIDs)
	respond(w, view, err, http.StatusCreated)
}

func (s *Server) handleUserExpenses(w http.ResponseWriter, r *http.Request) {
	views, err := s.settlement.GetUserExpenses(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, views, err, http.StatusOK)
}

func (s *Server) handlePendingPayments(w http.ResponseWriter, r *http.Request) {
	views, err := s.settlement.GetPendingPayments(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, views, err, http.StatusOK)
}

func (s *Server) handlePendingConfirmations(w http.ResponseWriter, r *http.Request) {
	views, err := s.settlement.GetPendingConfirmations(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, views, err, http.StatusOK)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	view, err := s.settlement.GetExpense(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	respond(w, view, err, http.StatusOK)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	err := s.settlement.DeleteExpense(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleValidatePayment(w http.ResponseWriter, r *http.Request) {
	var req validatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := s.settlement.ValidatePayment(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.PaymentMethod)
	respond(w, view, err, http.StatusOK)
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := s.settlement.ConfirmPayment(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.MemberID)
	respond(w, view, err, http.StatusOK)
}

func (s *Server) handleConfirmAllPayments(w http.ResponseWriter, r *http.Request) {
	view, err := s.settlement.ConfirmAllPayments(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	respond(w, view, err, http.StatusOK)
}

// decodeJSON parses the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, errs.Wrap(errs.KindInvalid, err, "invalid request body"))
		return false
	}
	return true
}

func respond(w http.ResponseWriter, payload any, err error, status int) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		// Do not leak internals to the client.
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
