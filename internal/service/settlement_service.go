// Package service implements the use-case operations exposed to the transport
// layer. Services enforce authorization and sequencing around the domain
// aggregates and are the only components that talk to the storage layer.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/colocash/colocash/internal/errs"
	"github.com/colocash/colocash/internal/models"
	"github.com/colocash/colocash/internal/storage"
)

// SettlementService orchestrates expense splitting and two-sided payment
// confirmation. Every mutating operation runs a load-mutate-save cycle; the
// storage layer's version check keeps concurrent writers from losing updates.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// CreateExpense splits a new shared cost across participants and persists it.
// The payer must be a member of the colocation; explicit participant ids must
// each be members too and repeated ids count once. An empty participant list
// means the whole colocation.
func (s *SettlementService) CreateExpense(ctx context.Context, payerID, colocationID, title, description string, amount decimal.Decimal, participantIDs []string) (*ExpenseView, error) {
	coloc, err := s.store.GetColocation(ctx, colocationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errs.NotFound("colocation %s not found", colocationID)
		}
		return nil, errs.Internal(err, "failed to load colocation")
	}
	if !coloc.HasMember(payerID) {
		return nil, errs.Forbidden("payer is not a member of the colocation")
	}

	if len(participantIDs) == 0 {
		// Fall back to the full current membership.
		participantIDs = coloc.Members
	} else {
		seen := make(map[string]struct{}, len(participantIDs))
		ids := make([]string, 0, len(participantIDs))
		for _, id := range participantIDs {
			if !coloc.HasMember(id) {
				return nil, errs.Invalid("participant %s is not a member of the colocation", id)
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		participantIDs = ids
	}

	expense, err := models.NewExpense(colocationID, payerID, title, description, amount)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalid, err, "invalid expense")
	}
	if err := expense.DistributeEvenly(participantIDs); err != nil {
		return nil, errs.Wrap(errs.KindInvalid, err, "failed to split expense")
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, errs.Internal(err, "failed to persist expense")
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"colocation_id", colocationID,
		"payer_id", payerID,
		"amount", expense.Amount.StringFixed(2),
		"participants", len(expense.Participants),
	)
	return newExpenseView(expense), nil
}

// ValidatePayment records the caller's assertion that they paid their share.
func (s *SettlementService) ValidatePayment(ctx context.Context, expenseID, callerID, paymentMethod string) (*ExpenseView, error) {
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	participant := expense.Participant(callerID)
	if participant == nil {
		return nil, errs.NotFound("you are not a participant of this expense")
	}
	if err := participant.Validate(paymentMethod); err != nil {
		return nil, errs.Wrap(errs.KindConflict, err, "payment already validated")
	}
	expense.Recompute()

	if err := s.saveExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("Payment validated",
		"expense_id", expenseID,
		"member_id", callerID,
		"settled", expense.Settled,
	)
	return newExpenseView(expense), nil
}

// ConfirmPayment records the payer's confirmation for one participant's share.
func (s *SettlementService) ConfirmPayment(ctx context.Context, expenseID, payerID, participantMemberID string) (*ExpenseView, error) {
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.PayerID != payerID {
		return nil, errs.Forbidden("only the payer can confirm payments")
	}

	if err := expense.ConfirmPaymentByUser(participantMemberID); err != nil {
		return nil, errs.Wrap(errs.KindNotFound, err, "participant not found")
	}

	if err := s.saveExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("Payment confirmed",
		"expense_id", expenseID,
		"member_id", participantMemberID,
		"settled", expense.Settled,
	)
	return newExpenseView(expense), nil
}

// ConfirmAllPayments is the creator override: the payer settles the whole
// expense at once, regardless of participant-side validation.
func (s *SettlementService) ConfirmAllPayments(ctx context.Context, expenseID, payerID string) (*ExpenseView, error) {
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.PayerID != payerID {
		return nil, errs.Forbidden("only the payer can confirm payments")
	}

	expense.ConfirmAllPayments()

	if err := s.saveExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("All payments confirmed", "expense_id", expenseID, "payer_id", payerID)
	return newExpenseView(expense), nil
}

// DeleteExpense removes an unsettled expense and its participants. Only the
// payer may delete, and never once the expense is settled.
func (s *SettlementService) DeleteExpense(ctx context.Context, expenseID, payerID string) error {
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.PayerID != payerID {
		return errs.Forbidden("only the payer can delete an expense")
	}
	if expense.Settled {
		return errs.Conflict("a settled expense cannot be deleted")
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errs.NotFound("expense %s not found", expenseID)
		}
		return errs.Internal(err, "failed to delete expense")
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "payer_id", payerID)
	return nil
}

// GetExpense returns one expense; the caller must be its payer or a participant.
func (s *SettlementService) GetExpense(ctx context.Context, expenseID, callerID string) (*ExpenseView, error) {
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.PayerID != callerID && expense.Participant(callerID) == nil {
		return nil, errs.Forbidden("you are not involved in this expense")
	}
	return newExpenseView(expense), nil
}

// GetColocationExpenses returns the expenses of a colocation, newest first.
// The caller must be a member.
func (s *SettlementService) GetColocationExpenses(ctx context.Context, colocationID, callerID string) ([]ExpenseView, error) {
	isMember, err := s.store.IsColocationMember(ctx, colocationID, callerID)
	if err != nil {
		return nil, errs.Internal(err, "failed to check membership")
	}
	if !isMember {
		return nil, errs.Forbidden("you are not a member of this colocation")
	}

	expenses, err := s.store.ListExpensesByColocation(ctx, colocationID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list expenses")
	}
	return newExpenseViews(expenses), nil
}

// GetUserExpenses returns every expense the caller paid or participates in.
func (s *SettlementService) GetUserExpenses(ctx context.Context, callerID string) ([]ExpenseView, error) {
	paid, err := s.store.ListExpensesByPayer(ctx, callerID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list paid expenses")
	}
	shared, err := s.store.ListExpensesByParticipant(ctx, callerID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list shared expenses")
	}

	seen := make(map[string]bool, len(paid))
	merged := make([]models.Expense, 0, len(paid)+len(shared))
	for _, e := range paid {
		seen[e.ID] = true
		merged = append(merged, e)
	}
	for _, e := range shared {
		if !seen[e.ID] {
			merged = append(merged, e)
		}
	}
	return newExpenseViews(merged), nil
}

// GetPendingPayments returns the expenses in which the caller still has to
// validate their share.
func (s *SettlementService) GetPendingPayments(ctx context.Context, callerID string) ([]ExpenseView, error) {
	expenses, err := s.store.ListExpensesByParticipant(ctx, callerID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list expenses")
	}

	var pending []models.Expense
	for _, e := range expenses {
		if p := e.Participant(callerID); p != nil && !p.Validated {
			pending = append(pending, e)
		}
	}
	return newExpenseViews(pending), nil
}

// GetPendingConfirmations returns the caller's own expenses that have shares
// validated by the participant but not yet confirmed by the caller.
func (s *SettlementService) GetPendingConfirmations(ctx context.Context, payerID string) ([]ExpenseView, error) {
	expenses, err := s.store.ListExpensesByPayer(ctx, payerID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list expenses")
	}

	var pending []models.Expense
	for _, e := range expenses {
		for i := range e.Participants {
			p := &e.Participants[i]
			if p.Validated && !p.ConfirmedByCreator {
				pending = append(pending, e)
				break
			}
		}
	}
	return newExpenseViews(pending), nil
}

func (s *SettlementService) loadExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errs.NotFound("expense %s not found", expenseID)
		}
		return nil, errs.Internal(err, "failed to load expense")
	}
	return expense, nil
}

func (s *SettlementService) saveExpense(ctx context.Context, expense *models.Expense) error {
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		if errors.Is(err, storage.ErrStaleExpense) {
			return errs.Conflict("expense was modified concurrently, retry")
		}
		if errors.Is(err, storage.ErrNotFound) {
			return errs.NotFound("expense %s not found", expense.ID)
		}
		return errs.Internal(err, "failed to persist expense")
	}
	return nil
}
