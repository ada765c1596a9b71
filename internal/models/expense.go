package models

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colocash/colocash/internal/split"
)

var (
	// ErrEmptyTitle is returned when an expense is created without a title.
	ErrEmptyTitle = errors.New("expense title required")
	// ErrNonPositiveAmount is returned when the total is zero or negative.
	ErrNonPositiveAmount = errors.New("expense amount must be positive")
	// ErrSubCentAmount is returned when the total has more than two decimals.
	ErrSubCentAmount = errors.New("expense amount has sub-cent precision")
	// ErrAlreadyDistributed is returned when DistributeEvenly runs twice.
	ErrAlreadyDistributed = errors.New("expense already has participants")
	// ErrParticipantNotFound is returned when a member holds no share of the expense.
	ErrParticipantNotFound = errors.New("member is not a participant of the expense")
)

// Expense is a shared cost paid up-front by one member of a colocation.
//
// The expense owns its participant rows exclusively. Settled is derived from
// participant state and persisted for query efficiency; Recompute keeps it
// honest after every normal mutation, ConfirmAllPayments is the one path that
// force-sets it (creator override).
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// ColocationID is the colocation this expense belongs to.
	ColocationID string

	// PayerID is the member who paid and is owed reimbursement.
	PayerID string

	// Title is the human-readable name for the expense.
	Title string

	// Description is an optional longer note.
	Description string

	// Amount is the total cost, two-decimal fixed point.
	Amount decimal.Decimal

	// Settled is true when every participant is fully settled, or when the
	// payer invoked the creator override.
	Settled   bool
	SettledAt int64

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// Version supports optimistic concurrency at the storage layer.
	Version int64

	// Participants holds one row per member sharing the cost.
	Participants []ExpenseParticipant
}

// NewExpense builds an unsaved expense after validating its inputs. The
// participant set is attached separately via DistributeEvenly.
func NewExpense(colocationID, payerID, title, description string, amount decimal.Decimal) (*Expense, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, ErrSubCentAmount
	}
	return &Expense{
		ID:           uuid.New().String(),
		ColocationID: colocationID,
		PayerID:      payerID,
		Title:        title,
		Description:  description,
		Amount:       amount,
		CreatedAt:    time.Now().Unix(),
		Version:      1,
	}, nil
}

// DistributeEvenly splits the total across memberIDs and creates one
// participant per member. It may only run once, at creation time.
func (e *Expense) DistributeEvenly(memberIDs []string) error {
	if len(e.Participants) > 0 {
		return ErrAlreadyDistributed
	}

	shares, err := split.Evenly(e.Amount, memberIDs, e.PayerID)
	if err != nil {
		return err
	}

	members := make([]string, 0, len(shares))
	for id := range shares {
		members = append(members, id)
	}
	sort.Strings(members)

	for _, id := range members {
		e.Participants = append(e.Participants, ExpenseParticipant{
			ID:        uuid.New().String(),
			ExpenseID: e.ID,
			MemberID:  id,
			Share:     shares[id],
		})
	}
	return nil
}

// Participant returns the participant row for memberID, or nil.
func (e *Expense) Participant(memberID string) *ExpenseParticipant {
	for i := range e.Participants {
		if e.Participants[i].MemberID == memberID {
			return &e.Participants[i]
		}
	}
	return nil
}

// ConfirmPaymentByUser records the payer's confirmation for one member's
// share, then re-derives the aggregate settlement state.
func (e *Expense) ConfirmPaymentByUser(memberID string) error {
	p := e.Participant(memberID)
	if p == nil {
		return ErrParticipantNotFound
	}
	p.ConfirmByCreator()
	e.Recompute()
	return nil
}

// ConfirmAllPayments is the creator override: it confirms every participant
// and force-sets Settled, even for participants that never validated. Calling
// it again is a no-op once everything is confirmed.
func (e *Expense) ConfirmAllPayments() {
	for i := range e.Participants {
		e.Participants[i].ConfirmByCreator()
	}
	if !e.Settled {
		e.Settled = true
		e.SettledAt = time.Now().Unix()
	}
}

// Recompute re-derives Settled strictly as "every participant fully settled".
// An expense with no participants is never settled. SettledAt is stamped on
// the false-to-true transition and cleared when any participant regresses.
func (e *Expense) Recompute() {
	settled := len(e.Participants) > 0
	for i := range e.Participants {
		if !e.Participants[i].FullySettled() {
			settled = false
			break
		}
	}

	if settled && !e.Settled {
		e.Settled = true
		e.SettledAt = time.Now().Unix()
	} else if !settled && e.Settled {
		e.Settled = false
		e.SettledAt = 0
	}
}
