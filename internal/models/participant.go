package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrAlreadyValidated is returned when a participant validates a share twice.
var ErrAlreadyValidated = errors.New("payment already validated")

// ExpenseParticipant is one member's share of an expense.
//
// Settlement of a share is two-sided: the participant asserts they paid
// (Validated) and the payer asserts they received it (ConfirmedByCreator).
// The share is fully settled only when both flags are set. Each flag is
// stamped with the time it was set; a zero timestamp means the flag is unset.
type ExpenseParticipant struct {
	// ID is the unique identifier for the participant row (UUID format).
	ID string

	// ExpenseID is the owning expense.
	ExpenseID string

	// MemberID identifies the member holding this share.
	MemberID string

	// Share is this member's portion of the expense total.
	Share decimal.Decimal

	// PaymentMethod is an optional label recorded when the participant
	// validates (e.g. "cash", "bank transfer").
	PaymentMethod string

	// Validated is the participant-side assertion that the share was paid.
	Validated   bool
	ValidatedAt int64

	// ConfirmedByCreator is the payer-side assertion that the share was received.
	ConfirmedByCreator   bool
	ConfirmedByCreatorAt int64
}

// Validate marks the share as paid by the participant and records the payment
// method. Validating twice is a caller error, not auto-corrected.
func (p *ExpenseParticipant) Validate(paymentMethod string) error {
	if p.Validated {
		return ErrAlreadyValidated
	}
	p.Validated = true
	p.ValidatedAt = time.Now().Unix()
	p.PaymentMethod = paymentMethod
	return nil
}

// ConfirmByCreator marks the share as received by the payer. Confirming an
// already-confirmed share keeps the original timestamp.
func (p *ExpenseParticipant) ConfirmByCreator() {
	if p.ConfirmedByCreator {
		return
	}
	p.ConfirmedByCreator = true
	p.ConfirmedByCreatorAt = time.Now().Unix()
}

// FullySettled reports whether both sides have confirmed this share.
func (p *ExpenseParticipant) FullySettled() bool {
	return p.Validated && p.ConfirmedByCreator
}
