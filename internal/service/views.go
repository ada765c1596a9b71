package service

import "github.com/colocash/colocash/internal/models"

// ParticipantView is the read-only projection of one member's share.
// Amounts are two-decimal strings so no value passes through a binary float.
type ParticipantView struct {
	MemberID             string `json:"member_id"`
	Share                string `json:"share"`
	PaymentMethod        string `json:"payment_method,omitempty"`
	Validated            bool   `json:"validated"`
	ValidatedAt          int64  `json:"validated_at,omitempty"`
	ConfirmedByCreator   bool   `json:"confirmed_by_creator"`
	ConfirmedByCreatorAt int64  `json:"confirmed_by_creator_at,omitempty"`
	FullySettled         bool   `json:"fully_settled"`
}

// ExpenseView is the read-only projection of an expense returned by every
// settlement operation.
type ExpenseView struct {
	ID           string            `json:"id"`
	ColocationID string            `json:"colocation_id"`
	PayerID      string            `json:"payer_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Amount       string            `json:"amount"`
	Settled      bool              `json:"settled"`
	SettledAt    int64             `json:"settled_at,omitempty"`
	CreatedAt    int64             `json:"created_at"`
	Participants []ParticipantView `json:"participants"`
}

// ColocationView is the read-only projection of a colocation.
type ColocationView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

// UserView is the public projection of a user account.
type UserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

func newExpenseView(e *models.Expense) *ExpenseView {
	view := &ExpenseView{
		ID:           e.ID,
		ColocationID: e.ColocationID,
		PayerID:      e.PayerID,
		Title:        e.Title,
		Description:  e.Description,
		Amount:       e.Amount.StringFixed(2),
		Settled:      e.Settled,
		SettledAt:    e.SettledAt,
		CreatedAt:    e.CreatedAt,
		Participants: make([]ParticipantView, len(e.Participants)),
	}
	for i := range e.Participants {
		p := &e.Participants[i]
		view.Participants[i] = ParticipantView{
			MemberID:             p.MemberID,
			Share:                p.Share.StringFixed(2),
			PaymentMethod:        p.PaymentMethod,
			Validated:            p.Validated,
			ValidatedAt:          p.ValidatedAt,
			ConfirmedByCreator:   p.ConfirmedByCreator,
			ConfirmedByCreatorAt: p.ConfirmedByCreatorAt,
			FullySettled:         p.FullySettled(),
		}
	}
	return view
}

func newExpenseViews(expenses []models.Expense) []ExpenseView {
	views := make([]ExpenseView, len(expenses))
	for i := range expenses {
		views[i] = *newExpenseView(&expenses[i])
	}
	return views
}

func newColocationView(c *models.Colocation) *ColocationView {
	return &ColocationView{
		ID:        c.ID,
		Name:      c.Name,
		Members:   c.Members,
		CreatedAt: c.CreatedAt,
	}
}

func newUserView(u *models.User) *UserView {
	return &UserView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
