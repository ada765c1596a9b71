// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/colocash/colocash/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStaleExpense is returned by UpdateExpense when the expense was
	// modified concurrently (version mismatch).
	ErrStaleExpense = errors.New("expense modified concurrently")

	// ErrDuplicate is returned when a unique constraint would be violated
	// (e.g. registering an email twice, adding a member twice).
	ErrDuplicate = errors.New("record already exists")
)

// Store defines the persistence operations used by the service layer.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the services.
type Store interface {
	// CreateUser persists a new user. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if missing.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID retrieves a user by id. Returns ErrNotFound if missing.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateColocation persists a colocation with its initial members.
	CreateColocation(ctx context.Context, coloc *models.Colocation) error
	// GetColocation retrieves a colocation with its full member list.
	GetColocation(ctx context.Context, id string) (*models.Colocation, error)
	// ListUserColocations returns every colocation the member belongs to.
	ListUserColocations(ctx context.Context, memberID string) ([]models.Colocation, error)
	// AddColocationMembers adds members to a colocation. Returns ErrDuplicate
	// if any of them already belongs.
	AddColocationMembers(ctx context.Context, colocationID string, memberIDs []string) error
	// IsColocationMember reports whether memberID belongs to the colocation.
	IsColocationMember(ctx context.Context, colocationID, memberID string) (bool, error)

	// CreateExpense persists a new expense and its participant rows atomically.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	// GetExpense retrieves an expense with its participants.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	// UpdateExpense persists the expense and replaces its participant rows in
	// one transaction. The write is guarded by the expense version: a stale
	// version returns ErrStaleExpense and on success the version is bumped.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	// DeleteExpense removes the expense and cascades to its participants.
	DeleteExpense(ctx context.Context, id string) error

	// ListExpensesByColocation returns expenses of a colocation, newest first.
	ListExpensesByColocation(ctx context.Context, colocationID string) ([]models.Expense, error)
	// ListExpensesByPayer returns expenses paid by the member, newest first.
	ListExpensesByPayer(ctx context.Context, payerID string) ([]models.Expense, error)
	// ListExpensesByParticipant returns expenses in which the member holds a
	// share, newest first.
	ListExpensesByParticipant(ctx context.Context, memberID string) ([]models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
