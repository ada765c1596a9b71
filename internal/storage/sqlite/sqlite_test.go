package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/colocash/colocash/internal/models"
	"github.com/colocash/colocash/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "colocash-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUsers(t *testing.T, store *SQLiteStore, emails ...string) []string {
	t.Helper()
	ctx := context.Background()
	ids := make([]string, len(emails))
	for i, email := range emails {
		user := models.NewUser(email, email, "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", email, err)
		}
		ids[i] = user.ID
	}
	return ids
}

func seedExpense(t *testing.T, store *SQLiteStore, colocID, payerID string, amount string, memberIDs []string) *models.Expense {
	t.Helper()
	expense, err := models.NewExpense(colocID, payerID, "Groceries", "weekly run", decimal.RequireFromString(amount))
	if err != nil {
		t.Fatalf("NewExpense failed: %v", err)
	}
	if err := expense.DistributeEvenly(memberIDs); err != nil {
		t.Fatalf("DistributeEvenly failed: %v", err)
	}
	if err := store.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return expense
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("round trip by email and id", func(t *testing.T) {
		user := models.NewUser("alice@example.com", "Alice", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID || byEmail.DisplayName != "Alice" {
			t.Errorf("unexpected user: %+v", byEmail)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.Email != "alice@example.com" {
			t.Errorf("unexpected email: %s", byID.Email)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Imposter", "hash"))
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("error = %v, want ErrDuplicate", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestColocations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := seedUsers(t, store, "a@x.com", "b@x.com", "c@x.com")

	coloc := models.NewColocation("Flat 12", ids[0])
	if err := store.CreateColocation(ctx, coloc); err != nil {
		t.Fatalf("CreateColocation failed: %v", err)
	}

	t.Run("membership checks", func(t *testing.T) {
		if err := store.AddColocationMembers(ctx, coloc.ID, []string{ids[1]}); err != nil {
			t.Fatalf("AddColocationMembers failed: %v", err)
		}

		isMember, err := store.IsColocationMember(ctx, coloc.ID, ids[1])
		if err != nil || !isMember {
			t.Errorf("IsColocationMember = %v, %v, want true", isMember, err)
		}
		isMember, err = store.IsColocationMember(ctx, coloc.ID, ids[2])
		if err != nil || isMember {
			t.Errorf("IsColocationMember = %v, %v, want false", isMember, err)
		}
	})

	t.Run("adding an existing member conflicts", func(t *testing.T) {
		err := store.AddColocationMembers(ctx, coloc.ID, []string{ids[0]})
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("error = %v, want ErrDuplicate", err)
		}
	})

	t.Run("get returns member list", func(t *testing.T) {
		got, err := store.GetColocation(ctx, coloc.ID)
		if err != nil {
			t.Fatalf("GetColocation failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Errorf("members = %v, want 2 entries", got.Members)
		}
	})

	t.Run("list for user", func(t *testing.T) {
		colocs, err := store.ListUserColocations(ctx, ids[0])
		if err != nil {
			t.Fatalf("ListUserColocations failed: %v", err)
		}
		if len(colocs) != 1 || colocs[0].ID != coloc.ID {
			t.Errorf("unexpected colocations: %+v", colocs)
		}

		colocs, err = store.ListUserColocations(ctx, ids[2])
		if err != nil {
			t.Fatalf("ListUserColocations failed: %v", err)
		}
		if len(colocs) != 0 {
			t.Errorf("expected no colocations for non-member, got %d", len(colocs))
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := seedUsers(t, store, "a@x.com", "b@x.com", "c@x.com")

	coloc := models.NewColocation("Flat 12", ids[0])
	if err := store.CreateColocation(ctx, coloc); err != nil {
		t.Fatalf("CreateColocation failed: %v", err)
	}
	if err := store.AddColocationMembers(ctx, coloc.ID, ids[1:]); err != nil {
		t.Fatalf("AddColocationMembers failed: %v", err)
	}

	t.Run("round trip preserves money exactly", func(t *testing.T) {
		expense := seedExpense(t, store, coloc.ID, ids[0], "100.00", ids)

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("100.00")) {
			t.Errorf("amount = %s, want 100.00", got.Amount)
		}
		if len(got.Participants) != 3 {
			t.Fatalf("participants = %d, want 3", len(got.Participants))
		}
		sum := decimal.Zero
		for _, p := range got.Participants {
			sum = sum.Add(p.Share)
		}
		if !sum.Equal(got.Amount) {
			t.Errorf("sum of shares = %s, want %s", sum, got.Amount)
		}
		if got.Version != 1 {
			t.Errorf("version = %d, want 1", got.Version)
		}
	})

	t.Run("update persists participant flags and bumps version", func(t *testing.T) {
		expense := seedExpense(t, store, coloc.ID, ids[0], "45.00", ids)

		if err := expense.Participant(ids[1]).Validate("cash"); err != nil {
			t.Fatal(err)
		}
		expense.Recompute()
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		if expense.Version != 2 {
			t.Errorf("version = %d, want 2", expense.Version)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		p := got.Participant(ids[1])
		if p == nil || !p.Validated || p.ValidatedAt == 0 || p.PaymentMethod != "cash" {
			t.Errorf("participant flags not persisted: %+v", p)
		}
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		expense := seedExpense(t, store, coloc.ID, ids[0], "12.00", ids)

		stale, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatal(err)
		}

		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("first update failed: %v", err)
		}

		err = store.UpdateExpense(ctx, stale)
		if !errors.Is(err, storage.ErrStaleExpense) {
			t.Errorf("error = %v, want ErrStaleExpense", err)
		}
	})

	t.Run("delete cascades to participants", func(t *testing.T) {
		expense := seedExpense(t, store, coloc.ID, ids[0], "9.00", ids)

		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}

		var count int
		err := store.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM expense_participants WHERE expense_id = ?", expense.ID).Scan(&count)
		if err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("orphan participant rows: %d", count)
		}
	})

	t.Run("list queries", func(t *testing.T) {
		fresh := newTestStore(t)
		userIDs := seedUsers(t, fresh, "p@x.com", "q@x.com")
		c := models.NewColocation("Flat 1", userIDs[0])
		if err := fresh.CreateColocation(ctx, c); err != nil {
			t.Fatal(err)
		}
		if err := fresh.AddColocationMembers(ctx, c.ID, userIDs[1:]); err != nil {
			t.Fatal(err)
		}

		seedExpense(t, fresh, c.ID, userIDs[0], "10.00", userIDs)
		seedExpense(t, fresh, c.ID, userIDs[1], "20.00", []string{userIDs[1]})

		byColoc, err := fresh.ListExpensesByColocation(ctx, c.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(byColoc) != 2 {
			t.Errorf("by colocation = %d, want 2", len(byColoc))
		}

		byPayer, err := fresh.ListExpensesByPayer(ctx, userIDs[1])
		if err != nil {
			t.Fatal(err)
		}
		if len(byPayer) != 1 {
			t.Errorf("by payer = %d, want 1", len(byPayer))
		}

		byParticipant, err := fresh.ListExpensesByParticipant(ctx, userIDs[0])
		if err != nil {
			t.Fatal(err)
		}
		if len(byParticipant) != 1 {
			t.Errorf("by participant = %d, want 1", len(byParticipant))
		}
	})
}
