package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/colocash/colocash/internal/models"
	"github.com/colocash/colocash/internal/storage"
)

// CreateColocation persists a colocation and its initial members.
func (s *SQLiteStore) CreateColocation(ctx context.Context, coloc *models.Colocation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO colocations (id, name, created_at) VALUES (?, ?, ?)",
		coloc.ID, coloc.Name, coloc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert colocation: %w", err)
	}

	now := time.Now().Unix()
	for _, memberID := range coloc.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO colocation_members (colocation_id, member_id, joined_at) VALUES (?, ?, ?)",
			coloc.ID, memberID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetColocation retrieves a colocation with its full member list.
func (s *SQLiteStore) GetColocation(ctx context.Context, id string) (*models.Colocation, error) {
	coloc := &models.Colocation{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM colocations WHERE id = ?", id,
	).Scan(&coloc.ID, &coloc.Name, &coloc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("colocation %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get colocation: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM colocation_members WHERE colocation_id = ? ORDER BY joined_at, member_id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		coloc.Members = append(coloc.Members, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return coloc, nil
}

// ListUserColocations returns every colocation the member belongs to.
func (s *SQLiteStore) ListUserColocations(ctx context.Context, memberID string) ([]models.Colocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id FROM colocations c
		 JOIN colocation_members m ON m.colocation_id = c.id
		 WHERE m.member_id = ?
		 ORDER BY c.created_at DESC, c.id`,
		memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list colocations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan colocation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate colocations: %w", err)
	}

	var colocs []models.Colocation
	for _, id := range ids {
		coloc, err := s.GetColocation(ctx, id)
		if err != nil {
			return nil, err
		}
		colocs = append(colocs, *coloc)
	}
	return colocs, nil
}

// AddColocationMembers adds members to a colocation. Adding an existing member
// violates the primary key and surfaces as storage.ErrDuplicate.
func (s *SQLiteStore) AddColocationMembers(ctx context.Context, colocationID string, memberIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, memberID := range memberIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO colocation_members (colocation_id, member_id, joined_at) VALUES (?, ?, ?)",
			colocationID, memberID, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("member %s: %w", memberID, storage.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsColocationMember reports whether memberID belongs to the colocation.
func (s *SQLiteStore) IsColocationMember(ctx context.Context, colocationID, memberID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM colocation_members WHERE colocation_id = ? AND member_id = ?",
		colocationID, memberID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// isUniqueViolation detects a SQLite unique/primary-key constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
