package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/colocash/colocash/internal/errs"
	"github.com/colocash/colocash/internal/models"
	"github.com/colocash/colocash/internal/storage"
)

// ColocationService manages households and their membership.
type ColocationService struct {
	store storage.Store
}

// NewColocationService creates a new ColocationService with the given storage backend.
func NewColocationService(store storage.Store) *ColocationService {
	return &ColocationService{store: store}
}

// CreateColocation creates a household with the caller as its first member.
func (s *ColocationService) CreateColocation(ctx context.Context, creatorID, name string) (*ColocationView, error) {
	if name == "" {
		return nil, errs.Invalid("colocation name required")
	}

	coloc := models.NewColocation(name, creatorID)
	if err := s.store.CreateColocation(ctx, coloc); err != nil {
		return nil, errs.Internal(err, "failed to persist colocation")
	}

	slog.Info("Colocation created", "colocation_id", coloc.ID, "creator_id", creatorID)
	return newColocationView(coloc), nil
}

// GetColocation returns a colocation; the caller must be a member.
func (s *ColocationService) GetColocation(ctx context.Context, colocationID, callerID string) (*ColocationView, error) {
	coloc, err := s.loadColocation(ctx, colocationID)
	if err != nil {
		return nil, err
	}
	if !coloc.HasMember(callerID) {
		return nil, errs.Forbidden("you are not a member of this colocation")
	}
	return newColocationView(coloc), nil
}

// ListColocations returns every colocation the caller belongs to.
func (s *ColocationService) ListColocations(ctx context.Context, callerID string) ([]ColocationView, error) {
	colocs, err := s.store.ListUserColocations(ctx, callerID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list colocations")
	}

	views := make([]ColocationView, len(colocs))
	for i := range colocs {
		views[i] = *newColocationView(&colocs[i])
	}
	return views, nil
}

// AddMember adds a registered user to a colocation. The caller must already
// be a member; adding someone twice is a conflict.
func (s *ColocationService) AddMember(ctx context.Context, colocationID, callerID, memberID string) (*ColocationView, error) {
	coloc, err := s.loadColocation(ctx, colocationID)
	if err != nil {
		return nil, err
	}
	if !coloc.HasMember(callerID) {
		return nil, errs.Forbidden("only members can add new members")
	}

	if _, err := s.store.GetUserByID(ctx, memberID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errs.NotFound("user %s not found", memberID)
		}
		return nil, errs.Internal(err, "failed to load user")
	}

	if err := s.store.AddColocationMembers(ctx, colocationID, []string{memberID}); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, errs.Conflict("user is already a member")
		}
		return nil, errs.Internal(err, "failed to add member")
	}

	slog.Info("Member added", "colocation_id", colocationID, "member_id", memberID)
	return s.GetColocation(ctx, colocationID, callerID)
}

func (s *ColocationService) loadColocation(ctx context.Context, colocationID string) (*models.Colocation, error) {
	coloc, err := s.store.GetColocation(ctx, colocationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errs.NotFound("colocation %s not found", colocationID)
		}
		return nil, errs.Internal(err, "failed to load colocation")
	}
	return coloc, nil
}
