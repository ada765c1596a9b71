package service

import (
	"context"

	"github.com/colocash/colocash/internal/models"
	"github.com/colocash/colocash/internal/storage"
)

// newTestUser seeds a user directly, bypassing the registration flow.
func newTestUser(ctx context.Context, store storage.Store, email string) (string, error) {
	user := models.NewUser(email, email, "test-hash")
	if err := store.CreateUser(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}
