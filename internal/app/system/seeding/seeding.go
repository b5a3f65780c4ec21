// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"errors"
	"fmt"

	adminstore "github.com/dalemusser/reelfolio/internal/app/store/admins"
	"github.com/dalemusser/reelfolio/internal/app/system/authutil"
	"github.com/dalemusser/reelfolio/internal/app/system/normalize"
	"github.com/dalemusser/reelfolio/internal/domain/models"
	"go.uber.org/zap"
)

// ErrNoAdminPassword is returned when the admin must be created but no
// password is configured.
var ErrNoAdminPassword = errors.New("admin_password is required to create the admin account")

// AdminStore is the subset of the admin store used for seeding.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (models.Admin, error)
	Create(ctx context.Context, a models.Admin) (models.Admin, error)
}

// AdminSeed holds the configured admin identity.
type AdminSeed struct {
	Username string
	Password string
	Email    string
}

// EnsureAdmin creates the admin account if no record with the configured
// username exists. An existing record is left untouched, including its
// password, so changing admin_password after first start has no effect.
func EnsureAdmin(ctx context.Context, store AdminStore, seed AdminSeed, logger *zap.Logger) (bool, error) {
	username := normalize.Username(seed.Username)
	if username == "" {
		return false, errors.New("admin_username is required")
	}

	_, err := store.GetByUsername(ctx, username)
	if err == nil {
		logger.Debug("admin account present", zap.String("username", username))
		return false, nil
	}
	if !errors.Is(err, adminstore.ErrNotFound) {
		logger.Error("failed to look up admin account", zap.String("username", username), zap.Error(err))
		return false, err
	}

	if seed.Password == "" {
		return false, ErrNoAdminPassword
	}
	if err := authutil.ValidatePassword(seed.Password); err != nil {
		// Weak bootstrap passwords are allowed but flagged.
		logger.Warn("configured admin password is weak", zap.Error(err))
	}

	hash, err := authutil.HashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := store.Create(ctx, models.Admin{
		Username:     username,
		PasswordHash: hash,
		Email:        normalize.Email(seed.Email),
	}); err != nil {
		logger.Error("failed to create admin account", zap.String("username", username), zap.Error(err))
		return false, err
	}

	logger.Info("created admin account", zap.String("username", username))
	return true, nil
}
