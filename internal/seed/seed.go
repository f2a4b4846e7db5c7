// Package seed bootstraps the global administrator on startup.
package seed

import (
	"context"
	"strings"

	"github.com/smallbiznis/branchops/internal/config"
	identitydomain "github.com/smallbiznis/branchops/internal/identity/domain"
	"github.com/smallbiznis/branchops/internal/migration"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultAdminDisplay = "Administrador"

var Module = fx.Module("seed",
	fx.Invoke(Run),
)

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Accounts identitydomain.Repository
	Identity identitydomain.Provider
	Profiles profiledomain.Repository
	Migrated migration.Migrated
}

func Run(p Params) error {
	uid, err := EnsureGlobalAdmin(context.Background(), p.Accounts, p.Identity, p.Profiles, p.Config.Bootstrap)
	if err != nil {
		return err
	}
	if uid != "" {
		p.Log.Info("global admin ready", zap.String("uid", uid))
	}
	return nil
}

// EnsureGlobalAdmin creates the bootstrap account when missing and flags its
// profile as global admin. It returns "" when no bootstrap email is set.
func EnsureGlobalAdmin(
	ctx context.Context,
	accounts identitydomain.Repository,
	identity identitydomain.Provider,
	profiles profiledomain.Repository,
	cfg config.BootstrapConfig,
) (string, error) {
	email := identitydomain.NormalizeEmail(cfg.AdminEmail)
	if email == "" {
		return "", nil
	}
	displayName := strings.TrimSpace(cfg.AdminDisplayName)
	if displayName == "" {
		displayName = defaultAdminDisplay
	}

	account, err := accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if account == nil {
		account, err = identity.CreateAccount(ctx, identitydomain.CreateAccountRequest{
			Email:       email,
			Password:    cfg.AdminPassword,
			DisplayName: displayName,
		})
		if err != nil {
			return "", err
		}
	}

	profile, err := profiles.Get(ctx, account.UID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return account.UID, profiles.Create(ctx, profiledomain.Profile{
			UID:           account.UID,
			IsGlobalAdmin: true,
			Role:          profiledomain.RoleAdmin,
			Status:        profiledomain.StatusActive,
			Email:         account.Email,
			DisplayName:   displayName,
		})
	}
	if profile.IsGlobalAdmin {
		return account.UID, nil
	}
	return account.UID, profiles.Update(ctx, account.UID, map[string]any{"is_global_admin": true})
}
