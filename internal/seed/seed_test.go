package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/config"
	"github.com/smallbiznis/branchops/internal/docstore"
	identityrepo "github.com/smallbiznis/branchops/internal/identity/repository"
	identityservice "github.com/smallbiznis/branchops/internal/identity/service"
	"github.com/smallbiznis/branchops/internal/identity/token"
	"github.com/smallbiznis/branchops/internal/migration"
	profilerepo "github.com/smallbiznis/branchops/internal/profile/repository"
	"github.com/smallbiznis/branchops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureGlobalAdminIsIdempotent(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.UnixMilli(1_700_000_000_000))
	accounts := identityrepo.New(conn)
	identity := identityservice.New(identityservice.Params{
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   accounts,
		Tokens: token.NewIssuer("test-secret", "branchops", time.Hour),
		Clock:  clk,
	})
	profiles := profilerepo.New(docstore.NewSQLStore(conn, zap.NewNop(), clk), clk)

	cfg := config.BootstrapConfig{AdminEmail: "Root@Example.com", AdminPassword: "cambiame"}
	ctx := context.Background()

	uid, err := EnsureGlobalAdmin(ctx, accounts, identity, profiles, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	again, err := EnsureGlobalAdmin(ctx, accounts, identity, profiles, cfg)
	require.NoError(t, err)
	assert.Equal(t, uid, again)

	profile, err := profiles.Get(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.True(t, profile.IsGlobalAdmin)
	assert.Equal(t, "root@example.com", profile.Email)
	assert.Equal(t, defaultAdminDisplay, profile.DisplayName)

	skipped, err := EnsureGlobalAdmin(ctx, accounts, identity, profiles, config.BootstrapConfig{})
	require.NoError(t, err)
	assert.Empty(t, skipped)
}
