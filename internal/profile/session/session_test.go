package session

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/profile/domain"
	"github.com/smallbiznis/branchops/internal/profile/repository"
	"github.com/smallbiznis/branchops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRepo(t *testing.T) (domain.Repository, docstore.Store) {
	t.Helper()
	conn, err := db.NewTest(&docstore.Node{})
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.UnixMilli(1_700_000_000_000))
	store := docstore.NewSQLStore(conn, zap.NewNop(), clk)
	return repository.New(store, clk), store
}

func TestSessionRefreshAndLocalPatch(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	s, err := Load(ctx, "u1", "ana@acme.co", repo)
	require.NoError(t, err)
	assert.Nil(t, s.Profile())
	assert.Equal(t, "viewer", s.Role())

	require.NoError(t, repo.Create(ctx, domain.Profile{UID: "u1", Role: domain.RoleContractorAdmin, ContractorID: "acme-x1y2z", Status: domain.StatusActive}))
	require.NoError(t, s.Refresh(ctx))
	assert.True(t, s.IsContractor())
	assert.False(t, s.IsGlobalAdmin())
	assert.Equal(t, "acme-x1y2z", s.Profile().ContractorID)

	s.ApplyLocalPatch(func(p *domain.Profile) { p.DisplayName = "Ana" })
	assert.Equal(t, "Ana", s.Profile().DisplayName)

	stored, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored.DisplayName, "local patch must not write through")
}

func TestGlobalAdminRole(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	require.NoError(t, repo.Create(ctx, domain.Profile{UID: "root", IsGlobalAdmin: true, Role: domain.RoleAdmin}))

	s, err := Load(ctx, "root", "root@acme.co", repo)
	require.NoError(t, err)
	assert.True(t, s.IsGlobalAdmin())
	assert.Equal(t, "global_admin", s.Role())

	ctx = WithSession(ctx, s)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "root", got.UID())
}

func TestRepositoryUpdateStampsAndCleans(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)
	require.NoError(t, repo.Create(ctx, domain.Profile{UID: "u1", FirstName: "Ana", Phone: "300"}))

	require.NoError(t, repo.Update(ctx, "u1", map[string]any{"first_name": " Ana María ", "phone": "", "bio": nil}))

	doc, err := store.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana María", doc["first_name"])
	assert.Equal(t, "300", doc["phone"])
	assert.NotContains(t, doc, "bio")
	assert.EqualValues(t, 1_700_000_000_000, doc["updated_at"])
}

func TestApplyLocalPatchWithEditableFields(t *testing.T) {
	s := New("u2", "luis@acme.co", nil)
	s.ApplyLocalPatch(func(p *domain.Profile) {
		p.SetEditable("first_name", "Luis")
		p.SetEditable("address_city_state", "Antioquia")
		p.SetEditable("role", "admin")
	})

	profile := s.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, "Luis", profile.FirstName)
	assert.Equal(t, "Antioquia", profile.AddressCityState)
	assert.Equal(t, domain.Role(""), profile.Role)
	assert.Equal(t, "luis@acme.co", profile.Email)
}
