package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/internal/branch/repository"
	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/config"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/slug"
	"github.com/smallbiznis/branchops/pkg/db"
	"github.com/smallbiznis/branchops/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, rules config.MembershipRules) (domain.Service, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest(&docstore.Node{})
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.UnixMilli(1_700_000_000_000))
	store := docstore.NewSQLStore(conn, zap.NewNop(), clk)
	svc := New(Params{
		Log:   zap.NewNop(),
		Repo:  repository.New(store),
		Clock: clk,
		Rules: config.StaticMembershipRules(rules),
	})
	return svc, clk
}

func TestCreateProbesNumericSuffixes(t *testing.T) {
	svc, _ := newTestService(t, config.DefaultMembershipRules())
	ctx := context.Background()

	req := domain.CreateBranchRequest{Name: "Sede Bogotá", Department: "Cundinamarca", Municipality: "Bogotá", Actor: "u1"}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "cundinamarca-bogota", first.ID)
	assert.True(t, first.Active)
	assert.Equal(t, "bogota", first.MunicipalitySlug)

	second, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "cundinamarca-bogota-2", second.ID)

	third, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "cundinamarca-bogota-3", third.ID)

	stored, err := svc.Get(ctx, "cundinamarca-bogota-2")
	require.NoError(t, err)
	assert.Equal(t, "Sede Bogotá", stored.Name)
	assert.Equal(t, int64(1_700_000_000_000), stored.CreatedAt)
	assert.Equal(t, "u1", stored.CreatedBy)
}

func TestCreateGivesUpAfterProbeLimit(t *testing.T) {
	rules := config.DefaultMembershipRules()
	rules.BranchProbeLimit = 2
	svc, _ := newTestService(t, rules)
	ctx := context.Background()

	req := domain.CreateBranchRequest{Name: "Medellín", Department: "Antioquia", Municipality: "Medellín"}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, slug.ErrIDSpaceExhausted)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateValidatesBeforeWriting(t *testing.T) {
	svc, _ := newTestService(t, config.DefaultMembershipRules())
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateBranchRequest{Department: "Antioquia", Municipality: "Envigado"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateBranchRequest{Name: "X", Department: "  ", Municipality: "Envigado"})
	assert.ErrorIs(t, err, domain.ErrInvalidDepartment)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetMissingBranch(t *testing.T) {
	svc, _ := newTestService(t, config.DefaultMembershipRules())
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateKeepsIDAndStampsAudit(t *testing.T) {
	svc, clk := newTestService(t, config.DefaultMembershipRules())
	ctx := context.Background()

	b, err := svc.Create(ctx, domain.CreateBranchRequest{
		Name: "Cali", Department: "Valle del Cauca", Municipality: "Cali",
		DaneMunicipality: "76001",
	})
	require.NoError(t, err)

	clk.Advance(time.Minute)
	name := "Sede Cali Sur"
	mun := "Jamundí"
	blank := ""
	updated, err := svc.Update(ctx, b.ID, domain.UpdateBranchRequest{
		Name:             &name,
		Municipality:     &mun,
		DaneMunicipality: &blank,
		Contact:          &domain.Contact{Email: " sur@example.com "},
		Actor:            "u2",
	})
	require.NoError(t, err)
	assert.Equal(t, "valle-del-cauca-cali", updated.ID)
	assert.Equal(t, "Sede Cali Sur", updated.Name)
	assert.Equal(t, "jamundi", updated.MunicipalitySlug)
	assert.Empty(t, updated.DaneMunicipality)
	assert.Equal(t, "sur@example.com", updated.Contact.Email)
	assert.Equal(t, int64(1_700_000_060_000), updated.UpdatedAt)
	assert.Equal(t, "u2", updated.UpdatedBy)
}

func TestPageAndKPIs(t *testing.T) {
	svc, _ := newTestService(t, config.DefaultMembershipRules())
	ctx := context.Background()

	for _, mun := range []string{"Armenia", "Calarca", "Montenegro"} {
		_, err := svc.Create(ctx, domain.CreateBranchRequest{Name: mun, Department: "Quindío", Municipality: mun})
		require.NoError(t, err)
	}
	require.NoError(t, svc.ToggleActive(ctx, "quindio-calarca", false, "u1"))

	kpis, err := svc.KPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.KPIs{Total: 3, Active: 2}, kpis)

	page, info, err := svc.Page(ctx, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "quindio-armenia", page[0].ID)
	assert.True(t, info.HasMore)
	assert.Equal(t, "quindio-montenegro", info.NextStartKey)

	rest, info, err := svc.Page(ctx, pagination.Pagination{StartKey: info.NextStartKey, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.False(t, info.HasMore)
}
