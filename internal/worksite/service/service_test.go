package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/branchops/internal/clock"
	contractordomain "github.com/smallbiznis/branchops/internal/contractor/domain"
	contractorrepo "github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/worksite/domain"
	"github.com/smallbiznis/branchops/internal/worksite/repository"
	"github.com/smallbiznis/branchops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, docstore.Store, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest(&docstore.Node{})
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.UnixMilli(1_700_000_000_000))
	store := docstore.NewSQLStore(conn, zap.NewNop(), clk)
	svc := New(Params{
		Log:         zap.NewNop(),
		Repo:        repository.New(store),
		Contractors: contractorrepo.New(store),
		Clock:       clk,
	})
	return svc, store, clk
}

func seedContractor(t *testing.T, store docstore.Store, branchID string, c contractordomain.Contractor) {
	t.Helper()
	path, err := contractorrepo.CopyPath(branchID, c.ID)
	require.NoError(t, err)
	doc, err := contractorrepo.Encode(c)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), path, doc))
}

func TestCentroLifecycle(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()
	seedContractor(t, store, "bogota", contractordomain.Contractor{ID: "acme-1", Name: "Acme", Active: true})
	scope := domain.Scope{BranchID: "bogota", ContractorID: "acme-1"}

	_, err := svc.CreateCentro(ctx, domain.Scope{BranchID: "bogota", ContractorID: "ghost"}, domain.CreateCentroRequest{Name: "Norte"})
	assert.ErrorIs(t, err, domain.ErrParentNotFound)

	norte, err := svc.CreateCentro(ctx, scope, domain.CreateCentroRequest{Name: " Norte ", Code: "N1", Actor: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Norte", norte.Name)
	assert.True(t, norte.Active)
	assert.Len(t, norte.ID, 26)

	clk.Advance(time.Second)
	_, err = svc.CreateCentro(ctx, scope, domain.CreateCentroRequest{Name: "Álamos"})
	require.NoError(t, err)

	list, err := svc.ListCentros(ctx, scope)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Álamos", list[0].Name)

	desc := "Sede principal"
	updated, err := svc.UpdateCentro(ctx, scope, norte.ID, domain.UpdateCentroRequest{Description: &desc, Actor: "u2"})
	require.NoError(t, err)
	assert.Equal(t, "Sede principal", updated.Description)
	assert.Equal(t, "N1", updated.Code)
	assert.Equal(t, "u2", updated.UpdatedBy)

	require.NoError(t, svc.ToggleCentro(ctx, scope, norte.ID, false, "u2"))
	got, err := svc.GetCentro(ctx, scope, norte.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	require.NoError(t, svc.DeleteCentro(ctx, scope, norte.ID))
	_, err = svc.GetCentro(ctx, scope, norte.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCentro(ctx, scope, norte.ID), domain.ErrNotFound)
}

func TestVehiculosByBranch(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	seedContractor(t, store, "cali", contractordomain.Contractor{ID: "acme-1", Name: "Acme", Active: true})
	seedContractor(t, store, "cali", contractordomain.Contractor{ID: "beta-2", Name: "Beta", Active: true})

	scope := domain.Scope{BranchID: "cali", ContractorID: "acme-1"}
	centro, err := svc.CreateCentro(ctx, scope, domain.CreateCentroRequest{Name: "Centro"})
	require.NoError(t, err)
	scope.CentroID = centro.ID

	_, err = svc.CreateVehiculo(ctx, domain.Scope{BranchID: "cali", ContractorID: "acme-1", CentroID: centro.ID, SubcentroID: "nope"},
		domain.CreateVehiculoRequest{EquipmentTypeID: "volqueta"})
	assert.ErrorIs(t, err, domain.ErrParentNotFound)

	sub, err := svc.CreateSubcentro(ctx, scope, domain.CreateSubcentroRequest{Name: "Patio"})
	require.NoError(t, err)
	scope.SubcentroID = sub.ID

	_, err = svc.CreateVehiculo(ctx, scope, domain.CreateVehiculoRequest{EquipmentTypeID: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidEquipmentType)

	v, err := svc.CreateVehiculo(ctx, scope, domain.CreateVehiculoRequest{
		EquipmentTypeID:   "volqueta",
		TankCapacityGal:   60,
		ConsumptionL100km: 32.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "cali", v.BranchID)
	assert.Equal(t, sub.ID, v.SubcentroID)

	capacity := 75.0
	updated, err := svc.UpdateVehiculo(ctx, scope, v.ID, domain.UpdateVehiculoRequest{TankCapacityGal: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.TankCapacityGal)
	assert.Equal(t, 32.5, updated.ConsumptionL100km)

	rows, err := svc.ListVehiculosByBranch(ctx, "cali")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].ContractorName)
	assert.Equal(t, "Patio", rows[0].SubcentroName)
	assert.Equal(t, centro.ID, rows[0].CentroID)

	require.NoError(t, svc.DeleteSubcentro(ctx, scope, sub.ID))
	rows, err = svc.ListVehiculosByBranch(ctx, "cali")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
