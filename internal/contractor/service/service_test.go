package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	branchrepo "github.com/smallbiznis/branchops/internal/branch/repository"
	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/config"
	"github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/events"
	identitydomain "github.com/smallbiznis/branchops/internal/identity/domain"
	"github.com/smallbiznis/branchops/internal/identity/mocks"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	profilerepo "github.com/smallbiznis/branchops/internal/profile/repository"
	"github.com/smallbiznis/branchops/internal/slug"
	"github.com/smallbiznis/branchops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	svc      *Service
	store    docstore.Store
	repo     domain.Repository
	profiles profiledomain.Repository
	identity *mocks.MockProvider
	events   *events.Recorder
	clock    *clock.FakeClock
}

func newHarness(t *testing.T, branchIDs ...string) *harness {
	t.Helper()
	conn, err := db.NewTest(&docstore.Node{})
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.UnixMilli(1_700_000_000_000))
	store := docstore.NewSQLStore(conn, zap.NewNop(), clk)
	branches := branchrepo.New(store)
	for _, id := range branchIDs {
		require.NoError(t, branches.Insert(context.Background(), branchdomain.Branch{ID: id, Name: id, Active: true}))
	}

	h := &harness{
		store:    store,
		repo:     repository.New(store),
		profiles: profilerepo.New(store, clk),
		identity: mocks.NewMockProvider(gomock.NewController(t)),
		events:   &events.Recorder{},
		clock:    clk,
	}
	h.svc = New(Params{
		Log:      zap.NewNop(),
		Repo:     h.repo,
		Branches: branches,
		Profiles: h.profiles,
		Identity: h.identity,
		Clock:    clk,
		Rules:    config.StaticMembershipRules(config.DefaultMembershipRules()),
		Events:   h.events,
	}).(*Service)
	return h
}

func (h *harness) pending(t *testing.T, id string) *domain.Contractor {
	t.Helper()
	c, err := h.repo.GetPending(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (h *harness) branchIDs(t *testing.T, id string) []string {
	t.Helper()
	ids, err := h.repo.BranchIDs(context.Background(), id)
	require.NoError(t, err)
	return ids
}

func TestGetMissingCopyReturnsNil(t *testing.T) {
	h := newHarness(t, "bogota")
	c, err := h.svc.Get(context.Background(), "bogota", "missing-x1x1x")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestGetStampsIDFromPath(t *testing.T) {
	h := newHarness(t, "bogota")
	ctx := context.Background()
	path, err := repository.CopyPath("bogota", "acme-abcde")
	require.NoError(t, err)
	require.NoError(t, h.store.Set(ctx, path, docstore.Document{"id": "stale", "nombre": "Acme", "activo": true}))

	c, err := h.svc.Get(ctx, "bogota", "acme-abcde")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "acme-abcde", c.ID)
	assert.Equal(t, "Acme", c.Name)
}

func TestDiff(t *testing.T) {
	diff := domain.Diff([]string{"A", "B"}, []string{"B", "C"}, "")
	assert.Equal(t, []string{"C"}, diff.Add)
	assert.Equal(t, []string{"A"}, diff.Remove)

	diff = domain.Diff([]string{"A", "B"}, []string{"C"}, "A")
	assert.Equal(t, []string{"C"}, diff.Add)
	assert.Equal(t, []string{"B"}, diff.Remove)

	assert.True(t, domain.Diff([]string{"A"}, []string{" A ", ""}, "").Empty())
}

func TestCreateInBranchLinksAdmin(t *testing.T) {
	h := newHarness(t, "bogota")
	ctx := context.Background()

	h.identity.EXPECT().
		CreateAccount(gomock.Any(), identitydomain.CreateAccountRequest{Email: "ops@acme.co", Password: "secreto", DisplayName: "Ana"}).
		Return(&identitydomain.Account{UID: "uid-ana", Email: "ops@acme.co"}, nil)

	c, err := h.svc.CreateInBranch(ctx, "bogota", domain.CreateContractorRequest{
		Name:     "Acme",
		Contact:  domain.Contact{Name: "Ana", Email: "ops@acme.co"},
		Password: "secreto",
		Actor:    "root",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^acme-[0-9a-z]{5}$`, c.ID)
	assert.Equal(t, "uid-ana", c.AdminUID)
	assert.Equal(t, map[string]bool{"uid-ana": true}, c.Admins)
	assert.Equal(t, []string{"bogota"}, h.branchIDs(t, c.ID))

	profile, err := h.profiles.Get(ctx, "uid-ana")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "bogota", profile.BranchID)
	assert.Equal(t, c.ID, profile.ContractorID)
	assert.Equal(t, profiledomain.RoleContractorAdmin, profile.Role)
	assert.Equal(t, profiledomain.StatusActive, profile.Status)
	assert.Equal(t, "ops@acme.co", profile.Email)

	link, err := h.repo.GetAdminLink(ctx, "uid-ana")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, domain.AdminLink{BranchID: "bogota", ContractorID: c.ID, CreatedAt: 1_700_000_000_000}, *link)
}

func TestCreateInUnknownBranchWritesNothing(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.CreateInBranch(context.Background(), "nowhere", domain.CreateContractorRequest{
		Name:     "Acme",
		Contact:  domain.Contact{Email: "ops@acme.co"},
		Password: "secreto",
	})
	assert.ErrorIs(t, err, domain.ErrBranchNotFound)

	_, err = h.svc.Create(context.Background(), domain.CreateContractorRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func shortSuffixes(h *harness) {
	rules := config.DefaultMembershipRules()
	rules.ContractorSuffixLength = 1
	h.svc.rules = config.StaticMembershipRules(rules)
}

func TestGeneratedIDsNeverOverwriteExistingContractors(t *testing.T) {
	h := newHarness(t, "bogota")
	ctx := context.Background()
	shortSuffixes(h)

	seen := map[string]bool{}
	for i := 0; i < 60; i++ {
		c, err := h.svc.CreateInBranch(ctx, "bogota", domain.CreateContractorRequest{Name: "Acme"})
		if err != nil {
			require.ErrorIs(t, err, slug.ErrIDSpaceExhausted)
			continue
		}
		assert.False(t, seen[c.ID], "id %s handed out twice", c.ID)
		seen[c.ID] = true
	}
	require.NotEmpty(t, seen)
	assert.LessOrEqual(t, len(seen), 36)

	listed, err := h.svc.ListByBranch(ctx, "bogota")
	require.NoError(t, err)
	assert.Len(t, listed, len(seen))
}

func TestGeneratedIDFailsWhenEverySuffixIsTaken(t *testing.T) {
	h := newHarness(t, "bogota")
	ctx := context.Background()
	shortSuffixes(h)

	for _, r := range "0123456789abcdefghijklmnopqrstuvwxyz" {
		_, err := h.svc.CreateInBranch(ctx, "bogota", domain.CreateContractorRequest{ID: "acme-" + string(r), Name: "Acme"})
		require.NoError(t, err)
	}

	_, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Acme"})
	assert.ErrorIs(t, err, slug.ErrIDSpaceExhausted)
	_, err = h.svc.CreateInBranch(ctx, "bogota", domain.CreateContractorRequest{Name: "Acme"})
	assert.ErrorIs(t, err, slug.ErrIDSpaceExhausted)

	listed, err := h.svc.ListByBranch(ctx, "bogota")
	require.NoError(t, err)
	assert.Len(t, listed, 36)
}

func TestCreateWithSuppliedID(t *testing.T) {
	h := newHarness(t, "bogota", "cali")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{ID: " acme-001 ", Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme-001", c.ID)
	require.NotNil(t, h.pending(t, "acme-001"))

	_, err = h.svc.CreateInBranch(ctx, "bogota", domain.CreateContractorRequest{ID: "acme-001", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, "Acme", h.pending(t, "acme-001").Name)
	assert.Empty(t, h.branchIDs(t, "acme-001"))

	_, err = h.svc.Create(ctx, domain.CreateContractorRequest{ID: "a/b", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = h.svc.Create(ctx, domain.CreateContractorRequest{ID: "zeta-1", Name: "Zeta", BranchIDs: []string{"bogota", "cali"}})
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, domain.CreateContractorRequest{ID: "zeta-1", Name: "Zeta"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// A copy that the membership index does not know about still counts.
	path, err := repository.CopyPath("cali", "stray-1")
	require.NoError(t, err)
	require.NoError(t, h.store.Set(ctx, path, docstore.Document{"nombre": "Stray", "activo": true}))
	_, err = h.svc.Create(ctx, domain.CreateContractorRequest{ID: "stray-1", Name: "Nuevo", BranchIDs: []string{"bogota", "cali"}})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	stray, err := h.svc.Get(ctx, "cali", "stray-1")
	require.NoError(t, err)
	assert.Equal(t, "Stray", stray.Name)
}

func TestEditMembershipAddsAndRemoves(t *testing.T) {
	h := newHarness(t, "A", "B", "C")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Acme", AdminUID: "u1", BranchIDs: []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, h.branchIDs(t, c.ID))

	before, err := h.svc.Get(ctx, "B", c.ID)
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	diff, err := h.svc.EditMembership(ctx, "B", c.ID, []string{"A", "B"}, []string{"B", "C"}, "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, diff.Add)
	assert.Equal(t, []string{"A"}, diff.Remove)
	assert.Equal(t, []string{"B", "C"}, h.branchIDs(t, c.ID))

	anchor, err := h.svc.Get(ctx, "B", c.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, anchor.UpdatedAt)

	added, err := h.svc.Get(ctx, "C", c.ID)
	require.NoError(t, err)
	require.NotNil(t, added)
	assert.Equal(t, "u1", added.AdminUID)

	removed, err := h.svc.Get(ctx, "A", c.ID)
	require.NoError(t, err)
	assert.Nil(t, removed)

	// a non-last removal moves the admin onto a remaining branch
	profile, err := h.profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "B", profile.BranchID)
	assert.Equal(t, c.ID, profile.ContractorID)
	assert.Equal(t, profiledomain.StatusActive, profile.Status)
	link, err := h.repo.GetAdminLink(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, domain.AdminLink{BranchID: "B", ContractorID: c.ID, CreatedAt: 1_700_000_000_000}, *link)
	assert.Nil(t, h.pending(t, c.ID))
}

func TestRemovingLinkedBranchKeepsOtherLinksInPlace(t *testing.T) {
	h := newHarness(t, "A", "B", "C")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Acme", AdminUID: "u1", BranchIDs: []string{"B", "A", "C"}})
	require.NoError(t, err)

	// u1 is linked through B, the first branch it was created in.
	require.NoError(t, h.svc.Delete(ctx, "A", c.ID))
	profile, err := h.profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "B", profile.BranchID)

	require.NoError(t, h.svc.Delete(ctx, "B", c.ID))
	profile, err = h.profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "C", profile.BranchID)
	assert.Equal(t, profiledomain.StatusActive, profile.Status)
	link, err := h.repo.GetAdminLink(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "C", link.BranchID)
}

func TestEditMembershipDerivesExistingFromIndex(t *testing.T) {
	h := newHarness(t, "A", "B")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Beta", BranchIDs: []string{"A", "B"}})
	require.NoError(t, err)

	diff, err := h.svc.EditMembership(ctx, "A", c.ID, nil, []string{"A"}, "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, diff.Remove)
	assert.Equal(t, []string{"A"}, h.branchIDs(t, c.ID))
}

func TestRemovingLastCopyMakesContractorPending(t *testing.T) {
	h := newHarness(t, "A")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Acme", AdminUID: "u1", BranchIDs: []string{"A"}})
	require.NoError(t, err)

	require.NoError(t, h.svc.Delete(ctx, "A", c.ID))

	assert.Empty(t, h.branchIDs(t, c.ID))
	pending := h.pending(t, c.ID)
	require.NotNil(t, pending)
	assert.Equal(t, "Acme", pending.Name)
	assert.Equal(t, "u1", pending.AdminUID)

	profile, err := h.profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, profile.BranchID)
	assert.Empty(t, profile.ContractorID)
	assert.Equal(t, profiledomain.StatusPending, profile.Status)

	link, err := h.repo.GetAdminLink(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, link)

	// deleting again is a no-op
	require.NoError(t, h.svc.Delete(ctx, "A", c.ID))
}

func TestSettleRecoversFromConcurrentRemoval(t *testing.T) {
	h := newHarness(t, "A")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Gamma", AdminUID: "u9", BranchIDs: []string{"A"}})
	require.NoError(t, err)

	copyPath, _ := repository.CopyPath("A", c.ID)
	indexPath, _ := repository.MembershipPath(c.ID, "A")
	require.NoError(t, h.store.Update(ctx, docstore.Updates{copyPath: nil, indexPath: nil}))
	assert.Nil(t, h.pending(t, c.ID))

	require.NoError(t, h.svc.settle(ctx, *c, ""))
	require.NoError(t, h.svc.settle(ctx, *c, ""))

	require.NotNil(t, h.pending(t, c.ID))
	profile, err := h.profiles.Get(ctx, "u9")
	require.NoError(t, err)
	assert.Equal(t, profiledomain.StatusPending, profile.Status)
	assert.Empty(t, profile.BranchID)
}

func TestSettleMovesLinkOffVanishedBranch(t *testing.T) {
	h := newHarness(t, "A", "B", "C")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Gamma", AdminUID: "u9", BranchIDs: []string{"A", "B", "C"}})
	require.NoError(t, err)

	// both removals run in one edit; whichever order they land in, the link
	// must end on the only branch left
	_, err = h.svc.EditMembership(ctx, "C", c.ID, nil, []string{"C"}, "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, h.branchIDs(t, c.ID))

	profile, err := h.profiles.Get(ctx, "u9")
	require.NoError(t, err)
	assert.Equal(t, "C", profile.BranchID)
	assert.Equal(t, profiledomain.StatusActive, profile.Status)
	link, err := h.repo.GetAdminLink(ctx, "u9")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "C", link.BranchID)

	require.NoError(t, h.svc.settle(ctx, *c, ""))
	assert.Nil(t, h.pending(t, c.ID))
}

func TestListAllKeepsFreshestCopy(t *testing.T) {
	h := newHarness(t, "A", "B")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Acme", BranchIDs: []string{"A", "B"}})
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Zeta"})
	require.NoError(t, err)

	h.clock.Advance(time.Hour)
	name := "Acme Norte"
	_, err = h.svc.Update(ctx, "B", c.ID, domain.UpdateContractorRequest{Name: &name})
	require.NoError(t, err)

	rows, err := h.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, c.ID, rows[0].ID)
	assert.Equal(t, "Acme Norte", rows[0].Name)
	assert.Equal(t, []string{"A", "B"}, rows[0].BranchIDs)
	assert.False(t, rows[0].Pending)
	assert.Equal(t, "Zeta", rows[1].Name)
	assert.True(t, rows[1].Pending)

	other, err := h.svc.Get(ctx, "A", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", other.Name)
}

func TestListAllSkipsPendingWhoseAdminIsClaimed(t *testing.T) {
	h := newHarness(t, "A")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Delta", AdminUID: "u7"})
	require.NoError(t, err)
	require.NoError(t, h.profiles.Update(ctx, "u7", map[string]any{"branchId": "A"}))

	rows, err := h.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	pending, err := h.svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	stored, err := h.svc.GetPending(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Delta", stored.Name)
}

func TestListPendingHidesRecordsWithACopy(t *testing.T) {
	h := newHarness(t, "A")
	ctx := context.Background()

	assigned, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Acme", BranchIDs: []string{"A"}})
	require.NoError(t, err)
	waiting, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Beta"})
	require.NoError(t, err)

	// a pending record left behind next to a live copy
	path, err := repository.PendingPath(assigned.ID)
	require.NoError(t, err)
	require.NoError(t, h.store.Set(ctx, path, docstore.Document{"nombre": "Acme", "activo": true}))

	pending, err := h.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, waiting.ID, pending[0].ID)

	rows, err := h.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Pending)
	assert.True(t, rows[1].Pending)
}

func TestUpdateEverywhereMergesEveryCopy(t *testing.T) {
	h := newHarness(t, "A", "B")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Acme", TaxID: "900", BranchIDs: []string{"A", "B"}})
	require.NoError(t, err)

	nit := "901"
	require.NoError(t, h.svc.UpdateEverywhere(ctx, c.ID, domain.UpdateContractorRequest{TaxID: &nit, Actor: "root"}))
	for _, branchID := range []string{"A", "B"} {
		stored, err := h.svc.Get(ctx, branchID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "901", stored.TaxID)
		assert.Equal(t, "Acme", stored.Name)
	}
}

func TestPendingLifecycleScenario(t *testing.T) {
	h := newHarness(t, "bogota")
	ctx := context.Background()

	h.identity.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		Return(&identitydomain.Account{UID: "uid-acme", Email: "admin@acme.co"}, nil)

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{
		Name:     "Acme",
		Contact:  domain.Contact{Email: "admin@acme.co"},
		Password: "secreto",
	})
	require.NoError(t, err)
	require.NotNil(t, h.pending(t, c.ID))
	assert.Empty(t, h.branchIDs(t, c.ID))

	profile, err := h.profiles.Get(ctx, "uid-acme")
	require.NoError(t, err)
	assert.Equal(t, profiledomain.StatusPending, profile.Status)

	_, err = h.svc.AssignPending(ctx, c.ID, []string{"bogota"}, "root")
	require.NoError(t, err)
	assert.Nil(t, h.pending(t, c.ID))
	assert.Equal(t, []string{"bogota"}, h.branchIDs(t, c.ID))

	profile, err = h.profiles.Get(ctx, "uid-acme")
	require.NoError(t, err)
	assert.Equal(t, "bogota", profile.BranchID)
	assert.Equal(t, profiledomain.StatusActive, profile.Status)

	rows, err := h.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Pending)

	require.NoError(t, h.svc.Delete(ctx, "bogota", c.ID))
	again := h.pending(t, c.ID)
	require.NotNil(t, again)
	assert.Equal(t, "Acme", again.Name)
	assert.Empty(t, h.branchIDs(t, c.ID))

	assert.Equal(t, []string{
		events.TypeContractorPending,
		events.TypeContractorAssigned,
		events.TypeContractorPending,
	}, h.events.Types())
}

func TestAssignPendingRequiresBranches(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{Name: "Omega"})
	require.NoError(t, err)

	_, err = h.svc.AssignPending(ctx, c.ID, nil, "root")
	assert.ErrorIs(t, err, domain.ErrInvalidBranches)

	_, err = h.svc.AssignPending(ctx, c.ID, []string{"ghost"}, "root")
	assert.ErrorIs(t, err, domain.ErrBranchNotFound)
	assert.NotNil(t, h.pending(t, c.ID))
}

func TestLookups(t *testing.T) {
	h := newHarness(t, "A", "B")
	ctx := context.Background()

	c, err := h.svc.Create(ctx, domain.CreateContractorRequest{
		Name:      "Acme",
		Contact:   domain.Contact{Email: "Ops@Acme.co"},
		BranchIDs: []string{"B", "A"},
	})
	require.NoError(t, err)

	id, err := h.svc.FindIDByEmail(ctx, "ops@acme.CO")
	require.NoError(t, err)
	assert.Equal(t, c.ID, id)

	branches, err := h.svc.BranchesForContractor(ctx, "", "ops@acme.co")
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "A", branches[0].ID)

	none, err := h.svc.BranchesForContractor(ctx, "", "nobody@acme.co")
	require.NoError(t, err)
	assert.Empty(t, none)

	kpis, err := h.svc.KPIs(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, domain.KPIs{Total: 1, Active: 1}, kpis)
}
