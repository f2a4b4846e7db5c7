package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/branchops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorizeByRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		role    string
		object  string
		action  string
		allowed bool
	}{
		{RoleGlobalAdmin, ObjectContractorPending, ActionPendingAssign, true},
		{"branch_admin", ObjectContractor, ActionMembershipEdit, true},
		{"branch_admin", ObjectBranch, ActionCreate, false},
		{"auditor", ObjectReport, ActionView, true},
		{"auditor", ObjectContractor, ActionUpdate, false},
		{"contractor_admin", ObjectWorksite, ActionDelete, true},
		{"contractor_user", ObjectWorksite, ActionCreate, false},
		{"viewer", ObjectProfile, ActionUpdate, true},
		{"viewer", ObjectContractor, ActionView, false},
	}
	for _, tc := range cases {
		t.Run(tc.role+"/"+tc.object+"/"+tc.action, func(t *testing.T) {
			err := svc.Authorize(ctx, "u-"+tc.role, tc.role, tc.object, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorizeFollowsRoleChanges(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, "u1", "branch_admin", ObjectContractor, ActionDelete))
	assert.ErrorIs(t, svc.Authorize(ctx, "u1", "viewer", ObjectContractor, ActionDelete), ErrForbidden)
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, "", "viewer", ObjectBranch, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "u1", "", ObjectBranch, ActionView), ErrInvalidRole)
	assert.ErrorIs(t, svc.Authorize(ctx, "u1", "viewer", "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, "u1", "viewer", ObjectBranch, " "), ErrInvalidAction)
}
