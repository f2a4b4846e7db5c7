package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectBranch            = "branch"
	ObjectContractor        = "contractor"
	ObjectContractorPending = "contractor_pending"
	ObjectWorksite          = "worksite"
	ObjectReport            = "report"
	ObjectProfile           = "profile"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionMembershipEdit = "membership.edit"
	ActionPendingAssign  = "pending.assign"
)

// RoleGlobalAdmin is the role name used for profiles flagged is_global_admin.
const RoleGlobalAdmin = "global_admin"

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, uid string, role string, object string, action string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ErrInvalidActor
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := "user:" + uid
	roleName := fmt.Sprintf("role:%s", role)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("actor_id", uid),
			zap.String("actor_role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps exactly one role link per subject, replacing it when
// the profile's role changed.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Global and platform administrators
		{"role:global_admin", "*", "*"},
		{"role:admin", "*", "*"},

		// Branch administrators manage their branch and its contractors
		{"role:branch_admin", ObjectBranch, ActionView},
		{"role:branch_admin", ObjectBranch, ActionUpdate},
		{"role:branch_admin", ObjectContractor, ActionView},
		{"role:branch_admin", ObjectContractor, ActionCreate},
		{"role:branch_admin", ObjectContractor, ActionUpdate},
		{"role:branch_admin", ObjectContractor, ActionDelete},
		{"role:branch_admin", ObjectContractor, ActionMembershipEdit},
		{"role:branch_admin", ObjectContractorPending, ActionView},
		{"role:branch_admin", ObjectContractorPending, ActionPendingAssign},
		{"role:branch_admin", ObjectWorksite, "*"},
		{"role:branch_admin", ObjectReport, ActionView},
		{"role:branch_admin", ObjectProfile, "*"},

		// Auditors read everything in their branch
		{"role:auditor", ObjectBranch, ActionView},
		{"role:auditor", ObjectContractor, ActionView},
		{"role:auditor", ObjectWorksite, ActionView},
		{"role:auditor", ObjectReport, ActionView},
		{"role:auditor", ObjectProfile, "*"},

		// Contractor users work inside their own contractor
		{"role:contractor_admin", ObjectBranch, ActionView},
		{"role:contractor_admin", ObjectContractor, ActionView},
		{"role:contractor_admin", ObjectContractor, ActionUpdate},
		{"role:contractor_admin", ObjectWorksite, "*"},
		{"role:contractor_admin", ObjectProfile, "*"},

		{"role:contractor_user", ObjectBranch, ActionView},
		{"role:contractor_user", ObjectContractor, ActionView},
		{"role:contractor_user", ObjectWorksite, ActionView},
		{"role:contractor_user", ObjectProfile, "*"},

		{"role:viewer", ObjectBranch, ActionView},
		{"role:viewer", ObjectProfile, "*"},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
