package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/config"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/ratelimit"
	"github.com/smallbiznis/branchops/internal/slug"
	"github.com/smallbiznis/branchops/pkg/collation"
	"github.com/smallbiznis/branchops/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
	Rules *config.MembershipRulesHolder
	Lock  *ratelimit.BranchLock `optional:"true"`
}

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
	rules *config.MembershipRulesHolder
	lock  *ratelimit.BranchLock
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("branch.service"),
		repo:  p.Repo,
		clock: p.Clock,
		rules: p.Rules,
		lock:  p.Lock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBranchRequest) (*domain.Branch, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	department := strings.TrimSpace(req.Department)
	if slug.Make(department) == "" {
		return nil, domain.ErrInvalidDepartment
	}
	municipality := strings.TrimSpace(req.Municipality)
	if slug.Make(municipality) == "" {
		return nil, domain.ErrInvalidMunicipality
	}

	base, err := slug.BranchID(department, municipality)
	if err != nil {
		return nil, domain.ErrInvalidName
	}

	release, err := s.lock.Acquire(ctx, base)
	if err != nil {
		return nil, err
	}
	defer release()

	id, err := slug.FindAvailableID(ctx, base, s.repo.Exists, s.rules.Get().BranchProbeLimit)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	now := clock.Millis(s.clock.Now())
	branch := domain.Branch{
		ID:               id,
		Name:             name,
		Department:       department,
		DepartmentSlug:   slug.Make(department),
		Municipality:     municipality,
		MunicipalitySlug: slug.Make(municipality),
		Active:           active,
		Contact:          trimContact(req.Contact),
		DaneDepartment:   strings.TrimSpace(req.DaneDepartment),
		DaneMunicipality: strings.TrimSpace(req.DaneMunicipality),
		CreatedAt:        now,
		CreatedBy:        req.Actor,
		UpdatedAt:        now,
		UpdatedBy:        req.Actor,
	}
	if err := s.repo.Insert(ctx, branch); err != nil {
		return nil, err
	}

	s.log.Info("branch created", zap.String("branch_id", id), zap.String("actor_id", req.Actor))
	return &branch, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Branch, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Branch, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	collation.SortByName(items, func(b domain.Branch) string { return b.Name })
	return items, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateBranchRequest) (*domain.Branch, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	patch := docstore.Patch{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		patch["nombre"] = name
	}
	if req.Department != nil {
		dep := strings.TrimSpace(*req.Department)
		if slug.Make(dep) == "" {
			return nil, domain.ErrInvalidDepartment
		}
		patch["departamento"] = dep
		patch["departamento_slug"] = slug.Make(dep)
	}
	if req.Municipality != nil {
		mun := strings.TrimSpace(*req.Municipality)
		if slug.Make(mun) == "" {
			return nil, domain.ErrInvalidMunicipality
		}
		patch["municipio"] = mun
		patch["municipio_slug"] = slug.Make(mun)
	}
	if req.Contact != nil {
		contact, err := docstore.Encode(trimContact(*req.Contact))
		if err != nil {
			return nil, err
		}
		patch["contacto"] = map[string]any(contact)
	}
	if req.DaneDepartment != nil {
		patch["dane_departamento"] = optional(*req.DaneDepartment)
	}
	if req.DaneMunicipality != nil {
		patch["dane_municipio"] = optional(*req.DaneMunicipality)
	}
	patch["actualizado_en"] = clock.Millis(s.clock.Now())
	patch["actualizado_por"] = req.Actor

	if err := s.repo.Merge(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) ToggleActive(ctx context.Context, id string, active bool, actor string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Merge(ctx, id, docstore.Patch{
		"activa":          active,
		"actualizado_en":  clock.Millis(s.clock.Now()),
		"actualizado_por": actor,
	})
}

func (s *Service) Page(ctx context.Context, page pagination.Pagination) ([]domain.Branch, pagination.PageInfo, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	if page.PageSize <= 0 {
		page.PageSize = s.rules.Get().PageSize
	}
	out, info := pagination.KeyPage(items, func(b domain.Branch) string { return b.ID }, page)
	return out, info, nil
}

func (s *Service) KPIs(ctx context.Context) (domain.KPIs, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return domain.KPIs{}, err
	}
	kpis := domain.KPIs{Total: len(items)}
	for _, b := range items {
		if b.Active {
			kpis.Active++
		}
	}
	return kpis, nil
}

func trimContact(c domain.Contact) domain.Contact {
	return domain.Contact{
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

// optional maps a blank value to a field removal.
func optional(v string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return v
}
