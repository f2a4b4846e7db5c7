package service

import (
	"context"
	"errors"
	"strings"

	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/config"
	"github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/events"
	identitydomain "github.com/smallbiznis/branchops/internal/identity/domain"
	obsmetrics "github.com/smallbiznis/branchops/internal/observability/metrics"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	"github.com/smallbiznis/branchops/internal/slug"
	"github.com/smallbiznis/branchops/pkg/collation"
	"github.com/smallbiznis/branchops/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     domain.Repository
	Branches branchdomain.Repository
	Profiles profiledomain.Repository
	Identity identitydomain.Provider
	Clock    clock.Clock
	Rules    *config.MembershipRulesHolder
	Events   events.Publisher    `optional:"true"`
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	branches branchdomain.Repository
	profiles profiledomain.Repository
	identity identitydomain.Provider
	clock    clock.Clock
	rules    *config.MembershipRulesHolder
	events   events.Publisher
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	pub := p.Events
	if pub == nil {
		pub = events.NewNoop()
	}
	return &Service{
		log:      p.Log.Named("contractor.service"),
		repo:     p.Repo,
		branches: p.Branches,
		profiles: p.Profiles,
		identity: p.Identity,
		clock:    p.Clock,
		rules:    p.Rules,
		events:   pub,
		metrics:  p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context, branchID, contractorID string) (*domain.Contractor, error) {
	branchID, contractorID = strings.TrimSpace(branchID), strings.TrimSpace(contractorID)
	if branchID == "" {
		return nil, domain.ErrInvalidBranch
	}
	if contractorID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.Get(ctx, branchID, contractorID)
}

func (s *Service) ListByBranch(ctx context.Context, branchID string) ([]domain.Contractor, error) {
	items, err := s.repo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	sortByName(items)
	return items, nil
}

func (s *Service) Page(ctx context.Context, branchID string, page pagination.Pagination) ([]domain.Contractor, pagination.PageInfo, error) {
	items, err := s.repo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	if page.PageSize <= 0 {
		page.PageSize = s.rules.Get().PageSize
	}
	out, info := pagination.KeyPage(items, func(c domain.Contractor) string { return c.ID }, page)
	return out, info, nil
}

func (s *Service) KPIs(ctx context.Context, branchID string) (domain.KPIs, error) {
	items, err := s.repo.ListByBranch(ctx, branchID)
	if err != nil {
		return domain.KPIs{}, err
	}
	kpis := domain.KPIs{Total: len(items)}
	for _, c := range items {
		if c.Active {
			kpis.Active++
		}
	}
	return kpis, nil
}

// Create places a new contractor in its first branch with the admin linked,
// then copies it to the remaining branches. With no branches it is stored
// as pending.
func (s *Service) Create(ctx context.Context, req domain.CreateContractorRequest) (*domain.Contractor, error) {
	branchIDs := normalizeIDs(req.BranchIDs)
	if len(branchIDs) == 0 {
		return s.createPending(ctx, req)
	}
	if err := s.requireBranches(ctx, branchIDs); err != nil {
		return nil, err
	}

	c, err := s.CreateInBranch(ctx, branchIDs[0], req)
	if err != nil {
		return nil, err
	}
	if len(branchIDs) == 1 {
		return c, nil
	}

	updates := docstore.Updates{}
	for _, branchID := range branchIDs[1:] {
		if err := s.putCopy(updates, branchID, *c); err != nil {
			return nil, err
		}
	}
	err = s.repo.Apply(ctx, updates)
	s.metrics.RecordMembershipWrite(ctx, "copy", err)
	if err != nil {
		return nil, err
	}
	for _, branchID := range branchIDs[1:] {
		s.publish(ctx, events.Event{Type: events.TypeBranchAdded, ContractorID: c.ID, BranchID: branchID, Actor: req.Actor})
	}
	return c, nil
}

func (s *Service) CreateInBranch(ctx context.Context, branchID string, req domain.CreateContractorRequest) (*domain.Contractor, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, domain.ErrInvalidBranch
	}
	if err := s.requireBranches(ctx, []string{branchID}); err != nil {
		return nil, err
	}
	c, err := s.newContractor(ctx, req, append([]string{branchID}, normalizeIDs(req.BranchIDs)...))
	if err != nil {
		return nil, err
	}

	admin, err := s.provisionAdmin(ctx, req)
	if err != nil {
		return nil, err
	}
	if admin.uid != "" {
		c.AdminUID = admin.uid
		c.Admins = map[string]bool{admin.uid: true}
	}

	updates := docstore.Updates{}
	if err := s.putCopy(updates, branchID, c); err != nil {
		return nil, err
	}
	if admin.uid != "" {
		if err := s.putAdminLink(updates, admin, branchID, c.ID); err != nil {
			return nil, err
		}
	}
	err = s.repo.Apply(ctx, updates)
	s.metrics.RecordMembershipWrite(ctx, "create", err)
	if err != nil {
		return nil, err
	}

	s.log.Info("contractor created",
		zap.String("contractor_id", c.ID),
		zap.String("branch_id", branchID),
		zap.Bool("admin_linked", admin.uid != ""),
	)
	s.publish(ctx, events.Event{Type: events.TypeContractorAssigned, ContractorID: c.ID, BranchIDs: []string{branchID}, Actor: req.Actor})
	return &c, nil
}

func (s *Service) createPending(ctx context.Context, req domain.CreateContractorRequest) (*domain.Contractor, error) {
	c, err := s.newContractor(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	admin, err := s.provisionAdmin(ctx, req)
	if err != nil {
		return nil, err
	}
	if admin.uid != "" {
		c.AdminUID = admin.uid
		c.Admins = map[string]bool{admin.uid: true}
	}

	path, err := repository.PendingPath(c.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	doc, err := repository.Encode(c)
	if err != nil {
		return nil, err
	}
	updates := docstore.Updates{path: doc}
	if admin.uid != "" {
		if err := s.putPendingClaim(updates, admin); err != nil {
			return nil, err
		}
	}
	err = s.repo.Apply(ctx, updates)
	s.metrics.RecordMembershipWrite(ctx, "create_pending", err)
	if err != nil {
		return nil, err
	}

	s.log.Info("contractor created pending", zap.String("contractor_id", c.ID))
	s.publish(ctx, events.Event{Type: events.TypeContractorPending, ContractorID: c.ID, Actor: req.Actor})
	return &c, nil
}

// Update edits a single branch copy. Other copies keep their values.
func (s *Service) Update(ctx context.Context, branchID, contractorID string, req domain.UpdateContractorRequest) (*domain.Contractor, error) {
	existing, err := s.Get(ctx, branchID, contractorID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	patch, err := s.updatePatch(req)
	if err != nil {
		return nil, err
	}
	path, err := repository.CopyPath(branchID, contractorID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	err = s.repo.Apply(ctx, docstore.Updates{path: patch})
	s.metrics.RecordMembershipWrite(ctx, "update", err)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, branchID, contractorID)
}

// UpdateEverywhere merges the same change into every copy of the contractor,
// or into the pending record when it has no branch.
func (s *Service) UpdateEverywhere(ctx context.Context, contractorID string, req domain.UpdateContractorRequest) error {
	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		return domain.ErrInvalidID
	}
	patch, err := s.updatePatch(req)
	if err != nil {
		return err
	}
	branchIDs, err := s.repo.BranchIDs(ctx, contractorID)
	if err != nil {
		return err
	}

	updates := docstore.Updates{}
	if len(branchIDs) == 0 {
		pending, err := s.repo.GetPending(ctx, contractorID)
		if err != nil {
			return err
		}
		if pending == nil {
			return domain.ErrNotFound
		}
		path, _ := repository.PendingPath(contractorID)
		updates[path] = patch
	}
	for _, branchID := range branchIDs {
		path, err := repository.CopyPath(branchID, contractorID)
		if err != nil {
			return domain.ErrInvalidBranch
		}
		updates[path] = patch
	}
	err = s.repo.Apply(ctx, updates)
	s.metrics.RecordMembershipWrite(ctx, "update_everywhere", err)
	return err
}

func (s *Service) ToggleActive(ctx context.Context, branchID, contractorID string, active bool, actor string) error {
	existing, err := s.Get(ctx, branchID, contractorID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	path, _ := repository.CopyPath(branchID, contractorID)
	err = s.repo.Apply(ctx, docstore.Updates{path: docstore.Patch{
		"activo":          active,
		"actualizado_en":  clock.Millis(s.clock.Now()),
		"actualizado_por": actor,
	}})
	s.metrics.RecordMembershipWrite(ctx, "toggle", err)
	return err
}

// Delete removes one branch copy. Removing the last copy turns the contractor
// pending again.
func (s *Service) Delete(ctx context.Context, branchID, contractorID string) error {
	branchID, contractorID = strings.TrimSpace(branchID), strings.TrimSpace(contractorID)
	if branchID == "" {
		return domain.ErrInvalidBranch
	}
	if contractorID == "" {
		return domain.ErrInvalidID
	}
	return s.removeFromBranch(ctx, branchID, contractorID, "")
}

// newContractor validates req and settles the id. A supplied id must be
// free; a generated one is redrawn until it is. branchIDs are the branches
// the contractor is about to be copied into.
func (s *Service) newContractor(ctx context.Context, req domain.CreateContractorRequest, branchIDs []string) (domain.Contractor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Contractor{}, domain.ErrInvalidName
	}
	contact := trimContact(req.Contact)
	if contact.Email != "" && !strings.Contains(contact.Email, "@") {
		return domain.Contractor{}, domain.ErrInvalidEmail
	}

	exists := func(ctx context.Context, id string) (bool, error) {
		return s.idTaken(ctx, id, branchIDs)
	}
	id := strings.TrimSpace(req.ID)
	if id != "" {
		if _, err := docstore.Join(id); err != nil {
			return domain.Contractor{}, domain.ErrInvalidID
		}
		taken, err := exists(ctx, id)
		if err != nil {
			return domain.Contractor{}, err
		}
		if taken {
			return domain.Contractor{}, domain.ErrAlreadyExists
		}
	} else {
		rules := s.rules.Get()
		generated, err := slug.UniqueContractorID(ctx, name, rules.ContractorSuffixLength, exists, rules.BranchProbeLimit)
		switch {
		case errors.Is(err, slug.ErrEmptyName):
			return domain.Contractor{}, domain.ErrInvalidName
		case err != nil:
			return domain.Contractor{}, err
		}
		id = generated
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	now := clock.Millis(s.clock.Now())
	return domain.Contractor{
		ID:        id,
		Name:      name,
		TaxID:     strings.TrimSpace(req.TaxID),
		Contact:   contact,
		Active:    active,
		CreatedAt: now,
		CreatedBy: req.Actor,
		UpdatedAt: now,
		UpdatedBy: req.Actor,
	}, nil
}

// idTaken reports whether id is held by a pending record, by any branch in
// the membership index, or by a copy already sitting in one of branchIDs.
func (s *Service) idTaken(ctx context.Context, id string, branchIDs []string) (bool, error) {
	pending, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return false, err
	}
	if pending != nil {
		return true, nil
	}
	indexed, err := s.repo.BranchIDs(ctx, id)
	if err != nil {
		return false, err
	}
	if len(indexed) > 0 {
		return true, nil
	}
	for _, branchID := range branchIDs {
		existing, err := s.repo.Get(ctx, branchID, id)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) updatePatch(req domain.UpdateContractorRequest) (docstore.Patch, error) {
	patch := docstore.Patch{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		patch["nombre"] = name
	}
	if req.TaxID != nil {
		if nit := strings.TrimSpace(*req.TaxID); nit != "" {
			patch["nit"] = nit
		} else {
			patch["nit"] = nil
		}
	}
	if req.Contact != nil {
		contact := trimContact(*req.Contact)
		if contact.Email != "" && !strings.Contains(contact.Email, "@") {
			return nil, domain.ErrInvalidEmail
		}
		doc, err := docstore.Encode(contact)
		if err != nil {
			return nil, err
		}
		patch["contacto"] = map[string]any(doc)
	}
	patch["actualizado_en"] = clock.Millis(s.clock.Now())
	patch["actualizado_por"] = req.Actor
	return patch, nil
}

// putCopy writes the branch copy and its membership index entry.
func (s *Service) putCopy(updates docstore.Updates, branchID string, c domain.Contractor) error {
	copyPath, err := repository.CopyPath(branchID, c.ID)
	if err != nil {
		return domain.ErrInvalidBranch
	}
	indexPath, _ := repository.MembershipPath(c.ID, branchID)
	doc, err := repository.Encode(c)
	if err != nil {
		return err
	}
	updates[copyPath] = doc
	updates[indexPath] = docstore.Document{"creado_en": clock.Millis(s.clock.Now())}
	return nil
}

func (s *Service) requireBranches(ctx context.Context, branchIDs []string) error {
	for _, id := range branchIDs {
		b, err := s.branches.Get(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrBranchNotFound
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.clock.Now()
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish membership event failed",
			zap.String("type", e.Type),
			zap.String("contractor_id", e.ContractorID),
			zap.Error(err),
		)
	}
}

func trimContact(c domain.Contact) domain.Contact {
	return domain.Contact{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
	}
}

// normalizeIDs trims, drops blanks and duplicates, and keeps input order.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortByName(items []domain.Contractor) {
	collation.SortByName(items, func(c domain.Contractor) string { return c.Name })
}
