package service

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/branchops/internal/clock"
	contractordomain "github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/worksite/domain"
	"github.com/smallbiznis/branchops/pkg/collation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Repo        domain.Repository
	Contractors contractordomain.Repository
	Clock       clock.Clock
}

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	contractors contractordomain.Repository
	clock       clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("worksite.service"),
		repo:        p.Repo,
		contractors: p.Contractors,
		clock:       p.Clock,
	}
}

// identified is satisfied by pointers to the worksite documents.
type identified[T any] interface {
	*T
	SetID(string)
}

func decode[T any, P identified[T]](id string, doc docstore.Document) (*T, error) {
	var v T
	if err := docstore.Decode(doc, &v); err != nil {
		return nil, err
	}
	P(&v).SetID(id)
	return &v, nil
}

func getDoc[T any, P identified[T]](ctx context.Context, repo domain.Repository, collection, id string) (*T, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	doc, err := repo.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return decode[T, P](id, doc)
}

func listDocs[T any, P identified[T]](ctx context.Context, repo domain.Repository, collection string) ([]T, error) {
	docs, err := repo.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for id, doc := range docs {
		v, err := decode[T, P](id, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// pushID returns a time-ordered key for a new child document.
func (s *Service) pushID() string {
	return ulid.MustNew(ulid.Timestamp(s.clock.Now()), ulid.DefaultEntropy()).String()
}

func (s *Service) newAudit(actor string) domain.Audit {
	now := clock.Millis(s.clock.Now())
	return domain.Audit{CreatedAt: now, CreatedBy: actor, UpdatedAt: now}
}

func (s *Service) stamp(patch docstore.Patch, actor string) docstore.Patch {
	patch["actualizado_en"] = clock.Millis(s.clock.Now())
	if actor != "" {
		patch["actualizado_por"] = actor
	}
	return patch
}

// toggle flips activo on an existing document.
func (s *Service) toggle(ctx context.Context, collection, id string, active bool, actor string) error {
	doc, err := s.repo.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}
	return s.repo.Merge(ctx, collection, id, s.stamp(docstore.Patch{"activo": active}, actor))
}

func (s *Service) remove(ctx context.Context, collection, id string) error {
	doc, err := s.repo.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}
	return s.repo.Remove(ctx, collection, id)
}

func (s *Service) requireContractor(ctx context.Context, scope domain.Scope) error {
	c, err := s.contractors.Get(ctx, scope.BranchID, scope.ContractorID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrParentNotFound
	}
	return nil
}

func (s *Service) requireParent(ctx context.Context, collection, id string) error {
	doc, err := s.repo.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrParentNotFound
	}
	return nil
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func sortByName[T any](items []T, name func(T) string) {
	collation.SortByName(items, name)
}
