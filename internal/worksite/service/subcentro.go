package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/worksite/domain"
	"github.com/smallbiznis/branchops/internal/worksite/repository"
)

func (s *Service) ListSubcentros(ctx context.Context, scope domain.Scope) ([]domain.Subcentro, error) {
	collection, err := repository.SubcentrosPath(scope)
	if err != nil {
		return nil, err
	}
	items, err := listDocs[domain.Subcentro](ctx, s.repo, collection)
	if err != nil {
		return nil, err
	}
	sortByName(items, func(c domain.Subcentro) string { return c.Name })
	return items, nil
}

func (s *Service) GetSubcentro(ctx context.Context, scope domain.Scope, id string) (*domain.Subcentro, error) {
	collection, err := repository.SubcentrosPath(scope)
	if err != nil {
		return nil, err
	}
	return getDoc[domain.Subcentro](ctx, s.repo, collection, id)
}

func (s *Service) CreateSubcentro(ctx context.Context, scope domain.Scope, req domain.CreateSubcentroRequest) (*domain.Subcentro, error) {
	collection, err := repository.SubcentrosPath(scope)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	centros, _ := repository.CentrosPath(scope)
	if err := s.requireParent(ctx, centros, scope.CentroID); err != nil {
		return nil, err
	}

	sub := domain.Subcentro{
		ID:     s.pushID(),
		Name:   name,
		Code:   strings.TrimSpace(req.Code),
		Active: activeOrDefault(req.Active),
		Audit:  s.newAudit(req.Actor),
	}
	doc, err := docstore.Encode(sub)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, collection, sub.ID, doc); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Service) UpdateSubcentro(ctx context.Context, scope domain.Scope, id string, req domain.UpdateSubcentroRequest) (*domain.Subcentro, error) {
	if _, err := s.GetSubcentro(ctx, scope, id); err != nil {
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
	if req.Code != nil {
		patch["codigo"] = strings.TrimSpace(*req.Code)
	}
	collection, _ := repository.SubcentrosPath(scope)
	if err := s.repo.Merge(ctx, collection, id, s.stamp(patch, req.Actor)); err != nil {
		return nil, err
	}
	return s.GetSubcentro(ctx, scope, id)
}

func (s *Service) ToggleSubcentro(ctx context.Context, scope domain.Scope, id string, active bool, actor string) error {
	collection, err := repository.SubcentrosPath(scope)
	if err != nil {
		return err
	}
	return s.toggle(ctx, collection, id, active, actor)
}

func (s *Service) DeleteSubcentro(ctx context.Context, scope domain.Scope, id string) error {
	collection, err := repository.SubcentrosPath(scope)
	if err != nil {
		return err
	}
	return s.remove(ctx, collection, id)
}
