package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/worksite/domain"
	"github.com/smallbiznis/branchops/internal/worksite/repository"
	"go.uber.org/zap"
)

func (s *Service) ListCentros(ctx context.Context, scope domain.Scope) ([]domain.Centro, error) {
	collection, err := repository.CentrosPath(scope)
	if err != nil {
		return nil, err
	}
	items, err := listDocs[domain.Centro](ctx, s.repo, collection)
	if err != nil {
		return nil, err
	}
	sortByName(items, func(c domain.Centro) string { return c.Name })
	return items, nil
}

func (s *Service) GetCentro(ctx context.Context, scope domain.Scope, id string) (*domain.Centro, error) {
	collection, err := repository.CentrosPath(scope)
	if err != nil {
		return nil, err
	}
	return getDoc[domain.Centro](ctx, s.repo, collection, id)
}

func (s *Service) CreateCentro(ctx context.Context, scope domain.Scope, req domain.CreateCentroRequest) (*domain.Centro, error) {
	collection, err := repository.CentrosPath(scope)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if err := s.requireContractor(ctx, scope); err != nil {
		return nil, err
	}

	centro := domain.Centro{
		ID:          s.pushID(),
		Name:        name,
		Code:        strings.TrimSpace(req.Code),
		Description: strings.TrimSpace(req.Description),
		Active:      activeOrDefault(req.Active),
		Audit:       s.newAudit(req.Actor),
	}
	doc, err := docstore.Encode(centro)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, collection, centro.ID, doc); err != nil {
		return nil, err
	}
	s.log.Info("centro created", zap.String("branch_id", scope.BranchID), zap.String("contractor_id", scope.ContractorID), zap.String("centro_id", centro.ID))
	return &centro, nil
}

func (s *Service) UpdateCentro(ctx context.Context, scope domain.Scope, id string, req domain.UpdateCentroRequest) (*domain.Centro, error) {
	if _, err := s.GetCentro(ctx, scope, id); err != nil {
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
	if req.Description != nil {
		patch["descripcion"] = strings.TrimSpace(*req.Description)
	}
	collection, _ := repository.CentrosPath(scope)
	if err := s.repo.Merge(ctx, collection, id, s.stamp(patch, req.Actor)); err != nil {
		return nil, err
	}
	return s.GetCentro(ctx, scope, id)
}

func (s *Service) ToggleCentro(ctx context.Context, scope domain.Scope, id string, active bool, actor string) error {
	collection, err := repository.CentrosPath(scope)
	if err != nil {
		return err
	}
	return s.toggle(ctx, collection, id, active, actor)
}

// DeleteCentro removes the centro with its subcentros and vehicles.
func (s *Service) DeleteCentro(ctx context.Context, scope domain.Scope, id string) error {
	collection, err := repository.CentrosPath(scope)
	if err != nil {
		return err
	}
	return s.remove(ctx, collection, id)
}
