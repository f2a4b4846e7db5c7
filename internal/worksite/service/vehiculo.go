package service

import (
	"context"
	"sort"
	"strings"

	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/worksite/domain"
	"github.com/smallbiznis/branchops/internal/worksite/repository"
	"go.uber.org/zap"
)

func (s *Service) ListVehiculos(ctx context.Context, scope domain.Scope) ([]domain.Vehiculo, error) {
	collection, err := repository.VehiculosPath(scope)
	if err != nil {
		return nil, err
	}
	items, err := listDocs[domain.Vehiculo](ctx, s.repo, collection)
	if err != nil {
		return nil, err
	}
	for i := range items {
		withScope(&items[i], scope)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Service) GetVehiculo(ctx context.Context, scope domain.Scope, id string) (*domain.Vehiculo, error) {
	collection, err := repository.VehiculosPath(scope)
	if err != nil {
		return nil, err
	}
	v, err := getDoc[domain.Vehiculo](ctx, s.repo, collection, id)
	if err != nil {
		return nil, err
	}
	withScope(v, scope)
	return v, nil
}

func (s *Service) CreateVehiculo(ctx context.Context, scope domain.Scope, req domain.CreateVehiculoRequest) (*domain.Vehiculo, error) {
	collection, err := repository.VehiculosPath(scope)
	if err != nil {
		return nil, err
	}
	equipment := strings.TrimSpace(req.EquipmentTypeID)
	if equipment == "" {
		return nil, domain.ErrInvalidEquipmentType
	}
	if req.TankCapacityGal < 0 {
		return nil, domain.ErrInvalidCapacity
	}
	if req.ConsumptionL100km < 0 {
		return nil, domain.ErrInvalidConsumption
	}
	subcentros, _ := repository.SubcentrosPath(scope)
	if err := s.requireParent(ctx, subcentros, scope.SubcentroID); err != nil {
		return nil, err
	}

	v := domain.Vehiculo{
		ID:                s.pushID(),
		EquipmentTypeID:   equipment,
		TankCapacityGal:   req.TankCapacityGal,
		ConsumptionL100km: req.ConsumptionL100km,
		Active:            activeOrDefault(req.Active),
		Audit:             s.newAudit(req.Actor),
	}
	withScope(&v, scope)
	doc, err := docstore.Encode(v)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, collection, v.ID, doc); err != nil {
		return nil, err
	}
	s.log.Info("vehiculo created",
		zap.String("branch_id", scope.BranchID),
		zap.String("contractor_id", scope.ContractorID),
		zap.String("vehiculo_id", v.ID),
	)
	return &v, nil
}

func (s *Service) UpdateVehiculo(ctx context.Context, scope domain.Scope, id string, req domain.UpdateVehiculoRequest) (*domain.Vehiculo, error) {
	if _, err := s.GetVehiculo(ctx, scope, id); err != nil {
		return nil, err
	}
	patch := docstore.Patch{}
	if req.EquipmentTypeID != nil {
		equipment := strings.TrimSpace(*req.EquipmentTypeID)
		if equipment == "" {
			return nil, domain.ErrInvalidEquipmentType
		}
		patch["tipo_equipo_id"] = equipment
	}
	if req.TankCapacityGal != nil {
		if *req.TankCapacityGal < 0 {
			return nil, domain.ErrInvalidCapacity
		}
		patch["capacidad_tanque_gal"] = *req.TankCapacityGal
	}
	if req.ConsumptionL100km != nil {
		if *req.ConsumptionL100km < 0 {
			return nil, domain.ErrInvalidConsumption
		}
		patch["consumo_l100km"] = *req.ConsumptionL100km
	}
	collection, _ := repository.VehiculosPath(scope)
	if err := s.repo.Merge(ctx, collection, id, s.stamp(patch, req.Actor)); err != nil {
		return nil, err
	}
	return s.GetVehiculo(ctx, scope, id)
}

func (s *Service) ToggleVehiculo(ctx context.Context, scope domain.Scope, id string, active bool, actor string) error {
	collection, err := repository.VehiculosPath(scope)
	if err != nil {
		return err
	}
	return s.toggle(ctx, collection, id, active, actor)
}

func (s *Service) DeleteVehiculo(ctx context.Context, scope domain.Scope, id string) error {
	collection, err := repository.VehiculosPath(scope)
	if err != nil {
		return err
	}
	return s.remove(ctx, collection, id)
}

func (s *Service) ListVehiculosByBranch(ctx context.Context, branchID string) ([]domain.VehiculoRow, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, domain.ErrInvalidScope
	}
	contractors, err := s.contractors.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.VehiculoRow, 0)
	for _, c := range contractors {
		scope := domain.Scope{BranchID: branchID, ContractorID: c.ID}
		centros, err := s.ListCentros(ctx, scope)
		if err != nil {
			return nil, err
		}
		for _, centro := range centros {
			scope.CentroID = centro.ID
			subs, err := s.ListSubcentros(ctx, scope)
			if err != nil {
				return nil, err
			}
			for _, sub := range subs {
				scope.SubcentroID = sub.ID
				vehiculos, err := s.ListVehiculos(ctx, scope)
				if err != nil {
					return nil, err
				}
				for _, v := range vehiculos {
					rows = append(rows, domain.VehiculoRow{
						Vehiculo:       v,
						ContractorName: c.Name,
						SubcentroName:  sub.Name,
					})
				}
			}
		}
	}
	return rows, nil
}

// withScope fills the parent ids from the path the vehicle was read from.
func withScope(v *domain.Vehiculo, scope domain.Scope) {
	v.BranchID = scope.BranchID
	v.ContractorID = scope.ContractorID
	v.CentroID = scope.CentroID
	v.SubcentroID = scope.SubcentroID
}
