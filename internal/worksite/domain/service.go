package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/branchops/internal/docstore"
)

type CreateCentroRequest struct {
	Name        string
	Code        string
	Description string
	Active      *bool
	Actor       string
}

type UpdateCentroRequest struct {
	Name        *string
	Code        *string
	Description *string
	Actor       string
}

type CreateSubcentroRequest struct {
	Name   string
	Code   string
	Active *bool
	Actor  string
}

type UpdateSubcentroRequest struct {
	Name  *string
	Code  *string
	Actor string
}

type CreateVehiculoRequest struct {
	EquipmentTypeID   string
	TankCapacityGal   float64
	ConsumptionL100km float64
	Active            *bool
	Actor             string
}

type UpdateVehiculoRequest struct {
	EquipmentTypeID   *string
	TankCapacityGal   *float64
	ConsumptionL100km *float64
	Actor             string
}

type Service interface {
	ListCentros(ctx context.Context, scope Scope) ([]Centro, error)
	GetCentro(ctx context.Context, scope Scope, id string) (*Centro, error)
	CreateCentro(ctx context.Context, scope Scope, req CreateCentroRequest) (*Centro, error)
	UpdateCentro(ctx context.Context, scope Scope, id string, req UpdateCentroRequest) (*Centro, error)
	ToggleCentro(ctx context.Context, scope Scope, id string, active bool, actor string) error
	DeleteCentro(ctx context.Context, scope Scope, id string) error

	ListSubcentros(ctx context.Context, scope Scope) ([]Subcentro, error)
	GetSubcentro(ctx context.Context, scope Scope, id string) (*Subcentro, error)
	CreateSubcentro(ctx context.Context, scope Scope, req CreateSubcentroRequest) (*Subcentro, error)
	UpdateSubcentro(ctx context.Context, scope Scope, id string, req UpdateSubcentroRequest) (*Subcentro, error)
	ToggleSubcentro(ctx context.Context, scope Scope, id string, active bool, actor string) error
	DeleteSubcentro(ctx context.Context, scope Scope, id string) error

	ListVehiculos(ctx context.Context, scope Scope) ([]Vehiculo, error)
	GetVehiculo(ctx context.Context, scope Scope, id string) (*Vehiculo, error)
	CreateVehiculo(ctx context.Context, scope Scope, req CreateVehiculoRequest) (*Vehiculo, error)
	UpdateVehiculo(ctx context.Context, scope Scope, id string, req UpdateVehiculoRequest) (*Vehiculo, error)
	ToggleVehiculo(ctx context.Context, scope Scope, id string, active bool, actor string) error
	DeleteVehiculo(ctx context.Context, scope Scope, id string) error
	// ListVehiculosByBranch flattens every vehicle under every contractor of a branch.
	ListVehiculosByBranch(ctx context.Context, branchID string) ([]VehiculoRow, error)
}

// Repository stores documents by collection path and id.
type Repository interface {
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
	List(ctx context.Context, collection string) (map[string]docstore.Document, error)
	Set(ctx context.Context, collection, id string, doc docstore.Document) error
	Merge(ctx context.Context, collection, id string, patch docstore.Patch) error
	Remove(ctx context.Context, collection, id string) error
}

var (
	ErrInvalidScope         = errors.New("invalid_scope")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidEquipmentType = errors.New("invalid_equipment_type")
	ErrInvalidCapacity      = errors.New("invalid_capacity")
	ErrInvalidConsumption   = errors.New("invalid_consumption")
	ErrParentNotFound       = errors.New("parent_not_found")
	ErrNotFound             = errors.New("not_found")
)
