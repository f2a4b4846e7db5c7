package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/pkg/db/pagination"
)

type CreateBranchRequest struct {
	Name             string
	Department       string
	Municipality     string
	Active           *bool
	Contact          Contact
	DaneDepartment   string
	DaneMunicipality string
	Actor            string
}

// UpdateBranchRequest changes descriptive fields. The id never changes, even
// when the department or municipality does.
type UpdateBranchRequest struct {
	Name             *string
	Department       *string
	Municipality     *string
	Contact          *Contact
	DaneDepartment   *string
	DaneMunicipality *string
	Actor            string
}

type Service interface {
	Create(ctx context.Context, req CreateBranchRequest) (*Branch, error)
	Get(ctx context.Context, id string) (*Branch, error)
	List(ctx context.Context) ([]Branch, error)
	Update(ctx context.Context, id string, req UpdateBranchRequest) (*Branch, error)
	ToggleActive(ctx context.Context, id string, active bool, actor string) error
	Page(ctx context.Context, page pagination.Pagination) ([]Branch, pagination.PageInfo, error)
	KPIs(ctx context.Context) (KPIs, error)
}

type Repository interface {
	// Get returns nil when the branch does not exist.
	Get(ctx context.Context, id string) (*Branch, error)
	Exists(ctx context.Context, id string) (bool, error)
	// List returns every branch in id order.
	List(ctx context.Context) ([]Branch, error)
	Insert(ctx context.Context, branch Branch) error
	Merge(ctx context.Context, id string, patch docstore.Patch) error
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidDepartment   = errors.New("invalid_department")
	ErrInvalidMunicipality = errors.New("invalid_municipality")
	ErrNotFound            = errors.New("not_found")
)
