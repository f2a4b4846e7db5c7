package domain

import (
	"context"
	"errors"

	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/pkg/db/pagination"
)

type CreateContractorRequest struct {
	// ID is optional. When empty an id is generated from Name.
	ID      string
	Name    string
	TaxID   string
	Contact Contact
	Active  *bool

	// AdminUID links an existing identity. When empty and Password is set,
	// an account is provisioned for Contact.Email.
	AdminUID string
	Password string

	// BranchIDs may be empty, which leaves the contractor pending.
	BranchIDs []string
	Actor     string
}

type UpdateContractorRequest struct {
	Name    *string
	TaxID   *string
	Contact *Contact
	Actor   string
}

type Service interface {
	// Get returns nil when the branch holds no copy.
	Get(ctx context.Context, branchID, contractorID string) (*Contractor, error)
	ListByBranch(ctx context.Context, branchID string) ([]Contractor, error)
	Page(ctx context.Context, branchID string, page pagination.Pagination) ([]Contractor, pagination.PageInfo, error)
	KPIs(ctx context.Context, branchID string) (KPIs, error)

	Create(ctx context.Context, req CreateContractorRequest) (*Contractor, error)
	CreateInBranch(ctx context.Context, branchID string, req CreateContractorRequest) (*Contractor, error)
	Update(ctx context.Context, branchID, contractorID string, req UpdateContractorRequest) (*Contractor, error)
	UpdateEverywhere(ctx context.Context, contractorID string, req UpdateContractorRequest) error
	ToggleActive(ctx context.Context, branchID, contractorID string, active bool, actor string) error
	Delete(ctx context.Context, branchID, contractorID string) error

	EditMembership(ctx context.Context, anchorBranchID, contractorID string, existing, selected []string, actor string) (MembershipDiff, error)
	AssignPending(ctx context.Context, contractorID string, branchIDs []string, actor string) (*Contractor, error)
	ListPending(ctx context.Context) ([]Contractor, error)
	GetPending(ctx context.Context, contractorID string) (*Contractor, error)
	DeletePending(ctx context.Context, contractorID string) error

	ListAll(ctx context.Context) ([]Listed, error)
	BranchIDs(ctx context.Context, contractorID string) ([]string, error)
	FindIDByEmail(ctx context.Context, email string) (string, error)
	BranchesForContractor(ctx context.Context, contractorID, email string) ([]branchdomain.Branch, error)
}

type Repository interface {
	// Get returns nil when the branch holds no copy.
	Get(ctx context.Context, branchID, contractorID string) (*Contractor, error)
	// ListByBranch returns the branch's copies in id order.
	ListByBranch(ctx context.Context, branchID string) ([]Contractor, error)
	GetPending(ctx context.Context, contractorID string) (*Contractor, error)
	ListPending(ctx context.Context) ([]Contractor, error)
	GetAdminLink(ctx context.Context, uid string) (*AdminLink, error)
	// BranchIDs reads the membership index, sorted.
	BranchIDs(ctx context.Context, contractorID string) ([]string, error)
	// Apply writes every path in one atomic step.
	Apply(ctx context.Context, updates docstore.Updates) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidBranch   = errors.New("invalid_branch")
	ErrInvalidBranches = errors.New("invalid_branches")
	ErrNotFound        = errors.New("not_found")
	ErrAlreadyExists   = errors.New("already_exists")
	ErrBranchNotFound  = errors.New("branch_not_found")
)
