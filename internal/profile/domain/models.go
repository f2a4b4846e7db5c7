package domain

import (
	"context"
	"errors"
)

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleBranchAdmin     Role = "branch_admin"
	RoleAuditor         Role = "auditor"
	RoleContractorAdmin Role = "contractor_admin"
	RoleContractorUser  Role = "contractor_user"
	RoleViewer          Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBranchAdmin, RoleAuditor, RoleContractorAdmin, RoleContractorUser, RoleViewer:
		return true
	}
	return false
}

func (r Role) IsContractor() bool {
	return r == RoleContractorAdmin || r == RoleContractorUser
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// Profile is the users/{uid} document.
type Profile struct {
	UID           string `json:"-"`
	IsGlobalAdmin bool   `json:"is_global_admin"`
	Role          Role   `json:"role,omitempty"`
	BranchID      string `json:"branchId,omitempty"`
	ContractorID  string `json:"contractorId,omitempty"`
	Status        string `json:"status,omitempty"`

	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Bio         string `json:"bio,omitempty"`

	SocialFacebook  string `json:"social_facebook,omitempty"`
	SocialX         string `json:"social_x,omitempty"`
	SocialLinkedIn  string `json:"social_linkedin,omitempty"`
	SocialInstagram string `json:"social_instagram,omitempty"`

	AddressCountry   string `json:"address_country,omitempty"`
	AddressCityState string `json:"address_city_state,omitempty"`
	AddressPostal    string `json:"address_postal,omitempty"`
	TaxID            string `json:"tax_id,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty"`
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// EditableFields are the profile keys a user may change about themselves.
var EditableFields = map[string]struct{}{
	"displayName":        {},
	"first_name":         {},
	"last_name":          {},
	"phone":              {},
	"bio":                {},
	"social_facebook":    {},
	"social_x":           {},
	"social_linkedin":    {},
	"social_instagram":   {},
	"address_country":    {},
	"address_city_state": {},
	"address_postal":     {},
	"tax_id":             {},
}

var (
	ErrInvalidUID   = errors.New("invalid_uid")
	ErrInvalidField = errors.New("invalid_field")
	ErrNotFound     = errors.New("not_found")
)

type Repository interface {
	// Get returns nil when the user has no profile document.
	Get(ctx context.Context, uid string) (*Profile, error)
	Create(ctx context.Context, profile Profile) error
	// Update merges patch, drops empty values and stamps updated_at.
	Update(ctx context.Context, uid string, patch map[string]any) error
}

// SetEditable assigns one of EditableFields by its document key. Unknown keys
// are ignored.
func (p *Profile) SetEditable(key, value string) {
	fields := map[string]*string{
		"displayName":        &p.DisplayName,
		"first_name":         &p.FirstName,
		"last_name":          &p.LastName,
		"phone":              &p.Phone,
		"bio":                &p.Bio,
		"social_facebook":    &p.SocialFacebook,
		"social_x":           &p.SocialX,
		"social_linkedin":    &p.SocialLinkedIn,
		"social_instagram":   &p.SocialInstagram,
		"address_country":    &p.AddressCountry,
		"address_city_state": &p.AddressCityState,
		"address_postal":     &p.AddressPostal,
		"tax_id":             &p.TaxID,
	}
	if field, ok := fields[key]; ok {
		*field = value
	}
}
