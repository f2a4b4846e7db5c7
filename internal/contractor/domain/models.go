package domain

import (
	"sort"
	"strings"
)

type Contact struct {
	Name  string `json:"nombre,omitempty"`
	Phone string `json:"telefono,omitempty"`
	Email string `json:"email,omitempty"`
}

// Contractor is one copy of a contractor, stored either under a branch
// (branches/{b}/contractors/{id}) or in contractors_pending/{id}. Copies in
// different branches share the id but are edited independently.
type Contractor struct {
	ID      string  `json:"id"`
	Name    string  `json:"nombre"`
	TaxID   string  `json:"nit,omitempty"`
	Contact Contact `json:"contacto"`
	Active  bool    `json:"activo"`

	CreatedAt int64  `json:"creado_en,omitempty"`
	CreatedBy string `json:"creado_por,omitempty"`
	UpdatedAt int64  `json:"actualizado_en,omitempty"`
	UpdatedBy string `json:"actualizado_por,omitempty"`

	AdminUID string          `json:"admin_uid,omitempty"`
	Admins   map[string]bool `json:"admins,omitempty"`
}

// AdminIDs is admin_uid together with every key of admins, sorted.
func (c Contractor) AdminIDs() []string {
	set := make(map[string]struct{}, len(c.Admins)+1)
	if c.AdminUID != "" {
		set[c.AdminUID] = struct{}{}
	}
	for uid := range c.Admins {
		if uid != "" {
			set[uid] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for uid := range set {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out
}

// Freshness orders copies of the same contractor: last update, else creation.
func (c Contractor) Freshness() int64 {
	if c.UpdatedAt > 0 {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// Listed is one row of the cross-branch contractor listing.
type Listed struct {
	Contractor
	BranchIDs []string `json:"branchIds"`
	Pending   bool     `json:"pending"`
}

type KPIs struct {
	Total  int `json:"total"`
	Active int `json:"activos"`
}

// AdminLink is the contractorAdmins/{uid} reverse index entry.
type AdminLink struct {
	BranchID     string `json:"branchId"`
	ContractorID string `json:"contractorId"`
	CreatedAt    int64  `json:"createdAt"`
}

// MembershipDiff is the set of branch copies to write and to remove.
type MembershipDiff struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

func (d MembershipDiff) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// Diff compares the branches a contractor is in with the ones selected for
// it. The anchor branch is never added nor removed.
func Diff(existing, selected []string, anchor string) MembershipDiff {
	anchor = strings.TrimSpace(anchor)
	have := toSet(existing, anchor)
	want := toSet(selected, anchor)

	diff := MembershipDiff{Add: []string{}, Remove: []string{}}
	for id := range want {
		if _, ok := have[id]; !ok {
			diff.Add = append(diff.Add, id)
		}
	}
	for id := range have {
		if _, ok := want[id]; !ok {
			diff.Remove = append(diff.Remove, id)
		}
	}
	sort.Strings(diff.Add)
	sort.Strings(diff.Remove)
	return diff
}

func toSet(ids []string, skip string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == skip {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
