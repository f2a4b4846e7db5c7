package service

import (
	"context"
	"sort"
	"strings"

	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/pkg/collation"
)

// ListAll returns one row per contractor across every branch, using the most
// recently updated copy, plus pending contractors that are really pending.
func (s *Service) ListAll(ctx context.Context) ([]domain.Listed, error) {
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*domain.Listed)
	for _, b := range branches {
		copies, err := s.repo.ListByBranch(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range copies {
			row, ok := rows[c.ID]
			if !ok {
				rows[c.ID] = &domain.Listed{Contractor: c, BranchIDs: []string{b.ID}}
				continue
			}
			row.BranchIDs = append(row.BranchIDs, b.ID)
			if c.Freshness() > row.Freshness() {
				row.Contractor = c
			}
		}
	}

	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		if _, ok := rows[p.ID]; ok {
			continue
		}
		stillPending, err := s.adminStillPending(ctx, p)
		if err != nil {
			return nil, err
		}
		if !stillPending {
			continue
		}
		rows[p.ID] = &domain.Listed{Contractor: p, BranchIDs: []string{}, Pending: true}
	}

	out := make([]domain.Listed, 0, len(rows))
	for _, row := range rows {
		sort.Strings(row.BranchIDs)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	collation.SortByName(out, func(l domain.Listed) string { return l.Name })
	return out, nil
}

// adminStillPending is false once the pending record's admin has been given
// a branch or contractor claim elsewhere. Records without an admin count as
// pending.
func (s *Service) adminStillPending(ctx context.Context, p domain.Contractor) (bool, error) {
	if p.AdminUID == "" {
		return true, nil
	}
	profile, err := s.profiles.Get(ctx, p.AdminUID)
	if err != nil {
		return false, err
	}
	if profile == nil {
		return true, nil
	}
	return profile.BranchID == "" && profile.ContractorID == "", nil
}

// ListPending returns the pending records that can still be assigned. A
// record left behind next to a branch copy, or whose admin was claimed
// elsewhere, is hidden the same way ListAll hides it.
func (s *Service) ListPending(ctx context.Context) ([]domain.Contractor, error) {
	items, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Contractor, 0, len(items))
	for _, p := range items {
		branchIDs, err := s.repo.BranchIDs(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if len(branchIDs) > 0 {
			continue
		}
		stillPending, err := s.adminStillPending(ctx, p)
		if err != nil {
			return nil, err
		}
		if stillPending {
			out = append(out, p)
		}
	}
	sortByName(out)
	return out, nil
}

func (s *Service) GetPending(ctx context.Context, contractorID string) (*domain.Contractor, error) {
	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		return nil, domain.ErrInvalidID
	}
	c, err := s.repo.GetPending(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *Service) DeletePending(ctx context.Context, contractorID string) error {
	if _, err := s.GetPending(ctx, contractorID); err != nil {
		return err
	}
	path, _ := repository.PendingPath(strings.TrimSpace(contractorID))
	err := s.repo.Apply(ctx, docstore.Updates{path: nil})
	s.metrics.RecordMembershipWrite(ctx, "delete_pending", err)
	return err
}

func (s *Service) BranchIDs(ctx context.Context, contractorID string) ([]string, error) {
	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.BranchIDs(ctx, contractorID)
}

// FindIDByEmail matches the contact email of any copy or pending record,
// ignoring case. It returns "" when nothing matches.
func (s *Service) FindIDByEmail(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}
	rows, err := s.ListAll(ctx)
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		if strings.ToLower(row.Contact.Email) == email {
			return row.ID, nil
		}
	}
	return "", nil
}

// BranchesForContractor lists the branches a contractor user may see. The
// contractor is resolved from email when no id is known.
func (s *Service) BranchesForContractor(ctx context.Context, contractorID, email string) ([]branchdomain.Branch, error) {
	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		id, err := s.FindIDByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return []branchdomain.Branch{}, nil
		}
		contractorID = id
	}

	ids, err := s.repo.BranchIDs(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	out := make([]branchdomain.Branch, 0, len(ids))
	for _, id := range ids {
		b, err := s.branches.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if b != nil {
			out = append(out, *b)
		}
	}
	collation.SortByName(out, func(b branchdomain.Branch) string { return b.Name })
	return out, nil
}
