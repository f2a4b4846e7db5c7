package service

import (
	"context"
	"slices"
	"strings"

	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/docstore"
	identitydomain "github.com/smallbiznis/branchops/internal/identity/domain"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	profilerepo "github.com/smallbiznis/branchops/internal/profile/repository"
	"go.uber.org/zap"
)

type adminRef struct {
	uid string
	// email is set only for accounts provisioned by this request.
	email       string
	displayName string
}

// provisionAdmin resolves the contractor admin: an explicit uid wins,
// otherwise an account is created when a password is supplied.
func (s *Service) provisionAdmin(ctx context.Context, req domain.CreateContractorRequest) (adminRef, error) {
	if uid := strings.TrimSpace(req.AdminUID); uid != "" {
		return adminRef{uid: uid}, nil
	}
	if req.Password == "" {
		return adminRef{}, nil
	}
	email := strings.TrimSpace(req.Contact.Email)
	if email == "" {
		return adminRef{}, domain.ErrInvalidEmail
	}
	displayName := strings.TrimSpace(req.Contact.Name)
	if displayName == "" {
		displayName = strings.TrimSpace(req.Name)
	}
	account, err := s.identity.CreateAccount(ctx, identitydomain.CreateAccountRequest{
		Email:       email,
		Password:    req.Password,
		DisplayName: displayName,
	})
	if err != nil {
		s.log.Warn("provision contractor admin failed", zap.String("code", identitydomain.Code(err)))
		return adminRef{}, err
	}
	return adminRef{uid: account.UID, email: account.Email, displayName: displayName}, nil
}

// putAdminLink activates the admin's claims for branchID, writes the
// reverse index and marks the uid in the copy's admins map.
func (s *Service) putAdminLink(updates docstore.Updates, admin adminRef, branchID, contractorID string) error {
	userPath, err := profilerepo.Path(admin.uid)
	if err != nil {
		return profiledomain.ErrInvalidUID
	}
	linkPath, _ := repository.AdminLinkPath(admin.uid)
	now := clock.Millis(s.clock.Now())

	claims := docstore.Patch{
		"branchId":     branchID,
		"contractorId": contractorID,
		"role":         string(profiledomain.RoleContractorAdmin),
		"status":       profiledomain.StatusActive,
		"updated_at":   now,
	}
	admin.fill(claims, now)
	updates[userPath] = claims

	link, err := docstore.Encode(domain.AdminLink{BranchID: branchID, ContractorID: contractorID, CreatedAt: now})
	if err != nil {
		return err
	}
	updates[linkPath] = link
	return nil
}

// putPendingClaim records the admin of a contractor that has no branch yet.
func (s *Service) putPendingClaim(updates docstore.Updates, admin adminRef) error {
	userPath, err := profilerepo.Path(admin.uid)
	if err != nil {
		return profiledomain.ErrInvalidUID
	}
	now := clock.Millis(s.clock.Now())
	claims := docstore.Patch{
		"branchId":     nil,
		"contractorId": nil,
		"role":         string(profiledomain.RoleContractorAdmin),
		"status":       profiledomain.StatusPending,
		"updated_at":   now,
	}
	admin.fill(claims, now)
	updates[userPath] = claims
	return nil
}

func (a adminRef) fill(claims docstore.Patch, now int64) {
	if a.email == "" {
		return
	}
	claims["email"] = a.email
	claims["is_global_admin"] = false
	claims["created_at"] = now
	if a.displayName != "" {
		claims["displayName"] = a.displayName
	}
}

// releasableAdmins filters the copy's admins down to those whose reverse
// index is absent or still points at this contractor.
func (s *Service) releasableAdmins(ctx context.Context, c domain.Contractor) ([]string, error) {
	out := make([]string, 0, len(c.Admins)+1)
	for _, uid := range c.AdminIDs() {
		link, err := s.repo.GetAdminLink(ctx, uid)
		if err != nil {
			return nil, err
		}
		if link != nil && link.ContractorID != "" && link.ContractorID != c.ID {
			continue
		}
		out = append(out, uid)
	}
	return out, nil
}

// putRelink moves admins linked to this contractor through a branch outside
// keep onto keep[0]. Their claims stay active. It reports whether anything
// was written.
func (s *Service) putRelink(ctx context.Context, updates docstore.Updates, c domain.Contractor, keep []string) (bool, error) {
	if len(keep) == 0 {
		return false, nil
	}
	now := clock.Millis(s.clock.Now())
	moved := false
	for _, uid := range c.AdminIDs() {
		link, err := s.repo.GetAdminLink(ctx, uid)
		if err != nil {
			return false, err
		}
		if link == nil || link.ContractorID != c.ID || slices.Contains(keep, link.BranchID) {
			continue
		}
		userPath, err := profilerepo.Path(uid)
		if err != nil {
			return false, profiledomain.ErrInvalidUID
		}
		linkPath, _ := repository.AdminLinkPath(uid)
		doc, err := docstore.Encode(domain.AdminLink{BranchID: keep[0], ContractorID: c.ID, CreatedAt: link.CreatedAt})
		if err != nil {
			return false, err
		}
		updates[linkPath] = doc
		updates[userPath] = docstore.Patch{
			"branchId":   keep[0],
			"updated_at": now,
		}
		moved = true
	}
	return moved, nil
}

// putRelease clears the admins' claims, drops their reverse index and
// leaves them pending.
func (s *Service) putRelease(updates docstore.Updates, admins []string) error {
	now := clock.Millis(s.clock.Now())
	for _, uid := range admins {
		userPath, err := profilerepo.Path(uid)
		if err != nil {
			return profiledomain.ErrInvalidUID
		}
		linkPath, _ := repository.AdminLinkPath(uid)
		updates[linkPath] = nil
		updates[userPath] = docstore.Patch{
			"branchId":     nil,
			"contractorId": nil,
			"status":       profiledomain.StatusPending,
			"updated_at":   now,
		}
	}
	return nil
}
