package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const membershipWriteLimit = 8

// EditMembership reconciles the contractor's branches with selected, using
// the anchor copy as the source for new copies. A nil existing is read from
// the membership index. Every write is attempted; failures are joined.
func (s *Service) EditMembership(ctx context.Context, anchorBranchID, contractorID string, existing, selected []string, actor string) (domain.MembershipDiff, error) {
	anchor, err := s.Get(ctx, anchorBranchID, contractorID)
	if err != nil {
		return domain.MembershipDiff{}, err
	}
	if anchor == nil {
		return domain.MembershipDiff{}, domain.ErrNotFound
	}
	if existing == nil {
		existing, err = s.repo.BranchIDs(ctx, anchor.ID)
		if err != nil {
			return domain.MembershipDiff{}, err
		}
	}

	diff := domain.Diff(existing, selected, anchorBranchID)
	if diff.Empty() {
		return diff, nil
	}
	if err := s.requireBranches(ctx, diff.Add); err != nil {
		return domain.MembershipDiff{}, err
	}

	var g errgroup.Group
	g.SetLimit(membershipWriteLimit)
	for _, branchID := range diff.Add {
		g.Go(func() error {
			return s.copyTo(ctx, branchID, *anchor, actor)
		})
	}
	for _, branchID := range diff.Remove {
		g.Go(func() error {
			return s.removeFromBranch(ctx, branchID, anchor.ID, actor)
		})
	}
	writeErr := g.Wait()

	settleErr := s.settle(ctx, *anchor, actor)
	if err := errors.Join(writeErr, settleErr); err != nil {
		s.log.Warn("membership edit incomplete",
			zap.String("contractor_id", anchor.ID),
			zap.Strings("add", diff.Add),
			zap.Strings("remove", diff.Remove),
			zap.Error(err),
		)
		return diff, err
	}
	return diff, nil
}

// AssignPending moves a pending contractor into branches. The first branch
// gets the admin linkage; the pending record is dropped once the copies are
// written.
func (s *Service) AssignPending(ctx context.Context, contractorID string, branchIDs []string, actor string) (*domain.Contractor, error) {
	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		return nil, domain.ErrInvalidID
	}
	branchIDs = normalizeIDs(branchIDs)
	if len(branchIDs) == 0 {
		return nil, domain.ErrInvalidBranches
	}
	pending, err := s.repo.GetPending(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.requireBranches(ctx, branchIDs); err != nil {
		return nil, err
	}

	c := *pending
	c.UpdatedAt = clock.Millis(s.clock.Now())
	if actor != "" {
		c.UpdatedBy = actor
	}
	admins := c.AdminIDs()
	if len(admins) > 0 {
		c.Admins = make(map[string]bool, len(admins))
		for _, uid := range admins {
			c.Admins[uid] = true
		}
	}

	first := branchIDs[0]
	updates := docstore.Updates{}
	if err := s.putCopy(updates, first, c); err != nil {
		return nil, err
	}
	for _, uid := range admins {
		if err := s.putAdminLink(updates, adminRef{uid: uid}, first, c.ID); err != nil {
			return nil, err
		}
	}
	err = s.repo.Apply(ctx, updates)
	s.metrics.RecordMembershipWrite(ctx, "assign", err)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(membershipWriteLimit)
	for _, branchID := range branchIDs[1:] {
		g.Go(func() error {
			return s.copyTo(ctx, branchID, c, actor)
		})
	}
	copyErr := g.Wait()

	pendingPath, _ := repository.PendingPath(c.ID)
	dropErr := s.repo.Apply(ctx, docstore.Updates{pendingPath: nil})

	s.metrics.RecordTransition(ctx, "pending", "assigned")
	s.publish(ctx, events.Event{Type: events.TypeContractorAssigned, ContractorID: c.ID, BranchIDs: branchIDs, Actor: actor})
	s.log.Info("pending contractor assigned",
		zap.String("contractor_id", c.ID),
		zap.Strings("branch_ids", branchIDs),
	)
	if err := errors.Join(copyErr, dropErr); err != nil {
		return &c, err
	}
	return &c, nil
}

// copyTo writes source as a new copy in branchID, keeping its id and admin
// reference.
func (s *Service) copyTo(ctx context.Context, branchID string, source domain.Contractor, actor string) error {
	now := clock.Millis(s.clock.Now())
	c := source
	c.CreatedAt = now
	c.UpdatedAt = now
	if actor != "" {
		c.CreatedBy = actor
		c.UpdatedBy = actor
	}

	updates := docstore.Updates{}
	if err := s.putCopy(updates, branchID, c); err != nil {
		return err
	}
	err := s.repo.Apply(ctx, updates)
	s.metrics.RecordMembershipWrite(ctx, "copy", err)
	if err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.TypeBranchAdded, ContractorID: c.ID, BranchID: branchID, Actor: actor})
	return nil
}
